package watcher

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"
)

// Loop rebuilds a library whenever one of its sources changes
type Loop struct {
	Source Source
	Filter *Filter
	Build  func() error
	Out    io.Writer

	// Root is used to shorten paths in log lines
	Root string

	lastBuild time.Time
}

// Run consumes events until ctx is cancelled or the source closes. Events in
// the same wall-clock second as the previous build are dropped, which folds
// the bursts editors produce when saving into one rebuild. Build failures are
// reported and watching continues.
func (l *Loop) Run(ctx context.Context) error {
	events := l.Source.Events()
	errs := l.Source.Errors()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-events:
			if !ok {
				return nil
			}
			l.handle(e)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			fmt.Fprintf(l.Out, "⚠️  watch error: %v\n", err)
		}
	}
}

// MarkBuilt records t as the time of the last build
func (l *Loop) MarkBuilt(t time.Time) {
	l.lastBuild = t
}

func (l *Loop) handle(e Event) {
	if l.Filter != nil && !l.Filter.Match(e.Path) {
		return
	}
	if e.Time.Unix() == l.lastBuild.Unix() {
		return
	}
	l.lastBuild = e.Time

	fmt.Fprintf(l.Out, "🔨 Rebuilding after change to %s\n", l.display(e.Path))
	if err := l.Build(); err != nil {
		fmt.Fprintf(l.Out, "❌ %v\n", err)
		return
	}
	fmt.Fprintf(l.Out, "✓ Rebuilt at %s\n", e.Time.Format(time.TimeOnly))
}

func (l *Loop) display(path string) string {
	if l.Root == "" {
		return path
	}
	if rel, err := filepath.Rel(l.Root, path); err == nil {
		return rel
	}
	return path
}
