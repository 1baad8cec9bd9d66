package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	poll "github.com/radovskyb/watcher"
)

// Event is a file under the watched root that was written or created
type Event struct {
	Path string
	Time time.Time
}

// Source delivers file change events until closed
type Source interface {
	Events() <-chan Event
	Errors() <-chan error
	Close() error
}

// NotifySource watches a directory tree with OS notifications. Directories
// created after startup are added as they appear.
type NotifySource struct {
	watcher *fsnotify.Watcher
	events  chan Event
	errors  chan error
	done    chan struct{}
}

// NewNotifySource subscribes to root and every directory below it
func NewNotifySource(root string) (*NotifySource, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.Add(p)
	})
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", root, err)
	}

	s := &NotifySource{
		watcher: w,
		events:  make(chan Event),
		errors:  make(chan error),
		done:    make(chan struct{}),
	}
	go s.forward()

	return s, nil
}

func (s *NotifySource) forward() {
	defer close(s.events)
	defer close(s.errors)

	for {
		select {
		case e, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if e.Has(fsnotify.Create) {
				if info, err := os.Stat(e.Name); err == nil && info.IsDir() {
					if err := s.watcher.Add(e.Name); err != nil {
						s.sendError(fmt.Errorf("failed to watch %s: %w", e.Name, err))
					}
					continue
				}
			}

			if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
				continue
			}

			select {
			case s.events <- Event{Path: e.Name, Time: time.Now()}:
			case <-s.done:
				return
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendError(err)
		case <-s.done:
			return
		}
	}
}

func (s *NotifySource) sendError(err error) {
	select {
	case s.errors <- err:
	case <-s.done:
	}
}

func (s *NotifySource) Events() <-chan Event { return s.events }
func (s *NotifySource) Errors() <-chan error { return s.errors }

func (s *NotifySource) Close() error {
	close(s.done)
	return s.watcher.Close()
}

// DefaultPollInterval is used when no positive interval is given
const DefaultPollInterval = 500 * time.Millisecond

// PollSource watches a directory tree by scanning it on an interval. It works
// where OS notifications do not, such as network mounts and some containers.
type PollSource struct {
	watcher *poll.Watcher
	events  chan Event
	errors  chan error
	done    chan struct{}
}

// NewPollSource scans root recursively every interval
func NewPollSource(root string, interval time.Duration) (*PollSource, error) {
	if interval < time.Millisecond {
		interval = DefaultPollInterval
	}

	w := poll.New()
	w.FilterOps(poll.Write, poll.Create)

	if err := w.AddRecursive(root); err != nil {
		return nil, fmt.Errorf("failed to watch %s: %w", root, err)
	}

	s := &PollSource{
		watcher: w,
		events:  make(chan Event),
		errors:  make(chan error),
		done:    make(chan struct{}),
	}

	go s.forward()
	go func() {
		if err := w.Start(interval); err != nil {
			s.sendError(err)
		}
	}()
	w.Wait()

	return s, nil
}

func (s *PollSource) forward() {
	defer close(s.events)
	defer close(s.errors)

	for {
		select {
		case e := <-s.watcher.Event:
			if e.IsDir() {
				continue
			}

			select {
			case s.events <- Event{Path: e.Path, Time: time.Now()}:
			case <-s.done:
				return
			}
		case err := <-s.watcher.Error:
			s.sendError(err)
		case <-s.watcher.Closed:
			return
		case <-s.done:
			return
		}
	}
}

func (s *PollSource) sendError(err error) {
	select {
	case s.errors <- err:
	case <-s.done:
	}
}

func (s *PollSource) Events() <-chan Event { return s.events }
func (s *PollSource) Errors() <-chan error { return s.errors }

func (s *PollSource) Close() error {
	close(s.done)
	s.watcher.Close()
	return nil
}
