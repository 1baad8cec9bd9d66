package paths

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jakoblorz/godot-rust-helper/internal/filesystem"
	"github.com/jakoblorz/godot-rust-helper/internal/models"
)

// GodotMarker is the file that identifies a Godot project root.
const GodotMarker = "project.godot"

// maxAncestorHops bounds how far FindAncestorWith climbs.
const maxAncestorHops = 10

// PathError reports a path that could not be resolved to a canonical location
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("failed to resolve path %s: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// Resolver turns user supplied paths into canonical absolute paths
type Resolver struct {
	fs filesystem.FileSystem
}

// NewResolver creates a new Resolver
func NewResolver(fs filesystem.FileSystem) *Resolver {
	return &Resolver{fs: fs}
}

// Absolute joins relative paths onto cwd and canonicalizes the result. A
// missing leaf is tolerated as long as its parent resolves.
func (r *Resolver) Absolute(path, cwd string) (string, error) {
	joined := path
	if !filepath.IsAbs(joined) {
		joined = filepath.Join(cwd, joined)
	}
	joined = filepath.Clean(joined)

	if resolved, err := r.fs.EvalSymlinks(joined); err == nil {
		return resolved, nil
	}

	parent, base := filepath.Dir(joined), filepath.Base(joined)
	resolvedParent, err := r.fs.EvalSymlinks(parent)
	if err != nil {
		return "", &PathError{Path: path, Err: err}
	}

	return filepath.Join(resolvedParent, base), nil
}

// AbsoluteOr resolves path, or returns fallback when path is empty.
func (r *Resolver) AbsoluteOr(path, cwd, fallback string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return fallback, nil
	}
	return r.Absolute(path, cwd)
}

// GodotRoot resolves dir and checks that it contains project.godot
func (r *Resolver) GodotRoot(dir, cwd string) (string, error) {
	abs, err := r.Absolute(dir, cwd)
	if err != nil {
		return "", err
	}

	if !r.fs.Exists(filepath.Join(abs, GodotMarker)) {
		return "", &models.ValidationError{
			Field:  "godot project dir",
			Value:  dir,
			Reason: fmt.Sprintf("no %s found in %s", GodotMarker, abs),
		}
	}

	return abs, nil
}

// FindAncestorWith walks up from start looking for a directory containing
// filename. The search stops after maxAncestorHops parents and then returns
// the last directory it visited, so callers must check for the file themselves.
func (r *Resolver) FindAncestorWith(filename, start string) string {
	dir := filepath.Clean(start)

	for hop := 0; ; hop++ {
		if r.fs.Exists(filepath.Join(dir, filename)) {
			return dir
		}

		parent := filepath.Dir(dir)
		if hop == maxAncestorHops || parent == dir {
			return dir
		}
		dir = parent
	}
}

// Rebase moves path from below oldRoot to the same place below newRoot.
// Paths outside oldRoot are returned unchanged.
func Rebase(path, oldRoot, newRoot string) string {
	rel, err := filepath.Rel(oldRoot, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.Join(newRoot, rel)
}
