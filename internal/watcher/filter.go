package watcher

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
	"github.com/jakoblorz/godot-rust-helper/internal/filesystem"
)

// SourcePattern matches the files a rebuild depends on
const SourcePattern = "**/*.rs"

// Filter decides whether a changed path should trigger a rebuild
type Filter struct {
	root    string
	pattern string
	ignore  gitignore.GitIgnore
}

// NewFilter matches Rust sources below root, skipping anything the root
// .gitignore excludes
func NewFilter(fs filesystem.FileSystem, root string) (*Filter, error) {
	f := &Filter{root: root, pattern: SourcePattern}

	ignorePath := filepath.Join(root, ".gitignore")
	if !fs.Exists(ignorePath) {
		return f, nil
	}

	data, err := fs.ReadFile(ignorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read .gitignore: %w", err)
	}
	f.ignore = gitignore.New(bytes.NewReader(data), root, nil)

	return f, nil
}

// Match reports whether path is a tracked source file below the root
func (f *Filter) Match(path string) bool {
	rel, err := filepath.Rel(f.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	rel = filepath.ToSlash(rel)

	if ok, err := doublestar.Match(f.pattern, rel); err != nil || !ok {
		return false
	}

	return !f.ignored(rel)
}

// ignored checks the file and each of its parent directories, since a
// pattern like /target excludes everything below it
func (f *Filter) ignored(rel string) bool {
	if f.ignore == nil {
		return false
	}

	parts := strings.Split(rel, "/")
	for i := 1; i <= len(parts); i++ {
		isDir := i < len(parts)
		if match := f.ignore.Relative(strings.Join(parts[:i], "/"), isDir); match != nil && match.Ignore() {
			return true
		}
	}
	return false
}
