package filesystem

import (
	"io/fs"
)

// FileSystem is everything the helper does to disk. Commands take it as a
// dependency so they can run against MockFileSystem in tests.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	// WriteFile replaces path in one step; the parent must exist
	WriteFile(path string, data []byte, perm fs.FileMode) error
	Remove(path string) error

	ReadDir(path string) ([]fs.DirEntry, error)
	MkdirAll(path string, perm fs.FileMode) error

	Stat(path string) (fs.FileInfo, error)
	Exists(path string) bool
	Getwd() (string, error)
	// EvalSymlinks returns the canonical form of an existing path
	EvalSymlinks(path string) (string, error)

	WalkDir(root string, fn fs.WalkDirFunc) error
	Glob(pattern string) ([]string, error)
}
