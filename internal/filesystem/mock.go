package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// maxLinkDepth bounds symlink chains, like ELOOP on a real system
const maxLinkDepth = 40

// MockFileSystem is an in-memory FileSystem for tests. It is safe for
// concurrent use, so a watch loop can build in the background while a test
// inspects the tree.
type MockFileSystem struct {
	mu         sync.RWMutex
	nodes      map[string]*MockFile
	currentDir string
}

// MockFile is a file, directory or symlink in the mock filesystem
type MockFile struct {
	Content []byte
	Mode    fs.FileMode
	ModTime time.Time
	IsDir   bool

	// LinkTarget is set for symlinks and is always absolute
	LinkTarget string
}

type mockFileInfo struct {
	name string
	node *MockFile
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return int64(len(m.node.Content)) }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.node.Mode }
func (m *mockFileInfo) ModTime() time.Time { return m.node.ModTime }
func (m *mockFileInfo) IsDir() bool        { return m.node.IsDir }
func (m *mockFileInfo) Sys() interface{}   { return nil }

// NewMockFileSystem creates an empty MockFileSystem rooted at /
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		nodes:      make(map[string]*MockFile),
		currentDir: "/",
	}
}

// AddFile adds a file, creating missing parent directories
func (mfs *MockFileSystem) AddFile(path string, content []byte) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	mfs.ensureParents(cleanPath)
	mfs.nodes[cleanPath] = &MockFile{
		Content: content,
		Mode:    0644,
		ModTime: time.Now(),
	}
}

// AddDir adds a directory and its missing parents
func (mfs *MockFileSystem) AddDir(path string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	mfs.ensureParents(cleanPath)
	mfs.mkdir(cleanPath, 0755)
}

// AddSymlink makes link point at target. Relative targets are resolved
// against the link's directory.
func (mfs *MockFileSystem) AddSymlink(link, target string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanLink := filepath.Clean(link)
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(cleanLink), target)
	}

	mfs.ensureParents(cleanLink)
	mfs.nodes[cleanLink] = &MockFile{
		Mode:       0777 | fs.ModeSymlink,
		ModTime:    time.Now(),
		LinkTarget: filepath.Clean(target),
	}
}

// SetCurrentDir sets the directory Getwd reports
func (mfs *MockFileSystem) SetCurrentDir(dir string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	mfs.currentDir = filepath.Clean(dir)
}

// Tree lists every path with a marker for its kind, for failure messages
func (mfs *MockFileSystem) Tree() string {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	var b strings.Builder
	for _, p := range mfs.sortedPaths() {
		node := mfs.nodes[p]
		switch {
		case node.LinkTarget != "":
			fmt.Fprintf(&b, "@ %s -> %s\n", p, node.LinkTarget)
		case node.IsDir:
			fmt.Fprintf(&b, "+ %s\n", p)
		default:
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	return b.String()
}

func (mfs *MockFileSystem) ReadFile(path string) ([]byte, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	node, _, err := mfs.follow("open", path)
	if err != nil {
		return nil, err
	}
	if node.IsDir {
		return nil, &fs.PathError{Op: "read", Path: path, Err: errors.New("is a directory")}
	}

	data := make([]byte, len(node.Content))
	copy(data, node.Content)
	return data, nil
}

func (mfs *MockFileSystem) WriteFile(path string, data []byte, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	resolved, err := mfs.resolve(path)
	if err != nil {
		return &fs.PathError{Op: "open", Path: path, Err: err}
	}

	parent, ok := mfs.nodes[filepath.Dir(resolved)]
	if !isRoot(filepath.Dir(resolved)) && (!ok || !parent.IsDir) {
		return &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if existing, ok := mfs.nodes[resolved]; ok && existing.IsDir {
		return &fs.PathError{Op: "open", Path: path, Err: errors.New("is a directory")}
	}

	content := make([]byte, len(data))
	copy(content, data)
	mfs.nodes[resolved] = &MockFile{
		Content: content,
		Mode:    perm,
		ModTime: time.Now(),
	}
	return nil
}

// Remove deletes a file, link or empty directory
func (mfs *MockFileSystem) Remove(path string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	node, ok := mfs.nodes[cleanPath]
	if !ok {
		return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrNotExist}
	}
	if node.IsDir && len(mfs.children(cleanPath)) > 0 {
		return &fs.PathError{Op: "remove", Path: path, Err: errors.New("directory not empty")}
	}

	delete(mfs.nodes, cleanPath)
	return nil
}

func (mfs *MockFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	resolved, err := mfs.resolve(path)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: path, Err: err}
	}
	if node, ok := mfs.nodes[resolved]; !isRoot(resolved) && (!ok || !node.IsDir) {
		if !ok {
			return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
		}
		return nil, &fs.PathError{Op: "readdirent", Path: path, Err: errors.New("not a directory")}
	}

	var entries []fs.DirEntry
	for _, child := range mfs.children(resolved) {
		entries = append(entries, fs.FileInfoToDirEntry(mfs.info(child)))
	}
	return entries, nil
}

func (mfs *MockFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	resolved, err := mfs.resolve(path)
	if err != nil {
		return &fs.PathError{Op: "mkdir", Path: path, Err: err}
	}

	// Walk down from the root so a file in the way is reported
	current := string(filepath.Separator)
	for _, part := range strings.Split(resolved, string(filepath.Separator)) {
		if part == "" {
			continue
		}
		current = filepath.Join(current, part)
		if node, ok := mfs.nodes[current]; ok && !node.IsDir {
			return &fs.PathError{Op: "mkdir", Path: current, Err: errors.New("not a directory")}
		}
		mfs.mkdir(current, perm)
	}
	return nil
}

func (mfs *MockFileSystem) Stat(path string) (fs.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	node, _, err := mfs.follow("stat", path)
	if err != nil {
		return nil, err
	}
	return &mockFileInfo{name: filepath.Base(path), node: node}, nil
}

func (mfs *MockFileSystem) Exists(path string) bool {
	_, err := mfs.Stat(path)
	return err == nil
}

func (mfs *MockFileSystem) Getwd() (string, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	return mfs.currentDir, nil
}

// EvalSymlinks resolves every link along path; the result must exist
func (mfs *MockFileSystem) EvalSymlinks(path string) (string, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	_, resolved, err := mfs.follow("lstat", path)
	if err != nil {
		return "", err
	}
	return resolved, nil
}

// WalkDir visits root and everything below it in lexical order. Links are
// reported but not followed, matching filepath.WalkDir.
func (mfs *MockFileSystem) WalkDir(root string, fn fs.WalkDirFunc) error {
	mfs.mu.RLock()
	cleanRoot := filepath.Clean(root)
	rootNode, ok := mfs.nodes[cleanRoot]
	if !ok && !isRoot(cleanRoot) {
		mfs.mu.RUnlock()
		return fn(root, nil, &fs.PathError{Op: "lstat", Path: root, Err: fs.ErrNotExist})
	}
	if rootNode == nil {
		rootNode = &MockFile{Mode: 0755 | fs.ModeDir, IsDir: true}
	}

	type visit struct {
		path  string
		entry fs.DirEntry
	}
	visits := []visit{{cleanRoot, fs.FileInfoToDirEntry(&mockFileInfo{name: filepath.Base(cleanRoot), node: rootNode})}}
	for _, p := range mfs.sortedPaths() {
		if p != cleanRoot && within(p, cleanRoot) {
			visits = append(visits, visit{p, fs.FileInfoToDirEntry(mfs.info(p))})
		}
	}
	// fn may write to the filesystem
	mfs.mu.RUnlock()

	var skipped []string
	for _, v := range visits {
		if underAny(v.path, skipped) {
			continue
		}

		err := fn(v.path, v.entry, nil)
		switch {
		case err == nil:
		case errors.Is(err, fs.SkipAll):
			return nil
		case errors.Is(err, fs.SkipDir):
			if v.entry.IsDir() {
				skipped = append(skipped, v.path)
			} else {
				skipped = append(skipped, filepath.Dir(v.path))
			}
		default:
			return err
		}
	}
	return nil
}

func (mfs *MockFileSystem) Glob(pattern string) ([]string, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, err
	}

	var matches []string
	for _, p := range mfs.sortedPaths() {
		if matched, _ := filepath.Match(pattern, p); matched {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

// follow resolves path and returns the node it ends at. Callers hold mu.
func (mfs *MockFileSystem) follow(op, path string) (*MockFile, string, error) {
	resolved, err := mfs.resolve(path)
	if err != nil {
		return nil, "", &fs.PathError{Op: op, Path: path, Err: err}
	}
	if isRoot(resolved) {
		return &MockFile{Mode: 0755 | fs.ModeDir, IsDir: true}, resolved, nil
	}

	node, ok := mfs.nodes[resolved]
	if !ok {
		return nil, "", &fs.PathError{Op: op, Path: path, Err: fs.ErrNotExist}
	}
	return node, resolved, nil
}

// resolve expands symlinks in every component of path. A missing leaf is
// returned unresolved so writers can create it. Callers hold mu.
func (mfs *MockFileSystem) resolve(path string) (string, error) {
	cleanPath := filepath.Clean(path)
	if !filepath.IsAbs(cleanPath) {
		cleanPath = filepath.Join(mfs.currentDir, cleanPath)
	}

	resolved := string(filepath.Separator)
	parts := strings.Split(cleanPath, string(filepath.Separator))
	for depth := 0; len(parts) > 0; {
		part := parts[0]
		parts = parts[1:]
		if part == "" {
			continue
		}

		next := filepath.Join(resolved, part)
		node, ok := mfs.nodes[next]
		if !ok || node.LinkTarget == "" {
			resolved = next
			continue
		}

		depth++
		if depth > maxLinkDepth {
			return "", errors.New("too many levels of symbolic links")
		}
		// Restart from the link target with the remaining components
		parts = append(strings.Split(node.LinkTarget, string(filepath.Separator)), parts...)
		resolved = string(filepath.Separator)
	}
	return resolved, nil
}

func (mfs *MockFileSystem) ensureParents(path string) {
	var missing []string
	for dir := filepath.Dir(path); !isRoot(dir) && dir != "."; dir = filepath.Dir(dir) {
		if _, ok := mfs.nodes[dir]; ok {
			break
		}
		missing = append(missing, dir)
	}
	for i := len(missing) - 1; i >= 0; i-- {
		mfs.mkdir(missing[i], 0755)
	}
}

func (mfs *MockFileSystem) mkdir(path string, perm fs.FileMode) {
	if _, ok := mfs.nodes[path]; ok {
		return
	}
	mfs.nodes[path] = &MockFile{
		Mode:    perm | fs.ModeDir,
		ModTime: time.Now(),
		IsDir:   true,
	}
}

func (mfs *MockFileSystem) children(dir string) []string {
	var out []string
	for _, p := range mfs.sortedPaths() {
		if p != dir && filepath.Dir(p) == dir {
			out = append(out, p)
		}
	}
	return out
}

func (mfs *MockFileSystem) info(path string) fs.FileInfo {
	return &mockFileInfo{name: filepath.Base(path), node: mfs.nodes[path]}
}

func (mfs *MockFileSystem) sortedPaths() []string {
	paths := make([]string, 0, len(mfs.nodes))
	for p := range mfs.nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func isRoot(path string) bool {
	return path == string(filepath.Separator)
}

func within(path, dir string) bool {
	return isRoot(dir) || strings.HasPrefix(path, dir+string(filepath.Separator))
}

func underAny(path string, dirs []string) bool {
	for _, dir := range dirs {
		if path == dir || within(path, dir) {
			return true
		}
	}
	return false
}
