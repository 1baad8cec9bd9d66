package filesystem

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMockFileSystem_WriteRequiresParent(t *testing.T) {
	mfs := NewMockFileSystem()

	err := mfs.WriteFile("/projects/platformer/project.godot", nil, 0644)
	require.ErrorIs(t, err, fs.ErrNotExist)

	require.NoError(t, mfs.MkdirAll("/projects/platformer", 0755))
	require.NoError(t, mfs.WriteFile("/projects/platformer/project.godot", []byte("x"), 0644))
	require.True(t, mfs.Exists("/projects/platformer/project.godot"))
}

func TestMockFileSystem_MkdirAllThroughFile(t *testing.T) {
	mfs := NewMockFileSystem()
	mfs.AddFile("/projects/platformer", []byte("not a dir"))

	err := mfs.MkdirAll("/projects/platformer/bin", 0755)
	require.Error(t, err)
	require.False(t, mfs.Exists("/projects/platformer/bin"))
}

func TestMockFileSystem_ReadFileReturnsCopy(t *testing.T) {
	mfs := NewMockFileSystem()
	mfs.AddFile("/lib/src/lib.rs", []byte("mod player;"))

	data, err := mfs.ReadFile("/lib/src/lib.rs")
	require.NoError(t, err)
	data[0] = 'X'

	again, err := mfs.ReadFile("/lib/src/lib.rs")
	require.NoError(t, err)
	require.Equal(t, "mod player;", string(again))
}

func TestMockFileSystem_RemoveNonEmptyDir(t *testing.T) {
	mfs := NewMockFileSystem()
	mfs.AddFile("/lib/src/lib.rs", nil)

	require.Error(t, mfs.Remove("/lib/src"))
	require.NoError(t, mfs.Remove("/lib/src/lib.rs"))
	require.NoError(t, mfs.Remove("/lib/src"))

	err := mfs.Remove("/lib/src")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestMockFileSystem_Symlinks(t *testing.T) {
	mfs := NewMockFileSystem()
	mfs.AddFile("/data/games/platformer/project.godot", []byte("config_version=4\n"))
	mfs.AddSymlink("/home/alice/platformer", "/data/games/platformer")
	mfs.AddSymlink("/home/alice/current", "platformer")

	resolved, err := mfs.EvalSymlinks("/home/alice/current/project.godot")
	require.NoError(t, err)
	require.Equal(t, "/data/games/platformer/project.godot", resolved)

	require.True(t, mfs.Exists("/home/alice/platformer/project.godot"))
	require.NoError(t, mfs.WriteFile("/home/alice/platformer/demo.gdnlib", []byte("[entry]"), 0644))
	require.True(t, mfs.Exists("/data/games/platformer/demo.gdnlib"))

	_, err = mfs.EvalSymlinks("/home/alice/platformer/missing")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestMockFileSystem_SymlinkLoop(t *testing.T) {
	mfs := NewMockFileSystem()
	mfs.AddSymlink("/a", "/b")
	mfs.AddSymlink("/b", "/a")

	_, err := mfs.EvalSymlinks("/a")
	require.Error(t, err)
	require.Contains(t, err.Error(), "too many levels")
}

func TestMockFileSystem_WalkDirSkipDir(t *testing.T) {
	mfs := NewMockFileSystem()
	mfs.AddFile("/lib/src/lib.rs", nil)
	mfs.AddFile("/lib/src/player.rs", nil)
	mfs.AddFile("/lib/target/debug/libgame.so", nil)
	mfs.AddFile("/lib/target/debug/deps/x.rlib", nil)

	var visited []string
	err := mfs.WalkDir("/lib", func(path string, d fs.DirEntry, err error) error {
		require.NoError(t, err)
		if d.IsDir() && d.Name() == "target" {
			return fs.SkipDir
		}
		visited = append(visited, path)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"/lib", "/lib/src", "/lib/src/lib.rs", "/lib/src/player.rs"}, visited)
}

func TestMockFileSystem_WalkDirMissingRoot(t *testing.T) {
	mfs := NewMockFileSystem()

	err := mfs.WalkDir("/missing", func(path string, d fs.DirEntry, err error) error {
		return err
	})
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestMockFileSystem_ReadDirAndGlob(t *testing.T) {
	mfs := NewMockFileSystem()
	mfs.AddFile("/lib/src/player.rs", nil)
	mfs.AddFile("/lib/src/enemy.rs", nil)
	mfs.AddFile("/lib/src/notes.md", nil)

	entries, err := mfs.ReadDir("/lib/src")
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.Equal(t, []string{"enemy.rs", "notes.md", "player.rs"}, names)

	matches, err := mfs.Glob("/lib/src/*.rs")
	require.NoError(t, err)
	require.Equal(t, []string{"/lib/src/enemy.rs", "/lib/src/player.rs"}, matches)

	_, err = mfs.Glob("/lib/[")
	require.True(t, errors.Is(err, filepath.ErrBadPattern))
}

func TestMockFileSystem_ConcurrentWrites(t *testing.T) {
	mfs := NewMockFileSystem()
	mfs.AddDir("/out")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = mfs.WriteFile("/out/lib.so", []byte("artifact"), 0644)
				_, _ = mfs.ReadFile("/out/lib.so")
			}
		}()
	}
	wg.Wait()

	require.Contains(t, mfs.Tree(), "- /out/lib.so")
}

func TestOSFileSystem_WriteFileReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "godot-rust-helper.toml")
	osfs := NewOSFileSystem()

	require.NoError(t, osfs.WriteFile(path, []byte("first"), 0644))
	require.NoError(t, osfs.WriteFile(path, []byte("second"), 0600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files should not be left behind")

	err = osfs.WriteFile(filepath.Join(dir, "missing", "x.toml"), nil, 0644)
	require.ErrorIs(t, err, fs.ErrNotExist)
}
