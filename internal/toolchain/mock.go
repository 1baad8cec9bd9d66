package toolchain

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jakoblorz/godot-rust-helper/internal/filesystem"
	"github.com/jakoblorz/godot-rust-helper/internal/models"
)

// MockCargo implements Cargo against a MockFileSystem, producing the files
// cargo would create
type MockCargo struct {
	mu  sync.Mutex
	fs  *filesystem.MockFileSystem
	ctx context.Context

	// Target decides the artifact file name Build produces
	Target models.Target

	// Calls records every invocation as "new <dir>/<name>" or "build <dir>"
	Calls []string

	// Hooks for testing error scenarios
	NewLibraryError error
	BuildError      error
}

// NewMockCargo creates a MockCargo building linux artifacts
func NewMockCargo(fs *filesystem.MockFileSystem) *MockCargo {
	return &MockCargo{
		fs:     fs,
		ctx:    context.Background(),
		Target: models.TargetLinux,
	}
}

// WithContext shares state with the receiver; only the context differs
func (m *MockCargo) WithContext(ctx context.Context) Cargo {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctx = ctx
	return m
}

// MockCargoManifest is the Cargo.toml NewLibrary writes
func MockCargoManifest(name string) string {
	return fmt.Sprintf("[package]\nname = %q\nversion = \"0.1.0\"\nedition = \"2021\"\n\n[dependencies]\n", name)
}

func (m *MockCargo) NewLibrary(parentDir, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, "new "+filepath.Join(parentDir, name))
	if m.NewLibraryError != nil {
		return m.NewLibraryError
	}

	libDir := filepath.Join(parentDir, name)
	if m.fs.Exists(libDir) {
		return &CommandError{
			Args:   []string{"cargo", "new", name, "--lib"},
			Dir:    parentDir,
			Stderr: fmt.Sprintf("error: destination `%s` already exists", libDir),
			Err:    fmt.Errorf("exit status 101"),
		}
	}

	m.fs.AddFile(filepath.Join(libDir, "Cargo.toml"), []byte(MockCargoManifest(name)))
	m.fs.AddFile(filepath.Join(libDir, "src", "lib.rs"), []byte("#[cfg(test)]\nmod tests {\n}\n"))
	m.fs.AddFile(filepath.Join(libDir, ".gitignore"), []byte("/target\n"))
	return nil
}

func (m *MockCargo) Build(libDir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, "build "+libDir)
	if err := m.ctx.Err(); err != nil {
		return err
	}
	if m.BuildError != nil {
		return m.BuildError
	}

	name := filepath.Base(libDir)
	m.fs.AddFile(filepath.Join(libDir, "Cargo.lock"), []byte("version = 3\n"))
	artifact := filepath.Join(libDir, "target", "debug", m.Target.ArtifactName(name))
	m.fs.AddFile(artifact, []byte(fmt.Sprintf("artifact %s build %d", name, len(m.Calls))))
	return nil
}

// BuildCount returns how many builds ran
func (m *MockCargo) BuildCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, call := range m.Calls {
		if strings.HasPrefix(call, "build ") {
			count++
		}
	}
	return count
}
