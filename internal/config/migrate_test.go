package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/jakoblorz/godot-rust-helper/internal/filesystem"
	"github.com/jakoblorz/godot-rust-helper/internal/models"
	"github.com/stretchr/testify/require"
)

const v1Config = `[general]
name = "platformer_modules"
lib_path = "/projects/platformer_modules"
godot_path = "../platformer"
targets = ["windows", "linux"]
modules = ["Hello"]
`

const v2Config = `[general]
name = "platformer_modules"
targets = ["windows"]
modules = ["Hello", "World"]
plugin = false

[paths]
lib = "/projects/platformer_modules"
godot = "/projects/platformer"
output = "bin"
`

const v3Config = `[general]
name = "platformer_modules"
targets = ["osx"]
modules = []

[paths]
lib = "/projects/platformer_modules"
godot = "/projects/platformer"
output = "/projects/platformer/bin"
nativescript = "/projects/platformer/scripts"
`

func newMigrationFixture(t *testing.T, content string) (*filesystem.MockFileSystem, *Migrator, string) {
	t.Helper()

	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/projects/platformer/project.godot", []byte(""))
	fs.AddDir("/projects/platformer/bin")
	fs.AddFile("/projects/platformer_modules/Cargo.toml", []byte("[package]\nname = \"platformer_modules\"\n"))
	path := PathIn("/projects/platformer_modules")
	fs.AddFile(path, []byte(content))

	return fs, NewMigrator(fs, NewStore(fs, nil)), path
}

func TestDetectShape(t *testing.T) {
	current, err := Encode(sampleConfig())
	require.NoError(t, err)

	tests := []struct {
		name     string
		content  string
		expected Shape
	}{
		{"v1", v1Config, ShapeV1},
		{"v2", v2Config, ShapeV2},
		{"v3", v3Config, ShapeV3},
		{"current", string(current), ShapeCurrent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape, err := DetectShape([]byte(tt.content))
			require.NoError(t, err)
			require.Equal(t, tt.expected, shape)
		})
	}
}

func TestDetectShape_RejectsUnknownKeys(t *testing.T) {
	current, err := Encode(sampleConfig())
	require.NoError(t, err)

	_, err = DetectShape(append(current, []byte("extra = true\n")...))
	require.Error(t, err)
	require.Contains(t, err.Error(), "paths.extra")
}

func TestDetectShape_InvalidToml(t *testing.T) {
	_, err := DetectShape([]byte("[general\n"))
	require.Error(t, err)
}

func TestMigrate_CurrentIsNoop(t *testing.T) {
	current, err := Encode(sampleConfig())
	require.NoError(t, err)

	fs, migrator, path := newMigrationFixture(t, string(current))

	result, err := migrator.Migrate(path, MigrateOptions{Backup: true})
	require.NoError(t, err)
	require.False(t, result.Changed())
	require.Equal(t, ShapeCurrent, result.From)
	require.Empty(t, result.BackupPath)

	after, err := fs.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, string(current), string(after))
}

func TestMigrate_FromV1(t *testing.T) {
	_, migrator, path := newMigrationFixture(t, v1Config)

	result, err := migrator.Migrate(path, MigrateOptions{})
	require.NoError(t, err)
	require.Equal(t, ShapeV1, result.From)
	require.Len(t, result.Steps, 1)

	cfg, err := migrator.store.Load(path)
	require.NoError(t, err)
	require.Equal(t, &models.ProjectConfig{
		Name:    "platformer_modules",
		Targets: []models.Target{models.TargetWindows, models.TargetLinux},
		Modules: []string{"Hello"},
		Plugin:  false,
		Paths: models.Paths{
			Lib:          "/projects/platformer_modules",
			Godot:        "/projects/platformer",
			Output:       "/projects/platformer",
			Nativescript: "/projects/platformer",
		},
	}, cfg)
}

func TestMigrate_FromV1WithOutputOverride(t *testing.T) {
	_, migrator, path := newMigrationFixture(t, v1Config)

	_, err := migrator.Migrate(path, MigrateOptions{OutputPath: "../platformer/bin"})
	require.NoError(t, err)

	cfg, err := migrator.store.Load(path)
	require.NoError(t, err)
	require.Equal(t, "/projects/platformer/bin", cfg.Paths.Output)
	require.Equal(t, "/projects/platformer", cfg.Paths.Nativescript)
}

func TestMigrate_FromV2(t *testing.T) {
	_, migrator, path := newMigrationFixture(t, v2Config)

	result, err := migrator.Migrate(path, MigrateOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"add paths.nativescript"}, result.Steps)

	cfg, err := migrator.store.Load(path)
	require.NoError(t, err)
	require.Equal(t, "/projects/platformer/bin", cfg.Paths.Output)
	require.Equal(t, "/projects/platformer", cfg.Paths.Nativescript)
	require.Equal(t, []string{"Hello", "World"}, cfg.Modules)
	require.False(t, cfg.Plugin)
}

func TestMigrate_FromV3(t *testing.T) {
	fs, migrator, path := newMigrationFixture(t, v3Config)

	result, err := migrator.Migrate(path, MigrateOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"add general.plugin"}, result.Steps)

	data, err := fs.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "plugin = false\n")
	require.Contains(t, string(data), "modules = []\n")
}

func TestMigrate_SecondRunIsNoop(t *testing.T) {
	fs, migrator, path := newMigrationFixture(t, v1Config)

	_, err := migrator.Migrate(path, MigrateOptions{})
	require.NoError(t, err)

	first, err := fs.ReadFile(path)
	require.NoError(t, err)

	result, err := migrator.Migrate(path, MigrateOptions{})
	require.NoError(t, err)
	require.False(t, result.Changed())

	second, err := fs.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, string(first), string(second))
}

func TestMigrate_WritesBackup(t *testing.T) {
	fs, migrator, path := newMigrationFixture(t, v2Config)

	result, err := migrator.Migrate(path, MigrateOptions{Backup: true})
	require.NoError(t, err)
	require.NotEmpty(t, result.BackupPath)
	require.True(t, strings.HasPrefix(result.BackupPath, "/projects/platformer_modules/godot-rust-helper."))
	require.True(t, strings.HasSuffix(result.BackupPath, ".toml.bak"))

	backup, err := fs.ReadFile(result.BackupPath)
	require.NoError(t, err)
	require.Equal(t, v2Config, string(backup))
}

func TestMigrate_MissingGodotFails(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	path := PathIn("/projects/platformer_modules")
	fs.AddFile(path, []byte(strings.ReplaceAll(v1Config, "../platformer", "../gone/platformer")))

	migrator := NewMigrator(fs, NewStore(fs, nil))
	_, err := migrator.Migrate(path, MigrateOptions{})
	require.Error(t, err)

	data, readErr := fs.ReadFile(path)
	require.NoError(t, readErr)
	require.Contains(t, string(data), "lib_path")
}

func TestMigrate_MissingConfig(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	migrator := NewMigrator(fs, NewStore(fs, nil))

	_, err := migrator.Migrate("/nowhere/godot-rust-helper.toml", MigrateOptions{})
	require.True(t, errors.Is(err, ErrConfigMissing))
}

func TestRenameLegacyDependency(t *testing.T) {
	fs, migrator, _ := newMigrationFixture(t, v3Config)
	fs.AddFile("/projects/platformer_modules/Cargo.toml", []byte(
		"[dependencies]\ngodot_rust_helper_extensions = { git = \"https://example.com/ext\" }\n"))
	fs.AddFile("/projects/platformer_modules/src/lib.rs", []byte("extern crate godot_rust_helper_extensions;\n"))
	fs.AddFile("/projects/platformer_modules/src/hello.rs", []byte("use gdnative::api::Node;\n"))

	rewritten, err := migrator.RenameLegacyDependency("/projects/platformer_modules", "godot_rust_helper_ext")
	require.NoError(t, err)
	require.Equal(t, []string{
		"/projects/platformer_modules/Cargo.toml",
		"/projects/platformer_modules/src/lib.rs",
	}, rewritten)

	lib, err := fs.ReadFile("/projects/platformer_modules/src/lib.rs")
	require.NoError(t, err)
	require.Equal(t, "extern crate godot_rust_helper_ext;\n", string(lib))

	again, err := migrator.RenameLegacyDependency("/projects/platformer_modules", "godot_rust_helper_ext")
	require.NoError(t, err)
	require.Empty(t, again)
}
