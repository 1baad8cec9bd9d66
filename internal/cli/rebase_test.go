package cli

import (
	"errors"
	"testing"

	"github.com/jakoblorz/godot-rust-helper/internal/config"
	"github.com/jakoblorz/godot-rust-helper/internal/filesystem"
	"github.com/jakoblorz/godot-rust-helper/internal/models"
	"github.com/stretchr/testify/require"
)

// clonedLibrary simulates a library checked out somewhere other than where
// its config was written
func clonedLibrary(t *testing.T) *filesystem.MockFileSystem {
	t.Helper()

	cfg := &models.ProjectConfig{
		Name:    "platformer_modules",
		Targets: []models.Target{models.TargetWindows},
		Modules: []string{"Player"},
		Paths: models.Paths{
			Lib:          "/home/alice/platformer_modules",
			Godot:        "/home/alice/platformer",
			Output:       "/home/alice/platformer/bin",
			Nativescript: "/shared/scripts",
		},
	}
	data, err := config.Encode(cfg)
	require.NoError(t, err)

	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/work/platformer_modules/godot-rust-helper.toml", data)
	fs.AddFile("/work/platformer/project.godot", []byte("config_version=4\n"))
	fs.SetCurrentDir("/work/platformer_modules")
	return fs
}

func TestRebaseCommand(t *testing.T) {
	fs := clonedLibrary(t)

	out, err := runCommand(NewRebaseCommand(fs, config.NewStore(fs, nil)), "../platformer")
	require.NoError(t, err)
	require.Contains(t, out, "✓ Rebased platformer_modules onto /work/platformer")

	cfg := loadConfig(t, fs, "/work/platformer_modules")
	require.Equal(t, models.Paths{
		Lib:          "/work/platformer_modules",
		Godot:        "/work/platformer",
		Output:       "/work/platformer/bin",
		Nativescript: "/shared/scripts",
	}, cfg.Paths)
	require.Equal(t, []models.Target{models.TargetWindows}, cfg.Targets)
	require.Equal(t, []string{"Player"}, cfg.Modules)

	manifest := readFile(t, fs, "/work/platformer/bin/platformer_modules.gdnlib")
	require.Equal(t, []string{`Windows.64="res://bin/platformer_modules.dll"`}, sectionLines(manifest, "entry"))
}

func TestRebaseCommand_ReplacesTargets(t *testing.T) {
	fs := clonedLibrary(t)

	_, err := runCommand(NewRebaseCommand(fs, config.NewStore(fs, nil)), "/work/platformer", "--targets", "osx,linux")
	require.NoError(t, err)

	require.Equal(t, []models.Target{models.TargetOSX, models.TargetLinux}, loadConfig(t, fs, "/work/platformer_modules").Targets)

	manifest := readFile(t, fs, "/work/platformer/bin/platformer_modules.gdnlib")
	require.Equal(t, []string{
		`OSX.64="res://bin/libplatformer_modules.dylib"`,
		`X11.64="res://bin/libplatformer_modules.so"`,
	}, sectionLines(manifest, "entry"))
}

func TestRebaseCommand_InvalidTargetWritesNothing(t *testing.T) {
	fs := clonedLibrary(t)
	before := readFile(t, fs, "/work/platformer_modules/godot-rust-helper.toml")

	_, err := runCommand(NewRebaseCommand(fs, config.NewStore(fs, nil)), "../platformer", "--targets", "windows,ps5")
	var validationErr *models.ValidationError
	require.True(t, errors.As(err, &validationErr))

	require.Equal(t, before, readFile(t, fs, "/work/platformer_modules/godot-rust-helper.toml"))
	require.False(t, fs.Exists("/work/platformer/bin/platformer_modules.gdnlib"))
}

func TestRebaseCommand_NotAGodotProject(t *testing.T) {
	fs := clonedLibrary(t)
	fs.AddDir("/work/assets")

	_, err := runCommand(NewRebaseCommand(fs, config.NewStore(fs, nil)), "../assets")
	require.Error(t, err)
	require.Contains(t, err.Error(), "project.godot")
}

func TestRebaseCommand_OutputOutsideGodotWritesNothing(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	// Hand-edited: the output never lived inside the Godot project
	fs.AddFile("/work/platformer_modules/godot-rust-helper.toml", []byte(`[general]
name = "platformer_modules"
targets = ["linux"]
modules = []

[paths]
lib = "/home/alice/platformer_modules"
godot = "/home/alice/platformer"
output = "/home/alice/bin"
nativescript = "/home/alice/platformer"
`))
	fs.AddFile("/work/platformer/project.godot", []byte("config_version=4\n"))
	fs.SetCurrentDir("/work/platformer_modules")
	before := readFile(t, fs, "/work/platformer_modules/godot-rust-helper.toml")

	_, err := runCommand(NewRebaseCommand(fs, config.NewStore(fs, nil)), "../platformer")
	var validationErr *models.ValidationError
	require.True(t, errors.As(err, &validationErr), "got %v", err)
	require.Equal(t, "paths.output", validationErr.Field)

	require.Equal(t, before, readFile(t, fs, "/work/platformer_modules/godot-rust-helper.toml"))
	require.False(t, fs.Exists("/home/alice/bin/platformer_modules.gdnlib"))
}
