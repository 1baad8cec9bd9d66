package cli

import (
	"errors"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/jakoblorz/godot-rust-helper/internal/codegen"
	"github.com/jakoblorz/godot-rust-helper/internal/config"
	"github.com/jakoblorz/godot-rust-helper/internal/library"
	"github.com/jakoblorz/godot-rust-helper/internal/models"
	"github.com/stretchr/testify/require"
)

const (
	libDir   = "/projects/platformer_modules"
	godotDir = "/projects/platformer"
)

func TestCreateCommand(t *testing.T) {
	fs := library.NewLibraryBuilder(libDir, godotDir).Build()
	store := config.NewStore(fs, nil)

	out, err := runCommand(NewCreateCommand(fs, store), "MainScene")
	require.NoError(t, err)
	require.Contains(t, out, "✓ Created module MainScene")

	require.Equal(t, []string{"MainScene"}, loadConfig(t, fs, libDir).Modules)

	aggregator := readFile(t, fs, libDir+"/src/lib.rs")
	require.Contains(t, aggregator, "mod main_scene;")
	require.Contains(t, aggregator, "handle.add_class::<main_scene::MainScene>();")

	snaps.MatchSnapshot(t, readFile(t, fs, libDir+"/src/main_scene.rs"))
	snaps.MatchSnapshot(t, readFile(t, fs, godotDir+"/main_scene.gdns"))
}

func TestCreateCommand_PluginRegistersToolClass(t *testing.T) {
	fs := library.NewLibraryBuilder(libDir, godotDir).
		AsPlugin().
		WithOutput(godotDir + "/addons/tools").
		WithNativescript(godotDir + "/addons/tools").
		Build()

	_, err := runCommand(NewCreateCommand(fs, config.NewStore(fs, nil)), "Dock")
	require.NoError(t, err)

	require.Contains(t, readFile(t, fs, libDir+"/src/lib.rs"), "handle.add_tool_class::<dock::Dock>();")
	require.Contains(t, readFile(t, fs, libDir+"/src/dock.rs"), "#[inherit(Node)]")
	require.Contains(t, readFile(t, fs, godotDir+"/addons/tools/dock.gdns"),
		`path="res://addons/tools/platformer_modules.gdnlib"`)
}

func TestCreateCommand_DuplicateAbortsBeforeWriting(t *testing.T) {
	fs := library.NewLibraryBuilder(libDir, godotDir).AddModule("Player").Build()
	before := readFile(t, fs, libDir+"/src/lib.rs")

	_, err := runCommand(NewCreateCommand(fs, config.NewStore(fs, nil)), "Player")
	var validationErr *models.ValidationError
	require.True(t, errors.As(err, &validationErr))

	require.Equal(t, []string{"Player"}, loadConfig(t, fs, libDir).Modules)
	require.Equal(t, before, readFile(t, fs, libDir+"/src/lib.rs"))
}

func TestCreateCommand_RequiresConfig(t *testing.T) {
	fs := library.NewLibraryBuilder(libDir, godotDir).Build()
	fs.SetCurrentDir(godotDir)

	_, err := runCommand(NewCreateCommand(fs, config.NewStore(fs, nil)), "Player")
	require.ErrorIs(t, err, config.ErrConfigMissing)
	require.False(t, fs.Exists(libDir+"/src/player.rs"))
}

func TestDestroyCommand_KeepsOtherModules(t *testing.T) {
	fs := library.NewLibraryBuilder(libDir, godotDir).Build()
	store := config.NewStore(fs, nil)

	for _, name := range []string{"Hello", "World"} {
		_, err := runCommand(NewCreateCommand(fs, store), name)
		require.NoError(t, err)
	}

	_, err := runCommand(NewDestroyCommand(fs, store), "Hello")
	require.NoError(t, err)

	require.Equal(t, []string{"World"}, loadConfig(t, fs, libDir).Modules)

	want, err := codegen.RenderAggregator([]models.ModuleEntry{models.NewModuleEntry("World")}, false)
	require.NoError(t, err)
	aggregator := readFile(t, fs, libDir+"/src/lib.rs")
	require.Equal(t, want, aggregator)
	require.NotContains(t, aggregator, "hello")

	require.False(t, fs.Exists(libDir+"/src/hello.rs"))
	require.False(t, fs.Exists(godotDir+"/hello.gdns"))
	require.True(t, fs.Exists(libDir+"/src/world.rs"))
	require.True(t, fs.Exists(godotDir+"/world.gdns"))
}

func TestDestroyCommand_CreateThenDestroyRestoresAggregator(t *testing.T) {
	fs := library.NewLibraryBuilder(libDir, godotDir).
		AddModule("Player").
		AddModule("Enemy").
		Build()
	store := config.NewStore(fs, nil)
	before := readFile(t, fs, libDir+"/src/lib.rs")

	_, err := runCommand(NewCreateCommand(fs, store), "HUD")
	require.NoError(t, err)
	require.NotEqual(t, before, readFile(t, fs, libDir+"/src/lib.rs"))

	_, err = runCommand(NewDestroyCommand(fs, store), "HUD")
	require.NoError(t, err)
	require.Equal(t, before, readFile(t, fs, libDir+"/src/lib.rs"))
	require.Equal(t, []string{"Player", "Enemy"}, loadConfig(t, fs, libDir).Modules)
}

func TestDestroyCommand_UnknownModule(t *testing.T) {
	fs := library.NewLibraryBuilder(libDir, godotDir).AddModule("Player").Build()
	configBefore := readFile(t, fs, libDir+"/godot-rust-helper.toml")
	aggregatorBefore := readFile(t, fs, libDir+"/src/lib.rs")

	out, err := runCommand(NewDestroyCommand(fs, config.NewStore(fs, nil)), "Ghost")
	require.Error(t, err)
	require.Contains(t, err.Error(), "ghost.rs")
	require.Contains(t, out, "Ghost is not registered")

	require.Equal(t, configBefore, readFile(t, fs, libDir+"/godot-rust-helper.toml"))
	require.Equal(t, aggregatorBefore, readFile(t, fs, libDir+"/src/lib.rs"))
}

func TestDestroyCommand_LastModuleRendersEmptyAggregator(t *testing.T) {
	fs := library.NewLibraryBuilder(libDir, godotDir).AddModule("Player").Build()

	_, err := runCommand(NewDestroyCommand(fs, config.NewStore(fs, nil)), "Player")
	require.NoError(t, err)

	want, err := codegen.RenderAggregator(nil, false)
	require.NoError(t, err)
	require.Equal(t, want, readFile(t, fs, libDir+"/src/lib.rs"))
	require.Empty(t, loadConfig(t, fs, libDir).Modules)
}

func TestCreateCommand_FileNameCollisionKeepsExistingModule(t *testing.T) {
	fs := library.NewLibraryBuilder(libDir, godotDir).AddModule("Hello").Build()
	userCode := "// hand written\npub struct Hello;\n"
	fs.AddFile(libDir+"/src/hello.rs", []byte(userCode))
	aggregatorBefore := readFile(t, fs, libDir+"/src/lib.rs")

	_, err := runCommand(NewCreateCommand(fs, config.NewStore(fs, nil)), "hello")
	var validationErr *models.ValidationError
	require.True(t, errors.As(err, &validationErr), "got %v", err)

	require.Equal(t, userCode, readFile(t, fs, libDir+"/src/hello.rs"))
	require.Equal(t, aggregatorBefore, readFile(t, fs, libDir+"/src/lib.rs"))
	require.Equal(t, []string{"Hello"}, loadConfig(t, fs, libDir).Modules)
}

func TestDestroyCommand_RefusesAnotherModulesFiles(t *testing.T) {
	fs := library.NewLibraryBuilder(libDir, godotDir).AddModule("MainScene").Build()
	configBefore := readFile(t, fs, libDir+"/godot-rust-helper.toml")

	_, err := runCommand(NewDestroyCommand(fs, config.NewStore(fs, nil)), "Main_Scene")
	var validationErr *models.ValidationError
	require.True(t, errors.As(err, &validationErr), "got %v", err)
	require.Contains(t, err.Error(), "MainScene")

	require.True(t, fs.Exists(libDir+"/src/main_scene.rs"))
	require.True(t, fs.Exists(godotDir+"/main_scene.gdns"))
	require.Equal(t, configBefore, readFile(t, fs, libDir+"/godot-rust-helper.toml"))
}
