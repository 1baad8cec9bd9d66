package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jakoblorz/godot-rust-helper/internal/codegen"
	"github.com/jakoblorz/godot-rust-helper/internal/config"
	"github.com/jakoblorz/godot-rust-helper/internal/filesystem"
	"github.com/jakoblorz/godot-rust-helper/internal/models"
	"github.com/jakoblorz/godot-rust-helper/internal/toolchain"
	"github.com/spf13/cobra"
)

// PluginCommand handles the plugin command
type PluginCommand struct {
	fs    filesystem.FileSystem
	cargo toolchain.Cargo
	store *config.Store
}

// NewPluginCommand creates a new plugin command
func NewPluginCommand(fs filesystem.FileSystem, cargo toolchain.Cargo, store *config.Store) *cobra.Command {
	cmd := &PluginCommand{
		fs:    fs,
		cargo: cargo,
		store: store,
	}

	cobraCmd := &cobra.Command{
		Use:   "plugin <plugin_name> <destination> <godot_project_dir>",
		Short: "Create a Rust library for a Godot editor plugin",
		Long: `Creates a library like 'new' does, set up as an editor plugin.

Generated files go to addons/<plugin_name> inside the Godot project, together
with a plugin.cfg. The plugin's base class is registered as a module that
extends EditorPlugin, and every module is registered as a tool class so it
runs inside the editor.`,
		Example: `  godot-rust-helper plugin "Directory Browser" directory_browser platformer \
    --description "Browse the project from a dock" --author "Jane Doe"`,
		Args: cobra.ExactArgs(3),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().String("description", "", "Description written to plugin.cfg")
	cobraCmd.Flags().String("author", "", "Author written to plugin.cfg")
	cobraCmd.Flags().String("version", "1.0", "Plugin version written to plugin.cfg")
	cobraCmd.Flags().String(targetsFlag, defaultTargets, targetsFlagUsage)
	cobraCmd.Flags().String(gdnativeFlag, codegen.DefaultGDNativeVersion, gdnativeFlagUsage)

	return cobraCmd
}

// Run executes the plugin command
func (c *PluginCommand) Run(cmd *cobra.Command, args []string) error {
	description, _ := cmd.Flags().GetString("description")
	author, _ := cmd.Flags().GetString("author")
	version, _ := cmd.Flags().GetString("version")
	gdnativeVersion, _ := cmd.Flags().GetString(gdnativeFlag)

	pluginName := strings.TrimSpace(args[0])
	if err := models.ValidateModuleName(pluginName); err != nil {
		return err
	}
	className := models.ClassName(pluginName)
	base := models.NewModuleEntry(className)

	libDir, godotDir, _, err := resolveDestination(c.fs, args[1], args[2])
	if err != nil {
		return err
	}

	targets, _, err := targetsFromCmd(cmd)
	if err != nil {
		return err
	}
	if err := validateVersion("plugin version", version); err != nil {
		return err
	}
	if err := validateVersion(gdnativeFlag, gdnativeVersion); err != nil {
		return err
	}

	addonDir := filepath.Join(godotDir, "addons", base.NormalizedName)
	cfg := &models.ProjectConfig{
		Name:    filepath.Base(libDir),
		Targets: targets,
		Modules: []string{},
		Plugin:  true,
		Paths: models.Paths{
			Lib:          libDir,
			Godot:        godotDir,
			Output:       addonDir,
			Nativescript: addonDir,
		},
	}
	if err := cfg.AddModule(className); err != nil {
		return err
	}

	_, err = scaffoldLibrary(cmd, c.fs, c.cargo, c.store, scaffoldRequest{
		Config:          cfg,
		GDNativeVersion: gdnativeVersion,
		Plugin: &codegen.PluginInfo{
			Name:        pluginName,
			Description: description,
			Author:      author,
			Version:     version,
			Script:      filepath.Base(cfg.DescriptorPath(base)),
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Enable %s under Project Settings > Plugins after the first build\n", pluginName)
	return nil
}
