package cli

import (
	"fmt"
	"path/filepath"

	"github.com/jakoblorz/godot-rust-helper/internal/codegen"
	"github.com/jakoblorz/godot-rust-helper/internal/config"
	"github.com/jakoblorz/godot-rust-helper/internal/filesystem"
	"github.com/jakoblorz/godot-rust-helper/internal/models"
	"github.com/jakoblorz/godot-rust-helper/internal/paths"
	"github.com/jakoblorz/godot-rust-helper/internal/toolchain"
	"github.com/jakoblorz/godot-rust-helper/internal/tui/setup"
	"github.com/spf13/cobra"
)

// NewCommand handles the new command
type NewCommand struct {
	fs     filesystem.FileSystem
	cargo  toolchain.Cargo
	store  *config.Store
	prompt func(defaults setup.Result) (*setup.Result, error)
}

// NewNewCommand creates a new new command
func NewNewCommand(fs filesystem.FileSystem, cargo toolchain.Cargo, store *config.Store) *cobra.Command {
	cmd := &NewCommand{
		fs:    fs,
		cargo: cargo,
		store: store,
		prompt: func(defaults setup.Result) (*setup.Result, error) {
			return setup.NewFlow().Run(defaults)
		},
	}

	cobraCmd := &cobra.Command{
		Use:   "new <destination> <godot_project_dir>",
		Short: "Create a Rust library for a Godot project",
		Long: `Creates a cargo library at the destination and wires it to the Godot project.

The library's Cargo.toml is set up as a cdylib depending on gdnative, the
.gdnlib is written into the output directory, and a godot-rust-helper.toml
records where everything lives. Run the other commands from inside the
library directory.`,
		Example: `  # Library for windows only, files in the Godot project root
  godot-rust-helper new platformer_modules platformer

  # Build for every platform and keep generated files in subfolders
  godot-rust-helper new platformer_modules platformer \
    --targets windows,linux,osx --output-path platformer/bin --nativescript-path platformer/scripts`,
		Args: cobra.ExactArgs(2),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().String(targetsFlag, defaultTargets, targetsFlagUsage)
	cobraCmd.Flags().String(outputPathFlag, "", outputPathUsage)
	cobraCmd.Flags().String(nativescriptFlag, "", nativescriptUsage)
	cobraCmd.Flags().String(gdnativeFlag, codegen.DefaultGDNativeVersion, gdnativeFlagUsage)
	cobraCmd.Flags().BoolP("interactive", "i", false, "Choose targets and locations interactively")

	return cobraCmd
}

// Run executes the new command
func (c *NewCommand) Run(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString(outputPathFlag)
	nativescriptPath, _ := cmd.Flags().GetString(nativescriptFlag)
	gdnativeVersion, _ := cmd.Flags().GetString(gdnativeFlag)
	interactive, _ := cmd.Flags().GetBool("interactive")

	libDir, godotDir, cwd, err := resolveDestination(c.fs, args[0], args[1])
	if err != nil {
		return err
	}

	targets, _, err := targetsFromCmd(cmd)
	if err != nil {
		return err
	}

	if err := validateVersion(gdnativeFlag, gdnativeVersion); err != nil {
		return err
	}

	if interactive {
		answers, err := c.prompt(setup.Result{
			Targets:          targets,
			OutputPath:       outputPath,
			NativescriptPath: nativescriptPath,
		})
		if err != nil {
			return fmt.Errorf("failed to run setup: %w", err)
		}
		if answers == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
		targets = answers.Targets
		outputPath = answers.OutputPath
		nativescriptPath = answers.NativescriptPath
	}

	resolver := paths.NewResolver(c.fs)
	output, err := resolver.AbsoluteOr(outputPath, cwd, godotDir)
	if err != nil {
		return err
	}
	nativescript, err := resolver.AbsoluteOr(nativescriptPath, cwd, godotDir)
	if err != nil {
		return err
	}

	cfg := &models.ProjectConfig{
		Name:    filepath.Base(libDir),
		Targets: targets,
		Modules: []string{},
		Paths: models.Paths{
			Lib:          libDir,
			Godot:        godotDir,
			Output:       output,
			Nativescript: nativescript,
		},
	}

	_, err = scaffoldLibrary(cmd, c.fs, c.cargo, c.store, scaffoldRequest{
		Config:          cfg,
		GDNativeVersion: gdnativeVersion,
	})
	return err
}
