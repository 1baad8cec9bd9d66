package cli

import (
	"fmt"

	"github.com/jakoblorz/godot-rust-helper/internal/config"
	"github.com/jakoblorz/godot-rust-helper/internal/filesystem"
	"github.com/jakoblorz/godot-rust-helper/internal/library"
	"github.com/jakoblorz/godot-rust-helper/internal/models"
	"github.com/jakoblorz/godot-rust-helper/internal/paths"
	"github.com/spf13/cobra"
)

// RebaseCommand handles the rebase command
type RebaseCommand struct {
	fs    filesystem.FileSystem
	store *config.Store
}

// NewRebaseCommand creates a new rebase command
func NewRebaseCommand(fs filesystem.FileSystem, store *config.Store) *cobra.Command {
	cmd := &RebaseCommand{
		fs:    fs,
		store: store,
	}

	cobraCmd := &cobra.Command{
		Use:   "rebase <godot_project_dir>",
		Short: "Point the library at a moved Godot project",
		Long: `Updates the stored paths after the library or the Godot project moved,
for example after cloning them on another machine.

The library path becomes the current directory and the Godot path becomes
the given directory. Output and nativescript directories that were inside
the old Godot project move along with it. The .gdnlib is written again,
and --targets replaces the configured targets.`,
		Example: `  godot-rust-helper rebase ../platformer
  godot-rust-helper rebase ../platformer --targets windows,linux`,
		Args: cobra.ExactArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().String(targetsFlag, defaultTargets, targetsFlagUsage)

	return cobraCmd
}

// Run executes the rebase command
func (c *RebaseCommand) Run(cmd *cobra.Command, args []string) error {
	targets, replaceTargets, err := targetsFromCmd(cmd)
	if err != nil {
		return err
	}

	lib, err := library.Open(c.fs, c.store)
	if err != nil {
		return err
	}

	resolver := paths.NewResolver(c.fs)
	libDir, err := resolver.Absolute(lib.Root, lib.Root)
	if err != nil {
		return err
	}
	// Relative arguments follow the shell's view of the cwd, symlinks included
	cwd, err := c.fs.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	godotDir, err := resolver.GodotRoot(args[0], cwd)
	if err != nil {
		return err
	}

	if err := lib.Update(func(cfg *models.ProjectConfig) error {
		oldGodot := cfg.Paths.Godot
		cfg.Paths.Lib = libDir
		cfg.Paths.Godot = godotDir
		cfg.Paths.Output = paths.Rebase(cfg.Paths.Output, oldGodot, godotDir)
		cfg.Paths.Nativescript = paths.Rebase(cfg.Paths.Nativescript, oldGodot, godotDir)
		if replaceTargets {
			cfg.Targets = targets
		}
		return nil
	}); err != nil {
		return err
	}

	if err := lib.WriteManifest(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Rebased %s onto %s\n", lib.Config.Name, godotDir)
	fmt.Fprintf(out, "  targets: %v\n", models.TargetStrings(lib.Config.Targets))
	fmt.Fprintf(out, "  gdnlib:  %s\n", lib.Config.ManifestPath())

	return nil
}
