package cli

import (
	"fmt"

	"github.com/jakoblorz/godot-rust-helper/internal/codegen"
	"github.com/jakoblorz/godot-rust-helper/internal/config"
	"github.com/jakoblorz/godot-rust-helper/internal/filesystem"
	"github.com/jakoblorz/godot-rust-helper/internal/library"
	"github.com/spf13/cobra"
)

// UpdateCommand handles the update command
type UpdateCommand struct {
	fs    filesystem.FileSystem
	store *config.Store
}

// NewUpdateCommand creates a new update command
func NewUpdateCommand(fs filesystem.FileSystem, store *config.Store) *cobra.Command {
	cmd := &UpdateCommand{
		fs:    fs,
		store: store,
	}

	cobraCmd := &cobra.Command{
		Use:   "update",
		Short: "Upgrade a library created by an older release",
		Long: `Rewrites godot-rust-helper.toml in the current layout and renames the old
helper extensions crate in Cargo.toml and src/*.rs.

Every upgrade step writes a complete config, so an interrupted update can
simply be run again. A library that is already current is left untouched.`,
		Example: `  godot-rust-helper update
  godot-rust-helper update --backup --output-path ../platformer/bin`,
		Args: cobra.NoArgs,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().String(outputPathFlag, "", "Output directory for libraries whose config predates output paths (relative to the library)")
	cobraCmd.Flags().Bool("backup", false, "Keep a copy of the original config before rewriting it")

	return cobraCmd
}

// Run executes the update command
func (c *UpdateCommand) Run(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString(outputPathFlag)
	backup, _ := cmd.Flags().GetBool("backup")

	// Locate rather than Open: the config may not load in its current layout
	lib, err := library.Locate(c.fs, c.store)
	if err != nil {
		return err
	}

	migrator := config.NewMigrator(c.fs, c.store)
	result, err := migrator.Migrate(lib.ConfigPath, config.MigrateOptions{
		OutputPath: outputPath,
		Backup:     backup,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.BackupPath != "" {
		fmt.Fprintf(out, "💾 Backed up config to %s\n", result.BackupPath)
	}
	for _, step := range result.Steps {
		fmt.Fprintf(out, "✓ %s\n", step)
	}

	renamed, err := migrator.RenameLegacyDependency(lib.Root, codegen.HelperExtCrate)
	if err != nil {
		return err
	}
	for _, file := range renamed {
		fmt.Fprintf(out, "✓ Renamed %s to %s in %s\n", config.LegacyHelperCrate, codegen.HelperExtCrate, file)
	}

	switch {
	case result.Changed():
		fmt.Fprintf(out, "✓ Updated %s from the %s layout\n", lib.ConfigPath, result.From)
	case len(renamed) == 0:
		fmt.Fprintln(out, "✓ Already up to date")
	}
	return nil
}
