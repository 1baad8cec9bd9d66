package cli

import (
	"fmt"

	"github.com/jakoblorz/godot-rust-helper/internal/config"
	"github.com/jakoblorz/godot-rust-helper/internal/filesystem"
	"github.com/jakoblorz/godot-rust-helper/internal/library"
	"github.com/jakoblorz/godot-rust-helper/internal/models"
	"github.com/spf13/cobra"
)

// DestroyCommand handles the destroy command
type DestroyCommand struct {
	fs    filesystem.FileSystem
	store *config.Store
}

// NewDestroyCommand creates a new destroy command
func NewDestroyCommand(fs filesystem.FileSystem, store *config.Store) *cobra.Command {
	cmd := &DestroyCommand{
		fs:    fs,
		store: store,
	}

	cobraCmd := &cobra.Command{
		Use:   "destroy <ClassName>",
		Short: "Remove a module from the library",
		Long: `Unregisters a class and deletes its generated files.

The class is dropped from the config and from src/lib.rs, then its source
file and .gdns are deleted. A name that was never registered leaves the
config alone, but the command still fails because there is no source file
to delete.`,
		Example: `  godot-rust-helper destroy Player`,
		Args:    cobra.ExactArgs(1),
		RunE:    cmd.Run,
	}

	return cobraCmd
}

// Run executes the destroy command
func (c *DestroyCommand) Run(cmd *cobra.Command, args []string) error {
	name := args[0]

	lib, err := library.Open(c.fs, c.store)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if owner, ok := lib.Config.FileOwner(name); ok && owner != name {
		return &models.ValidationError{
			Field:  "module name",
			Value:  name,
			Reason: fmt.Sprintf("not registered; its files belong to module %s", owner),
		}
	}

	if lib.Config.HasModule(name) {
		if err := lib.Update(func(cfg *models.ProjectConfig) error {
			cfg.RemoveModule(name)
			return nil
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "⚠️  %s is not registered\n", name)
	}

	if err := lib.WriteAggregator(); err != nil {
		return err
	}

	entry := models.NewModuleEntry(name)
	if err := lib.RemoveModuleFiles(entry); err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Destroyed module %s\n", name)
	return nil
}
