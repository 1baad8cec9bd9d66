package cli

import (
	"fmt"

	"github.com/jakoblorz/godot-rust-helper/internal/config"
	"github.com/jakoblorz/godot-rust-helper/internal/filesystem"
	"github.com/jakoblorz/godot-rust-helper/internal/library"
	"github.com/jakoblorz/godot-rust-helper/internal/models"
	"github.com/jakoblorz/godot-rust-helper/internal/tui"
	"github.com/spf13/cobra"
)

// CreateCommand handles the create command
type CreateCommand struct {
	fs    filesystem.FileSystem
	store *config.Store
}

// NewCreateCommand creates a new create command
func NewCreateCommand(fs filesystem.FileSystem, store *config.Store) *cobra.Command {
	cmd := &CreateCommand{
		fs:    fs,
		store: store,
	}

	cobraCmd := &cobra.Command{
		Use:   "create <ClassName>",
		Short: "Add a module to the library",
		Long: `Registers a new class with the library.

Writes src/<class_name>.rs with a Node based class, registers it in
src/lib.rs, and writes <class_name>.gdns into the nativescript directory so
the class can be attached to nodes in Godot.`,
		Example: `  godot-rust-helper create Player
  godot-rust-helper create MainScene`,
		Args: cobra.ExactArgs(1),
		RunE: cmd.Run,
	}

	return cobraCmd
}

// Run executes the create command
func (c *CreateCommand) Run(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := models.ValidateModuleName(name); err != nil {
		return err
	}

	lib, err := library.Open(c.fs, c.store)
	if err != nil {
		return err
	}

	if err := lib.Update(func(cfg *models.ProjectConfig) error {
		return cfg.AddModule(name)
	}); err != nil {
		return err
	}

	entry := models.NewModuleEntry(name)
	if err := lib.WriteAggregator(); err != nil {
		return err
	}
	if err := lib.WriteModuleStub(entry, false); err != nil {
		return err
	}
	if err := lib.WriteDescriptor(entry); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, tui.SuccessStyle.Render("✓ Created module "+name))
	fmt.Fprintf(out, "  source: %s\n", tui.SubtleStyle.Render(lib.Config.StubPath(entry)))
	fmt.Fprintf(out, "  script: %s\n", tui.SubtleStyle.Render(lib.Config.DescriptorPath(entry)))

	return nil
}
