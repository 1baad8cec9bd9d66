package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jakoblorz/godot-rust-helper/internal/config"
	"github.com/jakoblorz/godot-rust-helper/internal/filesystem"
	"github.com/jakoblorz/godot-rust-helper/internal/toolchain"
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command
func NewRootCommand(fs filesystem.FileSystem, cargo toolchain.Cargo, locker config.Locker) *cobra.Command {
	store := config.NewStore(fs, locker)

	rootCmd := &cobra.Command{
		Use:   "godot-rust-helper",
		Short: "Scaffold and maintain Rust modules for Godot",
		Long: `A CLI tool for building Godot games with Rust through gdnative.

It creates a cargo library wired to a Godot project, generates the glue for
every module you add, and copies the compiled library into the project.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add subcommands
	rootCmd.AddCommand(NewNewCommand(fs, cargo, store))
	rootCmd.AddCommand(NewPluginCommand(fs, cargo, store))
	rootCmd.AddCommand(NewCreateCommand(fs, store))
	rootCmd.AddCommand(NewDestroyCommand(fs, store))
	rootCmd.AddCommand(NewBuildCommand(fs, cargo, store))
	rootCmd.AddCommand(NewWatchCommand(fs, cargo, store))
	rootCmd.AddCommand(NewRebaseCommand(fs, store))
	rootCmd.AddCommand(NewUpdateCommand(fs, store))

	return rootCmd
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	fs := filesystem.NewOSFileSystem()
	cargo := toolchain.NewOSCargo()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand(fs, cargo, config.FileLocker{})

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}

	return nil
}
