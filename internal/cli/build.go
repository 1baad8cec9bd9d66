package cli

import (
	"fmt"
	"time"

	"github.com/jakoblorz/godot-rust-helper/internal/config"
	"github.com/jakoblorz/godot-rust-helper/internal/filesystem"
	"github.com/jakoblorz/godot-rust-helper/internal/library"
	"github.com/jakoblorz/godot-rust-helper/internal/models"
	"github.com/jakoblorz/godot-rust-helper/internal/toolchain"
	"github.com/jakoblorz/godot-rust-helper/internal/watcher"
	"github.com/spf13/cobra"
)

// BuildCommand handles the build and watch commands
type BuildCommand struct {
	fs    filesystem.FileSystem
	cargo toolchain.Cargo
	store *config.Store

	// watch forces watch mode regardless of flags
	watch     bool
	host      func() (models.Target, error)
	newSource func(dir string, poll bool) (watcher.Source, error)
}

func newBuildCommand(fs filesystem.FileSystem, cargo toolchain.Cargo, store *config.Store) *BuildCommand {
	return &BuildCommand{
		fs:        fs,
		cargo:     cargo,
		store:     store,
		host:      models.HostTarget,
		newSource: openSource,
	}
}

func openSource(dir string, poll bool) (watcher.Source, error) {
	if poll {
		return watcher.NewPollSource(dir, watcher.DefaultPollInterval)
	}
	return watcher.NewNotifySource(dir)
}

// NewBuildCommand creates a new build command
func NewBuildCommand(fs filesystem.FileSystem, cargo toolchain.Cargo, store *config.Store) *cobra.Command {
	cmd := newBuildCommand(fs, cargo, store)

	cobraCmd := &cobra.Command{
		Use:   "build",
		Short: "Build the library and copy it into the Godot project",
		Long: `Runs cargo build in the library and copies the compiled library for this
machine's platform into the output directory, next to the .gdnlib.

With --watch the library is rebuilt whenever a Rust source below src/ is
written, until interrupted.`,
		Example: `  # Build once
  godot-rust-helper build

  # Rebuild on every change
  godot-rust-helper build --watch`,
		Args: cobra.NoArgs,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().Bool("watch", false, "Rebuild whenever a source file changes")
	cobraCmd.Flags().Bool("poll", false, "Watch by polling instead of OS notifications")

	return cobraCmd
}

// NewWatchCommand creates a new watch command; it behaves like build --watch
func NewWatchCommand(fs filesystem.FileSystem, cargo toolchain.Cargo, store *config.Store) *cobra.Command {
	cmd := newBuildCommand(fs, cargo, store)
	cmd.watch = true

	cobraCmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the library whenever a source file changes",
		Long: `Builds the library once, then watches src/ and rebuilds on every write
to a Rust source. Files ignored by the library's .gitignore are skipped.
Build failures are reported and watching continues; press Ctrl+C to stop.`,
		Args: cobra.NoArgs,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().Bool("poll", false, "Watch by polling instead of OS notifications")

	return cobraCmd
}

// Run executes the build command
func (c *BuildCommand) Run(cmd *cobra.Command, args []string) error {
	watch := c.watch
	if !watch {
		watch, _ = cmd.Flags().GetBool("watch")
	}
	poll, _ := cmd.Flags().GetBool("poll")

	lib, err := library.Open(c.fs, c.store)
	if err != nil {
		return err
	}

	if err := c.build(cmd, lib); err != nil {
		return err
	}

	if !watch {
		return nil
	}

	return c.runWatch(cmd, lib, poll)
}

func (c *BuildCommand) build(cmd *cobra.Command, lib *library.Library) error {
	out := cmd.OutOrStdout()

	host, err := c.host()
	if err != nil {
		return err
	}

	if err := c.cargo.WithContext(cmd.Context()).Build(lib.Config.Paths.Lib); err != nil {
		return fmt.Errorf("failed to build library: %w", err)
	}

	dst, err := lib.InstallArtifact(host)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Copied %s\n", dst)
	if !containsTarget(lib.Config.Targets, host) {
		fmt.Fprintf(out, "⚠️  %s is not in the configured targets, so Godot will not load it; add it with `godot-rust-helper rebase <godot_project_dir> --targets`\n", host)
	}

	return nil
}

func (c *BuildCommand) runWatch(cmd *cobra.Command, lib *library.Library, poll bool) error {
	out := cmd.OutOrStdout()
	root := lib.Config.Paths.Lib

	// Filter and subscription must share a root, or every event lands outside it
	filter, err := watcher.NewFilter(c.fs, root)
	if err != nil {
		return err
	}

	src, err := c.newSource(lib.Config.SourceDir(), poll)
	if err != nil {
		return err
	}
	defer src.Close()

	loop := &watcher.Loop{
		Source: src,
		Filter: filter,
		Build:  func() error { return c.build(cmd, lib) },
		Out:    out,
		Root:   root,
	}
	loop.MarkBuilt(time.Now())

	fmt.Fprintf(out, "👀 Watching %s for changes (Ctrl+C to stop)\n", lib.Config.SourceDir())
	if err := loop.Run(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintln(out, "Stopped watching.")
	return nil
}

func containsTarget(targets []models.Target, target models.Target) bool {
	for _, t := range targets {
		if t == target {
			return true
		}
	}
	return false
}
