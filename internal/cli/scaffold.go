package cli

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jakoblorz/godot-rust-helper/internal/codegen"
	"github.com/jakoblorz/godot-rust-helper/internal/config"
	"github.com/jakoblorz/godot-rust-helper/internal/filesystem"
	"github.com/jakoblorz/godot-rust-helper/internal/library"
	"github.com/jakoblorz/godot-rust-helper/internal/models"
	"github.com/jakoblorz/godot-rust-helper/internal/paths"
	"github.com/jakoblorz/godot-rust-helper/internal/toolchain"
	"github.com/jakoblorz/godot-rust-helper/internal/tui"
	"github.com/spf13/cobra"
)

// scaffoldRequest describes a library that does not exist yet
type scaffoldRequest struct {
	Config          *models.ProjectConfig
	GDNativeVersion string

	// Plugin is set for editor plugins; every registered module then gets
	// an EditorPlugin stub and plugin.cfg is written next to the .gdns files
	Plugin *codegen.PluginInfo
}

// resolveDestination checks that the library directory is free and the Godot
// project is real
func resolveDestination(fs filesystem.FileSystem, destination, godotDir string) (lib, godot, cwd string, err error) {
	cwd, err = fs.Getwd()
	if err != nil {
		return "", "", "", fmt.Errorf("failed to get current directory: %w", err)
	}

	resolver := paths.NewResolver(fs)
	lib, err = resolver.Absolute(destination, cwd)
	if err != nil {
		return "", "", "", err
	}
	if fs.Exists(lib) {
		return "", "", "", &models.ValidationError{Field: "destination", Value: destination, Reason: "already exists"}
	}

	godot, err = resolver.GodotRoot(godotDir, cwd)
	if err != nil {
		return "", "", "", err
	}

	return lib, godot, cwd, nil
}

// scaffoldLibrary creates the cargo project and every generated file. Steps
// are not rolled back: a failure leaves whatever was created so far.
func scaffoldLibrary(cmd *cobra.Command, fs filesystem.FileSystem, cargo toolchain.Cargo, store *config.Store, req scaffoldRequest) (*library.Library, error) {
	cfg := req.Config
	out := cmd.OutOrStdout()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := cargo.WithContext(cmd.Context())
	if err := client.NewLibrary(filepath.Dir(cfg.Paths.Lib), filepath.Base(cfg.Paths.Lib)); err != nil {
		return nil, fmt.Errorf("failed to create cargo library: %w", err)
	}

	manifestPath := filepath.Join(cfg.Paths.Lib, "Cargo.toml")
	raw, err := fs.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", manifestPath, err)
	}
	amended, err := codegen.AmendCargoManifest(raw, codegen.DefaultDependencies(req.GDNativeVersion))
	if err != nil {
		return nil, err
	}
	if err := fs.WriteFile(manifestPath, amended, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", manifestPath, err)
	}

	if err := ignoreLockFile(fs, cfg.Paths.Lib); err != nil {
		return nil, err
	}

	lib := library.New(fs, store, cfg)
	if err := lib.Save(); err != nil {
		return nil, fmt.Errorf("failed to write config: %w", err)
	}

	for _, dir := range []string{cfg.Paths.Output, cfg.Paths.Nativescript} {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if err := lib.WriteAggregator(); err != nil {
		return nil, err
	}
	if err := lib.WriteManifest(); err != nil {
		return nil, err
	}

	if req.Plugin != nil {
		for _, entry := range cfg.ModuleEntries() {
			if err := lib.WriteModuleStub(entry, true); err != nil {
				return nil, err
			}
			if err := lib.WriteDescriptor(entry); err != nil {
				return nil, err
			}
		}

		content, err := codegen.RenderPluginConfig(*req.Plugin)
		if err != nil {
			return nil, err
		}
		pluginCfg := filepath.Join(cfg.Paths.Nativescript, "plugin.cfg")
		if err := fs.WriteFile(pluginCfg, []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", pluginCfg, err)
		}
	}

	fmt.Fprintln(out, tui.SuccessStyle.Render("✓ Created "+cfg.Paths.Lib))
	fmt.Fprintf(out, "  targets:      %v\n", models.TargetStrings(cfg.Targets))
	fmt.Fprintf(out, "  gdnlib:       %s\n", tui.SubtleStyle.Render(cfg.ManifestPath()))
	fmt.Fprintf(out, "  nativescript: %s\n", tui.SubtleStyle.Render(cfg.Paths.Nativescript))

	return lib, nil
}

// ignoreLockFile keeps the config lock out of version control
func ignoreLockFile(fs filesystem.FileSystem, libDir string) error {
	ignorePath := filepath.Join(libDir, ".gitignore")
	entry := "/" + config.FileName + config.LockSuffix

	var existing []byte
	if fs.Exists(ignorePath) {
		data, err := fs.ReadFile(ignorePath)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", ignorePath, err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) == entry {
				return nil
			}
		}
		existing = data
	}

	if len(existing) > 0 && !bytes.HasSuffix(existing, []byte("\n")) {
		existing = append(existing, '\n')
	}
	content := append(existing, []byte(entry+"\n")...)
	if err := fs.WriteFile(ignorePath, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", ignorePath, err)
	}
	return nil
}
