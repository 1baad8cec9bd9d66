package library

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jakoblorz/godot-rust-helper/internal/codegen"
	"github.com/jakoblorz/godot-rust-helper/internal/config"
	"github.com/jakoblorz/godot-rust-helper/internal/filesystem"
	"github.com/jakoblorz/godot-rust-helper/internal/models"
	"github.com/jakoblorz/godot-rust-helper/internal/paths"
)

// ErrArtifactMissing is returned when cargo finished but the expected library file is absent
var ErrArtifactMissing = errors.New("build artifact not found")

// Library is a cargo project managed by a godot-rust-helper.toml
type Library struct {
	fs       filesystem.FileSystem
	store    *config.Store
	resolver *paths.Resolver

	Root       string
	ConfigPath string
	Config     *models.ProjectConfig
}

// Locate finds the library rooted at the current directory without loading its
// config. Root is canonical, so a symlinked cwd matches the stored paths.
func Locate(fs filesystem.FileSystem, store *config.Store) (*Library, error) {
	cwd, err := fs.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	if !store.Exists(cwd) {
		return nil, config.ErrConfigMissing
	}
	if resolved, err := fs.EvalSymlinks(cwd); err == nil {
		cwd = resolved
	}

	return &Library{
		fs:         fs,
		store:      store,
		resolver:   paths.NewResolver(fs),
		Root:       cwd,
		ConfigPath: config.PathIn(cwd),
	}, nil
}

// Open locates the library in the current directory and loads its config
func Open(fs filesystem.FileSystem, store *config.Store) (*Library, error) {
	lib, err := Locate(fs, store)
	if err != nil {
		return nil, err
	}

	cfg, err := store.Load(lib.ConfigPath)
	if err != nil {
		return nil, err
	}
	lib.Config = cfg

	return lib, nil
}

// New wraps a config that has not been written yet
func New(fs filesystem.FileSystem, store *config.Store, cfg *models.ProjectConfig) *Library {
	return &Library{
		fs:         fs,
		store:      store,
		resolver:   paths.NewResolver(fs),
		Root:       cfg.Paths.Lib,
		ConfigPath: config.PathIn(cfg.Paths.Lib),
		Config:     cfg,
	}
}

// Save writes the in-memory config
func (l *Library) Save() error {
	return l.store.Save(l.Config, l.ConfigPath)
}

// Update applies fn to the config on disk under the config lock and keeps
// the result. The in-memory config is unchanged if fn fails.
func (l *Library) Update(fn func(cfg *models.ProjectConfig) error) error {
	cfg, err := l.store.Update(l.ConfigPath, fn)
	if err != nil {
		return err
	}
	l.Config = cfg
	return nil
}

// WriteAggregator renders src/lib.rs from the registered modules
func (l *Library) WriteAggregator() error {
	content, err := codegen.RenderConfigAggregator(l.Config)
	if err != nil {
		return err
	}
	return l.write(l.Config.AggregatorPath(), content)
}

// WriteManifest renders the .gdnlib into the output directory
func (l *Library) WriteManifest() error {
	content, err := codegen.RenderConfigManifest(l.Config)
	if err != nil {
		return err
	}

	if err := l.fs.MkdirAll(l.Config.Paths.Output, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	return l.write(l.Config.ManifestPath(), content)
}

// WriteModuleStub writes src/<module>.rs. Plugin base classes extend EditorPlugin.
func (l *Library) WriteModuleStub(entry models.ModuleEntry, pluginBase bool) error {
	render := codegen.RenderModuleStub
	if pluginBase {
		render = codegen.RenderPluginStub
	}

	content, err := render(entry.DisplayName)
	if err != nil {
		return err
	}
	return l.write(l.Config.StubPath(entry), content)
}

// WriteDescriptor writes the module's .gdns into the nativescript directory
func (l *Library) WriteDescriptor(entry models.ModuleEntry) error {
	content, err := codegen.RenderConfigDescriptor(l.Config, entry)
	if err != nil {
		return err
	}
	return l.write(l.Config.DescriptorPath(entry), content)
}

// RemoveModuleFiles deletes a module's stub and descriptor. A missing stub is
// an error; a missing descriptor is not.
func (l *Library) RemoveModuleFiles(entry models.ModuleEntry) error {
	stub := l.Config.StubPath(entry)
	if err := l.fs.Remove(stub); err != nil {
		return fmt.Errorf("failed to remove %s: %w", stub, err)
	}

	descriptor := l.Config.DescriptorPath(entry)
	if l.fs.Exists(descriptor) {
		if err := l.fs.Remove(descriptor); err != nil {
			return fmt.Errorf("failed to remove %s: %w", descriptor, err)
		}
	}

	return nil
}

// ArtifactPath locates the debug build of the library for target. Workspace
// members build into the workspace's target directory, so the search starts
// at the library and climbs to the nearest Cargo.lock.
func (l *Library) ArtifactPath(target models.Target) string {
	cargoRoot := l.resolver.FindAncestorWith("Cargo.lock", l.Config.Paths.Lib)
	return filepath.Join(cargoRoot, "target", "debug", target.ArtifactName(l.Config.Name))
}

// InstallArtifact copies the compiled library for target into the output directory
func (l *Library) InstallArtifact(target models.Target) (string, error) {
	src := l.ArtifactPath(target)
	if !l.fs.Exists(src) {
		return "", fmt.Errorf("%w: %s", ErrArtifactMissing, src)
	}

	data, err := l.fs.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", src, err)
	}

	if err := l.fs.MkdirAll(l.Config.Paths.Output, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	dst := filepath.Join(l.Config.Paths.Output, target.ArtifactName(l.Config.Name))
	if err := l.fs.WriteFile(dst, data, 0755); err != nil {
		return "", fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}

	return dst, nil
}

func (l *Library) write(path, content string) error {
	if err := l.fs.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
