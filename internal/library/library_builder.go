package library

import (
	"fmt"
	"path/filepath"

	"github.com/jakoblorz/godot-rust-helper/internal/codegen"
	"github.com/jakoblorz/godot-rust-helper/internal/config"
	"github.com/jakoblorz/godot-rust-helper/internal/filesystem"
	"github.com/jakoblorz/godot-rust-helper/internal/models"
	"github.com/jakoblorz/godot-rust-helper/internal/paths"
	"github.com/jakoblorz/godot-rust-helper/internal/toolchain"
)

// LibraryBuilder helps create test libraries next to a Godot project
type LibraryBuilder struct {
	fs  *filesystem.MockFileSystem
	cfg *models.ProjectConfig
}

// NewLibraryBuilder creates a library at libDir targeting windows, wired to
// the Godot project at godotDir. The current directory is set to libDir.
func NewLibraryBuilder(libDir, godotDir string) *LibraryBuilder {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile(filepath.Join(godotDir, paths.GodotMarker), []byte("config_version=4\n"))
	fs.AddDir(libDir)
	fs.SetCurrentDir(libDir)

	name := filepath.Base(libDir)
	fs.AddFile(filepath.Join(libDir, "Cargo.toml"), []byte(toolchain.MockCargoManifest(name)))

	return &LibraryBuilder{
		fs: fs,
		cfg: &models.ProjectConfig{
			Name:    name,
			Targets: []models.Target{models.TargetWindows},
			Modules: []string{},
			Paths: models.Paths{
				Lib:          libDir,
				Godot:        godotDir,
				Output:       godotDir,
				Nativescript: godotDir,
			},
		},
	}
}

// WithTargets replaces the configured targets
func (lb *LibraryBuilder) WithTargets(targets ...models.Target) *LibraryBuilder {
	lb.cfg.Targets = targets
	return lb
}

// WithOutput sets the directory receiving the .gdnlib
func (lb *LibraryBuilder) WithOutput(dir string) *LibraryBuilder {
	lb.cfg.Paths.Output = dir
	return lb
}

// WithNativescript sets the directory receiving .gdns files
func (lb *LibraryBuilder) WithNativescript(dir string) *LibraryBuilder {
	lb.cfg.Paths.Nativescript = dir
	return lb
}

// AsPlugin marks the library as an editor plugin
func (lb *LibraryBuilder) AsPlugin() *LibraryBuilder {
	lb.cfg.Plugin = true
	return lb
}

// AddModule registers a module; Build writes its stub and descriptor
func (lb *LibraryBuilder) AddModule(name string) *LibraryBuilder {
	lb.cfg.Modules = append(lb.cfg.Modules, name)
	return lb
}

// Config returns the config that Build writes
func (lb *LibraryBuilder) Config() *models.ProjectConfig {
	return lb.cfg
}

// Build writes the config and every generated file, then returns the filesystem
func (lb *LibraryBuilder) Build() *filesystem.MockFileSystem {
	data, err := config.Encode(lb.cfg)
	if err != nil {
		panic(fmt.Sprintf("library builder: %v", err))
	}
	lb.fs.AddFile(config.PathIn(lb.cfg.Paths.Lib), data)

	aggregator, err := codegen.RenderConfigAggregator(lb.cfg)
	if err != nil {
		panic(fmt.Sprintf("library builder: %v", err))
	}
	lb.fs.AddFile(lb.cfg.AggregatorPath(), []byte(aggregator))

	manifest, err := codegen.RenderConfigManifest(lb.cfg)
	if err != nil {
		panic(fmt.Sprintf("library builder: %v", err))
	}
	lb.fs.AddFile(lb.cfg.ManifestPath(), []byte(manifest))

	for _, entry := range lb.cfg.ModuleEntries() {
		stub, err := codegen.RenderModuleStub(entry.DisplayName)
		if err != nil {
			panic(fmt.Sprintf("library builder: %v", err))
		}
		lb.fs.AddFile(lb.cfg.StubPath(entry), []byte(stub))

		descriptor, err := codegen.RenderConfigDescriptor(lb.cfg, entry)
		if err != nil {
			panic(fmt.Sprintf("library builder: %v", err))
		}
		lb.fs.AddFile(lb.cfg.DescriptorPath(entry), []byte(descriptor))
	}

	return lb.fs
}

// FileSystem returns the mock filesystem
func (lb *LibraryBuilder) FileSystem() *filesystem.MockFileSystem {
	return lb.fs
}
