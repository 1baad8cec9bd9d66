package codegen

import (
	"github.com/jakoblorz/godot-rust-helper/internal/models"
)

const (
	baseNode         = "Node"
	baseEditorPlugin = "EditorPlugin"
)

// ManifestEntry is one platform line of a .gdnlib file
type ManifestEntry struct {
	Platform string
	Resource string
}

// PluginInfo describes an editor plugin's plugin.cfg
type PluginInfo struct {
	Name        string
	Description string
	Author      string
	Version     string
	Script      string
}

// RenderAggregator renders src/lib.rs declaring and registering modules in
// the given order. Plugins register tool classes so they run in the editor.
func RenderAggregator(modules []models.ModuleEntry, plugin bool) (string, error) {
	register := "add_class"
	if plugin {
		register = "add_tool_class"
	}

	return execute("aggregator", struct {
		Modules  []models.ModuleEntry
		Register string
	}{
		Modules:  modules,
		Register: register,
	})
}

// RenderModuleStub renders the class skeleton for a new module.
func RenderModuleStub(displayName string) (string, error) {
	return renderStub(displayName, baseNode)
}

// RenderPluginStub renders the skeleton of a plugin's base class.
func RenderPluginStub(displayName string) (string, error) {
	return renderStub(displayName, baseEditorPlugin)
}

func renderStub(name, base string) (string, error) {
	return execute("module_stub", struct {
		Name string
		Base string
	}{
		Name: name,
		Base: base,
	})
}

// ManifestEntries maps targets to their res:// artifact paths, in declared order.
// outputRel is the output directory relative to the Godot root ("" for the root).
func ManifestEntries(name, outputRel string, targets []models.Target) []ManifestEntry {
	entries := make([]ManifestEntry, 0, len(targets))
	for _, t := range targets {
		resource := "res://" + t.ArtifactName(name)
		if outputRel != "" {
			resource = "res://" + outputRel + "/" + t.ArtifactName(name)
		}
		entries = append(entries, ManifestEntry{
			Platform: t.Platform(),
			Resource: resource,
		})
	}
	return entries
}

// RenderLibraryManifest renders the .gdnlib file.
func RenderLibraryManifest(name, outputRel string, targets []models.Target) (string, error) {
	return execute("library_manifest", struct {
		Entries []ManifestEntry
	}{
		Entries: ManifestEntries(name, outputRel, targets),
	})
}

// RenderResourceDescriptor renders a module's .gdns file. manifestRel is the
// directory holding the .gdnlib, relative to the Godot root.
func RenderResourceDescriptor(libraryName, className, manifestRel string) (string, error) {
	resource := "res://" + libraryName + ".gdnlib"
	if manifestRel != "" {
		resource = "res://" + manifestRel + "/" + libraryName + ".gdnlib"
	}

	return execute("resource_descriptor", struct {
		ManifestResource string
		ClassName        string
	}{
		ManifestResource: resource,
		ClassName:        className,
	})
}

// RenderPluginConfig renders an addon's plugin.cfg
func RenderPluginConfig(info PluginInfo) (string, error) {
	return execute("plugin_config", info)
}

// RenderConfigManifest renders the .gdnlib for a stored config.
func RenderConfigManifest(cfg *models.ProjectConfig) (string, error) {
	rel, err := cfg.OutputResourceDir()
	if err != nil {
		return "", err
	}
	return RenderLibraryManifest(cfg.Name, rel, cfg.Targets)
}

// RenderConfigDescriptor renders the .gdns for entry from a stored config.
func RenderConfigDescriptor(cfg *models.ProjectConfig, entry models.ModuleEntry) (string, error) {
	rel, err := cfg.OutputResourceDir()
	if err != nil {
		return "", err
	}
	return RenderResourceDescriptor(cfg.Name, entry.DisplayName, rel)
}

// RenderConfigAggregator renders src/lib.rs for a stored config.
func RenderConfigAggregator(cfg *models.ProjectConfig) (string, error) {
	return RenderAggregator(cfg.ModuleEntries(), cfg.Plugin)
}
