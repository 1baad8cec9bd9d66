package models

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/stoewer/go-strcase"
)

// Paths holds the four absolute locations a library works with
type Paths struct {
	// Lib is the cargo project root
	Lib string
	// Godot is the Godot project root containing project.godot
	Godot string
	// Output receives the .gdnlib manifest and the compiled artifact
	Output string
	// Nativescript receives one .gdns descriptor per module
	Nativescript string
}

// ProjectConfig is the persisted description of a library
type ProjectConfig struct {
	Name    string
	Targets []Target
	Modules []string
	Plugin  bool
	Paths   Paths
}

// ModuleEntry pairs a module's class name with its file name stem
type ModuleEntry struct {
	DisplayName    string
	NormalizedName string
}

// NewModuleEntry derives the normalized name for a class name
func NewModuleEntry(displayName string) ModuleEntry {
	return ModuleEntry{
		DisplayName:    displayName,
		NormalizedName: NormalizeName(displayName),
	}
}

// NormalizeName splits a class name on capitalization boundaries and joins the
// lowercased words with underscores: MainScene -> main_scene, HUD -> hud.
func NormalizeName(name string) string {
	return strcase.SnakeCase(strings.TrimSpace(name))
}

// ClassName turns a free-form name like "Directory Browser" into DirectoryBrowser.
func ClassName(name string) string {
	return strcase.UpperCamelCase(strings.TrimSpace(name))
}

// ValidateModuleName rejects names that cannot become a Rust type and file name
func ValidateModuleName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "module name", Reason: "must not be empty"}
	}
	if NormalizeName(name) == "" {
		return &ValidationError{Field: "module name", Value: name, Reason: "must contain letters or digits"}
	}
	return nil
}

// HasModule reports whether name is registered (case-sensitive)
func (c *ProjectConfig) HasModule(name string) bool {
	for _, m := range c.Modules {
		if m == name {
			return true
		}
	}
	return false
}

// FileOwner returns the registered module whose files are named like name's.
// Hello and hello share src/hello.rs, so they cannot both be registered.
func (c *ProjectConfig) FileOwner(name string) (string, bool) {
	normalized := NormalizeName(name)
	for _, m := range c.Modules {
		if NormalizeName(m) == normalized {
			return m, true
		}
	}
	return "", false
}

// AddModule appends a module, rejecting duplicates and names whose files
// would overwrite another module's
func (c *ProjectConfig) AddModule(name string) error {
	if err := ValidateModuleName(name); err != nil {
		return err
	}
	if c.HasModule(name) {
		return &ValidationError{Field: "module name", Value: name, Reason: "a module with the same name already exists"}
	}
	if owner, ok := c.FileOwner(name); ok {
		return &ValidationError{
			Field:  "module name",
			Value:  name,
			Reason: fmt.Sprintf("%s.rs already belongs to module %s", NormalizeName(name), owner),
		}
	}
	c.Modules = append(c.Modules, name)
	return nil
}

// RemoveModule drops every occurrence of name. Returns false if it was not registered.
func (c *ProjectConfig) RemoveModule(name string) bool {
	kept := make([]string, 0, len(c.Modules))
	removed := false
	for _, m := range c.Modules {
		if m == name {
			removed = true
			continue
		}
		kept = append(kept, m)
	}
	c.Modules = kept
	return removed
}

// ModuleEntries returns the registered modules in registration order
func (c *ProjectConfig) ModuleEntries() []ModuleEntry {
	entries := make([]ModuleEntry, 0, len(c.Modules))
	for _, m := range c.Modules {
		entries = append(entries, NewModuleEntry(m))
	}
	return entries
}

// Validate checks the invariants every stored config must satisfy
func (c *ProjectConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	if len(c.Targets) == 0 {
		return &ValidationError{Field: "targets", Reason: "at least one target is required"}
	}
	for _, t := range c.Targets {
		if !t.IsValid() {
			return &ValidationError{Field: "targets", Value: t.String(), Reason: "must be windows, linux, or osx"}
		}
	}

	seen := make(map[string]struct{}, len(c.Modules))
	for _, m := range c.Modules {
		if _, exists := seen[m]; exists {
			return &ValidationError{Field: "modules", Value: m, Reason: "duplicate module"}
		}
		seen[m] = struct{}{}
	}

	paths := []struct{ field, value string }{
		{"paths.lib", c.Paths.Lib},
		{"paths.godot", c.Paths.Godot},
		{"paths.output", c.Paths.Output},
		{"paths.nativescript", c.Paths.Nativescript},
	}
	for _, p := range paths {
		if !filepath.IsAbs(p.value) {
			return &ValidationError{Field: p.field, Value: p.value, Reason: "must be an absolute path"}
		}
	}

	if _, err := c.OutputResourceDir(); err != nil {
		return err
	}

	return nil
}

// OutputResourceDir is the output directory relative to the Godot root, with
// forward slashes, as it appears after res://. The root itself yields "".
// Godot only loads libraries from inside the project, so an output directory
// outside it is rejected.
func (c *ProjectConfig) OutputResourceDir() (string, error) {
	rel, err := filepath.Rel(c.Paths.Godot, c.Paths.Output)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &ValidationError{
			Field:  "paths.output",
			Value:  c.Paths.Output,
			Reason: fmt.Sprintf("must be inside the Godot project %s", c.Paths.Godot),
		}
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}

// ManifestName is the file name of the library's .gdnlib
func (c *ProjectConfig) ManifestName() string {
	return fmt.Sprintf("%s.gdnlib", c.Name)
}

// ManifestPath is where the .gdnlib lives inside the Godot project
func (c *ProjectConfig) ManifestPath() string {
	return filepath.Join(c.Paths.Output, c.ManifestName())
}

// SourceDir is the cargo src directory
func (c *ProjectConfig) SourceDir() string {
	return filepath.Join(c.Paths.Lib, "src")
}

// AggregatorPath is the src/lib.rs file that registers every module
func (c *ProjectConfig) AggregatorPath() string {
	return filepath.Join(c.SourceDir(), "lib.rs")
}

// StubPath is the Rust source file generated for a module
func (c *ProjectConfig) StubPath(entry ModuleEntry) string {
	return filepath.Join(c.SourceDir(), entry.NormalizedName+".rs")
}

// DescriptorPath is the .gdns file generated for a module
func (c *ProjectConfig) DescriptorPath(entry ModuleEntry) string {
	return filepath.Join(c.Paths.Nativescript, entry.NormalizedName+".gdns")
}
