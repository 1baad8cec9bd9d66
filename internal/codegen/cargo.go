package codegen

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultGDNativeVersion is the gdnative release new libraries depend on.
const DefaultGDNativeVersion = "0.9.1"

// HelperExtCrate is the helper extension crate added to every library.
const HelperExtCrate = "godot_rust_helper_ext"

const helperExtRepository = "https://github.com/robertcorponoi/godot_rust_helper_ext"

// Dependency is a Cargo.toml dependency line. Spec holds the raw TOML value.
type Dependency struct {
	Name string
	Spec string
}

// DefaultDependencies returns the dependencies every library needs
func DefaultDependencies(gdnativeVersion string) []Dependency {
	if gdnativeVersion == "" {
		gdnativeVersion = DefaultGDNativeVersion
	}
	return []Dependency{
		{Name: "gdnative", Spec: fmt.Sprintf("%q", gdnativeVersion)},
		{Name: HelperExtCrate, Spec: fmt.Sprintf("{ git = %q }", helperExtRepository)},
	}
}

var (
	dependenciesHeaderRegex = regexp.MustCompile(`(?m)^\[dependencies\][ \t]*\r?\n?`)
	libHeaderRegex          = regexp.MustCompile(`(?m)^\[lib\][ \t]*\r?\n?`)
)

type cargoManifest struct {
	Lib struct {
		CrateType []string `toml:"crate-type"`
	} `toml:"lib"`
	Dependencies map[string]toml.Primitive `toml:"dependencies"`
}

// AmendCargoManifest turns a fresh `cargo new --lib` manifest into a cdylib
// depending on deps. The file is edited in place so the user's formatting
// survives; entries that already exist are left alone.
func AmendCargoManifest(raw []byte, deps []Dependency) ([]byte, error) {
	var manifest cargoManifest
	meta, err := toml.Decode(string(raw), &manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Cargo.toml: %w", err)
	}

	out := raw
	if len(out) > 0 && !bytes.HasSuffix(out, []byte("\n")) {
		out = append(out, '\n')
	}

	if !meta.IsDefined("lib", "crate-type") {
		out = insertCrateType(out, meta.IsDefined("lib"))
	}

	var lines []string
	for _, dep := range deps {
		if meta.IsDefined("dependencies", dep.Name) {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s = %s", dep.Name, dep.Spec))
	}
	if len(lines) > 0 {
		out = insertDependencies(out, lines)
	}

	if _, err := toml.Decode(string(out), &cargoManifest{}); err != nil {
		return nil, fmt.Errorf("amended Cargo.toml is invalid: %w", err)
	}

	return out, nil
}

func insertCrateType(data []byte, hasLibTable bool) []byte {
	line := "crate-type = [\"cdylib\"]\n"

	if hasLibTable {
		loc := libHeaderRegex.FindIndex(data)
		if loc != nil {
			return splice(data, loc[1], ensureLeadingNewline(data, loc[1], line))
		}
	}

	section := "[lib]\n" + line + "\n"
	if loc := dependenciesHeaderRegex.FindIndex(data); loc != nil {
		return splice(data, loc[0], section)
	}

	return append(data, []byte(separated(data, section))...)
}

func insertDependencies(data []byte, lines []string) []byte {
	block := strings.Join(lines, "\n") + "\n"

	if loc := dependenciesHeaderRegex.FindIndex(data); loc != nil {
		return splice(data, loc[1], ensureLeadingNewline(data, loc[1], block))
	}

	return append(data, []byte(separated(data, "[dependencies]\n"+block))...)
}

// ensureLeadingNewline handles a header that is the last line without a newline.
func ensureLeadingNewline(data []byte, at int, text string) string {
	if at > 0 && data[at-1] != '\n' {
		return "\n" + text
	}
	return text
}

// separated prefixes a blank line when appending a section to a non-empty file.
func separated(data []byte, section string) string {
	if len(data) == 0 || bytes.HasSuffix(data, []byte("\n\n")) {
		return section
	}
	return "\n" + section
}

func splice(data []byte, at int, text string) []byte {
	out := make([]byte, 0, len(data)+len(text))
	out = append(out, data[:at]...)
	out = append(out, text...)
	out = append(out, data[at:]...)
	return out
}
