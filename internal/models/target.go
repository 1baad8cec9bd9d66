package models

import (
	"fmt"
	"runtime"
	"strings"
)

// Target represents a platform the library is built for
type Target string

const (
	// TargetWindows builds a .dll without lib prefix
	TargetWindows Target = "windows"

	// TargetLinux builds a lib<name>.so
	TargetLinux Target = "linux"

	// TargetOSX builds a lib<name>.dylib
	TargetOSX Target = "osx"
)

// AllTargets returns every supported target in canonical order
func AllTargets() []Target {
	return []Target{TargetWindows, TargetLinux, TargetOSX}
}

// IsValid checks if the target is one of the supported platforms
func (t Target) IsValid() bool {
	switch t {
	case TargetWindows, TargetLinux, TargetOSX:
		return true
	default:
		return false
	}
}

// String returns the string representation of Target
func (t Target) String() string {
	return string(t)
}

// Platform returns the identifier Godot uses for the target in .gdnlib files.
func (t Target) Platform() string {
	switch t {
	case TargetWindows:
		return "Windows.64"
	case TargetLinux:
		return "X11.64"
	case TargetOSX:
		return "OSX.64"
	default:
		return ""
	}
}

// ArtifactName returns the file name cargo produces for a cdylib named lib on
// this target. Cargo replaces dashes in crate names with underscores.
func (t Target) ArtifactName(lib string) string {
	lib = strings.ReplaceAll(lib, "-", "_")
	switch t {
	case TargetWindows:
		return lib + ".dll"
	case TargetLinux:
		return "lib" + lib + ".so"
	case TargetOSX:
		return "lib" + lib + ".dylib"
	default:
		return lib
	}
}

// ParseTarget parses a string into a Target
func ParseTarget(s string) (Target, error) {
	t := Target(strings.TrimSpace(s))
	if !t.IsValid() {
		return "", &ValidationError{
			Field:  "targets",
			Value:  s,
			Reason: "must be windows, linux, or osx",
		}
	}
	return t, nil
}

// ParseTargets parses a comma separated list such as "windows,linux".
// Order is preserved and duplicates are kept as given.
func ParseTargets(s string) ([]Target, error) {
	if strings.TrimSpace(s) == "" {
		return nil, &ValidationError{Field: "targets", Value: s, Reason: "at least one target is required"}
	}

	parts := strings.Split(s, ",")
	return ParseTargetList(parts)
}

// ParseTargetList parses already split target names.
func ParseTargetList(names []string) ([]Target, error) {
	if len(names) == 0 {
		return nil, &ValidationError{Field: "targets", Reason: "at least one target is required"}
	}

	targets := make([]Target, 0, len(names))
	for _, name := range names {
		t, err := ParseTarget(name)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// TargetStrings converts targets back to plain strings.
func TargetStrings(targets []Target) []string {
	out := make([]string, len(targets))
	for i, t := range targets {
		out[i] = t.String()
	}
	return out
}

// HostTarget returns the target matching the operating system this binary runs on.
func HostTarget() (Target, error) {
	return targetForGOOS(runtime.GOOS)
}

func targetForGOOS(goos string) (Target, error) {
	switch goos {
	case "windows":
		return TargetWindows, nil
	case "darwin":
		return TargetOSX, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return TargetLinux, nil
	default:
		return "", fmt.Errorf("unsupported host operating system: %s", goos)
	}
}
