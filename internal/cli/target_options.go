package cli

import (
	"strings"

	"github.com/jakoblorz/godot-rust-helper/internal/models"
	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"
)

const (
	targetsFlag       = "targets"
	defaultTargets    = "windows"
	gdnativeFlag      = "gdnative-version"
	outputPathFlag    = "output-path"
	nativescriptFlag  = "nativescript-path"
	targetsFlagUsage  = "Comma separated platforms to build for: windows, linux, osx"
	gdnativeFlagUsage = "gdnative version added to Cargo.toml"
	outputPathUsage   = "Directory for the .gdnlib and compiled library (default: Godot project root)"
	nativescriptUsage = "Directory for the .gdns files (default: Godot project root)"
)

// targetsFromCmd parses --targets. The second result is false when the flag
// was left at its default.
func targetsFromCmd(cmd *cobra.Command) ([]models.Target, bool, error) {
	flag := cmd.Flag(targetsFlag)
	if flag == nil {
		return nil, false, nil
	}

	targets, err := models.ParseTargets(flag.Value.String())
	if err != nil {
		return nil, false, err
	}

	return targets, flag.Changed, nil
}

// validateVersion accepts versions with or without the leading v, such as 0.9.1 or 1.0
func validateVersion(field, version string) error {
	v := strings.TrimSpace(version)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}

	if !semver.IsValid(v) {
		return &models.ValidationError{
			Field:  field,
			Value:  version,
			Reason: "not a semantic version",
		}
	}
	return nil
}
