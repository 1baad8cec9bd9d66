package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jakoblorz/godot-rust-helper/internal/config"
	"github.com/jakoblorz/godot-rust-helper/internal/filesystem"
	"github.com/jakoblorz/godot-rust-helper/internal/models"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func runCommand(cmd *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func readFile(t *testing.T, fs *filesystem.MockFileSystem, path string) string {
	t.Helper()

	data, err := fs.ReadFile(path)
	require.NoError(t, err, "expected %s to exist", path)
	return string(data)
}

func loadConfig(t *testing.T, fs *filesystem.MockFileSystem, dir string) *models.ProjectConfig {
	t.Helper()

	cfg, err := config.NewStore(fs, nil).Load(config.PathIn(dir))
	require.NoError(t, err)
	return cfg
}

// sectionLines returns the non-empty lines of a .gdnlib section
func sectionLines(manifest, section string) []string {
	var lines []string
	inSection := false
	for _, line := range strings.Split(manifest, "\n") {
		if strings.HasPrefix(line, "[") {
			inSection = line == "["+section+"]"
			continue
		}
		if inSection && line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
