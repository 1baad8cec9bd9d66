package toolchain

import (
	"context"
	"fmt"
	"strings"
)

// Cargo is the slice of cargo the helper drives
type Cargo interface {
	// NewLibrary runs `cargo new <name> --lib` inside parentDir
	NewLibrary(parentDir, name string) error

	// Build runs `cargo build` inside libDir
	Build(libDir string) error

	WithContext(ctx context.Context) Cargo
}

// CommandError reports a cargo invocation that failed to start or exited non-zero
type CommandError struct {
	Args   []string
	Dir    string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s failed in %s: %v", strings.Join(e.Args, " "), e.Dir, e.Err)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
