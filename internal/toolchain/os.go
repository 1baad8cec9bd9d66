package toolchain

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/gookit/color"
)

// CargoEnvVar overrides the cargo executable
const CargoEnvVar = "GODOT_RUST_HELPER_CARGO"

// OSCargo implements Cargo by running the real cargo binary
type OSCargo struct {
	ctx    context.Context
	binary string
	out    io.Writer
}

// NewOSCargo creates an OSCargo writing cargo's output to stdout
func NewOSCargo() *OSCargo {
	binary := os.Getenv(CargoEnvVar)
	if binary == "" {
		binary = "cargo"
	}

	return &OSCargo{
		ctx:    context.Background(),
		binary: binary,
		out:    os.Stdout,
	}
}

// WithContext returns a new client with the given context
func (c *OSCargo) WithContext(ctx context.Context) Cargo {
	return &OSCargo{
		ctx:    ctx,
		binary: c.binary,
		out:    c.out,
	}
}

// WithOutput returns a copy that streams cargo's output to w
func (c *OSCargo) WithOutput(w io.Writer) *OSCargo {
	return &OSCargo{
		ctx:    c.ctx,
		binary: c.binary,
		out:    w,
	}
}

func (c *OSCargo) NewLibrary(parentDir, name string) error {
	return c.run(parentDir, "new", name, "--lib")
}

func (c *OSCargo) Build(libDir string) error {
	return c.run(libDir, "build")
}

func (c *OSCargo) run(dir string, args ...string) error {
	cmdStr := c.binary + " " + strings.Join(args, " ")
	color.Fprintf(c.out, "Running cmd <grey>%s</>\n", cmdStr)
	startTime := time.Now()

	cmd := exec.CommandContext(c.ctx, c.binary, args...) // #nosec G204
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stdout = c.out
	cmd.Stderr = io.MultiWriter(c.out, &stderr)

	if err := cmd.Run(); err != nil {
		return &CommandError{
			Args:   append([]string{c.binary}, args...),
			Dir:    dir,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	color.Fprintf(c.out, "Running cmd <grey>%s</> finished in %s\n", cmdStr, time.Since(startTime).Round(time.Millisecond))
	return nil
}
