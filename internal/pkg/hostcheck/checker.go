// Package hostcheck detects a local Ollama installation so the CLI can
// report whether the key-less local backend is usable on this machine.
package hostcheck

import (
	"context"
	"os/exec"
	"runtime"
)

// Result contains the outcome of a local Ollama detection.
type Result struct {
	// Installed reports whether the ollama binary is on PATH.
	Installed bool
	// BinaryPath is the resolved path of the binary when installed.
	BinaryPath string
	// Instructions holds platform install guidance when not installed.
	Instructions string
}

// Checker detects the local Ollama installation.
type Checker interface {
	// Detect checks for the ollama binary. It never performs network I/O.
	Detect(ctx context.Context) (*Result, error)
}

// DefaultChecker resolves the binary through the process PATH.
type DefaultChecker struct {
	// lookPath is swappable for tests.
	lookPath func(file string) (string, error)
	goos     string
}

// NewChecker creates a platform-appropriate Checker.
func NewChecker() *DefaultChecker {
	return &DefaultChecker{
		lookPath: exec.LookPath,
		goos:     runtime.GOOS,
	}
}

// Detect checks whether the ollama binary is reachable via PATH.
func (c *DefaultChecker) Detect(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := c.lookPath("ollama")
	if err != nil {
		return &Result{
			Installed:    false,
			Instructions: installInstructions(c.goos),
		}, nil
	}

	return &Result{
		Installed:  true,
		BinaryPath: path,
	}, nil
}
