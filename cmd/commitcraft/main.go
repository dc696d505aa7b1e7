// Package main is the entry point for the CommitCraft CLI, an AI-powered
// tool that generates Conventional Commits messages from staged changes.
package main

import (
	"fmt"
	"os"

	"github.com/commitcraft/commitcraft/internal/cmd"
	apperrors "github.com/commitcraft/commitcraft/internal/pkg/errors"
)

// Version information - set via ldflags during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := cmd.NewRootCmd(version, commit, date)
	if err := rootCmd.Execute(); err != nil {
		if apperrors.IsVerbose() {
			fmt.Fprintln(os.Stderr, apperrors.FormatErrorVerbose(err))
		} else {
			fmt.Fprintln(os.Stderr, apperrors.FormatError(err))
		}
		os.Exit(apperrors.GetExitCode(err))
	}
}
