// Package cmd contains the CLI command definitions for CommitCraft.
package cmd

import (
	"github.com/spf13/cobra"
)

// NewGenerateCmd creates the generate command: the commit workflow without
// the commit.
func NewGenerateCmd() *cobra.Command {
	flags := &WorkflowFlags{
		DryRun:      true,
		CommitAfter: false,
	}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a commit message without committing",
		Long: `Generate a commit message from your staged changes without committing.

The generated message is displayed on stdout by default, or can be
written to a file using the --output flag.

Examples:
  commitcraft generate              # Generate and display message
  commitcraft generate --json       # Machine-readable output
  commitcraft generate -o msg.txt   # Save message to file
  commitcraft generate --gitmoji    # Prefix header with a gitmoji
  commitcraft generate -n 3         # Pick from three candidates`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.Yes, "yes", "y", false, "Skip interactive confirmation")
	cmd.Flags().StringVarP(&flags.OutputFile, "output", "o", "", "Write generated message to file")
	cmd.Flags().BoolVar(&flags.JSON, "json", false, "Output the message as JSON")
	cmd.Flags().BoolVar(&flags.Gitmoji, "gitmoji", false, "Prefix the header with a gitmoji")
	cmd.Flags().IntVarP(&flags.Count, "count", "n", 1, "Number of candidate messages to generate")

	return cmd
}
