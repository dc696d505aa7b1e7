// Package cmd contains the CLI command definitions for CommitCraft.
package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the CommitCraft CLI.
func NewRootCmd(version, commitHash, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "commitcraft",
		Short: "AI-powered conventional commit message generator",
		Long: `CommitCraft generates Conventional Commits messages from your staged
changes using a configurable AI backend.

It reads the staged git diff, sends it to the selected provider
(OpenRouter, OpenAI, Anthropic, Gemini, DeepSeek, or a local Ollama),
and presents the message for review before committing.`,
		Version: version,
		// Running the bare binary starts the interactive commit flow.
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := &WorkflowFlags{CommitAfter: true}
			flags.DryRun, _ = cmd.Flags().GetBool("dry-run")
			flags.Yes, _ = cmd.Flags().GetBool("yes")
			flags.OutputFile, _ = cmd.Flags().GetString("output")
			flags.Gitmoji, _ = cmd.Flags().GetBool("gitmoji")
			flags.Count, _ = cmd.Flags().GetInt("count")
			return runWorkflow(cmd, flags)
		},
	}

	rootCmd.SetVersionTemplate(`CommitCraft {{.Version}}
Commit: ` + commitHash + `
Built:  ` + date + "\n")

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().String("config", "", "Config file path (default: ~/.commitcraft/config.yaml)")
	rootCmd.PersistentFlags().String("provider", "", "AI provider to use (openrouter, openai, anthropic, gemini, deepseek, ollama)")
	rootCmd.PersistentFlags().String("model", "", "Model identifier to use")

	rootCmd.Flags().Bool("dry-run", false, "Generate message without committing")
	rootCmd.Flags().BoolP("yes", "y", false, "Skip interactive confirmation and commit immediately")
	rootCmd.Flags().StringP("output", "o", "", "Write generated message to file (implies --dry-run)")
	rootCmd.Flags().Bool("gitmoji", false, "Prefix the header with a gitmoji")
	rootCmd.Flags().IntP("count", "n", 1, "Number of candidate messages to generate")

	rootCmd.AddCommand(NewCommitCmd())
	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewProvidersCmd())
	rootCmd.AddCommand(NewConfigCmd())

	return rootCmd
}
