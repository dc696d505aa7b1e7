// Package cmd contains the CLI command definitions for CommitCraft.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/commitcraft/commitcraft/internal/pkg/ai"
	"github.com/commitcraft/commitcraft/internal/pkg/hostcheck"
)

// NewProvidersCmd creates the providers command.
func NewProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List supported AI providers and their status",
		Long: `List every supported AI provider, whether its credential is present
in the environment, and example model identifiers.

For Ollama the local installation is checked instead of a credential.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProviders(cmd.Context())
		},
	}
}

func runProviders(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ollama, err := hostcheck.NewChecker().Detect(ctx)
	if err != nil {
		return fmt.Errorf("failed to detect ollama: %w", err)
	}

	fmt.Println("Supported providers:")
	fmt.Println()

	for _, p := range ai.ListConfigured() {
		status := "not configured"
		if p.Configured {
			status = "configured"
		}

		switch {
		case p.Name == ai.ProviderNameOllama && ollama.Installed:
			status = fmt.Sprintf("installed (%s)", ollama.BinaryPath)
		case p.Name == ai.ProviderNameOllama:
			status = "not installed"
		}

		fmt.Printf("  %-12s %-28s %s\n", p.Name, "("+p.DisplayName+")", status)
		fmt.Printf("  %-12s models: %s\n", "", strings.Join(p.ExampleModels, ", "))
		if p.RequiresAPIKey {
			env := p.APIKeyEnv
			if p.FallbackAPIKeyEnv != "" {
				env += " or " + p.FallbackAPIKeyEnv
			}
			fmt.Printf("  %-12s credential: %s (%s)\n", "", env, p.Website)
		}
		fmt.Println()
	}

	if !ollama.Installed {
		fmt.Println(ollama.Instructions)
	}

	return nil
}
