// Package cmd contains the CLI command definitions for CommitCraft.
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/commitcraft/commitcraft/internal/app"
	"github.com/commitcraft/commitcraft/internal/pkg/ai"
	"github.com/commitcraft/commitcraft/internal/pkg/config"
	apperrors "github.com/commitcraft/commitcraft/internal/pkg/errors"
	"github.com/commitcraft/commitcraft/internal/pkg/git"
	"github.com/commitcraft/commitcraft/internal/pkg/hostcheck"
	"github.com/commitcraft/commitcraft/internal/pkg/processor"
	"github.com/commitcraft/commitcraft/internal/pkg/security"
	"github.com/commitcraft/commitcraft/internal/pkg/ui"
)

// WorkflowFlags holds the flags shared by the commit and generate commands.
type WorkflowFlags struct {
	DryRun      bool
	Yes         bool
	OutputFile  string
	JSON        bool
	Gitmoji     bool
	Count       int
	CommitAfter bool
}

// NewCommitCmd creates the commit command.
func NewCommitCmd() *cobra.Command {
	flags := &WorkflowFlags{CommitAfter: true}

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Generate and commit with an AI-generated message",
		Long: `Generate a commit message from your staged changes, review it
interactively, and commit.

Examples:
  commitcraft commit              # Interactive commit
  commitcraft commit --yes        # Auto-accept generated message
  commitcraft commit --dry-run    # Generate without committing
  commitcraft commit -o msg.txt   # Save message to file
  commitcraft commit -n 3         # Pick from three candidates`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Generate message without committing")
	cmd.Flags().BoolVarP(&flags.Yes, "yes", "y", false, "Skip interactive confirmation and commit immediately")
	cmd.Flags().StringVarP(&flags.OutputFile, "output", "o", "", "Write generated message to file (implies --dry-run)")
	cmd.Flags().BoolVar(&flags.Gitmoji, "gitmoji", false, "Prefix the header with a gitmoji")
	cmd.Flags().IntVarP(&flags.Count, "count", "n", 1, "Number of candidate messages to generate")

	return cmd
}

// runWorkflow wires the dependencies and executes the generation workflow.
func runWorkflow(cmd *cobra.Command, flags *WorkflowFlags) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	verbose, _ := cmd.Flags().GetBool("verbose")
	configPath, _ := cmd.Flags().GetString("config")
	providerOverride, _ := cmd.Flags().GetString("provider")
	modelOverride, _ := cmd.Flags().GetString("model")

	apperrors.SetVerbose(verbose)

	cfgMgr, err := config.NewManager(configPath)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to create config manager")
	}

	// Flag overrides are applied before loading so they take priority
	// (flags > env > file > defaults) without persisting.
	if providerOverride != "" {
		cfgMgr.SetOverride("provider.name", providerOverride)
		apperrors.Debug("Provider overridden via flag: %s", providerOverride)
	}
	if modelOverride != "" {
		cfgMgr.SetOverride("provider.model", modelOverride)
		apperrors.Debug("Model overridden via flag: %s", modelOverride)
	}

	cfg, err := cfgMgr.Load()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to load config")
	}

	if flags.OutputFile != "" {
		flags.DryRun = true
	}
	flags.Count = resolveCount(cmd.Flags().Changed("count"), flags.Count, cfg.Generation.Count)
	gitmoji := flags.Gitmoji || cfg.Generation.Gitmoji

	// First-use warning for hosted backends: the staged diff leaves the
	// machine.
	if cfg.Provider.Name != ai.ProviderNameOllama && !cfg.Security.WarningAcknowledged {
		if err := showSecurityWarning(cfgMgr, flags.Yes); err != nil {
			return err
		}
	}

	// First use of the local backend: check the binary once and record it.
	if cfg.Provider.Name == ai.ProviderNameOllama {
		ensureOllamaHostCheck(ctx, cfgMgr, hostcheck.NewChecker())
	}

	if verbose {
		apperrors.Info("Using provider: %s", cfg.Provider.Name)
		if cfg.Provider.Model != "" {
			apperrors.Info("Using model: %s", cfg.Provider.Model)
		}
		if cfg.Provider.APIKey != "" {
			apperrors.Info("API key: %s", security.MaskAPIKey(cfg.Provider.APIKey))
		}
		if flags.DryRun {
			apperrors.Info("Dry-run mode enabled")
		}
	}

	gitClient := git.NewClient()

	provider, err := ai.NewProvider(cfg.Provider.Name, ai.ProviderConfig{
		APIKey:      cfg.Provider.APIKey,
		Model:       cfg.Provider.Model,
		BaseURL:     cfg.Provider.Endpoint,
		Temperature: &cfg.Provider.Temperature,
		MaxTokens:   cfg.Provider.MaxTokens,
		Timeout:     time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return err
	}
	apperrors.Debug("AI provider created: %s", provider.Name())

	diffProcessor := processor.NewProcessorWithConfig(processor.Config{
		DiffSizeThreshold: cfg.Git.DiffSizeThreshold,
		ExcludePatterns:   cfg.Git.ExcludePatterns,
	})

	var uiMgr ui.Manager
	if flags.Yes || flags.JSON {
		uiMgr = ui.NewNonInteractiveManager(cfg.UI.ColorEnabled)
	} else {
		uiMgr = ui.NewDefaultManager(cfg.UI.ColorEnabled, cfg.UI.Editor, cfg.UI.SpinnerStyle)
	}

	service := app.NewService(gitClient, provider, diffProcessor, uiMgr, cfg)

	opts := &app.Options{
		DryRun:      flags.DryRun,
		OutputFile:  flags.OutputFile,
		SkipConfirm: flags.Yes || flags.JSON,
		JSON:        flags.JSON,
		Gitmoji:     gitmoji,
		Count:       flags.Count,
		CommitAfter: flags.CommitAfter && !flags.DryRun,
	}

	return service.Run(ctx, opts)
}

// resolveCount picks the candidate count. An explicit --count always wins;
// otherwise a configured generation.count applies. The flag's default of 1
// is indistinguishable from the zero value, so the changed state decides.
func resolveCount(flagChanged bool, flagValue, configured int) int {
	if flagChanged || configured <= 0 {
		return flagValue
	}
	return configured
}

// hostCheckRecorder is the slice of the config manager the host check needs.
type hostCheckRecorder interface {
	IsHostCheckDone() bool
	SetHostCheckDone() error
}

// ensureOllamaHostCheck runs the local Ollama detection on the first use of
// the ollama provider and records the result so it never runs again. A
// missing binary only prints install guidance; the request itself will fail
// later with its own suggestion if the daemon is not running.
func ensureOllamaHostCheck(ctx context.Context, rec hostCheckRecorder, checker hostcheck.Checker) {
	if rec.IsHostCheckDone() {
		return
	}

	res, err := checker.Detect(ctx)
	if err != nil {
		return
	}

	if !res.Installed {
		fmt.Println("Ollama binary not found on PATH.")
		fmt.Println(res.Instructions)
	} else {
		apperrors.Debug("Ollama binary found at %s", res.BinaryPath)
	}

	if err := rec.SetHostCheckDone(); err != nil {
		apperrors.Warn("Failed to record host check: %v", err)
	}
}

// showSecurityWarning displays the first-use warning and prompts for acknowledgment.
func showSecurityWarning(cfgMgr *config.ViperManager, autoAccept bool) error {
	fmt.Print(security.FirstUseWarning)

	if autoAccept {
		fmt.Println("Auto-acknowledging security warning (--yes flag)")
	} else {
		fmt.Print("Do you understand and wish to continue? [y/N]: ")
		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			return fmt.Errorf("security warning not acknowledged - operation cancelled")
		}
	}

	if err := cfgMgr.AcknowledgeSecurityWarning(); err != nil {
		apperrors.Warn("Failed to save security acknowledgment: %v", err)
	}

	fmt.Println(security.FirstUseAcknowledgment)
	fmt.Println()

	return nil
}
