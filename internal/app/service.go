// Package app contains the application layer with business orchestration logic.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/commitcraft/commitcraft/internal/pkg/ai"
	"github.com/commitcraft/commitcraft/internal/pkg/config"
	apperrors "github.com/commitcraft/commitcraft/internal/pkg/errors"
	"github.com/commitcraft/commitcraft/internal/pkg/git"
	"github.com/commitcraft/commitcraft/internal/pkg/message"
	"github.com/commitcraft/commitcraft/internal/pkg/processor"
	"github.com/commitcraft/commitcraft/internal/pkg/ui"
)

// writeFile is a variable to allow mocking in tests.
var writeFile = os.WriteFile

// MaxRegenerationAttempts is the maximum number of times a user can regenerate a commit message.
const MaxRegenerationAttempts = 5

// MaxCandidates bounds the --count flag.
const MaxCandidates = 5

// Options contains options for the generation workflow.
type Options struct {
	// DryRun generates and displays the message without committing.
	DryRun bool
	// OutputFile writes the accepted message to a file instead of committing.
	OutputFile string
	// SkipConfirm accepts the first message without prompting (--yes).
	SkipConfirm bool
	// JSON renders the accepted message as JSON on stdout.
	JSON bool
	// Gitmoji asks the model to prefix the header with a gitmoji.
	Gitmoji bool
	// Count is the number of candidate messages to generate (1..MaxCandidates).
	Count int
	// CommitAfter runs git commit with the accepted message.
	CommitAfter bool
}

// Service orchestrates the commit message generation workflow.
type Service struct {
	gitClient     git.Client
	provider      ai.Provider
	diffProcessor processor.DiffProcessor
	uiManager     ui.Manager
	config        *config.Config
}

// NewService creates a new Service with the given dependencies.
func NewService(
	gitClient git.Client,
	provider ai.Provider,
	diffProcessor processor.DiffProcessor,
	uiManager ui.Manager,
	cfg *config.Config,
) *Service {
	return &Service{
		gitClient:     gitClient,
		provider:      provider,
		diffProcessor: diffProcessor,
		uiManager:     uiManager,
		config:        cfg,
	}
}

// Run orchestrates the complete workflow.
// Workflow: validate config → check staged → scope diff → generate → display → handle action → commit/save
func (s *Service) Run(ctx context.Context, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}
	if opts.Count < 1 {
		opts.Count = 1
	}
	if opts.Count > MaxCandidates {
		return apperrors.New(apperrors.ErrInvalidArguments,
			fmt.Sprintf("count must be between 1 and %d", MaxCandidates))
	}

	// Configuration problems surface before any git or network work.
	if problems := s.provider.ValidateConfig(); len(problems) > 0 {
		return apperrors.NewConfigurationError(s.provider.Name(), problems)
	}

	hasChanges, err := s.gitClient.HasStagedChanges(ctx)
	if err != nil {
		return fmt.Errorf("failed to check staged changes: %w", err)
	}
	if !hasChanges {
		return apperrors.NewNoStagedChangesError()
	}

	spinner := s.uiManager.ShowSpinner("Reading staged changes...")
	spinner.Start()
	diff, err := s.gitClient.StagedDiff(ctx)
	spinner.Stop()
	if err != nil {
		return fmt.Errorf("failed to read staged diff: %w", err)
	}

	scoped := s.diffProcessor.Scope(diff)
	if len(scoped.Diff.Files) == 0 {
		return apperrors.NewNoStagedChangesError()
	}

	return s.generateAndHandleLoop(ctx, opts, scoped)
}

// generateAndHandleLoop handles the generate → display → action loop with
// regeneration support.
func (s *Service) generateAndHandleLoop(ctx context.Context, opts *Options, scoped *processor.ScopedDiff) error {
	var previousAttempt string
	regenerationCount := 0

	for {
		msg, err := s.generateCandidates(ctx, opts, scoped, previousAttempt)
		if err != nil {
			return err
		}

		if err := s.uiManager.DisplayMessage(msg); err != nil {
			return fmt.Errorf("failed to display message: %w", err)
		}

		for _, warning := range msg.Validate() {
			s.uiManager.ShowError(fmt.Errorf("warning: %s", warning))
		}

		if opts.SkipConfirm {
			return s.handleAccept(ctx, opts, msg)
		}

		action, err := s.uiManager.PromptAction()
		if err != nil {
			return fmt.Errorf("failed to get user action: %w", err)
		}

		switch action {
		case ui.ActionAccept:
			return s.handleAccept(ctx, opts, msg)

		case ui.ActionEdit:
			edited, err := s.uiManager.EditMessage(msg)
			if err != nil {
				s.uiManager.ShowError(fmt.Errorf("failed to edit message: %w", err))
				continue
			}
			return s.handleAccept(ctx, opts, edited)

		case ui.ActionRegenerate:
			regenerationCount++
			if regenerationCount >= MaxRegenerationAttempts {
				return fmt.Errorf("maximum regeneration attempts (%d) reached", MaxRegenerationAttempts)
			}
			previousAttempt = msg.Format()
			continue

		case ui.ActionCancel:
			s.uiManager.ShowSuccess("Cancelled")
			return nil
		}
	}
}

// generateCandidates performs Count sequential provider calls and returns
// the chosen message. Calls are never issued concurrently.
func (s *Service) generateCandidates(
	ctx context.Context,
	opts *Options,
	scoped *processor.ScopedDiff,
	previousAttempt string,
) (*message.CommitMessage, error) {
	req := &ai.GenerateRequest{
		Diff:            scoped,
		Gitmoji:         opts.Gitmoji,
		PreviousAttempt: previousAttempt,
	}

	if opts.Count == 1 {
		spinner := s.uiManager.ShowSpinner("Generating commit message...")
		spinner.Start()
		defer spinner.Stop()
		return s.provider.GenerateCommitMessage(ctx, req)
	}

	progress := s.uiManager.ShowProgressSpinner("Generating candidates", opts.Count)
	progress.Start()

	candidates := make([]*message.CommitMessage, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		progress.SetCurrent(i)
		msg, err := s.provider.GenerateCommitMessage(ctx, req)
		if err != nil {
			progress.Stop()
			return nil, err
		}
		candidates = append(candidates, msg)
		// Feed earlier candidates back so later ones differ.
		req.PreviousAttempt = msg.Format()
	}
	progress.SetCurrent(opts.Count)
	progress.Stop()

	idx, err := s.uiManager.PromptSelectCandidate(candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to select candidate: %w", err)
	}
	return candidates[idx], nil
}

// handleAccept commits or renders the accepted message based on options.
func (s *Service) handleAccept(ctx context.Context, opts *Options, msg *message.CommitMessage) error {
	if opts.JSON {
		out, err := msg.JSON()
		if err != nil {
			return fmt.Errorf("failed to render JSON: %w", err)
		}
		fmt.Println(out)
	}

	if opts.OutputFile != "" {
		if err := s.writeToFile(opts.OutputFile, msg.Format()); err != nil {
			return err
		}
	}

	if opts.DryRun || !opts.CommitAfter {
		if !opts.JSON && opts.OutputFile == "" {
			s.uiManager.ShowSuccess("Message generated (not committed)")
		}
		return nil
	}

	spinner := s.uiManager.ShowSpinner("Committing changes...")
	spinner.Start()
	err := s.gitClient.Commit(ctx, msg.Format())
	spinner.Stop()
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	s.uiManager.ShowSuccess("Successfully committed!")
	return nil
}

// writeToFile writes the commit message to a file.
func (s *Service) writeToFile(filePath, content string) error {
	if err := writeFile(filePath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write to file %s: %w", filePath, err)
	}

	s.uiManager.ShowSuccess(fmt.Sprintf("Message written to %s", filePath))
	return nil
}
