// Package processor provides diff scoping for CommitCraft.
//
// Before a diff reaches a provider it is scoped: lock files and binary
// files are dropped from the patch text (their paths stay in the file
// list), and oversized diffs are reduced to a per-file summary so a
// single request stays within model context limits.
package processor

import (
	"path/filepath"
	"strings"

	"github.com/commitcraft/commitcraft/internal/pkg/git"
)

// DefaultDiffSizeThreshold is the patch size above which the full diff is
// replaced by a per-file summary.
const DefaultDiffSizeThreshold = 10 * 1024 // 10KB

// lockFilePatterns contains base names for lock files that carry no
// signal for a commit message.
var lockFilePatterns = []string{
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"go.sum",
	"Cargo.lock",
	"Gemfile.lock",
	"composer.lock",
	"poetry.lock",
	"Pipfile.lock",
}

// ScopedDiff is the provider-ready view of a staged diff.
type ScopedDiff struct {
	// Diff holds the files that survived scoping, patches included.
	Diff *git.Diff
	// Excluded lists the paths dropped from the patch text.
	Excluded []string
	// Summarized is true when the patch text was replaced by a summary
	// because the diff exceeded the size threshold.
	Summarized bool
}

// DiffProcessor defines the interface for diff scoping.
type DiffProcessor interface {
	Scope(diff *git.Diff) *ScopedDiff
}

// Config holds configuration for the processor.
type Config struct {
	// DiffSizeThreshold is the patch size in bytes that triggers
	// summarization. Zero means DefaultDiffSizeThreshold.
	DiffSizeThreshold int
	// ExcludePatterns holds additional glob patterns (matched against the
	// base name) to drop from the patch text.
	ExcludePatterns []string
}

// Processor implements DiffProcessor.
type Processor struct {
	threshold int
	patterns  []string
}

// NewProcessor creates a Processor with default settings.
func NewProcessor() *Processor {
	return NewProcessorWithConfig(Config{})
}

// NewProcessorWithConfig creates a Processor with the given configuration.
func NewProcessorWithConfig(cfg Config) *Processor {
	threshold := cfg.DiffSizeThreshold
	if threshold <= 0 {
		threshold = DefaultDiffSizeThreshold
	}
	return &Processor{
		threshold: threshold,
		patterns:  cfg.ExcludePatterns,
	}
}

// Scope filters and sizes a staged diff for prompting.
func (p *Processor) Scope(diff *git.Diff) *ScopedDiff {
	scoped := &ScopedDiff{
		Diff: &git.Diff{
			TotalAdditions: diff.TotalAdditions,
			TotalDeletions: diff.TotalDeletions,
		},
	}

	totalSize := 0
	for _, f := range diff.Files {
		if p.isExcluded(f.Path) || f.IsBinary {
			scoped.Excluded = append(scoped.Excluded, f.Path)
			// Keep the file in the list so the change is still named in
			// the prompt, but without its patch content.
			f.Patch = ""
		}
		totalSize += len(f.Patch)
		scoped.Diff.Files = append(scoped.Diff.Files, f)
	}

	scoped.Summarized = totalSize > p.threshold
	return scoped
}

// isExcluded checks a path against the lock-file list and configured patterns.
func (p *Processor) isExcluded(path string) bool {
	base := filepath.Base(path)

	for _, pattern := range lockFilePatterns {
		if base == pattern {
			return true
		}
	}
	if strings.HasSuffix(base, ".lock") {
		return true
	}

	for _, pattern := range p.patterns {
		if ok, err := filepath.Match(pattern, base); err == nil && ok {
			return true
		}
	}

	return false
}
