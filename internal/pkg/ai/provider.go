// Package ai provides the AI provider interface and backend implementations
// for CommitCraft.
package ai

import (
	"context"
	"time"

	"github.com/commitcraft/commitcraft/internal/pkg/message"
	"github.com/commitcraft/commitcraft/internal/pkg/processor"
)

// Shared generation defaults and bounds. Individual backends may override
// the model, endpoint, and timeout defaults.
const (
	// DefaultTemperature is the default sampling temperature.
	DefaultTemperature = 0.7

	// MinTemperature and MaxTemperature bound the sampling temperature.
	MinTemperature = 0.0
	MaxTemperature = 1.0

	// DefaultMaxTokens is the default max output tokens.
	DefaultMaxTokens = 500

	// MinMaxTokens and MaxMaxTokens bound the max output tokens.
	MinMaxTokens = 1
	MaxMaxTokens = 4096

	// DefaultTimeout is the default timeout for API calls.
	DefaultTimeout = 30 * time.Second
)

// GenerateRequest contains the data needed to generate a commit message.
type GenerateRequest struct {
	// Diff is the scoped staged diff.
	Diff *processor.ScopedDiff
	// Gitmoji asks the model to prefix the header with a gitmoji.
	Gitmoji bool
	// PreviousAttempt holds the last generated message when the user
	// requested regeneration, so the model produces a different one.
	PreviousAttempt string
}

// ProviderConfig contains configuration for an AI provider instance.
// An instance is created fresh for each CLI invocation, validated before
// use, and discarded after the single request/response cycle.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	// Temperature is the sampling temperature. Nil means use the default;
	// an explicit zero is a valid, honored value.
	Temperature *float32
	MaxTokens   int
	Timeout     time.Duration
}

// normalize applies shared defaults and clamps the sampling parameters.
// After normalize, Temperature is always non-nil.
func (c *ProviderConfig) normalize() {
	temp := float32(DefaultTemperature)
	if c.Temperature != nil {
		temp = *c.Temperature
	}
	if temp < MinTemperature {
		temp = MinTemperature
	}
	if temp > MaxTemperature {
		temp = MaxTemperature
	}
	c.Temperature = &temp
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.MaxTokens < MinMaxTokens {
		c.MaxTokens = MinMaxTokens
	}
	if c.MaxTokens > MaxMaxTokens {
		c.MaxTokens = MaxMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

// Provider defines the capability contract every backend implements so the
// dispatcher can treat backends uniformly.
type Provider interface {
	// Name returns the registry name of the backend.
	Name() string

	// ValidateConfig performs local, offline checks on the instance's own
	// configuration. It never performs network I/O. It returns one
	// human-readable message per distinct problem found, or an empty
	// slice when the configuration is valid.
	ValidateConfig() []string

	// GenerateCommitMessage performs exactly one outbound call to the
	// backend and returns a fully populated commit message. On failure it
	// returns a typed error (see the errors package taxonomy), never a
	// partially populated message. No retries, no fallback.
	GenerateCommitMessage(ctx context.Context, req *GenerateRequest) (*message.CommitMessage, error)
}
