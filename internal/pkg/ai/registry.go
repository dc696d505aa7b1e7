// Package ai provides the AI provider interface and backend implementations
// for CommitCraft.
package ai

import (
	"os"

	apperrors "github.com/commitcraft/commitcraft/internal/pkg/errors"
)

// ProviderName constants for the supported backends. The descriptor table
// below and the factory switch in factory.go must stay in lockstep: a
// backend without a descriptor (or the reverse) is a defect, and the
// registry round-trip test enforces it.
const (
	ProviderNameOpenRouter = "openrouter"
	ProviderNameOpenAI     = "openai"
	ProviderNameAnthropic  = "anthropic"
	ProviderNameGemini     = "gemini"
	ProviderNameDeepSeek   = "deepseek"
	ProviderNameOllama     = "ollama"
)

// Descriptor holds the registry metadata for one provider, used for CLI
// validation, the providers report, and fallback suggestions in error
// messages.
type Descriptor struct {
	// Name is the unique lowercase key used on the CLI and as the map key.
	Name string
	// DisplayName is the human-readable label.
	DisplayName string
	// ExampleModels lists representative model identifiers for help text.
	// Not exhaustive, not validated against a live catalog.
	ExampleModels []string
	// RequiresAPIKey is false only for key-less local backends.
	RequiresAPIKey bool
	// APIKeyEnv names the environment variable holding the credential.
	APIKeyEnv string
	// FallbackAPIKeyEnv names an alternative credential variable, if any.
	FallbackAPIKeyEnv string
	// Website is the setup/documentation URL surfaced in error messages.
	Website string
}

// descriptors is the single source of truth for provider metadata.
// Immutable, process-wide, read-only.
var descriptors = []Descriptor{
	{
		Name:        ProviderNameOpenRouter,
		DisplayName: "OpenRouter",
		ExampleModels: []string{
			"openai/gpt-4o", "openai/gpt-4o-mini",
			"anthropic/claude-3-5-sonnet", "anthropic/claude-3-haiku",
			"google/gemini-2.0-flash-exp",
			"mistralai/mistral-small",
		},
		RequiresAPIKey: true,
		APIKeyEnv:      "OPENROUTER_API_KEY",
		Website:        "https://openrouter.ai/keys",
	},
	{
		Name:           ProviderNameOpenAI,
		DisplayName:    "OpenAI",
		ExampleModels:  []string{"gpt-4o", "gpt-4o-mini"},
		RequiresAPIKey: true,
		APIKeyEnv:      "OPENAI_API_KEY",
		Website:        "https://platform.openai.com/api-keys",
	},
	{
		Name:           ProviderNameAnthropic,
		DisplayName:    "Anthropic",
		ExampleModels:  []string{"claude-3-5-sonnet-latest", "claude-3-5-haiku-latest"},
		RequiresAPIKey: true,
		APIKeyEnv:      "ANTHROPIC_API_KEY",
		Website:        "https://console.anthropic.com/settings/keys",
	},
	{
		Name:              ProviderNameGemini,
		DisplayName:       "Gemini",
		ExampleModels:     []string{"gemini-2.0-flash-001", "gemini-2.5-flash", "gemini-2.5-pro"},
		RequiresAPIKey:    true,
		APIKeyEnv:         "GEMINI_API_KEY",
		FallbackAPIKeyEnv: "GOOGLE_API_KEY",
		Website:           "https://aistudio.google.com/app/apikey",
	},
	{
		Name:           ProviderNameDeepSeek,
		DisplayName:    "DeepSeek",
		ExampleModels:  []string{"deepseek-chat", "deepseek-coder"},
		RequiresAPIKey: true,
		APIKeyEnv:      "DEEPSEEK_API_KEY",
		Website:        "https://platform.deepseek.com/api_keys",
	},
	{
		Name:           ProviderNameOllama,
		DisplayName:    "Ollama",
		ExampleModels:  []string{"qwen2.5:7b", "llama3.2", "codellama"},
		RequiresAPIKey: false,
		Website:        "https://ollama.com/download",
	},
}

// Descriptors returns a copy of all provider descriptors in registration order.
func Descriptors() []Descriptor {
	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors)
	return out
}

// ProviderNames returns the names of all registered providers.
func ProviderNames() []string {
	names := make([]string, len(descriptors))
	for i, d := range descriptors {
		names[i] = d.Name
	}
	return names
}

// GetDescriptor returns the descriptor for the given provider name.
// This is the single gate that prevents the dispatcher from instantiating
// a backend for an unrecognized name.
func GetDescriptor(name string) (Descriptor, error) {
	for _, d := range descriptors {
		if d.Name == name {
			return d, nil
		}
	}
	return Descriptor{}, apperrors.NewUnknownProviderError(name, ProviderNames())
}

// ConfiguredProvider pairs a descriptor with its configuration status.
type ConfiguredProvider struct {
	Descriptor
	Configured bool
}

// ListConfigured reports every provider with whether its credential is
// present. Key-less backends always count as configured.
func ListConfigured() []ConfiguredProvider {
	out := make([]ConfiguredProvider, len(descriptors))
	for i, d := range descriptors {
		out[i] = ConfiguredProvider{
			Descriptor: d,
			Configured: isConfigured(d),
		}
	}
	return out
}

// ConfiguredNames returns the names of configured providers, excluding the
// given one. Used to suggest manual fallbacks when a backend is unavailable.
func ConfiguredNames(exclude string) []string {
	var names []string
	for _, p := range ListConfigured() {
		if p.Configured && p.Name != exclude {
			names = append(names, p.Name)
		}
	}
	return names
}

// isConfigured checks the descriptor's credential environment variables.
func isConfigured(d Descriptor) bool {
	if !d.RequiresAPIKey {
		return true
	}
	if os.Getenv(d.APIKeyEnv) != "" {
		return true
	}
	return d.FallbackAPIKeyEnv != "" && os.Getenv(d.FallbackAPIKeyEnv) != ""
}

// CredentialFromEnv returns the credential for a descriptor from the
// environment, trying the fallback variable when the primary is empty.
func CredentialFromEnv(d Descriptor) string {
	if v := os.Getenv(d.APIKeyEnv); v != "" {
		return v
	}
	if d.FallbackAPIKeyEnv != "" {
		return os.Getenv(d.FallbackAPIKeyEnv)
	}
	return ""
}
