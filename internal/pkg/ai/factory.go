// Package ai provides the AI provider interface and backend implementations
// for CommitCraft.
package ai

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// NewProvider creates a provider instance by registry name. The descriptor
// lookup is the only place an unrecognized name is rejected; past this point
// every backend is known.
func NewProvider(name string, config ProviderConfig) (Provider, error) {
	desc, err := GetDescriptor(name)
	if err != nil {
		return nil, err
	}

	config = resolveFromEnv(desc, config)

	switch desc.Name {
	case ProviderNameOpenRouter:
		return NewOpenRouterProvider(config)
	case ProviderNameOpenAI:
		return NewOpenAIProvider(config)
	case ProviderNameAnthropic:
		return NewAnthropicProvider(config)
	case ProviderNameGemini:
		return NewGeminiProvider(config)
	case ProviderNameDeepSeek:
		return NewDeepSeekProvider(config)
	case ProviderNameOllama:
		return NewOllamaProvider(config)
	default:
		// Unreachable while the descriptor table and this switch stay in
		// lockstep; the registry round-trip test guards the pairing.
		return nil, fmt.Errorf("provider %q has a descriptor but no constructor", desc.Name)
	}
}

// resolveFromEnv fills unset config fields from the provider's environment
// variables. Explicit configuration always wins over the environment.
func resolveFromEnv(desc Descriptor, config ProviderConfig) ProviderConfig {
	prefix := strings.ToUpper(desc.Name)

	if config.APIKey == "" {
		config.APIKey = CredentialFromEnv(desc)
	}
	if config.Model == "" {
		config.Model = os.Getenv(prefix + "_MODEL")
	}
	if config.BaseURL == "" {
		config.BaseURL = os.Getenv(prefix + "_BASE_URL")
	}
	if config.Timeout <= 0 {
		config.Timeout = timeoutFromEnv(prefix + "_TIMEOUT")
	}

	return config
}

// timeoutFromEnv parses a timeout variable as whole seconds or as a Go
// duration string. Unset or unparseable values yield zero so the backend's
// own default applies.
func timeoutFromEnv(envVar string) time.Duration {
	raw := os.Getenv(envVar)
	if raw == "" {
		return 0
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	return 0
}
