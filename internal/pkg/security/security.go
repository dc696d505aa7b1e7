// Package security provides credential handling utilities for CommitCraft.
package security

import (
	"regexp"
	"strings"
)

// MaskAPIKey masks an API key, showing only the last 4 characters.
// This should be used when logging or displaying API keys.
func MaskAPIKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// SanitizeForLogging sanitizes a string for safe logging by masking potential secrets.
// It looks for common patterns like API keys, bearer tokens, and passwords.
func SanitizeForLogging(s string) string {
	patterns := []struct {
		regex       *regexp.Regexp
		replacement string
	}{
		// OpenAI-style keys, incl. sk-or-v1-... (OpenRouter) and sk-ant-... (Anthropic)
		{regexp.MustCompile(`sk-[a-zA-Z0-9_-]{10,}`), "sk-****"},
		// Google API keys
		{regexp.MustCompile(`AIza[a-zA-Z0-9_-]{30,}`), "AIza****"},
		// Bearer tokens
		{regexp.MustCompile(`Bearer\s+[a-zA-Z0-9._-]+`), "Bearer ****"},
		// Generic API key patterns
		{regexp.MustCompile(`(?i)(api[_-]?key|apikey|api_secret|secret[_-]?key)\s*[:=]\s*["']?[a-zA-Z0-9._-]+["']?`), "$1=****"},
		// Password patterns
		{regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*["']?[^\s"']+["']?`), "$1=****"},
	}

	result := s
	for _, p := range patterns {
		result = p.regex.ReplaceAllString(result, p.replacement)
	}

	return result
}

// FirstUseWarning is the warning message displayed on first use.
const FirstUseWarning = `
⚠️  IMPORTANT SECURITY NOTICE ⚠️

CommitCraft sends your staged git diff content to external AI services
(OpenRouter, OpenAI, Anthropic, Gemini, DeepSeek, or other configured
providers) to generate commit messages.

This means your code changes will be transmitted over the internet to third-party
servers. Please ensure you:

1. Do not stage sensitive information (API keys, passwords, secrets)
2. Review your staged changes before running CommitCraft
3. Consider using a local AI provider (Ollama) for sensitive projects

`

// FirstUseAcknowledgment is the message shown after user acknowledges the warning.
const FirstUseAcknowledgment = "Thank you for acknowledging the security notice. This warning will not be shown again."
