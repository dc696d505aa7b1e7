// Package ai provides the AI provider interface and backend implementations
// for CommitCraft.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/commitcraft/commitcraft/internal/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

// mapStatusError maps a non-2xx HTTP status to the error taxonomy.
// The mapping is uniform across backends: the status code alone drives the
// error kind, the descriptor only supplies the provider-specific guidance.
func mapStatusError(desc Descriptor, status int, body string) error {
	switch {
	case status == http.StatusUnauthorized:
		return apperrors.NewAuthenticationError(desc.DisplayName, desc.Website, desc.APIKeyEnv)
	case status == http.StatusTooManyRequests:
		return apperrors.NewRateLimitError(desc.DisplayName)
	case status >= 500:
		// Fallback suggestions are computed from the registry at the
		// moment of failure, excluding the failed provider.
		return apperrors.NewServiceUnavailableError(desc.DisplayName, ConfiguredNames(desc.Name))
	default:
		return apperrors.NewUpstreamError(desc.DisplayName, status, upstreamMessage(body))
	}
}

// mapTransportError maps a transport-level failure (no HTTP status) to the
// error taxonomy. A client-side deadline expiry is reported distinctly from
// an unreachable service.
func mapTransportError(desc Descriptor, err error, timeout time.Duration) error {
	if err == nil {
		return nil
	}

	if isTimeout(err) {
		return apperrors.NewTimeoutError(desc.Name, timeout)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) || strings.Contains(err.Error(), "connection refused") {
		e := apperrors.NewServiceUnavailableError(desc.DisplayName, ConfiguredNames(desc.Name))
		e.Cause = err
		if desc.Name == ProviderNameOllama {
			e.Suggestion = "Ensure Ollama is running: 'ollama serve'"
		}
		return e
	}

	return apperrors.Wrap(err, apperrors.ErrUpstreamFailed, desc.DisplayName+" request failed")
}

// isTimeout reports whether err represents a client-side deadline expiry.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// mapOpenAICompatibleError maps errors from the go-openai client (used by
// the OpenAI and DeepSeek backends) through the same uniform tables.
func mapOpenAICompatibleError(desc Descriptor, err error, timeout time.Duration) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return mapStatusError(desc, apiErr.HTTPStatusCode, apiErr.Message)
	}
	return mapTransportError(desc, err, timeout)
}

// upstreamMessage extracts a human-readable message from an error body,
// which may be the JSON shape {"error": {"message": ...}} or plain text.
func upstreamMessage(body string) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return strings.TrimSpace(body)
}
