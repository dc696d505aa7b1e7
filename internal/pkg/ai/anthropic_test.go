package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/commitcraft/commitcraft/internal/pkg/errors"
)

func TestNewAnthropicProvider_Defaults(t *testing.T) {
	provider, err := NewAnthropicProvider(ProviderConfig{APIKey: testAPIKey})
	if err != nil {
		t.Fatalf("NewAnthropicProvider() error = %v", err)
	}

	if provider.Name() != "anthropic" {
		t.Errorf("Name() = %q, want %q", provider.Name(), "anthropic")
	}
	if provider.config.Model != DefaultAnthropicModel {
		t.Errorf("Model = %q, want %q", provider.config.Model, DefaultAnthropicModel)
	}
	if provider.config.BaseURL != DefaultAnthropicBaseURL {
		t.Errorf("BaseURL = %q, want %q", provider.config.BaseURL, DefaultAnthropicBaseURL)
	}
}

func TestAnthropicValidateConfig_MissingKey(t *testing.T) {
	provider, err := NewAnthropicProvider(ProviderConfig{})
	if err != nil {
		t.Fatalf("NewAnthropicProvider() error = %v", err)
	}

	problems := provider.ValidateConfig()
	if len(problems) != 1 {
		t.Fatalf("ValidateConfig() = %v, want one problem", problems)
	}
}

func TestAnthropicGenerate_Success(t *testing.T) {
	var gotKey, gotVersion, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		gotPath = r.URL.Path
		w.Write([]byte(`{"content":[{"type":"text","text":"fix(parser): handle empty diff"}]}`))
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(ProviderConfig{
		APIKey:  testAPIKey,
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("NewAnthropicProvider() error = %v", err)
	}

	msg, err := provider.GenerateCommitMessage(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("GenerateCommitMessage() error = %v", err)
	}

	if gotKey != testAPIKey {
		t.Errorf("x-api-key = %q", gotKey)
	}
	if gotVersion != anthropicVersion {
		t.Errorf("anthropic-version = %q, want %q", gotVersion, anthropicVersion)
	}
	if gotPath != "/v1/messages" {
		t.Errorf("path = %q, want /v1/messages", gotPath)
	}
	if msg.Type != "fix" || msg.Scope != "parser" {
		t.Errorf("parsed message = %+v", msg)
	}
}

func TestAnthropicGenerate_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid x-api-key"}}`))
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(ProviderConfig{
		APIKey:  testAPIKey,
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("NewAnthropicProvider() error = %v", err)
	}

	_, err = provider.GenerateCommitMessage(context.Background(), testRequest())
	if !apperrors.IsCode(err, apperrors.ErrAuthenticationFailed) {
		t.Errorf("error = %v, want ErrAuthenticationFailed", err)
	}
}

func TestAnthropicGenerate_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(ProviderConfig{
		APIKey:  testAPIKey,
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("NewAnthropicProvider() error = %v", err)
	}

	_, err = provider.GenerateCommitMessage(context.Background(), testRequest())
	if !apperrors.IsCode(err, apperrors.ErrMalformedResponse) {
		t.Errorf("error = %v, want ErrMalformedResponse", err)
	}
}
