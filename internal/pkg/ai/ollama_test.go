package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/commitcraft/commitcraft/internal/pkg/errors"
)

func TestNewOllamaProvider_Defaults(t *testing.T) {
	provider, err := NewOllamaProvider(ProviderConfig{})
	if err != nil {
		t.Fatalf("NewOllamaProvider() error = %v", err)
	}

	if provider.Name() != "ollama" {
		t.Errorf("Name() = %q, want %q", provider.Name(), "ollama")
	}
	if provider.config.Model != DefaultOllamaModel {
		t.Errorf("Model = %q, want %q", provider.config.Model, DefaultOllamaModel)
	}
	if provider.config.BaseURL != DefaultOllamaEndpoint {
		t.Errorf("BaseURL = %q, want %q", provider.config.BaseURL, DefaultOllamaEndpoint)
	}
	if provider.config.Timeout != DefaultOllamaTimeout {
		t.Errorf("Timeout = %v, want %v", provider.config.Timeout, DefaultOllamaTimeout)
	}
}

func TestOllamaValidateConfig_NoKeyRequired(t *testing.T) {
	provider, err := NewOllamaProvider(ProviderConfig{})
	if err != nil {
		t.Fatalf("NewOllamaProvider() error = %v", err)
	}

	if problems := provider.ValidateConfig(); len(problems) != 0 {
		t.Errorf("ValidateConfig() = %v, want empty", problems)
	}
}

func TestOllamaValidateConfig_BadEndpoint(t *testing.T) {
	provider, err := NewOllamaProvider(ProviderConfig{BaseURL: "localhost:11434"})
	if err != nil {
		t.Fatalf("NewOllamaProvider() error = %v", err)
	}

	problems := provider.ValidateConfig()
	if len(problems) != 1 {
		t.Fatalf("ValidateConfig() = %v, want one problem", problems)
	}
}

func TestOllamaGenerate_Success(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"message":{"role":"assistant","content":"refactor(core): simplify dispatch"},"done":true}`))
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(ProviderConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewOllamaProvider() error = %v", err)
	}

	msg, err := provider.GenerateCommitMessage(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("GenerateCommitMessage() error = %v", err)
	}

	if gotPath != "/api/chat" {
		t.Errorf("path = %q, want /api/chat", gotPath)
	}
	if msg.Type != "refactor" || msg.Scope != "core" {
		t.Errorf("parsed message = %+v", msg)
	}
}

func TestOllamaGenerate_ConnectionRefused(t *testing.T) {
	// Nothing listens on this port.
	provider, err := NewOllamaProvider(ProviderConfig{BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("NewOllamaProvider() error = %v", err)
	}

	_, err = provider.GenerateCommitMessage(context.Background(), testRequest())
	if err == nil {
		t.Fatal("GenerateCommitMessage() should fail")
	}
	if !apperrors.IsCode(err, apperrors.ErrServiceUnavailable) {
		t.Errorf("error = %v, want ErrServiceUnavailable", err)
	}

	if appErr := apperrors.GetAppError(err); appErr != nil {
		if !strings.Contains(appErr.Suggestion, "ollama serve") {
			t.Errorf("Suggestion = %q, want 'ollama serve' hint", appErr.Suggestion)
		}
	}
}
