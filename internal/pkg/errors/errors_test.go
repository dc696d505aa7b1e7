package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestExitCodeBands(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrNoStagedChanges, 1},
		{ErrUnknownProvider, 1},
		{ErrInvalidConfig, 1},
		{ErrInvalidArguments, 1},
		{ErrGitCommandFailed, 2},
		{ErrFileSystemError, 2},
		{ErrUpstreamFailed, 3},
		{ErrAuthenticationFailed, 3},
		{ErrRateLimited, 3},
		{ErrServiceUnavailable, 3},
		{ErrTimeout, 3},
		{ErrMalformedResponse, 3},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			if got := tt.code.ExitCode(); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	if got := GetExitCode(NewRateLimitError("OpenAI")); got != 3 {
		t.Errorf("GetExitCode() = %d, want 3", got)
	}

	wrapped := fmt.Errorf("outer: %w", NewGitError(errors.New("exit 128"), "fatal: not a repo"))
	if got := GetExitCode(wrapped); got != 2 {
		t.Errorf("GetExitCode(wrapped) = %d, want 2", got)
	}

	if got := GetExitCode(errors.New("plain")); got != 1 {
		t.Errorf("GetExitCode(plain) = %d, want 1", got)
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NewTimeoutError("openrouter", time.Minute))
	if !IsCode(err, ErrTimeout) {
		t.Error("IsCode() should find ErrTimeout through the chain")
	}
	if IsCode(err, ErrServiceUnavailable) {
		t.Error("IsCode() matched the wrong code")
	}
	if IsCode(nil, ErrTimeout) {
		t.Error("IsCode(nil) should be false")
	}
}

func TestUnknownProviderError_ListsKnownNames(t *testing.T) {
	err := NewUnknownProviderError("grok", []string{"openrouter", "openai"})

	if !strings.Contains(err.Error(), `"grok"`) {
		t.Errorf("Error() = %q, should name the unknown provider", err.Error())
	}
	if !strings.Contains(err.Suggestion, "openrouter, openai") {
		t.Errorf("Suggestion = %q, should list known providers", err.Suggestion)
	}
}

func TestConfigurationError_ListsEveryProblem(t *testing.T) {
	err := NewConfigurationError("openrouter", []string{
		"API key is required",
		"invalid model format",
	})

	if !strings.Contains(err.Message, "API key is required") ||
		!strings.Contains(err.Message, "invalid model format") {
		t.Errorf("Message = %q, should carry every problem", err.Message)
	}
}

func TestServiceUnavailableError_Suggestions(t *testing.T) {
	err := NewServiceUnavailableError("OpenAI", []string{"openrouter", "ollama"})
	if !strings.Contains(err.Suggestion, "--provider openrouter") ||
		!strings.Contains(err.Suggestion, "--provider ollama") {
		t.Errorf("Suggestion = %q, should list configured alternatives", err.Suggestion)
	}

	none := NewServiceUnavailableError("OpenAI", nil)
	if strings.Contains(none.Suggestion, "--provider") {
		t.Errorf("Suggestion = %q, should not invent alternatives", none.Suggestion)
	}
}

func TestTimeoutError_NamesEnvVar(t *testing.T) {
	err := NewTimeoutError("openrouter", 60*time.Second)
	if !strings.Contains(err.Suggestion, "OPENROUTER_TIMEOUT") {
		t.Errorf("Suggestion = %q, should name the timeout env var", err.Suggestion)
	}
	if !strings.Contains(err.Message, "1m0s") {
		t.Errorf("Message = %q, should include the timeout value", err.Message)
	}
}

func TestUpstreamError_KeepsStatus(t *testing.T) {
	err := NewUpstreamError("Gemini", 418, "teapot")
	if !strings.Contains(err.Message, "418") {
		t.Errorf("Message = %q, should keep the raw status", err.Message)
	}
	if err.Context["response"] != "teapot" {
		t.Errorf("Context = %v, should keep the body", err.Context)
	}
}

func TestSanitizeErrorMessage(t *testing.T) {
	msg := "request failed with key sk-or-v1-abcdef1234567890abcdef"
	got := SanitizeErrorMessage(msg)

	if strings.Contains(got, "sk-or-v1-abcdef1234567890abcdef") {
		t.Errorf("SanitizeErrorMessage() leaked the key: %q", got)
	}
	if !strings.HasSuffix(got, "cdef") {
		t.Errorf("SanitizeErrorMessage() = %q, should keep the last 4 chars", got)
	}
}

func TestFormatError(t *testing.T) {
	err := NewAuthenticationError("OpenRouter", "https://openrouter.ai/keys", "OPENROUTER_API_KEY")
	out := FormatError(err)

	if !strings.Contains(out, "401") {
		t.Errorf("FormatError() = %q, should mention the status", out)
	}
	if !strings.Contains(out, "https://openrouter.ai/keys") {
		t.Errorf("FormatError() = %q, should carry the setup URL", out)
	}
}

func TestFormatErrorVerbose_IncludesChain(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, ErrUpstreamFailed, "request failed")
	out := FormatErrorVerbose(err)

	if !strings.Contains(out, "UpstreamFailed") {
		t.Errorf("FormatErrorVerbose() = %q, should name the code", out)
	}
	if !strings.Contains(out, "connection reset") {
		t.Errorf("FormatErrorVerbose() = %q, should include the cause", out)
	}
}

func TestWithContextAndSuggestion(t *testing.T) {
	err := New(ErrInvalidConfig, "bad config").
		WithContext("file", "~/.commitcraft/config.yaml").
		WithSuggestion("run config init")

	if err.Context["file"] != "~/.commitcraft/config.yaml" {
		t.Errorf("Context = %v", err.Context)
	}
	if err.Suggestion != "run config init" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
}
