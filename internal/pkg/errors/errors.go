// Package errors provides error types and handling utilities for CommitCraft.
package errors

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrorCode represents the category of an error.
type ErrorCode int

// User errors (exit code 1).
const (
	ErrNoStagedChanges ErrorCode = 100 + iota
	ErrUnknownProvider
	ErrInvalidConfig
	ErrMissingAPIKey
	ErrInvalidArguments
)

// System errors (exit code 2).
const (
	ErrGitCommandFailed ErrorCode = 200 + iota
	ErrFileSystemError
)

// External errors (exit code 3).
const (
	ErrUpstreamFailed ErrorCode = 300 + iota
	ErrAuthenticationFailed
	ErrRateLimited
	ErrServiceUnavailable
	ErrTimeout
	ErrMalformedResponse
)

// ExitCode returns the appropriate process exit code for an error code.
func (c ErrorCode) ExitCode() int {
	switch {
	case c >= 100 && c < 200:
		return 1 // User errors
	case c >= 200 && c < 300:
		return 2 // System errors
	case c >= 300:
		return 3 // External errors
	default:
		return 1
	}
}

// String returns a human-readable name for the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrNoStagedChanges:
		return "NoStagedChanges"
	case ErrUnknownProvider:
		return "UnknownProvider"
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrMissingAPIKey:
		return "MissingAPIKey"
	case ErrInvalidArguments:
		return "InvalidArguments"
	case ErrGitCommandFailed:
		return "GitCommandFailed"
	case ErrFileSystemError:
		return "FileSystemError"
	case ErrUpstreamFailed:
		return "UpstreamFailed"
	case ErrAuthenticationFailed:
		return "AuthenticationFailed"
	case ErrRateLimited:
		return "RateLimited"
	case ErrServiceUnavailable:
		return "ServiceUnavailable"
	case ErrTimeout:
		return "Timeout"
	case ErrMalformedResponse:
		return "MalformedResponse"
	default:
		return "Unknown"
	}
}

// AppError represents an application error with context.
// Every AppError is terminal for the current invocation; nothing in this
// package or its callers retries.
type AppError struct {
	Code       ErrorCode
	Message    string
	Cause      error
	Context    map[string]interface{}
	Suggestion string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion to the error.
func (e *AppError) WithSuggestion(suggestion string) *AppError {
	e.Suggestion = suggestion
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with context.
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts an AppError from an error chain.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// GetExitCode returns the appropriate exit code for an error.
func GetExitCode(err error) int {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code.ExitCode()
	}
	return 1 // Default to user error
}

// IsCode reports whether the error chain contains an AppError with the given code.
func IsCode(err error, code ErrorCode) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}

// Common error constructors with suggestions

// NewNoStagedChangesError creates an error for no staged changes.
func NewNoStagedChangesError() *AppError {
	return &AppError{
		Code:       ErrNoStagedChanges,
		Message:    "no staged changes found",
		Suggestion: "Use 'git add <files>' to stage changes before generating a commit message",
	}
}

// NewUnknownProviderError creates an error for an unregistered provider name.
// This is the single gate that keeps the dispatcher from instantiating a
// backend for a name the registry does not know.
func NewUnknownProviderError(name string, known []string) *AppError {
	return &AppError{
		Code:       ErrUnknownProvider,
		Message:    fmt.Sprintf("unknown provider: %q", name),
		Suggestion: fmt.Sprintf("Pick one of: %s", strings.Join(known, ", ")),
	}
}

// NewConfigurationError creates an error for invalid provider configuration
// detected before any network call. One problem per line.
func NewConfigurationError(provider string, problems []string) *AppError {
	return &AppError{
		Code:       ErrInvalidConfig,
		Message:    fmt.Sprintf("invalid configuration for %s provider:\n  - %s", provider, strings.Join(problems, "\n  - ")),
		Suggestion: "Fix the configuration above and run the command again",
	}
}

// NewMissingAPIKeyError creates an error for a missing credential.
func NewMissingAPIKeyError(provider, envVar, website string) *AppError {
	return &AppError{
		Code:       ErrMissingAPIKey,
		Message:    fmt.Sprintf("API key is required for the %s provider", provider),
		Suggestion: fmt.Sprintf("Get a key at %s, then: export %s=\"...\"", website, envVar),
	}
}

// NewAuthenticationError creates an error for a rejected credential (HTTP 401).
// The message carries the provider's key-setup URL so the user knows where to fix it.
func NewAuthenticationError(provider, website, envVar string) *AppError {
	return &AppError{
		Code:       ErrAuthenticationFailed,
		Message:    fmt.Sprintf("%s rejected the API key (401 Unauthorized)", provider),
		Suggestion: fmt.Sprintf("Get a valid key at %s, then: export %s=\"...\"", website, envVar),
	}
}

// NewRateLimitError creates an error for request throttling (HTTP 429).
// No retry is attempted by this layer.
func NewRateLimitError(provider string) *AppError {
	return &AppError{
		Code:       ErrRateLimited,
		Message:    fmt.Sprintf("%s rate limit exceeded (429)", provider),
		Suggestion: "Wait a moment and run the command again",
	}
}

// NewServiceUnavailableError creates an error for a backend outage (5xx or
// connection failure). alternatives holds the sibling providers that are
// currently configured, computed from the registry at failure time.
func NewServiceUnavailableError(provider string, alternatives []string) *AppError {
	e := &AppError{
		Code:    ErrServiceUnavailable,
		Message: fmt.Sprintf("%s is unavailable", provider),
	}
	if len(alternatives) > 0 {
		suggestions := make([]string, len(alternatives))
		for i, alt := range alternatives {
			suggestions[i] = "--provider " + alt
		}
		e.Suggestion = "Try a configured alternative: " + strings.Join(suggestions, ", ")
	} else {
		e.Suggestion = "No alternative providers are configured; try again later"
	}
	return e
}

// NewTimeoutError creates an error for a client-side deadline expiry.
// Distinct from service-unavailable: the request was sent but never completed.
func NewTimeoutError(provider string, timeout time.Duration) *AppError {
	return &AppError{
		Code:       ErrTimeout,
		Message:    fmt.Sprintf("%s did not respond within the configured timeout (%v)", provider, timeout),
		Suggestion: fmt.Sprintf("Raise the timeout via %s_TIMEOUT or check your network connection", strings.ToUpper(provider)),
	}
}

// NewMalformedResponseError creates an error for a 2xx response whose content
// could not be parsed into a valid commit message. This is a backend defect,
// reported distinctly from configuration problems.
func NewMalformedResponseError(provider string, cause error) *AppError {
	return &AppError{
		Code:       ErrMalformedResponse,
		Message:    fmt.Sprintf("%s returned a response that is not a conventional commit message", provider),
		Cause:      cause,
		Suggestion: "Run the command again, or pick a different --model",
	}
}

// NewUpstreamError creates a generic error for any other non-2xx status.
// The raw status code is preserved for diagnostics.
func NewUpstreamError(provider string, status int, body string) *AppError {
	e := &AppError{
		Code:    ErrUpstreamFailed,
		Message: fmt.Sprintf("%s API error (status %d)", provider, status),
	}
	if body != "" {
		e.WithContext("response", body)
	}
	return e
}

// NewGitError creates an error for git command failures.
func NewGitError(err error, output string) *AppError {
	appErr := &AppError{
		Code:    ErrGitCommandFailed,
		Message: "git command failed",
		Cause:   err,
	}
	if output != "" {
		appErr.Context = map[string]interface{}{
			"output": output,
		}
	}
	return appErr
}

// NewInvalidConfigError creates an error for an unreadable configuration file.
func NewInvalidConfigError(message string) *AppError {
	return &AppError{
		Code:       ErrInvalidConfig,
		Message:    message,
		Suggestion: "Run 'commitcraft config init' to create a valid configuration file",
	}
}

// FormatError formats an error for user display.
// API keys and other sensitive data are automatically masked.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	appErr := GetAppError(err)
	if appErr != nil {
		sb.WriteString("Error: ")
		sb.WriteString(SanitizeErrorMessage(appErr.Message))

		if appErr.Cause != nil {
			sb.WriteString("\n  Cause: ")
			sb.WriteString(SanitizeErrorMessage(appErr.Cause.Error()))
		}

		if appErr.Suggestion != "" {
			sb.WriteString("\n  Suggestion: ")
			sb.WriteString(appErr.Suggestion)
		}
	} else {
		sb.WriteString("Error: ")
		sb.WriteString(SanitizeErrorMessage(err.Error()))
	}

	return sb.String()
}

// FormatErrorVerbose formats an error with full details for verbose mode.
// API keys and other sensitive data are automatically masked.
func FormatErrorVerbose(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	appErr := GetAppError(err)
	if appErr != nil {
		sb.WriteString(fmt.Sprintf("Error [%s]: %s\n", appErr.Code.String(), SanitizeErrorMessage(appErr.Message)))

		if appErr.Cause != nil {
			sb.WriteString(fmt.Sprintf("  Cause: %v\n", SanitizeErrorMessage(appErr.Cause.Error())))
			sb.WriteString("  Error chain:\n")
			printErrorChain(&sb, appErr.Cause, 2)
		}

		if len(appErr.Context) > 0 {
			sb.WriteString("  Context:\n")
			for k, v := range appErr.Context {
				sb.WriteString(fmt.Sprintf("    %s: %v\n", k, SanitizeErrorMessage(fmt.Sprintf("%v", v))))
			}
		}

		if appErr.Suggestion != "" {
			sb.WriteString(fmt.Sprintf("  Suggestion: %s\n", appErr.Suggestion))
		}
	} else {
		sb.WriteString(fmt.Sprintf("Error: %v\n", SanitizeErrorMessage(err.Error())))
		sb.WriteString("  Error chain:\n")
		printErrorChain(&sb, err, 2)
	}

	return sb.String()
}

// printErrorChain prints the error chain with indentation.
func printErrorChain(sb *strings.Builder, err error, indent int) {
	if err == nil {
		return
	}

	prefix := strings.Repeat("  ", indent)
	errMsg := SanitizeErrorMessage(err.Error())
	sb.WriteString(fmt.Sprintf("%s- %T: %v\n", prefix, err, errMsg))

	if unwrapped := errors.Unwrap(err); unwrapped != nil {
		printErrorChain(sb, unwrapped, indent+1)
	}
}

// SanitizeErrorMessage masks any API keys or sensitive data in error messages.
func SanitizeErrorMessage(msg string) string {
	result := apiKeyPattern.ReplaceAllStringFunc(msg, func(match string) string {
		if len(match) <= 4 {
			return "****"
		}
		return strings.Repeat("*", len(match)-4) + match[len(match)-4:]
	})
	return result
}

// apiKeyPattern matches OpenAI-style keys, including the sk-or-v1-... and
// sk-ant-... variants used by OpenRouter and Anthropic.
var apiKeyPattern = regexp.MustCompile(`sk-[a-zA-Z0-9_-]{10,}`)
