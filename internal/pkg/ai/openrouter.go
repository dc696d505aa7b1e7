// Package ai provides the AI provider interface and backend implementations
// for CommitCraft.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/commitcraft/commitcraft/internal/pkg/errors"
	"github.com/commitcraft/commitcraft/internal/pkg/message"
)

const (
	// DefaultOpenRouterModel is the default model for OpenRouter.
	DefaultOpenRouterModel = "openai/gpt-4o-mini"

	// DefaultOpenRouterBaseURL is the default API endpoint for OpenRouter.
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

	// DefaultOpenRouterTimeout is the default timeout for OpenRouter calls.
	DefaultOpenRouterTimeout = 60 * time.Second

	// openRouterChatPath is the chat completions path under the base URL.
	openRouterChatPath = "/chat/completions"
)

// openRouterModelPattern validates the vendor/model-name format required by
// the gateway: lowercase letters, digits, and hyphens for the vendor
// segment; the model segment additionally allows dots.
var openRouterModelPattern = regexp.MustCompile(`^[a-z0-9-]+/[a-z0-9-\.]+$`)

// OpenRouterProvider implements the Provider interface for OpenRouter, a
// unified gateway routing to many vendors behind one OpenAI-compatible API.
// Model format: vendor/model-name (e.g. openai/gpt-4o, anthropic/claude-3-haiku).
type OpenRouterProvider struct {
	httpClient     *http.Client
	config         ProviderConfig
	desc           Descriptor
	promptTemplate *PromptTemplate
}

// openRouterChatRequest is the OpenAI-compatible request body.
type openRouterChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openRouterMessage `json:"messages"`
	Temperature float32             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
}

// openRouterMessage is one chat turn.
type openRouterMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openRouterChatResponse is the OpenAI-compatible success body. Only
// choices[0].message.content is consumed by this layer.
type openRouterChatResponse struct {
	Choices []struct {
		Message      openRouterMessage `json:"message"`
		FinishReason string            `json:"finish_reason"`
	} `json:"choices"`
}

// NewOpenRouterProvider creates a new OpenRouter provider.
// A malformed model identifier is rejected here, before any network call.
func NewOpenRouterProvider(config ProviderConfig) (*OpenRouterProvider, error) {
	if config.Model == "" {
		config.Model = DefaultOpenRouterModel
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultOpenRouterBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultOpenRouterTimeout
	}
	config.normalize()

	if !openRouterModelPattern.MatchString(config.Model) {
		return nil, apperrors.New(apperrors.ErrInvalidConfig,
			fmt.Sprintf("invalid model format %q: %s", config.Model, describeModelFormatViolation(config.Model)))
	}

	desc, err := GetDescriptor(ProviderNameOpenRouter)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	}
	httpClient := &http.Client{
		Timeout:   config.Timeout,
		Transport: transport,
	}

	return &OpenRouterProvider{
		httpClient:     httpClient,
		config:         config,
		desc:           desc,
		promptTemplate: NewPromptTemplate(),
	}, nil
}

// Name returns the provider name.
func (p *OpenRouterProvider) Name() string {
	return ProviderNameOpenRouter
}

// ValidateConfig validates the provider configuration offline.
// It reports every problem found, not just the first.
func (p *OpenRouterProvider) ValidateConfig() []string {
	var problems []string

	if p.config.APIKey == "" || len(p.config.APIKey) < 10 {
		problems = append(problems, fmt.Sprintf(
			"OpenRouter API key is required; get yours at %s and export %s",
			p.desc.Website, p.desc.APIKeyEnv))
	}

	if !openRouterModelPattern.MatchString(p.config.Model) {
		problems = append(problems, fmt.Sprintf(
			"invalid model format %q: %s (e.g. 'openai/gpt-4o')",
			p.config.Model, describeModelFormatViolation(p.config.Model)))
	}

	return problems
}

// describeModelFormatViolation names the rule a malformed model identifier
// violates.
func describeModelFormatViolation(model string) string {
	switch {
	case model == "":
		return "model must not be empty"
	case strings.ToLower(model) != model:
		return "uppercase letters are not allowed"
	case !strings.Contains(model, "/"):
		return "missing vendor segment, use 'vendor/model-name'"
	case strings.HasPrefix(model, "/"):
		return "vendor segment must not be empty"
	case strings.HasSuffix(model, "/"):
		return "model segment must not be empty"
	default:
		return "only lowercase letters, digits, hyphens (and dots in the model segment) are allowed"
	}
}

// GenerateCommitMessage generates a commit message via the OpenRouter API.
func (p *OpenRouterProvider) GenerateCommitMessage(ctx context.Context, req *GenerateRequest) (*message.CommitMessage, error) {
	if req == nil || req.Diff == nil {
		return nil, apperrors.New(apperrors.ErrInvalidArguments, "diff is required")
	}

	userPrompt, err := p.promptTemplate.RenderUserPrompt(BuildPromptData(req))
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt: %w", err)
	}

	chatReq := openRouterChatRequest{
		Model: p.config.Model,
		Messages: []openRouterMessage{
			{Role: "system", Content: p.promptTemplate.GetSystemPrompt()},
			{Role: "user", Content: userPrompt},
		},
		Temperature: *p.config.Temperature,
		MaxTokens:   p.config.MaxTokens,
	}

	requestID := apperrors.LogAPIRequest(p.Name(), p.config.BaseURL, p.config.Model, len(userPrompt))
	startTime := time.Now()

	rawText, err := p.doRequest(ctx, chatReq)
	if err != nil {
		return nil, err
	}

	apperrors.LogAPIResponse(requestID, p.Name(), http.StatusOK, len(rawText), time.Since(startTime))

	parsed, err := message.Parse(rawText)
	if err != nil {
		return nil, apperrors.NewMalformedResponseError(p.desc.DisplayName, err)
	}
	return parsed, nil
}

// doRequest performs the single HTTP request to the chat completions endpoint.
func (p *OpenRouterProvider) doRequest(ctx context.Context, chatReq openRouterChatRequest) (string, error) {
	body, err := json.Marshal(chatReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimRight(p.config.BaseURL, "/") + openRouterChatPath

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	httpReq.Header.Set("HTTP-Referer", "https://github.com/commitcraft/commitcraft")
	httpReq.Header.Set("X-Title", "CommitCraft")

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", mapTransportError(p.desc, err, p.config.Timeout)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", mapStatusError(p.desc, httpResp.StatusCode, string(respBody))
	}

	var resp openRouterChatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", apperrors.NewMalformedResponseError(p.desc.DisplayName, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", apperrors.NewMalformedResponseError(p.desc.DisplayName,
			fmt.Errorf("response contains no completion choices"))
	}

	return resp.Choices[0].Message.Content, nil
}

// SetPromptTemplate sets a custom prompt template.
func (p *OpenRouterProvider) SetPromptTemplate(pt *PromptTemplate) {
	if pt != nil {
		p.promptTemplate = pt
	}
}

// GetConfig returns the provider configuration (useful for testing).
func (p *OpenRouterProvider) GetConfig() ProviderConfig {
	return p.config
}
