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
	"strings"
	"time"

	apperrors "github.com/commitcraft/commitcraft/internal/pkg/errors"
	"github.com/commitcraft/commitcraft/internal/pkg/message"
)

const (
	// DefaultAnthropicModel is the default model for Anthropic.
	DefaultAnthropicModel = "claude-3-5-haiku-latest"

	// DefaultAnthropicBaseURL is the default API endpoint for Anthropic.
	DefaultAnthropicBaseURL = "https://api.anthropic.com"

	// anthropicVersion pins the Messages API revision.
	anthropicVersion = "2023-06-01"

	// anthropicMessagesPath is the messages path under the base URL.
	anthropicMessagesPath = "/v1/messages"
)

// AnthropicProvider implements the Provider interface for Anthropic's
// Messages API.
type AnthropicProvider struct {
	httpClient     *http.Client
	config         ProviderConfig
	desc           Descriptor
	promptTemplate *PromptTemplate
}

// anthropicRequest is the Messages API request body. The system prompt is a
// top-level field, not a chat turn.
type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float32            `json:"temperature"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse is the Messages API success body. The text lives in
// content[0].text.
type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(config ProviderConfig) (*AnthropicProvider, error) {
	if config.Model == "" {
		config.Model = DefaultAnthropicModel
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultAnthropicBaseURL
	}
	config.normalize()

	desc, err := GetDescriptor(ProviderNameAnthropic)
	if err != nil {
		return nil, err
	}

	return &AnthropicProvider{
		httpClient:     &http.Client{Timeout: config.Timeout},
		config:         config,
		desc:           desc,
		promptTemplate: NewPromptTemplate(),
	}, nil
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return ProviderNameAnthropic
}

// ValidateConfig validates the provider configuration offline.
func (p *AnthropicProvider) ValidateConfig() []string {
	var problems []string
	if p.config.APIKey == "" {
		problems = append(problems, fmt.Sprintf(
			"Anthropic API key is required; get yours at %s and export %s",
			p.desc.Website, p.desc.APIKeyEnv))
	}
	if p.config.Model == "" {
		problems = append(problems, "model must not be empty")
	}
	return problems
}

// GenerateCommitMessage generates a commit message via the Anthropic API.
func (p *AnthropicProvider) GenerateCommitMessage(ctx context.Context, req *GenerateRequest) (*message.CommitMessage, error) {
	if req == nil || req.Diff == nil {
		return nil, apperrors.New(apperrors.ErrInvalidArguments, "diff is required")
	}

	userPrompt, err := p.promptTemplate.RenderUserPrompt(BuildPromptData(req))
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt: %w", err)
	}

	apiReq := anthropicRequest{
		Model:     p.config.Model,
		MaxTokens: p.config.MaxTokens,
		System:    p.promptTemplate.GetSystemPrompt(),
		Messages: []anthropicMessage{
			{Role: "user", Content: userPrompt},
		},
		Temperature: *p.config.Temperature,
	}

	requestID := apperrors.LogAPIRequest(p.Name(), p.config.BaseURL, p.config.Model, len(userPrompt))
	startTime := time.Now()

	rawText, err := p.doRequest(ctx, apiReq)
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

// doRequest performs the single HTTP request to the messages endpoint.
func (p *AnthropicProvider) doRequest(ctx context.Context, apiReq anthropicRequest) (string, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimRight(p.config.BaseURL, "/") + anthropicMessagesPath

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.config.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

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

	var resp anthropicResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", apperrors.NewMalformedResponseError(p.desc.DisplayName, err)
	}

	if len(resp.Content) == 0 || resp.Content[0].Text == "" {
		return "", apperrors.NewMalformedResponseError(p.desc.DisplayName,
			fmt.Errorf("response contains no content blocks"))
	}

	return resp.Content[0].Text, nil
}

// SetPromptTemplate sets a custom prompt template.
func (p *AnthropicProvider) SetPromptTemplate(pt *PromptTemplate) {
	if pt != nil {
		p.promptTemplate = pt
	}
}

// GetConfig returns the provider configuration (useful for testing).
func (p *AnthropicProvider) GetConfig() ProviderConfig {
	return p.config
}
