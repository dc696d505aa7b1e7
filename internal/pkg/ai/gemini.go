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
	// DefaultGeminiModel is the default model for Gemini.
	DefaultGeminiModel = "gemini-2.0-flash-001"

	// DefaultGeminiBaseURL is the default API endpoint for Gemini.
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

// GeminiProvider implements the Provider interface for Google's Gemini API.
// Authentication rides a query parameter rather than a header, and the model
// name is part of the URL path.
type GeminiProvider struct {
	httpClient     *http.Client
	config         ProviderConfig
	desc           Descriptor
	promptTemplate *PromptTemplate
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// geminiRequest is the generateContent request body.
type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

// geminiResponse is the generateContent success body. The text lives in
// candidates[0].content.parts[0].text.
type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(config ProviderConfig) (*GeminiProvider, error) {
	if config.Model == "" {
		config.Model = DefaultGeminiModel
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultGeminiBaseURL
	}
	config.normalize()

	desc, err := GetDescriptor(ProviderNameGemini)
	if err != nil {
		return nil, err
	}

	return &GeminiProvider{
		httpClient:     &http.Client{Timeout: config.Timeout},
		config:         config,
		desc:           desc,
		promptTemplate: NewPromptTemplate(),
	}, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return ProviderNameGemini
}

// ValidateConfig validates the provider configuration offline.
func (p *GeminiProvider) ValidateConfig() []string {
	var problems []string
	if p.config.APIKey == "" {
		problems = append(problems, fmt.Sprintf(
			"Gemini API key is required; get yours at %s and export %s (or %s)",
			p.desc.Website, p.desc.APIKeyEnv, p.desc.FallbackAPIKeyEnv))
	}
	if p.config.Model == "" {
		problems = append(problems, "model must not be empty")
	}
	return problems
}

// GenerateCommitMessage generates a commit message via the Gemini API.
func (p *GeminiProvider) GenerateCommitMessage(ctx context.Context, req *GenerateRequest) (*message.CommitMessage, error) {
	if req == nil || req.Diff == nil {
		return nil, apperrors.New(apperrors.ErrInvalidArguments, "diff is required")
	}

	userPrompt, err := p.promptTemplate.RenderUserPrompt(BuildPromptData(req))
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt: %w", err)
	}

	apiReq := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: userPrompt}}},
		},
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: p.promptTemplate.GetSystemPrompt()}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     *p.config.Temperature,
			MaxOutputTokens: p.config.MaxTokens,
		},
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

// doRequest performs the single HTTP request to the generateContent endpoint.
func (p *GeminiProvider) doRequest(ctx context.Context, apiReq geminiRequest) (string, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(p.config.BaseURL, "/"), p.config.Model, p.config.APIKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", mapTransportError(p.desc, err, p.config.Timeout)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	// Gemini reports a bad key as 400 with an API_KEY_INVALID detail, not 401.
	if httpResp.StatusCode == http.StatusBadRequest && strings.Contains(string(respBody), "API_KEY_INVALID") {
		return "", mapStatusError(p.desc, http.StatusUnauthorized, string(respBody))
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", mapStatusError(p.desc, httpResp.StatusCode, string(respBody))
	}

	var resp geminiResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", apperrors.NewMalformedResponseError(p.desc.DisplayName, err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 ||
		resp.Candidates[0].Content.Parts[0].Text == "" {
		return "", apperrors.NewMalformedResponseError(p.desc.DisplayName,
			fmt.Errorf("response contains no candidates"))
	}

	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// SetPromptTemplate sets a custom prompt template.
func (p *GeminiProvider) SetPromptTemplate(pt *PromptTemplate) {
	if pt != nil {
		p.promptTemplate = pt
	}
}

// GetConfig returns the provider configuration (useful for testing).
func (p *GeminiProvider) GetConfig() ProviderConfig {
	return p.config
}
