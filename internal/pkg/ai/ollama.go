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
	// DefaultOllamaModel is the default model for Ollama.
	DefaultOllamaModel = "qwen2.5:7b"

	// DefaultOllamaEndpoint is the default local Ollama endpoint.
	DefaultOllamaEndpoint = "http://localhost:11434"

	// DefaultOllamaTimeout is the default timeout for Ollama calls. Local
	// inference on modest hardware can be slow, so it is longer than the
	// hosted-backend default.
	DefaultOllamaTimeout = 120 * time.Second

	// ollamaChatPath is the chat path under the endpoint.
	ollamaChatPath = "/api/chat"
)

// OllamaProvider implements the Provider interface for a local Ollama
// instance. No API key is required.
type OllamaProvider struct {
	httpClient     *http.Client
	config         ProviderConfig
	desc           Descriptor
	promptTemplate *PromptTemplate
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float32 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

// ollamaChatRequest is the /api/chat request body. Streaming is disabled so
// the response arrives as a single JSON object.
type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(config ProviderConfig) (*OllamaProvider, error) {
	if config.Model == "" {
		config.Model = DefaultOllamaModel
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultOllamaEndpoint
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultOllamaTimeout
	}
	config.normalize()

	desc, err := GetDescriptor(ProviderNameOllama)
	if err != nil {
		return nil, err
	}

	return &OllamaProvider{
		httpClient:     &http.Client{Timeout: config.Timeout},
		config:         config,
		desc:           desc,
		promptTemplate: NewPromptTemplate(),
	}, nil
}

// Name returns the provider name.
func (p *OllamaProvider) Name() string {
	return ProviderNameOllama
}

// ValidateConfig validates the provider configuration offline. Ollama needs
// no credential; only the model and endpoint are checked.
func (p *OllamaProvider) ValidateConfig() []string {
	var problems []string
	if p.config.Model == "" {
		problems = append(problems, "model must not be empty")
	}
	if !strings.HasPrefix(p.config.BaseURL, "http://") && !strings.HasPrefix(p.config.BaseURL, "https://") {
		problems = append(problems, fmt.Sprintf(
			"endpoint %q must start with http:// or https://", p.config.BaseURL))
	}
	return problems
}

// GenerateCommitMessage generates a commit message via the local Ollama API.
func (p *OllamaProvider) GenerateCommitMessage(ctx context.Context, req *GenerateRequest) (*message.CommitMessage, error) {
	if req == nil || req.Diff == nil {
		return nil, apperrors.New(apperrors.ErrInvalidArguments, "diff is required")
	}

	userPrompt, err := p.promptTemplate.RenderUserPrompt(BuildPromptData(req))
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt: %w", err)
	}

	chatReq := ollamaChatRequest{
		Model: p.config.Model,
		Messages: []ollamaMessage{
			{Role: "system", Content: p.promptTemplate.GetSystemPrompt()},
			{Role: "user", Content: userPrompt},
		},
		Stream: false,
		Options: ollamaOptions{
			Temperature: *p.config.Temperature,
			NumPredict:  p.config.MaxTokens,
		},
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

// doRequest performs the single HTTP request to the chat endpoint.
func (p *OllamaProvider) doRequest(ctx context.Context, chatReq ollamaChatRequest) (string, error) {
	body, err := json.Marshal(chatReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimRight(p.config.BaseURL, "/") + ollamaChatPath

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

	if httpResp.StatusCode != http.StatusOK {
		return "", mapStatusError(p.desc, httpResp.StatusCode, string(respBody))
	}

	var resp ollamaChatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", apperrors.NewMalformedResponseError(p.desc.DisplayName, err)
	}

	if resp.Message.Content == "" {
		return "", apperrors.NewMalformedResponseError(p.desc.DisplayName,
			fmt.Errorf("response contains no message content"))
	}

	return resp.Message.Content, nil
}

// SetPromptTemplate sets a custom prompt template.
func (p *OllamaProvider) SetPromptTemplate(pt *PromptTemplate) {
	if pt != nil {
		p.promptTemplate = pt
	}
}

// GetConfig returns the provider configuration (useful for testing).
func (p *OllamaProvider) GetConfig() ProviderConfig {
	return p.config
}
