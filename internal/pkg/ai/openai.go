// Package ai provides the AI provider interface and backend implementations
// for CommitCraft.
package ai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	apperrors "github.com/commitcraft/commitcraft/internal/pkg/errors"
	"github.com/commitcraft/commitcraft/internal/pkg/message"
)

const (
	// DefaultOpenAIModel is the default model for OpenAI.
	DefaultOpenAIModel = "gpt-4o-mini"
)

// OpenAIProvider implements the Provider interface for OpenAI.
type OpenAIProvider struct {
	client         *openai.Client
	config         ProviderConfig
	desc           Descriptor
	promptTemplate *PromptTemplate
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(config ProviderConfig) (*OpenAIProvider, error) {
	if config.Model == "" {
		config.Model = DefaultOpenAIModel
	}
	config.normalize()

	desc, err := GetDescriptor(ProviderNameOpenAI)
	if err != nil {
		return nil, err
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}

	return &OpenAIProvider{
		client:         openai.NewClientWithConfig(clientConfig),
		config:         config,
		desc:           desc,
		promptTemplate: NewPromptTemplate(),
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return ProviderNameOpenAI
}

// ValidateConfig validates the provider configuration offline.
func (p *OpenAIProvider) ValidateConfig() []string {
	var problems []string
	if p.config.APIKey == "" {
		problems = append(problems, fmt.Sprintf(
			"OpenAI API key is required; get yours at %s and export %s",
			p.desc.Website, p.desc.APIKeyEnv))
	}
	if p.config.Model == "" {
		problems = append(problems, "model must not be empty")
	}
	return problems
}

// GenerateCommitMessage generates a commit message via the OpenAI API.
func (p *OpenAIProvider) GenerateCommitMessage(ctx context.Context, req *GenerateRequest) (*message.CommitMessage, error) {
	if req == nil || req.Diff == nil {
		return nil, apperrors.New(apperrors.ErrInvalidArguments, "diff is required")
	}

	userPrompt, err := p.promptTemplate.RenderUserPrompt(BuildPromptData(req))
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt: %w", err)
	}

	requestID := apperrors.LogAPIRequest(p.Name(), p.config.BaseURL, p.config.Model, len(userPrompt))
	startTime := time.Now()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.promptTemplate.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: *p.config.Temperature,
		MaxTokens:   p.config.MaxTokens,
	})
	if err != nil {
		return nil, mapOpenAICompatibleError(p.desc, err, p.config.Timeout)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, apperrors.NewMalformedResponseError(p.desc.DisplayName,
			fmt.Errorf("response contains no completion choices"))
	}

	rawText := resp.Choices[0].Message.Content
	apperrors.LogAPIResponse(requestID, p.Name(), http.StatusOK, len(rawText), time.Since(startTime))

	parsed, err := message.Parse(rawText)
	if err != nil {
		return nil, apperrors.NewMalformedResponseError(p.desc.DisplayName, err)
	}
	return parsed, nil
}

// SetPromptTemplate sets a custom prompt template.
func (p *OpenAIProvider) SetPromptTemplate(pt *PromptTemplate) {
	if pt != nil {
		p.promptTemplate = pt
	}
}

// GetConfig returns the provider configuration (useful for testing).
func (p *OpenAIProvider) GetConfig() ProviderConfig {
	return p.config
}
