package openai

import (
	"context"
	"fmt"

	"github.com/flowbaker/agentflow/pkg/ai"

	"github.com/sashabaranov/go-openai"
)

// Provider implements the ai.Provider interface for OpenAI chat models.
type Provider struct {
	client *openai.Client
	model  string

	RequestSettings RequestSettings
}

type RequestSettings struct {
	Temperature float32
	TopP        float32
}

func New(apiKey, model string) *Provider {
	clientConfig := openai.DefaultConfig(apiKey)

	return &Provider{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

func (p *Provider) ID() string {
	return fmt.Sprintf("openai:%s", p.model)
}

func (p *Provider) Generate(ctx context.Context, req ai.GenerateRequest) (string, error) {
	messages := []openai.ChatCompletionMessage{}

	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: p.RequestSettings.Temperature,
		TopP:        p.RequestSettings.TopP,
	}

	if req.MaxTokens > 0 {
		chatReq.MaxCompletionTokens = req.MaxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices for model %s", p.model)
	}

	return resp.Choices[0].Message.Content, nil
}
