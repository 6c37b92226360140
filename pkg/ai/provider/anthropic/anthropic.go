package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/flowbaker/agentflow/pkg/ai"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultMaxTokens = 4096

// Provider implements the ai.Provider interface for Anthropic Claude models.
type Provider struct {
	client anthropic.Client
	model  string
}

func New(apiKey, model string) *Provider {
	return &Provider{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (p *Provider) ID() string {
	return fmt.Sprintf("anthropic:%s", p.model)
}

func (p *Provider) Generate(ctx context.Context, req ai.GenerateRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		// Anthropic requires max_tokens.
		maxTokens = defaultMaxTokens
	}

	msgReq := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}

	if req.System != "" {
		msgReq.System = []anthropic.TextBlockParam{
			{Text: req.System},
		}
	}

	resp, err := p.client.Messages.New(ctx, msgReq)
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var textContent strings.Builder

	for _, block := range resp.Content {
		if block.Type == "text" {
			textContent.WriteString(block.Text)
		}
	}

	return textContent.String(), nil
}
