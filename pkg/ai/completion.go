package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/flowbaker/agentflow/pkg/domain"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// GenerateRequest is the minimal prompt shape every provider understands.
type GenerateRequest struct {
	System    string
	Prompt    string
	MaxTokens int
}

// Provider is one language-model backend. Implementations must honor context
// cancellation.
type Provider interface {
	ID() string
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Service adapts a Provider to the orchestrator's completion contract: it
// asks for a structured {output, summary} JSON object and degrades malformed
// bodies into a wrapped raw-text output instead of failing the call.
type Service struct {
	provider  Provider
	maxTokens int
}

type ServiceDeps struct {
	Provider Provider

	// MaxTokens caps each completion; zero lets the provider decide.
	MaxTokens int
}

func NewService(deps ServiceDeps) *Service {
	return &Service{
		provider:  deps.Provider,
		maxTokens: deps.MaxTokens,
	}
}

type completionEnvelope struct {
	Output  map[string]any `json:"output"`
	Summary string         `json:"summary"`
}

func (s *Service) Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	prompt, err := buildPrompt(req.Input)
	if err != nil {
		return domain.CompletionResult{}, err
	}

	raw, err := s.provider.Generate(ctx, GenerateRequest{
		System:    req.Instruction,
		Prompt:    prompt,
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		return domain.CompletionResult{}, fmt.Errorf("completion provider %s: %w", s.provider.ID(), err)
	}

	return decodeCompletion(raw), nil
}

func buildPrompt(input map[string]any) (string, error) {
	encodedInput, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode completion input: %w", err)
	}

	var b strings.Builder

	b.WriteString("Input data:\n")
	b.Write(encodedInput)
	b.WriteString("\n\nRespond with a single JSON object of the form ")
	b.WriteString(`{"output": {...}, "summary": "one sentence"}. `)
	b.WriteString("Put your full result under \"output\" and a short human-readable recap under \"summary\".")

	return b.String(), nil
}

// decodeCompletion never fails: an unparseable body is wrapped as
// {result: raw} so one malformed response cannot abort a run.
func decodeCompletion(raw string) domain.CompletionResult {
	body := stripCodeFence(raw)

	envelope := completionEnvelope{}

	if err := json.Unmarshal([]byte(body), &envelope); err == nil && envelope.Output != nil {
		return domain.CompletionResult{
			Output:  envelope.Output,
			Summary: envelope.Summary,
		}
	}

	log.Debug().Msg("Completion body is not the expected JSON envelope, wrapping raw text")

	return domain.CompletionResult{
		Output: map[string]any{"result": raw},
	}
}

// stripCodeFence unwraps ```json ... ``` fences models like to add.
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)

	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")

	if end := strings.LastIndex(trimmed, "```"); end >= 0 {
		trimmed = trimmed[:end]
	}

	return strings.TrimSpace(trimmed)
}
