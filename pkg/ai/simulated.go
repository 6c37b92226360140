package ai

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
)

// SimulatedProvider stands in when no model API key is configured. It answers
// every prompt with a canned envelope so workflows stay runnable end to end
// in development environments.
type SimulatedProvider struct{}

func NewSimulatedProvider() *SimulatedProvider {
	return &SimulatedProvider{}
}

func (p *SimulatedProvider) ID() string {
	return "simulated"
}

func (p *SimulatedProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	instruction := req.System
	if len(instruction) > 80 {
		instruction = instruction[:80]
	}

	raw, err := json.Marshal(completionEnvelope{
		Output: map[string]any{
			"result": fmt.Sprintf("Simulated completion for instruction: %s", instruction),
		},
		Summary: "Simulated a completion.",
	})
	if err != nil {
		return "", err
	}

	return string(raw), nil
}
