package planner

import (
	"context"
	"fmt"

	"github.com/flowbaker/agentflow/pkg/domain"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

const planningInstruction = `You are a workflow planner. Given a goal, design a multi-agent workflow as a JSON object:
{"title": "...", "description": "...", "nodes": [{"name": "...", "instruction": "system prompt for this agent", "mode": "ai|integration|hybrid", "integration": "web-search|email|", "depends_on": ["name of prerequisite node", ...]}]}
Use "hybrid" with integration "web-search" for research steps and "ai" for reasoning steps. Keep the graph acyclic and under eight nodes.`

// AIPlanner asks the completion service to design a workflow for a goal.
type AIPlanner struct {
	completion domain.CompletionService
}

type AIPlannerDeps struct {
	Completion domain.CompletionService
}

func NewAIPlanner(deps AIPlannerDeps) *AIPlanner {
	return &AIPlanner{
		completion: deps.Completion,
	}
}

func (p *AIPlanner) PlanWorkflow(ctx context.Context, goal string) (*domain.Workflow, error) {
	result, err := p.completion.Complete(ctx, domain.CompletionRequest{
		Instruction: planningInstruction,
		Input: map[string]any{
			"goal": goal,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("planning failed for goal %q: %w", goal, err)
	}

	doc, err := documentFromOutput(result.Output)
	if err != nil {
		return nil, fmt.Errorf("planner returned an unusable plan for goal %q: %w", goal, err)
	}

	doc.Goal = goal

	workflow, err := BuildWorkflow(doc)
	if err != nil {
		return nil, fmt.Errorf("planner returned an unusable plan for goal %q: %w", goal, err)
	}

	log.Info().Str("workflow_id", workflow.ID).Msgf("Planned %d nodes for goal %q", len(workflow.Nodes), goal)

	return workflow, nil
}

// documentFromOutput reinterprets the completion's output map as a plan
// document through a JSON round-trip.
func documentFromOutput(output map[string]any) (PlanDocument, error) {
	raw, err := json.Marshal(output)
	if err != nil {
		return PlanDocument{}, err
	}

	return ParsePlanDocument(raw, true)
}
