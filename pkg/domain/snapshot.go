package domain

import (
	"fmt"

	"github.com/goccy/go-json"
)

// CloneWorkflow deep-copies a workflow through a JSON round-trip. The edit
// history and the orchestrator both rely on snapshots never aliasing the
// live graph.
func CloneWorkflow(workflow *Workflow) (*Workflow, error) {
	raw, err := json.Marshal(workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workflow %s: %w", workflow.ID, err)
	}

	clone := &Workflow{}

	if err := json.Unmarshal(raw, clone); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow %s: %w", workflow.ID, err)
	}

	return clone, nil
}

// CloneInputMap shallow-copies the top level of an input map so reserved-key
// injection never mutates a node's static input.
func CloneInputMap(input map[string]any) map[string]any {
	cloned := make(map[string]any, len(input))

	for key, value := range input {
		cloned[key] = value
	}

	return cloned
}
