package domain

import (
	"context"
)

// Reserved input keys. The orchestrator and the hybrid execution path inject
// these alongside a node's static input; adapters and the AI path may read
// them but must never be required to.
const (
	InputKeyGoal          = "_goal"
	InputKeyParentOutputs = "_parentOutputs"
	InputKeyRealData      = "_realData"
	InputKeyDataSource    = "_dataSource"
)

// PlanProvider turns a natural-language goal into a workflow graph. The
// returned edges are expected to form a DAG over the returned nodes; the
// orchestrator still runs its own structural check before executing.
type PlanProvider interface {
	PlanWorkflow(ctx context.Context, goal string) (*Workflow, error)
}

type CompletionRequest struct {
	Instruction string
	Input       map[string]any
}

type CompletionResult struct {
	Output  map[string]any
	Summary string
}

// CompletionService is the generative-AI boundary. Implementations must honor
// context cancellation so callers can drive timeouts.
type CompletionService interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}

// WorkflowStore durably keeps workflow snapshots keyed by id. The orchestrator
// reads the latest snapshot at run start and writes it back at run end;
// concurrent external edits mid-run are lost (last writer wins at run
// boundaries only).
type WorkflowStore interface {
	GetWorkflow(ctx context.Context, workflowID string) (*Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *Workflow) error
	DeleteWorkflow(ctx context.Context, workflowID string) error
	ListWorkflows(ctx context.Context) ([]*Workflow, error)
}
