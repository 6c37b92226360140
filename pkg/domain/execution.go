package domain

import (
	"context"
	"time"
)

type ExecutionStatus string

const (
	ExecutionStatusIdle      ExecutionStatus = "idle"
	ExecutionStatusPlanning  ExecutionStatus = "planning"
	ExecutionStatusReady     ExecutionStatus = "ready"
	ExecutionStatusExecuting ExecutionStatus = "executing"
	ExecutionStatusPaused    ExecutionStatus = "paused"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// Execution is a transient view over one workflow's run. It is not persisted;
// the run summary is the durable record.
type Execution struct {
	ID               string          `json:"id"`
	WorkflowID       string          `json:"workflow_id"`
	Status           ExecutionStatus `json:"status"`
	CurrentNodeID    string          `json:"current_node_id,omitempty"`
	CompletedNodeIDs []string        `json:"completed_node_ids"`
	FailedNodeIDs    []string        `json:"failed_node_ids"`
	StartedAt        time.Time       `json:"started_at"`
	EndedAt          *time.Time      `json:"ended_at,omitempty"`
	Error            string          `json:"error,omitempty"`
}

func (e *Execution) IsTerminal() bool {
	switch e.Status {
	case ExecutionStatusCompleted, ExecutionStatusFailed, ExecutionStatusPaused:
		return true
	}

	return false
}

// NodeRunSummary is one chronological step of a run summary.
type NodeRunSummary struct {
	NodeID     string     `json:"node_id"`
	Name       string     `json:"name"`
	Status     NodeStatus `json:"status"`
	Summary    string     `json:"summary,omitempty"`
	DurationMS int64      `json:"duration_ms"`
	DataSource string     `json:"data_source,omitempty"`
}

// RunSummary is emitted exactly once per run, whatever the outcome.
type RunSummary struct {
	ExecutionID    string           `json:"execution_id"`
	WorkflowID     string           `json:"workflow_id"`
	Goal           string           `json:"goal,omitempty"`
	Status         ExecutionStatus  `json:"status"`
	TotalNodes     int              `json:"total_nodes"`
	CompletedCount int              `json:"completed_count"`
	FailedCount    int              `json:"failed_count"`
	StartedAt      time.Time        `json:"started_at"`
	EndedAt        time.Time        `json:"ended_at"`
	DurationMS     int64            `json:"duration_ms"`
	Error          string           `json:"error,omitempty"`
	Nodes          []NodeRunSummary `json:"nodes"`
}

// RunSummarySink receives the summary record of a finished run. Sinks must not
// block the orchestrator for long; delivery happens after the terminal status
// transition.
type RunSummarySink interface {
	HandleRunSummary(ctx context.Context, summary RunSummary) error
}
