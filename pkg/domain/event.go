package domain

import (
	"context"
	"time"
)

type ExecutionEventType string

const (
	ExecutionEventTypeNodeStarted      ExecutionEventType = "node_started"
	ExecutionEventTypeNodeCompleted    ExecutionEventType = "node_completed"
	ExecutionEventTypeNodeFailed       ExecutionEventType = "node_failed"
	ExecutionEventTypeRunStatusChanged ExecutionEventType = "run_status_changed"
)

type ExecutionEvent interface {
	GetEventType() ExecutionEventType
}

type NodeStartedEvent struct {
	ExecutionID string         `json:"execution_id"`
	WorkflowID  string         `json:"workflow_id"`
	NodeID      string         `json:"node_id"`
	NodeName    string         `json:"node_name"`
	Input       map[string]any `json:"input,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

func (NodeStartedEvent) GetEventType() ExecutionEventType {
	return ExecutionEventTypeNodeStarted
}

type NodeCompletedEvent struct {
	ExecutionID string         `json:"execution_id"`
	WorkflowID  string         `json:"workflow_id"`
	NodeID      string         `json:"node_id"`
	NodeName    string         `json:"node_name"`
	Output      map[string]any `json:"output"`
	Summary     string         `json:"summary,omitempty"`
	DataSource  string         `json:"data_source,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	EndedAt     time.Time      `json:"ended_at"`
}

func (NodeCompletedEvent) GetEventType() ExecutionEventType {
	return ExecutionEventTypeNodeCompleted
}

type NodeFailedEvent struct {
	ExecutionID string    `json:"execution_id"`
	WorkflowID  string    `json:"workflow_id"`
	NodeID      string    `json:"node_id"`
	NodeName    string    `json:"node_name"`
	Error       string    `json:"error"`
	StartedAt   time.Time `json:"started_at"`
	EndedAt     time.Time `json:"ended_at"`
}

func (NodeFailedEvent) GetEventType() ExecutionEventType {
	return ExecutionEventTypeNodeFailed
}

type RunStatusChangedEvent struct {
	ExecutionID string          `json:"execution_id"`
	WorkflowID  string          `json:"workflow_id"`
	Status      ExecutionStatus `json:"status"`
	Timestamp   time.Time       `json:"timestamp"`
}

func (RunStatusChangedEvent) GetEventType() ExecutionEventType {
	return ExecutionEventTypeRunStatusChanged
}

type ExecutionEventHandler interface {
	HandleEvent(ctx context.Context, event ExecutionEvent) error
}

// ExecutionObserver fans execution events out to subscribed handlers,
// synchronously and in subscription order.
type ExecutionObserver interface {
	Subscribe(handler ExecutionEventHandler)
	Notify(ctx context.Context, event ExecutionEvent) error
}
