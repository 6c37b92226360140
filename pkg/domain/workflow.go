package domain

import (
	"errors"
	"fmt"
	"time"
)

type NodeStatus string

const (
	NodeStatusIdle      NodeStatus = "idle"
	NodeStatusRunning   NodeStatus = "running"
	NodeStatusCompleted NodeStatus = "completed"
	NodeStatusFailed    NodeStatus = "failed"
	NodeStatusSkipped   NodeStatus = "skipped"
)

type ExecutionMode string

const (
	ExecutionModeAI          ExecutionMode = "ai"
	ExecutionModeIntegration ExecutionMode = "integration"
	ExecutionModeHybrid      ExecutionMode = "hybrid"
)

var (
	ErrWorkflowNotFound = errors.New("workflow not found")
	ErrNodeNotFound     = errors.New("node not found in workflow")
	ErrEdgeEndpoint     = errors.New("edge endpoint does not exist in workflow")
	ErrSelfLoopEdge     = errors.New("edge source and target are the same node")
)

// Workflow is a declarative graph of agent nodes. The edge set is expected to
// form a DAG; the scheduler treats anything else as a structural defect.
type Workflow struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Goal        string         `json:"goal"`
	Nodes       []WorkflowNode `json:"nodes"`
	Edges       []Edge         `json:"edges"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// WorkflowNode is one schedulable unit of work. The run-state fields
// (Status, Input, Output, Error, timestamps) are owned by the orchestrator
// during execution and reset at every run start.
type WorkflowNode struct {
	ID           string   `json:"id"`
	AgentID      string   `json:"agent_id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Icon         string   `json:"icon,omitempty"`
	Instruction  string   `json:"instruction"`
	Capabilities []string `json:"capabilities,omitempty"`

	ExecutionMode ExecutionMode `json:"execution_mode"`
	IntegrationID string        `json:"integration_id,omitempty"`
	DataSource    string        `json:"data_source,omitempty"`

	// Settings is the node's authored input map; it survives run-state
	// resets and seeds the resolved Input of every execution.
	Settings map[string]any `json:"settings,omitempty"`

	Status      NodeStatus     `json:"status"`
	Input       map[string]any `json:"input,omitempty"`
	Output      map[string]any `json:"output,omitempty"`
	Error       string         `json:"error,omitempty"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	DurationMS  int64          `json:"duration_ms,omitempty"`

	Position NodePosition `json:"position"`
}

type NodePosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge is a directed dependency: the source node's output feeds the target
// node's input.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

func (w *Workflow) GetNodeByID(nodeID string) (*WorkflowNode, bool) {
	for i := range w.Nodes {
		if w.Nodes[i].ID == nodeID {
			return &w.Nodes[i], true
		}
	}

	return nil, false
}

func (w *Workflow) HasEdge(source, target string) bool {
	for _, edge := range w.Edges {
		if edge.Source == source && edge.Target == target {
			return true
		}
	}

	return false
}

// ParentIDs returns the direct predecessors of a node, in edge insertion order.
func (w *Workflow) ParentIDs(nodeID string) []string {
	parents := []string{}

	for _, edge := range w.Edges {
		if edge.Target == nodeID {
			parents = append(parents, edge.Source)
		}
	}

	return parents
}

func (w *Workflow) AddNode(node WorkflowNode) error {
	if _, exists := w.GetNodeByID(node.ID); exists {
		return fmt.Errorf("node %s already exists in workflow %s", node.ID, w.ID)
	}

	if node.Status == "" {
		node.Status = NodeStatusIdle
	}

	w.Nodes = append(w.Nodes, node)
	w.UpdatedAt = time.Now()

	return nil
}

// RemoveNode deletes a node and every edge touching it.
func (w *Workflow) RemoveNode(nodeID string) error {
	index := -1

	for i := range w.Nodes {
		if w.Nodes[i].ID == nodeID {
			index = i
			break
		}
	}

	if index == -1 {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}

	w.Nodes = append(w.Nodes[:index], w.Nodes[index+1:]...)

	remaining := w.Edges[:0]

	for _, edge := range w.Edges {
		if edge.Source != nodeID && edge.Target != nodeID {
			remaining = append(remaining, edge)
		}
	}

	w.Edges = remaining
	w.UpdatedAt = time.Now()

	return nil
}

// AddEdge rejects self-loops and edges whose endpoints are missing. Adding an
// already-present (source, target) pair is a no-op.
func (w *Workflow) AddEdge(edge Edge) error {
	if edge.Source == edge.Target {
		return fmt.Errorf("%w: %s", ErrSelfLoopEdge, edge.Source)
	}

	if _, ok := w.GetNodeByID(edge.Source); !ok {
		return fmt.Errorf("%w: %s", ErrEdgeEndpoint, edge.Source)
	}

	if _, ok := w.GetNodeByID(edge.Target); !ok {
		return fmt.Errorf("%w: %s", ErrEdgeEndpoint, edge.Target)
	}

	if w.HasEdge(edge.Source, edge.Target) {
		return nil
	}

	w.Edges = append(w.Edges, edge)
	w.UpdatedAt = time.Now()

	return nil
}

func (w *Workflow) RemoveEdge(edgeID string) error {
	for i := range w.Edges {
		if w.Edges[i].ID == edgeID {
			w.Edges = append(w.Edges[:i], w.Edges[i+1:]...)
			w.UpdatedAt = time.Now()

			return nil
		}
	}

	return fmt.Errorf("edge %s not found in workflow %s", edgeID, w.ID)
}

func (w *Workflow) MoveNode(nodeID string, position NodePosition) error {
	node, ok := w.GetNodeByID(nodeID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}

	node.Position = position
	w.UpdatedAt = time.Now()

	return nil
}

func (w *Workflow) RenameNode(nodeID, name string) error {
	node, ok := w.GetNodeByID(nodeID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}

	node.Name = name
	w.UpdatedAt = time.Now()

	return nil
}

// ResetRunState clears every node's execution fields so a fresh run never
// inherits stale results.
func (w *Workflow) ResetRunState() {
	for i := range w.Nodes {
		node := &w.Nodes[i]

		node.Status = NodeStatusIdle
		node.Input = nil
		node.Output = nil
		node.Error = ""
		node.DataSource = ""
		node.StartedAt = nil
		node.CompletedAt = nil
		node.DurationMS = 0
	}
}
