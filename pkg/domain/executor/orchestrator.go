package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/flowbaker/agentflow/pkg/domain"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

// ErrExecutionActive reports an attempt to start a run against a workflow
// that already has one in flight.
var ErrExecutionActive = errors.New("an execution is already active for this workflow")

// Orchestrator drives a whole run: it schedules the graph once, walks the
// order one node at a time, feeds completed outputs to dependents, reports
// status transitions to observers, and emits one summary record per run.
type Orchestrator struct {
	store        domain.WorkflowStore
	nodeExecutor *NodeExecutor
	summarySinks []domain.RunSummarySink
	handlers     []domain.ExecutionEventHandler

	// MarkSkippedOnFailure labels downstream nodes skipped after a failure
	// instead of leaving them idle.
	markSkippedOnFailure bool

	activeWorkflows map[string]struct{}
	mutex           sync.Mutex
}

type OrchestratorDeps struct {
	Store        domain.WorkflowStore
	NodeExecutor *NodeExecutor
	SummarySinks []domain.RunSummarySink

	// EventHandlers are subscribed to every run's observer, after the
	// orchestrator's own step recorder and transition logger.
	EventHandlers []domain.ExecutionEventHandler

	MarkSkippedOnFailure bool
}

func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	return &Orchestrator{
		store:                deps.Store,
		nodeExecutor:         deps.NodeExecutor,
		summarySinks:         deps.SummarySinks,
		handlers:             deps.EventHandlers,
		markSkippedOnFailure: deps.MarkSkippedOnFailure,
		activeWorkflows:      map[string]struct{}{},
	}
}

// IsExecuting reports whether a run is in flight for the workflow id.
func (o *Orchestrator) IsExecuting(workflowID string) bool {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	_, active := o.activeWorkflows[workflowID]

	return active
}

func (o *Orchestrator) acquire(workflowID string) error {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if _, active := o.activeWorkflows[workflowID]; active {
		return fmt.Errorf("%w: %s", ErrExecutionActive, workflowID)
	}

	o.activeWorkflows[workflowID] = struct{}{}

	return nil
}

func (o *Orchestrator) release(workflowID string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	delete(o.activeWorkflows, workflowID)
}

// ExecuteByID loads the latest workflow snapshot from the store, runs it, and
// writes the mutated graph back at the run boundary.
func (o *Orchestrator) ExecuteByID(ctx context.Context, workflowID string) (domain.RunSummary, error) {
	if o.store == nil {
		return domain.RunSummary{}, errors.New("orchestrator has no workflow store configured")
	}

	workflow, err := o.store.GetWorkflow(ctx, workflowID)
	if err != nil {
		return domain.RunSummary{}, err
	}

	summary, err := o.Execute(ctx, workflow)
	if err != nil {
		return domain.RunSummary{}, err
	}

	if err := o.store.SaveWorkflow(context.WithoutCancel(ctx), workflow); err != nil {
		log.Error().Err(err).Str("workflow_id", workflowID).Msg("Failed to save workflow after run")
	}

	return summary, nil
}

// Execute runs the workflow to a terminal status. The returned error covers
// pre-flight rejections only (cyclic graph, concurrent run); a run that
// starts always yields a summary, with run-level failure encoded in its
// Status and Error fields.
func (o *Orchestrator) Execute(ctx context.Context, workflow *domain.Workflow) (domain.RunSummary, error) {
	if err := o.acquire(workflow.ID); err != nil {
		return domain.RunSummary{}, err
	}
	defer o.release(workflow.ID)

	order, err := OrderComplete(workflow.Nodes, workflow.Edges)
	if err != nil {
		return domain.RunSummary{}, fmt.Errorf("workflow %s rejected: %w", workflow.ID, err)
	}

	workflow.ResetRunState()

	execution := &domain.Execution{
		ID:               xid.New().String(),
		WorkflowID:       workflow.ID,
		Status:           domain.ExecutionStatusExecuting,
		CompletedNodeIDs: []string{},
		FailedNodeIDs:    []string{},
		StartedAt:        time.Now(),
	}

	stepRecorder := NewStepRecorder()

	observer := NewExecutionObserver()
	observer.Subscribe(stepRecorder)
	observer.Subscribe(NewTransitionLogger())

	for _, handler := range o.handlers {
		observer.Subscribe(handler)
	}

	o.notifyRunStatus(ctx, observer, execution)

	log.Info().Str("workflow_id", workflow.ID).Str("execution_id", execution.ID).Msgf("Executing %d nodes", len(order))

	for position, nodeID := range order {
		if ctx.Err() != nil {
			execution.Status = domain.ExecutionStatusPaused
			log.Info().Str("execution_id", execution.ID).Msgf("Execution cancelled before node %s, pausing run", nodeID)
			break
		}

		node, ok := workflow.GetNodeByID(nodeID)
		if !ok {
			// Order was computed from this node list; a miss means the
			// graph was mutated mid-run.
			execution.Status = domain.ExecutionStatusFailed
			execution.Error = fmt.Sprintf("node %s disappeared from workflow during run", nodeID)
			break
		}

		o.executeNode(ctx, executeNodeParams{
			Workflow:  workflow,
			Node:      node,
			Execution: execution,
			Observer:  observer,
		})

		if node.Status == domain.NodeStatusFailed {
			execution.Status = domain.ExecutionStatusFailed
			execution.Error = fmt.Sprintf("node %s failed: %s", node.Name, node.Error)

			if o.markSkippedOnFailure {
				o.markRemainingSkipped(workflow, order[position+1:])
			}

			break
		}
	}

	if !execution.IsTerminal() {
		execution.Status = domain.ExecutionStatusCompleted
	}

	endedAt := time.Now()
	execution.EndedAt = &endedAt
	execution.CurrentNodeID = ""

	o.notifyRunStatus(ctx, observer, execution)

	summary := o.buildSummary(workflow, execution, stepRecorder.GetSteps())
	o.deliverSummary(ctx, summary)

	return summary, nil
}

type executeNodeParams struct {
	Workflow  *domain.Workflow
	Node      *domain.WorkflowNode
	Execution *domain.Execution
	Observer  domain.ExecutionObserver
}

func (o *Orchestrator) executeNode(ctx context.Context, p executeNodeParams) {
	node := p.Node
	execution := p.Execution

	input := o.aggregateInput(p.Workflow, node)

	startedAt := time.Now()

	node.Status = domain.NodeStatusRunning
	node.Input = input
	node.StartedAt = &startedAt
	execution.CurrentNodeID = node.ID

	o.notify(ctx, p.Observer, domain.NodeStartedEvent{
		ExecutionID: execution.ID,
		WorkflowID:  p.Workflow.ID,
		NodeID:      node.ID,
		NodeName:    node.Name,
		Input:       input,
		Timestamp:   startedAt,
	})

	// Cancellation is checked only at node boundaries: an in-flight
	// adapter or AI call finishes or times out on its own deadline.
	result, err := o.nodeExecutor.ExecuteNode(context.WithoutCancel(ctx), *node, input)

	completedAt := time.Now()
	node.CompletedAt = &completedAt
	node.DurationMS = completedAt.Sub(startedAt).Milliseconds()

	if err != nil {
		node.Status = domain.NodeStatusFailed
		node.Output = nil
		node.Error = err.Error()

		execution.FailedNodeIDs = append(execution.FailedNodeIDs, node.ID)

		o.notify(ctx, p.Observer, domain.NodeFailedEvent{
			ExecutionID: execution.ID,
			WorkflowID:  p.Workflow.ID,
			NodeID:      node.ID,
			NodeName:    node.Name,
			Error:       node.Error,
			StartedAt:   startedAt,
			EndedAt:     completedAt,
		})

		return
	}

	node.Status = domain.NodeStatusCompleted
	node.Output = result.Output
	node.Error = ""
	node.DataSource = result.DataSource

	execution.CompletedNodeIDs = append(execution.CompletedNodeIDs, node.ID)

	o.notify(ctx, p.Observer, domain.NodeCompletedEvent{
		ExecutionID: execution.ID,
		WorkflowID:  p.Workflow.ID,
		NodeID:      node.ID,
		NodeName:    node.Name,
		Output:      result.Output,
		Summary:     result.Summary,
		DataSource:  result.DataSource,
		StartedAt:   startedAt,
		EndedAt:     completedAt,
	})
}

// aggregateInput unions the node's authored settings with every direct
// predecessor's recorded output and the run-level goal.
func (o *Orchestrator) aggregateInput(workflow *domain.Workflow, node *domain.WorkflowNode) map[string]any {
	input := domain.CloneInputMap(node.Settings)

	parentOutputs := map[string]any{}

	for _, parentID := range workflow.ParentIDs(node.ID) {
		parent, ok := workflow.GetNodeByID(parentID)
		if !ok || parent.Output == nil {
			continue
		}

		parentOutputs[parentID] = parent.Output
	}

	input[domain.InputKeyParentOutputs] = parentOutputs
	input[domain.InputKeyGoal] = workflow.Goal

	return input
}

func (o *Orchestrator) markRemainingSkipped(workflow *domain.Workflow, remaining []string) {
	for _, nodeID := range remaining {
		node, ok := workflow.GetNodeByID(nodeID)
		if !ok {
			continue
		}

		if node.Status == domain.NodeStatusIdle {
			node.Status = domain.NodeStatusSkipped
		}
	}
}

func (o *Orchestrator) buildSummary(workflow *domain.Workflow, execution *domain.Execution, steps []domain.NodeRunSummary) domain.RunSummary {
	endedAt := time.Now()
	if execution.EndedAt != nil {
		endedAt = *execution.EndedAt
	}

	return domain.RunSummary{
		ExecutionID:    execution.ID,
		WorkflowID:     workflow.ID,
		Goal:           workflow.Goal,
		Status:         execution.Status,
		TotalNodes:     len(workflow.Nodes),
		CompletedCount: len(execution.CompletedNodeIDs),
		FailedCount:    len(execution.FailedNodeIDs),
		StartedAt:      execution.StartedAt,
		EndedAt:        endedAt,
		DurationMS:     endedAt.Sub(execution.StartedAt).Milliseconds(),
		Error:          execution.Error,
		Nodes:          steps,
	}
}

func (o *Orchestrator) deliverSummary(ctx context.Context, summary domain.RunSummary) {
	// Summary delivery must survive the cancellation that paused the run.
	ctx = context.WithoutCancel(ctx)

	for _, sink := range o.summarySinks {
		if err := sink.HandleRunSummary(ctx, summary); err != nil {
			log.Error().Err(err).Str("execution_id", summary.ExecutionID).Msg("Run summary sink failed")
		}
	}
}

func (o *Orchestrator) notifyRunStatus(ctx context.Context, observer domain.ExecutionObserver, execution *domain.Execution) {
	o.notify(ctx, observer, domain.RunStatusChangedEvent{
		ExecutionID: execution.ID,
		WorkflowID:  execution.WorkflowID,
		Status:      execution.Status,
		Timestamp:   time.Now(),
	})
}

func (o *Orchestrator) notify(ctx context.Context, observer domain.ExecutionObserver, event domain.ExecutionEvent) {
	if err := observer.Notify(context.WithoutCancel(ctx), event); err != nil {
		log.Error().Err(err).Msgf("Failed to notify %s event", event.GetEventType())
	}
}
