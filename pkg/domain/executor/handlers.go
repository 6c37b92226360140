package executor

import (
	"context"
	"sync"

	"github.com/flowbaker/agentflow/pkg/domain"

	"github.com/rs/zerolog/log"
)

// StepRecorder collects the chronological per-node step list of a run. The
// orchestrator folds its entries into the run summary.
type StepRecorder struct {
	steps []domain.NodeRunSummary
	mutex sync.Mutex
}

func NewStepRecorder() *StepRecorder {
	return &StepRecorder{
		steps: []domain.NodeRunSummary{},
	}
}

func (r *StepRecorder) HandleEvent(ctx context.Context, event domain.ExecutionEvent) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	switch e := event.(type) {
	case domain.NodeCompletedEvent:
		r.steps = append(r.steps, domain.NodeRunSummary{
			NodeID:     e.NodeID,
			Name:       e.NodeName,
			Status:     domain.NodeStatusCompleted,
			Summary:    e.Summary,
			DurationMS: e.EndedAt.Sub(e.StartedAt).Milliseconds(),
			DataSource: e.DataSource,
		})

	case domain.NodeFailedEvent:
		r.steps = append(r.steps, domain.NodeRunSummary{
			NodeID:     e.NodeID,
			Name:       e.NodeName,
			Status:     domain.NodeStatusFailed,
			DurationMS: e.EndedAt.Sub(e.StartedAt).Milliseconds(),
		})
	}

	return nil
}

func (r *StepRecorder) GetSteps() []domain.NodeRunSummary {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.steps
}

// TransitionLogger writes every status transition to the structured log.
type TransitionLogger struct{}

func NewTransitionLogger() *TransitionLogger {
	return &TransitionLogger{}
}

func (l *TransitionLogger) HandleEvent(ctx context.Context, event domain.ExecutionEvent) error {
	switch e := event.(type) {
	case domain.NodeStartedEvent:
		log.Info().Str("execution_id", e.ExecutionID).Str("node_id", e.NodeID).Msgf("Node %s started", e.NodeName)
	case domain.NodeCompletedEvent:
		log.Info().
			Str("execution_id", e.ExecutionID).
			Str("node_id", e.NodeID).
			Str("data_source", e.DataSource).
			Msgf("Node %s completed in %dms", e.NodeName, e.EndedAt.Sub(e.StartedAt).Milliseconds())
	case domain.NodeFailedEvent:
		log.Error().Str("execution_id", e.ExecutionID).Str("node_id", e.NodeID).Str("error", e.Error).Msgf("Node %s failed", e.NodeName)
	case domain.RunStatusChangedEvent:
		log.Info().Str("execution_id", e.ExecutionID).Str("workflow_id", e.WorkflowID).Msgf("Run status changed to %s", e.Status)
	}

	return nil
}
