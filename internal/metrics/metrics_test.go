package metrics

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/flowbaker/agentflow/pkg/domain"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_HandleRunSummary(t *testing.T) {
	recorder := NewRecorder()

	summary := domain.RunSummary{
		ExecutionID: "exec-1",
		WorkflowID:  "wf-1",
		Status:      domain.ExecutionStatusCompleted,
		DurationMS:  1500,
		Nodes: []domain.NodeRunSummary{
			{NodeID: "a", Status: domain.NodeStatusCompleted, DurationMS: 800},
			{NodeID: "b", Status: domain.NodeStatusCompleted, DurationMS: 700},
		},
	}

	require.NoError(t, recorder.HandleRunSummary(context.Background(), summary))

	failed := domain.RunSummary{
		ExecutionID: "exec-2",
		WorkflowID:  "wf-1",
		Status:      domain.ExecutionStatusFailed,
		Nodes: []domain.NodeRunSummary{
			{NodeID: "a", Status: domain.NodeStatusFailed, DurationMS: 100},
		},
	}

	require.NoError(t, recorder.HandleRunSummary(context.Background(), failed))

	assert.Equal(t, float64(1), testutil.ToFloat64(recorder.runsTotal.WithLabelValues("completed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(recorder.runsTotal.WithLabelValues("failed")))
	assert.Equal(t, float64(2), testutil.ToFloat64(recorder.nodesTotal.WithLabelValues("completed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(recorder.nodesTotal.WithLabelValues("failed")))
}

func TestRecorder_Handler(t *testing.T) {
	recorder := NewRecorder()

	require.NoError(t, recorder.HandleRunSummary(context.Background(), domain.RunSummary{
		Status: domain.ExecutionStatusCompleted,
	}))

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()

	recorder.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `agentflow_runs_total{status="completed"} 1`)
}
