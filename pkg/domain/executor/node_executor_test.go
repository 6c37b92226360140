package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flowbaker/agentflow/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdapter struct {
	connected bool
	result    domain.AdapterResult
	err       error
	calls     int
	lastInput map[string]any
}

func (a *fakeAdapter) IsConnected() bool {
	return a.connected
}

func (a *fakeAdapter) Execute(ctx context.Context, input map[string]any) (domain.AdapterResult, error) {
	a.calls++
	a.lastInput = input

	if a.err != nil {
		return domain.AdapterResult{}, a.err
	}

	return a.result, nil
}

type fakeCompletion struct {
	results []domain.CompletionResult
	errs    []error
	calls   int
	inputs  []map[string]any
}

func (c *fakeCompletion) Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	index := c.calls
	c.calls++
	c.inputs = append(c.inputs, req.Input)

	if index < len(c.errs) && c.errs[index] != nil {
		return domain.CompletionResult{}, c.errs[index]
	}

	if index < len(c.results) {
		return c.results[index], nil
	}

	return domain.CompletionResult{Output: map[string]any{"done": true}}, nil
}

func newTestExecutor(completion domain.CompletionService, adapters map[string]domain.Adapter) *NodeExecutor {
	builtins := domain.NewAdapterRegistry()

	for id, adapter := range adapters {
		builtins.Register(id, adapter)
	}

	return NewNodeExecutor(NodeExecutorDeps{
		Builtins:      builtins,
		Completion:    completion,
		RetryBackoff:  time.Millisecond,
		AICallTimeout: time.Second,
	})
}

func TestNodeExecutor_Integration(t *testing.T) {
	adapter := &fakeAdapter{
		connected: true,
		result: domain.AdapterResult{
			Data:   map[string]any{"results": []any{"hit"}},
			Source: "web-search",
		},
	}

	exec := newTestExecutor(&fakeCompletion{}, map[string]domain.Adapter{"web-search": adapter})

	node := domain.WorkflowNode{
		ID:            "n1",
		Name:          "Researcher",
		ExecutionMode: domain.ExecutionModeIntegration,
		IntegrationID: "web-search",
	}

	result, err := exec.ExecuteNode(context.Background(), node, map[string]any{"query": "golang"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"results": []any{"hit"}}, result.Output)
	assert.Equal(t, "web-search", result.DataSource)
	assert.Equal(t, "Researcher fetched data from web-search.", result.Summary)
	assert.Equal(t, map[string]any{"query": "golang"}, adapter.lastInput)
}

func TestNodeExecutor_Integration_FailurePropagates(t *testing.T) {
	adapter := &fakeAdapter{connected: true, err: errors.New("upstream 500")}
	completion := &fakeCompletion{}

	exec := newTestExecutor(completion, map[string]domain.Adapter{"web-search": adapter})

	node := domain.WorkflowNode{
		ID:            "n1",
		Name:          "Researcher",
		ExecutionMode: domain.ExecutionModeIntegration,
		IntegrationID: "web-search",
	}

	_, err := exec.ExecuteNode(context.Background(), node, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream 500")

	// Integration mode never falls back to AI.
	assert.Zero(t, completion.calls)
}

func TestNodeExecutor_Integration_UnknownAdapter(t *testing.T) {
	exec := newTestExecutor(&fakeCompletion{}, nil)

	node := domain.WorkflowNode{
		ID:            "n1",
		Name:          "Researcher",
		ExecutionMode: domain.ExecutionModeIntegration,
		IntegrationID: "calendar",
	}

	_, err := exec.ExecuteNode(context.Background(), node, nil)
	assert.ErrorIs(t, err, domain.ErrAdapterNotFound)
}

func TestNodeExecutor_Hybrid_PassesRealDataToAI(t *testing.T) {
	adapter := &fakeAdapter{
		connected: true,
		result: domain.AdapterResult{
			Data:   map[string]any{"temperature": 21},
			Source: "weather-api",
		},
	}

	completion := &fakeCompletion{
		results: []domain.CompletionResult{
			{Output: map[string]any{"report": "mild"}, Summary: "Formatted the forecast."},
		},
	}

	exec := newTestExecutor(completion, map[string]domain.Adapter{"weather-api": adapter})

	node := domain.WorkflowNode{
		ID:            "n1",
		Name:          "Forecaster",
		ExecutionMode: domain.ExecutionModeHybrid,
		IntegrationID: "weather-api",
	}

	result, err := exec.ExecuteNode(context.Background(), node, map[string]any{"city": "Berlin"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"report": "mild"}, result.Output)
	assert.Equal(t, "weather-api+ai", result.DataSource)

	require.Len(t, completion.inputs, 1)
	aiInput := completion.inputs[0]

	assert.Equal(t, "Berlin", aiInput["city"])
	assert.Equal(t, map[string]any{"temperature": 21}, aiInput[domain.InputKeyRealData])
	assert.Equal(t, "weather-api", aiInput[domain.InputKeyDataSource])
}

func TestNodeExecutor_Hybrid_AdapterFailureFallsBackToAI(t *testing.T) {
	adapter := &fakeAdapter{connected: true, err: errors.New("connection refused")}

	completion := &fakeCompletion{
		results: []domain.CompletionResult{
			{Output: map[string]any{"report": "estimated"}, Summary: "Estimated without live data."},
		},
	}

	exec := newTestExecutor(completion, map[string]domain.Adapter{"weather-api": adapter})

	node := domain.WorkflowNode{
		ID:            "n1",
		Name:          "Forecaster",
		ExecutionMode: domain.ExecutionModeHybrid,
		IntegrationID: "weather-api",
	}

	result, err := exec.ExecuteNode(context.Background(), node, map[string]any{"city": "Berlin"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"report": "estimated"}, result.Output)
	assert.Equal(t, DataSourceAISimulated, result.DataSource)

	// The pure AI fallback never sees the reserved live-data keys.
	require.Len(t, completion.inputs, 1)
	assert.NotContains(t, completion.inputs[0], domain.InputKeyRealData)
}

func TestNodeExecutor_Hybrid_AIFailureReturnsRawAdapterData(t *testing.T) {
	adapter := &fakeAdapter{
		connected: true,
		result: domain.AdapterResult{
			Data:   map[string]any{"temperature": 21},
			Source: "weather-api",
		},
	}

	completion := &fakeCompletion{
		errs: []error{errors.New("model unavailable"), errors.New("model unavailable")},
	}

	exec := newTestExecutor(completion, map[string]domain.Adapter{"weather-api": adapter})

	node := domain.WorkflowNode{
		ID:            "n1",
		Name:          "Forecaster",
		ExecutionMode: domain.ExecutionModeHybrid,
		IntegrationID: "weather-api",
	}

	result, err := exec.ExecuteNode(context.Background(), node, nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"temperature": 21}, result.Output)
	assert.Equal(t, "weather-api", result.DataSource)
}

func TestNodeExecutor_AI_DefaultSummary(t *testing.T) {
	completion := &fakeCompletion{
		results: []domain.CompletionResult{
			{Output: map[string]any{"plan": "draft"}},
		},
	}

	exec := newTestExecutor(completion, nil)

	node := domain.WorkflowNode{ID: "n1", Name: "Planner", ExecutionMode: domain.ExecutionModeAI}

	result, err := exec.ExecuteNode(context.Background(), node, nil)
	require.NoError(t, err)

	assert.Equal(t, "Planner completed its task.", result.Summary)
	assert.Equal(t, DataSourceAISimulated, result.DataSource)
}

func TestNodeExecutor_AI_RetriesTransientError(t *testing.T) {
	completion := &fakeCompletion{
		errs: []error{errors.New("rate limited")},
		results: []domain.CompletionResult{
			{},
			{Output: map[string]any{"plan": "draft"}, Summary: "Done."},
		},
	}

	exec := newTestExecutor(completion, nil)

	node := domain.WorkflowNode{ID: "n1", Name: "Planner", ExecutionMode: domain.ExecutionModeAI}

	result, err := exec.ExecuteNode(context.Background(), node, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, completion.calls)
	assert.Equal(t, map[string]any{"plan": "draft"}, result.Output)
}

func TestNodeExecutor_AI_FailsAfterTwoAttempts(t *testing.T) {
	completion := &fakeCompletion{
		errs: []error{errors.New("rate limited"), errors.New("rate limited")},
	}

	exec := newTestExecutor(completion, nil)

	node := domain.WorkflowNode{ID: "n1", Name: "Planner", ExecutionMode: domain.ExecutionModeAI}

	_, err := exec.ExecuteNode(context.Background(), node, nil)
	require.Error(t, err)
	assert.Equal(t, 2, completion.calls)
	assert.Contains(t, err.Error(), "ai execution failed for node Planner")
}

func TestNodeExecutor_AI_RetriesTimeoutWithoutBackoff(t *testing.T) {
	completion := &fakeCompletion{
		errs: []error{context.DeadlineExceeded},
		results: []domain.CompletionResult{
			{},
			{Output: map[string]any{"plan": "draft"}},
		},
	}

	exec := newTestExecutor(completion, nil)

	node := domain.WorkflowNode{ID: "n1", Name: "Planner", ExecutionMode: domain.ExecutionModeAI}

	start := time.Now()
	result, err := exec.ExecuteNode(context.Background(), node, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, completion.calls)
	assert.Equal(t, map[string]any{"plan": "draft"}, result.Output)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestNodeExecutor_AI_CancelledContext(t *testing.T) {
	completion := &fakeCompletion{}
	exec := newTestExecutor(completion, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	node := domain.WorkflowNode{ID: "n1", Name: "Planner", ExecutionMode: domain.ExecutionModeAI}

	_, err := exec.ExecuteNode(ctx, node, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, completion.calls)
}

func TestNodeExecutor_DefaultsToAIMode(t *testing.T) {
	completion := &fakeCompletion{
		results: []domain.CompletionResult{
			{Output: map[string]any{"ok": true}, Summary: "Done."},
		},
	}

	exec := newTestExecutor(completion, nil)

	node := domain.WorkflowNode{ID: "n1", Name: "Planner"}

	result, err := exec.ExecuteNode(context.Background(), node, nil)
	require.NoError(t, err)
	assert.Equal(t, DataSourceAISimulated, result.DataSource)
}
