package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flowbaker/agentflow/pkg/domain"

	"github.com/rs/zerolog/log"
)

const (
	// DataSourceAISimulated tags outputs produced by the pure AI path.
	DataSourceAISimulated = "ai-simulated"

	defaultAICallTimeout = 60 * time.Second
	defaultRetryBackoff  = 1 * time.Second
)

type NodeExecutionResult struct {
	Output     map[string]any
	Summary    string
	DataSource string
}

// NodeExecutor runs a single node: it picks the integration, hybrid, or AI
// path from the node's execution mode and applies the fallback chain.
type NodeExecutor struct {
	registry   domain.AdapterRegistry
	builtins   domain.AdapterRegistry
	completion domain.CompletionService

	aiCallTimeout time.Duration
	retryBackoff  time.Duration
}

type NodeExecutorDeps struct {
	Registry   domain.AdapterRegistry
	Builtins   domain.AdapterRegistry
	Completion domain.CompletionService

	// AICallTimeout and RetryBackoff default to 60s and 1s.
	AICallTimeout time.Duration
	RetryBackoff  time.Duration
}

func NewNodeExecutor(deps NodeExecutorDeps) *NodeExecutor {
	aiCallTimeout := deps.AICallTimeout
	if aiCallTimeout <= 0 {
		aiCallTimeout = defaultAICallTimeout
	}

	retryBackoff := deps.RetryBackoff
	if retryBackoff <= 0 {
		retryBackoff = defaultRetryBackoff
	}

	registry := deps.Registry
	if registry == nil {
		registry = domain.NewAdapterRegistry()
	}

	builtins := deps.Builtins
	if builtins == nil {
		builtins = domain.NewAdapterRegistry()
	}

	return &NodeExecutor{
		registry:      registry,
		builtins:      builtins,
		completion:    deps.Completion,
		aiCallTimeout: aiCallTimeout,
		retryBackoff:  retryBackoff,
	}
}

func (e *NodeExecutor) ExecuteNode(ctx context.Context, node domain.WorkflowNode, input map[string]any) (NodeExecutionResult, error) {
	switch node.ExecutionMode {
	case domain.ExecutionModeIntegration:
		return e.executeIntegration(ctx, node, input)
	case domain.ExecutionModeHybrid:
		return e.executeHybrid(ctx, node, input)
	default:
		return e.executeAI(ctx, node, input)
	}
}

func (e *NodeExecutor) executeIntegration(ctx context.Context, node domain.WorkflowNode, input map[string]any) (NodeExecutionResult, error) {
	result, err := e.callAdapter(ctx, node, input)
	if err != nil {
		return NodeExecutionResult{}, fmt.Errorf("integration %s failed for node %s: %w", node.IntegrationID, node.Name, err)
	}

	return NodeExecutionResult{
		Output:     result.Data,
		Summary:    fmt.Sprintf("%s fetched data from %s.", node.Name, result.Source),
		DataSource: result.Source,
	}, nil
}

// executeHybrid runs the adapter first, then passes its raw result through
// the AI path under the reserved keys so the model reformats live data
// instead of inventing it. Adapter failure falls through to pure AI.
func (e *NodeExecutor) executeHybrid(ctx context.Context, node domain.WorkflowNode, input map[string]any) (NodeExecutionResult, error) {
	adapterResult, err := e.callAdapter(ctx, node, input)
	if err != nil {
		log.Warn().Err(err).
			Str("node_id", node.ID).
			Str("integration_id", node.IntegrationID).
			Msg("Hybrid integration attempt failed, falling back to AI execution")

		return e.executeAI(ctx, node, input)
	}

	aiInput := domain.CloneInputMap(input)
	aiInput[domain.InputKeyRealData] = adapterResult.Data
	aiInput[domain.InputKeyDataSource] = adapterResult.Source

	aiResult, err := e.executeAI(ctx, node, aiInput)
	if err != nil {
		// The live data is already in hand; a formatting failure must not
		// fail the node.
		log.Warn().Err(err).Str("node_id", node.ID).Msg("AI formatting of adapter result failed, returning raw adapter data")

		return NodeExecutionResult{
			Output:     adapterResult.Data,
			Summary:    fmt.Sprintf("%s fetched data from %s.", node.Name, adapterResult.Source),
			DataSource: adapterResult.Source,
		}, nil
	}

	aiResult.DataSource = adapterResult.Source + "+ai"

	return aiResult, nil
}

// callAdapter resolves the node's integration: a connected adapter from the
// live registry wins, then the built-in stubs.
func (e *NodeExecutor) callAdapter(ctx context.Context, node domain.WorkflowNode, input map[string]any) (domain.AdapterResult, error) {
	if node.IntegrationID == "" {
		return domain.AdapterResult{}, fmt.Errorf("%w: node %s has no integration id", domain.ErrAdapterNotFound, node.ID)
	}

	adapter, err := e.registry.Resolve(ctx, node.IntegrationID)
	if err != nil || !adapter.IsConnected() {
		adapter, err = e.builtins.Resolve(ctx, node.IntegrationID)
		if err != nil {
			return domain.AdapterResult{}, fmt.Errorf("%w: %s", domain.ErrAdapterNotFound, node.IntegrationID)
		}

		if !adapter.IsConnected() {
			return domain.AdapterResult{}, fmt.Errorf("%w: %s", domain.ErrAdapterNotConnected, node.IntegrationID)
		}
	}

	return adapter.Execute(ctx, input)
}

// executeAI calls the completion service with a per-call timeout. A timed-out
// call is retried once immediately; any other failure is retried once after a
// fixed backoff.
func (e *NodeExecutor) executeAI(ctx context.Context, node domain.WorkflowNode, input map[string]any) (NodeExecutionResult, error) {
	req := domain.CompletionRequest{
		Instruction: node.Instruction,
		Input:       input,
	}

	var lastErr error

	for attempt := 0; attempt < 2; attempt++ {
		if ctx.Err() != nil {
			return NodeExecutionResult{}, ctx.Err()
		}

		callCtx, cancel := context.WithTimeout(ctx, e.aiCallTimeout)
		result, err := e.completion.Complete(callCtx, req)
		cancel()

		if err == nil {
			summary := result.Summary
			if summary == "" {
				summary = fmt.Sprintf("%s completed its task.", node.Name)
			}

			return NodeExecutionResult{
				Output:     result.Output,
				Summary:    summary,
				DataSource: DataSourceAISimulated,
			}, nil
		}

		lastErr = err

		if attempt == 1 {
			break
		}

		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn().Str("node_id", node.ID).Msgf("AI call timed out after %s, retrying", e.aiCallTimeout)
			continue
		}

		log.Warn().Err(err).Str("node_id", node.ID).Msgf("AI call failed, retrying after %s", e.retryBackoff)

		select {
		case <-time.After(e.retryBackoff):
		case <-ctx.Done():
			return NodeExecutionResult{}, ctx.Err()
		}
	}

	return NodeExecutionResult{}, fmt.Errorf("ai execution failed for node %s: %w", node.Name, lastErr)
}
