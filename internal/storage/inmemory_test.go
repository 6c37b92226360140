package storage

import (
	"context"
	"testing"

	"github.com/flowbaker/agentflow/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryWorkflowStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryWorkflowStore()

	workflow := &domain.Workflow{
		ID:    "wf-1",
		Title: "Test",
		Nodes: []domain.WorkflowNode{{ID: "a", Name: "Researcher"}},
	}

	require.NoError(t, store.SaveWorkflow(ctx, workflow))

	loaded, err := store.GetWorkflow(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "Test", loaded.Title)
	require.Len(t, loaded.Nodes, 1)

	// Snapshots never alias the caller's graph.
	loaded.Nodes[0].Name = "Changed"

	reloaded, err := store.GetWorkflow(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "Researcher", reloaded.Nodes[0].Name)
}

func TestInMemoryWorkflowStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryWorkflowStore()

	_, err := store.GetWorkflow(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)

	assert.ErrorIs(t, store.DeleteWorkflow(ctx, "ghost"), domain.ErrWorkflowNotFound)
}

func TestInMemoryWorkflowStore_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryWorkflowStore()

	require.NoError(t, store.SaveWorkflow(ctx, &domain.Workflow{ID: "wf-1"}))
	require.NoError(t, store.SaveWorkflow(ctx, &domain.Workflow{ID: "wf-2"}))

	workflows, err := store.ListWorkflows(ctx)
	require.NoError(t, err)
	assert.Len(t, workflows, 2)

	require.NoError(t, store.DeleteWorkflow(ctx, "wf-1"))

	workflows, err = store.ListWorkflows(ctx)
	require.NoError(t, err)
	require.Len(t, workflows, 1)
	assert.Equal(t, "wf-2", workflows[0].ID)
}

func TestInMemoryWorkflowStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryWorkflowStore()

	require.NoError(t, store.SaveWorkflow(ctx, &domain.Workflow{ID: "wf-1", Title: "First"}))
	require.NoError(t, store.SaveWorkflow(ctx, &domain.Workflow{ID: "wf-1", Title: "Second"}))

	loaded, err := store.GetWorkflow(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "Second", loaded.Title)
}
