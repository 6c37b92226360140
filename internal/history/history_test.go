package history

import (
	"fmt"
	"testing"

	"github.com/flowbaker/agentflow/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGuard struct {
	executing bool
}

func (g *stubGuard) IsExecuting(workflowID string) bool {
	return g.executing
}

func newEditableSession(t *testing.T) *EditSession {
	t.Helper()

	session := NewEditSession(EditSessionDeps{
		Workflow: &domain.Workflow{
			ID: "wf-1",
			Nodes: []domain.WorkflowNode{
				{ID: "a", Name: "Researcher"},
				{ID: "b", Name: "Writer"},
			},
			Edges: []domain.Edge{{ID: "e1", Source: "a", Target: "b"}},
		},
	})

	require.NoError(t, session.Begin())

	return session
}

func TestEditSession_RequiresEditMode(t *testing.T) {
	session := NewEditSession(EditSessionDeps{
		Workflow: &domain.Workflow{ID: "wf-1"},
	})

	err := session.AddNode(domain.WorkflowNode{ID: "a", Name: "Researcher"})
	assert.ErrorIs(t, err, ErrNotInEditMode)

	assert.ErrorIs(t, session.Undo(), ErrNotInEditMode)
	assert.ErrorIs(t, session.Redo(), ErrNotInEditMode)
}

func TestEditSession_BeginTwice(t *testing.T) {
	session := newEditableSession(t)

	assert.ErrorIs(t, session.Begin(), ErrAlreadyInEditMode)
}

func TestEditSession_BeginRefusedWhileRunning(t *testing.T) {
	guard := &stubGuard{executing: true}

	session := NewEditSession(EditSessionDeps{
		Workflow: &domain.Workflow{ID: "wf-1"},
		Guard:    guard,
	})

	assert.ErrorIs(t, session.Begin(), ErrWorkflowRunning)

	guard.executing = false
	assert.NoError(t, session.Begin())
}

func TestEditSession_EditRefusedWhileRunning(t *testing.T) {
	guard := &stubGuard{}

	session := NewEditSession(EditSessionDeps{
		Workflow: &domain.Workflow{ID: "wf-1"},
		Guard:    guard,
	})
	require.NoError(t, session.Begin())

	guard.executing = true

	err := session.AddNode(domain.WorkflowNode{ID: "a", Name: "Researcher"})
	assert.ErrorIs(t, err, ErrWorkflowRunning)
}

func TestEditSession_UndoRedo(t *testing.T) {
	session := newEditableSession(t)

	require.NoError(t, session.RenameNode("a", "Lead Researcher"))
	require.True(t, session.CanUndo())
	require.False(t, session.CanRedo())

	require.NoError(t, session.Undo())

	node, ok := session.Workflow().GetNodeByID("a")
	require.True(t, ok)
	assert.Equal(t, "Researcher", node.Name)
	assert.True(t, session.CanRedo())

	require.NoError(t, session.Redo())

	node, ok = session.Workflow().GetNodeByID("a")
	require.True(t, ok)
	assert.Equal(t, "Lead Researcher", node.Name)
}

func TestEditSession_UndoBeyondHistoryIsNoOp(t *testing.T) {
	session := newEditableSession(t)

	require.NoError(t, session.Undo())
	require.NoError(t, session.Redo())

	assert.Len(t, session.Workflow().Nodes, 2)
}

func TestEditSession_NewEditClearsRedo(t *testing.T) {
	session := newEditableSession(t)

	require.NoError(t, session.RenameNode("a", "First"))
	require.NoError(t, session.Undo())
	require.True(t, session.CanRedo())

	require.NoError(t, session.RenameNode("a", "Second"))

	assert.False(t, session.CanRedo())

	node, ok := session.Workflow().GetNodeByID("a")
	require.True(t, ok)
	assert.Equal(t, "Second", node.Name)
}

func TestEditSession_FailedEditLeavesHistoryUntouched(t *testing.T) {
	session := newEditableSession(t)

	err := session.RemoveNode("ghost")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	assert.False(t, session.CanUndo())
}

func TestEditSession_CapacityEvictsOldest(t *testing.T) {
	session := newEditableSession(t)

	// One more edit than the history holds.
	for i := 0; i <= DefaultCapacity; i++ {
		require.NoError(t, session.RenameNode("a", fmt.Sprintf("Name %d", i)))
	}

	undos := 0

	for session.CanUndo() {
		require.NoError(t, session.Undo())
		undos++
	}

	assert.Equal(t, DefaultCapacity, undos)

	// The oldest edit fell off, so full undo lands on the first rename, not
	// the original name.
	node, ok := session.Workflow().GetNodeByID("a")
	require.True(t, ok)
	assert.Equal(t, "Name 0", node.Name)
}

func TestEditSession_RemoveNodeUndoRestoresEdges(t *testing.T) {
	session := newEditableSession(t)

	require.NoError(t, session.RemoveNode("a"))
	assert.Empty(t, session.Workflow().Edges)

	require.NoError(t, session.Undo())

	workflow := session.Workflow()
	assert.Len(t, workflow.Nodes, 2)
	assert.Len(t, workflow.Edges, 1)
}

func TestEditSession_EndDiscardsHistory(t *testing.T) {
	session := newEditableSession(t)

	require.NoError(t, session.RenameNode("a", "Changed"))
	session.End()

	assert.False(t, session.IsEditing())
	assert.False(t, session.CanUndo())

	require.NoError(t, session.Begin())
	assert.False(t, session.CanUndo())

	// The edit itself survives; only the history is gone.
	node, ok := session.Workflow().GetNodeByID("a")
	require.True(t, ok)
	assert.Equal(t, "Changed", node.Name)
}
