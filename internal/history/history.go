package history

import (
	"errors"
	"fmt"
	"sync"

	"github.com/flowbaker/agentflow/pkg/domain"
)

const DefaultCapacity = 30

var (
	ErrNotInEditMode     = errors.New("workflow is not in edit mode")
	ErrAlreadyInEditMode = errors.New("workflow is already in edit mode")
	ErrWorkflowRunning   = errors.New("workflow has an active execution")
)

// RunGuard lets the edit session refuse mutations while the orchestrator is
// executing the same workflow.
type RunGuard interface {
	IsExecuting(workflowID string) bool
}

// EditSession is a bounded undo/redo ledger over whole-graph snapshots.
// Every mutating edit first pushes a deep copy of the pre-mutation graph;
// history does not survive leaving edit mode.
type EditSession struct {
	workflow *domain.Workflow
	guard    RunGuard

	undoStack []*domain.Workflow
	redoStack []*domain.Workflow
	capacity  int
	editing   bool

	mutex sync.Mutex
}

type EditSessionDeps struct {
	Workflow *domain.Workflow
	Guard    RunGuard

	// Capacity bounds the undo stack; zero means DefaultCapacity.
	Capacity int
}

func NewEditSession(deps EditSessionDeps) *EditSession {
	capacity := deps.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &EditSession{
		workflow:  deps.Workflow,
		guard:     deps.Guard,
		capacity:  capacity,
		undoStack: []*domain.Workflow{},
		redoStack: []*domain.Workflow{},
	}
}

// Workflow returns the current graph. Callers must not mutate it directly;
// all edits go through the session.
func (s *EditSession) Workflow() *domain.Workflow {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.workflow
}

func (s *EditSession) IsEditing() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.editing
}

// Begin enters edit mode with empty history. Refused while the workflow has
// an active execution.
func (s *EditSession) Begin() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.editing {
		return ErrAlreadyInEditMode
	}

	if s.guard != nil && s.guard.IsExecuting(s.workflow.ID) {
		return fmt.Errorf("%w: %s", ErrWorkflowRunning, s.workflow.ID)
	}

	s.editing = true
	s.undoStack = s.undoStack[:0]
	s.redoStack = s.redoStack[:0]

	return nil
}

// End leaves edit mode and discards the history.
func (s *EditSession) End() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.editing = false
	s.undoStack = s.undoStack[:0]
	s.redoStack = s.redoStack[:0]
}

func (s *EditSession) CanUndo() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return len(s.undoStack) > 0
}

func (s *EditSession) CanRedo() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return len(s.redoStack) > 0
}

// Undo restores the most recent snapshot; a no-op when no history remains.
func (s *EditSession) Undo() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.editing {
		return ErrNotInEditMode
	}

	if len(s.undoStack) == 0 {
		return nil
	}

	snapshot := s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]

	s.redoStack = append(s.redoStack, s.workflow)
	s.workflow = snapshot

	return nil
}

// Redo is the mirror of Undo; a no-op when nothing was undone.
func (s *EditSession) Redo() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.editing {
		return ErrNotInEditMode
	}

	if len(s.redoStack) == 0 {
		return nil
	}

	snapshot := s.redoStack[len(s.redoStack)-1]
	s.redoStack = s.redoStack[:len(s.redoStack)-1]

	s.undoStack = append(s.undoStack, s.workflow)
	s.workflow = snapshot

	return nil
}

func (s *EditSession) AddNode(node domain.WorkflowNode) error {
	return s.apply(func(w *domain.Workflow) error {
		return w.AddNode(node)
	})
}

func (s *EditSession) RemoveNode(nodeID string) error {
	return s.apply(func(w *domain.Workflow) error {
		return w.RemoveNode(nodeID)
	})
}

func (s *EditSession) AddEdge(edge domain.Edge) error {
	return s.apply(func(w *domain.Workflow) error {
		return w.AddEdge(edge)
	})
}

func (s *EditSession) RemoveEdge(edgeID string) error {
	return s.apply(func(w *domain.Workflow) error {
		return w.RemoveEdge(edgeID)
	})
}

func (s *EditSession) MoveNode(nodeID string, position domain.NodePosition) error {
	return s.apply(func(w *domain.Workflow) error {
		return w.MoveNode(nodeID, position)
	})
}

func (s *EditSession) RenameNode(nodeID, name string) error {
	return s.apply(func(w *domain.Workflow) error {
		return w.RenameNode(nodeID, name)
	})
}

func (s *EditSession) SetNodeDescription(nodeID, description string) error {
	return s.apply(func(w *domain.Workflow) error {
		node, ok := w.GetNodeByID(nodeID)
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, nodeID)
		}

		node.Description = description

		return nil
	})
}

// apply snapshots the pre-mutation graph, runs the edit, and clears the redo
// stack. A failed edit leaves history untouched.
func (s *EditSession) apply(mutate func(w *domain.Workflow) error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.editing {
		return ErrNotInEditMode
	}

	if s.guard != nil && s.guard.IsExecuting(s.workflow.ID) {
		return fmt.Errorf("%w: %s", ErrWorkflowRunning, s.workflow.ID)
	}

	snapshot, err := domain.CloneWorkflow(s.workflow)
	if err != nil {
		return err
	}

	if err := mutate(s.workflow); err != nil {
		return err
	}

	s.undoStack = append(s.undoStack, snapshot)

	if len(s.undoStack) > s.capacity {
		s.undoStack = s.undoStack[1:]
	}

	s.redoStack = s.redoStack[:0]

	return nil
}
