package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/flowbaker/agentflow/pkg/domain"
)

// InMemoryWorkflowStore keeps deep-copied workflow snapshots in a map. It is
// the default store and the one tests use.
type InMemoryWorkflowStore struct {
	workflowsByID map[string]*domain.Workflow
	mutex         sync.RWMutex
}

func NewInMemoryWorkflowStore() *InMemoryWorkflowStore {
	return &InMemoryWorkflowStore{
		workflowsByID: map[string]*domain.Workflow{},
	}
}

func (s *InMemoryWorkflowStore) GetWorkflow(ctx context.Context, workflowID string) (*domain.Workflow, error) {
	s.mutex.RLock()
	workflow, ok := s.workflowsByID[workflowID]
	s.mutex.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrWorkflowNotFound, workflowID)
	}

	return domain.CloneWorkflow(workflow)
}

func (s *InMemoryWorkflowStore) SaveWorkflow(ctx context.Context, workflow *domain.Workflow) error {
	clone, err := domain.CloneWorkflow(workflow)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.workflowsByID[workflow.ID] = clone

	return nil
}

func (s *InMemoryWorkflowStore) DeleteWorkflow(ctx context.Context, workflowID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.workflowsByID[workflowID]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrWorkflowNotFound, workflowID)
	}

	delete(s.workflowsByID, workflowID)

	return nil
}

func (s *InMemoryWorkflowStore) ListWorkflows(ctx context.Context) ([]*domain.Workflow, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	workflows := make([]*domain.Workflow, 0, len(s.workflowsByID))

	for _, workflow := range s.workflowsByID {
		clone, err := domain.CloneWorkflow(workflow)
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, clone)
	}

	return workflows, nil
}
