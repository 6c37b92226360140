package executor

import (
	"context"

	"github.com/flowbaker/agentflow/pkg/domain"
)

type executionObserver struct {
	handlers []domain.ExecutionEventHandler
}

// NewExecutionObserver returns a synchronous, in-order fan-out observer.
func NewExecutionObserver() domain.ExecutionObserver {
	return &executionObserver{
		handlers: []domain.ExecutionEventHandler{},
	}
}

func (o *executionObserver) Subscribe(handler domain.ExecutionEventHandler) {
	o.handlers = append(o.handlers, handler)
}

func (o *executionObserver) Notify(ctx context.Context, event domain.ExecutionEvent) error {
	for _, handler := range o.handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			return err
		}
	}

	return nil
}
