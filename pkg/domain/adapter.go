package domain

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrAdapterNotFound     = errors.New("adapter not found")
	ErrAdapterNotConnected = errors.New("adapter is not connected")
)

// AdapterResult is the outcome of a successful adapter call. Source names the
// adapter that actually produced the data, for observability.
type AdapterResult struct {
	Data   map[string]any
	Source string
}

// Adapter is an external capability provider (search, email, ...) invoked
// instead of, or alongside, the AI path.
type Adapter interface {
	IsConnected() bool
	Execute(ctx context.Context, input map[string]any) (AdapterResult, error)
}

// AdapterRegistry resolves adapters by integration id. It replaces a global
// mutable registry: the orchestrator receives one at construction.
type AdapterRegistry interface {
	Register(integrationID string, adapter Adapter)
	Resolve(ctx context.Context, integrationID string) (Adapter, error)
}

type adapterRegistry struct {
	adaptersByID map[string]Adapter
	mutex        sync.RWMutex
}

func NewAdapterRegistry() AdapterRegistry {
	return &adapterRegistry{
		adaptersByID: make(map[string]Adapter),
	}
}

func (r *adapterRegistry) Register(integrationID string, adapter Adapter) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.adaptersByID[integrationID] = adapter
}

func (r *adapterRegistry) Resolve(ctx context.Context, integrationID string) (Adapter, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	adapter, ok := r.adaptersByID[integrationID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAdapterNotFound, integrationID)
	}

	return adapter, nil
}
