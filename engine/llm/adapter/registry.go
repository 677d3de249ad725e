package llmadapter

import (
	"fmt"
	"sync"
)

// Registry holds the adapters available for invocation, keyed by model ID.
// Re-registering a model replaces the adapter without changing its position
// in the listing order. All methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
	order    []string
}

// NewRegistry returns an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register installs adapter under modelID, replacing any previous entry.
func (r *Registry) Register(modelID string, adapter Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[modelID]; !exists {
		r.order = append(r.order, modelID)
	}
	r.adapters[modelID] = adapter
}

// Get returns the adapter registered for modelID, or an error wrapping
// ErrModelNotFound when no adapter is registered.
func (r *Registry) Get(modelID string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[modelID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelID)
	}
	return adapter, nil
}

// List returns the registered model IDs in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.adapters)
}
