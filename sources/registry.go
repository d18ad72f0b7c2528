package sources

import (
	"fmt"
	"sync"
)

// Entry pairs a registered key with its adapter.
type Entry struct {
	Key     string
	Adapter Adapter
}

// Registry holds all registered source adapters.
//
// The registry is populated once during process bootstrap (see BuildRegistry)
// and handed to the orchestrator; nothing re-registers mid-run. Iteration
// order is registration order so test runs are reproducible.
type Registry struct {
	mu      sync.RWMutex
	byKey   map[string]Adapter
	ordered []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byKey: make(map[string]Adapter),
	}
}

// Register adds an adapter under the given key.
// Returns ErrDuplicateKey if the key is already taken.
func (r *Registry) Register(key string, adapter Adapter) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrUnknownSource)
	}
	if adapter == nil {
		return fmt.Errorf("%w: nil adapter for %q", ErrUnknownSource, key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byKey[key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}

	r.byKey[key] = adapter
	r.ordered = append(r.ordered, key)
	return nil
}

// Get returns the adapter registered under key.
// Returns ErrUnknownSource if no adapter exists for the key.
func (r *Registry) Get(key string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, ok := r.byKey[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, key)
	}
	return adapter, nil
}

// All returns every registered adapter in registration order.
func (r *Registry) All() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, 0, len(r.ordered))
	for _, key := range r.ordered {
		entries = append(entries, Entry{Key: key, Adapter: r.byKey[key]})
	}
	return entries
}

// Keys returns the registered keys in registration order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, len(r.ordered))
	copy(keys, r.ordered)
	return keys
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byKey)
}
