package backend

import (
	"sort"
	"sync"

	"github.com/josephjilovec/quantumflow/internal/errors"
)

// Registry manages named executors. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	executors map[string]Executor
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[string]Executor),
	}
}

// DefaultRegistry returns a registry with the bundled reference executors:
// the local classical executor and the cirq, qiskit and pennylane
// simulators.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, e := range []Executor{
		NewClassical(),
		NewSimulator("cirq"),
		NewSimulator("qiskit"),
		NewSimulator("pennylane"),
	} {
		// Bundled names never collide
		_ = r.Register(e)
	}
	return r
}

// Register adds an executor to the registry
func (r *Registry) Register(e Executor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.executors[e.Name()]; exists {
		return errors.Newf(errors.ErrCodeExecDuplicateBackend, "backend %s already registered", e.Name())
	}
	r.executors[e.Name()] = e
	return nil
}

// Get retrieves an executor by backend name
func (r *Registry) Get(name string) (Executor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.executors[name]
	return e, ok
}

// Names returns all registered backend names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.executors))
	for name := range r.executors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
