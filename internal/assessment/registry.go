package assessment

import (
	"fmt"
	"sync"
)

// Registry holds the assessments a server offers, keyed by id.
type Registry struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]Assessment
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Assessment)}
}

// DefaultRegistry returns a registry with the built-in assessments.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	// Built-ins have distinct ids.
	_ = r.Register(StopBang())
	_ = r.Register(NewWeightLossQuiz())
	return r
}

// Register adds a. Duplicate ids are rejected.
func (r *Registry) Register(a Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[a.ID()]; exists {
		return fmt.Errorf("%w: duplicate assessment id %q", ErrInvalidBank, a.ID())
	}
	r.byID[a.ID()] = a
	r.order = append(r.order, a.ID())
	return nil
}

func (r *Registry) Get(id string) (Assessment, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	return a, ok
}

// List returns assessments in registration order.
func (r *Registry) List() []Assessment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Assessment, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}
