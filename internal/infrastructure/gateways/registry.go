package gateways

import (
	"fmt"
	"sort"
	"sync"

	domainerrors "avilegal.backend/internal/domain/errors"
)

// Registry holds the gateway adapters keyed by identifier.
type Registry struct {
	gateways map[string]Gateway
	mu       sync.RWMutex
}

func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[string]Gateway, len(gateways))}
	for _, g := range gateways {
		r.Register(g)
	}
	return r
}

// Register adds or replaces the adapter for g.Name().
func (r *Registry) Register(g Gateway) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gateways[g.Name()] = g
}

func (r *Registry) Get(name string) (Gateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.gateways[name]
	if !ok {
		return nil, domainerrors.NewError(fmt.Sprintf("unsupported payment gateway %q", name), domainerrors.ErrValidation)
	}
	return g, nil
}

// Names returns the registered identifiers sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
