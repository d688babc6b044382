package bot

import (
	"fmt"
	mrand "math/rand"
	"sort"
	"sync"

	"domino-service/internal/domino"
	appErr "domino-service/pkg/errors"
	"domino-service/pkg/utils/random"
)

const (
	NameGreedy = "greedy"
	NameRandom = "random"
)

// Factory builds a fresh strategy instance seeded from the given rng.
type Factory = domino.StrategyFactory

// Registry resolves strategy names to compiled implementations.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// NewDefaultRegistry knows the built-in strategies.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NameGreedy, func(*mrand.Rand) domino.Strategy { return NewGreedy() })
	r.Register(NameRandom, func(rng *mrand.Rand) domino.Strategy { return NewRandomFrom(rng) })
	return r
}

func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Factory returns the factory registered under name.
func (r *Registry) Factory(name string) (Factory, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", appErr.ErrUnknownStrategy, name)
	}
	return f, nil
}

// Lookup builds one instance of name with a freshly seeded rng.
func (r *Registry) Lookup(name string) (domino.Strategy, error) {
	f, err := r.Factory(name)
	if err != nil {
		return nil, err
	}
	return f(random.New()), nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
