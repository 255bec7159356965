package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Options carries what a catalog factory needs to build a client.
type Options struct {
	Logger *slog.Logger

	// Settings holds variant specific values, e.g. "locale" or "path".
	Settings map[string]interface{}
}

// Factory builds a ready to use catalog. Factories may perform network calls
// (the provider directory is fetched at construction time).
type Factory func(ctx context.Context, opts Options) (Catalog, error)

// Registry manages the available catalog variants
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// GlobalRegistry is the default registry instance
var GlobalRegistry = NewRegistry()

// NewRegistry creates a new catalog registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a catalog factory under name
func (r *Registry) Register(name string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if factory == nil {
		return fmt.Errorf("catalog %s has no factory", name)
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("catalog %s already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// Has reports whether a catalog is registered under name
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.factories[name]
	return ok
}

// List returns the registered catalog names in alphabetical order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open builds the catalog registered under name
func (r *Registry) Open(ctx context.Context, name string, opts Options) (Catalog, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("catalog %s not found (known: %v)", name, r.List())
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Settings == nil {
		opts.Settings = map[string]interface{}{}
	}

	c, err := factory(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", name, err)
	}
	return c, nil
}
