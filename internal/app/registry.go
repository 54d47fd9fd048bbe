package app

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"firebasebindings/internal/binding"

	"google.golang.org/api/option"
)

// Registry holds initialized apps by name.
type Registry struct {
	mu      sync.RWMutex
	apps    map[string]*App
	logger  binding.Logger
	metrics binding.Metrics
}

func NewRegistry(logger binding.Logger, metrics binding.Metrics) *Registry {
	return &Registry{
		apps:    make(map[string]*App),
		logger:  logger,
		metrics: metrics,
	}
}

// Initialize creates and registers an app. Reusing a name is ErrAppExists.
func (r *Registry) Initialize(ctx context.Context, opts FirebaseOptions, name string, clientOpts ...option.ClientOption) (*App, error) {
	if name == "" {
		name = DefaultName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.apps[name]; ok {
		return nil, fmt.Errorf("%w: %s", binding.ErrAppExists, name)
	}

	a, err := Initialize(ctx, opts, name, r.logger, r.metrics, clientOpts...)
	if err != nil {
		return nil, err
	}
	r.apps[name] = a
	return a, nil
}

// Get returns the app called name (DefaultName when empty).
func (r *Registry) Get(name string) (*App, error) {
	if name == "" {
		name = DefaultName
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.apps[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", binding.ErrAppNotFound, name)
	}
	return a, nil
}

// Delete forgets the app called name.
func (r *Registry) Delete(name string) error {
	if name == "" {
		name = DefaultName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.apps[name]; !ok {
		return fmt.Errorf("%w: %s", binding.ErrAppNotFound, name)
	}
	delete(r.apps, name)
	return nil
}

// Names lists registered apps in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.apps))
	for name := range r.apps {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
