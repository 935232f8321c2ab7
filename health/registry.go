package health

import "sync"

// Registry is the set of known health checks.
//
// Mutation is rare (registration during reconciliation) compared to reads
// (lookups during a run), so a single coarse lock guards the whole table.
type Registry struct {
	mu            sync.RWMutex
	checks        map[string]Check
	order         []string // registration order
	fromProviders map[string]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		checks:        make(map[string]Check),
		fromProviders: make(map[string]bool),
	}
}

// Register adds a check under its name. Re-registering an existing name
// replaces the check without duplicating the entry.
func (r *Registry) Register(check Check) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.register(check.Name(), check, false)
}

func (r *Registry) register(name string, check Check, fromProvider bool) {
	if _, exists := r.checks[name]; !exists {
		r.order = append(r.order, name)
	}
	r.checks[name] = check
	if fromProvider {
		r.fromProviders[name] = true
	}
}

// Unregister removes a check by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unregister(name)
}

func (r *Registry) unregister(name string) {
	if _, exists := r.checks[name]; !exists {
		return
	}
	delete(r.checks, name)
	delete(r.fromProviders, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Names returns the names of all registered checks in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Len returns the number of registered checks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.checks)
}

// Get returns the check registered under name.
func (r *Registry) Get(name string) (Check, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.checks[name]
	return c, ok
}

// All returns the registered checks in registration order.
func (r *Registry) All() []Check {
	r.mu.RLock()
	defer r.mu.RUnlock()

	checks := make([]Check, 0, len(r.order))
	for _, name := range r.order {
		checks = append(checks, r.checks[name])
	}
	return checks
}

// Reconcile unions the checks contributed by providers into the registry.
// Newly discovered checks are registered; provider-sourced checks whose
// provider no longer contributes them are unregistered. Checks registered
// directly (not via a provider) are left alone.
func (r *Registry) Reconcile(providers []Provider) {
	desired := make(map[string]Check)
	for _, p := range providers {
		for name, check := range p.HealthChecks() {
			desired[name] = check
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for name, check := range desired {
		r.register(name, check, true)
	}
	var gone []string
	for name := range r.fromProviders {
		if _, ok := desired[name]; !ok {
			gone = append(gone, name)
		}
	}
	for _, name := range gone {
		r.unregister(name)
	}
}
