package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
)

// Registry manages pipeline steps by name.
// Thread-safe for concurrent step registration and lookup.
type Registry struct {
	steps map[string]Step
	mu    sync.RWMutex
}

// NewRegistry creates an empty step registry.
func NewRegistry() *Registry {
	return &Registry{
		steps: make(map[string]Step),
	}
}

// Register adds a step using its name.
// Panics if a step is already registered with that name.
func (r *Registry) Register(step Step) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := step.Name()
	if _, exists := r.steps[name]; exists {
		panic(fmt.Sprintf("step already registered for name: %s", name))
	}
	r.steps[name] = step
}

// Get retrieves the step for a name.
// Returns nil if no step is registered.
func (r *Registry) Get(name string) Step {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.steps[name]
}

// Has checks if a step is registered for a name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.steps[name]
	return exists
}

// Names returns all registered step names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.steps))
	for name := range r.steps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every name is registered. Called with the resolved
// orders at orchestrator construction, so a configured order naming an
// unregistered step fails at startup instead of mid-run.
func (r *Registry) Validate(names ...string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var unknown []string
	for _, name := range names {
		if _, exists := r.steps[name]; !exists {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return errors.Newf("unknown pipeline steps: %s (registered: %s)",
			strings.Join(unknown, ", "), strings.Join(r.namesLocked(), ", "))
	}
	return nil
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.steps))
	for name := range r.steps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
