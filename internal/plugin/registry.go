package plugin

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps plugin identifiers to descriptors.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Descriptor
}

// NewRegistry creates a new empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[string]Descriptor),
	}
}

// DefaultRegistry returns a registry holding the plugins the site uses: the
// novela content theme, the web-app manifest generator and Google Analytics.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, d := range []Descriptor{NovelaTheme(), Manifest(), GoogleAnalytics()} {
		if err := r.Register(d); err != nil {
			panic(fmt.Sprintf("plugin: builtin descriptor %s: %v", d.Name, err))
		}
	}
	return r
}

// Register adds a descriptor to the registry.
// Returns an error if a descriptor with the same name already exists.
func (r *Registry) Register(d Descriptor) error {
	if err := d.validate(); err != nil {
		return fmt.Errorf("invalid plugin descriptor: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[d.Name]; exists {
		return fmt.Errorf("plugin %s already registered", d.Name)
	}
	r.plugins[d.Name] = d
	return nil
}

// Lookup retrieves a descriptor by identifier.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.plugins[name]
	return d, ok
}

// Has reports whether a descriptor is registered for name.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// TypeOf returns the registered type of an identifier, or TypeUnknown.
func (r *Registry) TypeOf(name string) Type {
	if d, ok := r.Lookup(name); ok {
		return d.Type
	}
	return TypeUnknown
}

// List returns all registered descriptors sorted by name.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Descriptor, 0, len(r.plugins))
	for _, d := range r.plugins {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// ListByType returns all descriptors of a specific type sorted by name.
func (r *Registry) ListByType(t Type) []Descriptor {
	var result []Descriptor
	for _, d := range r.List() {
		if d.Type == t {
			result = append(result, d)
		}
	}
	return result
}

// ValidateEntry runs the entry's options through its descriptor. Entries without a
// descriptor are opaque and always pass.
func (r *Registry) ValidateEntry(e Entry) error {
	d, ok := r.Lookup(e.Resolve)
	if !ok || d.Validate == nil {
		return nil
	}
	return d.Validate(e.Options)
}
