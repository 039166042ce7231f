package tools

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps tool names to adapter constructors. Each Get returns a fresh
// adapter so option state never leaks between runs.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]func() Tool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: map[string]func() Tool{}}
}

// Register adds a constructor. Registering a name twice panics.
func (r *Registry) Register(name string, constructor func() Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(name)
	if _, exists := r.ctors[key]; exists {
		panic(fmt.Sprintf("tools: duplicate tool registration: %s", key))
	}
	r.ctors[key] = constructor
}

// Get returns a new instance of the named tool.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ctor, ok := r.ctors[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return ctor(), nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ctors[strings.ToLower(name)]
	return ok
}

// Names returns sorted names of all registered tools.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ctors))
	for name := range r.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

func init() {
	runner := NewExecRunner()
	for _, spec := range builtinSpecs {
		defaultRegistry.Register(spec.Name, func() Tool {
			return NewCommandTool(spec, runner)
		})
	}
}

// Default returns the process-wide registry holding the built-in tools.
func Default() *Registry { return defaultRegistry }

// Register adds a constructor to the default registry.
func Register(name string, constructor func() Tool) {
	defaultRegistry.Register(name, constructor)
}

// Get returns a new instance of the named tool from the default registry.
func Get(name string) (Tool, error) {
	return defaultRegistry.Get(name)
}

// All returns sorted names of all tools in the default registry.
func All() []string {
	return defaultRegistry.Names()
}
