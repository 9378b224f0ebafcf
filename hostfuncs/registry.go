package hostfuncs

import (
	"fmt"

	"github.com/locenv/locenv-sdk/go/stack"
	lua "github.com/yuin/gopher-lua"
)

// Registry is an immutable, ordered collection of native functions.
// Once created via NewRegistry, functions cannot be added or removed, so one
// Registry can be registered into any number of VM instances.
type Registry struct {
	index   map[string]int
	entries []stack.FunctionEntry // wrapped, declaration order
}

// registryBuilder accumulates configuration during registry construction.
type registryBuilder struct {
	index      map[string]int
	entries    []stack.FunctionEntry
	middleware []Middleware
	errors     []error
}

// NewRegistry creates an immutable Registry with the given options.
// Returns an error if any function name is empty or registered twice.
//
// Example usage:
//
//	registry, err := NewRegistry(
//	    WithMiddleware(PanicRecoveryMiddleware("mymod")),
//	    WithFunction("hello", hello),
//	)
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	b := &registryBuilder{
		index: make(map[string]int),
	}

	for _, opt := range opts {
		opt(b)
	}

	if len(b.errors) > 0 {
		return nil, b.errors[0] // Return first error
	}

	// Apply middleware chain to all functions (FIFO order)
	wrapped := make([]stack.FunctionEntry, len(b.entries))
	for i, e := range b.entries {
		fn := e.Function
		// Apply middleware in reverse order so first middleware wraps outermost
		for j := len(b.middleware) - 1; j >= 0; j-- {
			fn = b.middleware[j](e.Name, fn)
		}
		wrapped[i] = stack.FunctionEntry{Name: e.Name, Function: fn}
	}

	return &Registry{
		index:   b.index,
		entries: wrapped,
	}, nil
}

// MustRegistry is like NewRegistry but panics on error. It is meant for
// package-level function tables declared once per module.
func MustRegistry(opts ...RegistryOption) *Registry {
	r, err := NewRegistry(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Entries returns the complete, final function list with middleware applied,
// ready for stack.SetFunctions.
func (r *Registry) Entries() []stack.FunctionEntry {
	result := make([]stack.FunctionEntry, len(r.entries))
	copy(result, r.entries)
	return result
}

// Has returns true if a function with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Names returns the registered names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	return len(r.entries)
}

// addFunction registers a function with the given name.
// Returns an error if the name is empty or already registered.
func (b *registryBuilder) addFunction(name string, fn lua.LGFunction) error {
	if name == "" {
		return fmt.Errorf("function name cannot be empty")
	}
	if fn == nil {
		return fmt.Errorf("function %q has no implementation", name)
	}
	if _, exists := b.index[name]; exists {
		return fmt.Errorf("duplicate function name: %q", name)
	}
	b.index[name] = len(b.entries)
	b.entries = append(b.entries, stack.FunctionEntry{Name: name, Function: fn})
	return nil
}

// WithFunction registers a native function under name.
func WithFunction(name string, fn lua.LGFunction) RegistryOption {
	return func(b *registryBuilder) {
		if err := b.addFunction(name, fn); err != nil {
			b.errors = append(b.errors, err)
		}
	}
}

// WithFunctions registers every entry, in order.
func WithFunctions(entries ...stack.FunctionEntry) RegistryOption {
	return func(b *registryBuilder) {
		for _, e := range entries {
			if err := b.addFunction(e.Name, e.Function); err != nil {
				b.errors = append(b.errors, err)
			}
		}
	}
}

// WithBundle registers all functions from a bundle.
// Returns an error during NewRegistry if any name conflicts with existing functions.
func WithBundle(bundle Bundle) RegistryOption {
	return WithFunctions(bundle.Functions()...)
}

// WithMiddleware adds middleware to the registry.
// Middleware executes in FIFO order (first registered wraps first).
func WithMiddleware(mw ...Middleware) RegistryOption {
	return func(b *registryBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}
