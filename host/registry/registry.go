// Package registry holds the module catalog an executor serves VM instances from.
package registry

import (
	"fmt"
	"sort"
	"sync"

	locenv "github.com/locenv/locenv-sdk/go"
	"github.com/locenv/locenv-sdk/go/application/schema"
)

// registryConfig holds configuration for the Registry.
type registryConfig struct {
	strictMode bool // Fail on duplicate registrations
}

func defaultRegistryConfig() registryConfig {
	return registryConfig{
		strictMode: true, // prevent accidental overwrites
	}
}

// RegistryOption configures a Registry instance.
type RegistryOption func(*registryConfig)

// WithStrictMode enables/disables strict mode for duplicate registrations.
// Default is true (fail on duplicates). Disable only for testing or hot-reloading.
func WithStrictMode(enabled bool) RegistryOption {
	return func(c *registryConfig) {
		c.strictMode = enabled
	}
}

// Registry is a concurrency-safe catalog of module declarations, keyed by the
// name scripts require them by.
type Registry struct {
	config  registryConfig
	mu      sync.Mutex
	modules sync.Map // map[string]locenv.Module
	schemas sync.Map // map[string][]byte (json schema)
}

// NewRegistry creates a new Registry with the given options.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry{config: cfg}
}

// Register validates m and adds it to the catalog. When m declares a Config
// type, its JSON schema is generated once here.
func (r *Registry) Register(m locenv.Module) error {
	if err := m.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.config.strictMode {
		if _, exists := r.modules.Load(m.Name); exists {
			return fmt.Errorf("module %q already registered", m.Name)
		}
	}

	if m.Config != nil {
		data, err := schema.GenerateSchema(m.Config)
		if err != nil {
			return fmt.Errorf("failed to generate config schema for %s: %w", m.Name, err)
		}
		r.schemas.Store(m.Name, data)
	} else {
		r.schemas.Delete(m.Name)
	}
	r.modules.Store(m.Name, m)
	return nil
}

// Get returns the module registered under name.
func (r *Registry) Get(name string) (locenv.Module, bool) {
	v, ok := r.modules.Load(name)
	if !ok {
		return locenv.Module{}, false
	}
	return v.(locenv.Module), true
}

// GetSchema retrieves the JSON schema of a module's configuration.
func (r *Registry) GetSchema(name string) ([]byte, bool) {
	v, ok := r.schemas.Load(name)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

// List returns all registered module names, sorted.
func (r *Registry) List() []string {
	var keys []string
	r.modules.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	sort.Strings(keys)
	return keys
}

// Modules returns every registered module, sorted by name.
func (r *Registry) Modules() []locenv.Module {
	names := r.List()
	out := make([]locenv.Module, 0, len(names))
	for _, name := range names {
		if m, ok := r.Get(name); ok {
			out = append(out, m)
		}
	}
	return out
}
