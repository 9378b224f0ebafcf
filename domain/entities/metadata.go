package entities

import (
	"encoding/json"
	"sort"
)

// Metadata describes a native module as seen by one VM instance that loaded it.
type Metadata struct {
	// Name is the name scripts require the module by.
	Name string `json:"name" yaml:"name"`

	// Version is the module's semantic version, if declared.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Functions lists the module's public functions, sorted by name.
	Functions []FunctionInfo `json:"functions" yaml:"functions"`

	// ConfigSchema is the JSON schema of the module's configuration file,
	// absent when the module takes no configuration.
	ConfigSchema json.RawMessage `json:"config_schema,omitempty" yaml:"-"`
}

// FunctionInfo describes one public value of a module.
type FunctionInfo struct {
	Name string `json:"name" yaml:"name"`

	// Kind is the Lua type name of the value, normally "function".
	Kind string `json:"kind" yaml:"kind"`
}

// FunctionNames returns the names of the module's public functions.
func (m Metadata) FunctionNames() []string {
	names := make([]string, 0, len(m.Functions))
	for _, f := range m.Functions {
		if f.Kind == "function" {
			names = append(names, f.Name)
		}
	}
	return names
}

// SortFunctions orders Functions by name.
func (m *Metadata) SortFunctions() {
	sort.Slice(m.Functions, func(i, j int) bool {
		return m.Functions[i].Name < m.Functions[j].Name
	})
}
