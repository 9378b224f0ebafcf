package hostfuncs

import (
	"github.com/locenv/locenv-sdk/go/stack"
)

// Bundle is a pre-configured set of related native functions.
// Bundles allow registering several functions at once.
type Bundle interface {
	// Functions returns the bundle's entries in registration order.
	Functions() []stack.FunctionEntry
}

// staticBundle implements Bundle with a fixed set of functions.
type staticBundle struct {
	entries []stack.FunctionEntry
}

func (b *staticBundle) Functions() []stack.FunctionEntry {
	return b.entries
}

// NewBundle groups entries into a Bundle.
func NewBundle(entries ...stack.FunctionEntry) Bundle {
	return &staticBundle{entries: entries}
}

// Merge combines multiple bundles into one.
// Later bundles' functions follow earlier ones; duplicate names are reported
// by NewRegistry.
func Merge(bundles ...Bundle) Bundle {
	var merged []stack.FunctionEntry
	for _, b := range bundles {
		merged = append(merged, b.Functions()...)
	}
	return &staticBundle{entries: merged}
}
