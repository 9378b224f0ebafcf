package locenv

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
)

// DataDirectoryEnv names the environment variable overriding the data directory.
const DataDirectoryEnv = "LOCENV_DATA"

// Module declares a native module: the name scripts require it by and the
// loader body that builds its public value. A Module value is immutable and
// shared by every VM instance that loads it; per-instance state lives in the
// Context handed to Loader.
type Module struct {
	// Name is the name passed to require, e.g. "counter" or "net.http".
	Name string `validate:"required,luamodule"`

	// Version is an optional semantic version.
	Version string `validate:"omitempty,semver"`

	// Loader builds the module's public value.
	Loader LoaderFunc `validate:"required"`

	// Config is an optional zero value of the module's configuration type.
	// Hosts derive the configuration schema from it.
	Config any `validate:"-"`
}

// Validate checks the declaration.
func (m Module) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("invalid module %q: %w", m.Name, err)
	}
	return nil
}

// Entry returns the guarded loader entry point for this module.
func (m Module) Entry(opts ...GuardOption) lua.LGFunction {
	return Wrap(m.Name, m.Loader, opts...)
}

// Preload registers the module's guarded entry point with L, so that
// require(m.Name) loads it.
func (m Module) Preload(L *lua.LState, opts ...GuardOption) {
	L.PreloadModule(m.Name, m.Entry(opts...))
}

// DefaultDataDirectory returns $LOCENV_DATA, falling back to ~/.locenv.
func DefaultDataDirectory() string {
	if dir := os.Getenv(DataDirectoryEnv); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".locenv"
	}
	return filepath.Join(home, ".locenv")
}

// DefaultWorkingDirectory returns the process working directory, or "." when
// it cannot be determined.
func DefaultWorkingDirectory() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
