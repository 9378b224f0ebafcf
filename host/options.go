package host

import (
	"log/slog"

	locenv "github.com/locenv/locenv-sdk/go"
	"github.com/locenv/locenv-sdk/go/infrastructure/wazero"
	lua "github.com/yuin/gopher-lua"
)

// executorConfig holds configuration for the Executor.
type executorConfig struct {
	modules          []locenv.Module
	dataDirectory    string
	workingDirectory string
	logger           *slog.Logger
	stateOptions     lua.Options
	builtinLog       bool
	imageOptions     []wazero.ImageOption
}

func defaultExecutorConfig() executorConfig {
	return executorConfig{
		dataDirectory:    locenv.DefaultDataDirectory(),
		workingDirectory: locenv.DefaultWorkingDirectory(),
		logger:           slog.Default(),
		builtinLog:       true,
	}
}

// Option defines a functional option for configuring the Executor.
type Option func(*executorConfig)

// WithModules adds modules to the catalog.
func WithModules(modules ...locenv.Module) Option {
	return func(c *executorConfig) {
		c.modules = append(c.modules, modules...)
	}
}

// WithDataDirectory sets the root module configuration is read from.
// Defaults to $LOCENV_DATA, else ~/.locenv.
func WithDataDirectory(dir string) Option {
	return func(c *executorConfig) {
		c.dataDirectory = dir
	}
}

// WithWorkingDirectory sets the directory modules see as the script's
// working directory. Defaults to the process working directory.
func WithWorkingDirectory(dir string) Option {
	return func(c *executorConfig) {
		c.workingDirectory = dir
	}
}

// WithLogger sets the logger the executor and its modules log through.
func WithLogger(logger *slog.Logger) Option {
	return func(c *executorConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStateOptions sets the gopher-lua options every State is created with.
func WithStateOptions(opts lua.Options) Option {
	return func(c *executorConfig) {
		c.stateOptions = opts
	}
}

// WithBuiltinLog enables/disables the built-in "log" module. Enabled by default.
func WithBuiltinLog(enabled bool) Option {
	return func(c *executorConfig) {
		c.builtinLog = enabled
	}
}

// WithImageOptions sets the options WASM images are compiled with.
func WithImageOptions(opts ...wazero.ImageOption) Option {
	return func(c *executorConfig) {
		c.imageOptions = append(c.imageOptions, opts...)
	}
}
