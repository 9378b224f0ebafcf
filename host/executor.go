package host

import (
	"context"
	"fmt"
	"sync"

	locenv "github.com/locenv/locenv-sdk/go"
	"github.com/locenv/locenv-sdk/go/domain/entities"
	"github.com/locenv/locenv-sdk/go/host/registry"
	modlog "github.com/locenv/locenv-sdk/go/log"
	lua "github.com/yuin/gopher-lua"
)

// Executor serves a catalog of native modules to VM instances. It is safe for
// concurrent use; the States it creates are not.
type Executor struct {
	config   executorConfig
	registry *registry.Registry
	loader   *Loader

	mu     sync.Mutex
	closed bool
}

// NewExecutor creates a new executor with the given options.
func NewExecutor(opts ...Option) (*Executor, error) {
	cfg := defaultExecutorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Executor{
		config:   cfg,
		registry: registry.NewRegistry(),
		loader:   NewLoader(WithLoaderLogger(cfg.logger), WithLoaderImageOptions(cfg.imageOptions...)),
	}
	if cfg.builtinLog {
		if err := e.registry.Register(modlog.Module()); err != nil {
			return nil, fmt.Errorf("failed to register builtin log module: %w", err)
		}
	}
	for _, m := range cfg.modules {
		if err := e.Register(m); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Register adds m to the catalog. States created afterwards can require it.
func (e *Executor) Register(m locenv.Module) error {
	if err := e.registry.Register(m); err != nil {
		return fmt.Errorf("failed to register module: %w", err)
	}
	e.config.logger.Debug("module registered", "module", m.Name, "version", m.Version)
	return nil
}

// LoadPlugin opens a Go plugin image and registers the module it exports.
func (e *Executor) LoadPlugin(path string) (locenv.Module, error) {
	m, err := e.loader.LoadPlugin(path)
	if err != nil {
		return locenv.Module{}, err
	}
	return m, e.Register(m)
}

// LoadWasm compiles a WASM binary and registers it as module name.
func (e *Executor) LoadWasm(ctx context.Context, name string, wasm []byte) (locenv.Module, error) {
	img, m, err := e.loader.loadWasm(ctx, name, wasm)
	if err != nil {
		return locenv.Module{}, err
	}
	if err := e.Register(m); err != nil {
		if cerr := e.loader.discard(ctx, img); cerr != nil {
			e.config.logger.Warn("failed to close wasm image", "module", name, "error", cerr)
		}
		return m, err
	}
	return m, nil
}

// Modules returns the catalog's module names, sorted.
func (e *Executor) Modules() []string {
	return e.registry.List()
}

func (e *Executor) guardOptions() []locenv.GuardOption {
	return []locenv.GuardOption{
		locenv.WithLogger(e.config.logger),
		locenv.WithDataDirectory(e.config.dataDirectory),
		locenv.WithWorkingDirectory(e.config.workingDirectory),
	}
}

// NewState creates a VM instance with every catalog module preloaded. ctx
// bounds the execution of scripts run in the State.
func (e *Executor) NewState(ctx context.Context) (*State, error) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("executor is closed")
	}

	L := lua.NewState(e.config.stateOptions)
	if ctx != nil {
		L.SetContext(ctx)
	}
	opts := e.guardOptions()
	for _, m := range e.registry.Modules() {
		m.Preload(L, opts...)
	}
	return &State{L: L, logger: e.config.logger}, nil
}

// Describe loads module name into a scratch VM instance and reports what it
// exposes.
func (e *Executor) Describe(ctx context.Context, name string) (entities.Metadata, error) {
	m, ok := e.registry.Get(name)
	if !ok {
		return entities.Metadata{}, fmt.Errorf("module %q not found", name)
	}

	s, err := e.NewState(ctx)
	if err != nil {
		return entities.Metadata{}, err
	}
	defer s.Close()

	value, err := s.Require(name)
	if err != nil {
		return entities.Metadata{}, err
	}

	md := entities.Metadata{Name: m.Name, Version: m.Version}
	if tbl, ok := value.(*lua.LTable); ok {
		tbl.ForEach(func(k, v lua.LValue) {
			md.Functions = append(md.Functions, entities.FunctionInfo{Name: k.String(), Kind: v.Type().String()})
		})
	}
	md.SortFunctions()
	if schema, ok := e.registry.GetSchema(name); ok {
		md.ConfigSchema = schema
	}
	return md, nil
}

// Close releases the module images the executor loaded. States already
// created keep working until the images they use are gone.
func (e *Executor) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.loader.Close(ctx)
}
