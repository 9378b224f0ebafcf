package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"plugin"
	"sync"

	locenv "github.com/locenv/locenv-sdk/go"
	domainerrors "github.com/locenv/locenv-sdk/go/domain/errors"
	"github.com/locenv/locenv-sdk/go/infrastructure/wazero"
)

// PluginSymbol is the symbol LoadPlugin looks up in a Go plugin image. It
// must be a locenv.Module variable or a func() locenv.Module.
const PluginSymbol = "Module"

// loaderConfig holds configuration for the Loader.
type loaderConfig struct {
	logger       *slog.Logger
	imageOptions []wazero.ImageOption
	openPlugin   func(path string) (symbolLookup, error)
}

// symbolLookup is the part of *plugin.Plugin the loader uses.
type symbolLookup interface {
	Lookup(symName string) (plugin.Symbol, error)
}

func defaultLoaderConfig() loaderConfig {
	return loaderConfig{
		logger: slog.Default(),
		openPlugin: func(path string) (symbolLookup, error) {
			return plugin.Open(path)
		},
	}
}

// LoaderOption configures the Loader.
type LoaderOption func(*loaderConfig)

// WithLoaderLogger sets the logger.
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(c *loaderConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLoaderImageOptions sets the options WASM images are compiled with.
func WithLoaderImageOptions(opts ...wazero.ImageOption) LoaderOption {
	return func(c *loaderConfig) {
		c.imageOptions = append(c.imageOptions, opts...)
	}
}

// Loader turns module images into module declarations. It keeps the WASM
// images it compiled alive until Close.
type Loader struct {
	config loaderConfig

	mu     sync.Mutex
	images []*wazero.Image
}

// NewLoader creates a new Loader with defaults.
func NewLoader(opts ...LoaderOption) *Loader {
	cfg := defaultLoaderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Loader{config: cfg}
}

// LoadPlugin opens the Go plugin at path and returns the module it exports
// under PluginSymbol.
func (l *Loader) LoadPlugin(path string) (locenv.Module, error) {
	p, err := l.config.openPlugin(path)
	if err != nil {
		return locenv.Module{}, &domainerrors.LoadError{Source: path, Err: err}
	}
	sym, err := p.Lookup(PluginSymbol)
	if err != nil {
		return locenv.Module{}, &domainerrors.LoadError{Source: path, Err: err}
	}

	var m locenv.Module
	switch v := sym.(type) {
	case *locenv.Module:
		m = *v
	case func() locenv.Module:
		m = v()
	case *func() locenv.Module:
		m = (*v)()
	default:
		return locenv.Module{}, &domainerrors.LoadError{
			Source: path,
			Err:    fmt.Errorf("symbol %s has type %T, want locenv.Module", PluginSymbol, sym),
		}
	}
	if err := m.Validate(); err != nil {
		return locenv.Module{}, &domainerrors.LoadError{Module: m.Name, Source: path, Err: err}
	}
	l.config.logger.Info("loaded plugin module", "module", m.Name, "path", path)
	return m, nil
}

// LoadWasm compiles wasm and returns a module named name whose every load
// instantiates the binary afresh.
func (l *Loader) LoadWasm(ctx context.Context, name string, wasm []byte) (locenv.Module, error) {
	_, m, err := l.loadWasm(ctx, name, wasm)
	return m, err
}

func (l *Loader) loadWasm(ctx context.Context, name string, wasm []byte) (*wazero.Image, locenv.Module, error) {
	img, err := wazero.Compile(ctx, name, wasm, l.config.imageOptions...)
	if err != nil {
		return nil, locenv.Module{}, &domainerrors.LoadError{Module: name, Source: "<bytes>", Err: err}
	}
	m := img.Module()
	if err := m.Validate(); err != nil {
		_ = img.Close(ctx)
		return nil, locenv.Module{}, &domainerrors.LoadError{Module: name, Source: "<bytes>", Err: err}
	}

	l.mu.Lock()
	l.images = append(l.images, img)
	l.mu.Unlock()

	l.config.logger.Info("compiled wasm module", "module", name, "exports", img.Exports())
	return img, m, nil
}

// discard closes img and stops tracking it.
func (l *Loader) discard(ctx context.Context, img *wazero.Image) error {
	l.mu.Lock()
	for i, tracked := range l.images {
		if tracked == img {
			l.images = append(l.images[:i], l.images[i+1:]...)
			break
		}
	}
	l.mu.Unlock()
	return img.Close(ctx)
}

// Close releases every compiled WASM image.
func (l *Loader) Close(ctx context.Context) error {
	l.mu.Lock()
	images := l.images
	l.images = nil
	l.mu.Unlock()

	var errs []error
	for _, img := range images {
		if err := img.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s: %w", img.Name(), err))
		}
	}
	return errors.Join(errs...)
}
