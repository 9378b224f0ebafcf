package wazero

import (
	"context"
	"fmt"
	"math"
	"sort"

	locenv "github.com/locenv/locenv-sdk/go"
	"github.com/locenv/locenv-sdk/go/hostfuncs"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	lua "github.com/yuin/gopher-lua"
)

// DefaultMaxLogMessage bounds the size of a guest log message.
const DefaultMaxLogMessage = 64 * 1024

// ImageConfig holds configuration for Compile.
type ImageConfig struct {
	// Version is reported as the module's version.
	Version string

	// MaxLogMessage limits the size of messages passed to the log import.
	MaxLogMessage uint32

	// MemoryLimitPages caps each instance's linear memory (64 KiB pages).
	// Zero keeps wazero's default.
	MemoryLimitPages uint32
}

// ImageOption configures Compile.
type ImageOption func(*ImageConfig)

// WithVersion sets the module version.
func WithVersion(v string) ImageOption {
	return func(c *ImageConfig) {
		c.Version = v
	}
}

// WithMaxLogMessage sets the maximum size of a guest log message.
func WithMaxLogMessage(size uint32) ImageOption {
	return func(c *ImageConfig) {
		if size > 0 {
			c.MaxLogMessage = size
		}
	}
}

// WithMemoryLimitPages caps each instance's linear memory.
func WithMemoryLimitPages(pages uint32) ImageOption {
	return func(c *ImageConfig) {
		c.MemoryLimitPages = pages
	}
}

func defaultImageConfig() ImageConfig {
	return ImageConfig{
		MaxLogMessage: DefaultMaxLogMessage,
	}
}

// export is a guest function the Lua module exposes.
type export struct {
	name    string
	params  []api.ValueType
	results []api.ValueType
}

// Image is a compiled WASM binary, shared by every VM instance that loads it.
// It is safe for concurrent use.
type Image struct {
	name     string
	config   ImageConfig
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	exports  []export
}

// Compile validates and compiles wasm into an Image named name.
func Compile(ctx context.Context, name string, wasm []byte, opts ...ImageOption) (*Image, error) {
	cfg := defaultImageConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	rtConfig := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		rtConfig = rtConfig.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, rtConfig)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)

	if err := instantiateHostModule(ctx, rt, cfg.MaxLogMessage); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate host module: %w", err)
	}

	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("failed to compile module %s: %w", name, err)
	}

	return &Image{
		name:     name,
		config:   cfg,
		runtime:  rt,
		compiled: compiled,
		exports:  collectExports(compiled),
	}, nil
}

func collectExports(compiled wazero.CompiledModule) []export {
	var out []export
	for name, def := range compiled.ExportedFunctions() {
		if !numeric(def.ParamTypes()) || !numeric(def.ResultTypes()) {
			continue
		}
		if name == "_initialize" || name == "_start" {
			continue
		}
		out = append(out, export{name: name, params: def.ParamTypes(), results: def.ResultTypes()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func numeric(types []api.ValueType) bool {
	for _, t := range types {
		switch t {
		case api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeF32, api.ValueTypeF64:
		default:
			return false
		}
	}
	return true
}

// Name returns the module name.
func (img *Image) Name() string {
	return img.name
}

// Exports returns the names of the functions the Lua module exposes.
func (img *Image) Exports() []string {
	names := make([]string, len(img.exports))
	for i, e := range img.exports {
		names[i] = e.name
	}
	return names
}

// Module returns the declaration hosts register. Its loader instantiates the
// image for the loading VM instance.
func (img *Image) Module() locenv.Module {
	return locenv.Module{
		Name:    img.name,
		Version: img.config.Version,
		Loader:  img.load,
	}
}

// Close releases the runtime and every instance still open.
func (img *Image) Close(ctx context.Context) error {
	return img.runtime.Close(ctx)
}

type instanceKey struct{}

func (img *Image) load(L *lua.LState, ctx *locenv.Context) int {
	callCtx := callContext(L, ctx)
	mod, err := img.runtime.InstantiateModule(callCtx, img.compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		L.RaiseError("failed to instantiate %s: %v", img.name, err)
	}
	ctx.OnRelease(func() {
		if err := mod.Close(context.Background()); err != nil {
			ctx.Logger().Warn("failed to close wasm instance", "error", err)
		}
	})

	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(callCtx); err != nil {
			L.RaiseError("%s: _initialize: %v", img.name, err)
		}
	}
	ctx.SetValue(instanceKey{}, mod)

	opts := []hostfuncs.RegistryOption{
		hostfuncs.WithMiddleware(hostfuncs.DefaultMiddleware(img.name, nil)...),
	}
	for _, e := range img.exports {
		opts = append(opts, hostfuncs.WithFunction(e.name, img.function(e)))
	}
	reg, err := hostfuncs.NewRegistry(opts...)
	if err != nil {
		L.RaiseError("%s: %v", img.name, err)
	}
	return locenv.Library(reg.Entries())(L, ctx)
}

func (img *Image) function(e export) lua.LGFunction {
	return func(L *lua.LState) int {
		ctx := locenv.FromLua(L, locenv.ContextUpvalue)
		v, _ := ctx.Value(instanceKey{})
		mod := v.(api.Module)

		params := make([]uint64, len(e.params))
		for i, t := range e.params {
			params[i] = encode(L, i+1, t)
		}

		results, err := mod.ExportedFunction(e.name).Call(callContext(L, ctx), params...)
		if err != nil {
			L.RaiseError("%s.%s: %v", img.name, e.name, err)
		}
		for i, t := range e.results {
			L.Push(decode(results[i], t))
		}
		return len(e.results)
	}
}

// callContext derives the context.Context guest calls run under: the VM
// instance's context when the host set one, carrying the module's logger.
func callContext(L *lua.LState, ctx *locenv.Context) context.Context {
	base := L.Context()
	if base == nil {
		base = context.Background()
	}
	return WithLogger(base, ctx.Logger())
}

func encode(L *lua.LState, arg int, t api.ValueType) uint64 {
	switch t {
	case api.ValueTypeI32:
		i := checkInteger(L, arg)
		if i < math.MinInt32 || i > math.MaxInt32 {
			L.ArgError(arg, "number out of i32 range")
		}
		return api.EncodeI32(int32(i))
	case api.ValueTypeI64:
		return api.EncodeI64(checkInteger(L, arg))
	case api.ValueTypeF32:
		return api.EncodeF32(float32(L.CheckNumber(arg)))
	default:
		return api.EncodeF64(float64(L.CheckNumber(arg)))
	}
}

func checkInteger(L *lua.LState, arg int) int64 {
	n := L.CheckNumber(arg)
	i := int64(n)
	if lua.LNumber(i) != n {
		L.ArgError(arg, "number has no integer representation")
	}
	return i
}

func decode(v uint64, t api.ValueType) lua.LValue {
	switch t {
	case api.ValueTypeI32:
		return lua.LNumber(api.DecodeI32(v))
	case api.ValueTypeI64:
		return lua.LNumber(int64(v))
	case api.ValueTypeF32:
		return lua.LNumber(api.DecodeF32(v))
	default:
		return lua.LNumber(api.DecodeF64(v))
	}
}
