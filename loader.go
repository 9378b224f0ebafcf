package locenv

import (
	"log/slog"

	"github.com/locenv/locenv-sdk/go/domain/errors"
	"github.com/locenv/locenv-sdk/go/hostfuncs"
	"github.com/locenv/locenv-sdk/go/stack"
	lua "github.com/yuin/gopher-lua"
)

// LoaderFunc is a module's loader body. When it runs, the module's freshly
// built Context sits on top of the stack, above the loader data the VM passed
// in (the required name). It must leave the module's public value on the
// stack and return the number of values it produced, normally 1.
type LoaderFunc func(L *lua.LState, ctx *Context) int

// GuardState is a step of the loader guard.
type GuardState int

const (
	Entered GuardState = iota
	ContextBuilt
	AuthorBodyRunning
	ReturnedNormally
	TrappedPanic
	TrappedVMError
)

func (s GuardState) String() string {
	switch s {
	case Entered:
		return "entered"
	case ContextBuilt:
		return "context_built"
	case AuthorBodyRunning:
		return "author_body_running"
	case ReturnedNormally:
		return "returned_normally"
	case TrappedPanic:
		return "trapped_panic"
	case TrappedVMError:
		return "trapped_vm_error"
	default:
		return "unknown"
	}
}

type guardConfig struct {
	logger           *slog.Logger
	hook             func(module string, s GuardState)
	workingDirectory string
	dataDirectory    string
}

func defaultGuardConfig() guardConfig {
	return guardConfig{
		logger:           slog.Default(),
		workingDirectory: DefaultWorkingDirectory(),
		dataDirectory:    DefaultDataDirectory(),
	}
}

// GuardOption configures the loader guard.
type GuardOption func(*guardConfig)

// WithLogger sets the logger the guard and the module's Context log through.
func WithLogger(logger *slog.Logger) GuardOption {
	return func(c *guardConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithWorkingDirectory sets the directory reported by Context.WorkingDirectory.
func WithWorkingDirectory(dir string) GuardOption {
	return func(c *guardConfig) {
		c.workingDirectory = dir
	}
}

// WithDataDirectory sets the root Context.ConfigurationsPath is derived from.
func WithDataDirectory(dir string) GuardOption {
	return func(c *guardConfig) {
		c.dataDirectory = dir
	}
}

// WithTransitionHook registers fn to observe every guard state change.
func WithTransitionHook(fn func(module string, s GuardState)) GuardOption {
	return func(c *guardConfig) {
		c.hook = fn
	}
}

// Wrap turns a loader body into the entry point the VM calls when the module
// is required. Each call builds a new Context for the calling VM instance,
// pushes it, runs body inside a containment boundary and passes body's result
// count through.
//
// A host panic inside body is converted into a script error raised through
// the VM; errors the VM raises itself propagate unchanged. Either way the
// Context of the failed load is released.
//
//	var Module = locenv.Module{
//	    Name:   "hello",
//	    Loader: locenv.Library(functions.Entries()),
//	}
func Wrap(name string, body LoaderFunc, opts ...GuardOption) lua.LGFunction {
	cfg := defaultGuardConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return func(L *lua.LState) int {
		g := guard{module: name, cfg: cfg}
		return g.run(L, body)
	}
}

type guard struct {
	cfg    guardConfig
	module string
}

func (g *guard) transition(s GuardState) {
	g.cfg.logger.Debug("module loader", "module", g.module, "state", s.String())
	if g.cfg.hook != nil {
		g.cfg.hook(g.module, s)
	}
}

func (g *guard) run(L *lua.LState, body LoaderFunc) (n int) {
	g.transition(Entered)

	ctx := newContext(L, g.module, g.cfg)
	ctx.Push(L)
	g.transition(ContextBuilt)

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		ctx.releaseNow()
		if hostfuncs.IsVMError(r) {
			g.transition(TrappedVMError)
			panic(r)
		}
		g.transition(TrappedPanic)
		g.cfg.logger.Error("module loader panicked", "module", g.module, "panic", errors.PanicMessage(r))
		hostfuncs.RaisePanic(L, g.module, "", r)
	}()

	g.transition(AuthorBodyRunning)
	n = body(L, ctx)
	if top := L.GetTop(); n < 0 || n > top {
		errors.Violation("loader", "module %s returned %d values with %d on the stack", g.module, n, top)
	}

	attach(L, ctx)
	g.transition(ReturnedNormally)
	return n
}

// Library returns the canonical loader body: a table holding every entry,
// each closed over the load's Context as upvalue ContextUpvalue.
func Library(entries []stack.FunctionEntry) LoaderFunc {
	return func(L *lua.LState, ctx *Context) int {
		stack.CreateTable(L, 0, len(entries))
		stack.PushValue(L, -2)
		stack.SetFunctions(L, entries, ContextUpvalue)
		return 1
	}
}
