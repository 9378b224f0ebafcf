package locenv

import (
	"log/slog"
	"path/filepath"

	"github.com/locenv/locenv-sdk/go/domain/errors"
	"github.com/locenv/locenv-sdk/go/stack"
	lua "github.com/yuin/gopher-lua"
)

// ContextUpvalue is the upvalue index every registered function receives its
// Context through.
const ContextUpvalue = 1

const (
	contextTypeName     = "locenv.context"
	contextsRegistryKey = "locenv.contexts"
)

// Context is the per-(module, VM instance) capability shared by every function
// a module registers during one load.
//
// A Context is only ever built by the loader guard (see Wrap). It is bound to
// the VM instance it was built for: FromLua refuses to hand it out to any
// other instance. Module state belongs here, never in package-level variables,
// since the same module code is loaded into every VM instance of the process.
//
// A Context is not safe for concurrent use; neither is the VM instance owning it.
type Context struct {
	global   *lua.Global // identity token: shared by the instance's threads only
	self     *lua.LUserData
	module   string
	workDir  string
	dataDir  string
	logger   *slog.Logger
	values   map[any]any
	release  []func()
	released bool
}

func newContext(L *lua.LState, module string, cfg guardConfig) *Context {
	ctx := &Context{
		global:  L.G,
		module:  module,
		workDir: cfg.workingDirectory,
		dataDir: cfg.dataDirectory,
		logger:  cfg.logger.With("module", module),
		values:  make(map[any]any),
	}

	ud := L.NewUserData()
	ud.Value = ctx
	ud.Metatable = contextMetatable(L)
	ctx.self = ud
	return ctx
}

func contextMetatable(L *lua.LState) *lua.LTable {
	mt := L.NewTypeMetatable(contextTypeName)
	if mt.RawGetString("__metatable") == lua.LNil {
		mt.RawSetString("__metatable", lua.LString(contextTypeName))
		mt.RawSetString("__tostring", L.NewFunction(func(L *lua.LState) int {
			if ctx, ok := L.CheckUserData(1).Value.(*Context); ok {
				L.Push(lua.LString(contextTypeName + "(" + ctx.module + ")"))
				return 1
			}
			L.Push(lua.LString(contextTypeName))
			return 1
		}))
	}
	return mt
}

// FromLua returns the Context held in the given upvalue of the running native
// function. Registered functions use ContextUpvalue.
//
// It panics with *errors.ContractError when the upvalue does not hold a
// Context built by the loader guard of this VM instance. Inside a registered
// function that panic surfaces as a script error.
func FromLua(L *lua.LState, upvalue int) *Context {
	const op = "context.from_lua"

	v := L.Get(stack.UpvalueIndex(upvalue))
	ud, ok := v.(*lua.LUserData)
	if !ok {
		errors.Violation(op, "upvalue %d holds a %s, not a context", upvalue, v.Type())
	}
	ctx, ok := ud.Value.(*Context)
	if !ok {
		errors.Violation(op, "upvalue %d holds userdata that is not a context", upvalue)
	}
	if ctx.global != L.G {
		errors.Violation(op, "context of module %q belongs to a different VM instance", ctx.module)
	}
	if ud.Metatable != L.GetTypeMetatable(contextTypeName) {
		errors.Violation(op, "upvalue %d holds a context that was not built by the loader guard", upvalue)
	}
	return ctx
}

// ModuleName returns the name the module was required under.
func (c *Context) ModuleName() string {
	return c.module
}

// WorkingDirectory returns the directory the hosting script works in.
func (c *Context) WorkingDirectory() string {
	return c.workDir
}

// ConfigurationsPath returns the directory holding this module's
// configuration: <data directory>/config/<module>.
func (c *Context) ConfigurationsPath() string {
	return filepath.Join(c.dataDir, "config", c.module)
}

// Logger returns a logger annotated with the module name.
func (c *Context) Logger() *slog.Logger {
	return c.logger
}

// SetValue stores module state under key.
func (c *Context) SetValue(key, value any) {
	c.values[key] = value
}

// Value retrieves module state stored by SetValue.
func (c *Context) Value(key any) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// OnRelease registers fn to run when the owning VM instance is destroyed, or
// right away if the load that built this Context fails. Hooks run in reverse
// registration order.
func (c *Context) OnRelease(fn func()) {
	c.release = append(c.release, fn)
}

// LValue returns the VM value that carries this Context, for capturing it as
// an upvalue.
func (c *Context) LValue() lua.LValue {
	return c.self
}

// Push pushes the Context's VM value. Depth +1.
func (c *Context) Push(L *lua.LState) {
	L.Push(c.self)
}

func (c *Context) releaseNow() {
	if c.released {
		return
	}
	c.released = true
	for i := len(c.release) - 1; i >= 0; i-- {
		c.release[i]()
	}
	c.release = nil
}

// attach records the Context in the VM registry, handing its lifetime to the
// VM instance.
func attach(L *lua.LState, ctx *Context) {
	reg := L.Get(lua.RegistryIndex).(*lua.LTable)
	list, ok := reg.RawGetString(contextsRegistryKey).(*lua.LTable)
	if !ok {
		list = L.NewTable()
		reg.RawSetString(contextsRegistryKey, list)
	}
	list.Append(ctx.self)
}

// Contexts returns every Context attached to the VM instance, in load order.
func Contexts(L *lua.LState) []*Context {
	reg := L.Get(lua.RegistryIndex).(*lua.LTable)
	list, ok := reg.RawGetString(contextsRegistryKey).(*lua.LTable)
	if !ok {
		return nil
	}
	var out []*Context
	list.ForEach(func(_, v lua.LValue) {
		if ud, ok := v.(*lua.LUserData); ok {
			if ctx, ok := ud.Value.(*Context); ok {
				out = append(out, ctx)
			}
		}
	})
	return out
}

// ReleaseContexts runs the release hooks of every Context attached to the VM
// instance and detaches them. Hosts call it right before closing the instance.
func ReleaseContexts(L *lua.LState) {
	ctxs := Contexts(L)
	for i := len(ctxs) - 1; i >= 0; i-- {
		ctxs[i].releaseNow()
	}
	reg := L.Get(lua.RegistryIndex).(*lua.LTable)
	reg.RawSetString(contextsRegistryKey, lua.LNil)
}
