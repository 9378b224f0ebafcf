// Package locenv lets Go code act as native modules of an embedded Lua VM
// (github.com/yuin/gopher-lua).
//
// A module is a Module value: a name and a loader body. The host hands
// Module.Entry to the VM's require machinery. Every time a VM instance loads
// the module, the loader guard builds a fresh Context for that instance,
// pushes it, runs the body and contains any Go panic the body raises, turning
// it into an ordinary script error. The canonical body is Library, which
// registers a fixed list of functions closed over the Context as upvalue 1:
//
//	var functions = hostfuncs.MustRegistry(
//	    hostfuncs.WithMiddleware(hostfuncs.DefaultMiddleware("greet", nil)...),
//	    hostfuncs.WithFunction("hello", func(L *lua.LState) int {
//	        ctx := locenv.FromLua(L, locenv.ContextUpvalue)
//	        L.Push(lua.LString("hello from " + ctx.ModuleName()))
//	        return 1
//	    }),
//	)
//
//	var Module = locenv.Module{
//	    Name:   "greet",
//	    Loader: locenv.Library(functions.Entries()),
//	}
//
// Module state belongs in the Context, never in package-level variables: the
// same module code serves every VM instance of the process.
package locenv
