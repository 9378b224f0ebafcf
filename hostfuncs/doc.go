// Package hostfuncs builds the function tables native modules register into
// the VM.
//
// A Registry is an immutable, declaration-ordered list of named native entry
// points with middleware applied. Its Entries are handed to stack.SetFunctions
// together with the shared Context upvalue:
//
//	reg, err := hostfuncs.NewRegistry(
//	    hostfuncs.WithMiddleware(hostfuncs.DefaultMiddleware("counter", logger)...),
//	    hostfuncs.WithFunction("incr", incr),
//	    hostfuncs.WithFunction("get", get),
//	)
//
// PanicRecoveryMiddleware is the per-function containment boundary: a host
// panic inside a registered function becomes an ordinary script error, while
// errors raised through the VM's own mechanism pass through untouched.
package hostfuncs
