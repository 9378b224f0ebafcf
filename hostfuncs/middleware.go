package hostfuncs

import (
	"log/slog"

	lua "github.com/yuin/gopher-lua"
)

// Middleware wraps a native function to add cross-cutting behavior.
// name is the entry name the function is registered under.
// Middleware executes in FIFO order (first registered wraps first, onion model).
//
// Example usage:
//
//	counting := func(name string, next lua.LGFunction) lua.LGFunction {
//	    return func(L *lua.LState) int {
//	        calls[name]++
//	        return next(L)
//	    }
//	}
type Middleware func(name string, next lua.LGFunction) lua.LGFunction

// RegistryOption is a functional option for configuring a Registry.
type RegistryOption func(*registryBuilder)

// PanicRecoveryMiddleware returns a middleware that catches host panics and
// re-raises them as script errors instead of letting them unwind through VM
// frames. Errors raised through the VM itself are left alone.
func PanicRecoveryMiddleware(module string) Middleware {
	return func(name string, next lua.LGFunction) lua.LGFunction {
		return func(L *lua.LState) int {
			defer func() {
				if r := recover(); r != nil {
					if IsVMError(r) {
						panic(r)
					}
					RaisePanic(L, module, name, r)
				}
			}()
			return next(L)
		}
	}
}

// SuspensionGuardMiddleware returns a middleware that rejects coroutine
// suspension. A native function that returns through L.Yield raises a script
// error instead: resuming a frame that passed through Go code is unsupported.
func SuspensionGuardMiddleware() Middleware {
	return func(name string, next lua.LGFunction) lua.LGFunction {
		return func(L *lua.LState) int {
			n := next(L)
			if n < 0 {
				L.RaiseError("%s: %v", name, ErrSuspension)
			}
			return n
		}
	}
}

// LoggingMiddleware returns a middleware that records each invocation at
// debug level.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(name string, next lua.LGFunction) lua.LGFunction {
		return func(L *lua.LState) int {
			logger.Debug("invoking native function", "function", name, "args", L.GetTop())
			n := next(L)
			logger.Debug("native function returned", "function", name, "results", n)
			return n
		}
	}
}

// DefaultMiddleware returns the chain every module function should carry:
// panic containment, then the suspension guard, then logging when logger is
// non-nil.
func DefaultMiddleware(module string, logger *slog.Logger) []Middleware {
	mw := []Middleware{PanicRecoveryMiddleware(module), SuspensionGuardMiddleware()}
	if logger != nil {
		mw = append(mw, LoggingMiddleware(logger.With("module", module)))
	}
	return mw
}
