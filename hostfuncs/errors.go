package hostfuncs

import (
	stdErrors "errors"

	"github.com/locenv/locenv-sdk/go/domain/errors"
	lua "github.com/yuin/gopher-lua"
)

// ErrSuspension is reported when native code tries to yield a coroutine.
var ErrSuspension = stdErrors.New("coroutine suspension is not supported from native functions")

// IsVMError reports whether a recovered panic value is the VM's own error
// unwinding (raised by RaiseError, Error or ArgError) rather than a host panic.
func IsVMError(r any) bool {
	_, ok := r.(*lua.ApiError)
	return ok
}

// RaisePanic converts a recovered host panic into a script error raised
// through the VM. It never returns.
func RaisePanic(L *lua.LState, module, function string, r any) {
	perr := &errors.PanicError{Module: module, Function: function, Value: r}
	L.RaiseError("%s", perr.Error())
}
