// Package stack provides the stack-discipline primitives module code builds on.
//
// Every primitive documents its effect on the operand stack depth of the
// currently executing native function. Misuse (an index that does not name a
// live slot, a table missing below the upvalues handed to SetFunctions) is a
// programmer error and panics with *errors.ContractError at the point of
// violation; the loader guard and the per-function wrappers turn that panic
// into an ordinary script error.
//
// The primitives do not validate the VM handle itself: the VM guarantees it is
// live for the duration of a native call.
package stack

import (
	"fmt"

	"github.com/locenv/locenv-sdk/go/domain/errors"
	lua "github.com/yuin/gopher-lua"
)

// MaxUpvalues is the highest upvalue index a native function may address.
const MaxUpvalues = 255

// FunctionEntry pairs a stable name with a native entry point.
// A nil Function registers false as a placeholder, like luaL_setfuncs.
type FunctionEntry struct {
	Name     string
	Function lua.LGFunction
}

// UpvalueIndex returns the pseudo-index of the i-th upvalue of the running
// function. i must be in [1, MaxUpvalues].
func UpvalueIndex(i int) int {
	if i < 1 || i > MaxUpvalues {
		errors.Violation("upvalue_index", "upvalue %d outside [1,%d]", i, MaxUpvalues)
	}
	return lua.UpvalueIndex(i)
}

// Top returns the number of values on the current frame's stack.
func Top(L *lua.LState) int {
	return L.GetTop()
}

// Pop removes n values. Depth -n.
func Pop(L *lua.LState, n int) {
	if n < 0 || n > L.GetTop() {
		errors.Violation("pop", "cannot pop %d values from a stack of %d", n, L.GetTop())
	}
	L.Pop(n)
}

// CreateTable pushes a new empty table. narr and nrec are preallocation hints
// for the array and hash parts; negative hints count as zero. Depth +1.
func CreateTable(L *lua.LState, narr, nrec int) {
	L.Push(L.CreateTable(max(narr, 0), max(nrec, 0)))
}

// PushValue pushes a copy of the value at idx. Negative indices are relative to
// the top; registry, globals and upvalue pseudo-indices are accepted. Depth +1.
func PushValue(L *lua.LState, idx int) {
	checkIndex(L, "push_value", idx)
	L.Push(L.Get(idx))
}

// SetFunctions registers every entry into the table sitting below the top nup
// values, each as a closure capturing those nup values as upvalues 1..nup in
// stack order. The upvalues are popped afterwards, leaving the table on top.
// Depth -nup.
//
// Required layout, bottom to top: table, upvalue_1 .. upvalue_nup.
func SetFunctions(L *lua.LState, entries []FunctionEntry, nup int) {
	const op = "set_functions"
	if nup < 0 || nup > MaxUpvalues {
		errors.Violation(op, "upvalue count %d outside [0,%d]", nup, MaxUpvalues)
	}
	if top := L.GetTop(); top < nup+1 {
		errors.Violation(op, "need a table and %d upvalues on the stack, found %d values", nup, top)
	}
	tbl, ok := L.Get(-(nup + 1)).(*lua.LTable)
	if !ok {
		errors.Violation(op, "expected a table at index %d, found %s", -(nup + 1), L.Get(-(nup + 1)).Type())
	}
	for i, e := range entries {
		if e.Name == "" {
			errors.Violation(op, "entry %d has an empty name", i)
		}
	}

	upvalues := make([]lua.LValue, nup)
	for i := range upvalues {
		upvalues[i] = L.Get(-nup + i)
	}
	for _, e := range entries {
		if e.Function == nil {
			L.SetField(tbl, e.Name, lua.LFalse)
			continue
		}
		L.SetField(tbl, e.Name, L.NewClosure(e.Function, upvalues...))
	}
	L.Pop(nup)
}

// PushNil pushes nil. Depth +1.
func PushNil(L *lua.LState) {
	L.Push(lua.LNil)
}

// PushString pushes s. The string may hold arbitrary bytes. Depth +1.
func PushString(L *lua.LState, s string) {
	L.Push(lua.LString(s))
}

// PushFunction pushes fn as a function without upvalues. Depth +1.
func PushFunction(L *lua.LState, fn lua.LGFunction) {
	L.Push(L.NewFunction(fn))
}

// PushClosure pops the top nup values and pushes fn as a closure capturing
// them as upvalues 1..nup. Depth 1-nup.
func PushClosure(L *lua.LState, fn lua.LGFunction, nup int) {
	if nup < 0 || nup > MaxUpvalues || nup > L.GetTop() {
		errors.Violation("push_closure", "cannot capture %d upvalues from a stack of %d", nup, L.GetTop())
	}
	upvalues := make([]lua.LValue, nup)
	for i := range upvalues {
		upvalues[i] = L.Get(-nup + i)
	}
	L.Pop(nup)
	L.Push(L.NewClosure(fn, upvalues...))
}

// CheckString returns argument arg as a string, raising a script error when it
// is not one.
func CheckString(L *lua.LState, arg int) string {
	return L.CheckString(arg)
}

// ArgumentError raises a script error about argument arg:
//
//	bad argument #arg to 'funcname' (comment)
//
// It never returns.
func ArgumentError(L *lua.LState, arg int, comment string) {
	L.ArgError(arg, comment)
}

// TypeError raises a script error stating that argument arg should have been
// of type expect. It never returns.
func TypeError(L *lua.LState, arg int, expect string) {
	L.ArgError(arg, fmt.Sprintf("%s expected, got %s", expect, L.Get(arg).Type()))
}

// Error raises a script error with a formatted message. It never returns.
func Error(L *lua.LState, format string, args ...any) {
	L.RaiseError(format, args...)
}

func checkIndex(L *lua.LState, op string, idx int) {
	top := L.GetTop()
	switch {
	case idx == 0:
		errors.Violation(op, "index 0 is not a stack slot")
	case idx > 0 && idx > top:
		errors.Violation(op, "index %d beyond stack top %d", idx, top)
	case idx < 0 && idx > lua.RegistryIndex && -idx > top:
		errors.Violation(op, "index %d below stack bottom (top %d)", idx, top)
	}
}
