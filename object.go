package locenv

import (
	"github.com/locenv/locenv-sdk/go/hostfuncs"
	"github.com/locenv/locenv-sdk/go/stack"
	lua "github.com/yuin/gopher-lua"
)

// Method is a native method of a userdata object. self is the receiver,
// already checked to be argument 1.
type Method[T any] func(L *lua.LState, ctx *Context, self T) int

// MethodEntry names a Method.
type MethodEntry[T any] struct {
	Name   string
	Method Method[T]
}

// Object is a Go type scripts can hold as userdata. TypeName must not depend
// on the receiver's state; it is called on the zero value.
type Object[T any] interface {
	TypeName() string
	Methods() []MethodEntry[T]
}

const objectContextField = "__context"

func objectTypeName[T Object[T]](ctx *Context) string {
	var zero T
	return ctx.module + ".userdata." + zero.TypeName()
}

// NewObject pushes v as a full userdata whose methods scripts reach through
// the ':' call syntax. Depth +1.
//
// The metatable is created once per VM instance and named
// "<module>.userdata.<TypeName>". Methods are contained by the same panic
// boundary as registered functions.
func NewObject[T Object[T]](L *lua.LState, ctx *Context, v T) {
	name := objectTypeName[T](ctx)
	mt := L.NewTypeMetatable(name)
	if mt.RawGetString(objectContextField) != ctx.self {
		mt.RawSetString(objectContextField, ctx.self)
		mt.RawSetString("__name", lua.LString(name))
		mt.RawSetString("__index", objectMethods(L, ctx, v.Methods()))
	}

	ud := L.NewUserData()
	ud.Value = v
	ud.Metatable = mt
	L.Push(ud)
}

func objectMethods[T Object[T]](L *lua.LState, ctx *Context, methods []MethodEntry[T]) *lua.LTable {
	opts := []hostfuncs.RegistryOption{
		hostfuncs.WithMiddleware(hostfuncs.DefaultMiddleware(ctx.module, nil)...),
	}
	for _, m := range methods {
		method := m.Method
		opts = append(opts, hostfuncs.WithFunction(m.Name, func(L *lua.LState) int {
			ctx := FromLua(L, ContextUpvalue)
			return method(L, ctx, CheckObject[T](L, ctx, 1))
		}))
	}
	reg := hostfuncs.MustRegistry(opts...)

	stack.CreateTable(L, 0, reg.Len())
	ctx.Push(L)
	stack.SetFunctions(L, reg.Entries(), 1)
	tbl := L.Get(-1).(*lua.LTable)
	stack.Pop(L, 1)
	return tbl
}

// CheckObject returns the object of type T at stack index idx, raising an
// argument error when the value is anything else.
func CheckObject[T Object[T]](L *lua.LState, ctx *Context, idx int) T {
	name := objectTypeName[T](ctx)
	ud, ok := L.Get(idx).(*lua.LUserData)
	if ok && ud.Metatable == L.GetTypeMetatable(name) {
		if v, ok := ud.Value.(T); ok {
			return v
		}
	}
	stack.TypeError(L, idx, name)
	var zero T
	return zero
}
