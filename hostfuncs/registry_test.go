package hostfuncs

import (
	"testing"

	"github.com/locenv/locenv-sdk/go/stack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func constant(v lua.LValue) lua.LGFunction {
	return func(L *lua.LState) int {
		L.Push(v)
		return 1
	}
}

func TestNewRegistry_Empty(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)
	require.NotNil(t, reg)
	assert.Empty(t, reg.Names())
	assert.Empty(t, reg.Entries())
	assert.Equal(t, 0, reg.Len())
}

func TestNewRegistry_WithFunction(t *testing.T) {
	reg, err := NewRegistry(
		WithFunction("zeta", constant(lua.LNumber(1))),
		WithFunction("alpha", constant(lua.LNumber(2))),
	)
	require.NoError(t, err)

	assert.True(t, reg.Has("zeta"))
	assert.False(t, reg.Has("nonexistent"))
	assert.Equal(t, []string{"zeta", "alpha"}, reg.Names(), "declaration order is kept")
	assert.Equal(t, 2, reg.Len())
}

func TestNewRegistry_DuplicateFunction(t *testing.T) {
	fn := constant(lua.LNil)
	_, err := NewRegistry(
		WithFunction("test", fn),
		WithFunction("test", fn), // duplicate
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate function name")
}

func TestNewRegistry_EmptyName(t *testing.T) {
	_, err := NewRegistry(WithFunction("", constant(lua.LNil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")
}

func TestNewRegistry_NilFunction(t *testing.T) {
	_, err := NewRegistry(WithFunction("missing", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no implementation")
}

func TestMustRegistry_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustRegistry(WithFunction("", nil))
	})
}

func TestRegistry_EntriesIsACopy(t *testing.T) {
	reg := MustRegistry(WithFunction("a", constant(lua.LTrue)))
	entries := reg.Entries()
	entries[0].Name = "mutated"
	assert.Equal(t, []string{"a"}, reg.Names())
}

func TestWithBundle(t *testing.T) {
	math := NewBundle(
		stack.FunctionEntry{Name: "one", Function: constant(lua.LNumber(1))},
		stack.FunctionEntry{Name: "two", Function: constant(lua.LNumber(2))},
	)
	text := NewBundle(stack.FunctionEntry{Name: "hello", Function: constant(lua.LString("hi"))})

	reg, err := NewRegistry(WithBundle(Merge(math, text)))
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "hello"}, reg.Names())

	_, err = NewRegistry(WithBundle(math), WithBundle(math))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestRegistry_EntriesRegisterIntoVM(t *testing.T) {
	reg := MustRegistry(
		WithFunction("one", constant(lua.LNumber(1))),
		WithFunction("hello", constant(lua.LString("hi"))),
	)

	L := lua.NewState()
	defer L.Close()

	stack.CreateTable(L, 0, reg.Len())
	stack.SetFunctions(L, reg.Entries(), 0)
	L.SetGlobal("m", L.Get(-1))
	L.Pop(1)

	require.NoError(t, L.DoString(`
		assert(m.one() == 1)
		assert(m.hello() == "hi")
	`))
}
