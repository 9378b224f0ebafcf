package locenv

import (
	"testing"

	"github.com/locenv/locenv-sdk/go/stack"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

type point struct {
	x, y int
}

func (*point) TypeName() string { return "point" }

func (*point) Methods() []MethodEntry[*point] {
	return []MethodEntry[*point]{
		{Name: "x", Method: func(L *lua.LState, _ *Context, p *point) int {
			L.Push(lua.LNumber(p.x))
			return 1
		}},
		{Name: "move", Method: func(L *lua.LState, _ *Context, p *point) int {
			p.x += L.CheckInt(2)
			p.y += L.OptInt(3, 0)
			return 0
		}},
		{Name: "explode", Method: func(*lua.LState, *Context, *point) int {
			panic("point exploded")
		}},
	}
}

func geoModule() Module {
	return Module{Name: "geo", Loader: Library([]stack.FunctionEntry{
		{Name: "new", Function: func(L *lua.LState) int {
			ctx := FromLua(L, ContextUpvalue)
			NewObject(L, ctx, &point{x: L.CheckInt(1), y: L.CheckInt(2)})
			return 1
		}},
		{Name: "y", Function: func(L *lua.LState) int {
			ctx := FromLua(L, ContextUpvalue)
			L.Push(lua.LNumber(CheckObject[*point](L, ctx, 1).y))
			return 1
		}},
	})}
}

func TestNewObject(t *testing.T) {
	L := newState(t)
	geoModule().Preload(L)

	require.NoError(t, L.DoString(`
		local geo = require("geo")
		local p = geo.new(1, 2)
		assert(type(p) == "userdata")
		p:move(4, 1)
		assert(p:x() == 5)
		assert(geo.y(p) == 3)

		local q = geo.new(0, 0)
		assert(getmetatable(p) == getmetatable(q))
		assert(getmetatable(p).__name == "geo.userdata.point")
	`))
}

func TestCheckObject_RejectsOtherValues(t *testing.T) {
	L := newState(t)
	geoModule().Preload(L)

	require.NoError(t, L.DoString(`
		local geo = require("geo")
		local p = geo.new(1, 2)

		local ok, err = pcall(p.x, 5)
		assert(not ok)
		assert(string.find(err, "geo.userdata.point expected, got number", 1, true), err)

		ok, err = pcall(geo.y, {})
		assert(not ok)
		assert(string.find(err, "geo.userdata.point expected, got table", 1, true), err)
	`))
}

func TestObjectMethod_PanicContained(t *testing.T) {
	L := newState(t)
	geoModule().Preload(L)

	require.NoError(t, L.DoString(`
		local p = require("geo").new(0, 0)
		local ok, err = pcall(p.explode, p)
		assert(not ok)
		assert(string.find(err, "geo.explode: panic: point exploded", 1, true), err)
	`))
}
