package log

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	lua "github.com/yuin/gopher-lua"
)

// maxDepth bounds the nesting of tables converted to attribute groups.
const maxDepth = 8

// toAttr converts a Lua value to a slog attribute.
func toAttr(key string, v lua.LValue, depth int) slog.Attr {
	switch v := v.(type) {
	case lua.LString:
		return slog.String(key, string(v))
	case lua.LNumber:
		f := float64(v)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return slog.Int64(key, int64(f))
		}
		return slog.Float64(key, f)
	case lua.LBool:
		return slog.Bool(key, bool(v))
	case *lua.LNilType:
		return slog.Any(key, nil)
	case *lua.LTable:
		if depth >= maxDepth {
			return slog.String(key, "<table>")
		}
		return slog.Attr{Key: key, Value: slog.GroupValue(tableAttrs(v, depth+1)...)}
	default:
		return slog.String(key, fmt.Sprintf("<%s>", v.Type()))
	}
}

// tableAttrs converts the fields of t to attributes, ordered by key.
func tableAttrs(t *lua.LTable, depth int) []slog.Attr {
	var attrs []slog.Attr
	t.ForEach(func(k, v lua.LValue) {
		attrs = append(attrs, toAttr(k.String(), v, depth))
	})
	sort.SliceStable(attrs, func(i, j int) bool { return attrs[i].Key < attrs[j].Key })
	return attrs
}
