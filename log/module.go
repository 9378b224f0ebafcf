// Package log provides the built-in "log" Lua module, which routes script
// logging to log/slog through the requiring VM instance's module Context.
//
//	local log = require("log")
//	log.info("deployed", { service = "api", replicas = 3 })
package log

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"strings"

	locenv "github.com/locenv/locenv-sdk/go"
	"github.com/locenv/locenv-sdk/go/hostfuncs"
	"github.com/locenv/locenv-sdk/go/stack"
	lua "github.com/yuin/gopher-lua"
)

// ModuleName is the name scripts require the module by.
const ModuleName = "log"

// Config is the module's configuration file.
type Config struct {
	// Level is the minimum level scripts log at: debug, info, warn or error.
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR"`
}

// Option configures the module.
type Option func(*moduleConfig)

type moduleConfig struct {
	level slog.Level
}

// defaultModuleConfig returns the default configuration.
func defaultModuleConfig() moduleConfig {
	return moduleConfig{
		level: slog.LevelInfo,
	}
}

// WithLevel sets the default minimum level. A configuration file overrides it.
func WithLevel(level slog.Level) Option {
	return func(c *moduleConfig) {
		c.level = level
	}
}

type levelKey struct{}

var levels = hostfuncs.NewBundle(
	stack.FunctionEntry{Name: "debug", Function: logAt(slog.LevelDebug)},
	stack.FunctionEntry{Name: "info", Function: logAt(slog.LevelInfo)},
	stack.FunctionEntry{Name: "warn", Function: logAt(slog.LevelWarn)},
	stack.FunctionEntry{Name: "error", Function: logAt(slog.LevelError)},
)

// Module returns the declaration of the "log" module.
func Module(opts ...Option) locenv.Module {
	cfg := defaultModuleConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	functions := hostfuncs.MustRegistry(
		hostfuncs.WithMiddleware(hostfuncs.DefaultMiddleware(ModuleName, nil)...),
		hostfuncs.WithBundle(levels),
		hostfuncs.WithFunction("enabled", enabled),
	)
	library := locenv.Library(functions.Entries())

	return locenv.Module{
		Name:   ModuleName,
		Config: Config{},
		Loader: func(L *lua.LState, ctx *locenv.Context) int {
			level := cfg.level
			var fileCfg Config
			switch err := ctx.LoadConfig(&fileCfg); {
			case errors.Is(err, fs.ErrNotExist):
			case err != nil:
				stack.Error(L, "%v", err)
			case fileCfg.Level != "":
				level, err = ParseLevel(fileCfg.Level)
				if err != nil {
					stack.Error(L, "%v", err)
				}
			}
			ctx.SetValue(levelKey{}, level)
			return library(L, ctx)
		},
	}
}

// ParseLevel parses a level name as accepted by the configuration file.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(strings.ToUpper(s)))
	return level, err
}

func minimumLevel(ctx *locenv.Context) slog.Level {
	v, _ := ctx.Value(levelKey{})
	level, _ := v.(slog.Level)
	return level
}

// logAt logs message (argument 1) with the fields of the optional table
// argument 2 as attributes.
func logAt(level slog.Level) lua.LGFunction {
	return func(L *lua.LState) int {
		ctx := locenv.FromLua(L, locenv.ContextUpvalue)
		msg := stack.CheckString(L, 1)
		if level < minimumLevel(ctx) {
			return 0
		}

		var attrs []slog.Attr
		switch fields := L.Get(2).(type) {
		case *lua.LTable:
			attrs = tableAttrs(fields, 0)
		case *lua.LNilType:
		default:
			stack.TypeError(L, 2, "table")
		}

		goCtx := L.Context()
		if goCtx == nil {
			goCtx = context.Background()
		}
		ctx.Logger().LogAttrs(goCtx, level, msg, attrs...)
		return 0
	}
}

func enabled(L *lua.LState) int {
	ctx := locenv.FromLua(L, locenv.ContextUpvalue)
	level, err := ParseLevel(stack.CheckString(L, 1))
	if err != nil {
		stack.ArgumentError(L, 1, err.Error())
	}
	L.Push(lua.LBool(level >= minimumLevel(ctx)))
	return 1
}
