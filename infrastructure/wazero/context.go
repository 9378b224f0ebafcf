package wazero

import (
	"context"
	"log/slog"

	"github.com/tetratelabs/wazero/api"
)

// contextKey is a private type for context keys.
type contextKey struct {
	name string
}

var loggerKey = &contextKey{name: "module_logger"}

// WithLogger attaches the calling module's logger to ctx. Host imports log
// through it.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext retrieves the logger attached by WithLogger.
func LoggerFromContext(ctx context.Context) (*slog.Logger, bool) {
	logger, ok := ctx.Value(loggerKey).(*slog.Logger)
	return logger, ok
}

// loggerFor returns the logger for a call from mod, falling back to the default
// logger annotated with the instance name.
func loggerFor(ctx context.Context, mod api.Module) *slog.Logger {
	if logger, ok := LoggerFromContext(ctx); ok {
		return logger
	}
	return slog.Default().With("wasm_module", mod.Name())
}
