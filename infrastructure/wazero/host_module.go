package wazero

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// HostModuleName is the import module name guests reach the host through.
const HostModuleName = "locenv"

// instantiateHostModule exports the host imports into rt.
func instantiateHostModule(ctx context.Context, rt wazero.Runtime, maxMessage uint32) error {
	_, err := rt.NewHostModuleBuilder(HostModuleName).
		NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, ptr, length uint32) {
			logger := loggerFor(ctx, mod)
			if length > maxMessage {
				logger.WarnContext(ctx, "wasm: log message too large", "size", length, "limit", maxMessage)
				return
			}
			mem := mod.Memory()
			if mem == nil {
				logger.ErrorContext(ctx, "wasm: log called by a module without memory")
				return
			}
			data, ok := mem.Read(ptr, length)
			if !ok {
				logger.ErrorContext(ctx, "wasm: failed to read log message from guest memory", "ptr", ptr, "len", length)
				return
			}
			logger.InfoContext(ctx, string(data))
		}).
		WithParameterNames("ptr", "len").
		Export("log").
		Instantiate(ctx)
	return err
}
