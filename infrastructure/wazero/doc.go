// Package wazero turns WebAssembly binaries into native Lua modules.
//
// An Image is compiled once per process. Each VM instance that requires the
// module gets its own anonymous WASM instance, created inside the loader guard
// and stored in that instance's Context, so WASM globals and linear memory are
// never shared between VM instances:
//
//	img, err := wazero.Compile(ctx, "mathx", wasmBytes)
//	if err != nil {
//	    return err
//	}
//	defer img.Close(ctx)
//
//	mod := img.Module()
//	mod.Preload(L)
//
// Every exported function whose parameters and results are numeric (i32, i64,
// f32, f64) becomes a function of the Lua module. Integer arguments are
// checked, results are pushed as numbers, and traps surface as script errors.
//
// # Host imports
//
// Guests may import the "locenv" host module:
//
//	(import "locenv" "log" (func (param i32 i32)))
//
// which logs the UTF-8 string at (ptr, len) of the guest's exported memory
// through the module Context's logger.
package wazero
