// Package host embeds Lua VM instances and serves native modules to them.
//
// An Executor holds the module catalog and is shared by the whole process.
// Each State it creates is one independent VM instance with every catalog
// module preloaded through its loader guard, so modules loaded into two
// States never share a Context. Module images come from Go code linked into
// the host, Go plugins (LoadPlugin) or WebAssembly binaries (LoadWasm).
package host
