// Command locenv-run runs a Lua script with native modules available.
//
//	locenv-run [flags] script.lua
//	locenv-run -describe counter
//
// The counter example and the built-in log module are always available.
// Additional modules come from Go plugins (-plugin path.so) and WebAssembly
// binaries (-wasm name=path.wasm).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/locenv/locenv-sdk/go/examples/counter"
	"github.com/locenv/locenv-sdk/go/host"
	"gopkg.in/yaml.v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// listFlag collects repeated flag values.
type listFlag []string

func (f *listFlag) String() string { return strings.Join(*f, ",") }

func (f *listFlag) Set(v string) error {
	*f = append(*f, v)
	return nil
}

type options struct {
	dataDir  string
	describe string
	asJSON   bool
	verbose  bool
	plugins  listFlag
	wasm     listFlag
	script   string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	var opts options
	fs := flag.NewFlagSet("locenv-run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.dataDir, "data", "", "data directory (default $LOCENV_DATA or ~/.locenv)")
	fs.StringVar(&opts.describe, "describe", "", "describe `module` instead of running a script")
	fs.BoolVar(&opts.asJSON, "json", false, "print -describe output as JSON")
	fs.BoolVar(&opts.verbose, "v", false, "enable debug logging")
	fs.Var(&opts.plugins, "plugin", "load a Go plugin module (repeatable)")
	fs.Var(&opts.wasm, "wasm", "load a WASM module as `name=path` (repeatable)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch {
	case opts.describe != "" && fs.NArg() > 0:
		return nil, errors.New("-describe takes no script")
	case opts.describe == "" && fs.NArg() != 1:
		return nil, errors.New("expected exactly one script")
	}
	opts.script = fs.Arg(0)
	return &opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, "locenv-run:", err)
		}
		return 2
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if err := execute(ctx, opts, logger, stdout); err != nil {
		logger.Error("locenv-run failed", "error", err)
		return 1
	}
	return 0
}

func execute(ctx context.Context, opts *options, logger *slog.Logger, stdout io.Writer) error {
	hostOpts := []host.Option{
		host.WithLogger(logger),
		host.WithModules(counter.Module),
	}
	if opts.dataDir != "" {
		hostOpts = append(hostOpts, host.WithDataDirectory(opts.dataDir))
	}
	exec, err := host.NewExecutor(hostOpts...)
	if err != nil {
		return err
	}
	defer exec.Close(context.Background())

	for _, path := range opts.plugins {
		if _, err := exec.LoadPlugin(path); err != nil {
			return err
		}
	}
	for _, spec := range opts.wasm {
		name, path, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("invalid -wasm value %q, want name=path", spec)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if _, err := exec.LoadWasm(ctx, name, data); err != nil {
			return err
		}
	}

	if opts.describe != "" {
		return describe(ctx, exec, opts, stdout)
	}

	state, err := exec.NewState(ctx)
	if err != nil {
		return err
	}
	defer state.Close()
	return state.DoFile(opts.script)
}

func describe(ctx context.Context, exec *host.Executor, opts *options, stdout io.Writer) error {
	md, err := exec.Describe(ctx, opts.describe)
	if err != nil {
		return err
	}
	if opts.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(md)
	}
	enc := yaml.NewEncoder(stdout)
	enc.SetIndent(2)
	if err := enc.Encode(md); err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	return enc.Close()
}
