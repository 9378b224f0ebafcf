package locenv

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/locenv/locenv-sdk/go/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterConfig struct {
	Start int    `yaml:"start" validate:"min=0"`
	Label string `yaml:"label" validate:"required"`
}

func writeConfig(t *testing.T, ctx *Context, body string) {
	t.Helper()
	dir := ctx.ConfigurationsPath()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(body), 0o600))
}

func TestContext_LoadConfig(t *testing.T) {
	L := newState(t)
	ctx := load(t, L, counterModule(), WithDataDirectory(t.TempDir()))
	writeConfig(t, ctx, "start: 10\nlabel: hits\n")

	var cfg counterConfig
	require.NoError(t, ctx.LoadConfig(&cfg))
	assert.Equal(t, counterConfig{Start: 10, Label: "hits"}, cfg)
}

func TestContext_LoadConfig_Missing(t *testing.T) {
	L := newState(t)
	ctx := load(t, L, counterModule(), WithDataDirectory(t.TempDir()))

	cfg := counterConfig{Start: 3}
	err := ctx.LoadConfig(&cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, 3, cfg.Start)

	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "counter", cfgErr.Module)
}

func TestContext_LoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed", "start: [", "failed to parse configuration"},
		{"unknown key", "label: x\nstop: 1\n", "failed to parse configuration"},
		{"fails validation", "start: -1\nlabel: x\n", "validation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			L := newState(t)
			ctx := load(t, L, counterModule(), WithDataDirectory(t.TempDir()))
			writeConfig(t, ctx, tt.body)

			var cfg counterConfig
			err := ctx.LoadConfig(&cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.NotErrorIs(t, err, fs.ErrNotExist)
		})
	}
}
