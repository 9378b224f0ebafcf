// Package testutil provides common test utilities and assertions for Lua-facing tests
package testutil

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	locenv "github.com/locenv/locenv-sdk/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

// NewState returns a VM instance with the standard libraries opened. Module
// Contexts are released and the instance closed when the test ends.
func NewState(t *testing.T) *lua.LState {
	t.Helper()
	L := lua.NewState()
	t.Cleanup(func() {
		locenv.ReleaseContexts(L)
		L.Close()
	})
	return L
}

// NewLogger returns a debug-level text logger writing into the returned buffer.
func NewLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

// WriteModuleConfig writes a module's config.yaml below dataDir.
func WriteModuleConfig(t *testing.T, dataDir, module, body string) {
	t.Helper()
	dir := filepath.Join(dataDir, "config", module)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, locenv.ConfigFileName), []byte(body), 0o600))
}

// RequireScript runs source in L and fails the test on any error.
func RequireScript(t *testing.T, L *lua.LState, source string) {
	t.Helper()
	require.NoError(t, L.DoString(source))
}

// AssertScriptError runs source in L and asserts it fails with a message
// containing want.
func AssertScriptError(t *testing.T, L *lua.LState, source, want string) {
	t.Helper()
	err := L.DoString(source)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), want)
	}
}

// AssertGlobal asserts the value of a global variable.
func AssertGlobal(t *testing.T, L *lua.LState, name string, want lua.LValue, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, want, L.GetGlobal(name), msgAndArgs...)
}
