package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stringer struct{}

func (stringer) String() string { return "from stringer" }

func TestPanicMessage(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "boom", "boom"},
		{"error", fmt.Errorf("wrapped: %w", fs.ErrClosed), "wrapped: file already closed"},
		{"stringer", stringer{}, "from stringer"},
		{"nil", nil, DefaultPanicMessage},
		{"int", 42, "panic recovered (int)"},
		{"struct", struct{ X int }{1}, "panic recovered (struct { X int })"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PanicMessage(tt.value))
		})
	}
}

func TestPanicError(t *testing.T) {
	err := &PanicError{Module: "counter", Function: "incr", Value: "boom"}
	assert.Equal(t, "counter.incr: panic: boom", err.Error())

	err = &PanicError{Module: "counter", Value: 7}
	assert.Equal(t, "counter: panic: panic recovered (int)", err.Error())

	err = &PanicError{Value: "bare"}
	assert.Equal(t, "panic: bare", err.Error())
}

func TestPanicError_Unwrap(t *testing.T) {
	base := errors.New("base")
	err := &PanicError{Module: "m", Value: base}
	assert.True(t, errors.Is(err, base))

	err = &PanicError{Module: "m", Value: "text"}
	assert.Nil(t, err.Unwrap())
}

func TestViolation(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		ce, ok := r.(*ContractError)
		require.True(t, ok)
		assert.Equal(t, "set_functions", ce.Op)
		assert.Equal(t, "contract violation in set_functions: expected 2 values, got 1", ce.Error())
		assert.True(t, IsContractViolation(fmt.Errorf("outer: %w", ce)))
	}()
	Violation("set_functions", "expected %d values, got %d", 2, 1)
}

func TestLoadError(t *testing.T) {
	base := errors.New("bad magic")
	err := &LoadError{Module: "math", Source: "math.wasm", Err: base}
	assert.Equal(t, "failed to load module math from math.wasm: bad magic", err.Error())
	assert.True(t, errors.Is(err, base))

	err = &LoadError{Source: "x.so", Err: base}
	assert.Equal(t, "failed to load module from x.so: bad magic", err.Error())
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Module: "counter", Path: "/data/config/counter/config.yaml", Err: fs.ErrNotExist}
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "/data/config/counter/config.yaml")

	var ce *ConfigError
	require.True(t, errors.As(fmt.Errorf("load: %w", err), &ce))
	assert.Equal(t, "counter", ce.Module)

	assert.False(t, IsContractViolation(err))
}
