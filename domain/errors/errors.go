// Package errors provides domain-specific error types for the SDK.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"
)

// DefaultPanicMessage is used when a recovered panic value carries no message:
// it is neither an error, a string, nor a fmt.Stringer.
const DefaultPanicMessage = "panic recovered"

// ContractError reports a violation of the bridge's calling contract by module
// code: an unbalanced stack, a wrong upvalue index, a Context used from a
// foreign VM instance. It is raised with panic, never returned.
type ContractError struct {
	Op     string // Primitive or entry point that detected the violation
	Detail string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("contract violation in %s: %s", e.Op, e.Detail)
}

// Violation panics with a ContractError. It never returns.
func Violation(op, format string, args ...any) {
	panic(&ContractError{Op: op, Detail: fmt.Sprintf(format, args...)})
}

// PanicError describes a host panic contained at a VM boundary.
type PanicError struct {
	Value    any
	Module   string
	Function string // Empty when the panic came from the loader body
}

func (e *PanicError) Error() string {
	msg := PanicMessage(e.Value)
	switch {
	case e.Module != "" && e.Function != "":
		return fmt.Sprintf("%s.%s: panic: %s", e.Module, e.Function, msg)
	case e.Module != "":
		return fmt.Sprintf("%s: panic: %s", e.Module, msg)
	default:
		return "panic: " + msg
	}
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// PanicMessage derives a diagnostic message from a recovered panic value.
func PanicMessage(v any) string {
	switch p := v.(type) {
	case error:
		return p.Error()
	case string:
		return p
	case fmt.Stringer:
		return p.String()
	case nil:
		return DefaultPanicMessage
	default:
		return fmt.Sprintf("%s (%T)", DefaultPanicMessage, v)
	}
}

// LoadError reports a failure to load a module image (Go plugin or WASM).
type LoadError struct {
	Err    error
	Module string
	Source string // File path or "<bytes>"
}

func (e *LoadError) Error() string {
	if e.Module != "" {
		return fmt.Sprintf("failed to load module %s from %s: %v", e.Module, e.Source, e.Err)
	}
	return fmt.Sprintf("failed to load module from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ConfigError represents a module configuration error.
type ConfigError struct {
	Err    error
	Module string
	Path   string
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("configuration for module %s (%s): %v", e.Module, e.Path, e.Err)
	}
	return fmt.Sprintf("configuration for module %s: %v", e.Module, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsContractViolation reports whether err is or wraps a ContractError.
func IsContractViolation(err error) bool {
	var ce *ContractError
	return stdErrors.As(err, &ce)
}
