package host

import (
	"fmt"
	"log/slog"

	locenv "github.com/locenv/locenv-sdk/go"
	lua "github.com/yuin/gopher-lua"
)

// State is one VM instance. It is not safe for concurrent use.
type State struct {
	L      *lua.LState
	logger *slog.Logger
	closed bool
}

// Lua returns the underlying VM instance.
func (s *State) Lua() *lua.LState {
	return s.L
}

// DoString runs a Lua chunk.
func (s *State) DoString(source string) error {
	if err := s.L.DoString(source); err != nil {
		return fmt.Errorf("script failed: %w", err)
	}
	return nil
}

// DoFile runs the Lua file at path.
func (s *State) DoFile(path string) error {
	if err := s.L.DoFile(path); err != nil {
		return fmt.Errorf("script %s failed: %w", path, err)
	}
	return nil
}

// Require loads module name as a script's require(name) would and returns
// its value.
func (s *State) Require(name string) (lua.LValue, error) {
	err := s.L.CallByParam(lua.P{
		Fn:      s.L.GetGlobal("require"),
		NRet:    1,
		Protect: true,
	}, lua.LString(name))
	if err != nil {
		return nil, fmt.Errorf("failed to require %s: %w", name, err)
	}
	v := s.L.Get(-1)
	s.L.Pop(1)
	return v, nil
}

// Close releases every module Context attached to the instance, then closes
// the instance. Calling Close more than once is a no-op.
func (s *State) Close() {
	if s.closed {
		return
	}
	s.closed = true
	n := len(locenv.Contexts(s.L))
	locenv.ReleaseContexts(s.L)
	s.L.Close()
	s.logger.Debug("state closed", "modules", n)
}
