package locenv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func noopLoader(L *lua.LState, ctx *Context) int {
	L.Push(lua.LTrue)
	return 1
}

type serviceConfig struct {
	URL string `yaml:"url" validate:"required,url"`
}

func TestModule_Validate(t *testing.T) {
	tests := []struct {
		name    string
		module  Module
		wantErr bool
	}{
		{"simple", Module{Name: "counter", Loader: noopLoader}, false},
		{"dotted", Module{Name: "net.http_client", Loader: noopLoader}, false},
		{"with version", Module{Name: "counter", Version: "1.2.3", Loader: noopLoader}, false},
		{"empty name", Module{Loader: noopLoader}, true},
		{"leading digit", Module{Name: "1counter", Loader: noopLoader}, true},
		{"trailing dot", Module{Name: "net.", Loader: noopLoader}, true},
		{"dash", Module{Name: "my-module", Loader: noopLoader}, true},
		{"bad version", Module{Name: "counter", Version: "latest", Loader: noopLoader}, true},
		{"no loader", Module{Name: "counter"}, true},
		{"config with required fields", Module{Name: "svc", Loader: noopLoader, Config: serviceConfig{}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.module.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid module")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateConfig(t *testing.T) {
	type portConfig struct {
		Port int `yaml:"port" validate:"min=1,max=65535"`
	}

	require.NoError(t, ValidateConfig(&portConfig{Port: 443}))

	for _, port := range []int{0, 70000} {
		err := ValidateConfig(&portConfig{Port: port})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
	}
}

func TestDefaultDataDirectory(t *testing.T) {
	t.Setenv(DataDirectoryEnv, "/srv/locenv")
	assert.Equal(t, "/srv/locenv", DefaultDataDirectory())

	t.Setenv(DataDirectoryEnv, "")
	assert.Contains(t, DefaultDataDirectory(), ".locenv")
}
