package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decode generates the schema of v and decodes it into a generic map.
func decode(t *testing.T, v any) map[string]any {
	t.Helper()
	schema, err := GenerateSchema(v)
	require.NoError(t, err)
	require.NotEmpty(t, schema)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(schema, &decoded))
	return decoded
}

func properties(t *testing.T, decoded map[string]any) map[string]any {
	t.Helper()
	props, ok := decoded["properties"].(map[string]any)
	require.True(t, ok, "properties should be a map")
	return props
}

func TestGenerateSchema_SimpleStruct(t *testing.T) {
	type SimpleConfig struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	}

	props := properties(t, decode(t, SimpleConfig{}))
	assert.Contains(t, props, "host")
	assert.Contains(t, props, "port")
}

func TestGenerateSchema_UsesYAMLNames(t *testing.T) {
	type Config struct {
		StartValue int    `yaml:"start_value"`
		Label      string `yaml:"label,omitempty"`
		Untagged   bool
		Skipped    string `yaml:"-"`
	}

	props := properties(t, decode(t, Config{}))
	assert.Contains(t, props, "start_value")
	assert.Contains(t, props, "label")
	assert.Contains(t, props, "Untagged")
	assert.NotContains(t, props, "StartValue")
	assert.NotContains(t, props, "Skipped")
}

func TestGenerateSchema_RequiredFromValidateTags(t *testing.T) {
	type Config struct {
		URL     string `yaml:"url" validate:"required,url"`
		Method  string `yaml:"method" validate:"omitempty,oneof=GET POST"`
		Timeout int    `yaml:"timeout" validate:"required,min=1"`
		Retries int    `yaml:"retries"`
	}

	decoded := decode(t, Config{})
	assert.Len(t, properties(t, decoded), 4)

	required, ok := decoded["required"].([]any)
	require.True(t, ok, "required should be an array")
	assert.ElementsMatch(t, []any{"url", "timeout"}, required)
}

func TestGenerateSchema_NoRequiredFields(t *testing.T) {
	type Config struct {
		Start int `yaml:"start"`
	}
	decoded := decode(t, &Config{})
	assert.NotContains(t, decoded, "required")
}

func TestGenerateSchema_NestedStruct(t *testing.T) {
	type ServerConfig struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	}

	type Config struct {
		Server  ServerConfig `yaml:"server"`
		Timeout int          `yaml:"timeout"`
	}

	schema, err := GenerateSchema(Config{})
	require.NoError(t, err)

	schemaStr := string(schema)
	assert.Contains(t, schemaStr, "server")
	assert.Contains(t, schemaStr, "host")
	assert.Contains(t, schemaStr, "timeout")
}

func TestGenerateSchema_CollectionTypes(t *testing.T) {
	type ArrayConfig struct {
		Hosts []string          `yaml:"hosts"`
		Ports []int             `yaml:"ports"`
		Data  map[string]string `yaml:"data"`
	}

	props := properties(t, decode(t, ArrayConfig{}))
	hosts, ok := props["hosts"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "array", hosts["type"])
	data, ok := props["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", data["type"])
}

func TestGenerateSchema_EmptyStruct(t *testing.T) {
	type EmptyConfig struct{}

	schema, err := GenerateSchema(EmptyConfig{})
	require.NoError(t, err)
	assert.NotEmpty(t, schema)
}
