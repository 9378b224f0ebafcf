package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Start int      `yaml:"start"`
	Tags  []string `yaml:"tags"`
}

func TestYAMLConfigParser_Parse(t *testing.T) {
	var cfg sample
	err := NewYAMLConfigParser().Parse([]byte("start: 5\ntags: [a, b]\n"), &cfg)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Start)
	assert.Equal(t, []string{"a", "b"}, cfg.Tags)
}

func TestYAMLConfigParser_UnknownFields(t *testing.T) {
	data := []byte("start: 1\nbogus: true\n")

	var strict sample
	err := NewYAMLConfigParser().Parse(data, &strict)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse configuration")

	var lax sample
	require.NoError(t, NewYAMLConfigParser(WithKnownFields(false)).Parse(data, &lax))
	assert.Equal(t, 1, lax.Start)
}

func TestYAMLConfigParser_Empty(t *testing.T) {
	cfg := sample{Start: 9}
	require.NoError(t, NewYAMLConfigParser().Parse(nil, &cfg))
	assert.Equal(t, 9, cfg.Start)
}

func TestYAMLConfigParser_CommentsOnly(t *testing.T) {
	for _, data := range []string{"# nothing configured yet\n", "  \n\n", "---\n# empty\n"} {
		cfg := sample{Start: 9}
		require.NoError(t, NewYAMLConfigParser().Parse([]byte(data), &cfg), "%q", data)
		assert.Equal(t, 9, cfg.Start)
	}
}
