// Package parser decodes module configuration files.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLConfigParser decodes YAML module configuration.
type YAMLConfigParser struct {
	knownFields bool
}

// ParserOption configures a YAMLConfigParser.
type ParserOption func(*YAMLConfigParser)

// WithKnownFields rejects keys that do not map to a field of the target struct.
func WithKnownFields(enabled bool) ParserOption {
	return func(p *YAMLConfigParser) {
		p.knownFields = enabled
	}
}

// NewYAMLConfigParser creates a YAMLConfigParser. Unknown keys are rejected
// unless WithKnownFields(false) is given.
func NewYAMLConfigParser(opts ...ParserOption) *YAMLConfigParser {
	p := &YAMLConfigParser{knownFields: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse unmarshals YAML bytes into v. Empty input, or input holding only
// comments, leaves v untouched.
func (p *YAMLConfigParser) Parse(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(p.knownFields)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}
	return nil
}
