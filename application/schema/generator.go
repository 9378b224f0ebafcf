// Package schema generates JSON schemas for module configuration types.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// GenerateSchema creates a JSON schema (Draft 2020-12) from a module's
// configuration struct. Property names follow the struct's yaml tags, the
// way configuration files spell them, and fields tagged validate:"required"
// are listed as required.
func GenerateSchema(v any) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true, // Expand struct definitions inline
		FieldNameTag:   "yaml",
	}
	schema := reflector.Reflect(v)
	markRequired(schema, v)

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	return jsonBytes, nil
}

// markRequired replaces the reflector's notion of required properties with
// the fields carrying a validate:"required" rule.
func markRequired(s *jsonschema.Schema, v any) {
	if s == nil || s.Properties == nil {
		return
	}
	s.Required = nil
	for _, f := range requiredFields(v) {
		if _, ok := s.Properties.Get(f); ok {
			s.Required = append(s.Required, f)
		}
	}
}

func requiredFields(v any) []string {
	t := indirectType(v)
	if t == nil {
		return nil
	}
	var out []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		rules := strings.Split(f.Tag.Get("validate"), ",")
		if !contains(rules, "required") {
			continue
		}
		name := strings.Split(f.Tag.Get("yaml"), ",")[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		out = append(out, name)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
