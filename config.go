package locenv

import (
	"os"
	"path/filepath"

	"github.com/locenv/locenv-sdk/go/domain/errors"
	"github.com/locenv/locenv-sdk/go/infrastructure/parser"
)

// ConfigFileName is the file LoadConfig reads inside ConfigurationsPath.
const ConfigFileName = "config.yaml"

// LoadConfig decodes the module's YAML configuration into v and validates it.
// v must be a pointer to a struct. When the file is missing the returned error
// matches fs.ErrNotExist and v is left untouched.
func (c *Context) LoadConfig(v any) error {
	path := filepath.Join(c.ConfigurationsPath(), ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return &errors.ConfigError{Module: c.module, Path: path, Err: err}
	}
	if err := parser.NewYAMLConfigParser().Parse(data, v); err != nil {
		return &errors.ConfigError{Module: c.module, Path: path, Err: err}
	}
	if err := ValidateConfig(v); err != nil {
		return &errors.ConfigError{Module: c.module, Path: path, Err: err}
	}
	return nil
}
