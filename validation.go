package locenv

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// validate is a package-level singleton for better performance.
// Creating a new validator on each call is expensive; reusing is recommended.
var validate = newValidator()

// moduleNamePattern matches dotted Lua identifier paths such as "net.http".
var moduleNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("luamodule", func(fl validator.FieldLevel) bool {
		return moduleNamePattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidateConfig runs the struct's validation tags on a decoded module
// configuration.
func ValidateConfig(targetStruct any) error {
	if err := validate.Struct(targetStruct); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
