package config

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/elee1766/chatledger/src/llmclient"
)

var (
	logLevels  = []string{"debug", "info", "warn", "warning", "error"}
	logFormats = []string{"json", "text"}
)

// Validator checks a merged Config before it is used
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their config-file path (provider.name, not Config.Provider.Name)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("provider", func(fl validator.FieldLevel) bool {
		return llmclient.IsKnownProvider(fl.Field().String())
	})
	v.RegisterValidation("log_level", oneOfOrEmpty(logLevels))
	v.RegisterValidation("log_format", oneOfOrEmpty(logFormats))

	return &Validator{validate: v}
}

// Validate returns the first failing field as a ValidationError
func (v *Validator) Validate(config *Config) error {
	if config.Version == "" {
		config.Version = "1.0"
	}

	err := v.validate.Struct(config)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	return ValidationError{
		Field:   field,
		Message: describe(field, fe),
		Value:   fe.Value(),
	}
}

func describe(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "provider":
		return fmt.Sprintf("%s: unknown provider %q (known: %s)", field, fe.Value(), strings.Join(llmclient.Providers(), ", "))
	case "log_level":
		return fmt.Sprintf("%s must be one of %s", field, strings.Join(logLevels, ", "))
	case "log_format":
		return fmt.Sprintf("%s must be one of %s", field, strings.Join(logFormats, ", "))
	case "min":
		return fmt.Sprintf("%s must be at least %s, got %v", field, fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s, got %v", field, fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s: validation failed on '%s' with value '%v'", field, fe.Tag(), fe.Value())
}

func oneOfOrEmpty(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || slices.Contains(allowed, value)
	}
}
