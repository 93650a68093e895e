package config

import (
	"strings"
)

// Error categories reported by ConfigError.
const (
	CategoryMissing = "missing"
	CategoryInvalid = "invalid"
)

// ConfigError reports a configuration key that prevents the portal from
// starting, together with a hint on how to fix it.
//
//nolint:revive // stutters on purpose, callers match it with errors.As
type ConfigError struct {
	Category string // CategoryMissing or CategoryInvalid
	Field    string // koanf key, or the variable name for CONFIG_TYPE
	Message  string
	Hint     string
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config")
	if e.Category != "" {
		b.WriteString(" (" + e.Category + ")")
	}
	if e.Field != "" {
		b.WriteString(": " + e.Field)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Hint != "" {
		b.WriteString("; " + e.Hint)
	}
	return b.String()
}

// EnvVarFor returns the environment variable that overrides key.
func EnvVarFor(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// NewMissingFieldError reports an empty required key.
func NewMissingFieldError(key string) *ConfigError {
	return &ConfigError{
		Category: CategoryMissing,
		Field:    key,
		Message:  "required",
		Hint:     "set " + EnvVarFor(key) + " or " + key + " in config.yaml",
	}
}

// NewInvalidFieldError reports a value outside a closed set of options.
func NewInvalidFieldError(key, message string, options []string) *ConfigError {
	err := &ConfigError{Category: CategoryInvalid, Field: key, Message: message}
	if len(options) > 0 {
		err.Hint = "expected one of " + strings.Join(options, ", ")
	}
	return err
}

// NewValidationError reports a value that fails a range or format check.
func NewValidationError(key, message string) *ConfigError {
	return &ConfigError{Category: CategoryInvalid, Field: key, Message: message}
}
