package server

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator implements echo.Validator on top of go-playground/validator.
// Fields are reported by the name the client used (query, then form key).
type Validator struct {
	validate *validator.Validate
}

// NewValidator returns a Validator with struct-level required checks enabled.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(paramName)
	return &Validator{validate: v}
}

func paramName(f reflect.StructField) string {
	for _, tag := range []string{"query", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// Validate checks i against its validate tags. Rule violations come back
// as *ValidationError; anything else (e.g. a non-struct) is returned as is.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	var violations validator.ValidationErrors
	if errors.As(err, &violations) {
		return newValidationError(violations)
	}
	return err
}

// ValidationError lists the request parameters that broke a rule.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is one broken rule.
type FieldError struct {
	Field   string
	Rule    string
	Message string
}

var ruleMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"min":      "must be at least %s characters",
	"max":      "must be at most %s characters",
}

func newValidationError(violations validator.ValidationErrors) *ValidationError {
	out := &ValidationError{Errors: make([]FieldError, 0, len(violations))}
	for _, fe := range violations {
		msg, ok := ruleMessages[fe.Tag()]
		if !ok {
			msg = "failed validation"
		}
		msg = strings.Replace(msg, "%s", fe.Param(), 1)
		out.Errors = append(out.Errors, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: fe.Field() + " " + msg,
		})
	}
	return out
}

func (ve *ValidationError) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(ve.Errors))
	for i, fe := range ve.Errors {
		msgs[i] = fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
