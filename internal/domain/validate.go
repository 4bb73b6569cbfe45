package domain

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FieldError is a single field-level validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors collects validation failures for one request. An empty list
// means the input is valid.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *FieldErrors) Add(field, format string, args ...interface{}) {
	*e = append(*e, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Merge appends other to e.
func (e *FieldErrors) Merge(other FieldErrors) {
	*e = append(*e, other...)
}

// Err returns e as an error, or nil when empty.
func (e FieldErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e *FieldErrors) required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		e.Add(field, "%s is required", field)
		return false
	}
	return true
}

func (e *FieldErrors) maxLen(field, value string, max int) {
	if len([]rune(value)) > max {
		e.Add(field, "%s cannot exceed %d characters", field, max)
	}
}

func (e *FieldErrors) email(field, value string) {
	if err := validate.Var(value, "email"); err != nil {
		e.Add(field, "please enter a valid email")
	}
}

func (e *FieldErrors) oneOf(field, value string, allowed []string) {
	for _, a := range allowed {
		if a == value {
			return
		}
	}
	e.Add(field, "%s must be one of: %s", field, strings.Join(allowed, ", "))
}

// IsEmail reports whether s is a syntactically valid email address.
func IsEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}
