package cms

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrValidation is wrapped by every input validation failure.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidDateRange is returned for an experience entry ending before it starts.
	ErrInvalidDateRange = errors.New("end date is before start date")
	// ErrEmptyReorder is returned when Reorder receives no ids.
	ErrEmptyReorder = errors.New("reorder requires at least one id")
)

// ValidationError lists the offending fields of an input, keyed by JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// ValidationFailure converts a validator error for any request struct into
// a ValidationError keyed by JSON field names.
func ValidationFailure(err error) error {
	return fromValidator(err)
}

// fromValidator converts validator output into a ValidationError.
func fromValidator(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = describe(fe)
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid e-mail address"
	case "url", "http_url":
		return "must be a valid URL"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "datetime":
		return "must be a date formatted as " + fe.Param()
	case "slug":
		return "must contain only lower-case letters, digits and hyphens"
	case "oneof":
		return "must be one of " + fe.Param()
	case "dive":
		return "contains an invalid entry"
	}
	return "failed " + fe.Tag() + " check"
}
