package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound         = errors.New("resource not found")
	ErrConflict         = errors.New("resource already exists")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidEnumValue = errors.New("invalid enum value")
	ErrInternal         = errors.New("internal server error")
)

// ValidationError carries field-level detail for user-correctable input
// problems. Handlers render it as a 400 with the field named.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// InvalidEnum wraps ErrInvalidEnumValue with the offending field and value
// so errors.Is still matches the sentinel.
func InvalidEnum(field, value string) error {
	return fmt.Errorf("%w: %q is not a valid %s", ErrInvalidEnumValue, value, field)
}
