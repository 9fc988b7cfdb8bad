package services

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input that was rejected before reaching storage or rendering.
	ErrValidation = errors.New("validation failed")
	// ErrConfirmationRequired is returned by irreversible edits made without confirmation.
	ErrConfirmationRequired = errors.New("confirmation required")
	// ErrIndexOutOfRange is returned when an edit addresses a missing family or item.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrFieldNotEditable is returned for edits to derived or identity fields.
	ErrFieldNotEditable = errors.New("field is not editable")
)

// ValidationError is a field-level validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"error"`
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
