package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Registration errors
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrDuplicatePlayer      = errors.New("player name is already registered")
	ErrUnauthorized         = errors.New("owner secret does not match")

	// Input errors
	ErrValidation     = errors.New("invalid registration data")
	ErrInvalidFaction = fmt.Errorf("%w: unknown faction", ErrValidation)
)

// ValidationError describes a single rejected input field.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is reports ErrValidation as the error kind
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
