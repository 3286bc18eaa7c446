package errors

import (
	"errors"
	"fmt"
)

// General errors

var (
	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInternal indicates an internal error
	ErrInternal = errors.New("internal error")
)

// Price series contract violations. These are the only hard failures of the
// analysis core; sparse data degrades to neutral defaults instead.

var (
	// ErrEmptySeries indicates a series without bars
	ErrEmptySeries = errors.New("empty price series")

	// ErrNonMonotonic indicates timestamps that are not strictly increasing
	ErrNonMonotonic = errors.New("timestamps not strictly increasing")

	// ErrMalformedBar indicates a bar with NaN, negative or inconsistent fields
	ErrMalformedBar = errors.New("malformed bar")

	// ErrMissingColumn indicates a required OHLCV column is absent from the source
	ErrMissingColumn = errors.New("missing OHLCV column")
)

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap lets errors.Is match ErrInvalidInput
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
