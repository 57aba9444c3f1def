// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a request or entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a deck or card lookup misses.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a deck with the same topic already exists.
	ErrConflict = errors.New("already exists")

	// ErrQuotaExceeded is returned when the serialized deck store has grown
	// past the storage threshold.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrEmptyTopic is returned when a deck topic is blank.
	ErrEmptyTopic = errors.New("topic cannot be empty")

	// ErrEmptyDeckID is returned when a deck ID is blank.
	ErrEmptyDeckID = errors.New("deck ID cannot be empty")

	// ErrDeckNotFound indicates that no deck matches the requested topic.
	ErrDeckNotFound = fmt.Errorf("%w: deck", ErrNotFound)

	// ErrCardNotFound indicates that a card index is out of range for its deck.
	ErrCardNotFound = fmt.Errorf("%w: card", ErrNotFound)
)

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for the given field. When err
// is nil the error wraps ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}
