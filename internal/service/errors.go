package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/deckpack/internal/domain"
	"github.com/phrazzld/deckpack/internal/imagegen"
)

// Common service errors - sentinel errors used across service implementations.
var (
	// ErrNoDraft indicates there is no generated image waiting to be saved
	// or recreated.
	ErrNoDraft = errors.New("no draft image")
)

// DeckServiceError is a custom error type for deck service errors.
type DeckServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for DeckServiceError.
func (e *DeckServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("deck service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("deck service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *DeckServiceError) Unwrap() error {
	return e.Err
}

// NewDeckServiceError creates a new DeckServiceError.
func NewDeckServiceError(operation, message string, err error) *DeckServiceError {
	return &DeckServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// KindOf classifies an error into an outcome kind.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, domain.ErrValidation):
		return KindValidation
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, ErrNoDraft):
		return KindNotFound
	case errors.Is(err, domain.ErrConflict):
		return KindConflict
	case errors.Is(err, domain.ErrQuotaExceeded):
		return KindQuotaExceeded
	case errors.Is(err, imagegen.ErrGeneration):
		return KindGeneration
	default:
		return KindInternal
	}
}
