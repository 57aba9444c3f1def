package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when no document exists under the requested key.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidEntity is returned when a document or key is rejected before
	// being stored. Check the wrapped error for specific details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrLocked is returned when another process holds the state lock.
	ErrLocked = errors.New("state is locked by another process")

	// ErrStateNotFound indicates that no state document has been saved under the key.
	ErrStateNotFound = fmt.Errorf("%w: state document", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Backend   string // The backend name (e.g., "file", "postgres")
	Operation string // The operation that failed (e.g., "load", "save")
	Key       string // The state key involved
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s of %q failed: %v", e.Backend, e.Operation, e.Key, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(backend, operation, key string, err error) *StoreError {
	return &StoreError{
		Backend:   backend,
		Operation: operation,
		Key:       key,
		Err:       err,
	}
}

// ValidateKey rejects keys that cannot be stored safely by any backend.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key cannot be empty", ErrInvalidEntity)
	}
	for _, r := range key {
		if !(r == '-' || r == '_' || r == '.' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return fmt.Errorf("%w: key %q may only contain letters, digits, '.', '-' and '_'", ErrInvalidEntity, key)
		}
	}
	if key == "." || key == ".." {
		return fmt.Errorf("%w: key %q is reserved", ErrInvalidEntity, key)
	}
	return nil
}
