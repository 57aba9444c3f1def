package export

import (
	"errors"
	"fmt"
)

// Error definitions for the export package.
var (
	// ErrEmptyInput is returned when no decks are supplied.
	ErrEmptyInput = errors.New("no decks supplied")

	// ErrNoEligibleCards is returned when none of the supplied cards has an image.
	ErrNoEligibleCards = errors.New("no cards with images to export")
)

// PackagingError reports a failure while building the package. No partial
// output accompanies it.
type PackagingError struct {
	Stage string // decode, media, note or finalize
	Media string // media name involved, if any
	Err   error
}

// Error implements the error interface for PackagingError.
func (e *PackagingError) Error() string {
	if e.Media != "" {
		return fmt.Sprintf("packaging failed at %s (%s): %v", e.Stage, e.Media, e.Err)
	}
	return fmt.Sprintf("packaging failed at %s: %v", e.Stage, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *PackagingError) Unwrap() error {
	return e.Err
}
