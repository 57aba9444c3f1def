package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/deckpack/internal/api/shared"
	"github.com/phrazzld/deckpack/internal/domain"
	"github.com/phrazzld/deckpack/internal/export"
	"github.com/phrazzld/deckpack/internal/imagegen"
	"github.com/phrazzld/deckpack/internal/redact"
	"github.com/phrazzld/deckpack/internal/service"
	"github.com/phrazzld/deckpack/internal/store"
)

// StatusInsufficientStorage is returned when the deck store is over quota.
const StatusInsufficientStorage = http.StatusInsufficientStorage

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var maxBytes *http.MaxBytesError
	var syntax *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var invalid validator.ValidationErrors

	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, export.ErrEmptyInput),
		errors.Is(err, export.ErrNoEligibleCards),
		errors.Is(err, shared.ErrEmptyBody),
		errors.Is(err, domain.ErrValidation),
		errors.As(err, &syntax),
		errors.As(err, &typeErr),
		errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, service.ErrNoDraft):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrQuotaExceeded):
		return StatusInsufficientStorage
	case errors.Is(err, imagegen.ErrGeneration):
		return http.StatusBadGateway
	case errors.Is(err, store.ErrLocked):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var maxBytes *http.MaxBytesError
	var packaging *export.PackagingError
	var invalid validator.ValidationErrors

	switch {
	case errors.As(err, &maxBytes):
		return fmt.Sprintf("Request body exceeds %d bytes", maxBytes.Limit)
	case errors.Is(err, export.ErrEmptyInput):
		return "Request body must be a non-empty array of decks"
	case errors.Is(err, export.ErrNoEligibleCards):
		return "No cards with images to export"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.As(err, &invalid):
		return SanitizeValidationError(err)
	case errors.Is(err, domain.ErrValidation):
		return "Validation error"
	case errors.Is(err, domain.ErrDeckNotFound):
		return "Deck not found"
	case errors.Is(err, domain.ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, service.ErrNoDraft):
		return "No draft image"
	case errors.Is(err, domain.ErrConflict):
		return "Category already exists"
	case errors.Is(err, domain.ErrQuotaExceeded):
		return "Storage limit reached"
	case errors.Is(err, imagegen.ErrGeneration):
		return "Image generation failed"
	case errors.Is(err, store.ErrLocked):
		return "Deck store is busy, try again"
	case errors.As(err, &packaging):
		// Stage and media name help users find the bad card; the cause is
		// redacted so image payloads never echo back.
		return "Failed to build package: " + redact.Error(packaging)
	default:
		if MapErrorToStatusCode(err) == http.StatusBadRequest {
			return "Invalid request format"
		}
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator errors into a short message naming
// the first offending field.
func SanitizeValidationError(err error) string {
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) || len(invalid) == 0 {
		return "Validation error"
	}
	fe := invalid[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag(), fe.Param()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag, param string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "must be at least " + param
	case "max", "lte":
		return "must be at most " + param
	case "oneof":
		return "must be one of " + strings.Join(strings.Fields(param), ", ")
	default:
		return "validation failed"
	}
}
