package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/deckpack/internal/api/shared"
	"github.com/phrazzld/deckpack/internal/domain"
	"github.com/phrazzld/deckpack/internal/platform/logger"
	"github.com/phrazzld/deckpack/internal/redact"
	"github.com/phrazzld/deckpack/internal/service"
)

// getPathTopic extracts a deck topic from the URL path. Topics may contain
// spaces and slashes, so the parameter is unescaped.
func getPathTopic(r *http.Request, paramName string) (string, error) {
	raw := chi.URLParam(r, paramName)
	topic, err := url.PathUnescape(raw)
	if err != nil {
		return "", domain.NewValidationError(paramName, "has invalid format", domain.ErrValidation)
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}
	return topic, nil
}

// getPathIndex extracts an integer path parameter.
// Range checks are left to the service so the message matches other clients.
func getPathIndex(r *http.Request, paramName string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, paramName))
	if err != nil {
		return 0, domain.NewValidationError(paramName, "must be an integer", domain.ErrValidation)
	}
	return n, nil
}

// decodeRequest decodes and validates a JSON body into req. It writes the
// error response itself and reports whether the handler should continue.
func decodeRequest(w http.ResponseWriter, r *http.Request, req any, log *slog.Logger) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		log.WarnContext(r.Context(), "invalid request format", slog.String("error", redact.Error(err)))
		var maxBytes *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytes), errors.Is(err, shared.ErrEmptyBody):
			HandleAPIError(w, r, err, "")
		default:
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		}
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		log.WarnContext(r.Context(), "validation error", slog.String("error", redact.Error(err)))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// HandleAPIError writes an error response using the status and safe message
// derived from err. A non-empty message overrides the derived one.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), message, err)
}

// outcomeStatus maps a handler outcome to an HTTP status.
func outcomeStatus(o service.Outcome) int {
	if o.Success {
		return http.StatusOK
	}
	if o.RequiresConfirmation {
		return http.StatusPreconditionRequired
	}
	switch o.Kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	case service.KindQuotaExceeded:
		return StatusInsufficientStorage
	case service.KindGeneration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondOutcome writes an outcome as the response body. Outcomes already
// carry user-facing messages, so they are sent as-is.
func respondOutcome(w http.ResponseWriter, r *http.Request, o service.Outcome) {
	status := outcomeStatus(o)
	if status >= http.StatusInternalServerError {
		logger.FromContextOrDefault(r.Context(), nil).WarnContext(r.Context(), "handler failed",
			slog.String("kind", string(o.Kind)),
			slog.String("message", o.Message))
	}
	shared.RespondWithJSON(w, r, status, o)
}
