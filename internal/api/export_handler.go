package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/deckpack/internal/api/shared"
	"github.com/phrazzld/deckpack/internal/domain"
	"github.com/phrazzld/deckpack/internal/export"
	"github.com/phrazzld/deckpack/internal/platform/logger"
)

const (
	// PackageContentType is sent with exported packages.
	PackageContentType = "application/apkg"

	// PackageFilename is the attachment name of exported packages.
	PackageFilename = "export.apkg"

	// DefaultMaxBodyBytes bounds export request bodies.
	DefaultMaxBodyBytes int64 = 25 << 20
)

// Exporter builds a study package from decks.
type Exporter interface {
	Export(ctx context.Context, decks []domain.Deck) ([]byte, error)
}

// DeckLister returns the decks held by the server.
type DeckLister interface {
	Decks() []domain.Deck
}

// ExportHandler serves package downloads.
type ExportHandler struct {
	exporter     Exporter
	decks        DeckLister
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewExportHandler creates a new ExportHandler. decks may be nil, in which
// case only client-supplied decks can be exported.
func NewExportHandler(exporter Exporter, decks DeckLister, maxBodyBytes int64, logger *slog.Logger) *ExportHandler {
	if exporter == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("exporter cannot be nil for ExportHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ExportHandler")
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &ExportHandler{
		exporter:     exporter,
		decks:        decks,
		maxBodyBytes: maxBodyBytes,
		logger:       logger.With(slog.String("component", "export_handler")),
	}
}

// Register mounts the export routes.
func (h *ExportHandler) Register(r chi.Router) {
	r.Post("/export-package", h.ExportPackage)
	r.Post("/export-apkg", h.ExportPackage)
	if h.decks != nil {
		r.Get("/export-package", h.ExportStored)
	}
}

// ExportPackage handles POST /api/export-package. The body is a JSON array
// of decks; the response is the package as an attachment.
func (h *ExportHandler) ExportPackage(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var decks []domain.Deck
	if err := shared.DecodeJSON(r, &decks); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			HandleAPIError(w, r, err, "")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Request body must be a JSON array of decks", err)
		return
	}

	log.DebugContext(r.Context(), "export requested", slog.Int("decks", len(decks)))
	h.export(w, r, decks)
}

// ExportStored handles GET /api/export-package, exporting the server's own
// decks.
func (h *ExportHandler) ExportStored(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, h.decks.Decks())
}

func (h *ExportHandler) export(w http.ResponseWriter, r *http.Request, decks []domain.Deck) {
	pkg, err := h.exporter.Export(r.Context(), decks)
	if err != nil {
		status := MapErrorToStatusCode(err)
		var packaging *export.PackagingError
		if errors.As(err, &packaging) {
			status = http.StatusInternalServerError
		}
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithAttachment(w, r, PackageContentType, PackageFilename, pkg)
}
