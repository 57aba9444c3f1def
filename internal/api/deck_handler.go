package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/deckpack/internal/api/shared"
	"github.com/phrazzld/deckpack/internal/domain"
	"github.com/phrazzld/deckpack/internal/platform/logger"
	"github.com/phrazzld/deckpack/internal/service"
)

// DeckService is the set of deck operations the HTTP layer exposes.
type DeckService interface {
	Decks() []domain.Deck
	Deck(topic string) (domain.Deck, bool)
	CreateCategory(ctx context.Context, req service.CreateCategoryRequest) service.Outcome
	DeleteCategory(ctx context.Context, req service.DeleteCategoryRequest) service.Outcome
	GenerateCard(ctx context.Context, req service.GenerateCardRequest) service.Outcome
	UpdateCard(ctx context.Context, req service.UpdateCardRequest) service.Outcome
	DeleteCard(ctx context.Context, req service.DeleteCardRequest) service.Outcome
	BulkGenerate(ctx context.Context, req service.BulkGenerateRequest) service.BulkReport
	BulkGenerateAll(ctx context.Context, req service.BulkGenerateAllRequest) service.BulkReport
	ThemedGenerate(ctx context.Context, req service.ThemedGenerateRequest) service.Outcome
	CurrentDraft() (service.Draft, bool)
	GenerateDraft(ctx context.Context, req service.GenerateDraftRequest) service.Outcome
	RecreateDraft(ctx context.Context) service.Outcome
	ReviseDraft(ctx context.Context, req service.GenerateDraftRequest) service.Outcome
	SaveDraft(ctx context.Context, req service.SaveDraftRequest) service.Outcome
}

// DeckHandler handles deck, card and draft requests.
type DeckHandler struct {
	decks  DeckService
	logger *slog.Logger
}

// NewDeckHandler creates a new DeckHandler
func NewDeckHandler(decks DeckService, logger *slog.Logger) *DeckHandler {
	if decks == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("deck service cannot be nil for DeckHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for DeckHandler")
	}
	return &DeckHandler{
		decks:  decks,
		logger: logger.With(slog.String("component", "deck_handler")),
	}
}

// Register mounts the deck routes.
func (h *DeckHandler) Register(r chi.Router) {
	r.Get("/decks", h.ListDecks)
	r.Get("/decks/{topic}", h.GetDeck)

	r.Post("/categories", h.CreateCategory)
	r.Delete("/categories/{topic}", h.DeleteCategory)
	r.Delete("/categories/{topic}/cards/{index}", h.DeleteCard)

	r.Post("/cards", h.GenerateCard)
	r.Put("/cards", h.UpdateCard)
	r.Post("/cards/bulk", h.BulkGenerate)
	r.Post("/cards/bulk-all", h.BulkGenerateAll)
	r.Post("/cards/themed", h.ThemedGenerate)
	r.Get("/themes", h.ListThemes)

	r.Get("/draft", h.GetDraft)
	r.Post("/draft", h.GenerateDraft)
	r.Put("/draft", h.ReviseDraft)
	r.Post("/draft/recreate", h.RecreateDraft)
	r.Post("/draft/save", h.SaveDraft)
}

// ListDecks handles GET /api/decks.
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	decks := h.decks.Decks()
	resp := ListDecksResponse{Decks: make([]DeckSummary, 0, len(decks))}
	for _, d := range decks {
		resp.Decks = append(resp.Decks, deckToSummary(d))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetDeck handles GET /api/decks/{topic}, returning the full deck document.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	topic, err := getPathTopic(r, "topic")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	deck, found := h.decks.Deck(topic)
	if !found {
		HandleAPIError(w, r, domain.ErrDeckNotFound, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, deck)
}

// CreateCategory handles POST /api/categories.
func (h *DeckHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	var req service.CreateCategoryRequest
	if !decodeRequest(w, r, &req, log) {
		return
	}
	respondOutcome(w, r, h.decks.CreateCategory(r.Context(), req))
}

// DeleteCategory handles DELETE /api/categories/{topic}?confirmed=true.
// Without confirmation a non-empty deck answers 428 and is kept.
func (h *DeckHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	topic, err := getPathTopic(r, "topic")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirmed"))
	respondOutcome(w, r, h.decks.DeleteCategory(r.Context(), service.DeleteCategoryRequest{
		Category:  topic,
		Confirmed: confirmed,
	}))
}

// DeleteCard handles DELETE /api/categories/{topic}/cards/{index}.
func (h *DeckHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	topic, err := getPathTopic(r, "topic")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	index, err := getPathIndex(r, "index")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	respondOutcome(w, r, h.decks.DeleteCard(r.Context(), service.DeleteCardRequest{Category: topic, Index: index}))
}

// GenerateCard handles POST /api/cards.
func (h *DeckHandler) GenerateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	var req service.GenerateCardRequest
	if !decodeRequest(w, r, &req, log) {
		return
	}
	respondOutcome(w, r, h.decks.GenerateCard(r.Context(), req))
}

// UpdateCard handles PUT /api/cards.
func (h *DeckHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	var req service.UpdateCardRequest
	if !decodeRequest(w, r, &req, log) {
		return
	}
	respondOutcome(w, r, h.decks.UpdateCard(r.Context(), req))
}

// BulkGenerate handles POST /api/cards/bulk.
func (h *DeckHandler) BulkGenerate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	var req service.BulkGenerateRequest
	if !decodeRequest(w, r, &req, log) {
		return
	}
	report := h.decks.BulkGenerate(r.Context(), req)
	shared.RespondWithJSON(w, r, outcomeStatus(report.Outcome), report)
}

// BulkGenerateAll handles POST /api/cards/bulk-all.
func (h *DeckHandler) BulkGenerateAll(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	var req service.BulkGenerateAllRequest
	if !decodeRequest(w, r, &req, log) {
		return
	}
	report := h.decks.BulkGenerateAll(r.Context(), req)
	shared.RespondWithJSON(w, r, outcomeStatus(report.Outcome), report)
}

// ThemedGenerate handles POST /api/cards/themed.
func (h *DeckHandler) ThemedGenerate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	var req service.ThemedGenerateRequest
	if !decodeRequest(w, r, &req, log) {
		return
	}
	respondOutcome(w, r, h.decks.ThemedGenerate(r.Context(), req))
}

// ListThemes handles GET /api/themes.
func (h *DeckHandler) ListThemes(w http.ResponseWriter, r *http.Request) {
	names := service.Themes()
	resp := ThemesResponse{Themes: make([]Theme, 0, len(names))}
	for _, name := range names {
		resp.Themes = append(resp.Themes, Theme{Name: name, Modifiers: service.ThemeModifiers(name)})
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetDraft handles GET /api/draft.
func (h *DeckHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	draft, found := h.decks.CurrentDraft()
	if !found {
		HandleAPIError(w, r, service.ErrNoDraft, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, DraftResponse{Draft: &draft})
}

// GenerateDraft handles POST /api/draft.
func (h *DeckHandler) GenerateDraft(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	var req service.GenerateDraftRequest
	if !decodeRequest(w, r, &req, log) {
		return
	}
	respondOutcome(w, r, h.decks.GenerateDraft(r.Context(), req))
}

// ReviseDraft handles PUT /api/draft.
func (h *DeckHandler) ReviseDraft(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	var req service.GenerateDraftRequest
	if !decodeRequest(w, r, &req, log) {
		return
	}
	respondOutcome(w, r, h.decks.ReviseDraft(r.Context(), req))
}

// RecreateDraft handles POST /api/draft/recreate.
func (h *DeckHandler) RecreateDraft(w http.ResponseWriter, r *http.Request) {
	respondOutcome(w, r, h.decks.RecreateDraft(r.Context()))
}

// SaveDraft handles POST /api/draft/save.
func (h *DeckHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	var req service.SaveDraftRequest
	if !decodeRequest(w, r, &req, log) {
		return
	}
	respondOutcome(w, r, h.decks.SaveDraft(r.Context(), req))
}
