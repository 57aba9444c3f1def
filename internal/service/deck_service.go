package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/phrazzld/deckpack/internal/deckstore"
	"github.com/phrazzld/deckpack/internal/domain"
	"github.com/phrazzld/deckpack/internal/imagegen"
	"github.com/phrazzld/deckpack/internal/platform/logger"
	"github.com/phrazzld/deckpack/internal/redact"
)

const (
	// DefaultQuotaBytes is the serialized store size at which generation stops.
	DefaultQuotaBytes int64 = 4.5 * 1024 * 1024

	// MaxBulkCount bounds a single bulk request.
	MaxBulkCount = 50
)

// ImageGenerator produces a data URI for a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// Config tunes a DeckService.
type Config struct {
	// QuotaBytes is the storage threshold; zero means DefaultQuotaBytes.
	QuotaBytes int64
	// BulkConcurrency bounds parallel generation calls in bulk runs.
	BulkConcurrency int
	// Rand picks theme modifiers. Nil seeds from the clock.
	Rand *rand.Rand
}

// DeckService implements the deck and card handlers.
type DeckService struct {
	decks       *deckstore.Store
	images      ImageGenerator
	quota       int64
	concurrency int
	logger      *slog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	draftMu sync.Mutex
	draft   *Draft
}

// NewDeckService creates a DeckService.
// It returns an error if any of the required dependencies are nil.
func NewDeckService(
	decks *deckstore.Store,
	images ImageGenerator,
	cfg Config,
	logger *slog.Logger,
) (*DeckService, error) {
	if decks == nil {
		return nil, domain.NewValidationError("decks", "cannot be nil", domain.ErrValidation)
	}
	if images == nil {
		return nil, domain.NewValidationError("images", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	quota := cfg.QuotaBytes
	if quota <= 0 {
		quota = DefaultQuotaBytes
	}
	concurrency := cfg.BulkConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	rng := cfg.Rand
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}

	return &DeckService{
		decks:       decks,
		images:      images,
		quota:       quota,
		concurrency: concurrency,
		rng:         rng,
		logger:      logger.With(slog.String("component", "deck_service")),
	}, nil
}

// Decks returns a snapshot of all decks.
func (s *DeckService) Decks() []domain.Deck {
	return s.decks.List()
}

// Deck returns a copy of the deck matching topic.
func (s *DeckService) Deck(topic string) (domain.Deck, bool) {
	return s.decks.Get(topic)
}

// CreateCategory adds an empty deck unless the topic already exists.
func (s *DeckService) CreateCategory(ctx context.Context, req CreateCategoryRequest) Outcome {
	log := logger.FromContextOrDefault(ctx, s.logger)
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fail(KindValidation, "Category name is required")
	}

	err := s.decks.Mutate(ctx, func(tx *deckstore.Tx) error {
		if tx.Find(name) != nil {
			return domain.ErrConflict
		}
		deck, err := domain.NewDeck(name)
		if err != nil {
			return domain.NewValidationError("name", err.Error(), err)
		}
		tx.Add(deck)
		return nil
	})
	if errors.Is(err, domain.ErrConflict) {
		return fail(KindConflict, fmt.Sprintf("Category %q already exists.", name))
	}
	if err != nil {
		return s.internal(ctx, "create_category", err)
	}

	log.InfoContext(ctx, "category created", "category", name)
	return ok(fmt.Sprintf("Category %q created successfully.", name))
}

// DeleteCategory removes a deck. A deck holding cards is only removed when
// the request is confirmed; otherwise the store is left untouched.
func (s *DeckService) DeleteCategory(ctx context.Context, req DeleteCategoryRequest) Outcome {
	log := logger.FromContextOrDefault(ctx, s.logger)
	category := strings.TrimSpace(req.Category)
	if category == "" {
		return fail(KindValidation, "Category is required but was not provided")
	}

	var outcome Outcome
	err := s.decks.Mutate(ctx, func(tx *deckstore.Tx) error {
		deck := tx.Find(category)
		if deck == nil {
			outcome = fail(KindNotFound, fmt.Sprintf("Category %q not found.", category))
			return nil
		}
		if n := len(deck.Cards); n > 0 && !req.Confirmed {
			outcome = Outcome{
				Success:              false,
				RequiresConfirmation: true,
				Message: fmt.Sprintf("Category %q contains %s. Confirm to delete it.",
					deck.Topic, pluralCards(n)),
			}
			return nil
		}
		tx.Remove(deck.ID)
		outcome = ok(fmt.Sprintf("Category %q deleted.", deck.Topic))
		return nil
	})
	if err != nil {
		return s.internal(ctx, "delete_category", err)
	}

	if outcome.Success {
		log.InfoContext(ctx, "category deleted", "category", category)
	}
	return outcome
}

// GenerateCard appends one generated card to a deck.
func (s *DeckService) GenerateCard(ctx context.Context, req GenerateCardRequest) Outcome {
	category := strings.TrimSpace(req.Category)
	details := strings.TrimSpace(req.Details)
	if category == "" {
		return fail(KindValidation, "Category is required but was not provided")
	}
	if _, found := s.decks.Get(category); !found {
		return deckNotFound(category)
	}
	if outcome, exceeded := s.checkQuota(ctx); exceeded {
		return outcome
	}

	prompt := category
	description := "New image for " + category
	if details != "" {
		prompt = category + ", " + details
		description += ": " + details
	}

	image, err := s.images.GenerateImage(ctx, prompt)
	if err != nil {
		return s.generationFailed(ctx, "Failed to generate new card", category, err)
	}

	if err := s.appendCard(ctx, category, domain.NewCard(image, description)); err != nil {
		return s.outcomeFor(ctx, "generate_card", category, err)
	}
	return ok(fmt.Sprintf("Generated new card for category %q", category))
}

// UpdateCard regenerates the image of an existing card and replaces its
// description, keeping its review state.
func (s *DeckService) UpdateCard(ctx context.Context, req UpdateCardRequest) Outcome {
	category := strings.TrimSpace(req.Category)
	details := strings.TrimSpace(req.Details)
	if category == "" {
		return fail(KindValidation, "Category is required but was not provided")
	}
	deck, found := s.decks.Get(category)
	if !found {
		return deckNotFound(category)
	}
	if req.CardIndex < 0 || req.CardIndex >= len(deck.Cards) {
		return fail(KindNotFound, fmt.Sprintf("Invalid card index: %d", req.CardIndex))
	}

	prompt := category
	if details != "" {
		prompt = category + ", " + details
	}
	image, err := s.images.GenerateImage(ctx, prompt)
	if err != nil {
		return s.generationFailed(ctx, "Failed to update card", category, err)
	}

	err = s.decks.Mutate(ctx, func(tx *deckstore.Tx) error {
		d := tx.Find(category)
		if d == nil {
			return domain.ErrDeckNotFound
		}
		if req.CardIndex >= len(d.Cards) {
			return domain.ErrCardNotFound
		}
		d.Cards[req.CardIndex].Image = image
		d.Cards[req.CardIndex].Description = details
		d.Touch()
		tx.MarkDirty()
		return nil
	})
	if err != nil {
		return s.outcomeFor(ctx, "update_card", category, err)
	}
	return ok(fmt.Sprintf("Updated card in category %q", category))
}

// DeleteCard removes the card at req.Index.
func (s *DeckService) DeleteCard(ctx context.Context, req DeleteCardRequest) Outcome {
	category := strings.TrimSpace(req.Category)
	if category == "" {
		return fail(KindValidation, "Category is required but was not provided")
	}

	var outcome Outcome
	err := s.decks.Mutate(ctx, func(tx *deckstore.Tx) error {
		d := tx.Find(category)
		if d == nil {
			outcome = deckNotFound(category)
			return nil
		}
		if req.Index < 0 || req.Index >= len(d.Cards) {
			outcome = fail(KindNotFound, fmt.Sprintf("Invalid card index: %d", req.Index))
			return nil
		}
		deleted := d.Cards[req.Index]
		d.Cards = append(d.Cards[:req.Index], d.Cards[req.Index+1:]...)
		d.Touch()
		tx.MarkDirty()
		outcome = ok(fmt.Sprintf("Deleted card at index %d: %s", req.Index, deleted.Description))
		return nil
	})
	if err != nil {
		return s.internal(ctx, "delete_card", err)
	}
	return outcome
}

// ThemedGenerate appends a card whose prompt carries a random modifier from
// the theme's style table. Unknown themes generate from the bare category.
func (s *DeckService) ThemedGenerate(ctx context.Context, req ThemedGenerateRequest) Outcome {
	category := strings.TrimSpace(req.Category)
	theme := strings.TrimSpace(req.Theme)
	if category == "" || theme == "" {
		return fail(KindValidation, "Category and theme are required")
	}
	if _, found := s.decks.Get(category); !found {
		return deckNotFound(category)
	}
	if outcome, exceeded := s.checkQuota(ctx); exceeded {
		return outcome
	}

	modifier := s.pickModifier(theme)
	prompt := category
	if modifier != "" {
		prompt = category + ", " + modifier
	}

	image, err := s.images.GenerateImage(ctx, prompt)
	if err != nil {
		return s.generationFailed(ctx, "Failed to generate themed image", category, err)
	}

	description := fmt.Sprintf("%s in %s style: %s", category, theme, modifier)
	if err := s.appendCard(ctx, category, domain.NewCard(image, description)); err != nil {
		return s.outcomeFor(ctx, "themed_generate", category, err)
	}
	return ok(fmt.Sprintf("Generated %s style image for %s", theme, category))
}

func (s *DeckService) appendCard(ctx context.Context, category string, card domain.Card) error {
	return s.decks.Mutate(ctx, func(tx *deckstore.Tx) error {
		d := tx.Find(category)
		if d == nil {
			return domain.ErrDeckNotFound
		}
		d.Cards = append(d.Cards, card)
		d.Touch()
		tx.MarkDirty()
		return nil
	})
}

// checkQuota refuses work once the serialized store reaches the quota.
func (s *DeckService) checkQuota(ctx context.Context) (Outcome, bool) {
	size, err := s.decks.EstimateSize()
	if err != nil {
		return s.internal(ctx, "quota_check", err), true
	}
	if size < s.quota {
		return Outcome{}, false
	}

	logger.FromContextOrDefault(ctx, s.logger).WarnContext(ctx, "storage quota reached",
		"size_bytes", size,
		"quota_bytes", s.quota)
	return fail(KindQuotaExceeded, fmt.Sprintf(
		"Storage limit nearly reached (%s of %s). Please export and clear some cards first.",
		humanize.IBytes(uint64(size)), humanize.IBytes(uint64(s.quota)))), true
}

func (s *DeckService) generationFailed(ctx context.Context, prefix, category string, err error) Outcome {
	logger.FromContextOrDefault(ctx, s.logger).ErrorContext(ctx, "image generation failed",
		"category", category,
		"error", redact.Error(err))
	return fail(KindGeneration, prefix+": "+generationMessage(err))
}

// outcomeFor maps a mutation error to an outcome.
func (s *DeckService) outcomeFor(ctx context.Context, operation, category string, err error) Outcome {
	switch {
	case errors.Is(err, domain.ErrDeckNotFound):
		return deckNotFound(category)
	case errors.Is(err, domain.ErrCardNotFound):
		return fail(KindNotFound, "Card no longer exists.")
	default:
		return s.internal(ctx, operation, err)
	}
}

func (s *DeckService) internal(ctx context.Context, operation string, err error) Outcome {
	wrapped := NewDeckServiceError(operation, "store update failed", err)
	logger.FromContextOrDefault(ctx, s.logger).ErrorContext(ctx, "deck operation failed",
		"operation", operation,
		"error", redact.Error(wrapped))
	return fail(KindOf(err), "Could not save changes. Please try again.")
}

func deckNotFound(category string) Outcome {
	return fail(KindNotFound, fmt.Sprintf("Deck with category %q not found.", category))
}

// generationMessage strips the sentinel prefix so users see the upstream text.
func generationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), imagegen.ErrGeneration.Error()+": ")
}

func pluralCards(n int) string {
	if n == 1 {
		return "1 card"
	}
	return fmt.Sprintf("%d cards", n)
}
