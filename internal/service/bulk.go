package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/phrazzld/deckpack/internal/deckstore"
	"github.com/phrazzld/deckpack/internal/domain"
	"github.com/phrazzld/deckpack/internal/platform/logger"
	"github.com/phrazzld/deckpack/internal/redact"
	"golang.org/x/sync/errgroup"
)

type bulkResult struct {
	prompt string
	image  string
	err    error
}

// BulkGenerate generates req.Count cards for one category. Failed
// iterations are logged and reported; the rest are still appended.
func (s *DeckService) BulkGenerate(ctx context.Context, req BulkGenerateRequest) BulkReport {
	category := strings.TrimSpace(req.Category)
	if category == "" {
		return BulkReport{Outcome: fail(KindValidation, "Category is required but was not provided")}
	}
	if outcome, invalid := validateCount(req.Count); invalid {
		return BulkReport{Outcome: outcome}
	}
	if _, found := s.decks.Get(category); !found {
		return BulkReport{Outcome: fail(KindNotFound, fmt.Sprintf("Category %q not found.", category))}
	}
	if outcome, exceeded := s.checkQuota(ctx); exceeded {
		return BulkReport{Outcome: outcome}
	}

	report := BulkReport{Items: s.generateBatch(ctx, category, req.Count)}
	report.tally()

	message := fmt.Sprintf("%d images generated for %q", report.Succeeded, category)
	if report.Failed > 0 {
		message += fmt.Sprintf(" (%d failed)", report.Failed)
	}
	report.Outcome = ok(message)
	return report
}

// BulkGenerateAll runs BulkGenerate for every category in store order.
func (s *DeckService) BulkGenerateAll(ctx context.Context, req BulkGenerateAllRequest) BulkReport {
	if outcome, invalid := validateCount(req.Count); invalid {
		return BulkReport{Outcome: outcome}
	}
	decks := s.decks.List()
	if len(decks) == 0 {
		return BulkReport{Outcome: fail(KindNotFound, "No categories to generate images for.")}
	}
	if outcome, exceeded := s.checkQuota(ctx); exceeded {
		return BulkReport{Outcome: outcome}
	}

	var report BulkReport
	for _, d := range decks {
		if err := ctx.Err(); err != nil {
			break
		}
		report.Items = append(report.Items, s.generateBatch(ctx, d.Topic, req.Count)...)
	}
	report.tally()

	message := fmt.Sprintf("%d images generated across %d categories", report.Succeeded, len(decks))
	if report.Failed > 0 {
		message += fmt.Sprintf(" (%d failed)", report.Failed)
	}
	report.Outcome = ok(message)
	return report
}

// generateBatch runs count generation calls with bounded concurrency and
// appends the successes to the deck in iteration order.
func (s *DeckService) generateBatch(ctx context.Context, category string, count int) []ItemOutcome {
	log := logger.FromContextOrDefault(ctx, s.logger)
	results := make([]bulkResult, count)

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range count {
		g.Go(func() error {
			prompt := fmt.Sprintf("%s, concept %d", category, i+1)
			image, err := s.images.GenerateImage(ctx, prompt)
			results[i] = bulkResult{prompt: prompt, image: image, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var cards []domain.Card
	for i, r := range results {
		if r.err != nil {
			log.WarnContext(ctx, "bulk item failed, continuing",
				"category", category,
				"index", i+1,
				"error", redact.Error(r.err))
			continue
		}
		cards = append(cards, domain.NewCard(r.image, fmt.Sprintf("Generated image for %s (%d)", category, i+1)))
	}

	var saveErr error
	if len(cards) > 0 {
		saveErr = s.decks.Mutate(ctx, func(tx *deckstore.Tx) error {
			d := tx.Find(category)
			if d == nil {
				return domain.ErrDeckNotFound
			}
			d.Cards = append(d.Cards, cards...)
			d.Touch()
			tx.MarkDirty()
			return nil
		})
		if saveErr != nil {
			log.ErrorContext(ctx, "failed to save bulk results",
				"category", category,
				"error", redact.Error(saveErr))
		}
	}

	items := make([]ItemOutcome, count)
	for i, r := range results {
		item := ItemOutcome{Category: category, Index: i + 1, Prompt: r.prompt, Success: r.err == nil}
		switch {
		case r.err != nil:
			item.Error = generationMessage(r.err)
		case saveErr != nil:
			item.Success = false
			item.Error = "could not save: " + saveErr.Error()
		}
		items[i] = item
	}
	return items
}

func (r *BulkReport) tally() {
	r.Succeeded, r.Failed = 0, 0
	for _, item := range r.Items {
		if item.Success {
			r.Succeeded++
		} else {
			r.Failed++
		}
	}
}

func validateCount(count int) (Outcome, bool) {
	if count < 1 || count > MaxBulkCount {
		return fail(KindValidation, fmt.Sprintf("Count must be between 1 and %d", MaxBulkCount)), true
	}
	return Outcome{}, false
}
