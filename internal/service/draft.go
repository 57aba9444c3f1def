package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/phrazzld/deckpack/internal/domain"
)

// Draft is the most recently generated image that has not been saved to a
// deck yet.
type Draft struct {
	Concept     string `json:"concept"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

// CurrentDraft returns the draft, if any.
func (s *DeckService) CurrentDraft() (Draft, bool) {
	s.draftMu.Lock()
	defer s.draftMu.Unlock()
	if s.draft == nil {
		return Draft{}, false
	}
	return *s.draft, true
}

// GenerateDraft generates an image for a free-form prompt into the draft.
func (s *DeckService) GenerateDraft(ctx context.Context, req GenerateDraftRequest) Outcome {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return fail(KindValidation, "Prompt is required")
	}
	if err := s.fillDraft(ctx, prompt, ""); err != nil {
		return s.generationFailed(ctx, "Image generation failed", prompt, err)
	}
	return ok("Image created and ready to save.")
}

// RecreateDraft regenerates the draft from its current concept.
func (s *DeckService) RecreateDraft(ctx context.Context) Outcome {
	current, found := s.CurrentDraft()
	if !found {
		return fail(KindNotFound, "No concept to recreate.")
	}
	if err := s.fillDraft(ctx, current.Concept, current.Description); err != nil {
		return s.generationFailed(ctx, "Failed to recreate image", current.Concept, err)
	}
	return ok("Image re-created with same concept.")
}

// ReviseDraft replaces the draft with an image for a new concept.
func (s *DeckService) ReviseDraft(ctx context.Context, req GenerateDraftRequest) Outcome {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return fail(KindValidation, "Prompt is required")
	}
	if err := s.fillDraft(ctx, prompt, ""); err != nil {
		return s.generationFailed(ctx, "Failed to update image", prompt, err)
	}
	return ok("Image updated with new concept.")
}

// SaveDraft appends the draft to a deck and clears it.
func (s *DeckService) SaveDraft(ctx context.Context, req SaveDraftRequest) Outcome {
	category := strings.TrimSpace(req.Category)
	if category == "" {
		return fail(KindValidation, "Category is required but was not provided")
	}
	current, found := s.CurrentDraft()
	if !found {
		return fail(KindNotFound, "No image to save.")
	}
	if outcome, exceeded := s.checkQuota(ctx); exceeded {
		return outcome
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = current.Description
	}
	if description == "" {
		description = current.Concept
	}

	if err := s.appendCard(ctx, category, domain.NewCard(current.Image, description)); err != nil {
		return s.outcomeFor(ctx, "save_draft", category, err)
	}

	s.draftMu.Lock()
	if s.draft != nil && s.draft.Image == current.Image {
		s.draft = nil
	}
	s.draftMu.Unlock()

	return ok(fmt.Sprintf("Saved image to category %q", category))
}

func (s *DeckService) fillDraft(ctx context.Context, concept, description string) error {
	image, err := s.images.GenerateImage(ctx, concept)
	if err != nil {
		return err
	}
	s.draftMu.Lock()
	s.draft = &Draft{Concept: concept, Image: image, Description: description}
	s.draftMu.Unlock()
	return nil
}
