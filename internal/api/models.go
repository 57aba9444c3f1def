package api

import (
	"github.com/phrazzld/deckpack/internal/domain"
	"github.com/phrazzld/deckpack/internal/service"
)

// DeckSummary describes a deck without its image payloads.
type DeckSummary struct {
	ID       string           `json:"id"`
	Topic    string           `json:"topic"`
	Cards    int              `json:"cards"`
	Images   int              `json:"images"`
	Created  domain.Timestamp `json:"created"`
	Modified domain.Timestamp `json:"modified"`
}

// ListDecksResponse is returned by GET /api/decks.
type ListDecksResponse struct {
	Decks []DeckSummary `json:"decks"`
}

// Theme names a style and the prompt modifiers it draws from.
type Theme struct {
	Name      string   `json:"name"`
	Modifiers []string `json:"modifiers"`
}

// ThemesResponse is returned by GET /api/themes.
type ThemesResponse struct {
	Themes []Theme `json:"themes"`
}

// DraftResponse is returned by GET /api/draft.
type DraftResponse struct {
	Draft *service.Draft `json:"draft"`
}

func deckToSummary(d domain.Deck) DeckSummary {
	return DeckSummary{
		ID:       d.ID,
		Topic:    d.Topic,
		Cards:    len(d.Cards),
		Images:   d.ImageCount(),
		Created:  d.Created,
		Modified: d.Modified,
	}
}
