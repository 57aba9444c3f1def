package domain

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// Deck groups cards under a topic. The topic doubles as the user-facing
// category name and is matched case-insensitively.
type Deck struct {
	ID       string    `json:"id"`
	Topic    string    `json:"topic"`
	Created  Timestamp `json:"created"`
	Modified Timestamp `json:"modified"`
	Cards    []Card    `json:"cards"`
}

// NewDeck creates an empty deck with a fresh ID and current timestamps.
// Returns an error if the topic is blank.
func NewDeck(topic string) (*Deck, error) {
	now := Now()
	deck := &Deck{
		ID:       uuid.NewString(),
		Topic:    strings.TrimSpace(topic),
		Created:  now,
		Modified: now,
		Cards:    []Card{},
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}

	return deck, nil
}

// Validate checks if the Deck has valid data.
func (d *Deck) Validate() error {
	if d.ID == "" {
		return ErrEmptyDeckID
	}
	if strings.TrimSpace(d.Topic) == "" {
		return ErrEmptyTopic
	}
	return nil
}

// MatchesTopic reports whether topic names this deck, ignoring case.
func (d *Deck) MatchesTopic(topic string) bool {
	return d.Topic != "" && SameTopic(d.Topic, topic)
}

// Touch updates the modification timestamp.
func (d *Deck) Touch() {
	d.Modified = Now()
}

// ImageCount returns the number of cards eligible for export.
func (d *Deck) ImageCount() int {
	n := 0
	for _, c := range d.Cards {
		if c.HasImage() {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the deck.
func (d *Deck) Clone() *Deck {
	cp := *d
	cp.Cards = make([]Card, len(d.Cards))
	copy(cp.Cards, d.Cards)
	return &cp
}

// SameTopic compares two topics using Unicode case folding.
func SameTopic(a, b string) bool {
	// Casers carry state and are not shared.
	return cases.Fold().String(a) == cases.Fold().String(b)
}
