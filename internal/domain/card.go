package domain

import (
	"time"
)

const (
	// DefaultReviewInterval is the interval, in days, assigned to every new or
	// regenerated card.
	DefaultReviewInterval = 3

	// DefaultRepetition is the repetition count assigned to every new or
	// regenerated card.
	DefaultRepetition = 1
)

// ReviewState carries spaced-repetition metadata for a card. Nothing in this
// module advances these fields; they are stored and exported as-is.
type ReviewState struct {
	LastReviewed Timestamp `json:"lastReviewed"`
	NextDue      Timestamp `json:"nextDue"`
	Interval     int       `json:"interval"`
	Repetition   int       `json:"repetition"`
}

// NewReviewState returns the fixed policy applied on card creation:
// reviewed now, due in DefaultReviewInterval days, repetition reset.
func NewReviewState(now Timestamp) ReviewState {
	return ReviewState{
		LastReviewed: now,
		NextDue:      now.Add(DefaultReviewInterval * 24 * time.Hour),
		Interval:     DefaultReviewInterval,
		Repetition:   DefaultRepetition,
	}
}

// Card is a single flashcard: an image (as a data URI) and its caption.
type Card struct {
	Image       string      `json:"image"`
	Description string      `json:"description"`
	Review      ReviewState `json:"review"`
}

// NewCard creates a card with default review metadata.
func NewCard(image, description string) Card {
	return Card{
		Image:       image,
		Description: description,
		Review:      NewReviewState(Now()),
	}
}

// HasImage reports whether the card carries an image and is therefore
// eligible for export.
func (c Card) HasImage() bool {
	return c.Image != ""
}
