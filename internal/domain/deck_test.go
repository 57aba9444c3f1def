package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeck(t *testing.T) {
	t.Parallel()

	deck, err := NewDeck("  Animals ")
	require.NoError(t, err)

	assert.NotEmpty(t, deck.ID, "deck should get an ID")
	assert.Equal(t, "Animals", deck.Topic, "topic should be trimmed")
	assert.False(t, deck.Created.IsZero())
	assert.Equal(t, deck.Created, deck.Modified)
	assert.NotNil(t, deck.Cards)
	assert.Empty(t, deck.Cards)

	_, err = NewDeck("   ")
	assert.ErrorIs(t, err, ErrEmptyTopic)
}

func TestDeckMatchesTopic(t *testing.T) {
	t.Parallel()

	deck := &Deck{ID: "1", Topic: "Äpfel"}

	tests := []struct {
		name  string
		topic string
		want  bool
	}{
		{"exact", "Äpfel", true},
		{"upper", "ÄPFEL", true},
		{"lower", "äpfel", true},
		{"different", "Apfel", false},
		{"empty", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, deck.MatchesTopic(tc.topic))
		})
	}

	assert.False(t, (&Deck{ID: "2"}).MatchesTopic(""), "a deck without a topic matches nothing")
}

func TestDeckCloneIsIndependent(t *testing.T) {
	t.Parallel()

	deck := &Deck{ID: "1", Topic: "Plants", Cards: []Card{NewCard("data:image/png;base64,AAAA", "fern")}}
	cp := deck.Clone()
	cp.Cards[0].Description = "moss"
	cp.Cards = append(cp.Cards, NewCard("", "empty"))

	assert.Equal(t, "fern", deck.Cards[0].Description)
	assert.Len(t, deck.Cards, 1)
	assert.Equal(t, 1, cp.ImageCount())
}

func TestNewReviewState(t *testing.T) {
	t.Parallel()

	now := FromMillis(1_700_000_000_000)
	review := NewReviewState(now)

	assert.Equal(t, now, review.LastReviewed)
	assert.Equal(t, now.Add(72*time.Hour), review.NextDue)
	assert.Equal(t, DefaultReviewInterval, review.Interval)
	assert.Equal(t, DefaultRepetition, review.Repetition)
}

func TestDeckJSONUsesClientShape(t *testing.T) {
	t.Parallel()

	raw := `{
		"id": "1717171717171",
		"topic": "Geography",
		"created": 1717171717171,
		"modified": "2024-05-31T16:08:37.171Z",
		"cards": [{
			"image": "data:image/png;base64,AAAA",
			"description": "map",
			"review": {"lastReviewed": 1717171717171.0, "nextDue": null, "interval": 3, "repetition": 1}
		}]
	}`

	var deck Deck
	require.NoError(t, json.Unmarshal([]byte(raw), &deck))

	assert.Equal(t, int64(1717171717171), deck.Created.Millis())
	assert.Equal(t, int64(1717171717171), deck.Modified.Millis())
	require.Len(t, deck.Cards, 1)
	assert.True(t, deck.Cards[0].Review.NextDue.IsZero())
	assert.Equal(t, 3, deck.Cards[0].Review.Interval)

	out, err := json.Marshal(deck)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"created":1717171717171`)
	assert.Contains(t, string(out), `"nextDue":0`)
}

func TestTimestampRejectsGarbage(t *testing.T) {
	t.Parallel()

	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`true`), &ts))
}
