package deckstore_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/phrazzld/deckpack/internal/deckstore"
	"github.com/phrazzld/deckpack/internal/domain"
	"github.com/phrazzld/deckpack/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeck(t *testing.T, topic string, cards ...domain.Card) *domain.Deck {
	t.Helper()
	d, err := domain.NewDeck(topic)
	require.NoError(t, err)
	d.Cards = append(d.Cards, cards...)
	return d
}

func TestLoad_MissingDocumentStartsEmpty(t *testing.T) {
	t.Parallel()
	backend := mocks.NewMockStateStore()
	s := deckstore.New(backend, "", slog.New(slog.DiscardHandler))

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.List())
}

func TestLoad_ReadsPersistedDecks(t *testing.T) {
	t.Parallel()
	backend := mocks.NewMockStateStore()
	backend.Put(deckstore.DefaultKey, []byte(`[
		{"id":"1","topic":"Birds","created":1717171717171,"modified":1717171717171,
		 "cards":[{"image":"data:image/png;base64,AAAA","description":"owl",
		           "review":{"lastReviewed":1717171717171,"nextDue":1717430917171,"interval":3,"repetition":1}}]},
		{"id":"2","topic":"Fish","created":1717171717171,"modified":1717171717171,"cards":null}
	]`))
	s := deckstore.New(backend, deckstore.DefaultKey, nil)

	require.NoError(t, s.Load(context.Background()))

	decks := s.List()
	require.Len(t, decks, 2)
	assert.Equal(t, "Birds", decks[0].Topic)
	assert.Equal(t, "owl", decks[0].Cards[0].Description)
	assert.Equal(t, 3, decks[0].Cards[0].Review.Interval)
	assert.NotNil(t, decks[1].Cards)
	assert.Empty(t, decks[1].Cards)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	t.Run("backend failure", func(t *testing.T) {
		t.Parallel()
		backend := mocks.NewMockStateStore()
		backend.LoadErr = errors.New("disk gone")
		s := deckstore.New(backend, "", nil)

		err := s.Load(context.Background())
		assert.ErrorContains(t, err, "disk gone")
	})

	t.Run("malformed document", func(t *testing.T) {
		t.Parallel()
		backend := mocks.NewMockStateStore()
		backend.Put(deckstore.DefaultKey, []byte(`{"not":"an array"}`))
		s := deckstore.New(backend, "", nil)

		err := s.Load(context.Background())
		assert.ErrorContains(t, err, "decode decks")
	})
}

func TestGet_CaseInsensitive(t *testing.T) {
	t.Parallel()
	s := deckstore.NewWithDecks([]domain.Deck{*newDeck(t, "Äpfel")})

	got, ok := s.Get("äpfel")
	require.True(t, ok)
	assert.Equal(t, "Äpfel", got.Topic)

	_, ok = s.Get("Birnen")
	assert.False(t, ok)
}

func TestSnapshot_IsIndependent(t *testing.T) {
	t.Parallel()
	s := deckstore.NewWithDecks([]domain.Deck{*newDeck(t, "Birds", domain.NewCard("img", "owl"))})

	snap := s.Snapshot()
	snap[0].Cards[0].Description = "changed"
	snap[0].Topic = "changed"

	got, ok := s.Get("Birds")
	require.True(t, ok)
	assert.Equal(t, "owl", got.Cards[0].Description)

	require.NoError(t, s.Mutate(context.Background(), func(tx *deckstore.Tx) error {
		d := tx.Find("Birds")
		d.Cards = append(d.Cards, domain.NewCard("img2", "eagle"))
		tx.MarkDirty()
		return nil
	}))
	assert.Len(t, snap[0].Cards, 1)
}

func TestMutate_PersistsOnSuccess(t *testing.T) {
	t.Parallel()
	backend := mocks.NewMockStateStore()
	s := deckstore.New(backend, "", nil)
	ctx := context.Background()

	require.NoError(t, s.Mutate(ctx, func(tx *deckstore.Tx) error {
		tx.Add(newDeck(t, "Birds"))
		return nil
	}))

	assert.Equal(t, 1, backend.SaveCount)
	doc, ok := backend.Doc(deckstore.DefaultKey)
	require.True(t, ok)

	var persisted []domain.Deck
	require.NoError(t, json.Unmarshal(doc, &persisted))
	require.Len(t, persisted, 1)
	assert.Equal(t, "Birds", persisted[0].Topic)

	// A fresh store sees the same collection.
	reloaded := deckstore.New(backend, "", nil)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, s.List(), reloaded.List())
}

func TestMutate_NoChangesSkipsSave(t *testing.T) {
	t.Parallel()
	backend := mocks.NewMockStateStore()
	s := deckstore.New(backend, "", nil)

	require.NoError(t, s.Mutate(context.Background(), func(tx *deckstore.Tx) error {
		assert.Nil(t, tx.Find("Birds"))
		return nil
	}))
	assert.Equal(t, 0, backend.SaveCount)
}

func TestMutate_CallbackErrorLeavesStoreUntouched(t *testing.T) {
	t.Parallel()
	backend := mocks.NewMockStateStore()
	s := deckstore.New(backend, "", nil)
	ctx := context.Background()
	require.NoError(t, s.Mutate(ctx, func(tx *deckstore.Tx) error {
		tx.Add(newDeck(t, "Birds"))
		return nil
	}))

	boom := errors.New("boom")
	err := s.Mutate(ctx, func(tx *deckstore.Tx) error {
		tx.Remove(tx.Find("Birds").ID)
		tx.Add(newDeck(t, "Fish"))
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, backend.SaveCount)
	decks := s.List()
	require.Len(t, decks, 1)
	assert.Equal(t, "Birds", decks[0].Topic)
}

func TestMutate_PersistFailureLeavesStoreUntouched(t *testing.T) {
	t.Parallel()
	backend := mocks.NewMockStateStore()
	backend.SaveErr = errors.New("read-only filesystem")
	s := deckstore.New(backend, "", nil)

	err := s.Mutate(context.Background(), func(tx *deckstore.Tx) error {
		tx.Add(newDeck(t, "Birds"))
		return nil
	})

	assert.ErrorContains(t, err, "persist decks")
	assert.Equal(t, 0, s.Len())
}

func TestTx_Remove(t *testing.T) {
	t.Parallel()
	birds := newDeck(t, "Birds")
	fish := newDeck(t, "Fish")
	s := deckstore.NewWithDecks([]domain.Deck{*birds, *fish})

	require.NoError(t, s.Mutate(context.Background(), func(tx *deckstore.Tx) error {
		assert.False(t, tx.Remove("missing"))
		assert.True(t, tx.Remove(birds.ID))
		return nil
	}))

	decks := s.List()
	require.Len(t, decks, 1)
	assert.Equal(t, fish.ID, decks[0].ID)
}

func TestEstimateSize(t *testing.T) {
	t.Parallel()

	empty := deckstore.New(nil, "", nil)
	size, err := empty.EstimateSize()
	require.NoError(t, err)
	assert.Equal(t, int64(len("[]")), size)

	decks := []domain.Deck{*newDeck(t, "Birds", domain.NewCard("data:image/png;base64,AAAA", "owl"))}
	s := deckstore.NewWithDecks(decks)
	want, err := json.Marshal(decks)
	require.NoError(t, err)

	size, err = s.EstimateSize()
	require.NoError(t, err)
	assert.Equal(t, int64(len(want)), size)
}

func TestMutate_ConcurrentWriters(t *testing.T) {
	t.Parallel()
	s := deckstore.New(mocks.NewMockStateStore(), "", nil)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := domain.NewDeck(fmt.Sprintf("topic-%d", i))
			if err != nil {
				return
			}
			_ = s.Mutate(ctx, func(tx *deckstore.Tx) error {
				tx.Add(d)
				return nil
			})
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, writers, s.Len())
}
