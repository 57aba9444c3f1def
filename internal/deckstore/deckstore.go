// Package deckstore holds the user's decks in memory behind a single
// read-write mutex and persists them as one JSON document through a
// store.StateStore.
package deckstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/deckpack/internal/domain"
	"github.com/phrazzld/deckpack/internal/store"
)

// DefaultKey is the state key the deck collection is saved under.
const DefaultKey = "decks"

// Store is the authoritative deck collection. All reads return copies;
// all writes go through Mutate.
type Store struct {
	mu      sync.RWMutex
	decks   []*domain.Deck
	backend store.StateStore
	key     string
	logger  *slog.Logger
}

// New creates an empty store. A nil backend keeps decks in memory only.
func New(backend store.StateStore, key string, logger *slog.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend: backend,
		key:     key,
		logger:  logger.With(slog.String("component", "deck_store")),
	}
}

// NewWithDecks creates a memory-only store seeded with copies of decks.
func NewWithDecks(decks []domain.Deck) *Store {
	s := New(nil, "", nil)
	s.decks = cloneAll(decks)
	return s
}

// Load replaces the in-memory collection with the persisted document.
// A missing document yields an empty collection.
func (s *Store) Load(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}

	doc, err := s.backend.Load(ctx, s.key)
	if errors.Is(err, store.ErrNotFound) {
		s.logger.InfoContext(ctx, "no saved decks, starting empty", "key", s.key)
		s.mu.Lock()
		s.decks = nil
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("load decks: %w", err)
	}

	decks, err := Decode(doc)
	if err != nil {
		return fmt.Errorf("load decks: %w", err)
	}

	s.mu.Lock()
	s.decks = cloneAll(decks)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "decks loaded", "key", s.key, "decks", len(decks))
	return nil
}

// List returns a deep copy of every deck in insertion order.
func (s *Store) List() []domain.Deck {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Deck, len(s.decks))
	for i, d := range s.decks {
		out[i] = *d.Clone()
	}
	return out
}

// Snapshot is List under the name the export path uses: the result is
// independent of later mutations.
func (s *Store) Snapshot() []domain.Deck {
	return s.List()
}

// Get returns a copy of the deck whose topic matches, ignoring case.
func (s *Store) Get(topic string) (domain.Deck, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.decks {
		if d.MatchesTopic(topic) {
			return *d.Clone(), true
		}
	}
	return domain.Deck{}, false
}

// Len returns the number of decks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.decks)
}

// EstimateSize returns the length of the serialized collection in bytes.
func (s *Store) EstimateSize() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := encode(s.decks)
	if err != nil {
		return 0, err
	}
	return int64(len(doc)), nil
}

// Mutate runs fn against a working copy under the write lock. When fn
// succeeds the copy is persisted and then becomes the collection; when fn
// or persistence fails nothing changes.
func (s *Store) Mutate(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{decks: clonePtrs(s.decks)}
	if err := fn(tx); err != nil {
		return err
	}
	if !tx.dirty {
		return nil
	}

	if s.backend != nil {
		doc, err := encode(tx.decks)
		if err != nil {
			return fmt.Errorf("encode decks: %w", err)
		}
		if err := s.backend.Save(ctx, s.key, doc); err != nil {
			s.logger.ErrorContext(ctx, "failed to persist decks", "key", s.key, "error", err)
			return fmt.Errorf("persist decks: %w", err)
		}
	}

	s.decks = tx.decks
	return nil
}

// Tx is the mutable view handed to Mutate callbacks. It is only valid
// inside the callback.
type Tx struct {
	decks []*domain.Deck
	dirty bool
}

// Find returns the deck whose topic matches, ignoring case. Edits through
// the returned pointer are persisted only after MarkDirty.
func (tx *Tx) Find(topic string) *domain.Deck {
	for _, d := range tx.decks {
		if d.MatchesTopic(topic) {
			return d
		}
	}
	return nil
}

// Decks returns the working decks in order.
func (tx *Tx) Decks() []*domain.Deck {
	return tx.decks
}

// Add appends a deck.
func (tx *Tx) Add(d *domain.Deck) {
	tx.decks = append(tx.decks, d)
	tx.dirty = true
}

// Remove deletes the deck with the given id and reports whether it existed.
func (tx *Tx) Remove(id string) bool {
	for i, d := range tx.decks {
		if d.ID == id {
			tx.decks = append(tx.decks[:i], tx.decks[i+1:]...)
			tx.dirty = true
			return true
		}
	}
	return false
}

// MarkDirty records that a deck returned by Find or Decks was modified.
func (tx *Tx) MarkDirty() {
	tx.dirty = true
}

// Decode parses a persisted or uploaded deck collection.
func Decode(doc []byte) ([]domain.Deck, error) {
	var decks []domain.Deck
	if err := json.Unmarshal(doc, &decks); err != nil {
		return nil, fmt.Errorf("decode decks: %w", err)
	}
	for i := range decks {
		if decks[i].Cards == nil {
			decks[i].Cards = []domain.Card{}
		}
	}
	return decks, nil
}

func encode(decks []*domain.Deck) ([]byte, error) {
	if decks == nil {
		decks = []*domain.Deck{}
	}
	return json.Marshal(decks)
}

func cloneAll(decks []domain.Deck) []*domain.Deck {
	out := make([]*domain.Deck, len(decks))
	for i := range decks {
		out[i] = decks[i].Clone()
	}
	return out
}

func clonePtrs(decks []*domain.Deck) []*domain.Deck {
	out := make([]*domain.Deck, len(decks))
	for i, d := range decks {
		out[i] = d.Clone()
	}
	return out
}
