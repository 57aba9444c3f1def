package store

import "context"

// StateStore persists opaque documents by key. Documents are round-tripped
// verbatim: no validation or migration of their shape happens here.
type StateStore interface {
	// Load returns the document stored under key.
	// Returns ErrNotFound if nothing has been saved yet.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save replaces the document stored under key.
	Save(ctx context.Context, key string, doc []byte) error
}
