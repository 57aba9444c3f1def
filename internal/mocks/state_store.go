package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/deckpack/internal/store"
)

// MockStateStore is an in-memory store.StateStore with injectable failures.
type MockStateStore struct {
	mu   sync.Mutex
	docs map[string][]byte

	// LoadErr and SaveErr, when set, are returned instead of touching docs.
	LoadErr error
	SaveErr error

	// SaveCount tracks successful saves.
	SaveCount int
}

// NewMockStateStore creates an empty in-memory state store.
func NewMockStateStore() *MockStateStore {
	return &MockStateStore{docs: make(map[string][]byte)}
}

// Load implements store.StateStore.
func (m *MockStateStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	doc, ok := m.docs[key]
	if !ok {
		return nil, store.NewStoreError("memory", "load", key, store.ErrStateNotFound)
	}
	return append([]byte(nil), doc...), nil
}

// Save implements store.StateStore.
func (m *MockStateStore) Save(_ context.Context, key string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return m.SaveErr
	}
	if m.docs == nil {
		m.docs = make(map[string][]byte)
	}
	m.docs[key] = append([]byte(nil), doc...)
	m.SaveCount++
	return nil
}

// Doc returns the saved document for key.
func (m *MockStateStore) Doc(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[key]
	return doc, ok
}

// Put seeds a document without counting as a save.
func (m *MockStateStore) Put(key string, doc []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs == nil {
		m.docs = make(map[string][]byte)
	}
	m.docs[key] = append([]byte(nil), doc...)
}
