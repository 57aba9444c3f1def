package mocks

import (
	"context"
	"sync"
)

// MockPackageWriter implements export.PackageWriter for testing
type MockPackageWriter struct {
	// Custom behavior functions
	AddMediaFn func(name string, data []byte) error
	AddNoteFn  func(front, back string) error
	FinalizeFn func(ctx context.Context) ([]byte, error)

	// Output is returned by Finalize when FinalizeFn is nil.
	Output []byte

	mu         sync.Mutex
	MediaNames []string
	Fronts     []string
	Backs      []string
	Finalized  bool
	Closed     bool
}

// AddMedia records the media name.
func (m *MockPackageWriter) AddMedia(name string, data []byte) error {
	if m.AddMediaFn != nil {
		if err := m.AddMediaFn(name, data); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MediaNames = append(m.MediaNames, name)
	return nil
}

// AddNote records the note fields.
func (m *MockPackageWriter) AddNote(front, back string) error {
	if m.AddNoteFn != nil {
		if err := m.AddNoteFn(front, back); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fronts = append(m.Fronts, front)
	m.Backs = append(m.Backs, back)
	return nil
}

// Finalize returns Output unless FinalizeFn is set.
func (m *MockPackageWriter) Finalize(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	m.Finalized = true
	m.mu.Unlock()

	if m.FinalizeFn != nil {
		return m.FinalizeFn(ctx)
	}
	return m.Output, nil
}

// Close marks the writer closed.
func (m *MockPackageWriter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}
