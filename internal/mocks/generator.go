package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/deckpack/internal/imagegen"
)

// MockGenerator implements imagegen.Generator for testing
type MockGenerator struct {
	// GenerateFn allows test cases to mock the Generate behavior
	GenerateFn func(ctx context.Context, prompt string) ([]byte, error)

	// Default response values
	Image []byte
	Err   error

	// Call tracking for verification
	GenerateCalls struct {
		// mu protects the call tracking state for concurrent test cases
		mu sync.Mutex

		// Count tracks how many times Generate was called
		Count int

		// Prompts contains all prompts passed to Generate calls
		Prompts []string
	}
}

var _ imagegen.Generator = (*MockGenerator)(nil)

// Generate implements the imagegen.Generator interface
func (m *MockGenerator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	m.GenerateCalls.mu.Lock()
	m.GenerateCalls.Count++
	m.GenerateCalls.Prompts = append(m.GenerateCalls.Prompts, prompt)
	m.GenerateCalls.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, prompt)
	}
	return m.Image, m.Err
}

// Prompts returns a copy of the recorded prompts.
func (m *MockGenerator) Prompts() []string {
	m.GenerateCalls.mu.Lock()
	defer m.GenerateCalls.mu.Unlock()
	return append([]string(nil), m.GenerateCalls.Prompts...)
}

// NewMockGeneratorWithImage creates a MockGenerator that returns the given bytes
func NewMockGeneratorWithImage(image []byte) *MockGenerator {
	return &MockGenerator{Image: image}
}

// NewMockGeneratorWithError creates a MockGenerator that returns the specified error
func NewMockGeneratorWithError(err error) *MockGenerator {
	return &MockGenerator{Err: err}
}

// MockImageGenerator produces data URIs for prompts. It satisfies the
// image dependency of the deck service.
type MockImageGenerator struct {
	// GenerateImageFn allows test cases to mock the GenerateImage behavior
	GenerateImageFn func(ctx context.Context, prompt string) (string, error)

	// Default response values
	Image string
	Err   error

	mu      sync.Mutex
	prompts []string
}

// GenerateImage returns the configured data URI or error.
func (m *MockImageGenerator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.GenerateImageFn != nil {
		return m.GenerateImageFn(ctx, prompt)
	}
	return m.Image, m.Err
}

// Prompts returns a copy of the recorded prompts in call order.
func (m *MockImageGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// CallCount returns how many times GenerateImage was called.
func (m *MockImageGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Reset resets the call tracking state
func (m *MockGenerator) Reset() {
	m.GenerateCalls.mu.Lock()
	defer m.GenerateCalls.mu.Unlock()

	m.GenerateCalls.Count = 0
	m.GenerateCalls.Prompts = nil
}
