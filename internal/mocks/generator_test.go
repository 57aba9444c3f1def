package mocks_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/phrazzld/deckpack/internal/mocks"
	"github.com/stretchr/testify/assert"
)

func TestMockGenerator(t *testing.T) {
	t.Parallel()

	t.Run("Default values", func(t *testing.T) {
		t.Parallel()

		mockGen := mocks.NewMockGeneratorWithImage([]byte("png"))
		img, err := mockGen.Generate(context.Background(), "birds")

		assert.NoError(t, err)
		assert.Equal(t, []byte("png"), img)
		assert.Equal(t, 1, mockGen.GenerateCalls.Count)
		assert.Equal(t, []string{"birds"}, mockGen.Prompts())
	})

	t.Run("Error case", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		mockGen := mocks.NewMockGeneratorWithError(boom)
		_, err := mockGen.Generate(context.Background(), "birds")

		assert.ErrorIs(t, err, boom)
	})

	t.Run("Reset clears tracking", func(t *testing.T) {
		t.Parallel()

		mockGen := &mocks.MockGenerator{}
		_, _ = mockGen.Generate(context.Background(), "a")
		mockGen.Reset()

		assert.Equal(t, 0, mockGen.GenerateCalls.Count)
		assert.Empty(t, mockGen.Prompts())
	})
}

func TestMockImageGenerator_ConcurrentCalls(t *testing.T) {
	t.Parallel()

	m := &mocks.MockImageGenerator{Image: "data:image/png;base64,AA=="}
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.GenerateImage(context.Background(), "p")
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, m.CallCount())
}
