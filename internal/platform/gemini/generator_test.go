package gemini

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/phrazzld/deckpack/internal/imagegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	resp   *genai.GenerateImagesResponse
	err    error
	model  string
	prompt string
	config *genai.GenerateImagesConfig
}

func (f *fakeModels) GenerateImages(
	_ context.Context,
	model, prompt string,
	config *genai.GenerateImagesConfig,
) (*genai.GenerateImagesResponse, error) {
	f.model, f.prompt, f.config = model, prompt, config
	return f.resp, f.err
}

func TestGenerate_ReturnsFirstImage(t *testing.T) {
	t.Parallel()
	fake := &fakeModels{resp: &genai.GenerateImagesResponse{
		GeneratedImages: []*genai.GeneratedImage{
			{Image: &genai.Image{ImageBytes: []byte("first")}},
			{Image: &genai.Image{ImageBytes: []byte("second")}},
		},
	}}
	g := newGenerator(fake, Config{MIMEType: "image/png"}, slog.New(slog.DiscardHandler))

	got, err := g.Generate(context.Background(), "Birds, owl")

	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got)
	assert.Equal(t, DefaultModel, fake.model)
	assert.Equal(t, "Birds, owl", fake.prompt)
	require.NotNil(t, fake.config)
	assert.Equal(t, "image/png", fake.config.OutputMIMEType)
}

func TestGenerate_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fake    *fakeModels
		wantMsg string
	}{
		{name: "api error", fake: &fakeModels{err: errors.New("quota")}, wantMsg: "quota"},
		{name: "nil response", fake: &fakeModels{}, wantMsg: "no image generated"},
		{
			name: "filtered",
			fake: &fakeModels{resp: &genai.GenerateImagesResponse{
				GeneratedImages: []*genai.GeneratedImage{{RAIFilteredReason: "unsafe"}},
			}},
			wantMsg: "safety filters: unsafe",
		},
		{
			name: "empty bytes",
			fake: &fakeModels{resp: &genai.GenerateImagesResponse{
				GeneratedImages: []*genai.GeneratedImage{{Image: &genai.Image{}}},
			}},
			wantMsg: "empty image",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := newGenerator(tt.fake, Config{Model: "imagen-test"}, slog.New(slog.DiscardHandler))

			_, err := g.Generate(context.Background(), "p")
			require.Error(t, err)
			assert.ErrorIs(t, err, imagegen.ErrGeneration)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Equal(t, "imagen-test", tt.fake.model)
			assert.Nil(t, tt.fake.config)
		})
	}
}

func TestNewGenerator_Validation(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.DiscardHandler)

	_, err := NewGenerator(context.Background(), Config{}, logger)
	assert.ErrorIs(t, err, imagegen.ErrInvalidConfig)

	_, err = NewGenerator(context.Background(), Config{APIKey: "k"}, nil)
	assert.EqualError(t, err, "logger cannot be nil")
}
