package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/deckpack/internal/imagegen"
	"google.golang.org/genai"
)

// DefaultModel is used when no Imagen model is configured.
const DefaultModel = "imagen-3.0-generate-002"

// imageModels is the subset of genai.Models the generator calls.
type imageModels interface {
	GenerateImages(
		ctx context.Context,
		model string,
		prompt string,
		config *genai.GenerateImagesConfig,
	) (*genai.GenerateImagesResponse, error)
}

// Config holds Imagen settings.
type Config struct {
	APIKey   string
	Model    string
	MIMEType string
}

// Generator implements imagegen.Generator with Imagen.
type Generator struct {
	models   imageModels
	model    string
	mimeType string
	logger   *slog.Logger
}

var _ imagegen.Generator = (*Generator)(nil)

// NewGenerator creates a Generator backed by the Gemini API.
func NewGenerator(ctx context.Context, cfg Config, logger *slog.Logger) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if err := validateConfig(ctx, logger, cfg); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", imagegen.ErrInvalidConfig, err)
	}

	return newGenerator(client.Models, cfg, logger), nil
}

func newGenerator(models imageModels, cfg Config, logger *slog.Logger) *Generator {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Generator{
		models:   models,
		model:    model,
		mimeType: cfg.MIMEType,
		logger:   logger.With(slog.String("component", "gemini_generator")),
	}
}

// Generate requests one image and returns the first result's bytes.
func (g *Generator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	var config *genai.GenerateImagesConfig
	if g.mimeType != "" {
		config = &genai.GenerateImagesConfig{OutputMIMEType: g.mimeType}
	}

	g.logger.DebugContext(ctx, "making Imagen call", "model", g.model)

	resp, err := g.models.GenerateImages(ctx, g.model, prompt, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", imagegen.ErrGeneration, err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, fmt.Errorf("%w: no image generated", imagegen.ErrGeneration)
	}

	first := resp.GeneratedImages[0]
	if first == nil || first.Image == nil || len(first.Image.ImageBytes) == 0 {
		reason := "empty image in response"
		if first != nil && first.RAIFilteredReason != "" {
			reason = "image blocked by safety filters: " + first.RAIFilteredReason
		}
		return nil, fmt.Errorf("%w: %s", imagegen.ErrGeneration, reason)
	}

	return first.Image.ImageBytes, nil
}

// validateConfig checks that the API key is set before a client is built.
func validateConfig(ctx context.Context, logger *slog.Logger, cfg Config) error {
	if cfg.APIKey == "" {
		logger.ErrorContext(ctx, "missing Gemini API key")
		return fmt.Errorf("%w: gemini API key cannot be empty", imagegen.ErrInvalidConfig)
	}
	return nil
}
