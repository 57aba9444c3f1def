package imagegen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/deckpack/internal/redact"
)

// Generator produces raw image bytes for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// Options shape the adapter output.
type Options struct {
	// Size is the target "WxH". Empty keeps the provider's dimensions.
	Size string
	// Quality is the JPEG quality, 1-100. Ignored for PNG.
	Quality int
	// MIMEType is the output encoding. Empty keeps the provider's encoding.
	MIMEType string
}

// Adapter wraps a Generator with a bounded call time and post-processing.
type Adapter struct {
	gen     Generator
	opts    Options
	timeout time.Duration
	logger  *slog.Logger
}

// NewAdapter creates an adapter. A zero timeout leaves the caller's context
// as the only bound.
func NewAdapter(gen Generator, opts Options, timeout time.Duration, logger *slog.Logger) *Adapter {
	if gen == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("generator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		gen:     gen,
		opts:    opts,
		timeout: timeout,
		logger:  logger.With(slog.String("component", "image_adapter")),
	}
}

// Generate returns image bytes for prompt, resized and re-encoded per opts.
func (a *Adapter) Generate(ctx context.Context, prompt string, opts Options) ([]byte, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, ErrEmptyPrompt)
	}

	callCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := a.gen.Generate(callCtx, prompt)
	elapsed := time.Since(start)
	if err != nil {
		a.logger.ErrorContext(ctx, "image generation failed",
			"prompt", prompt,
			"elapsed_ms", elapsed.Milliseconds(),
			"error", redact.Error(err))

		if ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: no response within %s", ErrGeneration, a.timeout)
		}
		if errors.Is(err, ErrGeneration) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: provider returned no image data", ErrGeneration)
	}

	out, err := Transform(raw, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	a.logger.DebugContext(ctx, "image generated",
		"prompt", prompt,
		"bytes", len(out),
		"elapsed_ms", elapsed.Milliseconds())
	return out, nil
}

// GenerateImage generates with the adapter's configured options and returns
// the result as a data URI.
func (a *Adapter) GenerateImage(ctx context.Context, prompt string) (string, error) {
	data, err := a.Generate(ctx, prompt, a.opts)
	if err != nil {
		return "", err
	}
	return DataURI(data), nil
}
