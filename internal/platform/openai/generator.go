package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/phrazzld/deckpack/internal/imagegen"
)

const (
	// DefaultBaseURL is the endpoint the hosted image model is served from.
	DefaultBaseURL = "https://api.litviva.com/v1"

	generationsPath = "/images/generations"

	// maxErrorBody bounds how much of a failed response is read for a message.
	maxErrorBody = 64 << 10
)

// Config holds provider settings.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Size    string
}

// Generator calls the images endpoint. It is safe for concurrent use.
type Generator struct {
	client   *http.Client
	endpoint string
	cfg      Config
	logger   *slog.Logger
}

var _ imagegen.Generator = (*Generator)(nil)

type generationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type generationResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewGenerator creates a provider. A nil client gets a pooled client with
// sane transport timeouts.
func NewGenerator(cfg Config, client *http.Client, logger *slog.Logger) (*Generator, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model cannot be empty", imagegen.ErrInvalidConfig)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if client == nil {
		client = cleanhttp.DefaultPooledClient()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Generator{
		client:   client,
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + generationsPath,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "openai_generator")),
	}, nil
}

// Generate requests one image and returns its decoded bytes.
func (g *Generator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	body, err := json.Marshal(generationRequest{
		Model:  g.cfg.Model,
		Prompt: prompt,
		N:      1,
		Size:   g.cfg.Size,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	}

	g.logger.DebugContext(ctx, "requesting image", "model", g.cfg.Model, "size", g.cfg.Size)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", imagegen.ErrGeneration, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", imagegen.ErrGeneration, upstreamMessage(resp))
	}

	var parsed generationResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", imagegen.ErrGeneration, err)
	}
	if len(parsed.Data) == 0 || parsed.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("%w: response contained no image", imagegen.ErrGeneration)
	}

	img, err := base64.StdEncoding.DecodeString(parsed.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("%w: image payload is not base64: %v", imagegen.ErrGeneration, err)
	}
	return img, nil
}

// upstreamMessage prefers the provider's error.message and falls back to
// the HTTP status text.
func upstreamMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var parsed errorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}
