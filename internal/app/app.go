// Package app assembles the deck store, image generation, deck service and
// export pipeline from configuration. Both the HTTP server and the CLI start
// from here.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/deckpack/internal/config"
	"github.com/phrazzld/deckpack/internal/deckstore"
	"github.com/phrazzld/deckpack/internal/export"
	"github.com/phrazzld/deckpack/internal/imagegen"
	"github.com/phrazzld/deckpack/internal/platform/gemini"
	"github.com/phrazzld/deckpack/internal/platform/openai"
	"github.com/phrazzld/deckpack/internal/platform/postgres"
	"github.com/phrazzld/deckpack/internal/platform/statefile"
	"github.com/phrazzld/deckpack/internal/service"
	"github.com/phrazzld/deckpack/internal/store"
)

// Application holds the wired components.
type Application struct {
	Config   *config.Config
	Logger   *slog.Logger
	Decks    *deckstore.Store
	Service  *service.DeckService
	Exporter *export.Pipeline

	db *sql.DB
}

// New builds every component and loads the persisted decks.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	app := &Application{Config: cfg, Logger: logger}

	backend, db, err := NewStateStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	app.db = db

	app.Decks = deckstore.New(backend, cfg.State.Key, logger)
	if err := app.Decks.Load(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to load decks: %w", err)
	}
	logger.Info("decks loaded",
		"backend", cfg.State.Backend,
		"decks", app.Decks.Len())

	gen, err := NewImageGenerator(ctx, cfg.ImageGen, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	adapter := imagegen.NewAdapter(gen, imagegen.Options{
		Size:     cfg.ImageGen.TargetSize,
		Quality:  cfg.ImageGen.Quality,
		MIMEType: cfg.ImageGen.MIMEType,
	}, time.Duration(cfg.ImageGen.TimeoutSeconds)*time.Second, logger)

	app.Service, err = service.NewDeckService(app.Decks, adapter, service.Config{
		QuotaBytes:      cfg.Export.QuotaBytes,
		BulkConcurrency: cfg.Bulk.Concurrency,
	}, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to create deck service: %w", err)
	}

	app.Exporter = export.NewPipeline(logger, export.WithDeckName(cfg.Export.DeckName))

	logger.Info("application initialized",
		"image_provider", cfg.ImageGen.Provider,
		"bulk_concurrency", cfg.Bulk.Concurrency)
	return app, nil
}

// Close releases the database connection, if any.
func (a *Application) Close() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		a.Logger.Error("error closing database connection", "error", err)
	}
	a.db = nil
}

// NewStateStore opens the configured state backend. The returned *sql.DB is
// nil unless the postgres backend is selected; the caller owns it.
func NewStateStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.StateStore, *sql.DB, error) {
	switch cfg.State.Backend {
	case "file":
		s, err := statefile.NewFileStateStore(cfg.State.Dir, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open state directory: %w", err)
		}
		return s, nil, nil
	case "postgres":
		db, err := postgres.Open(ctx, cfg.Database.URL, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, db, logger); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return postgres.NewPostgresStateStore(db, logger), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown state backend %q", cfg.State.Backend)
	}
}

// NewImageGenerator creates the configured image provider.
func NewImageGenerator(ctx context.Context, cfg config.ImageGenConfig, logger *slog.Logger) (imagegen.Generator, error) {
	switch cfg.Provider {
	case "openai":
		gen, err := openai.NewGenerator(openai.Config{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Size:    cfg.Size,
		}, nil, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create image provider: %w", err)
		}
		return gen, nil
	case "gemini":
		gen, err := gemini.NewGenerator(ctx, gemini.Config{
			APIKey:   cfg.APIKey,
			Model:    cfg.Model,
			MIMEType: cfg.MIMEType,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create image provider: %w", err)
		}
		return gen, nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", imagegen.ErrInvalidConfig, cfg.Provider)
	}
}
