// Package main implements the deckpack HTTP server, which manages flashcard
// decks and exports them as Anki study packages.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/phrazzld/deckpack/internal/app"
	"github.com/phrazzld/deckpack/internal/config"
	"github.com/phrazzld/deckpack/internal/platform/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (default: ./config.yaml if present)")
	flag.Parse()

	if err := run(context.Background(), *configPath); err != nil {
		log.Fatalf("deckpack server: %v", err)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	l.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"state_backend", cfg.State.Backend)
	if cfg.ImageGen.APIKey == "" {
		l.Warn("no image provider API key configured")
	}

	a, err := app.New(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer a.Close()

	srv := newServer(a, l)
	return srv.Run(ctx)
}
