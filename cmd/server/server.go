package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phrazzld/deckpack/internal/app"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	app    *app.Application
	logger *slog.Logger
}

func newServer(a *app.Application, logger *slog.Logger) *server {
	return &server{app: a, logger: logger.With("component", "http_server")}
}

// Run serves HTTP until ctx is cancelled or SIGINT/SIGTERM arrives, then
// shuts down gracefully.
func (s *server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.app.Config.Server.Port),
		Handler:           s.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
		// Bulk generation can take several provider round trips.
		WriteTimeout: 10 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "port", s.app.Config.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server shutdown completed")
	return nil
}
