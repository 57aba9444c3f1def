package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/deckpack/internal/api"
	apiMiddleware "github.com/phrazzld/deckpack/internal/api/middleware"
)

// setupRouter creates the router with all routes and middleware.
func (s *server) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(s.logger))
	r.Use(apiMiddleware.RequestLogger(s.logger))
	r.Use(middleware.Recoverer)

	exportHandler := api.NewExportHandler(s.app.Exporter, s.app.Service, s.app.Config.Server.MaxBodyBytes, s.logger)
	deckHandler := api.NewDeckHandler(s.app.Service, s.logger)

	r.Route("/api", func(r chi.Router) {
		exportHandler.Register(r)
		r.Group(func(r chi.Router) {
			// Export bodies carry every image; everything else is small.
			r.Use(middleware.RequestSize(1 << 20))
			deckHandler.Register(r)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			s.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
