// Package api exposes registered record tables over a REST API with
// API-key authentication and Prometheus metrics.
package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router builds the chi router for a server. Split out from
// StartServer so tests can drive it with httptest.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API key authentication middleware for protected routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.metrics.InstrumentAuthMiddleware(s.requireAPIKey))

		r.Get("/health", s.metrics.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		r.Get("/tables", s.metrics.InstrumentHandler("GET", "/api/v1/tables", s.handleListTables))
		r.Get("/tables/{name}", s.metrics.InstrumentHandler("GET", "/api/v1/tables/{name}", s.handleExportTable))
		r.Put("/tables/{name}", s.metrics.InstrumentHandler("PUT", "/api/v1/tables/{name}", s.handleImportTable))
		r.Delete("/tables/{name}", s.metrics.InstrumentHandler("DELETE", "/api/v1/tables/{name}", s.handleClearTable))

		r.Get("/stats", s.metrics.InstrumentHandler("GET", "/api/v1/stats", s.handleStats))
	})

	return r
}

// StartServer starts the HTTP server with all routes configured. It
// blocks until the listener fails.
func StartServer(registry *Registry, config ServerConfig, logger *slog.Logger) error {
	metrics := NewMetrics()
	server := NewServer(registry, config, metrics, logger)

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	server.logger.Info("starting REST API server", "addr", addr)
	return http.ListenAndServe(addr, server.Router())
}
