// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds the middleware settings for the HTTP router.
type RouterConfig struct {
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// NewRouter assembles the chi router: middleware stack, versioned API
// routes, health, and Prometheus metrics.
func (s *Server) NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(RequestID)
	r.Use(RequestLogger)
	r.Use(Metrics)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(cfg.CORSOrigins))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Get("/health", s.handleHealth)
		r.Post("/recommend", s.handleRecommend)

		r.Route("/users/{userID}/taste", func(r chi.Router) {
			r.Get("/", s.handleGetTaste)
			r.Delete("/", s.handleResetTaste)
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Post("/reload", s.handleCatalogReload)
			r.Get("/stats", s.handleCatalogStats)
		})
	})

	return r
}
