// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package main is the entry point for the ReelMatch server.
//
// ReelMatch is a conversational movie recommendation service. Each user
// message is embedded, fused into a persistent per-user taste vector, and
// matched against a movie catalog by cosine similarity; an optional LLM
// stage explains the picks in natural language.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults, config file, environment (Koanf v2)
//  2. Catalog: Parquet artifact loaded through DuckDB into an in-memory index
//  3. Taste store: BadgerDB (persistent) or in-memory per-user vectors
//  4. Embedding client: OpenAI-compatible API with circuit breaker
//  5. Explanation client: OpenAI-compatible chat API (optional)
//  6. HTTP server: chi REST API under supervision with graceful shutdown
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (HTTP_PORT, CATALOG_PATH, EMBEDDING_API_KEY, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting new connections, waits for in-flight requests up to the
// shutdown timeout, and closes the taste store.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/reelmatch/internal/api"
	"github.com/tomtom215/reelmatch/internal/catalog"
	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/embedding"
	"github.com/tomtom215/reelmatch/internal/explain"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/supervisor"
	"github.com/tomtom215/reelmatch/internal/supervisor/services"
	"github.com/tomtom215/reelmatch/internal/taste"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging)

	logging.Info().
		Str("catalog_path", cfg.Catalog.Path).
		Int("dimension", cfg.Catalog.Dimension).
		Str("taste_backend", cfg.Taste.Backend).
		Bool("explain_enabled", cfg.Explain.Enabled).
		Msg("Configuration loaded")

	// Context canceled on SIGINT/SIGTERM drives graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	index, err := catalog.NewIndex(cfg.Catalog.Dimension, logging.WithComponent("catalog"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create catalog index")
	}

	records, err := catalog.LoadParquet(ctx, cfg.Catalog.Path)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Catalog.Path).Msg("Failed to read catalog artifact")
	}
	if err := index.Load(records); err != nil {
		logging.Fatal().Err(err).Msg("Failed to load catalog index")
	}
	metrics.CatalogSize.Set(float64(index.Size()))
	logging.Info().Int("movies", index.Size()).Msg("Catalog loaded")

	store, closeStore, err := newTasteStore(cfg.Taste)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open taste store")
	}
	defer func() {
		if err := closeStore(); err != nil {
			logging.Error().Err(err).Msg("Error closing taste store")
		}
	}()

	embedder, err := embedding.NewClient(cfg.Embedding, logging.WithComponent("embedding"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create embedding client")
	}

	var explainer explain.Explainer
	if cfg.Explain.Enabled {
		client, err := explain.NewClient(cfg.Explain, logging.WithComponent("explain"))
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create explanation client")
		}
		explainer = client
	} else {
		logging.Info().Msg("Explanation stage disabled; serving similarity-only responses")
	}

	engine, err := recommend.NewEngine(cfg.Recommend, embedder, store, index, explainer, logging.WithComponent("recommend"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	apiServer := api.NewServer(engine, cfg.Catalog.Path, logging.WithComponent("api"))
	router := apiServer.NewRouter(api.RouterConfig{
		CORSOrigins:       cfg.Server.CORSOrigins,
		RateLimitRequests: cfg.Server.RateLimitRequests,
		RateLimitWindow:   cfg.Server.RateLimitWindow,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	treeCfg := supervisor.DefaultConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)
	tree.Add(services.NewHTTPService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server added to supervisor tree")

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, stopping services")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain the error channel; it closes once the tree has stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	logging.Info().Msg("Server stopped gracefully")
}

// newTasteStore builds the configured taste store and returns a close
// function for its resources.
func newTasteStore(cfg config.TasteConfig) (taste.Store, func() error, error) {
	switch cfg.Backend {
	case "memory":
		store, err := taste.NewMemoryStore(cfg.Fusion)
		if err != nil {
			return nil, nil, err
		}
		return store, func() error { return nil }, nil

	case "badger":
		db, err := taste.OpenBadger(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		store, err := taste.NewBadgerStore(db, cfg.Fusion)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logging.Info().Str("path", cfg.Path).Msg("Taste store opened")
		return store, db.Close, nil

	default:
		return nil, nil, errors.New("unknown taste backend: " + cfg.Backend)
	}
}
