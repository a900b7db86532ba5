// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/reelmatch/internal/embedding"
	"github.com/tomtom215/reelmatch/internal/explain"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/taste"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig     `koanf:"server"`
	Logging   logging.Config   `koanf:"logging"`
	Catalog   CatalogConfig    `koanf:"catalog"`
	Taste     TasteConfig      `koanf:"taste"`
	Embedding embedding.Config `koanf:"embedding"`
	Explain   explain.Config   `koanf:"explain"`
	Recommend recommend.Config `koanf:"recommend"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins lists allowed origins; empty disables CORS headers.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitRequests caps requests per client IP per RateLimitWindow.
	// Zero disables rate limiting.
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CatalogConfig holds movie catalog settings.
type CatalogConfig struct {
	// Path is the Parquet catalog artifact produced by the embedding
	// pipeline.
	Path string `koanf:"path"`

	// Dimension is the embedding dimension of the artifact; it must match
	// the embedding backend's dimension.
	Dimension int `koanf:"dimension"`
}

// TasteConfig holds taste store settings.
type TasteConfig struct {
	// Backend selects the store implementation: "memory" or "badger".
	Backend string `koanf:"backend"`

	// Path is the BadgerDB directory (badger backend only).
	Path string `koanf:"path"`

	// Fusion holds the vector fusion parameters.
	Fusion taste.Config `koanf:"fusion"`
}

// Default returns the full default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Logging: logging.DefaultConfig(),
		Catalog: CatalogConfig{
			Path:      "/data/movies.parquet",
			Dimension: 1536,
		},
		Taste: TasteConfig{
			Backend: "badger",
			Path:    "/data/taste",
			Fusion:  taste.DefaultConfig(),
		},
		Embedding: embedding.DefaultConfig(),
		Explain:   explain.DefaultConfig(),
		Recommend: recommend.DefaultConfig(),
	}
}

// Validate checks the whole configuration, including cross-section
// consistency (catalog and embedding dimensions must agree).
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("config: server timeouts must be positive")
	}
	if c.Server.RateLimitRequests > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("config: rate limit window must be positive")
	}

	if c.Catalog.Path == "" {
		return fmt.Errorf("config: catalog path required")
	}
	if c.Catalog.Dimension <= 0 {
		return fmt.Errorf("config: invalid catalog dimension %d", c.Catalog.Dimension)
	}

	switch c.Taste.Backend {
	case "memory":
	case "badger":
		if c.Taste.Path == "" {
			return fmt.Errorf("config: taste path required for badger backend")
		}
	default:
		return fmt.Errorf("config: unknown taste backend %q", c.Taste.Backend)
	}
	if err := c.Taste.Fusion.Validate(); err != nil {
		return err
	}

	if err := c.Embedding.Validate(); err != nil {
		return err
	}
	if c.Catalog.Dimension != c.Embedding.Dimension {
		return fmt.Errorf("config: catalog dimension %d does not match embedding dimension %d",
			c.Catalog.Dimension, c.Embedding.Dimension)
	}

	if c.Explain.Enabled {
		if err := c.Explain.Validate(); err != nil {
			return err
		}
	}

	return c.Recommend.Validate()
}
