// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for embedding operations.
var (
	// ErrEmptyText is returned when the text to embed is empty.
	ErrEmptyText = errors.New("embedding: empty text")

	// ErrUnavailable is returned when the embedding backend is unreachable
	// or its circuit breaker is open.
	ErrUnavailable = errors.New("embedding: backend unavailable")
)

// Embedder turns free text into a fixed-dimension vector.
type Embedder interface {
	// Embed returns the embedding for text. The returned vector has exactly
	// Dimension() elements.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension reports the embedding dimension this embedder produces.
	Dimension() int
}

// Config holds settings for the HTTP embedding client.
type Config struct {
	// BaseURL is the root of an OpenAI-compatible embeddings API,
	// e.g. "https://api.openai.com" or a local inference server.
	BaseURL string `koanf:"base_url"`

	// APIKey is sent as a bearer token when non-empty.
	APIKey string `koanf:"api_key"`

	// Model is the embedding model name.
	Model string `koanf:"model"`

	// Dimension is the expected vector length; responses of any other
	// length are rejected.
	Dimension int `koanf:"dimension"`

	// Timeout bounds a single embedding request.
	Timeout time.Duration `koanf:"timeout"`

	// RateLimit caps outbound requests per second (0 disables limiting).
	RateLimit float64 `koanf:"rate_limit"`

	// RateBurst is the limiter burst size.
	RateBurst int `koanf:"rate_burst"`
}

// DefaultConfig returns client settings suitable for a hosted embeddings API.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "https://api.openai.com",
		Model:     "text-embedding-3-small",
		Dimension: 1536,
		Timeout:   10 * time.Second,
		RateLimit: 10,
		RateBurst: 20,
	}
}

// Validate checks the client settings.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("embedding: base URL required")
	}
	if c.Model == "" {
		return errors.New("embedding: model required")
	}
	if c.Dimension <= 0 {
		return fmt.Errorf("embedding: invalid dimension %d", c.Dimension)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("embedding: invalid timeout %v", c.Timeout)
	}
	return nil
}
