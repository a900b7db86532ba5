// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package explain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/reelmatch/internal/catalog"
)

// ErrUnavailable is returned when the language-model backend is unreachable
// or its circuit breaker is open.
var ErrUnavailable = errors.New("explain: backend unavailable")

// Request carries everything the explainer needs to pick and justify the
// final shortlist from retrieval candidates.
type Request struct {
	// Input is the user's latest message.
	Input string

	// History is the user's recent preference texts, oldest first.
	History []string

	// Candidates are the retrieval results, most similar first.
	Candidates []catalog.ScoredMovie

	// FinalK is how many movies the explainer should focus on.
	FinalK int
}

// Explainer produces a human-readable shortlist with reasons from
// retrieval candidates. Implementations are best-effort: callers treat a
// failure as "no explanation", not as a failed recommendation.
type Explainer interface {
	Explain(ctx context.Context, req Request) (string, error)
}

// Config holds settings for the chat-completions explainer.
type Config struct {
	// Enabled toggles the explanation stage. When false the service
	// returns recommendations without explanations.
	Enabled bool `koanf:"enabled"`

	// BaseURL is the root of an OpenAI-compatible chat API.
	BaseURL string `koanf:"base_url"`

	// APIKey is sent as a bearer token when non-empty.
	APIKey string `koanf:"api_key"`

	// Model is the chat model name.
	Model string `koanf:"model"`

	// Temperature controls sampling; the reranking prompt tolerates a bit
	// of variety in phrasing.
	Temperature float64 `koanf:"temperature"`

	// Timeout bounds a single explanation request.
	Timeout time.Duration `koanf:"timeout"`
}

// DefaultConfig returns explainer settings for a hosted chat API.
func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		BaseURL:     "https://api.openai.com",
		Model:       "gpt-4o-mini",
		Temperature: 0.4,
		Timeout:     30 * time.Second,
	}
}

// Validate checks the explainer settings.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("explain: base URL required")
	}
	if c.Model == "" {
		return errors.New("explain: model required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("explain: temperature %v outside [0, 2]", c.Temperature)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("explain: invalid timeout %v", c.Timeout)
	}
	return nil
}
