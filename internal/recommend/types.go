// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"fmt"
	"time"

	"github.com/tomtom215/reelmatch/internal/catalog"
)

// Request is one conversational recommendation turn.
type Request struct {
	// UserID identifies the user whose taste profile evolves with this
	// turn.
	UserID string `json:"user_id"`

	// Input is the user's free-text preference for this turn.
	Input string `json:"input"`

	// K is how many movies to return. Zero means the configured default.
	K int `json:"k,omitempty"`

	// ExcludeIDs are movie IDs to leave out of the results, typically
	// titles the user has already seen.
	ExcludeIDs []string `json:"exclude_ids,omitempty"`
}

// Response is the result of one recommendation turn.
type Response struct {
	// Items is the final shortlist, most similar first.
	Items []catalog.ScoredMovie `json:"items"`

	// Explanation is a human-readable summary of why the shortlist fits,
	// empty when the explanation backend was unavailable.
	Explanation string `json:"explanation,omitempty"`

	// Metadata describes how the response was produced.
	Metadata Metadata `json:"metadata"`
}

// Metadata describes one served turn.
type Metadata struct {
	RequestID      string    `json:"request_id"`
	UserID         string    `json:"user_id"`
	TurnCount      int       `json:"turn_count"`
	CandidateCount int       `json:"candidate_count"`
	LatencyMS      int64     `json:"latency_ms"`
	Explained      bool      `json:"explained"`
	Timestamp      time.Time `json:"timestamp"`
}

// Config holds engine tuning parameters.
type Config struct {
	// TopK is how many retrieval candidates feed the explanation stage.
	TopK int `koanf:"top_k"`

	// DefaultK is the shortlist size when a request does not specify one.
	DefaultK int `koanf:"default_k"`

	// MaxK caps the per-request shortlist size.
	MaxK int `koanf:"max_k"`

	// EmbedTimeout bounds the embedding call within a turn.
	EmbedTimeout time.Duration `koanf:"embed_timeout"`

	// ExplainTimeout bounds the best-effort explanation call.
	ExplainTimeout time.Duration `koanf:"explain_timeout"`
}

// DefaultConfig returns the production engine parameters.
func DefaultConfig() Config {
	return Config{
		TopK:           20,
		DefaultK:       5,
		MaxK:           50,
		EmbedTimeout:   10 * time.Second,
		ExplainTimeout: 30 * time.Second,
	}
}

// Validate checks the engine parameters.
func (c Config) Validate() error {
	if c.TopK < 1 {
		return fmt.Errorf("recommend: top_k %d must be at least 1", c.TopK)
	}
	if c.DefaultK < 1 || c.DefaultK > c.TopK {
		return fmt.Errorf("recommend: default_k %d must be in [1, top_k]", c.DefaultK)
	}
	if c.MaxK < c.DefaultK {
		return fmt.Errorf("recommend: max_k %d must be at least default_k", c.MaxK)
	}
	if c.EmbedTimeout <= 0 || c.ExplainTimeout <= 0 {
		return fmt.Errorf("recommend: timeouts must be positive")
	}
	return nil
}
