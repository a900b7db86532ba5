// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package explain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Client is an Explainer backed by an OpenAI-compatible /v1/chat/completions
// endpoint. A circuit breaker keeps a failing model backend from delaying
// every recommendation; the caller degrades to unexplained results.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[string]
	logger  zerolog.Logger
}

var _ Explainer = (*Client)(nil)

// NewClient creates an explanation client.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.With().Str("component", "explain").Logger()

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "explain-api",
		MaxRequests: 3,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		logger:  log,
	}, nil
}

// candidateView is the candidate shape serialized into the prompt: enough
// metadata for the model to reason about fit, no embeddings.
type candidateView struct {
	Title    string   `json:"title"`
	Year     int      `json:"year,omitempty"`
	Genres   []string `json:"genres,omitempty"`
	Overview string   `json:"overview,omitempty"`
	Cast     []string `json:"cast,omitempty"`
	Score    float64  `json:"similarity"`
}

// buildPrompt renders the reranking prompt: long-term history, the latest
// message, and the candidate list, asking for the best FinalK with reasons.
func buildPrompt(req Request) (string, error) {
	var history strings.Builder
	if len(req.History) == 0 {
		history.WriteString("- (no prior preferences; only using this message)")
	} else {
		for i, p := range req.History {
			if i > 0 {
				history.WriteByte('\n')
			}
			history.WriteString("- ")
			history.WriteString(p)
		}
	}

	views := make([]candidateView, len(req.Candidates))
	for i, c := range req.Candidates {
		views[i] = candidateView{
			Title:    c.Movie.Title,
			Year:     c.Movie.Year,
			Genres:   c.Movie.Genres,
			Overview: c.Movie.Overview,
			Cast:     c.Movie.Cast,
			Score:    c.Score,
		}
	}
	candidateJSON, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return "", fmt.Errorf("explain: marshal candidates: %w", err)
	}

	return fmt.Sprintf(`You are a movie recommender system.

User's long-term preferences so far:
%s

User's latest message:
%s

Candidate movies (as JSON):
%s

From these candidates, choose the best %d movies
that match BOTH the user's long-term tastes and their latest message.
Explain briefly why each one fits.
Return a clear, human-readable list.
`, history.String(), req.Input, candidateJSON, req.FinalK), nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Explain returns a human-readable shortlist with per-movie reasons.
func (c *Client) Explain(ctx context.Context, req Request) (string, error) {
	if len(req.Candidates) == 0 {
		return "", errors.New("explain: no candidates")
	}
	if req.FinalK <= 0 {
		return "", fmt.Errorf("explain: invalid final k %d", req.FinalK)
	}

	prompt, err := buildPrompt(req)
	if err != nil {
		return "", err
	}

	text, err := c.breaker.Execute(func() (string, error) {
		return c.doChat(ctx, prompt)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", err
	}

	return text, nil
}

func (c *Client) doChat(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("explain: marshal request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("explain: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("explain: request failed with status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("explain: decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("explain: backend error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("explain: response contains no choices")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
