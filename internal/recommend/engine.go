// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/catalog"
	"github.com/tomtom215/reelmatch/internal/embedding"
	"github.com/tomtom215/reelmatch/internal/explain"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/taste"
)

// Engine orchestrates one recommendation turn: embed the input, fold it
// into the user's taste vector, retrieve candidates from the catalog, and
// optionally have a language model pick and justify the final shortlist.
type Engine struct {
	cfg       Config
	embedder  embedding.Embedder
	store     taste.Store
	index     *catalog.Index
	explainer explain.Explainer
	logger    zerolog.Logger
}

// NewEngine wires the recommendation pipeline. The explainer may be nil,
// in which case turns are served without explanations.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(
	cfg Config,
	embedder embedding.Embedder,
	store taste.Store,
	index *catalog.Index,
	explainer explain.Explainer,
	logger zerolog.Logger,
) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Engine{
		cfg:       cfg,
		embedder:  embedder,
		store:     store,
		index:     index,
		explainer: explainer,
		logger:    logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Recommend serves one turn for req.
//
// The order of operations carries the turn's atomicity guarantee: the
// user's taste state only changes after the input has been embedded
// successfully, so a failed turn can be retried without side effects.
// Explanation failures never fail the turn.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	input := strings.TrimSpace(req.Input)
	if input == "" {
		metrics.RecommendRequests.WithLabelValues("invalid").Inc()
		return nil, ErrEmptyInput
	}

	k := req.K
	switch {
	case k == 0:
		k = e.cfg.DefaultK
	case k < 0 || k > e.cfg.MaxK:
		metrics.RecommendRequests.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidK
	}

	embedCtx, cancel := context.WithTimeout(ctx, e.cfg.EmbedTimeout)
	vector, err := e.embedder.Embed(embedCtx, input)
	cancel()
	if err != nil {
		metrics.EmbeddingFailures.Inc()
		metrics.RecommendRequests.WithLabelValues("embedding_error").Inc()
		return nil, &EmbeddingError{Err: err}
	}

	state, err := e.store.Update(ctx, req.UserID, vector, input)
	if err != nil {
		metrics.RecommendRequests.WithLabelValues("internal_error").Inc()
		return nil, err
	}
	metrics.TasteUpdates.Inc()

	exclude := make(map[string]struct{}, len(req.ExcludeIDs))
	for _, id := range req.ExcludeIDs {
		exclude[id] = struct{}{}
	}

	// The retrieval slate widens to k when the caller asks for more than
	// the default candidate count, so k up to MaxK is always honored.
	topK := e.cfg.TopK
	if k > topK {
		topK = k
	}
	candidates, err := e.index.Query(state.Vector, topK, exclude)
	if err != nil {
		metrics.RecommendRequests.WithLabelValues("internal_error").Inc()
		return nil, err
	}

	items := candidates
	if len(items) > k {
		items = items[:k]
	}

	explanation, explained := e.explainTurn(ctx, input, state, candidates, k)

	latency := time.Since(start)
	metrics.RecommendDuration.Observe(latency.Seconds())
	metrics.RecommendRequests.WithLabelValues("ok").Inc()

	resp := &Response{
		Items:       items,
		Explanation: explanation,
		Metadata: Metadata{
			RequestID:      logging.RequestIDFromContext(ctx),
			UserID:         req.UserID,
			TurnCount:      state.TurnCount,
			CandidateCount: len(candidates),
			LatencyMS:      latency.Milliseconds(),
			Explained:      explained,
			Timestamp:      time.Now().UTC(),
		},
	}

	e.logger.Info().
		Str("request_id", resp.Metadata.RequestID).
		Str("user_id", req.UserID).
		Int("turn", state.TurnCount).
		Int("candidates", len(candidates)).
		Strs("movie_ids", movieIDs(items)).
		Int("returned", len(items)).
		Bool("explained", explained).
		Dur("latency", latency).
		Msg("turn served")

	return resp, nil
}

func movieIDs(items []catalog.ScoredMovie) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.Movie.ID
	}
	return ids
}

// explainTurn asks the explainer for a shortlist justification. Any failure
// is logged and counted, never propagated.
func (e *Engine) explainTurn(ctx context.Context, input string, state taste.State, candidates []catalog.ScoredMovie, k int) (string, bool) {
	if e.explainer == nil || len(candidates) == 0 {
		return "", false
	}

	explainCtx, cancel := context.WithTimeout(ctx, e.cfg.ExplainTimeout)
	defer cancel()

	text, err := e.explainer.Explain(explainCtx, explain.Request{
		Input:      input,
		History:    state.History,
		Candidates: candidates,
		FinalK:     k,
	})
	if err != nil {
		metrics.ExplanationFailures.Inc()
		e.logger.Warn().Err(err).Str("user_id", state.UserID).Msg("explanation unavailable")
		return "", false
	}

	return text, true
}

// TasteState returns the user's current taste state.
func (e *Engine) TasteState(ctx context.Context, userID string) (taste.State, error) {
	return e.store.Get(ctx, userID)
}

// ResetTaste discards the user's taste profile; their next turn starts
// from scratch.
func (e *Engine) ResetTaste(ctx context.Context, userID string) error {
	if err := e.store.Reset(ctx, userID); err != nil {
		return err
	}
	metrics.TasteResets.Inc()
	e.logger.Info().Str("user_id", userID).Msg("taste profile reset")
	return nil
}

// Catalog exposes the underlying index for stats and reloads.
func (e *Engine) Catalog() *catalog.Index {
	return e.index
}
