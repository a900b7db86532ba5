// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/catalog"
	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	engine      *recommend.Engine
	validate    *validator.Validate
	catalogPath string
	logger      zerolog.Logger
}

// NewServer creates the handler set around the recommendation engine.
// catalogPath is the Parquet artifact used by the reload endpoint.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewServer(engine *recommend.Engine, catalogPath string, logger zerolog.Logger) *Server {
	return &Server{
		engine:      engine,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		catalogPath: catalogPath,
		logger:      logger.With().Str("component", "api").Logger(),
	}
}

// recommendPayload is the POST /recommend request body.
type recommendPayload struct {
	UserID     string   `json:"user_id" validate:"required,max=128"`
	Input      string   `json:"input" validate:"required,max=2000"`
	K          int      `json:"k" validate:"gte=0"`
	ExcludeIDs []string `json:"exclude_ids" validate:"omitempty,max=500,dive,required"`
}

// handleRecommend serves one conversational recommendation turn.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var payload recommendPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		rw.BadRequest("invalid JSON body")
		return
	}
	if err := s.validate.Struct(payload); err != nil {
		rw.ValidationError("request validation failed", validationDetails(err))
		return
	}

	resp, err := s.engine.Recommend(r.Context(), recommend.Request{
		UserID:     payload.UserID,
		Input:      payload.Input,
		K:          payload.K,
		ExcludeIDs: payload.ExcludeIDs,
	})
	if err != nil {
		s.writeRecommendError(rw, err)
		return
	}

	rw.Success(resp)
}

// writeRecommendError maps pipeline errors to HTTP status codes.
func (s *Server) writeRecommendError(rw *ResponseWriter, err error) {
	var embErr *recommend.EmbeddingError

	switch {
	case errors.Is(err, recommend.ErrEmptyInput), errors.Is(err, recommend.ErrInvalidK):
		rw.BadRequest(err.Error())
	case errors.As(err, &embErr):
		rw.ExternalServiceError("embedding", err)
	case errors.Is(err, catalog.ErrEmptyCatalog):
		rw.ServiceUnavailable("catalog not loaded")
	default:
		s.logger.Error().Err(err).Msg("recommendation failed")
		rw.InternalError("recommendation failed")
	}
}

// tasteStateView is the taste endpoint response; the raw vector is large
// and meaningless to clients, so only its dimension is reported.
type tasteStateView struct {
	UserID    string    `json:"user_id"`
	Dimension int       `json:"dimension"`
	TurnCount int       `json:"turn_count"`
	History   []string  `json:"history,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// handleGetTaste returns the user's taste profile summary.
func (s *Server) handleGetTaste(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := chi.URLParam(r, "userID")

	state, err := s.engine.TasteState(r.Context(), userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("taste lookup failed")
		rw.InternalError("taste lookup failed")
		return
	}

	// The store hands back a fresh zero-turn state for unseen users; the
	// REST surface reports that absence as 404.
	if state.TurnCount == 0 {
		rw.NotFound("no taste profile for user")
		return
	}

	rw.Success(tasteStateView{
		UserID:    state.UserID,
		Dimension: len(state.Vector),
		TurnCount: state.TurnCount,
		History:   state.History,
		UpdatedAt: state.UpdatedAt,
	})
}

// handleResetTaste deletes the user's taste profile.
func (s *Server) handleResetTaste(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := chi.URLParam(r, "userID")

	if err := s.engine.ResetTaste(r.Context(), userID); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("taste reset failed")
		rw.InternalError("taste reset failed")
		return
	}

	rw.NoContent()
}

// handleCatalogReload re-reads the Parquet artifact and atomically swaps
// the served catalog. In-flight queries keep the old snapshot.
func (s *Server) handleCatalogReload(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	records, err := catalog.LoadParquet(r.Context(), s.catalogPath)
	if err != nil {
		metrics.CatalogReloads.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Str("path", s.catalogPath).Msg("catalog reload failed")
		rw.InternalError("catalog reload failed")
		return
	}

	index := s.engine.Catalog()
	if err := index.Load(records); err != nil {
		metrics.CatalogReloads.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Msg("catalog reload rejected")
		rw.BadRequest("catalog artifact rejected: " + err.Error())
		return
	}

	metrics.CatalogReloads.WithLabelValues("ok").Inc()
	metrics.CatalogSize.Set(float64(index.Size()))

	rw.Success(map[string]any{
		"movies":    index.Size(),
		"loaded_at": index.LoadedAt().UTC(),
	})
}

// handleCatalogStats reports the served catalog's shape.
func (s *Server) handleCatalogStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	index := s.engine.Catalog()

	rw.Success(map[string]any{
		"movies":    index.Size(),
		"dimension": index.Dimension(),
		"loaded_at": index.LoadedAt().UTC(),
	})
}

// handleHealth reports liveness plus basic readiness signals.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status := "ok"
	code := http.StatusOK
	if s.engine.Catalog().Size() == 0 {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	rw.writeJSON(code, APIResponse{
		Success: code == http.StatusOK,
		Data: map[string]any{
			"status":  status,
			"catalog": s.engine.Catalog().Size(),
		},
		Meta: rw.meta(),
	})
}

// validationDetails flattens validator errors into a field->tag map.
func validationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fe.Tag()
	}
	return details
}
