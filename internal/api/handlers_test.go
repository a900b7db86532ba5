// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/catalog"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/taste"
)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []float32{1, 0}, nil
}

func (s *stubEmbedder) Dimension() int { return 2 }

func newTestServer(t *testing.T, embedder *stubEmbedder) *Server {
	t.Helper()

	ix, err := catalog.NewIndex(2, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}
	err = ix.Load([]catalog.Record{
		{Movie: catalog.Movie{ID: "A", Title: "Alpha"}, Embedding: []float32{1, 0}},
		{Movie: catalog.Movie{ID: "B", Title: "Beta"}, Embedding: []float32{0, 1}},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	store, err := taste.NewMemoryStore(taste.DefaultConfig())
	if err != nil {
		t.Fatalf("NewMemoryStore() error = %v", err)
	}

	cfg := recommend.DefaultConfig()
	cfg.TopK = 2

	eng, err := recommend.NewEngine(cfg, embedder, store, ix, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	return NewServer(eng, filepath.Join(t.TempDir(), "missing.parquet"), zerolog.Nop())
}

func testRouter(t *testing.T, embedder *stubEmbedder) http.Handler {
	t.Helper()
	return newTestServer(t, embedder).NewRouter(RouterConfig{})
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp APIResponse
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("response is not an API envelope: %v (%q)", err, rec.Body.String())
		}
	}
	return rec, resp
}

func TestHandleRecommend(t *testing.T) {
	t.Parallel()

	router := testRouter(t, &stubEmbedder{})

	rec, resp := doJSON(t, router, http.MethodPost, "/api/v1/recommend",
		`{"user_id":"u1","input":"space westerns","k":2}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !resp.Success || resp.Error != nil {
		t.Fatalf("envelope = %+v", resp)
	}
	if resp.Meta == nil || resp.Meta.RequestID == "" {
		t.Error("missing request id in meta")
	}

	// Data round-trips as a recommend.Response.
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("re-marshal data: %v", err)
	}
	var out recommend.Response
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(out.Items) != 2 || out.Items[0].Movie.ID != "A" {
		t.Errorf("items = %+v", out.Items)
	}
	if out.Metadata.TurnCount != 1 {
		t.Errorf("TurnCount = %d, want 1", out.Metadata.TurnCount)
	}
}

func TestHandleRecommend_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		embedder   *stubEmbedder
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "malformed json",
			embedder:   &stubEmbedder{},
			body:       `{"user_id":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeBadRequest,
		},
		{
			name:       "missing user id",
			embedder:   &stubEmbedder{},
			body:       `{"input":"anything"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeValidationFailed,
		},
		{
			name:       "missing input",
			embedder:   &stubEmbedder{},
			body:       `{"user_id":"u1"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeValidationFailed,
		},
		{
			name:       "whitespace input",
			embedder:   &stubEmbedder{},
			body:       `{"user_id":"u1","input":"   "}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeBadRequest,
		},
		{
			name:       "k above maximum",
			embedder:   &stubEmbedder{},
			body:       `{"user_id":"u1","input":"x","k":1000}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeBadRequest,
		},
		{
			name:       "embedding backend down",
			embedder:   &stubEmbedder{err: errors.New("backend down")},
			body:       `{"user_id":"u1","input":"anything"}`,
			wantStatus: http.StatusBadGateway,
			wantCode:   ErrCodeExternalServiceFail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			router := testRouter(t, tt.embedder)

			rec, resp := doJSON(t, router, http.MethodPost, "/api/v1/recommend", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %q", resp.Error, tt.wantCode)
			}
		})
	}
}

func TestHandleTasteLifecycle(t *testing.T) {
	t.Parallel()

	router := testRouter(t, &stubEmbedder{})

	// Unknown user.
	rec, resp := doJSON(t, router, http.MethodGet, "/api/v1/users/u1/taste", "")
	if rec.Code != http.StatusNotFound || resp.Error.Code != ErrCodeNotFound {
		t.Fatalf("status = %d, error = %+v", rec.Code, resp.Error)
	}

	// A turn creates the profile.
	if rec, _ := doJSON(t, router, http.MethodPost, "/api/v1/recommend",
		`{"user_id":"u1","input":"heist movies"}`); rec.Code != http.StatusOK {
		t.Fatalf("recommend status = %d", rec.Code)
	}

	rec, resp = doJSON(t, router, http.MethodGet, "/api/v1/users/u1/taste", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	raw, _ := json.Marshal(resp.Data)
	var view tasteStateView
	if err := json.Unmarshal(raw, &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.TurnCount != 1 || view.Dimension != 2 || len(view.History) != 1 {
		t.Errorf("view = %+v", view)
	}

	// Reset removes it.
	rec, _ = doJSON(t, router, http.MethodDelete, "/api/v1/users/u1/taste", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("reset status = %d", rec.Code)
	}
	rec, _ = doJSON(t, router, http.MethodGet, "/api/v1/users/u1/taste", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status after reset = %d, want 404", rec.Code)
	}
}

func TestHandleCatalogStats(t *testing.T) {
	t.Parallel()

	router := testRouter(t, &stubEmbedder{})

	rec, resp := doJSON(t, router, http.MethodGet, "/api/v1/catalog/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("data = %T", resp.Data)
	}
	if data["movies"] != float64(2) || data["dimension"] != float64(2) {
		t.Errorf("stats = %v", data)
	}
}

func TestHandleCatalogReload_MissingArtifact(t *testing.T) {
	t.Parallel()

	router := testRouter(t, &stubEmbedder{})

	rec, resp := doJSON(t, router, http.MethodPost, "/api/v1/catalog/reload", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeInternalError {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	router := testRouter(t, &stubEmbedder{})

	rec, resp := doJSON(t, router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || !resp.Success {
		t.Errorf("status = %d, success = %v", rec.Code, resp.Success)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	t.Parallel()

	router := testRouter(t, &stubEmbedder{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "caller-supplied-id")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "caller-supplied-id" {
		t.Errorf("response %s = %q, want caller-supplied-id", RequestIDHeader, got)
	}
	if !strings.Contains(rec.Body.String(), "caller-supplied-id") {
		t.Error("request id missing from envelope meta")
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &stubEmbedder{})
	router := server.NewRouter(RouterConfig{
		RateLimitRequests: 1,
		RateLimitWindow:   time.Minute,
	})

	if rec, _ := doJSON(t, router, http.MethodGet, "/api/v1/catalog/stats", ""); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}
	rec, resp := doJSON(t, router, http.MethodGet, "/api/v1/catalog/stats", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeTooManyRequests {
		t.Errorf("error = %+v", resp.Error)
	}

	// Health endpoint sits outside the limited subtree.
	if rec, _ := doJSON(t, router, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
}
