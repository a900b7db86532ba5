// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package catalog

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/vecmath"
)

func testIndex(t *testing.T, dimension int) *Index {
	t.Helper()

	ix, err := NewIndex(dimension, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}
	return ix
}

func toyRecords() []Record {
	return []Record{
		{Movie: Movie{ID: "A", Title: "Alpha"}, Embedding: []float32{1, 0}},
		{Movie: Movie{ID: "B", Title: "Beta"}, Embedding: []float32{0, 1}},
		{Movie: Movie{ID: "C", Title: "Gamma"}, Embedding: []float32{0.9, 0.1}},
	}
}

func TestNewIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		dimension int
		wantErr   bool
	}{
		{name: "valid dimension", dimension: 768},
		{name: "zero dimension", dimension: 0, wantErr: true},
		{name: "negative dimension", dimension: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ix, err := NewIndex(tt.dimension, zerolog.Nop())

			if tt.wantErr {
				if err == nil {
					t.Error("NewIndex() = nil error, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewIndex() error = %v", err)
			}
			if ix.Dimension() != tt.dimension {
				t.Errorf("Dimension() = %d, want %d", ix.Dimension(), tt.dimension)
			}
		})
	}
}

func TestIndex_Load(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		records []Record
		wantErr error
	}{
		{
			name:    "valid records",
			records: toyRecords(),
		},
		{
			name:    "empty load rejected",
			records: nil,
			wantErr: ErrEmptyCatalog,
		},
		{
			name: "duplicate id rejects whole load",
			records: []Record{
				{Movie: Movie{ID: "A"}, Embedding: []float32{1, 0}},
				{Movie: Movie{ID: "A"}, Embedding: []float32{0, 1}},
			},
			wantErr: ErrDuplicateMovieID,
		},
		{
			name: "wrong dimension rejected",
			records: []Record{
				{Movie: Movie{ID: "A"}, Embedding: []float32{1, 0, 0}},
			},
			wantErr: vecmath.ErrDimensionMismatch,
		},
		{
			name: "zero embedding rejected",
			records: []Record{
				{Movie: Movie{ID: "A"}, Embedding: []float32{0, 0}},
			},
			wantErr: vecmath.ErrZeroVector,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ix := testIndex(t, 2)
			err := ix.Load(tt.records)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if ix.Size() != len(tt.records) {
				t.Errorf("Size() = %d, want %d", ix.Size(), len(tt.records))
			}
			if ix.LoadedAt().IsZero() {
				t.Error("LoadedAt() is zero after successful load")
			}
		})
	}
}

func TestIndex_LoadFailureKeepsPreviousCatalog(t *testing.T) {
	t.Parallel()

	ix := testIndex(t, 2)
	if err := ix.Load(toyRecords()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	bad := []Record{
		{Movie: Movie{ID: "X"}, Embedding: []float32{1, 0}},
		{Movie: Movie{ID: "X"}, Embedding: []float32{0, 1}},
	}
	if err := ix.Load(bad); !errors.Is(err, ErrDuplicateMovieID) {
		t.Fatalf("Load() error = %v, want %v", err, ErrDuplicateMovieID)
	}

	// Old catalog still serves.
	if ix.Size() != 3 {
		t.Errorf("Size() = %d, want 3", ix.Size())
	}
	results, err := ix.Query([]float32{1, 0}, 1, nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if results[0].Movie.ID != "A" {
		t.Errorf("Query()[0] = %q, want A", results[0].Movie.ID)
	}
}

func TestIndex_Query(t *testing.T) {
	t.Parallel()

	ix := testIndex(t, 2)
	if err := ix.Load(toyRecords()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	t.Run("top 2 ranks A then C and excludes orthogonal B", func(t *testing.T) {
		t.Parallel()
		results, err := ix.Query([]float32{1, 0}, 2, nil)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("len(results) = %d, want 2", len(results))
		}
		if results[0].Movie.ID != "A" || results[1].Movie.ID != "C" {
			t.Errorf("order = [%s %s], want [A C]", results[0].Movie.ID, results[1].Movie.ID)
		}
		if math.Abs(results[0].Score-1.0) > 1e-6 {
			t.Errorf("score A = %v, want 1.0", results[0].Score)
		}
		// C = [0.9, 0.1] normalized, so sim ~= 0.9/sqrt(0.82).
		wantC := 0.9 / math.Sqrt(0.82)
		if math.Abs(results[1].Score-wantC) > 1e-6 {
			t.Errorf("score C = %v, want %v", results[1].Score, wantC)
		}
	})

	t.Run("k larger than catalog returns all sorted", func(t *testing.T) {
		t.Parallel()
		results, err := ix.Query([]float32{1, 0}, 100, nil)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(results) != 3 {
			t.Fatalf("len(results) = %d, want 3", len(results))
		}
		for i := 1; i < len(results); i++ {
			if results[i].Score > results[i-1].Score {
				t.Errorf("results not sorted at %d", i)
			}
		}
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		t.Parallel()
		first, err := ix.Query([]float32{0.5, 0.5}, 3, nil)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		second, err := ix.Query([]float32{0.5, 0.5}, 3, nil)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		for i := range first {
			if first[i].Movie.ID != second[i].Movie.ID || first[i].Score != second[i].Score {
				t.Errorf("result %d differs between identical queries", i)
			}
		}
	})

	t.Run("exclude set skips records", func(t *testing.T) {
		t.Parallel()
		results, err := ix.Query([]float32{1, 0}, 3, map[string]struct{}{"A": {}})
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		for _, r := range results {
			if r.Movie.ID == "A" {
				t.Error("excluded record A returned")
			}
		}
	})

	t.Run("invalid k", func(t *testing.T) {
		t.Parallel()
		if _, err := ix.Query([]float32{1, 0}, 0, nil); !errors.Is(err, ErrInvalidK) {
			t.Errorf("Query(k=0) error = %v, want %v", err, ErrInvalidK)
		}
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		t.Parallel()
		if _, err := ix.Query([]float32{1, 0, 0}, 1, nil); !errors.Is(err, vecmath.ErrDimensionMismatch) {
			t.Errorf("Query() error = %v, want %v", err, vecmath.ErrDimensionMismatch)
		}
	})
}

func TestIndex_QueryEmptyCatalog(t *testing.T) {
	t.Parallel()

	ix := testIndex(t, 2)
	if _, err := ix.Query([]float32{1, 0}, 1, nil); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("Query() error = %v, want %v", err, ErrEmptyCatalog)
	}
}

func TestIndex_StableTieBreakByInsertionOrder(t *testing.T) {
	t.Parallel()

	ix := testIndex(t, 2)
	records := []Record{
		{Movie: Movie{ID: "first"}, Embedding: []float32{1, 0}},
		{Movie: Movie{ID: "second"}, Embedding: []float32{1, 0}},
		{Movie: Movie{ID: "third"}, Embedding: []float32{1, 0}},
	}
	if err := ix.Load(records); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	results, err := ix.Query([]float32{1, 0}, 3, nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	want := []string{"first", "second", "third"}
	for i, id := range want {
		if results[i].Movie.ID != id {
			t.Errorf("results[%d] = %q, want %q", i, results[i].Movie.ID, id)
		}
	}
}

func TestIndex_ConcurrentQueriesDuringReload(t *testing.T) {
	t.Parallel()

	ix := testIndex(t, 2)
	if err := ix.Load(toyRecords()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				results, err := ix.Query([]float32{1, 0}, 3, nil)
				if err != nil {
					t.Errorf("Query() error = %v", err)
					return
				}
				// Snapshot discipline: always a complete catalog.
				if len(results) != 3 {
					t.Errorf("len(results) = %d, want 3", len(results))
					return
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 50; j++ {
			if err := ix.Load(toyRecords()); err != nil {
				t.Errorf("Load() error = %v", err)
				return
			}
		}
	}()

	wg.Wait()
}
