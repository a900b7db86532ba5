// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/vecmath"
)

// Sentinel errors for catalog operations.
var (
	// ErrEmptyCatalog is returned by Query when no catalog has been loaded
	// or a load was attempted with zero records.
	ErrEmptyCatalog = errors.New("catalog: empty catalog")

	// ErrInvalidK is returned by Query when k <= 0.
	ErrInvalidK = errors.New("catalog: k must be positive")

	// ErrDuplicateMovieID is returned by Load when two records share a movie
	// ID. The whole load is rejected so results stay deterministic.
	ErrDuplicateMovieID = errors.New("catalog: duplicate movie id")
)

// FormatError reports a malformed record encountered during Load.
// It wraps the underlying cause (dimension mismatch, zero embedding).
type FormatError struct {
	MovieID string
	Err     error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("catalog: bad record %q: %v", e.MovieID, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Movie is the display metadata for a single catalog entry.
// Immutable after load.
type Movie struct {
	// ID is the unique movie identifier from the catalog artifact.
	ID string `json:"movie_id"`

	// Title is the display title.
	Title string `json:"title"`

	// Year is the release year (0 if unknown).
	Year int `json:"year,omitempty"`

	// Genres is the list of genre names.
	Genres []string `json:"genres,omitempty"`

	// Overview is the plot summary.
	Overview string `json:"overview,omitempty"`

	// Cast lists the top-billed cast members.
	Cast []string `json:"cast,omitempty"`
}

// Record pairs a movie with its precomputed embedding.
type Record struct {
	Movie     Movie
	Embedding []float32
}

// ScoredMovie is a catalog entry ranked against a query vector.
type ScoredMovie struct {
	// Movie is the catalog metadata.
	Movie Movie `json:"movie"`

	// Score is the cosine similarity to the query vector, in [-1, 1].
	Score float64 `json:"score"`
}

// snapshot is an immutable view of the loaded catalog. Queries read a
// snapshot pointer once and never observe a partially loaded catalog.
type snapshot struct {
	records  []Record
	loadedAt time.Time
}

// Index holds the movie catalog and answers top-K similarity queries.
//
// Reads are lock-free against an atomically swapped snapshot; Load is the
// only mutating operation and is serialized by a mutex. The baseline query
// is a brute-force linear scan, which is adequate for catalogs in the
// thousands to low tens of thousands of records.
type Index struct {
	dimension int
	logger    zerolog.Logger

	loadMu sync.Mutex
	snap   atomic.Pointer[snapshot]
}

// NewIndex creates an empty catalog index for embeddings of the given
// dimension. The dimension is fixed at construction; records of any other
// length are rejected at load time.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewIndex(dimension int, logger zerolog.Logger) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("catalog: invalid dimension %d", dimension)
	}

	return &Index{
		dimension: dimension,
		logger:    logger.With().Str("component", "catalog").Logger(),
	}, nil
}

// Dimension returns the configured embedding dimension.
func (ix *Index) Dimension() int {
	return ix.dimension
}

// Size returns the number of records in the currently served catalog.
func (ix *Index) Size() int {
	if s := ix.snap.Load(); s != nil {
		return len(s.records)
	}
	return 0
}

// LoadedAt returns when the currently served catalog was loaded.
// The zero time means no catalog has been loaded yet.
func (ix *Index) LoadedAt() time.Time {
	if s := ix.snap.Load(); s != nil {
		return s.loadedAt
	}
	return time.Time{}
}

// Load replaces the catalog atomically. Concurrent queries observe either
// the fully-old or fully-new catalog, never a mix.
//
// Every embedding is validated against the configured dimension and
// re-normalized to unit length before storage. Duplicate movie IDs reject
// the whole load. Any failure leaves the previously served catalog intact.
func (ix *Index) Load(records []Record) error {
	ix.loadMu.Lock()
	defer ix.loadMu.Unlock()

	if len(records) == 0 {
		return ErrEmptyCatalog
	}

	prepared := make([]Record, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for _, rec := range records {
		if _, dup := seen[rec.Movie.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateMovieID, rec.Movie.ID)
		}
		seen[rec.Movie.ID] = struct{}{}

		if len(rec.Embedding) != ix.dimension {
			return &FormatError{
				MovieID: rec.Movie.ID,
				Err:     fmt.Errorf("%w: got %d, want %d", vecmath.ErrDimensionMismatch, len(rec.Embedding), ix.dimension),
			}
		}

		unit, err := vecmath.Normalize(rec.Embedding)
		if err != nil {
			return &FormatError{MovieID: rec.Movie.ID, Err: err}
		}

		prepared = append(prepared, Record{Movie: rec.Movie, Embedding: unit})
	}

	ix.snap.Store(&snapshot{
		records:  prepared,
		loadedAt: time.Now(),
	})

	ix.logger.Info().
		Int("records", len(prepared)).
		Int("dimension", ix.dimension).
		Msg("catalog loaded")

	return nil
}

// Query returns the top k records by cosine similarity to vector, most
// similar first. Ties break by catalog insertion order so identical inputs
// always produce identical results. Records whose IDs appear in exclude are
// skipped. A k larger than the catalog returns every record, sorted.
func (ix *Index) Query(vector []float32, k int, exclude map[string]struct{}) ([]ScoredMovie, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidK, k)
	}
	if len(vector) != ix.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", vecmath.ErrDimensionMismatch, len(vector), ix.dimension)
	}

	snap := ix.snap.Load()
	if snap == nil || len(snap.records) == 0 {
		return nil, ErrEmptyCatalog
	}

	scored := make([]ScoredMovie, 0, len(snap.records))
	for i := range snap.records {
		rec := &snap.records[i]
		if _, skip := exclude[rec.Movie.ID]; skip {
			continue
		}

		// Dimensions already validated; Dot cannot fail here.
		score, err := vecmath.Dot(vector, rec.Embedding)
		if err != nil {
			return nil, err
		}

		scored = append(scored, ScoredMovie{Movie: rec.Movie, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}

	return scored, nil
}
