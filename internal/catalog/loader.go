// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// DuckDB driver, used only to read the Parquet catalog artifact.
	_ "github.com/duckdb/duckdb-go/v2"
)

// artifactQuery reads the columnar catalog artifact. The artifact is produced
// by the embedding pipeline as a Parquet table keyed by movie_id with one
// embedding list column plus display metadata.
const artifactQuery = `
SELECT
    CAST(movie_id AS VARCHAR)       AS movie_id,
    CAST(title AS VARCHAR)          AS title,
    CAST(COALESCE(year, 0) AS INTEGER) AS year,
    CAST(COALESCE(genres, '') AS VARCHAR)        AS genres,
    CAST(COALESCE(tmdb_overview, '') AS VARCHAR) AS overview,
    CAST(COALESCE(tmdb_top_cast, '') AS VARCHAR) AS top_cast,
    embedding
FROM read_parquet(?)
`

// LoadParquet reads movie records from the Parquet catalog artifact at path.
//
// This is the sole reader of the artifact format. It uses an in-memory DuckDB
// connection so the artifact never needs to be converted or staged; dimension
// and uniqueness validation happen in Index.Load, not here.
func LoadParquet(ctx context.Context, path string) ([]Record, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, artifactQuery, path)
	if err != nil {
		return nil, fmt.Errorf("read catalog artifact %q: %w", path, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			id, title, genres, overview, cast string
			year                              int
			embedding                         any
		)
		if err := rows.Scan(&id, &title, &year, &genres, &overview, &cast, &embedding); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}

		vec, err := toFloat32Slice(embedding)
		if err != nil {
			return nil, &FormatError{MovieID: id, Err: err}
		}

		records = append(records, Record{
			Movie: Movie{
				ID:       id,
				Title:    title,
				Year:     year,
				Genres:   splitNames(genres),
				Overview: overview,
				Cast:     splitNames(cast),
			},
			Embedding: vec,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog rows: %w", err)
	}

	return records, nil
}

// toFloat32Slice converts a DuckDB LIST column value to []float32.
// The driver surfaces lists as []any with float32 or float64 elements
// depending on the Parquet physical type.
func toFloat32Slice(v any) ([]float32, error) {
	switch vals := v.(type) {
	case []float32:
		return vals, nil
	case []any:
		out := make([]float32, len(vals))
		for i, el := range vals {
			switch f := el.(type) {
			case float32:
				out[i] = f
			case float64:
				out[i] = float32(f)
			default:
				return nil, fmt.Errorf("embedding element %d has type %T", i, el)
			}
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("embedding column is NULL")
	default:
		return nil, fmt.Errorf("embedding column has type %T", v)
	}
}

// splitNames splits a delimited name list ("Action, Comedy" or
// "Action|Comedy" depending on the source dataset) into trimmed parts.
func splitNames(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	sep := ","
	if strings.Contains(s, "|") {
		sep = "|"
	}

	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
