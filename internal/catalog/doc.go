// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package catalog holds the fixed collection of movie embeddings and answers
// top-K cosine-similarity queries against it.
//
// The catalog is loaded once from a Parquet artifact (see LoadParquet) and
// served as an immutable snapshot behind an atomic pointer: queries are
// lock-free, and a reload swaps the whole snapshot so readers never observe
// a partial catalog. A failed reload leaves the previous snapshot serving.
//
// Ranking is a brute-force linear scan over unit-normalized embeddings with
// a stable sort - deterministic by construction, and fast enough for the
// catalog sizes this system targets (thousands to low tens of thousands).
package catalog
