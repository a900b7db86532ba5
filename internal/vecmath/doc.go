// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package vecmath provides the fixed-dimension vector primitives shared by
// the catalog index and the taste store: L2 normalization, cosine similarity
// over unit vectors, and the convex-combination fusion rule.
//
// All vectors are []float32 (matching the precomputed catalog artifact);
// dot products and norms accumulate in float64. Every vector that enters a
// similarity comparison must be unit-normalized first - Normalize and Fuse
// enforce this, and CosineSimilarity assumes it.
package vecmath
