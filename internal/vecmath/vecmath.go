// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package vecmath

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors for vector operations.
var (
	// ErrZeroVector is returned when an operation requires a non-zero vector.
	// A zero vector cannot be normalized and usually indicates an upstream
	// embedding failure (e.g., an empty input slipped past validation).
	ErrZeroVector = errors.New("vecmath: zero vector")

	// ErrDimensionMismatch is returned when two vectors (or a vector and the
	// configured dimension) disagree on length.
	ErrDimensionMismatch = errors.New("vecmath: dimension mismatch")

	// ErrInvalidAlpha is returned when a fusion weight is outside [0, 1].
	ErrInvalidAlpha = errors.New("vecmath: alpha outside [0, 1]")
)

// Norm returns the Euclidean (L2) norm of v.
// Accumulation happens in float64 to limit rounding error on long vectors.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Normalize returns a unit-length copy of v. The input is never modified.
// Returns ErrZeroVector if v has zero norm (including the empty vector).
func Normalize(v []float32) ([]float32, error) {
	norm := Norm(v)
	if norm == 0 {
		return nil, ErrZeroVector
	}

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out, nil
}

// Dot returns the dot product of a and b.
// Returns ErrDimensionMismatch if the vectors differ in length.
func Dot(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum, nil
}

// CosineSimilarity returns the cosine similarity between a and b.
//
// Both inputs must already be unit-normalized; under that invariant the
// cosine reduces to a plain dot product, which is what the catalog index
// relies on for its ranking scores. The result lies in [-1, 1] up to
// floating-point error.
func CosineSimilarity(a, b []float32) (float64, error) {
	return Dot(a, b)
}

// Fuse blends a prior taste vector with a new signal:
//
//	fused = normalize(alpha*old + (1-alpha)*new)
//
// The convex combination of two unit vectors is generally shorter than unit
// length, so the result is re-normalized to keep every stored vector
// comparable under plain dot product.
//
// Returns ErrInvalidAlpha if alpha is outside [0, 1], ErrDimensionMismatch if
// the vectors differ in length, and ErrZeroVector if old and new cancel out
// exactly (antipodal vectors with alpha = 0.5).
func Fuse(old, new []float32, alpha float64) ([]float32, error) {
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAlpha, alpha)
	}
	if len(old) != len(new) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(old), len(new))
	}

	fused := make([]float32, len(old))
	for i := range old {
		fused[i] = float32(alpha*float64(old[i]) + (1-alpha)*float64(new[i]))
	}

	return Normalize(fused)
}
