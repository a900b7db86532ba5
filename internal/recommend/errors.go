// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"errors"
	"fmt"
)

// Sentinel errors for recommendation requests.
var (
	// ErrEmptyInput is returned when the request text is empty or
	// whitespace only. The user's taste state is left untouched.
	ErrEmptyInput = errors.New("recommend: empty input")

	// ErrInvalidK is returned when the requested result count is negative
	// or exceeds the configured maximum.
	ErrInvalidK = errors.New("recommend: invalid k")
)

// EmbeddingError wraps a failure to embed the user's input. The turn is
// aborted before any state mutation, so a retry starts clean.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("recommend: embedding failed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }
