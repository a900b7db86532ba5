// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package recommend orchestrates the conversational recommendation
// pipeline: embed the user's message, fuse it into their taste vector,
// retrieve the most similar movies, and optionally explain the shortlist
// with a language model.
//
// State only mutates after a successful embedding, so failed turns are
// safe to retry; explanation failures degrade the response instead of
// failing it.
package recommend
