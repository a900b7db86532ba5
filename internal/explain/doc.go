// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package explain turns retrieval candidates into a short human-readable
// recommendation list using a chat language model. Explanations are
// best-effort enrichment: when the backend is down the recommendation flow
// continues without them.
package explain
