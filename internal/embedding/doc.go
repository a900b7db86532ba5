// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package embedding turns free-text movie preferences into vectors via an
// OpenAI-compatible embeddings API. The HTTP client carries a circuit
// breaker and an outbound rate limiter so backend trouble degrades requests
// instead of piling them up.
package embedding
