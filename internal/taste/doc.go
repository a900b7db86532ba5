// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package taste tracks each user's evolving preference vector across
// conversation turns.
//
// A user's first request sets their taste vector directly; every later
// request is fused in exponentially (fused = normalize(alpha*old +
// (1-alpha)*new)), so recent asks shift the profile without erasing it.
// The store also keeps a short window of the raw request texts, which the
// explanation layer uses as conversational context.
//
// Two implementations are provided: MemoryStore for tests and ephemeral
// deployments, and BadgerStore for durable profiles. Both serialize
// concurrent updates per user on lock stripes.
package taste
