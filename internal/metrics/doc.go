// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package metrics exposes Prometheus instrumentation for the
// recommendation pipeline, taste state, catalog, and HTTP layer.
// Collectors are registered with the default registry via promauto and
// served at /metrics.
package metrics
