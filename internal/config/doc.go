// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package config loads service configuration with koanf in three layers:
// struct defaults, an optional YAML file, and environment variables, with
// later layers overriding earlier ones. Cross-section invariants (catalog
// and embedding dimensions agreeing) are checked after unmarshaling.
package config
