// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package supervisor runs the service's long-lived components under a
// suture supervision tree, restarting crashed services with backoff and
// reporting lifecycle events through structured logging.
package supervisor
