// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package api is the HTTP surface of the recommendation service: a chi
// router with request-ID, logging, metrics, CORS, and rate-limit
// middleware, and handlers for recommendation turns, taste profiles, and
// catalog management. Every endpoint answers in one envelope shape.
package api
