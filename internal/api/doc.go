// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the typed client for the learning platform backend.
//
// The backend owns accounts, the AI tutor, learning topics and the solution
// evaluator; this package only speaks its JSON contract. Requests carry the
// session token as a bearer header, idempotent reads are retried with
// exponential backoff, and the client throttles itself with a token bucket.
//
// Request and response logging never includes headers or bodies.
package api
