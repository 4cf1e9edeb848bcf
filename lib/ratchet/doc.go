// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

// Package ratchet is the HTTP client for the ratchet pawl API: the
// endpoints an operator console uses to manage trusted devices, user
// accounts, the command-authorization policy, and the operator's own
// login session.
//
// Every endpoint is a path relative to the configured base URL
// (getdevs, adddev, rmdev, trylogin, ...). Mutating requests carry
// multipart/form-data bodies. The operator's session is a single
// cookie (default name [AuthCookieName]) which the [Client] captures
// from trylogin responses and attaches to every later request.
//
// Mutations do not fail on HTTP status codes. They return a [Result]
// whose [Result.Outcome] classifies the status into the five cases the
// console distinguishes:
//
//   - [OutcomeAccepted]: 200
//   - [OutcomeGone]: 410, the target was already removed
//   - [OutcomeUnavailable]: 503, ratchet accepted the change but could
//     not confirm it reached the enforcement point
//   - [OutcomeUnauthorized]: 401, the session is missing or expired
//   - [OutcomeRejected]: anything else
//
// Fetches (ListDevices, ListUsers, GetPolicy) return a *[StatusError]
// for any non-200 response. Only transport failures (connection
// refused, timeouts, unreadable bodies) are returned as plain errors
// from mutations.
//
// [ratchettest.Server] is an in-memory implementation of the same API
// for tests and local development.
package ratchet
