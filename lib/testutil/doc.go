// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for pawl packages.
//
// [IsolateConfig] points XDG_CONFIG_HOME, PAWL_CONFIG and
// PAWL_SESSION_FILE at a per-test temporary directory so tests never
// read or write the developer's real session file.
//
// [WriteFile] writes a fixture file into a directory and returns its
// path.
//
// [RequireReceive] encapsulates the timeout safety valve pattern
// (select with time.After fallback) for tests that wait on a channel,
// such as a log handler forwarding records to a program.
//
// [UniqueID] generates monotonically increasing identifiers so tests
// sharing one mock backend do not collide on network ids or
// usernames.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no pawl-internal dependencies.
package testutil
