// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds entrypoint helpers for pawl's binaries: error
// reporting to stderr after run() returns, when no structured logger
// may exist yet.
package process
