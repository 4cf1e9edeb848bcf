// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds operator passwords outside the Go heap while
// pawl carries them from a prompt or file to a ratchet request.
//
// A [Buffer] is an anonymous mmap region locked into RAM (mlock) and
// excluded from core dumps (MADV_DONTDUMP). Close zeroes, unlocks and
// unmaps it; any later access panics.
//
// Construct with [FromBytes] (copies, then zeroes the source),
// [FromString] for test fixtures, or [ReadFile] for --password-file
// arguments. [Zero] scrubs an ordinary byte slice in place, for
// buffers such as a session file read that briefly held a token.
//
// Depends on golang.org/x/sys/unix. No pawl-internal dependencies.
package secret
