// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

// Package session decides whether the operator is logged in to ratchet
// and keeps the session cookie across pawl invocations.
//
// A [Probe] answers "is the operator authenticated". Two exist:
// [CookieProbe] inspects the persisted credential (presence and expiry
// against an injected clock, no network), and [EndpointProbe] asks
// ratchet through the logged endpoint. A [Guard] runs one probe and
// calls its Redirect callback when the answer is no; probe errors
// count as no.
//
// The [Credential] file lives at [FilePath]: $PAWL_SESSION_FILE when
// set, otherwise $XDG_CONFIG_HOME/pawl/session.json (falling back to
// ~/.config). It is JSON, written with mode 0600 in a 0700 directory.
// A [Keeper] binds that file to a ratchet client: Restore installs a
// saved token at startup, Remember saves the token from a successful
// login, and Forget drops both the in-memory token and the file.
package session
