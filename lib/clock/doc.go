// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for testability.
//
// Code that compares against the current time (credential expiry,
// cookie max-age arithmetic) accepts a Clock instead of calling
// time.Now directly. Production code uses Real(); tests use Fake(),
// which stands still until Advance or Set is called.
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	probe := session.CookieProbe{Keeper: keeper, Clock: c}
//	c.Advance(2 * time.Hour) // push past the credential's expiry
package clock
