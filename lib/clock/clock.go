// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts reading the current time.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
