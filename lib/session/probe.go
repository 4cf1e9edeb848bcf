// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ratchet-nac/pawl/lib/clock"
)

// Probe reports whether the operator is currently authenticated.
type Probe interface {
	Authenticated(ctx context.Context) (bool, error)
}

// CookieProbe answers from the persisted credential alone: a saved,
// non-empty token for Server that has not expired at Clock.Now().
type CookieProbe struct {
	Store *Store
	// Server must match the credential's server. Empty accepts any.
	Server string
	Clock  clock.Clock
}

// Authenticated implements Probe. A missing credential file is a
// plain "no"; unreadable or malformed files are returned as errors.
func (p *CookieProbe) Authenticated(ctx context.Context) (bool, error) {
	credential, err := p.Store.Load()
	if err != nil {
		if errors.Is(err, ErrNoCredential) {
			return false, nil
		}
		return false, err
	}
	if p.Server != "" && credential.Server != p.Server {
		return false, nil
	}
	now := clock.Real().Now()
	if p.Clock != nil {
		now = p.Clock.Now()
	}
	return credential.Valid(now), nil
}

// LoggedChecker is the part of the ratchet client EndpointProbe needs.
type LoggedChecker interface {
	Logged(ctx context.Context) (bool, error)
}

// EndpointProbe asks ratchet directly. Any non-200 from the logged
// endpoint is "not authenticated".
type EndpointProbe struct {
	Client LoggedChecker
}

// Authenticated implements Probe.
func (p *EndpointProbe) Authenticated(ctx context.Context) (bool, error) {
	return p.Client.Logged(ctx)
}

// Guard runs a Probe and redirects when it fails.
type Guard struct {
	Probe Probe
	// Redirect is called once per failed Check. Nil disables the
	// callback; Check still reports the result.
	Redirect func()
	// Logger records probe errors. Nil uses slog.Default().
	Logger *slog.Logger
}

// Check probes exactly once, with no retry. It returns true when the
// operator is authenticated; otherwise it calls Redirect and returns
// false. A probe error is logged and treated as unauthenticated.
func (g *Guard) Check(ctx context.Context) bool {
	authenticated, err := g.Probe.Authenticated(ctx)
	if err != nil {
		logger := g.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("session probe failed", "error", err)
		authenticated = false
	}
	if !authenticated && g.Redirect != nil {
		g.Redirect()
	}
	return authenticated
}
