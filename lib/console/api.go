// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ratchet-nac/pawl/lib/ratchet"
)

// API is the part of *ratchet.Client the console calls. Tests supply
// an in-memory implementation.
type API interface {
	ListDevices(ctx context.Context) ([]ratchet.Device, error)
	AddDevice(ctx context.Context, networkID, key string) (ratchet.Result, error)
	EditDevice(ctx context.Context, networkID, key string) (ratchet.Result, error)
	RemoveDevice(ctx context.Context, networkID string) (ratchet.Result, error)

	ListUsers(ctx context.Context) ([]ratchet.User, error)
	AddUser(ctx context.Context, username, password string) (ratchet.Result, error)
	EditUser(ctx context.Context, username, password string) (ratchet.Result, error)
	RemoveUser(ctx context.Context, username string) (ratchet.Result, error)

	GetPolicy(ctx context.Context) (string, error)
	PushPolicy(ctx context.Context, policy string) (ratchet.Result, error)

	Login(ctx context.Context, username, password string) (ratchet.Token, bool, error)
	Logout(ctx context.Context) (ratchet.Result, error)
}

// SessionKeeper persists and clears the operator's session.
// *session.Keeper implements it.
type SessionKeeper interface {
	Remember() error
	Forget() error
}

// DefaultRequestTimeout bounds each ratchet request when
// Options.RequestTimeout is zero.
const DefaultRequestTimeout = 10 * time.Second

// backend issues ratchet requests as tea.Cmd functions, each with its
// own deadline.
type backend struct {
	api     API
	timeout time.Duration
}

// call runs request on a bubbletea goroutine with a fresh timeout
// context and delivers its message.
func (b backend) call(request func(ctx context.Context, api API) tea.Msg) tea.Cmd {
	api := b.api
	timeout := b.timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return request(ctx, api)
	}
}

// transition is a page's request to the shell to change pages.
type transition int

const (
	stay transition = iota
	// toLogin forgets the session and mounts the login page.
	toLogin
	// toWelcome mounts the welcome page.
	toWelcome
	// toReload remounts the current page, which refetches its data
	// and drops any responses still in flight for the old instance.
	toReload
)

// isUnauthorizedFetch reports whether a fetch error is a non-200
// response, which ratchet uses to mean the session is gone.
func isUnauthorizedFetch(err error) bool {
	var statusErr *ratchet.StatusError
	return errors.As(err, &statusErr)
}

// Caution texts shown when ratchet answers 503: the change was
// accepted but may not reach the enforcement point.
const (
	unavailableUpdateWarning = "Caution: ratchet not responding, update may not take effect."
	unavailableDeleteWarning = "Caution: ratchet not responding to pawl, update may not take effect."
)
