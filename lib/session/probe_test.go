// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ratchet-nac/pawl/lib/clock"
)

type stubProbe struct {
	authenticated bool
	err           error
	calls         int
}

func (p *stubProbe) Authenticated(ctx context.Context) (bool, error) {
	p.calls++
	return p.authenticated, p.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCookieProbeExpiry(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	fake := clock.Fake(start)
	store := NewStore(filepath.Join(t.TempDir(), "session.json"))
	if err := store.Save(&Credential{Server: "http://ratchet.test/", Token: "t", Expires: start.Add(time.Hour)}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	probe := &CookieProbe{Store: store, Server: "http://ratchet.test/", Clock: fake}

	if ok, err := probe.Authenticated(context.Background()); err != nil || !ok {
		t.Fatalf("fresh credential: Authenticated() = %v, %v", ok, err)
	}
	fake.Advance(time.Hour)
	if ok, err := probe.Authenticated(context.Background()); err != nil || ok {
		t.Errorf("expired credential: Authenticated() = %v, %v; want false", ok, err)
	}
}

func TestCookieProbeMissingAndForeign(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "session.json"))
	probe := &CookieProbe{Store: store, Server: "http://ratchet.test/", Clock: clock.Fake(time.Now())}
	if ok, err := probe.Authenticated(context.Background()); err != nil || ok {
		t.Errorf("missing file: Authenticated() = %v, %v; want false, nil", ok, err)
	}

	if err := store.Save(&Credential{Server: "http://elsewhere.test/", Token: "t"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ok, _ := probe.Authenticated(context.Background()); ok {
		t.Error("credential for another server reported authenticated")
	}
}

func TestCookieProbeUnreadable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}
	probe := &CookieProbe{Store: NewStore(path)}
	if _, err := probe.Authenticated(context.Background()); err == nil {
		t.Error("malformed credential file produced no error")
	}
}

type stubLogged struct{ logged bool }

func (s stubLogged) Logged(ctx context.Context) (bool, error) { return s.logged, nil }

func TestEndpointProbe(t *testing.T) {
	t.Parallel()

	for _, logged := range []bool{true, false} {
		probe := &EndpointProbe{Client: stubLogged{logged: logged}}
		if ok, err := probe.Authenticated(context.Background()); err != nil || ok != logged {
			t.Errorf("EndpointProbe with logged=%v: %v, %v", logged, ok, err)
		}
	}
}

func TestGuardCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		probe         *stubProbe
		want          bool
		wantRedirects int
	}{
		{"authenticated", &stubProbe{authenticated: true}, true, 0},
		{"not authenticated", &stubProbe{}, false, 1},
		{"probe error counts as not authenticated", &stubProbe{authenticated: true, err: errors.New("connection refused")}, false, 1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			redirects := 0
			guard := &Guard{Probe: test.probe, Redirect: func() { redirects++ }, Logger: quietLogger()}
			if got := guard.Check(context.Background()); got != test.want {
				t.Errorf("Check() = %v, want %v", got, test.want)
			}
			if redirects != test.wantRedirects {
				t.Errorf("redirects = %d, want %d", redirects, test.wantRedirects)
			}
			if test.probe.calls != 1 {
				t.Errorf("probe called %d times, want exactly 1", test.probe.calls)
			}
		})
	}
}

func TestGuardWithoutRedirect(t *testing.T) {
	t.Parallel()

	guard := &Guard{Probe: &stubProbe{}, Logger: quietLogger()}
	if guard.Check(context.Background()) {
		t.Error("Check() = true for unauthenticated probe")
	}
}
