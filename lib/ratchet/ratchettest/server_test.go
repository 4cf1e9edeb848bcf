// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package ratchettest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ratchet-nac/pawl/lib/clock"
	"github.com/ratchet-nac/pawl/lib/ratchet"
)

// post sends a urlencoded form directly to the handler, bypassing the
// client, so the tests exercise the server's own parsing.
func post(t *testing.T, server *Server, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		request.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, request)
	return recorder
}

func get(t *testing.T, server *Server, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		request.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, request)
	return recorder
}

func sessionCookie(server *Server) *http.Cookie {
	token, _ := server.IssueSession()
	return &http.Cookie{Name: ratchet.AuthCookieName, Value: token}
}

func TestUnauthenticatedCallsAreRejected(t *testing.T) {
	server := New(Options{})
	for _, path := range []string{"/getdevs", "/getusers", "/getpolicy"} {
		if code := get(t, server, path, nil).Code; code != http.StatusUnauthorized {
			t.Errorf("GET %s without session = %d, want 401", path, code)
		}
	}
	for _, path := range []string{"/adddev", "/editdev", "/rmdev", "/adduser", "/edituser", "/rmuser", "/pushpolicy"} {
		if code := post(t, server, path, url.Values{}, nil).Code; code != http.StatusUnauthorized {
			t.Errorf("POST %s without session = %d, want 401", path, code)
		}
	}
}

func TestStatusContract(t *testing.T) {
	server := New(Options{})
	cookie := sessionCookie(server)
	server.SeedDevice("10.0.0.0/24", "k")
	if err := server.SeedUser("admin", "pw"); err != nil {
		t.Fatalf("SeedUser: %v", err)
	}

	tests := []struct {
		name string
		path string
		form url.Values
		want int
	}{
		{"add existing device", "/adddev", url.Values{"network_id": {"10.0.0.0/24"}, "key": {"k"}}, http.StatusConflict},
		{"edit missing device", "/editdev", url.Values{"network_id": {"10.9.0.0/16"}, "key": {"k"}}, http.StatusNotFound},
		{"remove missing device", "/rmdev", url.Values{"network_id": {"10.9.0.0/16"}, "key": {""}}, http.StatusGone},
		{"add device without key", "/adddev", url.Values{"network_id": {"10.1.0.0/16"}}, http.StatusBadRequest},
		{"add existing user", "/adduser", url.Values{"username": {"admin"}, "passhash": {"x"}}, http.StatusConflict},
		{"edit missing user", "/edituser", url.Values{"username": {"ghost"}, "passhash": {"x"}}, http.StatusNotFound},
		{"remove missing user", "/rmuser", url.Values{"username": {"ghost"}}, http.StatusGone},
		{"unbalanced policy", "/pushpolicy", url.Values{"policy": {"(permit"}}, http.StatusBadRequest},
		{"closing before opening", "/pushpolicy", url.Values{"policy": {")("}}, http.StatusBadRequest},
		{"balanced policy", "/pushpolicy", url.Values{"policy": {"$\n(\n)\n"}}, http.StatusOK},
		{"remove existing device", "/rmdev", url.Values{"network_id": {"10.0.0.0/24"}, "key": {""}}, http.StatusOK},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if code := post(t, server, test.path, test.form, cookie).Code; code != test.want {
				t.Errorf("POST %s = %d, want %d", test.path, code, test.want)
			}
		})
	}
}

func TestFailNext(t *testing.T) {
	server := New(Options{})
	cookie := sessionCookie(server)
	server.FailNext(ratchet.EndpointAddDevice, http.StatusServiceUnavailable)

	form := url.Values{"network_id": {"10.0.0.0/24"}, "key": {"k"}}
	if code := post(t, server, "/adddev", form, cookie).Code; code != http.StatusServiceUnavailable {
		t.Fatalf("first adddev = %d, want forced 503", code)
	}
	if devices := server.Devices(); len(devices) != 0 {
		t.Errorf("forced failure changed state: %v", devices)
	}
	if code := post(t, server, "/adddev", form, cookie).Code; code != http.StatusOK {
		t.Errorf("second adddev = %d, want 200", code)
	}
	if calls := server.CallsTo(ratchet.EndpointAddDevice); len(calls) != 2 {
		t.Errorf("recorded %d adddev calls, want 2", len(calls))
	}
}

func TestLoginSetsExpiringCookie(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fake := clock.Fake(start)
	server := New(Options{Clock: fake, SessionTTL: time.Hour})
	if err := server.SeedUser("admin", "pw"); err != nil {
		t.Fatalf("SeedUser: %v", err)
	}

	if code := post(t, server, "/trylogin", url.Values{"username": {"admin"}, "password": {"bad"}}, nil).Code; code != http.StatusUnauthorized {
		t.Errorf("bad login = %d, want 401", code)
	}

	recorder := post(t, server, "/trylogin", url.Values{"username": {"admin"}, "password": {"pw"}}, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("login = %d, want 200", recorder.Code)
	}
	cookies := recorder.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != ratchet.AuthCookieName {
		t.Fatalf("cookies = %v, want one %s", cookies, ratchet.AuthCookieName)
	}
	cookie := &http.Cookie{Name: cookies[0].Name, Value: cookies[0].Value}

	if code := get(t, server, "/logged", cookie).Code; code != http.StatusOK {
		t.Errorf("logged = %d, want 200", code)
	}
	fake.Advance(time.Hour)
	if code := get(t, server, "/logged", cookie).Code; code != http.StatusUnauthorized {
		t.Errorf("logged after TTL = %d, want 401", code)
	}
	if server.SessionCount() != 0 {
		t.Errorf("SessionCount() = %d after expiry, want 0", server.SessionCount())
	}
}

func TestPathPrefix(t *testing.T) {
	server := New(Options{PathPrefix: "/pawl/"})
	cookie := sessionCookie(server)
	if code := get(t, server, "/pawl/getdevs", cookie).Code; code != http.StatusOK {
		t.Errorf("GET /pawl/getdevs = %d, want 200", code)
	}
	if code := get(t, server, "/getdevs", cookie).Code; code != http.StatusNotFound {
		t.Errorf("GET /getdevs outside prefix = %d, want 404", code)
	}
}

func TestEmptyListsEncodeAsArrays(t *testing.T) {
	server := New(Options{})
	cookie := sessionCookie(server)
	if body := strings.TrimSpace(get(t, server, "/getdevs", cookie).Body.String()); body != "[]" {
		t.Errorf("empty getdevs body = %q, want []", body)
	}
}
