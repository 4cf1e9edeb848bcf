// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package ratchet_test

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ratchet-nac/pawl/lib/clock"
	"github.com/ratchet-nac/pawl/lib/ratchet"
	"github.com/ratchet-nac/pawl/lib/ratchet/ratchettest"
)

// loggedInClient starts a mock backend with one operator account and
// returns a client that has already logged in.
func loggedInClient(t *testing.T) (*ratchet.Client, *ratchettest.Server) {
	t.Helper()
	backend := ratchettest.New(ratchettest.Options{})
	if err := backend.SeedUser("admin", "hunter2"); err != nil {
		t.Fatalf("SeedUser: %v", err)
	}
	httpServer := backend.Start(t)

	client, err := ratchet.NewClient(ratchet.ClientConfig{BaseURL: httpServer.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, ok, err := client.Login(context.Background(), "admin", "hunter2"); err != nil || !ok {
		t.Fatalf("Login: ok=%v err=%v", ok, err)
	}
	return client, backend
}

func TestNewClient(t *testing.T) {
	t.Run("valid URL", func(t *testing.T) {
		client, err := ratchet.NewClient(ratchet.ClientConfig{BaseURL: "http://localhost:8000/pawl"})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		if got := client.BaseURL(); got != "http://localhost:8000/pawl/" {
			t.Errorf("BaseURL() = %q, want trailing slash added", got)
		}
		if got := client.CookieName(); got != ratchet.AuthCookieName {
			t.Errorf("CookieName() = %q, want %q", got, ratchet.AuthCookieName)
		}
	})

	t.Run("empty URL", func(t *testing.T) {
		if _, err := ratchet.NewClient(ratchet.ClientConfig{}); err == nil {
			t.Fatal("expected error for empty URL")
		}
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		if _, err := ratchet.NewClient(ratchet.ClientConfig{BaseURL: "ftp://ratchet"}); err == nil {
			t.Fatal("expected error for ftp scheme")
		}
	})

	t.Run("invalid URL", func(t *testing.T) {
		if _, err := ratchet.NewClient(ratchet.ClientConfig{BaseURL: "://invalid"}); err == nil {
			t.Fatal("expected error for invalid URL")
		}
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		statusCode int
		want       ratchet.Outcome
	}{
		{http.StatusOK, ratchet.OutcomeAccepted},
		{http.StatusGone, ratchet.OutcomeGone},
		{http.StatusServiceUnavailable, ratchet.OutcomeUnavailable},
		{http.StatusUnauthorized, ratchet.OutcomeUnauthorized},
		{http.StatusConflict, ratchet.OutcomeRejected},
		{http.StatusNotFound, ratchet.OutcomeRejected},
		{http.StatusInternalServerError, ratchet.OutcomeRejected},
		{http.StatusCreated, ratchet.OutcomeRejected},
	}
	for _, test := range tests {
		if got := ratchet.Classify(test.statusCode); got != test.want {
			t.Errorf("Classify(%d) = %v, want %v", test.statusCode, got, test.want)
		}
	}
}

func TestRelativeEndpoints(t *testing.T) {
	var paths []string
	httpServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		paths = append(paths, request.URL.Path)
		writer.Write([]byte("[]"))
	}))
	defer httpServer.Close()

	client, err := ratchet.NewClient(ratchet.ClientConfig{BaseURL: httpServer.URL + "/pawl"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.ListDevices(context.Background()); err != nil {
		t.Fatalf("ListDevices: %v", err)
	}
	if _, err := client.ListUsers(context.Background()); err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	want := []string{"/pawl/getdevs", "/pawl/getusers"}
	if strings.Join(paths, ",") != strings.Join(want, ",") {
		t.Errorf("request paths = %v, want %v", paths, want)
	}
}

func TestMutationsUseMultipartForms(t *testing.T) {
	var contentType string
	var fields map[string]string
	httpServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		contentType = request.Header.Get("Content-Type")
		if err := request.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		fields = make(map[string]string)
		for name, values := range request.MultipartForm.Value {
			fields[name] = values[0]
		}
	}))
	defer httpServer.Close()

	client, err := ratchet.NewClient(ratchet.ClientConfig{BaseURL: httpServer.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.RemoveDevice(context.Background(), "10.0.0.0/24"); err != nil {
		t.Fatalf("RemoveDevice: %v", err)
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "multipart/form-data" {
		t.Fatalf("Content-Type = %q, want multipart/form-data", contentType)
	}
	if fields["network_id"] != "10.0.0.0/24" {
		t.Errorf("network_id = %q, want 10.0.0.0/24", fields["network_id"])
	}
	key, present := fields["key"]
	if !present || key != "" {
		t.Errorf("key field = %q (present=%v), want empty and present", key, present)
	}
}

func TestLogin(t *testing.T) {
	backend := ratchettest.New(ratchettest.Options{})
	if err := backend.SeedUser("admin", "hunter2"); err != nil {
		t.Fatalf("SeedUser: %v", err)
	}
	httpServer := backend.Start(t)

	t.Run("wrong password", func(t *testing.T) {
		client, _ := ratchet.NewClient(ratchet.ClientConfig{BaseURL: httpServer.URL})
		_, ok, err := client.Login(context.Background(), "admin", "wrong")
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if ok {
			t.Fatal("Login with wrong password reported success")
		}
		if _, found := client.AuthToken(); found {
			t.Error("client holds a token after a failed login")
		}
	})

	t.Run("correct password", func(t *testing.T) {
		client, _ := ratchet.NewClient(ratchet.ClientConfig{BaseURL: httpServer.URL})
		token, ok, err := client.Login(context.Background(), "admin", "hunter2")
		if err != nil || !ok {
			t.Fatalf("Login: ok=%v err=%v", ok, err)
		}
		if token.Value == "" {
			t.Fatal("Login returned an empty token")
		}
		if token.Expires.IsZero() {
			t.Error("Login token has no expiry")
		}
		logged, err := client.Logged(context.Background())
		if err != nil || !logged {
			t.Errorf("Logged() = %v, %v; want true", logged, err)
		}
	})
}

func TestTokenExpiryFromMaxAge(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fake := clock.Fake(start)
	httpServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		http.SetCookie(writer, &http.Cookie{Name: ratchet.AuthCookieName, Value: "token-1", MaxAge: 3600})
	}))
	defer httpServer.Close()

	client, _ := ratchet.NewClient(ratchet.ClientConfig{BaseURL: httpServer.URL, Clock: fake})
	token, ok, err := client.Login(context.Background(), "admin", "hunter2")
	if err != nil || !ok {
		t.Fatalf("Login: ok=%v err=%v", ok, err)
	}
	if want := start.Add(time.Hour); !token.Expires.Equal(want) {
		t.Errorf("Expires = %v, want %v", token.Expires, want)
	}
	if token.Expired(start.Add(59 * time.Minute)) {
		t.Error("token expired before its Max-Age")
	}
	if !token.Expired(start.Add(time.Hour)) {
		t.Error("token not expired at its Max-Age")
	}
}

func TestLoginWithoutCookie(t *testing.T) {
	httpServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {}))
	defer httpServer.Close()

	client, _ := ratchet.NewClient(ratchet.ClientConfig{BaseURL: httpServer.URL})
	if _, _, err := client.Login(context.Background(), "admin", "hunter2"); err == nil {
		t.Fatal("expected error when trylogin sets no cookie")
	}
}

func TestLogoutClearsToken(t *testing.T) {
	client, backend := loggedInClient(t)
	if backend.SessionCount() != 1 {
		t.Fatalf("SessionCount() = %d, want 1", backend.SessionCount())
	}
	result, err := client.Logout(context.Background())
	if err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if result.Outcome() != ratchet.OutcomeAccepted {
		t.Errorf("Logout outcome = %v, want accepted", result.Outcome())
	}
	if _, found := client.AuthToken(); found {
		t.Error("client holds a token after logout")
	}
	if backend.SessionCount() != 0 {
		t.Errorf("SessionCount() = %d after logout, want 0", backend.SessionCount())
	}
	logged, err := client.Logged(context.Background())
	if err != nil || logged {
		t.Errorf("Logged() = %v, %v after logout; want false", logged, err)
	}
}

func TestDeviceLifecycle(t *testing.T) {
	client, backend := loggedInClient(t)
	ctx := context.Background()

	result, err := client.AddDevice(ctx, "10.0.0.0/24", "secret")
	if err != nil || result.Outcome() != ratchet.OutcomeAccepted {
		t.Fatalf("AddDevice: %v, %v", result, err)
	}

	result, err = client.AddDevice(ctx, "10.0.0.0/24", "other")
	if err != nil {
		t.Fatalf("AddDevice duplicate: %v", err)
	}
	if result.Outcome() != ratchet.OutcomeRejected {
		t.Errorf("duplicate AddDevice outcome = %v, want rejected", result.Outcome())
	}

	devices, err := client.ListDevices(ctx)
	if err != nil {
		t.Fatalf("ListDevices: %v", err)
	}
	if len(devices) != 1 || devices[0].NetworkID != "10.0.0.0/24" {
		t.Fatalf("ListDevices = %v, want one 10.0.0.0/24", devices)
	}

	if result, _ := client.EditDevice(ctx, "10.0.0.0/24", "rotated"); result.Outcome() != ratchet.OutcomeAccepted {
		t.Errorf("EditDevice outcome = %v", result.Outcome())
	}
	if key, _ := backend.DeviceKey("10.0.0.0/24"); key != "rotated" {
		t.Errorf("stored key = %q, want rotated", key)
	}
	if result, _ := client.EditDevice(ctx, "192.168.0.0/16", "x"); result.Outcome() != ratchet.OutcomeRejected {
		t.Errorf("EditDevice on missing outcome = %v, want rejected", result.Outcome())
	}

	if result, _ := client.RemoveDevice(ctx, "10.0.0.0/24"); result.Outcome() != ratchet.OutcomeAccepted {
		t.Errorf("RemoveDevice outcome = %v", result.Outcome())
	}
	if result, _ := client.RemoveDevice(ctx, "10.0.0.0/24"); result.Outcome() != ratchet.OutcomeGone {
		t.Errorf("second RemoveDevice outcome = %v, want gone", result.Outcome())
	}
}

func TestUserLifecycle(t *testing.T) {
	client, backend := loggedInClient(t)
	ctx := context.Background()

	if result, _ := client.AddUser(ctx, "operator", "pw1"); result.Outcome() != ratchet.OutcomeAccepted {
		t.Fatalf("AddUser outcome = %v", result.Outcome())
	}
	if result, _ := client.AddUser(ctx, "operator", "pw1"); result.Outcome() != ratchet.OutcomeRejected {
		t.Errorf("duplicate AddUser outcome = %v, want rejected", result.Outcome())
	}
	if result, _ := client.EditUser(ctx, "operator", "pw2"); result.Outcome() != ratchet.OutcomeAccepted {
		t.Errorf("EditUser outcome = %v", result.Outcome())
	}
	if !backend.CheckPassword("operator", "pw2") {
		t.Error("EditUser did not change the stored password")
	}

	users, err := client.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 || users[0].Username != "admin" || users[1].Username != "operator" {
		t.Errorf("ListUsers = %v, want [admin operator]", users)
	}

	if result, _ := client.RemoveUser(ctx, "operator"); result.Outcome() != ratchet.OutcomeAccepted {
		t.Errorf("RemoveUser outcome = %v", result.Outcome())
	}
	if result, _ := client.RemoveUser(ctx, "operator"); result.Outcome() != ratchet.OutcomeGone {
		t.Errorf("second RemoveUser outcome = %v, want gone", result.Outcome())
	}
}

func TestPolicy(t *testing.T) {
	client, backend := loggedInClient(t)
	ctx := context.Background()

	result, err := client.PushPolicy(ctx, "permit all\n")
	if err != nil || result.Outcome() != ratchet.OutcomeAccepted {
		t.Fatalf("PushPolicy: %v, %v", result, err)
	}
	if backend.Policy() != "permit all\n" {
		t.Errorf("stored policy = %q", backend.Policy())
	}
	policy, err := client.GetPolicy(ctx)
	if err != nil {
		t.Fatalf("GetPolicy: %v", err)
	}
	if policy != "permit all\n" {
		t.Errorf("GetPolicy = %q, want verbatim text", policy)
	}

	if result, _ := client.PushPolicy(ctx, "$\n(\n"); result.Outcome() != ratchet.OutcomeRejected {
		t.Errorf("unbalanced policy outcome = %v, want rejected", result.Outcome())
	}
}

func TestUnauthenticatedFetchReturnsStatusError(t *testing.T) {
	backend := ratchettest.New(ratchettest.Options{})
	httpServer := backend.Start(t)
	client, _ := ratchet.NewClient(ratchet.ClientConfig{BaseURL: httpServer.URL})

	_, err := client.ListDevices(context.Background())
	var statusErr *ratchet.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("ListDevices error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusUnauthorized || statusErr.Endpoint != ratchet.EndpointListDevices {
		t.Errorf("StatusError = %+v", statusErr)
	}
	if statusErr.Outcome() != ratchet.OutcomeUnauthorized {
		t.Errorf("Outcome() = %v, want unauthorized", statusErr.Outcome())
	}

	result, err := client.AddDevice(context.Background(), "10.0.0.0/24", "k")
	if err != nil {
		t.Fatalf("AddDevice transport error: %v", err)
	}
	if result.Outcome() != ratchet.OutcomeUnauthorized {
		t.Errorf("AddDevice outcome = %v, want unauthorized", result.Outcome())
	}
}

func TestTransportFailureIsPlainError(t *testing.T) {
	httpServer := httptest.NewServer(http.NotFoundHandler())
	baseURL := httpServer.URL
	httpServer.Close()

	client, _ := ratchet.NewClient(ratchet.ClientConfig{BaseURL: baseURL})
	_, err := client.AddDevice(context.Background(), "10.0.0.0/24", "k")
	if err == nil {
		t.Fatal("expected a transport error against a closed server")
	}
	var statusErr *ratchet.StatusError
	if errors.As(err, &statusErr) {
		t.Errorf("transport failure reported as StatusError: %v", err)
	}
}

func TestContextCancellation(t *testing.T) {
	backend := ratchettest.New(ratchettest.Options{})
	httpServer := backend.Start(t)
	client, _ := ratchet.NewClient(ratchet.ClientConfig{BaseURL: httpServer.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.ListUsers(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("ListUsers with cancelled context = %v, want context.Canceled", err)
	}
}
