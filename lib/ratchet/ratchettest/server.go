// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

// Package ratchettest provides an in-memory ratchet pawl API for tests
// and local development.
//
// The server keeps devices, users, sessions and the policy text in
// memory. It enforces the same status-code contract the console relies
// on: 401 for unauthenticated calls, 409 when adding something that
// exists, 404 when editing something missing, 410 when removing
// something missing, and 400 for a policy with unbalanced parentheses.
// [Server.FailNext] forces one response code for an endpoint, which is
// how tests simulate a 503 from a ratchet that cannot reach its
// enforcement point.
//
// Typical test use:
//
//	server := ratchettest.New(ratchettest.Options{})
//	server.SeedUser("admin", "hunter2")
//	httpServer := server.Start(t)
//	client, _ := ratchet.NewClient(ratchet.ClientConfig{BaseURL: httpServer.URL})
package ratchettest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/ratchet-nac/pawl/lib/clock"
	"github.com/ratchet-nac/pawl/lib/ratchet"
)

// DefaultSessionTTL is the lifetime of a session created by trylogin
// when Options.SessionTTL is zero.
const DefaultSessionTTL = 12 * time.Hour

// maxFormMemory bounds the in-memory part of a parsed multipart body.
const maxFormMemory = 1 << 20

// Options configures a Server. The zero value is usable.
type Options struct {
	// PathPrefix mounts the API under a path (e.g., "/pawl"). Empty
	// mounts it at the root.
	PathPrefix string

	// CookieName is the session cookie name. Defaults to
	// ratchet.AuthCookieName.
	CookieName string

	// SessionTTL is the lifetime of a login session. Defaults to
	// DefaultSessionTTL.
	SessionTTL time.Duration

	// Clock decides session expiry. Defaults to the wall clock.
	Clock clock.Clock

	// BcryptCost is the cost for stored password hashes. Defaults to
	// bcrypt.MinCost so tests stay fast.
	BcryptCost int

	// Logger receives one record per request. Defaults to a logger
	// that discards everything.
	Logger *slog.Logger
}

// Call is one request the server received, recorded after form
// parsing and before any authentication or forced failure.
type Call struct {
	Method   string
	Endpoint string
	Form     url.Values
}

type device struct {
	networkID string
	key       string
}

type user struct {
	username string
	hash     []byte
}

// Server is an in-memory ratchet backend. It is safe for concurrent
// use.
type Server struct {
	cookieName string
	sessionTTL time.Duration
	clock      clock.Clock
	bcryptCost int
	logger     *slog.Logger
	router     *mux.Router

	mu       sync.Mutex
	devices  []device
	users    []user
	sessions map[string]time.Time
	policy   string
	failNext map[string][]int
	calls    []Call
}

// New creates a server with no devices, no users and an empty policy.
func New(options Options) *Server {
	server := &Server{
		cookieName: options.CookieName,
		sessionTTL: options.SessionTTL,
		clock:      options.Clock,
		bcryptCost: options.BcryptCost,
		logger:     options.Logger,
		sessions:   make(map[string]time.Time),
		failNext:   make(map[string][]int),
	}
	if server.cookieName == "" {
		server.cookieName = ratchet.AuthCookieName
	}
	if server.sessionTTL <= 0 {
		server.sessionTTL = DefaultSessionTTL
	}
	if server.clock == nil {
		server.clock = clock.Real()
	}
	if server.bcryptCost == 0 {
		server.bcryptCost = bcrypt.MinCost
	}
	if server.logger == nil {
		server.logger = slog.New(slog.DiscardHandler)
	}

	server.router = mux.NewRouter()
	router := server.router
	if prefix := strings.TrimRight(options.PathPrefix, "/"); prefix != "" {
		router = server.router.PathPrefix(prefix).Subrouter()
	}

	server.route(router, ratchet.EndpointListDevices, http.MethodGet, true, server.handleListDevices)
	server.route(router, ratchet.EndpointAddDevice, http.MethodPost, true, server.handleAddDevice)
	server.route(router, ratchet.EndpointEditDevice, http.MethodPost, true, server.handleEditDevice)
	server.route(router, ratchet.EndpointRemoveDevice, http.MethodPost, true, server.handleRemoveDevice)
	server.route(router, ratchet.EndpointListUsers, http.MethodGet, true, server.handleListUsers)
	server.route(router, ratchet.EndpointAddUser, http.MethodPost, true, server.handleAddUser)
	server.route(router, ratchet.EndpointEditUser, http.MethodPost, true, server.handleEditUser)
	server.route(router, ratchet.EndpointRemoveUser, http.MethodPost, true, server.handleRemoveUser)
	server.route(router, ratchet.EndpointGetPolicy, http.MethodGet, true, server.handleGetPolicy)
	server.route(router, ratchet.EndpointPushPolicy, http.MethodPost, true, server.handlePushPolicy)
	server.route(router, ratchet.EndpointLogin, http.MethodPost, false, server.handleLogin)
	server.route(router, ratchet.EndpointLogout, http.MethodPost, false, server.handleLogout)
	server.route(router, ratchet.EndpointLogged, http.MethodGet, false, server.handleLogged)

	return server
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	s.router.ServeHTTP(writer, request)
}

// Start serves the server on a loopback httptest.Server that is
// closed when the test ends.
func (s *Server) Start(tb testing.TB) *httptest.Server {
	tb.Helper()
	httpServer := httptest.NewServer(s)
	tb.Cleanup(httpServer.Close)
	return httpServer
}

// SeedDevice adds a device without going through the API. Seeding an
// existing network id replaces its key.
func (s *Server) SeedDevice(networkID, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index := s.deviceIndex(networkID); index >= 0 {
		s.devices[index].key = key
		return
	}
	s.devices = append(s.devices, device{networkID: networkID, key: key})
}

// SeedUser adds an account without going through the API.
func (s *Server) SeedUser(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("ratchettest: hashing password for %q: %w", username, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if index := s.userIndex(username); index >= 0 {
		s.users[index].hash = hash
		return nil
	}
	s.users = append(s.users, user{username: username, hash: hash})
	return nil
}

// SetPolicy replaces the stored policy text.
func (s *Server) SetPolicy(policy string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy = policy
}

// Policy returns the stored policy text.
func (s *Server) Policy() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy
}

// Devices returns the stored network ids in insertion order.
func (s *Server) Devices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	networkIDs := make([]string, len(s.devices))
	for index, entry := range s.devices {
		networkIDs[index] = entry.networkID
	}
	return networkIDs
}

// DeviceKey returns the TACACS+ key stored for a network id.
func (s *Server) DeviceKey(networkID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := s.deviceIndex(networkID)
	if index < 0 {
		return "", false
	}
	return s.devices[index].key, true
}

// Users returns the stored usernames in insertion order.
func (s *Server) Users() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	usernames := make([]string, len(s.users))
	for index, entry := range s.users {
		usernames[index] = entry.username
	}
	return usernames
}

// CheckPassword reports whether password matches the stored hash for
// username.
func (s *Server) CheckPassword(username, password string) bool {
	s.mu.Lock()
	index := s.userIndex(username)
	var hash []byte
	if index >= 0 {
		hash = s.users[index].hash
	}
	s.mu.Unlock()
	if hash == nil {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// IssueSession creates a session token directly, bypassing trylogin.
// Returns the token and its expiry.
func (s *Server) IssueSession() (string, time.Time) {
	token := uuid.NewString()
	expires := s.clock.Now().Add(s.sessionTTL)
	s.mu.Lock()
	s.sessions[token] = expires
	s.mu.Unlock()
	return token, expires
}

// SessionCount returns the number of live, unexpired sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	count := 0
	for _, expires := range s.sessions {
		if now.Before(expires) {
			count++
		}
	}
	return count
}

// FailNext makes the next request to endpoint answer with statusCode
// without touching any state. Calls queue: FailNext twice fails the
// next two requests.
func (s *Server) FailNext(endpoint string, statusCode int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[endpoint] = append(s.failNext[endpoint], statusCode)
}

// Calls returns every request received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// CallsTo returns the requests received for one endpoint.
func (s *Server) CallsTo(endpoint string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matching []Call
	for _, call := range s.calls {
		if call.Endpoint == endpoint {
			matching = append(matching, call)
		}
	}
	return matching
}

// route registers one endpoint. Every endpoint shares the same
// preamble: parse the form, record the call, apply any forced failure,
// then check the session when requireAuth is set.
func (s *Server) route(router *mux.Router, endpoint, method string, requireAuth bool, handler http.HandlerFunc) {
	router.HandleFunc("/"+endpoint, func(writer http.ResponseWriter, request *http.Request) {
		if err := parseForm(request); err != nil {
			s.respond(writer, endpoint, http.StatusBadRequest, "malformed form body")
			return
		}
		s.record(endpoint, request)

		if statusCode, forced := s.takeFailure(endpoint); forced {
			s.respond(writer, endpoint, statusCode, http.StatusText(statusCode))
			return
		}
		if requireAuth && !s.authenticated(request) {
			s.respond(writer, endpoint, http.StatusUnauthorized, "not logged in")
			return
		}
		handler(writer, request)
	}).Methods(method)
}

func parseForm(request *http.Request) error {
	if request.Method != http.MethodPost {
		return nil
	}
	err := request.ParseMultipartForm(maxFormMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		// ParseMultipartForm has already parsed a urlencoded body.
		return nil
	}
	return err
}

func (s *Server) record(endpoint string, request *http.Request) {
	form := url.Values{}
	for name, values := range request.PostForm {
		form[name] = slices.Clone(values)
	}
	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: request.Method, Endpoint: endpoint, Form: form})
	s.mu.Unlock()
}

func (s *Server) takeFailure(endpoint string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.failNext[endpoint]
	if len(queue) == 0 {
		return 0, false
	}
	statusCode := queue[0]
	s.failNext[endpoint] = queue[1:]
	return statusCode, true
}

// authenticated reports whether the request carries a live session
// cookie. Expired sessions are evicted on sight.
func (s *Server) authenticated(request *http.Request) bool {
	cookie, err := request.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	expires, ok := s.sessions[cookie.Value]
	if !ok {
		return false
	}
	if !s.clock.Now().Before(expires) {
		delete(s.sessions, cookie.Value)
		return false
	}
	return true
}

func (s *Server) respond(writer http.ResponseWriter, endpoint string, statusCode int, message string) {
	s.logger.Debug("ratchettest response", "endpoint", endpoint, "status", statusCode)
	writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	writer.WriteHeader(statusCode)
	fmt.Fprintln(writer, message)
}

func (s *Server) deviceIndex(networkID string) int {
	return slices.IndexFunc(s.devices, func(entry device) bool { return entry.networkID == networkID })
}

func (s *Server) userIndex(username string) int {
	return slices.IndexFunc(s.users, func(entry user) bool { return entry.username == username })
}
