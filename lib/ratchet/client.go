// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package ratchet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ratchet-nac/pawl/lib/clock"
)

// AuthCookieName is the cookie ratchet uses to carry the operator
// session token.
const AuthCookieName = "X-Ratchet-Auth-Token"

// Endpoint paths, relative to the base URL.
const (
	EndpointListDevices  = "getdevs"
	EndpointAddDevice    = "adddev"
	EndpointEditDevice   = "editdev"
	EndpointRemoveDevice = "rmdev"
	EndpointListUsers    = "getusers"
	EndpointAddUser      = "adduser"
	EndpointEditUser     = "edituser"
	EndpointRemoveUser   = "rmuser"
	EndpointLogin        = "trylogin"
	EndpointLogout       = "hangup"
	EndpointLogged       = "logged"
	EndpointGetPolicy    = "getpolicy"
	EndpointPushPolicy   = "pushpolicy"
)

// Device is one trusted network as ratchet lists it.
type Device struct {
	NetworkID string `json:"network_id"`
}

// User is one operator account as ratchet lists it.
type User struct {
	Username string `json:"username"`
}

// Token is the operator's session cookie with its absolute expiry.
// A zero Expires means the server set no expiry (a session cookie).
type Token struct {
	Value   string
	Expires time.Time
}

// Expired reports whether the token has a non-zero expiry at or
// before now.
func (token Token) Expired(now time.Time) bool {
	return !token.Expires.IsZero() && !now.Before(token.Expires)
}

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the ratchet pawl API root (e.g.,
	// "https://ratchet.example.net/pawl/"). Endpoint paths are
	// resolved relative to it.
	BaseURL string

	// CookieName overrides the session cookie name. Defaults to
	// AuthCookieName.
	CookieName string

	// HTTPClient is used for all requests. If nil, a client with no
	// timeout is used; callers bound requests with their context.
	HTTPClient *http.Client

	// Logger receives one debug record per request. If nil,
	// slog.Default() is used.
	Logger *slog.Logger

	// Clock converts Max-Age cookie attributes into absolute expiry
	// times. If nil, the wall clock is used.
	Clock clock.Clock
}

// Client talks to one ratchet backend. It is safe for concurrent use:
// console commands run on separate goroutines and may share a Client.
type Client struct {
	baseURL    *url.URL
	cookieName string
	httpClient *http.Client
	logger     *slog.Logger
	clock      clock.Clock

	mu    sync.Mutex
	token *Token
}

// NewClient creates a client for the backend at config.BaseURL.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("ratchet: BaseURL is required")
	}
	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("ratchet: invalid BaseURL %q: %w", config.BaseURL, err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("ratchet: BaseURL %q must use http or https", config.BaseURL)
	}
	// Relative resolution drops the last path segment unless the base
	// ends in a slash: "/pawl" + "getdevs" would become "/getdevs".
	if !strings.HasSuffix(baseURL.Path, "/") {
		baseURL.Path += "/"
	}

	cookieName := config.CookieName
	if cookieName == "" {
		cookieName = AuthCookieName
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	wallClock := config.Clock
	if wallClock == nil {
		wallClock = clock.Real()
	}

	return &Client{
		baseURL:    baseURL,
		cookieName: cookieName,
		httpClient: httpClient,
		logger:     logger,
		clock:      wallClock,
	}, nil
}

// BaseURL returns the normalized base URL, always ending in "/".
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// CookieName returns the name of the session cookie.
func (c *Client) CookieName() string {
	return c.cookieName
}

// AuthToken returns the current session token, if any.
func (c *Client) AuthToken() (Token, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == nil {
		return Token{}, false
	}
	return *c.token, true
}

// SetAuthToken installs a session token, typically one restored from
// the persisted credential file.
func (c *Client) SetAuthToken(token Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token.Value == "" {
		c.token = nil
		return
	}
	c.token = &token
}

// ClearAuthToken drops the session token. Later requests are sent
// unauthenticated.
func (c *Client) ClearAuthToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = nil
}

// ListDevices fetches the trusted device networks.
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	var devices []Device
	if err := c.fetchJSON(ctx, EndpointListDevices, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// AddDevice creates a device network with its TACACS+ key.
func (c *Client) AddDevice(ctx context.Context, networkID, key string) (Result, error) {
	return c.mutate(ctx, EndpointAddDevice, []formField{
		{"network_id", networkID},
		{"key", key},
	})
}

// EditDevice replaces the TACACS+ key of an existing device network.
func (c *Client) EditDevice(ctx context.Context, networkID, key string) (Result, error) {
	return c.mutate(ctx, EndpointEditDevice, []formField{
		{"network_id", networkID},
		{"key", key},
	})
}

// RemoveDevice deletes a device network. Ratchet expects an empty key
// field alongside the network id.
func (c *Client) RemoveDevice(ctx context.Context, networkID string) (Result, error) {
	return c.mutate(ctx, EndpointRemoveDevice, []formField{
		{"network_id", networkID},
		{"key", ""},
	})
}

// ListUsers fetches the operator accounts.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.fetchJSON(ctx, EndpointListUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AddUser creates an account. The password travels in the passhash
// field; ratchet hashes it server-side.
func (c *Client) AddUser(ctx context.Context, username, password string) (Result, error) {
	return c.mutate(ctx, EndpointAddUser, []formField{
		{"username", username},
		{"passhash", password},
	})
}

// EditUser replaces the password of an existing account.
func (c *Client) EditUser(ctx context.Context, username, password string) (Result, error) {
	return c.mutate(ctx, EndpointEditUser, []formField{
		{"username", username},
		{"passhash", password},
	})
}

// RemoveUser deletes an account.
func (c *Client) RemoveUser(ctx context.Context, username string) (Result, error) {
	return c.mutate(ctx, EndpointRemoveUser, []formField{
		{"username", username},
	})
}

// GetPolicy fetches the command-authorization policy text verbatim.
func (c *Client) GetPolicy(ctx context.Context) (string, error) {
	result, err := c.do(ctx, http.MethodGet, EndpointGetPolicy, nil)
	if err != nil {
		return "", err
	}
	if result.StatusCode != http.StatusOK {
		return "", &StatusError{Endpoint: EndpointGetPolicy, StatusCode: result.StatusCode, Body: errorBody([]byte(result.Body))}
	}
	return result.Body, nil
}

// PushPolicy replaces the policy text. The whole text is sent as the
// single form field "policy".
func (c *Client) PushPolicy(ctx context.Context, policy string) (Result, error) {
	return c.mutate(ctx, EndpointPushPolicy, []formField{
		{"policy", policy},
	})
}

// Login authenticates with username and password. On a 200 response
// the session cookie ratchet sets is installed on the client and
// returned; callers persist it. Any other status leaves the client's
// token unchanged and returns ok=false.
func (c *Client) Login(ctx context.Context, username, password string) (token Token, ok bool, err error) {
	result, err := c.mutate(ctx, EndpointLogin, []formField{
		{"username", username},
		{"password", password},
	})
	if err != nil {
		return Token{}, false, err
	}
	if result.Outcome() != OutcomeAccepted {
		return Token{}, false, nil
	}
	token, found := c.AuthToken()
	if !found {
		return Token{}, false, fmt.Errorf("ratchet: %s accepted the credentials but set no %s cookie", EndpointLogin, c.cookieName)
	}
	return token, true, nil
}

// Logout asks ratchet to invalidate the session and drops the local
// token whatever the response.
func (c *Client) Logout(ctx context.Context) (Result, error) {
	result, err := c.mutate(ctx, EndpointLogout, nil)
	c.ClearAuthToken()
	return result, err
}

// Logged reports whether ratchet considers the current session valid.
// Any non-200 status is "not logged in"; err is non-nil only when the
// request itself failed.
func (c *Client) Logged(ctx context.Context) (bool, error) {
	result, err := c.do(ctx, http.MethodGet, EndpointLogged, nil)
	if err != nil {
		return false, err
	}
	return result.StatusCode == http.StatusOK, nil
}

// fetchJSON issues a GET and decodes a 200 JSON body into target.
func (c *Client) fetchJSON(ctx context.Context, endpoint string, target any) error {
	result, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if result.StatusCode != http.StatusOK {
		return &StatusError{Endpoint: endpoint, StatusCode: result.StatusCode, Body: errorBody([]byte(result.Body))}
	}
	if err := json.Unmarshal([]byte(result.Body), target); err != nil {
		return fmt.Errorf("ratchet: decoding %s response: %w", endpoint, err)
	}
	return nil
}

// mutate issues a POST with a multipart form body. Fields may be nil
// for endpoints that take no input.
func (c *Client) mutate(ctx context.Context, endpoint string, fields []formField) (Result, error) {
	return c.do(ctx, http.MethodPost, endpoint, fields)
}

// do sends one request and reads the whole response. The status code
// is never an error here; callers decide what each status means.
func (c *Client) do(ctx context.Context, method, endpoint string, fields []formField) (Result, error) {
	target := c.baseURL.ResolveReference(&url.URL{Path: endpoint})

	var body io.Reader
	var contentType string
	if method == http.MethodPost {
		form, formContentType, err := encodeForm(fields)
		if err != nil {
			return Result{}, err
		}
		body = form
		contentType = formContentType
	}

	request, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return Result{}, fmt.Errorf("ratchet: creating %s request: %w", endpoint, err)
	}
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	if token, ok := c.AuthToken(); ok {
		request.AddCookie(&http.Cookie{Name: c.cookieName, Value: token.Value})
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return Result{}, fmt.Errorf("ratchet: %s %s: %w", method, endpoint, err)
	}
	defer response.Body.Close()

	responseBody, err := readResponse(response.Body)
	if err != nil {
		return Result{}, fmt.Errorf("ratchet: reading %s response: %w", endpoint, err)
	}

	c.absorbCookies(response.Cookies())

	c.logger.Debug("ratchet request",
		"method", method,
		"endpoint", endpoint,
		"status", response.StatusCode,
		"outcome", Classify(response.StatusCode).String(),
	)

	return Result{StatusCode: response.StatusCode, Body: string(responseBody)}, nil
}

// absorbCookies updates the session token from Set-Cookie headers.
// A cookie with an empty value, a negative Max-Age, or an expiry in
// the past clears the token.
func (c *Client) absorbCookies(cookies []*http.Cookie) {
	now := c.clock.Now()
	for _, cookie := range cookies {
		if cookie.Name != c.cookieName {
			continue
		}
		token := Token{Value: cookie.Value}
		switch {
		case cookie.MaxAge > 0:
			token.Expires = now.Add(time.Duration(cookie.MaxAge) * time.Second)
		case cookie.MaxAge < 0:
			token.Value = ""
		case !cookie.Expires.IsZero():
			token.Expires = cookie.Expires
		}
		if token.Value == "" || token.Expired(now) {
			c.ClearAuthToken()
			continue
		}
		c.SetAuthToken(token)
	}
}
