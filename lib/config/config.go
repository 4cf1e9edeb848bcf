// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// ProbeKind selects how the console decides the operator is logged in.
type ProbeKind string

const (
	// ProbeEndpoint asks ratchet via the logged endpoint.
	ProbeEndpoint ProbeKind = "endpoint"
	// ProbeCookie inspects the saved credential's presence and expiry
	// without a network call.
	ProbeCookie ProbeKind = "cookie"
)

// Theme names a console color palette.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Config is pawl's configuration.
type Config struct {
	// Server is the ratchet pawl API base URL. Endpoint paths
	// (getdevs, trylogin, ...) are resolved relative to it.
	Server string `yaml:"server" json:"server"`

	// SessionFile overrides where the session credential is stored.
	// Empty uses the session package default.
	SessionFile string `yaml:"session_file" json:"session_file"`

	// CookieName is the session cookie ratchet sets on login.
	CookieName string `yaml:"cookie_name" json:"cookie_name"`

	// RequestTimeout bounds every ratchet request, in Go duration
	// syntax ("10s", "1m30s").
	RequestTimeout string `yaml:"request_timeout" json:"request_timeout"`

	// SessionProbe is "endpoint" or "cookie".
	SessionProbe ProbeKind `yaml:"session_probe" json:"session_probe"`

	// LogLevel is a slog level name: debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Theme is the console palette: dark or light.
	Theme Theme `yaml:"theme" json:"theme"`

	// Path is the file this configuration was loaded from, or empty
	// for built-in defaults.
	Path string `yaml:"-" json:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server:         "http://localhost:8000/",
		CookieName:     "X-Ratchet-Auth-Token",
		RequestTimeout: "10s",
		SessionProbe:   ProbeEndpoint,
		LogLevel:       "info",
		Theme:          ThemeDark,
	}
}

// Load resolves the configuration file from explicitPath or
// PAWL_CONFIG and loads it. With neither set it returns Default().
func Load(explicitPath string) (*Config, error) {
	path := explicitPath
	if path == "" {
		path = os.Getenv("PAWL_CONFIG")
	}
	if path == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile loads a specific file over the defaults. Fields absent
// from the file keep their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	default:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	cfg.Path = path
	cfg.expandVariables()
	return cfg, nil
}

// Timeout returns RequestTimeout parsed. Call Validate first; an
// unparseable value yields zero.
func (c *Config) Timeout() time.Duration {
	duration, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0
	}
	return duration
}

// Level returns LogLevel as a slog.Level, defaulting to Info when the
// name is not recognized.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Validate checks every field and returns all problems joined.
func (c *Config) Validate() error {
	var errs []error

	if c.Server == "" {
		errs = append(errs, errors.New("server is required"))
	} else if parsed, err := url.Parse(c.Server); err != nil {
		errs = append(errs, fmt.Errorf("server %q is not a URL: %w", c.Server, err))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		errs = append(errs, fmt.Errorf("server %q must use http or https", c.Server))
	} else if parsed.Host == "" {
		errs = append(errs, fmt.Errorf("server %q has no host", c.Server))
	}

	if c.CookieName == "" {
		errs = append(errs, errors.New("cookie_name is required"))
	}

	if duration, err := time.ParseDuration(c.RequestTimeout); err != nil {
		errs = append(errs, fmt.Errorf("request_timeout %q: %w", c.RequestTimeout, err))
	} else if duration <= 0 {
		errs = append(errs, fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout))
	}

	switch c.SessionProbe {
	case ProbeEndpoint, ProbeCookie:
	default:
		errs = append(errs, fmt.Errorf("session_probe must be %q or %q, got %q", ProbeEndpoint, ProbeCookie, c.SessionProbe))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("log_level %q: must be debug, info, warn or error", c.LogLevel))
	}

	switch c.Theme {
	case ThemeDark, ThemeLight:
	default:
		errs = append(errs, fmt.Errorf("theme must be %q or %q, got %q", ThemeDark, ThemeLight, c.Theme))
	}

	return errors.Join(errs...)
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Server = expandVars(c.Server, vars)
	c.SessionFile = expandVars(c.SessionFile, vars)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars replaces each pattern with the value from vars, then the
// environment, then the pattern's default.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name, defaultValue := parts[1], parts[2]
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}
