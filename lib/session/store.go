// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ratchet-nac/pawl/lib/secret"
)

// ErrNoCredential is returned by Store.Load when no session file
// exists.
var ErrNoCredential = errors.New("session: no saved credential")

// Credential is the persisted form of the ratchet session cookie.
type Credential struct {
	// Server is the ratchet base URL the token was issued by. A
	// credential for a different server is never sent.
	Server string `json:"server"`

	// Token is the session cookie value.
	Token string `json:"token"`

	// Expires is the cookie's absolute expiry. Zero means the server
	// gave none and the token is kept until ratchet rejects it.
	Expires time.Time `json:"expires,omitzero"`
}

// Valid reports whether the credential holds a token that has not
// expired at now.
func (credential *Credential) Valid(now time.Time) bool {
	if credential == nil || credential.Token == "" {
		return false
	}
	return credential.Expires.IsZero() || now.Before(credential.Expires)
}

// FilePath returns the default session file location.
func FilePath() string {
	if envPath := os.Getenv("PAWL_SESSION_FILE"); envPath != "" {
		return envPath
	}
	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "pawl-session.json")
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "pawl", "session.json")
}

// Store reads and writes one credential file.
type Store struct {
	Path string
}

// NewStore returns a store for path, or for FilePath() when path is
// empty.
func NewStore(path string) *Store {
	if path == "" {
		path = FilePath()
	}
	return &Store{Path: path}
}

// Load reads the credential. Returns ErrNoCredential (wrapped) when
// the file does not exist.
func (s *Store) Load() (*Credential, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s (run \"pawl login\" first)", ErrNoCredential, s.Path)
		}
		return nil, fmt.Errorf("session: reading %s: %w", s.Path, err)
	}

	var credential Credential
	parseErr := json.Unmarshal(data, &credential)
	secret.Zero(data)
	if parseErr != nil {
		return nil, fmt.Errorf("session: parsing %s: %w", s.Path, parseErr)
	}
	if credential.Server == "" {
		return nil, fmt.Errorf("session: %s has no server", s.Path)
	}
	if credential.Token == "" {
		return nil, fmt.Errorf("session: %s has no token", s.Path)
	}
	return &credential, nil
}

// Save writes the credential, creating the parent directory with mode
// 0700. The file itself is mode 0600 since it holds a live token.
func (s *Store) Save(credential *Credential) error {
	data, err := json.MarshalIndent(credential, "", "  ")
	if err != nil {
		return fmt.Errorf("session: marshaling credential: %w", err)
	}
	data = append(data, '\n')
	defer secret.Zero(data)

	directory := filepath.Dir(s.Path)
	if err := os.MkdirAll(directory, 0o700); err != nil {
		return fmt.Errorf("session: creating %s: %w", directory, err)
	}

	// Write to a sibling and rename so a crash never leaves a
	// truncated session file behind.
	temporary, err := os.CreateTemp(directory, ".session-*.json")
	if err != nil {
		return fmt.Errorf("session: creating temporary file in %s: %w", directory, err)
	}
	temporaryPath := temporary.Name()
	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("session: writing %s: %w", temporaryPath, err)
	}
	if err := temporary.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("session: closing %s: %w", temporaryPath, err)
	}
	if err := os.Chmod(temporaryPath, 0o600); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("session: chmod %s: %w", temporaryPath, err)
	}
	if err := os.Rename(temporaryPath, s.Path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("session: replacing %s: %w", s.Path, err)
	}
	return nil
}

// Delete removes the credential file. A missing file is not an error.
func (s *Store) Delete() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session: removing %s: %w", s.Path, err)
	}
	return nil
}
