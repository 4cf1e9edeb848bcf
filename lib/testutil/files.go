// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// IsolateConfig creates a temporary configuration home and points
// XDG_CONFIG_HOME at it. PAWL_CONFIG and PAWL_SESSION_FILE are
// cleared so the defaults under the new home apply. Returns the
// directory. Tests calling this cannot use t.Parallel.
func IsolateConfig(t *testing.T) string {
	t.Helper()
	directory := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", directory)
	t.Setenv("PAWL_CONFIG", "")
	t.Setenv("PAWL_SESSION_FILE", "")
	return directory
}

// WriteFile writes content to name inside directory, creating parent
// directories as needed, and returns the full path.
func WriteFile(t *testing.T, directory, name, content string) string {
	t.Helper()
	path := filepath.Join(directory, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}
