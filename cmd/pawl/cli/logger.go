// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates the logger for non-interactive commands.
// When stderr is a terminal it writes human-readable text; when piped
// or redirected it writes JSON so scripts can parse it.
func NewCommandLogger(level slog.Level) *slog.Logger {
	return slog.New(newHandler(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), level))
}

func newHandler(w io.Writer, terminal bool, level slog.Level) slog.Handler {
	options := &slog.HandlerOptions{Level: level}
	if terminal {
		return slog.NewTextHandler(w, options)
	}
	return slog.NewJSONHandler(w, options)
}
