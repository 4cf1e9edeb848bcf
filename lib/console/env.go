// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// environment is what every page needs from the shell.
type environment struct {
	backend backend
	keeper  SessionKeeper
	keys    KeyMap
	theme   Theme
	logger  *slog.Logger
}

// screen is one mounted page. The shell owns exactly one at a time and
// delivers to it only the messages produced by its own commands.
type screen interface {
	init() tea.Cmd
	update(message tea.Msg) (tea.Cmd, transition)
	view(width, height int) string
	// capturing reports whether printable keys are text input rather
	// than commands.
	capturing() bool
	help() string
}

// newInput returns a text input with no prompt and a steady cursor,
// drawn the same way as the policy buffer's.
func newInput() textinput.Model {
	input := textinput.New()
	input.Prompt = ""
	input.Cursor.SetMode(cursor.CursorStatic)
	return input
}
