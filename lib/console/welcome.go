// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// welcomePage is the landing page. It has no data of its own.
type welcomePage struct {
	env    environment
	server string
}

func (page *welcomePage) init() tea.Cmd { return nil }
func (page *welcomePage) update(tea.Msg) (tea.Cmd, transition) { return nil, stay }
func (page *welcomePage) capturing() bool { return false }
func (page *welcomePage) help() string { return "" }

func (page *welcomePage) view(width, height int) string {
	theme := page.env.theme
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground).Render("Welcome to pawl."),
		lipgloss.NewStyle().Foreground(theme.FaintText).Render("The operator console for ratchet."),
		"",
	}
	if page.server != "" {
		lines = append(lines, "Connected to "+page.server)
	}
	lines = append(lines, "Press F2 to open the menu.")
	return strings.Join(lines, "\n")
}
