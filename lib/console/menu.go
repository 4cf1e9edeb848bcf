// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type menuEntry struct {
	label string
	page  Page
	// logout entries end the session instead of switching page.
	logout bool
}

var menuEntries = []menuEntry{
	{label: "Device Editor", page: PageDeviceList},
	{label: "User Editor", page: PageUserList},
	{label: "Command Policies", page: PagePolicies},
	{label: "Login", page: PageLogin},
	{label: "Logout", logout: true},
}

const menuWidth = 22

// sideMenu is the toggleable navigation panel.
type sideMenu struct {
	visible bool
	cursor  int
}

// handleKey moves the cursor or picks an entry. chosen is nil unless
// an entry was selected.
func (menu *sideMenu) handleKey(message tea.KeyMsg, keys KeyMap) (chosen *menuEntry) {
	switch {
	case key.Matches(message, keys.Up):
		if menu.cursor > 0 {
			menu.cursor--
		}
	case key.Matches(message, keys.Down):
		if menu.cursor < len(menuEntries)-1 {
			menu.cursor++
		}
	case key.Matches(message, keys.Select):
		menu.visible = false
		entry := menuEntries[menu.cursor]
		return &entry
	case key.Matches(message, keys.Cancel):
		menu.visible = false
	}
	return nil
}

func (menu *sideMenu) view(theme Theme, height int) string {
	base := lipgloss.NewStyle().
		Background(theme.MenuBackground).
		Foreground(theme.NormalText).
		Width(menuWidth)
	selected := base.
		Background(theme.SelectedBackground).
		Foreground(theme.SelectedForeground).
		Bold(true)

	lines := []string{base.Bold(true).Foreground(theme.HeaderForeground).Render(" Menu"), base.Render("")}
	for index, entry := range menuEntries {
		if index == menu.cursor {
			lines = append(lines, selected.Render(" ▸ "+entry.label))
		} else {
			lines = append(lines, base.Render("   "+entry.label))
		}
	}
	for len(lines) < height {
		lines = append(lines, base.Render(""))
	}
	return strings.Join(lines, "\n")
}
