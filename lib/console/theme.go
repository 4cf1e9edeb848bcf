// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package console

import "github.com/charmbracelet/lipgloss"

// Theme is the console's color palette. Colors are ANSI 256-color
// codes so the console renders the same over SSH and inside tmux.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Cursor row in lists and the highlighted menu entry.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Notice levels.
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	// ArmedForeground marks a row waiting for delete confirmation.
	ArmedForeground lipgloss.Color

	// DisabledText renders controls that cannot be used, like the
	// delete control on the last remaining user.
	DisabledText lipgloss.Color

	// Side menu panel.
	MenuBackground lipgloss.Color

	// Policy editor text area.
	EditorBackground lipgloss.Color
}

// DefaultTheme is the palette for dark terminal backgrounds.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	Success: lipgloss.Color("114"), // green
	Warning: lipgloss.Color("220"), // amber
	Error:   lipgloss.Color("196"), // red

	ArmedForeground: lipgloss.Color("208"),
	DisabledText:    lipgloss.Color("238"),

	MenuBackground:   lipgloss.Color("235"),
	EditorBackground: lipgloss.Color("234"),
}

// LightTheme is the palette for light terminal backgrounds.
var LightTheme = Theme{
	NormalText: lipgloss.Color("235"),
	FaintText:  lipgloss.Color("242"),

	SelectedBackground: lipgloss.Color("189"),
	SelectedForeground: lipgloss.Color("16"),

	HeaderForeground: lipgloss.Color("16"),
	BorderColor:      lipgloss.Color("248"),
	HelpText:         lipgloss.Color("244"),

	Success: lipgloss.Color("28"),
	Warning: lipgloss.Color("130"),
	Error:   lipgloss.Color("160"),

	ArmedForeground: lipgloss.Color("166"),
	DisabledText:    lipgloss.Color("250"),

	MenuBackground:   lipgloss.Color("254"),
	EditorBackground: lipgloss.Color("255"),
}

// ThemeNamed returns the palette for a config theme name. Unknown
// names get DefaultTheme.
func ThemeNamed(name string) Theme {
	if name == "light" {
		return LightTheme
	}
	return DefaultTheme
}
