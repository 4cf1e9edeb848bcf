// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Filter narrows an entity list by case-insensitive substring match on
// the identifier. It changes which rows are visible, never their ids.
type Filter struct {
	// Input is the current query text.
	Input string

	// Active is true while the filter has keyboard focus (after "/").
	Active bool
}

// Matches reports whether identifier passes the filter. An empty
// filter matches everything.
func (filter *Filter) Matches(identifier string) bool {
	if filter.Input == "" {
		return true
	}
	return strings.Contains(strings.ToLower(identifier), strings.ToLower(filter.Input))
}

// HandleRune appends a typed character to the query.
func (filter *Filter) HandleRune(character rune) {
	filter.Input += string(character)
}

// HandleBackspace removes the last character from the query. Returns
// false when the query was already empty.
func (filter *Filter) HandleBackspace() bool {
	if filter.Input == "" {
		return false
	}
	runes := []rune(filter.Input)
	filter.Input = string(runes[:len(runes)-1])
	return true
}

// Clear resets the query and releases focus.
func (filter *Filter) Clear() {
	filter.Input = ""
	filter.Active = false
}

// View renders the filter line. Hidden when inactive and empty.
func (filter *Filter) View(theme Theme, width int) string {
	if !filter.Active && filter.Input == "" {
		return ""
	}

	if filter.Active {
		cursor := lipgloss.NewStyle().
			Foreground(theme.HeaderForeground).
			Bold(true).
			Render("▎")
		return lipgloss.NewStyle().
			Foreground(theme.NormalText).
			Width(width).
			Render(" / " + filter.Input + cursor)
	}

	return lipgloss.NewStyle().
		Foreground(theme.FaintText).
		Width(width).
		Render(" filter: " + filter.Input)
}
