// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package console

import "github.com/charmbracelet/lipgloss"

type noticeLevel int

const (
	noticeInfo noticeLevel = iota
	noticeSuccess
	noticeWarning
	noticeError
)

// notice is a one-line message a page shows under its content until
// the next action replaces it.
type notice struct {
	text  string
	level noticeLevel
}

func (n notice) empty() bool { return n.text == "" }

func (n notice) render(theme Theme) string {
	if n.text == "" {
		return ""
	}
	style := lipgloss.NewStyle().Foreground(theme.NormalText)
	switch n.level {
	case noticeSuccess:
		style = style.Foreground(theme.Success)
	case noticeWarning:
		style = style.Foreground(theme.Warning).Bold(true)
	case noticeError:
		style = style.Foreground(theme.Error).Bold(true)
	}
	return style.Render(n.text)
}
