// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const loginRetryText = "Please try again..."

type loginResultMsg struct {
	ok bool
	// rememberErr is set when ratchet accepted the login but the
	// session could not be saved to disk.
	rememberErr error
	err         error
}

const (
	loginUsername = iota
	loginPassword
)

// LoginPage collects credentials and exchanges them for a session.
type LoginPage struct {
	env     environment
	inputs  [2]textinput.Model
	focus   int
	message notice
}

func newLoginPage(env environment) *LoginPage {
	page := &LoginPage{env: env}
	for index := range page.inputs {
		input := newInput()
		input.CharLimit = 256
		input.Width = 32
		page.inputs[index] = input
	}
	page.inputs[loginUsername].Placeholder = "username"
	page.inputs[loginPassword].EchoMode = textinput.EchoPassword
	page.inputs[loginPassword].EchoCharacter = '•'
	return page
}

// Message is the inline message under the form, if any.
func (page *LoginPage) Message() string { return page.message.text }

func (page *LoginPage) init() tea.Cmd {
	return page.inputs[page.focus].Focus()
}

func (page *LoginPage) capturing() bool { return true }

func (page *LoginPage) update(message tea.Msg) (tea.Cmd, transition) {
	switch message := message.(type) {
	case loginResultMsg:
		if message.err != nil {
			page.env.logger.Warn("ratchet login failed", "error", message.err)
		}
		if message.ok {
			if message.rememberErr != nil {
				page.env.logger.Warn("session not saved", "error", message.rememberErr)
			}
			return nil, toWelcome
		}
		page.message = notice{text: loginRetryText, level: noticeError}
		page.inputs[loginPassword].SetValue("")
		return page.setFocus(loginPassword), stay

	case tea.KeyMsg:
		keys := page.env.keys
		switch {
		case key.Matches(message, keys.Submit):
			return page.submit(), stay
		case message.Type == tea.KeyEnter:
			if page.focus == loginUsername {
				return page.setFocus(loginPassword), stay
			}
			return page.submit(), stay
		case key.Matches(message, keys.NextField), key.Matches(message, keys.PreviousField):
			return page.setFocus(1 - page.focus), stay
		}
	}

	var cmd tea.Cmd
	page.inputs[page.focus], cmd = page.inputs[page.focus].Update(message)
	return cmd, stay
}

func (page *LoginPage) setFocus(field int) tea.Cmd {
	page.inputs[page.focus].Blur()
	page.focus = field
	return page.inputs[page.focus].Focus()
}

func (page *LoginPage) submit() tea.Cmd {
	username := strings.TrimSpace(page.inputs[loginUsername].Value())
	password := page.inputs[loginPassword].Value()
	if username == "" {
		page.message = notice{text: "Username is required", level: noticeError}
		return page.setFocus(loginUsername)
	}
	page.message = notice{}

	keeper := page.env.keeper
	return page.env.backend.call(func(ctx context.Context, api API) tea.Msg {
		_, ok, err := api.Login(ctx, username, password)
		if err != nil || !ok {
			return loginResultMsg{err: err}
		}
		var rememberErr error
		if keeper != nil {
			rememberErr = keeper.Remember()
		}
		return loginResultMsg{ok: true, rememberErr: rememberErr}
	})
}

func (page *LoginPage) view(width, height int) string {
	theme := page.env.theme
	labelStyle := lipgloss.NewStyle().Foreground(theme.FaintText).Width(11)
	focusedLabel := labelStyle.Foreground(theme.HeaderForeground).Bold(true)
	labels := [2]string{"Username:", "Password:"}

	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground).Render("Please login to Ratchet."),
		"",
	}
	for index := range page.inputs {
		style := labelStyle
		if index == page.focus {
			style = focusedLabel
		}
		lines = append(lines, style.Render(labels[index])+" "+page.inputs[index].View())
	}
	if !page.message.empty() {
		lines = append(lines, "", page.message.render(theme))
	}
	return strings.Join(lines, "\n")
}

func (page *LoginPage) help() string {
	return "Enter login  Tab next field"
}
