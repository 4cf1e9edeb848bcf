// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ratchet-nac/pawl/lib/ratchet"
)

// policyPlaceholder fills the buffer until the real policy arrives.
const policyPlaceholder = "$\n(\n)\n"

const (
	policyAcceptedText = "Policy accepted."
	policyRejectedText = "Policy rejected: syntax error."
)

type policyLoadedMsg struct {
	text string
	err  error
}

type policyPushedMsg struct {
	result ratchet.Result
	err    error
}

// PolicyEditor edits ratchet's command restriction policy as one block
// of text and pushes it whole.
type PolicyEditor struct {
	env     environment
	loading bool
	buffer  textBuffer

	// accepted and rejected report the last push. A 503 leaves both
	// unchanged.
	accepted bool
	rejected bool
	notice   notice
}

func newPolicyEditor(env environment) *PolicyEditor {
	return &PolicyEditor{env: env, buffer: newTextBuffer(policyPlaceholder)}
}

// Text returns the buffer contents.
func (editor *PolicyEditor) Text() string { return editor.buffer.Value() }

// Accepted reports whether the last push was accepted.
func (editor *PolicyEditor) Accepted() bool { return editor.accepted }

// Rejected reports whether the last push was refused as invalid.
func (editor *PolicyEditor) Rejected() bool { return editor.rejected }

func (editor *PolicyEditor) init() tea.Cmd {
	editor.loading = true
	return editor.env.backend.call(func(ctx context.Context, api API) tea.Msg {
		text, err := api.GetPolicy(ctx)
		return policyLoadedMsg{text: text, err: err}
	})
}

func (editor *PolicyEditor) capturing() bool { return !editor.loading }

func (editor *PolicyEditor) update(message tea.Msg) (tea.Cmd, transition) {
	switch message := message.(type) {
	case policyLoadedMsg:
		editor.loading = false
		if message.err != nil {
			if isUnauthorizedFetch(message.err) {
				return nil, toLogin
			}
			editor.env.logger.Warn("ratchet fetch failed", "entity", "policy", "error", message.err)
			editor.notice = notice{text: fmt.Sprintf("Could not reach ratchet: %v", message.err), level: noticeError}
			return nil, stay
		}
		editor.buffer.SetValue(message.text)

	case policyPushedMsg:
		return editor.handlePushed(message)

	case tea.KeyMsg:
		if editor.loading {
			return nil, stay
		}
		if key.Matches(message, editor.env.keys.Submit) {
			return editor.push(), stay
		}
		editor.buffer.Update(message)
	}
	return nil, stay
}

func (editor *PolicyEditor) push() tea.Cmd {
	policy := editor.buffer.Value()
	return editor.env.backend.call(func(ctx context.Context, api API) tea.Msg {
		result, err := api.PushPolicy(ctx, policy)
		return policyPushedMsg{result: result, err: err}
	})
}

func (editor *PolicyEditor) handlePushed(message policyPushedMsg) (tea.Cmd, transition) {
	if message.err != nil {
		editor.env.logger.Warn("ratchet policy push failed", "error", message.err)
		editor.notice = notice{text: fmt.Sprintf("Could not reach ratchet: %v", message.err), level: noticeError}
		return nil, stay
	}
	editor.notice = notice{}
	switch message.result.Outcome() {
	case ratchet.OutcomeAccepted:
		editor.accepted = true
		editor.rejected = false
	case ratchet.OutcomeUnavailable:
		editor.notice = notice{text: unavailableUpdateWarning, level: noticeWarning}
	case ratchet.OutcomeUnauthorized:
		return nil, toLogin
	default:
		editor.rejected = true
		editor.accepted = false
	}
	return nil, stay
}

func (editor *PolicyEditor) view(width, height int) string {
	theme := editor.env.theme
	sections := []string{
		lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground).Render("Block User Commands!"),
		lipgloss.NewStyle().Foreground(theme.FaintText).Render("Write a policy to restrict what commands users can run."),
		"",
	}
	if editor.loading {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.FaintText).Render("Loading policy..."))
		return strings.Join(sections, "\n")
	}

	var status []string
	if editor.accepted {
		status = append(status, notice{text: policyAcceptedText, level: noticeSuccess}.render(theme))
	}
	if editor.rejected {
		status = append(status, notice{text: policyRejectedText, level: noticeError}.render(theme))
	}
	if !editor.notice.empty() {
		status = append(status, editor.notice.render(theme))
	}

	bufferHeight := max(height-len(sections)-len(status)-1, 3)
	sections = append(sections, editor.buffer.Render(theme, width, bufferHeight, true))
	if len(status) > 0 {
		sections = append(sections, "")
		sections = append(sections, status...)
	}
	return strings.Join(sections, "\n")
}

func (editor *PolicyEditor) help() string {
	return "C-s push policy  arrows move  Enter new line"
}
