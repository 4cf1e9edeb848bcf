// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ratchet-nac/pawl/lib/ratchet"
)

// EditorMode selects whether an Editor creates or updates an entity.
type EditorMode int

const (
	EditorAdd EditorMode = iota
	EditorEdit
)

const (
	fieldIdentifier = iota
	fieldSecret
	fieldConfirm
	fieldCount
)

// editorResultMsg carries the response to an editor submission.
// serial identifies the editor that sent it.
type editorResultMsg struct {
	serial     int
	identifier string
	result     ratchet.Result
	err        error
}

type editorEventKind int

const (
	editorNone editorEventKind = iota
	// editorComplete closes the editor. An empty identifier means the
	// operator cancelled.
	editorComplete
	// editorRedirect means ratchet no longer accepts the session.
	editorRedirect
)

// editorEvent tells the owning list what the editor decided.
type editorEvent struct {
	kind       editorEventKind
	identifier string
	// warning is set when the change completed but ratchet reported
	// that it may not take effect.
	warning string
}

// Editor is the add/edit form for one entity: an identifier and a
// secret entered twice. In edit mode the identifier is fixed.
type Editor struct {
	kind    EntityKind
	mode    EditorMode
	serial  int
	env     environment
	inputs  [fieldCount]textinput.Model
	focus   int
	message notice
}

func newEditor(env environment, kind EntityKind, mode EditorMode, serial int, identifier string) *Editor {
	editor := &Editor{
		kind:   kind,
		mode:   mode,
		serial: serial,
		env:    env,
	}
	for index := range editor.inputs {
		input := newInput()
		input.CharLimit = 256
		input.Width = 40
		input.TextStyle = lipgloss.NewStyle().Foreground(env.theme.NormalText)
		if index != fieldIdentifier {
			input.EchoMode = textinput.EchoPassword
			input.EchoCharacter = '•'
		}
		editor.inputs[index] = input
	}
	editor.inputs[fieldIdentifier].SetValue(identifier)
	if mode == EditorEdit {
		editor.focus = fieldSecret
	}
	return editor
}

// Mode reports whether the editor adds or edits.
func (editor *Editor) Mode() EditorMode { return editor.mode }

// Identifier is the identifier currently entered.
func (editor *Editor) Identifier() string {
	return editor.inputs[fieldIdentifier].Value()
}

// Message is the inline message under the form, if any.
func (editor *Editor) Message() string { return editor.message.text }

func (editor *Editor) init() tea.Cmd {
	return editor.inputs[editor.focus].Focus()
}

func (editor *Editor) updateKey(message tea.KeyMsg) (tea.Cmd, editorEvent) {
	keys := editor.env.keys
	switch {
	case key.Matches(message, keys.Cancel):
		return nil, editorEvent{kind: editorComplete}

	case key.Matches(message, keys.Submit), message.Type == tea.KeyEnter:
		return editor.submit(), editorEvent{}

	case key.Matches(message, keys.NextField):
		return editor.moveFocus(1), editorEvent{}

	case key.Matches(message, keys.PreviousField):
		return editor.moveFocus(-1), editorEvent{}
	}

	var cmd tea.Cmd
	editor.inputs[editor.focus], cmd = editor.inputs[editor.focus].Update(message)
	return cmd, editorEvent{}
}

// updateOther forwards non-key messages, such as cursor blinks, to the
// focused input.
func (editor *Editor) updateOther(message tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	editor.inputs[editor.focus], cmd = editor.inputs[editor.focus].Update(message)
	return cmd
}

func (editor *Editor) firstField() int {
	if editor.mode == EditorEdit {
		return fieldSecret
	}
	return fieldIdentifier
}

func (editor *Editor) moveFocus(delta int) tea.Cmd {
	first := editor.firstField()
	span := fieldCount - first
	next := first + ((editor.focus-first+delta)%span+span)%span
	editor.inputs[editor.focus].Blur()
	editor.focus = next
	return editor.inputs[editor.focus].Focus()
}

// submit validates the form and, when it passes, issues exactly one
// add or edit request.
func (editor *Editor) submit() tea.Cmd {
	identifier := strings.TrimSpace(editor.inputs[fieldIdentifier].Value())
	secret := editor.inputs[fieldSecret].Value()
	confirm := editor.inputs[fieldConfirm].Value()

	switch {
	case secret != confirm:
		editor.message = notice{text: editor.kind.MismatchMessage, level: noticeError}
		return nil
	case identifier == "":
		editor.message = notice{text: strings.TrimSuffix(editor.kind.IdentifierLabel, ":") + " is required", level: noticeError}
		return nil
	case secret == "":
		editor.message = notice{text: strings.TrimSuffix(editor.kind.SecretLabel, ":") + " is required", level: noticeError}
		return nil
	}
	editor.message = notice{}

	request := editor.kind.Add
	if editor.mode == EditorEdit {
		request = editor.kind.Edit
	}
	serial := editor.serial
	return editor.env.backend.call(func(ctx context.Context, api API) tea.Msg {
		result, err := request(ctx, api, identifier, secret)
		return editorResultMsg{serial: serial, identifier: identifier, result: result, err: err}
	})
}

func (editor *Editor) handleResult(message editorResultMsg) editorEvent {
	if message.err != nil {
		editor.env.logger.Warn("ratchet request failed", "entity", editor.kind.Noun, "error", message.err)
		editor.message = notice{text: fmt.Sprintf("Could not reach ratchet: %v", message.err), level: noticeError}
		return editorEvent{}
	}

	switch message.result.Outcome() {
	case ratchet.OutcomeAccepted:
		return editorEvent{kind: editorComplete, identifier: message.identifier}
	case ratchet.OutcomeUnavailable:
		return editorEvent{kind: editorComplete, identifier: message.identifier, warning: unavailableUpdateWarning}
	case ratchet.OutcomeUnauthorized:
		return editorEvent{kind: editorRedirect}
	}

	if editor.mode == EditorAdd {
		editor.message = notice{text: editor.kind.ExistsMessage, level: noticeError}
	} else {
		editor.message = notice{text: editor.kind.GoneMessage, level: noticeError}
	}
	return editorEvent{}
}

func (editor *Editor) view(width int) string {
	theme := editor.env.theme
	heading := editor.kind.AddHeading
	if editor.mode == EditorEdit {
		heading = editor.kind.EditHeading
	}

	labelStyle := lipgloss.NewStyle().Foreground(theme.FaintText).Width(14)
	focusedLabel := labelStyle.Foreground(theme.HeaderForeground).Bold(true)
	labels := [fieldCount]string{editor.kind.IdentifierLabel, editor.kind.SecretLabel, editor.kind.ConfirmLabel}

	lines := []string{lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground).Render(heading)}
	for index := range editor.inputs {
		style := labelStyle
		if index == editor.focus {
			style = focusedLabel
		}
		value := editor.inputs[index].View()
		if index == fieldIdentifier && editor.mode == EditorEdit {
			value = lipgloss.NewStyle().Foreground(theme.DisabledText).Render(editor.inputs[index].Value())
		}
		lines = append(lines, style.Render(labels[index])+" "+value)
	}
	if !editor.message.empty() {
		lines = append(lines, editor.message.render(theme))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.BorderColor).
		Padding(0, 1).
		Width(max(width-2, 20)).
		Render(strings.Join(lines, "\n"))
}
