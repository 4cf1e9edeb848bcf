// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ratchet-nac/pawl/lib/ratchet"
)

// RowState is the delete lifecycle of one list row.
type RowState int

const (
	RowIdle RowState = iota
	// RowArmedForDelete means one delete press has been seen; the next
	// one sends the request.
	RowArmedForDelete
	// RowDeleting means the remove request is in flight. Further
	// delete presses on the row are ignored.
	RowDeleting
)

// Record is one row of an entity list. ID is local to this page
// instance and is never sent to ratchet.
type Record struct {
	ID         int
	Identifier string
	State      RowState
}

// confirmMarker flags a row armed for deletion.
const confirmMarker = "⚡"

type listLoadedMsg struct {
	identifiers []string
	err         error
}

type deleteResultMsg struct {
	id     int
	result ratchet.Result
	err    error
}

// EntityList shows one collection with inline add, edit and two-step
// delete.
type EntityList struct {
	kind EntityKind
	env  environment

	loading bool
	records []Record
	cursor  int
	filter  Filter
	notice  notice

	// editor is the single open form. editID is the row it edits, or
	// -1 when it adds a new row.
	editor       *Editor
	editID       int
	editorSerial int
}

func newEntityList(env environment, kind EntityKind) *EntityList {
	return &EntityList{kind: kind, env: env, editID: -1}
}

// Records returns a copy of the rows, in display order.
func (list *EntityList) Records() []Record { return slices.Clone(list.records) }

// Editor returns the open form, or nil.
func (list *EntityList) Editor() *Editor { return list.editor }

// Notice returns the page-level message text.
func (list *EntityList) Notice() string { return list.notice.text }

// DeleteEnabled reports whether the delete control is usable. Rows
// with a remove request in flight no longer count toward the floor.
func (list *EntityList) DeleteEnabled() bool {
	remaining := 0
	for _, record := range list.records {
		if record.State != RowDeleting {
			remaining++
		}
	}
	return list.kind.canDelete(remaining)
}

func (list *EntityList) init() tea.Cmd {
	list.loading = true
	kind := list.kind
	return list.env.backend.call(func(ctx context.Context, api API) tea.Msg {
		identifiers, err := kind.List(ctx, api)
		return listLoadedMsg{identifiers: identifiers, err: err}
	})
}

func (list *EntityList) capturing() bool {
	return list.editor != nil || list.filter.Active
}

func (list *EntityList) update(message tea.Msg) (tea.Cmd, transition) {
	switch message := message.(type) {
	case listLoadedMsg:
		return list.handleLoaded(message)

	case deleteResultMsg:
		return list.handleDeleteResult(message)

	case editorResultMsg:
		if list.editor == nil || message.serial != list.editor.serial {
			return nil, stay
		}
		return list.handleEditorEvent(list.editor.handleResult(message))

	case tea.KeyMsg:
		if list.editor != nil {
			cmd, event := list.editor.updateKey(message)
			if event.kind == editorNone {
				return cmd, stay
			}
			return list.handleEditorEvent(event)
		}
		if list.filter.Active {
			list.updateFilter(message)
			return nil, stay
		}
		return list.updateKey(message)
	}

	if list.editor != nil {
		return list.editor.updateOther(message), stay
	}
	return nil, stay
}

func (list *EntityList) handleLoaded(message listLoadedMsg) (tea.Cmd, transition) {
	list.loading = false
	if message.err != nil {
		if isUnauthorizedFetch(message.err) {
			return nil, toLogin
		}
		list.env.logger.Warn("ratchet fetch failed", "entity", list.kind.Noun, "error", message.err)
		list.notice = notice{text: fmt.Sprintf("Could not reach ratchet: %v", message.err), level: noticeError}
		return nil, stay
	}
	list.records = make([]Record, len(message.identifiers))
	for index, identifier := range message.identifiers {
		list.records[index] = Record{ID: index, Identifier: identifier}
	}
	list.cursor = 0
	return nil, stay
}

func (list *EntityList) updateFilter(message tea.KeyMsg) {
	if key.Matches(message, list.env.keys.FilterClear) {
		list.filter.Clear()
		list.cursor = 0
		return
	}
	switch message.Type {
	case tea.KeyEnter:
		list.filter.Active = false
	case tea.KeyBackspace:
		list.filter.HandleBackspace()
	case tea.KeyRunes, tea.KeySpace:
		for _, character := range message.Runes {
			list.filter.HandleRune(character)
		}
	}
	list.cursor = 0
}

func (list *EntityList) updateKey(message tea.KeyMsg) (tea.Cmd, transition) {
	keys := list.env.keys
	visible := list.visible()

	switch {
	case key.Matches(message, keys.Up):
		if list.cursor > 0 {
			list.cursor--
		}

	case key.Matches(message, keys.Down):
		if list.cursor < len(visible)-1 {
			list.cursor++
		}

	case key.Matches(message, keys.Add):
		return list.openEditor(EditorAdd, -1, ""), stay

	case key.Matches(message, keys.Edit):
		if record, ok := list.selected(); ok {
			return list.openEditor(EditorEdit, record.ID, record.Identifier), stay
		}

	case key.Matches(message, keys.Delete):
		if record, ok := list.selected(); ok {
			return list.pressDelete(record.ID), stay
		}

	case key.Matches(message, keys.FilterActivate):
		list.filter.Active = true
		list.cursor = 0

	case key.Matches(message, keys.Refresh):
		return nil, toReload

	case key.Matches(message, keys.Cancel):
		list.disarm()
		list.notice = notice{}
		if list.filter.Input != "" {
			list.filter.Clear()
			list.cursor = 0
		}
	}
	return nil, stay
}

// openEditor replaces any open form, so add and edit never coexist.
func (list *EntityList) openEditor(mode EditorMode, id int, identifier string) tea.Cmd {
	list.editorSerial++
	list.editor = newEditor(list.env, list.kind, mode, list.editorSerial, identifier)
	list.editID = id
	return list.editor.init()
}

func (list *EntityList) closeEditor() {
	list.editor = nil
	list.editID = -1
}

func (list *EntityList) handleEditorEvent(event editorEvent) (tea.Cmd, transition) {
	switch event.kind {
	case editorRedirect:
		return nil, toLogin
	case editorComplete:
		if list.editor.mode == EditorAdd && event.identifier != "" {
			list.records = append(list.records, Record{ID: nextID(list.records), Identifier: event.identifier})
		}
		list.closeEditor()
		if event.warning != "" {
			list.notice = notice{text: event.warning, level: noticeWarning}
		}
	}
	return nil, stay
}

// pressDelete advances the two-step delete of one row.
func (list *EntityList) pressDelete(id int) tea.Cmd {
	if !list.DeleteEnabled() {
		return nil
	}
	index := list.indexOf(id)
	switch list.records[index].State {
	case RowIdle:
		list.disarm()
		list.records[index].State = RowArmedForDelete
		return nil
	case RowDeleting:
		return nil
	}

	list.records[index].State = RowDeleting
	identifier := list.records[index].Identifier
	remove := list.kind.Remove
	return list.env.backend.call(func(ctx context.Context, api API) tea.Msg {
		result, err := remove(ctx, api, identifier)
		return deleteResultMsg{id: id, result: result, err: err}
	})
}

func (list *EntityList) handleDeleteResult(message deleteResultMsg) (tea.Cmd, transition) {
	index := list.indexOf(message.id)
	if index < 0 {
		return nil, stay
	}
	record := list.records[index]

	if message.err != nil {
		list.env.logger.Warn("ratchet delete failed", "entity", list.kind.Noun, "error", message.err)
		list.records[index].State = RowArmedForDelete
		list.notice = notice{text: fmt.Sprintf("Could not delete %s: %v", record.Identifier, message.err), level: noticeError}
		return nil, stay
	}

	switch message.result.Outcome() {
	case ratchet.OutcomeAccepted, ratchet.OutcomeGone:
		list.remove(index)
	case ratchet.OutcomeUnavailable:
		list.remove(index)
		list.notice = notice{text: unavailableDeleteWarning, level: noticeWarning}
	case ratchet.OutcomeUnauthorized:
		list.records[index].State = RowArmedForDelete
		return nil, toLogin
	default:
		list.records[index].State = RowArmedForDelete
		list.notice = notice{
			text:  fmt.Sprintf("Could not delete %s (ratchet returned %d)", record.Identifier, message.result.StatusCode),
			level: noticeError,
		}
	}
	return nil, stay
}

func (list *EntityList) remove(index int) {
	list.records = slices.Delete(list.records, index, index+1)
	if list.editor != nil && list.editID >= 0 && list.indexOf(list.editID) < 0 {
		list.closeEditor()
	}
	if visible := len(list.visible()); list.cursor >= visible {
		list.cursor = max(visible-1, 0)
	}
}

func (list *EntityList) disarm() {
	for index := range list.records {
		if list.records[index].State == RowArmedForDelete {
			list.records[index].State = RowIdle
		}
	}
}

func (list *EntityList) indexOf(id int) int {
	return slices.IndexFunc(list.records, func(record Record) bool { return record.ID == id })
}

// visible returns the rows that pass the filter.
func (list *EntityList) visible() []Record {
	if list.filter.Input == "" {
		return list.records
	}
	var rows []Record
	for _, record := range list.records {
		if list.filter.Matches(record.Identifier) {
			rows = append(rows, record)
		}
	}
	return rows
}

func (list *EntityList) selected() (Record, bool) {
	visible := list.visible()
	if list.cursor < 0 || list.cursor >= len(visible) {
		return Record{}, false
	}
	return visible[list.cursor], true
}

// nextID returns one more than the largest id, counting from zero.
func nextID(records []Record) int {
	highest := 0
	for _, record := range records {
		highest = max(highest, record.ID)
	}
	return highest + 1
}

func (list *EntityList) view(width, height int) string {
	theme := list.env.theme
	sections := []string{
		lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground).Render(list.kind.Title),
		lipgloss.NewStyle().Foreground(theme.FaintText).Render(list.kind.Subtitle),
		"",
	}
	if filterView := list.filter.View(theme, width); filterView != "" {
		sections = append(sections, filterView)
	}

	switch {
	case list.loading:
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.FaintText).Render("Loading..."))
	case len(list.records) == 0 && list.notice.empty():
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.FaintText).Render(list.kind.EmptyText))
	default:
		sections = append(sections, list.renderRows(width, height-len(sections))...)
	}

	if list.editor != nil && list.editor.mode == EditorAdd {
		sections = append(sections, "", list.editor.view(width))
	}
	if !list.notice.empty() {
		sections = append(sections, "", list.notice.render(theme))
	}
	return strings.Join(sections, "\n")
}

func (list *EntityList) renderRows(width, height int) []string {
	theme := list.env.theme
	visible := list.visible()
	if len(visible) == 0 {
		return []string{lipgloss.NewStyle().Foreground(theme.FaintText).Render("No matches.")}
	}

	// Keep the cursor row on screen.
	rowsAvailable := max(height-2, 1)
	start := 0
	if list.cursor >= rowsAvailable {
		start = list.cursor - rowsAvailable + 1
	}

	rowStyle := lipgloss.NewStyle().Foreground(theme.NormalText).Width(width)
	selectedStyle := rowStyle.Background(theme.SelectedBackground).Foreground(theme.SelectedForeground)
	armedStyle := lipgloss.NewStyle().Foreground(theme.ArmedForeground).Bold(true)
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)

	var rows []string
	for index := start; index < len(visible) && len(rows) < rowsAvailable; index++ {
		record := visible[index]
		if list.editor != nil && list.editor.mode == EditorEdit && record.ID == list.editID {
			rows = append(rows, list.editor.view(width))
			continue
		}

		line := "  " + record.Identifier
		switch record.State {
		case RowArmedForDelete:
			line += "  " + armedStyle.Render(confirmMarker+" press d again to delete")
		case RowDeleting:
			line += "  " + faint.Render("deleting...")
		}
		if index == list.cursor {
			line = "▸" + line[1:]
			rows = append(rows, selectedStyle.Render(line))
		} else {
			rows = append(rows, rowStyle.Render(line))
		}
	}
	return rows
}

func (list *EntityList) help() string {
	if list.editor != nil {
		return "Enter save  Tab next field  Esc cancel"
	}
	if list.filter.Active {
		return "type to filter  Enter done  Esc clear"
	}
	help := "a add  e edit  "
	if list.DeleteEnabled() {
		help += "d delete (twice)"
	} else {
		help += "delete disabled (last " + list.kind.Noun + ")"
	}
	return help + "  / filter  r reload"
}
