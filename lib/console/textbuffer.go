// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// textBuffer is the multi-line editor behind the policy page. The
// value it holds is sent to ratchet verbatim, so it never trims or
// normalizes line endings.
type textBuffer struct {
	lines   [][]rune
	cursorY int
	cursorX int
	// scrollOffset is the first visible line. Kept across renders so
	// the viewport only moves when the cursor leaves it.
	scrollOffset int
}

func newTextBuffer(text string) textBuffer {
	buffer := textBuffer{}
	buffer.SetValue(text)
	return buffer
}

// SetValue replaces the whole buffer and moves the cursor to the start.
func (buffer *textBuffer) SetValue(text string) {
	parts := strings.Split(text, "\n")
	buffer.lines = make([][]rune, len(parts))
	for index, part := range parts {
		buffer.lines[index] = []rune(part)
	}
	buffer.cursorY = 0
	buffer.cursorX = 0
	buffer.scrollOffset = 0
}

// Value returns the buffer contents joined with "\n".
func (buffer textBuffer) Value() string {
	parts := make([]string, len(buffer.lines))
	for index, line := range buffer.lines {
		parts[index] = string(line)
	}
	return strings.Join(parts, "\n")
}

// Update applies one key to the buffer. Returns true when the text
// changed.
func (buffer *textBuffer) Update(message tea.KeyMsg) bool {
	switch message.Type {
	case tea.KeyRunes, tea.KeySpace:
		if message.Paste {
			// Pasted text can carry newlines; route them through the
			// same split as Enter. A CRLF pair is one break.
			for index, character := range message.Runes {
				if character == '\r' && index+1 < len(message.Runes) && message.Runes[index+1] == '\n' {
					continue
				}
				if character == '\n' || character == '\r' {
					buffer.splitLine()
					continue
				}
				buffer.insertRune(character)
			}
			return true
		}
		for _, character := range message.Runes {
			buffer.insertRune(character)
		}
		return true

	case tea.KeyTab:
		buffer.insertRune('\t')
		return true

	case tea.KeyEnter:
		buffer.splitLine()
		return true

	case tea.KeyBackspace:
		if buffer.cursorX > 0 {
			line := buffer.lines[buffer.cursorY]
			buffer.lines[buffer.cursorY] = append(line[:buffer.cursorX-1], line[buffer.cursorX:]...)
			buffer.cursorX--
			return true
		}
		if buffer.cursorY > 0 {
			previous := buffer.lines[buffer.cursorY-1]
			current := buffer.lines[buffer.cursorY]
			buffer.cursorX = len(previous)
			buffer.lines[buffer.cursorY-1] = append(previous, current...)
			buffer.lines = append(buffer.lines[:buffer.cursorY], buffer.lines[buffer.cursorY+1:]...)
			buffer.cursorY--
			return true
		}

	case tea.KeyDelete:
		line := buffer.lines[buffer.cursorY]
		if buffer.cursorX < len(line) {
			buffer.lines[buffer.cursorY] = append(line[:buffer.cursorX], line[buffer.cursorX+1:]...)
			return true
		}
		if buffer.cursorY < len(buffer.lines)-1 {
			next := buffer.lines[buffer.cursorY+1]
			buffer.lines[buffer.cursorY] = append(line, next...)
			buffer.lines = append(buffer.lines[:buffer.cursorY+1], buffer.lines[buffer.cursorY+2:]...)
			return true
		}

	case tea.KeyLeft:
		if buffer.cursorX > 0 {
			buffer.cursorX--
		} else if buffer.cursorY > 0 {
			buffer.cursorY--
			buffer.cursorX = len(buffer.lines[buffer.cursorY])
		}

	case tea.KeyRight:
		if buffer.cursorX < len(buffer.lines[buffer.cursorY]) {
			buffer.cursorX++
		} else if buffer.cursorY < len(buffer.lines)-1 {
			buffer.cursorY++
			buffer.cursorX = 0
		}

	case tea.KeyUp:
		if buffer.cursorY > 0 {
			buffer.cursorY--
			buffer.clampX()
		}

	case tea.KeyDown:
		if buffer.cursorY < len(buffer.lines)-1 {
			buffer.cursorY++
			buffer.clampX()
		}

	case tea.KeyHome, tea.KeyCtrlA:
		buffer.cursorX = 0

	case tea.KeyEnd, tea.KeyCtrlE:
		buffer.cursorX = len(buffer.lines[buffer.cursorY])
	}
	return false
}

func (buffer *textBuffer) clampX() {
	if buffer.cursorX > len(buffer.lines[buffer.cursorY]) {
		buffer.cursorX = len(buffer.lines[buffer.cursorY])
	}
}

func (buffer *textBuffer) insertRune(character rune) {
	line := buffer.lines[buffer.cursorY]
	updated := make([]rune, len(line)+1)
	copy(updated, line[:buffer.cursorX])
	updated[buffer.cursorX] = character
	copy(updated[buffer.cursorX+1:], line[buffer.cursorX:])
	buffer.lines[buffer.cursorY] = updated
	buffer.cursorX++
}

// splitLine breaks the current line at the cursor.
func (buffer *textBuffer) splitLine() {
	line := buffer.lines[buffer.cursorY]
	before := make([]rune, buffer.cursorX)
	copy(before, line[:buffer.cursorX])
	after := make([]rune, len(line)-buffer.cursorX)
	copy(after, line[buffer.cursorX:])

	buffer.lines[buffer.cursorY] = before
	lines := make([][]rune, len(buffer.lines)+1)
	copy(lines, buffer.lines[:buffer.cursorY+1])
	lines[buffer.cursorY+1] = after
	copy(lines[buffer.cursorY+2:], buffer.lines[buffer.cursorY+1:])
	buffer.lines = lines
	buffer.cursorY++
	buffer.cursorX = 0
}

// Render draws the visible window of the buffer, with a gutter of
// line numbers and a reverse-video cursor when focused. Tabs render
// as a single space so column math stays one cell per rune.
func (buffer *textBuffer) Render(theme Theme, width, height int, focused bool) string {
	if height < 1 {
		height = 1
	}
	if buffer.cursorY < buffer.scrollOffset {
		buffer.scrollOffset = buffer.cursorY
	}
	if buffer.cursorY >= buffer.scrollOffset+height {
		buffer.scrollOffset = buffer.cursorY - height + 1
	}

	background := lipgloss.NewStyle().Background(theme.EditorBackground)
	textStyle := background.Foreground(theme.NormalText)
	gutterStyle := background.Foreground(theme.FaintText)
	cursorStyle := lipgloss.NewStyle().Reverse(true)

	rows := make([]string, 0, height)
	for index := buffer.scrollOffset; index < buffer.scrollOffset+height; index++ {
		var rendered string
		if index < len(buffer.lines) {
			rendered = gutterStyle.Render(fmt.Sprintf("%4d ", index+1))
			line := []rune(strings.ReplaceAll(string(buffer.lines[index]), "\t", " "))
			if focused && index == buffer.cursorY {
				if buffer.cursorX >= len(line) {
					rendered += textStyle.Render(string(line)) + cursorStyle.Render(" ")
				} else {
					rendered += textStyle.Render(string(line[:buffer.cursorX])) +
						cursorStyle.Render(string(line[buffer.cursorX])) +
						textStyle.Render(string(line[buffer.cursorX+1:]))
				}
			} else {
				rendered += textStyle.Render(string(line))
			}
		}
		if lineWidth := ansi.StringWidth(rendered); lineWidth < width {
			rendered += background.Render(strings.Repeat(" ", width-lineWidth))
		} else if lineWidth > width {
			rendered = ansi.Truncate(rendered, width, "")
		}
		rows = append(rows, rendered)
	}
	return strings.Join(rows, "\n")
}
