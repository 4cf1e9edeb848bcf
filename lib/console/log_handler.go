// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// logRecordMsg delivers a slog record to the shell for display in the
// status bar.
type logRecordMsg struct {
	Summary string
	Level   slog.Level
}

// logRecordFadeMsg clears the status bar record it was scheduled for.
// sequence guards against clearing a newer record.
type logRecordFadeMsg struct {
	sequence int
}

// logRecordFadeDelay is how long a record stays in the status bar
// before the help line returns.
const logRecordFadeDelay = 5 * time.Second

// TUILogHandler is a slog.Handler that routes records into a running
// console as messages. Records below the configured level are dropped.
//
// Create the handler before the program, then call SetProgram once the
// tea.Program exists. Records arriving earlier are dropped. Handlers
// derived through WithAttrs and WithGroup share the program pointer.
type TUILogHandler struct {
	level   slog.Level
	program *atomic.Pointer[tea.Program]
	attrs   []slog.Attr
	groups  []string
}

// NewTUILogHandler creates a handler that delivers records at or above
// level.
func NewTUILogHandler(level slog.Level) *TUILogHandler {
	return &TUILogHandler{
		level:   level,
		program: &atomic.Pointer[tea.Program]{},
	}
}

// SetProgram sets the program that receives records. Safe to call
// from any goroutine.
func (handler *TUILogHandler) SetProgram(program *tea.Program) {
	handler.program.Store(program)
}

func (handler *TUILogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= handler.level
}

// Handle formats the record as "message (key=value, ...)" and sends it.
func (handler *TUILogHandler) Handle(_ context.Context, record slog.Record) error {
	program := handler.program.Load()
	if program == nil {
		return nil
	}
	program.Send(logRecordMsg{Summary: handler.summarize(record), Level: record.Level})
	return nil
}

func (handler *TUILogHandler) summarize(record slog.Record) string {
	prefix := ""
	if len(handler.groups) > 0 {
		prefix = strings.Join(handler.groups, ".") + "."
	}
	var parts []string
	for _, attr := range handler.attrs {
		parts = append(parts, fmt.Sprintf("%s=%s", attr.Key, attr.Value))
	}
	record.Attrs(func(attr slog.Attr) bool {
		parts = append(parts, fmt.Sprintf("%s%s=%s", prefix, attr.Key, attr.Value))
		return true
	})
	if len(parts) == 0 {
		return record.Message
	}
	return record.Message + " (" + strings.Join(parts, ", ") + ")"
}

func (handler *TUILogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := handler.clone()
	derived.attrs = append(derived.attrs, attrs...)
	return derived
}

func (handler *TUILogHandler) WithGroup(name string) slog.Handler {
	derived := handler.clone()
	derived.groups = append(derived.groups, name)
	return derived
}

func (handler *TUILogHandler) clone() *TUILogHandler {
	return &TUILogHandler{
		level:   handler.level,
		program: handler.program,
		attrs:   append([]slog.Attr(nil), handler.attrs...),
		groups:  append([]string(nil), handler.groups...),
	}
}
