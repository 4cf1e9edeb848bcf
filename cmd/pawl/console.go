// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/ratchet-nac/pawl/cmd/pawl/cli"
	"github.com/ratchet-nac/pawl/lib/console"
)

type consoleParams struct {
	connectionParams
	LogOutput string `json:"-" flag:"log-output" desc:"write JSON log records to this file (in addition to the status bar)"`
	NoColor   bool   `json:"-" flag:"no-color" desc:"render without colors"`
}

func consoleCommand() *cli.Command {
	var params consoleParams

	return &cli.Command{
		Name:    "console",
		Summary: "Open the interactive console (the default)",
		Description: `Open the full-screen console. F2 opens the menu of editors: trusted
networks, operator accounts and the command policy. F1 returns to the
welcome page; q quits when no field has focus.

Background warnings appear in the status bar. --log-output also
writes every record at the configured log_level to a JSON file.`,
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unknown command %q", args[0]).
					WithHint("Run 'pawl --help' for usage.")
			}
			return runConsole(ctx, &params)
		},
	}
}

// runConsole runs the console until the operator quits. Logging goes
// to the status bar, never to stderr, which would corrupt the
// alt-screen display.
func runConsole(ctx context.Context, params *consoleParams) error {
	statusHandler := console.NewTUILogHandler(slog.LevelWarn)
	var handler slog.Handler = statusHandler

	if params.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	cfg, err := params.load()
	if err != nil {
		return err
	}
	if params.LogOutput != "" {
		fileHandler, closeFile, err := openFileLogHandler(params.LogOutput, cfg.Level())
		if err != nil {
			return cli.Validation("cannot open log file %s: %w", params.LogOutput, err)
		}
		defer closeFile()
		handler = fanoutHandler{statusHandler, fileHandler}
	}
	logger := slog.New(handler)

	connection, err := connect(cfg, logger)
	if err != nil {
		return err
	}
	connection.restore()

	model := console.New(console.Options{
		API:            connection.client,
		Keeper:         connection.keeper,
		Probe:          connection.probe(),
		Logger:         logger,
		RequestTimeout: connection.config.Timeout(),
		Theme:          console.ThemeNamed(string(connection.config.Theme)),
		Server:         connection.client.BaseURL(),
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	statusHandler.SetProgram(program)

	_, err = program.Run()
	if err != nil && ctx.Err() != nil {
		// Interrupted by a signal: not a failure.
		return nil
	}
	return err
}

// openFileLogHandler creates a slog.JSONHandler that writes to path at
// level. Returns the handler and a function that closes the file. The
// file is created or truncated.
func openFileLogHandler(path string, level slog.Level) (slog.Handler, func(), error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return handler, func() { file.Close() }, nil
}

// fanoutHandler is a slog.Handler that sends each record to multiple
// underlying handlers. A record is enabled if any sub-handler is
// enabled for that level.
type fanoutHandler []slog.Handler

func (handlers fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (handlers fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithAttrs(attrs)
	}
	return derived
}

func (handlers fanoutHandler) WithGroup(name string) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithGroup(name)
	}
	return derived
}
