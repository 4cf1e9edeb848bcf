// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFanoutHandler(t *testing.T) {
	var quiet, verbose bytes.Buffer
	handler := fanoutHandler{
		slog.NewTextHandler(&quiet, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewTextHandler(&verbose, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}
	if !handler.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be enabled when any handler accepts it")
	}

	logger := slog.New(handler).With("server", "http://ratchet/").WithGroup("request")
	logger.Debug("listing devices", "endpoint", "getdevs")
	logger.Warn("ratchet not responding", "endpoint", "adddev")

	if strings.Contains(quiet.String(), "listing devices") {
		t.Errorf("warn-level handler received a debug record:\n%s", quiet.String())
	}
	if !strings.Contains(quiet.String(), "request.endpoint=adddev") {
		t.Errorf("warn-level handler missing the warning:\n%s", quiet.String())
	}
	for _, want := range []string{"listing devices", "server=http://ratchet/", "request.endpoint=getdevs"} {
		if !strings.Contains(verbose.String(), want) {
			t.Errorf("debug-level handler missing %q:\n%s", want, verbose.String())
		}
	}
}

func TestOpenFileLogHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pawl.jsonl")
	handler, closeFile, err := openFileLogHandler(path, slog.LevelInfo)
	if err != nil {
		t.Fatalf("openFileLogHandler: %v", err)
	}
	logger := slog.New(handler)
	logger.Debug("dropped")
	logger.Info("session restored", "path", "/tmp/session.json")
	closeFile()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Contains(string(data), "dropped") {
		t.Errorf("record below the level was written: %s", data)
	}
	if !strings.Contains(string(data), `"msg":"session restored"`) {
		t.Errorf("log file = %s, want a JSON record", data)
	}
}
