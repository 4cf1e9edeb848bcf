// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

// pawl is the operator console for the ratchet network-access-control
// backend. Run without arguments it opens the interactive console;
// subcommands cover the same operations for scripts.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ratchet-nac/pawl/cmd/pawl/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		// Commands that print their own output (like whoami) return
		// an ExitError. Don't print a redundant "error:" line for those.
		if !cli.Silent(err) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(cli.ExitCode(err))
	}
}

func run(ctx context.Context, args []string) error {
	logger := cli.NewCommandLogger(slog.LevelInfo)
	return rootCommand(os.Stdout).Execute(ctx, args, logger)
}
