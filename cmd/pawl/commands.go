// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ratchet-nac/pawl/cmd/pawl/cli"
	"github.com/ratchet-nac/pawl/lib/version"
)

// rootCommand builds the pawl command tree. Command output goes to
// stdout; help and diagnostics go to stderr.
func rootCommand(stdout io.Writer) *cli.Command {
	console := consoleCommand()
	return &cli.Command{
		Name: "pawl",
		Description: `pawl: operator console for the ratchet network-access-control backend.

Without a subcommand, opens the interactive console. The subcommands
manage trusted networks, operator accounts and the command policy from
scripts, sharing the console's saved session.`,
		Usage:  "pawl [command] [flags]",
		Params: console.Params,
		Run:    console.Run,
		Subcommands: []*cli.Command{
			console,
			loginCommand(stdout),
			logoutCommand(stdout),
			whoamiCommand(stdout),
			entityCommand(stdout, deviceCommands),
			entityCommand(stdout, userCommands),
			policyCommand(stdout),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, _ []string, _ *slog.Logger) error {
					fmt.Fprintln(stdout, version.Current().String())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Open the console against a local ratchet",
				Command:     "pawl --server http://localhost:8000/",
			},
			{
				Description: "Log in from a script",
				Command:     "pawl login admin --password-file ~/.ratchet-password",
			},
			{
				Description: "List trusted networks as JSON",
				Command:     "pawl devices list --json",
			},
			{
				Description: "Replace the command policy",
				Command:     "pawl policy push policy.txt",
			},
		},
	}
}
