// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ratchet-nac/pawl/cmd/pawl/cli"
)

type loginParams struct {
	connectionParams
	cli.JSONOutput
	PasswordFile string `json:"-" flag:"password-file" desc:"read the password from a file (\"-\" for stdin) instead of prompting"`
}

type sessionOutput struct {
	Server        string     `json:"server"`
	Username      string     `json:"username,omitempty"`
	SessionFile   string     `json:"session_file"`
	Authenticated bool       `json:"authenticated"`
	Expires       *time.Time `json:"expires,omitempty"`
}

func loginCommand(stdout io.Writer) *cli.Command {
	var params loginParams

	return &cli.Command{
		Name:    "login",
		Summary: "Log in to ratchet and save the session",
		Description: `Authenticate with ratchet and save the session cookie.

The session is stored with mode 0600 at $PAWL_SESSION_FILE, the
configured session_file, or $XDG_CONFIG_HOME/pawl/session.json, and is
shared with the interactive console.`,
		Usage: "pawl login <username> [flags]",
		Examples: []cli.Example{
			{
				Description: "Log in interactively",
				Command:     "pawl login admin",
			},
			{
				Description: "Log in with the password on stdin",
				Command:     "pass show ratchet | pawl login admin --password-file -",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("usage: pawl login <username>")
			}
			username := args[0]

			connection, err := params.open(logger)
			if err != nil {
				return err
			}

			password, err := cli.ReadPassword(params.PasswordFile)
			if err != nil {
				return err
			}
			defer password.Close()

			requestContext, cancel := connection.request(ctx)
			defer cancel()
			token, ok, err := connection.client.Login(requestContext, username, password.String())
			if err != nil {
				return cli.FromRatchet("logging in", err)
			}
			if !ok {
				return cli.Forbidden("ratchet rejected the credentials for %q", username)
			}
			if err := connection.keeper.Remember(); err != nil {
				return cli.Internal("saving session: %w", err)
			}
			logger.Debug("session saved", "path", connection.store.Path)

			output := sessionOutput{
				Server:        connection.client.BaseURL(),
				Username:      username,
				SessionFile:   connection.store.Path,
				Authenticated: true,
			}
			if !token.Expires.IsZero() {
				output.Expires = &token.Expires
			}
			if done, err := params.EmitJSON(stdout, output); done {
				return err
			}
			fmt.Fprintf(stdout, "Logged in to %s as %s.\n", output.Server, username)
			return nil
		},
	}
}

func logoutCommand(stdout io.Writer) *cli.Command {
	var params connectionParams

	return &cli.Command{
		Name:    "logout",
		Summary: "Invalidate the session and delete it locally",
		Description: `Ask ratchet to invalidate the saved session, then delete the local
session file. The file is deleted even when ratchet cannot be reached.`,
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			connection, err := params.open(logger)
			if err != nil {
				return err
			}

			if connection.restore() {
				requestContext, cancel := connection.request(ctx)
				_, err := connection.client.Logout(requestContext)
				cancel()
				if err != nil {
					logger.Warn("ratchet did not confirm logout", "error", err)
				}
			}
			if err := connection.keeper.Forget(); err != nil {
				return cli.Internal("deleting session: %w", err)
			}
			fmt.Fprintf(stdout, "Logged out of %s.\n", connection.client.BaseURL())
			return nil
		},
	}
}

type whoamiParams struct {
	connectionParams
	cli.JSONOutput
}

func whoamiCommand(stdout io.Writer) *cli.Command {
	var params whoamiParams

	return &cli.Command{
		Name:    "whoami",
		Summary: "Check whether the saved session is still valid",
		Description: `Check the saved session with the configured session probe: the
ratchet "logged" endpoint, or the saved cookie's expiry when
session_probe is "cookie". Exits 1 when not logged in.`,
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			connection, err := params.open(logger)
			if err != nil {
				return err
			}

			output := sessionOutput{
				Server:      connection.client.BaseURL(),
				SessionFile: connection.store.Path,
			}
			if connection.restore() {
				requestContext, cancel := connection.request(ctx)
				defer cancel()
				authenticated, err := connection.probe().Authenticated(requestContext)
				if err != nil {
					return cli.FromRatchet("checking session", err)
				}
				output.Authenticated = authenticated
				if token, ok := connection.client.AuthToken(); ok && !token.Expires.IsZero() {
					output.Expires = &token.Expires
				}
			}

			done, err := params.EmitJSON(stdout, output)
			if !done {
				if output.Authenticated {
					fmt.Fprintf(stdout, "Logged in to %s.\n", output.Server)
					if output.Expires != nil {
						fmt.Fprintf(stdout, "Session expires %s.\n", output.Expires.Local().Format(time.RFC1123))
					}
				} else {
					fmt.Fprintf(stdout, "Not logged in to %s.\n", output.Server)
				}
			}
			if err != nil {
				return err
			}
			if !output.Authenticated {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}
