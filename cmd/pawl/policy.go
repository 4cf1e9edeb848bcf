// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ratchet-nac/pawl/cmd/pawl/cli"
)

// maxPolicySize bounds a policy file read by "policy push".
const maxPolicySize = 4 << 20

func policyCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "policy",
		Summary: "Read or replace the command policy",
		Subcommands: []*cli.Command{
			policyGetCommand(stdout),
			policyPushCommand(stdout),
		},
	}
}

func policyGetCommand(stdout io.Writer) *cli.Command {
	var params connectionParams

	return &cli.Command{
		Name:    "get",
		Summary: "Print the command policy exactly as ratchet stores it",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			connection, err := params.open(logger)
			if err != nil {
				return err
			}
			if err := connection.requireSession(); err != nil {
				return err
			}

			requestContext, cancel := connection.request(ctx)
			defer cancel()
			policy, err := connection.client.GetPolicy(requestContext)
			if err != nil {
				return connection.fetchFailed("fetching policy", err)
			}
			_, err = io.WriteString(stdout, policy)
			return err
		},
	}
}

func policyPushCommand(stdout io.Writer) *cli.Command {
	var params connectionParams

	return &cli.Command{
		Name:    "push",
		Summary: "Replace the command policy with a file",
		Description: `Send a policy file to ratchet, byte for byte. "-" reads stdin.
Ratchet rejects text it cannot parse; the previous policy stays in
force.`,
		Usage: "pawl policy push <file> [flags]",
		Examples: []cli.Example{
			{
				Description: "Edit the policy in $EDITOR and push it back",
				Command:     "pawl policy get > policy.txt && $EDITOR policy.txt && pawl policy push policy.txt",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("usage: pawl policy push <file>")
			}
			policy, err := readPolicy(args[0])
			if err != nil {
				return err
			}

			connection, err := params.open(logger)
			if err != nil {
				return err
			}
			if err := connection.requireSession(); err != nil {
				return err
			}

			requestContext, cancel := connection.request(ctx)
			defer cancel()
			result, err := connection.client.PushPolicy(requestContext, policy)
			if err := connection.mutated("pushing policy", result, err, false); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "Policy pushed.")
			return nil
		},
	}
}

func readPolicy(path string) (string, error) {
	var source io.Reader = os.Stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return "", cli.NotFound("%w", err)
		}
		defer file.Close()
		source = file
	}
	data, err := io.ReadAll(io.LimitReader(source, maxPolicySize+1))
	if err != nil {
		return "", cli.Internal("reading policy: %w", err)
	}
	if len(data) > maxPolicySize {
		return "", cli.Validation("policy is larger than %d bytes", maxPolicySize)
	}
	return string(data), nil
}
