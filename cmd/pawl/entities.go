// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"github.com/ratchet-nac/pawl/cmd/pawl/cli"
	"github.com/ratchet-nac/pawl/lib/ratchet"
)

// entityCommands describes one ratchet collection for the shared
// list/add/edit/remove command group.
type entityCommands struct {
	// name is the plural command name; noun is the singular used in
	// messages.
	name        string
	noun        string
	identifier  string
	secretLabel string
	secretFlag  string
	summary     string

	// Removal is refused while the collection holds deleteFloor
	// entries or fewer. Ratchet needs at least one operator account.
	deleteFloor int

	// The operations take the client first so the ratchet.Client
	// method expressions fit.
	list   func(*ratchet.Client, context.Context) ([]string, error)
	add    saveFunc
	edit   saveFunc
	remove func(*ratchet.Client, context.Context, string) (ratchet.Result, error)
}

type saveFunc func(client *ratchet.Client, ctx context.Context, identifier, secret string) (ratchet.Result, error)

var deviceCommands = entityCommands{
	name:        "devices",
	noun:        "system",
	identifier:  "network-id",
	secretLabel: "Key",
	secretFlag:  "key-file",
	summary:     "Manage trusted networks",
	list: func(client *ratchet.Client, ctx context.Context) ([]string, error) {
		devices, err := client.ListDevices(ctx)
		if err != nil {
			return nil, err
		}
		identifiers := make([]string, len(devices))
		for index, device := range devices {
			identifiers[index] = device.NetworkID
		}
		return identifiers, nil
	},
	add:    (*ratchet.Client).AddDevice,
	edit:   (*ratchet.Client).EditDevice,
	remove: (*ratchet.Client).RemoveDevice,
}

var userCommands = entityCommands{
	name:        "users",
	noun:        "user",
	identifier:  "username",
	secretLabel: "Password",
	secretFlag:  "password-file",
	summary:     "Manage operator accounts",
	deleteFloor: 1,
	list: func(client *ratchet.Client, ctx context.Context) ([]string, error) {
		users, err := client.ListUsers(ctx)
		if err != nil {
			return nil, err
		}
		identifiers := make([]string, len(users))
		for index, user := range users {
			identifiers[index] = user.Username
		}
		return identifiers, nil
	},
	add:    (*ratchet.Client).AddUser,
	edit:   (*ratchet.Client).EditUser,
	remove: (*ratchet.Client).RemoveUser,
}

// entityCommand builds the command group for one collection.
func entityCommand(stdout io.Writer, entity entityCommands) *cli.Command {
	return &cli.Command{
		Name:    entity.name,
		Summary: entity.summary,
		Subcommands: []*cli.Command{
			entity.listCommand(stdout),
			entity.saveCommand(stdout, "add", entity.add),
			entity.saveCommand(stdout, "edit", entity.edit),
			entity.removeCommand(stdout),
		},
	}
}

type entityListParams struct {
	connectionParams
	cli.JSONOutput
}

func (entity entityCommands) listCommand(stdout io.Writer) *cli.Command {
	var params entityListParams

	return &cli.Command{
		Name:    "list",
		Summary: fmt.Sprintf("List %s, one per line", entity.name),
		Usage:   fmt.Sprintf("pawl %s list [flags]", entity.name),
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
			identifiers, err := entity.list(connection.client, requestContext)
			if err != nil {
				return connection.fetchFailed("listing "+entity.name, err)
			}

			if done, err := params.EmitJSON(stdout, identifiers); done {
				return err
			}
			for _, identifier := range identifiers {
				fmt.Fprintln(stdout, identifier)
			}
			return nil
		},
	}
}

type entitySaveParams struct {
	connectionParams
	SecretFile string
}

func (entity entityCommands) saveCommand(stdout io.Writer, verb string, save saveFunc) *cli.Command {
	var params entitySaveParams

	return &cli.Command{
		Name:    verb,
		Summary: fmt.Sprintf("%s a %s", capitalize(verb), entity.noun),
		Description: fmt.Sprintf(`%s a %s. Without --%s, prompts for the %s twice with echo
disabled.`, capitalize(verb), entity.noun, entity.secretFlag, entity.secretLabel),
		Usage: fmt.Sprintf("pawl %s %s <%s> [flags]", entity.name, verb, entity.identifier),
		Flags: func() *pflag.FlagSet {
			flagSet := cli.FlagsFromParams(verb, &params.connectionParams)
			flagSet.StringVar(&params.SecretFile, entity.secretFlag, "",
				fmt.Sprintf("read the %s from a file (\"-\" for stdin)", entity.secretLabel))
			return flagSet
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 || args[0] == "" {
				return cli.Validation("usage: pawl %s %s <%s>", entity.name, verb, entity.identifier)
			}
			identifier := args[0]

			connection, err := params.open(logger)
			if err != nil {
				return err
			}
			if err := connection.requireSession(); err != nil {
				return err
			}

			secret, err := cli.ReadNewSecret(entity.secretLabel, params.SecretFile)
			if err != nil {
				return err
			}
			defer secret.Close()

			requestContext, cancel := connection.request(ctx)
			defer cancel()
			result, err := save(connection.client, requestContext, identifier, secret.String())
			if err := connection.mutated(fmt.Sprintf("%s %s %q", verb, entity.noun, identifier), result, err, false); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "%s %s.\n", pastTense(verb), identifier)
			return nil
		},
	}
}

func (entity entityCommands) removeCommand(stdout io.Writer) *cli.Command {
	var params connectionParams

	return &cli.Command{
		Name:    "remove",
		Summary: fmt.Sprintf("Remove a %s", entity.noun),
		Usage:   fmt.Sprintf("pawl %s remove <%s> [flags]", entity.name, entity.identifier),
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 || args[0] == "" {
				return cli.Validation("usage: pawl %s remove <%s>", entity.name, entity.identifier)
			}
			identifier := args[0]

			connection, err := params.open(logger)
			if err != nil {
				return err
			}
			if err := connection.requireSession(); err != nil {
				return err
			}

			if entity.deleteFloor > 0 {
				listContext, cancel := connection.request(ctx)
				identifiers, err := entity.list(connection.client, listContext)
				cancel()
				if err != nil {
					return connection.fetchFailed("listing "+entity.name, err)
				}
				if len(identifiers) <= entity.deleteFloor {
					return cli.Validation("refusing to remove %q: it is the last %s", identifier, entity.noun)
				}
			}

			requestContext, cancel := connection.request(ctx)
			defer cancel()
			result, err := entity.remove(connection.client, requestContext, identifier)
			if err := connection.mutated(fmt.Sprintf("remove %s %q", entity.noun, identifier), result, err, true); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Removed %s.\n", identifier)
			return nil
		},
	}
}

func capitalize(verb string) string {
	if verb == "" {
		return verb
	}
	return strings.ToUpper(verb[:1]) + verb[1:]
}

func pastTense(verb string) string {
	switch verb {
	case "add":
		return "Added"
	case "edit":
		return "Updated"
	}
	return capitalize(verb)
}
