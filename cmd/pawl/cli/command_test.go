// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "pawl",
		Subcommands: []*Command{
			{
				Name: "devices",
				Subcommands: []*Command{
					{
						Name: "list",
						Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
							called = "devices list"
							receivedArgs = args
							return nil
						},
					},
				},
			},
			{
				Name: "version",
				Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
					called = "version"
					return nil
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"devices", "list", "extra"}, quietLogger()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "devices list" {
		t.Errorf("dispatched to %q, want %q", called, "devices list")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "extra" {
		t.Errorf("args = %v, want [extra]", receivedArgs)
	}
}

func TestCommand_Execute_ParamsFlags(t *testing.T) {
	type loginParams struct {
		PasswordFile string `flag:"password-file" desc:"read the password from a file"`
		JSONOutput
	}
	var params loginParams
	var receivedArgs []string

	command := &Command{
		Name:   "login",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			receivedArgs = args
			return nil
		},
	}

	err := command.Execute(context.Background(), []string{"admin", "--password-file", "-", "--json"}, quietLogger())
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if params.PasswordFile != "-" {
		t.Errorf("PasswordFile = %q, want -", params.PasswordFile)
	}
	if !params.OutputJSON {
		t.Error("--json was not bound through the embedded JSONOutput")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "admin" {
		t.Errorf("args = %v, want [admin]", receivedArgs)
	}
}

func TestCommand_Execute_UnknownCommandSuggests(t *testing.T) {
	root := &Command{
		Name: "pawl",
		Subcommands: []*Command{
			{Name: "devices", Run: func(context.Context, []string, *slog.Logger) error { return nil }},
			{Name: "users", Run: func(context.Context, []string, *slog.Logger) error { return nil }},
		},
	}

	err := root.Execute(context.Background(), []string{"devcies"}, quietLogger())
	var toolError *ToolError
	if !errors.As(err, &toolError) || toolError.Category != CategoryValidation {
		t.Fatalf("Execute() error = %v, want a validation ToolError", err)
	}
	if !strings.Contains(err.Error(), `did you mean "devices"`) {
		t.Errorf("error = %q, want a suggestion for devices", err.Error())
	}
}

func TestCommand_Execute_UnknownFlagSuggests(t *testing.T) {
	type params struct {
		Server string `flag:"server" desc:"ratchet base URL"`
	}
	var bound params
	command := &Command{
		Name:   "whoami",
		Params: func() any { return &bound },
		Run:    func(context.Context, []string, *slog.Logger) error { return nil },
	}

	err := command.Execute(context.Background(), []string{"--sever", "x"}, quietLogger())
	if err == nil {
		t.Fatal("Execute() succeeded with an unknown flag")
	}
	if !strings.Contains(err.Error(), "did you mean --server?") {
		t.Errorf("error = %q, want a --server suggestion", err.Error())
	}
}

func TestCommand_Execute_SubcommandRequired(t *testing.T) {
	var help bytes.Buffer
	root := &Command{
		Name:   "policy",
		Output: &help,
		Subcommands: []*Command{
			{Name: "get", Summary: "print the command policy"},
			{Name: "push", Summary: "replace the command policy"},
		},
	}

	err := root.Execute(context.Background(), nil, quietLogger())
	if err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Fatalf("Execute() error = %v, want subcommand required", err)
	}
	for _, want := range []string{"Commands:", "get", "print the command policy", "push"} {
		if !strings.Contains(help.String(), want) {
			t.Errorf("help output missing %q:\n%s", want, help.String())
		}
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	var help bytes.Buffer
	ran := false
	type params struct {
		JSONOutput
	}
	var bound params
	command := &Command{
		Name:        "list",
		Description: "List every trusted network.",
		Output:      &help,
		Params:      func() any { return &bound },
		Examples:    []Example{{Description: "As JSON", Command: "pawl devices list --json"}},
		Run: func(context.Context, []string, *slog.Logger) error {
			ran = true
			return nil
		},
	}

	if err := command.Execute(context.Background(), []string{"--help"}, quietLogger()); err != nil {
		t.Fatalf("Execute(--help) error: %v", err)
	}
	if ran {
		t.Error("Run was called for --help")
	}
	for _, want := range []string{"List every trusted network.", "--json", "pawl devices list --json"} {
		if !strings.Contains(help.String(), want) {
			t.Errorf("help output missing %q:\n%s", want, help.String())
		}
	}
}

func TestCommand_FullName(t *testing.T) {
	var help bytes.Buffer
	leaf := &Command{Name: "push"}
	root := &Command{
		Name:        "pawl",
		Output:      &help,
		Subcommands: []*Command{{Name: "policy", Subcommands: []*Command{leaf}}},
	}

	// No Run on the leaf: Execute prints its help and fails, which
	// binds the parent chain.
	_ = root.Execute(context.Background(), []string{"policy", "push"}, quietLogger())
	if got := leaf.fullName(); got != "pawl policy push" {
		t.Errorf("fullName() = %q, want %q", got, "pawl policy push")
	}
}
