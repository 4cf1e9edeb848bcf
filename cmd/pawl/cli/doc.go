// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework for the pawl binary.
//
// A [Command] is a node in a tree: either it dispatches to
// Subcommands by the first positional argument, or it parses its
// flags and calls Run. Flags come from a params struct whose fields
// carry flag, desc and default tags ([FlagsFromParams]); unknown
// commands and flags get a Levenshtein-based "did you mean" hint.
//
// Commands report failures as [*ToolError] values carrying an
// [ErrorCategory], or as [*ExitError] when they have already written
// their own output and only need a non-zero exit status. [ExitCode]
// maps either to the process exit status.
package cli
