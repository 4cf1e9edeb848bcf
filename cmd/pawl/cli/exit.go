// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
)

// ExitError signals a non-zero exit code without printing an extra
// error message. The command is expected to have written its own
// output already; "pawl whoami" uses it to exit 1 when logged out.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// ExitCode maps a command error to a process exit status: 0 for nil,
// the requested code for an ExitError, a per-category code for a
// ToolError, and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitError *ExitError
	if errors.As(err, &exitError) {
		return exitError.Code
	}
	var toolError *ToolError
	if errors.As(err, &toolError) {
		switch toolError.Category {
		case CategoryValidation:
			return 2
		case CategoryNotFound:
			return 3
		case CategoryForbidden:
			return 4
		case CategoryConflict:
			return 5
		case CategoryTransient:
			return 6
		}
	}
	return 1
}

// Silent reports whether err should exit without an "error:" line.
func Silent(err error) bool {
	var exitError *ExitError
	return errors.As(err, &exitError)
}
