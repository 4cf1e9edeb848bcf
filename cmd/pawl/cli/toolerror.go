// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"

	"github.com/ratchet-nac/pawl/lib/ratchet"
)

// ErrorCategory classifies command errors so scripts can tell a typo
// from an expired session from an unreachable server by exit status.
type ErrorCategory string

const (
	// CategoryValidation: bad input (missing arguments, unknown flags).
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound: a referenced device, user or file does not exist.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryForbidden: ratchet rejected the session. Log in again.
	CategoryForbidden ErrorCategory = "forbidden"

	// CategoryConflict: the change conflicts with existing state, such
	// as adding a device that already exists.
	CategoryConflict ErrorCategory = "conflict"

	// CategoryTransient: network failure, timeout, or ratchet answered
	// 503. Retrying may help.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal: anything else, including local I/O failures.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized error returned by commands. It wraps
// the underlying error so errors.Is and errors.As see the full chain.
type ToolError struct {
	Category ErrorCategory
	Err      error
	// Hint is an optional next step printed after the message.
	Hint string
}

func (e *ToolError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n\n" + e.Hint
}

// WithHint sets the hint and returns the receiver for chaining.
func (e *ToolError) WithHint(hint string) *ToolError {
	e.Hint = hint
	return e
}

func (e *ToolError) Unwrap() error { return e.Err }

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Forbidden creates a forbidden error.
func Forbidden(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryForbidden, Err: fmt.Errorf(format, args...)}
}

// Conflict creates a conflict error.
func Conflict(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryConflict, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient error.
func Transient(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// FromRatchet categorizes an error returned by the ratchet client.
// Non-200 responses are classified by status; anything else is a
// transport failure.
func FromRatchet(action string, err error) *ToolError {
	var toolError *ToolError
	if errors.As(err, &toolError) {
		return toolError
	}
	var statusError *ratchet.StatusError
	if errors.As(err, &statusError) {
		return &ToolError{Category: categoryFor(statusError.Outcome(), statusError.StatusCode), Err: fmt.Errorf("%s: %w", action, err)}
	}
	return Transient("%s: %w", action, err)
}

// FromResult turns a non-accepted mutation result into an error, or
// returns nil for 200. gone reports whether a 410 counts as success,
// which it does for removals.
func FromResult(action string, result ratchet.Result, gone bool) *ToolError {
	outcome := result.Outcome()
	if outcome == ratchet.OutcomeAccepted || (gone && outcome == ratchet.OutcomeGone) {
		return nil
	}
	return &ToolError{
		Category: categoryFor(outcome, result.StatusCode),
		Err:      fmt.Errorf("%s: ratchet returned %d: %s", action, result.StatusCode, result.Body),
	}
}

func categoryFor(outcome ratchet.Outcome, statusCode int) ErrorCategory {
	switch outcome {
	case ratchet.OutcomeUnauthorized:
		return CategoryForbidden
	case ratchet.OutcomeUnavailable:
		return CategoryTransient
	case ratchet.OutcomeGone:
		return CategoryNotFound
	}
	switch statusCode {
	case 400:
		return CategoryValidation
	case 404:
		return CategoryNotFound
	case 409:
		return CategoryConflict
	}
	return CategoryInternal
}
