// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package ratchet

import (
	"fmt"
	"net/http"
)

// Outcome classifies a ratchet response status code.
type Outcome int

const (
	// OutcomeAccepted is a 200: the request took effect.
	OutcomeAccepted Outcome = iota
	// OutcomeGone is a 410: the target no longer exists.
	OutcomeGone
	// OutcomeUnavailable is a 503: ratchet could not reach the
	// enforcement point. The change may or may not take effect.
	OutcomeUnavailable
	// OutcomeUnauthorized is a 401: the operator must log in again.
	OutcomeUnauthorized
	// OutcomeRejected is any other status: a domain conflict, a
	// missing target, a policy syntax error.
	OutcomeRejected
)

// Classify maps an HTTP status code to its Outcome.
func Classify(statusCode int) Outcome {
	switch statusCode {
	case http.StatusOK:
		return OutcomeAccepted
	case http.StatusGone:
		return OutcomeGone
	case http.StatusServiceUnavailable:
		return OutcomeUnavailable
	case http.StatusUnauthorized:
		return OutcomeUnauthorized
	default:
		return OutcomeRejected
	}
}

func (outcome Outcome) String() string {
	switch outcome {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeGone:
		return "gone"
	case OutcomeUnavailable:
		return "unavailable"
	case OutcomeUnauthorized:
		return "unauthorized"
	case OutcomeRejected:
		return "rejected"
	default:
		return fmt.Sprintf("outcome(%d)", int(outcome))
	}
}

// Result is the response to a mutating request.
type Result struct {
	// StatusCode is the HTTP status code ratchet returned.
	StatusCode int

	// Body is the response body, kept for diagnostics. Ratchet's
	// mutation responses carry no structured payload.
	Body string
}

// Outcome classifies the result's status code.
func (result Result) Outcome() Outcome {
	return Classify(result.StatusCode)
}

// StatusError is returned by fetch operations when ratchet answers
// with anything other than 200. Callers use errors.As to distinguish
// it from transport failures:
//
//	var statusErr *ratchet.StatusError
//	if errors.As(err, &statusErr) { ... redirect to login ... }
type StatusError struct {
	// Endpoint is the relative path that was requested (e.g., "getdevs").
	Endpoint string
	// StatusCode is the HTTP status code of the response.
	StatusCode int
	// Body is the response body, truncated for display.
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("ratchet: %s returned %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("ratchet: %s returned %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Outcome classifies the error's status code.
func (e *StatusError) Outcome() Outcome {
	return Classify(e.StatusCode)
}
