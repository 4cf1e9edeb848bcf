// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package ratchet

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// maxResponseSize bounds every response body read. Device and user
// listings and policy texts are small; the bound only protects the
// console from a misbehaving server.
const maxResponseSize int64 = 16 << 20

// maxErrorBodyLength bounds the response text carried in a
// StatusError so error messages stay on one status-bar line.
const maxErrorBodyLength = 200

// readResponse reads a response body up to maxResponseSize bytes.
func readResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, maxResponseSize))
}

// errorBody trims a response body for inclusion in an error message.
func errorBody(body []byte) string {
	text := string(bytes.TrimSpace(body))
	if len(text) > maxErrorBodyLength {
		return text[:maxErrorBodyLength] + "..."
	}
	return text
}

// formField is one name/value pair of a multipart form body. Fields
// are kept in a slice so the wire order matches the call site.
type formField struct {
	name  string
	value string
}

// encodeForm builds a multipart/form-data body. Returns the body and
// the Content-Type header value carrying the boundary.
func encodeForm(fields []formField) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, field := range fields {
		if err := writer.WriteField(field.name, field.value); err != nil {
			return nil, "", fmt.Errorf("ratchet: encoding form field %q: %w", field.name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("ratchet: closing form body: %w", err)
	}
	return &body, writer.FormDataContentType(), nil
}
