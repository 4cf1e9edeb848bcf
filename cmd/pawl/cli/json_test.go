// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ratchet-nac/pawl/lib/ratchet"
)

func TestEmitJSON(t *testing.T) {
	var output bytes.Buffer
	disabled := JSONOutput{}
	if done, err := disabled.EmitJSON(&output, []ratchet.Device{{NetworkID: "10.0.0.0/8"}}); done || err != nil {
		t.Fatalf("EmitJSON without --json = (%v, %v), want (false, nil)", done, err)
	}
	if output.Len() != 0 {
		t.Errorf("EmitJSON without --json wrote %q", output.String())
	}

	enabled := JSONOutput{OutputJSON: true}
	done, err := enabled.EmitJSON(&output, []ratchet.Device{{NetworkID: "10.0.0.0/8"}})
	if !done || err != nil {
		t.Fatalf("EmitJSON = (%v, %v), want (true, nil)", done, err)
	}
	if !strings.Contains(output.String(), `"network_id": "10.0.0.0/8"`) {
		t.Errorf("output = %q, want indented network_id", output.String())
	}
}

func TestEmitJSON_NilSliceIsEmptyArray(t *testing.T) {
	var output bytes.Buffer
	enabled := JSONOutput{OutputJSON: true}
	var users []ratchet.User
	if _, err := enabled.EmitJSON(&output, users); err != nil {
		t.Fatalf("EmitJSON error: %v", err)
	}
	if got := strings.TrimSpace(output.String()); got != "[]" {
		t.Errorf("output = %q, want []", got)
	}
}
