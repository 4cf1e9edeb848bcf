// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// exitCoder is implemented by errors that carry their own exit status.
type exitCoder interface {
	ExitCode() int
}

// Fatal reports err on stderr and exits. An error carrying an exit
// code (anywhere in its chain) exits with that code and prints
// nothing, because its producer has already written its output.
// Anything else prints "error: err" and exits 1.
func Fatal(err error) {
	os.Exit(report(os.Stderr, err))
}

func report(w io.Writer, err error) int {
	var coder exitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	fmt.Fprintf(w, "error: %v\n", err)
	return 1
}
