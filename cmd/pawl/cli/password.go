// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/ratchet-nac/pawl/lib/secret"
)

// ReadPassword reads the operator's login password. See [ReadSecret].
func ReadPassword(passwordFile string) (*secret.Buffer, error) {
	return ReadSecret("Password", passwordFile)
}

// ReadSecret reads a secret into locked memory. With a path it reads
// the file ("-" is the first line of stdin); otherwise it prompts for
// label on the terminal with echo disabled. The caller must Close the
// buffer.
func ReadSecret(label, path string) (*secret.Buffer, error) {
	if path != "" {
		buffer, err := secret.ReadFile(path)
		if err != nil {
			return nil, Validation("%w", err)
		}
		return buffer, nil
	}
	return promptSecret(label)
}

// ReadNewSecret reads a secret that is about to be stored in ratchet.
// Interactively it prompts twice and fails when the entries differ;
// a file is trusted as written.
func ReadNewSecret(label, path string) (*secret.Buffer, error) {
	if path != "" {
		return ReadSecret(label, path)
	}
	first, err := promptSecret(label)
	if err != nil {
		return nil, err
	}
	second, err := promptSecret("Confirm " + label)
	if err != nil {
		first.Close()
		return nil, err
	}
	defer second.Close()
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		first.Close()
		return nil, Validation("%s entries do not match", label)
	}
	return first, nil
}

func promptSecret(label string) (*secret.Buffer, error) {
	stdinFileDescriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFileDescriptor) {
		return nil, Validation("no terminal available to prompt for %s", label).
			WithHint("Pass the secret in a file instead (\"-\" reads stdin).")
	}

	fmt.Fprintf(os.Stderr, "%s: ", label)
	data, err := term.ReadPassword(stdinFileDescriptor)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, Internal("reading %s: %w", label, err)
	}
	if len(data) == 0 {
		return nil, Validation("%s is empty", label)
	}

	buffer, err := secret.FromBytes(data)
	if err != nil {
		secret.Zero(data)
		return nil, Internal("%w", err)
	}
	return buffer, nil
}
