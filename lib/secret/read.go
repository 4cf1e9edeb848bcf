// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// maxSecretFileSize bounds what ReadFile will load. A password file
// larger than this is almost certainly the wrong file.
const maxSecretFileSize = 64 << 10

// ReadFile reads a secret from path, or the first line of stdin when
// path is "-". Trailing line endings are removed; other whitespace is
// kept because it may be part of the password. The caller must Close
// the returned Buffer.
func ReadFile(path string) (*Buffer, error) {
	var data []byte
	if path == "-" {
		line, err := bufio.NewReader(os.Stdin).ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("secret: reading stdin: %w", err)
		}
		data = line
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("secret: %w", err)
		}
		defer file.Close()
		data, err = io.ReadAll(io.LimitReader(file, maxSecretFileSize+1))
		if err != nil {
			Zero(data)
			return nil, fmt.Errorf("secret: reading %s: %w", path, err)
		}
		if len(data) > maxSecretFileSize {
			Zero(data)
			return nil, fmt.Errorf("secret: %s is larger than %d bytes", path, maxSecretFileSize)
		}
	}

	trimmed := bytes.TrimRight(data, "\r\n")
	if len(trimmed) == 0 {
		Zero(data)
		return nil, fmt.Errorf("secret: %s is empty", describeSource(path))
	}
	buffer, err := FromBytes(trimmed)
	Zero(data)
	return buffer, err
}

func describeSource(path string) string {
	if path == "-" {
		return "stdin"
	}
	return path
}
