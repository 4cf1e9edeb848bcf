// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Buffer is secret material in locked, non-dumpable memory. A Buffer
// must not be copied. It is safe for concurrent use.
type Buffer struct {
	mu     sync.Mutex
	region []byte
	closed bool
}

// allocate maps size bytes of anonymous memory, locks them against
// swap and excludes them from core dumps.
func allocate(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("secret: buffer size must be positive, got %d", size)
	}
	region, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap: %w", err)
	}
	if err := unix.Mlock(region); err != nil {
		_ = unix.Munmap(region)
		return nil, fmt.Errorf("secret: mlock: %w", err)
	}
	if err := unix.Madvise(region, unix.MADV_DONTDUMP); err != nil {
		_ = unix.Munlock(region)
		_ = unix.Munmap(region)
		return nil, fmt.Errorf("secret: madvise(MADV_DONTDUMP): %w", err)
	}
	return region, nil
}

// FromBytes copies source into a new Buffer and zeroes source, so the
// caller's slice no longer holds the secret. Empty input is an error:
// ratchet never accepts an empty password.
func FromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, errors.New("secret: empty secret")
	}
	region, err := allocate(len(source))
	if err != nil {
		return nil, err
	}
	copy(region, source)
	Zero(source)
	return &Buffer{region: region}, nil
}

// FromString copies value into a new Buffer. The string itself stays
// on the heap; use this for fixtures and flag values that were never
// secret-safe to begin with.
func FromString(value string) (*Buffer, error) {
	return FromBytes([]byte(value))
}

// Bytes returns a slice into the locked region. It must not outlive
// the Buffer. Panics after Close.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		panic("secret: read from closed buffer")
	}
	return b.region
}

// String returns a heap copy of the secret for APIs that need a
// string, such as a form field value. Panics after Close.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		panic("secret: read from closed buffer")
	}
	return string(b.region)
}

// Len returns the secret's length in bytes, or 0 after Close.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.region)
}

// Close zeroes and releases the region. Close is idempotent.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	Zero(b.region)
	unlockErr := unix.Munlock(b.region)
	unmapErr := unix.Munmap(b.region)
	b.region = nil

	if unlockErr != nil {
		return fmt.Errorf("secret: munlock: %w", unlockErr)
	}
	if unmapErr != nil {
		return fmt.Errorf("secret: munmap: %w", unmapErr)
	}
	return nil
}

// Zero overwrites data with zero bytes.
func Zero(data []byte) {
	clear(data)
}
