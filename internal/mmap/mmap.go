// Copyright 2026 The arc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

//go:build unix

// Package mmap maps files into memory and hands the mapping out as a
// plain byte slice.
package mmap

import (
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sys/unix"
)

// Mapping is a file mapped into the address space.  The data slice is
// valid until Close.
type Mapping struct {
	data     []byte
	writable bool
}

// Open maps the file at path read-only.
func Open(path string) (*Mapping, error) {
	return open(path, false)
}

// OpenWritable maps the file at path read-write with a shared mapping:
// stores through Data are carried through to the underlying file.
func OpenWritable(path string) (*Mapping, error) {
	return open(path, true)
}

func open(path string, writable bool) (*Mapping, error) {
	flags := os.O_RDONLY
	prot := unix.PROT_READ
	if writable {
		flags = os.O_RDWR
		prot |= unix.PROT_WRITE
	}
	f, err := os.OpenFile(path, flags, 0)
	if err != nil {
		return nil, fmt.Errorf("os.OpenFile(%s): %w", path, err)
	}
	// the mapping outlives the descriptor
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("f.Stat: %w", err)
	}
	size := fi.Size()
	if size == 0 {
		// no region is mapped, so there is nothing for Close (or the
		// finalizer set below) to release
		return &Mapping{writable: writable}, nil
	}
	if size != int64(int(size)) {
		return nil, fmt.Errorf("file %s too large to map (%d bytes)", path, size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), prot, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("unix.Mmap: %w", err)
	}
	if err := unix.Madvise(data, unix.MADV_RANDOM); err != nil {
		_ = unix.Munmap(data)
		return nil, fmt.Errorf("madvise: %w", err)
	}

	m := &Mapping{data: data, writable: writable}
	// backstop for callers that leak the mapping; Close is still the
	// expected path
	runtime.SetFinalizer(m, (*Mapping).Close)
	return m, nil
}

// Data returns the mapped bytes.  The slice must not be accessed after
// Close, and must not be written through unless the mapping is writable.
func (m *Mapping) Data() []byte {
	return m.data
}

func (m *Mapping) Len() int {
	return len(m.data)
}

// Writable reports whether stores through Data are permitted.
func (m *Mapping) Writable() bool {
	return m.writable
}

// Sync flushes stores made through a writable mapping to the underlying
// file.
func (m *Mapping) Sync() error {
	if m.data == nil {
		return nil
	}
	if err := unix.Msync(m.data, unix.MS_SYNC); err != nil {
		return fmt.Errorf("msync: %w", err)
	}
	return nil
}

// Close unmaps the region.  Data slices handed out earlier become
// invalid.
func (m *Mapping) Close() error {
	if m.data == nil {
		return nil
	}
	data := m.data
	m.data = nil
	runtime.SetFinalizer(m, nil)
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("munmap: %w", err)
	}
	return nil
}
