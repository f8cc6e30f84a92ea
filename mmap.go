// Copyright 2026 The arc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

//go:build unix

package arc

import (
	"fmt"

	"github.com/stablebytes/arc/internal/mmap"
)

// Mapped is a read-only memory-mapped region satisfying the Container
// capability.  It has no exported fields and no generic constructor:
// the only way to obtain one is MapFileAssumeStable, whose name carries
// the obligation the type system cannot.
type Mapped struct {
	m *mmap.Mapping
}

// MapFileAssumeStable maps the file at path read-only and returns it as
// a stable byte container.
//
// SAFETY: the caller promises that no agent -- this process or any
// other -- modifies or truncates the backing file for the lifetime of
// the mapping.  A concurrent writer changes the mapped bytes in place,
// which voids the one-time validation every Archive over this container
// relies on.  Nothing here can detect or prevent that.
func MapFileAssumeStable(path string) (*Mapped, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmap.Open(%s): %w", path, err)
	}
	return &Mapped{m: m}, nil
}

func (mm *Mapped) Bytes() []byte {
	return mm.m.Data()
}

func (mm *Mapped) Len() int {
	return mm.m.Len()
}

// Close unmaps the region.  Any Archive still holding this container
// must not be used afterwards.
func (mm *Mapped) Close() error {
	return mm.m.Close()
}

// MappedMut is a read-write memory-mapped region satisfying the
// MutableContainer capability.  Like Mapped, it is only reachable
// through its obligation-named constructor.
type MappedMut struct {
	m *mmap.Mapping
}

// MapFileMutAssumeStable maps the file at path read-write with a shared
// mapping, so mutations through BytesMut land in the file.
//
// SAFETY: same obligation as MapFileAssumeStable, and stricter -- this
// process may change the bytes, but only through BytesMut (in practice,
// through GetMut on the owning Archive).  Any other writer, including a
// second mapping of the same file, breaks the stability contract.
func MapFileMutAssumeStable(path string) (*MappedMut, error) {
	m, err := mmap.OpenWritable(path)
	if err != nil {
		return nil, fmt.Errorf("mmap.OpenWritable(%s): %w", path, err)
	}
	return &MappedMut{m: m}, nil
}

func (mm *MappedMut) Bytes() []byte {
	return mm.m.Data()
}

func (mm *MappedMut) BytesMut() []byte {
	return mm.m.Data()
}

func (mm *MappedMut) Len() int {
	return mm.m.Len()
}

// Sync flushes in-place mutations to the backing file.
func (mm *MappedMut) Sync() error {
	return mm.m.Sync()
}

// Close unmaps the region without an implicit Sync.
func (mm *MappedMut) Close() error {
	return mm.m.Close()
}
