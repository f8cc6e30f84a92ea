// Copyright 2026 The arc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package arc

import (
	"unsafe"
)

// Container is the capability an owned byte buffer implements so an
// Archive can be built on top of it.
//
// SAFETY: every call to Bytes must return a view of the identical
// underlying buffer, and the buffer's contents must never change between
// calls except through MutableContainer.BytesMut.  This cannot be checked
// at runtime; an implementation that hands out different bytes on
// different calls silently breaks every guarantee the Archive makes after
// validation.
type Container interface {
	Bytes() []byte
}

// MutableContainer extends Container with the single authorized path for
// changing buffer contents.
//
// SAFETY: BytesMut must alias the exact buffer Bytes returns, and no
// other method on the implementation may relocate or reallocate that
// buffer while an Archive owns it.
type MutableContainer interface {
	Container
	BytesMut() []byte
}

// Buf is an owned, mutable byte buffer.  The length is fixed once the
// buffer is handed to an Archive; contents may be changed in place
// through BytesMut.
type Buf struct {
	b []byte
}

// NewBuf takes ownership of b.  The caller must not retain or mutate b
// afterwards.
func NewBuf(b []byte) *Buf {
	return &Buf{b: b}
}

func (b *Buf) Bytes() []byte {
	return b.b
}

func (b *Buf) BytesMut() []byte {
	return b.b
}

func (b *Buf) Len() int {
	return len(b.b)
}

// Frozen is an owned, immutable byte buffer.  It has no mutable
// capability at all, so an Archive over it can never hand out a mutable
// view.
type Frozen struct {
	b []byte
}

// NewFrozen takes ownership of b.  The caller must not retain or mutate
// b afterwards.
func NewFrozen(b []byte) *Frozen {
	return &Frozen{b: b}
}

func (f *Frozen) Bytes() []byte {
	return f.b
}

// Borrowed adapts a caller-owned slice to the Container capability.
//
// SAFETY: the caller keeps ownership and must not mutate or free the
// slice while any Archive built over it is live.  Prefer Buf or Frozen,
// which take ownership, unless the borrow is genuinely required.
type Borrowed []byte

func (b Borrowed) Bytes() []byte {
	return b
}

const bufAlignment = 64

// Aligned is a mutable byte buffer whose backing array starts on a
// 64-byte boundary, matching the alignment archived records are laid
// out for.
type Aligned struct {
	b []byte
}

// NewAligned returns a zeroed Aligned buffer of length n.
func NewAligned(n int) *Aligned {
	raw := make([]byte, n+bufAlignment)
	off := int(bufAlignment - uintptr(unsafe.Pointer(&raw[0]))%bufAlignment)
	off %= bufAlignment
	// the full slice expression pins capacity so append can never grow
	// (and so relocate) the buffer out from under us
	return &Aligned{b: raw[off : off+n : off+n]}
}

func (a *Aligned) Bytes() []byte {
	return a.b
}

func (a *Aligned) BytesMut() []byte {
	return a.b
}

func (a *Aligned) Len() int {
	return len(a.b)
}

// Shared is an immutable byte buffer that supports duplicate ownership:
// Clone returns a second handle over the same bytes without copying
// them.  The garbage collector plays the role a reference count would in
// a manually managed runtime, so handles are independently droppable.
// Shared handles are safe to move across goroutines.
type Shared struct {
	b []byte
}

// NewShared takes ownership of b.  The caller must not retain or mutate
// b afterwards.
func NewShared(b []byte) *Shared {
	return &Shared{b: b}
}

func (s *Shared) Bytes() []byte {
	return s.b
}

// Clone returns a new handle sharing the same underlying buffer.
func (s *Shared) Clone() *Shared {
	return &Shared{b: s.b}
}
