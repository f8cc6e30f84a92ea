// Copyright 2026 The arc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package arc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestBufAliases(t *testing.T) {
	b := NewBuf([]byte{1, 2, 3})
	require.Equal(t, 3, b.Len())

	ro, rw := b.Bytes(), b.BytesMut()
	require.True(t, &ro[0] == &rw[0])

	rw[0] = 9
	require.Equal(t, uint8(9), b.Bytes()[0])
}

func TestAlignedAlignment(t *testing.T) {
	for _, n := range []int{0, 1, 7, 64, 1000} {
		a := NewAligned(n)
		require.Equal(t, n, a.Len())
		if n > 0 {
			addr := uintptr(unsafe.Pointer(&a.Bytes()[0]))
			require.Zero(t, addr%bufAlignment)
		}
		// capacity is pinned so an append can never relocate the buffer
		require.Equal(t, len(a.b), cap(a.b))
	}
}

func TestSharedClone(t *testing.T) {
	s := NewShared([]byte{1, 2, 3})
	c := s.Clone()
	require.NotSame(t, s, c)

	sb, cb := s.Bytes(), c.Bytes()
	require.True(t, &sb[0] == &cb[0])
}

func TestBorrowed(t *testing.T) {
	underlying := []byte{4, 5, 6}
	b := Borrowed(underlying)
	bb := b.Bytes()
	require.True(t, &bb[0] == &underlying[0])
}

func TestFrozen(t *testing.T) {
	f := NewFrozen([]byte{7, 8})
	require.Equal(t, []byte{7, 8}, f.Bytes())
}
