// Copyright 2026 The arc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

//go:build unix

package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	contents := []byte("stable bytes")
	require.NoError(t, os.WriteFile(path, contents, 0644))

	m, err := Open(path)
	require.NoError(t, err)
	require.False(t, m.Writable())
	require.Equal(t, len(contents), m.Len())
	require.Equal(t, contents, m.Data())

	require.NoError(t, m.Close())
	// Close is idempotent
	require.NoError(t, m.Close())
}

func TestOpenWritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, []byte{0, 0, 0, 0}, 0644))

	m, err := OpenWritable(path)
	require.NoError(t, err)
	require.True(t, m.Writable())

	m.Data()[1] = 0xab
	require.NoError(t, m.Sync())
	require.NoError(t, m.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0xab, 0, 0}, got)
}

func TestOpenEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	m, err := Open(path)
	require.NoError(t, err)
	require.Zero(t, m.Len())
	require.NoError(t, m.Close())
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
