// Copyright 2026 The arc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

//go:build unix

package arcfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stablebytes/arc"
	"github.com/stablebytes/arc/flatrec"
)

var _ arc.Container = (*File)(nil)

func buildArchive(t *testing.T) ([]byte, *flatrec.Schema) {
	t.Helper()
	b := flatrec.NewBuilder()
	b.AddUint8(1, 4)
	b.AddUint64(2, 5)
	require.NoError(t, b.AddString(3, "persisted"))
	buf, err := b.Finish()
	require.NoError(t, err)
	schema, err := b.Schema()
	require.NoError(t, err)
	return buf, schema
}

func TestRoundTripRaw(t *testing.T) {
	archived, schema := buildArchive(t)
	path := filepath.Join(t.TempDir(), "out.arc")

	require.NoError(t, Create(path, archived, Options{}))

	f, err := Open(path)
	require.NoError(t, err)
	assert.True(t, f.Mapped())
	assert.Equal(t, archived, f.Bytes())

	a, err := arc.New[flatrec.Record](f, schema)
	require.NoError(t, err)
	assert.Equal(t, uint8(4), a.Get().Uint8(1))
	assert.Equal(t, "persisted", a.Get().Text(3))
	require.NoError(t, a.Close())
}

func TestRoundTripCompressed(t *testing.T) {
	archived, schema := buildArchive(t)
	path := filepath.Join(t.TempDir(), "out.arc.zst")

	require.NoError(t, Create(path, archived, Options{Compress: true}))

	f, err := Open(path)
	require.NoError(t, err)
	assert.False(t, f.Mapped())
	assert.Equal(t, archived, f.Bytes())

	a, err := arc.New[flatrec.Record](f, schema)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), a.Get().Uint64(2))
	require.NoError(t, a.Close())
}

func TestCreateIsAtomic(t *testing.T) {
	archived, _ := buildArchive(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "out.arc")

	require.NoError(t, Create(path, archived, Options{}))

	// no temp droppings left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "out.arc", entries[0].Name())

	// and the result is read-only
	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0444), fi.Mode().Perm())
}

func corruptFile(t *testing.T, path string, off int) {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	if off < 0 {
		off += len(raw)
	}
	raw[off] ^= 0x01
	require.NoError(t, os.Chmod(path, 0644))
	require.NoError(t, os.WriteFile(path, raw, 0644))
}

func TestOpenRejectsCorruptCompressed(t *testing.T) {
	archived, _ := buildArchive(t)
	path := filepath.Join(t.TempDir(), "out.arc.zst")
	require.NoError(t, Create(path, archived, Options{Compress: true}))

	corruptFile(t, path, -1)

	_, err := Open(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "checksum failed")
}

func TestOpenRejectsBadMagic(t *testing.T) {
	archived, _ := buildArchive(t)
	path := filepath.Join(t.TempDir(), "out.arc")
	require.NoError(t, Create(path, archived, Options{}))

	corruptFile(t, path, 0)

	_, err := Open(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad magic")
}

func TestOpenRejectsTruncated(t *testing.T) {
	archived, _ := buildArchive(t)
	path := filepath.Join(t.TempDir(), "out.arc")
	require.NoError(t, Create(path, archived, Options{}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.Chmod(path, 0644))
	require.NoError(t, os.WriteFile(path, raw[:len(raw)-1], 0644))

	_, err = Open(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "truncated")
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.arc"))
	require.Error(t, err)
}
