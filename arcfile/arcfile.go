// Copyright 2026 The arc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

//go:build unix

// Package arcfile persists archived byte buffers as files, so archives
// can be handed between processes or process restarts without
// re-serializing.
//
// An archive file is a 32-byte header followed by the archived bytes,
// stored either raw or zstd-compressed.  Raw files are memory-mapped on
// Open and read in place; compressed files are decompressed into memory
// (the copy is the price of compression, there is no zero-copy path
// through zstd).
package arcfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgryski/go-farm"
	"github.com/klauspost/compress/zstd"

	"github.com/stablebytes/arc/internal/mmap"
)

const (
	defaultBufferSize = 4 * 1024 * 1024
	maxPreallocBytes  = 1 << 30
)

// Options control how Create lays the archive down on disk.
type Options struct {
	// Compress stores the archived bytes zstd-compressed.  Opening a
	// compressed file decompresses into memory rather than mapping.
	Compress bool
}

// Create writes the archived bytes to path.  The file is written to a
// temporary name in the same directory, synced, made read-only, and
// atomically renamed into place, so a crash never leaves a partial
// archive at path.
func Create(path string, archived []byte, opts Options) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("filepath.Abs: %w", err)
	}

	stored := archived
	h := newFileHeader()
	h.archiveLen = uint64(len(archived))
	if opts.Compress {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return fmt.Errorf("zstd.NewWriter: %w", err)
		}
		stored = enc.EncodeAll(archived, nil)
		_ = enc.Close()
		h.flags |= flagZstd
	}
	h.storedLen = uint64(len(stored))
	h.checksum = uint32(farm.Hash64(stored))

	f, err := os.CreateTemp(filepath.Dir(path), "arc.*.tmp")
	if err != nil {
		return fmt.Errorf("os.CreateTemp (may need permissions for dir containing path): %w", err)
	}
	defer func() {
		if f != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	w := bufio.NewWriterSize(f, defaultBufferSize)
	if _, err := h.WriteTo(w); err != nil {
		return fmt.Errorf("fileHeader.WriteTo: %w", err)
	}
	if _, err := w.Write(stored); err != nil {
		return fmt.Errorf("bufio.Write: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("bufio.Flush: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("f.Sync: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("f.Close: %w", err)
	}

	if err := os.Chmod(f.Name(), 0444); err != nil {
		return fmt.Errorf("os.Chmod(0444): %w", err)
	}
	if err := os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("os.Rename: %w", err)
	}
	f = nil

	return nil
}

// File is an opened archive file exposing the stored archived bytes as
// a read-only stable container.  Hand it to the archive constructor and
// Close it when the archive is dropped.
type File struct {
	m   *mmap.Mapping // non-nil when the archive is mapped in place
	buf []byte        // decompressed archive otherwise
}

// Open opens the archive file at path.
//
// For raw files the archived bytes are memory-mapped and read in place;
// the stability contract then extends to the file itself, which must
// not be modified by any process while the File is open.  For
// compressed files the bytes are decompressed into process memory and
// the file plays no further part.
func Open(path string) (*File, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmap.Open(%s): %w", path, err)
	}

	data := m.Data()
	var h fileHeader
	if err := h.UnmarshalBytes(data); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("fileHeader.UnmarshalBytes: %w", err)
	}
	if uint64(len(data)) != fileHeaderSize+h.storedLen {
		_ = m.Close()
		return nil, fmt.Errorf("archive file truncated: %d bytes, header describes %d",
			len(data), fileHeaderSize+h.storedLen)
	}

	if h.flags&flagZstd == 0 {
		// raw: the archive validator is the integrity check on this
		// path, rereading the whole mapping to checksum it here would
		// defeat the point of mapping it
		return &File{m: m}, nil
	}

	stored := data[fileHeaderSize:]
	if got := uint32(farm.Hash64(stored)); got != h.checksum {
		_ = m.Close()
		return nil, fmt.Errorf("checksum failed (%#08x != %#08x): archive file corrupted", got, h.checksum)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("zstd.NewReader: %w", err)
	}
	// archiveLen comes from the (checksummed but untrusted) header; cap
	// the preallocation and let DecodeAll grow past it if it must
	buf, err := dec.DecodeAll(stored, make([]byte, 0, min(h.archiveLen, maxPreallocBytes)))
	dec.Close()
	if cerr := m.Close(); cerr != nil {
		return nil, cerr
	}
	if err != nil {
		return nil, fmt.Errorf("zstd.DecodeAll: %w", err)
	}
	if uint64(len(buf)) != h.archiveLen {
		return nil, fmt.Errorf("decompressed to %d bytes, header describes %d", len(buf), h.archiveLen)
	}

	return &File{buf: buf}, nil
}

// Bytes returns the archived bytes.  For a mapped file this is a view
// straight into the mapping.
func (f *File) Bytes() []byte {
	if f.m != nil {
		return f.m.Data()[fileHeaderSize:]
	}
	return f.buf
}

// Mapped reports whether the archived bytes are read in place from a
// mapping rather than held in process memory.
func (f *File) Mapped() bool {
	return f.m != nil
}

// Close unmaps the file if it was mapped.  Views handed out earlier
// become invalid.
func (f *File) Close() error {
	if f.m != nil {
		return f.m.Close()
	}
	return nil
}
