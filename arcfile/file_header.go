// Copyright 2026 The arc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

//go:build unix

package arcfile

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	magicArchiveFile  = 0xA7C1F11E
	fileFormatVersion = 1
	fileHeaderSize    = 32

	flagZstd = 1 << 0
)

type fileHeader struct {
	magic         uint32
	formatVersion uint32
	flags         uint32
	checksum      uint32
	storedLen     uint64
	archiveLen    uint64
}

func newFileHeader() *fileHeader {
	return &fileHeader{
		magic:         magicArchiveFile,
		formatVersion: fileFormatVersion,
	}
}

func (h *fileHeader) WriteTo(w io.Writer) (n int64, err error) {
	var headerBuf [fileHeaderSize]byte
	binary.LittleEndian.PutUint32(headerBuf[:4], h.magic)
	binary.LittleEndian.PutUint32(headerBuf[4:8], h.formatVersion)
	binary.LittleEndian.PutUint32(headerBuf[8:12], h.flags)
	binary.LittleEndian.PutUint32(headerBuf[12:16], h.checksum)
	binary.LittleEndian.PutUint64(headerBuf[16:24], h.storedLen)
	binary.LittleEndian.PutUint64(headerBuf[24:32], h.archiveLen)

	if _, err = w.Write(headerBuf[:]); err != nil {
		return 0, fmt.Errorf("write: %w", err)
	}
	return int64(fileHeaderSize), nil
}

func (h *fileHeader) UnmarshalBytes(headerBytes []byte) error {
	if len(headerBytes) < fileHeaderSize {
		return fmt.Errorf("headerBytes too short: %d < %d", len(headerBytes), fileHeaderSize)
	}

	headerBytes = headerBytes[:fileHeaderSize]

	h.magic = binary.LittleEndian.Uint32(headerBytes[:4])
	if h.magic != magicArchiveFile {
		return fmt.Errorf("bad magic number on archive file (%x) -- not an arc file or corrupted", h.magic)
	}

	h.formatVersion = binary.LittleEndian.Uint32(headerBytes[4:8])
	if h.formatVersion != fileFormatVersion {
		return fmt.Errorf("this version of the arc library can only read v%d archive files; found v%d", fileFormatVersion, h.formatVersion)
	}

	h.flags = binary.LittleEndian.Uint32(headerBytes[8:12])
	h.checksum = binary.LittleEndian.Uint32(headerBytes[12:16])
	h.storedLen = binary.LittleEndian.Uint64(headerBytes[16:24])
	h.archiveLen = binary.LittleEndian.Uint64(headerBytes[24:32])

	return nil
}
