// Copyright 2026 The arc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package flatrec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrDuplicateTag  = errors.New("duplicate field tags aren't supported")
	ErrTooManyFields = errors.New("too many fields for one record")
)

const maxVarFieldLen = math.MaxUint32

type pendingField struct {
	tag  uint16
	kind Kind
	enc  []byte
}

// Builder accumulates fields and emits a canonical record buffer.
// Fields may be added in any order; Finish sorts them by tag.
type Builder struct {
	fields []pendingField
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) add(tag uint16, kind Kind, enc []byte) {
	b.fields = append(b.fields, pendingField{tag: tag, kind: kind, enc: enc})
}

func (b *Builder) AddUint8(tag uint16, v uint8) {
	b.add(tag, KindUint8, []byte{v})
}

func (b *Builder) AddUint16(tag uint16, v uint16) {
	var enc [2]byte
	binary.LittleEndian.PutUint16(enc[:], v)
	b.add(tag, KindUint16, enc[:])
}

func (b *Builder) AddUint32(tag uint16, v uint32) {
	var enc [4]byte
	binary.LittleEndian.PutUint32(enc[:], v)
	b.add(tag, KindUint32, enc[:])
}

func (b *Builder) AddUint64(tag uint16, v uint64) {
	var enc [8]byte
	binary.LittleEndian.PutUint64(enc[:], v)
	b.add(tag, KindUint64, enc[:])
}

func (b *Builder) AddInt64(tag uint16, v int64) {
	var enc [8]byte
	binary.LittleEndian.PutUint64(enc[:], uint64(v))
	b.add(tag, KindInt64, enc[:])
}

func (b *Builder) AddFloat64(tag uint16, v float64) {
	var enc [8]byte
	binary.LittleEndian.PutUint64(enc[:], math.Float64bits(v))
	b.add(tag, KindFloat64, enc[:])
}

// AddBytes copies v; the caller keeps ownership of the input.
func (b *Builder) AddBytes(tag uint16, v []byte) error {
	if uint64(len(v)) > maxVarFieldLen {
		return fmt.Errorf("tag %d: value of %d bytes too long", tag, len(v))
	}
	enc := make([]byte, 4+len(v))
	binary.LittleEndian.PutUint32(enc, uint32(len(v)))
	copy(enc[4:], v)
	b.add(tag, KindBytes, enc)
	return nil
}

func (b *Builder) AddString(tag uint16, v string) error {
	if uint64(len(v)) > maxVarFieldLen {
		return fmt.Errorf("tag %d: string of %d bytes too long", tag, len(v))
	}
	enc := make([]byte, 4+len(v))
	binary.LittleEndian.PutUint32(enc, uint32(len(v)))
	copy(enc[4:], v)
	b.add(tag, KindString, enc)
	return nil
}

func (b *Builder) AddUint32s(tag uint16, v []uint32) error {
	if uint64(len(v))*4 > maxVarFieldLen {
		return fmt.Errorf("tag %d: slice of %d elements too long", tag, len(v))
	}
	enc := make([]byte, 4+4*len(v))
	binary.LittleEndian.PutUint32(enc, uint32(4*len(v)))
	for i, e := range v {
		binary.LittleEndian.PutUint32(enc[4+4*i:], e)
	}
	b.add(tag, KindUint32Slice, enc)
	return nil
}

func (b *Builder) AddUint64s(tag uint16, v []uint64) error {
	if uint64(len(v))*8 > maxVarFieldLen {
		return fmt.Errorf("tag %d: slice of %d elements too long", tag, len(v))
	}
	enc := make([]byte, 4+8*len(v))
	binary.LittleEndian.PutUint32(enc, uint32(8*len(v)))
	for i, e := range v {
		binary.LittleEndian.PutUint64(enc[4+8*i:], e)
	}
	b.add(tag, KindUint64Slice, enc)
	return nil
}

// Finish emits the record buffer.  The builder may be reused afterwards
// via Reset.
func (b *Builder) Finish() ([]byte, error) {
	if len(b.fields) > maxFieldCount {
		return nil, ErrTooManyFields
	}
	sort.SliceStable(b.fields, func(i, j int) bool { return b.fields[i].tag < b.fields[j].tag })

	payloadLen := 0
	for i, f := range b.fields {
		if i > 0 && b.fields[i-1].tag == f.tag {
			return nil, fmt.Errorf("tag %d: %w", f.tag, ErrDuplicateTag)
		}
		payloadLen += len(f.enc)
	}

	payloadStart := headerSize + fieldEntrySize*len(b.fields)
	buf := make([]byte, payloadStart+payloadLen)

	off := 0
	for i, f := range b.fields {
		e := buf[headerSize+fieldEntrySize*i:]
		binary.LittleEndian.PutUint16(e[:2], f.tag)
		e[entryKindOff] = uint8(f.kind)
		binary.LittleEndian.PutUint32(e[entryOffsetOff:], uint32(off))
		copy(buf[payloadStart+off:], f.enc)
		off += len(f.enc)
	}

	binary.LittleEndian.PutUint32(buf[:4], magicRecord)
	binary.LittleEndian.PutUint16(buf[4:6], formatVersion)
	// buf[6:8] flags, reserved
	binary.LittleEndian.PutUint16(buf[headerFieldCountOff:], uint16(len(b.fields)))
	binary.LittleEndian.PutUint64(buf[headerPayloadLenOff:], uint64(payloadLen))
	binary.LittleEndian.PutUint32(buf[headerChecksumOff:], checksum(buf[payloadStart:]))

	return buf, nil
}

// Reset discards accumulated fields so the builder can be reused.
func (b *Builder) Reset() {
	b.fields = b.fields[:0]
}

// Schema returns the schema describing the fields accumulated so far,
// convenient for validating what Finish just produced.
func (b *Builder) Schema() (*Schema, error) {
	fields := make([]Field, len(b.fields))
	for i, f := range b.fields {
		fields[i] = Field{Tag: f.tag, Kind: f.kind}
	}
	return NewSchema(fields...)
}
