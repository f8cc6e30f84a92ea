// Copyright 2026 The arc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package flatrec

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/dgryski/go-farm"

	"github.com/stablebytes/arc/internal/unsafestring"
)

const (
	magicRecord   = 0xA7C1F00D
	formatVersion = 1

	headerSize     = 24
	fieldEntrySize = 8

	headerFieldCountOff = 8
	headerChecksumOff   = 12
	headerPayloadLenOff = 16

	entryKindOff   = 2
	entryOffsetOff = 4

	maxFieldCount = (1 << 16) - 1
)

// Kind discriminates how a field's payload bytes are interpreted.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindInt64
	KindFloat64
	KindBytes
	KindString
	KindUint32Slice
	KindUint64Slice
)

func (k Kind) String() string {
	switch k {
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindUint64:
		return "uint64"
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindUint32Slice:
		return "[]uint32"
	case KindUint64Slice:
		return "[]uint64"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(k))
	}
}

func (k Kind) valid() bool {
	return k > KindInvalid && k <= KindUint64Slice
}

// elemSize returns the element width of an array kind, or 0.
func (k Kind) elemSize() int {
	switch k {
	case KindUint32Slice:
		return 4
	case KindUint64Slice:
		return 8
	default:
		return 0
	}
}

// fixedSize returns the payload width of a fixed-width kind, or 0 for
// the length-prefixed kinds.
func (k Kind) fixedSize() int {
	switch k {
	case KindUint8:
		return 1
	case KindUint16:
		return 2
	case KindUint32:
		return 4
	case KindUint64, KindInt64, KindFloat64:
		return 8
	default:
		return 0
	}
}

func checksum(payload []byte) uint32 {
	return uint32(farm.Hash64(payload))
}

// Record is a zero-copy view over a validated record buffer.  It is a
// plain value: copying a Record copies the view, never the bytes.
//
// Accessors are infallible by contract -- validation already happened --
// so a getter on a missing tag or mismatched kind returns the zero
// value; use Has or KindOf to distinguish.  The setters mutate the
// payload in place and are only legitimate on a view obtained through
// the owning archive's mutable accessor.
type Record struct {
	b []byte
}

func (r Record) numFields() int {
	return int(binary.LittleEndian.Uint16(r.b[headerFieldCountOff:]))
}

func (r Record) payload() []byte {
	return r.b[headerSize+fieldEntrySize*r.numFields():]
}

func (r Record) entry(i int) (tag uint16, kind Kind, off uint32) {
	e := r.b[headerSize+fieldEntrySize*i:]
	// bounds check elimination
	_ = e[fieldEntrySize-1]
	tag = binary.LittleEndian.Uint16(e[:2])
	kind = Kind(e[entryKindOff])
	off = binary.LittleEndian.Uint32(e[entryOffsetOff:])
	return
}

func (r Record) lookup(tag uint16) (kind Kind, off uint32, ok bool) {
	lo, hi := 0, r.numFields()
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		etag, _, _ := r.entry(mid)
		if etag < tag {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == r.numFields() {
		return KindInvalid, 0, false
	}
	etag, ekind, eoff := r.entry(lo)
	if etag != tag {
		return KindInvalid, 0, false
	}
	return ekind, eoff, true
}

// NumFields returns the number of fields in the record.
func (r Record) NumFields() int {
	return r.numFields()
}

// Has reports whether the record carries a field with the given tag.
func (r Record) Has(tag uint16) bool {
	_, _, ok := r.lookup(tag)
	return ok
}

// KindOf returns the kind of the field with the given tag, or
// KindInvalid if the record has no such field.
func (r Record) KindOf(tag uint16) Kind {
	kind, _, ok := r.lookup(tag)
	if !ok {
		return KindInvalid
	}
	return kind
}

// Fields returns the record's field descriptors in tag order.
func (r Record) Fields() []Field {
	fields := make([]Field, r.numFields())
	for i := range fields {
		tag, kind, _ := r.entry(i)
		fields[i] = Field{Tag: tag, Kind: kind}
	}
	return fields
}

func (r Record) fixed(tag uint16, kind Kind) ([]byte, bool) {
	k, off, ok := r.lookup(tag)
	if !ok || k != kind {
		return nil, false
	}
	return r.payload()[off : int(off)+kind.fixedSize()], true
}

func (r Record) Uint8(tag uint16) uint8 {
	v, ok := r.fixed(tag, KindUint8)
	if !ok {
		return 0
	}
	return v[0]
}

func (r Record) Uint16(tag uint16) uint16 {
	v, ok := r.fixed(tag, KindUint16)
	if !ok {
		return 0
	}
	return binary.LittleEndian.Uint16(v)
}

func (r Record) Uint32(tag uint16) uint32 {
	v, ok := r.fixed(tag, KindUint32)
	if !ok {
		return 0
	}
	return binary.LittleEndian.Uint32(v)
}

func (r Record) Uint64(tag uint16) uint64 {
	v, ok := r.fixed(tag, KindUint64)
	if !ok {
		return 0
	}
	return binary.LittleEndian.Uint64(v)
}

func (r Record) Int64(tag uint16) int64 {
	v, ok := r.fixed(tag, KindInt64)
	if !ok {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(v))
}

func (r Record) Float64(tag uint16) float64 {
	v, ok := r.fixed(tag, KindFloat64)
	if !ok {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(v))
}

func (r Record) varField(tag uint16, kind Kind) []byte {
	k, off, ok := r.lookup(tag)
	if !ok || k != kind {
		return nil
	}
	p := r.payload()
	n := binary.LittleEndian.Uint32(p[off:])
	// 64-bit bounds, matching the validator's arithmetic: off+4 wraps
	// in uint32 for offsets near 4 GiB that validation accepted
	lo := uint64(off) + 4
	return p[lo : lo+uint64(n)]
}

// Bytes returns a view of a bytes field's contents.  The slice aliases
// the record buffer and must be treated as read-only.
func (r Record) Bytes(tag uint16) []byte {
	return r.varField(tag, KindBytes)
}

// Text returns a string field's contents without copying.
func (r Record) Text(tag uint16) string {
	return unsafestring.ToString(r.varField(tag, KindString))
}

// Uint32Slice is a read-only view into a byte array as if it was []uint32
type Uint32Slice []byte

func (s Uint32Slice) Len() int {
	return len(s) / 4
}

func (s Uint32Slice) Get(i int) uint32 {
	return binary.LittleEndian.Uint32(s[i*4 : i*4+4])
}

// Uint64Slice is a read-only view into a byte array as if it was []uint64
type Uint64Slice []byte

func (s Uint64Slice) Len() int {
	return len(s) / 8
}

func (s Uint64Slice) Get(i int) uint64 {
	return binary.LittleEndian.Uint64(s[i*8 : i*8+8])
}

// Uint32s returns a typed view over a []uint32 field, aliasing the
// record buffer.
func (r Record) Uint32s(tag uint16) Uint32Slice {
	return Uint32Slice(r.varField(tag, KindUint32Slice))
}

// Uint64s returns a typed view over a []uint64 field, aliasing the
// record buffer.
func (r Record) Uint64s(tag uint16) Uint64Slice {
	return Uint64Slice(r.varField(tag, KindUint64Slice))
}

// rechecksum rewrites the header checksum after an in-place mutation so
// the buffer stays valid for later validation (a writable mapping, for
// instance, stays a well-formed record on disk).
func (r Record) rechecksum() {
	binary.LittleEndian.PutUint32(r.b[headerChecksumOff:], checksum(r.payload()))
}

// SetUint8 overwrites a uint8 field in place.  It reports whether the
// record has such a field; the layout is never changed.
func (r Record) SetUint8(tag uint16, v uint8) bool {
	p, ok := r.fixed(tag, KindUint8)
	if !ok {
		return false
	}
	p[0] = v
	r.rechecksum()
	return true
}

func (r Record) SetUint16(tag uint16, v uint16) bool {
	p, ok := r.fixed(tag, KindUint16)
	if !ok {
		return false
	}
	binary.LittleEndian.PutUint16(p, v)
	r.rechecksum()
	return true
}

func (r Record) SetUint32(tag uint16, v uint32) bool {
	p, ok := r.fixed(tag, KindUint32)
	if !ok {
		return false
	}
	binary.LittleEndian.PutUint32(p, v)
	r.rechecksum()
	return true
}

func (r Record) SetUint64(tag uint16, v uint64) bool {
	p, ok := r.fixed(tag, KindUint64)
	if !ok {
		return false
	}
	binary.LittleEndian.PutUint64(p, v)
	r.rechecksum()
	return true
}

func (r Record) SetInt64(tag uint16, v int64) bool {
	p, ok := r.fixed(tag, KindInt64)
	if !ok {
		return false
	}
	binary.LittleEndian.PutUint64(p, uint64(v))
	r.rechecksum()
	return true
}

func (r Record) SetFloat64(tag uint16, v float64) bool {
	p, ok := r.fixed(tag, KindFloat64)
	if !ok {
		return false
	}
	binary.LittleEndian.PutUint64(p, math.Float64bits(v))
	r.rechecksum()
	return true
}

func (r Record) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i := 0; i < r.numFields(); i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		tag, kind, _ := r.entry(i)
		fmt.Fprintf(&sb, "%d:", tag)
		switch kind {
		case KindUint8:
			fmt.Fprintf(&sb, "%d", r.Uint8(tag))
		case KindUint16:
			fmt.Fprintf(&sb, "%d", r.Uint16(tag))
		case KindUint32:
			fmt.Fprintf(&sb, "%d", r.Uint32(tag))
		case KindUint64:
			fmt.Fprintf(&sb, "%d", r.Uint64(tag))
		case KindInt64:
			fmt.Fprintf(&sb, "%d", r.Int64(tag))
		case KindFloat64:
			fmt.Fprintf(&sb, "%g", r.Float64(tag))
		case KindBytes:
			fmt.Fprintf(&sb, "%x", r.Bytes(tag))
		case KindString:
			fmt.Fprintf(&sb, "%q", r.Text(tag))
		case KindUint32Slice:
			s := r.Uint32s(tag)
			sb.WriteByte('[')
			for j := 0; j < s.Len(); j++ {
				if j > 0 {
					sb.WriteByte(' ')
				}
				fmt.Fprintf(&sb, "%d", s.Get(j))
			}
			sb.WriteByte(']')
		case KindUint64Slice:
			s := r.Uint64s(tag)
			sb.WriteByte('[')
			for j := 0; j < s.Len(); j++ {
				if j > 0 {
					sb.WriteByte(' ')
				}
				fmt.Fprintf(&sb, "%d", s.Get(j))
			}
			sb.WriteByte(']')
		}
	}
	sb.WriteByte('}')
	return sb.String()
}
