// Copyright 2026 The arc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package flatrec

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// Cause classifies why a buffer failed validation.
type Cause int

const (
	CauseTooShort Cause = iota + 1
	CauseBadMagic
	CauseBadVersion
	CauseSizeMismatch
	CauseChecksumMismatch
	CauseBadKind
	CauseBadOffset
	CauseTagOrder
	CauseSchemaMismatch
)

func (c Cause) String() string {
	switch c {
	case CauseTooShort:
		return "buffer too short"
	case CauseBadMagic:
		return "bad magic"
	case CauseBadVersion:
		return "unsupported version"
	case CauseSizeMismatch:
		return "size mismatch"
	case CauseChecksumMismatch:
		return "checksum mismatch"
	case CauseBadKind:
		return "invalid field kind"
	case CauseBadOffset:
		return "field offset out of bounds"
	case CauseTagOrder:
		return "field tags out of order"
	case CauseSchemaMismatch:
		return "schema mismatch"
	default:
		return fmt.Sprintf("cause(%d)", int(c))
	}
}

// ValidationError reports the one failure mode of this package: bytes
// that do not decode to a well-formed record.
type ValidationError struct {
	Cause  Cause
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Cause.String()
	}
	return fmt.Sprintf("%s: %s", e.Cause, e.Detail)
}

func errorf(c Cause, format string, args ...any) *ValidationError {
	return &ValidationError{Cause: c, Detail: fmt.Sprintf(format, args...)}
}

// Field describes one field of a record or schema: a tag and the kind
// of value stored under it.
type Field struct {
	Tag  uint16
	Kind Kind
}

// walk structurally validates b and reports its field descriptors in
// table order.  Every later zero-copy access is only safe because this
// pass bounds-checked the offsets it will use.
func walk(b []byte) ([]Field, error) {
	if len(b) < headerSize {
		return nil, errorf(CauseTooShort, "%d < %d", len(b), headerSize)
	}
	if magic := binary.LittleEndian.Uint32(b[:4]); magic != magicRecord {
		return nil, errorf(CauseBadMagic, "%#08x", magic)
	}
	if version := binary.LittleEndian.Uint16(b[4:6]); version != formatVersion {
		return nil, errorf(CauseBadVersion, "v%d (can only read v%d)", version, formatVersion)
	}

	fieldCount := int(binary.LittleEndian.Uint16(b[headerFieldCountOff:]))
	payloadLen := binary.LittleEndian.Uint64(b[headerPayloadLenOff:])
	payloadStart := uint64(headerSize + fieldEntrySize*fieldCount)
	// both counts come from the untrusted header; compare by subtraction
	// so a huge payloadLen can't wrap the sum around to len(b)
	if payloadStart > uint64(len(b)) || payloadLen != uint64(len(b))-payloadStart {
		return nil, errorf(CauseSizeMismatch, "have %d bytes, header describes %d table bytes and a %d byte payload",
			len(b), payloadStart, payloadLen)
	}
	payload := b[payloadStart:]

	expected := binary.LittleEndian.Uint32(b[headerChecksumOff:])
	if got := checksum(payload); got != expected {
		return nil, errorf(CauseChecksumMismatch, "%#08x != %#08x: record corrupted", got, expected)
	}

	fields := make([]Field, fieldCount)
	prevTag := -1
	for i := 0; i < fieldCount; i++ {
		e := b[headerSize+fieldEntrySize*i:]
		tag := binary.LittleEndian.Uint16(e[:2])
		kind := Kind(e[entryKindOff])
		off := uint64(binary.LittleEndian.Uint32(e[entryOffsetOff:]))

		if int(tag) <= prevTag {
			return nil, errorf(CauseTagOrder, "tag %d after %d", tag, prevTag)
		}
		prevTag = int(tag)

		switch kind {
		case KindUint8, KindUint16, KindUint32, KindUint64, KindInt64, KindFloat64:
			if off+uint64(kind.fixedSize()) > payloadLen {
				return nil, errorf(CauseBadOffset, "tag %d: %d+%d beyond payload (%d)",
					tag, off, kind.fixedSize(), payloadLen)
			}
		case KindBytes, KindString, KindUint32Slice, KindUint64Slice:
			if off+4 > payloadLen {
				return nil, errorf(CauseBadOffset, "tag %d: length prefix at %d beyond payload (%d)",
					tag, off, payloadLen)
			}
			n := uint64(binary.LittleEndian.Uint32(payload[off:]))
			if off+4+n > payloadLen {
				return nil, errorf(CauseBadOffset, "tag %d: %d+4+%d beyond payload (%d)",
					tag, off, n, payloadLen)
			}
			if elem := kind.elemSize(); elem != 0 && n%uint64(elem) != 0 {
				return nil, errorf(CauseBadOffset, "tag %d: %d bytes is not a whole number of %d-byte elements",
					tag, n, elem)
			}
		default:
			return nil, errorf(CauseBadKind, "tag %d: kind %d", tag, uint8(kind))
		}

		fields[i] = Field{Tag: tag, Kind: kind}
	}

	return fields, nil
}

// Inspect validates b without a schema and returns its field
// descriptors.  The field table is self-describing, so this is enough
// for generic tooling to walk a record it knows nothing about.
func Inspect(b []byte) ([]Field, error) {
	return walk(b)
}

// View wraps validated bytes in a Record without re-validating.  Only
// call it on bytes Inspect or a Schema has accepted.
func View(b []byte) Record {
	return Record{b: b}
}

// Schema is the expected shape of a record: which tags it carries and
// the kind stored under each.  It satisfies the archive Format contract
// for Record, so it is what gets handed to the owning wrapper's
// constructor.
type Schema struct {
	fields []Field
}

// NewSchema builds a schema from field descriptors in any order.
// Duplicate tags and invalid kinds are rejected.
func NewSchema(fields ...Field) (*Schema, error) {
	sorted := make([]Field, len(fields))
	copy(sorted, fields)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Tag < sorted[j].Tag })
	for i, f := range sorted {
		if !f.Kind.valid() {
			return nil, fmt.Errorf("tag %d: invalid kind %d", f.Tag, uint8(f.Kind))
		}
		if i > 0 && sorted[i-1].Tag == f.Tag {
			return nil, fmt.Errorf("duplicate tag %d", f.Tag)
		}
	}
	return &Schema{fields: sorted}, nil
}

// MustSchema is NewSchema for statically known field sets.
func MustSchema(fields ...Field) *Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns the schema's field descriptors in tag order.
func (s *Schema) Fields() []Field {
	fields := make([]Field, len(s.fields))
	copy(fields, s.fields)
	return fields
}

// Validate walks b and confirms it holds a well-formed record whose
// fields exactly match the schema.  This is the single validation gate:
// nothing downstream of a successful Validate checks anything again.
func (s *Schema) Validate(b []byte) error {
	fields, err := walk(b)
	if err != nil {
		return err
	}
	if len(fields) != len(s.fields) {
		return errorf(CauseSchemaMismatch, "%d fields, schema has %d", len(fields), len(s.fields))
	}
	for i, f := range fields {
		if f != s.fields[i] {
			return errorf(CauseSchemaMismatch, "field %d is tag %d kind %s, schema wants tag %d kind %s",
				i, f.Tag, f.Kind, s.fields[i].Tag, s.fields[i].Kind)
		}
	}
	return nil
}

// View implements the archive Format contract.
func (s *Schema) View(b []byte) Record {
	return Record{b: b}
}
