// Copyright 2026 The arc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package flatrec is a flat, tagged record format that can be read in
// place: once a buffer validates, field access is a table lookup plus a
// bounds-free load, with no deserialization pass and no allocation.
//
// A record looks like:
//
//	┌─────────────────────┐
//	│ header (24 bytes)   │  magic, version, flags, field count,
//	│                     │  payload checksum, payload length
//	├─────────────────────┤
//	│ field table         │  8 bytes per field: tag, kind,
//	│                     │  payload offset; sorted by tag
//	├─────────────────────┤
//	│ payload             │  fixed-width values in place,
//	│                     │  bytes/strings length-prefixed
//	└─────────────────────┘
//
// All integers are little-endian.  The field table is sorted by tag with
// duplicates rejected, so lookups binary-search it.  The checksum covers
// the payload and is maintained by the in-place setters.
//
// Validation (Schema.Validate or Inspect) is the only gate: it
// bounds-checks every table entry and payload offset, verifies the kind
// discriminants, and verifies the checksum.  The Record view performs no
// checks of its own and must only be constructed over validated bytes.
package flatrec
