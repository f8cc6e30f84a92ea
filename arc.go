// Copyright 2026 The arc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package arc pairs an owned byte buffer with a validated zero-copy view
// over it, so a previously serialized value can be passed around (and
// across goroutines) as a plain owned value without re-parsing, copying,
// or carrying a borrow of somebody else's buffer.
//
// An Archive is built from a Container (any type promising stable bytes)
// and a Format (the codec describing the archived layout of a view type
// V).  The bytes are validated exactly once, at construction; every later
// access reinterprets the container's bytes directly.  That makes the
// one-time check the sole correctness barrier against malformed or
// adversarial input, which is why construction takes ownership of the
// container: nothing else may invalidate the bytes out from under a live
// view.
package arc

import (
	"fmt"
	"io"
)

// Format describes the archived representation of a view type V.  It is
// the contract the codec collaborator satisfies; package flatrec provides
// one.
type Format[V any] interface {
	// Validate walks b and reports whether it holds a well-formed
	// archived V: offsets in bounds, discriminants known, checksums
	// intact.  It must not retain b.
	Validate(b []byte) error

	// View reinterprets b as the archived V without copying.  Callers
	// only invoke it on bytes Validate has accepted.
	View(b []byte) V
}

// Archive owns a container whose bytes are known to hold a valid
// archived V.  The invariant is established once by New and never
// re-checked.
type Archive[V any, C Container] struct {
	c C
	f Format[V]
}

// New validates the container's bytes against f and, on success, takes
// ownership of the container.  On failure the container is discarded
// along with the returned error; there is no partially constructed
// state.
func New[V any, C Container](c C, f Format[V]) (*Archive[V, C], error) {
	if err := f.Validate(c.Bytes()); err != nil {
		return nil, fmt.Errorf("validate archive: %w", err)
	}
	return &Archive[V, C]{c: c, f: f}, nil
}

// Get returns the zero-copy view over the container's bytes.  No
// validation happens here: construction already established the
// invariant, and the container's stability contract keeps it true.
func (a *Archive[V, C]) Get() V {
	return a.f.View(a.c.Bytes())
}

// Container returns the owned container, for capability queries only.
// Callers must not mutate its bytes outside GetMut.
func (a *Archive[V, C]) Container() C {
	return a.c
}

// Close releases the container's resources when it holds any (a mapped
// region, for instance).  The archive must not be used afterwards.
func (a *Archive[V, C]) Close() error {
	if c, ok := any(a.c).(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (a *Archive[V, C]) String() string {
	v := a.Get()
	if s, ok := any(v).(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", v)
}

// GetMut returns an in-place view over the container's mutable bytes.
// It is only available when the container carries the mutable
// capability, which is the single authorized mutation path.
//
// The view aliases the archived layout directly: callers may change
// field values through the view's setters but must not splice, truncate,
// or otherwise relocate the layout.
func GetMut[V any, C MutableContainer](a *Archive[V, C]) V {
	return a.f.View(a.c.BytesMut())
}

// Clone duplicates the ownership handle of an archive whose container
// supports duplicate ownership (Shared, for instance).  The validated
// bytes are shared, not copied, and are not re-validated.
func Clone[V any, C interface {
	Container
	Clone() C
}](a *Archive[V, C]) *Archive[V, C] {
	return &Archive[V, C]{c: a.c.Clone(), f: a.f}
}
