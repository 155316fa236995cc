// Package binding exposes cvcore's Matrix and operations at a foreign
// surface boundary. This file is the build-tag-free core shared by every
// foreign target; matrix_js.go layers syscall/js on top of it for
// js/wasm, grounded on gioui.org/app/os_js.go's window wrapper (a plain Go
// struct holding the handle, with a release-once lifecycle guarded by a
// closed flag rather than relying on garbage collection to free foreign
// resources).
package binding

import (
	"github.com/gogpu/cvcore/cverr"
	"github.com/gogpu/cvcore/matrix"
)

// Wrapper owns a *matrix.Matrix and exposes it through plain methods
// rather than direct field access, since Go has no native property
// syntax; the foreign-facing camelCase rename happens only at the js
// boundary (matrix_js.go), not here.
type Wrapper struct {
	m      *matrix.Matrix
	closed bool
}

// Wrap returns a Wrapper owning m. Ownership transfers to the Wrapper:
// callers should not mutate m through any other reference afterward.
func Wrap(m *matrix.Matrix) *Wrapper {
	return &Wrapper{m: m}
}

// errClosed is returned by every accessor once Release has been called,
// instead of risking a read through a Matrix the caller may have already
// let go of on the other side of the boundary.
func errClosed(op string) error {
	return cverr.New(cverr.InvalidInput, op, "wrapper has been released")
}

// Rows returns the matrix's row count, or an error if the wrapper was
// released.
func (w *Wrapper) Rows() (int, error) {
	if w.closed {
		return 0, errClosed("binding.Wrapper.Rows")
	}
	return w.m.Rows(), nil
}

// Cols returns the matrix's column count, or an error if the wrapper was
// released.
func (w *Wrapper) Cols() (int, error) {
	if w.closed {
		return 0, errClosed("binding.Wrapper.Cols")
	}
	return w.m.Cols(), nil
}

// Channels returns the matrix's channel count, or an error if the wrapper
// was released.
func (w *Wrapper) Channels() (int, error) {
	if w.closed {
		return 0, errClosed("binding.Wrapper.Channels")
	}
	return w.m.Channels(), nil
}

// Depth returns the matrix's element depth, or an error if the wrapper
// was released.
func (w *Wrapper) Depth() (matrix.Depth, error) {
	if w.closed {
		return 0, errClosed("binding.Wrapper.Depth")
	}
	return w.m.Depth(), nil
}

// Bytes returns a copy of the matrix's raw byte buffer, or an error if the
// wrapper was released. A copy is returned (rather than the live slice)
// since a foreign caller holding a reference into cvcore's own backing
// array would defeat the ownership model Release depends on.
func (w *Wrapper) Bytes() ([]byte, error) {
	if w.closed {
		return nil, errClosed("binding.Wrapper.Bytes")
	}
	out := make([]byte, len(w.m.Data()))
	copy(out, w.m.Data())
	return out, nil
}

// Matrix returns the underlying *matrix.Matrix for use by in-process Go
// callers (non-foreign), or an error if the wrapper was released.
func (w *Wrapper) Matrix() (*matrix.Matrix, error) {
	if w.closed {
		return nil, errClosed("binding.Wrapper.Matrix")
	}
	return w.m, nil
}

// Release marks the wrapper closed. Idempotent: releasing an
// already-released wrapper is a no-op, matching the teacher's window
// shutdown path where repeated close events are expected and harmless.
func (w *Wrapper) Release() {
	w.closed = true
}

// Closed reports whether Release has been called.
func (w *Wrapper) Closed() bool {
	return w.closed
}
