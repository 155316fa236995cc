package binding

import (
	"testing"

	"github.com/gogpu/cvcore/matrix"
)

func TestWrapperAccessorsReflectUnderlyingMatrix(t *testing.T) {
	m, err := matrix.New(4, 8, 3, matrix.U8)
	if err != nil {
		t.Fatalf("matrix.New: %v", err)
	}
	w := Wrap(m)

	if rows, err := w.Rows(); err != nil || rows != 4 {
		t.Errorf("Rows() = %d, %v; want 4, nil", rows, err)
	}
	if cols, err := w.Cols(); err != nil || cols != 8 {
		t.Errorf("Cols() = %d, %v; want 8, nil", cols, err)
	}
	if ch, err := w.Channels(); err != nil || ch != 3 {
		t.Errorf("Channels() = %d, %v; want 3, nil", ch, err)
	}
}

func TestWrapperBytesReturnsIndependentCopy(t *testing.T) {
	m, err := matrix.New(1, 1, 1, matrix.U8)
	if err != nil {
		t.Fatalf("matrix.New: %v", err)
	}
	w := Wrap(m)

	b, err := w.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	b[0] = 0xFF

	again, err := w.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if again[0] == 0xFF {
		t.Fatalf("mutating a returned Bytes() slice must not affect the wrapped matrix")
	}
}

func TestWrapperRejectsAccessAfterRelease(t *testing.T) {
	m, err := matrix.New(1, 1, 1, matrix.U8)
	if err != nil {
		t.Fatalf("matrix.New: %v", err)
	}
	w := Wrap(m)
	w.Release()

	if !w.Closed() {
		t.Fatalf("Closed() should report true after Release")
	}
	if _, err := w.Rows(); err == nil {
		t.Fatalf("expected error reading Rows() after Release")
	}
	if _, err := w.Matrix(); err == nil {
		t.Fatalf("expected error reading Matrix() after Release")
	}
}

func TestWrapperReleaseIsIdempotent(t *testing.T) {
	m, err := matrix.New(1, 1, 1, matrix.U8)
	if err != nil {
		t.Fatalf("matrix.New: %v", err)
	}
	w := Wrap(m)
	w.Release()
	w.Release()
	if !w.Closed() {
		t.Fatalf("expected wrapper to remain closed after a second Release call")
	}
}
