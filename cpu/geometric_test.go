package cpu

import (
	"testing"

	"github.com/gogpu/cvcore/matrix"
)

func TestResizeNearestDoublesDimensions(t *testing.T) {
	src := mustMat(t, 2, 2, 1, matrix.U8, []byte{10, 20, 30, 40})
	out, err := Resize(src, matrix.Size{Width: 4, Height: 4}, InterpNearest)
	if err != nil {
		t.Fatal(err)
	}
	if out.Rows() != 4 || out.Cols() != 4 {
		t.Fatalf("Resize shape = %dx%d, want 4x4", out.Rows(), out.Cols())
	}
}

func TestResizeRejectsNonPositiveSize(t *testing.T) {
	src := flatMatrix(t, 2, 2, 1, 5)
	if _, err := Resize(src, matrix.Size{Width: 0, Height: 4}, InterpNearest); err == nil {
		t.Fatal("expected InvalidInput for zero width")
	}
}

func TestFlipHorizontal(t *testing.T) {
	src := mustMat(t, 1, 3, 1, matrix.U8, []byte{1, 2, 3})
	out, err := Flip(src, FlipHorizontal)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{3, 2, 1}
	for i, w := range want {
		if out.Data()[i] != w {
			t.Errorf("Flip(Horizontal)[%d] = %d, want %d", i, out.Data()[i], w)
		}
	}
}

func TestFlipVertical(t *testing.T) {
	src := mustMat(t, 3, 1, 1, matrix.U8, []byte{1, 2, 3})
	out, err := Flip(src, FlipVertical)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{3, 2, 1}
	for i, w := range want {
		if out.Data()[i] != w {
			t.Errorf("Flip(Vertical)[%d] = %d, want %d", i, out.Data()[i], w)
		}
	}
}

func TestRotate90FourTimesIsIdentity(t *testing.T) {
	src := mustMat(t, 2, 3, 1, matrix.U8, []byte{1, 2, 3, 4, 5, 6})
	out, err := Rotate90(src, 4)
	if err != nil {
		t.Fatal(err)
	}
	if out.Rows() != src.Rows() || out.Cols() != src.Cols() {
		t.Fatalf("Rotate90(x4) shape = %dx%d, want %dx%d", out.Rows(), out.Cols(), src.Rows(), src.Cols())
	}
	for i := range src.Data() {
		if out.Data()[i] != src.Data()[i] {
			t.Fatalf("Rotate90(x4) not an identity at %d: got %d want %d", i, out.Data()[i], src.Data()[i])
		}
	}
}

func TestWarpAffineIdentityPreservesImage(t *testing.T) {
	src := mustMat(t, 3, 3, 1, matrix.U8, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9})
	identity := AffineMatrix{1, 0, 0, 0, 1, 0}
	out, err := WarpAffine(src, identity, matrix.Size{Width: 3, Height: 3})
	if err != nil {
		t.Fatal(err)
	}
	for i := range src.Data() {
		if out.Data()[i] != src.Data()[i] {
			t.Errorf("WarpAffine(identity)[%d] = %d, want %d", i, out.Data()[i], src.Data()[i])
		}
	}
}

func TestWarpAffineOutOfRangeIsZero(t *testing.T) {
	src := flatMatrix(t, 3, 3, 1, 200)
	// shift everything far outside the source bounds
	shift := AffineMatrix{1, 0, 100, 0, 1, 100}
	out, err := WarpAffine(src, shift, matrix.Size{Width: 3, Height: 3})
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range out.Data() {
		if b != 0 {
			t.Fatalf("WarpAffine shifted out of bounds[%d] = %d, want 0", i, b)
		}
	}
}

func TestWarpPerspectiveIdentityPreservesImage(t *testing.T) {
	src := mustMat(t, 3, 3, 1, matrix.U8, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9})
	identity := PerspectiveMatrix{1, 0, 0, 0, 1, 0, 0, 0, 1}
	out, err := WarpPerspective(src, identity, matrix.Size{Width: 3, Height: 3})
	if err != nil {
		t.Fatal(err)
	}
	for i := range src.Data() {
		if out.Data()[i] != src.Data()[i] {
			t.Errorf("WarpPerspective(identity)[%d] = %d, want %d", i, out.Data()[i], src.Data()[i])
		}
	}
}

func TestRemapIdentityPreservesImage(t *testing.T) {
	src := mustMat(t, 2, 2, 1, matrix.U8, []byte{10, 20, 30, 40})
	mapX, err := matrix.New(2, 2, 1, matrix.F32)
	if err != nil {
		t.Fatal(err)
	}
	mapY, err := matrix.New(2, 2, 1, matrix.F32)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			_ = mapX.SetScalar(y, x, matrix.ScalarAll(float64(x)))
			_ = mapY.SetScalar(y, x, matrix.ScalarAll(float64(y)))
		}
	}
	out, err := Remap(src, mapX, mapY)
	if err != nil {
		t.Fatal(err)
	}
	for i := range src.Data() {
		if out.Data()[i] != src.Data()[i] {
			t.Errorf("Remap(identity)[%d] = %d, want %d", i, out.Data()[i], src.Data()[i])
		}
	}
}

func TestRemapRejectsMismatchedMapShapes(t *testing.T) {
	src := flatMatrix(t, 2, 2, 1, 10)
	mapX, _ := matrix.New(2, 2, 1, matrix.F32)
	mapY, _ := matrix.New(3, 3, 1, matrix.F32)
	if _, err := Remap(src, mapX, mapY); err == nil {
		t.Fatal("expected InvalidInput for mismatched map shapes")
	}
}

func TestRotate90SwapsDimensionsOnce(t *testing.T) {
	src := mustMat(t, 2, 3, 1, matrix.U8, []byte{1, 2, 3, 4, 5, 6})
	out, err := Rotate90(src, 1)
	if err != nil {
		t.Fatal(err)
	}
	if out.Rows() != 3 || out.Cols() != 2 {
		t.Fatalf("Rotate90(x1) shape = %dx%d, want 3x2", out.Rows(), out.Cols())
	}
}
