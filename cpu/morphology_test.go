package cpu

import (
	"testing"

	"github.com/gogpu/cvcore/matrix"
)

func TestErodeRemovesSinglePixelSpeckle(t *testing.T) {
	rows, cols := 5, 5
	data := make([]byte, rows*cols)
	data[2*cols+2] = 255
	src := mustMat(t, rows, cols, 1, matrix.U8, data)

	out, err := Erode(src, RectKernel(3))
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range out.Data() {
		if b != 0 {
			t.Fatalf("Erode should remove an isolated speckle entirely, got %v", out.Data())
		}
	}
}

func TestDilateGrowsSinglePixel(t *testing.T) {
	rows, cols := 5, 5
	data := make([]byte, rows*cols)
	data[2*cols+2] = 255
	src := mustMat(t, rows, cols, 1, matrix.U8, data)

	out, err := Dilate(src, RectKernel(3))
	if err != nil {
		t.Fatal(err)
	}
	v, _ := out.At(1, 1)
	if v[0] != 255 {
		t.Error("Dilate should grow the speckle into its 3x3 neighborhood")
	}
}

func TestClosePreservesLargeRegion(t *testing.T) {
	rows, cols := 7, 7
	data := make([]byte, rows*cols)
	for y := 2; y <= 4; y++ {
		for x := 2; x <= 4; x++ {
			data[y*cols+x] = 255
		}
	}
	src := mustMat(t, rows, cols, 1, matrix.U8, data)

	closed, err := Close(src, RectKernel(3))
	if err != nil {
		t.Fatal(err)
	}
	v, _ := closed.At(3, 3)
	if v[0] != 255 {
		t.Error("Close should preserve a solid 3x3 bright region's center")
	}
}
