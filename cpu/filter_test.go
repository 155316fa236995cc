package cpu

import (
	"testing"

	"github.com/gogpu/cvcore/matrix"
)

func flatMatrix(t *testing.T, rows, cols, channels int, v byte) *matrix.Matrix {
	t.Helper()
	data := make([]byte, rows*cols*channels)
	for i := range data {
		data[i] = v
	}
	return mustMat(t, rows, cols, channels, matrix.U8, data)
}

func TestGaussianBlurPreservesFlatImage(t *testing.T) {
	src := flatMatrix(t, 9, 9, 1, 100)
	out, err := GaussianBlur(src, 5, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range out.Data() {
		if b != 100 {
			t.Fatalf("GaussianBlur of a flat image changed pixel %d to %d", i, b)
		}
	}
}

func TestGaussianBlurRejectsEvenKernel(t *testing.T) {
	src := flatMatrix(t, 5, 5, 1, 50)
	if _, err := GaussianBlur(src, 4, 0); err == nil {
		t.Fatal("expected InvalidInput for even kernel size")
	}
}

func TestBoxBlurPreservesFlatImage(t *testing.T) {
	src := flatMatrix(t, 7, 7, 3, 80)
	out, err := BoxBlur(src, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range out.Data() {
		if b != 80 {
			t.Fatalf("BoxBlur of a flat image changed pixel %d to %d", i, b)
		}
	}
}

func TestMedianBlurRemovesSaltPepperNoise(t *testing.T) {
	rows, cols := 5, 5
	data := make([]byte, rows*cols)
	for i := range data {
		data[i] = 100
	}
	data[2*cols+2] = 255 // single impulse in the center
	src := mustMat(t, rows, cols, 1, matrix.U8, data)

	out, err := MedianBlur(src, 3)
	if err != nil {
		t.Fatal(err)
	}
	v, _ := out.At(2, 2)
	if v[0] != 100 {
		t.Errorf("MedianBlur center pixel = %d, want 100 (impulse removed)", v[0])
	}
}

func TestSobelZeroOnFlatImage(t *testing.T) {
	src := flatMatrix(t, 5, 5, 1, 128)
	gx, gy, err := Sobel(src)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			v, _ := gx.GetScalar(y, x)
			if v[0] != 0 {
				t.Fatalf("Sobel Gx on flat image at (%d,%d) = %v, want 0", y, x, v[0])
			}
			v, _ = gy.GetScalar(y, x)
			if v[0] != 0 {
				t.Fatalf("Sobel Gy on flat image at (%d,%d) = %v, want 0", y, x, v[0])
			}
		}
	}
}

func TestLaplacianZeroOnFlatImage(t *testing.T) {
	src := flatMatrix(t, 5, 5, 1, 50)
	out, err := Laplacian(src)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			v, _ := out.GetScalar(y, x)
			if v[0] != 0 {
				t.Fatalf("Laplacian on flat image at (%d,%d) = %v, want 0", y, x, v[0])
			}
		}
	}
}

func TestBilateralFilterPreservesFlatImage(t *testing.T) {
	src := flatMatrix(t, 9, 9, 1, 100)
	out, err := BilateralFilter(src, 5, 50, 50)
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range out.Data() {
		if b != 100 {
			t.Fatalf("BilateralFilter of a flat image changed pixel %d to %d", i, b)
		}
	}
}

func TestBilateralFilterPreservesSharpEdge(t *testing.T) {
	rows, cols := 9, 9
	data := make([]byte, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if x >= cols/2 {
				data[y*cols+x] = 255
			}
		}
	}
	src := mustMat(t, rows, cols, 1, matrix.U8, data)
	out, err := BilateralFilter(src, 5, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	// with a small color sigma, the range weight should suppress
	// blending across the high-contrast edge: far corners should stay
	// close to their original intensities instead of blurring to gray.
	left, _ := out.At(4, 0)
	right, _ := out.At(4, cols-1)
	if left[0] > 50 {
		t.Errorf("BilateralFilter left side = %d, want close to 0", left[0])
	}
	if right[0] < 200 {
		t.Errorf("BilateralFilter right side = %d, want close to 255", right[0])
	}
}

func TestFilter2DRejectsEvenKernel(t *testing.T) {
	src := flatMatrix(t, 5, 5, 1, 10)
	_, err := Filter2D(src, Kernel2D{Rows: 2, Cols: 2, Weights: []float32{1, 1, 1, 1}})
	if err == nil {
		t.Fatal("expected InvalidInput for even kernel dimensions")
	}
}
