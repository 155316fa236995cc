package cpu

import (
	"testing"

	"github.com/gogpu/cvcore/matrix"
)

func TestCannyFlatImageHasNoEdges(t *testing.T) {
	src := flatMatrix(t, 20, 20, 1, 100)
	out, err := Canny(src, 50, 150)
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range out.Data() {
		if b != 0 {
			t.Fatal("Canny on a flat image should detect no edges")
		}
	}
}

func TestCannyDetectsSharpStep(t *testing.T) {
	rows, cols := 20, 20
	data := make([]byte, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if x >= cols/2 {
				data[y*cols+x] = 255
			}
		}
	}
	src := mustMat(t, rows, cols, 1, matrix.U8, data)
	out, err := Canny(src, 50, 150)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, b := range out.Data() {
		if b == 255 {
			found = true
			break
		}
	}
	if !found {
		t.Fatal("Canny should detect the sharp vertical step edge")
	}
}

func TestDistanceTransformZeroAtSourcePixels(t *testing.T) {
	rows, cols := 5, 5
	data := make([]byte, rows*cols)
	for i := range data {
		data[i] = 255
	}
	data[2*cols+2] = 0 // single source pixel in the center
	src := mustMat(t, rows, cols, 1, matrix.U8, data)

	out, err := DistanceTransform(src, DistanceL1)
	if err != nil {
		t.Fatal(err)
	}
	v, _ := out.GetScalar(2, 2)
	if v[0] != 0 {
		t.Errorf("DistanceTransform at the source pixel = %v, want 0", v[0])
	}
	v, _ = out.GetScalar(2, 3)
	if v[0] != 1 {
		t.Errorf("DistanceTransform one step away (L1) = %v, want 1", v[0])
	}
	v, _ = out.GetScalar(0, 0)
	if v[0] <= 0 {
		t.Errorf("DistanceTransform far from the source = %v, want > 0", v[0])
	}
}

func TestDistanceTransformL2DiagonalCheaperThanL1(t *testing.T) {
	rows, cols := 5, 5
	data := make([]byte, rows*cols)
	for i := range data {
		data[i] = 255
	}
	data[2*cols+2] = 0
	src := mustMat(t, rows, cols, 1, matrix.U8, data)

	l1, err := DistanceTransform(src, DistanceL1)
	if err != nil {
		t.Fatal(err)
	}
	l2, err := DistanceTransform(src, DistanceL2)
	if err != nil {
		t.Fatal(err)
	}
	v1, _ := l1.GetScalar(1, 1) // diagonal neighbor of the source pixel
	v2, _ := l2.GetScalar(1, 1)
	if v2[0] >= v1[0] {
		t.Errorf("L2 diagonal distance = %v, want < L1 distance %v", v2[0], v1[0])
	}
}

func TestWatershedFloodsFromMarkersWithoutCrossingLabels(t *testing.T) {
	rows, cols := 1, 6
	data := []byte{0, 0, 0, 255, 255, 255}
	src := mustMat(t, rows, cols, 1, matrix.U8, data)

	markers, err := matrix.New(rows, cols, 1, matrix.S16)
	if err != nil {
		t.Fatal(err)
	}
	if err := markers.SetScalar(0, 0, matrix.ScalarAll(1)); err != nil {
		t.Fatal(err)
	}
	if err := markers.SetScalar(0, 5, matrix.ScalarAll(2)); err != nil {
		t.Fatal(err)
	}

	if err := Watershed(src, markers); err != nil {
		t.Fatal(err)
	}

	left, _ := markers.GetScalar(0, 0)
	right, _ := markers.GetScalar(0, 5)
	if left[0] != 1 {
		t.Errorf("left seed label = %v, want 1", left[0])
	}
	if right[0] != 2 {
		t.Errorf("right seed label = %v, want 2", right[0])
	}
	// every pixel must end up labeled with one of the two seeds, or the
	// watershed-line sentinel where the two fronts met.
	for x := 0; x < cols; x++ {
		v, _ := markers.GetScalar(0, x)
		lbl := int(v[0])
		if lbl != 1 && lbl != 2 && lbl != watershedLine {
			t.Errorf("pixel %d label = %d, want 1, 2, or %d", x, lbl, watershedLine)
		}
	}
}

func TestWatershedRejectsNonS16Markers(t *testing.T) {
	src := flatMatrix(t, 2, 2, 1, 100)
	markers := flatMatrix(t, 2, 2, 1, 0)
	if err := Watershed(src, markers); err == nil {
		t.Fatal("expected UnsupportedDepth for non-S16 markers")
	}
}

func TestIntegralImageShape(t *testing.T) {
	src := flatMatrix(t, 3, 4, 1, 1)
	out, err := IntegralImage(src)
	if err != nil {
		t.Fatal(err)
	}
	if out.Rows() != 4 || out.Cols() != 5 {
		t.Fatalf("IntegralImage shape = %dx%d, want 4x5", out.Rows(), out.Cols())
	}
	v, _ := out.GetScalar(3, 4)
	if v[0] != 12 {
		t.Errorf("IntegralImage total = %v, want 12 (3x4 of ones)", v[0])
	}
}
