package cpu

import (
	"testing"

	"github.com/gogpu/cvcore/matrix"
)

func TestThresholdBinary(t *testing.T) {
	src := mustMat(t, 1, 4, 1, matrix.U8, []byte{10, 200, 128, 129})
	out, err := Threshold(src, 128, 255, ThreshBinary)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0, 255, 0, 255}
	for i, w := range want {
		if out.Data()[i] != w {
			t.Errorf("Threshold(Binary)[%d] = %d, want %d", i, out.Data()[i], w)
		}
	}
}

func TestThresholdTrunc(t *testing.T) {
	src := mustMat(t, 1, 2, 1, matrix.U8, []byte{10, 200})
	out, err := Threshold(src, 100, 255, ThreshTrunc)
	if err != nil {
		t.Fatal(err)
	}
	if out.Data()[0] != 10 || out.Data()[1] != 100 {
		t.Errorf("Threshold(Trunc) = %v, want [10 100]", out.Data())
	}
}

func TestAdaptiveThresholdFlatImageAllMax(t *testing.T) {
	src := flatMatrix(t, 9, 9, 1, 100)
	out, err := AdaptiveThreshold(src, 255, AdaptiveMean, ThreshBinary, 5, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range out.Data() {
		if b != 255 {
			t.Fatalf("AdaptiveThreshold on a flat image with positive c should produce all maxVal (255), got %d", b)
		}
	}
}
