package dispatch

import (
	"testing"

	"github.com/gogpu/cvcore/cpu"
	"github.com/gogpu/cvcore/matrix"
)

func mustMat(t *testing.T, rows, cols, channels int, depth matrix.Depth, data []byte) *matrix.Matrix {
	t.Helper()
	m, err := matrix.FromSlice(data, rows, cols, channels, depth)
	if err != nil {
		t.Fatalf("building matrix: %v", err)
	}
	return m
}

func TestThresholdWithoutContextRunsCpu(t *testing.T) {
	src := mustMat(t, 1, 3, 1, matrix.U8, []byte{10, 100, 200})
	out, err := Threshold(nil, Auto, src, 50, 255, cpu.ThreshBinary)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0, 0, 255}
	for i, w := range want {
		if out.Data()[i] != w {
			t.Errorf("Threshold[%d] = %d, want %d", i, out.Data()[i], w)
		}
	}
}

func TestResizeWithoutContextRunsCpu(t *testing.T) {
	src := mustMat(t, 2, 2, 1, matrix.U8, []byte{1, 2, 3, 4})
	out, err := Resize(nil, Auto, src, matrix.Size{Width: 4, Height: 4}, cpu.InterpNearest)
	if err != nil {
		t.Fatal(err)
	}
	if out.Rows() != 4 || out.Cols() != 4 {
		t.Fatalf("Resize shape = %dx%d, want 4x4", out.Rows(), out.Cols())
	}
}

func TestAddMatchesCpuAdd(t *testing.T) {
	a := mustMat(t, 1, 2, 1, matrix.U8, []byte{200, 10})
	b := mustMat(t, 1, 2, 1, matrix.U8, []byte{100, 10})
	out, err := Add(Cpu, a, b)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{255, 20}
	for i, w := range want {
		if out.Data()[i] != w {
			t.Errorf("Add[%d] = %d, want %d", i, out.Data()[i], w)
		}
	}
}

func TestBitwiseAndMatchesCpu(t *testing.T) {
	a := mustMat(t, 1, 1, 1, matrix.U8, []byte{0b1100})
	b := mustMat(t, 1, 1, 1, matrix.U8, []byte{0b1010})
	out, err := BitwiseAnd(Cpu, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if out.Data()[0] != 0b1000 {
		t.Errorf("BitwiseAnd = %08b, want 00001000", out.Data()[0])
	}
}

func TestSqrtMatchesCpu(t *testing.T) {
	m, err := matrix.NewWithFill(1, 1, 1, matrix.F32, matrix.ScalarAll(16))
	if err != nil {
		t.Fatal(err)
	}
	out, err := Sqrt(Cpu, m)
	if err != nil {
		t.Fatal(err)
	}
	v, _ := out.GetScalar(0, 0)
	if v[0] != 4 {
		t.Errorf("Sqrt(16) = %v, want 4", v[0])
	}
}

func TestCvtColorMatchesCpu(t *testing.T) {
	src := mustMat(t, 1, 1, 3, matrix.U8, []byte{128, 128, 128})
	out, err := CvtColor(Cpu, src, cpu.BGR2Gray)
	if err != nil {
		t.Fatal(err)
	}
	if out.Data()[0] != 128 {
		t.Errorf("CvtColor(BGR2Gray) = %d, want 128", out.Data()[0])
	}
}

func TestGaussianBlurPreservesFlatImage(t *testing.T) {
	data := make([]byte, 9*9)
	for i := range data {
		data[i] = 100
	}
	src := mustMat(t, 9, 9, 1, matrix.U8, data)
	out, err := GaussianBlur(Cpu, src, 5, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range out.Data() {
		if b != 100 {
			t.Fatalf("GaussianBlur[%d] = %d, want 100", i, b)
		}
	}
}

func TestSobelReturnsGradientPair(t *testing.T) {
	data := make([]byte, 5*5)
	for i := range data {
		data[i] = 128
	}
	src := mustMat(t, 5, 5, 1, matrix.U8, data)
	pair, err := Sobel(Cpu, src)
	if err != nil {
		t.Fatal(err)
	}
	if pair.Gx == nil || pair.Gy == nil {
		t.Fatal("Sobel should populate both Gx and Gy")
	}
}

func TestWatershedRejectsNonS16Markers(t *testing.T) {
	data := make([]byte, 4)
	src := mustMat(t, 2, 2, 1, matrix.U8, data)
	markers := mustMat(t, 2, 2, 1, matrix.U8, data)
	if _, err := Watershed(Cpu, src, markers); err == nil {
		t.Fatal("expected UnsupportedDepth for non-S16 markers")
	}
}

func TestCompareHistNoOpSelection(t *testing.T) {
	src := mustMat(t, 2, 2, 1, matrix.U8, []byte{10, 20, 30, 40})
	hist, err := CalcHist(Cpu, src)
	if err != nil {
		t.Fatal(err)
	}
	if corr := CompareHist(hist, hist, cpu.HistCompareCorrelation); corr < 0.99 {
		t.Errorf("CompareHist(identical) = %v, want ~1", corr)
	}
}
