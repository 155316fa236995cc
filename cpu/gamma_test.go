package cpu

import (
	"math"
	"testing"

	"github.com/gogpu/cvcore/matrix"
)

func TestSRGBToLinearRoundTripsThroughLinearToSRGB(t *testing.T) {
	src := mustMat(t, 1, 4, 1, matrix.U8, []byte{0, 64, 128, 255})

	linear, err := SRGBToLinear(src)
	if err != nil {
		t.Fatalf("SRGBToLinear: %v", err)
	}
	if linear.Depth() != matrix.F32 {
		t.Fatalf("expected F32 output, got %v", linear.Depth())
	}

	back, err := LinearToSRGB(linear)
	if err != nil {
		t.Fatalf("LinearToSRGB: %v", err)
	}
	if back.Depth() != matrix.U8 {
		t.Fatalf("expected U8 output, got %v", back.Depth())
	}

	for i, want := range []byte{0, 64, 128, 255} {
		got, err := back.At(0, i)
		if err != nil {
			t.Fatalf("At: %v", err)
		}
		diff := int(got[0]) - int(want)
		if diff < 0 {
			diff = -diff
		}
		if diff > 1 {
			t.Errorf("pixel %d: round trip gave %d, want %d (+/-1)", i, got[0], want)
		}
	}
}

func TestSRGBToLinearRejectsNonU8(t *testing.T) {
	src := mustMat(t, 1, 1, 1, matrix.F32, make([]byte, 4))
	if _, err := SRGBToLinear(src); err == nil {
		t.Fatalf("expected error for non-U8 input")
	}
}

func TestLinearToSRGBClampsOutOfRange(t *testing.T) {
	src := mustMat(t, 1, 1, 1, matrix.F32, make([]byte, 4))
	// write a value > 1.0 directly via the raw byte buffer
	bits := math.Float32bits(2.0)
	data := src.Data()
	data[0] = byte(bits)
	data[1] = byte(bits >> 8)
	data[2] = byte(bits >> 16)
	data[3] = byte(bits >> 24)

	out, err := LinearToSRGB(src)
	if err != nil {
		t.Fatalf("LinearToSRGB: %v", err)
	}
	px, err := out.At(0, 0)
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if px[0] != 255 {
		t.Errorf("expected clamped value 255, got %d", px[0])
	}
}
