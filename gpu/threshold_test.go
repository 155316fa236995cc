package gpu

import (
	"encoding/binary"
	"testing"

	"github.com/gogpu/cvcore/gpucore"
)

func TestThresholdParamsEncodeLayout(t *testing.T) {
	p := ThresholdParams{Width: 640, Height: 480, Thresh: 128, MaxVal: 255, ThresholdType: 2}
	buf := p.Encode(nil)
	if len(buf) != 32 {
		t.Fatalf("expected 32-byte encoded uniform block, got %d", len(buf))
	}
	if got := binary.LittleEndian.Uint32(buf[0:4]); got != 640 {
		t.Errorf("Width: got %d, want 640", got)
	}
	if got := binary.LittleEndian.Uint32(buf[4:8]); got != 480 {
		t.Errorf("Height: got %d, want 480", got)
	}
	if got := binary.LittleEndian.Uint32(buf[8:12]); got != 128 {
		t.Errorf("Thresh: got %d, want 128", got)
	}
	if got := binary.LittleEndian.Uint32(buf[12:16]); got != 255 {
		t.Errorf("MaxVal: got %d, want 255", got)
	}
	if got := binary.LittleEndian.Uint32(buf[16:20]); got != 2 {
		t.Errorf("ThresholdType: got %d, want 2", got)
	}
}

func TestThresholdParamsEncodeAppends(t *testing.T) {
	prefix := []byte{0xAA, 0xBB}
	p := ThresholdParams{Width: 1, Height: 1}
	buf := p.Encode(prefix)
	if len(buf) != 2+32 {
		t.Fatalf("expected Encode to append to dst, got length %d", len(buf))
	}
	if buf[0] != 0xAA || buf[1] != 0xBB {
		t.Fatalf("Encode must preserve dst's existing bytes")
	}
}

func TestAssembleShaderConcatenatesPreludeAndBody(t *testing.T) {
	assembled := assembleForTest()
	if len(assembled) <= len(preludeSource) {
		t.Fatalf("assembled shader should be longer than the prelude alone")
	}
}

func assembleForTest() string {
	return gpucore.AssembleShader(preludeSource, thresholdSource)
}

func TestResizeParamsEncodeLayout(t *testing.T) {
	p := ResizeParams{SrcWidth: 100, SrcHeight: 50, DstWidth: 200, DstHeight: 100, Mode: 1}
	buf := p.Encode(nil)
	if len(buf) != 32 {
		t.Fatalf("expected 32-byte encoded uniform block, got %d", len(buf))
	}
	if got := binary.LittleEndian.Uint32(buf[0:4]); got != 100 {
		t.Errorf("SrcWidth: got %d, want 100", got)
	}
	if got := binary.LittleEndian.Uint32(buf[8:12]); got != 200 {
		t.Errorf("DstWidth: got %d, want 200", got)
	}
	if got := binary.LittleEndian.Uint32(buf[16:20]); got != 1 {
		t.Errorf("Mode: got %d, want 1", got)
	}
}
