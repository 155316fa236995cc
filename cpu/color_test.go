package cpu

import (
	"testing"

	"github.com/gogpu/cvcore/matrix"
)

func TestSwapRBIsInvolution(t *testing.T) {
	src := mustMat(t, 1, 1, 3, matrix.U8, []byte{10, 20, 30})
	once, err := CvtColor(src, BGR2RGB)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := CvtColor(once, BGR2RGB)
	if err != nil {
		t.Fatal(err)
	}
	for i := range src.Data() {
		if twice.Data()[i] != src.Data()[i] {
			t.Fatalf("swap-swap mismatch at %d: got %d want %d", i, twice.Data()[i], src.Data()[i])
		}
	}
}

func TestBGR2GrayOfGrayIsIdentity(t *testing.T) {
	src := mustMat(t, 1, 1, 3, matrix.U8, []byte{128, 128, 128})
	gray, err := CvtColor(src, BGR2Gray)
	if err != nil {
		t.Fatal(err)
	}
	if gray.Channels() != 1 {
		t.Fatalf("gray output channels = %d, want 1", gray.Channels())
	}
	if gray.Data()[0] != 128 {
		t.Errorf("gray of a flat-gray BGR pixel = %d, want 128", gray.Data()[0])
	}
}

func TestGray2BGRBroadcasts(t *testing.T) {
	gray := mustMat(t, 1, 1, 1, matrix.U8, []byte{200})
	color, err := CvtColor(gray, Gray2BGR)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{200, 200, 200}
	for i, w := range want {
		if color.Data()[i] != w {
			t.Errorf("Gray2BGR[%d] = %d, want %d", i, color.Data()[i], w)
		}
	}
}

func TestBGR2HSVRoundTripApproximatelyPreservesColor(t *testing.T) {
	src := mustMat(t, 1, 1, 3, matrix.U8, []byte{30, 120, 200}) // B, G, R
	hsv, err := CvtColor(src, BGR2HSV)
	if err != nil {
		t.Fatal(err)
	}
	back, err := CvtColor(hsv, HSV2BGR)
	if err != nil {
		t.Fatal(err)
	}
	for i := range src.Data() {
		diff := int(src.Data()[i]) - int(back.Data()[i])
		if diff < -2 || diff > 2 {
			t.Errorf("HSV round-trip[%d] = %d, want close to %d", i, back.Data()[i], src.Data()[i])
		}
	}
}

func TestBGR2LabRoundTripApproximatelyPreservesColor(t *testing.T) {
	src := mustMat(t, 1, 1, 3, matrix.U8, []byte{30, 120, 200}) // B, G, R
	lab, err := CvtColor(src, BGR2Lab)
	if err != nil {
		t.Fatal(err)
	}
	back, err := CvtColor(lab, Lab2BGR)
	if err != nil {
		t.Fatal(err)
	}
	for i := range src.Data() {
		diff := int(src.Data()[i]) - int(back.Data()[i])
		if diff < -4 || diff > 4 {
			t.Errorf("Lab round-trip[%d] = %d, want close to %d", i, back.Data()[i], src.Data()[i])
		}
	}
}

func TestBGR2LabOfGrayHasZeroChroma(t *testing.T) {
	src := mustMat(t, 1, 1, 3, matrix.U8, []byte{128, 128, 128})
	lab, err := CvtColor(src, BGR2Lab)
	if err != nil {
		t.Fatal(err)
	}
	// a and b are packed as value+128, so a neutral gray pixel should land
	// very close to the 128 chroma center.
	if diff := int(lab.Data()[1]) - 128; diff < -2 || diff > 2 {
		t.Errorf("Lab a* of gray = %d, want close to 128", lab.Data()[1])
	}
	if diff := int(lab.Data()[2]) - 128; diff < -2 || diff > 2 {
		t.Errorf("Lab b* of gray = %d, want close to 128", lab.Data()[2])
	}
}

func TestBGR2YCrCbRoundTripApproximatelyPreservesColor(t *testing.T) {
	src := mustMat(t, 1, 1, 3, matrix.U8, []byte{30, 120, 200}) // B, G, R
	ycrcb, err := CvtColor(src, BGR2YCrCb)
	if err != nil {
		t.Fatal(err)
	}
	back, err := CvtColor(ycrcb, YCrCb2BGR)
	if err != nil {
		t.Fatal(err)
	}
	for i := range src.Data() {
		diff := int(src.Data()[i]) - int(back.Data()[i])
		if diff < -2 || diff > 2 {
			t.Errorf("YCrCb round-trip[%d] = %d, want close to %d", i, back.Data()[i], src.Data()[i])
		}
	}
}

func TestBGR2YCrCbOfGrayHasNeutralChroma(t *testing.T) {
	src := mustMat(t, 1, 1, 3, matrix.U8, []byte{128, 128, 128})
	ycrcb, err := CvtColor(src, BGR2YCrCb)
	if err != nil {
		t.Fatal(err)
	}
	if ycrcb.Data()[0] != 128 {
		t.Errorf("Y of flat gray = %d, want 128", ycrcb.Data()[0])
	}
	if ycrcb.Data()[1] != 128 || ycrcb.Data()[2] != 128 {
		t.Errorf("Cr/Cb of flat gray = %d/%d, want 128/128", ycrcb.Data()[1], ycrcb.Data()[2])
	}
}

func TestCvtColorRejectsWrongChannelCount(t *testing.T) {
	gray := mustMat(t, 1, 1, 1, matrix.U8, []byte{1})
	if _, err := CvtColor(gray, BGR2RGB); err == nil {
		t.Fatal("expected UnsupportedChannels error")
	}
}
