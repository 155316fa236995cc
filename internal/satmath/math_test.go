package satmath

import "testing"

func TestDiv255Exact(t *testing.T) {
	for x := 0; x <= 255*255; x += 37 {
		got := Div255(uint16(x))
		want := uint16(x) / 255
		if got != want {
			t.Errorf("Div255(%d) = %d, want %d", x, got, want)
		}
	}
}

func TestMulDiv255(t *testing.T) {
	cases := []struct{ a, b, want byte }{
		{255, 255, 255},
		{0, 255, 0},
		{128, 128, 64},
		{255, 0, 0},
	}
	for _, c := range cases {
		if got := MulDiv255(c.a, c.b); got != c.want {
			t.Errorf("MulDiv255(%d,%d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestClampU8(t *testing.T) {
	if ClampU8(-5) != 0 {
		t.Error("ClampU8(-5) should be 0")
	}
	if ClampU8(300) != 255 {
		t.Error("ClampU8(300) should be 255")
	}
	if ClampU8(100) != 100 {
		t.Error("ClampU8(100) should be 100")
	}
}

func TestRoundClampU8(t *testing.T) {
	cases := []struct {
		in   float64
		want byte
	}{
		{-1.0, 0},
		{0.4, 0},
		{0.5, 1},
		{254.6, 255},
		{300.0, 255},
		{127.5, 128},
	}
	for _, c := range cases {
		if got := RoundClampU8(c.in); got != c.want {
			t.Errorf("RoundClampU8(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestAddSubClampU8(t *testing.T) {
	if AddClampU8(200, 100) != 255 {
		t.Error("AddClampU8 should saturate at 255")
	}
	if AddClampU8(10, 20) != 30 {
		t.Error("AddClampU8(10,20) should be 30")
	}
	if SubClampU8(10, 20) != 0 {
		t.Error("SubClampU8 should saturate at 0")
	}
	if SubClampU8(20, 10) != 10 {
		t.Error("SubClampU8(20,10) should be 10")
	}
}

func TestAbsDiffU8(t *testing.T) {
	if AbsDiffU8(10, 20) != 10 {
		t.Error("AbsDiffU8(10,20) should be 10")
	}
	if AbsDiffU8(20, 10) != 10 {
		t.Error("AbsDiffU8(20,10) should be 10")
	}
}
