package cpu

import (
	"fmt"
	"math"

	"github.com/gogpu/cvcore/cverr"
	"github.com/gogpu/cvcore/internal/color"
	"github.com/gogpu/cvcore/internal/satmath"
	"github.com/gogpu/cvcore/matrix"
)

// ColorConversion identifies a cvtColor transform. Grounded on the
// teacher's internal/color conversion pair shape (U8ToF32/F32ToU8,
// SRGBToLinear/LinearToSRGB travel in matched forward/inverse pairs); the
// channel-semantics math itself (RGB<->Gray, RGB<->HSV) is standard OpenCV
// colorimetry with no corresponding teacher code, since the teacher only
// ever worked in sRGB/linear RGBA.
type ColorConversion int

const (
	BGR2RGB ColorConversion = iota
	RGB2BGR
	BGR2Gray
	RGB2Gray
	Gray2BGR
	BGR2HSV
	HSV2BGR
	BGR2Lab
	Lab2BGR
	BGR2YCrCb
	YCrCb2BGR
)

// CvtColor converts src from one color representation to another per code.
// Only U8 3-channel (and, for the *2Gray/Gray2* pairs, 1-channel) sources
// are accepted; all arithmetic is performed at float64 precision and
// written back through the normative saturated round-and-clamp rule.
func CvtColor(src *matrix.Matrix, code ColorConversion) (*matrix.Matrix, error) {
	if src.Depth() != matrix.U8 {
		return nil, cverr.New(cverr.UnsupportedDepth, "cpu.CvtColor", "CvtColor currently supports only U8 depth")
	}

	switch code {
	case BGR2RGB, RGB2BGR:
		return swapRB(src)
	case BGR2Gray, RGB2Gray:
		return toGray(src, code == RGB2Gray)
	case Gray2BGR:
		return grayToColor(src)
	case BGR2HSV:
		return bgrToHSV(src)
	case HSV2BGR:
		return hsvToBGR(src)
	case BGR2Lab:
		return bgrToLab(src)
	case Lab2BGR:
		return labToBGR(src)
	case BGR2YCrCb:
		return bgrToYCrCb(src)
	case YCrCb2BGR:
		return ycrcbToBGR(src)
	default:
		return nil, cverr.New(cverr.InvalidInput, "cpu.CvtColor", fmt.Sprintf("unknown conversion code %d", code))
	}
}

func requireChannels(op string, src *matrix.Matrix, n int) error {
	if src.Channels() != n {
		return cverr.New(cverr.UnsupportedChannels, op, fmt.Sprintf("expected %d channels, got %d", n, src.Channels()))
	}
	return nil
}

func swapRB(src *matrix.Matrix) (*matrix.Matrix, error) {
	if err := requireChannels("cpu.CvtColor(swap)", src, 3); err != nil {
		return nil, err
	}
	out := src.Clone()
	d := out.Data()
	for i := 0; i+2 < len(d); i += 3 {
		d[i], d[i+2] = d[i+2], d[i]
	}
	return out, nil
}

// grayWeights are the ITU-R BT.601 luma coefficients OpenCV uses for its
// default (non-linear, non-sRGB-aware) RGB/BGR to grayscale conversion.
var grayWeightsBGR = [3]float64{0.114, 0.587, 0.299} // B, G, R
var grayWeightsRGB = [3]float64{0.299, 0.587, 0.114} // R, G, B

func toGray(src *matrix.Matrix, rgbOrder bool) (*matrix.Matrix, error) {
	if err := requireChannels("cpu.CvtColor(gray)", src, 3); err != nil {
		return nil, err
	}
	w := grayWeightsBGR
	if rgbOrder {
		w = grayWeightsRGB
	}
	out, err := matrix.New(src.Rows(), src.Cols(), 1, matrix.U8)
	if err != nil {
		return nil, err
	}
	sd, od := src.Data(), out.Data()
	for i, j := 0, 0; i+2 < len(sd); i, j = i+3, j+1 {
		v := w[0]*float64(sd[i]) + w[1]*float64(sd[i+1]) + w[2]*float64(sd[i+2])
		od[j] = satmath.RoundClampU8(v)
	}
	return out, nil
}

func grayToColor(src *matrix.Matrix) (*matrix.Matrix, error) {
	if err := requireChannels("cpu.CvtColor(gray2bgr)", src, 1); err != nil {
		return nil, err
	}
	out, err := matrix.New(src.Rows(), src.Cols(), 3, matrix.U8)
	if err != nil {
		return nil, err
	}
	sd, od := src.Data(), out.Data()
	for i, j := 0, 0; i < len(sd); i, j = i+1, j+3 {
		od[j], od[j+1], od[j+2] = sd[i], sd[i], sd[i]
	}
	return out, nil
}

// bgrToHSV converts a U8 BGR pixel buffer to OpenCV's 8-bit HSV convention:
// H in [0,180], S and V in [0,255].
func bgrToHSV(src *matrix.Matrix) (*matrix.Matrix, error) {
	if err := requireChannels("cpu.CvtColor(hsv)", src, 3); err != nil {
		return nil, err
	}
	out, err := matrix.New(src.Rows(), src.Cols(), 3, matrix.U8)
	if err != nil {
		return nil, err
	}
	sd, od := src.Data(), out.Data()
	for i := 0; i+2 < len(sd); i += 3 {
		b, g, r := float64(sd[i])/255, float64(sd[i+1])/255, float64(sd[i+2])/255
		maxC := math.Max(r, math.Max(g, b))
		minC := math.Min(r, math.Min(g, b))
		delta := maxC - minC

		var h float64
		switch {
		case delta == 0:
			h = 0
		case maxC == r:
			h = 60 * math.Mod((g-b)/delta, 6)
		case maxC == g:
			h = 60 * ((b-r)/delta + 2)
		default:
			h = 60 * ((r-g)/delta + 4)
		}
		if h < 0 {
			h += 360
		}

		s := 0.0
		if maxC > 0 {
			s = delta / maxC
		}

		od[i] = satmath.RoundClampU8(h / 2) // OpenCV packs hue into [0,180]
		od[i+1] = satmath.RoundClampU8(s * 255)
		od[i+2] = satmath.RoundClampU8(maxC * 255)
	}
	return out, nil
}

func hsvToBGR(src *matrix.Matrix) (*matrix.Matrix, error) {
	if err := requireChannels("cpu.CvtColor(hsv2bgr)", src, 3); err != nil {
		return nil, err
	}
	out, err := matrix.New(src.Rows(), src.Cols(), 3, matrix.U8)
	if err != nil {
		return nil, err
	}
	sd, od := src.Data(), out.Data()
	for i := 0; i+2 < len(sd); i += 3 {
		h := float64(sd[i]) * 2 // back to [0,360)
		s := float64(sd[i+1]) / 255
		v := float64(sd[i+2]) / 255

		c := v * s
		x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
		m := v - c

		var r1, g1, b1 float64
		switch {
		case h < 60:
			r1, g1, b1 = c, x, 0
		case h < 120:
			r1, g1, b1 = x, c, 0
		case h < 180:
			r1, g1, b1 = 0, c, x
		case h < 240:
			r1, g1, b1 = 0, x, c
		case h < 300:
			r1, g1, b1 = x, 0, c
		default:
			r1, g1, b1 = c, 0, x
		}

		od[i] = satmath.RoundClampU8((b1 + m) * 255)
		od[i+1] = satmath.RoundClampU8((g1 + m) * 255)
		od[i+2] = satmath.RoundClampU8((r1 + m) * 255)
	}
	return out, nil
}

// srgbToXYZ is the standard linear-sRGB to CIE XYZ (D65 white point) 3x3
// transform; xyzToSRGB is its matrix inverse.
var srgbToXYZ = [3][3]float64{
	{0.4124564, 0.3575761, 0.1804375},
	{0.2126729, 0.7151522, 0.0721750},
	{0.0193339, 0.1191920, 0.9503041},
}

var xyzToSRGB = [3][3]float64{
	{3.2404542, -1.5371385, -0.4985314},
	{-0.9692660, 1.8760108, 0.0415560},
	{0.0556434, -0.2040259, 1.0572252},
}

const (
	d65X = 0.95047
	d65Y = 1.0
	d65Z = 1.08883
)

// labF is CIE-Lab's nonlinear cube-root response, with the standard linear
// segment near zero that keeps the transform invertible and numerically
// stable for very dark pixels (a bare math.Cbrt would work for the
// normative cube-root pipeline but loses that invertibility guarantee).
func labF(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta*delta*delta {
		return math.Cbrt(t)
	}
	return t/(3*delta*delta) + 4.0/29.0
}

func labFInv(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta {
		return t * t * t
	}
	return 3 * delta * delta * (t - 4.0/29.0)
}

// bgrToLab converts a U8 BGR buffer to CIE-Lab via the normative
// pipeline: sRGB gamma-expand (internal/color's lookup table, the same
// one cpu/gamma.go's SRGBToLinear wires in) -> linear RGB -> XYZ(D65) ->
// Lab cube-root, then packs L*2.55 into byte 0, a+128 into byte 1, and
// b+128 into byte 2.
func bgrToLab(src *matrix.Matrix) (*matrix.Matrix, error) {
	if err := requireChannels("cpu.CvtColor(lab)", src, 3); err != nil {
		return nil, err
	}
	out, err := matrix.New(src.Rows(), src.Cols(), 3, matrix.U8)
	if err != nil {
		return nil, err
	}
	sd, od := src.Data(), out.Data()
	for i := 0; i+2 < len(sd); i += 3 {
		b := float64(color.SRGBToLinearFast(sd[i]))
		g := float64(color.SRGBToLinearFast(sd[i+1]))
		r := float64(color.SRGBToLinearFast(sd[i+2]))

		x := srgbToXYZ[0][0]*r + srgbToXYZ[0][1]*g + srgbToXYZ[0][2]*b
		y := srgbToXYZ[1][0]*r + srgbToXYZ[1][1]*g + srgbToXYZ[1][2]*b
		z := srgbToXYZ[2][0]*r + srgbToXYZ[2][1]*g + srgbToXYZ[2][2]*b

		fx, fy, fz := labF(x/d65X), labF(y/d65Y), labF(z/d65Z)
		l := 116*fy - 16
		a := 500 * (fx - fy)
		bb := 200 * (fy - fz)

		od[i] = satmath.RoundClampU8(l * 2.55)
		od[i+1] = satmath.RoundClampU8(a + 128)
		od[i+2] = satmath.RoundClampU8(bb + 128)
	}
	return out, nil
}

// labToBGR inverts bgrToLab: unpack the byte encoding, invert the Lab
// cube-root, invert the D65 XYZ transform, then gamma-compress each linear
// channel back to sRGB via internal/color's inverse lookup table.
func labToBGR(src *matrix.Matrix) (*matrix.Matrix, error) {
	if err := requireChannels("cpu.CvtColor(lab2bgr)", src, 3); err != nil {
		return nil, err
	}
	out, err := matrix.New(src.Rows(), src.Cols(), 3, matrix.U8)
	if err != nil {
		return nil, err
	}
	sd, od := src.Data(), out.Data()
	for i := 0; i+2 < len(sd); i += 3 {
		l := float64(sd[i]) / 2.55
		a := float64(sd[i+1]) - 128
		bb := float64(sd[i+2]) - 128

		fy := (l + 16) / 116
		fx := fy + a/500
		fz := fy - bb/200

		x := labFInv(fx) * d65X
		y := labFInv(fy) * d65Y
		z := labFInv(fz) * d65Z

		r := xyzToSRGB[0][0]*x + xyzToSRGB[0][1]*y + xyzToSRGB[0][2]*z
		g := xyzToSRGB[1][0]*x + xyzToSRGB[1][1]*y + xyzToSRGB[1][2]*z
		b := xyzToSRGB[2][0]*x + xyzToSRGB[2][1]*y + xyzToSRGB[2][2]*z

		od[i] = color.LinearToSRGBFast(float32(b))
		od[i+1] = color.LinearToSRGBFast(float32(g))
		od[i+2] = color.LinearToSRGBFast(float32(r))
	}
	return out, nil
}

// bgrToYCrCb converts a U8 BGR buffer to YCrCb using the ITU-R BT.601
// luma/chroma coefficients OpenCV's default (non-sRGB-aware) conversion
// uses, the same grayWeightsBGR-style non-linear coefficients toGray
// already applies, extended with the two chroma channels.
func bgrToYCrCb(src *matrix.Matrix) (*matrix.Matrix, error) {
	if err := requireChannels("cpu.CvtColor(ycrcb)", src, 3); err != nil {
		return nil, err
	}
	out, err := matrix.New(src.Rows(), src.Cols(), 3, matrix.U8)
	if err != nil {
		return nil, err
	}
	sd, od := src.Data(), out.Data()
	for i := 0; i+2 < len(sd); i += 3 {
		b, g, r := float64(sd[i]), float64(sd[i+1]), float64(sd[i+2])
		y := 0.299*r + 0.587*g + 0.114*b
		cr := (r-y)*0.713 + 128
		cb := (b-y)*0.564 + 128

		od[i] = satmath.RoundClampU8(y)
		od[i+1] = satmath.RoundClampU8(cr)
		od[i+2] = satmath.RoundClampU8(cb)
	}
	return out, nil
}

// ycrcbToBGR inverts bgrToYCrCb.
func ycrcbToBGR(src *matrix.Matrix) (*matrix.Matrix, error) {
	if err := requireChannels("cpu.CvtColor(ycrcb2bgr)", src, 3); err != nil {
		return nil, err
	}
	out, err := matrix.New(src.Rows(), src.Cols(), 3, matrix.U8)
	if err != nil {
		return nil, err
	}
	sd, od := src.Data(), out.Data()
	for i := 0; i+2 < len(sd); i += 3 {
		y := float64(sd[i])
		cr := float64(sd[i+1]) - 128
		cb := float64(sd[i+2]) - 128

		r := y + 1.403*cr
		g := y - 0.714*cr - 0.344*cb
		b := y + 1.773*cb

		od[i] = satmath.RoundClampU8(b)
		od[i+1] = satmath.RoundClampU8(g)
		od[i+2] = satmath.RoundClampU8(r)
	}
	return out, nil
}
