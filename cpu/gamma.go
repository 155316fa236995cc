package cpu

import (
	"math"

	"github.com/gogpu/cvcore/cverr"
	"github.com/gogpu/cvcore/internal/color"
	"github.com/gogpu/cvcore/matrix"
)

// SRGBToLinear converts every channel of a U8 matrix from sRGB-encoded
// byte values to linear F32 values in [0,1], using the precomputed
// 256-entry lookup table in internal/color rather than a math.Pow call
// per pixel. Alpha channels are not distinguished from color channels
// here (a Matrix carries no fixed RGBA layout), so a 4-channel source has its 4th
// channel gamma-decoded too; callers that need the teacher's
// alpha-stays-linear behavior on a 4-channel image should skip the last
// channel themselves.
func SRGBToLinear(src *matrix.Matrix) (*matrix.Matrix, error) {
	if src.Depth() != matrix.U8 {
		return nil, cverr.New(cverr.UnsupportedDepth, "cpu.SRGBToLinear", "SRGBToLinear requires U8 depth")
	}
	dst, err := matrix.New(src.Rows(), src.Cols(), src.Channels(), matrix.F32)
	if err != nil {
		return nil, err
	}
	data, out := src.Data(), dst.Data()
	for i, b := range data {
		f := color.SRGBToLinearFast(b)
		bits := math.Float32bits(f)
		out[i*4+0] = byte(bits)
		out[i*4+1] = byte(bits >> 8)
		out[i*4+2] = byte(bits >> 16)
		out[i*4+3] = byte(bits >> 24)
	}
	return dst, nil
}

// LinearToSRGB converts every channel of an F32 matrix (values expected in
// [0,1]) back to sRGB-encoded U8 bytes, using internal/color's 4096-entry
// linear-to-sRGB lookup table. Out-of-range input is clamped by the table
// lookup itself (LinearToSRGBFast clamps to [0,1] before indexing).
func LinearToSRGB(src *matrix.Matrix) (*matrix.Matrix, error) {
	if src.Depth() != matrix.F32 {
		return nil, cverr.New(cverr.UnsupportedDepth, "cpu.LinearToSRGB", "LinearToSRGB requires F32 depth")
	}
	dst, err := matrix.New(src.Rows(), src.Cols(), src.Channels(), matrix.U8)
	if err != nil {
		return nil, err
	}
	data, out := src.Data(), dst.Data()
	n := src.Rows() * src.Cols() * src.Channels()
	for i := 0; i < n; i++ {
		bits := uint32(data[i*4+0]) | uint32(data[i*4+1])<<8 | uint32(data[i*4+2])<<16 | uint32(data[i*4+3])<<24
		f := math.Float32frombits(bits)
		out[i] = color.LinearToSRGBFast(f)
	}
	return dst, nil
}
