package cpu

import (
	"fmt"
	"math"

	"github.com/gogpu/cvcore/cverr"
	"github.com/gogpu/cvcore/internal/satmath"
	"github.com/gogpu/cvcore/internal/wide"
	"github.com/gogpu/cvcore/matrix"
)

func sameShape(op string, a, b *matrix.Matrix) error {
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() || a.Channels() != b.Channels() {
		return cverr.New(cverr.InvalidInput, op, fmt.Sprintf(
			"shape mismatch: %dx%dx%d vs %dx%dx%d", a.Rows(), a.Cols(), a.Channels(), b.Rows(), b.Cols(), b.Channels()))
	}
	if a.Depth() != b.Depth() {
		return cverr.New(cverr.InvalidInput, op, fmt.Sprintf("depth mismatch: %v vs %v", a.Depth(), b.Depth()))
	}
	return nil
}

// u8Binary applies fn to every byte pair of two equal-shaped U8 matrices,
// 16 lanes at a time via wide.U16x16 where a full lane is available and
// byte-at-a-time for the remainder. lanes receives widened uint16 operands so
// callers can do intermediate arithmetic (e.g. AbsDiff) without overflow.
func u8Binary(op string, a, b *matrix.Matrix, lanes func(x, y wide.U16x16) wide.U16x16, scalar func(x, y byte) byte) (*matrix.Matrix, error) {
	if a.Depth() != matrix.U8 {
		return nil, cverr.New(cverr.UnsupportedDepth, op, "u8Binary requires U8 depth")
	}
	if err := sameShape(op, a, b); err != nil {
		return nil, err
	}
	out, err := matrix.New(a.Rows(), a.Cols(), a.Channels(), matrix.U8)
	if err != nil {
		return nil, err
	}

	ad, bd, od := a.Data(), b.Data(), out.Data()
	n := len(ad)
	i := 0
	for ; i+16 <= n; i += 16 {
		var xv, yv wide.U16x16
		for k := 0; k < 16; k++ {
			xv[k] = uint16(ad[i+k])
			yv[k] = uint16(bd[i+k])
		}
		rv := lanes(xv, yv)
		for k := 0; k < 16; k++ {
			od[i+k] = byte(rv[k])
		}
	}
	for ; i < n; i++ {
		od[i] = scalar(ad[i], bd[i])
	}
	return out, nil
}

// Add computes the saturated per-element sum a+b.
func Add(a, b *matrix.Matrix) (*matrix.Matrix, error) {
	return u8Binary("cpu.Add", a, b,
		func(x, y wide.U16x16) wide.U16x16 { return x.Add(y).Clamp(255) },
		satmath.AddClampU8)
}

// Subtract computes the saturated per-element difference a-b.
func Subtract(a, b *matrix.Matrix) (*matrix.Matrix, error) {
	return u8Binary("cpu.Subtract", a, b,
		func(x, y wide.U16x16) wide.U16x16 {
			var r wide.U16x16
			for i := range r {
				if x[i] >= y[i] {
					r[i] = x[i] - y[i]
				}
			}
			return r
		},
		satmath.SubClampU8)
}

// AbsDiff computes the saturated per-element absolute difference |a-b|.
func AbsDiff(a, b *matrix.Matrix) (*matrix.Matrix, error) {
	return u8Binary("cpu.AbsDiff", a, b,
		func(x, y wide.U16x16) wide.U16x16 {
			var r wide.U16x16
			for i := range r {
				if x[i] >= y[i] {
					r[i] = x[i] - y[i]
				} else {
					r[i] = y[i] - x[i]
				}
			}
			return r
		},
		satmath.AbsDiffU8)
}

// Multiply computes the per-element product a[i]*b[i]/255 (floor division),
// which always stays in [0,255] for U8 operands without an explicit
// normalization pass. There is no scale parameter.
func Multiply(a, b *matrix.Matrix) (*matrix.Matrix, error) {
	return u8Binary("cpu.Multiply", a, b,
		func(x, y wide.U16x16) wide.U16x16 { return x.MulDiv255(y) },
		satmath.MulDiv255)
}

// Min computes the per-element minimum of a and b.
func Min(a, b *matrix.Matrix) (*matrix.Matrix, error) {
	return u8Binary("cpu.Min", a, b,
		func(x, y wide.U16x16) wide.U16x16 {
			var r wide.U16x16
			for i := range r {
				if x[i] < y[i] {
					r[i] = x[i]
				} else {
					r[i] = y[i]
				}
			}
			return r
		},
		func(x, y byte) byte {
			if x < y {
				return x
			}
			return y
		})
}

// Max computes the per-element maximum of a and b.
func Max(a, b *matrix.Matrix) (*matrix.Matrix, error) {
	return u8Binary("cpu.Max", a, b,
		func(x, y wide.U16x16) wide.U16x16 {
			var r wide.U16x16
			for i := range r {
				if x[i] > y[i] {
					r[i] = x[i]
				} else {
					r[i] = y[i]
				}
			}
			return r
		},
		func(x, y byte) byte {
			if x > y {
				return x
			}
			return y
		})
}

// AddWeighted computes the saturated blend alpha*a + beta*b + gamma.
func AddWeighted(a *matrix.Matrix, alpha float64, b *matrix.Matrix, beta, gamma float64) (*matrix.Matrix, error) {
	if a.Depth() != matrix.U8 {
		return nil, cverr.New(cverr.UnsupportedDepth, "cpu.AddWeighted", "AddWeighted requires U8 depth")
	}
	if err := sameShape("cpu.AddWeighted", a, b); err != nil {
		return nil, err
	}
	out, err := matrix.New(a.Rows(), a.Cols(), a.Channels(), matrix.U8)
	if err != nil {
		return nil, err
	}
	ad, bd, od := a.Data(), b.Data(), out.Data()
	for i := range ad {
		od[i] = satmath.RoundClampU8(alpha*float64(ad[i]) + beta*float64(bd[i]) + gamma)
	}
	return out, nil
}

// bitwiseBinary applies a per-byte bitwise operation across two
// equal-shaped U8 matrices. Unlike u8Binary's widened wide.U16x16 lanes
// (needed so Add/Subtract/AbsDiff can detect overflow/underflow before
// narrowing back to byte), a bitwise op never needs headroom beyond a
// byte, so this runs directly over the byte slices.
func bitwiseBinary(op string, a, b *matrix.Matrix, fn func(x, y byte) byte) (*matrix.Matrix, error) {
	if a.Depth() != matrix.U8 {
		return nil, cverr.New(cverr.UnsupportedDepth, op, "bitwiseBinary requires U8 depth")
	}
	if err := sameShape(op, a, b); err != nil {
		return nil, err
	}
	out, err := matrix.New(a.Rows(), a.Cols(), a.Channels(), matrix.U8)
	if err != nil {
		return nil, err
	}
	ad, bd, od := a.Data(), b.Data(), out.Data()
	for i := range ad {
		od[i] = fn(ad[i], bd[i])
	}
	return out, nil
}

// BitwiseAnd computes the per-byte bitwise AND of a and b.
func BitwiseAnd(a, b *matrix.Matrix) (*matrix.Matrix, error) {
	return bitwiseBinary("cpu.BitwiseAnd", a, b, func(x, y byte) byte { return x & y })
}

// BitwiseOr computes the per-byte bitwise OR of a and b.
func BitwiseOr(a, b *matrix.Matrix) (*matrix.Matrix, error) {
	return bitwiseBinary("cpu.BitwiseOr", a, b, func(x, y byte) byte { return x | y })
}

// BitwiseXor computes the per-byte bitwise XOR of a and b.
func BitwiseXor(a, b *matrix.Matrix) (*matrix.Matrix, error) {
	return bitwiseBinary("cpu.BitwiseXor", a, b, func(x, y byte) byte { return x ^ y })
}

// BitwiseNot computes the per-byte bitwise complement of a.
func BitwiseNot(a *matrix.Matrix) (*matrix.Matrix, error) {
	if a.Depth() != matrix.U8 {
		return nil, cverr.New(cverr.UnsupportedDepth, "cpu.BitwiseNot", "BitwiseNot requires U8 depth")
	}
	out, err := matrix.New(a.Rows(), a.Cols(), a.Channels(), matrix.U8)
	if err != nil {
		return nil, err
	}
	ad, od := a.Data(), out.Data()
	for i := range ad {
		od[i] = ^ad[i]
	}
	return out, nil
}

// unaryFloat applies fn to every channel of every pixel of a floating-point
// (F32 or F64) matrix, writing the result into a new matrix of the same
// depth. Grounded on Normalize/ConvertScaleAbs's GetScalar/SetScalar
// per-pixel loop shape, generalized from a fixed formula to an arbitrary
// scalar transform.
func unaryFloat(op string, src *matrix.Matrix, fn func(float64) float64) (*matrix.Matrix, error) {
	if !src.Depth().IsFloat() {
		return nil, cverr.New(cverr.UnsupportedDepth, op, "requires a floating-point matrix (F32 or F64)")
	}
	out, err := matrix.New(src.Rows(), src.Cols(), src.Channels(), src.Depth())
	if err != nil {
		return nil, err
	}
	for y := 0; y < src.Rows(); y++ {
		for x := 0; x < src.Cols(); x++ {
			s, err := src.GetScalar(y, x)
			if err != nil {
				return nil, err
			}
			var r matrix.Scalar
			for c := 0; c < src.Channels(); c++ {
				r[c] = fn(s[c])
			}
			if err := out.SetScalar(y, x, r); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// sqrtF32Fast computes the elementwise square root of a contiguous F32
// matrix 8 lanes at a time via wide.F32x8, the package's f32-lane SIMD-
// style type (otherwise unused outside its own tests), falling back to
// scalar math.Sqrt for the final partial lane.
func sqrtF32Fast(src *matrix.Matrix) (*matrix.Matrix, error) {
	out, err := matrix.New(src.Rows(), src.Cols(), src.Channels(), matrix.F32)
	if err != nil {
		return nil, err
	}
	sd, od := src.Data(), out.Data()
	n := src.Rows() * src.Cols() * src.Channels()

	i := 0
	for ; i+8 <= n; i += 8 {
		var lane wide.F32x8
		for k := 0; k < 8; k++ {
			lane[k] = getF32At(sd, i+k)
		}
		lane = lane.Sqrt()
		for k := 0; k < 8; k++ {
			putF32At(od, i+k, lane[k])
		}
	}
	for ; i < n; i++ {
		putF32At(od, i, float32(math.Sqrt(float64(getF32At(sd, i)))))
	}
	return out, nil
}

// Sqrt computes the elementwise square root of a floating-point matrix.
// F32 sources take the wide.F32x8 lane fast path; F64 sources (which
// don't fit 8 to a lane the same way) fall back to the generic
// per-element loop.
func Sqrt(src *matrix.Matrix) (*matrix.Matrix, error) {
	switch src.Depth() {
	case matrix.F32:
		return sqrtF32Fast(src)
	case matrix.F64:
		return unaryFloat("cpu.Sqrt", src, math.Sqrt)
	default:
		return nil, cverr.New(cverr.UnsupportedDepth, "cpu.Sqrt", "Sqrt requires a floating-point matrix (F32 or F64)")
	}
}

// Exp computes the elementwise natural exponential of a floating-point matrix.
func Exp(src *matrix.Matrix) (*matrix.Matrix, error) {
	return unaryFloat("cpu.Exp", src, math.Exp)
}

// Log computes the elementwise natural logarithm of a floating-point matrix.
func Log(src *matrix.Matrix) (*matrix.Matrix, error) {
	return unaryFloat("cpu.Log", src, math.Log)
}

// Pow raises every element of a floating-point matrix to power.
func Pow(src *matrix.Matrix, power float64) (*matrix.Matrix, error) {
	return unaryFloat("cpu.Pow", src, func(v float64) float64 { return math.Pow(v, power) })
}

// CompareOp is a per-element relational test used by Compare.
type CompareOp int

const (
	CompareEQ CompareOp = iota
	CompareNE
	CompareGT
	CompareGE
	CompareLT
	CompareLE
)

// Compare produces a U8 mask with a's channel count (255 where the relation
// holds, 0 otherwise) from an element-wise comparison of a and b.
func Compare(a, b *matrix.Matrix, op CompareOp) (*matrix.Matrix, error) {
	if a.Depth() != matrix.U8 {
		return nil, cverr.New(cverr.UnsupportedDepth, "cpu.Compare", "Compare requires U8 depth")
	}
	if err := sameShape("cpu.Compare", a, b); err != nil {
		return nil, err
	}
	out, err := matrix.New(a.Rows(), a.Cols(), a.Channels(), matrix.U8)
	if err != nil {
		return nil, err
	}
	ad, bd, od := a.Data(), b.Data(), out.Data()
	var test func(x, y byte) bool
	switch op {
	case CompareEQ:
		test = func(x, y byte) bool { return x == y }
	case CompareNE:
		test = func(x, y byte) bool { return x != y }
	case CompareGT:
		test = func(x, y byte) bool { return x > y }
	case CompareGE:
		test = func(x, y byte) bool { return x >= y }
	case CompareLT:
		test = func(x, y byte) bool { return x < y }
	case CompareLE:
		test = func(x, y byte) bool { return x <= y }
	default:
		return nil, cverr.New(cverr.InvalidInput, "cpu.Compare", "unknown CompareOp")
	}
	for i := range ad {
		if test(ad[i], bd[i]) {
			od[i] = 255
		}
	}
	return out, nil
}

// InRange produces a single-channel U8 mask: 255 where every channel of
// src's pixel falls within [lower, upper] inclusive, 0 otherwise.
func InRange(src *matrix.Matrix, lower, upper matrix.Scalar) (*matrix.Matrix, error) {
	out, err := matrix.New(src.Rows(), src.Cols(), 1, matrix.U8)
	if err != nil {
		return nil, err
	}
	for y := 0; y < src.Rows(); y++ {
		for x := 0; x < src.Cols(); x++ {
			s, err := src.GetScalar(y, x)
			if err != nil {
				return nil, err
			}
			inRange := true
			for c := 0; c < src.Channels(); c++ {
				if s[c] < lower[c] || s[c] > upper[c] {
					inRange = false
					break
				}
			}
			if inRange {
				_ = out.SetScalar(y, x, matrix.ScalarAll(255))
			}
		}
	}
	return out, nil
}

// ConvertScaleAbs computes dst = saturate_u8(|alpha*src + beta|), the
// common "view a float/S16 accumulator as a displayable U8 image" step
// used after Sobel/Laplacian/filter2D accumulation.
func ConvertScaleAbs(src *matrix.Matrix, alpha, beta float64) (*matrix.Matrix, error) {
	out, err := matrix.New(src.Rows(), src.Cols(), src.Channels(), matrix.U8)
	if err != nil {
		return nil, err
	}
	for y := 0; y < src.Rows(); y++ {
		for x := 0; x < src.Cols(); x++ {
			s, err := src.GetScalar(y, x)
			if err != nil {
				return nil, err
			}
			var r matrix.Scalar
			for c := 0; c < src.Channels(); c++ {
				v := alpha*s[c] + beta
				if v < 0 {
					v = -v
				}
				r[c] = v
			}
			if err := out.SetScalar(y, x, r); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// Normalize rescales src's single-channel values linearly so the minimum
// maps to newMin and the maximum maps to newMax, writing the result into a
// new F32 matrix. A constant-valued src maps entirely to newMin.
func Normalize(src *matrix.Matrix, newMin, newMax float64) (*matrix.Matrix, error) {
	if src.Channels() != 1 {
		return nil, cverr.New(cverr.UnsupportedChannels, "cpu.Normalize", "Normalize requires a single-channel matrix")
	}
	lo, hi := micro(src)
	out, err := matrix.New(src.Rows(), src.Cols(), 1, matrix.F32)
	if err != nil {
		return nil, err
	}
	scale := 0.0
	if hi > lo {
		scale = (newMax - newMin) / (hi - lo)
	}
	for y := 0; y < src.Rows(); y++ {
		for x := 0; x < src.Cols(); x++ {
			s, err := src.GetScalar(y, x)
			if err != nil {
				return nil, err
			}
			v := newMin
			if hi > lo {
				v = newMin + (s[0]-lo)*scale
			}
			if err := out.SetScalar(y, x, matrix.ScalarAll(v)); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func micro(src *matrix.Matrix) (lo, hi float64) {
	lo, hi = 0, 0
	first := true
	for y := 0; y < src.Rows(); y++ {
		for x := 0; x < src.Cols(); x++ {
			s, _ := src.GetScalar(y, x)
			if first {
				lo, hi = s[0], s[0]
				first = false
				continue
			}
			if s[0] < lo {
				lo = s[0]
			}
			if s[0] > hi {
				hi = s[0]
			}
		}
	}
	return lo, hi
}
