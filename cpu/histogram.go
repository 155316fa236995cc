package cpu

import (
	"math"

	"github.com/gogpu/cvcore/cverr"
	"github.com/gogpu/cvcore/internal/satmath"
	"github.com/gogpu/cvcore/matrix"
)

// CalcHist computes the 256-bin histogram of a single-channel U8 matrix.
func CalcHist(src *matrix.Matrix) ([256]uint32, error) {
	var hist [256]uint32
	if err := requireChannels("cpu.CalcHist", src, 1); err != nil {
		return hist, err
	}
	if src.Depth() != matrix.U8 {
		return hist, cverr.New(cverr.UnsupportedDepth, "cpu.CalcHist", "CalcHist currently supports only U8 depth")
	}
	for _, v := range src.Data() {
		hist[v]++
	}
	return hist, nil
}

// EqualizeHist redistributes a single-channel U8 matrix's intensities to
// flatten its histogram, via the standard cumulative-distribution lookup
// table: the same per-pixel LUT-indirection shape as the teacher's
// internal/color.LUT machinery, applied to a histogram-derived table
// instead of a gamma/sRGB table.
func EqualizeHist(src *matrix.Matrix) (*matrix.Matrix, error) {
	hist, err := CalcHist(src)
	if err != nil {
		return nil, err
	}

	total := src.Total()
	var cdf [256]uint32
	var running uint32
	var cdfMin uint32
	cdfMinSet := false
	for i, count := range hist {
		running += count
		cdf[i] = running
		if !cdfMinSet && count > 0 {
			cdfMin = running
			cdfMinSet = true
		}
	}

	var lut [256]byte
	denom := float64(total) - float64(cdfMin)
	for i := range lut {
		if denom <= 0 {
			lut[i] = byte(i)
			continue
		}
		v := (float64(cdf[i]) - float64(cdfMin)) / denom * 255
		lut[i] = satmath.RoundClampU8(v)
	}

	out, err := matrix.New(src.Rows(), src.Cols(), 1, matrix.U8)
	if err != nil {
		return nil, err
	}
	sd, od := src.Data(), out.Data()
	for i, v := range sd {
		od[i] = lut[v]
	}
	return out, nil
}

// BackProjection computes, for every pixel of a single-channel U8 src, the
// value of model's histogram bin that pixel falls into, scaled to U8
// range, the way OpenCV's calcBackProject produces a "probability map"
// from a reference histogram. Grounded on EqualizeHist's CalcHist-derived
// LUT-indirection shape, built from a normalized-to-peak table instead of
// a cumulative one.
func BackProjection(src *matrix.Matrix, model [256]uint32) (*matrix.Matrix, error) {
	if err := requireChannels("cpu.BackProjection", src, 1); err != nil {
		return nil, err
	}
	if src.Depth() != matrix.U8 {
		return nil, cverr.New(cverr.UnsupportedDepth, "cpu.BackProjection", "BackProjection currently supports only U8 depth")
	}

	var maxCount uint32
	for _, count := range model {
		if count > maxCount {
			maxCount = count
		}
	}
	var lut [256]byte
	if maxCount > 0 {
		for i, count := range model {
			lut[i] = satmath.RoundClampU8(float64(count) / float64(maxCount) * 255)
		}
	}

	out, err := matrix.New(src.Rows(), src.Cols(), 1, matrix.U8)
	if err != nil {
		return nil, err
	}
	sd, od := src.Data(), out.Data()
	for i, v := range sd {
		od[i] = lut[v]
	}
	return out, nil
}

// HistCompareMethod selects the distance/similarity measure CompareHist uses.
type HistCompareMethod int

const (
	HistCompareCorrelation HistCompareMethod = iota
	HistCompareChiSquare
	HistCompareIntersection
)

// CompareHist compares two 256-bin histograms by method.
func CompareHist(a, b [256]uint32, method HistCompareMethod) float64 {
	switch method {
	case HistCompareChiSquare:
		var sum float64
		for i := range a {
			denom := float64(a[i]) + float64(b[i])
			if denom == 0 {
				continue
			}
			diff := float64(a[i]) - float64(b[i])
			sum += (diff * diff) / denom
		}
		return sum
	case HistCompareIntersection:
		var sum float64
		for i := range a {
			if a[i] < b[i] {
				sum += float64(a[i])
			} else {
				sum += float64(b[i])
			}
		}
		return sum
	default: // HistCompareCorrelation
		var meanA, meanB float64
		for i := range a {
			meanA += float64(a[i])
			meanB += float64(b[i])
		}
		meanA /= 256
		meanB /= 256

		var num, denA, denB float64
		for i := range a {
			da := float64(a[i]) - meanA
			db := float64(b[i]) - meanB
			num += da * db
			denA += da * da
			denB += db * db
		}
		if denA == 0 || denB == 0 {
			return 0
		}
		return num / (math.Sqrt(denA) * math.Sqrt(denB))
	}
}
