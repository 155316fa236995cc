package cpu

import (
	"github.com/gogpu/cvcore/cverr"
	"github.com/gogpu/cvcore/matrix"
)

// ThresholdType selects the pixel-value mapping Threshold applies once a
// pixel has been compared against its threshold value.
type ThresholdType int

const (
	ThreshBinary ThresholdType = iota
	ThreshBinaryInv
	ThreshTrunc
	ThreshToZero
	ThreshToZeroInv
)

// Threshold applies a fixed-level threshold to a single-channel U8 matrix.
func Threshold(src *matrix.Matrix, thresh, maxVal float64, ttype ThresholdType) (*matrix.Matrix, error) {
	if err := requireChannels("cpu.Threshold", src, 1); err != nil {
		return nil, err
	}
	if src.Depth() != matrix.U8 {
		return nil, cverr.New(cverr.UnsupportedDepth, "cpu.Threshold", "Threshold currently supports only U8 depth")
	}
	out, err := matrix.New(src.Rows(), src.Cols(), 1, matrix.U8)
	if err != nil {
		return nil, err
	}
	sd, od := src.Data(), out.Data()
	mv := byte(maxVal)
	for i, v := range sd {
		od[i] = applyThreshold(v, thresh, mv, ttype)
	}
	return out, nil
}

func applyThreshold(v byte, thresh float64, maxVal byte, ttype ThresholdType) byte {
	above := float64(v) > thresh
	switch ttype {
	case ThreshBinary:
		if above {
			return maxVal
		}
		return 0
	case ThreshBinaryInv:
		if above {
			return 0
		}
		return maxVal
	case ThreshTrunc:
		if above {
			return byte(thresh)
		}
		return v
	case ThreshToZero:
		if above {
			return v
		}
		return 0
	case ThreshToZeroInv:
		if above {
			return 0
		}
		return v
	default:
		return v
	}
}

// AdaptiveMethod selects how AdaptiveThreshold computes each pixel's local
// threshold value.
type AdaptiveMethod int

const (
	AdaptiveMean AdaptiveMethod = iota
	AdaptiveGaussian
)

// AdaptiveThreshold computes a per-pixel threshold from the mean (or
// Gaussian-weighted mean) of each pixel's blockSize x blockSize
// neighborhood minus c, then applies ThreshBinary/ThreshBinaryInv.
// Grounded on the same separable/weighted local-window pattern
// GaussianBlur and BoxBlur use; blockSize must be odd.
func AdaptiveThreshold(src *matrix.Matrix, maxVal float64, method AdaptiveMethod, ttype ThresholdType, blockSize int, c float64) (*matrix.Matrix, error) {
	if err := requireChannels("cpu.AdaptiveThreshold", src, 1); err != nil {
		return nil, err
	}
	if err := validateOddKernel("cpu.AdaptiveThreshold", blockSize); err != nil {
		return nil, err
	}

	var local *matrix.Matrix
	var err error
	if method == AdaptiveGaussian {
		local, err = GaussianBlur(src, blockSize, 0)
	} else {
		local, err = BoxBlur(src, blockSize)
	}
	if err != nil {
		return nil, err
	}

	out, err := matrix.New(src.Rows(), src.Cols(), 1, matrix.U8)
	if err != nil {
		return nil, err
	}
	sd, ld, od := src.Data(), local.Data(), out.Data()
	for i := range sd {
		localThresh := float64(ld[i]) - c
		od[i] = applyThreshold(sd[i], localThresh, byte(maxVal), ttype)
	}
	return out, nil
}
