package cpu

import (
	"math"

	"github.com/gogpu/cvcore/cverr"
	"github.com/gogpu/cvcore/matrix"
)

// InterpolationMode selects how Resize samples between source pixels.
// Grounded on internal/image.InterpolationMode (InterpNearest/
// InterpBilinear), trimmed to the two modes spec.md names; bicubic has no
// counterpart in the spec's scope.
type InterpolationMode int

const (
	InterpNearest InterpolationMode = iota
	InterpBilinear
)

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Resize scales src to the given output size using mode. Grounded on
// internal/image.SampleNearest/SampleBilinear, adapted from normalized
// [0,1] UV sampling of a fixed RGBA8 ImageBuf to direct pixel-space
// sampling of an arbitrary-channel U8 Matrix.
func Resize(src *matrix.Matrix, size matrix.Size, mode InterpolationMode) (*matrix.Matrix, error) {
	if src.Depth() != matrix.U8 {
		return nil, cverr.New(cverr.UnsupportedDepth, "cpu.Resize", "Resize currently supports only U8 depth")
	}
	if size.Width <= 0 || size.Height <= 0 {
		return nil, cverr.New(cverr.InvalidInput, "cpu.Resize", "output size must be positive")
	}

	srcRows, srcCols, ch := src.Rows(), src.Cols(), src.Channels()
	out, err := matrix.New(size.Height, size.Width, ch, matrix.U8)
	if err != nil {
		return nil, err
	}

	scaleX := float64(srcCols) / float64(size.Width)
	scaleY := float64(srcRows) / float64(size.Height)

	parallelRows(size.Height, func(y0, y1 int) {
		for dy := y0; dy < y1; dy++ {
			srcY := (float64(dy) + 0.5) * scaleY
			for dx := 0; dx < size.Width; dx++ {
				srcX := (float64(dx) + 0.5) * scaleX
				var s matrix.Scalar
				if mode == InterpNearest {
					sy := clampi(int(srcY), 0, srcRows-1)
					sx := clampi(int(srcX), 0, srcCols-1)
					s, _ = src.GetScalar(sy, sx)
				} else {
					s = sampleBilinear(src, srcX-0.5, srcY-0.5, srcRows, srcCols)
				}
				for c := ch; c < 4; c++ {
					s[c] = 0
				}
				_ = out.SetScalar(dy, dx, s)
			}
		}
	})
	return out, nil
}

func sampleBilinear(src *matrix.Matrix, x, y float64, rows, cols int) matrix.Scalar {
	x0 := clampi(int(x), 0, cols-1)
	y0 := clampi(int(y), 0, rows-1)
	x1 := clampi(x0+1, 0, cols-1)
	y1 := clampi(y0+1, 0, rows-1)

	fx := x - float64(x0)
	fy := y - float64(y0)
	if fx < 0 {
		fx = 0
	}
	if fy < 0 {
		fy = 0
	}

	p00, _ := src.GetScalar(y0, x0)
	p10, _ := src.GetScalar(y0, x1)
	p01, _ := src.GetScalar(y1, x0)
	p11, _ := src.GetScalar(y1, x1)

	var out matrix.Scalar
	for c := 0; c < 4; c++ {
		top := p00[c]*(1-fx) + p10[c]*fx
		bot := p01[c]*(1-fx) + p11[c]*fx
		out[c] = top*(1-fy) + bot*fy
	}
	return out
}

// sampleBilinearZero samples src at (x,y) via bilinear interpolation,
// treating any neighbor that falls outside [0,cols)x[0,rows) as zero
// rather than clamping to the nearest border pixel the way
// sampleBilinear (Resize's sampler) does. This is the warp/remap
// out-of-range policy: a constant-zero border, distinct from the
// reflect101 convention the separable filters use.
func sampleBilinearZero(src *matrix.Matrix, x, y float64, rows, cols int) matrix.Scalar {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1, y1 := x0+1, y0+1
	fx, fy := x-float64(x0), y-float64(y0)

	at := func(yy, xx int) matrix.Scalar {
		if xx < 0 || xx >= cols || yy < 0 || yy >= rows {
			return matrix.Scalar{}
		}
		s, _ := src.GetScalar(yy, xx)
		return s
	}
	p00, p10, p01, p11 := at(y0, x0), at(y0, x1), at(y1, x0), at(y1, x1)

	var out matrix.Scalar
	for c := 0; c < 4; c++ {
		top := p00[c]*(1-fx) + p10[c]*fx
		bot := p01[c]*(1-fx) + p11[c]*fx
		out[c] = top*(1-fy) + bot*fy
	}
	return out
}

// AffineMatrix is a 2x3 row-major affine transform ([a b c; d e f]) mapping
// a destination coordinate (x,y) back to its source coordinate
// (a*x+b*y+c, d*x+e*y+f), the inverse-map convention WarpAffine and
// remap's per-pixel source lookup share.
type AffineMatrix [6]float64

// WarpAffine resamples src into an output of the given size: each
// destination pixel is mapped through m to a source coordinate and
// bilinearly sampled, with out-of-range samples written as zero.
func WarpAffine(src *matrix.Matrix, m AffineMatrix, size matrix.Size) (*matrix.Matrix, error) {
	if src.Depth() != matrix.U8 {
		return nil, cverr.New(cverr.UnsupportedDepth, "cpu.WarpAffine", "WarpAffine currently supports only U8 depth")
	}
	if size.Width <= 0 || size.Height <= 0 {
		return nil, cverr.New(cverr.InvalidInput, "cpu.WarpAffine", "output size must be positive")
	}
	rows, cols, ch := src.Rows(), src.Cols(), src.Channels()
	out, err := matrix.New(size.Height, size.Width, ch, matrix.U8)
	if err != nil {
		return nil, err
	}
	parallelRows(size.Height, func(y0, y1 int) {
		for dy := y0; dy < y1; dy++ {
			fy := float64(dy)
			for dx := 0; dx < size.Width; dx++ {
				fx := float64(dx)
				sx := m[0]*fx + m[1]*fy + m[2]
				sy := m[3]*fx + m[4]*fy + m[5]
				s := sampleBilinearZero(src, sx, sy, rows, cols)
				for c := ch; c < 4; c++ {
					s[c] = 0
				}
				_ = out.SetScalar(dy, dx, s)
			}
		}
	})
	return out, nil
}

// PerspectiveMatrix is a row-major 3x3 homogeneous transform mapping a
// destination coordinate back to its source coordinate via
// sx = (m0*x+m1*y+m2)/w, sy = (m3*x+m4*y+m5)/w, w = m6*x+m7*y+m8.
type PerspectiveMatrix [9]float64

// WarpPerspective resamples src through a homogeneous perspective
// transform the same way WarpAffine does through an affine one:
// per-destination-pixel source-coordinate computation, bilinear sampling,
// constant zero for out-of-range source coordinates.
func WarpPerspective(src *matrix.Matrix, m PerspectiveMatrix, size matrix.Size) (*matrix.Matrix, error) {
	if src.Depth() != matrix.U8 {
		return nil, cverr.New(cverr.UnsupportedDepth, "cpu.WarpPerspective", "WarpPerspective currently supports only U8 depth")
	}
	if size.Width <= 0 || size.Height <= 0 {
		return nil, cverr.New(cverr.InvalidInput, "cpu.WarpPerspective", "output size must be positive")
	}
	rows, cols, ch := src.Rows(), src.Cols(), src.Channels()
	out, err := matrix.New(size.Height, size.Width, ch, matrix.U8)
	if err != nil {
		return nil, err
	}
	parallelRows(size.Height, func(y0, y1 int) {
		for dy := y0; dy < y1; dy++ {
			fy := float64(dy)
			for dx := 0; dx < size.Width; dx++ {
				fx := float64(dx)
				w := m[6]*fx + m[7]*fy + m[8]
				var sx, sy float64
				if w != 0 {
					sx = (m[0]*fx + m[1]*fy + m[2]) / w
					sy = (m[3]*fx + m[4]*fy + m[5]) / w
				}
				s := sampleBilinearZero(src, sx, sy, rows, cols)
				for c := ch; c < 4; c++ {
					s[c] = 0
				}
				_ = out.SetScalar(dy, dx, s)
			}
		}
	})
	return out, nil
}

// Remap resamples src according to per-destination-pixel source
// coordinates given by mapX/mapY (single-channel matrices, any numeric
// depth, sharing the desired output's shape): for each destination pixel
// (dx,dy), the source coordinate is (mapX[dy,dx], mapY[dy,dx]), bilinearly
// sampled with the same constant-zero out-of-range policy as WarpAffine.
func Remap(src, mapX, mapY *matrix.Matrix) (*matrix.Matrix, error) {
	if src.Depth() != matrix.U8 {
		return nil, cverr.New(cverr.UnsupportedDepth, "cpu.Remap", "Remap currently supports only U8 depth")
	}
	if err := requireChannels("cpu.Remap(mapX)", mapX, 1); err != nil {
		return nil, err
	}
	if err := requireChannels("cpu.Remap(mapY)", mapY, 1); err != nil {
		return nil, err
	}
	if mapX.Rows() != mapY.Rows() || mapX.Cols() != mapY.Cols() {
		return nil, cverr.New(cverr.InvalidInput, "cpu.Remap", "mapX and mapY must have matching shape")
	}
	rows, cols, ch := src.Rows(), src.Cols(), src.Channels()
	outRows, outCols := mapX.Rows(), mapX.Cols()
	out, err := matrix.New(outRows, outCols, ch, matrix.U8)
	if err != nil {
		return nil, err
	}
	parallelRows(outRows, func(y0, y1 int) {
		for dy := y0; dy < y1; dy++ {
			for dx := 0; dx < outCols; dx++ {
				xs, err := mapX.GetScalar(dy, dx)
				if err != nil {
					continue
				}
				ys, err := mapY.GetScalar(dy, dx)
				if err != nil {
					continue
				}
				s := sampleBilinearZero(src, xs[0], ys[0], rows, cols)
				for c := ch; c < 4; c++ {
					s[c] = 0
				}
				_ = out.SetScalar(dy, dx, s)
			}
		}
	})
	return out, nil
}

// FlipMode selects the axis Flip mirrors across.
type FlipMode int

const (
	FlipVertical FlipMode = iota
	FlipHorizontal
	FlipBoth
)

// Flip mirrors src across the given axis.
func Flip(src *matrix.Matrix, mode FlipMode) (*matrix.Matrix, error) {
	rows, cols, ch := src.Rows(), src.Cols(), src.Channels()
	out, err := matrix.New(rows, cols, ch, src.Depth())
	if err != nil {
		return nil, err
	}
	elemSize := out.ElementSize()
	step := out.StepBytes()
	sd, od := src.Data(), out.Data()

	for y := 0; y < rows; y++ {
		srcY := y
		if mode == FlipVertical || mode == FlipBoth {
			srcY = rows - 1 - y
		}
		for x := 0; x < cols; x++ {
			srcX := x
			if mode == FlipHorizontal || mode == FlipBoth {
				srcX = cols - 1 - x
			}
			copy(od[y*step+x*elemSize:y*step+(x+1)*elemSize], sd[srcY*step+srcX*elemSize:srcY*step+(srcX+1)*elemSize])
		}
	}
	return out, nil
}

// Rotate90 rotates src by 90 degrees clockwise, times times (mod 4).
func Rotate90(src *matrix.Matrix, times int) (*matrix.Matrix, error) {
	times = ((times % 4) + 4) % 4
	cur := src
	for i := 0; i < times; i++ {
		rotated, err := rotateOnce(cur)
		if err != nil {
			return nil, err
		}
		cur = rotated
	}
	if times == 0 {
		return src.Clone(), nil
	}
	return cur, nil
}

func rotateOnce(src *matrix.Matrix) (*matrix.Matrix, error) {
	rows, cols, ch := src.Rows(), src.Cols(), src.Channels()
	out, err := matrix.New(cols, rows, ch, src.Depth())
	if err != nil {
		return nil, err
	}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			s, err := src.At(y, x)
			if err != nil {
				return nil, err
			}
			d, err := out.At(x, rows-1-y)
			if err != nil {
				return nil, err
			}
			copy(d, s)
		}
	}
	return out, nil
}
