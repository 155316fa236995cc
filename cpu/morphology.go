package cpu

import (
	"github.com/gogpu/cvcore/cverr"
	"github.com/gogpu/cvcore/matrix"
)

// StructuringElement is a flat (non-weighted) morphology mask: Offsets
// lists the (dy, dx) neighbor positions included in the erosion/dilation
// window, relative to the center pixel.
type StructuringElement struct {
	Offsets []matrix.Point
}

// RectKernel returns the Offsets for a ksize x ksize square structuring
// element, the default OpenCV morphology shape.
func RectKernel(ksize int) StructuringElement {
	half := ksize / 2
	var offs []matrix.Point
	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			offs = append(offs, matrix.Point{X: dx, Y: dy})
		}
	}
	return StructuringElement{Offsets: offs}
}

func morphology(src *matrix.Matrix, el StructuringElement, pickMin bool, op string) (*matrix.Matrix, error) {
	if src.Depth() != matrix.U8 {
		return nil, cverr.New(cverr.UnsupportedDepth, op, "morphology currently supports only U8 depth")
	}
	rows, cols, ch := src.Rows(), src.Cols(), src.Channels()
	out, err := matrix.New(rows, cols, ch, matrix.U8)
	if err != nil {
		return nil, err
	}

	parallelRows(rows, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < cols; x++ {
				for c := 0; c < ch; c++ {
					var best byte
					first := true
					for _, off := range el.Offsets {
						sy := reflect101(y+off.Y, rows)
						sx := reflect101(x+off.X, cols)
						elem, _ := src.At(sy, sx)
						v := elem[c]
						if first {
							best = v
							first = false
							continue
						}
						if pickMin && v < best {
							best = v
						} else if !pickMin && v > best {
							best = v
						}
					}
					elem, _ := out.At(y, x)
					elem[c] = best
				}
			}
		}
	})
	return out, nil
}

// Erode replaces every pixel with the minimum value over its structuring
// element neighborhood.
func Erode(src *matrix.Matrix, el StructuringElement) (*matrix.Matrix, error) {
	return morphology(src, el, true, "cpu.Erode")
}

// Dilate replaces every pixel with the maximum value over its structuring
// element neighborhood.
func Dilate(src *matrix.Matrix, el StructuringElement) (*matrix.Matrix, error) {
	return morphology(src, el, false, "cpu.Dilate")
}

// Open performs erosion followed by dilation, removing small bright
// speckles while preserving the overall shape of larger bright regions.
func Open(src *matrix.Matrix, el StructuringElement) (*matrix.Matrix, error) {
	eroded, err := Erode(src, el)
	if err != nil {
		return nil, err
	}
	return Dilate(eroded, el)
}

// Close performs dilation followed by erosion, filling small dark holes
// while preserving the overall shape of larger dark regions.
func Close(src *matrix.Matrix, el StructuringElement) (*matrix.Matrix, error) {
	dilated, err := Dilate(src, el)
	if err != nil {
		return nil, err
	}
	return Erode(dilated, el)
}

// Gradient returns Dilate(src) - Erode(src), highlighting object outlines.
func Gradient(src *matrix.Matrix, el StructuringElement) (*matrix.Matrix, error) {
	dilated, err := Dilate(src, el)
	if err != nil {
		return nil, err
	}
	eroded, err := Erode(src, el)
	if err != nil {
		return nil, err
	}
	return Subtract(dilated, eroded)
}

// TopHat returns src - Open(src), isolating bright features smaller than
// the structuring element.
func TopHat(src *matrix.Matrix, el StructuringElement) (*matrix.Matrix, error) {
	opened, err := Open(src, el)
	if err != nil {
		return nil, err
	}
	return Subtract(src, opened)
}

// BlackHat returns Close(src) - src, isolating dark features smaller than
// the structuring element.
func BlackHat(src *matrix.Matrix, el StructuringElement) (*matrix.Matrix, error) {
	closed, err := Close(src, el)
	if err != nil {
		return nil, err
	}
	return Subtract(closed, src)
}
