package matrix

// Point is an integer 2D coordinate.
type Point struct {
	X, Y int
}

// Point2f is a floating-point 2D coordinate.
type Point2f struct {
	X, Y float64
}

// Point3f is a floating-point 3D coordinate.
type Point3f struct {
	X, Y, Z float64
}

// Size describes the dimensions of a Matrix or region.
type Size struct {
	Width, Height int
}

// Rect is an axis-aligned integer rectangle, top-left origin.
type Rect struct {
	X, Y, Width, Height int
}

// Contains reports whether r is fully contained within the rows×cols bounds
// of a Matrix (or any other 0,0-origin extent of that size).
func (r Rect) Contains(rows, cols int) bool {
	if r.Width <= 0 || r.Height <= 0 || r.X < 0 || r.Y < 0 {
		return false
	}
	return r.X+r.Width <= cols && r.Y+r.Height <= rows
}

// Scalar is a 4-element channel fill value, broadcast to however many
// channels a Matrix actually has (extra elements are ignored, missing ones
// default to 0).
type Scalar [4]float64

// ScalarAll returns a Scalar with all four elements set to v, the idiomatic
// way to fill every channel of a Matrix with the same value.
func ScalarAll(v float64) Scalar {
	return Scalar{v, v, v, v}
}
