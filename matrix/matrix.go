// Package matrix implements the owned, typed, multi-channel raster buffer
// every cvcore operation reads and writes.
//
// Grounded on the teacher's internal/image.ImageBuf, generalized from a
// fixed RGBA8 pixel-format assumption to five element depths (U8, U16, S16,
// F32, F64) crossed with 1/3/4 channels. The one deliberate behavioral
// break from ImageBuf.SubImage: Region returns an owned copy rather than a
// slice of the source's backing array, so a Matrix handed to the GPU path
// is never aliased by a CPU-side mutation on another goroutine.
package matrix

import (
	"fmt"
	"math"

	"github.com/gogpu/cvcore/cverr"
)

// Matrix is an owned, contiguous, row-major raster buffer of shape
// rows×cols with the given channel count and element depth. Storage is
// exactly rows*cols*channels*depth.BytesPerElement() bytes; there is no
// per-row padding, so Step() always equals cols*channels*bytesPerElement.
type Matrix struct {
	rows, cols int
	channels   int
	depth      Depth
	data       []byte
}

// New allocates a zero-initialized Matrix. It fails with cverr.InvalidInput
// if rows, cols, or channels is non-positive, channels is not one of
// {1,3,4}, or depth is not one of the five supported depths.
func New(rows, cols, channels int, depth Depth) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, cverr.New(cverr.InvalidInput, "matrix.New", fmt.Sprintf("dimensions must be positive, got %dx%d", rows, cols))
	}
	if !ValidChannels(channels) {
		return nil, cverr.New(cverr.InvalidInput, "matrix.New", fmt.Sprintf("channels must be 1, 3, or 4, got %d", channels))
	}
	if !depth.Valid() {
		return nil, cverr.New(cverr.UnsupportedDepth, "matrix.New", fmt.Sprintf("unsupported depth %v", depth))
	}

	size := rows * cols * channels * depth.BytesPerElement()
	return &Matrix{
		rows:     rows,
		cols:     cols,
		channels: channels,
		depth:    depth,
		data:     make([]byte, size),
	}, nil
}

// NewWithFill allocates a Matrix and fills every pixel with scalar,
// broadcast across the available channels.
func NewWithFill(rows, cols, channels int, depth Depth, scalar Scalar) (*Matrix, error) {
	m, err := New(rows, cols, channels, depth)
	if err != nil {
		return nil, err
	}
	m.Fill(scalar)
	return m, nil
}

// Zeros is an alias for New: a freshly allocated Matrix is always
// zero-initialized.
func Zeros(rows, cols, channels int, depth Depth) (*Matrix, error) {
	return New(rows, cols, channels, depth)
}

// Ones allocates a Matrix with every element set to 1.
func Ones(rows, cols, channels int, depth Depth) (*Matrix, error) {
	return NewWithFill(rows, cols, channels, depth, ScalarAll(1))
}

// Eye allocates a single-channel square identity matrix: ones on the main
// diagonal, zeros elsewhere. depth must be a floating-point depth (F32 or
// F64); integer depths return cverr.UnsupportedDepth since an identity
// pattern has no useful saturation semantics.
func Eye(n int, depth Depth) (*Matrix, error) {
	if !depth.IsFloat() {
		return nil, cverr.New(cverr.UnsupportedDepth, "matrix.Eye", "Eye requires a floating-point depth")
	}
	m, err := New(n, n, 1, depth)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		if err := m.SetScalar(i, i, ScalarAll(1)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// FromSlice copies bytes into a new Matrix of the given shape. It fails
// with cverr.InvalidInput if len(bytes) does not exactly match
// rows*cols*channels*depth.BytesPerElement().
func FromSlice(bytes []byte, rows, cols, channels int, depth Depth) (*Matrix, error) {
	m, err := New(rows, cols, channels, depth)
	if err != nil {
		return nil, err
	}
	if len(bytes) != len(m.data) {
		return nil, cverr.New(cverr.InvalidInput, "matrix.FromSlice",
			fmt.Sprintf("expected %d bytes, got %d", len(m.data), len(bytes)))
	}
	copy(m.data, bytes)
	return m, nil
}

// FromBytes is an alias for FromSlice, matching the spec's constructor name.
func FromBytes(bytes []byte, rows, cols, channels int, depth Depth) (*Matrix, error) {
	return FromSlice(bytes, rows, cols, channels, depth)
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// Channels returns the channel count (1, 3, or 4).
func (m *Matrix) Channels() int { return m.channels }

// Depth returns the element depth.
func (m *Matrix) Depth() Depth { return m.depth }

// Size returns the matrix's dimensions as a Size.
func (m *Matrix) Size() Size { return Size{Width: m.cols, Height: m.rows} }

// Total returns the number of pixels (rows*cols).
func (m *Matrix) Total() int { return m.rows * m.cols }

// ElementSize returns the byte size of a single pixel (channels * bytes-per-element).
func (m *Matrix) ElementSize() int { return m.channels * m.depth.BytesPerElement() }

// StepBytes returns the byte stride of one row. Since Matrix never pads
// rows, this always equals Cols() * ElementSize().
func (m *Matrix) StepBytes() int { return m.cols * m.ElementSize() }

// IsEmpty reports whether the matrix has zero rows, cols, or channels.
func (m *Matrix) IsEmpty() bool {
	return m == nil || m.rows == 0 || m.cols == 0 || m.channels == 0
}

// IsContiguous always returns true: Matrix never has per-row padding.
func (m *Matrix) IsContiguous() bool { return true }

// Data returns the matrix's raw backing buffer. Callers must not retain a
// reference past the Matrix's lifetime if they intend to mutate it
// concurrently with the owner; prefer At/SetScalar for bounds-checked access.
func (m *Matrix) Data() []byte { return m.data }

// pixelOffset returns the byte offset of pixel (row, col), or -1 if out of
// bounds.
func (m *Matrix) pixelOffset(row, col int) int {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return -1
	}
	return (row*m.cols + col) * m.ElementSize()
}

// At returns the raw element bytes for pixel (row, col), a slice of length
// ElementSize() pointing directly into the matrix's backing array (no
// copy). It fails with cverr.InvalidInput if the coordinates are out of
// bounds.
func (m *Matrix) At(row, col int) ([]byte, error) {
	off := m.pixelOffset(row, col)
	if off < 0 {
		return nil, cverr.New(cverr.InvalidInput, "matrix.At", fmt.Sprintf("(%d,%d) out of bounds for %dx%d matrix", row, col, m.rows, m.cols))
	}
	return m.data[off : off+m.ElementSize()], nil
}

// AtMut is an alias for At: Go slices are already mutable views, so there
// is no separate read-only accessor to distinguish it from.
func (m *Matrix) AtMut(row, col int) ([]byte, error) {
	return m.At(row, col)
}

// Region returns a new Matrix holding an owned copy of the rectangle r.
// Unlike the teacher's ImageBuf.SubImage, this never shares the source's
// backing array: the spec requires region views to be alias-free so a
// Matrix handed off to the GPU path can never be invalidated by a
// concurrent CPU-side write to the same memory.
func (m *Matrix) Region(r Rect) (*Matrix, error) {
	if !r.Contains(m.rows, m.cols) {
		return nil, cverr.New(cverr.InvalidInput, "matrix.Region",
			fmt.Sprintf("rect %+v not contained in %dx%d matrix", r, m.rows, m.cols))
	}

	out, err := New(r.Height, r.Width, m.channels, m.depth)
	if err != nil {
		return nil, err
	}

	rowBytes := r.Width * m.ElementSize()
	srcStep := m.StepBytes()
	dstStep := out.StepBytes()
	srcStart := r.Y*srcStep + r.X*m.ElementSize()

	for y := 0; y < r.Height; y++ {
		srcOff := srcStart + y*srcStep
		dstOff := y * dstStep
		copy(out.data[dstOff:dstOff+rowBytes], m.data[srcOff:srcOff+rowBytes])
	}
	return out, nil
}

// Clone returns a deep copy of m.
func (m *Matrix) Clone() *Matrix {
	out := &Matrix{rows: m.rows, cols: m.cols, channels: m.channels, depth: m.depth, data: make([]byte, len(m.data))}
	copy(out.data, m.data)
	return out
}

// Fill sets every pixel to scalar, broadcast across the matrix's channels.
// Floating depths store scalar values directly; integer depths round and
// saturate into the depth's representable range.
func (m *Matrix) Fill(scalar Scalar) {
	for y := 0; y < m.rows; y++ {
		for x := 0; x < m.cols; x++ {
			_ = m.SetScalar(y, x, scalar)
		}
	}
}

// SetScalar writes scalar's first Channels() components into pixel (row, col).
func (m *Matrix) SetScalar(row, col int, scalar Scalar) error {
	elem, err := m.At(row, col)
	if err != nil {
		return err
	}
	bpe := m.depth.BytesPerElement()
	for c := 0; c < m.channels; c++ {
		writeElement(elem[c*bpe:(c+1)*bpe], m.depth, scalar[c])
	}
	return nil
}

// GetScalar reads pixel (row, col) into a Scalar, zero-filling any channel
// beyond Channels().
func (m *Matrix) GetScalar(row, col int) (Scalar, error) {
	elem, err := m.At(row, col)
	if err != nil {
		return Scalar{}, err
	}
	var s Scalar
	bpe := m.depth.BytesPerElement()
	for c := 0; c < m.channels; c++ {
		s[c] = readElement(elem[c*bpe:(c+1)*bpe], m.depth)
	}
	return s, nil
}

func writeElement(dst []byte, depth Depth, v float64) {
	switch depth {
	case U8:
		dst[0] = satRoundU8(v)
	case U16:
		putU16(dst, satRoundU16(v))
	case S16:
		putU16(dst, uint16(satRoundS16(v)))
	case F32:
		putF32(dst, float32(v))
	case F64:
		putF64(dst, v)
	}
}

func readElement(src []byte, depth Depth) float64 {
	switch depth {
	case U8:
		return float64(src[0])
	case U16:
		return float64(getU16(src))
	case S16:
		return float64(int16(getU16(src)))
	case F32:
		return float64(getF32(src))
	case F64:
		return getF64(src)
	}
	return 0
}

func satRoundU8(v float64) byte {
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return byte(r)
}

func satRoundU16(v float64) uint16 {
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	if r > 65535 {
		return 65535
	}
	return uint16(r)
}

func satRoundS16(v float64) int16 {
	r := math.Round(v)
	if r < -32768 {
		return -32768
	}
	if r > 32767 {
		return 32767
	}
	return int16(r)
}

func putU16(dst []byte, v uint16) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
}

func getU16(src []byte) uint16 {
	return uint16(src[0]) | uint16(src[1])<<8
}

func putF32(dst []byte, v float32) {
	bits := math.Float32bits(v)
	dst[0] = byte(bits)
	dst[1] = byte(bits >> 8)
	dst[2] = byte(bits >> 16)
	dst[3] = byte(bits >> 24)
}

func getF32(src []byte) float32 {
	bits := uint32(src[0]) | uint32(src[1])<<8 | uint32(src[2])<<16 | uint32(src[3])<<24
	return math.Float32frombits(bits)
}

func putF64(dst []byte, v float64) {
	bits := math.Float64bits(v)
	for i := 0; i < 8; i++ {
		dst[i] = byte(bits >> (8 * i))
	}
}

func getF64(src []byte) float64 {
	var bits uint64
	for i := 0; i < 8; i++ {
		bits |= uint64(src[i]) << (8 * i)
	}
	return math.Float64frombits(bits)
}
