package cpu

import (
	"container/heap"
	"math"

	"github.com/gogpu/cvcore/cverr"
	"github.com/gogpu/cvcore/matrix"
)

// Canny performs Canny edge detection on a single-channel U8 matrix: a
// Gaussian smoothing pass, gradient magnitude/direction via Sobel, then
// double-threshold hysteresis. Grounded on this package's own GaussianBlur
// and Sobel, which supply the two most expensive stages rather than
// reimplementing them; hysteresis tracing is new (no teacher analog —
// the teacher never performed edge detection on raster data).
func Canny(src *matrix.Matrix, lowThresh, highThresh float64) (*matrix.Matrix, error) {
	if err := requireChannels("cpu.Canny", src, 1); err != nil {
		return nil, err
	}

	blurred, err := GaussianBlur(src, 5, 1.4)
	if err != nil {
		return nil, err
	}
	gx, gy, err := Sobel(blurred)
	if err != nil {
		return nil, err
	}

	rows, cols := src.Rows(), src.Cols()
	mag := make([]float64, rows*cols)
	dir := make([]float64, rows*cols)
	var maxMag float64
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			vx, _ := gx.GetScalar(y, x)
			vy, _ := gy.GetScalar(y, x)
			m := math.Hypot(vx[0], vy[0])
			mag[y*cols+x] = m
			dir[y*cols+x] = math.Atan2(vy[0], vx[0])
			if m > maxMag {
				maxMag = m
			}
		}
	}

	suppressed := make([]float64, rows*cols)
	for y := 1; y < rows-1; y++ {
		for x := 1; x < cols-1; x++ {
			angle := dir[y*cols+x] * 180 / math.Pi
			if angle < 0 {
				angle += 180
			}

			var n1, n2 float64
			switch {
			case angle < 22.5 || angle >= 157.5:
				n1, n2 = mag[y*cols+x-1], mag[y*cols+x+1]
			case angle < 67.5:
				n1, n2 = mag[(y-1)*cols+x+1], mag[(y+1)*cols+x-1]
			case angle < 112.5:
				n1, n2 = mag[(y-1)*cols+x], mag[(y+1)*cols+x]
			default:
				n1, n2 = mag[(y-1)*cols+x-1], mag[(y+1)*cols+x+1]
			}

			m := mag[y*cols+x]
			if m >= n1 && m >= n2 {
				suppressed[y*cols+x] = m
			}
		}
	}

	const strong, weak = 255, 75
	classified := make([]byte, rows*cols)
	for i, m := range suppressed {
		switch {
		case m >= highThresh:
			classified[i] = strong
		case m >= lowThresh:
			classified[i] = weak
		}
	}

	out, err := matrix.New(rows, cols, 1, matrix.U8)
	if err != nil {
		return nil, err
	}
	od := out.Data()
	for y := 1; y < rows-1; y++ {
		for x := 1; x < cols-1; x++ {
			i := y*cols + x
			if classified[i] != strong {
				continue
			}
			od[i] = strong
			hysteresisConnect(classified, od, cols, rows, x, y)
		}
	}
	return out, nil
}

// hysteresisConnect promotes weak edges 8-connected to an already-strong
// edge pixel, iteratively, so a chain of weak pixels adjoining the seed
// strong pixel all get kept.
func hysteresisConnect(classified []byte, out []byte, cols, rows, x0, y0 int) {
	stack := []matrix.Point{{X: x0, Y: y0}}
	const weak = 75
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := p.X+dx, p.Y+dy
				if nx < 0 || nx >= cols || ny < 0 || ny >= rows {
					continue
				}
				idx := ny*cols + nx
				if classified[idx] == weak && out[idx] != 255 {
					out[idx] = 255
					stack = append(stack, matrix.Point{X: nx, Y: ny})
				}
			}
		}
	}
}

// DistanceType selects the metric DistanceTransform approximates.
type DistanceType int

const (
	// DistanceL1 uses the cityblock (4-connected step cost 1) metric.
	DistanceL1 DistanceType = iota
	// DistanceL2 approximates Euclidean distance via a chamfer 1/sqrt(2)
	// edge-cost pair.
	DistanceL2
)

func minF32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// DistanceTransform computes, for every pixel of a single-channel U8 mask
// (zero pixels are the source set, nonzero pixels are foreground), the
// distance to the nearest zero pixel, via the classic two-pass chamfer
// algorithm: a forward raster pass propagates distances down/right from
// already-visited neighbors, a backward pass propagates up/left, each
// pixel taking the minimum of its current estimate and each neighbor's
// estimate plus that neighbor's edge weight. No teacher analog (the
// teacher never computed distance fields over raster data); grounded in
// the standard two-pass chamfer formulation.
func DistanceTransform(src *matrix.Matrix, dtype DistanceType) (*matrix.Matrix, error) {
	if err := requireChannels("cpu.DistanceTransform", src, 1); err != nil {
		return nil, err
	}
	if src.Depth() != matrix.U8 {
		return nil, cverr.New(cverr.UnsupportedDepth, "cpu.DistanceTransform", "DistanceTransform currently supports only U8 depth")
	}

	rows, cols := src.Rows(), src.Cols()
	sd := src.Data()
	const inf = float32(math.MaxFloat32)
	dist := make([]float32, rows*cols)
	for i, v := range sd {
		if v == 0 {
			dist[i] = 0
		} else {
			dist[i] = inf
		}
	}

	var straight, diagonal float32
	if dtype == DistanceL1 {
		straight, diagonal = 1, 2
	} else {
		straight, diagonal = 1, 1.4142135
	}

	at := func(y, x int) float32 { return dist[y*cols+x] }
	relax := func(y, x int, d float32) {
		idx := y*cols + x
		if d < dist[idx] {
			dist[idx] = d
		}
	}

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			d := at(y, x)
			if x > 0 {
				d = minF32(d, at(y, x-1)+straight)
			}
			if y > 0 {
				d = minF32(d, at(y-1, x)+straight)
				if x > 0 {
					d = minF32(d, at(y-1, x-1)+diagonal)
				}
				if x < cols-1 {
					d = minF32(d, at(y-1, x+1)+diagonal)
				}
			}
			relax(y, x, d)
		}
	}
	for y := rows - 1; y >= 0; y-- {
		for x := cols - 1; x >= 0; x-- {
			d := at(y, x)
			if x < cols-1 {
				d = minF32(d, at(y, x+1)+straight)
			}
			if y < rows-1 {
				d = minF32(d, at(y+1, x)+straight)
				if x < cols-1 {
					d = minF32(d, at(y+1, x+1)+diagonal)
				}
				if x > 0 {
					d = minF32(d, at(y+1, x-1)+diagonal)
				}
			}
			relax(y, x, d)
		}
	}

	out, err := matrix.New(rows, cols, 1, matrix.F32)
	if err != nil {
		return nil, err
	}
	od := out.Data()
	for i, v := range dist {
		putF32At(od, i, v)
	}
	return out, nil
}

// watershedItem is one pending pixel in Watershed's priority-flood queue,
// ordered by ascending grayscale intensity.
type watershedItem struct {
	priority byte
	y, x     int
}

type watershedQueue []watershedItem

func (q watershedQueue) Len() int           { return len(q) }
func (q watershedQueue) Less(i, j int) bool { return q[i].priority < q[j].priority }
func (q watershedQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *watershedQueue) Push(x interface{}) { *q = append(*q, x.(watershedItem)) }
func (q *watershedQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

const watershedLine = -1

// Watershed performs marker-based watershed segmentation of src (1 or 3
// channel U8): markers is a same-size single-channel S16 matrix where each
// seed region carries a distinct positive label and every other pixel is
// 0. Flooding proceeds as a priority-flood from the seed pixels outward in
// order of ascending grayscale intensity (grounded on the standard
// Vincent-Soille immersion algorithm, simplified to an explicit
// container/heap priority queue rather than the original's bucket-sorted
// FIFO queues); markers is mutated in place, with ridge pixels reached by
// two different labels set to watershedLine, OpenCV's watershed-line
// convention.
func Watershed(src, markers *matrix.Matrix) error {
	if src.Channels() != 1 && src.Channels() != 3 {
		return cverr.New(cverr.UnsupportedChannels, "cpu.Watershed", "Watershed accepts a 1 or 3 channel source")
	}
	if src.Depth() != matrix.U8 {
		return cverr.New(cverr.UnsupportedDepth, "cpu.Watershed", "Watershed currently supports only U8 depth")
	}
	if markers.Depth() != matrix.S16 {
		return cverr.New(cverr.UnsupportedDepth, "cpu.Watershed", "markers must be S16")
	}
	if markers.Rows() != src.Rows() || markers.Cols() != src.Cols() {
		return cverr.New(cverr.InvalidInput, "cpu.Watershed", "markers must match src's dimensions")
	}

	gray := src
	if src.Channels() == 3 {
		g, err := toGray(src, false)
		if err != nil {
			return err
		}
		gray = g
	}
	gd := gray.Data()
	rows, cols := src.Rows(), src.Cols()

	visited := make([]bool, rows*cols)
	pq := &watershedQueue{}
	heap.Init(pq)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			lbl, err := markers.GetScalar(y, x)
			if err != nil {
				return err
			}
			if int(lbl[0]) != 0 {
				idx := y*cols + x
				visited[idx] = true
				heap.Push(pq, watershedItem{priority: gd[idx], y: y, x: x})
			}
		}
	}

	neighbors := [4][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	for pq.Len() > 0 {
		item := heap.Pop(pq).(watershedItem)
		lbl, err := markers.GetScalar(item.y, item.x)
		if err != nil {
			return err
		}
		label := int(lbl[0])

		for _, d := range neighbors {
			ny, nx := item.y+d[0], item.x+d[1]
			if nx < 0 || nx >= cols || ny < 0 || ny >= rows {
				continue
			}
			nidx := ny*cols + nx
			if visited[nidx] {
				if label == watershedLine {
					continue
				}
				nlbl, err := markers.GetScalar(ny, nx)
				if err != nil {
					return err
				}
				if int(nlbl[0]) != label && int(nlbl[0]) != watershedLine {
					if err := markers.SetScalar(ny, nx, matrix.ScalarAll(watershedLine)); err != nil {
						return err
					}
				}
				continue
			}
			visited[nidx] = true
			if label != watershedLine {
				if err := markers.SetScalar(ny, nx, matrix.ScalarAll(float64(label))); err != nil {
					return err
				}
			}
			heap.Push(pq, watershedItem{priority: gd[nidx], y: ny, x: nx})
		}
	}
	return nil
}

// IntegralImage computes the summed-area table of a single-channel U8
// matrix: output[y+1][x+1] = sum of all src pixels in the rectangle
// (0,0)-(x,y) inclusive. The output is (rows+1) x (cols+1) F64, matching
// OpenCV's convention of a one-pixel zero border on the top and left.
func IntegralImage(src *matrix.Matrix) (*matrix.Matrix, error) {
	if err := requireChannels("cpu.IntegralImage", src, 1); err != nil {
		return nil, err
	}
	rows, cols := src.Rows(), src.Cols()
	out, err := matrix.New(rows+1, cols+1, 1, matrix.F64)
	if err != nil {
		return nil, err
	}
	for y := 0; y < rows; y++ {
		var rowSum float64
		for x := 0; x < cols; x++ {
			v, _ := src.GetScalar(y, x)
			rowSum += v[0]
			above, _ := out.GetScalar(y, x+1)
			_ = out.SetScalar(y+1, x+1, matrix.ScalarAll(rowSum+above[0]))
		}
	}
	return out, nil
}
