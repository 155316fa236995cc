// Package batch composes a fixed sequence of cvcore operations into a
// single Execute call, grounded on the teacher's gpucore.HybridPipeline
// staged-Execute shape: each stage runs in turn, and a stage with a GPU
// path is given the chance to take it whenever the whole chain is running
// under the Gpu or Auto selection. Unlike the teacher's pipeline, nothing
// stays resident on the device between stages: each stage is a separate
// dispatch call, and a GPU stage uploads its input and reads its result
// back.
package batch

import (
	"github.com/gogpu/cvcore/cpu"
	"github.com/gogpu/cvcore/dispatch"
	"github.com/gogpu/cvcore/gpu"
	"github.com/gogpu/cvcore/gpucore"
	"github.com/gogpu/cvcore/matrix"
)

// step is one operation in a Batch, closed over its own parameters.
type step interface {
	name() string
	run(ctx gpucore.Context, sel dispatch.Backend, in *matrix.Matrix) (*matrix.Matrix, error)
}

// Batch is an ordered list of operations applied to an input Matrix in
// turn, each stage's output feeding the next stage's input. Build one with
// New and the chaining methods, then run it with Execute.
type Batch struct {
	steps []step
}

// New returns an empty Batch.
func New() *Batch {
	return &Batch{}
}

// Len returns the number of steps currently chained.
func (b *Batch) Len() int {
	return len(b.steps)
}

// GaussianBlur appends a Gaussian blur stage.
func (b *Batch) GaussianBlur(ksize int, sigma float64) *Batch {
	b.steps = append(b.steps, gaussianBlurStep{ksize: ksize, sigma: sigma})
	return b
}

// BoxBlur appends a box blur stage.
func (b *Batch) BoxBlur(ksize int) *Batch {
	b.steps = append(b.steps, boxBlurStep{ksize: ksize})
	return b
}

// Resize appends a resize stage.
func (b *Batch) Resize(size matrix.Size, mode cpu.InterpolationMode) *Batch {
	b.steps = append(b.steps, resizeStep{size: size, mode: mode})
	return b
}

// Threshold appends a fixed-level threshold stage.
func (b *Batch) Threshold(thresh, maxVal float64, ttype cpu.ThresholdType) *Batch {
	b.steps = append(b.steps, thresholdStep{thresh: thresh, maxVal: maxVal, ttype: ttype})
	return b
}

// Canny appends a Canny edge-detection stage.
func (b *Batch) Canny(lowThresh, highThresh float64) *Batch {
	b.steps = append(b.steps, cannyStep{low: lowThresh, high: highThresh})
	return b
}

// CvtColor appends a color-space conversion stage. CvtColor(cpu.BGR2Gray)
// is the "cvt_color_gray" stage named in the batch op catalogue.
func (b *Batch) CvtColor(code cpu.ColorConversion) *Batch {
	b.steps = append(b.steps, cvtColorStep{code: code})
	return b
}

// Execute runs every chained step in order against input, threading each
// stage's output into the next stage's input, and returns the final
// result. ctx may be nil: any step whose GPU path needs a device context
// then runs CPU-only regardless of sel. sel resolves per-step exactly as
// dispatch.Do would for a single call.
func (b *Batch) Execute(ctx gpucore.Context, sel dispatch.Backend, input *matrix.Matrix) (*matrix.Matrix, error) {
	cur := input
	for _, s := range b.steps {
		out, err := s.run(ctx, sel, cur)
		if err != nil {
			return nil, err
		}
		cur = out
	}
	return cur, nil
}

// gpuEligibleU8 reports whether in qualifies for the single-channel U8 GPU
// kernels in package gpu (threshold, resize). Used to decide whether a
// step offers a Gpu path at all: offering one that would always fail
// UnsupportedChannels/UnsupportedDepth is pointless since those Kinds are
// not fallback-eligible and would abort an Auto-mode chain outright.
func gpuEligibleU8(ctx gpucore.Context, in *matrix.Matrix) bool {
	return ctx != nil && in.Channels() == 1 && in.Depth() == matrix.U8
}

type gaussianBlurStep struct {
	ksize int
	sigma float64
}

func (s gaussianBlurStep) name() string { return "gaussian_blur" }

func (s gaussianBlurStep) run(ctx gpucore.Context, sel dispatch.Backend, in *matrix.Matrix) (*matrix.Matrix, error) {
	return dispatch.Do(sel, dispatch.Op[*matrix.Matrix]{
		Name: s.name(),
		Cpu:  func() (*matrix.Matrix, error) { return cpu.GaussianBlur(in, s.ksize, s.sigma) },
	})
}

type boxBlurStep struct {
	ksize int
}

func (s boxBlurStep) name() string { return "box_blur" }

func (s boxBlurStep) run(ctx gpucore.Context, sel dispatch.Backend, in *matrix.Matrix) (*matrix.Matrix, error) {
	return dispatch.Do(sel, dispatch.Op[*matrix.Matrix]{
		Name: s.name(),
		Cpu:  func() (*matrix.Matrix, error) { return cpu.BoxBlur(in, s.ksize) },
	})
}

type resizeStep struct {
	size matrix.Size
	mode cpu.InterpolationMode
}

func (s resizeStep) name() string { return "resize" }

func (s resizeStep) run(ctx gpucore.Context, sel dispatch.Backend, in *matrix.Matrix) (*matrix.Matrix, error) {
	op := dispatch.Op[*matrix.Matrix]{
		Name: s.name(),
		Cpu:  func() (*matrix.Matrix, error) { return cpu.Resize(in, s.size, s.mode) },
	}
	if gpuEligibleU8(ctx, in) {
		op.Gpu = func() (*matrix.Matrix, error) { return gpu.Resize(ctx, in, s.size, int(s.mode)) }
	}
	return dispatch.Do(sel, op)
}

type thresholdStep struct {
	thresh, maxVal float64
	ttype          cpu.ThresholdType
}

func (s thresholdStep) name() string { return "threshold" }

func (s thresholdStep) run(ctx gpucore.Context, sel dispatch.Backend, in *matrix.Matrix) (*matrix.Matrix, error) {
	op := dispatch.Op[*matrix.Matrix]{
		Name: s.name(),
		Cpu:  func() (*matrix.Matrix, error) { return cpu.Threshold(in, s.thresh, s.maxVal, s.ttype) },
	}
	if gpuEligibleU8(ctx, in) {
		op.Gpu = func() (*matrix.Matrix, error) {
			return gpu.Threshold(ctx, in, s.thresh, s.maxVal, int(s.ttype))
		}
	}
	return dispatch.Do(sel, op)
}

type cannyStep struct {
	low, high float64
}

func (s cannyStep) name() string { return "canny" }

func (s cannyStep) run(ctx gpucore.Context, sel dispatch.Backend, in *matrix.Matrix) (*matrix.Matrix, error) {
	return dispatch.Do(sel, dispatch.Op[*matrix.Matrix]{
		Name: s.name(),
		Cpu:  func() (*matrix.Matrix, error) { return cpu.Canny(in, s.low, s.high) },
	})
}

type cvtColorStep struct {
	code cpu.ColorConversion
}

func (s cvtColorStep) name() string { return "cvt_color" }

func (s cvtColorStep) run(ctx gpucore.Context, sel dispatch.Backend, in *matrix.Matrix) (*matrix.Matrix, error) {
	return dispatch.Do(sel, dispatch.Op[*matrix.Matrix]{
		Name: s.name(),
		Cpu:  func() (*matrix.Matrix, error) { return cpu.CvtColor(in, s.code) },
	})
}
