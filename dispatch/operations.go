package dispatch

import (
	"github.com/gogpu/cvcore/cpu"
	"github.com/gogpu/cvcore/gpu"
	"github.com/gogpu/cvcore/gpucore"
	"github.com/gogpu/cvcore/matrix"
)

// gpuEligibleU8 reports whether in qualifies for the single-channel U8 GPU
// kernels package gpu ships (threshold, resize), mirroring batch's helper
// of the same name: offering a Gpu path that would always fail
// UnsupportedChannels/UnsupportedDepth is pointless, since those Kinds are
// not fallback-eligible and would abort an Auto-mode call outright.
func gpuEligibleU8(ctx gpucore.Context, in *matrix.Matrix) bool {
	return ctx != nil && in.Channels() == 1 && in.Depth() == matrix.U8
}

// Threshold applies a fixed-level threshold, trying ctx's GPU kernel first
// under Auto/Gpu selection when in is single-channel U8, falling back to
// cpu.Threshold otherwise.
func Threshold(ctx gpucore.Context, sel Backend, in *matrix.Matrix, thresh, maxVal float64, ttype cpu.ThresholdType) (*matrix.Matrix, error) {
	op := Op[*matrix.Matrix]{
		Name: "threshold",
		Cpu:  func() (*matrix.Matrix, error) { return cpu.Threshold(in, thresh, maxVal, ttype) },
	}
	if gpuEligibleU8(ctx, in) {
		op.Gpu = func() (*matrix.Matrix, error) {
			return gpu.Threshold(ctx, in, thresh, maxVal, int(ttype))
		}
	}
	return Do(sel, op)
}

// Resize scales in to size, trying ctx's GPU kernel first under Auto/Gpu
// selection when in is single-channel U8, falling back to cpu.Resize
// otherwise.
func Resize(ctx gpucore.Context, sel Backend, in *matrix.Matrix, size matrix.Size, mode cpu.InterpolationMode) (*matrix.Matrix, error) {
	op := Op[*matrix.Matrix]{
		Name: "resize",
		Cpu:  func() (*matrix.Matrix, error) { return cpu.Resize(in, size, mode) },
	}
	if gpuEligibleU8(ctx, in) {
		op.Gpu = func() (*matrix.Matrix, error) {
			return gpu.Resize(ctx, in, size, int(mode))
		}
	}
	return Do(sel, op)
}

// cpuOnly wraps a CPU-only kernel in the selection machinery so callers get
// the same Op[T]/Do shape regardless of whether the operation has a GPU
// path; sel is accepted (rather than hardcoding cpu.X calls) so switching
// an operation to a GPU-backed one later is a one-line change at its call
// site here, not at every caller.
func cpuOnly[T any](name string, fn func() (T, error), sel Backend) (T, error) {
	return Do(sel, Op[T]{Name: name, Cpu: fn})
}

// Add computes the saturating elementwise sum of a and b.
func Add(sel Backend, a, b *matrix.Matrix) (*matrix.Matrix, error) {
	return cpuOnly("add", func() (*matrix.Matrix, error) { return cpu.Add(a, b) }, sel)
}

// Subtract computes the saturating elementwise difference a-b.
func Subtract(sel Backend, a, b *matrix.Matrix) (*matrix.Matrix, error) {
	return cpuOnly("subtract", func() (*matrix.Matrix, error) { return cpu.Subtract(a, b) }, sel)
}

// Multiply computes the elementwise product a*b/255 of a and b.
func Multiply(sel Backend, a, b *matrix.Matrix) (*matrix.Matrix, error) {
	return cpuOnly("multiply", func() (*matrix.Matrix, error) { return cpu.Multiply(a, b) }, sel)
}

// AbsDiff computes the elementwise absolute difference of a and b.
func AbsDiff(sel Backend, a, b *matrix.Matrix) (*matrix.Matrix, error) {
	return cpuOnly("absdiff", func() (*matrix.Matrix, error) { return cpu.AbsDiff(a, b) }, sel)
}

// AddWeighted computes alpha*a + beta*b + gamma, saturated.
func AddWeighted(sel Backend, a *matrix.Matrix, alpha float64, b *matrix.Matrix, beta, gamma float64) (*matrix.Matrix, error) {
	return cpuOnly("add_weighted", func() (*matrix.Matrix, error) { return cpu.AddWeighted(a, alpha, b, beta, gamma) }, sel)
}

// BitwiseAnd computes the per-byte bitwise AND of a and b.
func BitwiseAnd(sel Backend, a, b *matrix.Matrix) (*matrix.Matrix, error) {
	return cpuOnly("bitwise_and", func() (*matrix.Matrix, error) { return cpu.BitwiseAnd(a, b) }, sel)
}

// BitwiseOr computes the per-byte bitwise OR of a and b.
func BitwiseOr(sel Backend, a, b *matrix.Matrix) (*matrix.Matrix, error) {
	return cpuOnly("bitwise_or", func() (*matrix.Matrix, error) { return cpu.BitwiseOr(a, b) }, sel)
}

// BitwiseXor computes the per-byte bitwise XOR of a and b.
func BitwiseXor(sel Backend, a, b *matrix.Matrix) (*matrix.Matrix, error) {
	return cpuOnly("bitwise_xor", func() (*matrix.Matrix, error) { return cpu.BitwiseXor(a, b) }, sel)
}

// BitwiseNot computes the per-byte bitwise complement of a.
func BitwiseNot(sel Backend, a *matrix.Matrix) (*matrix.Matrix, error) {
	return cpuOnly("bitwise_not", func() (*matrix.Matrix, error) { return cpu.BitwiseNot(a) }, sel)
}

// Min computes the elementwise minimum of a and b.
func Min(sel Backend, a, b *matrix.Matrix) (*matrix.Matrix, error) {
	return cpuOnly("min", func() (*matrix.Matrix, error) { return cpu.Min(a, b) }, sel)
}

// Max computes the elementwise maximum of a and b.
func Max(sel Backend, a, b *matrix.Matrix) (*matrix.Matrix, error) {
	return cpuOnly("max", func() (*matrix.Matrix, error) { return cpu.Max(a, b) }, sel)
}

// Compare produces a 0/255 mask of a op b per element.
func Compare(sel Backend, a, b *matrix.Matrix, op cpu.CompareOp) (*matrix.Matrix, error) {
	return cpuOnly("compare", func() (*matrix.Matrix, error) { return cpu.Compare(a, b, op) }, sel)
}

// InRange produces a 0/255 mask of pixels within [lower,upper] per channel.
func InRange(sel Backend, src *matrix.Matrix, lower, upper matrix.Scalar) (*matrix.Matrix, error) {
	return cpuOnly("in_range", func() (*matrix.Matrix, error) { return cpu.InRange(src, lower, upper) }, sel)
}

// ConvertScaleAbs computes saturate(|alpha*src+beta|) per element.
func ConvertScaleAbs(sel Backend, src *matrix.Matrix, alpha, beta float64) (*matrix.Matrix, error) {
	return cpuOnly("convert_scale", func() (*matrix.Matrix, error) { return cpu.ConvertScaleAbs(src, alpha, beta) }, sel)
}

// Normalize rescales src's value range to [newMin,newMax].
func Normalize(sel Backend, src *matrix.Matrix, newMin, newMax float64) (*matrix.Matrix, error) {
	return cpuOnly("normalize", func() (*matrix.Matrix, error) { return cpu.Normalize(src, newMin, newMax) }, sel)
}

// Sqrt computes the elementwise square root of a floating-point matrix.
func Sqrt(sel Backend, src *matrix.Matrix) (*matrix.Matrix, error) {
	return cpuOnly("sqrt", func() (*matrix.Matrix, error) { return cpu.Sqrt(src) }, sel)
}

// Exp computes the elementwise natural exponential of a floating-point matrix.
func Exp(sel Backend, src *matrix.Matrix) (*matrix.Matrix, error) {
	return cpuOnly("exp", func() (*matrix.Matrix, error) { return cpu.Exp(src) }, sel)
}

// Log computes the elementwise natural logarithm of a floating-point matrix.
func Log(sel Backend, src *matrix.Matrix) (*matrix.Matrix, error) {
	return cpuOnly("log", func() (*matrix.Matrix, error) { return cpu.Log(src) }, sel)
}

// Pow computes the elementwise power src^power of a floating-point matrix.
func Pow(sel Backend, src *matrix.Matrix, power float64) (*matrix.Matrix, error) {
	return cpuOnly("pow", func() (*matrix.Matrix, error) { return cpu.Pow(src, power) }, sel)
}

// CvtColor converts src between color spaces per code.
func CvtColor(sel Backend, src *matrix.Matrix, code cpu.ColorConversion) (*matrix.Matrix, error) {
	return cpuOnly("cvt_color", func() (*matrix.Matrix, error) { return cpu.CvtColor(src, code) }, sel)
}

// BoxBlur applies an unweighted ksize x ksize box filter.
func BoxBlur(sel Backend, src *matrix.Matrix, ksize int) (*matrix.Matrix, error) {
	return cpuOnly("box_blur", func() (*matrix.Matrix, error) { return cpu.BoxBlur(src, ksize) }, sel)
}

// GaussianBlur applies a separable Gaussian blur of the given odd kernel
// size and standard deviation (sigma<=0 derives it from ksize).
func GaussianBlur(sel Backend, src *matrix.Matrix, ksize int, sigma float64) (*matrix.Matrix, error) {
	return cpuOnly("gaussian_blur", func() (*matrix.Matrix, error) { return cpu.GaussianBlur(src, ksize, sigma) }, sel)
}

// MedianBlur applies an odd-sized median filter.
func MedianBlur(sel Backend, src *matrix.Matrix, ksize int) (*matrix.Matrix, error) {
	return cpuOnly("median_blur", func() (*matrix.Matrix, error) { return cpu.MedianBlur(src, ksize) }, sel)
}

// BilateralFilter applies an edge-preserving smoothing filter combining a
// spatial and a range Gaussian weight.
func BilateralFilter(sel Backend, src *matrix.Matrix, diameter int, sigmaColor, sigmaSpace float64) (*matrix.Matrix, error) {
	return cpuOnly("bilateral_filter", func() (*matrix.Matrix, error) {
		return cpu.BilateralFilter(src, diameter, sigmaColor, sigmaSpace)
	}, sel)
}

// Filter2D convolves src with an arbitrary kernel.
func Filter2D(sel Backend, src *matrix.Matrix, k cpu.Kernel2D) (*matrix.Matrix, error) {
	return cpuOnly("filter2d", func() (*matrix.Matrix, error) { return cpu.Filter2D(src, k) }, sel)
}

// GradientPair bundles Sobel/Scharr's two gradient-direction outputs so
// they fit the single-return-value Op[T] shape Do requires.
type GradientPair struct {
	Gx, Gy *matrix.Matrix
}

// Sobel computes the horizontal and vertical Sobel gradient images.
func Sobel(sel Backend, src *matrix.Matrix) (GradientPair, error) {
	return cpuOnly("sobel", func() (GradientPair, error) {
		gx, gy, err := cpu.Sobel(src)
		return GradientPair{Gx: gx, Gy: gy}, err
	}, sel)
}

// Scharr computes the horizontal and vertical Scharr gradient images.
func Scharr(sel Backend, src *matrix.Matrix) (GradientPair, error) {
	return cpuOnly("scharr", func() (GradientPair, error) {
		gx, gy, err := cpu.Scharr(src)
		return GradientPair{Gx: gx, Gy: gy}, err
	}, sel)
}

// Laplacian applies the discrete Laplacian operator.
func Laplacian(sel Backend, src *matrix.Matrix) (*matrix.Matrix, error) {
	return cpuOnly("laplacian", func() (*matrix.Matrix, error) { return cpu.Laplacian(src) }, sel)
}

// Erode applies grayscale/binary erosion with the given structuring element.
func Erode(sel Backend, src *matrix.Matrix, el cpu.StructuringElement) (*matrix.Matrix, error) {
	return cpuOnly("erode", func() (*matrix.Matrix, error) { return cpu.Erode(src, el) }, sel)
}

// Dilate applies grayscale/binary dilation with the given structuring element.
func Dilate(sel Backend, src *matrix.Matrix, el cpu.StructuringElement) (*matrix.Matrix, error) {
	return cpuOnly("dilate", func() (*matrix.Matrix, error) { return cpu.Dilate(src, el) }, sel)
}

// Open applies morphological opening (erode then dilate).
func Open(sel Backend, src *matrix.Matrix, el cpu.StructuringElement) (*matrix.Matrix, error) {
	return cpuOnly("open", func() (*matrix.Matrix, error) { return cpu.Open(src, el) }, sel)
}

// Close applies morphological closing (dilate then erode).
func Close(sel Backend, src *matrix.Matrix, el cpu.StructuringElement) (*matrix.Matrix, error) {
	return cpuOnly("close", func() (*matrix.Matrix, error) { return cpu.Close(src, el) }, sel)
}

// Gradient computes the morphological gradient (dilate minus erode).
func Gradient(sel Backend, src *matrix.Matrix, el cpu.StructuringElement) (*matrix.Matrix, error) {
	return cpuOnly("morphology_gradient", func() (*matrix.Matrix, error) { return cpu.Gradient(src, el) }, sel)
}

// TopHat computes src minus its morphological opening.
func TopHat(sel Backend, src *matrix.Matrix, el cpu.StructuringElement) (*matrix.Matrix, error) {
	return cpuOnly("top_hat", func() (*matrix.Matrix, error) { return cpu.TopHat(src, el) }, sel)
}

// BlackHat computes src's morphological closing minus src.
func BlackHat(sel Backend, src *matrix.Matrix, el cpu.StructuringElement) (*matrix.Matrix, error) {
	return cpuOnly("black_hat", func() (*matrix.Matrix, error) { return cpu.BlackHat(src, el) }, sel)
}

// Flip mirrors src across the given axis.
func Flip(sel Backend, src *matrix.Matrix, mode cpu.FlipMode) (*matrix.Matrix, error) {
	return cpuOnly("flip", func() (*matrix.Matrix, error) { return cpu.Flip(src, mode) }, sel)
}

// Rotate90 rotates src clockwise by 90 degrees, times times (mod 4).
func Rotate90(sel Backend, src *matrix.Matrix, times int) (*matrix.Matrix, error) {
	return cpuOnly("rotate90", func() (*matrix.Matrix, error) { return cpu.Rotate90(src, times) }, sel)
}

// WarpAffine resamples src through an affine transform into an output of
// the given size.
func WarpAffine(sel Backend, src *matrix.Matrix, m cpu.AffineMatrix, size matrix.Size) (*matrix.Matrix, error) {
	return cpuOnly("warp_affine", func() (*matrix.Matrix, error) { return cpu.WarpAffine(src, m, size) }, sel)
}

// WarpPerspective resamples src through a perspective transform into an
// output of the given size.
func WarpPerspective(sel Backend, src *matrix.Matrix, m cpu.PerspectiveMatrix, size matrix.Size) (*matrix.Matrix, error) {
	return cpuOnly("warp_perspective", func() (*matrix.Matrix, error) { return cpu.WarpPerspective(src, m, size) }, sel)
}

// Remap resamples src according to per-pixel source coordinates in mapX/mapY.
func Remap(sel Backend, src, mapX, mapY *matrix.Matrix) (*matrix.Matrix, error) {
	return cpuOnly("remap", func() (*matrix.Matrix, error) { return cpu.Remap(src, mapX, mapY) }, sel)
}

// AdaptiveThreshold thresholds src against a locally-computed mean or
// Gaussian-weighted window instead of a single global level.
func AdaptiveThreshold(sel Backend, src *matrix.Matrix, maxVal float64, method cpu.AdaptiveMethod, ttype cpu.ThresholdType, blockSize int, c float64) (*matrix.Matrix, error) {
	return cpuOnly("adaptive_threshold", func() (*matrix.Matrix, error) {
		return cpu.AdaptiveThreshold(src, maxVal, method, ttype, blockSize, c)
	}, sel)
}

// CalcHist computes the 256-bin histogram of a single-channel U8 matrix.
func CalcHist(sel Backend, src *matrix.Matrix) ([256]uint32, error) {
	return cpuOnly("calc_hist", func() ([256]uint32, error) { return cpu.CalcHist(src) }, sel)
}

// EqualizeHist flattens a single-channel U8 matrix's histogram via full CDF
// normalization.
func EqualizeHist(sel Backend, src *matrix.Matrix) (*matrix.Matrix, error) {
	return cpuOnly("equalize_hist", func() (*matrix.Matrix, error) { return cpu.EqualizeHist(src) }, sel)
}

// BackProjection maps each src pixel to its normalized frequency in model's
// histogram.
func BackProjection(sel Backend, src *matrix.Matrix, model [256]uint32) (*matrix.Matrix, error) {
	return cpuOnly("back_projection", func() (*matrix.Matrix, error) { return cpu.BackProjection(src, model) }, sel)
}

// CompareHist compares two 256-bin histograms by method; this has no GPU
// path and no failure mode worth an error return, so it bypasses Do/Op
// entirely and calls straight through.
func CompareHist(a, b [256]uint32, method cpu.HistCompareMethod) float64 {
	return cpu.CompareHist(a, b, method)
}

// Canny detects edges via Gaussian smoothing, Sobel gradients, non-max
// suppression, and double-threshold hysteresis linking.
func Canny(sel Backend, src *matrix.Matrix, lowThresh, highThresh float64) (*matrix.Matrix, error) {
	return cpuOnly("canny", func() (*matrix.Matrix, error) { return cpu.Canny(src, lowThresh, highThresh) }, sel)
}

// IntegralImage computes the summed-area table of src.
func IntegralImage(sel Backend, src *matrix.Matrix) (*matrix.Matrix, error) {
	return cpuOnly("integral_image", func() (*matrix.Matrix, error) { return cpu.IntegralImage(src) }, sel)
}

// DistanceTransform computes, for every pixel of a binary mask, the
// distance to the nearest zero pixel under the given metric.
func DistanceTransform(sel Backend, src *matrix.Matrix, dtype cpu.DistanceType) (*matrix.Matrix, error) {
	return cpuOnly("distance_transform", func() (*matrix.Matrix, error) { return cpu.DistanceTransform(src, dtype) }, sel)
}

// Watershed performs marker-based watershed segmentation, mutating markers
// in place. It returns struct{} rather than nothing so it fits the Op[T]
// shape Do requires.
func Watershed(sel Backend, src, markers *matrix.Matrix) (struct{}, error) {
	return cpuOnly("watershed", func() (struct{}, error) { return struct{}{}, cpu.Watershed(src, markers) }, sel)
}
