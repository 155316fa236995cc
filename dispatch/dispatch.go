// Package dispatch resolves a per-call or process-wide Backend selection
// directive to an actual CPU or GPU invocation, with the fallback rules
// every exported cvcore operation follows. It is the single place that
// rule lives, grounded on the registry/priority pattern the teacher used
// for its own named-backend selection, specialized from "pick the
// highest-priority registered backend" to the three-value Auto/Cpu/Gpu
// directive and per-Kind fallback eligibility this engine requires.
package dispatch

import (
	"sync/atomic"

	"github.com/gogpu/cvcore"
	"github.com/gogpu/cvcore/cverr"
)

// Backend selects which implementation an operation should use.
type Backend int32

const (
	// Auto tries the GPU path when a device context is available and the
	// operation has one, falling back to CPU on a non-fatal GPU failure.
	Auto Backend = iota
	// Cpu always invokes the CPU kernel.
	Cpu
	// Gpu always invokes the GPU kernel; failures surface without fallback.
	Gpu
)

func (b Backend) String() string {
	switch b {
	case Cpu:
		return "cpu"
	case Gpu:
		return "gpu"
	default:
		return "auto"
	}
}

// defaultBackend is the process-wide selection directive, read whenever a
// caller does not specify one explicitly. Stored as an atomic.Int32 rather
// than guarded by a mutex, matching the teacher's preference for atomics
// over locks for single-word global state.
var defaultBackend atomic.Int32

// SetDefault sets the process-wide default selection directive. Idempotent
// and safe for concurrent use.
func SetDefault(b Backend) {
	defaultBackend.Store(int32(b))
}

// Default returns the current process-wide selection directive (Auto
// unless SetDefault has been called).
func Default() Backend {
	return Backend(defaultBackend.Load())
}

// Op bundles the two implementations of an operation: Cpu always exists;
// Gpu is nil when the operation has no GPU path, in which case Do uses Cpu
// regardless of the resolved Backend.
type Op[T any] struct {
	Name string
	Cpu  func() (T, error)
	Gpu  func() (T, error) // nil if no GPU path
}

// Do resolves sel against op and returns its result; sel is used as given
// and Do does not read the process default (Default()). It applies the
// Auto-mode fallback rule: GPU
// failures of kind GpuUnavailable, GpuCompile, or GpuDispatch fall back to
// the CPU path; every other Kind (InvalidInput, UnsupportedDepth, ...)
// surfaces immediately since it would fail identically on CPU.
func Do[T any](sel Backend, op Op[T]) (T, error) {
	var zero T

	if op.Gpu == nil {
		return op.Cpu()
	}

	switch sel {
	case Cpu:
		return op.Cpu()

	case Gpu:
		result, err := op.Gpu()
		if err != nil {
			cvcore.Logger().Warn("dispatch: gpu invocation failed, no fallback under explicit Gpu selection",
				"op", op.Name, "error", err)
		}
		return result, err

	default: // Auto
		result, err := op.Gpu()
		if err == nil {
			return result, nil
		}

		if !shouldFallback(err) {
			return zero, err
		}

		cvcore.Logger().Debug("dispatch: falling back to cpu", "op", op.Name, "gpu_error", err)
		return op.Cpu()
	}
}

// shouldFallback reports whether err's Kind is fallback-eligible under Auto
// selection, per cverr.Kind.IsFallbackEligible. A non-*cverr.Error is
// treated as non-fallback-eligible (Internal-equivalent): only the
// taxonomy's explicit GPU-path kinds trigger a retry on CPU.
func shouldFallback(err error) bool {
	cvErr, ok := err.(*cverr.Error)
	if !ok {
		return false
	}
	return cvErr.Kind.IsFallbackEligible()
}
