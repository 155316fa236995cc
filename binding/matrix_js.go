//go:build js && wasm

package binding

import (
	"syscall/js"

	"github.com/gogpu/cvcore/batch"
	"github.com/gogpu/cvcore/cpu"
	"github.com/gogpu/cvcore/cverr"
	"github.com/gogpu/cvcore/dispatch"
	"github.com/gogpu/cvcore/gpucore"
	"github.com/gogpu/cvcore/matrix"
)

// JSMatrix is the js.Value-facing wrapper around Wrapper, grounded on
// gioui.org/app/os_js.go's pattern of a plain Go struct holding js.Value
// handles plus the bind helper that registers a Go closure as a
// js.Func callable from JS. Property names are camelCase per the foreign
// naming convention; Go's own exported names stay PascalCase throughout
// the rest of the module since Go has no analogous casing convention to
// violate.
type JSMatrix struct {
	w     *Wrapper
	ctx   gpucore.Context
	self  js.Value
	funcs []js.Func
}

// NewJSMatrix wraps m and builds its js.Value surface. ctx may be nil if
// no GPU device is available; GPU-eligible operations then silently run
// CPU-only exactly as batch.Execute does for a nil context.
func NewJSMatrix(m *matrix.Matrix, ctx gpucore.Context) *JSMatrix {
	jm := &JSMatrix{w: Wrap(m), ctx: ctx}
	jm.self = js.ValueOf(map[string]interface{}{})
	jm.bind("rows", jm.rows)
	jm.bind("cols", jm.cols)
	jm.bind("channels", jm.channels)
	jm.bind("gaussianBlur", jm.gaussianBlur)
	jm.bind("threshold", jm.threshold)
	jm.bind("release", jm.release)
	return jm
}

// bind registers f as a js.Func reachable from JS under self[name],
// tracked so Release can free every associated js.Func (a js.Func that
// is never Released leaks the underlying Go closure for the life of the
// page, per the syscall/js documentation).
func (jm *JSMatrix) bind(name string, f func(this js.Value, args []js.Value) interface{}) {
	fn := js.FuncOf(f)
	jm.funcs = append(jm.funcs, fn)
	jm.self.Set(name, fn)
}

// Value returns the underlying js.Value, for embedding in a larger JS
// object graph (e.g. returned from an exported constructor function).
func (jm *JSMatrix) Value() js.Value {
	return jm.self
}

func (jm *JSMatrix) rows(this js.Value, args []js.Value) interface{} {
	n, err := jm.w.Rows()
	if err != nil {
		return jsError(err)
	}
	return n
}

func (jm *JSMatrix) cols(this js.Value, args []js.Value) interface{} {
	n, err := jm.w.Cols()
	if err != nil {
		return jsError(err)
	}
	return n
}

func (jm *JSMatrix) channels(this js.Value, args []js.Value) interface{} {
	n, err := jm.w.Channels()
	if err != nil {
		return jsError(err)
	}
	return n
}

// gaussianBlur returns a Promise, since the GPU dispatch path (when a
// device context is present) suspends the calling goroutine on
// acquisition/submission/readback, and a synchronous return would block
// the single JS event-loop thread a wasm binary runs on.
func (jm *JSMatrix) gaussianBlur(this js.Value, args []js.Value) interface{} {
	ksize := args[0].Int()
	sigma := args[1].Float()
	return jm.runAsync(func() (*matrix.Matrix, error) {
		m, err := jm.w.Matrix()
		if err != nil {
			return nil, err
		}
		return batch.New().GaussianBlur(ksize, sigma).Execute(jm.ctx, dispatch.Default(), m)
	})
}

func (jm *JSMatrix) threshold(this js.Value, args []js.Value) interface{} {
	thresh := args[0].Float()
	maxVal := args[1].Float()
	ttype := args[2].Int()
	return jm.runAsync(func() (*matrix.Matrix, error) {
		m, err := jm.w.Matrix()
		if err != nil {
			return nil, err
		}
		return batch.New().Threshold(thresh, maxVal, cpu.ThresholdType(ttype)).Execute(jm.ctx, dispatch.Default(), m)
	})
}

// release marks the wrapper closed and frees every js.Func registered on
// this object, mirroring the teacher's window shutdown path where
// event-listener funcOf closures are released once the window is torn
// down. After release, JS calls to this object's methods never reach Go
// (syscall/js rejects calls to a released js.Func), and a Promise still
// pending from gaussianBlur or threshold rejects with the wrapper's
// structured closed error.
func (jm *JSMatrix) release(this js.Value, args []js.Value) interface{} {
	jm.w.Release()
	for _, fn := range jm.funcs {
		fn.Release()
	}
	jm.funcs = nil
	return nil
}

// runAsync builds a Promise that resolves with a new JSMatrix wrapping
// work's result, or rejects with a structured error. work runs on its own
// goroutine so the JS event loop is never blocked waiting on a GPU
// dispatch.
func (jm *JSMatrix) runAsync(work func() (*matrix.Matrix, error)) js.Value {
	promiseCtor := js.Global().Get("Promise")
	executor := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		resolve, reject := args[0], args[1]
		go func() {
			result, err := work()
			if err != nil {
				reject.Invoke(jsError(err))
				return
			}
			resolve.Invoke(NewJSMatrix(result, jm.ctx).Value())
		}()
		return nil
	})
	return promiseCtor.New(executor)
}

// jsError converts a Go error into a plain JS object carrying a message
// string, rather than a full Error instance, since cverr.Error's
// machine-readable Kind is exposed to JS as a "kind" string tag (the
// foreign-boundary contract), not as a native JS Error subtype.
func jsError(err error) js.Value {
	kind := "unknown"
	if cvErr, ok := err.(*cverr.Error); ok {
		kind = cvErr.Kind.String()
	}
	return js.ValueOf(map[string]interface{}{
		"message": err.Error(),
		"kind":    kind,
	})
}
