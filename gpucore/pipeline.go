package gpucore

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/cvcore/cverr"
)

// Context owns a GPUAdapter plus its pipeline cache and is the handle that
// kernel wrappers in package gpu dispatch through. Two concrete lifecycle
// variants implement it (built by NewThreadedDevice and NewCooperativeDevice);
// callers obtain one via whichever constructor matches how their host
// manages GPU handles.
type Context interface {
	// Adapter returns the underlying GPUAdapter.
	Adapter() GPUAdapter

	// Cache returns the pipeline cache associated with this context.
	Cache() *PipelineCache

	// Use runs fn with exclusive access to the context, returning
	// cverr.GpuUnavailable if the context has been closed. While another
	// Use call is in progress, the threaded variant blocks until it
	// finishes and the cooperative variant returns cverr.Internal. Use is
	// not reentrant: fn must not call Use on the same context.
	Use(fn func(GPUAdapter, *PipelineCache) error) error

	// Close marks the context closed, so later Use calls return
	// cverr.GpuUnavailable. It does not destroy the adapter's device or
	// the cached pipelines.
	Close()
}

// threadedContext is the shared implementation backing ThreadedDevice: a
// mutex-protected adapter usable from any goroutine.
type threadedContext struct {
	mu      sync.Mutex
	adapter GPUAdapter
	cache   *PipelineCache
	closed  bool
}

func (c *threadedContext) Adapter() GPUAdapter   { return c.adapter }
func (c *threadedContext) Cache() *PipelineCache { return c.cache }

func (c *threadedContext) Use(fn func(GPUAdapter, *PipelineCache) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return cverr.New(cverr.GpuUnavailable, "gpucore.Context.Use", "context closed")
	}
	return fn(c.adapter, c.cache)
}

func (c *threadedContext) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
}

// cooperativeContext confines adapter use to non-overlapping calls from a
// single logical owner. Unlike threadedContext it never blocks waiting for
// a concurrent user to finish: a handle that is not thread-shareable (e.g.
// a host WebGPU object reached through syscall/js) cannot be made safe by
// adding a mutex around it, so an overlapping call is rejected outright
// instead of serialized.
type cooperativeContext struct {
	busy    atomic.Bool
	adapter GPUAdapter
	cache   *PipelineCache
	closed  atomic.Bool
}

func (c *cooperativeContext) Adapter() GPUAdapter   { return c.adapter }
func (c *cooperativeContext) Cache() *PipelineCache { return c.cache }

func (c *cooperativeContext) Use(fn func(GPUAdapter, *PipelineCache) error) error {
	if c.closed.Load() {
		return cverr.New(cverr.GpuUnavailable, "gpucore.Context.Use", "context closed")
	}
	if !c.busy.CompareAndSwap(false, true) {
		return cverr.New(cverr.Internal, "gpucore.Context.Use",
			"cooperative device used concurrently; it is confined to one caller at a time")
	}
	defer c.busy.Store(false)
	return fn(c.adapter, c.cache)
}

func (c *cooperativeContext) Close() {
	c.closed.Store(true)
}
