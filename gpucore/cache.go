package gpucore

import (
	"sync"
	"sync/atomic"
)

// ProgramKey identifies a compiled compute pipeline in the cache. Op is the
// kernel name ("gaussian_blur", "threshold", ...) and Variant distinguishes
// specializations of the same op (e.g. by channel count or border mode)
// that require a different WGSL body.
type ProgramKey struct {
	Op      string
	Variant string
}

// Program bundles everything needed to dispatch a compiled kernel: the
// pipeline itself plus the bind group layout used to build bind groups for
// each invocation.
type Program struct {
	Pipeline     ComputePipelineID
	LayoutID     PipelineLayoutID
	GroupLayout  BindGroupLayoutID
	EntryPoint   string
}

// EagerOps lists the kernels PrecompileEager compiles up front, rather
// than lazily on first use. This is exactly the set of operations that ship
// a GPU wrapper and WGSL shader (gpu/threshold.go, gpu/resize.go) — every
// other dispatchable operation runs CPU-only for now, so precompiling a
// shader for it would just waste device-acquisition time on a program
// nothing ever requests.
var EagerOps = []string{
	"threshold",
	"resize",
}

// PipelineCache maps ProgramKey to a compiled Program, built once per
// (adapter, key) pair and reused for the adapter's lifetime. Lookups use a
// double-checked RWMutex: the common case (already compiled) only takes a
// read lock.
type PipelineCache struct {
	mu    sync.RWMutex
	items map[ProgramKey]*Program

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewPipelineCache returns an empty cache.
func NewPipelineCache() *PipelineCache {
	return &PipelineCache{items: make(map[ProgramKey]*Program)}
}

// Compiler builds a Program for a given ProgramKey. Kernel wrapper packages
// supply this as a closure that assembles the WGSL source for key.Op,
// compiles it through naga, and creates the pipeline/bind-group-layout via
// the adapter.
type Compiler func(key ProgramKey) (*Program, error)

// GetOrCompile returns the cached Program for key, compiling and inserting
// it if absent. Concurrent calls for the same key that both miss will both
// compile; the second writer's result is discarded in favor of whichever
// insert wins the lock, since compilation is a pure function of key and
// either result is correct — this keeps the hot path lock-free of any
// per-key mutex.
func (c *PipelineCache) GetOrCompile(key ProgramKey, compile Compiler) (*Program, error) {
	c.mu.RLock()
	p, ok := c.items[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return p, nil
	}

	c.misses.Add(1)
	p, err := compile(key)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if existing, ok := c.items[key]; ok {
		c.mu.Unlock()
		return existing, nil
	}
	c.items[key] = p
	c.mu.Unlock()
	return p, nil
}

// PrecompileEager compiles every op in EagerOps with Variant "default", so
// that a later dispatch of those kernels finds them already cached. No code
// in this module calls it; backend/wgpu's Acquire does not.
func (c *PipelineCache) PrecompileEager(compile Compiler) error {
	for _, op := range EagerOps {
		key := ProgramKey{Op: op, Variant: "default"}
		if _, err := c.GetOrCompile(key, compile); err != nil {
			return err
		}
	}
	return nil
}

// Stats reports cumulative hit/miss counts. GetOrCompile itself emits no
// log line on a hit or a miss.
func (c *PipelineCache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of distinct programs currently cached.
func (c *PipelineCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
