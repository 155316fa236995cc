// Package wgpu provides the gogpu/wgpu-backed gpucore.GPUAdapter used by
// the default GPU backend.
//
// # Architecture
//
// Acquire opens a Vulkan instance via gogpu/wgpu/hal, selects a GPU adapter
// (the first discrete or integrated one enumerated, else the first adapter
// of any type), opens a device and queue, and
// wraps them in an Adapter implementing gpucore.GPUAdapter. Package gpu's
// kernel wrappers dispatch compute passes through that interface; this
// package never constructs a render pipeline, since cvcore has no raster
// output target of its own — every kernel reads and writes byte-addressable
// storage buffers (see package gpu's prelude.wgsl).
//
// # Resource tracking
//
// Adapter tracks every GPU resource it creates (buffers, shader modules,
// bind group layouts, pipelines) in a map keyed by the opaque gpucore ID
// handed back to the caller, so Destroy* calls can translate back to the
// underlying hal handle. All maps are guarded by a single RWMutex; this is
// adequate because kernel dispatch already serializes through a
// gpucore.Context (see gpucore.NewThreadedDevice / NewCooperativeDevice).
//
// # Readback
//
// ReadBuffer stages a GPU-to-GPU copy into a MapRead buffer, submits it,
// waits on a fence, and maps the result — this is the one unavoidable
// GPU-CPU synchronization point in an otherwise async dispatch pipeline.
package wgpu
