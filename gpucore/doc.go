// Package gpucore provides the shared GPU abstractions used by package gpu's
// compute kernels.
//
// This package defines the [GPUAdapter] interface, which abstracts over
// different GPU backend implementations so the same kernel wrappers work
// against any of them. The module ships one implementation, gogpu/wgpu
// (Pure Go WebGPU via HAL), in package backend/wgpu.
//
// # Device lifecycle
//
// A [Context] owns a [GPUAdapter] and a [PipelineCache]. Two variants are
// provided:
//
//   - [NewThreadedDevice] wraps the adapter in a mutex, safe to call
//     [Context.Use] from any goroutine.
//   - [NewCooperativeDevice] confines use to one caller at a time without
//     blocking; an overlapping call returns an error instead of waiting.
//     This is the variant the js/wasm foreign-surface binding uses, since a
//     syscall/js GPU handle is not safely shareable across goroutines.
//
// # Pipeline cache
//
// [PipelineCache] maps a [ProgramKey] (kernel name plus variant) to a
// compiled [Program]. [PipelineCache.PrecompileEager] compiles a fixed set
// of kernels ([EagerOps]) up front; no code in this module calls it, and
// device acquisition does not, so by default every kernel compiles lazily
// on first use and is cached for the adapter's lifetime.
//
// # Resource management
//
// GPU resources are managed via opaque IDs ([BufferID], [TextureID], etc).
// The [GPUAdapter] interface provides creation and destruction methods for
// each resource type; adapters track the mapping between IDs and actual GPU
// resources.
package gpucore
