// Package cpu implements the CPU reference kernel library: every operation
// cvcore exposes has an implementation here, used directly under
// dispatch.Cpu and as the Auto-mode fallback when the GPU path is
// unavailable or fails to compile/dispatch.
//
// Kernels operate directly on matrix.Matrix byte buffers rather than
// through a generic per-pixel interface, following the teacher's
// internal/filter and internal/color packages, which operate on raw
// pixmap/row slices rather than boxed per-pixel values for speed. Border
// handling (reflect-101) and row-parallel dispatch are centralized in
// border.go and shared across every spatial-filter kernel.
package cpu
