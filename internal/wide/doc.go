// Package wide provides SIMD-friendly wide types for batch pixel processing.
//
// This package implements wide types (U16x16, F32x8) that are designed to enable
// Go compiler auto-vectorization. By using fixed-size arrays and simple loops,
// these types allow the compiler to generate SIMD instructions on supported
// architectures (SSE, AVX, NEON).
//
// # Wide Types
//
// U16x16: 16 uint16 values for integer operations (alpha blending, color channels,
// used by cpu.Add/Subtract/AbsDiff/Multiply/Min/Max via u8Binary).
// F32x8: 8 float32 values for floating-point operations (cpu.Sqrt's F32 fast path).
//
// # Design Philosophy
//
//   - Use simple loops over fixed-size arrays for auto-vectorization
//   - Avoid unsafe and assembly - rely on compiler optimization
//   - Keep functions small and inlineable
//   - Provide benchmarks to verify SIMD performance gains
package wide
