// Package gpu implements the GPU compute kernel wrappers: one file per
// cvcore operation that has a GPU path, each following the same
// eight-step shape (resolve context, get-or-compile its pipeline from the
// shared cache, allocate/write input buffers, build a bind group, encode
// a compute pass, submit, read back, wrap the result as a matrix.Matrix)
// grounded on the teacher's internal/gpu/sdf_gpu.go dispatch sequence and
// internal/native/shader_helper.go's compile/resource-cleanup pattern.
//
// Only operations named in gpucore.EagerOps currently have a GPU kernel;
// every other cvcore operation runs CPU-only until a shader is added here
// (dispatch.Do already treats a nil Gpu field as "CPU only", so adding a
// GPU kernel later never requires touching the CPU implementation or call
// sites).
package gpu
