package gpucore

// Resource IDs
//
// These opaque IDs represent GPU resources. Each adapter implementation
// maintains a mapping between IDs and actual backend resources.
// IDs are uint64 to accommodate various backend handle sizes.

// BufferID is an opaque handle to a GPU buffer.
type BufferID uint64

// TextureID is an opaque handle to a GPU texture.
type TextureID uint64

// ShaderModuleID is an opaque handle to a compiled shader module.
type ShaderModuleID uint64

// ComputePipelineID is an opaque handle to a compute pipeline.
type ComputePipelineID uint64

// BindGroupLayoutID is an opaque handle to a bind group layout.
type BindGroupLayoutID uint64

// BindGroupID is an opaque handle to a bind group.
type BindGroupID uint64

// PipelineLayoutID is an opaque handle to a pipeline layout.
type PipelineLayoutID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// BufferUsage is a bitmask specifying how a buffer will be used.
type BufferUsage uint32

// Buffer usage flags.
const (
	// BufferUsageMapRead indicates the buffer can be mapped for reading.
	BufferUsageMapRead BufferUsage = 1 << 0

	// BufferUsageMapWrite indicates the buffer can be mapped for writing.
	BufferUsageMapWrite BufferUsage = 1 << 1

	// BufferUsageCopySrc indicates the buffer can be used as a copy source.
	BufferUsageCopySrc BufferUsage = 1 << 2

	// BufferUsageCopyDst indicates the buffer can be used as a copy destination.
	BufferUsageCopyDst BufferUsage = 1 << 3

	// BufferUsageUniform indicates the buffer can be used as a uniform buffer.
	BufferUsageUniform BufferUsage = 1 << 6

	// BufferUsageStorage indicates the buffer can be used as a storage buffer.
	BufferUsageStorage BufferUsage = 1 << 7
)

// TextureFormat specifies the format of texture data.
type TextureFormat uint32

// Texture formats. cvcore only ever reads/writes raw byte buffers through
// storage bindings (see prelude read_byte/write_byte in package gpu), but
// adapters that back onto a texture-based HAL still need format tags for
// staging textures used during upload/readback of non-1-byte depths.
const (
	// TextureFormatR8Unorm is 8-bit single channel, normalized unsigned integer.
	TextureFormatR8Unorm TextureFormat = iota + 1

	// TextureFormatR32Float is 32-bit single channel, floating point.
	TextureFormatR32Float

	// TextureFormatRGBA8Unorm is 8-bit RGBA, normalized unsigned integer.
	TextureFormatRGBA8Unorm
)

// TextureUsage is a bitmask specifying how a texture will be used.
type TextureUsage uint32

// Texture usage flags.
const (
	// TextureUsageCopySrc indicates the texture can be used as a copy source.
	TextureUsageCopySrc TextureUsage = 1 << 0

	// TextureUsageCopyDst indicates the texture can be used as a copy destination.
	TextureUsageCopyDst TextureUsage = 1 << 1

	// TextureUsageStorageBinding indicates the texture can be bound as a storage texture.
	TextureUsageStorageBinding TextureUsage = 1 << 3
)

// BindingType specifies the type of a shader binding.
type BindingType uint32

// Binding types.
const (
	// BindingTypeUniformBuffer is a uniform buffer binding.
	BindingTypeUniformBuffer BindingType = iota + 1

	// BindingTypeStorageBuffer is a storage buffer binding (read-write).
	BindingTypeStorageBuffer

	// BindingTypeReadOnlyStorageBuffer is a read-only storage buffer binding.
	BindingTypeReadOnlyStorageBuffer
)

// ComputePipelineDesc describes a compute pipeline.
type ComputePipelineDesc struct {
	// Label is an optional debug label.
	Label string

	// Layout is the pipeline layout.
	Layout PipelineLayoutID

	// ShaderModule contains the compute shader.
	ShaderModule ShaderModuleID

	// EntryPoint is the name of the shader entry point function.
	EntryPoint string
}

// BindGroupLayoutDesc describes a bind group layout.
type BindGroupLayoutDesc struct {
	// Label is an optional debug label.
	Label string

	// Entries defines the bindings in this layout.
	Entries []BindGroupLayoutEntry
}

// BindGroupLayoutEntry describes a single binding in a bind group layout.
type BindGroupLayoutEntry struct {
	// Binding is the binding index.
	Binding uint32

	// Type is the type of resource bound at this index.
	Type BindingType

	// MinBindingSize is the minimum buffer size for buffer bindings.
	// Set to 0 for non-buffer bindings.
	MinBindingSize uint64
}

// BindGroupEntry describes a single binding in a bind group.
type BindGroupEntry struct {
	// Binding is the binding index.
	Binding uint32

	// Buffer is the buffer to bind (for buffer bindings).
	Buffer BufferID

	// Offset is the offset into the buffer.
	Offset uint64

	// Size is the size of the buffer range to bind.
	// Use 0 to bind the entire buffer from offset.
	Size uint64
}

// BindGroupDesc describes a bind group.
type BindGroupDesc struct {
	// Label is an optional debug label.
	Label string

	// Layout is the bind group layout.
	Layout BindGroupLayoutID

	// Entries are the resource bindings.
	Entries []BindGroupEntry
}

// UniformParams is the interface every per-kernel uniform parameter struct
// implements. The encoded size is not checked against MaxUniformSize before
// upload.
type UniformParams interface {
	// Encode appends the struct's little-endian, 4-byte-aligned encoding
	// to dst and returns the result.
	Encode(dst []byte) []byte
}

// WorkgroupSize is the fixed 2D compute workgroup tile size used by every
// image kernel (@workgroup_size(16, 16, 1) in WGSL). 1D scan-style kernels
// (histogram, reductions) use WorkgroupSize1D instead.
const WorkgroupSize = 16

// WorkgroupSize1D is the workgroup size for linear (non-tiled) dispatches.
const WorkgroupSize1D = 256

// MaxUniformSize is the largest encoded size permitted for a single kernel's
// uniform parameter block, matching the uniform layout rule in the spec.
const MaxUniformSize = 256

// DispatchSize computes the number of workgroups needed to cover an extent
// of n pixels/elements given a workgroup size of size, i.e. ceil(n/size).
func DispatchSize(n, size int) uint32 {
	if n <= 0 {
		return 0
	}
	return uint32((n + size - 1) / size)
}
