package gpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/cvcore/cverr"
	"github.com/gogpu/cvcore/gpucore"
	"github.com/gogpu/cvcore/matrix"
)

//go:embed shaders/resize.wgsl
var resizeSource string

// ResizeParams mirrors the ResizeParams struct in resize.wgsl.
type ResizeParams struct {
	SrcWidth, SrcHeight uint32
	DstWidth, DstHeight uint32
	Mode                uint32
}

// Encode implements gpucore.UniformParams.
func (p ResizeParams) Encode(dst []byte) []byte {
	var buf [32]byte
	binary.LittleEndian.PutUint32(buf[0:4], p.SrcWidth)
	binary.LittleEndian.PutUint32(buf[4:8], p.SrcHeight)
	binary.LittleEndian.PutUint32(buf[8:12], p.DstWidth)
	binary.LittleEndian.PutUint32(buf[12:16], p.DstHeight)
	binary.LittleEndian.PutUint32(buf[16:20], p.Mode)
	return append(dst, buf[:]...)
}

const resizeEntryPoint = "resize_main"

func compileResize(adapter gpucore.GPUAdapter) (*gpucore.Program, error) {
	var program *gpucore.Program
	err := func() error {
		wgsl := gpucore.AssembleShader(preludeSource, resizeSource)
		spirv, err := gpucore.CompileToSPIRV(wgsl)
		if err != nil {
			return cverr.Wrap(cverr.GpuCompile, "gpu.Resize", "compiling resize shader", err)
		}

		module, err := adapter.CreateShaderModule(spirv, "resize")
		if err != nil {
			return cverr.Wrap(cverr.GpuCompile, "gpu.Resize", "creating shader module", err)
		}

		groupLayout, err := adapter.CreateBindGroupLayout(&gpucore.BindGroupLayoutDesc{
			Label: "resize_bind_group_layout",
			Entries: []gpucore.BindGroupLayoutEntry{
				{Binding: 0, Type: gpucore.BindingTypeReadOnlyStorageBuffer},
				{Binding: 1, Type: gpucore.BindingTypeStorageBuffer},
				{Binding: 2, Type: gpucore.BindingTypeUniformBuffer, MinBindingSize: 32},
			},
		})
		if err != nil {
			return cverr.Wrap(cverr.GpuCompile, "gpu.Resize", "creating bind group layout", err)
		}

		layout, err := adapter.CreatePipelineLayout([]gpucore.BindGroupLayoutID{groupLayout})
		if err != nil {
			return cverr.Wrap(cverr.GpuCompile, "gpu.Resize", "creating pipeline layout", err)
		}

		pipeline, err := adapter.CreateComputePipeline(&gpucore.ComputePipelineDesc{
			Label:        "resize_pipeline",
			Layout:       layout,
			ShaderModule: module,
			EntryPoint:   resizeEntryPoint,
		})
		if err != nil {
			return cverr.Wrap(cverr.GpuCompile, "gpu.Resize", "creating compute pipeline", err)
		}

		program = &gpucore.Program{
			Pipeline:    pipeline,
			LayoutID:    layout,
			GroupLayout: groupLayout,
			EntryPoint:  resizeEntryPoint,
		}
		return nil
	}()
	return program, err
}

// Resize runs nearest/bilinear resampling on the GPU for a single-channel
// U8 matrix, matching cpu.Resize's semantics. mode must be one of the two
// cpu.InterpolationMode values (the shader switches on the same ordinal).
func Resize(ctx gpucore.Context, src *matrix.Matrix, size matrix.Size, mode int) (*matrix.Matrix, error) {
	if src.Channels() != 1 || src.Depth() != matrix.U8 {
		return nil, cverr.New(cverr.UnsupportedChannels, "gpu.Resize", "gpu.Resize requires a single-channel U8 matrix")
	}
	if size.Width <= 0 || size.Height <= 0 {
		return nil, cverr.New(cverr.InvalidInput, "gpu.Resize", "target size must be positive")
	}

	var result *matrix.Matrix
	err := ctx.Use(func(adapter gpucore.GPUAdapter, cache *gpucore.PipelineCache) error {
		key := gpucore.ProgramKey{Op: "resize", Variant: "default"}
		program, err := cache.GetOrCompile(key, func(gpucore.ProgramKey) (*gpucore.Program, error) {
			return compileResize(adapter)
		})
		if err != nil {
			return err
		}

		srcRows, srcCols := src.Rows(), src.Cols()
		dstRows, dstCols := size.Height, size.Width
		srcN := srcRows * srcCols
		dstN := dstRows * dstCols

		srcBuf, err := adapter.CreateBuffer(srcN, gpucore.BufferUsageStorage|gpucore.BufferUsageCopyDst)
		if err != nil {
			return cverr.Wrap(cverr.GpuDispatch, "gpu.Resize", "allocating src buffer", err)
		}
		defer adapter.DestroyBuffer(srcBuf)

		dstBuf, err := adapter.CreateBuffer(dstN, gpucore.BufferUsageStorage|gpucore.BufferUsageCopySrc)
		if err != nil {
			return cverr.Wrap(cverr.GpuDispatch, "gpu.Resize", "allocating dst buffer", err)
		}
		defer adapter.DestroyBuffer(dstBuf)

		adapter.WriteBuffer(srcBuf, 0, src.Data())

		params := ResizeParams{
			SrcWidth: uint32(srcCols), SrcHeight: uint32(srcRows),
			DstWidth: uint32(dstCols), DstHeight: uint32(dstRows),
			Mode: uint32(mode),
		}
		uniformBuf, err := adapter.CreateBuffer(32, gpucore.BufferUsageUniform|gpucore.BufferUsageCopyDst)
		if err != nil {
			return cverr.Wrap(cverr.GpuDispatch, "gpu.Resize", "allocating uniform buffer", err)
		}
		defer adapter.DestroyBuffer(uniformBuf)
		adapter.WriteBuffer(uniformBuf, 0, params.Encode(nil))

		bindGroup, err := adapter.CreateBindGroup(program.GroupLayout, []gpucore.BindGroupEntry{
			{Binding: 0, Buffer: srcBuf, Size: uint64(srcN)},
			{Binding: 1, Buffer: dstBuf, Size: uint64(dstN)},
			{Binding: 2, Buffer: uniformBuf, Size: 32},
		})
		if err != nil {
			return cverr.Wrap(cverr.GpuDispatch, "gpu.Resize", "creating bind group", err)
		}
		defer adapter.DestroyBindGroup(bindGroup)

		pass := adapter.BeginComputePass()
		pass.SetPipeline(program.Pipeline)
		pass.SetBindGroup(0, bindGroup)
		pass.Dispatch(
			gpucore.DispatchSize(dstCols, gpucore.WorkgroupSize),
			gpucore.DispatchSize(dstRows, gpucore.WorkgroupSize),
			1,
		)
		pass.End()

		adapter.Submit()
		adapter.WaitIdle()

		data, err := adapter.ReadBuffer(dstBuf, 0, uint64(dstN))
		if err != nil {
			return cverr.Wrap(cverr.GpuDispatch, "gpu.Resize", "reading back result", err)
		}

		out, err := matrix.FromSlice(data, dstRows, dstCols, 1, matrix.U8)
		if err != nil {
			return cverr.Wrap(cverr.Internal, "gpu.Resize", fmt.Sprintf("wrapping %d-byte result", len(data)), err)
		}
		result = out
		return nil
	})
	return result, err
}
