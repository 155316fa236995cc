package gpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/cvcore/cverr"
	"github.com/gogpu/cvcore/gpucore"
	"github.com/gogpu/cvcore/matrix"
)

//go:embed shaders/prelude.wgsl
var preludeSource string

//go:embed shaders/threshold.wgsl
var thresholdSource string

// ThresholdParams mirrors the ThresholdParams struct in threshold.wgsl
// exactly: eight little-endian u32 words, satisfying WGSL's uniform
// address-space rule that struct size be a multiple of 16 bytes.
type ThresholdParams struct {
	Width, Height uint32
	Thresh, MaxVal uint32
	ThresholdType  uint32
}

// Encode implements gpucore.UniformParams.
func (p ThresholdParams) Encode(dst []byte) []byte {
	var buf [32]byte
	binary.LittleEndian.PutUint32(buf[0:4], p.Width)
	binary.LittleEndian.PutUint32(buf[4:8], p.Height)
	binary.LittleEndian.PutUint32(buf[8:12], p.Thresh)
	binary.LittleEndian.PutUint32(buf[12:16], p.MaxVal)
	binary.LittleEndian.PutUint32(buf[16:20], p.ThresholdType)
	return append(dst, buf[:]...)
}

const thresholdEntryPoint = "threshold_main"

func compileThreshold(adapter gpucore.GPUAdapter) (*gpucore.Program, error) {
	var program *gpucore.Program
	err := func() error {
		wgsl := gpucore.AssembleShader(preludeSource, thresholdSource)
		spirv, err := gpucore.CompileToSPIRV(wgsl)
		if err != nil {
			return cverr.Wrap(cverr.GpuCompile, "gpu.Threshold", "compiling threshold shader", err)
		}

		module, err := adapter.CreateShaderModule(spirv, "threshold")
		if err != nil {
			return cverr.Wrap(cverr.GpuCompile, "gpu.Threshold", "creating shader module", err)
		}

		groupLayout, err := adapter.CreateBindGroupLayout(&gpucore.BindGroupLayoutDesc{
			Label: "threshold_bind_group_layout",
			Entries: []gpucore.BindGroupLayoutEntry{
				{Binding: 0, Type: gpucore.BindingTypeReadOnlyStorageBuffer},
				{Binding: 1, Type: gpucore.BindingTypeStorageBuffer},
				{Binding: 2, Type: gpucore.BindingTypeUniformBuffer, MinBindingSize: 32},
			},
		})
		if err != nil {
			return cverr.Wrap(cverr.GpuCompile, "gpu.Threshold", "creating bind group layout", err)
		}

		layout, err := adapter.CreatePipelineLayout([]gpucore.BindGroupLayoutID{groupLayout})
		if err != nil {
			return cverr.Wrap(cverr.GpuCompile, "gpu.Threshold", "creating pipeline layout", err)
		}

		pipeline, err := adapter.CreateComputePipeline(&gpucore.ComputePipelineDesc{
			Label:        "threshold_pipeline",
			Layout:       layout,
			ShaderModule: module,
			EntryPoint:   thresholdEntryPoint,
		})
		if err != nil {
			return cverr.Wrap(cverr.GpuCompile, "gpu.Threshold", "creating compute pipeline", err)
		}

		program = &gpucore.Program{
			Pipeline:    pipeline,
			LayoutID:    layout,
			GroupLayout: groupLayout,
			EntryPoint:  thresholdEntryPoint,
		}
		return nil
	}()
	return program, err
}

// Threshold runs a fixed-level threshold on the GPU, matching cpu.Threshold's
// semantics for a single-channel U8 matrix. ttype must be one of the five
// cpu.ThresholdType values (the shader switches on the same ordinal).
func Threshold(ctx gpucore.Context, src *matrix.Matrix, thresh, maxVal float64, ttype int) (*matrix.Matrix, error) {
	if src.Channels() != 1 || src.Depth() != matrix.U8 {
		return nil, cverr.New(cverr.UnsupportedChannels, "gpu.Threshold", "gpu.Threshold requires a single-channel U8 matrix")
	}

	var result *matrix.Matrix
	err := ctx.Use(func(adapter gpucore.GPUAdapter, cache *gpucore.PipelineCache) error {
		key := gpucore.ProgramKey{Op: "threshold", Variant: "default"}
		program, err := cache.GetOrCompile(key, func(gpucore.ProgramKey) (*gpucore.Program, error) {
			return compileThreshold(adapter)
		})
		if err != nil {
			return err
		}

		rows, cols := src.Rows(), src.Cols()
		n := rows * cols

		srcBuf, err := adapter.CreateBuffer(n, gpucore.BufferUsageStorage|gpucore.BufferUsageCopyDst)
		if err != nil {
			return cverr.Wrap(cverr.GpuDispatch, "gpu.Threshold", "allocating src buffer", err)
		}
		defer adapter.DestroyBuffer(srcBuf)

		dstBuf, err := adapter.CreateBuffer(n, gpucore.BufferUsageStorage|gpucore.BufferUsageCopySrc)
		if err != nil {
			return cverr.Wrap(cverr.GpuDispatch, "gpu.Threshold", "allocating dst buffer", err)
		}
		defer adapter.DestroyBuffer(dstBuf)

		adapter.WriteBuffer(srcBuf, 0, src.Data())

		params := ThresholdParams{
			Width: uint32(cols), Height: uint32(rows),
			Thresh: uint32(thresh), MaxVal: uint32(maxVal), ThresholdType: uint32(ttype),
		}
		uniformBuf, err := adapter.CreateBuffer(32, gpucore.BufferUsageUniform|gpucore.BufferUsageCopyDst)
		if err != nil {
			return cverr.Wrap(cverr.GpuDispatch, "gpu.Threshold", "allocating uniform buffer", err)
		}
		defer adapter.DestroyBuffer(uniformBuf)
		adapter.WriteBuffer(uniformBuf, 0, params.Encode(nil))

		bindGroup, err := adapter.CreateBindGroup(program.GroupLayout, []gpucore.BindGroupEntry{
			{Binding: 0, Buffer: srcBuf, Size: uint64(n)},
			{Binding: 1, Buffer: dstBuf, Size: uint64(n)},
			{Binding: 2, Buffer: uniformBuf, Size: 32},
		})
		if err != nil {
			return cverr.Wrap(cverr.GpuDispatch, "gpu.Threshold", "creating bind group", err)
		}
		defer adapter.DestroyBindGroup(bindGroup)

		pass := adapter.BeginComputePass()
		pass.SetPipeline(program.Pipeline)
		pass.SetBindGroup(0, bindGroup)
		pass.Dispatch(
			gpucore.DispatchSize(cols, gpucore.WorkgroupSize),
			gpucore.DispatchSize(rows, gpucore.WorkgroupSize),
			1,
		)
		pass.End()

		adapter.Submit()
		adapter.WaitIdle()

		data, err := adapter.ReadBuffer(dstBuf, 0, uint64(n))
		if err != nil {
			return cverr.Wrap(cverr.GpuDispatch, "gpu.Threshold", "reading back result", err)
		}

		out, err := matrix.FromSlice(data, rows, cols, 1, matrix.U8)
		if err != nil {
			return cverr.Wrap(cverr.Internal, "gpu.Threshold", fmt.Sprintf("wrapping %d-byte result", len(data)), err)
		}
		result = out
		return nil
	})
	return result, err
}
