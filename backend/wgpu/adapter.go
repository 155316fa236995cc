//go:build !nogpu

package wgpu

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/cvcore/gpucore"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/types"
)

// Adapter implements gpucore.GPUAdapter using gogpu/wgpu/hal directly,
// dispatching byte-addressable storage-buffer compute kernels (package gpu)
// rather than the render pipeline hal also exposes.
//
// Adapter is safe for concurrent use from multiple goroutines; all resource
// maps are protected by mu.
type Adapter struct {
	mu     sync.RWMutex
	device hal.Device
	queue  hal.Queue

	limits       types.Limits
	hasCompute   bool
	maxBufferSz  uint64
	maxWorkgroup [3]uint32

	nextID atomic.Uint64

	buffers          map[gpucore.BufferID]hal.Buffer
	textures         map[gpucore.TextureID]hal.Texture
	shaderModules    map[gpucore.ShaderModuleID]hal.ShaderModule
	computePipelines map[gpucore.ComputePipelineID]hal.ComputePipeline
	bindGroupLayouts map[gpucore.BindGroupLayoutID]hal.BindGroupLayout
	pipelineLayouts  map[gpucore.PipelineLayoutID]hal.PipelineLayout
	bindGroups       map[gpucore.BindGroupID]hal.BindGroup

	encoder    hal.CommandEncoder
	hasEncoder bool
}

var _ gpucore.GPUAdapter = (*Adapter)(nil)

// NewAdapter wraps an already-acquired device and queue (see Acquire) in a
// gpucore.GPUAdapter. If limits is nil, types.DefaultLimits() is used.
func NewAdapter(device hal.Device, queue hal.Queue, limits *types.Limits) *Adapter {
	var lim types.Limits
	if limits != nil {
		lim = *limits
	} else {
		lim = types.DefaultLimits()
	}

	a := &Adapter{
		device:           device,
		queue:            queue,
		limits:           lim,
		hasCompute:       true,
		maxBufferSz:      lim.MaxBufferSize,
		maxWorkgroup:     [3]uint32{lim.MaxComputeWorkgroupSizeX, lim.MaxComputeWorkgroupSizeY, lim.MaxComputeWorkgroupSizeZ},
		buffers:          make(map[gpucore.BufferID]hal.Buffer),
		textures:         make(map[gpucore.TextureID]hal.Texture),
		shaderModules:    make(map[gpucore.ShaderModuleID]hal.ShaderModule),
		computePipelines: make(map[gpucore.ComputePipelineID]hal.ComputePipeline),
		bindGroupLayouts: make(map[gpucore.BindGroupLayoutID]hal.BindGroupLayout),
		pipelineLayouts:  make(map[gpucore.PipelineLayoutID]hal.PipelineLayout),
		bindGroups:       make(map[gpucore.BindGroupID]hal.BindGroup),
	}
	a.nextID.Store(1)
	return a
}

func (a *Adapter) newID() uint64 {
	return a.nextID.Add(1) - 1
}

// === Capabilities ===

func (a *Adapter) SupportsCompute() bool        { return a.hasCompute }
func (a *Adapter) MaxWorkgroupSize() [3]uint32  { return a.maxWorkgroup }
func (a *Adapter) MaxBufferSize() uint64        { return a.maxBufferSz }

// === Shader Compilation ===

func (a *Adapter) CreateShaderModule(spirv []uint32, label string) (gpucore.ShaderModuleID, error) {
	if len(spirv) == 0 {
		return gpucore.InvalidID, fmt.Errorf("empty SPIR-V bytecode")
	}

	module, err := a.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("failed to create shader module: %w", err)
	}

	id := gpucore.ShaderModuleID(a.newID())
	a.mu.Lock()
	a.shaderModules[id] = module
	a.mu.Unlock()
	return id, nil
}

func (a *Adapter) DestroyShaderModule(id gpucore.ShaderModuleID) {
	a.mu.Lock()
	module, ok := a.shaderModules[id]
	if ok {
		delete(a.shaderModules, id)
	}
	a.mu.Unlock()
	if ok {
		a.device.DestroyShaderModule(module)
	}
}

// === Buffer Management ===

func (a *Adapter) CreateBuffer(size int, usage gpucore.BufferUsage) (gpucore.BufferID, error) {
	if size <= 0 {
		return gpucore.InvalidID, fmt.Errorf("buffer size must be positive")
	}

	buffer, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Size:  uint64(size),
		Usage: convertBufferUsage(usage),
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("failed to create buffer: %w", err)
	}

	id := gpucore.BufferID(a.newID())
	a.mu.Lock()
	a.buffers[id] = buffer
	a.mu.Unlock()
	return id, nil
}

func (a *Adapter) DestroyBuffer(id gpucore.BufferID) {
	a.mu.Lock()
	buffer, ok := a.buffers[id]
	if ok {
		delete(a.buffers, id)
	}
	a.mu.Unlock()
	if ok {
		a.device.DestroyBuffer(buffer)
	}
}

func (a *Adapter) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) {
	a.mu.RLock()
	buffer, ok := a.buffers[id]
	a.mu.RUnlock()
	if ok && len(data) > 0 {
		a.queue.WriteBuffer(buffer, offset, data)
	}
}

// ReadBuffer copies size bytes starting at offset out of buffer id via a
// mappable staging buffer, blocking until the copy completes.
func (a *Adapter) ReadBuffer(id gpucore.BufferID, offset, size uint64) ([]byte, error) {
	a.mu.RLock()
	buffer, ok := a.buffers[id]
	a.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("buffer %d not found", id)
	}

	staging, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label:            "cvcore-readback",
		Size:             size,
		Usage:            types.BufferUsageMapRead | types.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create staging buffer: %w", err)
	}
	defer a.device.DestroyBuffer(staging)

	encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "cvcore-readback-encoder"})
	if err != nil {
		return nil, fmt.Errorf("failed to create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("cvcore-readback"); err != nil {
		return nil, fmt.Errorf("failed to begin encoding: %w", err)
	}
	encoder.CopyBufferToBuffer(buffer, staging, []hal.BufferCopy{{SrcOffset: offset, DstOffset: 0, Size: size}})

	cmdBuffer, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("failed to end encoding: %w", err)
	}
	defer cmdBuffer.Destroy()

	fence, err := a.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("failed to create fence: %w", err)
	}
	defer a.device.DestroyFence(fence)

	if err := a.queue.Submit([]hal.CommandBuffer{cmdBuffer}, fence, 1); err != nil {
		return nil, fmt.Errorf("failed to submit commands: %w", err)
	}
	if _, err := a.device.Wait(fence, 1, 5_000_000_000); err != nil {
		return nil, fmt.Errorf("failed to wait for fence: %w", err)
	}

	mapped, err := a.device.MapBuffer(staging, 0, size, types.MapModeRead)
	if err != nil {
		return nil, fmt.Errorf("failed to map staging buffer: %w", err)
	}
	out := make([]byte, size)
	copy(out, mapped)
	a.device.UnmapBuffer(staging)
	return out, nil
}

// === Texture Management ===

func (a *Adapter) CreateTexture(width, height int, format gpucore.TextureFormat) (gpucore.TextureID, error) {
	if width <= 0 || height <= 0 {
		return gpucore.InvalidID, fmt.Errorf("texture dimensions must be positive")
	}

	texture, err := a.device.CreateTexture(&hal.TextureDescriptor{
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     types.TextureDimension2D,
		Format:        convertTextureFormat(format),
		Usage:         types.TextureUsageCopySrc | types.TextureUsageCopyDst | types.TextureUsageStorageBinding,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("failed to create texture: %w", err)
	}

	id := gpucore.TextureID(a.newID())
	a.mu.Lock()
	a.textures[id] = texture
	a.mu.Unlock()
	return id, nil
}

func (a *Adapter) DestroyTexture(id gpucore.TextureID) {
	a.mu.Lock()
	texture, ok := a.textures[id]
	if ok {
		delete(a.textures, id)
	}
	a.mu.Unlock()
	if ok {
		a.device.DestroyTexture(texture)
	}
}

func (a *Adapter) WriteTexture(id gpucore.TextureID, data []byte) {
	// cvcore never binds textures directly (every kernel reads/writes a
	// byte-addressable storage buffer, see package gpu's prelude), so
	// texture upload is unused by any in-tree kernel today.
	_ = id
	_ = data
}

func (a *Adapter) ReadTexture(id gpucore.TextureID) ([]byte, error) {
	return nil, fmt.Errorf("texture readback not supported: cvcore kernels use storage buffers")
}

// === Pipeline Management ===

func (a *Adapter) CreateBindGroupLayout(desc *gpucore.BindGroupLayoutDesc) (gpucore.BindGroupLayoutID, error) {
	if desc == nil {
		return gpucore.InvalidID, fmt.Errorf("nil bind group layout descriptor")
	}

	entries := make([]types.BindGroupLayoutEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		entries[i] = convertBindGroupLayoutEntry(e)
	}

	layout, err := a.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("failed to create bind group layout: %w", err)
	}

	id := gpucore.BindGroupLayoutID(a.newID())
	a.mu.Lock()
	a.bindGroupLayouts[id] = layout
	a.mu.Unlock()
	return id, nil
}

func (a *Adapter) DestroyBindGroupLayout(id gpucore.BindGroupLayoutID) {
	a.mu.Lock()
	layout, ok := a.bindGroupLayouts[id]
	if ok {
		delete(a.bindGroupLayouts, id)
	}
	a.mu.Unlock()
	if ok {
		a.device.DestroyBindGroupLayout(layout)
	}
}

func (a *Adapter) CreatePipelineLayout(layouts []gpucore.BindGroupLayoutID) (gpucore.PipelineLayoutID, error) {
	a.mu.RLock()
	halLayouts := make([]hal.BindGroupLayout, len(layouts))
	for i, id := range layouts {
		layout, ok := a.bindGroupLayouts[id]
		if !ok {
			a.mu.RUnlock()
			return gpucore.InvalidID, fmt.Errorf("bind group layout %d not found", id)
		}
		halLayouts[i] = layout
	}
	a.mu.RUnlock()

	pipelineLayout, err := a.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{BindGroupLayouts: halLayouts})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("failed to create pipeline layout: %w", err)
	}

	id := gpucore.PipelineLayoutID(a.newID())
	a.mu.Lock()
	a.pipelineLayouts[id] = pipelineLayout
	a.mu.Unlock()
	return id, nil
}

func (a *Adapter) DestroyPipelineLayout(id gpucore.PipelineLayoutID) {
	a.mu.Lock()
	layout, ok := a.pipelineLayouts[id]
	if ok {
		delete(a.pipelineLayouts, id)
	}
	a.mu.Unlock()
	if ok {
		a.device.DestroyPipelineLayout(layout)
	}
}

func (a *Adapter) CreateComputePipeline(desc *gpucore.ComputePipelineDesc) (gpucore.ComputePipelineID, error) {
	if desc == nil {
		return gpucore.InvalidID, fmt.Errorf("nil compute pipeline descriptor")
	}

	a.mu.RLock()
	layout, layoutOK := a.pipelineLayouts[desc.Layout]
	module, moduleOK := a.shaderModules[desc.ShaderModule]
	a.mu.RUnlock()

	if !layoutOK {
		return gpucore.InvalidID, fmt.Errorf("pipeline layout %d not found", desc.Layout)
	}
	if !moduleOK {
		return gpucore.InvalidID, fmt.Errorf("shader module %d not found", desc.ShaderModule)
	}

	pipeline, err := a.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  desc.Label,
		Layout: layout,
		Compute: hal.ComputeState{
			Module:     module,
			EntryPoint: desc.EntryPoint,
		},
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("failed to create compute pipeline: %w", err)
	}

	id := gpucore.ComputePipelineID(a.newID())
	a.mu.Lock()
	a.computePipelines[id] = pipeline
	a.mu.Unlock()
	return id, nil
}

func (a *Adapter) DestroyComputePipeline(id gpucore.ComputePipelineID) {
	a.mu.Lock()
	pipeline, ok := a.computePipelines[id]
	if ok {
		delete(a.computePipelines, id)
	}
	a.mu.Unlock()
	if ok {
		a.device.DestroyComputePipeline(pipeline)
	}
}

func (a *Adapter) CreateBindGroup(layout gpucore.BindGroupLayoutID, entries []gpucore.BindGroupEntry) (gpucore.BindGroupID, error) {
	a.mu.RLock()
	halLayout, ok := a.bindGroupLayouts[layout]
	if !ok {
		a.mu.RUnlock()
		return gpucore.InvalidID, fmt.Errorf("bind group layout %d not found", layout)
	}

	halEntries := make([]types.BindGroupEntry, len(entries))
	for i, e := range entries {
		halEntry, err := a.convertBindGroupEntry(e)
		if err != nil {
			a.mu.RUnlock()
			return gpucore.InvalidID, fmt.Errorf("bind group entry %d: %w", e.Binding, err)
		}
		halEntries[i] = halEntry
	}
	a.mu.RUnlock()

	bindGroup, err := a.device.CreateBindGroup(&hal.BindGroupDescriptor{Layout: halLayout, Entries: halEntries})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("failed to create bind group: %w", err)
	}

	id := gpucore.BindGroupID(a.newID())
	a.mu.Lock()
	a.bindGroups[id] = bindGroup
	a.mu.Unlock()
	return id, nil
}

func (a *Adapter) DestroyBindGroup(id gpucore.BindGroupID) {
	a.mu.Lock()
	group, ok := a.bindGroups[id]
	if ok {
		delete(a.bindGroups, id)
	}
	a.mu.Unlock()
	if ok {
		a.device.DestroyBindGroup(group)
	}
}

// === Command Recording and Execution ===

func (a *Adapter) BeginComputePass() gpucore.ComputePassEncoder {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.hasEncoder {
		encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "cvcore-compute-encoder"})
		if err != nil {
			return &computePassEncoder{adapter: a}
		}
		if err := encoder.BeginEncoding("cvcore-compute-pass"); err != nil {
			return &computePassEncoder{adapter: a}
		}
		a.encoder = encoder
		a.hasEncoder = true
	}

	pass := a.encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "compute"})
	return &computePassEncoder{adapter: a, pass: pass}
}

func (a *Adapter) Submit() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.hasEncoder || a.encoder == nil {
		return
	}

	cmdBuffer, err := a.encoder.EndEncoding()
	if err != nil {
		a.encoder = nil
		a.hasEncoder = false
		return
	}

	_ = a.queue.Submit([]hal.CommandBuffer{cmdBuffer}, nil, 0)
	cmdBuffer.Destroy()
	a.encoder = nil
	a.hasEncoder = false
}

func (a *Adapter) WaitIdle() {
	a.Submit()

	fence, err := a.device.CreateFence()
	if err != nil {
		return
	}
	defer a.device.DestroyFence(fence)

	if err := a.queue.Submit(nil, fence, 1); err != nil {
		return
	}
	_, _ = a.device.Wait(fence, 1, 5_000_000_000)
}

// === Type Conversion Helpers ===

func convertBufferUsage(usage gpucore.BufferUsage) types.BufferUsage {
	var result types.BufferUsage
	if usage&gpucore.BufferUsageMapRead != 0 {
		result |= types.BufferUsageMapRead
	}
	if usage&gpucore.BufferUsageMapWrite != 0 {
		result |= types.BufferUsageMapWrite
	}
	if usage&gpucore.BufferUsageCopySrc != 0 {
		result |= types.BufferUsageCopySrc
	}
	if usage&gpucore.BufferUsageCopyDst != 0 {
		result |= types.BufferUsageCopyDst
	}
	if usage&gpucore.BufferUsageUniform != 0 {
		result |= types.BufferUsageUniform
	}
	if usage&gpucore.BufferUsageStorage != 0 {
		result |= types.BufferUsageStorage
	}
	return result
}

func convertTextureFormat(format gpucore.TextureFormat) types.TextureFormat {
	switch format {
	case gpucore.TextureFormatR8Unorm:
		return types.TextureFormatR8Unorm
	case gpucore.TextureFormatR32Float:
		return types.TextureFormatR32Float
	case gpucore.TextureFormatRGBA8Unorm:
		return types.TextureFormatRGBA8Unorm
	default:
		return types.TextureFormatRGBA8Unorm
	}
}

func convertBindGroupLayoutEntry(entry gpucore.BindGroupLayoutEntry) types.BindGroupLayoutEntry {
	result := types.BindGroupLayoutEntry{
		Binding:    entry.Binding,
		Visibility: types.ShaderStageCompute,
	}

	switch entry.Type {
	case gpucore.BindingTypeUniformBuffer:
		result.Buffer = &types.BufferBindingLayout{Type: types.BufferBindingTypeUniform, MinBindingSize: entry.MinBindingSize}
	case gpucore.BindingTypeStorageBuffer:
		result.Buffer = &types.BufferBindingLayout{Type: types.BufferBindingTypeStorage, MinBindingSize: entry.MinBindingSize}
	case gpucore.BindingTypeReadOnlyStorageBuffer:
		result.Buffer = &types.BufferBindingLayout{Type: types.BufferBindingTypeReadOnlyStorage, MinBindingSize: entry.MinBindingSize}
	}

	return result
}

// convertBindGroupEntry must be called with mu held (read lock suffices).
func (a *Adapter) convertBindGroupEntry(entry gpucore.BindGroupEntry) (types.BindGroupEntry, error) {
	result := types.BindGroupEntry{Binding: entry.Binding}

	if entry.Buffer != gpucore.InvalidID {
		if _, ok := a.buffers[entry.Buffer]; !ok {
			return result, fmt.Errorf("buffer %d not found", entry.Buffer)
		}
		result.Resource = types.BufferBinding{
			Buffer: types.BufferHandle(entry.Buffer),
			Offset: entry.Offset,
			Size:   entry.Size,
		}
	}

	return result, nil
}

// === Compute Pass Encoder ===

type computePassEncoder struct {
	adapter *Adapter
	pass    hal.ComputePassEncoder
}

func (e *computePassEncoder) SetPipeline(pipeline gpucore.ComputePipelineID) {
	if e.pass == nil {
		return
	}
	e.adapter.mu.RLock()
	halPipeline, ok := e.adapter.computePipelines[pipeline]
	e.adapter.mu.RUnlock()
	if ok {
		e.pass.SetPipeline(halPipeline)
	}
}

func (e *computePassEncoder) SetBindGroup(index uint32, group gpucore.BindGroupID) {
	if e.pass == nil {
		return
	}
	e.adapter.mu.RLock()
	halGroup, ok := e.adapter.bindGroups[group]
	e.adapter.mu.RUnlock()
	if ok {
		e.pass.SetBindGroup(index, halGroup, nil)
	}
}

func (e *computePassEncoder) Dispatch(x, y, z uint32) {
	if e.pass == nil {
		return
	}
	e.pass.Dispatch(x, y, z)
}

func (e *computePassEncoder) End() {
	if e.pass == nil {
		return
	}
	e.pass.End()
}
