//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/cvcore"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/types"
)

// DeviceInfo describes the GPU device an Acquire call selected.
type DeviceInfo struct {
	Name       string
	DeviceType types.DeviceType
	Backend    types.Backend
}

func (d *DeviceInfo) String() string {
	return fmt.Sprintf("%s (%s, %s)", d.Name, d.DeviceType, d.Backend)
}

// Acquire opens a Vulkan instance, selects the first discrete or integrated
// GPU adapter (falling back to whatever adapter is first enumerated), opens
// a logical device and its queue, and returns a ready-to-use Adapter plus
// the selected device's info. The returned release function destroys the
// device and the instance and must be called when the caller is done.
func Acquire() (*Adapter, *DeviceInfo, func(), error) {
	backend, ok := hal.GetBackend(types.BackendVulkan)
	if !ok {
		return nil, nil, nil, fmt.Errorf("wgpu: vulkan backend not available")
	}

	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("wgpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, nil, fmt.Errorf("wgpu: no GPU adapters found")
	}

	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == types.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == types.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	opened, err := selected.Adapter.Open(types.Features(0), types.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, nil, fmt.Errorf("wgpu: open device: %w", err)
	}

	info := &DeviceInfo{
		Name:       selected.Info.Name,
		DeviceType: selected.Info.DeviceType,
		Backend:    selected.Info.Backend,
	}
	cvcore.Logger().Info("gpucore: device acquired", "device", info.Name, "backend", info.Backend)

	limits := types.DefaultLimits()
	adapter := NewAdapter(opened.Device, opened.Queue, &limits)

	release := func() {
		opened.Device.Destroy()
		instance.Destroy()
	}

	return adapter, info, release, nil
}
