// Package gpu opens wgpu HAL devices for building gfxhal pipelines.
package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// ErrNoGPU is returned when no usable adapter is found.
var ErrNoGPU = errors.New("gpu: no adapter available")

// GPU is an open HAL device and the instance that owns it.
type GPU struct {
	Instance hal.Instance
	Device   hal.Device
	Queue    hal.Queue

	// Name is the adapter name reported by the driver.
	Name string
}

// OpenNoop opens a device on the noop backend, which accepts every object
// without hardware.
func OpenNoop() (*GPU, error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("gpu: create noop instance: %w", err)
	}
	return open(instance)
}

// open picks the first discrete or integrated adapter of instance, falling
// back to the first adapter, and opens it with default limits.
func open(instance hal.Instance) (*GPU, error) {
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoGPU
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open device: %w", err)
	}
	return &GPU{
		Instance: instance,
		Device:   openDev.Device,
		Queue:    openDev.Queue,
		Name:     selected.Info.Name,
	}, nil
}

// Close destroys the device and the instance.
func (g *GPU) Close() {
	if g.Device != nil {
		g.Device.Destroy()
		g.Device = nil
	}
	if g.Instance != nil {
		g.Instance.Destroy()
		g.Instance = nil
	}
	g.Queue = nil
}
