package pipeline

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"

	"github.com/gogpu/gfxhal/internal/cache"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// ErrNoHALDevice is returned when a provider does not expose a hal.Device.
var ErrNoHALDevice = errors.New("pipeline: provider does not expose a HAL device")

// modules is shared by every HALDevice: each family's WGSL compiles once per
// process.
var modules = cache.New(8 * int(KindCount))

// HALDevice builds compute pipelines on a wgpu HAL device. WGSL binaries are
// compiled to SPIR-V once and cached by source content; the placement block
// holds the SPIR-V words the shader module is created from.
type HALDevice struct {
	device  hal.Device
	modules *cache.Cache
}

// NewHALDevice wraps device.
func NewHALDevice(device hal.Device) *HALDevice {
	return &HALDevice{device: device, modules: modules}
}

// NewHALDeviceFromProvider wraps the HAL device of a shared GPU context. The
// provider must implement HalDevice() any returning a hal.Device.
func NewHALDeviceFromProvider(provider gpucontext.DeviceProvider) (*HALDevice, error) {
	type halProvider interface {
		HalDevice() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALDevice
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice returned %T", ErrNoHALDevice, hp.HalDevice())
	}
	return NewHALDevice(device), nil
}

// compile returns the SPIR-V module for b.
func (d *HALDevice) compile(b *Binary) ([]byte, error) {
	if b.IsSPIRV() {
		return b.Code, nil
	}
	return d.modules.GetOrCompile(cache.KeyOf(b.Code), func() ([]byte, error) {
		code, err := naga.Compile(string(b.Code))
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", b.Label, err)
		}
		if len(code)%4 != 0 {
			return nil, fmt.Errorf("compile %s: SPIR-V size %d is not a multiple of 4", b.Label, len(code))
		}
		return code, nil
	})
}

// PipelineSize returns the size of b's SPIR-V module.
func (d *HALDevice) PipelineSize(b *Binary) (int, error) {
	code, err := d.compile(b)
	if err != nil {
		return 0, err
	}
	return len(code), nil
}

// CreatePipeline copies b's SPIR-V into mem and builds the shader module,
// bind group layout, pipeline layout and compute pipeline. Objects created
// before a failure are destroyed.
func (d *HALDevice) CreatePipeline(b *Binary, mem []byte) (Handle, error) {
	code, err := d.compile(b)
	if err != nil {
		return nil, err
	}
	if len(mem) < len(code) {
		return nil, fmt.Errorf("%s: placement block holds %d bytes, need %d", b.Label, len(mem), len(code))
	}
	copy(mem, code)

	p := &halPipeline{device: d.device}
	p.module, err = d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  b.Label,
		Source: hal.ShaderSource{SPIRV: spirvWords(mem[:len(code)])},
	})
	if err != nil {
		return nil, fmt.Errorf("create shader module %s: %w", b.Label, err)
	}

	p.bgLayout, err = d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   b.Label + "_bgl",
		Entries: layoutEntries(b.Layout),
	})
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("create bind group layout %s: %w", b.Label, err)
	}

	p.layout, err = d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            b.Label + "_pl",
		BindGroupLayouts: []hal.BindGroupLayout{p.bgLayout},
	})
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("create pipeline layout %s: %w", b.Label, err)
	}

	entry := b.EntryPoint
	if entry == "" {
		entry = "main"
	}
	p.pipeline, err = d.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  b.Label,
		Layout: p.layout,
		Compute: hal.ComputeState{
			Module:     p.module,
			EntryPoint: entry,
		},
	})
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("create compute pipeline %s: %w", b.Label, err)
	}
	return p, nil
}

// halPipeline owns the HAL objects of one compute pipeline.
type halPipeline struct {
	device   hal.Device
	module   hal.ShaderModule
	bgLayout hal.BindGroupLayout
	layout   hal.PipelineLayout
	pipeline hal.ComputePipeline
}

// Pipeline returns the compute pipeline.
func (p *halPipeline) Pipeline() hal.ComputePipeline { return p.pipeline }

// Destroy releases every object in reverse creation order. It is safe on a
// partially built pipeline.
func (p *halPipeline) Destroy() {
	if p.pipeline != nil {
		p.device.DestroyComputePipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.layout != nil {
		p.device.DestroyPipelineLayout(p.layout)
		p.layout = nil
	}
	if p.bgLayout != nil {
		p.device.DestroyBindGroupLayout(p.bgLayout)
		p.bgLayout = nil
	}
	if p.module != nil {
		p.device.DestroyShaderModule(p.module)
		p.module = nil
	}
}

// spirvWords reinterprets little-endian SPIR-V bytes as words.
func spirvWords(code []byte) []uint32 {
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return words
}

func layoutEntries(layout []BindingType) []gputypes.BindGroupLayoutEntry {
	entries := make([]gputypes.BindGroupLayoutEntry, len(layout))
	for i, t := range layout {
		buf := &gputypes.BufferBindingLayout{}
		switch t {
		case BindingUniform:
			buf.Type = gputypes.BufferBindingTypeUniform
		case BindingReadOnlyStorage:
			buf.Type = gputypes.BufferBindingTypeReadOnlyStorage
		case BindingStorage:
			buf.Type = gputypes.BufferBindingTypeStorage
		default:
			panic("pipeline: unknown binding type " + strconv.Itoa(int(t)))
		}
		entries[i] = gputypes.BindGroupLayoutEntry{
			Binding:    uint32(i),
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     buf,
		}
	}
	return entries
}
