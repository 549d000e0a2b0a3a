package chip

import (
	"errors"
	"fmt"
)

// ErrInvalidCapabilities is returned by Validate for a snapshot that cannot
// drive settings derivation.
var ErrInvalidCapabilities = errors.New("chip: invalid capabilities")

// GpuType classifies the device.
type GpuType uint8

// GPU types.
const (
	GpuTypeUnknown GpuType = iota
	GpuTypeDiscrete
	GpuTypeIntegrated
)

func (t GpuType) String() string {
	switch t {
	case GpuTypeDiscrete:
		return "discrete"
	case GpuTypeIntegrated:
		return "integrated"
	default:
		return "unknown"
	}
}

// Capabilities is the immutable snapshot a device-detection collaborator
// produces once at bring-up. The resolver only reads it.
type Capabilities struct {
	Revision Revision `yaml:"revision"`
	DeviceID uint32   `yaml:"deviceId"`
	FamilyID uint32   `yaml:"familyId"`
	ERevID   uint32   `yaml:"eRevId"`
	GpuType  GpuType  `yaml:"gpuType"`

	NumShaderEngines    uint32 `yaml:"numShaderEngines"`
	ParameterCacheLines uint32 `yaml:"parameterCacheLines"`
	NumActiveCUs        uint32 `yaml:"numActiveCus"`
	MinNumWgpPerSa      uint32 `yaml:"minNumWgpPerSa"`

	DoubleOffchipLdsBuffers     bool `yaml:"doubleOffchipLdsBuffers"`
	RbPlus                      bool `yaml:"rbPlus"`
	SupportOutOfOrderPrimitives bool `yaml:"supportOutOfOrderPrimitives"`
	XgmiEnabled                 bool `yaml:"xgmiEnabled"`

	CpUcodeVersion  uint32 `yaml:"cpUcodeVersion"`
	PfpUcodeVersion uint32 `yaml:"pfpUcodeVersion"`
}

// GfxLevel returns the gfx level of the snapshot's revision.
func (c *Capabilities) GfxLevel() GfxLevel {
	return c.Revision.Level()
}

// Validate checks that the snapshot names a known revision and reports the
// counts the derivation formulas divide by.
func (c *Capabilities) Validate() error {
	if _, err := Lookup(c.Revision); err != nil {
		return err
	}
	if c.NumShaderEngines == 0 {
		return fmt.Errorf("%w: %s reports zero shader engines", ErrInvalidCapabilities, c.Revision)
	}
	return nil
}

// Default returns a plausible snapshot for r, filled from the revision table
// with typical counts for its gfx level. Tools and tests use it when no real
// device is present.
func Default(r Revision) (Capabilities, error) {
	info, err := Lookup(r)
	if err != nil {
		return Capabilities{}, err
	}
	c := Capabilities{
		Revision:                    r,
		FamilyID:                    info.FamilyID,
		ERevID:                      info.ERevMin,
		GpuType:                     GpuTypeDiscrete,
		NumShaderEngines:            4,
		ParameterCacheLines:         1024,
		NumActiveCUs:                40,
		MinNumWgpPerSa:              5,
		SupportOutOfOrderPrimitives: true,
		CpUcodeVersion:              40,
		PfpUcodeVersion:             1460,
	}
	switch info.Level {
	case GfxIp8:
		c.ParameterCacheLines = 512
		c.MinNumWgpPerSa = 0
	case GfxIp9:
		c.NumActiveCUs = 64
		c.MinNumWgpPerSa = 0
	case GfxIp10_3, GfxIp11_0:
		c.RbPlus = true
		c.DoubleOffchipLdsBuffers = true
	}
	switch r {
	case Raven, Raven2, Renoir, Rembrandt, Raphael, Mendocino, Phoenix1:
		c.GpuType = GpuTypeIntegrated
		c.NumShaderEngines = 1
		c.NumActiveCUs = 8
		c.MinNumWgpPerSa = 2
	}
	return c, nil
}
