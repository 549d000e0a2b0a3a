package settings

import (
	"fmt"
	"reflect"
)

// PreemptMode controls mid-command-buffer preemption.
type PreemptMode uint32

// Preemption modes.
const (
	PreemptEnabled PreemptMode = iota
	PreemptDisable
	PreemptFullDisableUnsafe
)

// DistributionTessMode selects how tessellation work is spread over engines.
type DistributionTessMode uint32

// Distribution tessellation modes. Default and TrapezoidOnly resolve to
// Trapezoid during validation.
const (
	DistributionTessOff DistributionTessMode = iota
	DistributionTessDefault
	DistributionTessPatch
	DistributionTessDonut
	DistributionTessTrapezoid
	DistributionTessTrapezoidOnly
)

// OverrideMode is a tri-state for settings whose default depends on the chip.
type OverrideMode uint32

// Override modes.
const (
	OverrideDefault OverrideMode = iota
	OverrideEnabled
	OverrideDisabled
)

// OutOfOrderPrim controls out-of-order primitive rendering.
type OutOfOrderPrim uint32

// Out-of-order primitive modes.
const (
	OutOfOrderPrimDisable OutOfOrderPrim = iota
	OutOfOrderPrimSafe
	OutOfOrderPrimAggressive
	OutOfOrderPrimAlways
)

// Ac01Mode controls use of the AC01 fast-clear codes. PublicSetting is an
// intermediate value resolved at finalization from Ac01WaNotNeeded.
type Ac01Mode uint32

// AC01 modes.
const (
	Ac01Allow Ac01Mode = iota
	Ac01Forbid
	Ac01PublicSetting
)

// VrsStencilUav selects the workaround for UAV writes to VRS stencil.
type VrsStencilUav uint32

// VRS stencil UAV workarounds.
const (
	VrsStencilUavNone VrsStencilUav = iota
	VrsStencilUavGraphicsCopies
	VrsStencilUavMetadataDisabled
)

// LdsPsGroupSize is the LDS pixel shader group size.
type LdsPsGroupSize uint32

// LDS PS group sizes.
const (
	LdsPsGroupSizeSingle LdsPsGroupSize = iota
	LdsPsGroupSizeDouble
)

// Flag bits for UseCompToSingle.
const (
	CompToSingle8Bpp  uint32 = 0x1
	CompToSingle16Bpp uint32 = 0x2
	CompToSingle32Bpp uint32 = 0x4
	CompToSingle64Bpp uint32 = 0x8
)

// Flag bits for UseDcc.
const (
	UseDccColor       uint32 = 0x1
	UseDccDepth       uint32 = 0x2
	UseDccYuvPlanar   uint32 = 0x4
	UseDccMultiPlanar uint32 = 0x8
)

// Flag bits for WaitOnFlush.
const (
	WaitAfterCbFlush                uint32 = 0x1
	WaitAfterDbFlush                uint32 = 0x2
	WaitBeforeBarrierEopWithCbFlush uint32 = 0x4
	WaitBeforeBarrierEopWithDbFlush uint32 = 0x8
)

// enumNames maps each enum type to its value names, indexed by value.
var enumNames = map[reflect.Type][]string{
	reflect.TypeFor[PreemptMode]():          {"Enabled", "Disable", "FullDisableUnsafe"},
	reflect.TypeFor[DistributionTessMode](): {"Off", "Default", "Patch", "Donut", "Trapezoid", "TrapezoidOnly"},
	reflect.TypeFor[OverrideMode]():         {"Default", "Enabled", "Disabled"},
	reflect.TypeFor[OutOfOrderPrim]():       {"Disable", "Safe", "Aggressive", "Always"},
	reflect.TypeFor[Ac01Mode]():             {"Allow", "Forbid", "PublicSetting"},
	reflect.TypeFor[VrsStencilUav]():        {"None", "GraphicsCopies", "MetadataDisabled"},
	reflect.TypeFor[LdsPsGroupSize]():       {"Single", "Double"},
}

func enumString[E ~uint32](v E) string {
	names := enumNames[reflect.TypeFor[E]()]
	if int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("%s(%d)", reflect.TypeFor[E]().Name(), uint32(v))
}

func (m PreemptMode) String() string          { return enumString(m) }
func (m DistributionTessMode) String() string { return enumString(m) }
func (m OverrideMode) String() string         { return enumString(m) }
func (m OutOfOrderPrim) String() string       { return enumString(m) }
func (m Ac01Mode) String() string             { return enumString(m) }
func (m VrsStencilUav) String() string        { return enumString(m) }
func (m LdsPsGroupSize) String() string       { return enumString(m) }
