package settings

import (
	"math"

	"github.com/gogpu/gfxhal/chip"
)

// Hardware limits used by validation.
const (
	// Gfx9TessFactorRingSizeMask covers Gfx9 and Gfx10, where the ring size
	// register holds the whole-chip size.
	Gfx9TessFactorRingSizeMask = 0x3FFFF
	// Gfx11TessFactorRingSizeMask is per SE.
	Gfx11TessFactorRingSizeMask = 0x1FFFF

	Gfx11AttributeRingAlignment = 64 << 10
	Gfx11AttributeRingMaxSize   = 16 << 20

	PrefetchClampAlignment = 4096

	// Vega10 loads wrong SDATA terms for off-chip LDS past 127 buffers per SE.
	vega10MaxOffchipLdsBuffers  = 508
	gfx9MaxOffchipLdsBuffers    = 512
	gfx11OffchipLdsBuffersPerSe = 256

	minWatermark = 3
	maxWatermark = 15

	maxPrimGroupSize = 253
)

// validate applies the capability-derived formulas. Fields named in
// overridden keep their raw values wherever a formula only supplies a
// default; hardware absence and hardware limits apply regardless.
func validate(env *Env) {
	caps := env.Caps
	s := env.Settings
	level := caps.GfxLevel()
	gen := level.Generation()
	unset := func(name string, isZero bool) bool { return isZero && !env.Overridden(name) }

	if gen == chip.Gfx9 {
		// DCC slices of YUV planar surfaces cannot be addressed on Gfx9.
		s.UseDcc &^= UseDccYuvPlanar
	}

	if unset("binningMaxAllocCountLegacy", s.BinningMaxAllocCountLegacy == 0) {
		switch gen {
		case chip.Gfx9:
			s.BinningMaxAllocCountLegacy = min(128, caps.ParameterCacheLines/(4*caps.NumShaderEngines))
		case chip.Gfx10:
			s.BinningMaxAllocCountLegacy = caps.ParameterCacheLines / 3
		}
	}

	if unset("binningMaxAllocCountNggOnChip", s.BinningMaxAllocCountNggOnChip == 0) {
		if gen == chip.Gfx11 {
			s.BinningMaxAllocCountNggOnChip = 16
		} else {
			s.BinningMaxAllocCountNggOnChip = caps.ParameterCacheLines / 3
		}
		if gen == chip.Gfx9 {
			// Gfx9 counts in units of two cache lines.
			s.BinningMaxAllocCountNggOnChip /= 2
		}
	}

	if s.OverrideNggLateAllocGs >= 0 {
		s.NggLateAllocGs = uint32(s.OverrideNggLateAllocGs)
	}

	validateOffchipLds(caps, s)

	if level == chip.GfxIp9 && caps.CpUcodeVersion < MinCpUcodeMcbpFix {
		s.CmdBufPreemptionMode = PreemptFullDisableUnsafe
	} else if s.DisableCommandBufferPreemption {
		s.CmdBufPreemptionMode = PreemptDisable
	}

	if !s.HtileEnable {
		s.HiDepthEnable = false
		s.HiStencilEnable = false
		s.DbPreloadEnable = false
		s.DbPreloadWinEnable = false
		s.DbPerTileExpClearEnable = false
		s.DepthCompressEnable = false
		s.StencilCompressEnable = false
	}
	if s.HintInvariantDepthStencilClearValues {
		s.DbPerTileExpClearEnable = true
	}

	s.PrefetchClampSize = Pow2Align(s.PrefetchClampSize, PrefetchClampAlignment)

	if !caps.RbPlus {
		s.RbPlusEnable = false
		s.OptDepthOnlyExportRate = false
	}
	if !caps.SupportOutOfOrderPrimitives {
		s.EnableOutOfOrderPrimitives = OutOfOrderPrimDisable
	}

	s.BinningContextStatesPerBin = max(s.BinningContextStatesPerBin, 1)
	s.BinningPersistentStatesPerBin = max(s.BinningPersistentStatesPerBin, 1)

	if s.DisableBinningPsKill == OverrideDefault {
		s.DisableBinningPsKill = OverrideEnabled
	}

	if gen == chip.Gfx10 {
		s.Treat1dAs2d = false
		s.OptimizedFastClear = 0
		if s.RbPlusEnable {
			s.UseCompToSingle |= CompToSingle8Bpp | CompToSingle16Bpp
		}
	}

	if level.IsGfx103Plus() && s.DisableAsymmetricWgpForPs {
		s.PsCuEnLimitMask = psCuMask(caps.MinNumWgpPerSa)
	}

	validateTessFactorRing(caps, s)

	if gen == chip.Gfx11 {
		s.UseCompToSingle |= CompToSingle8Bpp | CompToSingle16Bpp
		s.Treat1dAs2d = false
		s.OptimizedFastClear = 0
		s.AttributeRingSizePerSe = attributeRingSize(caps, s.AttributeRingSizePerSe)
		s.OptimizeNullSourceImage = false
		s.SampleMaskTrackerWatermark = clampWatermark(s.SampleMaskTrackerWatermark)
	} else {
		s.AttributeRingSizePerSe = 0
	}

	s.DistributionTessMode = resolveDistributionTess(s.DistributionTessMode)

	s.PrimGroupSize = min(maxPrimGroupSize, s.PrimGroupSize)

	if level == chip.GfxIp9 {
		s.NggSupported = false
	}

	if unset("dccBitsPerPixelThreshold", s.DccBitsPerPixelThreshold == UnsetThreshold) {
		if caps.Revision == chip.Vega20 {
			s.DccBitsPerPixelThreshold = 64
		} else {
			s.DccBitsPerPixelThreshold = 0
		}
	}

	disableLateAllocOnSmallGPU(caps, s)

	s.NggLateAllocGs = min(s.NggLateAllocGs, 127)

	if caps.XgmiEnabled {
		s.NonlocalDestGraphicsCopyRbs = math.MaxUint32
	}
}

func validateOffchipLds(caps *chip.Capabilities, s *Settings) {
	perSe := uint32(64)
	if caps.DoubleOffchipLdsBuffers {
		perSe = 128
	}
	limit := caps.NumShaderEngines * perSe
	switch {
	case caps.Revision == chip.Vega10:
		limit = min(limit, vega10MaxOffchipLdsBuffers)
	case caps.GfxLevel().Generation() == chip.Gfx11:
		limit = gfx11OffchipLdsBuffersPerSe * caps.NumShaderEngines
	default:
		limit = min(limit, gfx9MaxOffchipLdsBuffers)
	}

	if s.NumOffchipLdsBuffers > 0 {
		if s.UseMaxOffchipLdsBuffers {
			s.NumOffchipLdsBuffers = limit
		} else {
			s.NumOffchipLdsBuffers = min(limit, s.NumOffchipLdsBuffers)
		}
	}
}

// psCuMask enables two CUs per WGP of the smallest shader array.
func psCuMask(minWgpPerSa uint32) uint32 {
	n := minWgpPerSa * 2
	if n == 0 || n >= 32 {
		return MaskEnableAll
	}
	return (1 << n) - 1
}

func validateTessFactorRing(caps *chip.Capabilities, s *Settings) {
	mask := uint32(Gfx9TessFactorRingSizeMask)
	scalar := caps.NumShaderEngines
	if caps.GfxLevel().Generation() == chip.Gfx11 {
		mask = Gfx11TessFactorRingSizeMask
		scalar = 1
	}
	if uint64(s.TessFactorBufferSizePerSe)*uint64(scalar) > uint64(mask) {
		s.TessFactorBufferSizePerSe = AlignDown(mask, scalar) / scalar
	}
}

func attributeRingSize(caps *chip.Capabilities, size uint32) uint32 {
	maxPerSe := Pow2AlignDown(Gfx11AttributeRingMaxSize/caps.NumShaderEngines, Gfx11AttributeRingAlignment)
	return min(maxPerSe, Pow2Align(min(size, maxPerSe), Gfx11AttributeRingAlignment))
}

// clampWatermark keeps 0 (disabled) and otherwise clamps to 3..15.
func clampWatermark(w uint32) uint32 {
	if w == 0 {
		return 0
	}
	return Clamp(w, minWatermark, maxWatermark)
}

func resolveDistributionTess(m DistributionTessMode) DistributionTessMode {
	if m == DistributionTessDefault || m == DistributionTessTrapezoidOnly {
		return DistributionTessTrapezoid
	}
	return m
}

// isSmallGPU reports whether NGG waves should be allowed on every CU.
func isSmallGPU(caps *chip.Capabilities) bool {
	return caps.GfxLevel().IsGfx10Plus() && (caps.MinNumWgpPerSa <= 2 || caps.NumActiveCUs < 4)
}

func disableLateAllocOnSmallGPU(caps *chip.Capabilities, s *Settings) {
	if !isSmallGPU(caps) {
		return
	}
	s.GsCuEnLimitMask = MaskEnableAll
	s.AllowNggOnAllCusWgps = true
	s.NggLateAllocGs = 0
	// Gfx11 keeps late alloc for the parameter cache since attributes go
	// through memory.
	if caps.GfxLevel().Generation() != chip.Gfx11 {
		s.GePcAllocLegacyNggPassthru = 0
		s.GePcAllocNggCulling = 0
	}
}
