package settings

import "github.com/gogpu/gfxhal/chip"

// Final limits applied after the workaround cascade.
const (
	maxNggLateAllocGs    = 127
	maxBinningAllocCount = 255

	defaultMinBatchBinWidth  = 128
	defaultMinBatchBinHeight = 64
)

// fixupAfterCascade re-derives the values that depend on workaround flags
// or that a rule may have pushed out of range.
func fixupAfterCascade(env *Env) {
	caps := env.Caps
	s := env.Settings
	gen := caps.GfxLevel().Generation()

	// An explicit late-alloc override beats any rule-supplied value; small
	// GPUs and the late-alloc workaround still force it to zero.
	if s.OverrideNggLateAllocGs >= 0 {
		s.NggLateAllocGs = uint32(s.OverrideNggLateAllocGs)
	}
	if gen == chip.Gfx10 && s.WaLateAllocGs0 && s.NggSupported {
		s.NggLateAllocGs = 0
		if s.DistributionTessMode == DistributionTessOff {
			s.DistributionTessMode = DistributionTessTrapezoid
		}
	}
	disableLateAllocOnSmallGPU(caps, s)

	if caps.GfxLevel().IsGfx103Plus() && s.DisableAsymmetricWgpForPs {
		s.PsCuEnLimitMask = psCuMask(caps.MinNumWgpPerSa)
	}

	if gen == chip.Gfx11 {
		if s.WaForceSpiThrottleModeNonZero && s.SpiGsThrottleCntl2&SpiThrottleModeMask == 0 {
			s.SpiGsThrottleCntl2 |= 1 << SpiThrottleModeShift
		}
		if s.WaDisableAc01 == Ac01PublicSetting {
			if s.Ac01WaNotNeeded {
				s.WaDisableAc01 = Ac01Allow
			} else {
				s.WaDisableAc01 = Ac01Forbid
			}
		}
		s.AttributeRingSizePerSe = attributeRingSize(caps, s.AttributeRingSizePerSe)
	}
}

// clampFinal applies the global limits every record satisfies regardless
// of which stage or rule set a field. Applying it twice changes nothing.
func clampFinal(s *Settings) {
	s.NggLateAllocGs = min(s.NggLateAllocGs, maxNggLateAllocGs)
	s.PrimGroupSize = min(s.PrimGroupSize, maxPrimGroupSize)
	s.BinningMaxAllocCountLegacy = min(s.BinningMaxAllocCountLegacy, maxBinningAllocCount)
	s.BinningMaxAllocCountNggOnChip = min(s.BinningMaxAllocCountNggOnChip, maxBinningAllocCount)
	s.BinningFpovsPerBatch = min(s.BinningFpovsPerBatch, maxBinningAllocCount)
	s.SampleMaskTrackerWatermark = clampWatermark(s.SampleMaskTrackerWatermark)
	s.DistributionTessMode = resolveDistributionTess(s.DistributionTessMode)

	if s.MinBatchBinSizeWidth == 0 {
		s.MinBatchBinSizeWidth = defaultMinBatchBinWidth
	}
	if s.MinBatchBinSizeHeight == 0 {
		s.MinBatchBinSizeHeight = defaultMinBatchBinHeight
	}
}
