package settings

import (
	"math"

	"github.com/gogpu/gfxhal/chip"
)

// Microcode feature thresholds.
const (
	// MinCpUcodeMcbpFix is the first CP microcode with indexed LOADDATA
	// packets. Older Gfx9 microcode cannot preempt safely.
	MinCpUcodeMcbpFix = 36

	// MinCpUcodeCmaskSyncFix is the first CP microcode that converts ranged
	// GCR syncs correctly for CMask.
	MinCpUcodeCmaskSyncFix = 28

	MinPfpVersionPackedRegPairs   = 1448
	MinPfpVersionPackedRegPairsCs = math.MaxUint32
	MinPfpVersionZpassPacket      = 1458
)

// Gfx11 register defaults.
const (
	Gfx11SpiGsThrottleCntl1Default = 0x12355123
	Gfx11SpiGsThrottleCntl2Default = 0x0001544D

	// SpiThrottleModeShift and SpiThrottleModeMask locate the throttle
	// mode in SPI_GS_THROTTLE_CNTL2.
	SpiThrottleModeShift = 16
	SpiThrottleModeMask  = 0x3 << SpiThrottleModeShift

	// Gfx11ApuAttributeRingSize is the per-SE attribute ring size tuned for
	// APUs with a 2 MiB L2.
	Gfx11ApuAttributeRingSize = 768 << 10
)

// navi33GopherUltraLite is the device id of the single-SE Navi33 part.
const navi33GopherUltraLite = 0x74

var generationRules = map[chip.Generation][]Rule{
	chip.Gfx9: {
		{
			Scope: ScopeGeneration,
			Name:  "gfx9-common",
			Set: append(flags(
				"waColorCacheControllerInvalidEviction",
				"waDisableHtilePrefetch",
				"waOverwriteCombinerTargetMaskOnly",
				"waDummyZpassDoneBeforeTs",
				"waLogicOpDisablesOverwriteCombiner",
				"waitOnMetadataMipTail",
				"waDisableSCompressSOnly",
			),
				Assignment{Field: "nggSupported", Value: false},
				Assignment{Field: "numPsWavesSoftGroupedPerCu", Value: 1},
			),
		},
		{
			Scope: ScopeGeneration,
			Name:  "gfx9-rbplus",
			When:  func(e *Env) bool { return e.Caps.RbPlus },
			Set:   flags("waRotatedSwizzleDisablesOverwriteCombiner"),
		},
	},
	chip.Gfx10: {
		{
			Scope: ScopeGeneration,
			Name:  "gfx10-common",
			Set: append(flags(
				"waColorCacheControllerInvalidEviction",
				"waNeverStopSqCounters",
			), Assignment{
				Field: "waCmaskImageSyncs",
				From:  func(e *Env) any { return e.Caps.CpUcodeVersion < MinCpUcodeCmaskSyncFix },
			}),
		},
	},
	chip.Gfx11: {
		{
			Scope: ScopeGeneration,
			Name:  "gfx11-pbb-batch-break",
			When:  func(e *Env) bool { return e.Bugs.Has(chip.BugPbbBreakBatch) },
			Set: []Assignment{
				{Field: "binningFpovsPerBatch", From: func(e *Env) any {
					if e.Settings.BinningFpovsPerBatch == 0 {
						return 255
					}
					return e.Settings.BinningFpovsPerBatch
				}},
				{Field: "binningMaxAllocCountNggOnChip", From: func(e *Env) any {
					if e.Overridden("binningMaxAllocCountNggOnChip") {
						return e.Settings.BinningMaxAllocCountNggOnChip
					}
					return 255
				}},
			},
		},
		{
			Scope: ScopeGeneration,
			Name:  "gfx11-hardware-bugs",
			Set: []Assignment{
				hasBug("waForceSpiThrottleModeNonZero", chip.BugSpiThrottleGsPsVgpr),
				hasBug("waReplaceEventsWithTsEvents", chip.BugPwsDepthWriteTextureRead),
				hasBug("waAddPostambleEvent", chip.BugGeClockStaysHigh),
				hasBug("waLineStippleReset", chip.BugLineStippleReset),
				{Field: "gfx11DisableRbPlusWithBlending", Value: false},
				hasBug("waEnableIntrinsicRateEnable", chip.BugSpiExportConflict),
				hasBug("waSqgTtWptrOffsetFixup", chip.BugSqgTtWptr),
				hasBug("waCbPerfCounterStuckZero", chip.BugCbPerfCountersStuckZero),
				hasBug("waForcePrePixShaderWaitPoint", chip.BugPwsTimestampStall),
				hasBug("waForceLockThresholdZero", chip.BugSpiSoftLock),
				hasBug("waSetVsXyNanToInfZero", chip.BugStereoPositionNanCheck),
				hasBug("waIncorrectMaxAllowedTilesInWave", chip.BugScDbHangWaveConflict),
			},
		},
		{
			Scope: ScopeGeneration,
			Name:  "gfx11-ac01",
			When:  func(e *Env) bool { return e.Bugs.Has(chip.BugDccAc01Corruption) },
			Set:   []Assignment{{Field: "waDisableAc01", Value: Ac01PublicSetting}},
		},
		{
			Scope: ScopeGeneration,
			Name:  "gfx11-sample-mask-watermark",
			When:  func(e *Env) bool { return e.Settings.SampleMaskTrackerWatermark > 0 },
			Set: []Assignment{{Field: "waitOnFlush", From: func(e *Env) any {
				return e.Settings.WaitOnFlush | WaitAfterCbFlush | WaitBeforeBarrierEopWithCbFlush
			}}},
		},
		{
			Scope: ScopeGeneration,
			Name:  "gfx11-defaults",
			Set: []Assignment{
				{Field: "numTsMsDrawEntriesPerSe", Value: 1024},
				{Field: "ldsPsGroupSize", Value: LdsPsGroupSizeDouble},
				{Field: "allowDepthCopyResolve", Value: false},
				{Field: "defaultSpiGsThrottleCntl1", Value: uint32(Gfx11SpiGsThrottleCntl1Default)},
				{Field: "defaultSpiGsThrottleCntl2", Value: uint32(Gfx11SpiGsThrottleCntl2Default)},
				{Field: "nggLateAllocGs", Value: 63},
			},
		},
		{
			Scope: ScopeGeneration,
			Name:  "gfx11-apu-attribute-ring",
			When:  func(e *Env) bool { return e.Caps.GpuType == chip.GpuTypeIntegrated },
			Set:   []Assignment{{Field: "gfx11VertexAttributesRingBufferSizePerSe", Value: Gfx11ApuAttributeRingSize}},
		},
		{
			Scope: ScopeGeneration,
			Name:  "gfx11-pfp-packet-optimizations",
			Set: []Assignment{
				{Field: "gfx11EnableContextRegPairOptimization", From: pfpAtLeast(MinPfpVersionPackedRegPairs)},
				{Field: "gfx11EnableShRegPairOptimization", From: pfpAtLeast(MinPfpVersionPackedRegPairs)},
				{Field: "gfx11EnableShRegPairOptimizationCs", From: pfpAtLeast(MinPfpVersionPackedRegPairsCs)},
				{Field: "gfx11EnableZpassPacketOptimization", From: pfpAtLeast(MinPfpVersionZpassPacket)},
			},
		},
	},
}

var groupRules = map[chip.Group][]Rule{
	chip.GroupVega10Raven: {{
		Scope: ScopeSubGeneration,
		Name:  "vega10-raven",
		Set: flags(
			"waHtilePipeBankXorMustBeZero",
			"waWrite1xAASampleLocationsToZero",
			"waMiscPopsMissedOverlap",
			"waMiscScissorRegisterChange",
			"waDisable24BitHWFormatForTCCompatibleDepth",
		),
	}},
	chip.GroupMetaAliasing: {{
		Scope: ScopeSubGeneration,
		Name:  "meta-aliasing-broken",
		Set:   []Assignment{{Field: "waMetaAliasingFixEnabled", Value: false}},
	}},
	chip.GroupGfx101: {{
		Scope: ScopeSubGeneration,
		Name:  "gfx10.1",
		Set: flags(
			"waVgtFlushNggToLegacyGs",
			"waVgtFlushNggToLegacy",
			"waDisableFmaskNofetchOpOnFmaskCompressionDisable",
			"waIndexBufferZeroSize",
			"addr2DisableSModes8BppColor",
			"waCeDisableIb2",
			"waUtcL0InconsistentBigPage",
			"waLimitLateAllocGsNggFifo",
			"waClampGeCntlVertGrpSize",
			"waLegacyGsCutModeFlush",
			"waZ16Unorm1xAaDecompressUninitialized",
			"waEnableIndexBufferPrefetchForNgg",
			"waClampQuadDistributionFactor",
			"waLogicOpDisablesOverwriteCombiner",
			"waStalledPopsMode",
			"waTwoPlanesIterate256",
		),
	}},
	chip.GroupNavi2x: {{
		Scope: ScopeSubGeneration,
		Name:  "navi2x",
		Set: append(flags(
			"waLegacyGsCutModeFlush",
			"waDisableInstancePacking",
			"waAutoFlushModePolarityInversed",
		), Assignment{Field: "waVrsStencilUav", Value: VrsStencilUavGraphicsCopies}),
	}},
	chip.GroupGfx103Plus: {{
		Scope: ScopeSubGeneration,
		Name:  "gfx10.3+",
		Set:   flags("gfx103PlusDisableAsymmetricWgpForPs"),
	}},
}

var badSqttFinish = []Rule{{
	Scope: ScopeRevision,
	Name:  "bad-sqtt-finish-results",
	Set:   flags("waBadSqttFinishResults"),
}}

var noShaderPrefetch = []Rule{{
	Scope: ScopeRevision,
	Name:  "no-shader-prefetch",
	Set:   []Assignment{{Field: "shaderPrefetchSizeBytes", Value: 0}},
}}

var revisionRules = map[chip.Revision][]Rule{
	chip.Navi10: {{
		Scope: ScopeRevision,
		Name:  "navi10",
		Set: flags(
			"waSdmaPreventCompressedSurfUse",
			"waFixPostZConservativeRasterization",
			"waTessIncorrectRelativeIndex",
			"waForceZonlyHtileForMipmaps",
		),
	}},
	chip.Navi14: {{
		Scope: ScopeRevision,
		Name:  "navi14",
		Set: []Assignment{
			{Field: "waLateAllocGs0", Value: true},
			{Field: "nggSupported", Value: false},
		},
	}},
	chip.Navi21: {{
		Scope: ScopeRevision,
		Name:  "navi21",
		Set: flags(
			"waCeDisableIb2",
			"waDisableFmaskNofetchOpOnFmaskCompressionDisable",
			"waVgtFlushNggToLegacy",
			"waDisableVrsWithDsExports",
		),
	}},
	chip.Navi22: {{
		Scope: ScopeRevision,
		Name:  "navi22",
		Set:   flags("waCeDisableIb2", "waDisableVrsWithDsExports"),
	}},
	chip.Navi23:    badSqttFinish,
	chip.Navi24:    badSqttFinish,
	chip.Rembrandt: badSqttFinish,
	chip.Navi31:    noShaderPrefetch,
	chip.Navi32:    noShaderPrefetch,
	chip.Navi33: {{
		Scope: ScopeRevision,
		Name:  "navi33-ultra-lite",
		When:  func(e *Env) bool { return e.Caps.DeviceID == navi33GopherUltraLite },
		Set: []Assignment{
			{Field: "gsCuEnLimitMask", Value: uint32(MaskEnableAll)},
			{Field: "allowNggOnAllCusWgps", Value: true},
		},
	}},
}

func pfpAtLeast(v uint64) func(*Env) any {
	return func(e *Env) any { return uint64(e.Caps.PfpUcodeVersion) >= v }
}
