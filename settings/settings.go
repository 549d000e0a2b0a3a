// Package settings resolves the tunable parameters of a GPU device.
//
// A [Loader] drives one device's [Settings] through four stages:
//
//	Uninitialized -> EarlyInit -> Validated -> Finalized
//
// EarlyInit fills baseline defaults and applies raw overrides from a
// [Source]. Validate derives capability-dependent values and enforces
// hardware limits. Override applies the ordered workaround [Rule] cascade for
// the revision, then final clamps, and freezes the result into a [Record]
// with a content [Hash]. A frozen record is never patched: [Loader.Reread]
// repeats the whole pipeline with a fresh source.
package settings

import "math"

// UnsetThreshold marks DccBitsPerPixelThreshold as not yet derived.
const UnsetThreshold = math.MaxUint32

// MaskEnableAll enables every CU/WGP in a CU limit mask.
const MaskEnableAll = math.MaxUint32

// Settings is the flat settings record. Every field is addressable by the
// name in its setting tag; that name is the key used by raw overrides and
// introspection.
//
// Zero is the unset sentinel for derived counts. OverrideNggLateAllocGs uses
// -1 and DccBitsPerPixelThreshold uses UnsetThreshold.
type Settings struct {
	// Binning.
	BinningMaxAllocCountLegacy    uint32       `setting:"binningMaxAllocCountLegacy"`
	BinningMaxAllocCountNggOnChip uint32       `setting:"binningMaxAllocCountNggOnChip"`
	BinningFpovsPerBatch          uint32       `setting:"binningFpovsPerBatch"`
	BinningContextStatesPerBin    uint32       `setting:"binningContextStatesPerBin"`
	BinningPersistentStatesPerBin uint32       `setting:"binningPersistentStatesPerBin"`
	DisableBinningPsKill          OverrideMode `setting:"disableBinningPsKill"`
	MinBatchBinSizeWidth          uint32       `setting:"minBatchBinSizeWidth"`
	MinBatchBinSizeHeight         uint32       `setting:"minBatchBinSizeHeight"`

	// NGG and late allocation.
	NggSupported               bool   `setting:"nggSupported"`
	NggLateAllocGs             uint32 `setting:"nggLateAllocGs"`
	OverrideNggLateAllocGs     int32  `setting:"overrideNggLateAllocGs"`
	AllowNggOnAllCusWgps       bool   `setting:"allowNggOnAllCusWgps"`
	GsCuEnLimitMask            uint32 `setting:"gsCuEnLimitMask"`
	PsCuEnLimitMask            uint32 `setting:"psCuEnLimitMask"`
	GePcAllocLegacyNggPassthru uint32 `setting:"gfx10GePcAllocNumLinesPerSeLegacyNggPassthru"`
	GePcAllocNggCulling        uint32 `setting:"gfx10GePcAllocNumLinesPerSeNggCulling"`

	// Tessellation.
	NumOffchipLdsBuffers      uint32               `setting:"numOffchipLdsBuffers"`
	UseMaxOffchipLdsBuffers   bool                 `setting:"useMaxOffchipLdsBuffers"`
	DistributionTessMode      DistributionTessMode `setting:"distributionTessMode"`
	TessFactorBufferSizePerSe uint32               `setting:"tessFactorBufferSizePerSe"`
	PrimGroupSize             uint32               `setting:"primGroupSize"`

	// Preemption.
	CmdBufPreemptionMode           PreemptMode `setting:"cmdBufPreemptionMode"`
	DisableCommandBufferPreemption bool        `setting:"disableCommandBufferPreemption"`

	// Depth and HTile.
	HtileEnable                          bool `setting:"htileEnable"`
	HiDepthEnable                        bool `setting:"hiDepthEnable"`
	HiStencilEnable                      bool `setting:"hiStencilEnable"`
	DbPreloadEnable                      bool `setting:"dbPreloadEnable"`
	DbPreloadWinEnable                   bool `setting:"dbPreloadWinEnable"`
	DbPerTileExpClearEnable              bool `setting:"dbPerTileExpClearEnable"`
	DepthCompressEnable                  bool `setting:"depthCompressEnable"`
	StencilCompressEnable                bool `setting:"stencilCompressEnable"`
	HintInvariantDepthStencilClearValues bool `setting:"hintInvariantDepthStencilClearValues"`
	AllowDepthCopyResolve                bool `setting:"allowDepthCopyResolve"`

	// Color, compression and render backends.
	PrefetchClampSize           uint32         `setting:"prefetchClampSize"`
	RbPlusEnable                bool           `setting:"gfx9RbPlusEnable"`
	OptDepthOnlyExportRate      bool           `setting:"optDepthOnlyExportRate"`
	EnableOutOfOrderPrimitives  OutOfOrderPrim `setting:"enableOutOfOrderPrimitives"`
	Treat1dAs2d                 bool           `setting:"treat1dAs2d"`
	OptimizedFastClear          uint32         `setting:"optimizedFastClear"`
	UseCompToSingle             uint32         `setting:"useCompToSingle"`
	UseDcc                      uint32         `setting:"useDcc"`
	DccBitsPerPixelThreshold    uint32         `setting:"dccBitsPerPixelThreshold"`
	OptimizeNullSourceImage     bool           `setting:"optimizeNullSourceImage"`
	Addr2DisableSModes8BppColor bool           `setting:"addr2DisableSModes8BppColor"`
	NonlocalDestGraphicsCopyRbs uint32         `setting:"nonlocalDestGraphicsCopyRbs"`
	WaitOnMetadataMipTail       bool           `setting:"waitOnMetadataMipTail"`
	NumPsWavesSoftGroupedPerCu  uint32         `setting:"numPsWavesSoftGroupedPerCu"`
	ShaderPrefetchSizeBytes     uint32         `setting:"shaderPrefetchSizeBytes"`
	WaitOnFlush                 uint32         `setting:"waitOnFlush"`
	LdsPsGroupSize              LdsPsGroupSize `setting:"ldsPsGroupSize"`

	// Gfx10.3 and Gfx11.
	DisableAsymmetricWgpForPs        bool     `setting:"gfx103PlusDisableAsymmetricWgpForPs"`
	AttributeRingSizePerSe           uint32   `setting:"gfx11VertexAttributesRingBufferSizePerSe"`
	SpiGsThrottleCntl1               uint32   `setting:"defaultSpiGsThrottleCntl1"`
	SpiGsThrottleCntl2               uint32   `setting:"defaultSpiGsThrottleCntl2"`
	SampleMaskTrackerWatermark       uint32   `setting:"gfx11SampleMaskTrackerWatermark"`
	Ac01WaNotNeeded                  bool     `setting:"ac01WaNotNeeded"`
	WaDisableAc01                    Ac01Mode `setting:"waDisableAc01"`
	NumTsMsDrawEntriesPerSe          uint32   `setting:"numTsMsDrawEntriesPerSe"`
	DisableRbPlusWithBlending        bool     `setting:"gfx11DisableRbPlusWithBlending"`
	EnableContextRegPairOptimization bool     `setting:"gfx11EnableContextRegPairOptimization"`
	EnableShRegPairOptimization      bool     `setting:"gfx11EnableShRegPairOptimization"`
	EnableShRegPairOptimizationCs    bool     `setting:"gfx11EnableShRegPairOptimizationCs"`
	EnableZpassPacketOptimization    bool     `setting:"gfx11EnableZpassPacketOptimization"`

	// Gfx9 workarounds.
	WaColorCacheControllerInvalidEviction      bool `setting:"waColorCacheControllerInvalidEviction"`
	WaDisableHtilePrefetch                     bool `setting:"waDisableHtilePrefetch"`
	WaOverwriteCombinerTargetMaskOnly          bool `setting:"waOverwriteCombinerTargetMaskOnly"`
	WaDummyZpassDoneBeforeTs                   bool `setting:"waDummyZpassDoneBeforeTs"`
	WaLogicOpDisablesOverwriteCombiner         bool `setting:"waLogicOpDisablesOverwriteCombiner"`
	WaDisableSCompressSOnly                    bool `setting:"waDisableSCompressSOnly"`
	WaRotatedSwizzleDisablesOverwriteCombiner  bool `setting:"waRotatedSwizzleDisablesOverwriteCombiner"`
	WaHtilePipeBankXorMustBeZero               bool `setting:"waHtilePipeBankXorMustBeZero"`
	WaWrite1xAASampleLocationsToZero           bool `setting:"waWrite1xAASampleLocationsToZero"`
	WaMiscPopsMissedOverlap                    bool `setting:"waMiscPopsMissedOverlap"`
	WaMiscScissorRegisterChange                bool `setting:"waMiscScissorRegisterChange"`
	WaDisable24BitHWFormatForTCCompatibleDepth bool `setting:"waDisable24BitHWFormatForTCCompatibleDepth"`
	WaMetaAliasingFixEnabled                   bool `setting:"waMetaAliasingFixEnabled"`

	// Gfx10 workarounds.
	WaCmaskImageSyncs                     bool          `setting:"waCmaskImageSyncs"`
	WaNeverStopSqCounters                 bool          `setting:"waNeverStopSqCounters"`
	WaVgtFlushNggToLegacyGs               bool          `setting:"waVgtFlushNggToLegacyGs"`
	WaVgtFlushNggToLegacy                 bool          `setting:"waVgtFlushNggToLegacy"`
	WaDisableFmaskNofetchOp               bool          `setting:"waDisableFmaskNofetchOpOnFmaskCompressionDisable"`
	WaIndexBufferZeroSize                 bool          `setting:"waIndexBufferZeroSize"`
	WaCeDisableIb2                        bool          `setting:"waCeDisableIb2"`
	WaUtcL0InconsistentBigPage            bool          `setting:"waUtcL0InconsistentBigPage"`
	WaLimitLateAllocGsNggFifo             bool          `setting:"waLimitLateAllocGsNggFifo"`
	WaClampGeCntlVertGrpSize              bool          `setting:"waClampGeCntlVertGrpSize"`
	WaLegacyGsCutModeFlush                bool          `setting:"waLegacyGsCutModeFlush"`
	WaZ16Unorm1xAaDecompressUninitialized bool          `setting:"waZ16Unorm1xAaDecompressUninitialized"`
	WaEnableIndexBufferPrefetchForNgg     bool          `setting:"waEnableIndexBufferPrefetchForNgg"`
	WaClampQuadDistributionFactor         bool          `setting:"waClampQuadDistributionFactor"`
	WaStalledPopsMode                     bool          `setting:"waStalledPopsMode"`
	WaTwoPlanesIterate256                 bool          `setting:"waTwoPlanesIterate256"`
	WaSdmaPreventCompressedSurfUse        bool          `setting:"waSdmaPreventCompressedSurfUse"`
	WaFixPostZConservativeRasterization   bool          `setting:"waFixPostZConservativeRasterization"`
	WaTessIncorrectRelativeIndex          bool          `setting:"waTessIncorrectRelativeIndex"`
	WaForceZonlyHtileForMipmaps           bool          `setting:"waForceZonlyHtileForMipmaps"`
	WaLateAllocGs0                        bool          `setting:"waLateAllocGs0"`
	WaDisableVrsWithDsExports             bool          `setting:"waDisableVrsWithDsExports"`
	WaBadSqttFinishResults                bool          `setting:"waBadSqttFinishResults"`
	WaVrsStencilUav                       VrsStencilUav `setting:"waVrsStencilUav"`
	WaDisableInstancePacking              bool          `setting:"waDisableInstancePacking"`
	WaAutoFlushModePolarityInversed       bool          `setting:"waAutoFlushModePolarityInversed"`

	// Gfx11 workarounds.
	WaForceSpiThrottleModeNonZero    bool `setting:"waForceSpiThrottleModeNonZero"`
	WaReplaceEventsWithTsEvents      bool `setting:"waReplaceEventsWithTsEvents"`
	WaAddPostambleEvent              bool `setting:"waAddPostambleEvent"`
	WaLineStippleReset               bool `setting:"waLineStippleReset"`
	WaEnableIntrinsicRateEnable      bool `setting:"waEnableIntrinsicRateEnable"`
	WaSqgTtWptrOffsetFixup           bool `setting:"waSqgTtWptrOffsetFixup"`
	WaCbPerfCounterStuckZero         bool `setting:"waCbPerfCounterStuckZero"`
	WaForcePrePixShaderWaitPoint     bool `setting:"waForcePrePixShaderWaitPoint"`
	WaForceLockThresholdZero         bool `setting:"waForceLockThresholdZero"`
	WaSetVsXyNanToInfZero            bool `setting:"waSetVsXyNanToInfZero"`
	WaIncorrectMaxAllowedTilesInWave bool `setting:"waIncorrectMaxAllowedTilesInWave"`
}

// Defaults returns the static baseline every device starts from.
func Defaults() Settings {
	return Settings{
		BinningContextStatesPerBin:    1,
		BinningPersistentStatesPerBin: 1,
		DisableBinningPsKill:          OverrideDefault,

		NggSupported:               true,
		NggLateAllocGs:             127,
		OverrideNggLateAllocGs:     -1,
		GsCuEnLimitMask:            MaskEnableAll,
		PsCuEnLimitMask:            MaskEnableAll,
		GePcAllocLegacyNggPassthru: 256,
		GePcAllocNggCulling:        256,

		NumOffchipLdsBuffers:      508,
		DistributionTessMode:      DistributionTessDefault,
		TessFactorBufferSizePerSe: 0x2000,
		PrimGroupSize:             128,

		CmdBufPreemptionMode: PreemptEnabled,

		HtileEnable:           true,
		HiDepthEnable:         true,
		HiStencilEnable:       true,
		DbPreloadEnable:       true,
		DepthCompressEnable:   true,
		StencilCompressEnable: true,
		AllowDepthCopyResolve: true,

		PrefetchClampSize:          64 << 10,
		RbPlusEnable:               true,
		OptDepthOnlyExportRate:     true,
		EnableOutOfOrderPrimitives: OutOfOrderPrimSafe,
		Treat1dAs2d:                true,
		OptimizedFastClear:         0x3,
		UseDcc:                     UseDccColor | UseDccDepth | UseDccYuvPlanar | UseDccMultiPlanar,
		DccBitsPerPixelThreshold:   UnsetThreshold,
		OptimizeNullSourceImage:    true,
		ShaderPrefetchSizeBytes:    0x1000,
		LdsPsGroupSize:             LdsPsGroupSizeSingle,

		AttributeRingSizePerSe:  1 << 20,
		WaDisableAc01:           Ac01Allow,
		NumTsMsDrawEntriesPerSe: 512,

		WaMetaAliasingFixEnabled: true,
	}
}
