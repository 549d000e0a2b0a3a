package settings

import (
	"errors"
	"testing"

	"github.com/gogpu/gfxhal/chip"
)

func defaultCaps(t *testing.T, rev chip.Revision) chip.Capabilities {
	t.Helper()
	caps, err := chip.Default(rev)
	if err != nil {
		t.Fatalf("chip.Default(%v): %v", rev, err)
	}
	return caps
}

func resolve(t *testing.T, caps chip.Capabilities, raw map[string]any) Settings {
	t.Helper()
	rec, err := NewLoader(caps).Resolve(MapSource(raw))
	if err != nil {
		t.Fatalf("Resolve(%v): %v", caps.Revision, err)
	}
	return rec.Settings()
}

func TestResolveBinningFormula(t *testing.T) {
	tests := []struct {
		rev        chip.Revision
		legacy     uint32
		nggOnChip  uint32
		rawLegacy  any
		wantLegacy uint32
	}{
		{rev: chip.Vega10, legacy: 37, nggOnChip: 50},
		{rev: chip.Navi10, legacy: 100, nggOnChip: 100},
		{rev: chip.Vega10, rawLegacy: 50, legacy: 50, nggOnChip: 50},
		{rev: chip.Navi10, rawLegacy: "0x10", legacy: 16, nggOnChip: 100},
	}
	for _, tt := range tests {
		caps := defaultCaps(t, tt.rev)
		caps.ParameterCacheLines = 300
		caps.NumShaderEngines = 2
		raw := map[string]any{}
		if tt.rawLegacy != nil {
			raw["binningMaxAllocCountLegacy"] = tt.rawLegacy
		}
		s := resolve(t, caps, raw)
		if s.BinningMaxAllocCountLegacy != tt.legacy {
			t.Errorf("%v raw=%v: binningMaxAllocCountLegacy = %d, want %d",
				tt.rev, tt.rawLegacy, s.BinningMaxAllocCountLegacy, tt.legacy)
		}
		if s.BinningMaxAllocCountNggOnChip != tt.nggOnChip {
			t.Errorf("%v: binningMaxAllocCountNggOnChip = %d, want %d",
				tt.rev, s.BinningMaxAllocCountNggOnChip, tt.nggOnChip)
		}
	}
}

func TestResolveHardwareGatingBeatsOverride(t *testing.T) {
	caps := defaultCaps(t, chip.Navi10)
	caps.RbPlus = false
	s := resolve(t, caps, map[string]any{
		"gfx9RbPlusEnable":       true,
		"optDepthOnlyExportRate": true,
	})
	if s.RbPlusEnable || s.OptDepthOnlyExportRate {
		t.Errorf("RB+ settings = %v/%v on hardware without RB+, want false/false",
			s.RbPlusEnable, s.OptDepthOnlyExportRate)
	}

	caps.SupportOutOfOrderPrimitives = false
	s = resolve(t, caps, map[string]any{"enableOutOfOrderPrimitives": "Always"})
	if s.EnableOutOfOrderPrimitives != OutOfOrderPrimDisable {
		t.Errorf("enableOutOfOrderPrimitives = %v, want Disable", s.EnableOutOfOrderPrimitives)
	}
}

func TestResolveGfx9(t *testing.T) {
	caps := defaultCaps(t, chip.Vega10)
	caps.CpUcodeVersion = MinCpUcodeMcbpFix - 1
	s := resolve(t, caps, nil)

	if s.NggSupported {
		t.Error("nggSupported = true on Gfx9")
	}
	if s.CmdBufPreemptionMode != PreemptFullDisableUnsafe {
		t.Errorf("cmdBufPreemptionMode = %v, want FullDisableUnsafe", s.CmdBufPreemptionMode)
	}
	if s.UseDcc&UseDccYuvPlanar != 0 {
		t.Errorf("useDcc = %#x, YUV planar bit must be clear on Gfx9", s.UseDcc)
	}
	if s.NumOffchipLdsBuffers != 256 {
		t.Errorf("numOffchipLdsBuffers = %d, want 256", s.NumOffchipLdsBuffers)
	}
	if s.DccBitsPerPixelThreshold != 0 {
		t.Errorf("dccBitsPerPixelThreshold = %d, want 0", s.DccBitsPerPixelThreshold)
	}
	if !s.WaHtilePipeBankXorMustBeZero || s.WaMetaAliasingFixEnabled {
		t.Error("Vega10/Raven sub-generation rules not applied")
	}
	if s.NumPsWavesSoftGroupedPerCu != 1 {
		t.Errorf("numPsWavesSoftGroupedPerCu = %d, want 1", s.NumPsWavesSoftGroupedPerCu)
	}

	s = resolve(t, defaultCaps(t, chip.Vega20), nil)
	if s.DccBitsPerPixelThreshold != 64 {
		t.Errorf("Vega20 dccBitsPerPixelThreshold = %d, want 64", s.DccBitsPerPixelThreshold)
	}
	if !s.WaMetaAliasingFixEnabled {
		t.Error("Vega20 has working meta aliasing")
	}
}

func TestResolveGfx10(t *testing.T) {
	s := resolve(t, defaultCaps(t, chip.Navi10), nil)
	if s.BinningMaxAllocCountLegacy != maxBinningAllocCount {
		t.Errorf("binningMaxAllocCountLegacy = %d, want clamp to %d", s.BinningMaxAllocCountLegacy, maxBinningAllocCount)
	}
	if s.Treat1dAs2d || s.OptimizedFastClear != 0 {
		t.Error("Gfx10 must disable treat1dAs2d and optimizedFastClear")
	}
	if !s.WaSdmaPreventCompressedSurfUse || !s.WaVgtFlushNggToLegacyGs {
		t.Error("Navi10 rules not applied")
	}
	if s.WaCmaskImageSyncs {
		t.Error("waCmaskImageSyncs set with fixed CP microcode")
	}

	caps := defaultCaps(t, chip.Navi14)
	caps.CpUcodeVersion = MinCpUcodeCmaskSyncFix - 1
	s = resolve(t, caps, nil)
	if !s.WaLateAllocGs0 || s.NggSupported {
		t.Errorf("Navi14: waLateAllocGs0=%v nggSupported=%v", s.WaLateAllocGs0, s.NggSupported)
	}
	if !s.WaCmaskImageSyncs {
		t.Error("waCmaskImageSyncs not set with old CP microcode")
	}
	if s.DistributionTessMode != DistributionTessTrapezoid {
		t.Errorf("distributionTessMode = %v, want Trapezoid", s.DistributionTessMode)
	}
}

func TestResolveGfx103(t *testing.T) {
	s := resolve(t, defaultCaps(t, chip.Navi21), nil)
	if !s.DisableAsymmetricWgpForPs {
		t.Fatal("gfx10.3+ rule not applied")
	}
	if s.PsCuEnLimitMask != 0x3FF {
		t.Errorf("psCuEnLimitMask = %#x, want 0x3ff", s.PsCuEnLimitMask)
	}
	if s.WaVrsStencilUav != VrsStencilUavGraphicsCopies {
		t.Errorf("waVrsStencilUav = %v, want GraphicsCopies", s.WaVrsStencilUav)
	}
	if !s.WaDisableVrsWithDsExports {
		t.Error("Navi21 rules not applied")
	}
	if s.NumOffchipLdsBuffers != 508 {
		t.Errorf("numOffchipLdsBuffers = %d, want 508", s.NumOffchipLdsBuffers)
	}

	s = resolve(t, defaultCaps(t, chip.Rembrandt), nil)
	if s.NggLateAllocGs != 0 || s.GePcAllocNggCulling != 0 || !s.AllowNggOnAllCusWgps {
		t.Errorf("small GPU late alloc: nggLateAllocGs=%d gePcAlloc=%d allCus=%v",
			s.NggLateAllocGs, s.GePcAllocNggCulling, s.AllowNggOnAllCusWgps)
	}
	if !s.WaBadSqttFinishResults {
		t.Error("Rembrandt rules not applied")
	}
}

func TestResolveGfx11(t *testing.T) {
	s := resolve(t, defaultCaps(t, chip.Navi31), nil)

	checks := []struct {
		name      string
		got, want any
	}{
		{"binningMaxAllocCountNggOnChip", s.BinningMaxAllocCountNggOnChip, uint32(255)},
		{"binningFpovsPerBatch", s.BinningFpovsPerBatch, uint32(255)},
		{"nggLateAllocGs", s.NggLateAllocGs, uint32(63)},
		{"numTsMsDrawEntriesPerSe", s.NumTsMsDrawEntriesPerSe, uint32(1024)},
		{"ldsPsGroupSize", s.LdsPsGroupSize, LdsPsGroupSizeDouble},
		{"allowDepthCopyResolve", s.AllowDepthCopyResolve, false},
		{"shaderPrefetchSizeBytes", s.ShaderPrefetchSizeBytes, uint32(0)},
		{"waDisableAc01", s.WaDisableAc01, Ac01Forbid},
		{"gfx11VertexAttributesRingBufferSizePerSe", s.AttributeRingSizePerSe, uint32(1 << 20)},
		{"gfx11EnableContextRegPairOptimization", s.EnableContextRegPairOptimization, true},
		{"gfx11EnableShRegPairOptimizationCs", s.EnableShRegPairOptimizationCs, false},
		{"gfx11EnableZpassPacketOptimization", s.EnableZpassPacketOptimization, true},
		{"waLineStippleReset", s.WaLineStippleReset, true},
		{"waForceSpiThrottleModeNonZero", s.WaForceSpiThrottleModeNonZero, false},
		{"optimizeNullSourceImage", s.OptimizeNullSourceImage, false},
		{"numOffchipLdsBuffers", s.NumOffchipLdsBuffers, uint32(508)},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("Navi31 %s = %v, want %v", c.name, c.got, c.want)
		}
	}

	s = resolve(t, defaultCaps(t, chip.Navi31), map[string]any{
		"binningMaxAllocCountNggOnChip": 40,
		"ac01WaNotNeeded":               true,
	})
	if s.BinningMaxAllocCountNggOnChip != 40 {
		t.Errorf("raw binningMaxAllocCountNggOnChip = %d, want 40", s.BinningMaxAllocCountNggOnChip)
	}
	if s.WaDisableAc01 != Ac01Allow {
		t.Errorf("waDisableAc01 = %v, want Allow", s.WaDisableAc01)
	}

	s = resolve(t, defaultCaps(t, chip.Navi33), nil)
	if !s.WaForceSpiThrottleModeNonZero || s.SpiGsThrottleCntl2&SpiThrottleModeMask == 0 {
		t.Errorf("Navi33 throttle: wa=%v cntl2=%#x", s.WaForceSpiThrottleModeNonZero, s.SpiGsThrottleCntl2)
	}
	if s.AllowNggOnAllCusWgps {
		t.Error("allowNggOnAllCusWgps set on a full Navi33")
	}

	caps := defaultCaps(t, chip.Navi33)
	caps.DeviceID = navi33GopherUltraLite
	s = resolve(t, caps, nil)
	if !s.AllowNggOnAllCusWgps || s.GsCuEnLimitMask != MaskEnableAll {
		t.Error("Navi33 ultra-lite rule not applied")
	}

	s = resolve(t, defaultCaps(t, chip.Phoenix1), nil)
	if s.AttributeRingSizePerSe != Gfx11ApuAttributeRingSize {
		t.Errorf("Phoenix1 attribute ring = %#x, want %#x", s.AttributeRingSizePerSe, Gfx11ApuAttributeRingSize)
	}
	if s.NggLateAllocGs != 0 {
		t.Errorf("Phoenix1 nggLateAllocGs = %d, want 0 on a small GPU", s.NggLateAllocGs)
	}
	if s.GePcAllocNggCulling != 256 {
		t.Errorf("Phoenix1 gePcAlloc = %d, Gfx11 keeps parameter cache late alloc", s.GePcAllocNggCulling)
	}
}

func TestResolveOverrideLateAlloc(t *testing.T) {
	s := resolve(t, defaultCaps(t, chip.Navi31), map[string]any{"overrideNggLateAllocGs": 20})
	if s.NggLateAllocGs != 20 {
		t.Errorf("nggLateAllocGs = %d, want 20 from override", s.NggLateAllocGs)
	}
	s = resolve(t, defaultCaps(t, chip.Navi21), map[string]any{"overrideNggLateAllocGs": 500})
	if s.NggLateAllocGs != maxNggLateAllocGs {
		t.Errorf("nggLateAllocGs = %d, want clamp to %d", s.NggLateAllocGs, maxNggLateAllocGs)
	}
}

func TestResolveEveryRevision(t *testing.T) {
	for _, rev := range chip.Revisions() {
		s := resolve(t, defaultCaps(t, rev), nil)
		gen := rev.Level().Generation()

		if s.NggLateAllocGs > maxNggLateAllocGs {
			t.Errorf("%v: nggLateAllocGs = %d", rev, s.NggLateAllocGs)
		}
		if s.PrimGroupSize > maxPrimGroupSize {
			t.Errorf("%v: primGroupSize = %d", rev, s.PrimGroupSize)
		}
		if s.BinningMaxAllocCountLegacy > 255 || s.BinningMaxAllocCountNggOnChip > 255 || s.BinningFpovsPerBatch > 255 {
			t.Errorf("%v: binning counts out of range", rev)
		}
		if w := s.SampleMaskTrackerWatermark; w != 0 && (w < minWatermark || w > maxWatermark) {
			t.Errorf("%v: watermark = %d", rev, w)
		}
		if m := s.DistributionTessMode; m == DistributionTessDefault || m == DistributionTessTrapezoidOnly {
			t.Errorf("%v: distributionTessMode unresolved: %v", rev, m)
		}
		if s.PrefetchClampSize%PrefetchClampAlignment != 0 {
			t.Errorf("%v: prefetchClampSize = %d", rev, s.PrefetchClampSize)
		}
		if gen == chip.Gfx11 {
			if s.AttributeRingSizePerSe == 0 || s.AttributeRingSizePerSe%Gfx11AttributeRingAlignment != 0 {
				t.Errorf("%v: attribute ring = %#x", rev, s.AttributeRingSizePerSe)
			}
		} else if s.AttributeRingSizePerSe != 0 {
			t.Errorf("%v: attribute ring = %#x outside Gfx11", rev, s.AttributeRingSizePerSe)
		}
	}
}

func TestResolveDeterministic(t *testing.T) {
	caps := defaultCaps(t, chip.Navi22)
	raw := map[string]any{"primGroupSize": 96, "htileEnable": false}
	a, err := NewLoader(caps).Resolve(MapSource(raw))
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewLoader(caps).Resolve(MapSource(raw))
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Errorf("same inputs gave hashes %s and %s", a.Hash(), b.Hash())
	}
	if a.Settings().HiDepthEnable {
		t.Error("hiDepthEnable survives htileEnable=false")
	}
}

func TestResolveUnknownRevision(t *testing.T) {
	caps := chip.Capabilities{Revision: chip.RevisionUnknown, NumShaderEngines: 1}
	rec, err := NewLoader(caps).Resolve(nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rec.Revision() != chip.RevisionUnknown {
		t.Errorf("Revision() = %v", rec.Revision())
	}
	if got := rec.Settings().PrimGroupSize; got != 128 {
		t.Errorf("primGroupSize = %d, want generic default 128", got)
	}
}

func TestResolveZeroShaderEngines(t *testing.T) {
	for _, rev := range []chip.Revision{chip.Vega10, chip.Navi31} {
		caps := defaultCaps(t, rev)
		caps.NumShaderEngines = 0
		l := NewLoader(caps)
		rec, err := l.Resolve(nil)
		if !errors.Is(err, chip.ErrInvalidCapabilities) {
			t.Errorf("%v: Resolve error = %v, want ErrInvalidCapabilities", rev, err)
		}
		if rec != nil {
			t.Errorf("%v: Resolve returned a record", rev)
		}
		if l.Stage() != StageUninitialized {
			t.Errorf("%v: Stage() = %v after failed Init", rev, l.Stage())
		}
	}
}

func TestResolveMaxUint32Overrides(t *testing.T) {
	rec, err := NewLoader(defaultCaps(t, chip.Navi31)).Resolve(MapSource{
		"prefetchClampSize":                       0xFFFFFFFF,
		"gfx11VertexAttributesRingBufferSizePerSe": 0xFFFFFFFF,
	})
	if err != nil {
		t.Fatal(err)
	}
	s := rec.Settings()
	if s.PrefetchClampSize != 0xFFFFF000 {
		t.Errorf("prefetchClampSize = %#x, want 0xfffff000", s.PrefetchClampSize)
	}
	if s.AttributeRingSizePerSe == 0 || s.AttributeRingSizePerSe%Gfx11AttributeRingAlignment != 0 {
		t.Errorf("attribute ring = %#x, want a non-zero aligned maximum", s.AttributeRingSizePerSe)
	}
}

func TestLoaderStages(t *testing.T) {
	l := NewLoader(defaultCaps(t, chip.Navi10))
	if l.Stage() != StageUninitialized {
		t.Fatalf("Stage() = %v", l.Stage())
	}
	if _, err := l.Record(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Record() before Finalize error = %v, want ErrNotReady", err)
	}
	if err := l.Validate(); !errors.Is(err, ErrStage) {
		t.Errorf("Validate() before Init error = %v, want ErrStage", err)
	}
	if err := l.Set("primGroupSize", 1); !errors.Is(err, ErrStage) {
		t.Errorf("Set() before Init error = %v, want ErrStage", err)
	}

	if err := l.Init(EmptySource{}); err != nil {
		t.Fatal(err)
	}
	if err := l.Set("primGroupSize", 300); err != nil {
		t.Fatalf("Set() in EarlyInit: %v", err)
	}
	if err := l.Override(); !errors.Is(err, ErrStage) {
		t.Errorf("Override() before Validate error = %v, want ErrStage", err)
	}
	if err := l.Validate(); err != nil {
		t.Fatal(err)
	}
	if err := l.Set("primGroupSize", 1); !errors.Is(err, ErrStage) {
		t.Errorf("Set() after Validate error = %v, want ErrStage", err)
	}
	if err := l.Finalize(); !errors.Is(err, ErrStage) {
		t.Errorf("Finalize() before Override error = %v, want ErrStage", err)
	}
	if err := l.Override(); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Record(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Record() before Finalize error = %v, want ErrNotReady", err)
	}
	if err := l.Finalize(); err != nil {
		t.Fatal(err)
	}

	rec, err := l.Record()
	if err != nil {
		t.Fatal(err)
	}
	if got := rec.Settings().PrimGroupSize; got != maxPrimGroupSize {
		t.Errorf("primGroupSize = %d, want %d", got, maxPrimGroupSize)
	}
	if err := l.Set("primGroupSize", 1); !errors.Is(err, ErrFrozen) {
		t.Errorf("Set() after Finalize error = %v, want ErrFrozen", err)
	}
	if err := l.Init(nil); !errors.Is(err, ErrStage) {
		t.Errorf("second Init() error = %v, want ErrStage", err)
	}
}

func TestLoaderReread(t *testing.T) {
	l := NewLoader(defaultCaps(t, chip.Navi23))
	first, err := l.Resolve(EmptySource{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := l.Reread(MapSource{"primGroupSize": 64})
	if err != nil {
		t.Fatal(err)
	}
	if first.Settings().PrimGroupSize != 128 {
		t.Errorf("previous record changed: primGroupSize = %d", first.Settings().PrimGroupSize)
	}
	if second.Settings().PrimGroupSize != 64 {
		t.Errorf("reread primGroupSize = %d, want 64", second.Settings().PrimGroupSize)
	}
	if first.Hash() == second.Hash() {
		t.Error("different records share a hash")
	}
	if got, _ := l.Record(); got != second {
		t.Error("Record() does not return the reread record")
	}
}

type failingSource struct{}

func (failingSource) Load() (map[string]any, error) { return nil, errors.New("store offline") }

func TestLoaderStoreInitFailure(t *testing.T) {
	l := NewLoader(defaultCaps(t, chip.Navi10))
	if _, err := l.Resolve(failingSource{}); !errors.Is(err, ErrStoreInit) {
		t.Fatalf("Resolve error = %v, want ErrStoreInit", err)
	}
	if l.Stage() != StageUninitialized {
		t.Errorf("Stage() = %v after failed Init", l.Stage())
	}
}

func TestLoaderRegistrar(t *testing.T) {
	svc := NewService()
	l := NewLoader(defaultCaps(t, chip.Navi10), WithRegistrar(svc))
	if err := l.Init(nil); err != nil {
		t.Fatal(err)
	}
	if !svc.IsRegistered(DefaultComponentName) {
		t.Fatal("loader not registered during Init")
	}
	if err := svc.Set(DefaultComponentName, "primGroupSize", 32); err != nil {
		t.Fatalf("Set through service in EarlyInit: %v", err)
	}
	if err := l.Validate(); err != nil {
		t.Fatal(err)
	}
	if err := l.Override(); err != nil {
		t.Fatal(err)
	}
	if err := l.Finalize(); err != nil {
		t.Fatal(err)
	}
	got, err := svc.Query(DefaultComponentName, "PRIMGROUPSIZE")
	if err != nil {
		t.Fatal(err)
	}
	if got != uint32(32) {
		t.Errorf("Query = %v, want 32", got)
	}
	if err := svc.Set(DefaultComponentName, "primGroupSize", 1); !errors.Is(err, ErrFrozen) {
		t.Errorf("Set through service after Finalize = %v, want ErrFrozen", err)
	}

	// A taken name is logged, not fatal.
	other := NewLoader(defaultCaps(t, chip.Navi10), WithRegistrar(svc))
	if _, err := other.Resolve(nil); err != nil {
		t.Errorf("Resolve with duplicate component name: %v", err)
	}

	l.Close()
	if svc.IsRegistered(DefaultComponentName) {
		t.Error("Close did not unregister")
	}
}

func TestStageString(t *testing.T) {
	if got := StageFinalized.String(); got != "Finalized" {
		t.Errorf("StageFinalized.String() = %q", got)
	}
	if got := Stage(42).String(); got != "Stage(42)" {
		t.Errorf("Stage(42).String() = %q", got)
	}
}
