package chip

import (
	"os"
	"strconv"
	"strings"
)

// HardwareBugs is the set of known Gfx11 silicon defects present on a part.
// Settings workaround rules test individual bits.
type HardwareBugs uint64

// Gfx11 hardware defects.
const (
	// BugPbbBreakBatch: the primitive binner breaks batches on the wrong
	// prim/fpov/dealloc limit.
	BugPbbBreakBatch HardwareBugs = 1 << iota
	// BugPbbDropBins24SE: bins may be dropped when configured for 24 SEs.
	BugPbbDropBins24SE
	// BugSpiThrottleGsPsVgpr: the SPI GS throttle drops the MSB of its
	// VGPR/LDS-in-use math. Navi33 only.
	BugSpiThrottleGsPsVgpr
	BugSqgTtWptr
	BugCbPerfCountersStuckZero
	BugLineStippleReset
	BugStereoPositionNanCheck
	// BugPwsTimestampStall: a PWS timestamp event can stall the flusher.
	BugPwsTimestampStall
	BugPwsDepthWriteTextureRead
	BugScDbHangWaveConflict
	BugGeClockStaysHigh
	// BugSpiExportConflict: the export holding-queue rule reduces grant
	// throughput.
	BugSpiExportConflict
	BugSpiSoftLock
	// BugDccAc01Corruption: DCC AC01 clear codes can produce flickering dots.
	BugDccAc01Corruption
	BugScratchSvs
	BugMsaaLoadDstSel
	BugSqPerfSnapshotVmid
	BugRs64Coherency
	BugSubsystemDroop

	bugsEnd
)

// AllHardwareBugs has every defined bit set.
const AllHardwareBugs = bugsEnd - 1

// Has reports whether every bit of b is set in h.
func (h HardwareBugs) Has(b HardwareBugs) bool { return h&b == b }

var bugNames = [...]string{
	"PbbBreakBatch",
	"PbbDropBins24SE",
	"SpiThrottleGsPsVgpr",
	"SqgTtWptr",
	"CbPerfCountersStuckZero",
	"LineStippleReset",
	"StereoPositionNanCheck",
	"PwsTimestampStall",
	"PwsDepthWriteTextureRead",
	"ScDbHangWaveConflict",
	"GeClockStaysHigh",
	"SpiExportConflict",
	"SpiSoftLock",
	"DccAc01Corruption",
	"ScratchSvs",
	"MsaaLoadDstSel",
	"SqPerfSnapshotVmid",
	"Rs64Coherency",
	"SubsystemDroop",
}

// Names lists the set bits in ascending order.
func (h HardwareBugs) Names() []string {
	var out []string
	for i, name := range bugNames {
		if h&(1<<i) != 0 {
			out = append(out, name)
		}
	}
	return out
}

func (h HardwareBugs) String() string {
	if h == 0 {
		return "none"
	}
	return strings.Join(h.Names(), "|")
}

// Environment variables that patch the detected bug set. Both hold hex
// words; bits selected by the mask are replaced by the override's bits.
const (
	EnvGfx11Override = "SWD_GFX11_OVERRIDE"
	EnvGfx11Mask     = "SWD_GFX11_MASK"
)

const navi3xCommonBugs = BugPbbBreakBatch | BugPbbDropBins24SE | BugSqgTtWptr |
	BugCbPerfCountersStuckZero | BugLineStippleReset | BugStereoPositionNanCheck |
	BugPwsTimestampStall | BugPwsDepthWriteTextureRead | BugScDbHangWaveConflict |
	BugGeClockStaysHigh | BugSpiExportConflict | BugSpiSoftLock | BugDccAc01Corruption |
	BugScratchSvs | BugMsaaLoadDstSel | BugSqPerfSnapshotVmid

var gfx11Bugs = []struct {
	rev  Revision
	bugs HardwareBugs
}{
	{Navi31, navi3xCommonBugs},
	{Navi32, navi3xCommonBugs | BugSubsystemDroop},
	{Navi33, navi3xCommonBugs | BugSpiThrottleGsPsVgpr},
	{Phoenix1, navi3xCommonBugs&^BugPbbDropBins24SE | BugRs64Coherency},
}

// DetectGfx11Workarounds returns the hardware bugs of the Gfx11 part
// identified by familyID and eRevID. ok is false for any id pair outside the
// Gfx11 ranges. The result is patched by the SWD_GFX11_* variables when set.
func DetectGfx11Workarounds(familyID, eRevID uint32) (bugs HardwareBugs, ok bool) {
	rev, err := Detect(familyID, eRevID)
	if err != nil || rev.Level() != GfxIp11_0 {
		return 0, false
	}
	for _, e := range gfx11Bugs {
		if e.rev == rev {
			bugs = e.bugs
			break
		}
	}
	return applyEnvOverride(bugs), true
}

func applyEnvOverride(bugs HardwareBugs) HardwareBugs {
	override, okOverride := envHex(EnvGfx11Override)
	mask, okMask := envHex(EnvGfx11Mask)
	if !okOverride || !okMask {
		return bugs
	}
	return bugs&^HardwareBugs(mask) | HardwareBugs(mask&override)
}

func envHex(key string) (uint64, bool) {
	s, ok := os.LookupEnv(key)
	if !ok {
		return 0, false
	}
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
