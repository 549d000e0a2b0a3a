package chip

import "fmt"

// Group names a set of revisions that share workarounds below the
// generation level but above the individual revision.
type Group string

// Workaround sub-groups.
const (
	// GroupVega10Raven covers the first Gfx9 parts with the HTile pipe/bank
	// xor and sample-location defects.
	GroupVega10Raven Group = "Vega10Raven"

	// GroupMetaAliasing covers Gfx9 parts whose meta-aliasing fix is broken.
	GroupMetaAliasing Group = "MetaAliasing"

	// GroupGfx101 covers every Navi1x part.
	GroupGfx101 Group = "Gfx101"

	// GroupNavi2x covers every Gfx10.3 part.
	GroupNavi2x Group = "Navi2x"

	// GroupGfx103Plus covers Gfx10.3 and newer.
	GroupGfx103Plus Group = "Gfx103Plus"
)

// Info is one row of the revision table.
type Info struct {
	Revision Revision
	Name     string
	Level    GfxLevel

	// FamilyID and the half-open eRev range [ERevMin, ERevMax) identify the
	// revision from kernel-reported ids.
	FamilyID uint32
	ERevMin  uint32
	ERevMax  uint32

	// Groups lists sub-generation workaround groups, general to specific.
	Groups []Group
}

// Family ids reported by the kernel driver.
const (
	FamilyVI      uint32 = 130
	FamilyAI      uint32 = 141
	FamilyRV      uint32 = 142
	FamilyNV      uint32 = 143
	FamilyNV3     uint32 = 145
	FamilyRMB     uint32 = 146
	FamilyPhx     uint32 = 148
	FamilyRaphael uint32 = 149
	FamilyMdn     uint32 = 151
)

var (
	gfx9MetaGroups = []Group{GroupVega10Raven, GroupMetaAliasing}
	gfx101Groups   = []Group{GroupGfx101}
	navi2xGroups   = []Group{GroupNavi2x, GroupGfx103Plus}
	gfx11Groups    = []Group{GroupGfx103Plus}
	metaAliasOnly  = []Group{GroupMetaAliasing}
	noGroups       []Group
)

// revisionTable is ordered by Revision value; index i holds Revision(i+1).
var revisionTable = [...]Info{
	{Polaris10, "Polaris10", GfxIp8, FamilyVI, 0x50, 0x5A, noGroups},
	{Polaris11, "Polaris11", GfxIp8, FamilyVI, 0x5A, 0x64, noGroups},
	{Polaris12, "Polaris12", GfxIp8, FamilyVI, 0x64, 0x6E, noGroups},

	{Vega10, "Vega10", GfxIp9, FamilyAI, 0x01, 0x14, gfx9MetaGroups},
	{Raven, "Raven", GfxIp9, FamilyRV, 0x01, 0x81, gfx9MetaGroups},
	{Vega12, "Vega12", GfxIp9, FamilyAI, 0x14, 0x28, noGroups},
	{Vega20, "Vega20", GfxIp9, FamilyAI, 0x28, 0xFF, noGroups},
	{Raven2, "Raven2", GfxIp9, FamilyRV, 0x81, 0x91, metaAliasOnly},
	{Renoir, "Renoir", GfxIp9, FamilyRV, 0x91, 0xFF, metaAliasOnly},

	{Navi10, "Navi10", GfxIp10_1, FamilyNV, 0x01, 0x0A, gfx101Groups},
	{Navi12, "Navi12", GfxIp10_1, FamilyNV, 0x0A, 0x14, gfx101Groups},
	{Navi14, "Navi14", GfxIp10_1, FamilyNV, 0x14, 0x28, gfx101Groups},

	{Navi21, "Navi21", GfxIp10_3, FamilyNV, 0x28, 0x32, navi2xGroups},
	{Navi22, "Navi22", GfxIp10_3, FamilyNV, 0x32, 0x3C, navi2xGroups},
	{Navi23, "Navi23", GfxIp10_3, FamilyNV, 0x3C, 0x46, navi2xGroups},
	{Navi24, "Navi24", GfxIp10_3, FamilyNV, 0x46, 0x50, navi2xGroups},
	{Rembrandt, "Rembrandt", GfxIp10_3, FamilyRMB, 0x01, 0xFF, navi2xGroups},
	{Raphael, "Raphael", GfxIp10_3, FamilyRaphael, 0x01, 0xFF, navi2xGroups},
	{Mendocino, "Mendocino", GfxIp10_3, FamilyMdn, 0x01, 0xFF, navi2xGroups},

	{Navi31, "Navi31", GfxIp11_0, FamilyNV3, 0x01, 0x10, gfx11Groups},
	{Navi32, "Navi32", GfxIp11_0, FamilyNV3, 0x20, 0x30, gfx11Groups},
	{Navi33, "Navi33", GfxIp11_0, FamilyNV3, 0x10, 0x20, gfx11Groups},
	{Phoenix1, "Phoenix1", GfxIp11_0, FamilyPhx, 0x01, 0xFF, gfx11Groups},
}

func lookup(r Revision) (*Info, bool) {
	if r == RevisionUnknown || r >= revisionCount {
		return nil, false
	}
	return &revisionTable[r-1], true
}

// Lookup returns the table row for r.
func Lookup(r Revision) (Info, error) {
	info, ok := lookup(r)
	if !ok {
		return Info{}, fmt.Errorf("%w: %s", ErrUnsupportedRevision, r)
	}
	return *info, nil
}

// Level returns the gfx level of r, or GfxLevelNone if r is unknown.
func (r Revision) Level() GfxLevel {
	if info, ok := lookup(r); ok {
		return info.Level
	}
	return GfxLevelNone
}

// Groups returns the workaround sub-groups of r, general to specific.
func (r Revision) Groups() []Group {
	if info, ok := lookup(r); ok {
		return info.Groups
	}
	return nil
}

// Revisions returns every known revision in table order.
func Revisions() []Revision {
	out := make([]Revision, 0, len(revisionTable))
	for i := range revisionTable {
		out = append(out, revisionTable[i].Revision)
	}
	return out
}

// Detect maps kernel-reported family and eRev ids to a revision.
func Detect(familyID, eRevID uint32) (Revision, error) {
	for i := range revisionTable {
		info := &revisionTable[i]
		if info.FamilyID == familyID && eRevID >= info.ERevMin && eRevID < info.ERevMax {
			return info.Revision, nil
		}
	}
	return RevisionUnknown, fmt.Errorf("%w: family %d erev 0x%02X", ErrUnsupportedRevision, familyID, eRevID)
}
