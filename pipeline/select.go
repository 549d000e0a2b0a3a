package pipeline

import (
	"fmt"

	"github.com/gogpu/gfxhal/chip"
)

// Family tables. Gfx8 and Gfx9 run wave64 binaries, later families wave32.
// Gfx8 predates the HTile layout the fixup pipeline writes, and Gfx11 has
// no FMask to expand.
var (
	gfx8Table   = buildTable("gfx8", 64, KindHtileCopyAndFixUp)
	gfx9Table   = buildTable("gfx9", 64)
	gfx10Table  = buildTable("gfx10", 32)
	gfx103Table = buildTable("gfx10.3", 32)
	gfx11Table  = buildTable("gfx11", 32, KindExpandMaskRamMs2x)
)

// revisionTables maps each supported revision to its family table. Several
// revisions share one table. Mendocino has no binaries.
var revisionTables = map[chip.Revision]*Table{
	chip.Polaris10: gfx8Table,
	chip.Polaris11: gfx8Table,
	chip.Polaris12: gfx8Table,

	chip.Vega10: gfx9Table,
	chip.Raven:  gfx9Table,
	chip.Vega12: gfx9Table,
	chip.Vega20: gfx9Table,
	chip.Raven2: gfx9Table,
	chip.Renoir: gfx9Table,

	chip.Navi10: gfx10Table,
	chip.Navi12: gfx10Table,
	chip.Navi14: gfx10Table,

	chip.Navi21:    gfx103Table,
	chip.Navi22:    gfx103Table,
	chip.Navi23:    gfx103Table,
	chip.Navi24:    gfx103Table,
	chip.Rembrandt: gfx103Table,
	chip.Raphael:   gfx103Table,

	chip.Navi31:   gfx11Table,
	chip.Navi32:   gfx11Table,
	chip.Navi33:   gfx11Table,
	chip.Phoenix1: gfx11Table,
}

// Select returns the binary table for rev. Every call for the same revision
// returns the same table. An unsupported revision wraps
// chip.ErrUnsupportedRevision.
func Select(rev chip.Revision) (*Table, error) {
	t, ok := revisionTables[rev]
	if !ok {
		return nil, fmt.Errorf("pipeline: no binaries for %v: %w", rev, chip.ErrUnsupportedRevision)
	}
	return t, nil
}

// SelectFor selects the table for the revision in caps.
func SelectFor(caps *chip.Capabilities) (*Table, error) {
	return Select(caps.Revision)
}

// SupportedRevisions returns the revisions Select accepts, in revision order.
func SupportedRevisions() []chip.Revision {
	var out []chip.Revision
	for _, rev := range chip.Revisions() {
		if _, ok := revisionTables[rev]; ok {
			out = append(out, rev)
		}
	}
	return out
}
