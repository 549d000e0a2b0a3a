// Package chip describes the GPU revisions gfxhal knows about and the
// capability snapshot a detected device reports.
//
// Everything revision-dependent is expressed as data: the revision table maps
// each [Revision] to its gfx level, family id, eRev range and the workaround
// sub-groups it belongs to. Adding a revision is a table change, not a new
// branch in the resolver.
package chip

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedRevision is returned when a revision identifier matches no
// known family. It is terminal: callers cannot proceed without binaries or
// settings for the device.
var ErrUnsupportedRevision = errors.New("chip: unsupported revision")

// Revision identifies a specific chip variant.
type Revision uint32

// Known revisions, grouped by gfx level.
const (
	RevisionUnknown Revision = iota

	Polaris10
	Polaris11
	Polaris12

	Vega10
	Raven
	Vega12
	Vega20
	Raven2
	Renoir

	Navi10
	Navi12
	Navi14

	Navi21
	Navi22
	Navi23
	Navi24
	Rembrandt
	Raphael
	Mendocino

	Navi31
	Navi32
	Navi33
	Phoenix1

	revisionCount
)

// String returns the revision name, e.g. "Navi21".
func (r Revision) String() string {
	if info, ok := lookup(r); ok {
		return info.Name
	}
	return fmt.Sprintf("Revision(%d)", uint32(r))
}

// ParseRevision converts a case-insensitive revision name to a Revision.
func ParseRevision(name string) (Revision, error) {
	want := strings.TrimSpace(name)
	for i := range revisionTable {
		if strings.EqualFold(revisionTable[i].Name, want) {
			return revisionTable[i].Revision, nil
		}
	}
	return RevisionUnknown, fmt.Errorf("%w: %q", ErrUnsupportedRevision, name)
}

// GfxLevel is the generation tier of a revision.
type GfxLevel uint8

// Gfx levels. The zero value is not a valid level.
const (
	GfxLevelNone GfxLevel = iota
	GfxIp8
	GfxIp9
	GfxIp10_1
	GfxIp10_3
	GfxIp11_0
)

var gfxLevelNames = [...]string{
	GfxLevelNone: "None",
	GfxIp8:       "GfxIp8",
	GfxIp9:       "GfxIp9",
	GfxIp10_1:    "GfxIp10_1",
	GfxIp10_3:    "GfxIp10_3",
	GfxIp11_0:    "GfxIp11_0",
}

func (l GfxLevel) String() string {
	if int(l) < len(gfxLevelNames) {
		return gfxLevelNames[l]
	}
	return fmt.Sprintf("GfxLevel(%d)", uint8(l))
}

// Generation collapses a gfx level into its major generation.
func (l GfxLevel) Generation() Generation {
	switch l {
	case GfxIp8:
		return Gfx8
	case GfxIp9:
		return Gfx9
	case GfxIp10_1, GfxIp10_3:
		return Gfx10
	case GfxIp11_0:
		return Gfx11
	default:
		return GenerationNone
	}
}

// IsGfx10Plus reports whether the level is Gfx10.1 or newer.
func (l GfxLevel) IsGfx10Plus() bool { return l >= GfxIp10_1 }

// IsGfx103Plus reports whether the level is Gfx10.3 or newer.
func (l GfxLevel) IsGfx103Plus() bool { return l >= GfxIp10_3 }

// Generation is the major hardware generation.
type Generation uint8

// Generations.
const (
	GenerationNone Generation = iota
	Gfx8
	Gfx9
	Gfx10
	Gfx11
)

func (g Generation) String() string {
	switch g {
	case Gfx8:
		return "Gfx8"
	case Gfx9:
		return "Gfx9"
	case Gfx10:
		return "Gfx10"
	case Gfx11:
		return "Gfx11"
	default:
		return "None"
	}
}
