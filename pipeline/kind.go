// Package pipeline resolves and constructs the internal compute pipelines a
// device needs for copies, clears, resolves and metadata fixups.
//
// [Select] maps a chip revision to the read-only [Table] of binaries for its
// family. A [Factory] turns table entries into device objects with a
// two-phase protocol: query the backing size, allocate, construct, and
// release the block if construction fails.
package pipeline

import "fmt"

// Kind identifies one internal pipeline. Kinds index a Table and a Slots
// array.
type Kind uint8

// Pipeline kinds, in construction order.
const (
	KindClearBuffer Kind = iota
	KindFillMemDword
	KindFillMem4xDword
	KindCopyBufferByte
	KindCopyBufferDword
	KindClearImage2d
	KindCopyImage2d
	KindGenerateMipmaps
	KindResolveMsaa2x
	KindResolveMsaa4x
	KindExpandMaskRamMs2x
	KindHtileCopyAndFixUp

	// KindCount is the number of kinds.
	KindCount
)

var kindNames = [KindCount]string{
	"ClearBuffer",
	"FillMemDword",
	"FillMem4xDword",
	"CopyBufferByte",
	"CopyBufferDword",
	"ClearImage2d",
	"CopyImage2d",
	"GenerateMipmaps",
	"ResolveMsaa2x",
	"ResolveMsaa4x",
	"ExpandMaskRamMs2x",
	"HtileCopyAndFixUp",
}

func (k Kind) String() string {
	if k < KindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k names a pipeline.
func (k Kind) Valid() bool { return k < KindCount }

// Kinds returns every kind in construction order.
func Kinds() []Kind {
	out := make([]Kind, KindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}
