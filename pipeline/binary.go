package pipeline

import (
	"embed"
	"encoding/binary"
	"strconv"
	"strings"
)

// BindingType is the class of one pipeline resource binding.
type BindingType uint8

// Binding types.
const (
	BindingUniform BindingType = iota
	BindingReadOnlyStorage
	BindingStorage
)

func (t BindingType) String() string {
	switch t {
	case BindingUniform:
		return "uniform"
	case BindingReadOnlyStorage:
		return "read-only-storage"
	case BindingStorage:
		return "storage"
	default:
		return "BindingType(" + strconv.Itoa(int(t)) + ")"
	}
}

// SpirvMagic is the first word of a SPIR-V module.
const SpirvMagic = 0x07230203

// Binary is one pipeline binary: WGSL source or a SPIR-V module. A Binary
// with no code is absent.
type Binary struct {
	// Label names the binary in device object labels and caches.
	Label string

	Code []byte

	// EntryPoint is the compute entry point.
	EntryPoint string

	// Layout lists the bindings of group 0, by binding index.
	Layout []BindingType
}

// Absent reports whether the binary is missing from its table.
func (b *Binary) Absent() bool { return len(b.Code) == 0 }

// IsSPIRV reports whether Code is a SPIR-V module rather than WGSL text.
func (b *Binary) IsSPIRV() bool {
	return len(b.Code) >= 4 && len(b.Code)%4 == 0 && binary.LittleEndian.Uint32(b.Code) == SpirvMagic
}

// Table is the binary set of one chip family, indexed by Kind. Tables are
// built once and never modified.
type Table struct {
	family   string
	waveSize int
	binaries [KindCount]Binary
}

// Family returns the family name.
func (t *Table) Family() string { return t.family }

// WaveSize returns the wave size the binaries were built for.
func (t *Table) WaveSize() int { return t.waveSize }

// Binary returns the entry for k. Kinds outside the table are absent.
func (t *Table) Binary(k Kind) *Binary {
	if !k.Valid() {
		return &Binary{}
	}
	return &t.binaries[k]
}

// Present returns the kinds the table carries a binary for.
func (t *Table) Present() []Kind {
	var out []Kind
	for k := range KindCount {
		if !t.binaries[k].Absent() {
			out = append(out, k)
		}
	}
	return out
}

//go:embed shaders/*.wgsl
var shaderFS embed.FS

var kindSources = [KindCount]string{
	KindClearBuffer:       "clear_buffer.wgsl",
	KindFillMemDword:      "fill_mem_dword.wgsl",
	KindFillMem4xDword:    "fill_mem_4xdword.wgsl",
	KindCopyBufferByte:    "copy_buffer_byte.wgsl",
	KindCopyBufferDword:   "copy_buffer_dword.wgsl",
	KindClearImage2d:      "clear_image_2d.wgsl",
	KindCopyImage2d:       "copy_image_2d.wgsl",
	KindGenerateMipmaps:   "generate_mipmaps.wgsl",
	KindResolveMsaa2x:     "resolve_msaa_2x.wgsl",
	KindResolveMsaa4x:     "resolve_msaa_4x.wgsl",
	KindExpandMaskRamMs2x: "expand_mask_ram_ms2x.wgsl",
	KindHtileCopyAndFixUp: "htile_copy_and_fixup.wgsl",
}

var (
	fillLayout = []BindingType{BindingUniform, BindingStorage}
	copyLayout = []BindingType{BindingUniform, BindingReadOnlyStorage, BindingStorage}
)

var kindLayouts = [KindCount][]BindingType{
	KindClearBuffer:       fillLayout,
	KindFillMemDword:      fillLayout,
	KindFillMem4xDword:    fillLayout,
	KindCopyBufferByte:    copyLayout,
	KindCopyBufferDword:   copyLayout,
	KindClearImage2d:      fillLayout,
	KindCopyImage2d:       copyLayout,
	KindGenerateMipmaps:   copyLayout,
	KindResolveMsaa2x:     copyLayout,
	KindResolveMsaa4x:     copyLayout,
	KindExpandMaskRamMs2x: fillLayout,
	KindHtileCopyAndFixUp: copyLayout,
}

// waveSizePlaceholder is replaced by the family's wave size in every source.
const waveSizePlaceholder = "WAVE_SIZE"

// buildTable instantiates the embedded sources for one family. Kinds in
// absent get no binary.
func buildTable(family string, waveSize int, absent ...Kind) *Table {
	t := &Table{family: family, waveSize: waveSize}
	skip := make(map[Kind]bool, len(absent))
	for _, k := range absent {
		skip[k] = true
	}
	wave := strconv.Itoa(waveSize)
	for k := range KindCount {
		if skip[k] {
			continue
		}
		src, err := shaderFS.ReadFile("shaders/" + kindSources[k])
		if err != nil {
			panic("pipeline: missing embedded shader " + kindSources[k])
		}
		t.binaries[k] = Binary{
			Label:      family + "_" + k.String(),
			Code:       []byte(strings.ReplaceAll(string(src), waveSizePlaceholder, wave)),
			EntryPoint: "main",
			Layout:     kindLayouts[k],
		}
	}
	return t
}

// NewTable builds a table from caller-supplied binaries. Kinds missing from
// entries are absent. The binaries are copied.
func NewTable(family string, waveSize int, entries map[Kind]Binary) *Table {
	t := &Table{family: family, waveSize: waveSize}
	for k, b := range entries {
		if !k.Valid() {
			continue
		}
		b.Code = append([]byte(nil), b.Code...)
		b.Layout = append([]BindingType(nil), b.Layout...)
		t.binaries[k] = b
	}
	return t
}
