// Package palette loads .pal color blobs and packs PPU palette-index frame
// buffers into a chosen host pixel format. The PPU itself never produces
// RGB; it only ever produces 6-bit palette indices, so the active palette
// can be swapped at runtime without touching rendering.
package palette

import "github.com/mikai233/nesium-sub003/internal/cartridge"

// entryCount is the number of distinct colors the Ricoh 2C02 can address.
const entryCount = 64

// emphasisVariants is the number of PPUMASK color-emphasis combinations a
// 1536-byte .pal blob encodes one full palette for (bits 5-7 of $2001: red,
// green, blue tint, 8 combinations including "no emphasis").
const emphasisVariants = 8

// Palette holds one or more 64-color RGB tables, one per emphasis
// combination. A 192-byte blob populates only the no-emphasis table and
// every emphasis index aliases it; a 1536-byte blob supplies all eight.
type Palette struct {
	tables [emphasisVariants][entryCount]rgb
}

type rgb struct {
	r, g, b uint8
}

// Default is the canonical Ricoh 2C02 palette used before any .pal file is
// loaded, in the same 0xRRGGBB values NES emulators have shipped by default
// since the FCEUX/Nestopia era.
var Default = mustBuildDefault()

func mustBuildDefault() *Palette {
	p, err := Load(defaultPaletteBytes())
	if err != nil {
		panic(err)
	}
	return p
}

// Load parses a .pal blob: 192 bytes (64 RGB triples, one no-emphasis
// table) or 1536 bytes (64 RGB triples times 8 emphasis combinations).
// Any other length is cartridge.ErrInvalidPaletteSize.
func Load(data []byte) (*Palette, error) {
	switch len(data) {
	case entryCount * 3:
		p := &Palette{}
		table := parseTable(data)
		for v := range p.tables {
			p.tables[v] = table
		}
		return p, nil
	case entryCount * 3 * emphasisVariants:
		p := &Palette{}
		for v := 0; v < emphasisVariants; v++ {
			p.tables[v] = parseTable(data[v*entryCount*3 : (v+1)*entryCount*3])
		}
		return p, nil
	default:
		return nil, cartridge.NewInvalidPaletteSizeError(len(data))
	}
}

func parseTable(data []byte) [entryCount]rgb {
	var table [entryCount]rgb
	for i := 0; i < entryCount; i++ {
		table[i] = rgb{data[i*3], data[i*3+1], data[i*3+2]}
	}
	return table
}

// Color returns the RGB triple for a 6-bit palette index under the given
// PPUMASK emphasis bits (0-7). Indices and emphasis values outside range
// are masked down rather than panicking, since this sits on the hot render
// path and the caller (the PPU) already guarantees 6-bit indices.
func (p *Palette) Color(index uint8, emphasis uint8) (r, g, b uint8) {
	c := p.tables[emphasis&0x07][index&0x3F]
	return c.r, c.g, c.b
}

func defaultPaletteBytes() []byte {
	data := make([]byte, entryCount*3)
	for i, c := range defaultRGB {
		data[i*3] = uint8(c >> 16)
		data[i*3+1] = uint8(c >> 8)
		data[i*3+2] = uint8(c)
	}
	return data
}

// defaultRGB is the canonical 64-entry Ricoh 2C02 RGB palette (0xRRGGBB),
// indexed by the 6-bit color value read out of palette RAM.
var defaultRGB = [64]uint32{
	0x626262, 0x001FB2, 0x2404C8, 0x5200B2,
	0x730076, 0x800024, 0x730B00, 0x522800,
	0x244400, 0x005700, 0x005C00, 0x005324,
	0x003C76, 0x000000, 0x000000, 0x000000,
	0xABABAB, 0x0D57FF, 0x4B30FF, 0x8A13FF,
	0xBC08D6, 0xD21269, 0xC72E00, 0x9D5400,
	0x607B00, 0x209800, 0x00A300, 0x009942,
	0x007DB4, 0x000000, 0x000000, 0x000000,
	0xFFFFFF, 0x53AEFF, 0x9085FF, 0xD365FF,
	0xFF57FF, 0xFF5DCF, 0xFF7757, 0xFA9E00,
	0xBDC700, 0x7AE700, 0x43F611, 0x26EF7E,
	0x2CD5F6, 0x4E4E4E, 0x000000, 0x000000,
	0xFFFFFF, 0xB6E1FF, 0xCED1FF, 0xE9C3FF,
	0xFFBCFF, 0xFFBDF4, 0xFFC6C3, 0xFFD59A,
	0xE9E681, 0xCEF481, 0xB6FB9A, 0xA9FAC3,
	0xA9F0F4, 0xB8B8B8, 0x000000, 0x000000,
}
