package palette

// Format selects the packed pixel layout RenderBuffer produces.
type Format int

const (
	RGBA8888 Format = iota
	BGRA8888
	ARGB8888
	RGB565
	RGB555
)

// BytesPerPixel reports the packed size of one pixel in this format.
func (f Format) BytesPerPixel() int {
	switch f {
	case RGB565, RGB555:
		return 2
	default:
		return 4
	}
}

// Pack converts a row-major buffer of 6-bit palette indices into packed
// pixels in the given format, using the active palette and a single
// emphasis selection applied uniformly across the frame (the PPU only
// exposes one emphasis state at a time via PPUMASK, so there is no
// per-pixel emphasis to track here). dst must be len(indices)*f.BytesPerPixel()
// bytes.
func Pack(dst []byte, indices []uint8, p *Palette, emphasis uint8, f Format) {
	if p == nil {
		p = Default
	}
	bpp := f.BytesPerPixel()
	for i, idx := range indices {
		r, g, b := p.Color(idx, emphasis)
		off := i * bpp
		switch f {
		case RGBA8888:
			dst[off], dst[off+1], dst[off+2], dst[off+3] = r, g, b, 0xFF
		case BGRA8888:
			dst[off], dst[off+1], dst[off+2], dst[off+3] = b, g, r, 0xFF
		case ARGB8888:
			dst[off], dst[off+1], dst[off+2], dst[off+3] = 0xFF, r, g, b
		case RGB565:
			v := uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
			dst[off], dst[off+1] = uint8(v), uint8(v>>8)
		case RGB555:
			v := uint16(r>>3)<<10 | uint16(g>>3)<<5 | uint16(b>>3)
			dst[off], dst[off+1] = uint8(v), uint8(v>>8)
		}
	}
}
