package cartridge

// chrKind distinguishes whether pattern-table space is backed by ROM, RAM,
// or nothing at all (some boards, e.g. Vs. System variants, have none).
type chrKind uint8

const (
	chrNone chrKind = iota
	chrROM
	chrRAM
)

// ChrStorage backs the 8 KiB pattern-table window ($0000-$1FFF as seen by
// the PPU). ROM reads are mirrored to the underlying data's length; writes
// are accepted only when the storage is RAM.
type ChrStorage struct {
	kind chrKind
	data []uint8
}

// selectChrStorage decides the storage kind the way nesium-core's
// select_chr_storage does: ROM wins when the header declares CHR ROM bytes;
// otherwise RAM sized by whichever of CHR-RAM/CHR-NVRAM is larger, or an
// 8 KiB CHR RAM when both are zero.
func selectChrStorage(h Header, chrROM []uint8) ChrStorage {
	if h.CHRROMSize > 0 {
		return ChrStorage{kind: chrROM, data: chrROM}
	}
	size := h.CHRRAMSize
	if h.CHRNVRAMSize > size {
		size = h.CHRNVRAMSize
	}
	if size == 0 {
		// iNES 1.0 roms routinely omit the CHR-RAM size field entirely;
		// fall back to the conventional 8 KiB CHR RAM window.
		size = 8192
	}
	return ChrStorage{kind: chrRAM, data: make([]uint8, size)}
}

// Read returns the byte at addr, mirrored into the underlying storage.
func (c *ChrStorage) Read(addr uint16) uint8 {
	if c.kind == chrNone || len(c.data) == 0 {
		return 0
	}
	return c.data[int(addr)%len(c.data)]
}

// Write stores value at addr when the storage is RAM; ROM writes are
// silently ignored, matching real cartridge wiring.
func (c *ChrStorage) Write(addr uint16, value uint8) {
	if c.kind != chrRAM || len(c.data) == 0 {
		return
	}
	c.data[int(addr)%len(c.data)] = value
}

// IsRAM reports whether this storage accepts writes.
func (c *ChrStorage) IsRAM() bool { return c.kind == chrRAM }

// Bytes exposes the backing slice directly, used by mappers that bank
// switch CHR in fixed-size windows.
func (c *ChrStorage) Bytes() []uint8 { return c.data }
