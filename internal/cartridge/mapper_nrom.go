package cartridge

// nrom implements mapper 0 (NROM): no bank switching. 16 KiB PRG ROM is
// mirrored to fill the 32 KiB CPU window; 32 KiB PRG ROM is mapped direct.
type nrom struct {
	standardMirroring
	prgROM []uint8
	prgRAM []uint8
	chr    *ChrStorage
}

func newNROM(header Header, prgROM []uint8, chr *ChrStorage, prgRAM []uint8) Mapper {
	return &nrom{
		standardMirroring: standardMirroring{mode: header.Mirroring},
		prgROM:            prgROM,
		prgRAM:            prgRAM,
		chr:               chr,
	}
}

func (m *nrom) CPURead(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.prgRAM[addr-0x6000], true
	case addr >= 0x8000:
		if len(m.prgROM) == 0 {
			return 0, true
		}
		offset := int(addr-0x8000) % len(m.prgROM)
		return m.prgROM[offset], true
	default:
		return 0, false
	}
}

func (m *nrom) CPUWrite(addr uint16, value uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.prgRAM[addr-0x6000] = value
	}
}

func (m *nrom) PPURead(addr uint16) uint8        { return m.chr.Read(addr) }
func (m *nrom) PPUWrite(addr uint16, value uint8) { m.chr.Write(addr, value) }
func (m *nrom) Reset(ResetKind)                   {}
