package cartridge

// cnrom implements mapper 3 (CNROM): fixed PRG (16 or 32 KiB, mirrored like
// NROM) and a switchable 8 KiB CHR ROM bank selected by any write to
// $8000-$FFFF (only the low 2 bits are significant on most boards; here the
// written byte is reduced modulo the CHR bank count, which also covers
// larger images).
type cnrom struct {
	standardMirroring
	prgROM   []uint8
	prgRAM   []uint8
	chr      *ChrStorage
	bank     uint8
	numBanks uint8
}

func newCNROM(header Header, prgROM []uint8, chr *ChrStorage, prgRAM []uint8) Mapper {
	numChrBanks := uint8(1)
	if len(chr.Bytes()) > 0 {
		numChrBanks = uint8(len(chr.Bytes()) / 0x2000)
		if numChrBanks == 0 {
			numChrBanks = 1
		}
	}
	return &cnrom{
		standardMirroring: standardMirroring{mode: header.Mirroring},
		prgROM:            prgROM,
		prgRAM:            prgRAM,
		chr:               chr,
		numBanks:          numChrBanks,
	}
}

func (m *cnrom) CPURead(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.prgRAM[addr-0x6000], true
	case addr >= 0x8000:
		if len(m.prgROM) == 0 {
			return 0, true
		}
		return m.prgROM[int(addr-0x8000)%len(m.prgROM)], true
	default:
		return 0, false
	}
}

func (m *cnrom) CPUWrite(addr uint16, value uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		m.prgRAM[addr-0x6000] = value
	case addr >= 0x8000:
		m.bank = value % m.numBanks
	}
}

func (m *cnrom) PPURead(addr uint16) uint8 {
	return m.chr.Read(addr + uint16(m.bank)*0x2000)
}

func (m *cnrom) PPUWrite(addr uint16, value uint8) {
	m.chr.Write(addr+uint16(m.bank)*0x2000, value)
}

func (m *cnrom) Reset(ResetKind) { m.bank = 0 }
