package cartridge

// gxrom implements mapper 66 (GxROM): a single register at $8000-$FFFF
// selects both a 32 KiB PRG bank (bits 4-5) and an 8 KiB CHR bank
// (bits 0-1) simultaneously.
type gxrom struct {
	standardMirroring
	prgROM      []uint8
	chr         *ChrStorage
	prgBank     uint8
	chrBank     uint8
	numPRGBanks uint8
	numCHRBanks uint8
}

func newGxROM(header Header, prgROM []uint8, chr *ChrStorage, prgRAM []uint8) Mapper {
	numPRG := uint8(len(prgROM) / 0x8000)
	if numPRG == 0 {
		numPRG = 1
	}
	numCHR := uint8(len(chr.Bytes()) / 0x2000)
	if numCHR == 0 {
		numCHR = 1
	}
	return &gxrom{
		standardMirroring: standardMirroring{mode: header.Mirroring},
		prgROM:            prgROM,
		chr:               chr,
		numPRGBanks:       numPRG,
		numCHRBanks:       numCHR,
	}
}

func (m *gxrom) CPURead(addr uint16) (uint8, bool) {
	if addr < 0x8000 {
		return 0, false
	}
	bank := m.prgBank % m.numPRGBanks
	return m.prgROM[int(bank)*0x8000+int(addr-0x8000)], true
}

func (m *gxrom) CPUWrite(addr uint16, value uint8) {
	if addr < 0x8000 {
		return
	}
	m.prgBank = (value >> 4) & 0x03
	m.chrBank = value & 0x03
}

func (m *gxrom) PPURead(addr uint16) uint8 {
	bank := m.chrBank % m.numCHRBanks
	return m.chr.Read(addr + uint16(bank)*0x2000)
}

func (m *gxrom) PPUWrite(addr uint16, value uint8) {
	bank := m.chrBank % m.numCHRBanks
	m.chr.Write(addr+uint16(bank)*0x2000, value)
}

func (m *gxrom) Reset(ResetKind) { m.prgBank = 0; m.chrBank = 0 }
