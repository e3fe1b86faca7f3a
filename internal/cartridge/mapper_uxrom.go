package cartridge

// uxrom implements mapper 2 (UxROM): a switchable 16 KiB PRG bank at
// $8000-$BFFF and a fixed last 16 KiB bank at $C000-$FFFF. CHR is always
// RAM (8 KiB, no banking).
type uxrom struct {
	standardMirroring
	prgROM   []uint8
	prgRAM   []uint8
	chr      *ChrStorage
	bank     uint8
	numBanks uint8
}

func newUxROM(header Header, prgROM []uint8, chr *ChrStorage, prgRAM []uint8) Mapper {
	return &uxrom{
		standardMirroring: standardMirroring{mode: header.Mirroring},
		prgROM:            prgROM,
		prgRAM:            prgRAM,
		chr:               chr,
		numBanks:          uint8(len(prgROM) / 0x4000),
	}
}

func (m *uxrom) CPURead(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.prgRAM[addr-0x6000], true
	case addr >= 0x8000 && addr < 0xC000:
		bank := m.bank % m.numBanks
		return m.prgROM[int(bank)*0x4000+int(addr-0x8000)], true
	case addr >= 0xC000:
		lastBank := m.numBanks - 1
		return m.prgROM[int(lastBank)*0x4000+int(addr-0xC000)], true
	default:
		return 0, false
	}
}

func (m *uxrom) CPUWrite(addr uint16, value uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		m.prgRAM[addr-0x6000] = value
	case addr >= 0x8000:
		m.bank = value
	}
}

func (m *uxrom) PPURead(addr uint16) uint8        { return m.chr.Read(addr) }
func (m *uxrom) PPUWrite(addr uint16, value uint8) { m.chr.Write(addr, value) }
func (m *uxrom) Reset(ResetKind)                   { m.bank = 0 }
