package cartridge

// mmc1 implements mapper 1 (MMC1 / SxROM): a 5-bit serial shift register
// loaded one bit per CPU write (LSB first), committed to one of four
// internal registers on the fifth write based on the address. A write with
// bit 7 set resets the shift register and forces PRG bank mode 3
// (fix-last-bank) regardless of the in-flight bits, matching real hardware.
type mmc1 struct {
	prgROM []uint8
	prgRAM []uint8
	chr    *ChrStorage

	shift      uint8
	shiftCount uint8

	control uint8 // mirroring (0-1), prg mode (2-3), chr mode (4)
	chrBank0 uint8
	chrBank1 uint8
	prgBank  uint8

	numPRGBanks16k uint8
	numCHRBanks4k  uint8
}

func newMMC1(header Header, prgROM []uint8, chr *ChrStorage, prgRAM []uint8) Mapper {
	numPRG := uint8(len(prgROM) / 0x4000)
	if numPRG == 0 {
		numPRG = 1
	}
	numCHR := uint8(len(chr.Bytes()) / 0x1000)
	if numCHR == 0 {
		numCHR = 1
	}
	return &mmc1{
		prgROM:         prgROM,
		prgRAM:         prgRAM,
		chr:            chr,
		control:        0x0C,
		numPRGBanks16k: numPRG,
		numCHRBanks4k:  numCHR,
	}
}

func (m *mmc1) CPURead(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.prgRAM[addr-0x6000], true
	case addr >= 0x8000:
		bankLo, bankHi := m.prgBanks()
		if addr < 0xC000 {
			return m.prgROM[int(bankLo)*0x4000+int(addr-0x8000)], true
		}
		return m.prgROM[int(bankHi)*0x4000+int(addr-0xC000)], true
	default:
		return 0, false
	}
}

func (m *mmc1) prgBanks() (lo, hi uint8) {
	mode := (m.control >> 2) & 0x03
	bank := m.prgBank % m.numPRGBanks16k
	switch mode {
	case 0, 1:
		// 32 KiB switch: low bit of bank ignored.
		base := bank &^ 1
		return base % m.numPRGBanks16k, (base + 1) % m.numPRGBanks16k
	case 2:
		// fix first bank at $8000, switch at $C000.
		return 0, bank
	default:
		// fix last bank at $C000, switch at $8000.
		return bank, m.numPRGBanks16k - 1
	}
}

func (m *mmc1) CPUWrite(addr uint16, value uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.prgRAM[addr-0x6000] = value
		return
	}
	if addr < 0x8000 {
		return
	}

	if value&0x80 != 0 {
		m.shift = 0
		m.shiftCount = 0
		m.control |= 0x0C
		return
	}

	m.shift |= (value & 0x01) << m.shiftCount
	m.shiftCount++

	if m.shiftCount < 5 {
		return
	}

	committed := m.shift
	m.shift = 0
	m.shiftCount = 0

	switch {
	case addr < 0xA000:
		m.control = committed
	case addr < 0xC000:
		m.chrBank0 = committed
	case addr < 0xE000:
		m.chrBank1 = committed
	default:
		m.prgBank = committed & 0x0F
	}
}

func (m *mmc1) chrBanks4k() (lo, hi uint16) {
	if m.control&0x10 != 0 {
		return uint16(m.chrBank0 % m.numCHRBanks4k), uint16(m.chrBank1 % m.numCHRBanks4k)
	}
	base := (m.chrBank0 &^ 1) % m.numCHRBanks4k
	return uint16(base), uint16((base + 1) % m.numCHRBanks4k)
}

func (m *mmc1) PPURead(addr uint16) uint8 {
	lo, hi := m.chrBanks4k()
	if addr < 0x1000 {
		return m.chr.Read(addr + lo*0x1000)
	}
	return m.chr.Read((addr - 0x1000) + hi*0x1000)
}

func (m *mmc1) PPUWrite(addr uint16, value uint8) {
	lo, hi := m.chrBanks4k()
	if addr < 0x1000 {
		m.chr.Write(addr+lo*0x1000, value)
		return
	}
	m.chr.Write((addr-0x1000)+hi*0x1000, value)
}

func (m *mmc1) Mirroring() MirrorMode {
	switch m.control & 0x03 {
	case 0:
		return MirrorSingleScreen0
	case 1:
		return MirrorSingleScreen1
	case 2:
		return MirrorVertical
	default:
		return MirrorHorizontal
	}
}

func (m *mmc1) MapNametable(addr uint16) NametableTarget {
	sm := standardMirroring{mode: m.Mirroring()}
	return sm.MapNametable(addr)
}

func (m *mmc1) ReadMapperNametable(uint16) uint8   { return 0 }
func (m *mmc1) WriteMapperNametable(uint16, uint8) {}
func (m *mmc1) IRQPending() bool                   { return false }
func (m *mmc1) ClearIRQ()                          {}
func (m *mmc1) CPUClock()                          {}
func (m *mmc1) PPUVRAMAccess(uint16)               {}

func (m *mmc1) Reset(ResetKind) {
	m.shift = 0
	m.shiftCount = 0
	m.control |= 0x0C
}
