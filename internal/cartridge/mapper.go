package cartridge

// NametableTarget identifies where a nametable access should land: either
// an offset into the console's shared 2 KiB CIRAM, or an offset into
// mapper-provided storage (four-screen boards, or boards that map
// nametables out of extra CHR RAM).
type NametableTarget struct {
	CIRAM  bool
	Offset uint16
}

// Mapper is the capability set a cartridge board exposes to the bus and
// PPU. Addresses passed to CPU/PPU methods are already range-checked by
// the caller; a Mapper only needs to handle the ranges it's responsible
// for ($4020-$FFFF for CPU, $0000-$1FFF for PPU pattern tables).
type Mapper interface {
	// CPURead returns the byte at addr and true if this mapper drives the
	// address; false means "no device here", so the bus should return
	// open-bus instead.
	CPURead(addr uint16) (uint8, bool)
	CPUWrite(addr uint16, data uint8)

	PPURead(addr uint16) uint8
	PPUWrite(addr uint16, data uint8)

	// MapNametable resolves a PPU nametable address ($2000-$2FFF, already
	// masked to the 4 KiB nametable window) to either shared CIRAM or
	// mapper-owned storage.
	MapNametable(addr uint16) NametableTarget
	ReadMapperNametable(offset uint16) uint8
	WriteMapperNametable(offset uint16, value uint8)

	Mirroring() MirrorMode

	IRQPending() bool
	ClearIRQ()
	// CPUClock is invoked once per CPU bus cycle, for boards with their own
	// cycle counters (e.g. VRC IRQ units). Most boards no-op this.
	CPUClock()
	// PPUVRAMAccess is invoked on every PPU pattern-table access during
	// rendering and on CPU-initiated $2007 accesses, for MMC3-style A12
	// rising-edge IRQ counters.
	PPUVRAMAccess(addr uint16)

	Reset(kind ResetKind)
}

// Provider lets an embedder supply mapper implementations for IDs the
// built-in registry doesn't know about.
type Provider interface {
	GetMapper(header Header, prgROM, chrROM, trainer []uint8) (Mapper, bool)
}

type mapperFactory func(header Header, prgROM []uint8, chr *ChrStorage, prgRAM []uint8) Mapper

var builtinMappers = map[uint16]mapperFactory{
	0:  newNROM,
	1:  newMMC1,
	2:  newUxROM,
	3:  newCNROM,
	4:  newMMC3,
	7:  newAxROM,
	11: newColorDreams,
	66: newGxROM,
}

// standardMirroring implements the common MapNametable behavior shared by
// every board that doesn't provide four-screen or mapper-owned nametable
// RAM: it just resolves horizontal/vertical/single-screen mirroring into
// the shared 2 KiB CIRAM.
type standardMirroring struct {
	mode MirrorMode
}

func (s *standardMirroring) Mirroring() MirrorMode { return s.mode }

func (s *standardMirroring) MapNametable(addr uint16) NametableTarget {
	addr &= 0x0FFF
	nametable := (addr >> 10) & 0x03
	offset := addr & 0x03FF

	if s.mode == MirrorFourScreen {
		return NametableTarget{CIRAM: false, Offset: nametable*0x400 + offset}
	}

	switch s.mode {
	case MirrorHorizontal:
		if nametable >= 2 {
			return NametableTarget{CIRAM: true, Offset: 0x400 + offset}
		}
		return NametableTarget{CIRAM: true, Offset: offset}
	case MirrorVertical:
		if nametable == 1 || nametable == 3 {
			return NametableTarget{CIRAM: true, Offset: 0x400 + offset}
		}
		return NametableTarget{CIRAM: true, Offset: offset}
	case MirrorSingleScreen0:
		return NametableTarget{CIRAM: true, Offset: offset}
	case MirrorSingleScreen1:
		return NametableTarget{CIRAM: true, Offset: 0x400 + offset}
	default:
		return NametableTarget{CIRAM: true, Offset: offset}
	}
}

// ReadMapperNametable/WriteMapperNametable are unused for boards without
// four-screen RAM; embedders that need it override these.
func (s *standardMirroring) ReadMapperNametable(uint16) uint8       { return 0 }
func (s *standardMirroring) WriteMapperNametable(uint16, uint8)     {}
func (s *standardMirroring) IRQPending() bool                       { return false }
func (s *standardMirroring) ClearIRQ()                              {}
func (s *standardMirroring) CPUClock()                              {}
func (s *standardMirroring) PPUVRAMAccess(uint16)                   {}
