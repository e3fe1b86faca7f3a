// Package bus wires the CPU, PPU, APU, cartridge, and controllers together:
// it decodes CPU addresses, ticks the clocked peripherals in lock-step with
// every CPU cycle, arbitrates OAM and DMC DMA, and enforces open-bus
// behavior on the CPU side.
package bus

import (
	"github.com/rs/zerolog"

	"github.com/mikai233/nesium-sub003/internal/apu"
	"github.com/mikai233/nesium-sub003/internal/cartridge"
	"github.com/mikai233/nesium-sub003/internal/cpu"
	"github.com/mikai233/nesium-sub003/internal/input"
	"github.com/mikai233/nesium-sub003/internal/openbus"
	"github.com/mikai233/nesium-sub003/internal/ppu"
	"github.com/mikai233/nesium-sub003/internal/rng"
)

// Region selects the console timing variant. PAL runs the PPU at an
// average 3.2 dots per CPU cycle against NTSC's exact 3; Dendy keeps the
// 3:1 ratio. The region changes only that ratio: the PPU's internal
// scanline/dot counters are modeled for NTSC's 262-line frame in every
// region (see DESIGN.md).
type Region int

const (
	NTSC Region = iota
	PAL
	Dendy
)

// ppuDotsPerCPUCycle returns the average PPU dot advance per CPU cycle for
// the region. NTSC and Dendy are an exact 3; PAL is the documented 3.2
// average, produced as 3/3/3/3/4 (one 4-dot cycle in every five) to keep
// the long-run average exact in integer arithmetic.
func (r Region) ppuDotsPerCPUCycle(cycleIndex uint64) int {
	switch r {
	case PAL:
		if cycleIndex%5 == 4 {
			return 4
		}
		return 3
	case Dendy:
		return 3
	default:
		return 3
	}
}

const (
	ramSize    = 0x0800
	ramMask    = ramSize - 1
	oamDMAPort = 0x4014
	apuStatus  = 0x4015
	ctrlPort1  = 0x4016
	ctrlPort2  = 0x4017
)

// Bus owns every component of one NES console and mediates all CPU-visible
// memory traffic. It implements cpu.Bus so a *cpu.CPU constructed with it
// ticks PPU and APU automatically on every real or dummy cycle.
type Bus struct {
	PPU   *ppu.PPU
	APU   *apu.APU
	CPU   *cpu.CPU
	Input *input.InputState

	cart *cartridge.Cartridge

	ram [ramSize]uint8

	region  Region
	cycles  uint64
	openBus *openbus.CPUBus

	oamDMA    oamDMAState
	dmcStall  int
	dmcQueued bool

	powerRNG *rng.SplitMix64

	log *zerolog.Logger
}

type oamDMAState struct {
	active       bool
	bytesCopied  int
	waitingAlign bool
	halted       bool
}

// New creates a bus with no cartridge loaded. LoadCartridge must be called
// before Step will make useful progress (reads of $4020-$FFFF return open
// bus until then).
func New(region Region, log *zerolog.Logger) *Bus {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	b := &Bus{
		PPU:      ppu.New(log),
		APU:      apu.New(1789773.0, log),
		Input:    input.NewInputState(log),
		region:   region,
		openBus:  openbus.New(),
		powerRNG: rng.NewDefault(),
		log:      log,
	}
	b.APU.SetDMCFetcher(b.dmcFetch)
	b.CPU = cpu.New(b)
	return b
}

// LoadCartridge installs a cartridge and resets the console. Passing nil
// ejects the current cartridge; reads of cartridge space then return open
// bus instead of crashing.
func (b *Bus) LoadCartridge(cart *cartridge.Cartridge) {
	b.cart = cart
	b.Reset(cartridge.ResetPowerOn)
}

// Eject removes the current cartridge.
func (b *Bus) Eject() {
	b.cart = nil
}

// SetRNGSeed reseeds the power-on randomization generator (--rng-seed).
// Call before LoadCartridge/Reset(ResetPowerOn) for a deterministic
// power-on state; otherwise every power-on draws from the package's
// default seed.
func (b *Bus) SetRNGSeed(seed int64) {
	b.powerRNG = rng.New(uint64(seed))
}

// Reset resets every component. kind distinguishes power-on from a soft
// reset for mappers whose state differs between the two (see
// cartridge.ResetKind). Power-on randomizes CPU registers, CPU RAM, and
// palette RAM from powerRNG; a soft reset leaves all three as they were,
// matching the real RESET line never touching memory.
func (b *Bus) Reset(kind cartridge.ResetKind) {
	b.PPU.Reset()
	b.APU.Reset()
	b.Input.Reset()
	b.openBus.Reset()
	b.oamDMA = oamDMAState{}
	b.dmcStall = 0
	if kind == cartridge.ResetPowerOn {
		b.powerRNG.FillBytes(b.ram[:])
		b.PPU.RandomizePaletteRAM(b.powerRNG)
	}
	if b.cart != nil {
		b.cart.Reset(kind)
	}
	b.CPU.Reset(kind, b.powerRNG)
}

// tick advances every clocked peripheral by one CPU cycle's worth of work:
// three PPU dots (NTSC) plus one APU cycle plus the mapper's CPU-cycle
// hook, then ages the open-bus decay clock. Every cpu.Bus method funnels
// through this so PPU/APU/mapper timing never drifts from the CPU cycle
// count, per the per-cycle step contract.
func (b *Bus) tick() {
	dots := b.region.ppuDotsPerCPUCycle(b.cycles)
	for i := 0; i < dots; i++ {
		b.PPU.Step(b.cartridgeAccess())
	}
	b.APU.ClockCPUCycle()
	if b.cart != nil {
		b.cart.CPUClock()
	}
	b.openBus.Step()
	b.cycles++

	if b.dmcQueued {
		b.dmcQueued = false
	} else if b.dmcStall > 0 {
		b.dmcStall--
	}
}

// cartridgeAccess adapts the loaded cartridge to ppu.CartridgeAccess,
// returning a no-op stand-in when no cartridge is present so the PPU can
// still free-run (e.g. during bring-up before a ROM loads).
func (b *Bus) cartridgeAccess() ppu.CartridgeAccess {
	if b.cart == nil {
		return emptyCartridge{}
	}
	return b.cart
}

type emptyCartridge struct{}

func (emptyCartridge) PPURead(uint16) uint8   { return 0 }
func (emptyCartridge) PPUWrite(uint16, uint8) {}
func (emptyCartridge) MapNametable(addr uint16) ppu.NametableTarget {
	return ppu.NametableTarget{CIRAM: true, Offset: addr & 0x7FF}
}
func (emptyCartridge) ReadMapperNametable(uint16) uint8   { return 0 }
func (emptyCartridge) WriteMapperNametable(uint16, uint8) {}
func (emptyCartridge) PPUVRAMAccess(uint16)               {}

// Read implements cpu.Bus: one CPU read cycle, ticking every peripheral and
// merging the result with CPU open bus for address ranges that don't drive
// every bit.
func (b *Bus) Read(address uint16) uint8 {
	value, driven := b.readAddress(address)
	b.syncPPUNMI()
	b.tick()
	return b.openBus.ApplyMasked(driven, value)
}

// Write implements cpu.Bus: one CPU write cycle.
func (b *Bus) Write(address uint16, value uint8) {
	b.writeAddress(address, value)
	b.syncPPUNMI()
	b.tick()
	b.openBus.Latch(value)
}

// InternalCycle implements cpu.Bus for cycles that touch no address line.
func (b *Bus) InternalCycle() {
	b.syncPPUNMI()
	b.tick()
}

// syncPPUNMI forwards the PPU's NMI line level to the CPU, which latches an
// NMI on its rising edge (see cpu.SetNMI).
func (b *Bus) syncPPUNMI() {
	b.CPU.SetNMI(b.PPU.NMILine())
	if b.cart != nil {
		b.CPU.SetIRQ(b.cart.IRQPending() || b.APU.IRQPending())
	} else {
		b.CPU.SetIRQ(b.APU.IRQPending())
	}
}

// readAddress decodes a CPU read and reports which bits the addressed
// device actually drives (0xFF for a full driver, a narrower mask for
// devices that leave some bits floating).
func (b *Bus) readAddress(address uint16) (value uint8, driven uint8) {
	switch {
	case address < 0x2000:
		return b.ram[address&ramMask], 0xFF
	case address < 0x4000:
		return b.PPU.ReadRegister(address, b.cartridgeAccess()), 0xFF
	case address == apuStatus:
		return b.APU.ReadStatus(), 0xDF // bit 5 is unconnected, left to open bus
	case address == ctrlPort1 || address == ctrlPort2:
		return b.Input.Read(address), 0x01
	case address < 0x4018:
		return 0, 0x00 // write-only APU registers read back as open bus
	case address < 0x4020:
		return 0, 0x00 // disabled test-mode range
	default:
		if b.cart != nil {
			if v, ok := b.cart.CPURead(address); ok {
				return v, 0xFF
			}
		}
		return 0, 0x00
	}
}

func (b *Bus) writeAddress(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		b.ram[address&ramMask] = value
	case address < 0x4000:
		b.PPU.WriteRegister(address, value, b.cartridgeAccess())
	case address == oamDMAPort:
		b.startOAMDMA(value)
	case address == ctrlPort1:
		b.Input.Write(address, value)
	case address < 0x4018:
		b.APU.WriteRegister(address, value)
	case address < 0x4020:
		// disabled test mode, no effect
	default:
		if b.cart != nil {
			b.cart.CPUWrite(address, value)
		}
	}
}

// startOAMDMA begins a 513/514-cycle CPU stall copying page*0x100..+0xFF
// into OAM. The transfer itself is performed eagerly here since it has no
// CPU-visible side effect beyond the stall; Step consumes the stall cycles
// one at a time so PPU/APU keep ticking during it.
func (b *Bus) startOAMDMA(page uint8) {
	b.oamDMA = oamDMAState{
		active:       true,
		waitingAlign: b.cycles%2 == 1,
	}
	var data [256]uint8
	base := uint16(page) << 8
	for i := range data {
		v, _ := b.readAddress(base + uint16(i))
		data[i] = v
	}
	b.PPU.WriteOAMDMA(data)
}

// dmcFetch is installed as the APU's SampleFetcher. It performs the read
// directly against CPU address space (bypassing cpu.Bus, since this is the
// mapper-invoked side channel the DMC uses, not a CPU-issued access) and
// queues the hardware's 4-cycle CPU stall, approximated as a flat 4 cycles
// regardless of whether it lands on an OAM DMA cycle (the documented up-to
// +2 extra cycles from landing mid-OAM-DMA is not modeled — a narrow,
// declared simplification, see DESIGN.md).
func (b *Bus) dmcFetch(addr uint16) uint8 {
	value, _ := b.readAddress(addr)
	b.dmcStall += 4
	b.dmcQueued = true
	return value
}

// Step advances the console by one CPU instruction, or by one cycle of an
// in-flight OAM/DMC DMA stall. PPU and APU are ticked inside either path so
// their timing never falls behind the CPU's.
func (b *Bus) Step() uint64 {
	if b.oamDMA.active {
		b.stepOAMDMACycle()
		return 1
	}
	if b.dmcStall > 0 {
		b.InternalCycle() // tick() drains one cycle off dmcStall
		return 1
	}
	return b.CPU.Step()
}

func (b *Bus) stepOAMDMACycle() {
	if !b.oamDMA.halted {
		b.oamDMA.halted = true
		b.InternalCycle()
		return
	}
	if b.oamDMA.waitingAlign {
		b.oamDMA.waitingAlign = false
		b.InternalCycle()
		return
	}
	b.oamDMA.bytesCopied++
	b.InternalCycle()
	if b.oamDMA.bytesCopied >= 256*2 { // one read + one write cycle per byte
		b.oamDMA.active = false
	}
}

// RunFrame runs the console until the PPU completes a frame, returning the
// total CPU cycles consumed. Audio samples produced during the frame stay
// in the APU until a caller drains them.
func (b *Bus) RunFrame() uint64 {
	startFrame := b.PPU.FrameCount()
	var cycles uint64
	for b.PPU.FrameCount() == startFrame {
		cycles += b.Step()
	}
	return cycles
}

// Cycles returns the running CPU cycle count since construction or reset.
func (b *Bus) Cycles() uint64 {
	return b.cycles
}

// Cartridge returns the currently loaded cartridge, or nil if none is
// mounted.
func (b *Bus) Cartridge() *cartridge.Cartridge {
	return b.cart
}

// Peek reads CPU RAM or cartridge space without ticking any peripheral or
// triggering a register's read side effects (e.g. PPUSTATUS's vblank
// clear). It exists for diagnostics — test harnesses polling a status byte
// in PRG-RAM — not for emulation; PPU/APU register ranges always read 0
// since there is no side-effect-free way to observe them.
func (b *Bus) Peek(address uint16) uint8 {
	switch {
	case address < 0x2000:
		return b.ram[address&ramMask]
	case address >= 0x4020:
		if b.cart != nil {
			if v, ok := b.cart.CPURead(address); ok {
				return v
			}
		}
		return 0
	default:
		return 0
	}
}
