// Package cpu implements the Ricoh 2A03 (NMOS 6502 minus decimal mode) CPU
// used by the NES.
package cpu

import (
	"github.com/mikai233/nesium-sub003/internal/cartridge"
	"github.com/mikai233/nesium-sub003/internal/rng"
)

// Addressing modes
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

const (
	stackBase = 0x0100

	nFlagMask  = 0x80
	vFlagMask  = 0x40
	unusedMask = 0x20
	bFlagMask  = 0x10
	dFlagMask  = 0x08
	iFlagMask  = 0x04
	zFlagMask  = 0x02
	cFlagMask  = 0x01

	zeroPageMask = 0xFF
	pageMask     = 0xFF00

	nmiVector   = 0xFFFA
	irqVector   = 0xFFFE
	resetVector = 0xFFFC
)

// Instruction describes a single 6502 opcode: its mnemonic, encoding length,
// base cycle count (before any page-cross penalty already folded into the
// addressing mode) and addressing mode.
type Instruction struct {
	Name   string
	Opcode uint8
	Bytes  uint8
	Cycles uint8
	Mode   AddressingMode
}

// Bus is everything the CPU needs from the rest of the machine. Every method
// call represents exactly one CPU cycle on the real bus, real or dummy:
// an addressing mode that performs a dummy read before a page-crossing
// fixup, or a read-modify-write instruction's dummy write-back of the
// unmodified value, issues its own Read/Write/InternalCycle call just like
// a "real" access would. This is what lets a bus implementation tick PPU
// and APU state deterministically alongside CPU execution without the CPU
// package needing to model a cycle-by-cycle micro-op scheduler itself.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	// InternalCycle accounts for a CPU cycle that touches no address bus
	// line (register-to-register shuffle, index-add lead-in, stack pointer
	// adjustment). The bus still ticks PPU/APU for it.
	InternalCycle()
}

// CPU is the 2A03 register file and execution engine. It holds no reference
// back to the system it runs in beyond the Bus it was constructed with.
type CPU struct {
	A  uint8
	X  uint8
	Y  uint8
	SP uint8
	PC uint16

	C bool
	Z bool
	I bool
	D bool
	B bool
	V bool
	N bool

	bus Bus

	cycles uint64

	instructions [256]*Instruction

	nmiPending  bool
	irqPending  bool
	nmiPrevious bool

	// OnNMIServiced, if set, is invoked immediately after the CPU jumps to
	// the NMI vector — a hook for diagnostic tracing (NESIUM_NMI_TRACE_PATH),
	// never consulted by emulation logic itself.
	OnNMIServiced func()

	enableDebugLogging  bool
	enableLoopDetection bool
	lastPC              uint16
	pcStayCount         int
}

// New creates a CPU wired to the given bus. Call Reset before running it.
func New(bus Bus) *CPU {
	cpu := &CPU{
		bus: bus,
		SP:  0xFD,
	}
	cpu.initInstructions()
	return cpu
}

// Cycles returns the running total of CPU cycles executed since construction.
func (cpu *CPU) Cycles() uint64 {
	return cpu.cycles
}

func (cpu *CPU) read(address uint16) uint8 {
	v := cpu.bus.Read(address)
	cpu.cycles++
	return v
}

func (cpu *CPU) write(address uint16, value uint8) {
	cpu.bus.Write(address, value)
	cpu.cycles++
}

func (cpu *CPU) internalCycle() {
	cpu.bus.InternalCycle()
	cpu.cycles++
}

// Reset runs the 7-cycle 6502 reset sequence: 5 cycles before the vector
// read (2 to "fetch" the instruction that was interrupted, 3 that look like
// a BRK's pushes with writes suppressed, because R/W is forced high), then
// the two-byte reset vector fetch. The first 5 are modeled as internal
// cycles that touch no address, since none of them has an externally
// visible effect beyond ticking the bus.
//
// kind distinguishes power-on from a soft reset (the RESET button, not a
// fresh power cycle): on power-on, A/X/Y/SP start at whatever power-on
// noise is sitting in the silicon, modeled here by drawing from powerRNG;
// on a soft reset the real CPU never gets near its registers, it just runs
// three phantom stack pushes with writes suppressed, which nets out to
// SP decreasing by 3 from whatever it already was. powerRNG is unused (and
// may be nil) for a soft reset.
func (cpu *CPU) Reset(kind cartridge.ResetKind, powerRNG *rng.SplitMix64) {
	if kind == cartridge.ResetPowerOn {
		cpu.A = powerRNG.NextU8()
		cpu.X = powerRNG.NextU8()
		cpu.Y = powerRNG.NextU8()
		cpu.SP = powerRNG.NextU8()
	} else {
		cpu.SP -= 3
	}

	cpu.C = false
	cpu.Z = false
	cpu.I = true
	cpu.D = false
	cpu.B = true
	cpu.V = false
	cpu.N = false

	for i := 0; i < 5; i++ {
		cpu.internalCycle()
	}

	low := uint16(cpu.read(resetVector))
	high := uint16(cpu.read(resetVector + 1))
	cpu.PC = (high << 8) | low

	cpu.nmiPending = false
	cpu.irqPending = false
	cpu.nmiPrevious = false
}

// Step executes exactly one instruction, then (for decoded opcodes)
// dispatches any interrupt pending at its end, and returns the number of
// cycles both consumed.
func (cpu *CPU) Step() uint64 {
	before := cpu.cycles
	currentPC := cpu.PC

	opcode := cpu.read(cpu.PC)
	instruction := cpu.instructions[opcode]

	if cpu.enableLoopDetection {
		cpu.detectInfiniteLoop(currentPC, opcode)
	}
	if cpu.enableDebugLogging {
		cpu.logInstruction(currentPC, opcode, instruction)
	}

	if instruction == nil {
		cpu.PC++
		cpu.internalCycle()
		return cpu.cycles - before
	}

	if opcode == 0x20 { // JSR is cycle-interleaved with its own addressing
		cpu.execJSR()
		cpu.ProcessPendingInterrupts()
		return cpu.cycles - before
	}

	address, pageCrossed := cpu.getOperandAddress(instruction.Mode)
	cpu.maybeIndexDummyRead(opcode, instruction.Mode, address, pageCrossed)
	cpu.executeInstruction(opcode, address, pageCrossed)

	cpu.ProcessPendingInterrupts()
	return cpu.cycles - before
}

func (cpu *CPU) push(value uint8) {
	cpu.write(stackBase+uint16(cpu.SP), value)
	cpu.SP--
}

func (cpu *CPU) pop() uint8 {
	cpu.SP++
	return cpu.read(stackBase + uint16(cpu.SP))
}

func (cpu *CPU) pushWord(value uint16) {
	cpu.push(uint8(value >> 8))
	cpu.push(uint8(value & 0xFF))
}

func (cpu *CPU) popWord() uint16 {
	low := uint16(cpu.pop())
	high := uint16(cpu.pop())
	return (high << 8) | low
}

func (cpu *CPU) setZN(value uint8) {
	cpu.Z = value == 0
	cpu.N = (value & nFlagMask) != 0
}

// GetStatusByte packs the flags into the 6502 status register layout.
func (cpu *CPU) GetStatusByte() uint8 {
	var status uint8
	if cpu.N {
		status |= nFlagMask
	}
	if cpu.V {
		status |= vFlagMask
	}
	status |= unusedMask
	if cpu.B {
		status |= bFlagMask
	}
	if cpu.D {
		status |= dFlagMask
	}
	if cpu.I {
		status |= iFlagMask
	}
	if cpu.Z {
		status |= zFlagMask
	}
	if cpu.C {
		status |= cFlagMask
	}
	return status
}

// SetStatusByte unpacks a status register byte into the flags.
func (cpu *CPU) SetStatusByte(status uint8) {
	cpu.N = (status & nFlagMask) != 0
	cpu.V = (status & vFlagMask) != 0
	cpu.B = (status & bFlagMask) != 0
	cpu.D = (status & dFlagMask) != 0
	cpu.I = (status & iFlagMask) != 0
	cpu.Z = (status & zFlagMask) != 0
	cpu.C = (status & cFlagMask) != 0
}

// handleNMI and handleIRQ push PC and status (with B clear, unused set) and
// load the interrupt's vector. Both are 7 cycles: 2 internal (the "fetch"
// of the next opcode that gets thrown away) + pushWord(2) + push(1) + vector
// read(2).
func (cpu *CPU) handleNMI() {
	cpu.internalCycle()
	cpu.internalCycle()
	cpu.pushWord(cpu.PC)
	status := cpu.GetStatusByte() &^ bFlagMask
	status |= unusedMask
	cpu.push(status)
	cpu.I = true
	low := uint16(cpu.read(nmiVector))
	high := uint16(cpu.read(nmiVector + 1))
	cpu.PC = (high << 8) | low
}

func (cpu *CPU) handleIRQ() {
	cpu.internalCycle()
	cpu.internalCycle()
	cpu.pushWord(cpu.PC)
	status := cpu.GetStatusByte() &^ bFlagMask
	status |= unusedMask
	cpu.push(status)
	cpu.I = true
	low := uint16(cpu.read(irqVector))
	high := uint16(cpu.read(irqVector + 1))
	cpu.PC = (high << 8) | low
}

// SetNMI latches a pending NMI on the rising edge (false -> true) of the
// PPU's NMI output, matching the real line's edge-triggered behavior.
func (cpu *CPU) SetNMI(state bool) {
	if !cpu.nmiPrevious && state {
		cpu.nmiPending = true
	}
	cpu.nmiPrevious = state
}

// SetIRQ sets the level-triggered IRQ line state.
func (cpu *CPU) SetIRQ(state bool) {
	cpu.irqPending = state
}

// ProcessPendingInterrupts is called after every instruction boundary,
// giving interrupt dispatch the documented one-instruction delay relative
// to the line changing state. NMI takes priority over IRQ; IRQ is masked
// by the I flag.
func (cpu *CPU) ProcessPendingInterrupts() {
	if cpu.nmiPending {
		cpu.nmiPending = false
		cpu.handleNMI()
		if cpu.OnNMIServiced != nil {
			cpu.OnNMIServiced()
		}
		return
	}
	if cpu.irqPending && !cpu.I {
		cpu.handleIRQ()
		return
	}
}

// TriggerNMI forces a pending NMI outside of the edge-detected path; used by
// test harnesses.
func (cpu *CPU) TriggerNMI() {
	cpu.nmiPending = true
}

// TriggerIRQ forces a pending level IRQ; used by test harnesses.
func (cpu *CPU) TriggerIRQ() {
	cpu.irqPending = true
}

// EnableDebugLogging toggles per-instruction trace logging.
func (cpu *CPU) EnableDebugLogging(enable bool) {
	cpu.enableDebugLogging = enable
}

// EnableLoopDetection toggles the PC-stuck heuristic used by detectInfiniteLoop.
func (cpu *CPU) EnableLoopDetection(enable bool) {
	cpu.enableLoopDetection = enable
}

func (cpu *CPU) detectInfiniteLoop(pc uint16, opcode uint8) {
	if pc == cpu.lastPC {
		cpu.pcStayCount++
	} else {
		cpu.pcStayCount = 0
		cpu.lastPC = pc
	}
}

func (cpu *CPU) logInstruction(pc uint16, opcode uint8, instruction *Instruction) {
}
