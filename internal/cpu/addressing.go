package cpu

// getOperandAddress resolves the effective address for an addressing mode,
// issuing exactly the bus reads real hardware performs while decoding it
// (opcode fetch already happened in Step). It does NOT yet issue the
// indexed-addressing dummy read that precedes a page-crossing fixup or an
// indexed store/RMW access — that depends on the opcode's read/write/RMW
// class, which Step resolves afterward via maybeIndexDummyRead, and on the
// final operand access performed inside the instruction body itself.
func (cpu *CPU) getOperandAddress(mode AddressingMode) (uint16, bool) {
	switch mode {
	case Implied, Accumulator:
		cpu.PC++
		cpu.internalCycle() // dummy fetch of the following opcode byte, discarded
		return 0, false

	case Immediate:
		address := cpu.PC
		cpu.PC += 2
		return address, false

	case ZeroPage:
		address := uint16(cpu.read(cpu.PC + 1))
		cpu.PC += 2
		return address, false

	case ZeroPageX:
		base := cpu.read(cpu.PC + 1)
		cpu.internalCycle() // index addition
		address := uint16((base + cpu.X) & zeroPageMask)
		cpu.PC += 2
		return address, false

	case ZeroPageY:
		base := cpu.read(cpu.PC + 1)
		cpu.internalCycle()
		address := uint16((base + cpu.Y) & zeroPageMask)
		cpu.PC += 2
		return address, false

	case Relative:
		offset := int8(cpu.read(cpu.PC + 1))
		oldPC := cpu.PC + 2
		newPC := uint16(int32(oldPC) + int32(offset))
		cpu.PC = oldPC
		pageCrossed := (oldPC & pageMask) != (newPC & pageMask)
		return newPC, pageCrossed

	case Absolute:
		low := uint16(cpu.read(cpu.PC + 1))
		high := uint16(cpu.read(cpu.PC + 2))
		address := (high << 8) | low
		cpu.PC += 3
		return address, false

	case AbsoluteX:
		low := uint16(cpu.read(cpu.PC + 1))
		high := uint16(cpu.read(cpu.PC + 2))
		base := (high << 8) | low
		address := base + uint16(cpu.X)
		cpu.PC += 3
		pageCrossed := (base & pageMask) != (address & pageMask)
		return address, pageCrossed

	case AbsoluteY:
		low := uint16(cpu.read(cpu.PC + 1))
		high := uint16(cpu.read(cpu.PC + 2))
		base := (high << 8) | low
		address := base + uint16(cpu.Y)
		cpu.PC += 3
		pageCrossed := (base & pageMask) != (address & pageMask)
		return address, pageCrossed

	case Indirect: // JMP (ind) only
		lowPtr := uint16(cpu.read(cpu.PC + 1))
		highPtr := uint16(cpu.read(cpu.PC + 2))
		ptr := (highPtr << 8) | lowPtr

		var address uint16
		if (ptr & zeroPageMask) == zeroPageMask {
			// Documented hardware bug: the high byte wraps to the start
			// of the same page instead of crossing into the next one.
			low := uint16(cpu.read(ptr))
			high := uint16(cpu.read(ptr & pageMask))
			address = (high << 8) | low
		} else {
			low := uint16(cpu.read(ptr))
			high := uint16(cpu.read(ptr + 1))
			address = (high << 8) | low
		}
		cpu.PC += 3
		return address, false

	case IndexedIndirect: // (zp,X)
		base := cpu.read(cpu.PC + 1)
		cpu.internalCycle() // index addition
		ptr := (base + cpu.X) & zeroPageMask
		low := uint16(cpu.read(uint16(ptr)))
		high := uint16(cpu.read(uint16((ptr + 1) & zeroPageMask)))
		address := (high << 8) | low
		cpu.PC += 2
		return address, false

	case IndirectIndexed: // (zp),Y
		ptr := uint16(cpu.read(cpu.PC + 1))
		low := uint16(cpu.read(ptr))
		high := uint16(cpu.read((ptr + 1) & zeroPageMask))
		base := (high << 8) | low
		address := base + uint16(cpu.Y)
		cpu.PC += 2
		pageCrossed := (base & pageMask) != (address & pageMask)
		return address, pageCrossed

	default:
		return 0, false
	}
}

// indexedDummyAlways is the set of opcodes whose indexed-absolute or
// (zp),Y addressing always performs the pre-fixup dummy read, whether or
// not a page boundary was actually crossed: stores (the address must be
// settled before the write happens) and read-modify-write instructions.
var indexedDummyAlways = map[uint8]bool{
	0x9D: true, 0x99: true, 0x91: true, // STA abs,X / abs,Y / (zp),Y
	0x1E: true,                         // ASL abs,X
	0x5E: true,                         // LSR abs,X
	0x3E: true,                         // ROL abs,X
	0x7E: true,                         // ROR abs,X
	0xFE: true,                         // INC abs,X
	0xDE: true,                         // DEC abs,X
	0x1F: true, 0x1B: true, 0x13: true, // SLO abs,X / abs,Y / (zp),Y
	0x3F: true, 0x3B: true, 0x33: true, // RLA abs,X / abs,Y / (zp),Y
	0x5F: true, 0x5B: true, 0x53: true, // SRE abs,X / abs,Y / (zp),Y
	0x7F: true, 0x7B: true, 0x73: true, // RRA abs,X / abs,Y / (zp),Y
	0xFF: true, 0xFB: true, 0xF3: true, // ISB abs,X / abs,Y / (zp),Y
	0xDF: true, 0xDB: true, 0xD3: true, // DCP abs,X / abs,Y / (zp),Y
}

// maybeIndexDummyRead issues the indexed-addressing dummy read for
// AbsoluteX/AbsoluteY/IndirectIndexed modes, matching real 6502 timing:
// read instructions only pay for it when the index addition actually
// carried into the next page, stores and read-modify-write instructions
// always pay for it because the effective address has to be settled one
// cycle before the real access regardless of whether the carry happened.
func (cpu *CPU) maybeIndexDummyRead(opcode uint8, mode AddressingMode, address uint16, pageCrossed bool) {
	if mode != AbsoluteX && mode != AbsoluteY && mode != IndirectIndexed {
		return
	}
	always := indexedDummyAlways[opcode]
	if !always && !pageCrossed {
		return
	}
	dummyAddr := address
	if pageCrossed {
		dummyAddr -= 0x100
	}
	cpu.read(dummyAddr)
}

// execJSR implements JSR's cycle-interleaved addressing: the return
// address (the address of the operand's high byte) is pushed between the
// two operand byte fetches, not after them.
func (cpu *CPU) execJSR() {
	low := cpu.read(cpu.PC + 1)
	cpu.PC += 2 // now points at the high operand byte, i.e. return-address - 1
	cpu.internalCycle()
	cpu.pushWord(cpu.PC)
	high := cpu.read(cpu.PC)
	cpu.PC = (uint16(high) << 8) | uint16(low)
}
