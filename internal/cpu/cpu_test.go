package cpu

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mikai233/nesium-sub003/internal/cartridge"
	"github.com/mikai233/nesium-sub003/internal/rng"
)

// fakeBus is a flat 64KB address space with instrumentation for verifying
// that addressing modes tick the bus the documented number of times.
type fakeBus struct {
	mem           [65536]uint8
	reads         []uint16
	writes        []uint16
	internalTicks int
}

func newFakeBus() *fakeBus {
	return &fakeBus{}
}

func (b *fakeBus) Read(address uint16) uint8 {
	b.reads = append(b.reads, address)
	return b.mem[address]
}

func (b *fakeBus) Write(address uint16, value uint8) {
	b.writes = append(b.writes, address)
	b.mem[address] = value
}

func (b *fakeBus) InternalCycle() {
	b.internalTicks++
}

func (b *fakeBus) totalCycles() int {
	return len(b.reads) + len(b.writes) + b.internalTicks
}

func newTestCPU(program ...uint8) (*CPU, *fakeBus) {
	bus := newFakeBus()
	for i, b := range program {
		bus.mem[0x8000+uint16(i)] = b
	}
	bus.mem[resetVector] = 0x00
	bus.mem[resetVector+1] = 0x80
	c := New(bus)
	c.Reset(cartridge.ResetPowerOn, rng.New(1))
	return c, bus
}

func TestResetTakesSevenCyclesAndLoadsVector(t *testing.T) {
	bus := newFakeBus()
	bus.mem[resetVector] = 0x34
	bus.mem[resetVector+1] = 0x12
	c := New(bus)
	c.Reset(cartridge.ResetPowerOn, rng.New(1))
	require.EqualValues(t, 0x1234, c.PC)
	require.True(t, c.I)
	require.EqualValues(t, 7, bus.totalCycles())
}

func TestSoftResetDecrementsStackPointerByThree(t *testing.T) {
	bus := newFakeBus()
	bus.mem[resetVector] = 0x00
	bus.mem[resetVector+1] = 0x80
	c := New(bus)
	c.Reset(cartridge.ResetPowerOn, rng.New(1))
	priorSP := c.SP
	c.Reset(cartridge.ResetSoft, nil)
	require.EqualValues(t, priorSP-3, c.SP)
	require.True(t, c.I)
	require.False(t, c.D)
}

func TestLDAImmediateTakesTwoCycles(t *testing.T) {
	c, bus := newTestCPU(0xA9, 0x42)
	before := bus.totalCycles()
	cycles := c.Step()
	require.EqualValues(t, 0x42, c.A)
	require.EqualValues(t, 2, cycles)
	require.EqualValues(t, 2, bus.totalCycles()-before)
	require.True(t, c.Z == false && c.N == false)
}

func TestLDAZeroPageXWrapsWithinZeroPage(t *testing.T) {
	c, bus := newTestCPU(0xB5, 0xFF)
	c.X = 2
	bus.mem[0x0001] = 0x99
	c.Step()
	require.EqualValues(t, 0x99, c.A)
}

func TestLDAAbsoluteXPageCrossCostsExtraCycle(t *testing.T) {
	c, bus := newTestCPU(0xBD, 0xFF, 0x00)
	c.X = 1 // 0x00FF + 1 = 0x0100, crosses page
	bus.mem[0x0100] = 0x7A
	cycles := c.Step()
	require.EqualValues(t, 0x7A, c.A)
	require.EqualValues(t, 5, cycles)
}

func TestLDAAbsoluteXNoPageCrossIsFourCycles(t *testing.T) {
	c, _ := newTestCPU(0xBD, 0x01, 0x00)
	c.X = 1
	cycles := c.Step()
	require.EqualValues(t, 4, cycles)
}

func TestSTAAbsoluteXAlwaysPaysTheDummyRead(t *testing.T) {
	c, bus := newTestCPU(0x9D, 0x01, 0x00)
	c.X = 1
	c.A = 0x55
	cycles := c.Step()
	require.EqualValues(t, 5, cycles)
	require.EqualValues(t, 0x55, bus.mem[0x0002])
}

func TestASLZeroPageIssuesReadDummyWriteAndRealWrite(t *testing.T) {
	c, bus := newTestCPU(0x06, 0x10)
	bus.mem[0x0010] = 0b1000_0001
	cycles := c.Step()
	require.EqualValues(t, 5, cycles)
	require.True(t, c.C)
	require.EqualValues(t, 0b0000_0010, bus.mem[0x0010])
	require.Len(t, bus.writes, 2, "RMW must write the unmodified value back before the real write")
}

func TestJMPIndirectPageBoundaryBug(t *testing.T) {
	c, bus := newTestCPU(0x6C, 0xFF, 0x02)
	bus.mem[0x02FF] = 0x34
	bus.mem[0x0200] = 0x12 // high byte wraps to start of page, NOT 0x0300
	bus.mem[0x0300] = 0x99
	c.Step()
	require.EqualValues(t, 0x1234, c.PC)
}

func TestJSRPushesReturnAddressMinusOne(t *testing.T) {
	c, bus := newTestCPU(0x20, 0x00, 0x90)
	cycles := c.Step()
	require.EqualValues(t, 6, cycles)
	require.EqualValues(t, 0x9000, c.PC)
	low := bus.mem[stackBase+uint16(c.SP)+1]
	high := bus.mem[stackBase+uint16(c.SP)+2]
	require.EqualValues(t, 0x8002, uint16(high)<<8|uint16(low))
}

func TestRTSReturnsToInstructionAfterJSR(t *testing.T) {
	c, _ := newTestCPU(0x20, 0x05, 0x80, 0x00, 0x00, 0x60)
	c.Step() // JSR -> 0x8005
	require.EqualValues(t, 0x8005, c.PC)
	cycles := c.Step() // RTS
	require.EqualValues(t, 6, cycles)
	require.EqualValues(t, 0x8003, c.PC)
}

func TestBranchNotTakenIsTwoCycles(t *testing.T) {
	c, _ := newTestCPU(0xD0, 0x10) // BNE, Z set means not taken
	c.Z = true
	cycles := c.Step()
	require.EqualValues(t, 2, cycles)
}

func TestBranchTakenSamePageIsThreeCycles(t *testing.T) {
	c, _ := newTestCPU(0xD0, 0x10)
	c.Z = false
	cycles := c.Step()
	require.EqualValues(t, 3, cycles)
}

func TestBranchTakenCrossingPageIsFourCycles(t *testing.T) {
	program := make([]uint8, 0x100)
	program[0xFD] = 0xD0 // BNE at 0x80FD
	program[0xFE] = 0x05 // oldPC=0x80FF, newPC=0x8104: crosses into the next page
	c, _ := newTestCPU(program...)
	c.PC = 0x80FD
	c.Z = false
	cycles := c.Step()
	require.EqualValues(t, 4, cycles)
}

func TestPHAAndPLARoundTripThroughStack(t *testing.T) {
	c, _ := newTestCPU(0x48, 0x68)
	c.A = 0x77
	startSP := c.SP
	phaCycles := c.Step()
	require.EqualValues(t, 3, phaCycles)
	require.EqualValues(t, startSP-1, c.SP)
	c.A = 0
	plaCycles := c.Step()
	require.EqualValues(t, 4, plaCycles)
	require.EqualValues(t, 0x77, c.A)
	require.EqualValues(t, startSP, c.SP)
}

func TestBRKPushesPCPlusTwoAndStatusWithBSet(t *testing.T) {
	c, bus := newTestCPU(0x00)
	bus.mem[irqVector] = 0x00
	bus.mem[irqVector+1] = 0x90
	cycles := c.Step()
	require.EqualValues(t, 7, cycles)
	require.EqualValues(t, 0x9000, c.PC)
	require.True(t, c.I)
	pushedStatus := bus.mem[stackBase+uint16(c.SP)+1]
	require.NotZero(t, pushedStatus&bFlagMask)
}

func TestNMITakesPriorityOverIRQAndIsSevenCycles(t *testing.T) {
	c, bus := newTestCPU(0xEA) // NOP
	bus.mem[nmiVector] = 0x00
	bus.mem[nmiVector+1] = 0x91
	c.TriggerNMI()
	c.TriggerIRQ()
	before := bus.totalCycles()
	c.Step() // executes the NOP, then dispatches the interrupt
	after := bus.totalCycles()
	require.EqualValues(t, 0x9100, c.PC)
	require.EqualValues(t, 2+7, after-before)
}

func TestIRQIsMaskedByInterruptDisableFlag(t *testing.T) {
	c, _ := newTestCPU(0xEA)
	c.I = true
	c.TriggerIRQ()
	pcBefore := c.PC
	c.Step()
	require.EqualValues(t, pcBefore+1, c.PC, "IRQ should stay pending, not redirect PC")
}

func TestLAXLoadsBothAccumulatorAndX(t *testing.T) {
	c, bus := newTestCPU(0xA7, 0x10)
	bus.mem[0x0010] = 0x64
	c.Step()
	require.EqualValues(t, 0x64, c.A)
	require.EqualValues(t, 0x64, c.X)
}

func TestDCPDecrementsThenCompares(t *testing.T) {
	c, bus := newTestCPU(0xC7, 0x10)
	bus.mem[0x0010] = 0x05
	c.A = 0x02
	c.Step()
	require.EqualValues(t, 0x04, bus.mem[0x0010])
	require.False(t, c.C, "A(2) < decremented value(4) should clear carry")
}

func TestISBIncrementsThenSubtractsWithoutDoubleBusRead(t *testing.T) {
	c, bus := newTestCPU(0xE7, 0x10)
	bus.mem[0x0010] = 0x00
	c.A = 0x05
	c.C = true
	c.Step()
	require.EqualValues(t, 0x01, bus.mem[0x0010])
	require.EqualValues(t, 0x04, c.A)
	operandReads := 0
	for _, addr := range bus.reads {
		if addr == 0x0010 {
			operandReads++
		}
	}
	require.EqualValues(t, 1, operandReads, "ISB must not re-read the operand to perform its SBC half")
}

func TestIndirectIndexedStoreAlwaysPaysDummyRead(t *testing.T) {
	c, bus := newTestCPU(0x91, 0x10)
	bus.mem[0x0010] = 0xFF
	bus.mem[0x0011] = 0x00
	c.Y = 1 // 0x00FF + 1 crosses into 0x0100
	c.A = 0x22
	cycles := c.Step()
	require.EqualValues(t, 6, cycles)
	require.EqualValues(t, 0x22, bus.mem[0x0100])
}
