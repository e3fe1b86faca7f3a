package cartridge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUxROMBankSwitch(t *testing.T) {
	prg := make([]uint8, 0x4000*4)
	for bank := 0; bank < 4; bank++ {
		for i := range prg[bank*0x4000 : (bank+1)*0x4000] {
			prg[bank*0x4000+i] = uint8(bank)
		}
	}
	chr := ChrStorage{kind: chrRAM, data: make([]uint8, 0x2000)}
	prgRAM := make([]uint8, 0x2000)
	m := newUxROM(Header{}, prg, &chr, prgRAM)

	m.CPUWrite(0x8000, 0x02)
	v, ok := m.CPURead(0x8000)
	require.True(t, ok)
	require.EqualValues(t, 0x02, v)

	v, ok = m.CPURead(0xC000)
	require.True(t, ok)
	require.EqualValues(t, 0x03, v, "last bank is always fixed")
}

func TestNromMirrorsSixteenKbPrg(t *testing.T) {
	prg := make([]uint8, 0x4000)
	prg[0] = 0xAA
	prg[0x3FFF] = 0xBB
	chr := ChrStorage{kind: chrRAM, data: make([]uint8, 0x2000)}
	m := newNROM(Header{}, prg, &chr, make([]uint8, 0x2000))

	lo, _ := m.CPURead(0x8000)
	hi, _ := m.CPURead(0xC000)
	require.EqualValues(t, 0xAA, lo)
	require.EqualValues(t, 0xAA, hi, "16KiB PRG must mirror into the upper half")

	last, _ := m.CPURead(0xFFFF)
	require.EqualValues(t, 0xBB, last)
}

func TestCnromChrBankSwitch(t *testing.T) {
	prg := make([]uint8, 0x8000)
	chrData := make([]uint8, 0x2000*2)
	chrData[0] = 0x11
	chrData[0x2000] = 0x22
	chr := ChrStorage{kind: chrROM, data: chrData}
	m := newCNROM(Header{}, prg, &chr, nil)

	require.EqualValues(t, 0x11, m.PPURead(0))
	m.CPUWrite(0x8000, 1)
	require.EqualValues(t, 0x22, m.PPURead(0))
}

func TestStandardMirroringHorizontal(t *testing.T) {
	sm := standardMirroring{mode: MirrorHorizontal}
	target := sm.MapNametable(0x2400)
	require.True(t, target.CIRAM)
	require.EqualValues(t, 0x000, target.Offset)

	target = sm.MapNametable(0x2800)
	require.EqualValues(t, 0x400, target.Offset)
}

func TestStandardMirroringVertical(t *testing.T) {
	sm := standardMirroring{mode: MirrorVertical}
	target := sm.MapNametable(0x2400)
	require.EqualValues(t, 0x400, target.Offset)
	target = sm.MapNametable(0x2800)
	require.EqualValues(t, 0x000, target.Offset)
}

func TestMMC1PrgBankModeFixLast(t *testing.T) {
	prg := make([]uint8, 0x4000*4)
	for bank := 0; bank < 4; bank++ {
		for i := range prg[bank*0x4000 : (bank+1)*0x4000] {
			prg[bank*0x4000+i] = uint8(bank)
		}
	}
	chr := ChrStorage{kind: chrRAM, data: make([]uint8, 0x2000)}
	m := newMMC1(Header{}, prg, &chr, make([]uint8, 0x2000))

	writeMMC1 := func(addr uint16, value uint8) {
		for i := 0; i < 5; i++ {
			bit := (value >> i) & 1
			m.CPUWrite(addr, bit)
		}
	}
	// Control register default (0x0C) already selects fix-last-bank mode.
	writeMMC1(0xE000, 0x01) // select PRG bank 1 for the switchable window

	lo, _ := m.CPURead(0x8000)
	hi, _ := m.CPURead(0xC000)
	require.EqualValues(t, 1, lo)
	require.EqualValues(t, 3, hi, "last bank stays fixed in mode 3")
}

func TestMMC3IRQCounterReloadsAndFires(t *testing.T) {
	prg := make([]uint8, 0x2000*8)
	chr := ChrStorage{kind: chrRAM, data: make([]uint8, 0x400*8)}
	m := newMMC3(Header{}, prg, &chr, make([]uint8, 0x2000))

	m.CPUWrite(0xC000, 2) // IRQ latch = 2
	m.CPUWrite(0xC001, 0) // force reload on next clock
	m.CPUWrite(0xE001, 0) // enable IRQ

	// Three A12 rising edges: reload(2)->1->0(fires)
	for i := 0; i < 3; i++ {
		m.PPUVRAMAccess(0x0000)
		m.PPUVRAMAccess(0x1000)
	}
	require.True(t, m.IRQPending())
	m.ClearIRQ()
	require.False(t, m.IRQPending())
}
