package bus

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mikai233/nesium-sub003/internal/cartridge"
)

// nromImage builds a minimal iNES 1.0 ROM: one 16KB PRG bank (mirrored into
// both CPU halves by the NROM mapper), one 8KB CHR bank, horizontal
// mirroring, no battery. The reset vector points at resetAddr.
func nromImage(resetAddr uint16, fill func(prg []uint8)) []byte {
	prg := make([]uint8, 16384)
	if fill != nil {
		fill(prg)
	}
	prg[0x3FFC] = uint8(resetAddr)
	prg[0x3FFD] = uint8(resetAddr >> 8)

	chr := make([]uint8, 8192)

	header := []byte{'N', 'E', 'S', 0x1A, 1, 1, 0x00, 0x00, 0, 0, 0, 0, 0, 0, 0, 0}
	data := append(header, prg...)
	data = append(data, chr...)
	return data
}

func newTestBus(t *testing.T, fill func(prg []uint8)) *Bus {
	t.Helper()
	img := nromImage(0x8000, fill)
	cart, err := cartridge.LoadCartridge(img)
	require.NoError(t, err)
	b := New(NTSC, nil)
	b.LoadCartridge(cart)
	return b
}

func TestResetVectorIsHonored(t *testing.T) {
	b := newTestBus(t, nil)
	require.EqualValues(t, 0x8000, b.CPU.PC)
}

func TestRAMIsMirroredAcrossFourBanks(t *testing.T) {
	b := newTestBus(t, nil)
	b.Write(0x0001, 0x42)
	require.EqualValues(t, 0x42, b.Read(0x0801))
	require.EqualValues(t, 0x42, b.Read(0x1001))
	require.EqualValues(t, 0x42, b.Read(0x1801))
}

func TestPRGROMMirrorsAcrossBothCPUBanks(t *testing.T) {
	b := newTestBus(t, func(prg []uint8) {
		prg[0] = 0x55
	})
	require.EqualValues(t, 0x55, b.Read(0x8000))
	require.EqualValues(t, 0x55, b.Read(0xC000))
}

func TestOAMDMACopiesSourcePageAndStallsCPU(t *testing.T) {
	b := newTestBus(t, nil)
	b.Write(0x0200, 0x11)
	b.Write(0x0201, 0x22)

	cyclesBeforeOddCheck := b.cycles
	startOdd := cyclesBeforeOddCheck%2 == 1

	b.Write(0x4014, 0x02)
	require.True(t, b.oamDMA.active)

	total := uint64(0)
	for b.oamDMA.active {
		total += b.Step()
	}
	expected := uint64(513)
	if startOdd {
		expected = 514
	}
	require.EqualValues(t, expected, total)

	b.Write(0x2003, 0x00)
	require.EqualValues(t, 0x11, b.Read(0x2004))
	b.Write(0x2003, 0x01)
	require.EqualValues(t, 0x22, b.Read(0x2004))
}

func TestControllerReadRoutesThroughInputState(t *testing.T) {
	b := newTestBus(t, nil)
	b.Input.Controller1.SetButton(1, true) // ButtonA = 1
	b.Write(0x4016, 0x01)
	b.Write(0x4016, 0x00)
	require.EqualValues(t, 1, b.Read(0x4016)&0x01)
}

func TestUnmappedReadReturnsDecayingOpenBus(t *testing.T) {
	b := newTestBus(t, nil)
	b.Write(0x2000, 0xAA) // drives all 8 open-bus bits via the PPU register write
	require.EqualValues(t, 0xAA, b.Read(0x4018)&0xFF)
}

func TestRunFrameAdvancesPPUFrameCounter(t *testing.T) {
	b := newTestBus(t, func(prg []uint8) {
		prg[0] = 0xEA                          // NOP
		prg[1], prg[2], prg[3] = 0x4C, 0x00, 0x80 // JMP $8000, so NOP forever
	})
	before := b.PPU.FrameCount()
	b.RunFrame()
	require.Greater(t, b.PPU.FrameCount(), before)
}
