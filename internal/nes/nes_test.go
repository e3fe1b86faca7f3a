package nes

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mikai233/nesium-sub003/internal/bus"
	"github.com/mikai233/nesium-sub003/internal/cartridge"
	"github.com/mikai233/nesium-sub003/internal/input"
	"github.com/mikai233/nesium-sub003/internal/palette"
)

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

func newTestNES(t *testing.T) *NES {
	t.Helper()
	n := New(bus.NTSC, palette.RGBA8888, nil)
	require.NoError(t, n.LoadCartridge(nromImage(0x8000, func(prg []uint8) {
		prg[0] = 0xEA                          // NOP
		prg[1], prg[2], prg[3] = 0x4C, 0x00, 0x80 // JMP $8000, so NOP forever
	})))
	return n
}

func TestLoadCartridgeResetsCPUToResetVector(t *testing.T) {
	n := newTestNES(t)
	require.EqualValues(t, 0x8000, n.CPUSnapshot().PC)
}

func TestLoadCartridgeRejectsMalformedImage(t *testing.T) {
	n := New(bus.NTSC, palette.RGBA8888, nil)
	err := n.LoadCartridge([]byte("not a rom"))
	require.Error(t, err)
	var loadErr *cartridge.LoadError
	require.ErrorAs(t, err, &loadErr)
}

func TestRunFrameProducesAFullSizedBuffer(t *testing.T) {
	n := newTestNES(t)
	n.RunFrame(false)
	buf := n.RenderBuffer()
	require.Len(t, buf, 256*240*4) // RGBA8888
}

func TestSetFormatChangesRenderBufferSize(t *testing.T) {
	n := newTestNES(t)
	n.SetFormat(palette.RGB565)
	n.RunFrame(false)
	buf := n.RenderBuffer()
	require.Len(t, buf, 256*240*2)
}

func TestSetPaletteRejectsMalformedBlob(t *testing.T) {
	n := newTestNES(t)
	err := n.SetPalette(make([]byte, 10))
	require.Error(t, err)
}

func TestSetButtonRoutesToTheNamedPort(t *testing.T) {
	n := newTestNES(t)
	n.SetButton(0, input.ButtonA, true)
	require.True(t, n.bus.Input.Controller1.IsPressed(input.ButtonA))
	require.False(t, n.bus.Input.Controller2.IsPressed(input.ButtonA))
}

func TestSetCPUSnapshotOverwritesRegisters(t *testing.T) {
	n := newTestNES(t)
	n.SetCPUSnapshot(CPUSnapshot{A: 0x42, X: 0x11, Y: 0x22, SP: 0xFD, PC: 0xC000, Z: true})
	snap := n.CPUSnapshot()
	require.EqualValues(t, 0x42, snap.A)
	require.EqualValues(t, 0xC000, snap.PC)
	require.True(t, snap.Z)
}

func TestLoadMovieAppliesEventsAtTheirScheduledCycle(t *testing.T) {
	n := newTestNES(t)
	n.LoadMovie([]InputEvent{
		{Cycle: 0, Port: 0, Button: input.ButtonStart, Pressed: true},
	})
	n.RunFrame(false)
	require.True(t, n.bus.Input.Controller1.IsPressed(input.ButtonStart))
}

func TestPRGRAMIsNilWithoutABatteryBackedCartridge(t *testing.T) {
	n := newTestNES(t)
	require.Nil(t, n.PRGRAM())
}

func TestEjectClearsTheCartridge(t *testing.T) {
	n := newTestNES(t)
	n.Eject()
	require.Nil(t, n.cartridge())
}

func TestRenderRGBPacksKnownIndexZeroAsDefaultGray(t *testing.T) {
	n := newTestNES(t)
	// Power-on randomizes palette RAM, so set the universal background entry to index 0 first.
	n.bus.Write(0x2006, 0x3F)
	n.bus.Write(0x2006, 0x00)
	n.bus.Write(0x2007, 0x00)
	n.RunFrame(false)
	rgb := n.RenderRGB()
	require.EqualValues(t, 0x626262, rgb[0]&0xFFFFFF) // universal background color, default palette
}

func TestSetNMITraceWritesOneLinePerServicedNMI(t *testing.T) {
	n := newTestNES(t)
	var buf bytes.Buffer
	n.SetNMITrace(&buf)
	n.bus.CPU.OnNMIServiced() // exercise the hook directly; wiring is verified here, NMI timing in the bus/ppu packages
	require.Contains(t, buf.String(), ",")
	n.SetNMITrace(nil)
	require.Nil(t, n.bus.CPU.OnNMIServiced)
}
