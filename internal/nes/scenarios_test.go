package nes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mikai233/nesium-sub003/internal/bus"
	"github.com/mikai233/nesium-sub003/internal/palette"
	"github.com/mikai233/nesium-sub003/internal/testharness"
)

// blarggProtocolProgram assembles a tiny NROM image that speaks the blargg
// $6000/$6004 status protocol directly: it reports "running", then a pass
// code and message, well within one frame's worth of CPU cycles. Real
// instr_test-v5/apu_test/sprite_hit_timing ROMs speak the same protocol
// over many more frames; this is the protocol's own machinery exercised
// end to end through internal/nes + internal/testharness, not a
// replacement for running the real suites against real ROM images.
func blarggProtocolProgram() []byte {
	return nromImage(0x8000, func(prg []uint8) {
		code := []uint8{
			0xA9, 0x80, // LDA #$80
			0x8D, 0x00, 0x60, // STA $6000 (running)
			0xA9, 0x00, // LDA #$00
			0x8D, 0x00, 0x60, // STA $6000 (pass)
			0xA9, 'O',
			0x8D, 0x04, 0x60, // STA $6004
			0xA9, 'K',
			0x8D, 0x05, 0x60, // STA $6005
			0xA9, 0x00,
			0x8D, 0x06, 0x60, // STA $6006 (NUL terminator)
			0x4C, 0x19, 0x80, // JMP $8019 (self, loop forever)
		}
		copy(prg, code)
	})
}

func TestBlarggProtocolPollerReportsPassThroughTheFacade(t *testing.T) {
	n := New(bus.NTSC, palette.RGBA8888, nil)
	require.NoError(t, n.LoadCartridge(blarggProtocolProgram()))

	result, err := testharness.Run(n, 60)
	require.NoError(t, err)
	require.True(t, result.Passed)
	require.Equal(t, "OK", result.Message)
}

// TestNESTestEntryPointSeedingRunsForward exercises the mechanism a
// nestest-trace replay scenario needs: seeding the CPU at the documented
// automated entry point ($C000) and letting it run, without requiring the
// real nestest.nes image and golden log as a test asset.
func TestNESTestEntryPointSeedingRunsForward(t *testing.T) {
	n := New(bus.NTSC, palette.RGBA8888, nil)
	require.NoError(t, n.LoadCartridge(nromImage(0x8000, func(prg []uint8) {
		prg[0] = 0xEA                          // NOP; NROM mirrors the 16 KiB image across $8000-$FFFF, so this is $C000's first byte too
		prg[1], prg[2], prg[3] = 0x4C, 0x00, 0xC0 // JMP $C000, so the CPU keeps looping at the entry point
	})))
	n.SetCPUSnapshot(CPUSnapshot{PC: 0xC000, SP: 0xFD, I: true})

	before := n.Cycles()
	n.RunFrame(false)
	require.Greater(t, n.Cycles(), before)
	require.GreaterOrEqual(t, n.CPUSnapshot().PC, uint16(0xC000))
}

func TestUxROMBankSwitchEndToEndThroughTheFacade(t *testing.T) {
	prgSize := 16384 * 4
	prg := make([]uint8, prgSize)
	// Fixed bank (last 16 KiB, mapped at $C000-$FFFF) loops forever at reset.
	fixedBankOff := prgSize - 16384
	prg[fixedBankOff] = 0xEA // NOP
	prg[fixedBankOff+1] = 0x4C
	prg[fixedBankOff+2] = 0x01
	prg[fixedBankOff+3] = 0xC0
	prg[fixedBankOff+0x3FFC] = 0x00 // reset vector -> $C000
	prg[fixedBankOff+0x3FFD] = 0xC0

	// Bank 2's first byte is a marker so the test can confirm switching.
	prg[16384*2] = 0x42

	chr := make([]uint8, 8192)
	header := []byte{'N', 'E', 'S', 0x1A, byte(prgSize / 16384), 1, 0x20, 0x00, 0, 0, 0, 0, 0, 0, 0, 0}
	data := append(append([]byte{}, header...), prg...)
	data = append(data, chr...)

	n := New(bus.NTSC, palette.RGBA8888, nil)
	require.NoError(t, n.LoadCartridge(data))
	require.EqualValues(t, 0, n.Peek(0x8000))

	n.bus.Write(0x8000, 0x02) // select bank 2 into the switchable window
	require.EqualValues(t, 0x42, n.Peek(0x8000))
}

// TestNROMSmokeRendersAStablePaletteAcrossAFrame is the plain NROM smoke
// scenario: load a minimal valid image, run a frame, and confirm the facade
// hands back a fully-populated, in-range framebuffer rather than garbage.
func TestNROMSmokeRendersAStablePaletteAcrossAFrame(t *testing.T) {
	n := New(bus.NTSC, palette.RGBA8888, nil)
	require.NoError(t, n.LoadCartridge(nromImage(0x8000, func(prg []uint8) {
		prg[0] = 0xEA                          // NOP
		prg[1], prg[2], prg[3] = 0x4C, 0x00, 0x80 // JMP $8000, so NOP forever
	})))

	n.RunFrame(false)
	buf := n.RenderBuffer()
	require.Len(t, buf, 256*240*4)

	rgb := n.RenderRGB()
	for i, px := range rgb {
		require.Zero(t, px&0xFF000000, "pixel %d carries stray high bits: %#08x", i, px)
	}
}

// irqFlagTimingProgram builds a minimal NROM image that enables IRQs at
// reset and then idles, with an IRQ handler that acknowledges the frame
// sequencer's interrupt (a $4015 read, the same acknowledgement
// apu_test's 6-irq_flag_timing ROM exercises) and counts how many times it
// ran into PRG-RAM at $6000.
func irqFlagTimingProgram() []byte {
	return nromImage(0x8000, func(prg []uint8) {
		prg[0] = 0x58 // CLI: unmask IRQs coming out of reset
		prg[1] = 0x4C // JMP $8001 (idle loop)
		prg[2] = 0x01
		prg[3] = 0x80

		handler := []uint8{
			0xAD, 0x15, 0x40, // LDA $4015 (acks the frame IRQ per the documented quirk)
			0xEE, 0x00, 0x60, // INC $6000
			0x40, // RTI
		}
		copy(prg[0x10:], handler)

		prg[0x3FFE] = 0x10 // IRQ/BRK vector -> $8010
		prg[0x3FFF] = 0x80
	})
}

// TestAPUFrameIRQFlagTimingAcrossTwoHundredFortyFrames mirrors apu_test's
// 6-irq_flag_timing scenario: run long enough for the default 4-step frame
// sequencer to assert its IRQ repeatedly, and confirm the handler actually
// observes and acknowledges it rather than it going missing or wedging the
// CPU in a permanently-asserted state.
func TestAPUFrameIRQFlagTimingAcrossTwoHundredFortyFrames(t *testing.T) {
	n := New(bus.NTSC, palette.RGBA8888, nil)
	require.NoError(t, n.LoadCartridge(irqFlagTimingProgram()))

	for frame := 0; frame < 240; frame++ {
		n.RunFrame(false)
	}

	require.Greater(t, n.Peek(0x6000), uint8(0), "frame IRQ handler never ran")
	require.False(t, n.bus.APU.IRQPending(), "frame IRQ left asserted after the handler's $4015 ack")
}
