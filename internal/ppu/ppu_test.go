package ppu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeCartridge is a minimal CartridgeAccess backed by a flat CHR array and
// a fixed horizontal-mirroring nametable map, enough to exercise the PPU's
// register and rendering paths without depending on the cartridge package.
type fakeCartridge struct {
	chr         [0x2000]uint8
	vramAccesses []uint16
}

func (f *fakeCartridge) PPURead(addr uint16) uint8       { return f.chr[addr&0x1FFF] }
func (f *fakeCartridge) PPUWrite(addr uint16, v uint8)    { f.chr[addr&0x1FFF] = v }
func (f *fakeCartridge) ReadMapperNametable(uint16) uint8 { return 0 }
func (f *fakeCartridge) WriteMapperNametable(uint16, uint8) {}
func (f *fakeCartridge) PPUVRAMAccess(addr uint16)        { f.vramAccesses = append(f.vramAccesses, addr) }

func (f *fakeCartridge) MapNametable(addr uint16) NametableTarget {
	base := addr & 0x0FFF
	// Horizontal mirroring: tables 0/1 share page 0, tables 2/3 share page 1.
	page := (base / 0x400) / 2
	offset := (base % 0x400) + page*0x400
	return NametableTarget{CIRAM: true, Offset: offset}
}

func TestPPURegisterWriteReadRoundTripsOAM(t *testing.T) {
	p := New(nil)
	p.WriteRegister(0x2003, 0x10, nil)
	p.WriteRegister(0x2004, 0xAB, nil)
	require.EqualValues(t, 0xAB, p.oam[0x10])
	p.WriteRegister(0x2003, 0x10, nil)
	require.EqualValues(t, 0xAB, p.ReadRegister(0x2004, nil))
}

func TestStatusReadClearsVBlankAndResetsLatch(t *testing.T) {
	p := New(nil)
	p.stat |= statusVerticalBlank
	p.regs.w = true
	v := p.ReadRegister(0x2002, nil)
	require.NotZero(t, v&0x80)
	require.Zero(t, uint8(p.stat)&0x80)
	require.False(t, p.regs.w)
}

func TestScrollAndAddrWritesUpdateVT(t *testing.T) {
	p := New(nil)
	p.WriteRegister(0x2005, 0x7D, nil) // coarse x = 15, fine x = 5
	p.WriteRegister(0x2005, 0x5E, nil) // coarse y = 11, fine y = 6
	require.EqualValues(t, 15, p.regs.t.coarseX())
	require.EqualValues(t, 5, p.regs.x)
	require.EqualValues(t, 11, p.regs.t.coarseY())
	require.EqualValues(t, 6, p.regs.t.fineY())

	p.WriteRegister(0x2006, 0x21, nil)
	p.WriteRegister(0x2006, 0x08, nil)
	require.EqualValues(t, 0x2108, p.regs.v.raw())
}

func TestVRAMDataReadIsBufferedExceptForPalette(t *testing.T) {
	cart := &fakeCartridge{}
	cart.chr[0x0010] = 0x42
	p := New(nil)
	p.regs.v.setRaw(0x0010)

	first := p.ReadRegister(0x2007, cart)
	require.Zero(t, first, "first read returns the stale buffer, not the fresh byte")
	second := p.ReadRegister(0x2007, cart)
	require.EqualValues(t, 0x42, second)
}

func TestVRAMAddrIncrementsByConfiguredStep(t *testing.T) {
	p := New(nil)
	p.WriteRegister(0x2000, 0x04, nil) // increment by 32
	p.regs.v.setRaw(0x2000)
	p.ReadRegister(0x2007, &fakeCartridge{})
	require.EqualValues(t, 0x2020, p.regs.v.raw())
}

func TestPaletteMirrorsBackgroundColorSlots(t *testing.T) {
	p := New(nil)
	p.writePalette(0x3F00, 0x20)
	require.EqualValues(t, 0x20, p.readPalette(0x3F10))
}

func TestNametableWriteReadThroughMapper(t *testing.T) {
	p := New(nil)
	cart := &fakeCartridge{}
	p.writeNametable(0x2400, 0x99, cart) // table 1, horizontal mirror -> same page as table 0
	require.EqualValues(t, 0x99, p.readNametable(0x2000, cart))
}

func TestSpriteZeroHitSetsOnOpaqueOverlap(t *testing.T) {
	p := New(nil)
	p.msk = maskShowBg | maskShowSprites | maskBgLeft | maskSpritesLeft
	p.scanline = 10
	p.dot = 9 // pixel x = 8
	p.bg.reload(0xFF, 0x00, 0)
	for i := 0; i < 8; i++ { // bring the opaque background row into the sampled high byte
		p.bg.shift()
	}
	p.sprites.loadScanline(1, true, []uint8{0}, []uint8{0}, []uint8{0xFF}, []uint8{0x00})
	p.renderPixel()
	require.NotZero(t, p.stat&statusSpriteZeroHit)
}

func TestEvaluateSpritesSelectsEightAndFlagsOverflow(t *testing.T) {
	var oam [256]uint8
	for i := 0; i < 10; i++ {
		oam[i*4] = 50 // all in range for an 8px-tall sprite at scanline 50
	}
	result := evaluateSprites(&oam, 50, 8)
	require.EqualValues(t, 8, result.count)
	require.True(t, result.overflow)
}

func TestEvaluateSpritesDetectsSpriteZero(t *testing.T) {
	var oam [256]uint8
	oam[0] = 100
	result := evaluateSprites(&oam, 100, 8)
	require.True(t, result.sprite0InRange)
}

func TestBgPipelineSamplesReloadedTileRow(t *testing.T) {
	var bg bgPipeline
	bg.reload(0b1000_0000, 0b0000_0000, 0b10)
	for i := 0; i < 8; i++ { // move the reloaded low byte into the sampled high byte
		bg.shift()
	}
	palette, pattern := bg.sample(0)
	require.EqualValues(t, 0b10, palette)
	require.EqualValues(t, 0b01, pattern)
}

func TestVramAddrIncrementXWrapsNametable(t *testing.T) {
	var v vramAddr
	v.setCoarseX(31)
	v.incrementX()
	require.EqualValues(t, 0, v.coarseX())
	require.EqualValues(t, 1, v.nametable())
}

func TestVramAddrIncrementYWrapsAtRow29(t *testing.T) {
	var v vramAddr
	v.setFineY(7)
	v.setCoarseY(29)
	v.incrementY()
	require.EqualValues(t, 0, v.coarseY())
	require.EqualValues(t, 2, v.nametable())
}

func TestStepRunsAFullFrameAndTogglesVBlank(t *testing.T) {
	p := New(nil)
	cart := &fakeCartridge{}
	sawVBlank := false
	for i := 0; i < dotsPerLine*262+10; i++ {
		p.Step(cart)
		if p.stat&statusVerticalBlank != 0 {
			sawVBlank = true
		}
	}
	require.EqualValues(t, 1, p.FrameCount())
	require.True(t, sawVBlank)
}

func TestLocalOpenBusDecaysUnrefreshedBits(t *testing.T) {
	var b localOpenBus
	b.set(0xFF, 0xAA, 0)
	v := b.apply(0xFF, 0x00, 10)
	require.EqualValues(t, 0, v, "every bit should have decayed by frame 10")
}

func TestOAMDMAWritesFullPage(t *testing.T) {
	p := New(nil)
	var page [256]uint8
	for i := range page {
		page[i] = uint8(i)
	}
	p.WriteOAMDMA(page)
	require.EqualValues(t, 0, p.oam[0])
	require.EqualValues(t, 255, p.oam[255])
}
