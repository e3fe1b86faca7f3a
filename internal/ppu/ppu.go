// Package ppu implements the NES Picture Processing Unit (Ricoh 2C02):
// the dot-accurate background/sprite pipelines, sprite evaluation (which
// sets the overflow flag when more than eight sprites are in range and does
// not reproduce the hardware's buggy overflow scan), the PPU-local
// open-bus latch, and OAM DMA.
package ppu

import (
	"github.com/rs/zerolog"

	"github.com/mikai233/nesium-sub003/internal/rng"
)

// CartridgeAccess is the transient view the PPU borrows into cartridge CHR
// space and nametable routing for a single call; it is never stored
// between calls, matching the rest of the core's no-stored-references
// design.
type CartridgeAccess interface {
	PPURead(addr uint16) uint8
	PPUWrite(addr uint16, value uint8)
	MapNametable(addr uint16) NametableTarget
	ReadMapperNametable(offset uint16) uint8
	WriteMapperNametable(offset uint16, value uint8)
	PPUVRAMAccess(addr uint16)
}

// NametableTarget mirrors cartridge.NametableTarget so this package has no
// hard dependency on the cartridge package's internals; the facade adapts
// *cartridge.Cartridge to CartridgeAccess when wiring the two together.
type NametableTarget struct {
	CIRAM  bool
	Offset uint16
}

const (
	visibleWidth    = 256
	visibleHeight   = 240
	dotsPerLine     = 341
	preRenderLine   = -1
	postRenderLine  = 240
	vblankStartLine = 241
	lastLine        = 260
)

// PPU is a complete, cycle-accurate NES picture processing unit.
type PPU struct {
	ctrl    control
	msk     mask
	stat    status
	oamAddr uint8

	regs vramRegisters

	oam      [256]uint8
	bg       bgPipeline
	sprites  spritePipeline
	evalNext evalResult

	openBus localOpenBus

	ciram      [0x800]uint8
	paletteRAM [32]uint8

	readBuffer uint8

	scanline int
	dot      int
	frame    uint64
	oddFrame bool

	nmiLine        bool
	suppressVBlank bool

	frameBuffer [visibleWidth * visibleHeight]uint8

	ntLatch, atLatch, patLowLatch, patHighLatch uint8
	atPaletteIndex                              uint8

	log *zerolog.Logger
}

// New returns a power-on PPU.
func New(log *zerolog.Logger) *PPU {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &PPU{
		scanline: preRenderLine,
		log:      log,
	}
}

// Reset clears rendering state; the PPU resumes at the pre-render line.
func (p *PPU) Reset() {
	p.ctrl = 0
	p.msk = 0
	p.oamAddr = 0
	p.regs = vramRegisters{}
	p.scanline = preRenderLine
	p.dot = 0
	p.oddFrame = false
	p.readBuffer = 0
	p.bg.clear()
	p.sprites.clear()
	p.openBus.reset()
}

// RandomizePaletteRAM fills palette RAM with noise drawn from powerRNG,
// masked to the 6-bit range real palette entries occupy. Only power-on
// should call this; a soft reset leaves palette RAM exactly as it was,
// matching hardware where RESET never touches PPU-internal memory.
func (p *PPU) RandomizePaletteRAM(powerRNG *rng.SplitMix64) {
	for i := range p.paletteRAM {
		p.paletteRAM[i] = powerRNG.NextU8() & 0x3F
	}
}

// FrameCount reports how many frames have completed since power-on/reset.
func (p *PPU) FrameCount() uint64 { return p.frame }

// NMILine reports whether the PPU currently asserts the CPU's NMI line.
func (p *PPU) NMILine() bool { return p.nmiLine }

// Emphasis returns the current PPUMASK color-emphasis selection (bits 5-7,
// red/green/blue), the index a palette's 8 emphasis tables are keyed by.
func (p *PPU) Emphasis() uint8 { return uint8(p.msk >> 5) }

// Scanline and Dot report the PPU's current position, for diagnostic
// tracing (e.g. the NMI trace dump).
func (p *PPU) Scanline() int { return p.scanline }
func (p *PPU) Dot() int      { return p.dot }

// FrameBuffer returns the most recently completed frame as raw 6-bit
// palette indices, row-major, 256x240. Converting indices to packed RGB
// pixels in a chosen color format and active palette is the job of the
// palette package, one layer up, so the PPU itself never hardcodes a
// color reproduction (see DESIGN.md).
func (p *PPU) FrameBuffer() *[visibleWidth * visibleHeight]uint8 { return &p.frameBuffer }

// spriteHeight returns 8 or 16 depending on PPUCTRL bit 5.
func (p *PPU) spriteHeight() int {
	if p.ctrl.use8x16Sprites() {
		return 16
	}
	return 8
}

// ReadRegister services a CPU read of $2000-$2007 (already mirrored down
// to that range by the bus).
func (p *PPU) ReadRegister(addr uint16, cart CartridgeAccess) uint8 {
	switch addr & 0x07 {
	case 2:
		value := uint8(p.stat) & 0xE0
		p.stat &^= statusVerticalBlank
		p.regs.resetLatch()
		return p.openBus.apply(0x1F, value, uint32(p.frame))
	case 4:
		return p.oam[p.oamAddr]
	case 7:
		return p.readData(cart)
	default:
		return p.openBus.sample()
	}
}

// WriteRegister services a CPU write to $2000-$2007.
func (p *PPU) WriteRegister(addr uint16, value uint8, cart CartridgeAccess) {
	p.openBus.set(0xFF, value, uint32(p.frame))
	switch addr & 0x07 {
	case 0:
		wasEnabled := p.ctrl.nmiEnabled()
		p.ctrl = control(value)
		p.regs.t.setNametable(value & 0x03)
		if !wasEnabled && p.ctrl.nmiEnabled() && p.stat&statusVerticalBlank != 0 {
			p.nmiLine = true
		}
		if !p.ctrl.nmiEnabled() {
			p.nmiLine = false
		}
	case 1:
		p.msk = mask(value)
	case 3:
		p.oamAddr = value
	case 4:
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 5:
		p.regs.writeScroll(value)
	case 6:
		if addr, ok := p.regs.writeAddr(value); ok {
			p.regs.v = addr
		}
	case 7:
		p.writeData(value, cart)
	}
}

// WriteOAMDMA writes a full 256-byte page into OAM starting at the current
// OAMADDR, wrapping as hardware does.
func (p *PPU) WriteOAMDMA(page [256]uint8) {
	for _, b := range page {
		p.oam[p.oamAddr] = b
		p.oamAddr++
	}
}

func (p *PPU) mapVRAMAddr(addr uint16) uint16 { return addr & 0x3FFF }

func (p *PPU) busRead(addr uint16, cart CartridgeAccess) uint8 {
	addr = p.mapVRAMAddr(addr)
	switch {
	case addr < 0x2000:
		if cart != nil {
			cart.PPUVRAMAccess(addr)
			return cart.PPURead(addr)
		}
		return 0
	case addr < 0x3F00:
		return p.readNametable(addr, cart)
	default:
		return p.readPalette(addr)
	}
}

func (p *PPU) busWrite(addr uint16, value uint8, cart CartridgeAccess) {
	addr = p.mapVRAMAddr(addr)
	switch {
	case addr < 0x2000:
		if cart != nil {
			cart.PPUVRAMAccess(addr)
			cart.PPUWrite(addr, value)
		}
	case addr < 0x3F00:
		p.writeNametable(addr, value, cart)
	default:
		p.writePalette(addr, value)
	}
}

func (p *PPU) readNametable(addr uint16, cart CartridgeAccess) uint8 {
	nt := (addr - 0x2000) & 0x0FFF
	if cart == nil {
		return p.ciram[nt&0x07FF]
	}
	target := cart.MapNametable(0x2000 | nt)
	if target.CIRAM {
		return p.ciram[target.Offset&0x07FF]
	}
	return cart.ReadMapperNametable(target.Offset)
}

func (p *PPU) writeNametable(addr uint16, value uint8, cart CartridgeAccess) {
	nt := (addr - 0x2000) & 0x0FFF
	if cart == nil {
		p.ciram[nt&0x07FF] = value
		return
	}
	target := cart.MapNametable(0x2000 | nt)
	if target.CIRAM {
		p.ciram[target.Offset&0x07FF] = value
	} else {
		cart.WriteMapperNametable(target.Offset, value)
	}
}

// palettePhysicalIndex resolves the $3F00-$3FFF address range into its
// physical 32-byte palette RAM slot, folding the four background-color
// mirror addresses ($3F10/$14/$18/$1C) onto their background-side
// counterparts ($3F00/$04/$08/$0C).
func palettePhysicalIndex(addr uint16) uint16 {
	idx := (addr - 0x3F00) & 0x1F
	if idx&0x13 == 0x10 {
		idx &^= 0x10
	}
	return idx
}

func (p *PPU) readPalette(addr uint16) uint8 {
	v := p.paletteRAM[palettePhysicalIndex(addr)]
	if p.msk.grayscale() {
		v &= 0x30
	}
	return v
}

func (p *PPU) writePalette(addr uint16, value uint8) {
	p.paletteRAM[palettePhysicalIndex(addr)] = value & 0x3F
}

// readData services a $2007 read: nametable/pattern reads are buffered one
// access behind, while palette reads return immediately (but still refill
// the buffer from the underlying nametable byte, matching documented
// hardware behavior).
func (p *PPU) readData(cart CartridgeAccess) uint8 {
	addr := p.regs.v.raw()
	var result uint8
	if addr&0x3FFF >= 0x3F00 {
		result = p.readPalette(addr)
		p.readBuffer = p.busRead(addr-0x1000, cart)
	} else {
		result = p.readBuffer
		p.readBuffer = p.busRead(addr, cart)
	}
	p.advanceVRAMAddr()
	return result
}

func (p *PPU) writeData(value uint8, cart CartridgeAccess) {
	p.busWrite(p.regs.v.raw(), value, cart)
	p.advanceVRAMAddr()
}

func (p *PPU) advanceVRAMAddr() {
	step := p.ctrl.vramIncrement()
	p.regs.v.increment(step)
}

// Step advances the PPU by exactly one dot. The bus is expected to call
// this three times per NTSC CPU cycle (or per the region's configured
// dot-per-cycle ratio).
func (p *PPU) Step(cart CartridgeAccess) {
	switch {
	case p.scanline == preRenderLine:
		p.stepPreRender(cart)
	case p.scanline < visibleHeight:
		p.stepVisible(cart)
	case p.scanline == postRenderLine:
		// Idle scanline.
	case p.scanline >= vblankStartLine && p.scanline <= lastLine:
		p.stepVBlank()
	}

	p.advanceDot()
}

func (p *PPU) advanceDot() {
	p.dot++
	if p.scanline == preRenderLine && p.dot == 340 && p.oddFrame && p.msk.renderingEnabled() {
		p.dot = 341 // skip the idle dot on odd frames when rendering is on
	}
	if p.dot >= dotsPerLine {
		p.dot = 0
		p.scanline++
		if p.scanline > lastLine {
			p.scanline = preRenderLine
			p.frame++
			p.oddFrame = !p.oddFrame
		}
	}
}

func (p *PPU) stepVBlank() {
	if p.scanline == vblankStartLine && p.dot == 1 && !p.suppressVBlank {
		p.stat |= statusVerticalBlank
		if p.ctrl.nmiEnabled() {
			p.nmiLine = true
		}
	}
	p.suppressVBlank = false
}

func (p *PPU) stepPreRender(cart CartridgeAccess) {
	if p.dot == 1 {
		p.stat &^= statusVerticalBlank | statusSpriteZeroHit | statusSpriteOverflow
		p.nmiLine = false
	}
	if p.msk.renderingEnabled() {
		p.renderFetchCycle(cart)
		if p.dot >= 280 && p.dot <= 304 {
			p.regs.v.copyVertical(p.regs.t)
		}
	}
}

func (p *PPU) stepVisible(cart CartridgeAccess) {
	if p.dot >= 1 && p.dot <= visibleWidth {
		p.renderPixel()
	}
	if p.msk.renderingEnabled() {
		p.renderFetchCycle(cart)
	}
}

// renderFetchCycle performs the dot-accurate background/sprite fetch
// schedule shared by visible and pre-render scanlines.
func (p *PPU) renderFetchCycle(cart CartridgeAccess) {
	if (p.dot >= 1 && p.dot <= 256) || (p.dot >= 321 && p.dot <= 336) {
		p.bg.shift()
		switch (p.dot - 1) % 8 {
		case 1:
			ntAddr := 0x2000 | (p.regs.v.raw() & 0x0FFF)
			p.ntLatch = p.busRead(ntAddr, cart)
		case 3:
			p.atLatch = p.fetchAttributeByte(cart)
		case 5:
			p.patLowLatch = p.fetchPatternByte(cart, false)
		case 7:
			p.patHighLatch = p.fetchPatternByte(cart, true)
			p.bg.reload(p.patLowLatch, p.patHighLatch, p.atPaletteIndex)
			p.regs.v.incrementX()
		}
	}

	if p.dot == 256 {
		p.regs.v.incrementY()
	}
	if p.dot == 257 {
		p.regs.v.copyHorizontal(p.regs.t)
		p.oamAddr = 0
		p.evalNext = evaluateSprites(&p.oam, p.scanline+1, p.spriteHeight())
		if p.evalNext.overflow {
			p.stat |= statusSpriteOverflow
		}
	}
	if p.dot == 320 {
		p.loadSpritesForNextScanline(cart)
	}
}

func (p *PPU) fetchAttributeByte(cart CartridgeAccess) uint8 {
	v := p.regs.v
	atAddr := uint16(0x23C0) | (uint16(v.nametable()) << 10) | (uint16(v.coarseY()>>2) << 3) | uint16(v.coarseX()>>2)
	raw := p.busRead(atAddr, cart)
	shift := ((v.coarseY() & 0x02) << 1) | (v.coarseX() & 0x02)
	p.atPaletteIndex = (raw >> shift) & 0x03
	return raw
}

func (p *PPU) fetchPatternByte(cart CartridgeAccess, highPlane bool) uint8 {
	v := p.regs.v
	base := p.ctrl.bgPatternTable()
	addr := base | (uint16(p.ntLatch) << 4) | uint16(v.fineY())
	if highPlane {
		addr |= 0x08
	}
	return p.busRead(addr, cart)
}

func (p *PPU) loadSpritesForNextScanline(cart CartridgeAccess) {
	var patternLow, patternHigh [8]uint8
	height := p.spriteHeight()

	for i := uint8(0); i < p.evalNext.count; i++ {
		y := p.evalNext.y[i]
		tile := p.evalNext.tile[i]
		attr := spriteAttributes(p.evalNext.attr[i])
		row := (p.scanline + 1) - int(y)
		if attr&spriteFlipVertical != 0 {
			row = height - 1 - row
		}

		var addr uint16
		if height == 16 {
			table := uint16(tile&0x01) << 12
			tileIdx := uint16(tile &^ 0x01)
			if row >= 8 {
				tileIdx++
				row -= 8
			}
			addr = table | (tileIdx << 4) | uint16(row)
		} else {
			addr = p.ctrl.spritePatternTable() | (uint16(tile) << 4) | uint16(row)
		}

		patternLow[i] = p.busRead(addr, cart)
		patternHigh[i] = p.busRead(addr|0x08, cart)
	}

	p.sprites.loadScanline(p.evalNext.count, p.evalNext.sprite0InRange,
		p.evalNext.attr[:p.evalNext.count], p.evalNext.x[:p.evalNext.count],
		patternLow[:p.evalNext.count], patternHigh[:p.evalNext.count])
}

func (p *PPU) renderPixel() {
	x := p.dot - 1
	var bgPalette, bgPattern uint8
	if p.msk.showBackground() && (x >= 8 || p.msk.showBgLeft()) {
		bgPalette, bgPattern = p.bg.sample(p.regs.x)
	}

	var sprite spritePixel
	if p.msk.showSprites() {
		sample := p.sprites.sampleAndShift()
		if x >= 8 || p.msk.showSpritesLeft() {
			sprite = sample
		}
	}

	bgOpaque := bgPattern != 0
	spriteOpaque := sprite.color != 0

	if sprite.isSprite0 && bgOpaque && spriteOpaque && x != 255 && p.stat&statusSpriteZeroHit == 0 {
		p.stat |= statusSpriteZeroHit
	}

	var paletteAddr uint16
	switch {
	case !bgOpaque && !spriteOpaque:
		paletteAddr = 0x3F00
	case !bgOpaque:
		paletteAddr = 0x3F10 + uint16(sprite.palette)*4 + uint16(sprite.color)
	case !spriteOpaque:
		paletteAddr = 0x3F00 + uint16(bgPalette)*4 + uint16(bgPattern)
	case sprite.priorityBehindBg:
		paletteAddr = 0x3F00 + uint16(bgPalette)*4 + uint16(bgPattern)
	default:
		paletteAddr = 0x3F10 + uint16(sprite.palette)*4 + uint16(sprite.color)
	}

	colorIndex := p.readPalette(paletteAddr) & 0x3F
	p.frameBuffer[p.scanline*visibleWidth+x] = colorIndex
}
