package ppu

// spriteAttributes mirrors a sprite's OAM attribute byte.
type spriteAttributes uint8

const (
	spritePaletteMask        spriteAttributes = 0b0000_0011
	spritePriorityBehind     spriteAttributes = 0b0010_0000
	spriteFlipHorizontal     spriteAttributes = 0b0100_0000
	spriteFlipVertical       spriteAttributes = 0b1000_0000
)

// shift16 is the 16-bit left-shifting register used by every background
// shifter: the high byte holds pixels in flight, the low byte is reloaded
// every 8 pixels with the next tile row.
type shift16 uint16

func (s *shift16) clearLowByte() { *s &= 0xFF00 }
func (s *shift16) loadLowByte(b uint8) { *s |= shift16(b) }
func (s shift16) bitWithFineX(fineX uint8) uint8 {
	shift := 15 - (fineX & 0x07)
	return uint8((s >> shift) & 1)
}
func (s *shift16) shift() { *s <<= 1 }

// bgPipeline emulates the NES PPU's four background shift registers: two
// pattern bitplanes and two attribute/palette bits.
type bgPipeline struct {
	pattern [2]shift16
	palette [2]shift16
}

func (p *bgPipeline) clear() {
	p.pattern = [2]shift16{}
	p.palette = [2]shift16{}
}

// reload loads freshly fetched tile data into the low bytes of all four
// shifters at a tile boundary (every 8 dots).
func (p *bgPipeline) reload(patternLow, patternHigh uint8, paletteIndex uint8) {
	p.pattern[0].clearLowByte()
	p.pattern[0].loadLowByte(patternLow)
	p.pattern[1].clearLowByte()
	p.pattern[1].loadLowByte(patternHigh)

	for i := 0; i < 2; i++ {
		bit := (paletteIndex >> i) & 1
		var repeated uint8
		if bit != 0 {
			repeated = 0xFF
		}
		p.palette[i].clearLowByte()
		p.palette[i].loadLowByte(repeated)
	}
}

// sample returns (paletteBits, patternBits) for the current dot, offset by
// fine X scroll.
func (p *bgPipeline) sample(fineX uint8) (uint8, uint8) {
	patternBit0 := p.pattern[0].bitWithFineX(fineX)
	patternBit1 := p.pattern[1].bitWithFineX(fineX)
	paletteBit0 := p.palette[0].bitWithFineX(fineX)
	paletteBit1 := p.palette[1].bitWithFineX(fineX)
	return (paletteBit1 << 1) | paletteBit0, (patternBit1 << 1) | patternBit0
}

func (p *bgPipeline) shift() {
	p.pattern[0].shift()
	p.pattern[1].shift()
	p.palette[0].shift()
	p.palette[1].shift()
}

// spriteSlot is one of the eight sprite-shifter slots active for a
// scanline.
type spriteSlot struct {
	patternLow  uint8
	patternHigh uint8
	attributes  spriteAttributes
	xCounter    uint8
	sprite0     bool
}

// spritePixel is the pixel a sprite slot contributes on a given dot.
type spritePixel struct {
	palette          uint8
	color            uint8
	priorityBehindBg bool
	isSprite0        bool
}

// spritePipeline holds the eight sprite shifters for the current scanline.
type spritePipeline struct {
	slots       [8]spriteSlot
	activeCount uint8
}

func (p *spritePipeline) clear() {
	p.slots = [8]spriteSlot{}
	p.activeCount = 0
}

func reverseBits(b uint8) uint8 {
	var r uint8
	for i := 0; i < 8; i++ {
		r <<= 1
		r |= b & 1
		b >>= 1
	}
	return r
}

// loadScanline installs the sprites found by evaluation for the next
// scanline, pre-flipping pattern bytes so the shift direction always walks
// pixels left to right on output.
func (p *spritePipeline) loadScanline(count uint8, sprite0InRange bool, attrs, xs, patternLow, patternHigh []uint8) {
	p.clear()
	if count > 8 {
		count = 8
	}
	p.activeCount = count

	for i := uint8(0); i < count; i++ {
		low := patternLow[i]
		high := patternHigh[i]
		attr := spriteAttributes(attrs[i])
		if attr&spriteFlipHorizontal != 0 {
			low = reverseBits(low)
			high = reverseBits(high)
		}
		p.slots[i] = spriteSlot{
			patternLow:  low,
			patternHigh: high,
			attributes:  attr,
			xCounter:    xs[i],
			sprite0:     sprite0InRange && i == 0,
		}
	}
}

// sampleAndShift returns the highest-priority opaque sprite pixel for this
// dot (or a transparent pixel if none) and advances every active shifter.
func (p *spritePipeline) sampleAndShift() spritePixel {
	var chosen spritePixel
	found := false

	for i := uint8(0); i < p.activeCount; i++ {
		slot := &p.slots[i]
		if slot.xCounter > 0 {
			slot.xCounter--
			continue
		}

		bit0 := (slot.patternLow >> 7) & 1
		bit1 := (slot.patternHigh >> 7) & 1
		color := (bit1 << 1) | bit0

		if !found && color != 0 {
			chosen = spritePixel{
				palette:          uint8(slot.attributes & spritePaletteMask),
				color:            color,
				priorityBehindBg: slot.attributes&spritePriorityBehind != 0,
				isSprite0:        slot.sprite0,
			}
			found = true
		}

		slot.patternLow <<= 1
		slot.patternHigh <<= 1
	}

	return chosen
}
