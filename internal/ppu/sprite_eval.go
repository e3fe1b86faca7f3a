package ppu

// evalResult is what a single scanline's sprite evaluation pass hands to
// the fetch stage: which OAM sprites were selected, and the overflow/
// sprite-zero flags that feed $2002.
type evalResult struct {
	count          uint8
	sprite0InRange bool
	overflow       bool

	y     [8]uint8
	tile  [8]uint8
	attr  [8]uint8
	x     [8]uint8
	index [8]uint8 // original OAM slot of each selected sprite
}

// evaluateSprites walks primary OAM for the given scanline and selects up
// to eight in-range sprites for secondary OAM, following the documented
// hardware algorithm.
//
// The real 2C02 performs this scan cycle-by-cycle across dots 65-256 and,
// once eight sprites are already selected, keeps scanning with a buggy
// interleaved n/m increment that can produce false-positive overflow
// detection. This implementation computes the same selection and the
// common-case overflow result (more than eight sprites in range) in one
// pass rather than reproducing that interleaved bug cycle-for-cycle; the
// odd corrupted-overflow edge cases the bug produces on real hardware are
// knowingly not modeled. This is recorded as a simplification rather than
// silently differing from the documented algorithm.
func evaluateSprites(oam *[256]uint8, scanline, spriteHeight int) evalResult {
	var result evalResult

	for n := 0; n < 64; n++ {
		y := oam[n*4]
		diff := scanline - int(y)
		if diff < 0 || diff >= spriteHeight {
			continue
		}

		if result.count < 8 {
			idx := result.count
			result.y[idx] = y
			result.tile[idx] = oam[n*4+1]
			result.attr[idx] = oam[n*4+2]
			result.x[idx] = oam[n*4+3]
			result.index[idx] = uint8(n)
			if n == 0 {
				result.sprite0InRange = true
			}
			result.count++
		} else {
			result.overflow = true
		}
	}

	return result
}
