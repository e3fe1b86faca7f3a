package apu

// triangleSequence is the 32-step waveform the triangle channel walks,
// counting down from 15 to 0 and back up to 15.
var triangleSequence = [32]uint8{
	15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

// Triangle is the NES triangle-wave channel. It has no volume control: its
// output is either silent or the raw sequence value, gated by both the
// length counter and the linear counter.
type Triangle struct {
	timer       uint16
	timerPeriod uint16
	sequencePos uint8

	linearCounter     uint8
	linearCounterLoad uint8
	linearReload      bool
	controlFlag       bool

	length lengthCounter

	enabled bool
}

// WriteControl handles the $4008 register.
func (t *Triangle) WriteControl(value uint8) {
	t.controlFlag = value&0x80 != 0
	t.length.halt = t.controlFlag
	t.linearCounterLoad = value & 0x7F
}

// WriteTimerLow handles the $400A register.
func (t *Triangle) WriteTimerLow(value uint8) {
	t.timerPeriod = (t.timerPeriod & 0x0700) | uint16(value)
}

// WriteTimerHigh handles the $400B register.
func (t *Triangle) WriteTimerHigh(value uint8) {
	t.timerPeriod = (t.timerPeriod & 0x00FF) | (uint16(value&0x07) << 8)
	if t.enabled {
		t.length.load(value >> 3)
	}
	t.linearReload = true
}

// SetEnabled mirrors the corresponding $4015 bit.
func (t *Triangle) SetEnabled(enabled bool) {
	t.enabled = enabled
	t.length.setEnabled(enabled)
}

// LengthActive reports whether the length counter is still nonzero.
func (t *Triangle) LengthActive() bool { return t.length.active() }

// ClockTimer advances the triangle timer every CPU cycle (unlike pulse and
// noise, whose timers APU.ClockCPUCycle clocks only every other CPU cycle).
// The sequencer only advances when both the length counter and linear
// counter are nonzero; this is what produces the channel's characteristic
// ultrasonic "click" silence when muted at very low periods instead of a
// smooth fade.
func (t *Triangle) ClockTimer() {
	if t.timer == 0 {
		t.timer = t.timerPeriod
		if t.length.active() && t.linearCounter > 0 {
			t.sequencePos = (t.sequencePos + 1) % 32
		}
	} else {
		t.timer--
	}
}

func (t *Triangle) ClockLength() { t.length.clock() }

// ClockLinear implements the linear counter's quarter-frame behavior.
func (t *Triangle) ClockLinear() {
	if t.linearReload {
		t.linearCounter = t.linearCounterLoad
	} else if t.linearCounter > 0 {
		t.linearCounter--
	}
	if !t.controlFlag {
		t.linearReload = false
	}
}

// Output returns the channel's current 4-bit DAC input. A timer period
// below 2 is left un-muted on real hardware, producing the well known
// ultrasonic whine some games rely on for percussion; that behavior
// carries through here since nothing silences a short period explicitly.
func (t *Triangle) Output() uint8 {
	if !t.enabled || !t.length.active() || t.linearCounter == 0 {
		return 0
	}
	return triangleSequence[t.sequencePos]
}
