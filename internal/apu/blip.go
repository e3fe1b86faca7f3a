package apu

// BlipBuffer resamples the APU's ~1.79MHz (NTSC) per-cycle sample stream
// down to an output rate suitable for an audio device, applying a small
// FIR low-pass so the decimation doesn't fold high-frequency content back
// into the audible band. This is a simplified stand-in for a full
// band-limited synthesis buffer: it trades a small amount of high-frequency
// accuracy for a implementation simple enough to reason about without a
// third-party DSP dependency, a tradeoff recorded alongside the rest of the
// APU's grounding notes.
type BlipBuffer struct {
	inputRate  float64
	outputRate float64

	history [4]float32
	phase   float64

	out []float32
}

// NewBlipBuffer constructs a resampler from inputRate (APU sample clock) to
// outputRate (device sample rate).
func NewBlipBuffer(inputRate, outputRate float64) *BlipBuffer {
	return &BlipBuffer{inputRate: inputRate, outputRate: outputRate}
}

// blipTaps is a small windowed-sinc-derived low-pass filter kernel applied
// to the four most recent input samples before each output sample is
// produced.
var blipTaps = [4]float32{0.15, 0.35, 0.35, 0.15}

// AddSample pushes one APU-rate sample into the buffer, emitting zero or
// more output-rate samples depending on how far the resampling phase has
// advanced.
func (b *BlipBuffer) AddSample(sample float32) {
	copy(b.history[0:3], b.history[1:4])
	b.history[3] = sample

	filtered := b.history[0]*blipTaps[0] + b.history[1]*blipTaps[1] +
		b.history[2]*blipTaps[2] + b.history[3]*blipTaps[3]

	b.phase += b.outputRate / b.inputRate
	for b.phase >= 1.0 {
		b.phase -= 1.0
		b.out = append(b.out, filtered)
	}
}

// Drain returns and clears all output-rate samples accumulated so far.
func (b *BlipBuffer) Drain() []float32 {
	out := b.out
	b.out = nil
	return out
}

// Available reports how many output-rate samples are buffered.
func (b *BlipBuffer) Available() int { return len(b.out) }
