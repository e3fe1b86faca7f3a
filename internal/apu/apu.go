package apu

import "github.com/rs/zerolog"

// APU is the complete NES Audio Processing Unit: two pulse channels, a
// triangle, a noise channel, a DMC sample player, the frame sequencer that
// clocks their envelopes/sweeps/length counters, and the mixer/resampler
// pair that turns five DAC outputs into a device-rate audio stream.
type APU struct {
	Pulse1   *Pulse
	Pulse2   *Pulse
	Triangle *Triangle
	Noise    *Noise
	DMC      *DMC

	frame    frameCounter
	mixer    *mixer
	resample *BlipBuffer

	cpuCycle uint64

	frameIRQPending bool

	expansion ExpansionAudio

	log *zerolog.Logger
}

// New returns a power-on APU. outputSampleRate is the device sample rate
// the internal resampler targets; the APU clocks at the NTSC CPU rate.
func New(outputSampleRate float64, log *zerolog.Logger) *APU {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	a := &APU{
		Pulse1:   NewPulse(Pulse1),
		Pulse2:   NewPulse(Pulse2),
		Triangle: &Triangle{},
		Noise:    NewNoise(),
		DMC:      &DMC{},
		mixer:    newMixer(),
		resample: NewBlipBuffer(1789773.0, outputSampleRate),
		expansion: silentExpansionAudio{},
		log:      log,
	}
	return a
}

// SetExpansionAudio installs a mapper-provided expansion sound chip; pass
// nil to revert to silence.
func (a *APU) SetExpansionAudio(e ExpansionAudio) {
	if e == nil {
		e = silentExpansionAudio{}
	}
	a.expansion = e
}

// SetDMCFetcher wires the bus's CPU-address-space reader into the DMC
// channel so it can pull sample bytes during playback.
func (a *APU) SetDMCFetcher(fetch SampleFetcher) {
	a.DMC.Fetch = fetch
}

// Reset silences every channel the way a $4015 write of zero does and
// clears the frame IRQ flag. Channel registers and the frame sequencer
// mode are left as they were.
func (a *APU) Reset() {
	a.WriteRegister(0x4015, 0x00)
	a.frameIRQPending = false
}

// ReadStatus services a $4015 read: bits 0-4 report whether each channel's
// length counter (or, for DMC, bytes-remaining count) is still active, bit
// 6 reports the frame IRQ, and bit 7 reports the DMC IRQ. Reading this
// register clears the frame IRQ flag, a well known hardware quirk games
// rely on to acknowledge it.
func (a *APU) ReadStatus() uint8 {
	var v uint8
	if a.Pulse1.LengthActive() {
		v |= 0x01
	}
	if a.Pulse2.LengthActive() {
		v |= 0x02
	}
	if a.Triangle.LengthActive() {
		v |= 0x04
	}
	if a.Noise.LengthActive() {
		v |= 0x08
	}
	if a.DMC.Active() {
		v |= 0x10
	}
	if a.frameIRQPending {
		v |= 0x40
	}
	if a.DMC.IRQPending() {
		v |= 0x80
	}
	a.frameIRQPending = false
	return v
}

// WriteRegister dispatches a CPU write in the $4000-$4017 range (excluding
// $4014, the OAM DMA trigger, which the bus handles directly).
func (a *APU) WriteRegister(addr uint16, value uint8) {
	switch addr {
	case 0x4000:
		a.Pulse1.WriteControl(value)
	case 0x4001:
		a.Pulse1.WriteSweep(value)
	case 0x4002:
		a.Pulse1.WriteTimerLow(value)
	case 0x4003:
		a.Pulse1.WriteTimerHigh(value)
	case 0x4004:
		a.Pulse2.WriteControl(value)
	case 0x4005:
		a.Pulse2.WriteSweep(value)
	case 0x4006:
		a.Pulse2.WriteTimerLow(value)
	case 0x4007:
		a.Pulse2.WriteTimerHigh(value)
	case 0x4008:
		a.Triangle.WriteControl(value)
	case 0x400A:
		a.Triangle.WriteTimerLow(value)
	case 0x400B:
		a.Triangle.WriteTimerHigh(value)
	case 0x400C:
		a.Noise.WriteControl(value)
	case 0x400E:
		a.Noise.WritePeriod(value)
	case 0x400F:
		a.Noise.WriteLength(value)
	case 0x4010:
		a.DMC.WriteControl(value)
	case 0x4011:
		a.DMC.WriteDirectLoad(value)
	case 0x4012:
		a.DMC.WriteSampleAddr(value)
	case 0x4013:
		a.DMC.WriteSampleLength(value)
	case 0x4015:
		a.Pulse1.SetEnabled(value&0x01 != 0)
		a.Pulse2.SetEnabled(value&0x02 != 0)
		a.Triangle.SetEnabled(value&0x04 != 0)
		a.Noise.SetEnabled(value&0x08 != 0)
		a.DMC.SetEnabled(value&0x10 != 0)
	case 0x4017:
		action := a.frame.configure(value)
		if action.immediateQuarter {
			a.clockQuarterFrame()
		}
		if action.immediateHalf {
			a.clockHalfFrame()
		}
	default:
		a.log.Debug().Uint16("addr", addr).Msg("apu: write to unmapped register")
	}
}

func (a *APU) clockQuarterFrame() {
	a.Pulse1.ClockEnvelope()
	a.Pulse2.ClockEnvelope()
	a.Noise.ClockEnvelope()
	a.Triangle.ClockLinear()
}

func (a *APU) clockHalfFrame() {
	a.Pulse1.ClockLength()
	a.Pulse2.ClockLength()
	a.Triangle.ClockLength()
	a.Noise.ClockLength()
	a.Pulse1.ClockSweep()
	a.Pulse2.ClockSweep()
}

// IRQPending reports whether the APU is currently asserting the shared IRQ
// line (frame sequencer or DMC).
func (a *APU) IRQPending() bool {
	return a.frameIRQPending || a.DMC.IRQPending()
}

// ClockCPUCycle advances every channel, the frame sequencer, and the
// expansion audio hook by one CPU cycle, then feeds a mixed sample into the
// resampler. The pulse and noise timers only tick on every other CPU
// cycle (the APU's internal clock divider), while the triangle timer, the
// DMC timer (whose rate table counts CPU cycles) and the frame sequencer
// tick every CPU cycle.
func (a *APU) ClockCPUCycle() {
	tick := a.frame.clock()
	if tick.quarter {
		a.clockQuarterFrame()
	}
	if tick.half {
		a.clockHalfFrame()
	}
	if tick.frameIRQ {
		a.frameIRQPending = true
	}

	a.Triangle.ClockTimer()
	a.DMC.ClockTimer()

	if a.cpuCycle%2 == 0 {
		a.Pulse1.ClockTimer()
		a.Pulse2.ClockTimer()
		a.Noise.ClockTimer()
	}
	a.cpuCycle++

	a.expansion.ClockCPUCycle()

	sample := a.mixer.mix(a.Pulse1.Output(), a.Pulse2.Output(), a.Triangle.Output(), a.Noise.Output(), a.DMC.Output())
	sample += a.expansion.Output()
	a.resample.AddSample(sample)
}

// DrainSamples returns and clears the device-rate audio samples produced
// since the last call.
func (a *APU) DrainSamples() []float32 {
	return a.resample.Drain()
}
