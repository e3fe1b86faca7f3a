package apu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPulseLengthCounterSilencesChannel(t *testing.T) {
	p := NewPulse(Pulse1)
	p.SetEnabled(true)
	p.WriteControl(0x1F) // constant volume, max volume, halt clear
	p.WriteTimerLow(0x00)
	p.WriteTimerHigh(0x08) // duty pos reset, length load index 1 -> 254

	require.True(t, p.LengthActive())
	for i := 0; i < 254; i++ {
		p.ClockLength()
	}
	require.False(t, p.LengthActive(), "length counter should reach zero and silence the channel")
}

func TestPulseSweepMutesBelowMinimumPeriod(t *testing.T) {
	p := NewPulse(Pulse2)
	p.SetEnabled(true)
	p.WriteTimerLow(0x02)
	p.WriteTimerHigh(0x00)
	require.True(t, p.sweep.muted(p.timerPeriod), "periods below 8 must mute regardless of sweep settings")
}

func TestNoiseLFSRStartsNonZero(t *testing.T) {
	n := NewNoise()
	require.NotZero(t, n.lfsr, "an all-zero LFSR would never produce output again")
}

func TestTriangleUltrasonicPeriodStillAdvancesSequence(t *testing.T) {
	tr := &Triangle{}
	tr.SetEnabled(true)
	tr.WriteControl(0x7F)
	tr.WriteTimerLow(0x00)
	tr.WriteTimerHigh(0x00)
	tr.ClockLinear()
	start := tr.sequencePos
	for i := 0; i < 4; i++ {
		tr.ClockTimer()
	}
	require.NotEqual(t, start, tr.sequencePos)
}

func TestFrameSequencerFourStepFiresIRQOnLastStep(t *testing.T) {
	f := frameCounter{}
	f.configure(0x00)
	var sawIRQ bool
	for i := 0; i < int(frameStep4Period)+1; i++ {
		tick := f.clock()
		if tick.frameIRQ {
			sawIRQ = true
		}
	}
	require.True(t, sawIRQ)
}

func TestFrameSequencerIRQInhibitSuppressesIRQ(t *testing.T) {
	f := frameCounter{}
	f.configure(0x40) // four-step, irq inhibit set
	for i := 0; i < int(frameStep4Period)+1; i++ {
		tick := f.clock()
		require.False(t, tick.frameIRQ)
	}
}

func TestFrameSequencerFiveStepClocksImmediatelyOnConfigure(t *testing.T) {
	f := frameCounter{}
	action := f.configure(0x80)
	require.True(t, action.immediateQuarter)
	require.True(t, action.immediateHalf)
}

func TestDMCSampleLengthAndAddrDecoding(t *testing.T) {
	d := &DMC{}
	d.WriteSampleAddr(0x01)
	d.WriteSampleLength(0x01)
	require.EqualValues(t, 0xC000+64, d.sampleAddr)
	require.EqualValues(t, 17, d.sampleLength)
}

func TestDMCRefillsAndCountsDownBytes(t *testing.T) {
	d := &DMC{}
	d.WriteSampleAddr(0x00)
	d.WriteSampleLength(0x00) // length 1
	calls := 0
	d.Fetch = func(addr uint16) uint8 {
		calls++
		return 0xFF
	}
	d.SetEnabled(true)
	require.True(t, d.Active())
	d.refill()
	require.Equal(t, 1, calls)
	require.False(t, d.Active())
}

func TestStatusReadClearsFrameIRQ(t *testing.T) {
	a := New(44100, nil)
	a.frameIRQPending = true
	status := a.ReadStatus()
	require.NotZero(t, status&0x40)
	require.False(t, a.frameIRQPending)
	require.Zero(t, a.ReadStatus()&0x40)
}

func TestWriteRegisterEnablesChannelsViaStatusWrite(t *testing.T) {
	a := New(44100, nil)
	a.WriteRegister(0x4015, 0x1F)
	require.True(t, a.Pulse1.enabled)
	require.True(t, a.Pulse2.enabled)
	require.True(t, a.Triangle.enabled)
	require.True(t, a.Noise.enabled)
	require.True(t, a.DMC.bytesLeft == 0) // no sample programmed yet
}

func TestClockCPUCycleProducesResampledAudio(t *testing.T) {
	a := New(44100, nil)
	a.WriteRegister(0x4000, 0x3F)
	a.WriteRegister(0x4015, 0x01)
	a.WriteRegister(0x4002, 0x00)
	a.WriteRegister(0x4003, 0x02)
	for i := 0; i < 200000; i++ {
		a.ClockCPUCycle()
	}
	require.NotZero(t, len(a.DrainSamples()))
}
