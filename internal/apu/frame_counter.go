package apu

// frameCounterMode selects the frame sequencer's timing table.
type frameCounterMode uint8

const (
	frameCounterFourStep frameCounterMode = iota
	frameCounterFiveStep
)

// frameTick indicates which frame units a sequencer step should clock.
type frameTick struct {
	quarter  bool
	half     bool
	frameIRQ bool
}

// frameResetAction records the side effects of writing $4017.
type frameResetAction struct {
	immediateQuarter bool
	immediateHalf    bool
}

type frameStep struct {
	cycle   uint16
	quarter bool
	half    bool
	irq     bool
}

var frameStep4 = []frameStep{
	{3729, true, false, false},
	{7457, true, true, false},
	{11186, true, false, false},
	{14915, true, true, true},
}

const frameStep4Period = 14915

var frameStep5 = []frameStep{
	{3729, true, false, false},
	{7457, true, true, false},
	{11186, true, false, false},
	{14915, true, true, false},
	{18641, false, false, false},
}

const frameStep5Period = 18641

// frameCounter is the APU's frame sequencer, clocking envelopes, sweeps and
// length counters at quarter- and half-frame boundaries.
type frameCounter struct {
	mode       frameCounterMode
	irqInhibit bool
	cycle      uint64
}

func (f *frameCounter) schedule() []frameStep {
	if f.mode == frameCounterFiveStep {
		return frameStep5
	}
	return frameStep4
}

func (f *frameCounter) period() uint64 {
	if f.mode == frameCounterFiveStep {
		return frameStep5Period
	}
	return frameStep4Period
}

// configure reconfigures the sequencer from a $4017 write. In five-step
// mode the hardware immediately clocks both quarter- and half-frame units,
// pulling the first tick forward.
func (f *frameCounter) configure(value uint8) frameResetAction {
	if value&0x80 == 0 {
		f.mode = frameCounterFourStep
	} else {
		f.mode = frameCounterFiveStep
	}
	f.irqInhibit = value&0x40 != 0
	f.cycle = 0
	immediate := f.mode == frameCounterFiveStep
	return frameResetAction{immediateQuarter: immediate, immediateHalf: immediate}
}

// clock advances the sequencer by one CPU cycle and reports which frame
// units fire on this tick.
func (f *frameCounter) clock() frameTick {
	f.cycle++
	var tick frameTick
	for _, step := range f.schedule() {
		if f.cycle == uint64(step.cycle) {
			tick.quarter = tick.quarter || step.quarter
			tick.half = tick.half || step.half
			tick.frameIRQ = tick.frameIRQ || step.irq
		}
	}
	if f.cycle >= f.period() {
		f.cycle = 0
	}
	if f.irqInhibit {
		tick.frameIRQ = false
	}
	return tick
}
