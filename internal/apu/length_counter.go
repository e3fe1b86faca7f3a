package apu

// lengthTable maps a 5-bit load value written to a channel's length-load
// register into the number of APU half-frame clocks before the channel
// silences itself, per the canonical NESdev table.
var lengthTable = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6,
	160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 18, 48, 20, 96, 22,
	192, 24, 72, 26, 16, 28, 32, 30,
}

type lengthCounter struct {
	value uint8
	halt  bool
}

func (l *lengthCounter) load(index uint8) {
	l.value = lengthTable[index&0x1F]
}

func (l *lengthCounter) clock() {
	if l.value > 0 && !l.halt {
		l.value--
	}
}

func (l *lengthCounter) active() bool { return l.value > 0 }

func (l *lengthCounter) setEnabled(enabled bool) {
	if !enabled {
		l.value = 0
	}
}
