package apu

// ExpansionAudio is the hook mappers with onboard sound chips (VRC6, VRC7,
// FDS, MMC5, Namco 163, Sunsoft 5B) use to mix their own channels into the
// shared output. The default implementation is silent; a mapper that wants
// expansion audio installs its own implementation via APU.SetExpansionAudio.
type ExpansionAudio interface {
	// ClockCPUCycle advances the expansion chip's internal channels by one
	// CPU cycle.
	ClockCPUCycle()
	// Output returns the chip's current mixed output in roughly [0, 1].
	Output() float32
}

type silentExpansionAudio struct{}

func (silentExpansionAudio) ClockCPUCycle() {}
func (silentExpansionAudio) Output() float32 { return 0 }
