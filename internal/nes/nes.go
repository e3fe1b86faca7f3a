// Package nes is the console facade: it owns one bus.Bus, the active
// palette and pixel format, and the thin conveniences (movie-event
// injection, CPU snapshots) a host or test harness drives the core through.
// It is single-threaded and cooperative, per SPEC_FULL.md's concurrency
// section — callers serialize their own access.
package nes

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/mikai233/nesium-sub003/internal/bus"
	"github.com/mikai233/nesium-sub003/internal/cartridge"
	"github.com/mikai233/nesium-sub003/internal/input"
	"github.com/mikai233/nesium-sub003/internal/palette"
)

// NES is one console: CPU, PPU, APU, controllers, and an optional
// cartridge, reachable only through this facade.
type NES struct {
	bus *bus.Bus

	palette *palette.Palette
	format  palette.Format

	movie      []InputEvent
	movieIndex int

	log *zerolog.Logger
}

// InputEvent is one scheduled controller change, applied at the start of
// the CPU cycle it names. LoadMovie takes a pre-parsed sequence of these;
// parsing any particular recording file format is a host concern, not the
// core's (see SPEC_FULL.md's non-goals).
type InputEvent struct {
	Cycle   uint64
	Port    int
	Button  input.Button
	Pressed bool
}

// CPUSnapshot captures the architectural CPU register file for test
// harnesses that need to seed or assert on exact state (nestest-style
// golden traces).
type CPUSnapshot struct {
	A, X, Y, SP    uint8
	PC             uint16
	C, Z, I, D, V, N bool
	Cycles         uint64
}

// New creates a console with no cartridge loaded, the default palette, and
// the given output pixel format.
func New(region bus.Region, format palette.Format, log *zerolog.Logger) *NES {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &NES{
		bus:     bus.New(region, log),
		palette: palette.Default,
		format:  format,
		log:     log,
	}
}

// SetRNGSeed reseeds power-on randomization (--rng-seed); call before
// LoadCartridge for a deterministic power-on state.
func (n *NES) SetRNGSeed(seed int64) {
	n.bus.SetRNGSeed(seed)
}

// SetNMITrace installs a writer that receives one "cycle,scanline,dot" line
// per serviced NMI — the diagnostic dump named by NESIUM_NMI_TRACE_PATH.
// Passing nil disables tracing. This never affects emulation; a write
// error is logged and tracing is left enabled (diagnostic paths never
// abort the frame, per SPEC_FULL.md's error handling design).
func (n *NES) SetNMITrace(w io.Writer) {
	if w == nil {
		n.bus.CPU.OnNMIServiced = nil
		return
	}
	n.bus.CPU.OnNMIServiced = func() {
		_, err := fmt.Fprintf(w, "%d,%d,%d\n", n.bus.Cycles(), n.bus.PPU.Scanline(), n.bus.PPU.Dot())
		if err != nil {
			n.log.Warn().Err(err).Msg("nmi trace write failed")
		}
	}
}

// LoadCartridge parses and mounts a ROM image, then performs a power-on
// reset. The console is left untouched if parsing fails.
func (n *NES) LoadCartridge(data []byte) error {
	cart, err := cartridge.LoadCartridge(data)
	if err != nil {
		return err
	}
	n.bus.LoadCartridge(cart)
	n.movie = nil
	n.movieIndex = 0
	return nil
}

// Eject removes the current cartridge, if any.
func (n *NES) Eject() {
	n.bus.Eject()
}

// Reset performs a power-on or soft reset of every component.
func (n *NES) Reset(kind cartridge.ResetKind) {
	n.bus.Reset(kind)
}

// SetPalette installs a new active color palette, used by subsequent
// RenderBuffer calls. The previous palette is retained if data is
// malformed.
func (n *NES) SetPalette(data []byte) error {
	p, err := palette.Load(data)
	if err != nil {
		return err
	}
	n.palette = p
	return nil
}

// SetFormat selects the packed pixel format RenderBuffer produces.
func (n *NES) SetFormat(format palette.Format) {
	n.format = format
}

// SetButton updates one button on one controller port (0 or 1). Ports
// outside that range are ignored.
func (n *NES) SetButton(port int, button input.Button, pressed bool) {
	switch port {
	case 0:
		n.bus.Input.Controller1.SetButton(button, pressed)
	case 1:
		n.bus.Input.Controller2.SetButton(button, pressed)
	}
}

// LoadMovie installs a sequence of scheduled input events, applied
// automatically as RunFrame crosses each event's cycle. Events must be
// sorted by Cycle; LoadMovie does not sort them itself so that replaying
// the same movie twice is visibly a caller bug rather than silently
// reordered.
func (n *NES) LoadMovie(events []InputEvent) {
	n.movie = events
	n.movieIndex = 0
}

// RunFrame advances the console until the PPU's frame counter increments
// (when the PPU wraps from its last scanline back to the first), applying
// any due movie events along the way. fastForward changes nothing about
// CPU/PPU timing; it discards the audio samples produced so far, so a
// following AudioSamplesDrain returns none of them.
func (n *NES) RunFrame(fastForward bool) uint64 {
	startFrame := n.bus.PPU.FrameCount()
	var cycles uint64
	for n.bus.PPU.FrameCount() == startFrame {
		n.applyDueMovieEvents()
		cycles += n.bus.Step()
	}
	if fastForward {
		n.bus.APU.DrainSamples()
	}
	return cycles
}

func (n *NES) applyDueMovieEvents() {
	now := n.bus.Cycles()
	for n.movieIndex < len(n.movie) && n.movie[n.movieIndex].Cycle <= now {
		e := n.movie[n.movieIndex]
		n.SetButton(e.Port, e.Button, e.Pressed)
		n.movieIndex++
	}
}

// RenderBuffer packs the most recently completed frame into the configured
// pixel format using the active palette, returning 256*240*bytesPerPixel
// bytes.
func (n *NES) RenderBuffer() []byte {
	indices := n.bus.PPU.FrameBuffer()
	dst := make([]byte, len(indices)*n.format.BytesPerPixel())
	palette.Pack(dst, indices[:], n.palette, n.bus.PPU.Emphasis(), n.format)
	return dst
}

// RenderRGB packs the most recently completed frame into 0x00RRGGBB words
// using the active palette, the layout graphics.Window.RenderFrame expects.
// RenderBuffer is the general entry point; this one exists because the
// ebiten GUI frontend's window abstraction predates the pluggable pixel
// formats and only ever spoke this one layout.
func (n *NES) RenderRGB() [256 * 240]uint32 {
	indices := n.bus.PPU.FrameBuffer()
	emphasis := n.bus.PPU.Emphasis()
	var out [256 * 240]uint32
	for i, idx := range indices {
		r, g, b := n.palette.Color(idx, emphasis)
		out[i] = uint32(r)<<16 | uint32(g)<<8 | uint32(b)
	}
	return out
}

// AudioSamplesDrain returns and clears the interleaved stereo float32
// samples accumulated since the last drain.
func (n *NES) AudioSamplesDrain() []float32 {
	return n.bus.APU.DrainSamples()
}

// PRGRAM returns the cartridge's battery-backed PRG-RAM contents for the
// host to persist, or nil if no cartridge is loaded or it has no battery.
func (n *NES) PRGRAM() []byte {
	cart := n.cartridge()
	if cart == nil || !cart.HasBattery() {
		return nil
	}
	return cart.PRGRAM()
}

// cartridge exposes the loaded cartridge through the bus for operations
// (like PRGRAM) that the bus itself doesn't need to proxy.
func (n *NES) cartridge() *cartridge.Cartridge {
	return n.bus.Cartridge()
}

// CPUSnapshot captures the current CPU register file and cycle count.
func (n *NES) CPUSnapshot() CPUSnapshot {
	c := n.bus.CPU
	return CPUSnapshot{
		A: c.A, X: c.X, Y: c.Y, SP: c.SP, PC: c.PC,
		C: c.C, Z: c.Z, I: c.I, D: c.D, V: c.V, N: c.N,
		Cycles: n.bus.Cycles(),
	}
}

// SetCPUSnapshot overwrites the CPU register file, for test harnesses that
// need to seed an exact starting state (e.g. nestest's documented
// $C000 entry point with P=$24).
func (n *NES) SetCPUSnapshot(s CPUSnapshot) {
	c := n.bus.CPU
	c.A, c.X, c.Y, c.SP, c.PC = s.A, s.X, s.Y, s.SP, s.PC
	c.C, c.Z, c.I, c.D, c.V, c.N = s.C, s.Z, s.I, s.D, s.V, s.N
}

// Cycles returns the running CPU cycle count since construction or reset.
func (n *NES) Cycles() uint64 {
	return n.bus.Cycles()
}

// Peek reads one byte of CPU RAM or cartridge space without any read side
// effects, for diagnostics (e.g. a blargg-style status-protocol poller).
func (n *NES) Peek(address uint16) uint8 {
	return n.bus.Peek(address)
}
