// Package input implements the standard NES joypad protocol: strobe-latched
// button snapshots shifted out one bit per read.
package input

import "github.com/rs/zerolog"

// Button represents NES controller buttons
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Controller is one standard NES joypad: an 8-bit parallel-load shift
// register fed by the button latch.
type Controller struct {
	buttons       uint8
	shiftRegister uint8
	strobe        bool
	bitsShifted   uint8

	log *zerolog.Logger
}

// New creates a released controller.
func New(log *zerolog.Logger) *Controller {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Controller{log: log}
}

// SetButton sets one button's pressed state.
func (c *Controller) SetButton(button Button, pressed bool) {
	if pressed {
		c.buttons |= uint8(button)
	} else {
		c.buttons &^= uint8(button)
	}
}

// SetButtons sets all eight button states at once, in A,B,Select,Start,
// Up,Down,Left,Right order.
func (c *Controller) SetButtons(buttons [8]bool) {
	var packed uint8
	for i, pressed := range buttons {
		if pressed {
			packed |= 1 << uint(i)
		}
	}
	c.buttons = packed
}

// IsPressed reports whether the given button is currently held.
func (c *Controller) IsPressed(button Button) bool {
	return (c.buttons & uint8(button)) != 0
}

// Write handles a write to the controller's strobe line. While strobe is
// held high the shift register continuously reloads from the live button
// state; the falling edge freezes the snapshot that subsequent reads will
// shift out.
func (c *Controller) Write(value uint8) {
	wasStrobe := c.strobe
	c.strobe = (value & 1) != 0
	if c.strobe || wasStrobe {
		c.shiftRegister = c.buttons
		c.bitsShifted = 0
	}
}

// Read shifts out one bit: A, B, Select, Start, Up, Down, Left, Right, in
// that order, then returns 1 forever until the next strobe. While strobe is
// held high every read re-samples the live A button state instead of
// advancing the shift register, matching the real pull-up behavior.
func (c *Controller) Read() uint8 {
	if c.strobe {
		return c.buttons & 1
	}
	if c.bitsShifted >= 8 {
		return 1
	}
	bit := c.shiftRegister & 1
	c.shiftRegister >>= 1
	c.bitsShifted++
	return bit
}

// Reset clears the controller to its power-on state.
func (c *Controller) Reset() {
	c.buttons = 0
	c.shiftRegister = 0
	c.strobe = false
	c.bitsShifted = 0
}

// InputState owns both standard controller ports.
type InputState struct {
	Controller1 *Controller
	Controller2 *Controller
}

// NewInputState creates a state with two released controllers.
func NewInputState(log *zerolog.Logger) *InputState {
	return &InputState{
		Controller1: New(log),
		Controller2: New(log),
	}
}

// Reset resets both controller ports.
func (is *InputState) Reset() {
	is.Controller1.Reset()
	is.Controller2.Reset()
}

// SetButtons1 sets all button states for controller 1.
func (is *InputState) SetButtons1(buttons [8]bool) {
	is.Controller1.SetButtons(buttons)
}

// SetButtons2 sets all button states for controller 2.
func (is *InputState) SetButtons2(buttons [8]bool) {
	is.Controller2.SetButtons(buttons)
}

// Read services a CPU read of $4016/$4017. Only bit 0 carries controller
// data; the caller merges the result with CPU open bus for the remaining
// bits, since real hardware leaves them floating.
func (is *InputState) Read(address uint16) uint8 {
	switch address {
	case 0x4016:
		return is.Controller1.Read() & 0x01
	case 0x4017:
		return is.Controller2.Read() & 0x01
	default:
		return 0
	}
}

// Write services a CPU write to $4016. Both controller shift registers
// latch off the same strobe line; $4017 is the APU's frame-counter
// register and is handled there, not here.
func (is *InputState) Write(address uint16, value uint8) {
	if address == 0x4016 {
		is.Controller1.Write(value)
		is.Controller2.Write(value)
	}
}
