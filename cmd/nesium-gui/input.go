package main

import (
	"github.com/mikai233/nesium-sub003/internal/graphics"
	"github.com/mikai233/nesium-sub003/internal/input"
	"github.com/mikai233/nesium-sub003/internal/nes"
)

var buttonPorts = map[graphics.Button]struct {
	port   int
	button input.Button
}{
	graphics.ButtonUp:     {0, input.ButtonUp},
	graphics.ButtonDown:   {0, input.ButtonDown},
	graphics.ButtonLeft:   {0, input.ButtonLeft},
	graphics.ButtonRight:  {0, input.ButtonRight},
	graphics.ButtonA:      {0, input.ButtonA},
	graphics.ButtonB:      {0, input.ButtonB},
	graphics.ButtonStart:  {0, input.ButtonStart},
	graphics.ButtonSelect: {0, input.ButtonSelect},
	graphics.Button2Up:     {1, input.ButtonUp},
	graphics.Button2Down:   {1, input.ButtonDown},
	graphics.Button2Left:   {1, input.ButtonLeft},
	graphics.Button2Right:  {1, input.ButtonRight},
	graphics.Button2A:      {1, input.ButtonA},
	graphics.Button2B:      {1, input.ButtonB},
	graphics.Button2Start:  {1, input.ButtonStart},
	graphics.Button2Select: {1, input.ButtonSelect},
}

// applyButtonEvent routes one window input event to the matching
// controller port, ignoring events that aren't mapped NES buttons (raw
// key events that didn't convert, for instance).
func applyButtonEvent(console *nes.NES, ev graphics.InputEvent) {
	if ev.Type != graphics.InputEventTypeButton {
		return
	}
	target, ok := buttonPorts[ev.Button]
	if !ok {
		return
	}
	console.SetButton(target.port, target.button, ev.Pressed)
}
