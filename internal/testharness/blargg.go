// Package testharness replicates the blargg test ROM status protocol: a
// status byte at $6000 and a null-terminated message at $6004, used by
// NESdev's instr_test-v5, apu_test, and sprite_hit_timing suites.
package testharness

import (
	"fmt"

	"github.com/mikai233/nesium-sub003/internal/cartridge"
)

const (
	statusAddr  = 0x6000
	messageAddr = 0x6004

	// statusRunning is written while the test is still executing.
	statusRunning = 0x80
	// statusNeedsReset asks the harness to issue a reset and keep polling;
	// some suites use this to wait out a warm-up period.
	statusNeedsReset = 0x81
)

// Console is the minimal surface testharness needs from a running
// console: peek a byte without side effects, and run one frame forward.
type Console interface {
	Peek(address uint16) uint8
	RunFrame(fastForward bool) uint64
	Reset(kind cartridge.ResetKind)
}

// Result is the outcome of polling a blargg-protocol ROM to completion.
type Result struct {
	Code    uint8
	Message string
	Frames  uint64
	Passed  bool
}

// Run polls a console running a blargg-protocol test ROM until it reports
// completion (status byte leaves the 0x80/0x81 "in progress" range) or
// maxFrames is exceeded, in which case it returns an error instead of a
// Result so a timeout is never silently mistaken for a pass or fail.
func Run(c Console, maxFrames uint64) (Result, error) {
	var frames uint64
	for frames < maxFrames {
		c.RunFrame(true)
		frames++

		status := c.Peek(statusAddr)
		if status == statusRunning {
			continue
		}
		if status == statusNeedsReset {
			c.Reset(cartridge.ResetPowerOn)
			continue
		}
		return Result{
			Code:    status,
			Message: readMessage(c),
			Frames:  frames,
			Passed:  status == 0x00,
		}, nil
	}
	return Result{}, fmt.Errorf("testharness: no completion status after %d frames", maxFrames)
}

func readMessage(c Console) string {
	var b []byte
	for addr := uint16(messageAddr); addr < 0x7FFF; addr++ {
		v := c.Peek(addr)
		if v == 0 {
			break
		}
		b = append(b, v)
	}
	return string(b)
}
