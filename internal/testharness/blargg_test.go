package testharness

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mikai233/nesium-sub003/internal/cartridge"
)

type fakeConsole struct {
	mem          [0x10000]uint8
	framesToRun  uint64
	framesRan    uint64
	resetCount   int
}

func (f *fakeConsole) Peek(address uint16) uint8 { return f.mem[address] }
func (f *fakeConsole) RunFrame(fastForward bool) uint64 {
	f.framesRan++
	if f.framesRan >= f.framesToRun {
		f.mem[0x6000] = 0x00
		copy(f.mem[0x6004:], []byte("All tests passed\n\x00"))
	} else {
		f.mem[0x6000] = 0x80
	}
	return 29781
}
func (f *fakeConsole) Reset(kind cartridge.ResetKind) { f.resetCount++ }

func TestRunReportsPassAfterStatusLeavesRunning(t *testing.T) {
	c := &fakeConsole{framesToRun: 5}
	result, err := Run(c, 100)
	require.NoError(t, err)
	require.True(t, result.Passed)
	require.Equal(t, "All tests passed\n", result.Message)
	require.EqualValues(t, 5, result.Frames)
}

func TestRunTimesOutWithoutCompletion(t *testing.T) {
	c := &fakeConsole{framesToRun: 1000}
	_, err := Run(c, 10)
	require.Error(t, err)
}

func TestRunHonorsNeedsResetStatus(t *testing.T) {
	c := &neededResetConsole{}
	result, err := Run(c, 50)
	require.NoError(t, err)
	require.True(t, result.Passed)
	require.Equal(t, 1, c.resets)
}

type neededResetConsole struct {
	mem    [0x10000]uint8
	calls  int
	resets int
}

func (c *neededResetConsole) Peek(address uint16) uint8 { return c.mem[address] }
func (c *neededResetConsole) RunFrame(fastForward bool) uint64 {
	c.calls++
	switch {
	case c.calls == 1:
		c.mem[0x6000] = 0x81 // needs reset
	default:
		c.mem[0x6000] = 0x00
	}
	return 29781
}
func (c *neededResetConsole) Reset(kind cartridge.ResetKind) { c.resets++ }
