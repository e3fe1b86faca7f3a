package input

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStrobeHighAlwaysReturnsLiveButtonA(t *testing.T) {
	c := New(nil)
	c.Write(0x01) // strobe high
	c.SetButton(ButtonA, true)
	require.EqualValues(t, 1, c.Read())
	c.SetButton(ButtonA, false)
	require.EqualValues(t, 0, c.Read())
}

func TestStrobeFallingEdgeSnapshotsAndShiftsInOrder(t *testing.T) {
	c := New(nil)
	c.SetButton(ButtonA, true)
	c.SetButton(ButtonStart, true)
	c.Write(0x01)
	c.Write(0x00) // falling edge freezes the snapshot

	var bits []uint8
	for i := 0; i < 8; i++ {
		bits = append(bits, c.Read())
	}
	require.Equal(t, []uint8{1, 0, 0, 1, 0, 0, 0, 0}, bits)
}

func TestReadsPastEighthBitReturnOneForever(t *testing.T) {
	c := New(nil)
	c.Write(0x01)
	c.Write(0x00)
	for i := 0; i < 8; i++ {
		c.Read()
	}
	for i := 0; i < 20; i++ {
		require.EqualValues(t, 1, c.Read())
	}
}

func TestButtonChangeAfterStrobeDoesNotAffectFrozenSnapshot(t *testing.T) {
	c := New(nil)
	c.Write(0x01)
	c.Write(0x00)
	c.SetButton(ButtonA, true) // changes after the snapshot was taken
	require.EqualValues(t, 0, c.Read(), "snapshot should have captured A released")
}

func TestRestrobeResetsTheShiftPosition(t *testing.T) {
	c := New(nil)
	c.SetButton(ButtonB, true)
	c.Write(0x01)
	c.Write(0x00)
	c.Read()
	c.Read()
	c.Write(0x01) // re-strobe mid-sequence
	c.Write(0x00)
	require.EqualValues(t, 0, c.Read(), "bit 0 (A) should come first again after re-strobe")
	require.EqualValues(t, 1, c.Read(), "bit 1 (B) next")
}

func TestInputStateRoutesReadsAndWritesToBothPorts(t *testing.T) {
	is := NewInputState(nil)
	is.Controller1.SetButton(ButtonA, true)
	is.Controller2.SetButton(ButtonA, true)
	is.Write(0x4016, 0x01)
	is.Write(0x4016, 0x00)
	require.EqualValues(t, 1, is.Read(0x4016))
	require.EqualValues(t, 1, is.Read(0x4017))
}

func TestInputStateUnmappedAddressReturnsZero(t *testing.T) {
	is := NewInputState(nil)
	require.EqualValues(t, 0, is.Read(0x4018))
}

func TestInputStateWriteOnlyAffectsStrobeAddress(t *testing.T) {
	is := NewInputState(nil)
	is.Controller1.SetButton(ButtonA, true)
	is.Write(0x4017, 0x01) // APU frame-counter register, not a controller write
	require.False(t, is.Controller1.strobe)
}
