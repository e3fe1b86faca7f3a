// Package config resolves the runtime knobs (console timing region, RNG
// seed, audio sample rate, trace paths) that sit above the emulation core
// itself: the core takes a concrete bus.Region, never "auto" — this
// package is where "auto" gets resolved down to one.
package config

import "github.com/mikai233/nesium-sub003/internal/bus"

// Region is the console timing variant a user or config file names. Auto
// defers to the cartridge header at load time.
type Region int

const (
	Auto Region = iota
	NTSC
	PAL
	Dendy
	NTSCJapan
)

// String renders the region the way CLI flags and config files spell it.
func (r Region) String() string {
	switch r {
	case NTSC:
		return "ntsc"
	case PAL:
		return "pal"
	case Dendy:
		return "dendy"
	case NTSCJapan:
		return "ntsc-jp"
	default:
		return "auto"
	}
}

// ParseRegion parses a region name as accepted by the --region flag and
// NESIUM_REGION environment variable. An empty or unrecognized string
// resolves to Auto.
func ParseRegion(s string) Region {
	switch s {
	case "ntsc":
		return NTSC
	case "pal":
		return PAL
	case "dendy":
		return Dendy
	case "ntsc-jp", "ntscjp", "ntsc_jp":
		return NTSCJapan
	default:
		return Auto
	}
}

// Resolve turns a possibly-Auto region into a concrete bus.Region, using
// the cartridge's NES 2.0 TV-system byte when the configured region is
// Auto. tvSystem follows cartridge.Header.TVSystem's encoding: 0 NTSC,
// 1 PAL, 2 dual-compatible (treated as NTSC, since dual-compatible boards
// run their own internal detection that this emulator does not model).
func (r Region) Resolve(tvSystem uint8) bus.Region {
	switch r {
	case PAL:
		return bus.PAL
	case Dendy:
		return bus.Dendy
	case NTSC, NTSCJapan:
		return bus.NTSC
	default: // Auto
		if tvSystem == 1 {
			return bus.PAL
		}
		return bus.NTSC
	}
}
