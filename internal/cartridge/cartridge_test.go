package cartridge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildINES(prgBanks, chrBanks int, mapperID uint8, mirrorVertical, battery bool) []byte {
	header := make([]byte, 16)
	copy(header[0:4], iNESMagic[:])
	header[4] = byte(prgBanks)
	header[5] = byte(chrBanks)
	var flags6 byte
	if mirrorVertical {
		flags6 |= 0x01
	}
	if battery {
		flags6 |= 0x02
	}
	flags6 |= (mapperID & 0x0F) << 4
	header[6] = flags6
	header[7] = (mapperID & 0xF0)

	data := make([]byte, 0, len(header)+prgBanks*16384+chrBanks*8192)
	data = append(data, header...)
	data = append(data, make([]byte, prgBanks*16384)...)
	data = append(data, make([]byte, chrBanks*8192)...)
	return data
}

func TestLoadsBasicNromCartridge(t *testing.T) {
	data := buildINES(1, 1, 0, false, false)
	cart, err := LoadCartridge(data)
	require.NoError(t, err)
	require.Equal(t, 16384, cart.Header.PRGROMSize)
	require.Equal(t, 8192, cart.Header.CHRROMSize)
	require.Equal(t, MirrorHorizontal, cart.Header.Mirroring)
}

func TestErrorsWhenPrgSectionMissing(t *testing.T) {
	data := buildINES(2, 0, 0, false, false)
	data = data[:16+100] // truncate PRG data
	_, err := LoadCartridge(data)
	require.Error(t, err)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	require.Equal(t, ErrSectionTooShort, loadErr.Kind)
}

func TestErrorsOnInvalidMagic(t *testing.T) {
	data := buildINES(1, 1, 0, false, false)
	data[0] = 'X'
	_, err := LoadCartridge(data)
	require.Error(t, err)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	require.Equal(t, ErrInvalidMagic, loadErr.Kind)
}

func TestErrorsOnUnsupportedMapper(t *testing.T) {
	data := buildINES(1, 1, 255, false, false)
	_, err := LoadCartridge(data)
	require.Error(t, err)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	require.Equal(t, ErrUnsupportedMapper, loadErr.Kind)
	require.EqualValues(t, 255, loadErr.MapperID)
}

func TestUnsupportedMapperFallsBackToProvider(t *testing.T) {
	data := buildINES(1, 1, 200, false, false)
	provider := providerFunc(func(h Header, prg, chr, trainer []uint8) (Mapper, bool) {
		return newNROM(h, prg, &ChrStorage{kind: chrRAM, data: make([]byte, 8192)}, make([]byte, 8192)), true
	})
	cart, err := LoadCartridgeWithProvider(data, provider)
	require.NoError(t, err)
	require.NotNil(t, cart)
}

func TestHeaderRoundTripPreservesRomSizes(t *testing.T) {
	data := buildINES(2, 1, 0, true, false)
	cart, err := LoadCartridge(data)
	require.NoError(t, err)
	require.Equal(t, 2*16384, cart.Header.PRGROMSize)
	require.Equal(t, 1*8192, cart.Header.CHRROMSize)
	require.Equal(t, MirrorVertical, cart.Header.Mirroring)
}

type providerFunc func(h Header, prg, chr, trainer []uint8) (Mapper, bool)

func (f providerFunc) GetMapper(h Header, prg, chr, trainer []uint8) (Mapper, bool) {
	return f(h, prg, chr, trainer)
}
