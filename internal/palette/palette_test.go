package palette

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mikai233/nesium-sub003/internal/cartridge"
)

func TestLoadRejectsWrongSize(t *testing.T) {
	_, err := Load(make([]byte, 100))
	require.Error(t, err)
	var loadErr *cartridge.LoadError
	require.ErrorAs(t, err, &loadErr)
	require.Equal(t, cartridge.ErrInvalidPaletteSize, loadErr.Kind)
}

func TestLoad192ByteBlobAppliesSameTableToEveryEmphasis(t *testing.T) {
	data := make([]byte, 192)
	data[0], data[1], data[2] = 0x11, 0x22, 0x33
	p, err := Load(data)
	require.NoError(t, err)
	r, g, b := p.Color(0, 0)
	require.EqualValues(t, [3]uint8{0x11, 0x22, 0x33}, [3]uint8{r, g, b})
	r, g, b = p.Color(0, 7) // different emphasis combination, same table
	require.EqualValues(t, [3]uint8{0x11, 0x22, 0x33}, [3]uint8{r, g, b})
}

func TestLoad1536ByteBlobKeepsEmphasisTablesDistinct(t *testing.T) {
	data := make([]byte, 1536)
	data[0] = 0xAA                        // index 0, emphasis 0
	data[64*3*3+0] = 0xBB                 // index 0, emphasis 3
	p, err := Load(data)
	require.NoError(t, err)
	r, _, _ := p.Color(0, 0)
	require.EqualValues(t, 0xAA, r)
	r, _, _ = p.Color(0, 3)
	require.EqualValues(t, 0xBB, r)
}

func TestDefaultPaletteIndex0IsGray(t *testing.T) {
	r, g, b := Default.Color(0, 0)
	require.EqualValues(t, 0x62, r)
	require.EqualValues(t, 0x62, g)
	require.EqualValues(t, 0x62, b)
}

func TestPackRGBA8888(t *testing.T) {
	indices := []uint8{0x20} // white in the default palette
	dst := make([]byte, 4)
	Pack(dst, indices, Default, 0, RGBA8888)
	require.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, dst)
}

func TestPackBGRA8888SwapsRedAndBlue(t *testing.T) {
	data := make([]byte, 192)
	data[0], data[1], data[2] = 0x10, 0x20, 0x30
	p, err := Load(data)
	require.NoError(t, err)
	dst := make([]byte, 4)
	Pack(dst, []uint8{0}, p, 0, BGRA8888)
	require.Equal(t, []byte{0x30, 0x20, 0x10, 0xFF}, dst)
}

func TestPackRGB565ScalesDownChannels(t *testing.T) {
	data := make([]byte, 192)
	data[0], data[1], data[2] = 0xFF, 0xFF, 0xFF
	p, err := Load(data)
	require.NoError(t, err)
	dst := make([]byte, 2)
	Pack(dst, []uint8{0}, p, 0, RGB565)
	require.Equal(t, []byte{0xFF, 0xFF}, dst) // all channels maxed -> all bits set
}

func TestFormatBytesPerPixel(t *testing.T) {
	require.Equal(t, 4, RGBA8888.BytesPerPixel())
	require.Equal(t, 4, BGRA8888.BytesPerPixel())
	require.Equal(t, 4, ARGB8888.BytesPerPixel())
	require.Equal(t, 2, RGB565.BytesPerPixel())
	require.Equal(t, 2, RGB555.BytesPerPixel())
}
