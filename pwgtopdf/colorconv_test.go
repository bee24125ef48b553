package pwgtopdf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConvertRowIdentityPreservesLength(t *testing.T) {
	row := []byte{1, 2, 3, 4, 5, 6}
	out := ConvertRow(row, ConvIdentity, 3)
	require.Equal(t, row, out)
}

func TestConvertRowPreservesWhiteAndBlackRGBToGray(t *testing.T) {
	white := []byte{255, 255, 255}
	black := []byte{0, 0, 0}
	require.Equal(t, []byte{255}, ConvertRow(white, ConvRGBToWhite, 1))
	require.Equal(t, []byte{0}, ConvertRow(black, ConvRGBToWhite, 1))
}

func TestConvertRowPreservesWhiteAndBlackCMYKToRGB(t *testing.T) {
	white := []byte{0, 0, 0, 0}
	black := []byte{0, 0, 0, 255}
	require.Equal(t, []byte{255, 255, 255}, ConvertRow(white, ConvCMYKToRGB, 3))
	require.Equal(t, []byte{0, 0, 0}, ConvertRow(black, ConvCMYKToRGB, 3))
}

func TestConvertRowRGBToCMYKRoundTripsBlackAndWhite(t *testing.T) {
	white := ConvertRow([]byte{255, 255, 255}, ConvRGBToCMYK, 4)
	require.Equal(t, []byte{0, 0, 0, 0}, white)
	black := ConvertRow([]byte{0, 0, 0}, ConvRGBToCMYK, 4)
	require.Equal(t, []byte{0, 0, 0, 255}, black)
}

func TestApplyBitConversionInvert(t *testing.T) {
	row := []byte{0x00, 0xff, 0x0f}
	applyBitConversion(row, BitInvert)
	require.Equal(t, []byte{0xff, 0x00, 0xf0}, row)
}

func TestApplyBitConversionIdentityNoOp(t *testing.T) {
	row := []byte{0x00, 0xff, 0x0f}
	applyBitConversion(row, BitIdentity)
	require.Equal(t, []byte{0x00, 0xff, 0x0f}, row)
}

func TestConversionForDispatch(t *testing.T) {
	require.Equal(t, ConvIdentity, ConversionFor(CSRGB, "DeviceRGB"))
	require.Equal(t, ConvRGBToCMYK, ConversionFor(CSRGB, "DeviceCMYK"))
	require.Equal(t, ConvCMYKToRGB, ConversionFor(CSCMYK, "DeviceRGB"))
	require.Equal(t, ConvRGBToWhite, ConversionFor(CSSRGB, "DeviceGray"))
	require.Equal(t, ConvWhiteToRGB, ConversionFor(CSGray, "DeviceRGB"))
}
