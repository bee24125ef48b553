package pwgtopdf

import (
	"testing"

	"github.com/mechiko/cupsfilters/internal/filter"
	"github.com/stretchr/testify/require"
)

func TestSplitStripsEvenDivision(t *testing.T) {
	strips := SplitStrips(32, 16)
	require.Len(t, strips, 2)
	require.Equal(t, Strip{FirstRow: 0, NumRows: 16}, strips[0])
	require.Equal(t, Strip{FirstRow: 16, NumRows: 16}, strips[1])
}

func TestSplitStripsShortLastStrip(t *testing.T) {
	strips := SplitStrips(40, 16)
	require.Len(t, strips, 3)
	require.Equal(t, 8, strips[2].NumRows)
}

func TestSplitStripsDefaultHeight(t *testing.T) {
	strips := SplitStrips(DefaultStripHeight*2, 0)
	require.Len(t, strips, 2)
}

func TestNegotiateCompressionPrefersDCT(t *testing.T) {
	name, ok := NegotiateCompression("jpeg,flate")
	require.True(t, ok)
	require.Equal(t, filter.DCTDecode, name)
}

func TestNegotiateCompressionUnrecognizedFallsBackToFlate(t *testing.T) {
	name, ok := NegotiateCompression("lzw,brotli")
	require.False(t, ok)
	require.Equal(t, filter.FlateDecode, name)
}

func TestNegotiateCompressionRLEOnly(t *testing.T) {
	name, ok := NegotiateCompression("rle")
	require.True(t, ok)
	require.Equal(t, filter.RunLengthDecode, name)
}
