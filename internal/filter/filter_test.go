package filter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlateRoundTrip(t *testing.T) {
	f, err := NewFilter(FlateDecode)
	require.NoError(t, err)
	in := []byte("the quick brown fox jumps over the lazy dog, repeatedly, repeatedly, repeatedly")
	enc, err := f.Encode(bytes.NewReader(in))
	require.NoError(t, err)
	dec, err := f.Decode(bytes.NewReader(enc))
	require.NoError(t, err)
	require.Equal(t, in, dec)
}

func TestRunLengthRoundTrip(t *testing.T) {
	f, err := NewFilter(RunLengthDecode)
	require.NoError(t, err)
	cases := [][]byte{
		[]byte(""),
		[]byte("a"),
		[]byte("aaaaaaaaaa"),
		[]byte("abcdefgh"),
		bytes.Repeat([]byte{0xff}, 300),
		append([]byte("ab"), bytes.Repeat([]byte{'c'}, 200)...),
	}
	for _, in := range cases {
		enc, err := f.Encode(bytes.NewReader(in))
		require.NoError(t, err)
		dec, err := f.Decode(bytes.NewReader(enc))
		require.NoError(t, err)
		require.Equal(t, in, dec)
	}
}

func TestNewFilterUnsupported(t *testing.T) {
	_, err := NewFilter("LZWDecode")
	require.ErrorIs(t, err, ErrUnsupportedFilter)
}
