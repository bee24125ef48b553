package color

import (
	"encoding/binary"
	"testing"

	"github.com/mechiko/cupsfilters/internal/model"
	"github.com/stretchr/testify/require"
)

func fakeICCHeader(sig string) []byte {
	h := make([]byte, 128)
	binary.BigEndian.PutUint32(h[16:20], binary.BigEndian.Uint32([]byte(sig)))
	return h
}

func TestParseICCProfileRGB(t *testing.T) {
	p, err := ParseICCProfile(fakeICCHeader("RGB "))
	require.NoError(t, err)
	require.Equal(t, 3, p.N)
}

func TestParseICCProfileCMYK(t *testing.T) {
	p, err := ParseICCProfile(fakeICCHeader("CMYK"))
	require.NoError(t, err)
	require.Equal(t, 4, p.N)
}

func TestParseICCProfileTooShort(t *testing.T) {
	_, err := ParseICCProfile([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrInvalidProfile)
}

func TestAttachICCBased(t *testing.T) {
	doc := model.NewDocument()
	p, err := ParseICCProfile(fakeICCHeader("GRAY"))
	require.NoError(t, err)
	arr, err := AttachICCBased(doc, p)
	require.NoError(t, err)
	require.Len(t, arr, 2)
}
