package color

import (
	"encoding/binary"

	"github.com/mechiko/cupsfilters/internal/model"
	"github.com/mechiko/cupsfilters/internal/types"
	"github.com/pkg/errors"
)

// ErrInvalidProfile is returned when an ICC blob is too short or doesn't
// look like an ICC profile header.
var ErrInvalidProfile = errors.New("color: invalid ICC profile")

// ICCProfile is a parsed-just-enough ICC profile: the number of color
// components implied by its color-space signature, plus the raw bytes to
// embed. Only one fixed-offset header field is read (the color space
// signature at offset 16) - there is no
// general-purpose ICC parsing library anywhere in the example pack to
// ground a fuller reader on (see DESIGN.md), and a full ICC tag-table
// walk is out of scope: this module only needs N (the component count)
// to build a correct /ICCBased stream dict.
type ICCProfile struct {
	N   int
	Raw []byte
}

// colorSpaceSignatures maps the ICC "data colour space" signature (bytes
// 16-19 of the header, big-endian ASCII) to its PDF /ICCBased /N value.
var colorSpaceSignatures = map[uint32]int{
	0x47524159: 1, // "GRAY"
	0x52474220: 3, // "RGB "
	0x434d594b: 4, // "CMYK"
	0x4c616220: 3, // "Lab "
}

// ParseICCProfile reads just enough of an ICC profile's header to
// determine its component count.
func ParseICCProfile(data []byte) (*ICCProfile, error) {
	if len(data) < 20 {
		return nil, errors.Wrap(ErrInvalidProfile, "shorter than ICC header")
	}
	sig := binary.BigEndian.Uint32(data[16:20])
	n, ok := colorSpaceSignatures[sig]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidProfile, "unrecognized colour space signature %08x", sig)
	}
	return &ICCProfile{N: n, Raw: data}, nil
}

// AttachICCBased stores the profile as an ICCBased stream object and
// returns a one-element array naming it, PDF's canonical /ColorSpace
// value shape for an ICC-backed space.
func AttachICCBased(doc *model.Document, p *ICCProfile) (types.Array, error) {
	ref, err := doc.AddStream(types.Dict{
		"N": types.Integer(p.N),
	}, p.Raw)
	if err != nil {
		return nil, err
	}
	return types.Array{types.Name("ICCBased"), ref}, nil
}
