// Package pwgtopdf implements the raster-to-PDF/PCLm encoder (component
// K): it reads a PWG Raster / Apple Raster (image/urf) page sequence and
// streams each page into a PDF image XObject (or, for PCLm, a sequence of
// strip image XObjects), performing the per-pixel color-space and
// bit-depth conversion component L's color-space decision table calls
// for. Grounded on pdfcpu's image encoding helpers
// (pkg/pdfcpu/readImage.go createFlateImageObject/createDCTImageObject)
// for the image-XObject dictionary shape, and on the CUPS/PWG raster wire
// header recorded by other_examples/8aabb35f_dominikh-go-cups__raster-
// raster.go.go (raster.PageHeader), trimmed to the fields spec 3.6 names.
package pwgtopdf

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// ErrInputFormat is returned for a malformed or truncated raster stream.
var ErrInputFormat = errors.New("pwgtopdf: malformed raster input")

// syncWordBigEndian/syncWordLittleEndian are the two sync words the PWG
// Raster / CUPS Raster v2-v3 wire format begins a stream with; this
// module only emits big-endian headers itself but accepts either on
// input, per the format's own "either order, declared by sync word"
// convention.
const (
	syncWordBigEndian    = "RaS2"
	syncWordLittleEndian = "2SaR"
)

// string64Count is the size of the 64-byte fixed C-string fields the
// CUPS Raster page header packs (MediaClass, MediaColor, ...).
const string64Count = 64

// RasterHeader is the per-page header spec 3.6 names, trimmed to the
// fields this module's pipeline reads; HWResolution and the v2/v3 color
// string fields are kept because component L's color-space decision
// table and the PCLm strip negotiation both read them.
type RasterHeader struct {
	MediaClass, MediaColor, MediaType, OutputType string
	AdvanceDistance                                uint32
	AdvanceMedia                                    uint32
	Collate                                         bool
	CutMedia                                         uint32
	Duplex                                           bool
	HWResolution                                    [2]uint32
	ImagingBoundingBox                              [4]uint32
	InsertSheet                                     bool
	Jog                                              uint32
	LeadingEdge                                      uint32
	Margins                                         [2]uint32
	ManualFeed                                      bool
	MediaPosition                                   uint32
	MediaWeight                                     uint32
	MirrorPrint                                     bool
	NegativePrint                                   bool
	NumCopies                                       uint32
	Orientation                                     uint32
	OutputFaceUp                                    bool
	PageSize                                        [2]uint32
	Separations                                     bool
	TraySwitch                                      bool
	Tumble                                           bool

	CUPSWidth        uint32
	CUPSHeight       uint32
	CUPSMediaType    uint32
	CUPSBitsPerColor uint32
	CUPSBitsPerPixel uint32
	CUPSBytesPerLine uint32
	CUPSColorOrder   uint32
	CUPSColorSpace   ColorSpace
	CUPSCompression  uint32
	CUPSRowCount     uint32
	CUPSRowFeed      uint32
	CUPSRowStep      uint32

	CUPSNumColors               uint32
	CUPSBorderlessScalingFactor float32
	CUPSPageSizeF               [2]float32
	CUPSRenderingIntent         string
	CUPSPageSizeName            string
}

// ColorSpace mirrors the CUPS cups_cspace_t enumeration values this
// module's conversion table (colorconv.go) dispatches on.
type ColorSpace uint32

const (
	CSGray     ColorSpace = 0
	CSRGB      ColorSpace = 1
	CSRGBA     ColorSpace = 2
	CSBlack    ColorSpace = 3
	CSCMY      ColorSpace = 4
	CSYMC      ColorSpace = 5
	CSCMYK     ColorSpace = 6
	CSYMCK     ColorSpace = 7
	CSKCMY     ColorSpace = 8
	CSWhite    ColorSpace = 18 // sw - calibrated gray
	CSSRGB     ColorSpace = 19 // srgb
	CSAdobeRGB ColorSpace = 20
	CSICC1     ColorSpace = 32
	CSDevice1  ColorSpace = 48
	CSDeviceF  ColorSpace = 62
)

// IsDeviceN reports whether cs is one of the DEVICE1..DEVICEF channels
// spec 4.K's color-space decision table maps straight to DeviceCMYK.
func (cs ColorSpace) IsDeviceN() bool { return cs >= CSDevice1 && cs <= CSDeviceF }

// bigEndianReader wraps a bufio.Reader with the fixed-width field readers
// a CUPS Raster header needs; every multi-byte integer/float field is
// big-endian regardless of which sync word introduced the stream (the
// sync word only ever changes whether raster pixel rows are
// byte-swapped, per spec 3.6 - this module only accepts big-endian pixel
// data, the common case for image/pwg-raster).
type bigEndianReader struct {
	r *bufio.Reader
}

func (b *bigEndianReader) str(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(b.r, buf); err != nil {
		return "", errors.Wrap(ErrInputFormat, err.Error())
	}
	if i := indexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return string(buf), nil
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

func (b *bigEndianReader) u32() (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(b.r, buf[:]); err != nil {
		return 0, errors.Wrap(ErrInputFormat, err.Error())
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func (b *bigEndianReader) f32() (float32, error) {
	v, err := b.u32()
	return math.Float32frombits(v), err
}

func (b *bigEndianReader) bool32() (bool, error) {
	v, err := b.u32()
	return v != 0, err
}

// ReadHeader reads one CUPS/PWG Raster page header from br, including the
// 4-byte sync word on the first call (subsequent pages in the same
// stream don't repeat it - callers track that with firstPage). br must be
// the same *bufio.Reader the caller then reads pixel rows from, so no
// buffered-ahead bytes are lost between the header and the pixel data
// that immediately follows it on the wire. It returns io.EOF, unwrapped,
// when r has no bytes left before the header starts.
func ReadHeader(r *bufio.Reader, firstPage bool) (*RasterHeader, error) {
	if _, err := r.Peek(1); err == io.EOF {
		return nil, io.EOF
	}
	br := &bigEndianReader{r: r}
	if firstPage {
		sync, err := br.str(4)
		if err != nil {
			return nil, err
		}
		if sync != syncWordBigEndian && sync != syncWordLittleEndian {
			return nil, errors.Wrapf(ErrInputFormat, "unrecognized raster sync word %q", sync)
		}
	}

	h := &RasterHeader{}
	var err error
	if h.MediaClass, err = br.str(string64Count); err != nil {
		return nil, err
	}
	if h.MediaColor, err = br.str(string64Count); err != nil {
		return nil, err
	}
	if h.MediaType, err = br.str(string64Count); err != nil {
		return nil, err
	}
	if h.OutputType, err = br.str(string64Count); err != nil {
		return nil, err
	}
	if h.AdvanceDistance, err = br.u32(); err != nil {
		return nil, err
	}
	if h.AdvanceMedia, err = br.u32(); err != nil {
		return nil, err
	}
	if h.Collate, err = br.bool32(); err != nil {
		return nil, err
	}
	if h.CutMedia, err = br.u32(); err != nil {
		return nil, err
	}
	if h.Duplex, err = br.bool32(); err != nil {
		return nil, err
	}
	for i := range h.HWResolution {
		if h.HWResolution[i], err = br.u32(); err != nil {
			return nil, err
		}
	}
	for i := range h.ImagingBoundingBox {
		if h.ImagingBoundingBox[i], err = br.u32(); err != nil {
			return nil, err
		}
	}
	if h.InsertSheet, err = br.bool32(); err != nil {
		return nil, err
	}
	if h.Jog, err = br.u32(); err != nil {
		return nil, err
	}
	if h.LeadingEdge, err = br.u32(); err != nil {
		return nil, err
	}
	for i := range h.Margins {
		if h.Margins[i], err = br.u32(); err != nil {
			return nil, err
		}
	}
	if h.ManualFeed, err = br.bool32(); err != nil {
		return nil, err
	}
	if h.MediaPosition, err = br.u32(); err != nil {
		return nil, err
	}
	if h.MediaWeight, err = br.u32(); err != nil {
		return nil, err
	}
	if h.MirrorPrint, err = br.bool32(); err != nil {
		return nil, err
	}
	if h.NegativePrint, err = br.bool32(); err != nil {
		return nil, err
	}
	if h.NumCopies, err = br.u32(); err != nil {
		return nil, err
	}
	if h.Orientation, err = br.u32(); err != nil {
		return nil, err
	}
	if h.OutputFaceUp, err = br.bool32(); err != nil {
		return nil, err
	}
	for i := range h.PageSize {
		if h.PageSize[i], err = br.u32(); err != nil {
			return nil, err
		}
	}
	if h.Separations, err = br.bool32(); err != nil {
		return nil, err
	}
	if h.TraySwitch, err = br.bool32(); err != nil {
		return nil, err
	}
	if h.Tumble, err = br.bool32(); err != nil {
		return nil, err
	}
	if h.CUPSWidth, err = br.u32(); err != nil {
		return nil, err
	}
	if h.CUPSHeight, err = br.u32(); err != nil {
		return nil, err
	}
	if h.CUPSMediaType, err = br.u32(); err != nil {
		return nil, err
	}
	if h.CUPSBitsPerColor, err = br.u32(); err != nil {
		return nil, err
	}
	if h.CUPSBitsPerPixel, err = br.u32(); err != nil {
		return nil, err
	}
	if h.CUPSBytesPerLine, err = br.u32(); err != nil {
		return nil, err
	}
	if h.CUPSColorOrder, err = br.u32(); err != nil {
		return nil, err
	}
	var cs uint32
	if cs, err = br.u32(); err != nil {
		return nil, err
	}
	h.CUPSColorSpace = ColorSpace(cs)
	if h.CUPSCompression, err = br.u32(); err != nil {
		return nil, err
	}
	if h.CUPSRowCount, err = br.u32(); err != nil {
		return nil, err
	}
	if h.CUPSRowFeed, err = br.u32(); err != nil {
		return nil, err
	}
	if h.CUPSRowStep, err = br.u32(); err != nil {
		return nil, err
	}

	// v2/v3 tail.
	if h.CUPSNumColors, err = br.u32(); err != nil {
		return nil, err
	}
	if h.CUPSBorderlessScalingFactor, err = br.f32(); err != nil {
		return nil, err
	}
	for i := range h.CUPSPageSizeF {
		if h.CUPSPageSizeF[i], err = br.f32(); err != nil {
			return nil, err
		}
	}
	// cupsImagingBBox[4] float + cupsInteger[16] + cupsReal[16]: skipped
	// (not read by any component this module implements) but still
	// consumed from the stream so the cursor lands correctly.
	for i := 0; i < 4+16; i++ {
		if _, err = br.u32(); err != nil {
			return nil, err
		}
	}
	for i := 0; i < 16; i++ {
		if _, err = br.f32(); err != nil {
			return nil, err
		}
	}
	for i := 0; i < 16; i++ {
		if _, err = br.str(string64Count); err != nil {
			return nil, err
		}
	}
	if _, err = br.str(string64Count); err != nil { // cupsMarkerType
		return nil, err
	}
	if h.CUPSRenderingIntent, err = br.str(string64Count); err != nil {
		return nil, err
	}
	if h.CUPSPageSizeName, err = br.str(string64Count); err != nil {
		return nil, err
	}

	if err := h.validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// validate enforces the spec 3.6 invariant that a page's total pixel
// byte count stays within a uint32, the bound CUPSBytesPerLine*CUPSHeight
// is checked against before any buffer allocation happens.
func (h *RasterHeader) validate() error {
	if h.CUPSBytesPerLine == 0 || h.CUPSHeight == 0 {
		return errors.Wrap(ErrInputFormat, "zero-sized raster page")
	}
	if h.CUPSHeight > (1<<32-1)/h.CUPSBytesPerLine {
		return errors.Wrap(ErrInputFormat, "raster page exceeds uint32 byte bound")
	}
	return nil
}
