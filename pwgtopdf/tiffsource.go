// tiffsource.go adapts decoded TIFF pages into the same image-XObject
// writing path Encode uses for raster pages (component K's "treat
// TIFF/JPEG-XL as row-producing sources feeding a generic image
// container" contract, spec §1). Grounded on pdfcpu's own TIFF decoding
// (pkg/pdfcpu/model/image.go, tiff.DecodeAt plus its IFD-offset walk in
// createImageResourcesForTIFF) for the "prefer golang.org/x/image/tiff,
// fall back to hhrutter/tiff for photometric interpretations the
// standard decoder rejects (CMYK), and walk successive IFDs for
// multi-page TIFFs" strategy.
package pwgtopdf

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"io"

	hhtiff "github.com/hhrutter/tiff"
	xtiff "golang.org/x/image/tiff"
	"github.com/mechiko/cupsfilters/internal/filter"
	"github.com/mechiko/cupsfilters/internal/model"
	"github.com/mechiko/cupsfilters/internal/types"
	"github.com/pkg/errors"
)

// DecodeTIFFImage decodes a single TIFF page into an image.Image, trying
// golang.org/x/image/tiff first and falling back to hhrutter/tiff (which
// also handles CMYK TIFFs golang.org/x/image/tiff rejects).
func DecodeTIFFImage(data []byte) (image.Image, error) {
	if img, err := xtiff.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	img, err := hhtiff.DecodeAt(bytes.NewReader(data), 0)
	if err != nil {
		return nil, errors.Wrap(ErrInputFormat, "tiff: "+err.Error())
	}
	return img, nil
}

// DecodeTIFFPages decodes every page (IFD) of a multi-page TIFF file,
// walking the IFD chain the way pdfcpu's createImageResourcesForTIFF
// does: read the byte-order header, follow each IFD's "next IFD offset"
// field until it reaches zero.
func DecodeTIFFPages(data []byte) ([]image.Image, error) {
	if len(data) < 8 {
		return nil, errors.Wrap(ErrInputFormat, "tiff: truncated header")
	}
	var byteOrder binary.ByteOrder
	switch string(data[:2]) {
	case "II":
		byteOrder = binary.LittleEndian
	case "MM":
		byteOrder = binary.BigEndian
	default:
		return nil, errors.Wrap(ErrInputFormat, "tiff: invalid byte order marker")
	}

	off := int64(byteOrder.Uint32(data[4:8]))
	if off < 8 || off >= int64(len(data)) {
		return nil, errors.Wrap(ErrInputFormat, "tiff: no valid IFD")
	}

	r := bytes.NewReader(data)
	var pages []image.Image
	for off != 0 && off < int64(len(data)) {
		img, err := hhtiff.DecodeAt(r, off)
		if err != nil {
			return nil, errors.Wrap(ErrInputFormat, "tiff: "+err.Error())
		}
		pages = append(pages, img)

		if _, err := r.Seek(off, io.SeekStart); err != nil {
			return nil, errors.Wrap(ErrInputFormat, "tiff: "+err.Error())
		}
		var numEntries uint16
		if err := binary.Read(r, byteOrder, &numEntries); err != nil {
			return nil, errors.Wrap(ErrInputFormat, "tiff: "+err.Error())
		}
		if _, err := r.Seek(int64(numEntries)*12, io.SeekCurrent); err != nil {
			return nil, errors.Wrap(ErrInputFormat, "tiff: "+err.Error())
		}
		var next uint32
		if err := binary.Read(r, byteOrder, &next); err != nil {
			return nil, errors.Wrap(ErrInputFormat, "tiff: "+err.Error())
		}
		off = int64(next)
	}
	return pages, nil
}

// EncodeTIFF decodes every page of a TIFF document read from r and writes
// a PDF containing one image-XObject page per TIFF page to w. It shares
// Encode's cancellation-poll and empty-input conventions (spec 5, 7).
func EncodeTIFF(ctx context.Context, r io.Reader, w io.Writer, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "pwgtopdf: reading tiff input")
	}
	if len(data) == 0 {
		return writeEmptyDocument(w)
	}

	pages, err := DecodeTIFFPages(data)
	if err != nil {
		return err
	}

	doc := model.NewDocument()
	var pageRefs []types.IndirectRef
	for i, img := range pages {
		if i%8 == 0 {
			select {
			case <-ctx.Done():
				return finishCancelled(doc, pageRefs, w, ctx)
			default:
			}
		}
		ref, err := EncodeTIFFPage(doc, img, 0)
		if err != nil {
			return errors.Wrapf(err, "pwgtopdf: encoding tiff page %d", i+1)
		}
		pageRefs = append(pageRefs, ref)
	}
	return finalize(doc, pageRefs, w)
}

// EncodeTIFFPage appends one output page to doc rendering img as a single
// Flate-compressed image XObject, following the same page/content-stream
// shape encodePage builds for a raster page - TIFF input has no
// resolution field of its own in this module's contract (spec treats it
// as an opaque row source), so the page is sized at 72 DPI (1 pixel = 1
// point) unless resolutionDPI is given.
func EncodeTIFFPage(doc *model.Document, img image.Image, resolutionDPI float64) (types.IndirectRef, error) {
	if resolutionDPI <= 0 {
		resolutionDPI = 72
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	widthPt := float64(w) / resolutionDPI * 72
	heightPt := float64(h) / resolutionDPI * 72
	mediaRect := types.NewRect(0, 0, widthPt, heightPt)

	buf, deviceCS, channels := tiffPixelBuffer(img)
	rcs := &ResolvedColorSpace{Object: types.Name(deviceCS), Device: deviceCS, Channels: channels}

	ref, err := writeImageXObject(doc, buf, w, h, 8, rcs, filter.FlateDecode)
	if err != nil {
		return types.IndirectRef{}, err
	}

	content := buildPageContent([]string{"Im0"}, []int{h}, widthPt, heightPt, resolutionDPI, w)
	contentRef, err := doc.AddStream(types.Dict{}, content)
	if err != nil {
		return types.IndirectRef{}, err
	}

	pageDict := types.Dict{
		"Type":      types.Name("Page"),
		"MediaBox":  rectArray(mediaRect),
		"Resources": types.Dict{"XObject": types.Dict{"Im0": ref}},
		"Contents":  contentRef,
	}
	pageRef, err := doc.AddObject(pageDict)
	if err != nil {
		return types.IndirectRef{}, err
	}
	if err := doc.AppendPage(model.Page{Ref: pageRef, MediaBox: mediaRect}); err != nil {
		return types.IndirectRef{}, err
	}
	return pageRef, nil
}

// tiffPixelBuffer converts img into a tightly packed 8-bit-per-component
// row-major buffer plus the Device color space name/channel count it was
// packed for, picking CMYK for image.CMYK sources (the case
// golang.org/x/image/tiff can't decode and hhrutter/tiff exists for) and
// Gray/RGB otherwise.
func tiffPixelBuffer(img image.Image) ([]byte, string, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if cmyk, ok := img.(*image.CMYK); ok {
		buf := make([]byte, 0, w*h*4)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := cmyk.CMYKAt(b.Min.X+x, b.Min.Y+y)
				buf = append(buf, c.C, c.M, c.Y, c.K)
			}
		}
		return buf, "DeviceCMYK", 4
	}
	if gray, ok := img.(*image.Gray); ok {
		buf := make([]byte, 0, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				buf = append(buf, gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			}
		}
		return buf, "DeviceGray", 1
	}

	buf := make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			buf = append(buf, byte(r>>8), byte(g>>8), byte(bl>>8))
		}
	}
	return buf, "DeviceRGB", 3
}
