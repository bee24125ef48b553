// encode.go orchestrates the raster-to-PDF/PCLm pipeline (spec 4.K):
// read a page header, allocate a page (or per-strip) buffer, convert
// each row's bits and colors, and emit the image XObject(s) plus a thin
// content stream placing them, grounded on pdfcpu's
// createFlateImageObject/createDCTImageObject (pkg/pdfcpu/readImage.go)
// for the image-XObject dictionary shape.
package pwgtopdf

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"unsafe"

	"github.com/mechiko/cupsfilters/color"
	"github.com/mechiko/cupsfilters/internal/filter"
	"github.com/mechiko/cupsfilters/internal/logging"
	"github.com/mechiko/cupsfilters/internal/model"
	"github.com/mechiko/cupsfilters/internal/types"
	"github.com/pkg/errors"
)

// Target is the output MIME family Encode produces.
type Target int

const (
	TargetPDF Target = iota
	TargetPCLm
)

// ErrCancelled is returned when ctx is cancelled mid-job (spec 5's
// page-boundary cancellation poll).
var ErrCancelled = errors.New("pwgtopdf: cancelled")

// Options configures a single Encode call.
type Options struct {
	Target Target

	// CMDisabled corresponds to "cm-disabled=yes": renderer-side color
	// management is off, so pixels pass through as a plain Device* space.
	CMDisabled bool
	// ICCProfile, if non-nil, is embedded and takes priority over the
	// color space name lookup (spec 4.K decision table).
	ICCProfile *color.ICCProfile

	// StripHeightPreferred is the printer's advertised
	// pclm-strip-height-preferred (0 = DefaultStripHeight). Ignored for
	// Target == TargetPDF.
	StripHeightPreferred int
	// CompressionPreferred is the printer's advertised
	// pclm-compression-method-preferred keyword list. Ignored for
	// Target == TargetPDF (which always uses Flate).
	CompressionPreferred string

	Log logging.Logger
}

var nativeLittleEndian = func() bool {
	var x uint16 = 1
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

// Encode reads a PWG/Apple Raster page sequence from r and writes a
// single PDF (or PCLm) document to w. An empty input produces an empty
// (zero-page) document and returns nil, per spec 7's "empty input"
// failure-semantics note.
func Encode(ctx context.Context, r io.Reader, w io.Writer, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}
	if opts.Log == nil {
		opts.Log = logging.Discard
	}

	br := bufio.NewReaderSize(r, 65536)
	if _, err := br.Peek(1); err == io.EOF {
		return writeEmptyDocument(w)
	}

	doc := model.NewDocument()
	var pageRefs []types.IndirectRef

	firstPage := true
	pageIndex := 0
	for {
		if pageIndex%8 == 0 {
			select {
			case <-ctx.Done():
				return finishCancelled(doc, pageRefs, w, ctx)
			default:
			}
		}

		h, err := ReadHeader(br, firstPage)
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "pwgtopdf: reading header for page %d", pageIndex+1)
		}
		firstPage = false

		ref, err := encodePage(doc, br, h, opts)
		if err != nil {
			return errors.Wrapf(err, "pwgtopdf: encoding page %d", pageIndex+1)
		}
		pageRefs = append(pageRefs, ref)
		pageIndex++
	}

	return finalize(doc, pageRefs, w)
}

func writeEmptyDocument(w io.Writer) error {
	doc := model.NewDocument()
	return finalize(doc, nil, w)
}

func finishCancelled(doc *model.Document, pageRefs []types.IndirectRef, w io.Writer, ctx context.Context) error {
	if err := finalize(doc, pageRefs, w); err != nil {
		return err
	}
	return errors.Wrap(ErrCancelled, ctx.Err().Error())
}

func finalize(doc *model.Document, pageRefs []types.IndirectRef, w io.Writer) error {
	pagesRef, err := doc.NewPagesNode(pageRefs)
	if err != nil {
		return errors.Wrap(err, "pwgtopdf: building page tree")
	}
	if err := doc.NewCatalog(pagesRef); err != nil {
		return errors.Wrap(err, "pwgtopdf: building catalog")
	}
	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return errors.Wrap(err, "pwgtopdf: writing output")
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// encodePage reads h's pixel data from br and emits one output page,
// returning its indirect reference.
func encodePage(doc *model.Document, br *bufio.Reader, h *RasterHeader, opts *Options) (types.IndirectRef, error) {
	widthPt := float64(h.CUPSWidth) / float64(h.HWResolution[0]) * 72
	heightPt := float64(h.CUPSHeight) / float64(h.HWResolution[1]) * 72
	mediaRect := types.NewRect(0, 0, widthPt, heightPt)

	rawChannels := chosenChannels(h.CUPSColorSpace, int(h.CUPSBitsPerPixel), int(h.CUPSBitsPerColor))
	rcs, err := ChooseColorSpace(doc, h.CUPSColorSpace, opts.CMDisabled, opts.ICCProfile, rawChannels)
	if err != nil {
		return types.IndirectRef{}, err
	}
	bitConv := bitConversionFor(h.CUPSColorSpace, int(h.CUPSBitsPerPixel))
	colorConv := ConvertIfNeeded(h.CUPSColorSpace, rcs.Device, int(h.CUPSBitsPerColor))

	var xobjRefs []types.IndirectRef
	var stripNames []string
	var stripHeights []int

	if opts.Target == TargetPCLm {
		strips := SplitStrips(int(h.CUPSHeight), opts.StripHeightPreferred)
		compressionName := filter.FlateDecode
		if opts.CompressionPreferred != "" {
			if name, ok := NegotiateCompression(opts.CompressionPreferred); ok {
				compressionName = name
			} else {
				opts.Log.Warnf("pwgtopdf: no recognized pclm-compression-method-preferred entry, defaulting to Flate")
			}
		}
		for i, strip := range strips {
			buf, err := readRows(br, h, strip.NumRows, bitConv, colorConv, rcs.Channels)
			if err != nil {
				return types.IndirectRef{}, err
			}
			ref, err := writeImageXObject(doc, buf, int(h.CUPSWidth), strip.NumRows, int(h.CUPSBitsPerColor), rcs, compressionName)
			if err != nil {
				return types.IndirectRef{}, err
			}
			xobjRefs = append(xobjRefs, ref)
			stripNames = append(stripNames, fmt.Sprintf("Image%03d", i))
			stripHeights = append(stripHeights, strip.NumRows)
		}
	} else {
		buf, err := readRows(br, h, int(h.CUPSHeight), bitConv, colorConv, rcs.Channels)
		if err != nil {
			return types.IndirectRef{}, err
		}
		ref, err := writeImageXObject(doc, buf, int(h.CUPSWidth), int(h.CUPSHeight), int(h.CUPSBitsPerColor), rcs, filter.FlateDecode)
		if err != nil {
			return types.IndirectRef{}, err
		}
		xobjRefs = append(xobjRefs, ref)
		stripNames = append(stripNames, "Im0")
		stripHeights = append(stripHeights, int(h.CUPSHeight))
	}

	xobjDict := types.Dict{}
	for i, name := range stripNames {
		xobjDict[name] = xobjRefs[i]
	}

	content := buildPageContent(stripNames, stripHeights, widthPt, heightPt, float64(h.HWResolution[0]), int(h.CUPSWidth))
	contentRef, err := doc.AddStream(types.Dict{}, content)
	if err != nil {
		return types.IndirectRef{}, err
	}

	pageDict := types.Dict{
		"Type":      types.Name("Page"),
		"MediaBox":  rectArray(mediaRect),
		"Resources": types.Dict{"XObject": xobjDict},
		"Contents":  contentRef,
	}
	ref, err := doc.AddObject(pageDict)
	if err != nil {
		return types.IndirectRef{}, err
	}
	if err := doc.AppendPage(model.Page{Ref: ref, MediaBox: mediaRect}); err != nil {
		return types.IndirectRef{}, err
	}
	return ref, nil
}

// ConvertIfNeeded decides the ColorConversion readRows applies: 16-bpc
// samples are passed through untouched (spec scenario 6 only exercises
// 16-bpc RGB staying RGB), matching bit depths always convert.
func ConvertIfNeeded(srcCS ColorSpace, dstDevice string, bpc int) ColorConversion {
	if bpc == 16 {
		return ConvIdentity
	}
	return ConversionFor(srcCS, dstDevice)
}

// readRows reads numRows of h.CUPSBytesPerLine bytes each from br,
// applying the 16-bpc byte swap, bit conversion and color conversion in
// the order spec 4.K step 4 names, and returns the concatenated,
// converted page (or strip) buffer.
func readRows(br *bufio.Reader, h *RasterHeader, numRows int, bitConv BitConversion, colorConv ColorConversion, outChannels int) ([]byte, error) {
	var out bytes.Buffer
	row := make([]byte, h.CUPSBytesPerLine)
	for i := 0; i < numRows; i++ {
		if _, err := io.ReadFull(br, row); err != nil {
			return nil, errors.Wrap(ErrInputFormat, "truncated raster row: "+err.Error())
		}
		if h.CUPSBitsPerColor == 16 && nativeLittleEndian {
			swap16(row)
		}
		applyBitConversion(row, bitConv)
		if h.CUPSBitsPerColor == 16 {
			out.Write(row)
			continue
		}
		out.Write(ConvertRow(row, colorConv, outChannels))
	}
	return out.Bytes(), nil
}

// swap16 byte-swaps every 16-bit big-endian sample in row in place so it
// reads correctly on a little-endian host (spec 3.6's "16-bpc rows arrive
// big-endian" invariant).
func swap16(row []byte) {
	for i := 0; i+1 < len(row); i += 2 {
		row[i], row[i+1] = row[i+1], row[i]
	}
}

func writeImageXObject(doc *model.Document, buf []byte, w, h, bpc int, rcs *ResolvedColorSpace, filterName string) (types.IndirectRef, error) {
	f, err := filter.NewFilter(filterName)
	if err != nil {
		return types.IndirectRef{}, err
	}
	encoded, err := f.Encode(bytes.NewReader(buf))
	if err != nil {
		return types.IndirectRef{}, err
	}
	dict := types.Dict{
		"Type":             types.Name("XObject"),
		"Subtype":          types.Name("Image"),
		"Width":            types.Integer(w),
		"Height":           types.Integer(h),
		"BitsPerComponent": types.Integer(bpc),
		"ColorSpace":       rcs.Object,
		"Filter":           types.Name(filterName),
	}
	if rcs.Device == "DeviceCMYK" && filterName == filter.DCTDecode {
		dict["Decode"] = types.Array{
			types.Integer(1), types.Integer(0), types.Integer(1), types.Integer(0),
			types.Integer(1), types.Integer(0), types.Integer(1), types.Integer(0),
		}
	}
	return doc.AddStream(dict, encoded)
}

// buildPageContent emits the content stream spec 6.4 describes: for each
// strip, push state, apply one cm that sizes the image at 72/resolution
// points per raster pixel and moves it to the strip's y-anchor measured
// from the page bottom, invoke the image XObject, pop state.
func buildPageContent(names []string, heights []int, widthPt, heightPt, resolution float64, widthPx int) []byte {
	var b bytes.Buffer
	scale := 72.0 / resolution
	if resolution == 0 {
		scale = 1
	}
	total := 0
	for _, hpx := range heights {
		total += hpx
	}
	y := total
	for i, name := range names {
		y -= heights[i]
		imgW := float64(widthPx) * scale
		imgH := float64(heights[i]) * scale
		yPt := float64(y) * scale
		fmt.Fprintf(&b, "q\n%g 0 0 %g 0 %g cm\n/%s Do\nQ\n", imgW, imgH, yPt, name)
	}
	return b.Bytes()
}

func rectArray(r types.Rect) types.Array {
	return types.Array{
		types.Float(r.LL.X), types.Float(r.LL.Y), types.Float(r.UR.X), types.Float(r.UR.Y),
	}
}
