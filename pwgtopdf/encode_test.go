package pwgtopdf

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildRasterStream encodes a single-page raster stream (sync word,
// header, then numRows*bytesPerLine raw pixel bytes) for Encode tests.
func buildRasterStream(t *testing.T, h *RasterHeader, pixelRows [][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	encodeTestHeader(t, &buf, true, h)
	for _, row := range pixelRows {
		buf.Write(row)
	}
	return buf.Bytes()
}

// TestEncodePDFSinglePageRGB covers spec 8 scenario 5: a 100x100px,
// 300dpi, 24-bpp RGB raster page with cm-disabled=yes should become a
// single-page PDF with a 24x24pt MediaBox and one DeviceRGB image
// XObject.
func TestEncodePDFSinglePageRGB(t *testing.T) {
	const w, h = 100, 100
	header := &RasterHeader{
		HWResolution:     [2]uint32{300, 300},
		CUPSWidth:        w,
		CUPSHeight:       h,
		CUPSBitsPerColor: 8,
		CUPSBitsPerPixel: 24,
		CUPSBytesPerLine: w * 3,
		CUPSColorSpace:   CSRGB,
	}
	rows := make([][]byte, h)
	for i := range rows {
		row := make([]byte, w*3)
		for x := 0; x < w; x++ {
			row[x*3], row[x*3+1], row[x*3+2] = 10, 20, 30
		}
		rows[i] = row
	}
	input := buildRasterStream(t, header, rows)

	var out bytes.Buffer
	err := Encode(context.Background(), bytes.NewReader(input), &out, &Options{
		Target:     TargetPDF,
		CMDisabled: true,
	})
	require.NoError(t, err)

	body := out.String()
	require.Contains(t, body, "%PDF-1.7")
	require.Contains(t, body, "/Width 100")
	require.Contains(t, body, "/Height 100")
	require.Contains(t, body, "/DeviceRGB")
	require.Contains(t, body, "/BitsPerComponent 8")
	require.Contains(t, body, "FlateDecode")
	// 100px @ 300dpi = 24pt.
	require.Contains(t, body, "0 0 24 24")
}

// TestEncodePCLmStrips16bpc covers spec 8 scenario 6: a 16-bpc RGB raster
// page, PCLm target, printer advertising a 16-row strip preference and
// jpeg,flate compression preference, should split into ceil(h/16) strips
// each carrying BitsPerComponent 16 and the DCT filter.
func TestEncodePCLmStrips16bpc(t *testing.T) {
	const w, h = 8, 40
	header := &RasterHeader{
		HWResolution:     [2]uint32{300, 300},
		CUPSWidth:        w,
		CUPSHeight:       h,
		CUPSBitsPerColor: 16,
		CUPSBitsPerPixel: 48,
		CUPSBytesPerLine: w * 3 * 2,
		CUPSColorSpace:   CSRGB,
	}
	rows := make([][]byte, h)
	for i := range rows {
		rows[i] = make([]byte, w*3*2)
	}
	input := buildRasterStream(t, header, rows)

	var out bytes.Buffer
	err := Encode(context.Background(), bytes.NewReader(input), &out, &Options{
		Target:                TargetPCLm,
		StripHeightPreferred:  16,
		CompressionPreferred:  "jpeg,flate",
	})
	require.NoError(t, err)

	body := out.String()
	require.Contains(t, body, "/BitsPerComponent 16")
	require.Contains(t, body, "DCTDecode")
	require.Contains(t, body, "/Image000")
	require.Contains(t, body, "/Image001")
	require.Contains(t, body, "/Image002") // ceil(40/16) == 3 strips
}

func TestEncodeEmptyInputProducesEmptyDocument(t *testing.T) {
	var out bytes.Buffer
	err := Encode(context.Background(), bytes.NewReader(nil), &out, &Options{Target: TargetPDF})
	require.NoError(t, err)
	require.Contains(t, out.String(), "%PDF-1.7")
}

func TestEncodeCancellationStopsMidJob(t *testing.T) {
	const w, h = 4, 4
	header := &RasterHeader{
		HWResolution:     [2]uint32{300, 300},
		CUPSWidth:        w,
		CUPSHeight:       h,
		CUPSBitsPerColor: 8,
		CUPSBitsPerPixel: 8,
		CUPSBytesPerLine: w,
		CUPSColorSpace:   CSGray,
	}
	rows := make([][]byte, h)
	for i := range rows {
		rows[i] = make([]byte, w)
	}
	var stream bytes.Buffer
	for p := 0; p < 20; p++ {
		var buf bytes.Buffer
		encodeTestHeader(t, &buf, p == 0, header)
		for _, r := range rows {
			buf.Write(r)
		}
		stream.Write(buf.Bytes())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := Encode(ctx, bytes.NewReader(stream.Bytes()), &out, &Options{Target: TargetPDF})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrCancelled)
}
