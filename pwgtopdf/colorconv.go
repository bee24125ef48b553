package pwgtopdf

// BitConversion selects how raw sample bits are massaged before color
// conversion (spec 4.K step 4c): most raster color spaces store samples
// "ink coverage increases with value" while PDF's DeviceGray expects
// "0=black" - Black/CMY-family inputs need their bits inverted first.
type BitConversion int

const (
	BitIdentity BitConversion = iota
	BitInvert
)

// bitConversionFor returns the BitConversion a given input color space
// needs, matching the original's "cspace uses additive vs subtractive
// convention" table: Gray/RGB/sRGB/AdobeRGB are additive (identity),
// Black/CMY/CMYK-family and DeviceN are subtractive ink coverage (invert
// only applies to the 1-bit-per-pixel monochrome case - multi-channel
// subtractive spaces are handled by the ColorConversion step instead).
func bitConversionFor(cs ColorSpace, bpp int) BitConversion {
	if bpp == 1 && (cs == CSBlack || cs == CSCMYK) {
		return BitInvert
	}
	return BitIdentity
}

// applyBitConversion flips every bit in row in place when conv is
// BitInvert; a length-preserving, in-place operation so callers never
// need a second buffer.
func applyBitConversion(row []byte, conv BitConversion) {
	if conv != BitInvert {
		return
	}
	for i := range row {
		row[i] = ^row[i]
	}
}

// ColorConversion names one of the eight pixel-format conversions spec
// 4.K step 4d enumerates: identity, invert, and the RGB/CMYK/White
// (gray) pairwise conversions a raster page's declared color space may
// require to reach the PDF ColorSpace component L has chosen.
type ColorConversion int

const (
	ConvIdentity ColorConversion = iota
	ConvInvert
	ConvRGBToCMYK
	ConvCMYKToRGB
	ConvRGBToWhite
	ConvWhiteToRGB
	ConvCMYKToWhite
	ConvWhiteToCMYK
)

// chosenChannels returns how many components ConvIdentity/ConvInvert
// operate on - both are per-pixel, channel-count-preserving operations,
// so the caller must say how many channels a pixel has.
func chosenChannels(cs ColorSpace, bpp, bpc int) int {
	if bpc == 0 {
		return 1
	}
	return bpp / bpc
}

// ConvertRow applies conv to an 8-bit-per-sample row of pixels (the
// conversion table operates after 16-bpc samples have already been
// downshifted or are handled a component at a time by the caller - see
// Encode), returning a new row with the output channel count conv
// implies. Preserves monochrome white (0xff..) and black (0x00..)
// exactly across every conversion, the invariant spec 8's testable
// property 8 names.
func ConvertRow(row []byte, conv ColorConversion, channels int) []byte {
	switch conv {
	case ConvIdentity:
		out := make([]byte, len(row))
		copy(out, row)
		return out
	case ConvInvert:
		out := make([]byte, len(row))
		for i, b := range row {
			out[i] = 255 - b
		}
		return out
	case ConvRGBToCMYK:
		n := len(row) / 3
		out := make([]byte, n*4)
		for i := 0; i < n; i++ {
			r, g, b := row[i*3], row[i*3+1], row[i*3+2]
			c, m, y, k := rgbToCMYK(r, g, b)
			out[i*4], out[i*4+1], out[i*4+2], out[i*4+3] = c, m, y, k
		}
		return out
	case ConvCMYKToRGB:
		n := len(row) / 4
		out := make([]byte, n*3)
		for i := 0; i < n; i++ {
			c, m, y, k := row[i*4], row[i*4+1], row[i*4+2], row[i*4+3]
			r, g, b := cmykToRGB(c, m, y, k)
			out[i*3], out[i*3+1], out[i*3+2] = r, g, b
		}
		return out
	case ConvRGBToWhite:
		n := len(row) / 3
		out := make([]byte, n)
		for i := 0; i < n; i++ {
			r, g, b := row[i*3], row[i*3+1], row[i*3+2]
			out[i] = grayFromRGB(r, g, b)
		}
		return out
	case ConvWhiteToRGB:
		out := make([]byte, len(row)*3)
		for i, w := range row {
			out[i*3], out[i*3+1], out[i*3+2] = w, w, w
		}
		return out
	case ConvCMYKToWhite:
		n := len(row) / 4
		out := make([]byte, n)
		for i := 0; i < n; i++ {
			c, m, y, k := row[i*4], row[i*4+1], row[i*4+2], row[i*4+3]
			r, g, b := cmykToRGB(c, m, y, k)
			out[i] = grayFromRGB(r, g, b)
		}
		return out
	case ConvWhiteToCMYK:
		n := len(row)
		out := make([]byte, n*4)
		for i, w := range row {
			out[i*4], out[i*4+1], out[i*4+2] = 0, 0, 0
			out[i*4+3] = 255 - w
		}
		return out
	default:
		out := make([]byte, len(row))
		copy(out, row)
		return out
	}
}

func rgbToCMYK(r, g, b byte) (c, m, y, k byte) {
	if r == 0 && g == 0 && b == 0 {
		return 0, 0, 0, 255
	}
	rf, gf, bf := 255-int(r), 255-int(g), 255-int(b)
	kf := rf
	if gf < kf {
		kf = gf
	}
	if bf < kf {
		kf = bf
	}
	denom := 255 - kf
	if denom == 0 {
		return 0, 0, 0, byte(kf)
	}
	c = byte((rf - kf) * 255 / denom)
	m = byte((gf - kf) * 255 / denom)
	y = byte((bf - kf) * 255 / denom)
	k = byte(kf)
	return
}

func cmykToRGB(c, m, y, k byte) (r, g, b byte) {
	r = byte(255 - min255(int(c)+int(k), 255))
	g = byte(255 - min255(int(m)+int(k), 255))
	b = byte(255 - min255(int(y)+int(k), 255))
	return
}

func min255(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// grayFromRGB uses the Rec. 601 luma weights, matching pdfcpu's
// convertToGray (pkg/pdfcpu/readImage.go) rather than an unweighted mean.
func grayFromRGB(r, g, b byte) byte {
	return byte((299*int(r) + 587*int(g) + 114*int(b)) / 1000)
}

// ConversionFor picks the ColorConversion needed to turn an input pixel
// declared in srcCS into the channel layout dstDeviceColorSpace (one of
// "DeviceGray", "DeviceRGB", "DeviceCMYK") requires - the raster-side
// half of component L's color-space decision table (spec 4.K item d).
func ConversionFor(srcCS ColorSpace, dstDeviceColorSpace string) ColorConversion {
	srcIsGray := srcCS == CSGray || srcCS == CSWhite
	srcIsCMYK := srcCS == CSCMYK || srcCS.IsDeviceN()
	srcIsRGB := srcCS == CSRGB || srcCS == CSSRGB || srcCS == CSAdobeRGB
	srcIsBlack := srcCS == CSBlack

	switch dstDeviceColorSpace {
	case "DeviceGray":
		switch {
		case srcIsGray:
			return ConvIdentity
		case srcIsBlack:
			return ConvInvert
		case srcIsRGB:
			return ConvRGBToWhite
		case srcIsCMYK:
			return ConvCMYKToWhite
		}
	case "DeviceRGB":
		switch {
		case srcIsRGB:
			return ConvIdentity
		case srcIsGray:
			return ConvWhiteToRGB
		case srcIsCMYK:
			return ConvCMYKToRGB
		}
	case "DeviceCMYK":
		switch {
		case srcIsCMYK:
			return ConvIdentity
		case srcIsBlack:
			return ConvIdentity // Black is already subtractive single-channel; treated as K only by the caller's channel math
		case srcIsRGB:
			return ConvRGBToCMYK
		case srcIsGray:
			return ConvWhiteToCMYK
		}
	}
	return ConvIdentity
}
