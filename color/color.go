// Package color implements the color-space and ICC profile handling
// (component L): calibrated gray/RGB color space arrays and ICC-based
// color space attachment, grounded on pdfcpu's color.SimpleColor
// (pkg/pdfcpu/color/color.go) for the plain-RGB plumbing; the calibrated
// color space array shapes come directly from the PDF spec since pdfcpu
// itself never builds CalGray/CalRGB/ICCBased arrays.
package color

import (
	"github.com/mechiko/cupsfilters/internal/types"
)

// RenderingIntent mirrors PDF's four named rendering intents.
type RenderingIntent string

const (
	IntentPerceptual          RenderingIntent = "Perceptual"
	IntentRelativeColorimetric RenderingIntent = "RelativeColorimetric"
	IntentSaturation          RenderingIntent = "Saturation"
	IntentAbsoluteColorimetric RenderingIntent = "AbsoluteColorimetric"
)

// IntentFromIPP maps the IPP "print-rendering-intent" keyword values to a
// PDF RenderingIntent name.
func IntentFromIPP(v string) RenderingIntent {
	switch v {
	case "perceptual":
		return IntentPerceptual
	case "relative-colorimetric":
		return IntentRelativeColorimetric
	case "saturation":
		return IntentSaturation
	case "absolute-colorimetric":
		return IntentAbsoluteColorimetric
	default:
		return IntentRelativeColorimetric
	}
}

// SimpleColor is a plain device-RGB color, following pdfcpu's
// color.SimpleColor shape, used for banner-page and border drawing (4.J).
type SimpleColor struct {
	R, G, B float32
}

// Array returns the PDF array form ([r g b]) SimpleColor serializes to.
func (c SimpleColor) Array() types.Array {
	return types.Array{types.Float(c.R), types.Float(c.G), types.Float(c.B)}
}

var (
	Black = SimpleColor{0, 0, 0}
	White = SimpleColor{1, 1, 1}
	Gray  = SimpleColor{0.5, 0.5, 0.5}
)

// CalGrayArray builds a PDF /CalGray color space array for a D65-ish white
// point and unity gamma, the default this module attaches to raster input
// declaring the "sw" CUPS color space when no ICC profile is given.
func CalGrayArray() types.Array {
	return types.Array{
		types.Name("CalGray"),
		types.Dict{
			"WhitePoint": types.Array{types.Float(0.9505), types.Float(1.0), types.Float(1.089)},
			"Gamma":      types.Float(1.0),
		},
	}
}

// CalRGBArray builds a PDF /CalRGB color space array with a D65 white
// point and sRGB-like gamma. The raster encoder does not use it: plain
// RGB raster input without an ICC profile is emitted as DeviceRGB.
func CalRGBArray() types.Array {
	return types.Array{
		types.Name("CalRGB"),
		types.Dict{
			"WhitePoint": types.Array{types.Float(0.9505), types.Float(1.0), types.Float(1.089)},
			"Gamma":      types.Array{types.Float(2.2), types.Float(2.2), types.Float(2.2)},
		},
	}
}

// SRGBArray builds a PDF /CalRGB color space array approximating sRGB
// (D65 white point, the sRGB primaries' XYZ matrix, and sRGB's nominal
// 2.2 gamma) for raster pages declaring the "srgb" CUPS color space when
// no embedded ICC profile is available to attach instead. This module
// carries no built-in sRGB ICC profile, so such pages get this calibrated
// array rather than an /ICCBased color space.
func SRGBArray() types.Array {
	return types.Array{
		types.Name("CalRGB"),
		types.Dict{
			"WhitePoint": types.Array{types.Float(0.9505), types.Float(1.0), types.Float(1.089)},
			"Gamma":      types.Array{types.Float(2.2), types.Float(2.2), types.Float(2.2)},
			"Matrix": types.Array{
				types.Float(0.4124), types.Float(0.2126), types.Float(0.0193),
				types.Float(0.3576), types.Float(0.7152), types.Float(0.1192),
				types.Float(0.1805), types.Float(0.0722), types.Float(0.9505),
			},
		},
	}
}

// AdobeRGBArray builds a PDF /CalRGB color space array for the AdobeRGB
// (1998) primaries: a D65 white point, gamma 2.2, and AdobeRGB's XYZ
// conversion matrix, per spec 4.K's "AdobeRGB -> CalRGB with AdobeRGB
// white/gamma/matrix" row.
func AdobeRGBArray() types.Array {
	return types.Array{
		types.Name("CalRGB"),
		types.Dict{
			"WhitePoint": types.Array{types.Float(0.9505), types.Float(1.0), types.Float(1.089)},
			"Gamma":      types.Array{types.Float(2.2), types.Float(2.2), types.Float(2.2)},
			"Matrix": types.Array{
				types.Float(0.5767), types.Float(0.2974), types.Float(0.0270),
				types.Float(0.1856), types.Float(0.6273), types.Float(0.0707),
				types.Float(0.1882), types.Float(0.0753), types.Float(0.9911),
			},
		},
	}
}
