package pwgtopdf

import (
	"github.com/mechiko/cupsfilters/color"
	"github.com/mechiko/cupsfilters/internal/model"
	"github.com/mechiko/cupsfilters/internal/types"
	"github.com/pkg/errors"
)

// ErrUnsupportedColorSpace is returned for an input color space this
// encoder has no conversion path for.
var ErrUnsupportedColorSpace = errors.New("pwgtopdf: unsupported color space")

// deviceChannels is how many samples-per-pixel a given /ColorSpace name
// implies, used both to size conversion buffers and to decide the
// cm-disabled fallback's channel count.
func deviceChannels(name string) int {
	switch name {
	case "DeviceGray":
		return 1
	case "DeviceRGB":
		return 3
	case "DeviceCMYK":
		return 4
	}
	return 1
}

// ResolvedColorSpace is what ChooseColorSpace returns: the PDF object to
// place under the image XObject's /ColorSpace, the Device family it's
// channel-compatible with (drives ConversionFor), and its channel count.
type ResolvedColorSpace struct {
	Object   types.Object
	Device   string
	Channels int
}

// ChooseColorSpace implements the component L/K joint decision table
// (spec 4.K): cmDisabled always wins (renderer-side color management is
// off, so pixels are emitted in a plain Device* space matching the
// source channel count); otherwise an attached ICC profile wins; failing
// that, the CUPS color space name picks a calibrated space.
func ChooseColorSpace(doc *model.Document, cs ColorSpace, cmDisabled bool, profile *color.ICCProfile, rawChannels int) (*ResolvedColorSpace, error) {
	if cmDisabled {
		name := deviceFamilyForChannelCount(rawChannels)
		return &ResolvedColorSpace{Object: types.Name(name), Device: name, Channels: deviceChannels(name)}, nil
	}

	if profile != nil {
		arr, err := color.AttachICCBased(doc, profile)
		if err != nil {
			return nil, err
		}
		name := deviceFamilyForChannelCount(profile.N)
		return &ResolvedColorSpace{Object: arr, Device: name, Channels: profile.N}, nil
	}

	switch {
	case cs == CSWhite:
		return &ResolvedColorSpace{Object: color.CalGrayArray(), Device: "DeviceGray", Channels: 1}, nil
	case cs == CSBlack, cs == CSGray:
		return &ResolvedColorSpace{Object: types.Name("DeviceGray"), Device: "DeviceGray", Channels: 1}, nil
	case cs == CSSRGB:
		return &ResolvedColorSpace{Object: color.SRGBArray(), Device: "DeviceRGB", Channels: 3}, nil
	case cs == CSAdobeRGB:
		return &ResolvedColorSpace{Object: color.AdobeRGBArray(), Device: "DeviceRGB", Channels: 3}, nil
	case cs == CSRGB:
		return &ResolvedColorSpace{Object: types.Name("DeviceRGB"), Device: "DeviceRGB", Channels: 3}, nil
	case cs == CSCMYK, cs.IsDeviceN():
		return &ResolvedColorSpace{Object: types.Name("DeviceCMYK"), Device: "DeviceCMYK", Channels: 4}, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedColorSpace, "cups color space %d", cs)
}

func deviceFamilyForChannelCount(n int) string {
	switch n {
	case 1:
		return "DeviceGray"
	case 4:
		return "DeviceCMYK"
	default:
		return "DeviceRGB"
	}
}

// IntentName maps a CUPS rendering-intent header string (spec 4.K's
// "CUPSRenderingIntent" field) to the PDF /Intent name component L's
// mapping table names; RelativeBpc adds blackpoint compensation by
// reusing RelativeColorimetric (PDF has no separate BPC intent name -
// blackpoint compensation is a renderer behavior keyed off of the
// presence of a /BlackPoint entry in the color space array, not a
// distinct /Intent value).
func IntentName(cupsIntent string) color.RenderingIntent {
	switch cupsIntent {
	case "Perceptual":
		return color.IntentPerceptual
	case "Saturation":
		return color.IntentSaturation
	case "Absolute", "AbsoluteColorimetric":
		return color.IntentAbsoluteColorimetric
	case "Relative", "RelativeColorimetric", "RelativeBpc", "":
		return color.IntentRelativeColorimetric
	case "auto":
		return color.IntentRelativeColorimetric
	}
	return color.IntentRelativeColorimetric
}
