package ipp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mechiko/cupsfilters/internal/types"
	"github.com/pkg/errors"
)

// Media is a resolved physical media size plus the printable-area margins
// (all in PDF points, 1/72 inch) the FilterOptions table (spec 3.3) needs.
type Media struct {
	Name                       string
	Width, Height              float64 // points
	LeftMargin, BottomMargin   float64
	RightMargin, TopMargin     float64
}

// Rect returns the media's full-bleed rectangle at the origin.
func (m Media) Rect() types.Rect { return types.NewRect(0, 0, m.Width, m.Height) }

// PrintableRect returns the rectangle inside the media's margins.
func (m Media) PrintableRect() types.Rect {
	return types.NewRect(m.LeftMargin, m.BottomMargin, m.Width-m.RightMargin, m.Height-m.TopMargin)
}

const hundredthsMMPerInch = 2540.0
const pointsPerInch = 72.0

func hundredthsToPoints(h int) float64 {
	return float64(h) / hundredthsMMPerInch * pointsPerInch
}

// ErrUnsupportedMedia is returned by ParseMedia for a name it cannot
// resolve to a size.
var ErrUnsupportedMedia = errors.New("ipp: unsupported media name")

// ParseMedia resolves a PWG media name (e.g. "na_letter_8.5x11in",
// "iso_a4_210x297mm", or a self-describing "custom_WxHin"/"custom_WxHmm"
// value) to a Media with zero margins; callers merge in a media-col's
// margin sub-members separately (see ParseMediaCol).
func ParseMedia(name string) (Media, error) {
	if p, ok := lookupPaperSize(name); ok {
		return Media{Name: name, Width: hundredthsToPoints(p.WidthHundreds), Height: hundredthsToPoints(p.HeightHundreds)}, nil
	}
	if w, h, ok := parseSelfDescribingSize(name); ok {
		return Media{Name: name, Width: w, Height: h}, nil
	}
	return Media{}, errors.Wrapf(ErrUnsupportedMedia, "%q", name)
}

// parseSelfDescribingSize parses the PWG "self describing name" suffix
// convention: an optional prefix, then "_WxH" followed by a unit ("in" or
// "mm"), e.g. "custom_4x6in", "oe_photo-L_3.5x5in".
func parseSelfDescribingSize(name string) (w, h float64, ok bool) {
	unit := ""
	body := name
	switch {
	case strings.HasSuffix(name, "in"):
		unit = "in"
		body = strings.TrimSuffix(name, "in")
	case strings.HasSuffix(name, "mm"):
		unit = "mm"
		body = strings.TrimSuffix(name, "mm")
	default:
		return 0, 0, false
	}
	idx := strings.LastIndex(body, "_")
	if idx < 0 {
		return 0, 0, false
	}
	dims := body[idx+1:]
	parts := strings.SplitN(dims, "x", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	fw, err1 := strconv.ParseFloat(parts[0], 64)
	fh, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	switch unit {
	case "in":
		return fw * pointsPerInch, fh * pointsPerInch, true
	case "mm":
		return fw / 25.4 * pointsPerInch, fh / 25.4 * pointsPerInch, true
	}
	return 0, 0, false
}

// MediaCol is the parsed form of an IPP "media-col" collection value: a
// media size plus its margins, each expressed in hundredths of a
// millimeter per IPP convention.
type MediaCol struct {
	SizeName                                     string
	MarginLeft, MarginRight, MarginTop, MarginBottom int // hundredths of mm
}

// ParseMediaCol parses a media-col collection string of the form
// "media-size-name=iso_a4_210x297mm,media-left-margin=0,..." (produced by
// parseCollection, see collection.go) into a resolved Media.
func ParseMediaCol(fields map[string]string) (Media, error) {
	name, ok := fields["media-size-name"]
	if !ok {
		return Media{}, errors.New("ipp: media-col missing media-size-name")
	}
	m, err := ParseMedia(name)
	if err != nil {
		return Media{}, err
	}
	get := func(key string) float64 {
		if v, ok := fields[key]; ok {
			if n, err := strconv.Atoi(v); err == nil {
				return hundredthsToPoints(n)
			}
		}
		return 0
	}
	m.LeftMargin = get("media-left-margin")
	m.RightMargin = get("media-right-margin")
	m.TopMargin = get("media-top-margin")
	m.BottomMargin = get("media-bottom-margin")
	return m, nil
}

func (m Media) String() string {
	return fmt.Sprintf("%s (%.1fx%.1fpt)", m.Name, m.Width, m.Height)
}
