// Package ipp models the IPP/CUPS print options this filter pipeline is
// driven by: parsing the job's options map plus IPP_* environment
// variables into a typed FilterOptions, the way the original cupsfilters
// ipp-options.c does, generalizing pdfcpu's own "key:value,key:value"
// collection parser (pkg/pdfcpu/nup.go ParseNUpDetails) to IPP's
// "{...}" collection syntax.
package ipp

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// PrintScaling mirrors the IPP "print-scaling" keyword values.
type PrintScaling int

const (
	ScalingAuto PrintScaling = iota
	ScalingFit
	ScalingFill
	ScalingNone
)

// ImageOrientation mirrors "orientation-requested" (IPP 3/4/5/6).
type ImageOrientation int

const (
	OrientationPortrait ImageOrientation = iota
	OrientationLandscape
	OrientationReverseLandscape
	OrientationReversePortrait
)

// Sides mirrors the IPP "sides" keyword values.
type Sides int

const (
	SidesOneSided Sides = iota
	SidesTwoSidedLongEdge
	SidesTwoSidedShortEdge
)

func (s Sides) Duplex() bool { return s != SidesOneSided }

// Override is a single document/page-scoped option override from the
// "overrides" collection (IPP page-overrides extension), mirroring
// cf_filter_override_t (ipp-options-private.h): document-numbers and
// page-numbers are distinct ranges - an override can scope to whole
// documents of a multi-document job, to pages within the current
// document, or both - plus the two settings the original struct special
// cases, media and orientation-requested, and any remaining option=value
// pairs the group carried.
type Override struct {
	DocumentNumbers IntervalSet
	PageNumbers     IntervalSet
	Media           Media
	HasMedia        bool
	Orientation     ImageOrientation
	HasOrientation  bool
	Options         map[string]string
}

// AppliesTo reports whether the override's document-numbers and
// page-numbers ranges admit (docNum, pageNum) (1-based), treating an
// empty range as "every document"/"every page" per IntervalSet's own
// empty-means-all convention.
func (o *Override) AppliesTo(docNum, pageNum int) bool {
	return o.DocumentNumbers.Contains(docNum) && o.PageNumbers.Contains(pageNum)
}

// ResolveOverride scans fo.Overrides in order and returns the media and
// orientation-requested the first matching override pins for pageNumber,
// each resolved independently (a later override can still supply
// orientation if an earlier match only pinned media). fo.DocumentNumber
// is 1 for a single-document job; a caller driving a multi-document job
// (one invocation per document) sets it before building the plan.
func (fo *FilterOptions) ResolveOverride(pageNumber int) (media Media, hasMedia bool, orientation ImageOrientation, hasOrientation bool) {
	docNum := fo.DocumentNumber
	if docNum == 0 {
		docNum = 1
	}
	for _, ov := range fo.Overrides {
		if !ov.AppliesTo(docNum, pageNumber) {
			continue
		}
		if ov.HasMedia && !hasMedia {
			media, hasMedia = ov.Media, true
		}
		if ov.HasOrientation && !hasOrientation {
			orientation, hasOrientation = ov.Orientation, true
		}
	}
	return
}

// FilterOptions is the fully parsed, typed form of a filter invocation's
// options map, the central value every component (A-L) reads from.
type FilterOptions struct {
	NumberUp                 int
	NumberUpLayout           NumberUpLayout
	PageRanges               IntervalSet
	PageSet                  string // "", "odd", "even" (spec 3.4 page_set)
	Orientation              ImageOrientation
	PrintScaling             PrintScaling
	Sides                    Sides
	Media                    Media
	Mirror                   bool
	Booklet                  bool
	Collate                  bool
	Finishings               []string
	Resolution               string // e.g. "300dpi"
	ColorSpace               string // e.g. "sgray", "srgb", "cmyk"
	JobName                  string
	Copies                   int
	ReverseOrder             bool
	PageBorder               string // "none", "single", "single-thick", "double", "double-thick"
	PageMargins              PageMargins
	PageLabel                string
	ImpositionTemplate       string // "", "booklet" (spec 3.4 imposition_template)
	JobErrorSheetReport      string // "none", "on-error", "always"
	JobErrorSheetMedia       string // media name; "" means fall back to Media
	MultipleDocumentHandling string // collated, uncollated, single-doc, single-doc-new-sheet
	Overrides                []Override
	DocumentNumber           int // 1-based; which document of a multi-document job this invocation handles (0 means 1)
	Raw                      map[string]string // the untyped option map, for passthrough
}

// PageMargins is the page-top/left/right/bottom option group (spec 3.4):
// additional content insets applied independent of the media's own
// margins, in PDF points.
type PageMargins struct {
	Top, Left, Right, Bottom float64
}

// DefaultFilterOptions returns the FilterOptions every field defaults to
// absent an explicit option or environment override, matching spec 3.4's
// default column.
func DefaultFilterOptions() *FilterOptions {
	media, _ := ParseMedia("iso_a4_210x297mm")
	fo := &FilterOptions{
		NumberUp:                 1,
		Orientation:              OrientationPortrait,
		PrintScaling:             ScalingAuto,
		Sides:                    SidesOneSided,
		Media:                    media,
		Collate:                  true,
		Copies:                   1,
		PageBorder:               "none",
		JobErrorSheetReport:      "none",
		MultipleDocumentHandling: "collated",
		Raw:                      map[string]string{},
	}
	fo.PageRanges.Finish()
	return fo
}

// ParseOptions builds a FilterOptions from the explicit options map
// (highest precedence) layered over Environ's IPP_* defaults (spec 4.A's
// lookup order: explicit option, then IPP_<NAME>, then IPP_<NAME>_DEFAULT,
// then built-in default). Parse errors for individual fields are collected and returned
// alongside a best-effort FilterOptions rather than aborting the whole
// parse, so a single bad option doesn't block printing.
func ParseOptions(opts map[string]string, env Environ) (*FilterOptions, []error) {
	fo := DefaultFilterOptions()
	var errs []error

	lookup := func(name string) (string, bool) {
		if v, ok := opts[name]; ok {
			return v, true
		}
		return env.Default(name)
	}

	if v, ok := lookup("number-up"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || !validNumberUp(n) {
			errs = append(errs, errors.Errorf("ipp: invalid number-up %q", v))
		} else {
			fo.NumberUp = n
		}
	}
	if v, ok := lookup("number-up-layout"); ok {
		layout, err := ParseNumberUpLayout(v)
		if err != nil {
			errs = append(errs, err)
		} else {
			fo.NumberUpLayout = layout
		}
	}
	if v, ok := lookup("page-ranges"); ok {
		if err := parsePageRanges(v, &fo.PageRanges); err != nil {
			errs = append(errs, err)
		}
	}
	fo.PageRanges.Finish()

	if v, ok := lookup("page-set"); ok {
		switch v {
		case "odd", "even", "all":
			if v != "all" {
				fo.PageSet = v
			}
		default:
			errs = append(errs, errors.Errorf("ipp: invalid page-set %q", v))
		}
	}

	if v, ok := lookup("orientation-requested"); ok {
		o, err := parseOrientation(v)
		if err != nil {
			errs = append(errs, err)
		} else {
			fo.Orientation = o
		}
	}
	if v, ok := lookup("print-scaling"); ok {
		s, err := parsePrintScaling(v)
		if err != nil {
			errs = append(errs, err)
		} else {
			fo.PrintScaling = s
		}
	}
	if v, ok := lookup("sides"); ok {
		s, err := parseSides(v)
		if err != nil {
			errs = append(errs, err)
		} else {
			fo.Sides = s
		}
	}
	if v, ok := lookup("mirror"); ok {
		fo.Mirror = v == "true" || v == "on" || v == "1"
	}
	if v, ok := lookup("imposition-template"); ok {
		switch v {
		case "", "booklet":
			fo.ImpositionTemplate = v
			fo.Booklet = v == "booklet"
		default:
			errs = append(errs, errors.Errorf("ipp: invalid imposition-template %q", v))
		}
	}
	if v, ok := lookup("multiple-document-handling"); ok {
		switch v {
		case "collated", "uncollated", "single-doc", "single-doc-new-sheet":
			fo.MultipleDocumentHandling = v
		default:
			errs = append(errs, errors.Errorf("ipp: invalid multiple-document-handling %q", v))
		}
	}
	if v, ok := lookup("job-error-sheet"); ok {
		fields, err := parseCollection(v)
		if err != nil {
			errs = append(errs, err)
		} else {
			if report, ok := fields["report"]; ok {
				switch report {
				case "none", "on-error", "always":
					fo.JobErrorSheetReport = report
				default:
					errs = append(errs, errors.Errorf("ipp: invalid job-error-sheet report %q", report))
				}
			}
			if media, ok := fields["media"]; ok {
				fo.JobErrorSheetMedia = media
			}
		}
	}
	if v, ok := lookup("collate"); ok {
		fo.Collate = v == "true" || v == "on" || v == "1"
	}
	if v, ok := lookup("finishings"); ok {
		fo.Finishings = splitCommaList(v)
	}
	if v, ok := lookup("print-color-mode"); ok {
		fo.ColorSpace = v
	}
	if v, ok := lookup("printer-resolution"); ok {
		fo.Resolution = v
	}
	if v, ok := lookup("job-name"); ok {
		fo.JobName = v
	}
	if v, ok := lookup("copies"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			errs = append(errs, errors.Errorf("ipp: invalid copies %q", v))
		} else {
			fo.Copies = n
		}
	}
	if v, ok := lookup("reverse-order"); ok {
		fo.ReverseOrder = v == "true" || v == "on" || v == "1"
	}
	if v, ok := lookup("page-border"); ok {
		switch v {
		case "none", "single", "single-thick", "double", "double-thick":
			fo.PageBorder = v
		default:
			errs = append(errs, errors.Errorf("ipp: invalid page-border %q", v))
		}
	}
	if v, ok := lookup("page-label"); ok {
		if len(v) > 255 {
			v = v[:255]
		}
		fo.PageLabel = v
	}
	if v, ok := lookup("page-top"); ok {
		fo.PageMargins.Top = parsePageMarginValue(v, &errs)
	}
	if v, ok := lookup("page-left"); ok {
		fo.PageMargins.Left = parsePageMarginValue(v, &errs)
	}
	if v, ok := lookup("page-right"); ok {
		fo.PageMargins.Right = parsePageMarginValue(v, &errs)
	}
	if v, ok := lookup("page-bottom"); ok {
		fo.PageMargins.Bottom = parsePageMarginValue(v, &errs)
	}

	if v, ok := lookup("media-col"); ok {
		fields, err := parseCollection(v)
		if err != nil {
			errs = append(errs, err)
		} else if m, err := ParseMediaCol(fields); err != nil {
			errs = append(errs, err)
		} else {
			fo.Media = m
		}
	} else if v, ok := lookup("media"); ok {
		if m, err := ParseMedia(v); err != nil {
			errs = append(errs, err)
		} else {
			fo.Media = m
		}
	}

	if v, ok := lookup("overrides"); ok {
		overrides, err := parseOverrides(v)
		if err != nil {
			errs = append(errs, err)
		} else {
			fo.Overrides = overrides
		}
	}

	if fo.Booklet {
		if fo.NumberUp != 1 && fo.NumberUp != 2 {
			errs = append(errs, errors.Errorf("ipp: booklet forces 2-up, ignoring number-up=%d", fo.NumberUp))
		}
		fo.NumberUp = 2
	}

	fo.Raw = opts
	return fo, errs
}

// parsePageMarginValue parses a page-top/left/right/bottom integer
// option (spec 3.4: "int", default 0); a malformed value is recorded as a
// warning and falls back to 0, matching the "unsupported enumerated/
// out-of-range value reverts to default" failure policy (spec 4.A).
func parsePageMarginValue(v string, errs *[]error) float64 {
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, errors.Errorf("ipp: invalid page margin %q", v))
		return 0
	}
	return float64(n)
}

// IsPageInRange implements spec 4.A's is_page_in_range(n): false if
// page-set parity excludes n, otherwise true when page-ranges is empty or
// n falls within it.
func (fo *FilterOptions) IsPageInRange(n int) bool {
	switch fo.PageSet {
	case "odd":
		if n%2 == 0 {
			return false
		}
	case "even":
		if n%2 != 0 {
			return false
		}
	}
	return fo.PageRanges.Contains(n)
}

func validNumberUp(n int) bool {
	switch n {
	case 1, 2, 3, 4, 6, 8, 9, 10, 12, 15, 16:
		return true
	}
	return false
}

func parseOrientation(v string) (ImageOrientation, error) {
	switch v {
	case "3", "portrait":
		return OrientationPortrait, nil
	case "4", "landscape":
		return OrientationLandscape, nil
	case "5", "reverse-landscape":
		return OrientationReverseLandscape, nil
	case "6", "reverse-portrait":
		return OrientationReversePortrait, nil
	}
	return 0, errors.Errorf("ipp: invalid orientation-requested %q", v)
}

func parsePrintScaling(v string) (PrintScaling, error) {
	switch v {
	case "auto":
		return ScalingAuto, nil
	case "fit", "fit-to-page", "auto-fit":
		return ScalingFit, nil
	case "fill":
		return ScalingFill, nil
	case "none":
		return ScalingNone, nil
	}
	return 0, errors.Errorf("ipp: invalid print-scaling %q", v)
}

func parseSides(v string) (Sides, error) {
	switch v {
	case "one-sided":
		return SidesOneSided, nil
	case "two-sided-long-edge":
		return SidesTwoSidedLongEdge, nil
	case "two-sided-short-edge":
		return SidesTwoSidedShortEdge, nil
	}
	return 0, errors.Errorf("ipp: invalid sides %q", v)
}

func splitCommaList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parsePageRanges(v string, set *IntervalSet) error {
	for _, r := range strings.Split(v, ",") {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if idx := strings.Index(r, "-"); idx >= 0 {
			loS, hiS := r[:idx], r[idx+1:]
			lo, err := strconv.Atoi(loS)
			if err != nil {
				return errors.Wrapf(err, "ipp: invalid page-ranges entry %q", r)
			}
			hi := 1 << 30
			if hiS != "" {
				hi, err = strconv.Atoi(hiS)
				if err != nil {
					return errors.Wrapf(err, "ipp: invalid page-ranges entry %q", r)
				}
			}
			set.Add(lo, hi)
			continue
		}
		n, err := strconv.Atoi(r)
		if err != nil {
			return errors.Wrapf(err, "ipp: invalid page-ranges entry %q", r)
		}
		set.AddSingle(n)
	}
	return nil
}

func parseOverrides(v string) ([]Override, error) {
	// "overrides" is a collection-of-collections: one {document-numbers=...,
	// page-numbers=..., media=..., orientation-requested=..., ...} group
	// per override. Groups are split on the same brace-depth-aware comma
	// rule parseCollection already applies to a flat collection, so this
	// just walks top-level "{...}" spans.
	var out []Override
	depth := 0
	start := -1
	for i, r := range v {
		switch r {
		case '{':
			if depth == 0 {
				start = i + 1
			}
			depth++
		case '}':
			depth--
			if depth == 0 && start >= 0 {
				fields, err := parseCollection(v[start:i])
				if err != nil {
					return nil, err
				}
				ov := Override{Options: map[string]string{}}
				for k, val := range fields {
					switch k {
					case "document-numbers":
						if err := parsePageRanges(val, &ov.DocumentNumbers); err != nil {
							return nil, err
						}
					case "page-numbers", "pages":
						if err := parsePageRanges(val, &ov.PageNumbers); err != nil {
							return nil, err
						}
					case "media":
						m, err := ParseMedia(val)
						if err != nil {
							return nil, err
						}
						ov.Media, ov.HasMedia = m, true
					case "orientation-requested":
						o, err := parseOrientation(val)
						if err != nil {
							return nil, err
						}
						ov.Orientation, ov.HasOrientation = o, true
					default:
						ov.Options[k] = val
					}
				}
				ov.DocumentNumbers.Finish()
				ov.PageNumbers.Finish()
				out = append(out, ov)
			}
		}
	}
	return out, nil
}
