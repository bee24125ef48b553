package ipp

// paperSize holds a PWG standard media size's name and dimensions in
// hundredths of a millimeter, the unit PWG self-describing-media-size
// names use. Table shape grounded on pdfcpu's paperSize.go (name ->
// width/height lookup table), re-keyed to PWG media names and units
// instead of ISO/ANSI point sizes.
type paperSize struct {
	Name          string
	WidthHundreds int
	HeightHundreds int
}

// pwgMediaSizes is a representative subset of the PWG 5101.1 standard
// media names this module recognizes by name; anything else falls back to
// the numeric "custom_WxH_units" or "oeA_name_WxHunits" PWG forms parsed
// by ParseMedia.
var pwgMediaSizes = []paperSize{
	{"na_letter_8.5x11in", 21590, 27940},
	{"na_legal_8.5x14in", 21590, 35560},
	{"na_index-3x5_3x5in", 7620, 12700},
	{"na_number-10_4.125x9.5in", 10477, 24130},
	{"iso_a3_297x420mm", 29700, 42000},
	{"iso_a4_210x297mm", 21000, 29700},
	{"iso_a5_148x210mm", 14800, 21000},
	{"iso_a6_105x148mm", 10500, 14800},
	{"iso_b5_176x250mm", 17600, 25000},
	{"jis_b5_182x257mm", 18200, 25700},
	{"om_small-photo_100x150mm", 10000, 15000},
}

func lookupPaperSize(name string) (paperSize, bool) {
	for _, p := range pwgMediaSizes {
		if p.Name == name {
			return p, true
		}
	}
	return paperSize{}, false
}
