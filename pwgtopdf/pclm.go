package pwgtopdf

import (
	"strings"

	"github.com/mechiko/cupsfilters/internal/filter"
)

// DefaultStripHeight is the strip height (in raster rows) PCLm splits a
// page into when the printer doesn't advertise
// pclm-strip-height-preferred, matching the original's built-in default.
const DefaultStripHeight = 128

// Strip is one horizontal slab of a PCLm page: its row offset and its row
// count (the last strip of a page may be shorter).
type Strip struct {
	FirstRow, NumRows int
}

// SplitStrips partitions a page of height rows into strips of stripHeight
// rows each (the last one possibly shorter), per spec 4.K step 2.
func SplitStrips(height, stripHeight int) []Strip {
	if stripHeight <= 0 {
		stripHeight = DefaultStripHeight
	}
	var strips []Strip
	for y := 0; y < height; y += stripHeight {
		n := stripHeight
		if y+n > height {
			n = height - y
		}
		strips = append(strips, Strip{FirstRow: y, NumRows: n})
	}
	return strips
}

// compressionPriority is the fixed ordering spec 4.K's negotiation table
// names: DCT beats Flate beats RLE.
var compressionPriority = map[string]int{
	filter.DCTDecode:       3,
	filter.FlateDecode:     2,
	filter.RunLengthDecode: 1,
}

// NegotiateCompression parses the printer's advertised
// pclm-compression-method-preferred keyword list and returns the PDF
// filter name with the highest priority in compressionPriority, or
// FlateDecode with ok=false (the documented default-plus-warning
// fallback) if the list names nothing this encoder recognizes.
func NegotiateCompression(preferred string) (name string, ok bool) {
	best := ""
	bestPriority := 0
	for _, kw := range strings.Split(preferred, ",") {
		kw = strings.ToLower(strings.TrimSpace(kw))
		var candidate string
		switch kw {
		case "jpeg", "dct":
			candidate = filter.DCTDecode
		case "flate":
			candidate = filter.FlateDecode
		case "rle":
			candidate = filter.RunLengthDecode
		default:
			continue
		}
		if p := compressionPriority[candidate]; p > bestPriority {
			bestPriority = p
			best = candidate
		}
	}
	if best == "" {
		return filter.FlateDecode, false
	}
	return best, true
}
