package ipp

import "github.com/bits-and-blooms/bitset"

// PageSet is a dense "is page N selected" membership test, combining the
// page-ranges IntervalSet with the "page-set" keyword (odd/even/all) and
// any per-override page list. It's a small wrapper over a bitset.BitSet
// rather than a map[int]bool because layout/pdftopdf probe membership
// once per input page in a tight loop while imposing a document that can
// run to thousands of pages.
type PageSet struct {
	bits *bitset.BitSet
}

// NewPageSet builds a PageSet of the given capacity (1-based pages 1..n),
// selecting pages per ranges and the page-set keyword ("", "odd", "even"
// all mean "no additional restriction" except odd/even).
func NewPageSet(n int, ranges *IntervalSet, pageSetKeyword string) *PageSet {
	bs := bitset.New(uint(n + 1))
	for p := 1; p <= n; p++ {
		if !ranges.Contains(p) {
			continue
		}
		switch pageSetKeyword {
		case "odd":
			if p%2 == 0 {
				continue
			}
		case "even":
			if p%2 != 0 {
				continue
			}
		}
		bs.Set(uint(p))
	}
	return &PageSet{bits: bs}
}

// Contains reports whether 1-based page p is selected.
func (s *PageSet) Contains(p int) bool {
	if p < 0 || uint(p) >= s.bits.Len() {
		return false
	}
	return s.bits.Test(uint(p))
}

// Count returns how many pages are selected.
func (s *PageSet) Count() int {
	return int(s.bits.Count())
}
