package ipp

import "sort"

// interval is a closed range [lo, hi] of 1-based page numbers.
type interval struct{ lo, hi int }

// IntervalSet accumulates page ranges from a "page-ranges" IPP value (e.g.
// "1-4,7,10-") and, once Finish is called, answers Contains queries
// against the merged, sorted range set. It has no teacher analog - pdfcpu's
// IntSet (pkg/pdfcpu/types/types.go) is an unordered membership set, not a
// merged interval list - so this is written directly from the "page-ranges
// is a list of possibly-overlapping ranges to be merged" behavior in
// spec.md section 4.B.
type IntervalSet struct {
	pending  []interval
	finished []interval
	done     bool
}

// Add records the half-open... actually closed range [lo, hi]. Panics if
// called after Finish without an intervening Clear, since that indicates
// a programming error (building a filter's option set twice).
func (s *IntervalSet) Add(lo, hi int) {
	if s.done {
		panic("ipp: IntervalSet.Add called after Finish")
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	s.pending = append(s.pending, interval{lo, hi})
}

// AddSingle records a single page number as a one-element range.
func (s *IntervalSet) AddSingle(page int) { s.Add(page, page) }

// Finish sorts and merges overlapping/adjacent ranges. Must be called
// before Contains.
func (s *IntervalSet) Finish() {
	if s.done {
		return
	}
	sort.Slice(s.pending, func(i, j int) bool { return s.pending[i].lo < s.pending[j].lo })
	var merged []interval
	for _, iv := range s.pending {
		if n := len(merged); n > 0 && iv.lo <= merged[n-1].hi+1 {
			if iv.hi > merged[n-1].hi {
				merged[n-1].hi = iv.hi
			}
			continue
		}
		merged = append(merged, iv)
	}
	s.finished = merged
	s.done = true
}

// Contains reports whether page falls within any recorded range. An empty,
// finished IntervalSet (no ranges ever added) is treated as "all pages
// selected", matching IPP's "page-ranges absent means all pages" default.
func (s *IntervalSet) Contains(page int) bool {
	if !s.done {
		panic("ipp: IntervalSet.Contains called before Finish")
	}
	if len(s.pending) == 0 {
		return true
	}
	lo, hi := 0, len(s.finished)
	for lo < hi {
		mid := (lo + hi) / 2
		iv := s.finished[mid]
		switch {
		case page < iv.lo:
			hi = mid
		case page > iv.hi:
			lo = mid + 1
		default:
			return true
		}
	}
	return false
}

// Clear resets the set so it can be rebuilt from scratch.
func (s *IntervalSet) Clear() {
	s.pending = nil
	s.finished = nil
	s.done = false
}
