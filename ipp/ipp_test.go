package ipp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIntervalSetMergesOverlappingRanges(t *testing.T) {
	var s IntervalSet
	s.Add(1, 4)
	s.Add(3, 7)
	s.AddSingle(10)
	s.Finish()

	for _, p := range []int{1, 2, 5, 7, 10} {
		require.True(t, s.Contains(p), "page %d should be selected", p)
	}
	for _, p := range []int{8, 9, 11} {
		require.False(t, s.Contains(p), "page %d should not be selected", p)
	}
}

func TestIntervalSetEmptyMeansAllPages(t *testing.T) {
	var s IntervalSet
	s.Finish()
	require.True(t, s.Contains(1))
	require.True(t, s.Contains(99999))
}

func TestIntervalSetPanicsOnAddAfterFinish(t *testing.T) {
	var s IntervalSet
	s.Finish()
	require.Panics(t, func() { s.Add(1, 2) })
}

func TestParseMediaNamedSize(t *testing.T) {
	m, err := ParseMedia("iso_a4_210x297mm")
	require.NoError(t, err)
	require.InDelta(t, 595.27, m.Width, 1.0)
	require.InDelta(t, 841.88, m.Height, 1.0)
}

func TestParseMediaSelfDescribing(t *testing.T) {
	m, err := ParseMedia("custom_4x6in")
	require.NoError(t, err)
	require.InDelta(t, 288, m.Width, 0.01)
	require.InDelta(t, 432, m.Height, 0.01)
}

func TestParseNumberUpLayout(t *testing.T) {
	l, err := ParseNumberUpLayout("lrtb")
	require.NoError(t, err)
	require.Equal(t, AxisRight, l.Primary)
	require.Equal(t, AxisDown, l.Secondary)

	_, err = ParseNumberUpLayout("xx")
	require.Error(t, err)
}

func TestParseCollection(t *testing.T) {
	fields, err := parseCollection(`media-size-name=iso_a4_210x297mm,media-left-margin=0,media-top-margin="100"`)
	require.NoError(t, err)
	require.Equal(t, "iso_a4_210x297mm", fields["media-size-name"])
	require.Equal(t, "0", fields["media-left-margin"])
	require.Equal(t, "100", fields["media-top-margin"])
}

func TestParseOptionsDefaultsAndOverrides(t *testing.T) {
	env := MapEnviron{"IPP_SIDES_DEFAULT": "two-sided-long-edge"}
	fo, errs := ParseOptions(map[string]string{"number-up": "4"}, env)
	require.Empty(t, errs)
	require.Equal(t, 4, fo.NumberUp)
	require.Equal(t, SidesTwoSidedLongEdge, fo.Sides)
}

func TestParseOptionsBookletForces2Up(t *testing.T) {
	fo, errs := ParseOptions(map[string]string{"imposition-template": "booklet", "number-up": "4"}, MapEnviron{})
	require.NotEmpty(t, errs)
	require.Equal(t, 2, fo.NumberUp)
}

func TestParseOptionsJobErrorSheetCollection(t *testing.T) {
	fo, errs := ParseOptions(map[string]string{"job-error-sheet": "report=on-error,media=na_legal_8.5x14in"}, MapEnviron{})
	require.Empty(t, errs)
	require.Equal(t, "on-error", fo.JobErrorSheetReport)
	require.Equal(t, "na_legal_8.5x14in", fo.JobErrorSheetMedia)
}

func TestParseOptionsImpositionTemplateSetsBooklet(t *testing.T) {
	fo, errs := ParseOptions(map[string]string{"imposition-template": "booklet"}, MapEnviron{})
	require.Empty(t, errs)
	require.True(t, fo.Booklet)
	require.Equal(t, 2, fo.NumberUp)
}

func TestParseOverrides(t *testing.T) {
	overrides, err := parseOverrides(`{page-numbers=1-2,media=na_legal_8.5x14in}`)
	require.NoError(t, err)
	require.Len(t, overrides, 1)
	require.True(t, overrides[0].HasMedia)
	require.Equal(t, "na_legal_8.5x14in", overrides[0].Media.Name)
	require.True(t, overrides[0].PageNumbers.Contains(1))
	require.False(t, overrides[0].PageNumbers.Contains(3))
	// no document-numbers given means the override applies to every document.
	require.True(t, overrides[0].AppliesTo(1, 1))
	require.True(t, overrides[0].AppliesTo(99, 2))
	require.False(t, overrides[0].AppliesTo(1, 3))
}

func TestParseOverridesDocumentAndPageNumbersAreIndependent(t *testing.T) {
	overrides, err := parseOverrides(`{document-numbers=2,page-numbers=1-2,orientation-requested=landscape}`)
	require.NoError(t, err)
	require.Len(t, overrides, 1)
	ov := overrides[0]
	require.True(t, ov.HasOrientation)
	require.Equal(t, OrientationLandscape, ov.Orientation)
	require.True(t, ov.AppliesTo(2, 1))
	require.False(t, ov.AppliesTo(1, 1), "document-numbers=2 must not apply to document 1")
	require.False(t, ov.AppliesTo(2, 3), "page-numbers=1-2 must not apply to page 3")
}

// TestIsPageInRangeOddFilteredThenRange covers spec 8 scenario 3:
// page-ranges=2-3,5 page-set=odd should keep pages 3 and 5 only (2 is
// filtered out by the odd parity check before range membership matters).
func TestIsPageInRangeOddFilteredThenRange(t *testing.T) {
	opts, errs := ParseOptions(map[string]string{
		"page-ranges": "2-3,5",
		"page-set":    "odd",
	}, MapEnviron{})
	require.Empty(t, errs)

	var kept []int
	for p := 1; p <= 5; p++ {
		if opts.IsPageInRange(p) {
			kept = append(kept, p)
		}
	}
	require.Equal(t, []int{3, 5}, kept)
}

func TestNewPageSetOddEven(t *testing.T) {
	var all IntervalSet
	all.Finish()
	odd := NewPageSet(6, &all, "odd")
	require.True(t, odd.Contains(1))
	require.False(t, odd.Contains(2))
	require.Equal(t, 3, odd.Count())
}
