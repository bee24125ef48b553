package pdftopdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/mechiko/cupsfilters/internal/logging"
	"github.com/mechiko/cupsfilters/internal/model"
	"github.com/mechiko/cupsfilters/ipp"
	"github.com/stretchr/testify/require"
)

// buildTestPDF synthesizes a minimal n-page A4 PDF by hand, following the
// same fixture style internal/model's sampleOnePagePDF test constant
// uses: one Catalog, one flat Pages node, n Page objects each with a
// trivial "q Q" content stream.
func buildTestPDF(t *testing.T, n int) []byte {
	t.Helper()
	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	kids := make([]string, n)
	for i := 0; i < n; i++ {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}
	fmt.Fprintf(&b, "2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", strings.Join(kids, " "), n)

	for i := 0; i < n; i++ {
		pageObj := 3 + 2*i
		contentObj := pageObj + 1
		content := fmt.Sprintf("BT /F1 12 Tf (Page %d) Tj ET", i+1)
		fmt.Fprintf(&b, "%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Resources << /Font << /F1 99 0 R >> >> /Contents %d 0 R >>\nendobj\n",
			pageObj, contentObj)
		fmt.Fprintf(&b, "%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", contentObj, len(content), content)
	}
	fmt.Fprintf(&b, "99 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")
	b.WriteString(fmt.Sprintf("trailer\n<< /Size %d /Root 1 0 R >>\n%%%%EOF\n", 100+2*n))
	return []byte(b.String())
}

func runFilter(t *testing.T, pdfData []byte, opts map[string]string) *model.Document {
	t.Helper()
	merged := map[string]string{"job-sheets": "none"}
	for k, v := range opts {
		merged[k] = v
	}

	var out bytes.Buffer
	fd := &FilterData{
		JobID:   1,
		User:    "tester",
		Title:   "test job",
		Copies:  1,
		Options: merged,
		Log:     logging.Discard,
	}
	err := Run(context.Background(), bytes.NewReader(pdfData), &out, fd)
	require.NoError(t, err)

	doc, err := model.Parse(out.Bytes())
	require.NoError(t, err)
	return doc
}

// TestRunNumberUp2ProducesHalfThePages covers spec 8 scenario 1: a 4-page
// document imposed number-up=2 becomes a 2-page document.
func TestRunNumberUp2ProducesHalfThePages(t *testing.T) {
	input := buildTestPDF(t, 4)
	doc := runFilter(t, input, map[string]string{"number-up": "2"})
	require.Equal(t, 2, doc.NumPages())
}

// TestRunPageRangesAndPageSetFiltersPages covers spec 8 scenario 3:
// page-ranges=2-3,5 page-set=odd on a 5-page document keeps pages 3 and
// 5 only, so a 1-up imposition emits exactly 2 output pages.
func TestRunPageRangesAndPageSetFiltersPages(t *testing.T) {
	input := buildTestPDF(t, 5)
	doc := runFilter(t, input, map[string]string{
		"page-ranges": "2-3,5",
		"page-set":    "odd",
	})
	require.Equal(t, 2, doc.NumPages())
}

// TestRunMirrorAndBorderEmitsExpectedOperators covers spec 8 scenario 4:
// mirror=true page-border=double-thick should precede every cell's
// content with a literal "-1 0 0 1 <width> 0 cm" mirror line and draw two
// inset stroked rectangles at line width 2.0.
func TestRunMirrorAndBorderEmitsExpectedOperators(t *testing.T) {
	input := buildTestPDF(t, 1)
	doc := runFilter(t, input, map[string]string{
		"mirror":      "true",
		"page-border": "double-thick",
	})
	require.Equal(t, 1, doc.NumPages())

	page, err := doc.Page(0)
	require.NoError(t, err)
	content, err := doc.ConcatContents(page)
	require.NoError(t, err)
	body := string(content)

	mediaWidth := doc.Dict(page.Ref)["MediaBox"] // sanity: page carries the resolved media box
	require.NotNil(t, mediaWidth)
	require.Contains(t, body, "-1 0 0 1 ")
	require.Contains(t, body, " 0 cm")
	require.Equal(t, 2, strings.Count(body, "re\nS"))
	require.Contains(t, body, "2.000000 w")
}

// TestRunJobErrorSheetReportGating covers spec 7's error-sheet gating
// rule: report=none (the default) never appends a sheet, report=always
// appends one even with nothing to report.
func TestRunJobErrorSheetReportGating(t *testing.T) {
	input := buildTestPDF(t, 2)

	withDefault := runFilter(t, input, map[string]string{})
	require.Equal(t, 2, withDefault.NumPages())

	withAlways := runFilter(t, input, map[string]string{"job-error-sheet": "report=always"})
	require.Equal(t, 3, withAlways.NumPages())
}

// TestRunReverseOrderReversesSheetOrder covers component H's output-order
// rule: reverse-order=true emits the imposed sheets tail-to-head.
func TestRunReverseOrderReversesSheetOrder(t *testing.T) {
	input := buildTestPDF(t, 3)
	forward := runFilter(t, input, map[string]string{})
	reversed := runFilter(t, input, map[string]string{"reverse-order": "true"})
	require.Equal(t, forward.NumPages(), reversed.NumPages())

	firstFwd, err := forward.Page(0)
	require.NoError(t, err)
	contentFwd, err := forward.ConcatContents(firstFwd)
	require.NoError(t, err)

	lastRev, err := reversed.Page(reversed.NumPages() - 1)
	require.NoError(t, err)
	contentRev, err := reversed.ConcatContents(lastRev)
	require.NoError(t, err)

	require.Equal(t, string(contentFwd), string(contentRev))
}

// TestRunOverridesPinMediaForMatchingPage covers spec 3.4's "overrides"
// collection: a page-numbers-scoped override's media must apply only to
// the sheet carrying that source page, leaving every other sheet on the
// job's default media.
func TestRunOverridesPinMediaForMatchingPage(t *testing.T) {
	input := buildTestPDF(t, 3)
	doc := runFilter(t, input, map[string]string{
		"media":     "iso_a4_210x297mm",
		"overrides": "{page-numbers=2,media=na_legal_8.5x14in}",
	})
	require.Equal(t, 3, doc.NumPages())

	a4, err := ipp.ParseMedia("iso_a4_210x297mm")
	require.NoError(t, err)
	legal, err := ipp.ParseMedia("na_legal_8.5x14in")
	require.NoError(t, err)

	for i := 0; i < doc.NumPages(); i++ {
		page, err := doc.Page(i)
		require.NoError(t, err)
		if i == 1 {
			require.InDelta(t, legal.Width, page.MediaBox.Width(), 0.01)
			require.InDelta(t, legal.Height, page.MediaBox.Height(), 0.01)
		} else {
			require.InDelta(t, a4.Width, page.MediaBox.Width(), 0.01)
			require.InDelta(t, a4.Height, page.MediaBox.Height(), 0.01)
		}
	}
}
