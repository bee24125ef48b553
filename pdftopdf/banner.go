package pdftopdf

import (
	"bytes"
	"fmt"

	"github.com/mechiko/cupsfilters/internal/model"
	"github.com/mechiko/cupsfilters/internal/types"
	"golang.org/x/text/encoding/charmap"
)

// BannerPage appends a single banner/cover page to dst, listing the job's
// title/user/copies using the PDF core font Courier (spec 4.J), following the
// text-drawing primitives pdfcpu's draw package builds content streams
// with (pkg/pdfcpu/draw/draw.go SetFillColor/DrawRectSimple), generalized
// from shape drawing to a few Tj text-showing operators since a banner
// page is mostly text. job-sheets=none short-circuits this entirely at
// the call site (see Run), matching cupsfilters' pdftopdf.c
// behavior recorded in SPEC_FULL.md section 12.
func BannerPage(dst *model.Document, mediaRect types.Rect, title, user string, jobID, copies int) error {
	fontRef, err := dst.AddObject(types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type1"),
		"BaseFont": types.Name("Courier"),
	})
	if err != nil {
		return err
	}

	title = normalizeToPDFDocEncoding(title)
	user = normalizeToPDFDocEncoding(user)

	var body bytes.Buffer
	cx := mediaRect.Width() / 2
	topY := mediaRect.Height() - 144
	fmt.Fprintf(&body, "BT\n/F1 24 Tf\n%.2f %.2f Td\n(%s) Tj\nET\n", cx-100, topY, escapePDFString(title))
	fmt.Fprintf(&body, "BT\n/F1 12 Tf\n%.2f %.2f Td\n(User: %s  Job: %d  Copies: %d) Tj\nET\n",
		cx-100, topY-30, escapePDFString(user), jobID, copies)

	contentRef, err := dst.AddStream(types.Dict{}, body.Bytes())
	if err != nil {
		return err
	}

	pageDict := types.Dict{
		"Type":      types.Name("Page"),
		"MediaBox":  rectArray(mediaRect),
		"Resources": types.Dict{"Font": types.Dict{"F1": fontRef}},
		"Contents":  contentRef,
	}
	ref, err := dst.AddObject(pageDict)
	if err != nil {
		return err
	}
	return dst.AppendPage(model.Page{Ref: ref, MediaBox: mediaRect})
}

// ErrorSheet renders a single page reporting the accumulated filter
// error messages Run collected while copying pages, so a job that
// fails part way still yields feedback on paper rather than silence.
func ErrorSheet(dst *model.Document, mediaRect types.Rect, messages []string) error {
	fontRef, err := dst.AddObject(types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type1"),
		"BaseFont": types.Name("Courier"),
	})
	if err != nil {
		return err
	}

	var body bytes.Buffer
	fmt.Fprintf(&body, "BT\n/F1 18 Tf\n72 %.2f Td\n(Print job completed with errors) Tj\nET\n", mediaRect.Height()-72)
	y := mediaRect.Height() - 108
	for _, m := range messages {
		fmt.Fprintf(&body, "BT\n/F1 10 Tf\n72 %.2f Td\n(%s) Tj\nET\n", y, escapePDFString(normalizeToPDFDocEncoding(m)))
		y -= 14
		if y < 36 {
			break
		}
	}

	contentRef, err := dst.AddStream(types.Dict{}, body.Bytes())
	if err != nil {
		return err
	}
	pageDict := types.Dict{
		"Type":      types.Name("Page"),
		"MediaBox":  rectArray(mediaRect),
		"Resources": types.Dict{"Font": types.Dict{"F1": fontRef}},
		"Contents":  contentRef,
	}
	ref, err := dst.AddObject(pageDict)
	if err != nil {
		return err
	}
	return dst.AppendPage(model.Page{Ref: ref, MediaBox: mediaRect})
}

func escapePDFString(s string) string {
	var b bytes.Buffer
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', ')', '\\':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// normalizeToPDFDocEncoding transliterates s through charmap.Windows1252
// (a practical superset-compatible stand-in for PDFDocEncoding) so job
// names/usernames containing characters outside it degrade to '?' instead
// of corrupting the content stream.
func normalizeToPDFDocEncoding(s string) string {
	encoded, err := charmap.Windows1252.NewEncoder().String(s)
	if err != nil {
		return "?"
	}
	return encoded
}
