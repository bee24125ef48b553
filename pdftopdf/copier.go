package pdftopdf

import (
	"bytes"
	"fmt"

	"github.com/mechiko/cupsfilters/geomx"
	"github.com/mechiko/cupsfilters/internal/matrix"
	"github.com/mechiko/cupsfilters/internal/model"
	"github.com/mechiko/cupsfilters/internal/types"
	"github.com/mechiko/cupsfilters/ipp"
)

// buildOutputPage copies the source pages named by sheet.Cells into a
// single new output page of size mediaRect on dst, merging resources per
// mergeResources and prepending each cell's placement CTM to its content,
// following pdfcpu's NUpTilePDFBytesForPDF (pkg/pdfcpu/model/nup.go):
// wrap each cell's content in "q <CTM> cm ... Q" so cells never interfere
// with each other's graphics state. opts drives the per-cell page-copier
// knobs spec 4.I names: border drawing, mirror, and the fit/fill/none
// scaling mode.
func buildOutputPage(dst, src *model.Document, mediaRect types.Rect, sheet OutputSheet, opts *ipp.FilterOptions) (types.IndirectRef, error) {
	if sheet.MediaRect.Width() > 0 && sheet.MediaRect.Height() > 0 {
		mediaRect = sheet.MediaRect
	}
	composite := types.Dict{}
	var body bytes.Buffer

	for i, cell := range sheet.Cells {
		if cell.SourcePage == 0 {
			continue // blank booklet-padding cell
		}
		page, err := src.Page(cell.SourcePage - 1)
		if err != nil {
			return types.IndirectRef{}, err
		}
		content, err := src.ConcatContents(page)
		if err != nil {
			return types.IndirectRef{}, err
		}

		rename := mergeResources(i, page.Resources, composite)
		content = rewriteContentNames(content, rename)

		body.WriteString("q\n")
		writeBorder(&body, cell.Rect, opts.PageBorder)

		scaling := effectiveScaling(opts.PrintScaling, page.MediaBox, mediaRect)
		ctm := cellCTM(page.MediaBox, cell.Rect, cell.Rotate, scaling)
		if opts.Mirror {
			fmt.Fprintf(&body, "-1 0 0 1 %s 0 cm\n", formatNum(mediaRect.Width()))
		}
		fmt.Fprintf(&body, "%s cm\n", ctmOperands(ctm))
		body.Write(content)
		body.WriteString("\nQ\n")
	}

	contentRef, err := dst.AddStream(types.Dict{}, body.Bytes())
	if err != nil {
		return types.IndirectRef{}, err
	}

	pageDict := types.Dict{
		"Type":      types.Name("Page"),
		"MediaBox":  rectArray(mediaRect),
		"Resources": composite,
		"Contents":  contentRef,
	}
	return dst.AddObject(pageDict)
}

// effectiveScaling resolves print-scaling=auto against srcBox/mediaRect
// per DESIGN.md's Open Question decision: AUTO behaves like FIT unless
// the input page already matches the output media rect (within a point),
// in which case it behaves like NONE.
func effectiveScaling(ps ipp.PrintScaling, srcBox, mediaRect types.Rect) ipp.PrintScaling {
	if ps != ipp.ScalingAuto {
		return ps
	}
	const slop = 1.0
	if diff(srcBox.Width(), mediaRect.Width()) <= slop && diff(srcBox.Height(), mediaRect.Height()) <= slop {
		return ipp.ScalingNone
	}
	return ipp.ScalingFit
}

func diff(a, b float64) float64 {
	if a < b {
		return b - a
	}
	return a - b
}

// cellCTM returns the content transform that places a source page of
// bounds srcBox, rotated by rot, into cellRect under the given scaling
// mode (spec 4.I steps 4-6): FIT shrinks/grows to fit entirely inside the
// cell (geomx.FitRect), FILL covers the cell allowing overflow
// (geomx.FillRect), and NONE applies no scale, simply centering the
// page's own size within the cell.
func cellCTM(srcBox, cellRect types.Rect, rot types.Rotation, scaling ipp.PrintScaling) matrix.Matrix {
	rotated := srcBox.RotateMove(rot, srcBox.Width(), srcBox.Height())

	var scale float64
	var placed types.Rect
	switch scaling {
	case ipp.ScalingFill:
		scale, placed = geomx.FillRect(rotated, cellRect)
	case ipp.ScalingNone:
		scale = 1
		cx, cy := cellRect.Center().X, cellRect.Center().Y
		w, h := rotated.Width(), rotated.Height()
		placed = types.NewRect(cx-w/2, cy-h/2, cx+w/2, cy+h/2)
	default: // ipp.ScalingFit (and ScalingAuto already resolved by the caller)
		scale, placed = geomx.FitRect(rotated, cellRect)
	}

	m := matrix.CalcRotateAndTranslateTransformMatrix(srcBox.Width(), srcBox.Height(), int(rot.Normalize()))
	m = m.Multiply(matrix.Scaling(scale, scale))
	m = m.Multiply(matrix.Translation(placed.LL.X, placed.LL.Y))
	return m
}

// borderLineWidths returns the inset stroked-rectangle line widths
// page-border implies, in the order they should be drawn from outermost
// to innermost (spec 4.I step 2): "single"/"double" use a 1.0pt line,
// "single-thick"/"double-thick" use 2.0pt; "double" variants draw two
// concentric rectangles.
func borderLineWidths(border string) []float64 {
	switch border {
	case "single":
		return []float64{1.0}
	case "single-thick":
		return []float64{2.0}
	case "double":
		return []float64{1.0, 1.0}
	case "double-thick":
		return []float64{2.0, 2.0}
	default:
		return nil
	}
}

// writeBorder appends the stroked border rectangle(s) page-border
// describes, inset 2.25pt from cellRect for the first rectangle and a
// further lineWidth*2+2.25pt for each subsequent one, matching "inset by
// 2.25 or wider" (spec 4.I step 2).
func writeBorder(body *bytes.Buffer, cellRect types.Rect, border string) {
	widths := borderLineWidths(border)
	inset := 2.25
	for _, lw := range widths {
		r := cellRect.Inset(inset)
		fmt.Fprintf(body, "q\n%s w\n%s %s %s %s re\nS\nQ\n",
			formatNum(lw), formatNum(r.LL.X), formatNum(r.LL.Y), formatNum(r.Width()), formatNum(r.Height()))
		inset += lw*2 + 2.25
	}
}

func formatNum(v float64) string {
	return fmt.Sprintf("%.6f", v)
}

func ctmOperands(m matrix.Matrix) string {
	return fmt.Sprintf("%.6f %.6f %.6f %.6f %.6f %.6f", m[0][0], m[0][1], m[1][0], m[1][1], m[2][0], m[2][1])
}

func rectArray(r types.Rect) types.Array {
	return types.Array{
		types.Float(r.LL.X), types.Float(r.LL.Y),
		types.Float(r.UR.X), types.Float(r.UR.Y),
	}
}
