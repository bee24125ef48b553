package layout

// BookletSheet describes one physical sheet of a saddle-stitch booklet:
// the 1-based source page numbers placed in each cell of the front and
// back sides (2-up: left/right; or 4-up: combined with a second fold),
// plus a per-cell 180-degree rotation flag for cells that need to be
// upside-down relative to the sheet's "up" direction once folded. Zero
// means "blank" (used to pad the last signature).
type BookletSheet struct {
	FrontLeft, FrontRight   int
	BackLeft, BackRight     int
	RotateBackLeft          bool
	RotateBackRight         bool
}

// BookletShuffle computes the sheet order for a saddle-stitch booklet of
// numPages source pages, in 2-up-per-side layout. This mirrors pdfcpu's
// sortedSelectedPagesBooklet (pkg/pdfcpu/booklet.go): pages are padded up
// to a multiple of 4 (blank trailing pages), then imposed sheet by sheet
// from the outside in - sheet 0's front holds the very first and very
// last page, its back holds the second and second-to-last, and so on.
func BookletShuffle(numPages int) []BookletSheet {
	padded := numPages
	if rem := padded % 4; rem != 0 {
		padded += 4 - rem
	}
	numSheets := padded / 4
	sheets := make([]BookletSheet, numSheets)
	for i := 0; i < numSheets; i++ {
		front := 2*i + 1
		frontOpp := padded - 2*i
		back := 2*i + 2
		backOpp := padded - 2*i - 1
		sheets[i] = BookletSheet{
			FrontLeft:  blankIfOutOfRange(frontOpp, numPages),
			FrontRight: blankIfOutOfRange(front, numPages),
			BackLeft:   blankIfOutOfRange(back, numPages),
			BackRight:  blankIfOutOfRange(backOpp, numPages),
		}
	}
	return sheets
}

func blankIfOutOfRange(page, numPages int) int {
	if page < 1 || page > numPages {
		return 0
	}
	return page
}
