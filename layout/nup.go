// Package layout implements the N-up grid layout engine and booklet page
// shuffle (component D), grounded on pdfcpu's model.RectsForGrid
// (pkg/pdfcpu/model/nup.go) for the grid/cell-ordering tables and
// pdfcpu's sortedSelectedPagesBooklet (pkg/pdfcpu/booklet.go) for the
// booklet signature shuffle.
package layout

import (
	"sort"

	"github.com/mechiko/cupsfilters/internal/types"
	"github.com/mechiko/cupsfilters/ipp"
	"github.com/pkg/errors"
)

// ErrUnsupportedNumberUp is returned for a number-up value outside the
// supported grid set.
var ErrUnsupportedNumberUp = errors.New("layout: unsupported number-up value")

// gridDims maps a supported number-up value to its (columns, rows), per
// spec 4.D's authoritative cols/rows table (the same shape pdfcpu's
// nUpDims keys off of, but pinned to the spec's own column values).
var gridDims = map[int][2]int{
	1: {1, 1}, 2: {1, 2}, 3: {1, 3}, 4: {2, 2}, 6: {2, 3}, 8: {2, 4},
	9: {3, 3}, 10: {2, 5}, 12: {3, 4}, 15: {3, 5}, 16: {4, 4},
}

// Cell is one grid position in an N-up layout: the rectangle (in the
// output page's coordinate space) a source page is placed into, and the
// rotation to apply before placement.
type Cell struct {
	Rect   types.Rect
	Rotate types.Rotation
}

// Plan lays numberUp cells out across pageRect, in the cell-visiting order
// numberUpLayout implies, and returns (columns, rows, cells). cells[i] is
// where the i'th selected source page goes. orientation sets only each
// cell's content rotation; it does not change the visiting order or the
// grid's column/row counts.
func Plan(pageRect types.Rect, numberUp int, orientation ipp.ImageOrientation, nul ipp.NumberUpLayout) (cols, rows int, cells []Cell, err error) {
	dims, ok := gridDims[numberUp]
	if !ok {
		return 0, 0, nil, errors.Wrapf(ErrUnsupportedNumberUp, "%d", numberUp)
	}
	cols, rows = dims[0], dims[1]

	cellW := pageRect.Width() / float64(cols)
	cellH := pageRect.Height() / float64(rows)

	// Build the (col, row) grid positions in the traversal order implied
	// by the layout's primary/secondary axes: primary axis varies
	// fastest, matching pdfcpu's RectsForGrid ordering for its four
	// orientation modes (RightDown/DownRight/LeftDown/DownLeft).
	type pos struct{ col, row int }
	var order []pos
	if nul.Primary == ipp.AxisRight || nul.Primary == ipp.AxisLeft {
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				order = append(order, pos{c, r})
			}
		}
	} else {
		for c := 0; c < cols; c++ {
			for r := 0; r < rows; r++ {
				order = append(order, pos{c, r})
			}
		}
	}

	cells = make([]Cell, 0, len(order))
	for _, p := range order {
		col, row := p.col, p.row
		if nul.Primary == ipp.AxisLeft {
			col = cols - 1 - col
		}
		if nul.Secondary == ipp.AxisUp {
			row = rows - 1 - row
		}
		llx := pageRect.LL.X + float64(col)*cellW
		// Row 0 is the topmost row in visiting order but PDF's y axis
		// grows upward, so row index counts down from the top.
		ury := pageRect.UR.Y - float64(row)*cellH
		rect := types.NewRect(llx, ury-cellH, llx+cellW, ury)
		rotate := cellRotationForOrientation(orientation)
		cells = append(cells, Cell{Rect: rect, Rotate: rotate})
	}
	return cols, rows, cells, nil
}

// cellRotationForOrientation returns the per-cell content rotation
// orientation-requested implies: landscape/reverse-landscape content is
// rotated 90/270 degrees to fill a portrait cell, matching pdfcpu's
// translationForPageRotation table.
func cellRotationForOrientation(o ipp.ImageOrientation) types.Rotation {
	switch o {
	case ipp.OrientationLandscape:
		return types.Rotate90
	case ipp.OrientationReverseLandscape:
		return types.Rotate270
	case ipp.OrientationReversePortrait:
		return types.Rotate180
	default:
		return types.Rotate0
	}
}

// sortedGridSizes returns gridDims' keys (the supported number-up values)
// in ascending order.
func sortedGridSizes() []int {
	out := make([]int, 0, len(gridDims))
	for k := range gridDims {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
