// Package geomx implements the page/cell rotation-and-placement geometry
// (component C): the rotate_move family of operations that turn a source
// rectangle, a target rotation and a translation into the content-stream
// CTM that places one onto the other. Grounded on pdfcpu's
// translationForPageRotation/ContentBytesForPageRotation
// (pkg/pdfcpu/model/nup.go) and its Rectangle helpers (Landscape/Portrait/
// CroppedCopy in pkg/pdfcpu/types/types.go).
package geomx

import (
	"github.com/mechiko/cupsfilters/internal/matrix"
	"github.com/mechiko/cupsfilters/internal/types"
)

// RotateMove returns the CTM that rotates a page of size (w, h) by rot
// degrees clockwise and translates the result so its bounding box's
// lower-left corner lands at (dx, dy). This is the composition every
// page-placement call in pdftopdf/pwgtopdf goes through: rotate first
// (about the origin), then translate into position - the same order
// pdfcpu's ContentBytesForPageRotation prepends to a cell's placement
// matrix.
func RotateMove(w, h float64, rot types.Rotation, dx, dy float64) matrix.Matrix {
	m := matrix.CalcRotateAndTranslateTransformMatrix(w, h, int(rot.Normalize()))
	return m.Multiply(matrix.Translation(dx, dy))
}

// RotateMoveAxis is RotateMove restricted to a single axis translation,
// used when placing booklet signature cells that only shift along one of
// the two page axes (the "axis" cell-placement invariant spec.md's
// booklet scenario names).
func RotateMoveAxis(w, h float64, rot types.Rotation, axis Axis, d float64) matrix.Matrix {
	switch axis {
	case AxisX:
		return RotateMove(w, h, rot, d, 0)
	default:
		return RotateMove(w, h, rot, 0, d)
	}
}

// Axis selects which translation axis RotateMoveAxis applies its offset
// to.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// FitRect scales src (preserving aspect ratio) to fit entirely within
// dst, centering it, and returns the scale factor and the translated,
// scaled rectangle - the "print-scaling=fit" placement rule (spec 4.C),
// grounded on pdfcpu's BestFitRectIntoRect (pkg/pdfcpu/types/layout.go).
func FitRect(src, dst types.Rect) (scale float64, placed types.Rect) {
	sw, sh := src.Width(), src.Height()
	dw, dh := dst.Width(), dst.Height()
	if sw <= 0 || sh <= 0 {
		return 1, dst
	}
	scale = dw / sw
	if s2 := dh / sh; s2 < scale {
		scale = s2
	}
	w, h := sw*scale, sh*scale
	cx, cy := dst.Center().X, dst.Center().Y
	return scale, types.NewRect(cx-w/2, cy-h/2, cx+w/2, cy+h/2)
}

// FillRect scales src (preserving aspect ratio) to cover dst entirely,
// centering it and allowing overflow outside dst's bounds - the
// "print-scaling=fill" placement rule.
func FillRect(src, dst types.Rect) (scale float64, placed types.Rect) {
	sw, sh := src.Width(), src.Height()
	dw, dh := dst.Width(), dst.Height()
	if sw <= 0 || sh <= 0 {
		return 1, dst
	}
	scale = dw / sw
	if s2 := dh / sh; s2 > scale {
		scale = s2
	}
	w, h := sw*scale, sh*scale
	cx, cy := dst.Center().X, dst.Center().Y
	return scale, types.NewRect(cx-w/2, cy-h/2, cx+w/2, cy+h/2)
}
