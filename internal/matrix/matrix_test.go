package matrix

import (
	"math"
	"testing"
)

func approxEq(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestIdentityTransformIsNoop(t *testing.T) {
	x, y := Identity.Transform(3, 4)
	if !approxEq(x, 3) || !approxEq(y, 4) {
		t.Fatalf("Identity.Transform = (%v, %v), want (3, 4)", x, y)
	}
}

func TestTranslation(t *testing.T) {
	x, y := Translation(10, -5).Transform(1, 1)
	if !approxEq(x, 11) || !approxEq(y, -4) {
		t.Fatalf("Translation.Transform = (%v, %v), want (11, -4)", x, y)
	}
}

func TestCalcRotateAndTranslateKeepsBoundingBoxInFirstQuadrant(t *testing.T) {
	w, h := 200.0, 100.0
	corners := [][2]float64{{0, 0}, {w, 0}, {w, h}, {0, h}}
	for _, rot := range []int{0, 90, 180, 270} {
		m := CalcRotateAndTranslateTransformMatrix(w, h, rot)
		minX, minY := math.Inf(1), math.Inf(1)
		for _, c := range corners {
			x, y := m.Transform(c[0], c[1])
			minX = math.Min(minX, x)
			minY = math.Min(minY, y)
		}
		if !approxEq(minX, 0) || !approxEq(minY, 0) {
			t.Errorf("rot %d: min corner = (%v, %v), want (0, 0)", rot, minX, minY)
		}
	}
}

func TestMultiplyAssociativity(t *testing.T) {
	a := Translation(5, 5)
	b := Scaling(2, 3)
	c := RotationRad(math.Pi / 4)
	left := a.Multiply(b).Multiply(c)
	right := a.Multiply(b.Multiply(c))
	x1, y1 := left.Transform(1, 1)
	x2, y2 := right.Transform(1, 1)
	if !approxEq(x1, x2) || !approxEq(y1, y2) {
		t.Fatalf("multiply not associative: (%v,%v) vs (%v,%v)", x1, y1, x2, y2)
	}
}
