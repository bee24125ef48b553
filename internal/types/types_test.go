package types

import "testing"

func TestRectRotateMoveSwapsAxesAt90And270(t *testing.T) {
	r := NewRect(0, 0, 100, 200)
	for _, rot := range []Rotation{Rotate90, Rotate270} {
		got := r.RotateMove(rot, 100, 200)
		if got.Width() != 200 || got.Height() != 100 {
			t.Fatalf("rot %d: want 200x100, got %.0fx%.0f", rot, got.Width(), got.Height())
		}
	}
	for _, rot := range []Rotation{Rotate0, Rotate180} {
		got := r.RotateMove(rot, 100, 200)
		if got.Width() != 100 || got.Height() != 200 {
			t.Fatalf("rot %d: want 100x200, got %.0fx%.0f", rot, got.Width(), got.Height())
		}
	}
}

func TestRotationNormalize(t *testing.T) {
	cases := map[Rotation]Rotation{
		-90:  270,
		450:  90,
		0:    0,
		360:  0,
		-360: 0,
	}
	for in, want := range cases {
		if got := in.Normalize(); got != want {
			t.Errorf("Normalize(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestRectLandscapePortrait(t *testing.T) {
	if !NewRect(0, 0, 200, 100).Landscape() {
		t.Error("200x100 should be landscape")
	}
	if !NewRect(0, 0, 100, 200).Portrait() {
		t.Error("100x200 should be portrait")
	}
}

func TestStringLiteralEscaping(t *testing.T) {
	s := StringLiteral("a (b) c\\d")
	want := `(a \(b\) c\\d)`
	if got := s.PDFString(); got != want {
		t.Errorf("PDFString() = %q, want %q", got, want)
	}
}
