package ipp

import "github.com/pkg/errors"

// Axis is a single cell-filling direction.
type Axis int

const (
	AxisRight Axis = iota
	AxisLeft
	AxisDown
	AxisUp
)

// NumberUpLayout is the parsed form of IPP's "number-up-layout" keyword
// (e.g. "lrtb", "tbrl"): a primary axis (how cells fill within a row/
// column) and a secondary axis (how rows/columns stack), recovered from
// cupsfilters/ipp-options.c's _cfIPPAttrToNumberUpLayout - the distilled
// spec only says "parsed as two two-character directives"; the original
// source is what pins down that the FIRST directive names the primary
// (faster-varying) axis.
type NumberUpLayout struct {
	Primary   Axis
	Secondary Axis
}

// DefaultNumberUpLayout is "lrtb": left-to-right, then top-to-bottom.
var DefaultNumberUpLayout = NumberUpLayout{Primary: AxisRight, Secondary: AxisDown}

// ParseNumberUpLayout parses a 4-character keyword like "lrtb", "tbrl",
// "btlr", "rlbt" into a NumberUpLayout.
func ParseNumberUpLayout(v string) (NumberUpLayout, error) {
	if len(v) != 4 {
		return NumberUpLayout{}, errors.Errorf("ipp: number-up-layout %q must be 4 characters", v)
	}
	primary, err := axisPairFromChars(v[0], v[1])
	if err != nil {
		return NumberUpLayout{}, err
	}
	secondary, err := axisPairFromChars(v[2], v[3])
	if err != nil {
		return NumberUpLayout{}, err
	}
	return NumberUpLayout{Primary: primary, Secondary: secondary}, nil
}

// axisPairFromChars turns a 2-character directive ("lr", "rl", "tb",
// "bt") into the Axis it names (the first character is the "from"
// endpoint and is discarded; the direction is what number-up cell
// placement actually needs).
func axisPairFromChars(from, to byte) (Axis, error) {
	switch {
	case from == 'l' && to == 'r':
		return AxisRight, nil
	case from == 'r' && to == 'l':
		return AxisLeft, nil
	case from == 't' && to == 'b':
		return AxisDown, nil
	case from == 'b' && to == 't':
		return AxisUp, nil
	}
	return 0, errors.Errorf("ipp: invalid number-up-layout directive %q", string([]byte{from, to}))
}
