package layout

import (
	"testing"

	"github.com/mechiko/cupsfilters/internal/types"
	"github.com/mechiko/cupsfilters/ipp"
	"github.com/stretchr/testify/require"
)

func TestPlan4UpCoversPageExactly(t *testing.T) {
	page := types.NewRect(0, 0, 200, 200)
	cols, rows, cells, err := Plan(page, 4, ipp.OrientationPortrait, ipp.DefaultNumberUpLayout)
	require.NoError(t, err)
	require.Equal(t, 2, cols)
	require.Equal(t, 2, rows)
	require.Len(t, cells, 4)
	for _, c := range cells {
		require.InDelta(t, 100, c.Rect.Width(), 1e-9)
		require.InDelta(t, 100, c.Rect.Height(), 1e-9)
	}
}

func TestPlanRejectsUnsupportedNumberUp(t *testing.T) {
	_, _, _, err := Plan(types.NewRect(0, 0, 10, 10), 5, ipp.OrientationPortrait, ipp.DefaultNumberUpLayout)
	require.ErrorIs(t, err, ErrUnsupportedNumberUp)
}

func TestBookletShuffleOutsideIn(t *testing.T) {
	sheets := BookletShuffle(8)
	require.Len(t, sheets, 2)
	require.Equal(t, 8, sheets[0].FrontLeft)
	require.Equal(t, 1, sheets[0].FrontRight)
	require.Equal(t, 2, sheets[0].BackLeft)
	require.Equal(t, 7, sheets[0].BackRight)
}

func TestBookletShufflePadsToMultipleOf4(t *testing.T) {
	sheets := BookletShuffle(5)
	require.Len(t, sheets, 2) // padded to 8
	require.Equal(t, 0, sheets[1].FrontLeft) // page 6 is padding
}
