package geomx

import (
	"testing"

	"github.com/mechiko/cupsfilters/internal/types"
	"github.com/stretchr/testify/require"
)

func TestFitRectPreservesAspectAndCenters(t *testing.T) {
	src := types.NewRect(0, 0, 100, 50) // 2:1
	dst := types.NewRect(0, 0, 100, 100)
	scale, placed := FitRect(src, dst)
	require.InDelta(t, 1.0, scale, 1e-9)
	require.InDelta(t, 100, placed.Width(), 1e-9)
	require.InDelta(t, 50, placed.Height(), 1e-9)
	require.InDelta(t, 25, placed.LL.Y, 1e-9)
}

func TestFillRectCoversDestination(t *testing.T) {
	src := types.NewRect(0, 0, 100, 50)
	dst := types.NewRect(0, 0, 100, 100)
	scale, placed := FillRect(src, dst)
	require.InDelta(t, 2.0, scale, 1e-9)
	require.GreaterOrEqual(t, placed.Width(), dst.Width())
	require.GreaterOrEqual(t, placed.Height(), dst.Height())
}

func TestRotateMoveSwapsDimensionsAt90(t *testing.T) {
	m := RotateMove(200, 100, types.Rotate90, 0, 0)
	x, y := m.Transform(200, 0)
	require.InDelta(t, 0, x, 1e-6)
	require.InDelta(t, 0, y, 1e-6)
}
