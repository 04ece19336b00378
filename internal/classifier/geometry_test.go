package classifier

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	require.Equal(t, 5.0, Distance(Point{X: 0, Y: 0}, Point{X: 3, Y: 4}))
	require.Equal(t, 0.0, Distance(Point{X: 2, Y: 2}, Point{X: 2, Y: 2}))
}

func TestRatio(t *testing.T) {
	v, ok := Ratio(1, 4)
	require.True(t, ok)
	require.Equal(t, 0.25, v)

	_, ok = Ratio(1, 0)
	require.False(t, ok)

	_, ok = Ratio(math.NaN(), 1)
	require.False(t, ok)
}

func TestBoundingBoxOf(t *testing.T) {
	f := NewFace(4)
	f.Set(0, Point{X: 10, Y: 40})
	f.Set(2, Point{X: 30, Y: 20})

	box, ok := BoundingBoxOf(f, []AnatomicalPoint{0, 1, 2, 9})
	require.True(t, ok)
	require.Equal(t, Box{MinX: 10, MaxX: 30, MinY: 20, MaxY: 40}, box)
	require.False(t, box.Degenerate())

	_, ok = BoundingBoxOf(f, []AnatomicalPoint{1, 3})
	require.False(t, ok)

	box, ok = BoundingBoxOf(f, []AnatomicalPoint{0})
	require.True(t, ok)
	require.True(t, box.Degenerate())
}

func TestWeightedCenter(t *testing.T) {
	f := NewFace(3)
	f.Set(0, Point{X: 0, Y: 0})
	f.Set(1, Point{X: 10, Y: 0})
	f.Set(2, Point{X: 20, Y: 10})

	c, ok := WeightedCenter(f, []AnatomicalPoint{0, 1, 2}, nil)
	require.True(t, ok)
	require.InDelta(t, 10, c.X, 1e-9)
	require.InDelta(t, 10.0/3, c.Y, 1e-9)

	// (0 + 10 + 3*20) / 5
	c, ok = WeightedCenter(f, []AnatomicalPoint{0, 1, 2}, []AnatomicalPoint{2})
	require.True(t, ok)
	require.InDelta(t, 14, c.X, 1e-9)
	require.InDelta(t, 6, c.Y, 1e-9)

	_, ok = WeightedCenter(NewFace(3), []AnatomicalPoint{0, 1, 2}, nil)
	require.False(t, ok)
}

func TestPointValid(t *testing.T) {
	require.True(t, Point{X: 1, Y: 2}.Valid())
	require.False(t, missingPoint.Valid())
	require.False(t, Point{X: math.Inf(1), Y: 0}.Valid())
}
