package classifier

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnalyzeCentering(t *testing.T) {
	t.Run("no detections", func(t *testing.T) {
		res := AnalyzeCentering(nil, 400, 300)
		require.True(t, res.IsCentered)
		require.Equal(t, NoSubjectConfidence, res.Confidence)
	})

	t.Run("subject in the middle", func(t *testing.T) {
		res := AnalyzeCentering([]Detection{
			{ClassLabel: PersonLabel, Confidence: 0.9, BBox: BBox{X: 150, Y: 100, Width: 100, Height: 100}},
		}, 400, 300)
		require.True(t, res.IsCentered)
		require.InDelta(t, 0, res.Distance, 1e-9)
		require.Equal(t, 0.9, res.Confidence)
	})

	t.Run("largest detection is the subject", func(t *testing.T) {
		res := AnalyzeCentering([]Detection{
			{ClassLabel: PersonLabel, Confidence: 0.8, BBox: BBox{X: 180, Y: 130, Width: 40, Height: 40}},
			{ClassLabel: PersonLabel, Confidence: 0.7, BBox: BBox{X: 0, Y: 0, Width: 120, Height: 120}},
		}, 400, 300)
		// centre (60,60): dx = -140/400, dy = -90/300
		require.False(t, res.IsCentered)
		require.InDelta(t, 0.4610, res.Distance, 1e-3)
		require.Equal(t, 0.7, res.Confidence)
	})

	t.Run("invalid size", func(t *testing.T) {
		require.Equal(t, DefaultCentering, AnalyzeCentering(people(1, 0.9), 0, 100))
	})
}
