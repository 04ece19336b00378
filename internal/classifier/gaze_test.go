package classifier

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrontalFaceLooksAtCamera(t *testing.T) {
	report := AnalyzeGaze(frontalFace())

	require.Equal(t, 0, report.Score)
	require.False(t, report.LookingAway)
	require.True(t, report.Yaw.Measured)
	require.InDelta(t, 0, report.Yaw.Value, 1e-9)
	require.True(t, report.Iris.Measured)
	require.InDelta(t, 0, report.Iris.Value, 1e-9)
	require.True(t, report.Asymmetry.Measured)
	require.InDelta(t, 0, report.Asymmetry.Value, 1e-9)
	require.True(t, report.Nose.Measured)
	require.True(t, report.Visibility.Measured)
}

func TestGazeSignals(t *testing.T) {
	tp := FaceMesh

	tests := []struct {
		name      string
		mutate    func(f *Face)
		score     int
		away      bool
		triggered func(r GazeReport) bool
	}{
		{
			name:      "head turn alone reaches threshold",
			mutate:    turnHead,
			score:     YawWeight,
			away:      true,
			triggered: func(r GazeReport) bool { return r.Yaw.Triggered },
		},
		{
			name:      "sideways eyes alone stay below threshold",
			mutate:    lookSideways,
			score:     IrisWeight,
			away:      false,
			triggered: func(r GazeReport) bool { return r.Iris.Triggered },
		},
		{
			name:      "asymmetry alone stays below threshold",
			mutate:    foreshortenRight,
			score:     AsymmetryWeight,
			away:      false,
			triggered: func(r GazeReport) bool { return r.Asymmetry.Triggered },
		},
		{
			name:      "nose direction alone stays below threshold",
			mutate:    pointNose,
			score:     NoseWeight,
			away:      false,
			triggered: func(r GazeReport) bool { return r.Nose.Triggered },
		},
		{
			name: "eye visibility imbalance alone stays below threshold",
			mutate: func(f *Face) {
				c := tp.LeftEyeContour
				remove(f, c[1], c[2], c[3], c[5], c[6], c[7])
			},
			score:     VisibilityWeight,
			away:      false,
			triggered: func(r GazeReport) bool { return r.Visibility.Triggered },
		},
		{
			name: "head turn and sideways eyes",
			mutate: func(f *Face) {
				turnHead(f)
				lookSideways(f)
			},
			score:     YawWeight + IrisWeight,
			away:      true,
			triggered: func(r GazeReport) bool { return r.Yaw.Triggered && r.Iris.Triggered },
		},
		{
			name: "asymmetry and nose add up to threshold",
			mutate: func(f *Face) {
				foreshortenRight(f)
				pointNose(f)
			},
			score:     AsymmetryWeight + NoseWeight,
			away:      true,
			triggered: func(r GazeReport) bool { return r.Asymmetry.Triggered && r.Nose.Triggered },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := clone(frontalFace())
			tt.mutate(&f)

			report := AnalyzeGaze(f)
			require.Equal(t, tt.score, report.Score)
			require.Equal(t, tt.away, report.LookingAway)
			require.True(t, tt.triggered(report))
			require.Equal(t, tt.away, IsLookingAway(f))
		})
	}
}

func TestYawKeepsLargerEstimate(t *testing.T) {
	f := frontalFace()
	turnHead(&f)

	report := AnalyzeGaze(f)
	// ears: offset 40/200 -> asin(0.4); cheeks: offset 40/140 -> asin(0.571)
	require.InDelta(t, 34.85, report.Yaw.Value, 0.01)
	require.True(t, report.Profile)
}

func TestYawFallsBackToCheeks(t *testing.T) {
	tp := FaceMesh
	f := frontalFace()
	turnHead(&f)
	remove(&f, tp.RightEar)

	report := AnalyzeGaze(f)
	require.True(t, report.Yaw.Measured)
	require.True(t, report.Yaw.Triggered)
}

func TestGazeSignalsFailSafe(t *testing.T) {
	tp := FaceMesh

	t.Run("no landmarks", func(t *testing.T) {
		report := AnalyzeGaze(NewFace(tp.Size))
		require.Equal(t, 0, report.Score)
		require.False(t, report.Yaw.Measured)
		require.False(t, report.Iris.Measured)
		require.False(t, report.Asymmetry.Measured)
		require.False(t, report.Nose.Measured)
		require.False(t, IsLookingAway(NewFace(tp.Size)))
	})

	t.Run("missing nose tip", func(t *testing.T) {
		f := frontalFace()
		turnHead(&f)
		remove(&f, tp.NoseTip)

		report := AnalyzeGaze(f)
		require.False(t, report.Yaw.Measured)
		require.False(t, report.Asymmetry.Measured)
		require.False(t, report.Nose.Measured)
		require.False(t, report.LookingAway)
	})

	t.Run("degenerate eye boxes", func(t *testing.T) {
		f := frontalFace()
		for _, idx := range append(append([]AnatomicalPoint{}, tp.RightEyeContour...), tp.LeftEyeContour...) {
			f.Set(idx, Point{X: 150, Y: 200})
		}

		report := AnalyzeGaze(f)
		require.False(t, report.Iris.Measured)
		require.Equal(t, 0, report.Iris.score())
	})

	t.Run("coincident ears and cheeks", func(t *testing.T) {
		f := frontalFace()
		f.Set(tp.LeftEar, Point{X: 100, Y: 220})
		f.Set(tp.LeftCheek, Point{X: 130, Y: 260})

		report := AnalyzeGaze(f)
		require.False(t, report.Yaw.Measured)
		require.Equal(t, 0, report.Score)
	})
}
