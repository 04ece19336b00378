package classifier

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsBothEyesClosed(t *testing.T) {
	tp := FaceMesh

	tests := []struct {
		name   string
		face   func() Face
		closed bool
	}{
		{
			name:   "open eyes",
			face:   frontalFace,
			closed: false,
		},
		{
			name: "both eyes closed",
			face: func() Face {
				f := frontalFace()
				closeEye(&f, tp.RightEyeTop, tp.RightEyeBottom)
				closeEye(&f, tp.LeftEyeTop, tp.LeftEyeBottom)
				return f
			},
			closed: true,
		},
		{
			name: "one eye closed",
			face: func() Face {
				f := frontalFace()
				closeEye(&f, tp.RightEyeTop, tp.RightEyeBottom)
				return f
			},
			closed: false,
		},
		{
			name: "closed eye with missing lid point counts as open",
			face: func() Face {
				f := frontalFace()
				closeEye(&f, tp.RightEyeTop, tp.RightEyeBottom)
				closeEye(&f, tp.LeftEyeTop, tp.LeftEyeBottom)
				remove(&f, tp.LeftEyeTop)
				return f
			},
			closed: false,
		},
		{
			name: "collapsed corners are indeterminate",
			face: func() Face {
				f := frontalFace()
				closeEye(&f, tp.RightEyeTop, tp.RightEyeBottom)
				closeEye(&f, tp.LeftEyeTop, tp.LeftEyeBottom)
				p, _ := f.At(tp.RightEyeOuter)
				f.Set(tp.RightEyeInner, p)
				return f
			},
			closed: false,
		},
		{
			name:   "no landmarks",
			face:   func() Face { return NewFace(tp.Size) },
			closed: false,
		},
		{
			name:   "empty face",
			face:   func() Face { return Face{} },
			closed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.closed, IsBothEyesClosed(tt.face()))
		})
	}
}

func TestEyeAnalyzeReportsRatios(t *testing.T) {
	state := NewEyeAnalyzer(FaceMesh).Analyze(frontalFace())
	require.InDelta(t, 0.4, state.LeftEAR, 1e-9)
	require.InDelta(t, 0.4, state.RightEAR, 1e-9)
	require.False(t, state.Closed)

	state = NewEyeAnalyzer(FaceMesh).Analyze(NewFace(FaceMesh.Size))
	require.Equal(t, openEAR, state.LeftEAR)
	require.Equal(t, openEAR, state.RightEAR)
}

func TestEyeThresholdIsConfigurable(t *testing.T) {
	a := NewEyeAnalyzer(FaceMesh)
	a.Threshold = 0.5
	require.True(t, a.IsBothEyesClosed(frontalFace()))
}
