package classifier

// EARThreshold is the eye aspect ratio below which an eye counts as closed.
const EARThreshold = 0.21

// openEAR is reported for an eye whose landmarks cannot be measured.
const openEAR = 1.0

// EyeState holds the per-eye aspect ratios behind a closed-eyes decision.
type EyeState struct {
	LeftEAR  float64 `json:"left_ear"`
	RightEAR float64 `json:"right_ear"`
	Closed   bool    `json:"closed"`
}

// EyeAnalyzer decides whether a face has both eyes closed.
type EyeAnalyzer struct {
	Topology  Topology
	Threshold float64
}

func NewEyeAnalyzer(topology Topology) *EyeAnalyzer {
	return &EyeAnalyzer{Topology: topology, Threshold: EARThreshold}
}

// IsBothEyesClosed reports whether both eyes of face are closed, using the
// face-mesh topology.
func IsBothEyesClosed(face Face) bool {
	return NewEyeAnalyzer(FaceMesh).IsBothEyesClosed(face)
}

func (a *EyeAnalyzer) IsBothEyesClosed(face Face) (closed bool) {
	defer func() {
		if r := recover(); r != nil {
			closed = DefaultHasClosedEyes
		}
	}()
	return a.Analyze(face).Closed
}

// Analyze measures both eyes. An eye that cannot be measured is open.
func (a *EyeAnalyzer) Analyze(face Face) EyeState {
	t := a.Topology
	right := eyeAspectRatio(face, t.RightEyeTop, t.RightEyeBottom, t.RightEyeInner, t.RightEyeOuter)
	left := eyeAspectRatio(face, t.LeftEyeTop, t.LeftEyeBottom, t.LeftEyeInner, t.LeftEyeOuter)

	return EyeState{
		LeftEAR:  left,
		RightEAR: right,
		Closed:   left < a.Threshold && right < a.Threshold,
	}
}

// eyeAspectRatio is the lid gap divided by the corner-to-corner width.
func eyeAspectRatio(face Face, top, bottom, inner, outer AnatomicalPoint) float64 {
	pTop, ok1 := face.At(top)
	pBottom, ok2 := face.At(bottom)
	pInner, ok3 := face.At(inner)
	pOuter, ok4 := face.At(outer)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return openEAR
	}

	ear, ok := Ratio(Distance(pTop, pBottom), Distance(pInner, pOuter))
	if !ok {
		return openEAR
	}
	return ear
}
