package classifier

import "math"

// Gaze heuristics. The ensemble is not calibrated: each constant below was
// chosen once and is kept consistent across the analyzers.
const (
	GazeScoreThreshold = 3

	YawWeight        = 3
	IrisWeight       = 2
	AsymmetryWeight  = 2
	NoseWeight       = 1
	VisibilityWeight = 1

	// TurnedYawDegrees is a significant head turn; ProfileYawDegrees is a
	// profile shot. Either one counts as looking away.
	TurnedYawDegrees  = 15.0
	ProfileYawDegrees = 25.0

	// IrisDeviationThreshold is the distance of the pupil estimate from the
	// middle of its eye box, as a fraction of the box width.
	IrisDeviationThreshold = 0.15

	// AsymmetryThreshold is the relative difference between the mean
	// jaw-to-nose distances of both face halves.
	AsymmetryThreshold = 0.25

	// NoseOffsetThreshold is the nose-tip offset from the nostril midpoint as a
	// fraction of nostril width.
	NoseOffsetThreshold = 0.3

	// VisibilityImbalanceThreshold is the difference between the detected
	// fractions of both eye contours.
	VisibilityImbalanceThreshold = 0.3
)

// Signal is one vote of the gaze ensemble. Measured is false when the
// landmarks it needs were missing or its ratio was indeterminate.
type Signal struct {
	Measured  bool    `json:"measured"`
	Value     float64 `json:"value"`
	Triggered bool    `json:"triggered"`
	Weight    int     `json:"weight"`
}

func (s Signal) score() int {
	if s.Measured && s.Triggered {
		return s.Weight
	}
	return 0
}

// GazeReport breaks an IsLookingAway decision down by signal.
type GazeReport struct {
	Yaw         Signal `json:"yaw"`
	Profile     bool   `json:"profile"`
	Iris        Signal `json:"iris"`
	Asymmetry   Signal `json:"asymmetry"`
	Nose        Signal `json:"nose"`
	Visibility  Signal `json:"visibility"`
	Score       int    `json:"score"`
	LookingAway bool   `json:"looking_away"`
}

// GazeAnalyzer combines head pose and eye cues into a looking-away vote.
type GazeAnalyzer struct {
	Topology  Topology
	Threshold int
}

func NewGazeAnalyzer(topology Topology) *GazeAnalyzer {
	return &GazeAnalyzer{Topology: topology, Threshold: GazeScoreThreshold}
}

// IsLookingAway reports whether face is turned away from the camera, using the
// face-mesh topology.
func IsLookingAway(face Face) bool {
	return NewGazeAnalyzer(FaceMesh).IsLookingAway(face)
}

// AnalyzeGaze returns every gaze signal for face using the face-mesh topology.
func AnalyzeGaze(face Face) GazeReport {
	return NewGazeAnalyzer(FaceMesh).Analyze(face)
}

func (a *GazeAnalyzer) IsLookingAway(face Face) (away bool) {
	defer func() {
		if r := recover(); r != nil {
			away = DefaultNotLookingAtCamera
		}
	}()
	return a.Analyze(face).LookingAway
}

// Analyze computes every signal independently and sums their weights.
func (a *GazeAnalyzer) Analyze(face Face) GazeReport {
	var report GazeReport

	report.Yaw, report.Profile = a.yawSignal(face)
	report.Iris = a.irisSignal(face)
	report.Asymmetry = a.asymmetrySignal(face)
	report.Nose = a.noseSignal(face)
	report.Visibility = a.visibilitySignal(face)

	for _, s := range []Signal{report.Yaw, report.Iris, report.Asymmetry, report.Nose, report.Visibility} {
		report.Score += s.score()
	}
	report.LookingAway = report.Score >= a.Threshold
	return report
}

func (a *GazeAnalyzer) yawSignal(face Face) (Signal, bool) {
	t := a.Topology
	s := Signal{Weight: YawWeight}

	nose, ok := face.At(t.NoseTip)
	if !ok {
		return s, false
	}

	best := math.Inf(-1)
	for _, pair := range [][2]AnatomicalPoint{{t.RightEar, t.LeftEar}, {t.RightCheek, t.LeftCheek}} {
		if angle, ok := yawDegrees(face, nose, pair[0], pair[1]); ok {
			best = math.Max(best, angle)
		}
	}
	if math.IsInf(best, -1) {
		return s, false
	}

	s.Measured = true
	s.Value = best
	s.Triggered = best > TurnedYawDegrees
	return s, best > ProfileYawDegrees
}

// yawDegrees turns the nose offset from the midpoint of two lateral landmarks
// into a pseudo-angle. An offset of half the span means a full profile.
func yawDegrees(face Face, nose Point, right, left AnatomicalPoint) (float64, bool) {
	r, ok1 := face.At(right)
	l, ok2 := face.At(left)
	if !ok1 || !ok2 {
		return 0, false
	}
	mid := Midpoint(r, l)
	offset, ok := Ratio(nose.X-mid.X, math.Abs(l.X-r.X))
	if !ok {
		return 0, false
	}
	return math.Abs(math.Asin(clamp(2*offset, -1, 1)) * 180 / math.Pi), true
}

func (a *GazeAnalyzer) irisSignal(face Face) Signal {
	t := a.Topology
	s := Signal{Weight: IrisWeight}

	eyes := []struct {
		contour  []AnatomicalPoint
		weighted []AnatomicalPoint
	}{
		{t.RightEyeContour, []AnatomicalPoint{t.RightEyeTop, t.RightEyeBottom}},
		{t.LeftEyeContour, []AnatomicalPoint{t.LeftEyeTop, t.LeftEyeBottom}},
	}

	for _, eye := range eyes {
		box, ok := BoundingBoxOf(face, eye.contour)
		if !ok || box.Degenerate() {
			continue
		}
		center, ok := WeightedCenter(face, eye.contour, eye.weighted)
		if !ok {
			continue
		}
		pos, ok := Ratio(center.X-box.MinX, box.Width())
		if !ok {
			continue
		}
		deviation := math.Abs(pos - 0.5)
		if !s.Measured || deviation > s.Value {
			s.Value = deviation
		}
		s.Measured = true
	}

	s.Triggered = s.Measured && s.Value > IrisDeviationThreshold
	return s
}

func (a *GazeAnalyzer) asymmetrySignal(face Face) Signal {
	t := a.Topology
	s := Signal{Weight: AsymmetryWeight}

	nose, ok := face.At(t.NoseTip)
	if !ok {
		return s
	}
	right, ok1 := meanDistance(face, nose, t.RightJaw)
	left, ok2 := meanDistance(face, nose, t.LeftJaw)
	if !ok1 || !ok2 {
		return s
	}
	diff, ok := Ratio(math.Abs(left-right), math.Max(left, right))
	if !ok {
		return s
	}

	s.Measured = true
	s.Value = diff
	s.Triggered = diff > AsymmetryThreshold
	return s
}

func (a *GazeAnalyzer) noseSignal(face Face) Signal {
	t := a.Topology
	s := Signal{Weight: NoseWeight}

	nose, ok1 := face.At(t.NoseTip)
	right, ok2 := face.At(t.RightNostril)
	left, ok3 := face.At(t.LeftNostril)
	if !ok1 || !ok2 || !ok3 {
		return s
	}
	mid := Midpoint(right, left)
	offset, ok := Ratio(math.Abs(nose.X-mid.X), math.Abs(left.X-right.X))
	if !ok {
		return s
	}

	s.Measured = true
	s.Value = offset
	s.Triggered = offset > NoseOffsetThreshold
	return s
}

func (a *GazeAnalyzer) visibilitySignal(face Face) Signal {
	t := a.Topology
	s := Signal{Weight: VisibilityWeight}

	if len(t.RightEyeContour) == 0 || len(t.LeftEyeContour) == 0 {
		return s
	}
	right := face.presentFraction(t.RightEyeContour)
	left := face.presentFraction(t.LeftEyeContour)

	s.Measured = true
	s.Value = math.Abs(left - right)
	s.Triggered = s.Value > VisibilityImbalanceThreshold
	return s
}
