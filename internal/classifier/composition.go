package classifier

import "math"

// CenterThreshold is the normalized distance between the main subject and the
// image centre under which a photo counts as centered.
const CenterThreshold = 0.25

// CenterResult describes where the main subject sits in the frame.
type CenterResult struct {
	IsCentered bool    `json:"is_centered"`
	Distance   float64 `json:"distance"`
	Confidence float64 `json:"confidence"`
}

// AnalyzeCentering takes the largest detection as the main subject and
// measures its distance from the image centre, with each axis normalized by
// the image size.
func AnalyzeCentering(detections []Detection, width, height int) (res CenterResult) {
	defer func() {
		if r := recover(); r != nil {
			res = DefaultCentering
		}
	}()

	if width <= 0 || height <= 0 {
		return DefaultCentering
	}

	main, ok := largestDetection(detections)
	if !ok {
		return CenterResult{
			IsCentered: DefaultIsCentered,
			Distance:   DefaultCenterDistance,
			Confidence: NoSubjectConfidence,
		}
	}

	c := main.BBox.Center()
	dx := (c.X - float64(width)/2) / float64(width)
	dy := (c.Y - float64(height)/2) / float64(height)
	dist := math.Sqrt(dx*dx + dy*dy)

	return CenterResult{
		IsCentered: dist < CenterThreshold,
		Distance:   dist,
		Confidence: main.Confidence,
	}
}

func largestDetection(detections []Detection) (Detection, bool) {
	var best Detection
	found := false
	for _, d := range detections {
		if d.BBox.Area() <= 0 {
			continue
		}
		if !found || d.BBox.Area() > best.BBox.Area() {
			best = d
			found = true
		}
	}
	return best, found
}
