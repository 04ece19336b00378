package classifier

const (
	PersonLabel = "person"

	// PersonConfidence is the minimum, exclusive, detector confidence for a
	// person to be counted.
	PersonConfidence = 0.5

	// GroupSize is the number of confident people that makes a group photo.
	GroupSize = 4
)

// BBox is an object's bounding box in image pixels.
type BBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (b BBox) Area() float64 {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	return b.Width * b.Height
}

func (b BBox) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Detection is one object reported by an object detector.
type Detection struct {
	ClassLabel string  `json:"class"`
	Confidence float64 `json:"confidence"`
	BBox       BBox    `json:"bbox"`
}

// CountPeople counts person detections above PersonConfidence. Overlapping
// boxes are not merged; the detector's instance count is taken as-is.
func CountPeople(detections []Detection) int {
	n := 0
	for _, d := range detections {
		if d.ClassLabel == PersonLabel && d.Confidence > PersonConfidence {
			n++
		}
	}
	return n
}

func IsGroupPhoto(detections []Detection) bool {
	return CountPeople(detections) >= GroupSize
}
