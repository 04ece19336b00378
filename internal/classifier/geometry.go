package classifier

import "math"

// Point is a landmark position in image pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Valid reports whether both coordinates are finite numbers.
func (p Point) Valid() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// missingPoint marks a landmark the detector did not report.
var missingPoint = Point{X: math.NaN(), Y: math.NaN()}

// Box is an axis-aligned extent over a set of landmarks.
type Box struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

func (b Box) Width() float64 {
	return b.MaxX - b.MinX
}

func (b Box) Height() float64 {
	return b.MaxY - b.MinY
}

// Degenerate reports a box that cannot be used as a normalization denominator.
func (b Box) Degenerate() bool {
	return b.Width() <= epsilon || b.Height() <= epsilon
}

const epsilon = 1e-9

// Distance returns the Euclidean distance between two points.
func Distance(p1, p2 Point) float64 {
	dx := p1.X - p2.X
	dy := p1.Y - p2.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// Ratio divides num by den. ok is false when den is too close to zero, in
// which case the ratio is indeterminate and must not be voted on.
func Ratio(num, den float64) (float64, bool) {
	if math.Abs(den) <= epsilon || math.IsNaN(num) || math.IsNaN(den) {
		return 0, false
	}
	return num / den, true
}

// BoundingBoxOf returns the extent of the named landmarks that are present.
// ok is false when none of them are.
func BoundingBoxOf(face Face, indices []AnatomicalPoint) (Box, bool) {
	box := Box{
		MinX: math.Inf(1), MaxX: math.Inf(-1),
		MinY: math.Inf(1), MaxY: math.Inf(-1),
	}
	found := 0
	for _, idx := range indices {
		p, ok := face.At(idx)
		if !ok {
			continue
		}
		found++
		box.MinX = math.Min(box.MinX, p.X)
		box.MaxX = math.Max(box.MaxX, p.X)
		box.MinY = math.Min(box.MinY, p.Y)
		box.MaxY = math.Max(box.MaxY, p.Y)
	}
	if found == 0 {
		return Box{}, false
	}
	return box, true
}

// WeightedCenter averages the present landmarks in indices, counting those
// also listed in weighted three times. It stabilizes a pupil estimate on a
// mesh without dedicated iris points.
func WeightedCenter(face Face, indices []AnatomicalPoint, weighted []AnatomicalPoint) (Point, bool) {
	heavy := make(map[AnatomicalPoint]struct{}, len(weighted))
	for _, idx := range weighted {
		heavy[idx] = struct{}{}
	}

	var sumX, sumY, total float64
	for _, idx := range indices {
		p, ok := face.At(idx)
		if !ok {
			continue
		}
		w := 1.0
		if _, isHeavy := heavy[idx]; isHeavy {
			w = 3
		}
		sumX += p.X * w
		sumY += p.Y * w
		total += w
	}
	if total == 0 {
		return Point{}, false
	}
	return Point{X: sumX / total, Y: sumY / total}, true
}

// meanDistance averages the distance from origin to each present landmark.
func meanDistance(face Face, origin Point, indices []AnatomicalPoint) (float64, bool) {
	var sum float64
	n := 0
	for _, idx := range indices {
		p, ok := face.At(idx)
		if !ok {
			continue
		}
		sum += Distance(origin, p)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
