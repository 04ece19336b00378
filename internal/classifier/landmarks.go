package classifier

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// AnatomicalPoint is an index into a Face's landmark list.
type AnatomicalPoint int

// Topology names the landmark indices the analyzers rely on. Swapping the
// landmark model only requires a new Topology value.
type Topology struct {
	Name string
	Size int

	RightEyeOuter  AnatomicalPoint
	RightEyeInner  AnatomicalPoint
	RightEyeTop    AnatomicalPoint
	RightEyeBottom AnatomicalPoint
	LeftEyeOuter   AnatomicalPoint
	LeftEyeInner   AnatomicalPoint
	LeftEyeTop     AnatomicalPoint
	LeftEyeBottom  AnatomicalPoint

	RightEyeContour []AnatomicalPoint
	LeftEyeContour  []AnatomicalPoint

	NoseTip      AnatomicalPoint
	RightNostril AnatomicalPoint
	LeftNostril  AnatomicalPoint

	RightEar   AnatomicalPoint
	LeftEar    AnatomicalPoint
	RightCheek AnatomicalPoint
	LeftCheek  AnatomicalPoint
	Chin       AnatomicalPoint
	Forehead   AnatomicalPoint

	RightJaw []AnatomicalPoint
	LeftJaw  []AnatomicalPoint
}

// FaceMesh is the 468-point face-mesh topology. Left and right are from the
// subject's point of view, so the right eye appears on the image's left.
var FaceMesh = Topology{
	Name: "face_mesh_468",
	Size: 468,

	RightEyeOuter:  33,
	RightEyeInner:  133,
	RightEyeTop:    159,
	RightEyeBottom: 145,
	LeftEyeOuter:   263,
	LeftEyeInner:   362,
	LeftEyeTop:     386,
	LeftEyeBottom:  374,

	RightEyeContour: []AnatomicalPoint{33, 7, 163, 144, 145, 153, 154, 155, 133, 173, 157, 158, 159, 160, 161, 246},
	LeftEyeContour:  []AnatomicalPoint{362, 382, 381, 380, 374, 373, 390, 249, 263, 466, 388, 387, 386, 385, 384, 398},

	NoseTip:      1,
	RightNostril: 98,
	LeftNostril:  327,

	RightEar:   234,
	LeftEar:    454,
	RightCheek: 50,
	LeftCheek:  280,
	Chin:       152,
	Forehead:   10,

	RightJaw: []AnatomicalPoint{132, 58, 172, 136, 150},
	LeftJaw:  []AnatomicalPoint{361, 288, 397, 365, 379},
}

// Face is one detected face: landmark points ordered by the topology index.
// Landmarks the detector did not report are NaN.
type Face struct {
	Points []Point
}

// NewFace returns a face of the given size with every landmark missing.
func NewFace(size int) Face {
	points := make([]Point, size)
	for i := range points {
		points[i] = missingPoint
	}
	return Face{Points: points}
}

// At returns the landmark at idx, or false when it is absent.
func (f Face) At(idx AnatomicalPoint) (Point, bool) {
	if idx < 0 || int(idx) >= len(f.Points) {
		return Point{}, false
	}
	p := f.Points[idx]
	if !p.Valid() {
		return Point{}, false
	}
	return p, true
}

// Set stores a landmark, growing the face when needed.
func (f *Face) Set(idx AnatomicalPoint, p Point) {
	if idx < 0 {
		return
	}
	for int(idx) >= len(f.Points) {
		f.Points = append(f.Points, missingPoint)
	}
	f.Points[idx] = p
}

// presentFraction is the share of indices that are present.
func (f Face) presentFraction(indices []AnatomicalPoint) float64 {
	if len(indices) == 0 {
		return 0
	}
	n := 0
	for _, idx := range indices {
		if _, ok := f.At(idx); ok {
			n++
		}
	}
	return float64(n) / float64(len(indices))
}

// Scale multiplies every present landmark by sx, sy.
func (f Face) Scale(sx, sy float64) Face {
	out := Face{Points: make([]Point, len(f.Points))}
	for i, p := range f.Points {
		if !p.Valid() {
			out.Points[i] = missingPoint
			continue
		}
		out.Points[i] = Point{X: p.X * sx, Y: p.Y * sy}
	}
	return out
}

// UnmarshalJSON accepts an array of {"x","y"} objects where null marks a
// landmark that was not detected.
func (f *Face) UnmarshalJSON(data []byte) error {
	var raw []*Point
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.Points = make([]Point, len(raw))
	for i, p := range raw {
		if p == nil {
			f.Points[i] = missingPoint
			continue
		}
		f.Points[i] = *p
	}
	return nil
}

func (f Face) MarshalJSON() ([]byte, error) {
	raw := make([]*Point, len(f.Points))
	for i := range f.Points {
		if f.Points[i].Valid() {
			p := f.Points[i]
			raw[i] = &p
		}
	}
	return json.Marshal(raw)
}
