package classifier

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

var ErrModelUnavailable = errors.New("model unavailable")

// FaceDetector returns the landmark sets of every face in a frame, using the
// face-mesh topology.
type FaceDetector interface {
	DetectFaces(ctx context.Context, frame *Frame) ([]Face, error)
}

// ObjectDetector returns the objects found in a frame.
type ObjectDetector interface {
	DetectObjects(ctx context.Context, frame *Frame) ([]Detection, error)
}

type FaceDetectorFunc func(ctx context.Context, frame *Frame) ([]Face, error)

func (f FaceDetectorFunc) DetectFaces(ctx context.Context, frame *Frame) ([]Face, error) {
	return f(ctx, frame)
}

type ObjectDetectorFunc func(ctx context.Context, frame *Frame) ([]Detection, error)

func (f ObjectDetectorFunc) DetectObjects(ctx context.Context, frame *Frame) ([]Detection, error) {
	return f(ctx, frame)
}

type FaceLoader func(ctx context.Context) (FaceDetector, error)

type ObjectLoader func(ctx context.Context) (ObjectDetector, error)

// Models holds the detectors loaded at startup. A detector that failed to load
// stays unavailable for the life of the process.
type Models struct {
	log *logrus.Logger

	faceLoader   FaceLoader
	objectLoader ObjectLoader

	faceOnce   sync.Once
	objectOnce sync.Once

	faces     FaceDetector
	objects   ObjectDetector
	faceErr   error
	objectErr error
}

// LoadModels runs both loaders once. A nil loader leaves that capability
// unavailable.
func LoadModels(ctx context.Context, log *logrus.Logger, faces FaceLoader, objects ObjectLoader) *Models {
	m := &Models{
		log:          log,
		faceLoader:   faces,
		objectLoader: objects,
		faceErr:      ErrModelUnavailable,
		objectErr:    ErrModelUnavailable,
	}
	m.Load(ctx)
	return m
}

// StaticModels wraps detectors that are already loaded. Nil means unavailable.
func StaticModels(faces FaceDetector, objects ObjectDetector) *Models {
	m := &Models{faceErr: ErrModelUnavailable, objectErr: ErrModelUnavailable}
	m.faceOnce.Do(func() {
		if faces != nil {
			m.faces, m.faceErr = faces, nil
		}
	})
	m.objectOnce.Do(func() {
		if objects != nil {
			m.objects, m.objectErr = objects, nil
		}
	})
	return m
}

// Load initializes every capability that has not been initialized yet.
// Repeated calls do nothing.
func (m *Models) Load(ctx context.Context) {
	m.faceOnce.Do(func() {
		if m.faceLoader == nil {
			m.logUnavailable("face", ErrModelUnavailable)
			return
		}
		det, err := m.faceLoader(ctx)
		if err == nil && det == nil {
			err = ErrModelUnavailable
		}
		if err != nil {
			m.faceErr = errors.Join(ErrModelUnavailable, err)
			m.logUnavailable("face", err)
			return
		}
		m.faces, m.faceErr = det, nil
	})

	m.objectOnce.Do(func() {
		if m.objectLoader == nil {
			m.logUnavailable("object", ErrModelUnavailable)
			return
		}
		det, err := m.objectLoader(ctx)
		if err == nil && det == nil {
			err = ErrModelUnavailable
		}
		if err != nil {
			m.objectErr = errors.Join(ErrModelUnavailable, err)
			m.logUnavailable("object", err)
			return
		}
		m.objects, m.objectErr = det, nil
	})
}

func (m *Models) logUnavailable(capability string, err error) {
	if m.log == nil {
		return
	}
	m.log.WithFields(logrus.Fields{
		"capability": capability,
		"error":      err.Error(),
	}).Warn("[classifier.LoadModels] detector unavailable, dependent fields use defaults")
}

func (m *Models) FaceDetector() (FaceDetector, error) {
	if m == nil || m.faces == nil {
		return nil, ErrModelUnavailable
	}
	return m.faces, nil
}

func (m *Models) ObjectDetector() (ObjectDetector, error) {
	if m == nil || m.objects == nil {
		return nil, ErrModelUnavailable
	}
	return m.objects, nil
}

// ModelStatus reports which capabilities are usable.
type ModelStatus struct {
	FaceLandmarks   bool   `json:"face_landmarks"`
	ObjectDetection bool   `json:"object_detection"`
	FaceError       string `json:"face_error,omitempty"`
	ObjectError     string `json:"object_error,omitempty"`
}

func (m *Models) Status() ModelStatus {
	if m == nil {
		return ModelStatus{FaceError: ErrModelUnavailable.Error(), ObjectError: ErrModelUnavailable.Error()}
	}
	s := ModelStatus{
		FaceLandmarks:   m.faces != nil,
		ObjectDetection: m.objects != nil,
	}
	if m.faceErr != nil {
		s.FaceError = m.faceErr.Error()
	}
	if m.objectErr != nil {
		s.ObjectError = m.objectErr.Error()
	}
	return s
}
