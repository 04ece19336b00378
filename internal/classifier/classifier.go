package classifier

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const DefaultDetectorTimeout = 10 * time.Second

// ClassificationResult is the verdict for one photo. Every field is computed
// independently and falls back to its default when its analyzer fails.
type ClassificationResult struct {
	HasClosedEyes      bool    `json:"has_closed_eyes"`
	NotLookingAtCamera bool    `json:"not_looking_at_camera"`
	IsGroupPhoto       bool    `json:"is_group_photo"`
	IsBlurry           bool    `json:"is_blurry"`
	BlurScore          float64 `json:"blur_score"`
	IsCentered         bool    `json:"is_centered"`
	CenterDistance     float64 `json:"center_distance"`
}

// Classifier runs every analyzer over a photo. It is safe for concurrent use.
type Classifier struct {
	models  *Models
	eyes    *EyeAnalyzer
	gaze    *GazeAnalyzer
	timeout time.Duration
	log     *logrus.Logger
}

type Option func(*Classifier)

// WithTimeout bounds each detector call.
func WithTimeout(d time.Duration) Option {
	return func(c *Classifier) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithTopology swaps the landmark topology the detectors report in.
func WithTopology(t Topology) Option {
	return func(c *Classifier) {
		c.eyes = NewEyeAnalyzer(t)
		c.gaze = NewGazeAnalyzer(t)
	}
}

func New(models *Models, log *logrus.Logger, opts ...Option) *Classifier {
	if log == nil {
		log = logger
	}
	c := &Classifier{
		models:  models,
		eyes:    NewEyeAnalyzer(FaceMesh),
		gaze:    NewGazeAnalyzer(FaceMesh),
		timeout: DefaultDetectorTimeout,
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Classifier) Models() *Models {
	return c.models
}

// Classify loads the image at imagePath and classifies it. It never fails: an
// unreadable image yields DefaultResult.
func (c *Classifier) Classify(ctx context.Context, imagePath string) ClassificationResult {
	frame, err := OpenFrame(imagePath)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"path":  imagePath,
			"error": err.Error(),
		}).Warn("[Classifier.Classify] failed to load image")
		return DefaultResult()
	}
	defer frame.Release()

	return c.ClassifyFrame(ctx, frame)
}

func (c *Classifier) ClassifyBytes(ctx context.Context, data []byte) ClassificationResult {
	frame, err := DecodeFrame(data)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"size":  len(data),
			"error": err.Error(),
		}).Warn("[Classifier.ClassifyBytes] failed to decode image")
		return DefaultResult()
	}
	defer frame.Release()

	return c.ClassifyFrame(ctx, frame)
}

func (c *Classifier) ClassifyImage(ctx context.Context, img image.Image) ClassificationResult {
	if img == nil || img.Bounds().Empty() {
		return DefaultResult()
	}
	frame := NewFrame(img)
	defer frame.Release()

	return c.ClassifyFrame(ctx, frame)
}

// ClassifyFrame runs the analyzers concurrently over frame. The caller keeps
// ownership of frame and releases it.
func (c *Classifier) ClassifyFrame(ctx context.Context, frame *Frame) ClassificationResult {
	res := DefaultResult()
	if frame == nil || frame.Image == nil {
		return res
	}

	var (
		closed, away bool
		group        bool
		center       = DefaultCentering
		blur         = DefaultBlur
	)

	g := new(errgroup.Group)

	g.Go(func() error {
		closed, away = c.analyzeFaces(ctx, frame)
		return nil
	})

	g.Go(func() error {
		group, center = c.analyzeObjects(ctx, frame)
		return nil
	})

	g.Go(func() error {
		defer c.recoverInto("blur", func() { blur = DefaultBlur })
		blur = analyzeFrameBlur(frame)
		return nil
	})

	_ = g.Wait()

	res.HasClosedEyes = closed
	res.NotLookingAtCamera = away
	res.IsGroupPhoto = group
	res.IsBlurry = blur.IsBlurry
	res.BlurScore = blur.BlurScore
	res.IsCentered = center.IsCentered
	res.CenterDistance = center.Distance
	return res
}

// analyzeFaces reports whether any face has both eyes closed and whether any
// face looks away.
func (c *Classifier) analyzeFaces(ctx context.Context, frame *Frame) (closed, away bool) {
	closed, away = DefaultHasClosedEyes, DefaultNotLookingAtCamera
	defer c.recoverInto("faces", func() {
		closed, away = DefaultHasClosedEyes, DefaultNotLookingAtCamera
	})

	det, err := c.models.FaceDetector()
	if err != nil {
		return
	}

	faces, err := c.detectFaces(ctx, det, frame)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"operation": "detect_faces",
			"error":     err.Error(),
		}).Warn("[Classifier.analyzeFaces] face detection failed")
		return
	}

	for _, face := range faces {
		if !closed && c.eyes.IsBothEyesClosed(face) {
			closed = true
		}
		if !away && c.gaze.IsLookingAway(face) {
			away = true
		}
	}
	return
}

func (c *Classifier) analyzeObjects(ctx context.Context, frame *Frame) (group bool, center CenterResult) {
	group, center = DefaultIsGroupPhoto, DefaultCentering
	defer c.recoverInto("objects", func() {
		group, center = DefaultIsGroupPhoto, DefaultCentering
	})

	det, err := c.models.ObjectDetector()
	if err != nil {
		return
	}

	detections, err := c.detectObjects(ctx, det, frame)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"operation": "detect_objects",
			"error":     err.Error(),
		}).Warn("[Classifier.analyzeObjects] object detection failed")
		return
	}

	group = IsGroupPhoto(detections)
	center = AnalyzeCentering(detections, frame.Width(), frame.Height())
	return
}

func (c *Classifier) detectFaces(ctx context.Context, det FaceDetector, frame *Frame) ([]Face, error) {
	faces, err := bounded(ctx, c.timeout, func(ctx context.Context) ([]Face, error) {
		return det.DetectFaces(ctx, frame)
	})
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}
	return faces, nil
}

func (c *Classifier) detectObjects(ctx context.Context, det ObjectDetector, frame *Frame) ([]Detection, error) {
	detections, err := bounded(ctx, c.timeout, func(ctx context.Context) ([]Detection, error) {
		return det.DetectObjects(ctx, frame)
	})
	if err != nil {
		return nil, fmt.Errorf("detect objects: %w", err)
	}
	return detections, nil
}

// bounded runs call with a deadline of timeout and returns when either the
// call finishes or the deadline passes. A detector that ignores ctx keeps
// running in the background; it only reads frame.Image, which is never
// pooled, and its result is discarded.
func bounded[T any](ctx context.Context, timeout time.Duration, call func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)

	type outcome struct {
		val T
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("detector panicked: %v", r)}
			}
		}()
		val, err := call(ctx)
		done <- outcome{val: val, err: err}
	}()

	select {
	case out := <-done:
		return out.val, out.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// recoverInto turns a panic in an analyzer into its defaults. It must be deferred
// directly.
func (c *Classifier) recoverInto(analyzer string, reset func()) {
	if r := recover(); r != nil {
		c.log.WithFields(logrus.Fields{
			"analyzer": analyzer,
			"panic":    fmt.Sprint(r),
		}).Error("[Classifier] analyzer panicked, using defaults")
		reset()
	}
}
