//go:build onnx

package onnx

import (
	"FastGrapher/internal/classifier"
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	initOnce sync.Once
	initErr  error
)

// Initialize sets up the ONNX Runtime environment. Only the first call does
// any work; its error is returned to every later caller.
func Initialize(libraryPath string) error {
	initOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			initErr = fmt.Errorf("failed to initialize ONNX Runtime: %w", err)
		}
	})
	return initErr
}

var (
	inputNames  = []string{"image_tensor:0"}
	outputNames = []string{"detection_boxes:0", "detection_classes:0", "detection_scores:0", "num_detections:0"}
)

type Detector struct {
	session *ort.DynamicAdvancedSession
	cfg     Config
}

func NewDetector(cfg Config) (*Detector, error) {
	if err := Initialize(cfg.LibraryPath); err != nil {
		return nil, err
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer options.Destroy()

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath, inputNames, outputNames, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create session for %s: %w", cfg.ModelPath, err)
	}

	return &Detector{session: session, cfg: cfg}, nil
}

// ObjectLoader creates the detector once at startup.
func ObjectLoader(cfg Config) classifier.ObjectLoader {
	return func(ctx context.Context) (classifier.ObjectDetector, error) {
		return NewDetector(cfg)
	}
}

func (d *Detector) DetectObjects(ctx context.Context, frame *classifier.Frame) ([]classifier.Detection, error) {
	if frame == nil || frame.Image == nil {
		return nil, classifier.ErrEmptyImage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	size := int64(d.cfg.InputSize)
	input, err := ort.NewTensor(ort.NewShape(1, size, size, 3), preprocess(frame.Image, d.cfg.InputSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := make([]ort.Value, len(outputNames))
	if err := d.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	defer func() {
		for _, o := range outputs {
			if o != nil {
				o.Destroy()
			}
		}
	}()

	boxes, err := floats(outputs[0])
	if err != nil {
		return nil, err
	}
	classes, err := floats(outputs[1])
	if err != nil {
		return nil, err
	}
	scores, err := floats(outputs[2])
	if err != nil {
		return nil, err
	}
	num, err := floats(outputs[3])
	if err != nil || len(num) == 0 {
		return nil, fmt.Errorf("missing detection count: %v", err)
	}

	return decode(boxes, classes, scores, int(num[0]), frame.Width(), frame.Height(), d.cfg.MinScore), nil
}

func floats(v ort.Value) ([]float32, error) {
	t, ok := v.(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output type %T", v)
	}
	return t.GetData(), nil
}

func (d *Detector) Destroy() error {
	if d.session != nil {
		return d.session.Destroy()
	}
	return nil
}
