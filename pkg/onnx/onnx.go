// Package onnx runs a COCO SSD object detector locally through ONNX Runtime.
// The runtime binding is only compiled with the onnx build tag; without it
// the loader reports the capability as unavailable.
package onnx

import (
	"FastGrapher/internal/classifier"
	"errors"
	"fmt"
	"image"
	"os"
	"strconv"

	"golang.org/x/image/draw"
)

var ErrUnavailable = errors.New("onnx runtime not compiled in, rebuild with -tags onnx")

type Config struct {
	LibraryPath string
	ModelPath   string
	InputSize   int
	MinScore    float32
}

// ConfigFromEnv reads ONNX_LIBRARY_PATH, ONNX_MODEL_PATH, ONNX_INPUT_SIZE and
// ONNX_MIN_SCORE.
func ConfigFromEnv() Config {
	cfg := Config{
		LibraryPath: os.Getenv("ONNX_LIBRARY_PATH"),
		ModelPath:   os.Getenv("ONNX_MODEL_PATH"),
		InputSize:   300,
		MinScore:    0.3,
	}
	if cfg.ModelPath == "" {
		cfg.ModelPath = "models/ssd_mobilenet_v1_12.onnx"
	}
	if v, err := strconv.Atoi(os.Getenv("ONNX_INPUT_SIZE")); err == nil && v > 0 {
		cfg.InputSize = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("ONNX_MIN_SCORE"), 32); err == nil {
		cfg.MinScore = float32(v)
	}
	return cfg
}

// cocoLabels maps the SSD model's 1-based category ids to names.
var cocoLabels = map[int]string{
	1: "person", 2: "bicycle", 3: "car", 4: "motorcycle", 5: "airplane",
	6: "bus", 7: "train", 8: "truck", 9: "boat", 10: "traffic light",
	11: "fire hydrant", 13: "stop sign", 14: "parking meter", 15: "bench",
	16: "bird", 17: "cat", 18: "dog", 19: "horse", 20: "sheep", 21: "cow",
	22: "elephant", 23: "bear", 24: "zebra", 25: "giraffe", 27: "backpack",
	28: "umbrella", 31: "handbag", 32: "tie", 33: "suitcase", 34: "frisbee",
	35: "skis", 36: "snowboard", 37: "sports ball", 38: "kite",
	39: "baseball bat", 40: "baseball glove", 41: "skateboard", 42: "surfboard",
	43: "tennis racket", 44: "bottle", 46: "wine glass", 47: "cup", 48: "fork",
	49: "knife", 50: "spoon", 51: "bowl", 52: "banana", 53: "apple",
	54: "sandwich", 55: "orange", 56: "broccoli", 57: "carrot", 58: "hot dog",
	59: "pizza", 60: "donut", 61: "cake", 62: "chair", 63: "couch",
	64: "potted plant", 65: "bed", 67: "dining table", 70: "toilet", 72: "tv",
	73: "laptop", 74: "mouse", 75: "remote", 76: "keyboard", 77: "cell phone",
	78: "microwave", 79: "oven", 80: "toaster", 81: "sink", 82: "refrigerator",
	84: "book", 85: "clock", 86: "vase", 87: "scissors", 88: "teddy bear",
	89: "hair drier", 90: "toothbrush",
}

func label(id int) string {
	if name, ok := cocoLabels[id]; ok {
		return name
	}
	return fmt.Sprintf("class_%d", id)
}

// preprocess scales img to size x size and packs it as NHWC uint8 RGB.
func preprocess(img image.Image, size int) []uint8 {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.ApproxBiLinear.Scale(dst, dst.Rect, img, img.Bounds(), draw.Src, nil)

	out := make([]uint8, 0, size*size*3)
	for i := 0; i < len(dst.Pix); i += 4 {
		out = append(out, dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2])
	}
	return out
}

// decode turns the SSD outputs into pixel detections. boxes holds normalized
// [ymin, xmin, ymax, xmax] rows; only the first count rows are valid.
func decode(boxes, classes, scores []float32, count int, width, height int, minScore float32) []classifier.Detection {
	if count > len(scores) {
		count = len(scores)
	}
	if count > len(classes) {
		count = len(classes)
	}
	if count > len(boxes)/4 {
		count = len(boxes) / 4
	}

	w, h := float64(width), float64(height)
	detections := make([]classifier.Detection, 0, count)
	for i := 0; i < count; i++ {
		if scores[i] < minScore {
			continue
		}
		ymin, xmin := float64(boxes[i*4]), float64(boxes[i*4+1])
		ymax, xmax := float64(boxes[i*4+2]), float64(boxes[i*4+3])
		if xmax <= xmin || ymax <= ymin {
			continue
		}
		detections = append(detections, classifier.Detection{
			ClassLabel: label(int(classes[i])),
			Confidence: float64(scores[i]),
			BBox: classifier.BBox{
				X:      xmin * w,
				Y:      ymin * h,
				Width:  (xmax - xmin) * w,
				Height: (ymax - ymin) * h,
			},
		})
	}
	return detections
}
