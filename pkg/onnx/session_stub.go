//go:build !onnx

package onnx

import (
	"FastGrapher/internal/classifier"
	"context"
)

func ObjectLoader(cfg Config) classifier.ObjectLoader {
	return func(ctx context.Context) (classifier.ObjectDetector, error) {
		return nil, ErrUnavailable
	}
}
