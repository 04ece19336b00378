// Package gemini detects people in photos with a Gemini vision model.
package gemini

import (
	"FastGrapher/internal/classifier"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	jsoniter "github.com/json-iterator/go"
	"google.golang.org/api/option"
)

const detectPrompt = `Detect every person in this photo. Reply with a JSON array only, one
entry per person: {"label": "person", "box_2d": [ymin, xmin, ymax, xmax], "confidence": 0.0-1.0}.
Coordinates are normalized to 0-1000. Reply [] when nobody is visible.`

var ErrNoResponse = errors.New("no response from Gemini API")

// generator is the part of *genai.GenerativeModel the detector calls.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type Detector struct {
	client *genai.Client
	model  generator
}

// NewDetector reads GEMINI_API_KEY and GEMINI_MODEL_NAME (default
// gemini-1.5-flash).
func NewDetector(ctx context.Context) (*Detector, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")

	modelName := os.Getenv("GEMINI_MODEL_NAME")
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0)

	return &Detector{client: client, model: model}, nil
}

// ObjectLoader creates the client once at startup for the object detection
// capability.
func ObjectLoader() classifier.ObjectLoader {
	return func(ctx context.Context) (classifier.ObjectDetector, error) {
		return NewDetector(ctx)
	}
}

func (d *Detector) DetectObjects(ctx context.Context, frame *classifier.Frame) ([]classifier.Detection, error) {
	if frame == nil || frame.Image == nil {
		return nil, classifier.ErrEmptyImage
	}

	imgData := frame.Raw
	if frame.Format != "jpeg" || len(imgData) == 0 {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, frame.Image, &jpeg.Options{Quality: 90}); err != nil {
			return nil, fmt.Errorf("encode frame: %w", err)
		}
		imgData = buf.Bytes()
	}

	res, err := d.model.GenerateContent(ctx, genai.Text(detectPrompt), genai.ImageData("jpeg", imgData))
	if err != nil {
		return nil, err
	}

	text, err := responseText(res)
	if err != nil {
		return nil, err
	}

	return parseDetections(text, frame.Width(), frame.Height())
}

func responseText(res *genai.GenerateContentResponse) (string, error) {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoResponse
	}

	text, ok := res.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", errors.New("unexpected response format from Gemini API")
	}

	return string(text), nil
}

func (d *Detector) Close() {
	if d.client != nil {
		d.client.Close()
	}
}

type box struct {
	Label      string     `json:"label"`
	Box2D      [4]float64 `json:"box_2d"`
	Confidence *float64   `json:"confidence"`
}

// parseDetections converts the model's normalized [ymin, xmin, ymax, xmax]
// boxes into pixel detections. Entries without a confidence are taken as
// certain.
func parseDetections(text string, width, height int) ([]classifier.Detection, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var boxes []box
	if err := jsoniter.UnmarshalFromString(text, &boxes); err != nil {
		return nil, fmt.Errorf("error unmarshaling detections: %w", err)
	}

	sx := float64(width) / 1000
	sy := float64(height) / 1000

	detections := make([]classifier.Detection, 0, len(boxes))
	for _, b := range boxes {
		ymin, xmin, ymax, xmax := b.Box2D[0], b.Box2D[1], b.Box2D[2], b.Box2D[3]
		if xmax <= xmin || ymax <= ymin {
			continue
		}
		conf := 1.0
		if b.Confidence != nil {
			conf = *b.Confidence
		}
		detections = append(detections, classifier.Detection{
			ClassLabel: strings.ToLower(strings.TrimSpace(b.Label)),
			Confidence: conf,
			BBox: classifier.BBox{
				X:      xmin * sx,
				Y:      ymin * sy,
				Width:  (xmax - xmin) * sx,
				Height: (ymax - ymin) * sy,
			},
		})
	}
	return detections, nil
}
