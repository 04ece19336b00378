package gemini

import (
	"FastGrapher/internal/classifier"
	"context"
	"errors"
	"image"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/require"
)

func TestParseDetections(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    []classifier.Detection
		wantErr bool
	}{
		{
			name: "plain array",
			text: `[{"label":"person","box_2d":[100,200,600,400],"confidence":0.8}]`,
			want: []classifier.Detection{
				{ClassLabel: "person", Confidence: 0.8, BBox: classifier.BBox{X: 400, Y: 50, Width: 400, Height: 250}},
			},
		},
		{
			name: "fenced reply without confidence",
			text: "```json\n[{\"label\":\" Person \",\"box_2d\":[0,0,1000,500]}]\n```",
			want: []classifier.Detection{
				{ClassLabel: "person", Confidence: 1, BBox: classifier.BBox{X: 0, Y: 0, Width: 1000, Height: 500}},
			},
		},
		{
			name: "empty boxes are skipped",
			text: `[{"label":"person","box_2d":[10,10,10,50],"confidence":0.9}]`,
			want: []classifier.Detection{},
		},
		{
			name: "nobody",
			text: `[]`,
			want: []classifier.Detection{},
		},
		{
			name:    "not json",
			text:    `I see three people.`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDetections(tt.text, 2000, 500)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNewDetectorRequiresKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	_, err := NewDetector(t.Context())
	require.Error(t, err)
}

type fakeModel struct {
	res   *genai.GenerateContentResponse
	err   error
	parts []genai.Part
}

func (f *fakeModel) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.parts = parts
	return f.res, f.err
}

func reply(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []genai.Part{genai.Text(text)}}}},
	}
}

func TestDetectObjects(t *testing.T) {
	model := &fakeModel{res: reply(`[{"label":"person","box_2d":[0,0,500,500],"confidence":0.9}]`)}
	d := &Detector{model: model}

	frame := classifier.NewFrame(image.NewRGBA(image.Rect(0, 0, 200, 100)))
	got, err := d.DetectObjects(context.Background(), frame)
	require.NoError(t, err)
	require.Equal(t, []classifier.Detection{
		{ClassLabel: "person", Confidence: 0.9, BBox: classifier.BBox{X: 0, Y: 0, Width: 100, Height: 50}},
	}, got)

	require.Len(t, model.parts, 2)
	require.Equal(t, genai.Text(detectPrompt), model.parts[0])
	blob, ok := model.parts[1].(genai.Blob)
	require.True(t, ok)
	require.Equal(t, "image/jpeg", blob.MIMEType)
	require.NotEmpty(t, blob.Data)
}

func TestDetectObjectsErrors(t *testing.T) {
	frame := classifier.NewFrame(image.NewRGBA(image.Rect(0, 0, 10, 10)))

	_, err := (&Detector{model: &fakeModel{}}).DetectObjects(context.Background(), nil)
	require.ErrorIs(t, err, classifier.ErrEmptyImage)

	_, err = (&Detector{model: &fakeModel{res: &genai.GenerateContentResponse{}}}).DetectObjects(context.Background(), frame)
	require.ErrorIs(t, err, ErrNoResponse)

	apiErr := errors.New("quota exceeded")
	_, err = (&Detector{model: &fakeModel{err: apiErr}}).DetectObjects(context.Background(), frame)
	require.ErrorIs(t, err, apiErr)
}
