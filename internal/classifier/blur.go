package classifier

import (
	"image"
	"math"

	"github.com/sirupsen/logrus"
)

const (
	// BlurScale maps Laplacian variance onto the 0-100 score. It does not
	// account for resolution, so scores of very large and very small images
	// are not comparable.
	BlurScale = 100.0
	MaxBlur   = 100.0

	// BlurThreshold is the score below which a photo is blurry.
	BlurThreshold = 20.0
)

// BlurResult is the sharpness verdict for one image.
type BlurResult struct {
	IsBlurry  bool    `json:"is_blurry"`
	BlurScore float64 `json:"blur_score"`
}

// AnalyzeBlur scores the sharpness of img by the variance of its Laplacian.
func AnalyzeBlur(img image.Image) BlurResult {
	if img == nil {
		return DefaultBlur
	}
	frame := NewFrame(img)
	defer frame.Release()
	return analyzeFrameBlur(frame)
}

// AnalyzeBlurFile is AnalyzeBlur for an image on disk. Unreadable files score
// as not blurry.
func AnalyzeBlurFile(path string) BlurResult {
	frame, err := OpenFrame(path)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"path":  path,
			"error": err.Error(),
		}).Warn("[classifier.AnalyzeBlurFile] failed to load image")
		return DefaultBlur
	}
	defer frame.Release()
	return analyzeFrameBlur(frame)
}

func analyzeFrameBlur(frame *Frame) BlurResult {
	gray, err := frame.Gray()
	if err != nil {
		return DefaultBlur
	}
	variance, ok := laplacianVariance(gray)
	if !ok {
		return DefaultBlur
	}
	return blurFromVariance(variance)
}

func blurFromVariance(variance float64) BlurResult {
	score := clamp(variance/BlurScale, 0, MaxBlur)
	return BlurResult{
		IsBlurry:  score < BlurThreshold,
		BlurScore: score,
	}
}

// laplacianVariance convolves the interior of g with the 4-neighbour
// Laplacian kernel [0,-1,0; -1,4,-1; 0,-1,0] and returns the variance of the
// response. ok is false for images without interior pixels.
func laplacianVariance(g *image.Gray) (float64, bool) {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	if w < 3 || h < 3 {
		return 0, false
	}

	var sum, sumSq float64
	n := 0
	for y := 1; y < h-1; y++ {
		row := y * g.Stride
		for x := 1; x < w-1; x++ {
			i := row + x
			v := 4*int(g.Pix[i]) -
				int(g.Pix[i-1]) - int(g.Pix[i+1]) -
				int(g.Pix[i-g.Stride]) - int(g.Pix[i+g.Stride])
			f := float64(v)
			sum += f
			sumSq += f * f
			n++
		}
	}

	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	return math.Max(variance, 0), true
}
