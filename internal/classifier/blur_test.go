package classifier

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func flatImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func checkerboard(w, h, square int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/square+y/square)%2 == 0 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

// gradient is a horizontal ramp: its Laplacian is zero away from the borders.
func gradient(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 255 / (w - 1))})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAnalyzeBlur(t *testing.T) {
	t.Run("flat image is blurry", func(t *testing.T) {
		res := AnalyzeBlur(flatImage(64, 64, color.RGBA{R: 90, G: 120, B: 200, A: 255}))
		require.Equal(t, 0.0, res.BlurScore)
		require.True(t, res.IsBlurry)
	})

	t.Run("smooth ramp is blurry", func(t *testing.T) {
		res := AnalyzeBlur(gradient(64, 64))
		require.Less(t, res.BlurScore, BlurThreshold)
		require.True(t, res.IsBlurry)
	})

	for _, square := range []int{1, 2, 4, 8} {
		square := square
		t.Run("checkerboard is sharp", func(t *testing.T) {
			res := AnalyzeBlur(checkerboard(64, 64, square))
			require.Equal(t, MaxBlur, res.BlurScore)
			require.False(t, res.IsBlurry)
		})
	}

	t.Run("offset bounds", func(t *testing.T) {
		img := checkerboard(80, 80, 2).SubImage(image.Rect(10, 10, 70, 70))
		res := AnalyzeBlur(img)
		require.Equal(t, MaxBlur, res.BlurScore)
	})

	t.Run("too small to measure", func(t *testing.T) {
		require.Equal(t, DefaultBlur, AnalyzeBlur(checkerboard(2, 2, 1)))
	})

	t.Run("nil image", func(t *testing.T) {
		require.Equal(t, DefaultBlur, AnalyzeBlur(nil))
	})
}

func TestAnalyzeBlurMonotonic(t *testing.T) {
	flat := AnalyzeBlur(flatImage(64, 64, color.Gray{Y: 128}))
	ramp := AnalyzeBlur(gradient(64, 64))
	sharp := AnalyzeBlur(checkerboard(64, 64, 4))

	require.LessOrEqual(t, flat.BlurScore, ramp.BlurScore)
	require.Less(t, ramp.BlurScore, sharp.BlurScore)
}

func TestAnalyzeBlurFile(t *testing.T) {
	dir := t.TempDir()

	sharp := filepath.Join(dir, "sharp.png")
	require.NoError(t, os.WriteFile(sharp, encodePNG(t, checkerboard(32, 32, 2)), 0o644))
	res := AnalyzeBlurFile(sharp)
	require.False(t, res.IsBlurry)
	require.Equal(t, MaxBlur, res.BlurScore)

	corrupt := filepath.Join(dir, "corrupt.jpg")
	require.NoError(t, os.WriteFile(corrupt, []byte("not an image"), 0o644))
	require.Equal(t, DefaultBlur, AnalyzeBlurFile(corrupt))

	require.Equal(t, DefaultBlur, AnalyzeBlurFile(filepath.Join(dir, "missing.png")))
}

func TestBlurFromVarianceClamps(t *testing.T) {
	require.Equal(t, BlurResult{IsBlurry: true, BlurScore: 0}, blurFromVariance(0))
	require.Equal(t, BlurResult{IsBlurry: true, BlurScore: 19.99}, blurFromVariance(1999))
	require.Equal(t, BlurResult{IsBlurry: false, BlurScore: 20}, blurFromVariance(2000))
	require.Equal(t, BlurResult{IsBlurry: false, BlurScore: 100}, blurFromVariance(1e9))
}
