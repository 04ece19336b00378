package classifier

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	ErrEmptyImage    = errors.New("empty image")
	ErrFrameReleased = errors.New("frame already released")
)

// Frame is a decoded image shared by the analyzers of one classification.
// The owner must call Release once every analyzer is done with it.
type Frame struct {
	Image  image.Image
	Format string
	// Raw holds the encoded bytes when the frame was decoded from them.
	Raw []byte

	grayOnce sync.Once
	gray     *image.Gray
	buf      *[]byte

	mu       sync.Mutex
	released bool
}

// NewFrame wraps an already decoded image.
func NewFrame(img image.Image) *Frame {
	return &Frame{Image: img}
}

// DecodeFrame decodes jpeg, png, gif, webp, bmp or tiff data.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, ErrEmptyImage
	}
	return &Frame{Image: img, Format: format, Raw: data}, nil
}

// OpenFrame reads and decodes the image at path.
func OpenFrame(path string) (*Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", path, err)
	}
	return DecodeFrame(data)
}

func (f *Frame) Bounds() image.Rectangle {
	return f.Image.Bounds()
}

func (f *Frame) Width() int {
	return f.Image.Bounds().Dx()
}

func (f *Frame) Height() int {
	return f.Image.Bounds().Dy()
}

// Gray returns the grayscale raster of the frame, converting on first use.
// The raster lives in a pooled buffer and is invalid after Release.
func (f *Frame) Gray() (*image.Gray, error) {
	f.mu.Lock()
	released := f.released
	f.mu.Unlock()
	if released {
		return nil, ErrFrameReleased
	}

	f.grayOnce.Do(func() {
		f.gray, f.buf = toGray(f.Image)
	})
	return f.gray, nil
}

// Release hands the grayscale buffer back to the pool. It is safe to call
// more than once.
func (f *Frame) Release() {
	if f == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.released {
		return
	}
	f.released = true
	if f.buf != nil {
		putGrayBuffer(f.buf)
		f.buf = nil
		f.gray = nil
	}
}

var grayPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0)
		return &b
	},
}

func getGrayBuffer(n int) *[]byte {
	buf := grayPool.Get().(*[]byte)
	if cap(*buf) < n {
		*buf = make([]byte, n)
	}
	*buf = (*buf)[:n]
	return buf
}

func putGrayBuffer(buf *[]byte) {
	grayPool.Put(buf)
}

// toGray converts img to an 8-bit grayscale raster anchored at the origin.
func toGray(img image.Image) (*image.Gray, *[]byte) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	buf := getGrayBuffer(w * h)

	gray := &image.Gray{
		Pix:    *buf,
		Stride: w,
		Rect:   image.Rect(0, 0, w, h),
	}
	draw.Draw(gray, gray.Rect, img, b.Min, draw.Src)
	return gray, buf
}
