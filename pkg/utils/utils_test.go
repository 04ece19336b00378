package utils

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func formFile(t *testing.T, name, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="photo"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r := multipart.NewReader(&body, w.Boundary())
	form, err := r.ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["photo"][0]
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func TestReadFormFile(t *testing.T) {
	u := NewWithLimit(1 << 20)

	data, mime, err := u.ReadFormFile(formFile(t, "a.png", "image/png", pngBytes(t)))
	require.NoError(t, err)
	require.Equal(t, "image/png", mime)
	require.NotEmpty(t, data)

	_, _, err = u.ReadFormFile(formFile(t, "a.txt", "text/plain", []byte("hello")))
	require.ErrorIs(t, err, ErrNotAnImage)

	_, _, err = u.ReadFormFile(formFile(t, "a.png", "image/png", []byte("not really a png")))
	require.ErrorIs(t, err, ErrNotAnImage)

	_, _, err = u.ReadFormFile(nil)
	require.ErrorIs(t, err, ErrNoFile)
}

func TestReadFormFileTooLarge(t *testing.T) {
	u := NewWithLimit(16)
	_, _, err := u.ReadFormFile(formFile(t, "a.png", "image/png", pngBytes(t)))
	require.ErrorIs(t, err, ErrFileTooLarge)
}

func TestStorageFileName(t *testing.T) {
	u := New()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	name, err := u.StorageFileName("Ana & Budi Wedding!", "IMG_001.JPG", now)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(name, "ana-budi-wedding-"), name)
	require.True(t, strings.HasSuffix(name, ".jpg"), name)

	name, err = u.StorageFileName("", "noext", now)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(name, ".jpg"), name)
	require.NotContains(t, name, "-.")
}

func TestSlugify(t *testing.T) {
	require.Equal(t, "kid-birthday-2025", Slugify("  Kid Birthday -- 2025 "))
	require.Equal(t, "", Slugify("***"))
}

func TestNewULIDFromTimestamp(t *testing.T) {
	u := New()
	a, err := u.NewULIDFromTimestamp(time.Now())
	require.NoError(t, err)
	b, err := u.NewULIDFromTimestamp(time.Now())
	require.NoError(t, err)
	require.Len(t, a, 26)
	require.NotEqual(t, a, b)
}
