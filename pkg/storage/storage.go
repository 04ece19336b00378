// Package storage keeps uploaded photos either on the local disk or in an
// S3 bucket, addressed by slash separated keys such as
// "closed-eyes/wedding-01j0....jpg".
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	ErrNotFound   = errors.New("file not found")
	ErrInvalidKey = errors.New("invalid storage key")
)

const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// Location tells a caller how to hand a stored file to a client: either a
// file on disk to stream, or a URL to redirect to.
type Location struct {
	Path string
	URL  string
}

type IStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	Locate(ctx context.Context, key string) (Location, error)
	Driver() string
}

// New picks the driver from STORAGE_DRIVER ("local" or "s3").
func New(log *logrus.Logger) (IStorage, error) {
	switch driver := os.Getenv("STORAGE_DRIVER"); driver {
	case "", DriverLocal:
		dir := os.Getenv("UPLOAD_DIR")
		if dir == "" {
			dir = "uploads"
		}
		return NewLocal(dir, log)
	case DriverS3:
		return NewS3(log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

// CleanKey normalizes key and rejects anything escaping the storage root.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}

	cleaned := path.Clean("/" + key)
	if cleaned == "/" {
		return "", ErrInvalidKey
	}

	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return "", ErrInvalidKey
		}
	}

	return strings.TrimPrefix(cleaned, "/"), nil
}
