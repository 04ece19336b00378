package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

type localStorage struct {
	root string
	log  *logrus.Logger
}

func NewLocal(root string, log *logrus.Logger) (IStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload dir: %w", err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	return &localStorage{root: abs, log: log}, nil
}

func (s *localStorage) Driver() string {
	return DriverLocal
}

func (s *localStorage) resolve(key string) (string, error) {
	cleaned, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

func (s *localStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create folder for %s: %w", key, err)
	}

	tmp := full + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to store %s: %w", key, err)
	}

	return nil
}

func (s *localStorage) Delete(ctx context.Context, key string) error {
	full, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.log.WithField("key", key).Warn("Deleting a file that is already gone")
			return nil
		}
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}

	return nil
}

func (s *localStorage) Locate(ctx context.Context, key string) (Location, error) {
	full, err := s.resolve(key)
	if err != nil {
		return Location{}, err
	}

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Location{}, ErrNotFound
		}
		return Location{}, err
	}
	if info.IsDir() {
		return Location{}, ErrNotFound
	}

	return Location{Path: full}, nil
}
