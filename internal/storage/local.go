package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/abune-media/media-service/internal/models"
)

// LocalBackend stores objects as plain files under a base directory. It is
// the fallback backend when the object store is unreachable.
type LocalBackend struct {
	baseDir string
}

// NewLocalBackend ensures the base directory exists and returns the backend.
func NewLocalBackend(baseDir string) (*LocalBackend, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %v", err)
	}
	return &LocalBackend{baseDir: baseDir}, nil
}

func (l *LocalBackend) Name() models.StorageBackend {
	return models.BackendLocal
}

// path maps an object key to a file path, refusing keys that would escape
// the base directory.
func (l *LocalBackend) path(key string) (string, error) {
	clean := filepath.Clean(key)
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(l.baseDir, clean), nil
}

func (l *LocalBackend) Upload(ctx context.Context, r io.Reader, size int64, key, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst, err := l.path(key)
	if err != nil {
		return err
	}

	// Write to a temp file first, then rename, so a half-written upload is
	// never visible under its final key.
	tmp := dst + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("%w: local create %s: %v", ErrBackendUnavailable, key, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("%w: local write %s: %v", ErrBackendUnavailable, key, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: local close %s: %v", ErrBackendUnavailable, key, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: local rename %s: %v", ErrBackendUnavailable, key, err)
	}
	return nil
}

func (l *LocalBackend) Download(ctx context.Context, key string) (io.ReadSeekCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	path, err := l.path(key)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, ErrObjectNotFound
		}
		return nil, 0, fmt.Errorf("%w: local open %s: %v", ErrBackendUnavailable, key, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("%w: local stat %s: %v", ErrBackendUnavailable, key, err)
	}

	return f, info.Size(), nil
}

func (l *LocalBackend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("%w: local remove %s: %v", ErrBackendUnavailable, key, err)
	}
	return nil
}

func (l *LocalBackend) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	path, err := l.path(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: local stat %s: %v", ErrBackendUnavailable, key, err)
	}
	return true, nil
}
