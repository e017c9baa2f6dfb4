package storage

import (
	"context"
	"errors"
	"io"

	"github.com/abune-media/media-service/internal/models"
)

var (
	// ErrObjectNotFound means the key exists in no reachable backend.
	ErrObjectNotFound = errors.New("object not found")
	// ErrBackendUnavailable marks a single backend failure; upload recovers
	// via fallback, delete surfaces it per backend.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrAllBackendsFailed means every configured backend failed.
	ErrAllBackendsFailed = errors.New("all storage backends failed")
)

// Backend is the uniform contract over the object store and the local
// filesystem. Implementations return errors, never panic; fallback ordering
// lives in Fallback, not here.
type Backend interface {
	Name() models.StorageBackend
	Upload(ctx context.Context, r io.Reader, size int64, key, contentType string) error
	Download(ctx context.Context, key string) (io.ReadSeekCloser, int64, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
