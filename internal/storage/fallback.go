package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/abune-media/media-service/internal/models"
)

// Fallback tries an ordered list of backends. The order is data, not code:
// upload walks the list, download resolves the backend recorded in metadata
// and only probes when that record is missing.
type Fallback struct {
	backends []Backend
}

// NewFallback builds the ordered backend list; the first entry is primary.
func NewFallback(backends ...Backend) *Fallback {
	return &Fallback{backends: backends}
}

// Backends returns the configured order.
func (f *Fallback) Backends() []Backend {
	return f.backends
}

// Get returns the backend with the given name.
func (f *Fallback) Get(name models.StorageBackend) (Backend, bool) {
	for _, b := range f.backends {
		if b.Name() == name {
			return b, true
		}
	}
	return nil, false
}

// Upload writes the stream to the first backend that accepts it and reports
// which one did. Between attempts the stream is rewound to its start so the
// fallback backend sees the full, unconsumed bytes.
func (f *Fallback) Upload(ctx context.Context, r io.ReadSeeker, size int64, key, contentType string) (models.StorageBackend, error) {
	var lastErr error
	for i, b := range f.backends {
		if i > 0 {
			if _, err := r.Seek(0, io.SeekStart); err != nil {
				return "", fmt.Errorf("failed to rewind upload stream: %v", err)
			}
		}
		if err := b.Upload(ctx, r, size, key, contentType); err != nil {
			log.Printf("[Storage] upload to %s failed for %s: %v", b.Name(), key, err)
			lastErr = err
			continue
		}
		return b.Name(), nil
	}
	return "", fmt.Errorf("%w: %v", ErrAllBackendsFailed, lastErr)
}

// Open returns a stream for the key. When the metadata backend is known it is
// used directly; an empty backend name probes each backend in order. The
// chosen backend is returned so callers can log or record it.
func (f *Fallback) Open(ctx context.Context, key string, recorded models.StorageBackend) (io.ReadSeekCloser, int64, models.StorageBackend, error) {
	if recorded != "" {
		b, ok := f.Get(recorded)
		if !ok {
			return nil, 0, "", fmt.Errorf("unknown storage backend %q", recorded)
		}
		rc, size, err := b.Download(ctx, key)
		if err != nil {
			return nil, 0, "", err
		}
		return rc, size, b.Name(), nil
	}

	var lastErr error = ErrObjectNotFound
	for _, b := range f.backends {
		rc, size, err := b.Download(ctx, key)
		if err == nil {
			return rc, size, b.Name(), nil
		}
		lastErr = err
	}
	return nil, 0, "", lastErr
}

// DeleteResult reports the outcome of one backend's delete attempt.
type DeleteResult struct {
	Backend models.StorageBackend `json:"backend"`
	Deleted bool                  `json:"deleted"`
	Error   string                `json:"error,omitempty"`
}

// Delete removes the object from the recorded backend, then best-effort from
// the others, and reports each attempt individually so callers can surface
// partial success.
func (f *Fallback) Delete(ctx context.Context, key string, recorded models.StorageBackend) []DeleteResult {
	ordered := make([]Backend, 0, len(f.backends))
	if b, ok := f.Get(recorded); ok {
		ordered = append(ordered, b)
	}
	for _, b := range f.backends {
		if b.Name() != recorded {
			ordered = append(ordered, b)
		}
	}

	results := make([]DeleteResult, 0, len(ordered))
	for _, b := range ordered {
		res := DeleteResult{Backend: b.Name()}
		err := b.Delete(ctx, key)
		switch {
		case err == nil:
			res.Deleted = true
		case errors.Is(err, ErrObjectNotFound):
			// Nothing stored there; not a failure.
		default:
			res.Error = err.Error()
			log.Printf("[Storage] delete from %s failed for %s: %v", b.Name(), key, err)
		}
		results = append(results, res)
	}
	return results
}
