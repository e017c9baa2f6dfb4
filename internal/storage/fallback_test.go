package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abune-media/media-service/internal/models"
)

// memBackend is an in-memory Backend for tests; failUpload and failDelete
// simulate an unreachable backend.
type memBackend struct {
	name       models.StorageBackend
	objects    map[string][]byte
	failUpload bool
	failDelete bool
	uploads    int
}

func newMemBackend(name models.StorageBackend) *memBackend {
	return &memBackend{name: name, objects: make(map[string][]byte)}
}

func (m *memBackend) Name() models.StorageBackend { return m.name }

func (m *memBackend) Upload(ctx context.Context, r io.Reader, size int64, key, contentType string) error {
	m.uploads++
	if m.failUpload {
		// Consume part of the stream before failing, like a real backend
		// dying mid-transfer would.
		io.CopyN(io.Discard, r, 10)
		return fmt.Errorf("%w: simulated outage", ErrBackendUnavailable)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

type nopCloser struct{ *bytes.Reader }

func (nopCloser) Close() error { return nil }

func (m *memBackend) Download(ctx context.Context, key string) (io.ReadSeekCloser, int64, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, 0, ErrObjectNotFound
	}
	return nopCloser{bytes.NewReader(data)}, int64(len(data)), nil
}

func (m *memBackend) Delete(ctx context.Context, key string) error {
	if m.failDelete {
		return fmt.Errorf("%w: simulated outage", ErrBackendUnavailable)
	}
	if _, ok := m.objects[key]; !ok {
		return ErrObjectNotFound
	}
	delete(m.objects, key)
	return nil
}

func (m *memBackend) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.objects[key]
	return ok, nil
}

func TestFallbackUploadPrimarySucceeds(t *testing.T) {
	primary := newMemBackend(models.BackendMinio)
	secondary := newMemBackend(models.BackendLocal)
	fb := NewFallback(primary, secondary)

	data := []byte("hello media")
	backend, err := fb.Upload(context.Background(), bytes.NewReader(data), int64(len(data)), "k1", "text/plain")
	require.NoError(t, err)
	assert.Equal(t, models.BackendMinio, backend)
	assert.Equal(t, data, primary.objects["k1"])
	assert.Zero(t, secondary.uploads)
}

func TestFallbackUploadFallsBackWithFullStream(t *testing.T) {
	primary := newMemBackend(models.BackendMinio)
	primary.failUpload = true
	secondary := newMemBackend(models.BackendLocal)
	fb := NewFallback(primary, secondary)

	data := []byte("the full unconsumed stream, byte for byte")
	backend, err := fb.Upload(context.Background(), bytes.NewReader(data), int64(len(data)), "k1", "text/plain")
	require.NoError(t, err)
	assert.Equal(t, models.BackendLocal, backend)
	// The fallback must see the whole stream even though the primary
	// attempt may have consumed part of it.
	assert.Equal(t, data, secondary.objects["k1"])
}

func TestFallbackUploadAllFail(t *testing.T) {
	primary := newMemBackend(models.BackendMinio)
	primary.failUpload = true
	secondary := newMemBackend(models.BackendLocal)
	secondary.failUpload = true
	fb := NewFallback(primary, secondary)

	data := []byte("doomed")
	_, err := fb.Upload(context.Background(), bytes.NewReader(data), int64(len(data)), "k1", "text/plain")
	require.ErrorIs(t, err, ErrAllBackendsFailed)
}

func TestFallbackOpenUsesRecordedBackend(t *testing.T) {
	primary := newMemBackend(models.BackendMinio)
	secondary := newMemBackend(models.BackendLocal)
	secondary.objects["k1"] = []byte("on the fallback")
	fb := NewFallback(primary, secondary)

	rc, size, backend, err := fb.Open(context.Background(), "k1", models.BackendLocal)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, models.BackendLocal, backend)
	assert.Equal(t, int64(15), size)
}

func TestFallbackOpenProbesWhenUnrecorded(t *testing.T) {
	primary := newMemBackend(models.BackendMinio)
	secondary := newMemBackend(models.BackendLocal)
	secondary.objects["k1"] = []byte("found by probing")
	fb := NewFallback(primary, secondary)

	rc, _, backend, err := fb.Open(context.Background(), "k1", "")
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, models.BackendLocal, backend)

	_, _, _, err = fb.Open(context.Background(), "missing", "")
	require.ErrorIs(t, err, ErrObjectNotFound)
}

func TestFallbackDeleteReportsPerBackend(t *testing.T) {
	primary := newMemBackend(models.BackendMinio)
	primary.objects["k1"] = []byte("x")
	primary.failDelete = true
	secondary := newMemBackend(models.BackendLocal)
	secondary.objects["k1"] = []byte("x")
	fb := NewFallback(primary, secondary)

	results := fb.Delete(context.Background(), "k1", models.BackendMinio)
	require.Len(t, results, 2)

	// Recorded backend is attempted first and its failure surfaced.
	assert.Equal(t, models.BackendMinio, results[0].Backend)
	assert.False(t, results[0].Deleted)
	assert.NotEmpty(t, results[0].Error)

	assert.Equal(t, models.BackendLocal, results[1].Backend)
	assert.True(t, results[1].Deleted)
}

func TestFallbackDeleteMissingIsNotAFailure(t *testing.T) {
	primary := newMemBackend(models.BackendMinio)
	primary.objects["k1"] = []byte("x")
	secondary := newMemBackend(models.BackendLocal)
	fb := NewFallback(primary, secondary)

	results := fb.Delete(context.Background(), "k1", models.BackendMinio)
	require.Len(t, results, 2)
	assert.True(t, results[0].Deleted)
	assert.False(t, results[1].Deleted)
	assert.Empty(t, results[1].Error)
}

func TestFallbackOpenUnknownBackendName(t *testing.T) {
	fb := NewFallback(newMemBackend(models.BackendMinio))
	_, _, _, err := fb.Open(context.Background(), "k1", models.StorageBackend("tape"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrObjectNotFound))
}
