package storage

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/abune-media/media-service/internal/models"
)

// MinioBackend stores objects in a MinIO/S3 bucket. It is the primary
// backend in the fallback order.
type MinioBackend struct {
	client     *minio.Client
	bucketName string
}

// NewMinioBackend connects to MinIO and ensures the bucket exists.
func NewMinioBackend(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioBackend, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %v", err)
	}

	// Create bucket if it doesn't exist
	exists, err := client.BucketExists(context.Background(), bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %v", err)
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %v", err)
		}
		log.Printf("[MinIO] created bucket: %s", bucket)
	}

	log.Println("[MinIO] connected successfully")
	return &MinioBackend{client: client, bucketName: bucket}, nil
}

func (m *MinioBackend) Name() models.StorageBackend {
	return models.BackendMinio
}

// CheckConnection is used by the health endpoint.
func (m *MinioBackend) CheckConnection(ctx context.Context) error {
	if m == nil || m.client == nil {
		return fmt.Errorf("minio backend not initialized")
	}
	_, err := m.client.BucketExists(ctx, m.bucketName)
	return err
}

func (m *MinioBackend) Upload(ctx context.Context, r io.Reader, size int64, key, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucketName, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("%w: minio put %s: %v", ErrBackendUnavailable, key, err)
	}
	return nil
}

func (m *MinioBackend) Download(ctx context.Context, key string) (io.ReadSeekCloser, int64, error) {
	obj, err := m.client.GetObject(ctx, m.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: minio get %s: %v", ErrBackendUnavailable, key, err)
	}

	// GetObject is lazy; Stat performs the first request and reveals
	// missing keys.
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, 0, ErrObjectNotFound
		}
		return nil, 0, fmt.Errorf("%w: minio stat %s: %v", ErrBackendUnavailable, key, err)
	}

	return obj, info.Size, nil
}

func (m *MinioBackend) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: minio remove %s: %v", ErrBackendUnavailable, key, err)
	}
	return nil
}

func (m *MinioBackend) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.client.StatObject(ctx, m.bucketName, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("%w: minio stat %s: %v", ErrBackendUnavailable, key, err)
	}
	return true, nil
}
