package storage

import (
	"context"
	"fmt"
	"time"

	gstorage "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"speechcraft/internal/domain"
)

var _ domain.AudioStore = (*GCSStore)(nil)

// GCSStore serves audio blobs from Google Cloud Storage. Paths are full
// gs:// URIs like "gs://bucket/audio/xxx.mp3".
type GCSStore struct {
	client *gstorage.Client
}

// NewGCSStore creates a GCSStore authenticated with a service account key
// file.
func NewGCSStore(ctx context.Context, keyFilePath string) (*GCSStore, error) {
	if keyFilePath == "" {
		return nil, fmt.Errorf("GCS key file path is required")
	}

	client, err := gstorage.NewClient(ctx, option.WithCredentialsFile(keyFilePath))
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}

	return &GCSStore{client: client}, nil
}

// SignedURL generates a signed GET URL for a GCS object.
func (s *GCSStore) SignedURL(_ context.Context, path string, expiry time.Duration) (string, error) {
	bucket, key, err := parseBucketPath(path, "gs")
	if err != nil {
		return "", err
	}

	signedURL, err := s.client.Bucket(bucket).SignedURL(key, &gstorage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(expiry),
	})
	if err != nil {
		return "", fmt.Errorf("sign GetObject for %q: %w", path, err)
	}
	return signedURL, nil
}

// Delete removes a GCS object.
func (s *GCSStore) Delete(ctx context.Context, path string) error {
	bucket, key, err := parseBucketPath(path, "gs")
	if err != nil {
		return err
	}

	if err := s.client.Bucket(bucket).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("delete GCS object %q: %w", path, err)
	}
	return nil
}
