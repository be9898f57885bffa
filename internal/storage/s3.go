package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"speechcraft/internal/domain"
)

var _ domain.AudioStore = (*S3Store)(nil)

// S3Store serves audio blobs from S3-compatible object storage. Paths are
// full s3:// URIs like "s3://bucket/audio/xxx.mp3".
type S3Store struct {
	client        *s3.Client
	presignClient *s3.PresignClient
}

// S3Config holds the static credentials and endpoint for an S3-compatible
// store.
type S3Config struct {
	Endpoint string
	Region   string
	KeyID    string
	Secret   string
}

// NewS3Store creates an S3Store with path-style addressing, which
// S3-compatible providers generally require.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	if cfg.Endpoint == "" || cfg.Region == "" || cfg.KeyID == "" || cfg.Secret == "" {
		return nil, fmt.Errorf("S3 config is incomplete")
	}

	client := s3.New(s3.Options{
		Region: cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.KeyID, cfg.Secret, "",
		),
		BaseEndpoint: aws.String("https://" + cfg.Endpoint),
		UsePathStyle: true,
	})

	return &S3Store{
		client:        client,
		presignClient: s3.NewPresignClient(client),
	}, nil
}

// SignedURL generates a presigned GET URL for an S3 object.
func (s *S3Store) SignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	bucket, key, err := parseBucketPath(path, "s3")
	if err != nil {
		return "", err
	}

	result, err := s.presignClient.PresignGetObject(ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		},
		s3.WithPresignExpires(expiry),
	)
	if err != nil {
		return "", fmt.Errorf("presign GetObject for %q: %w", path, err)
	}
	return result.URL, nil
}

// Delete removes an S3 object.
func (s *S3Store) Delete(ctx context.Context, path string) error {
	bucket, key, err := parseBucketPath(path, "s3")
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete S3 object %q: %w", path, err)
	}
	return nil
}
