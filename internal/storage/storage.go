// Package storage provides audio blob access for the cloud object stores a
// deployment may keep its uploads in. Each backend signs time-limited read
// URLs and deletes blobs when a transcription is removed.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"speechcraft/internal/domain"
)

// ErrUnsupportedScheme marks an audio URL that no configured backend can
// serve, such as a plain https:// CDN link. Blob cleanup treats it as a
// no-op.
var ErrUnsupportedScheme = errors.New("unsupported audio URL scheme")

var _ domain.AudioStore = (*Router)(nil)

// Router dispatches audio blob operations to the backend matching the URL
// scheme. Backends left nil simply do not serve their scheme.
type Router struct {
	s3    domain.AudioStore
	azure domain.AudioStore
	gcs   domain.AudioStore
}

// NewRouter creates a Router over the given backends. Any backend may be
// nil.
func NewRouter(s3, azure, gcs domain.AudioStore) *Router {
	return &Router{s3: s3, azure: azure, gcs: gcs}
}

// SignedURL produces a time-limited read URL for the blob behind path.
func (r *Router) SignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	backend, err := r.backendFor(path)
	if err != nil {
		return "", err
	}
	return backend.SignedURL(ctx, path, expiry)
}

// Delete removes the blob behind path.
func (r *Router) Delete(ctx context.Context, path string) error {
	backend, err := r.backendFor(path)
	if err != nil {
		return err
	}
	return backend.Delete(ctx, path)
}

func (r *Router) backendFor(path string) (domain.AudioStore, error) {
	u, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse audio URL %q: %w", path, err)
	}

	var backend domain.AudioStore
	switch u.Scheme {
	case "s3":
		backend = r.s3
	case "az", "abfss":
		backend = r.azure
	case "gs":
		backend = r.gcs
	}
	if backend == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	return backend, nil
}

// parseBucketPath extracts bucket and key from a "<scheme>://bucket/key"
// URI.
func parseBucketPath(path, scheme string) (bucket, key string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", fmt.Errorf("parse %s path %q: %w", scheme, path, err)
	}
	if u.Scheme != scheme {
		return "", "", fmt.Errorf("expected %s:// scheme, got %q in %q", scheme, u.Scheme, path)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("empty bucket in %s path %q", scheme, path)
	}
	if key == "" {
		return "", "", fmt.Errorf("empty key in %s path %q", scheme, path)
	}
	return bucket, key, nil
}
