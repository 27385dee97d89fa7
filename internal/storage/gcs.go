package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	gcs "cloud.google.com/go/storage"
)

// GCSStore reads documents from a Cloud Storage bucket using application default credentials.
type GCSStore struct {
	objectReader
	client *gcs.Client
}

func NewGCSStore(ctx context.Context, bucket string, logger *slog.Logger) (*GCSStore, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &GCSStore{client: client}
	s.objectReader = objectReader{
		backend:    "gcs",
		bucket:     bucket,
		open:       s.open,
		isNotFound: gcsNotFound,
		logger:     logger,
	}
	return s, nil
}

func (s *GCSStore) open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	return s.client.Bucket(bucket).Object(key).NewReader(ctx)
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

func gcsNotFound(err error) bool {
	return errors.Is(err, gcs.ErrObjectNotExist) || errors.Is(err, gcs.ErrBucketNotExist)
}

var _ ContentStore = (*GCSStore)(nil)
