package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	gcs "cloud.google.com/go/storage"
	"github.com/minio/minio-go/v7"

	"github.com/joseph-ayodele/cv-parser/internal/common"
)

type readCloser struct {
	io.Reader
	closed bool
}

func (r *readCloser) Close() error {
	r.closed = true
	return nil
}

var errMissing = errors.New("missing")

func newReader(open openFunc) *objectReader {
	return &objectReader{
		backend:    "fake",
		bucket:     "cv",
		open:       open,
		isNotFound: func(err error) bool { return errors.Is(err, errMissing) },
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestFetchReturnsBytesAndCloses(t *testing.T) {
	rc := &readCloser{Reader: bytes.NewReader([]byte("%PDF-1.7"))}
	var gotBucket, gotKey string
	r := newReader(func(_ context.Context, bucket, key string) (io.ReadCloser, error) {
		gotBucket, gotKey = bucket, key
		return rc, nil
	})

	data, err := r.Fetch(context.Background(), ObjectKey(42))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "%PDF-1.7" {
		t.Fatalf("data = %q", data)
	}
	if gotBucket != "cv" || gotKey != "42" {
		t.Fatalf("opened %s/%s", gotBucket, gotKey)
	}
	if !rc.closed {
		t.Fatal("reader was not closed")
	}
}

func TestFetchClassifiesErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"missing", errMissing, common.ErrNotFound},
		{"transport", errors.New("connection reset"), common.ErrTransfer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newReader(func(context.Context, string, string) (io.ReadCloser, error) {
				return nil, tc.err
			})
			_, err := r.Fetch(context.Background(), "7")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !errors.Is(err, tc.err) {
				t.Fatalf("cause lost: %v", err)
			}
		})
	}
}

func TestBackendNotFoundMatchers(t *testing.T) {
	if !gcsNotFound(gcs.ErrObjectNotExist) {
		t.Fatal("gcs: ErrObjectNotExist should be not-found")
	}
	if gcsNotFound(errors.New("boom")) {
		t.Fatal("gcs: arbitrary error treated as not-found")
	}
	if !minioNotFound(minio.ErrorResponse{Code: "NoSuchKey"}) {
		t.Fatal("minio: NoSuchKey should be not-found")
	}
	if minioNotFound(minio.ErrorResponse{Code: "AccessDenied"}) {
		t.Fatal("minio: AccessDenied treated as not-found")
	}
}
