package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/joseph-ayodele/cv-parser/internal/common"
)

// maxObjectBytes caps how much of a stored document is read into memory.
const maxObjectBytes = 64 << 20

// ContentStore fetches stored resume documents by key.
// A missing object is reported as common.ErrNotFound, any other failure as common.ErrTransfer.
type ContentStore interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
	Close() error
}

// ObjectKey is the key a document is stored under: its id in decimal.
func ObjectKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

type openFunc func(ctx context.Context, bucket, key string) (io.ReadCloser, error)

// objectReader holds the fetch logic shared by the bucket backends.
type objectReader struct {
	backend    string
	bucket     string
	open       openFunc
	isNotFound func(error) bool
	logger     *slog.Logger
}

func (r *objectReader) Fetch(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	log := common.LoggerFrom(ctx, r.logger).With("backend", r.backend, "bucket", r.bucket, "key", key)

	rc, err := r.open(ctx, r.bucket, key)
	if err != nil {
		return nil, r.classify(log, key, err)
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil {
			log.Warn("storage.fetch.close_error", "error", cerr)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(rc, maxObjectBytes+1))
	if err != nil {
		return nil, r.classify(log, key, err)
	}
	if len(data) > maxObjectBytes {
		log.Error("storage.fetch.too_large", "limit_bytes", maxObjectBytes)
		return nil, common.Wrapf(common.ErrTransfer, nil, "object %s/%s exceeds %d bytes", r.bucket, key, maxObjectBytes)
	}

	log.Info("storage.fetch.ok", "bytes", len(data), "elapsed_ms", time.Since(start).Milliseconds())
	return data, nil
}

func (r *objectReader) classify(log *slog.Logger, key string, err error) error {
	if r.isNotFound(err) {
		log.Warn("storage.fetch.not_found")
		return &common.AppError{
			Code:    common.CodeNotFound,
			Message: fmt.Sprintf("object %s/%s not found", r.bucket, key),
			Cause:   errors.Join(common.ErrNotFound, err),
		}
	}
	log.Error("storage.fetch.failed", "error", err)
	return &common.AppError{
		Code:    common.CodeTransfer,
		Message: fmt.Sprintf("fetch %s/%s", r.bucket, key),
		Cause:   errors.Join(common.ErrTransfer, err),
	}
}
