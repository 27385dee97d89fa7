package async

import (
	"context"
	"time"
)

// Job asks for one stored document to be processed.
type Job struct {
	DocumentID  int64
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// Runner processes a document. Queued jobs never carry bytes.
type Runner interface {
	Parse(ctx context.Context, id int64, data []byte) (string, error)
}
