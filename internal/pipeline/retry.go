package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/cv-parser/internal/common"
)

// RetryPolicy governs the completion call only. Attempts <= 1 means a single try.
// Only upstream service failures are retried; the backoff doubles after each attempt.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

func (p RetryPolicy) do(ctx context.Context, log *slog.Logger, fn func(context.Context) (string, error)) (string, error) {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := p.Backoff

	var lastErr error
	for i := 0; i < attempts; i++ {
		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !errors.Is(err, common.ErrUpstream) || i == attempts-1 {
			break
		}

		log.Warn("pipeline.complete.retry",
			"attempt", i+1,
			"max_attempts", attempts,
			"backoff", backoff.String(),
			"error", err,
		)
		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return "", errors.Join(lastErr, ctx.Err())
		}
	}
	return "", lastErr
}
