package extract

import (
	"context"
	"time"
)

// TextExtractor is Stage 1: document bytes -> text.
type TextExtractor interface {
	Extract(ctx context.Context, doc []byte) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text       string
	Pages      int
	EmptyPages int
	Duration   time.Duration
}
