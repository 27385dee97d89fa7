package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/cv-parser/internal/extract"
	"github.com/joseph-ayodele/cv-parser/internal/storage"
)

// Fetcher is the read side of the content store.
type Fetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// ExtractStage resolves the document bytes for a source and turns them into text.
type ExtractStage struct {
	Store         Fetcher
	TextExtractor extract.TextExtractor
	Logger        *slog.Logger
}

func NewExtractStage(store Fetcher, tx extract.TextExtractor, logger *slog.Logger) *ExtractStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStage{Store: store, TextExtractor: tx, Logger: logger}
}

// Run fetches stored documents from the content store; inline documents are used as given.
func (s *ExtractStage) Run(ctx context.Context, src Source) (extract.TextExtractionResult, error) {
	data := src.Bytes()
	if !src.IsInline() {
		if s.Store == nil {
			return extract.TextExtractionResult{}, fmt.Errorf("no content store configured for %s", src)
		}
		var err error
		data, err = s.Store.Fetch(ctx, storage.ObjectKey(src.ID()))
		if err != nil {
			return extract.TextExtractionResult{}, fmt.Errorf("fetch document: %w", err)
		}
	}

	res, err := s.TextExtractor.Extract(ctx, data)
	if err != nil {
		return res, fmt.Errorf("extract text: %w", err)
	}
	return res, nil
}
