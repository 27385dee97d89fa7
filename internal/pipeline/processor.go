package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/cv-parser/internal/common"
	"github.com/joseph-ayodele/cv-parser/internal/entity"
)

// KeywordRecorder writes the cross-reference row for a document.
type KeywordRecorder interface {
	Record(ctx context.Context, cvID int64, skills []string) (bool, error)
}

// EmbeddingNotifier announces a persisted document downstream.
type EmbeddingNotifier interface {
	NotifyEmbedding(ctx context.Context, cvID int64) error
}

// Processor coordinates text extraction, LLM parse and, for stored documents,
// the cross-reference write and the embedding notification.
type Processor struct {
	Logger   *slog.Logger
	Extract  *ExtractStage
	Fields   *ParseStage
	Keywords KeywordRecorder
	Notifier EmbeddingNotifier
}

func NewProcessor(logger *slog.Logger, ex *ExtractStage, parse *ParseStage, keywords KeywordRecorder, notifier EmbeddingNotifier) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Extract: ex, Fields: parse, Keywords: keywords, Notifier: notifier}
}

// Run executes one document. Every failure before the cross-reference write
// aborts the run with nothing written; a notification failure is logged only.
func (p *Processor) Run(ctx context.Context, src Source) (*entity.ParsedCV, error) {
	start := time.Now()
	ctx = common.WithDocumentID(ctx, src.ID())
	log := common.LoggerFrom(ctx, p.Logger).With("mode", src.Mode())

	// 1) bytes -> text
	res, err := p.Extract.Run(ctx, src)
	if err != nil {
		log.Error("pipeline.extract.failed", "error", err)
		return nil, err
	}
	log.Info("pipeline.extract.ok", "pages", res.Pages, "empty_pages", res.EmptyPages, "text_len", len(res.Text))

	// 2) text -> record with catalog skills
	parsed, err := p.Fields.Run(ctx, res.Text)
	if err != nil {
		log.Error("pipeline.parse.failed", "error", err)
		return nil, err
	}
	log.Info("pipeline.parse.ok", "skills", len(parsed.Skills))

	if !src.Persists() {
		log.Info("pipeline.run.ok", "elapsed_ms", time.Since(start).Milliseconds())
		return parsed, nil
	}

	// 3) cross-reference
	inserted, err := p.Keywords.Record(ctx, src.ID(), entity.Names(parsed.Skills))
	if err != nil {
		log.Error("pipeline.persist.failed", "error", err)
		return nil, err
	}
	log.Info("pipeline.persist.ok", "inserted", inserted)

	// 4) best-effort notification
	p.notify(ctx, log, src.ID())

	log.Info("pipeline.run.ok", "elapsed_ms", time.Since(start).Milliseconds())
	return parsed, nil
}

func (p *Processor) notify(ctx context.Context, log *slog.Logger, id int64) {
	if p.Notifier == nil {
		return
	}
	if err := p.Notifier.NotifyEmbedding(ctx, id); err != nil {
		log.Error("pipeline.notify.failed", "error", err)
		return
	}
	log.Info("pipeline.notify.ok")
}

// Parse is the invocation surface. With bytes it returns the record as JSON;
// without, it processes the stored document and returns "".
func (p *Processor) Parse(ctx context.Context, id int64, data []byte) (string, error) {
	src := SourceFor(id, data)
	parsed, err := p.Run(ctx, src)
	if err != nil {
		return "", err
	}
	if src.Persists() {
		return "", nil
	}
	b, err := json.Marshal(parsed)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	return string(b), nil
}
