package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/cv-parser/constants"
	"github.com/joseph-ayodele/cv-parser/internal/common"
)

// Extractor sends resume text to the completion service with the fixed
// instruction prompt and returns the raw response. One call per document.
type Extractor struct {
	completer Completer
	model     string
	logger    *slog.Logger
}

func NewExtractor(c Completer, model string, logger *slog.Logger) *Extractor {
	if model == "" {
		model = constants.DefaultLLMModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{completer: c, model: model, logger: logger}
}

// Extract returns the model's raw text. Failures are ErrUpstream.
func (e *Extractor) Extract(ctx context.Context, resumeText string) (string, error) {
	start := time.Now()
	log := common.LoggerFrom(ctx, e.logger)
	log.Info("llm.extract.start", "model", e.model, "text_len", len(resumeText))

	raw, err := e.completer.Complete(ctx, e.model, BuildConversation(resumeText))
	if err != nil {
		log.Error("llm.extract.failed", "model", e.model, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		if errors.Is(err, common.ErrUpstream) {
			return "", err
		}
		return "", common.Wrapf(common.ErrUpstream, err, "complete")
	}

	log.Info("llm.extract.ok", "model", e.model, "response_len", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds())
	return raw, nil
}
