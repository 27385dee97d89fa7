package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/cv-parser/internal/common"
	"github.com/joseph-ayodele/cv-parser/internal/entity"
)

// ResponseSource produces the raw model response for a resume's text.
type ResponseSource interface {
	Extract(ctx context.Context, text string) (string, error)
}

// RecordSanitizer turns a raw model response into a normalized record.
type RecordSanitizer interface {
	Sanitize(ctx context.Context, raw string) (*entity.CandidateRecord, error)
}

// SkillReconciler maps skill names onto catalog rows, creating missing ones.
type SkillReconciler interface {
	Reconcile(ctx context.Context, names []string) ([]entity.Skill, error)
}

// ParseStage runs the completion call, sanitizes its output and resolves the skills.
type ParseStage struct {
	Model     ResponseSource
	Sanitizer RecordSanitizer
	Skills    SkillReconciler
	Retry     RetryPolicy
	Logger    *slog.Logger
}

func NewParseStage(model ResponseSource, sanitizer RecordSanitizer, skills SkillReconciler, retry RetryPolicy, logger *slog.Logger) *ParseStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParseStage{Model: model, Sanitizer: sanitizer, Skills: skills, Retry: retry, Logger: logger}
}

func (p *ParseStage) Run(ctx context.Context, text string) (*entity.ParsedCV, error) {
	log := common.LoggerFrom(ctx, p.Logger)

	start := time.Now()
	raw, err := p.Retry.do(ctx, log, func(ctx context.Context) (string, error) {
		return p.Model.Extract(ctx, text)
	})
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}
	log.Debug("pipeline.complete.ok", "raw_len", len(raw), "elapsed_ms", time.Since(start).Milliseconds())

	rec, err := p.Sanitizer.Sanitize(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("sanitize: %w", err)
	}

	skills, err := p.Skills.Reconcile(ctx, rec.Skills)
	if err != nil {
		return nil, fmt.Errorf("reconcile skills: %w", err)
	}
	return rec.Resolve(skills), nil
}
