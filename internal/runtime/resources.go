package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/cv-parser/constants"
	"github.com/joseph-ayodele/cv-parser/internal/common"
	"github.com/joseph-ayodele/cv-parser/internal/extract"
	"github.com/joseph-ayodele/cv-parser/internal/llm"
	"github.com/joseph-ayodele/cv-parser/internal/llm/gemini"
	"github.com/joseph-ayodele/cv-parser/internal/llm/openai"
	"github.com/joseph-ayodele/cv-parser/internal/notify"
	"github.com/joseph-ayodele/cv-parser/internal/pipeline"
	"github.com/joseph-ayodele/cv-parser/internal/repository"
	"github.com/joseph-ayodele/cv-parser/internal/storage"
)

// Resources is the process-wide set of shared connections. It is built once at
// startup, handed to whatever needs it, and closed once at shutdown.
type Resources struct {
	DB        *repository.DB
	Store     storage.ContentStore
	Publisher notify.Publisher
	Completer llm.Completer

	Skills   repository.SkillRepository
	Keywords repository.KeywordRepository
	CVs      repository.CVRepository

	Processor *pipeline.Processor

	logger    *slog.Logger
	closeOnce sync.Once
	closeErr  error
}

type options struct {
	store     storage.ContentStore
	publisher notify.Publisher
	completer llm.Completer
	extractor extract.TextExtractor
	skipStore bool
}

type Option func(*options)

// WithContentStore uses s instead of the configured backend.
func WithContentStore(s storage.ContentStore) Option { return func(o *options) { o.store = s } }

// WithPublisher uses p instead of a Kafka writer.
func WithPublisher(p notify.Publisher) Option { return func(o *options) { o.publisher = p } }

// WithCompleter uses c instead of the configured LLM provider.
func WithCompleter(c llm.Completer) Option { return func(o *options) { o.completer = c } }

// WithTextExtractor replaces the PDF extractor.
func WithTextExtractor(tx extract.TextExtractor) Option {
	return func(o *options) { o.extractor = tx }
}

// WithoutContentStore opens no content store; only inline documents can be processed.
func WithoutContentStore() Option { return func(o *options) { o.skipStore = true } }

// Open connects everything eagerly so configuration problems surface at
// startup instead of on the first document. On failure, whatever was already
// opened is closed again.
func Open(ctx context.Context, cfg *common.Config, logger *slog.Logger, opts ...Option) (*Resources, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	start := time.Now()
	r := &Resources{logger: logger}

	db, err := repository.Open(ctx, repository.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	r.DB = db
	if err := db.HealthCheck(ctx, cfg.Database.DialTimeout); err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("database health check: %w", err)
	}

	r.Skills = repository.NewSkillRepository(db, logger)
	r.Keywords = repository.NewKeywordRepository(db, logger)
	r.CVs = repository.NewCVRepository(db, logger)

	switch {
	case o.store != nil:
		r.Store = o.store
	case !o.skipStore:
		if r.Store, err = openStore(ctx, cfg.Storage, logger); err != nil {
			_ = r.Close(ctx)
			return nil, err
		}
	}

	if o.publisher != nil {
		r.Publisher = o.publisher
	} else {
		kp, err := notify.NewKafkaPublisher(cfg.Kafka.Brokers, logger)
		if err != nil {
			_ = r.Close(ctx)
			return nil, fmt.Errorf("open publisher: %w", err)
		}
		r.Publisher = kp
	}

	if o.completer != nil {
		r.Completer = o.completer
	} else if r.Completer, err = openCompleter(ctx, cfg.LLM, logger); err != nil {
		_ = r.Close(ctx)
		return nil, err
	}

	tx := o.extractor
	if tx == nil {
		tx = extract.NewPDFExtractor(logger)
	}
	var fetcher pipeline.Fetcher
	if r.Store != nil {
		fetcher = r.Store
	}
	r.Processor = pipeline.NewProcessor(logger,
		pipeline.NewExtractStage(fetcher, tx, logger),
		pipeline.NewParseStage(
			llm.NewExtractor(r.Completer, cfg.LLM.Model, logger),
			llm.NewSanitizer(logger),
			r.Skills,
			pipeline.RetryPolicy{Attempts: cfg.LLM.RetryAttempts, Backoff: cfg.LLM.RetryBackoff},
			logger,
		),
		r.Keywords,
		notify.NewNotifier(r.Publisher, r.CVs, cfg.Kafka.EmbeddingTopic),
	)

	logger.Info("runtime.open.ok",
		"llm_provider", cfg.LLM.Provider,
		"llm_model", cfg.LLM.Model,
		"storage", storeName(r.Store),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return r, nil
}

func openStore(ctx context.Context, cfg common.StorageConfig, logger *slog.Logger) (storage.ContentStore, error) {
	switch cfg.Backend {
	case constants.StorageGCS:
		s, err := storage.NewGCSStore(ctx, cfg.Bucket, logger)
		if err != nil {
			return nil, fmt.Errorf("open gcs store: %w", err)
		}
		return s, nil
	default:
		s, err := storage.NewMinIOStore(storage.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			UseSSL:    cfg.MinIOUseSSL,
			Bucket:    cfg.Bucket,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("open minio store: %w", err)
		}
		return s, nil
	}
}

func openCompleter(ctx context.Context, cfg common.LLMConfig, logger *slog.Logger) (llm.Completer, error) {
	switch cfg.Provider {
	case constants.ProviderGemini:
		c, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.Temperature, logger)
		if err != nil {
			return nil, fmt.Errorf("open gemini client: %w", err)
		}
		return c, nil
	default:
		return openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger), nil
	}
}

func storeName(s storage.ContentStore) string {
	switch s.(type) {
	case nil:
		return "none"
	case *storage.MinIOStore:
		return constants.StorageMinIO
	case *storage.GCSStore:
		return constants.StorageGCS
	default:
		return fmt.Sprintf("%T", s)
	}
}

// Close tears down in dependency order: the publisher first so buffered events
// are flushed, then the content store, then the database pool. It is safe to
// call more than once; runs still in flight fail with persistence errors.
func (r *Resources) Close(ctx context.Context) error {
	r.closeOnce.Do(func() {
		done := make(chan error, 1)
		go func() {
			var errs []error
			if r.Publisher != nil {
				if err := r.Publisher.Close(); err != nil {
					errs = append(errs, fmt.Errorf("close publisher: %w", err))
				}
			}
			if r.Store != nil {
				if err := r.Store.Close(); err != nil {
					errs = append(errs, fmt.Errorf("close content store: %w", err))
				}
			}
			if r.DB != nil {
				if err := r.DB.Close(); err != nil {
					errs = append(errs, fmt.Errorf("close database: %w", err))
				}
			}
			done <- errors.Join(errs...)
		}()

		select {
		case r.closeErr = <-done:
		case <-ctx.Done():
			r.closeErr = fmt.Errorf("close resources: %w", ctx.Err())
		}
		if r.closeErr != nil {
			r.logger.Error("runtime.close.failed", "error", r.closeErr)
			return
		}
		r.logger.Info("runtime.close.ok")
	})
	return r.closeErr
}
