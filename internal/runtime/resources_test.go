package runtime

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/cv-parser/internal/common"
	"github.com/joseph-ayodele/cv-parser/internal/extract"
	"github.com/joseph-ayodele/cv-parser/internal/llm"
)

type countingPublisher struct {
	closed int
	order  *[]string
}

func (p *countingPublisher) Publish(context.Context, string, string, any) error { return nil }

func (p *countingPublisher) Close() error {
	p.closed++
	*p.order = append(*p.order, "publisher")
	return nil
}

type plainText struct{}

func (plainText) Extract(_ context.Context, b []byte) (extract.TextExtractionResult, error) {
	return extract.TextExtractionResult{Text: string(b), Pages: 1}, nil
}

func testConfig(t *testing.T) *common.Config {
	cfg := &common.Config{}
	cfg.Database.DSN = "file:" + filepath.Join(t.TempDir(), "cv.db")
	cfg.Kafka.EmbeddingTopic = "cv_embedding_generation"
	cfg.LLM.RetryAttempts = 1
	return cfg
}

func TestOpenAndCloseLifecycle(t *testing.T) {
	ctx := context.Background()
	var order []string
	pub := &countingPublisher{order: &order}
	completions := 0
	completer := llm.CompleterFunc(func(context.Context, string, []llm.Message) (string, error) {
		completions++
		return `{"skills": ["Go"]}`, nil
	})

	res, err := Open(ctx, testConfig(t), slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithoutContentStore(), WithPublisher(pub), WithCompleter(completer), WithTextExtractor(plainText{}))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := res.DB.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	out, err := res.Processor.Parse(ctx, 1, []byte("Skills: Go"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if out == "" || completions != 1 {
		t.Fatalf("out=%q completions=%d", out, completions)
	}

	// stored documents need a content store
	if _, err := res.Processor.Parse(ctx, 1, nil); err == nil {
		t.Fatal("expected stored run without a content store to fail")
	}

	if err := res.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := res.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if pub.closed != 1 {
		t.Fatalf("publisher closed %d times", pub.closed)
	}

	// a run that reaches the database after teardown fails cleanly
	_, err = res.Processor.Parse(ctx, 2, []byte("Skills: Go"))
	if !errors.Is(err, common.ErrPersistence) {
		t.Fatalf("expected ErrPersistence after Close, got %v", err)
	}
}

func TestOpenFailsFastOnBadDatabase(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.DSN = ""
	if _, err := Open(context.Background(), cfg, nil, WithoutContentStore()); err == nil {
		t.Fatal("expected Open to fail without a dsn")
	}
}
