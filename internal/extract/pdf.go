package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gen2brain/go-fitz"

	"github.com/joseph-ayodele/cv-parser/internal/common"
)

// pageSource is the subset of *fitz.Document the extractor needs.
type pageSource interface {
	NumPage() int
	Text(pageNumber int) (string, error)
	Close() error
}

type openFunc func(doc []byte) (pageSource, error)

func openFitz(doc []byte) (pageSource, error) {
	d, err := fitz.NewFromMemory(doc)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// PDFExtractor reads the text layer of a PDF page by page. It does no OCR:
// scanned pages without a text layer come out empty.
type PDFExtractor struct {
	open   openFunc
	logger *slog.Logger
}

func NewPDFExtractor(logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{open: openFitz, logger: logger}
}

// Extract concatenates every page's text in document order, each followed by "\n".
// A page that yields no text contributes only its newline.
func (e *PDFExtractor) Extract(ctx context.Context, doc []byte) (TextExtractionResult, error) {
	start := time.Now()
	log := common.LoggerFrom(ctx, e.logger)

	if len(doc) == 0 {
		return TextExtractionResult{}, common.NewAppError(common.CodeExtraction, "empty document", common.ErrExtraction)
	}

	src, err := e.open(doc)
	if err != nil {
		log.Error("extract.pdf.open_error", "bytes", len(doc), "error", err)
		return TextExtractionResult{}, common.NewAppError(common.CodeExtraction, "not a readable PDF",
			fmt.Errorf("%w: %w", common.ErrExtraction, err))
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Warn("extract.pdf.close_error", "error", err)
		}
	}()

	pages := src.NumPage()
	var b strings.Builder
	empty := 0
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return TextExtractionResult{}, err
		}
		text, err := src.Text(i)
		if err != nil {
			log.Warn("extract.pdf.page_error", "page", i+1, "total", pages, "error", err)
			text = ""
		}
		if strings.TrimSpace(text) == "" {
			empty++
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	res := TextExtractionResult{
		Text:       b.String(),
		Pages:      pages,
		EmptyPages: empty,
		Duration:   time.Since(start),
	}
	log.Debug("extract.pdf.ok",
		"pages", pages,
		"empty_pages", empty,
		"text_len", len(res.Text),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
