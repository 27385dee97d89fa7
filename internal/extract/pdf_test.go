package extract

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/joseph-ayodele/cv-parser/internal/common"
)

type fakeDoc struct {
	pages  []string
	errs   map[int]error
	closed bool
}

func (f *fakeDoc) NumPage() int { return len(f.pages) }

func (f *fakeDoc) Text(i int) (string, error) {
	if err := f.errs[i]; err != nil {
		return "", err
	}
	return f.pages[i], nil
}

func (f *fakeDoc) Close() error {
	f.closed = true
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestExtractor(doc *fakeDoc, openErr error) *PDFExtractor {
	e := NewPDFExtractor(quietLogger())
	e.open = func([]byte) (pageSource, error) {
		if openErr != nil {
			return nil, openErr
		}
		return doc, nil
	}
	return e
}

func TestExtractConcatenatesPagesInOrder(t *testing.T) {
	cases := []struct {
		name  string
		pages []string
		errs  map[int]error
		want  string
		empty int
	}{
		{
			name:  "single page",
			pages: []string{"Name: Jane Doe\nSkills: SQL"},
			want:  "Name: Jane Doe\nSkills: SQL\n",
		},
		{
			name:  "empty middle page",
			pages: []string{"first", "", "third"},
			want:  "first\n\nthird\n",
			empty: 1,
		},
		{
			name:  "page error counts as empty",
			pages: []string{"a", "b", "c"},
			errs:  map[int]error{1: errors.New("broken content stream")},
			want:  "a\n\nc\n",
			empty: 1,
		},
		{
			name:  "no pages",
			pages: nil,
			want:  "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := &fakeDoc{pages: tc.pages, errs: tc.errs}
			res, err := newTestExtractor(doc, nil).Extract(context.Background(), []byte("%PDF-1.4"))
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if res.Text != tc.want {
				t.Fatalf("text = %q, want %q", res.Text, tc.want)
			}
			if res.Pages != len(tc.pages) {
				t.Fatalf("pages = %d, want %d", res.Pages, len(tc.pages))
			}
			if res.EmptyPages != tc.empty {
				t.Fatalf("empty pages = %d, want %d", res.EmptyPages, tc.empty)
			}
			if !doc.closed {
				t.Fatal("document was not closed")
			}
		})
	}
}

func TestExtractInvalidDocument(t *testing.T) {
	e := newTestExtractor(nil, errors.New("cannot recognize version marker"))
	_, err := e.Extract(context.Background(), []byte("definitely not a pdf"))
	if !errors.Is(err, common.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
	var appErr *common.AppError
	if !errors.As(err, &appErr) || appErr.Code != common.CodeExtraction {
		t.Fatalf("expected AppError with code %s, got %v", common.CodeExtraction, err)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	e := newTestExtractor(&fakeDoc{}, nil)
	if _, err := e.Extract(context.Background(), nil); !errors.Is(err, common.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestExtractHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doc := &fakeDoc{pages: []string{"a"}}
	if _, err := newTestExtractor(doc, nil).Extract(ctx, []byte("%PDF")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
