package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/joseph-ayodele/cv-parser/constants"
	"github.com/joseph-ayodele/cv-parser/internal/common"
)

func TestBuildConversation(t *testing.T) {
	msgs := BuildConversation("Name: Jane Doe")
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != RoleSystem || msgs[0].Content != SystemPrompt {
		t.Fatalf("first message must be the fixed system prompt")
	}
	if msgs[1].Role != RoleUser || !strings.HasSuffix(msgs[1].Content, "\n\nName: Jane Doe") {
		t.Fatalf("unexpected user message %q", msgs[1].Content)
	}
	for _, rule := range []string{"YYYY-MM-DD", "present", "of 4.00", "Machine Learning", "lowercase", "explanatory text"} {
		if !strings.Contains(strings.ToLower(SystemPrompt), strings.ToLower(rule)) {
			t.Fatalf("system prompt lost rule %q", rule)
		}
	}
}

func TestExtractorCallsCompleterOnce(t *testing.T) {
	calls := 0
	var gotModel string
	c := CompleterFunc(func(_ context.Context, model string, msgs []Message) (string, error) {
		calls++
		gotModel = model
		return "{}", nil
	})
	out, err := NewExtractor(c, "", nil).Extract(context.Background(), "text")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if out != "{}" || calls != 1 {
		t.Fatalf("out=%q calls=%d", out, calls)
	}
	if gotModel != constants.DefaultLLMModel {
		t.Fatalf("model = %q", gotModel)
	}
}

func TestExtractorWrapsFailuresAsUpstream(t *testing.T) {
	calls := 0
	c := CompleterFunc(func(context.Context, string, []Message) (string, error) {
		calls++
		return "", errors.New("dial tcp: i/o timeout")
	})
	_, err := NewExtractor(c, "m", nil).Extract(context.Background(), "text")
	if !errors.Is(err, common.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("extractor must not retry, got %d calls", calls)
	}
}
