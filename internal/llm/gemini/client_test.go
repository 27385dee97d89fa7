package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"google.golang.org/genai"

	"github.com/joseph-ayodele/cv-parser/internal/common"
	"github.com/joseph-ayodele/cv-parser/internal/llm"
)

type fakeModels struct {
	resp *genai.GenerateContentResponse
	err  error

	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model, f.contents, f.config = model, contents, config
	return f.resp, f.err
}

func newTestClient(f *fakeModels) *Client {
	return &Client{models: f, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestCompleteMapsSystemInstruction(t *testing.T) {
	f := &fakeModels{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: `{"skills":`}, {Text: `["go"]}`}}},
		}},
	}}
	out, err := newTestClient(f).Complete(context.Background(), "gemini-2.5-flash", llm.BuildConversation("resume"))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != `{"skills":["go"]}` {
		t.Fatalf("unexpected output %q", out)
	}
	if f.model != "gemini-2.5-flash" {
		t.Fatalf("model = %q", f.model)
	}
	if len(f.contents) != 1 || f.contents[0].Role != genai.RoleUser {
		t.Fatalf("expected a single user turn, got %+v", f.contents)
	}
	if f.config.SystemInstruction == nil || f.config.SystemInstruction.Parts[0].Text != llm.SystemPrompt {
		t.Fatal("system prompt was not sent as system instruction")
	}
}

func TestCompleteErrors(t *testing.T) {
	cases := map[string]*fakeModels{
		"api error": {err: errors.New("quota exceeded")},
		"empty":     {resp: &genai.GenerateContentResponse{}},
	}
	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := newTestClient(f).Complete(context.Background(), "m", llm.BuildConversation("x"))
			if !errors.Is(err, common.ErrUpstream) {
				t.Fatalf("expected ErrUpstream, got %v", err)
			}
		})
	}
}
