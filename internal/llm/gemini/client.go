package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/joseph-ayodele/cv-parser/internal/common"
	"github.com/joseph-ayodele/cv-parser/internal/llm"
)

// generator is the part of *genai.Models the client uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements llm.Completer over the Gemini API. System turns become the
// system instruction; the remaining turns are sent as contents.
type Client struct {
	models      generator
	temperature float32
	log         *slog.Logger
}

// NewClient creates a Client configured for the Gemini API backend.
func NewClient(ctx context.Context, apiKey string, temperature float32, logger *slog.Logger) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{models: client.Models, temperature: temperature, log: logger}, nil
}

func (c *Client) Complete(ctx context.Context, model string, messages []llm.Message) (string, error) {
	start := time.Now()
	log := common.LoggerFrom(ctx, c.log)

	var system []string
	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			system = append(system, m.Content)
		case llm.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(contents) == 0 {
		return "", fmt.Errorf("gemini: conversation has no user turn: %w", common.ErrInvalidInput)
	}

	temp := c.temperature
	cfg := &genai.GenerateContentConfig{Temperature: &temp}
	if len(system) > 0 {
		cfg.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}

	log.Info("llm.complete.start", "provider", "gemini", "model", model, "messages", len(messages))
	resp, err := c.models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		log.Error("llm.complete.http_error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", common.Wrapf(common.ErrUpstream, err, "gemini generate content")
	}

	var builder strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate == nil || candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part == nil || part.Text == "" {
					continue
				}
				builder.WriteString(part.Text)
			}
			// first candidate only
			break
		}
	}
	out := builder.String()
	if strings.TrimSpace(out) == "" {
		return "", common.Wrapf(common.ErrUpstream, nil, "gemini api returned empty response")
	}

	log.Info("llm.complete.ok", "model", model, "content_len", len(out),
		"elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

var _ llm.Completer = (*Client)(nil)
