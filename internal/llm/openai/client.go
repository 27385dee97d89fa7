package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/cv-parser/internal/common"
	"github.com/joseph-ayodele/cv-parser/internal/llm"
)

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float32       `json:"temperature"`
	Messages    []llm.Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message llm.Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete implements llm.Completer using chat/completions. No streaming.
func (c *Client) Complete(ctx context.Context, model string, messages []llm.Message) (string, error) {
	start := time.Now()
	log := common.LoggerFrom(ctx, c.log)
	log.Info("llm.complete.start",
		"provider", "openai",
		"model", model,
		"temp", c.cfg.Temperature,
		"messages", len(messages),
	)

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{}
	if c.cfg.APIKey != "" {
		headers["Authorization"] = "Bearer " + c.cfg.APIKey
	}
	raw, status, err := llm.SendJSON(ctx, c.httpClient, endpoint, chatRequest{
		Model:       model,
		Temperature: c.cfg.Temperature,
		Messages:    messages,
	}, headers, c.log)
	if err != nil {
		log.Error("llm.complete.http_error",
			"status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	var cc chatResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		log.Error("llm.complete.decode_error",
			"error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", common.Wrapf(common.ErrUpstream, err, "decode completion response")
	}
	if cc.Error != nil {
		return "", common.Wrapf(common.ErrUpstream, nil, "provider error: %s", cc.Error.Message)
	}
	if len(cc.Choices) == 0 {
		log.Error("llm.complete.no_choices",
			"raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", common.Wrapf(common.ErrUpstream, nil, "no choices in completion response")
	}

	content := cc.Choices[0].Message.Content
	log.Info("llm.complete.ok",
		"model", model,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

var _ llm.Completer = (*Client)(nil)

// String is used in startup logs.
func (c *Client) String() string {
	return fmt.Sprintf("openai-compatible(%s)", c.cfg.BaseURL)
}
