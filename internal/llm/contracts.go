package llm

import "context"

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a completion conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer is the completion-service contract: one conversation in, one
// textual response out. Implementations wrap transport failures in
// common.ErrUpstream and never retry.
type Completer interface {
	Complete(ctx context.Context, model string, messages []Message) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, model string, messages []Message) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, model string, messages []Message) (string, error) {
	return f(ctx, model, messages)
}
