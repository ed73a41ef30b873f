package llm

import "context"

// CompletionRequest is one prompt sent to a language model.
type CompletionRequest struct {
	System     string
	User       string
	DocumentID string // lets deterministic completers pick a fixture
	TypeHint   string
}

// Completion is the raw text a model returned.
type Completion struct {
	Content      string
	Model        string
	InputTokens  int64
	OutputTokens int64
}

// Completer sends a prompt to a model (live or mock). Implementations must honour
// ctx cancellation and return an error for transport or provider failures.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
	Model() string
}

// Cache stores raw model responses by key. Entries are never overwritten.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, model, response string) error
}
