package adapter

import "context"

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Usage for a single chat call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// AIServiceAdapter is the port for the generative text service.
type AIServiceAdapter interface {
	// Provider names the backend for logs and metrics labels.
	Provider() string

	ListModels(ctx context.Context) ([]string, error)

	// Chat returns only the assistant text
	Chat(ctx context.Context, model string, messages []Message) (string, error)

	// ChatWithUsage returns assistant text + usage as reported by the provider.
	ChatWithUsage(ctx context.Context, model string, messages []Message) (string, Usage, error)
}

// TokenCounter is implemented by adapters that can estimate prompt size
// before a call. Best-effort when exact counting isn't available.
type TokenCounter interface {
	CountTokens(ctx context.Context, model string, messages []Message) (int, error)
}
