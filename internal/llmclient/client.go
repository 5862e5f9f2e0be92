package llmclient

import "context"

// Roles for Message. Providers map these onto their own wire formats.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one role-tagged entry in a chat request, in send order.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage carries the token counters a provider reported for one call.
// All zero when the provider returned no usage block.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates other into u.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// Result is the outcome of one successful chat call.
type Result struct {
	Text  string
	Usage Usage
}

// LLMClient is the provider seam. Callers never branch on provider identity
// past this boundary; every concrete adapter (and any future one) satisfies
// exactly this contract. Cross-cutting concerns (rate limiting, retries,
// logging, usage accounting) are applied via middleware, not here.
type LLMClient interface {
	// Name returns the provider label, e.g. "openai".
	Name() string
	// Model returns the configured model identifier.
	Model() string
	// CountTokens gives a rough token estimate for prompt budgeting.
	CountTokens(text string) int
	// Chat sends the ordered messages and returns generated text plus usage.
	// Cancellation of ctx aborts the in-flight request best-effort. Failures
	// are the typed errors in errors.go or the context's own error.
	Chat(ctx context.Context, msgs []Message) (*Result, error)
	Close() error
}

// System is a convenience for the common system-plus-user message pair.
func System(system, user string) []Message {
	return []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: user},
	}
}
