package conversation

import "context"

// Roles understood by both the Gemini and Bedrock adapters.
const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one entry of the exchange handed to the model. The
// extractor sends a single user message holding the guest's utterance.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLMRequest carries everything a slot extraction call needs. System holds
// the extraction instructions plus the already collected slots. A negative
// Temperature leaves the provider default untouched; zero is deterministic.
type LLMRequest struct {
	Model       string
	System      []string
	Messages    []ChatMessage
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

// LLMResponse is the raw model text before JSON decoding, with usage
// figures when the provider reports them.
type LLMResponse struct {
	Text       string
	Usage      TokenUsage
	StopReason string
}

// TokenUsage mirrors provider token accounting.
type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

// LLMClient completes one extraction request. Implementations must honour
// ctx cancellation so the extraction timeout holds.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}

// LLMClientFunc lets a plain function stand in for a provider, as the
// bootstrap does when no model is configured.
type LLMClientFunc func(ctx context.Context, req LLMRequest) (LLMResponse, error)

// Complete calls f.
func (f LLMClientFunc) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	return f(ctx, req)
}
