package provider

// Role identifies the message sender.
// Only the three roles below are meaningful to history assembly; any other
// value is treated as foreign and skipped by the history builder.
type Role string

// Message roles understood by every provider.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Conversational reports whether r takes part in the back-and-forth of a
// conversation (user or assistant turns).
func (r Role) Conversational() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is a single conversation turn. Messages are values and are never
// mutated once built.
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// NewMessage creates a message with the given role and content.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// SystemMessage creates a system message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// FinishReason indicates why the model stopped generating.
// The empty value means no reason was reported.
type FinishReason string

// Finish reasons reported by providers.
const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishContentFilter FinishReason = "content_filter"
	FinishToolCalls     FinishReason = "tool_calls"
)

// Request configures a chat completion call.
type Request struct {
	// Model is the model or deployment to call.
	Model string `json:"model"`

	// Messages is the full prompt, system message included.
	Messages []Message `json:"messages"`

	// Temperature controls response randomness.
	Temperature float64 `json:"temperature"`

	// MaxTokens caps the length of the generated output.
	MaxTokens int `json:"max_tokens,omitempty"`

	// N is the number of choices to generate. Zero means one.
	N int `json:"n,omitempty"`

	// Stream is set on requests issued through Client.Stream.
	Stream bool `json:"stream,omitempty"`
}

// ChoiceCount returns N, defaulting to one.
func (r Request) ChoiceCount() int {
	if r.N <= 0 {
		return 1
	}
	return r.N
}

// Response is the output of a non-streaming completion call.
type Response struct {
	// Choices holds the generated alternatives in index order.
	Choices []Choice `json:"choices"`

	// Model is the model that actually served the request.
	Model string `json:"model,omitempty"`

	// Usage tracks token consumption for this request.
	Usage TokenUsage `json:"usage"`
}

// Choice is one generated alternative.
type Choice struct {
	Index        int          `json:"index"`
	Message      *Message     `json:"message,omitempty"`
	FinishReason FinishReason `json:"finish_reason,omitempty"`
}

// Content returns the content of the first choice's message, or "" when the
// response carries no choice or no message.
func (r *Response) Content() string {
	if r == nil || len(r.Choices) == 0 || r.Choices[0].Message == nil {
		return ""
	}
	return r.Choices[0].Message.Content
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add combines token usage from another TokenUsage.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}

// StreamChunk is one incremental unit of a streaming response.
type StreamChunk struct {
	// Choices holds the partial choices carried by this unit. Some providers
	// emit units with no choices at all (e.g. prompt filter annotations).
	Choices []ChunkChoice `json:"choices"`

	// Usage is set on the final unit by providers that report it.
	Usage *TokenUsage `json:"usage,omitempty"`

	// Error is non-nil if streaming failed. It is always the last unit.
	Error error `json:"-"`
}

// ChunkChoice is a partial choice inside a stream unit.
type ChunkChoice struct {
	Index        int          `json:"index"`
	Delta        Delta        `json:"delta"`
	FinishReason FinishReason `json:"finish_reason,omitempty"`
}

// Delta carries the incremental text of a chunk. Content is nil when the
// provider sent no text for this unit.
type Delta struct {
	Role    Role    `json:"role,omitempty"`
	Content *string `json:"content,omitempty"`
}

// TextDelta returns a Delta holding the given text.
func TextDelta(text string) Delta {
	return Delta{Content: &text}
}
