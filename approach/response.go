package approach

import (
	"github.com/randalmurphal/ragchat/provider"
)

// CompletionResult is the answer to a non-streaming turn.
type CompletionResult struct {
	Content string        `json:"content"`
	Role    provider.Role `json:"role"`
}

// ResponseChunk is one increment of a streamed answer.
type ResponseChunk struct {
	// DeltaContent is the text added by this chunk, possibly empty.
	DeltaContent string

	// FinishReason is set on the chunk that ends generation; empty otherwise.
	FinishReason provider.FinishReason

	// Err is set on the final chunk when the provider failed mid-stream.
	Err error
}

// Object names used in response envelopes.
const (
	ObjectCompletion = "chat.completion"
	ObjectChunk      = "chat.completion.chunk"
)

// ChatResponse is the wire shape of a completed answer.
type ChatResponse struct {
	Choices []ResponseChoice `json:"choices"`
	Object  string           `json:"object"`
}

// ResponseChoice is a choice inside a ChatResponse.
type ResponseChoice struct {
	Index   int             `json:"index"`
	Message ResponseMessage `json:"message"`
}

// ResponseMessage is the message of a ResponseChoice or the delta of a ChunkChoice.
type ResponseMessage struct {
	Content string        `json:"content"`
	Role    provider.Role `json:"role"`
}

// ChatResponseChunk is the wire shape of one streamed increment.
type ChatResponseChunk struct {
	Choices []ChunkChoice `json:"choices"`
	Object  string        `json:"object"`
}

// ChunkChoice is a choice inside a ChatResponseChunk.
type ChunkChoice struct {
	Index        int                   `json:"index"`
	Delta        ResponseMessage       `json:"delta"`
	FinishReason provider.FinishReason `json:"finish_reason,omitempty"`
}

// Envelope wraps the result in the chat.completion response shape.
func (r *CompletionResult) Envelope() ChatResponse {
	return ChatResponse{
		Choices: []ResponseChoice{{
			Index:   0,
			Message: ResponseMessage{Content: r.Content, Role: r.Role},
		}},
		Object: ObjectCompletion,
	}
}

// Envelope wraps the chunk in the chat.completion.chunk response shape.
func (c ResponseChunk) Envelope() ChatResponseChunk {
	return ChatResponseChunk{
		Choices: []ChunkChoice{{
			Index:        0,
			Delta:        ResponseMessage{Content: c.DeltaContent, Role: provider.RoleAssistant},
			FinishReason: c.FinishReason,
		}},
		Object: ObjectChunk,
	}
}
