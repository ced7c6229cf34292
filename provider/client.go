// Package provider defines the unified interface for chat completion providers.
//
// The chat approach talks to language models exclusively through Client, so
// switching between Azure OpenAI, the public OpenAI API and Anthropic is a
// configuration change:
//
//	client, err := provider.New("azure-openai", provider.Config{
//	    Endpoint:   "https://my-resource.openai.azure.com",
//	    Deployment: "gpt-35-turbo",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
// # Available Providers
//
//   - "azure-openai": Azure OpenAI Service (package azureopenai)
//   - "openai": public OpenAI API (package azureopenai)
//   - "anthropic": Anthropic Messages API (package anthropic)
//
// Import github.com/randalmurphal/ragchat/providers to register all of them.
//
// # Streaming
//
// Stream returns a receive-only channel that yields chunks in the order the
// provider produced them and is closed when the response ends. A failure
// mid-stream is delivered as a final chunk with Error set. Cancelling the
// context passed to Stream abandons the response; implementations stop
// sending and release their connection.
package provider

import "context"

// Client is the unified interface for chat completion providers.
// Implementations must be safe for concurrent use.
type Client interface {
	// Complete sends a request and returns the full response.
	// The context controls cancellation and timeouts.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Stream sends a request and returns a channel of response chunks.
	// The channel is closed when streaming completes.
	// Errors during streaming are returned via chunk.Error.
	Stream(ctx context.Context, req Request) (<-chan StreamChunk, error)

	// Provider returns the provider name (e.g., "azure-openai", "anthropic").
	Provider() string

	// Capabilities returns what this provider supports.
	Capabilities() Capabilities

	// Close releases any resources held by the client.
	Close() error
}

// Capabilities describes what a provider supports.
type Capabilities struct {
	// Streaming indicates if the provider supports streaming responses.
	Streaming bool `json:"streaming"`

	// MultipleChoices indicates if the provider can return more than one
	// choice per request (Request.N > 1).
	MultipleChoices bool `json:"multiple_choices"`

	// SystemRole indicates if system messages are sent inline with the
	// conversation. Providers without it lift the system message into a
	// dedicated request field.
	SystemRole bool `json:"system_role"`
}

// Pre-defined capability sets for known providers.
var (
	// OpenAICapabilities describes Azure OpenAI and OpenAI chat completions.
	OpenAICapabilities = Capabilities{
		Streaming:       true,
		MultipleChoices: true,
		SystemRole:      true,
	}

	// AnthropicCapabilities describes the Anthropic Messages API.
	AnthropicCapabilities = Capabilities{
		Streaming:       true,
		MultipleChoices: false,
		SystemRole:      false,
	}
)
