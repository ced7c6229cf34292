package azureopenai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/randalmurphal/ragchat/provider"
)

// Client implements provider.Client against Azure OpenAI or OpenAI chat completions.
type Client struct {
	client     *azopenai.Client
	name       string
	deployment string
}

// New creates a client from cfg.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := &azopenai.ClientOptions{}
	if cfg.Timeout > 0 {
		opts.Retry.TryTimeout = cfg.Timeout
	}
	if cfg.MaxRetries != 0 {
		opts.Retry.MaxRetries = int32(cfg.MaxRetries)
	}

	var (
		client *azopenai.Client
		err    error
		name   = "azure-openai"
	)
	switch {
	case cfg.flavor() == FlavorOpenAI:
		name = "openai"
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = DefaultOpenAIEndpoint
		}
		client, err = azopenai.NewClientForOpenAI(endpoint, azcore.NewKeyCredential(cfg.APIKey), opts)
	case cfg.UseAzureIdentity:
		cred, credErr := azidentity.NewDefaultAzureCredential(nil)
		if credErr != nil {
			return nil, provider.NewError(name, "init", fmt.Errorf("%w: %w", provider.ErrCredentialsNotFound, credErr), false)
		}
		client, err = azopenai.NewClient(cfg.Endpoint, cred, opts)
	default:
		client, err = azopenai.NewClientWithKeyCredential(cfg.Endpoint, azcore.NewKeyCredential(cfg.APIKey), opts)
	}
	if err != nil {
		return nil, provider.NewError(name, "init", err, false)
	}

	return &Client{client: client, name: name, deployment: cfg.Deployment}, nil
}

// Complete implements provider.Client.
func (c *Client) Complete(ctx context.Context, req provider.Request) (*provider.Response, error) {
	opts, err := c.completionsOptions(req)
	if err != nil {
		return nil, provider.NewError(c.name, "complete", err, false)
	}

	resp, err := c.client.GetChatCompletions(ctx, opts, nil)
	if err != nil {
		return nil, c.classify(ctx, "complete", err)
	}
	return fromChatCompletions(resp.ChatCompletions), nil
}

// Stream implements provider.Client.
func (c *Client) Stream(ctx context.Context, req provider.Request) (<-chan provider.StreamChunk, error) {
	opts, err := c.completionsOptions(req)
	if err != nil {
		return nil, provider.NewError(c.name, "stream", err, false)
	}

	resp, err := c.client.GetChatCompletionsStream(ctx, azopenai.ChatCompletionsStreamOptions{
		Messages:       opts.Messages,
		DeploymentName: opts.DeploymentName,
		MaxTokens:      opts.MaxTokens,
		N:              opts.N,
		Temperature:    opts.Temperature,
	}, nil)
	if err != nil {
		return nil, c.classify(ctx, "stream", err)
	}

	ch := make(chan provider.StreamChunk)
	go c.pump(ctx, resp.ChatCompletionsStream, ch)
	return ch, nil
}

// completionsReader is the part of *azopenai.EventReader the stream pump uses.
type completionsReader interface {
	Read() (azopenai.ChatCompletions, error)
	Close() error
}

// pump forwards stream events until EOF, an error, or ctx cancellation, then
// closes both the reader and ch.
func (c *Client) pump(ctx context.Context, r completionsReader, ch chan<- provider.StreamChunk) {
	defer close(ch)
	defer r.Close()

	for {
		completions, err := r.Read()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			send(ctx, ch, provider.StreamChunk{Error: c.classify(ctx, "stream", err)})
			return
		}
		if !send(ctx, ch, chunkFromChatCompletions(completions)) {
			return
		}
	}
}

func send(ctx context.Context, ch chan<- provider.StreamChunk, chunk provider.StreamChunk) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- chunk:
		return true
	}
}

// Provider implements provider.Client.
func (c *Client) Provider() string {
	return c.name
}

// Capabilities implements provider.Client.
func (c *Client) Capabilities() provider.Capabilities {
	return provider.OpenAICapabilities
}

// Close implements provider.Client.
// The SDK client holds no resources beyond its HTTP transport.
func (c *Client) Close() error {
	return nil
}

func (c *Client) completionsOptions(req provider.Request) (azopenai.ChatCompletionsOptions, error) {
	messages, err := toRequestMessages(req.Messages)
	if err != nil {
		return azopenai.ChatCompletionsOptions{}, err
	}

	// Azure deployments are named per resource, so a configured one wins
	// over the model id the request carries.
	deployment := c.deployment
	if deployment == "" {
		deployment = req.Model
	}
	if deployment == "" {
		return azopenai.ChatCompletionsOptions{}, fmt.Errorf("%w: no deployment or model", provider.ErrInvalidRequest)
	}

	opts := azopenai.ChatCompletionsOptions{
		Messages:       messages,
		DeploymentName: to.Ptr(deployment),
		N:              to.Ptr(int32(req.ChoiceCount())),
		Temperature:    to.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		opts.MaxTokens = to.Ptr(int32(req.MaxTokens))
	}
	return opts, nil
}

func toRequestMessages(msgs []provider.Message) ([]azopenai.ChatRequestMessageClassification, error) {
	out := make([]azopenai.ChatRequestMessageClassification, 0, len(msgs))
	for i, m := range msgs {
		switch m.Role {
		case provider.RoleSystem:
			out = append(out, &azopenai.ChatRequestSystemMessage{Content: azopenai.NewChatRequestSystemMessageContent(m.Content)})
		case provider.RoleUser:
			out = append(out, &azopenai.ChatRequestUserMessage{Content: azopenai.NewChatRequestUserMessageContent(m.Content)})
		case provider.RoleAssistant:
			out = append(out, &azopenai.ChatRequestAssistantMessage{Content: azopenai.NewChatRequestAssistantMessageContent(m.Content)})
		default:
			return nil, fmt.Errorf("%w: message %d has role %q", provider.ErrInvalidRequest, i, m.Role)
		}
	}
	return out, nil
}

func fromChatCompletions(cc azopenai.ChatCompletions) *provider.Response {
	resp := &provider.Response{
		Choices: make([]provider.Choice, 0, len(cc.Choices)),
		Usage:   fromUsage(cc.Usage),
	}
	if cc.Model != nil {
		resp.Model = *cc.Model
	}
	for i, choice := range cc.Choices {
		out := provider.Choice{Index: choiceIndex(choice.Index, i), FinishReason: finishReason(choice.FinishReason)}
		if choice.Message != nil {
			msg := provider.Message{Role: provider.RoleAssistant}
			if choice.Message.Content != nil {
				msg.Content = *choice.Message.Content
			}
			out.Message = &msg
		}
		resp.Choices = append(resp.Choices, out)
	}
	return resp
}

func chunkFromChatCompletions(cc azopenai.ChatCompletions) provider.StreamChunk {
	chunk := provider.StreamChunk{Choices: make([]provider.ChunkChoice, 0, len(cc.Choices))}
	for i, choice := range cc.Choices {
		out := provider.ChunkChoice{Index: choiceIndex(choice.Index, i), FinishReason: finishReason(choice.FinishReason)}
		if choice.Delta != nil {
			out.Delta.Content = choice.Delta.Content
			if choice.Delta.Role != nil {
				out.Delta.Role = provider.Role(*choice.Delta.Role)
			}
		}
		chunk.Choices = append(chunk.Choices, out)
	}
	if cc.Usage != nil {
		usage := fromUsage(cc.Usage)
		chunk.Usage = &usage
	}
	return chunk
}

func choiceIndex(idx *int32, fallback int) int {
	if idx == nil {
		return fallback
	}
	return int(*idx)
}

func finishReason(fr *azopenai.CompletionsFinishReason) provider.FinishReason {
	if fr == nil {
		return ""
	}
	return provider.FinishReason(*fr)
}

func fromUsage(u *azopenai.CompletionsUsage) provider.TokenUsage {
	if u == nil {
		return provider.TokenUsage{}
	}
	var usage provider.TokenUsage
	if u.PromptTokens != nil {
		usage.InputTokens = int(*u.PromptTokens)
	}
	if u.CompletionTokens != nil {
		usage.OutputTokens = int(*u.CompletionTokens)
	}
	if u.TotalTokens != nil {
		usage.TotalTokens = int(*u.TotalTokens)
	}
	return usage
}

// classify wraps an SDK error in a provider.Error with the matching sentinel.
func (c *Client) classify(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return provider.ContextError(c.name, op, ctxErr)
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		if strings.Contains(respErr.ErrorCode, "context_length_exceeded") {
			return provider.NewError(c.name, op, fmt.Errorf("%w: %w", provider.ErrContextTooLong, err), false)
		}
		if sentinel, retryable := provider.StatusError(respErr.StatusCode); sentinel != nil {
			return provider.NewError(c.name, op, fmt.Errorf("%w: %w", sentinel, err), retryable)
		}
	}
	return provider.NewError(c.name, op, err, false)
}

var _ provider.Client = (*Client)(nil)
