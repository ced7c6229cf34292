package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/randalmurphal/ragchat/provider"
)

// Client implements provider.Client against the Anthropic Messages API.
type Client struct {
	client    sdk.Client
	model     string
	maxTokens int
}

// New constructs a client from cfg.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []option.RequestOption{option.WithAPIKey(strings.TrimSpace(cfg.APIKey))}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.MaxRetries != nil {
		opts = append(opts, option.WithMaxRetries(*cfg.MaxRetries))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	return &Client{
		client:    sdk.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: maxTokens,
	}, nil
}

// Complete implements provider.Client.
func (c *Client) Complete(ctx context.Context, req provider.Request) (*provider.Response, error) {
	params, err := c.buildParams(req)
	if err != nil {
		return nil, provider.NewError("anthropic", "complete", err, false)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, classify(ctx, "complete", err)
	}
	return fromMessage(msg), nil
}

// Stream implements provider.Client.
func (c *Client) Stream(ctx context.Context, req provider.Request) (<-chan provider.StreamChunk, error) {
	params, err := c.buildParams(req)
	if err != nil {
		return nil, provider.NewError("anthropic", "stream", err, false)
	}

	stream := c.client.Messages.NewStreaming(ctx, params)

	ch := make(chan provider.StreamChunk)
	go func() {
		defer close(ch)
		defer func() { _ = stream.Close() }()

		for stream.Next() {
			chunk, ok := chunkFromEvent(stream.Current())
			if !ok {
				continue
			}
			if !send(ctx, ch, chunk) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			send(ctx, ch, provider.StreamChunk{Error: classify(ctx, "stream", err)})
		}
	}()

	return ch, nil
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
	return "anthropic"
}

// Capabilities implements provider.Client.
func (c *Client) Capabilities() provider.Capabilities {
	return provider.AnthropicCapabilities
}

// Close implements provider.Client.
func (c *Client) Close() error {
	return nil
}

// buildParams converts a provider request. System messages move to the
// System field; empty turns are dropped since the API rejects empty text.
func (c *Client) buildParams(req provider.Request) (sdk.MessageNewParams, error) {
	if req.ChoiceCount() > 1 {
		return sdk.MessageNewParams{}, fmt.Errorf("%w: n=%d: %w", provider.ErrInvalidRequest, req.N, provider.ErrCapabilityNotSupported)
	}

	model := req.Model
	if model == "" {
		model = c.model
	}
	if model == "" {
		return sdk.MessageNewParams{}, fmt.Errorf("%w: model is required", provider.ErrInvalidRequest)
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	params := sdk.MessageNewParams{
		Model:       sdk.Model(model),
		MaxTokens:   int64(maxTokens),
		Temperature: sdk.Float(req.Temperature),
	}

	for i, m := range req.Messages {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		switch m.Role {
		case provider.RoleSystem:
			params.System = append(params.System, sdk.TextBlockParam{Text: m.Content})
		case provider.RoleUser:
			params.Messages = append(params.Messages, sdk.NewUserMessage(sdk.NewTextBlock(m.Content)))
		case provider.RoleAssistant:
			params.Messages = append(params.Messages, sdk.NewAssistantMessage(sdk.NewTextBlock(m.Content)))
		default:
			return sdk.MessageNewParams{}, fmt.Errorf("%w: message %d has role %q", provider.ErrInvalidRequest, i, m.Role)
		}
	}
	if len(params.Messages) == 0 {
		return sdk.MessageNewParams{}, fmt.Errorf("%w: no user or assistant messages", provider.ErrInvalidRequest)
	}
	return params, nil
}

func fromMessage(msg *sdk.Message) *provider.Response {
	var text strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(sdk.TextBlock); ok {
			text.WriteString(tb.Text)
		}
	}

	input := int(msg.Usage.InputTokens)
	output := int(msg.Usage.OutputTokens)
	return &provider.Response{
		Choices: []provider.Choice{{
			Index:        0,
			Message:      &provider.Message{Role: provider.RoleAssistant, Content: text.String()},
			FinishReason: finishReason(string(msg.StopReason)),
		}},
		Model: string(msg.Model),
		Usage: provider.TokenUsage{InputTokens: input, OutputTokens: output, TotalTokens: input + output},
	}
}

// chunkFromEvent maps one stream event to a chunk. Events that carry no text,
// role or stop reason report false.
func chunkFromEvent(event sdk.MessageStreamEventUnion) (provider.StreamChunk, bool) {
	switch evt := event.AsAny().(type) {
	case sdk.MessageStartEvent:
		return provider.StreamChunk{Choices: []provider.ChunkChoice{{
			Delta: provider.Delta{Role: provider.RoleAssistant},
		}}}, true

	case sdk.ContentBlockStartEvent:
		if evt.ContentBlock.Type == "text" && evt.ContentBlock.Text != "" {
			return textChunk(evt.ContentBlock.Text), true
		}

	case sdk.ContentBlockDeltaEvent:
		if evt.Delta.Type == "text_delta" {
			return textChunk(evt.Delta.Text), true
		}

	case sdk.MessageDeltaEvent:
		output := int(evt.Usage.OutputTokens)
		input := int(evt.Usage.InputTokens)
		return provider.StreamChunk{
			Choices: []provider.ChunkChoice{{FinishReason: finishReason(string(evt.Delta.StopReason))}},
			Usage:   &provider.TokenUsage{InputTokens: input, OutputTokens: output, TotalTokens: input + output},
		}, true
	}
	return provider.StreamChunk{}, false
}

func textChunk(text string) provider.StreamChunk {
	return provider.StreamChunk{Choices: []provider.ChunkChoice{{Delta: provider.TextDelta(text)}}}
}

func finishReason(stopReason string) provider.FinishReason {
	switch stopReason {
	case "":
		return ""
	case "end_turn", "stop_sequence", "pause_turn":
		return provider.FinishStop
	case "max_tokens":
		return provider.FinishLength
	case "tool_use":
		return provider.FinishToolCalls
	case "refusal":
		return provider.FinishContentFilter
	}
	return provider.FinishReason(stopReason)
}

// classify wraps an SDK error in a provider.Error with the matching sentinel.
func classify(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return provider.ContextError("anthropic", op, ctxErr)
	}

	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 400 && strings.Contains(apiErr.Error(), "prompt is too long") {
			return provider.NewError("anthropic", op, fmt.Errorf("%w: %w", provider.ErrContextTooLong, err), false)
		}
		if sentinel, retryable := provider.StatusError(apiErr.StatusCode); sentinel != nil {
			return provider.NewError("anthropic", op, fmt.Errorf("%w: %w", sentinel, err), retryable)
		}
	}
	return provider.NewError("anthropic", op, err, false)
}

var _ provider.Client = (*Client)(nil)
