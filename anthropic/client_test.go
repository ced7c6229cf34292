package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/ragchat/provider"
)

func mustUnion(t *testing.T, event any) sdk.MessageStreamEventUnion {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	var union sdk.MessageStreamEventUnion
	require.NoError(t, json.Unmarshal(data, &union))
	return union
}

func noRetries() *int {
	n := 0
	return &n
}

func TestNew(t *testing.T) {
	c, err := New(Config{APIKey: "k", Model: "claude-3-5-haiku-latest"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", c.Provider())
	assert.Equal(t, provider.AnthropicCapabilities, c.Capabilities())
	assert.Equal(t, DefaultMaxTokens, c.maxTokens)
	assert.NoError(t, c.Close())

	_, err = New(Config{})
	assert.Error(t, err)
}

func TestRegistered(t *testing.T) {
	assert.True(t, provider.IsRegistered("anthropic"))
}

func TestConfigFromProvider(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("CUSTOM_KEY", " secret ")

	cfg := configFromProvider(provider.Config{
		Provider:  "anthropic",
		Model:     "claude-3-5-haiku-latest",
		APIKeyEnv: "CUSTOM_KEY",
		Options:   map[string]any{"max_retries": 1, "max_tokens": float64(256)},
	})
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, "claude-3-5-haiku-latest", cfg.Model)
	assert.Equal(t, 256, cfg.MaxTokens)
	require.NotNil(t, cfg.MaxRetries)
	assert.Equal(t, 1, *cfg.MaxRetries)

	bare := configFromProvider(provider.Config{Provider: "anthropic"})
	assert.Nil(t, bare.MaxRetries)
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	t.Setenv("ANTHROPIC_BASE_URL", "http://localhost:9999")
	t.Setenv("ANTHROPIC_MODEL", "claude-3-opus-latest")

	cfg := Config{Model: "claude-3-5-haiku-latest"}
	cfg.LoadFromEnv()
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "http://localhost:9999", cfg.BaseURL)
	assert.Equal(t, "claude-3-5-haiku-latest", cfg.Model, "explicit values win")
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, (&Config{APIKey: "k"}).Validate())
	assert.Error(t, (&Config{APIKey: "  "}).Validate())
	assert.Error(t, (&Config{APIKey: "k", MaxTokens: -1}).Validate())
	assert.Error(t, (&Config{APIKey: "k", Timeout: -1}).Validate())
}

func TestBuildParams(t *testing.T) {
	c := &Client{model: "claude-3-5-haiku-latest", maxTokens: 512}

	params, err := c.buildParams(provider.Request{
		Messages: []provider.Message{
			provider.SystemMessage("be brief"),
			provider.UserMessage("hi"),
			provider.AssistantMessage(""),
			provider.AssistantMessage("hello"),
			provider.UserMessage("what is covered?"),
		},
		Temperature: 0.7,
		MaxTokens:   32,
	})
	require.NoError(t, err)
	assert.Equal(t, sdk.Model("claude-3-5-haiku-latest"), params.Model)
	assert.Equal(t, int64(32), params.MaxTokens)
	require.Len(t, params.System, 1)
	assert.Equal(t, "be brief", params.System[0].Text)
	require.Len(t, params.Messages, 3, "empty turns are dropped")
	assert.Equal(t, sdk.MessageParamRoleUser, params.Messages[0].Role)
	assert.Equal(t, sdk.MessageParamRoleAssistant, params.Messages[1].Role)
	assert.Equal(t, sdk.MessageParamRoleUser, params.Messages[2].Role)

	params, err = c.buildParams(provider.Request{Model: "claude-3-opus-latest", Messages: []provider.Message{provider.UserMessage("x")}})
	require.NoError(t, err)
	assert.Equal(t, sdk.Model("claude-3-opus-latest"), params.Model)
	assert.Equal(t, int64(512), params.MaxTokens)
}

func TestBuildParams_Rejects(t *testing.T) {
	c := &Client{model: "m", maxTokens: 10}
	user := []provider.Message{provider.UserMessage("x")}

	tests := []struct {
		name string
		req  provider.Request
	}{
		{"multiple choices", provider.Request{Messages: user, N: 2}},
		{"foreign role", provider.Request{Messages: []provider.Message{{Role: "tool", Content: "x"}}}},
		{"system only", provider.Request{Messages: []provider.Message{provider.SystemMessage("s")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.buildParams(tt.req)
			assert.ErrorIs(t, err, provider.ErrInvalidRequest)
		})
	}

	_, err := (&Client{}).buildParams(provider.Request{Messages: user})
	assert.ErrorIs(t, err, provider.ErrInvalidRequest, "model required")
}

func TestFinishReason(t *testing.T) {
	tests := map[string]provider.FinishReason{
		"":              "",
		"end_turn":      provider.FinishStop,
		"stop_sequence": provider.FinishStop,
		"max_tokens":    provider.FinishLength,
		"tool_use":      provider.FinishToolCalls,
		"refusal":       provider.FinishContentFilter,
		"something":     "something",
	}
	for in, want := range tests {
		assert.Equal(t, want, finishReason(in), in)
	}
}

func TestChunkFromEvent_TextDelta(t *testing.T) {
	chunk, ok := chunkFromEvent(mustUnion(t, sdk.ContentBlockDeltaEvent{
		Type:  constant.ContentBlockDelta("content_block_delta"),
		Index: 0,
		Delta: sdk.RawContentBlockDeltaUnion{Type: "text_delta", Text: "Hello"},
	}))
	require.True(t, ok)
	require.Len(t, chunk.Choices, 1)
	require.NotNil(t, chunk.Choices[0].Delta.Content)
	assert.Equal(t, "Hello", *chunk.Choices[0].Delta.Content)
}

func TestChunkFromEvent_BlockStart(t *testing.T) {
	chunk, ok := chunkFromEvent(mustUnion(t, sdk.ContentBlockStartEvent{
		Type:         constant.ContentBlockStart("content_block_start"),
		ContentBlock: sdk.ContentBlockStartEventContentBlockUnion{Type: "text", Text: "Hi"},
	}))
	require.True(t, ok)
	assert.Equal(t, "Hi", *chunk.Choices[0].Delta.Content)

	_, ok = chunkFromEvent(mustUnion(t, sdk.ContentBlockStartEvent{
		Type:         constant.ContentBlockStart("content_block_start"),
		ContentBlock: sdk.ContentBlockStartEventContentBlockUnion{Type: "text"},
	}))
	assert.False(t, ok, "empty block start carries nothing")
}

func TestChunkFromEvent_MessageDelta(t *testing.T) {
	chunk, ok := chunkFromEvent(mustUnion(t, sdk.MessageDeltaEvent{
		Type:  constant.MessageDelta("message_delta"),
		Delta: sdk.MessageDeltaEventDelta{StopReason: sdk.StopReason("max_tokens")},
		Usage: sdk.MessageDeltaUsage{InputTokens: 3, OutputTokens: 5},
	}))
	require.True(t, ok)
	require.Len(t, chunk.Choices, 1)
	assert.Equal(t, provider.FinishLength, chunk.Choices[0].FinishReason)
	assert.Nil(t, chunk.Choices[0].Delta.Content)
	require.NotNil(t, chunk.Usage)
	assert.Equal(t, provider.TokenUsage{InputTokens: 3, OutputTokens: 5, TotalTokens: 8}, *chunk.Usage)
}

func TestChunkFromEvent_Skipped(t *testing.T) {
	_, ok := chunkFromEvent(mustUnion(t, sdk.ContentBlockStopEvent{
		Type:  constant.ContentBlockStop("content_block_stop"),
		Index: 0,
	}))
	assert.False(t, ok)
}

// newServer serves the Messages endpoint. Streaming requests get the events
// below as server-sent events; the rest get a JSON message.
func newServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"), r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Stream bool `json:"stream"`
		}
		_ = json.Unmarshal(body, &req)

		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = io.WriteString(w, `{"type":"error","error":{"type":"invalid_request_error","message":"prompt is too long: 300000 tokens > 200000 maximum"}}`)
			return
		}
		if !req.Stream {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-latest",`+
				`"content":[{"type":"text","text":"dental "},{"type":"text","text":"coverage"}],`+
				`"stop_reason":"end_turn","stop_sequence":null,"usage":{"input_tokens":12,"output_tokens":3}}`)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		events := []string{
			`{"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-latest","content":[],"stop_reason":null,"stop_sequence":null,"usage":{"input_tokens":12,"output_tokens":1}}}`,
			`{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`,
			`{"type":"ping"}`,
			`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"dental "}}`,
			`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"coverage"}}`,
			`{"type":"content_block_stop","index":0}`,
			`{"type":"message_delta","delta":{"stop_reason":"end_turn","stop_sequence":null},"usage":{"output_tokens":3}}`,
			`{"type":"message_stop"}`,
		}
		for _, e := range events {
			var head struct {
				Type string `json:"type"`
			}
			_ = json.Unmarshal([]byte(e), &head)
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", head.Type, e)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := New(Config{APIKey: "k", BaseURL: srv.URL, Model: "claude-3-5-haiku-latest", MaxRetries: noRetries()})
	require.NoError(t, err)
	return c
}

func TestComplete(t *testing.T) {
	c := testClient(t, newServer(t, http.StatusOK))

	resp, err := c.Complete(context.Background(), provider.Request{
		Messages:    []provider.Message{provider.SystemMessage("s"), provider.UserMessage("q")},
		Temperature: 0.7,
		MaxTokens:   32,
	})
	require.NoError(t, err)
	assert.Equal(t, "dental coverage", resp.Content())
	assert.Equal(t, provider.FinishStop, resp.Choices[0].FinishReason)
	assert.Equal(t, provider.RoleAssistant, resp.Choices[0].Message.Role)
	assert.Equal(t, provider.TokenUsage{InputTokens: 12, OutputTokens: 3, TotalTokens: 15}, resp.Usage)
}

func TestComplete_ContextTooLong(t *testing.T) {
	c := testClient(t, newServer(t, http.StatusBadRequest))

	_, err := c.Complete(context.Background(), provider.Request{Messages: []provider.Message{provider.UserMessage("q")}})
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrContextTooLong)
	assert.False(t, provider.IsRetryable(err))
}

func TestComplete_InvalidRequestNeverCalls(t *testing.T) {
	c := testClient(t, newServer(t, http.StatusOK))

	_, err := c.Complete(context.Background(), provider.Request{Messages: []provider.Message{provider.UserMessage("q")}, N: 3})
	assert.ErrorIs(t, err, provider.ErrInvalidRequest)
}

func TestStream(t *testing.T) {
	c := testClient(t, newServer(t, http.StatusOK))

	ch, err := c.Stream(context.Background(), provider.Request{
		Messages: []provider.Message{provider.UserMessage("q")},
		Stream:   true,
	})
	require.NoError(t, err)

	var text strings.Builder
	var finish provider.FinishReason
	var units int
	for chunk := range ch {
		require.NoError(t, chunk.Error)
		units++
		for _, choice := range chunk.Choices {
			if choice.Delta.Content != nil {
				text.WriteString(*choice.Delta.Content)
			}
			if choice.FinishReason != "" {
				finish = choice.FinishReason
			}
		}
	}
	assert.Equal(t, "dental coverage", text.String())
	assert.Equal(t, provider.FinishStop, finish)
	assert.Equal(t, 4, units, "message_start, two deltas, message_delta")
}

func TestStream_Error(t *testing.T) {
	c := testClient(t, newServer(t, http.StatusTooManyRequests))

	ch, err := c.Stream(context.Background(), provider.Request{Messages: []provider.Message{provider.UserMessage("q")}})
	require.NoError(t, err)

	var last provider.StreamChunk
	for chunk := range ch {
		last = chunk
	}
	require.Error(t, last.Error)
	assert.ErrorIs(t, last.Error, provider.ErrRateLimited)
	assert.True(t, provider.IsRetryable(last.Error))
}

func TestClassify_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := classify(ctx, "stream", context.Canceled)
	var provErr *provider.Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "anthropic", provErr.Provider)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, provErr.Retryable)
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	_, err := NewFromEnv()
	assert.Error(t, err)

	t.Setenv("ANTHROPIC_API_KEY", "k")
	t.Setenv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest")
	c, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "claude-3-5-haiku-latest", c.model)
}
