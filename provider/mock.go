package provider

import (
	"context"
	"strings"
	"sync"
)

// MockClient is a test double for Client.
// It supports fixed responses, sequential responses, scripted stream chunks
// and custom handlers.
type MockClient struct {
	mu          sync.Mutex
	name        string
	responses   []string
	responseIdx int
	chunks      []StreamChunk
	err         error
	completeFn  func(ctx context.Context, req Request) (*Response, error)
	streamFn    func(ctx context.Context, req Request) (<-chan StreamChunk, error)
	stopped     chan struct{}

	// Calls tracks all requests for assertions.
	Calls []Request
}

// NewMockClient creates a mock that returns a fixed response.
func NewMockClient(response string) *MockClient {
	return &MockClient{name: "mock", responses: []string{response}}
}

// WithResponses configures sequential responses.
// Each call returns the next response in the list, cycling after the last.
func (m *MockClient) WithResponses(responses ...string) *MockClient {
	m.responses = responses
	return m
}

// WithChunks configures the exact units Stream emits, in order.
// Without it, Stream splits the next response into word-sized deltas and
// ends with a FinishStop unit.
func (m *MockClient) WithChunks(chunks ...StreamChunk) *MockClient {
	m.chunks = chunks
	return m
}

// WithError configures the mock to fail every call with err.
func (m *MockClient) WithError(err error) *MockClient {
	m.err = err
	return m
}

// WithCompleteFunc sets a custom handler for Complete calls.
// This takes precedence over fixed responses.
func (m *MockClient) WithCompleteFunc(fn func(ctx context.Context, req Request) (*Response, error)) *MockClient {
	m.completeFn = fn
	return m
}

// WithStreamFunc sets a custom handler for Stream calls.
func (m *MockClient) WithStreamFunc(fn func(ctx context.Context, req Request) (<-chan StreamChunk, error)) *MockClient {
	m.streamFn = fn
	return m
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if m.completeFn != nil {
		return m.completeFn(ctx, req)
	}
	if m.err != nil {
		return nil, m.err
	}

	content := m.nextResponse()
	out := len(content) / 4
	return &Response{
		Choices: []Choice{{
			Index:        0,
			Message:      &Message{Role: RoleAssistant, Content: content},
			FinishReason: FinishStop,
		}},
		Model: req.Model,
		Usage: TokenUsage{InputTokens: 10, OutputTokens: out, TotalTokens: 10 + out},
	}, nil
}

// Stream implements Client.
func (m *MockClient) Stream(ctx context.Context, req Request) (<-chan StreamChunk, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)

	if m.streamFn != nil {
		fn := m.streamFn
		m.mu.Unlock()
		return fn(ctx, req)
	}
	if m.err != nil {
		err := m.err
		m.mu.Unlock()
		return nil, err
	}

	chunks := m.chunks
	if chunks == nil {
		chunks = wordChunks(m.nextResponse())
	}
	stopped := make(chan struct{})
	m.stopped = stopped
	m.mu.Unlock()

	out := make(chan StreamChunk)
	go func() {
		defer close(stopped)
		defer close(out)
		for _, c := range chunks {
			select {
			case <-ctx.Done():
				return
			case out <- c:
			}
		}
	}()
	return out, nil
}

// StreamStopped returns a channel closed once the most recent Stream
// goroutine has exited, or nil if Stream has not produced one.
func (m *MockClient) StreamStopped() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

// Provider implements Client.
func (m *MockClient) Provider() string {
	return m.name
}

// Capabilities implements Client.
func (m *MockClient) Capabilities() Capabilities {
	return OpenAICapabilities
}

// Close implements Client.
func (m *MockClient) Close() error {
	return nil
}

// Reset clears the call history and response index.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
	m.responseIdx = 0
}

// CallCount returns the number of times Complete or Stream was called.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request, or nil if no calls made.
func (m *MockClient) LastCall() *Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return nil
	}
	req := m.Calls[len(m.Calls)-1]
	return &req
}

// nextResponse must be called with mu held.
func (m *MockClient) nextResponse() string {
	if len(m.responses) == 0 {
		return ""
	}
	r := m.responses[m.responseIdx%len(m.responses)]
	m.responseIdx++
	return r
}

func wordChunks(text string) []StreamChunk {
	var chunks []StreamChunk
	words := strings.SplitAfter(text, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		d := TextDelta(w)
		if i == 0 {
			d.Role = RoleAssistant
		}
		chunks = append(chunks, StreamChunk{Choices: []ChunkChoice{{Delta: d}}})
	}
	return append(chunks, StreamChunk{Choices: []ChunkChoice{{FinishReason: FinishStop}}})
}

var _ Client = (*MockClient)(nil)
