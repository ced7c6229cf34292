package approach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/randalmurphal/ragchat/history"
	"github.com/randalmurphal/ragchat/model"
	"github.com/randalmurphal/ragchat/provider"
	"github.com/randalmurphal/ragchat/tokens"
)

// Defaults for Config.
const (
	// DefaultTemperature is used when neither Config nor Context sets one.
	DefaultTemperature = 0.7

	// QueryMaxTokens caps the generated output. The approach only needs a
	// short search query, not a full answer.
	QueryMaxTokens = 32
)

// Config configures a ChatReadRetrieveRead.
type Config struct {
	// Model is the model id used for limit lookup, token counting and the
	// provider request. Required.
	Model string `json:"model" yaml:"model" toml:"model"`

	// MaxOutputTokens caps the generated output. Default: QueryMaxTokens.
	MaxOutputTokens int `json:"max_output_tokens,omitempty" yaml:"max_output_tokens,omitempty" toml:"max_output_tokens,omitempty"`

	// Temperature is the default sampling temperature. Default: DefaultTemperature.
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty" toml:"temperature,omitempty"`
}

// Option configures a Planner or ChatReadRetrieveRead.
type Option func(*Planner)

// WithCounter sets the token counter. Default: tokens.NewEstimatingCounter().
func WithCounter(c tokens.Counter) Option {
	return func(p *Planner) {
		if c != nil {
			p.counter = c
		}
	}
}

// WithLimits sets the model limit table. Default: model.DefaultLimits().
func WithLimits(l model.Limits) Option {
	return func(p *Planner) {
		if l != nil {
			p.limits = l
		}
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Planner) {
		if l != nil {
			p.logger = l
		}
	}
}

// Planner turns a conversation log into the provider request the approach
// would send, without sending it.
type Planner struct {
	counter     tokens.Counter
	limits      model.Limits
	builder     *history.Builder
	logger      *slog.Logger
	model       string
	maxOutput   int
	temperature float64
}

// NewPlanner creates a Planner from cfg.
func NewPlanner(cfg Config, opts ...Option) (*Planner, error) {
	if cfg.Model == "" {
		return nil, errors.New("model is required")
	}
	if cfg.MaxOutputTokens < 0 {
		return nil, fmt.Errorf("max output tokens must be >= 0, got %d", cfg.MaxOutputTokens)
	}

	p := &Planner{
		counter:     tokens.NewEstimatingCounter(),
		limits:      model.DefaultLimits(),
		logger:      slog.Default(),
		model:       cfg.Model,
		maxOutput:   cfg.MaxOutputTokens,
		temperature: DefaultTemperature,
	}
	if p.maxOutput == 0 {
		p.maxOutput = QueryMaxTokens
	}
	if cfg.Temperature != nil {
		p.temperature = *cfg.Temperature
	}
	for _, opt := range opts {
		opt(p)
	}
	p.builder = history.NewBuilder(p.counter)
	return p, nil
}

// Model returns the configured model id.
func (p *Planner) Model() string {
	return p.model
}

// Plan builds the request for answering the last message of log.
//
// Returns ErrEmptyConversation for an empty log and an error wrapping
// model.ErrUnknownModel when the model has no limit.
func (p *Planner) Plan(log []provider.Message, cc *Context) (provider.Request, history.Stats, error) {
	return p.plan(log, cc, false)
}

func (p *Planner) plan(log []provider.Message, cc *Context, stream bool) (provider.Request, history.Stats, error) {
	if len(log) == 0 {
		return provider.Request{}, history.Stats{}, ErrEmptyConversation
	}
	newInput := log[len(log)-1].Content

	maxTokens, err := p.limits.MaxTokens(p.model)
	if err != nil {
		return provider.Request{}, history.Stats{}, err
	}

	// The system prompt's cost is not subtracted here; a request whose prompt
	// and input alone overflow the ceiling is still sent.
	reserved := maxTokens - p.counter.Count(p.model, newInput)

	messages, stats := p.builder.BuildWithStats(cc.systemPrompt(), p.model, log, newInput, reserved)
	p.logger.Debug("assembled chat history",
		slog.String("model", p.model),
		slog.Int("max_tokens", maxTokens),
		slog.Int("reserved", reserved),
		slog.Int("included", stats.Included),
		slog.Int("dropped", stats.Dropped),
		slog.Int("tokens", stats.Tokens),
		slog.Bool("stream", stream))

	return provider.Request{
		Model:       p.model,
		Messages:    messages,
		Temperature: cc.temperature(p.temperature),
		MaxTokens:   p.maxOutput,
		N:           1,
		Stream:      stream,
	}, stats, nil
}

// ChatReadRetrieveRead answers one conversational turn: it fits as much of
// the conversation as the model allows behind a fixed instruction and sends
// it to the completion provider.
//
// It keeps no per-call state and is safe for concurrent use when its
// collaborators are.
type ChatReadRetrieveRead struct {
	*Planner
	client provider.Client
}

// New creates a ChatReadRetrieveRead that sends requests through client.
func New(client provider.Client, cfg Config, opts ...Option) (*ChatReadRetrieveRead, error) {
	if client == nil {
		return nil, errors.New("provider client is required")
	}
	p, err := NewPlanner(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &ChatReadRetrieveRead{Planner: p, client: client}, nil
}

// Run answers the last message of log in one call.
//
// Returns ErrEmptyConversation for an empty log and an error wrapping
// model.ErrUnknownModel when the model has no limit; neither reaches the
// provider. Provider errors are returned unchanged.
func (a *ChatReadRetrieveRead) Run(ctx context.Context, log []provider.Message, cc *Context) (*CompletionResult, error) {
	req, _, err := a.plan(log, cc, false)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	return &CompletionResult{
		Content: resp.Content(),
		Role:    provider.RoleAssistant,
	}, nil
}

// RunStreaming answers the last message of log incrementally.
//
// The returned channel yields one ResponseChunk per provider unit, in order,
// and is closed when the provider finishes. A mid-stream provider failure
// arrives as a final chunk with Err set. To stop early, cancel ctx; the
// channel is then closed without further chunks.
//
// Validation and provider start-up errors are returned directly, as for Run.
func (a *ChatReadRetrieveRead) RunStreaming(ctx context.Context, log []provider.Message, cc *Context) (<-chan ResponseChunk, error) {
	req, _, err := a.plan(log, cc, true)
	if err != nil {
		return nil, err
	}

	raw, err := a.client.Stream(ctx, req)
	if err != nil {
		return nil, err
	}
	return adaptStream(ctx, raw, a.logger), nil
}
