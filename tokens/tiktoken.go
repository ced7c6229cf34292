package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/randalmurphal/ragchat/model"
)

// Encoder turns text into BPE token ids.
// *tiktoken.Tiktoken satisfies it.
type Encoder interface {
	Encode(text string, allowedSpecial, disallowedSpecial []string) []int
}

// EncoderLookup finds the encoder for a normalized model name.
type EncoderLookup func(model string) (Encoder, error)

// TiktokenCounter counts tokens with the model's real BPE encoding.
// Models without a known encoding are counted by the fallback counter.
type TiktokenCounter struct {
	lookup   EncoderLookup
	fallback Counter

	mu       sync.Mutex
	encoders map[string]Encoder // nil value: no encoding, use fallback
}

// TiktokenOption configures a TiktokenCounter.
type TiktokenOption func(*TiktokenCounter)

// WithFallback sets the counter used for models tiktoken does not know.
// Default is an EstimatingCounter.
func WithFallback(c Counter) TiktokenOption {
	return func(t *TiktokenCounter) {
		if c != nil {
			t.fallback = c
		}
	}
}

// WithEncoderLookup replaces the encoding lookup. Tests use it to avoid
// loading BPE ranks.
func WithEncoderLookup(fn EncoderLookup) TiktokenOption {
	return func(t *TiktokenCounter) {
		if fn != nil {
			t.lookup = fn
		}
	}
}

// NewTiktokenCounter creates a counter backed by tiktoken-go.
func NewTiktokenCounter(opts ...TiktokenOption) *TiktokenCounter {
	t := &TiktokenCounter{
		lookup:   tiktokenLookup,
		fallback: NewEstimatingCounter(),
		encoders: make(map[string]Encoder),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func tiktokenLookup(name string) (Encoder, error) {
	return tiktoken.EncodingForModel(name)
}

// Count returns the number of BPE tokens in text for model.
func (t *TiktokenCounter) Count(modelName, text string) int {
	if text == "" {
		return 0
	}
	enc := t.encoder(model.NormalizeModelName(modelName))
	if enc == nil {
		return t.fallback.Count(modelName, text)
	}
	return len(enc.Encode(text, nil, nil))
}

// FitsInLimit returns true if the text fits within the token limit.
func (t *TiktokenCounter) FitsInLimit(modelName, text string, limit int) bool {
	return t.Count(modelName, text) <= limit
}

// encoder resolves and memoizes the encoder for a normalized name.
// Failed lookups are memoized too.
func (t *TiktokenCounter) encoder(name string) Encoder {
	t.mu.Lock()
	defer t.mu.Unlock()

	if enc, ok := t.encoders[name]; ok {
		return enc
	}
	enc, err := t.lookup(name)
	if err != nil {
		enc = nil
	}
	t.encoders[name] = enc
	return enc
}

var _ Counter = (*TiktokenCounter)(nil)
