package model

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrUnknownModel indicates a model id is missing from the limit table.
var ErrUnknownModel = errors.New("unknown model")

// Limits resolves a model's total token ceiling.
// Implementations must be safe for concurrent use.
type Limits interface {
	MaxTokens(model string) (int, error)
}

// LimitTable maps model ids to their maximum token count.
// A LimitTable is read-only once handed out; use Merge to build a new one.
type LimitTable map[string]int

var defaultLimits = LimitTable{
	// OpenAI, Azure deployment spellings
	"gpt-35-turbo":     4000,
	"gpt-35-turbo-16k": 16000,

	// OpenAI, public names
	"gpt-3.5-turbo":     4000,
	"gpt-3.5-turbo-16k": 16000,
	"gpt-4":             8100,
	"gpt-4-32k":         32000,
	"gpt-4-turbo":       128000,
	"gpt-4o":            128000,
	"gpt-4o-mini":       128000,

	// Anthropic
	"claude-3-haiku-20240307":  200000,
	"claude-3-5-haiku-latest":  200000,
	"claude-3-5-sonnet-latest": 200000,
	"claude-3-7-sonnet-latest": 200000,
	"claude-sonnet-4-0":        200000,
	"claude-opus-4-0":          200000,
}

// DefaultLimits returns a copy of the built-in limit table.
func DefaultLimits() LimitTable {
	return maps.Clone(defaultLimits)
}

// MaxTokens returns the token ceiling for model.
// The id is looked up as given first, then by its normalized name.
// Unknown ids return an error wrapping ErrUnknownModel.
func (t LimitTable) MaxTokens(model string) (int, error) {
	if n, ok := t[model]; ok {
		return n, nil
	}
	if n, ok := t[NormalizeModelName(model)]; ok {
		return n, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownModel, model)
}

// Models returns the table's model ids in sorted order.
func (t LimitTable) Models() []string {
	return slices.Sorted(maps.Keys(t))
}

// Merge returns a new table holding t's entries overridden by other's.
func (t LimitTable) Merge(other LimitTable) LimitTable {
	out := make(LimitTable, len(t)+len(other))
	maps.Copy(out, t)
	maps.Copy(out, other)
	return out
}

// Validate checks that every entry has a usable ceiling.
func (t LimitTable) Validate() error {
	for _, id := range t.Models() {
		if id == "" {
			return fmt.Errorf("model id must not be empty")
		}
		if t[id] <= 0 {
			return fmt.Errorf("model %q: max tokens must be > 0, got %d", id, t[id])
		}
	}
	return nil
}

var _ Limits = LimitTable(nil)
