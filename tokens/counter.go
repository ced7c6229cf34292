package tokens

import (
	"unicode/utf8"
)

// DefaultCharsPerToken is the default character-to-token ratio.
// Approximately 4 characters equals 1 token for English text.
const DefaultCharsPerToken = 4.0

// Counter counts the tokens a model would see for a piece of text.
// Count must return a non-negative value and be deterministic for the same
// (model, text) pair within a process. Implementations must be safe for
// concurrent use.
type Counter interface {
	Count(model, text string) int
}

// CounterFunc adapts a plain function to the Counter interface.
type CounterFunc func(model, text string) int

// Count calls f(model, text).
func (f CounterFunc) Count(model, text string) int {
	return f(model, text)
}

// FitsInLimit returns true if text costs no more than limit tokens under c.
func FitsInLimit(c Counter, model, text string, limit int) bool {
	return c.Count(model, text) <= limit
}

// EstimatingCounter uses a character-to-token ratio for estimation.
// It ignores the model and works for any of them.
type EstimatingCounter struct {
	// CharsPerToken is the average characters per token.
	// Default is 4, which works well for English text.
	CharsPerToken float64
}

// NewEstimatingCounter creates a token counter with default settings.
func NewEstimatingCounter() *EstimatingCounter {
	return &EstimatingCounter{
		CharsPerToken: DefaultCharsPerToken,
	}
}

// NewEstimatingCounterWithRatio creates a token counter with a custom ratio.
// If charsPerToken is <= 0, the default ratio (4.0) is used.
func NewEstimatingCounterWithRatio(charsPerToken float64) *EstimatingCounter {
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	return &EstimatingCounter{
		CharsPerToken: charsPerToken,
	}
}

// Count estimates the number of tokens in the given text.
// Actual token counts may vary based on the model's tokenizer.
func (c *EstimatingCounter) Count(_, text string) int {
	// Count runes (Unicode code points) rather than bytes for better accuracy
	runeCount := utf8.RuneCountInString(text)
	tokens := float64(runeCount) / c.CharsPerToken

	// Round to nearest integer
	return int(tokens + 0.5)
}

// FitsInLimit returns true if the text fits within the token limit.
func (c *EstimatingCounter) FitsInLimit(model, text string, limit int) bool {
	return c.Count(model, text) <= limit
}

// EstimateTokens is a convenience function using the default estimator.
func EstimateTokens(text string) int {
	return NewEstimatingCounter().Count("", text)
}

var (
	_ Counter = (*EstimatingCounter)(nil)
	_ Counter = CounterFunc(nil)
)
