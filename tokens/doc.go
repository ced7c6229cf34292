// Package tokens provides token counting and budget tracking for chat prompts.
//
// # Counter
//
// A Counter reports how many tokens a model would see for a piece of text:
//
//	counter := tokens.NewEstimatingCounter()
//	n := counter.Count("gpt-4", "Hello, world!") // ~3 tokens
//
// EstimatingCounter uses the rule-of-thumb that approximately 4 characters
// equal 1 token for English text. TiktokenCounter uses the model's real BPE
// encoding and falls back to estimation for models it does not know:
//
//	counter := tokens.NewTiktokenCounter()
//	n := counter.Count("gpt-35-turbo", text)       // cl100k_base
//	n = counter.Count("claude-3-5-haiku-latest", text) // estimated
//
// Wrap any counter in a CachingCounter when the same texts are counted
// repeatedly, as conversation history is:
//
//	counter := tokens.NewCachingCounter(tokens.NewTiktokenCounter(), 0)
//
// # Budget
//
// Budget tracks a running total against a ceiling:
//
//	b := tokens.NewBudget(4000)
//	if b.Fits(n) {
//	    b.Add(n)
//	}
package tokens
