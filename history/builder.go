package history

import (
	"github.com/randalmurphal/ragchat/provider"
	"github.com/randalmurphal/ragchat/tokens"
)

// Builder assembles token-bounded message histories.
// It keeps no state between calls and is safe for concurrent use if its
// Counter is.
type Builder struct {
	counter tokens.Counter
}

// NewBuilder creates a Builder that prices messages with counter.
// A nil counter uses tokens.NewEstimatingCounter.
func NewBuilder(counter tokens.Counter) *Builder {
	if counter == nil {
		counter = tokens.NewEstimatingCounter()
	}
	return &Builder{counter: counter}
}

// Stats describes one Build.
type Stats struct {
	// Included is the number of prior turns kept.
	Included int `json:"included"`
	// Dropped is the number of prior user/assistant turns left out.
	Dropped int `json:"dropped"`
	// Skipped is the number of prior turns with other roles, which are never kept.
	Skipped int `json:"skipped"`
	// Tokens is the total cost of the output, system prompt and new input included.
	Tokens int `json:"tokens"`
	// Ceiling is the reservedTokens value the build ran against.
	Ceiling int `json:"ceiling"`
}

// Build returns [system, prior turns that fit (oldest first), newInput].
//
// log is the conversation so far; its last element is the turn being answered
// and is represented by newInput, so only log[:len(log)-1] is considered.
// Prior turns are visited newest first. A user or assistant turn is kept only
// while the running total (which starts at the cost of systemPrompt plus
// newInput) stays within reservedTokens; the first turn that does not fit ends
// the scan. Turns with any other role are passed over without cost.
//
// The system prompt and new input are always present. Running out of budget is
// not an error: the result degrades to [system, newInput].
func (b *Builder) Build(systemPrompt, model string, log []provider.Message, newInput string, reservedTokens int) []provider.Message {
	out, _ := b.BuildWithStats(systemPrompt, model, log, newInput, reservedTokens)
	return out
}

// BuildWithStats is Build plus a summary of what was kept.
func (b *Builder) BuildWithStats(systemPrompt, model string, log []provider.Message, newInput string, reservedTokens int) ([]provider.Message, Stats) {
	stats := Stats{Ceiling: reservedTokens}
	budget := tokens.NewBudget(reservedTokens)
	budget.Add(b.counter.Count(model, systemPrompt))
	budget.Add(b.counter.Count(model, newInput))

	var prior []provider.Message
	if len(log) > 0 {
		prior = log[:len(log)-1]
	}

	// Marks are set newest-to-oldest, then read oldest-to-newest.
	keep := make([]bool, len(prior))
	stopped := false
	for i := len(prior) - 1; i >= 0; i-- {
		msg := prior[i]
		if !msg.Role.Conversational() {
			stats.Skipped++
			continue
		}
		if stopped {
			stats.Dropped++
			continue
		}
		if budget.Exceeded() {
			stopped = true
			stats.Dropped++
			continue
		}
		cost := b.counter.Count(model, msg.Content)
		if !budget.Fits(cost) {
			stopped = true
			stats.Dropped++
			continue
		}
		budget.Add(cost)
		keep[i] = true
		stats.Included++
	}

	out := make([]provider.Message, 0, stats.Included+2)
	out = append(out, provider.SystemMessage(systemPrompt))
	for i, ok := range keep {
		if ok {
			out = append(out, prior[i])
		}
	}
	out = append(out, provider.UserMessage(newInput))

	stats.Tokens = budget.Used()
	return out, stats
}
