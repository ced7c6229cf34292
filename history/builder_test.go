package history_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/ragchat/history"
	"github.com/randalmurphal/ragchat/provider"
	"github.com/randalmurphal/ragchat/tokens"
)

// lenCounter prices text at one token per byte, which keeps budgets easy to read.
var lenCounter = tokens.CounterFunc(func(_, text string) int { return len(text) })

func userTurn(s string) provider.Message      { return provider.UserMessage(s) }
func assistantTurn(s string) provider.Message { return provider.AssistantMessage(s) }

func TestBuild_SingleTurn(t *testing.T) {
	b := history.NewBuilder(lenCounter)
	log := []provider.Message{userTurn("Hi")}

	got := b.Build("sys", "gpt-4", log, "Hi", 1_000_000)

	assert.Equal(t, []provider.Message{
		provider.SystemMessage("sys"),
		userTurn("Hi"),
	}, got)
}

func TestBuild_EmptyLog(t *testing.T) {
	b := history.NewBuilder(lenCounter)

	got := b.Build("sys", "gpt-4", nil, "question", 100)

	assert.Equal(t, []provider.Message{
		provider.SystemMessage("sys"),
		userTurn("question"),
	}, got)
}

func TestBuild_AllFit(t *testing.T) {
	b := history.NewBuilder(lenCounter)
	log := []provider.Message{
		userTurn("u1"),
		assistantTurn("a1"),
		userTurn("u2"),
		assistantTurn("a2"),
		userTurn("q"),
	}

	got := b.Build("s", "gpt-4", log, "q", 100)

	assert.Equal(t, []provider.Message{
		provider.SystemMessage("s"),
		userTurn("u1"),
		assistantTurn("a1"),
		userTurn("u2"),
		assistantTurn("a2"),
		userTurn("q"),
	}, got)
}

func TestBuild_ExpensiveTurnsKeepOnlyMostRecent(t *testing.T) {
	// Ceiling 100; system and question cost 0, every prior turn costs 60.
	b := history.NewBuilder(lenCounter)
	turn := func(tag string) string { return tag + strings.Repeat(".", 59) }
	log := []provider.Message{
		userTurn(turn("1")),
		assistantTurn(turn("2")),
		userTurn(turn("3")),
		assistantTurn(turn("4")),
		userTurn(turn("5")),
		userTurn(""),
	}

	got := b.Build("", "gpt-4", log, "", 100)

	require.Len(t, got, 3)
	assert.Equal(t, userTurn(turn("5")), got[1])
}

func TestBuild_FirstTurnOverflows(t *testing.T) {
	b := history.NewBuilder(lenCounter)
	log := []provider.Message{
		userTurn(strings.Repeat("x", 50)),
		userTurn("q"),
	}

	got := b.Build("s", "gpt-4", log, "q", 10)

	assert.Equal(t, []provider.Message{provider.SystemMessage("s"), userTurn("q")}, got)
}

func TestBuild_NegativeCeiling(t *testing.T) {
	b := history.NewBuilder(lenCounter)
	log := []provider.Message{userTurn("a"), userTurn("q")}

	got, stats := b.BuildWithStats("s", "gpt-4", log, "q", -5)

	assert.Equal(t, []provider.Message{provider.SystemMessage("s"), userTurn("q")}, got)
	assert.Equal(t, 0, stats.Included)
	assert.Equal(t, 1, stats.Dropped)
}

func TestBuild_StopsAtFirstOverflow(t *testing.T) {
	// The older cheap turn must not be pulled in past the expensive one.
	b := history.NewBuilder(lenCounter)
	log := []provider.Message{
		userTurn("cheap"),
		assistantTurn(strings.Repeat("x", 80)),
		userTurn("recent"),
		userTurn("q"),
	}

	got := b.Build("", "gpt-4", log, "q", 20)

	assert.Equal(t, []provider.Message{
		provider.SystemMessage(""),
		userTurn("recent"),
		userTurn("q"),
	}, got)
}

func TestBuild_ExactFit(t *testing.T) {
	b := history.NewBuilder(lenCounter)
	log := []provider.Message{userTurn("12345"), userTurn("q")}

	// 1 (system) + 1 (question) + 5 = 7.
	assert.Len(t, b.Build("s", "m", log, "q", 7), 3)
	assert.Len(t, b.Build("s", "m", log, "q", 6), 2)
}

func TestBuild_SkipsOtherRoles(t *testing.T) {
	b := history.NewBuilder(lenCounter)
	log := []provider.Message{
		userTurn("u1"),
		{Role: provider.RoleSystem, Content: strings.Repeat("huge", 100)},
		{Role: "tool", Content: strings.Repeat("huge", 100)},
		assistantTurn("a1"),
		userTurn("q"),
	}

	got, stats := b.BuildWithStats("s", "gpt-4", log, "q", 10)

	assert.Equal(t, []provider.Message{
		provider.SystemMessage("s"),
		userTurn("u1"),
		assistantTurn("a1"),
		userTurn("q"),
	}, got)
	assert.Equal(t, 2, stats.Included)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 0, stats.Dropped)
	assert.Equal(t, 6, stats.Tokens)
	assert.Equal(t, 10, stats.Ceiling)
}

func TestBuild_DoesNotMutateLog(t *testing.T) {
	b := history.NewBuilder(lenCounter)
	log := []provider.Message{userTurn("a"), assistantTurn("b"), userTurn("q")}
	snapshot := append([]provider.Message(nil), log...)

	b.Build("s", "gpt-4", log, "q", 3)

	assert.Equal(t, snapshot, log)
}

func TestBuild_NilCounterEstimates(t *testing.T) {
	b := history.NewBuilder(nil)
	log := []provider.Message{userTurn(strings.Repeat("x", 400)), userTurn("q")}

	assert.Len(t, b.Build("s", "gpt-4", log, "q", 50), 2)
	assert.Len(t, b.Build("s", "gpt-4", log, "q", 200), 3)
}

func TestBuild_Idempotent(t *testing.T) {
	b := history.NewBuilder(lenCounter)
	log := conversation(12)

	first := b.Build("system", "gpt-4", log, "q", 40)
	second := b.Build("system", "gpt-4", log, "q", 40)

	assert.Equal(t, first, second)
}

func TestBuild_Properties(t *testing.T) {
	b := history.NewBuilder(lenCounter)

	for n := 0; n <= 10; n++ {
		log := conversation(n)
		newInput := "q"
		if n > 0 {
			newInput = log[n-1].Content
		}

		prevIncluded := 0
		for ceiling := -5; ceiling <= 80; ceiling++ {
			t.Run(fmt.Sprintf("n=%d/ceiling=%d", n, ceiling), func(t *testing.T) {
				got, stats := b.BuildWithStats("sys", "gpt-4", log, newInput, ceiling)

				// Starts with the system message and ends with the new input.
				require.GreaterOrEqual(t, len(got), 2)
				assert.Equal(t, provider.SystemMessage("sys"), got[0])
				assert.Equal(t, userTurn(newInput), got[len(got)-1])

				// Kept turns are a contiguous suffix of the prior log.
				middle := got[1 : len(got)-1]
				if n > 0 {
					prior := log[:n-1]
					assert.Equal(t, prior[len(prior)-len(middle):], middle)
				} else {
					assert.Empty(t, middle)
				}

				// The middle never pushes the total past the ceiling.
				if len(middle) > 0 {
					assert.LessOrEqual(t, stats.Tokens, ceiling)
				}

				// Raising the ceiling never removes a kept turn.
				assert.GreaterOrEqual(t, stats.Included, prevIncluded)
				prevIncluded = stats.Included
			})
		}
	}
}

// conversation returns n alternating user/assistant turns of varying cost.
func conversation(n int) []provider.Message {
	log := make([]provider.Message, n)
	for i := range log {
		content := fmt.Sprintf("turn-%d%s", i, strings.Repeat("~", i%4))
		if i%2 == 0 {
			log[i] = userTurn(content)
		} else {
			log[i] = assistantTurn(content)
		}
	}
	return log
}
