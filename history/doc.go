// Package history assembles the bounded message history sent with each
// chat completion request.
//
// A conversation log grows without bound, but every model accepts a fixed
// number of tokens. Builder keeps the most recent turns that fit under a
// token ceiling and drops the rest:
//
//	b := history.NewBuilder(tokens.NewTiktokenCounter())
//	msgs := b.Build(systemPrompt, "gpt-35-turbo", log, question, reserved)
//	// msgs = [system, ...recent turns oldest first, user question]
//
// Selection is greedy from the newest turn backwards and stops at the first
// turn that does not fit, so the kept turns are always a contiguous suffix of
// the conversation (ignoring non-conversational roles). Older, cheaper turns
// are never pulled in past a gap.
//
// ReadLog and ReadLogFile load conversation logs from JSONL, JSON or YAML.
package history
