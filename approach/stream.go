package approach

import (
	"context"
	"log/slog"

	"github.com/randalmurphal/ragchat/provider"
)

// adaptStream converts provider stream units into ResponseChunks, one for one
// and in order. Only the first choice of each unit is read; a unit without
// choices becomes an empty chunk. A unit carrying an error is forwarded as
// the final chunk.
//
// The returned channel is unbuffered so the producer never runs more than one
// chunk ahead of the consumer. Cancelling ctx makes the goroutine return
// without draining in; the provider watches the same ctx and cleans up its
// side.
func adaptStream(ctx context.Context, in <-chan provider.StreamChunk, logger *slog.Logger) <-chan ResponseChunk {
	out := make(chan ResponseChunk)

	go func() {
		defer close(out)
		sent := 0

		for {
			var unit provider.StreamChunk
			var ok bool
			select {
			case <-ctx.Done():
				logger.Debug("chat stream abandoned", slog.Int("chunks", sent))
				return
			case unit, ok = <-in:
			}
			if !ok {
				logger.Debug("chat stream finished", slog.Int("chunks", sent))
				return
			}

			chunk := toResponseChunk(unit)
			select {
			case <-ctx.Done():
				logger.Debug("chat stream abandoned", slog.Int("chunks", sent))
				return
			case out <- chunk:
				sent++
			}
			if chunk.Err != nil {
				return
			}
		}
	}()

	return out
}

func toResponseChunk(unit provider.StreamChunk) ResponseChunk {
	if unit.Error != nil {
		return ResponseChunk{Err: unit.Error}
	}
	if len(unit.Choices) == 0 {
		return ResponseChunk{}
	}
	choice := unit.Choices[0]
	chunk := ResponseChunk{FinishReason: choice.FinishReason}
	if choice.Delta.Content != nil {
		chunk.DeltaContent = *choice.Delta.Content
	}
	return chunk
}
