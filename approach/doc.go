// Package approach implements the chat-read-retrieve-read conversational turn.
//
// ChatReadRetrieveRead takes a conversation log whose last message is the
// user's new question, fits as much prior conversation as the model's token
// limit allows behind a fixed instruction, and asks the completion provider
// for a short reformulation:
//
//	a, err := approach.New(client, approach.Config{Model: "gpt-35-turbo"},
//	    approach.WithCounter(tokens.NewTiktokenCounter()),
//	)
//	result, err := a.Run(ctx, log, nil)
//	fmt.Println(result.Content)
//
// RunStreaming returns the answer incrementally:
//
//	chunks, err := a.RunStreaming(ctx, log, &approach.Context{Temperature: approach.Float(0)})
//	for c := range chunks {
//	    if c.Err != nil {
//	        return c.Err
//	    }
//	    fmt.Print(c.DeltaContent)
//	}
//
// # Token Budget
//
// The history ceiling is the model's limit minus the cost of the new
// question; the instruction's cost is not subtracted. The instruction and the
// question are always sent, even when together they already exceed the
// ceiling, so a request is not guaranteed to fit the model limit.
//
// # Errors
//
// An empty log fails with ErrEmptyConversation and a model missing from the
// limit table fails with model.ErrUnknownModel, both before the provider is
// called. Provider errors are returned as-is and never retried.
package approach
