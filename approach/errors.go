package approach

import "errors"

// ErrEmptyConversation indicates Run or RunStreaming was given no messages.
var ErrEmptyConversation = errors.New("conversation is empty")
