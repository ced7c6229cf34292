// Package anthropic provides a completion provider for the Anthropic
// Messages API.
//
// Usage:
//
//	client, err := provider.New("anthropic", provider.Config{
//	    Model:     "claude-3-5-haiku-latest",
//	    APIKeyEnv: "ANTHROPIC_API_KEY",
//	})
//
// System messages are sent in the request's system field. The API returns a
// single choice, so requests with N > 1 fail with provider.ErrInvalidRequest.
// Stop reasons map to finish reasons: end_turn and stop_sequence become
// "stop", max_tokens becomes "length".
package anthropic
