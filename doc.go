// Package ragchat turns the latest question of a conversation into a search
// query with a chat completion model.
//
// The work is split across packages that can be used on their own:
//
//   - approach: the chat approach (Run, RunStreaming) and its Planner
//   - history: bounded history assembly under a token budget
//   - tokens: token counters (tiktoken, estimating, cached) and budgets
//   - model: model limit tables, loading and hot reload
//   - provider: the completion provider contract, registry and mock
//   - azureopenai, anthropic: provider implementations
//   - config: configuration files, .env loading and JSON Schema
//
// # Quick Start
//
//	import (
//	    "github.com/randalmurphal/ragchat/approach"
//	    "github.com/randalmurphal/ragchat/provider"
//	    _ "github.com/randalmurphal/ragchat/providers"
//	)
//
//	client, err := provider.New("azure-openai", provider.Config{
//	    Endpoint:  "https://my-resource.openai.azure.com",
//	    Model:     "gpt-35-turbo",
//	    APIKeyEnv: "AZURE_OPENAI_API_KEY",
//	})
//	chat, err := approach.New(client, approach.Config{Model: "gpt-35-turbo"})
//	result, err := chat.Run(ctx, conversation, nil)
//
// # Budget
//
// Prior turns are kept newest first while they fit in the model's limit
// minus the cost of the new question. The system prompt and the question are
// always sent; when nothing else fits, the request is just those two.
package ragchat
