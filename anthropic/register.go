package anthropic

import (
	"github.com/randalmurphal/ragchat/provider"
)

func init() {
	provider.Register("anthropic", newFromProviderConfig, "claude")
}

// newFromProviderConfig creates a Client from a provider.Config.
// This is the factory function registered with the provider registry.
func newFromProviderConfig(cfg provider.Config) (provider.Client, error) {
	return New(configFromProvider(cfg))
}

func configFromProvider(cfg provider.Config) Config {
	c := Config{
		APIKey:  cfg.ResolveAPIKey(),
		BaseURL: cfg.Endpoint,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	}

	// Map Anthropic-specific options
	if cfg.Options != nil {
		c.MaxTokens = cfg.GetIntOption("max_tokens", 0)
		if _, ok := cfg.Options["max_retries"]; ok {
			n := cfg.GetIntOption("max_retries", 0)
			c.MaxRetries = &n
		}
	}

	c.LoadFromEnv()
	return c
}
