package azureopenai

import (
	"github.com/randalmurphal/ragchat/provider"
)

func init() {
	provider.Register("azure-openai", newFromProviderConfig, "azure")
	provider.Register("openai", newFromProviderConfig)
}

// newFromProviderConfig creates a Client from a provider.Config.
// This is the factory function registered with the provider registry.
func newFromProviderConfig(cfg provider.Config) (provider.Client, error) {
	return New(configFromProvider(cfg))
}

func configFromProvider(cfg provider.Config) Config {
	c := Config{
		Flavor:     FlavorAzure,
		Endpoint:   cfg.Endpoint,
		APIKey:     cfg.ResolveAPIKey(),
		Deployment: cfg.Deployment,
		Timeout:    cfg.Timeout,
	}
	// The registry hands over the canonical name.
	if cfg.Provider == "openai" {
		c.Flavor = FlavorOpenAI
	}

	// Map Azure OpenAI-specific options
	if cfg.Options != nil {
		c.UseAzureIdentity = cfg.GetBoolOption("azure_identity", false)
		c.MaxRetries = cfg.GetIntOption("max_retries", 0)
	}

	c.LoadFromEnv()
	return c
}
