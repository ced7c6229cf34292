package provider

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds configuration for creating a completion provider client.
// Common fields apply to all providers; use Options for provider-specific settings.
type Config struct {
	// --- Provider Selection ---

	// Provider is the name of the provider to use.
	// Required. Values: "azure-openai", "openai", "anthropic"
	Provider string `json:"provider" yaml:"provider" toml:"provider" mapstructure:"provider"`

	// --- Model Selection ---

	// Model is the model identifier used for token limits and counting.
	// Examples: "gpt-35-turbo", "gpt-4", "claude-3-5-haiku-latest"
	Model string `json:"model" yaml:"model" toml:"model" mapstructure:"model"`

	// Deployment is the Azure OpenAI deployment name.
	// Optional. Defaults to Model.
	Deployment string `json:"deployment,omitempty" yaml:"deployment,omitempty" toml:"deployment,omitempty" mapstructure:"deployment"`

	// --- Connection ---

	// Endpoint is the service base URL.
	// Required for "azure-openai"; optional override for the others.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" toml:"endpoint,omitempty" mapstructure:"endpoint"`

	// APIKey authenticates against the service. Prefer APIKeyEnv in files.
	APIKey string `json:"-" yaml:"-" toml:"-" mapstructure:"api_key"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `json:"api_key_env,omitempty" yaml:"api_key_env,omitempty" toml:"api_key_env,omitempty" mapstructure:"api_key_env"`

	// Timeout bounds a single completion request at the transport level.
	// 0 uses the provider default.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"timeout,omitempty" mapstructure:"timeout"`

	// --- Provider-Specific Options ---

	// Options holds provider-specific configuration.
	//
	// Azure OpenAI:
	//   - "azure_identity": bool (authenticate with DefaultAzureCredential instead of a key)
	//
	// Anthropic:
	//   - "max_retries": int (SDK-level retries, default 2)
	//   - "max_tokens": int (output cap when a request sets none)
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty" mapstructure:"options"`
}

// DefaultConfig returns a Config with sensible defaults.
// Provider must still be set before use.
func DefaultConfig() Config {
	return Config{
		Timeout: 2 * time.Minute,
	}
}

// LoadFromEnv populates config fields from environment variables.
// Environment variables use RAGCHAT_ prefix and take precedence over existing values.
//
// Supported variables:
//   - RAGCHAT_PROVIDER: Provider name
//   - RAGCHAT_MODEL: Model name
//   - RAGCHAT_DEPLOYMENT: Azure deployment name
//   - RAGCHAT_ENDPOINT: Service endpoint
//   - RAGCHAT_API_KEY: API key
//   - RAGCHAT_TIMEOUT: Timeout duration (e.g., "30s")
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("RAGCHAT_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("RAGCHAT_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("RAGCHAT_DEPLOYMENT"); v != "" {
		c.Deployment = v
	}
	if v := os.Getenv("RAGCHAT_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("RAGCHAT_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("RAGCHAT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
}

// FromEnv creates a Config from environment variables with defaults.
func FromEnv() Config {
	cfg := DefaultConfig()
	cfg.LoadFromEnv()
	return cfg
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}
	return nil
}

// ResolveAPIKey returns APIKey, or the value of the APIKeyEnv variable when
// APIKey is empty.
func (c Config) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if c.APIKeyEnv != "" {
		return strings.TrimSpace(os.Getenv(c.APIKeyEnv))
	}
	return ""
}

// DeploymentName returns Deployment, falling back to Model.
func (c Config) DeploymentName() string {
	if c.Deployment != "" {
		return c.Deployment
	}
	return c.Model
}

// WithProvider returns a copy of the config with the specified provider.
func (c Config) WithProvider(provider string) Config {
	c.Provider = provider
	return c
}

// WithModel returns a copy of the config with the specified model.
func (c Config) WithModel(model string) Config {
	c.Model = model
	return c
}

// WithEndpoint returns a copy of the config with the specified endpoint.
func (c Config) WithEndpoint(endpoint string) Config {
	c.Endpoint = endpoint
	return c
}

// WithOption returns a copy of the config with the specified option set.
func (c Config) WithOption(key string, value any) Config {
	newOpts := make(map[string]any, len(c.Options)+1)
	for k, v := range c.Options {
		newOpts[k] = v
	}
	newOpts[key] = value
	c.Options = newOpts
	return c
}

// GetOption retrieves a provider-specific option by key.
// Returns nil if the option is not set.
func (c Config) GetOption(key string) any {
	if c.Options == nil {
		return nil
	}
	return c.Options[key]
}

// GetStringOption retrieves a string option, returning defaultVal if not set.
func (c Config) GetStringOption(key, defaultVal string) string {
	if v, ok := c.GetOption(key).(string); ok {
		return v
	}
	return defaultVal
}

// GetBoolOption retrieves a bool option, returning defaultVal if not set.
func (c Config) GetBoolOption(key string, defaultVal bool) bool {
	if v, ok := c.GetOption(key).(bool); ok {
		return v
	}
	return defaultVal
}

// GetIntOption retrieves an int option, returning defaultVal if not set.
// Numbers decoded from JSON, YAML or TOML are all accepted.
func (c Config) GetIntOption(key string, defaultVal int) int {
	switch v := c.GetOption(key).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return defaultVal
}
