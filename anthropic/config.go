package anthropic

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// DefaultMaxTokens is sent when a request sets no output cap; the Messages
// API requires one.
const DefaultMaxTokens = 1024

// Config controls an Anthropic client.
type Config struct {
	// APIKey authenticates the client. Required.
	APIKey string `json:"-" yaml:"-"`

	// BaseURL overrides the API endpoint.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Model is used when a request does not name one.
	Model string `json:"model" yaml:"model"`

	// MaxTokens is the output cap used when a request sets none.
	// Default: DefaultMaxTokens.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Timeout bounds each HTTP attempt. 0 uses the SDK default.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxRetries is the SDK's transport retry count. nil uses the SDK default.
	MaxRetries *int `json:"max_retries" yaml:"max_retries"`

	// HTTPClient replaces the SDK's HTTP client.
	HTTPClient *http.Client `json:"-" yaml:"-"`
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("anthropic: api key is required")
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("anthropic: max tokens must be >= 0, got %d", c.MaxTokens)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("anthropic: timeout must be >= 0, got %v", c.Timeout)
	}
	return nil
}

// LoadFromEnv fills empty fields from ANTHROPIC_API_KEY, ANTHROPIC_BASE_URL
// and ANTHROPIC_MODEL.
func (c *Config) LoadFromEnv() {
	if c.APIKey == "" {
		c.APIKey = envTrimmed("ANTHROPIC_API_KEY")
	}
	if c.BaseURL == "" {
		c.BaseURL = envTrimmed("ANTHROPIC_BASE_URL")
	}
	if c.Model == "" {
		c.Model = envTrimmed("ANTHROPIC_MODEL")
	}
}

func envTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// NewFromEnv creates a client configured entirely from environment variables.
func NewFromEnv() (*Client, error) {
	var cfg Config
	cfg.LoadFromEnv()
	return New(cfg)
}
