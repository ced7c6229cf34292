package azureopenai

import (
	"fmt"
	"os"
	"time"
)

// Flavor selects which service the client talks to.
type Flavor string

// Supported flavors.
const (
	FlavorAzure  Flavor = "azure"
	FlavorOpenAI Flavor = "openai"
)

// DefaultOpenAIEndpoint is the public OpenAI API base URL.
const DefaultOpenAIEndpoint = "https://api.openai.com/v1"

// Config holds Azure OpenAI / OpenAI client configuration.
type Config struct {
	// Flavor selects Azure OpenAI or the public OpenAI API.
	// Default: FlavorAzure.
	Flavor Flavor `json:"flavor" yaml:"flavor"`

	// Endpoint is the service URL.
	// Required for Azure, e.g. "https://my-resource.openai.azure.com".
	// Optional for OpenAI; defaults to DefaultOpenAIEndpoint.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// APIKey authenticates the client. Required unless UseAzureIdentity is set.
	APIKey string `json:"-" yaml:"-"`

	// UseAzureIdentity authenticates with azidentity.DefaultAzureCredential
	// instead of an API key. Azure only.
	UseAzureIdentity bool `json:"use_azure_identity" yaml:"use_azure_identity"`

	// Deployment is the Azure deployment (or OpenAI model) to call. When
	// empty, the request's model is used.
	Deployment string `json:"deployment" yaml:"deployment"`

	// Timeout bounds each HTTP attempt. 0 uses the SDK default.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxRetries is the SDK's transport retry count. 0 uses the SDK default;
	// negative disables retries.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.flavor() {
	case FlavorAzure:
		if c.Endpoint == "" {
			return fmt.Errorf("azure openai endpoint is required")
		}
		if c.APIKey == "" && !c.UseAzureIdentity {
			return fmt.Errorf("azure openai requires an api key or azure identity")
		}
	case FlavorOpenAI:
		if c.APIKey == "" {
			return fmt.Errorf("openai api key is required")
		}
		if c.UseAzureIdentity {
			return fmt.Errorf("azure identity is not supported for openai")
		}
	default:
		return fmt.Errorf("unknown flavor %q", c.Flavor)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}
	return nil
}

func (c *Config) flavor() Flavor {
	if c.Flavor == "" {
		return FlavorAzure
	}
	return c.Flavor
}

// LoadFromEnv fills empty fields from environment variables.
//
// Supported variables:
//   - AZURE_OPENAI_ENDPOINT: Azure endpoint
//   - AZURE_OPENAI_API_KEY: Azure API key
//   - AZURE_OPENAI_DEPLOYMENT: Azure deployment name
//   - OPENAI_API_KEY: OpenAI API key (FlavorOpenAI)
//   - OPENAI_BASE_URL: OpenAI endpoint override (FlavorOpenAI)
func (c *Config) LoadFromEnv() {
	if c.flavor() == FlavorOpenAI {
		setIfEmpty(&c.APIKey, "OPENAI_API_KEY")
		setIfEmpty(&c.Endpoint, "OPENAI_BASE_URL")
		return
	}
	setIfEmpty(&c.Endpoint, "AZURE_OPENAI_ENDPOINT")
	setIfEmpty(&c.APIKey, "AZURE_OPENAI_API_KEY")
	setIfEmpty(&c.Deployment, "AZURE_OPENAI_DEPLOYMENT")
}

func setIfEmpty(dst *string, env string) {
	if *dst != "" {
		return
	}
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// NewFromEnv creates a client of the given flavor configured entirely from
// environment variables.
func NewFromEnv(flavor Flavor) (*Client, error) {
	cfg := Config{Flavor: flavor}
	cfg.LoadFromEnv()
	return New(cfg)
}
