package azureopenai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/ragchat/provider"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"azure with key", Config{Endpoint: "https://r.openai.azure.com", APIKey: "k"}, false},
		{"azure with identity", Config{Endpoint: "https://r.openai.azure.com", UseAzureIdentity: true}, false},
		{"azure missing endpoint", Config{APIKey: "k"}, true},
		{"azure missing credentials", Config{Endpoint: "https://r.openai.azure.com"}, true},
		{"openai with key", Config{Flavor: FlavorOpenAI, APIKey: "k"}, false},
		{"openai missing key", Config{Flavor: FlavorOpenAI}, true},
		{"openai identity", Config{Flavor: FlavorOpenAI, APIKey: "k", UseAzureIdentity: true}, true},
		{"unknown flavor", Config{Flavor: "bedrock", APIKey: "k"}, true},
		{"negative timeout", Config{Endpoint: "https://r.openai.azure.com", APIKey: "k", Timeout: -time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://env.openai.azure.com")
	t.Setenv("AZURE_OPENAI_API_KEY", "env-key")
	t.Setenv("AZURE_OPENAI_DEPLOYMENT", "env-dep")
	t.Setenv("OPENAI_API_KEY", "openai-key")
	t.Setenv("OPENAI_BASE_URL", "https://proxy.example/v1")

	azure := Config{Deployment: "explicit"}
	azure.LoadFromEnv()
	assert.Equal(t, "https://env.openai.azure.com", azure.Endpoint)
	assert.Equal(t, "env-key", azure.APIKey)
	assert.Equal(t, "explicit", azure.Deployment, "explicit values win")

	oai := Config{Flavor: FlavorOpenAI}
	oai.LoadFromEnv()
	assert.Equal(t, "openai-key", oai.APIKey)
	assert.Equal(t, "https://proxy.example/v1", oai.Endpoint)
	assert.Empty(t, oai.Deployment)
}

func TestConfigFromProvider(t *testing.T) {
	t.Setenv("AZURE_OPENAI_ENDPOINT", "")
	t.Setenv("AZURE_OPENAI_API_KEY", "")
	t.Setenv("AZURE_OPENAI_DEPLOYMENT", "")
	t.Setenv("MY_AOAI_KEY", "from-env")

	cfg := configFromProvider(provider.Config{
		Provider:   "azure-openai",
		Endpoint:   "https://r.openai.azure.com",
		Deployment: "chat",
		APIKeyEnv:  "MY_AOAI_KEY",
		Timeout:    30 * time.Second,
		Options:    map[string]any{"azure_identity": true, "max_retries": 2},
	})

	assert.Equal(t, FlavorAzure, cfg.Flavor)
	assert.Equal(t, "https://r.openai.azure.com", cfg.Endpoint)
	assert.Equal(t, "from-env", cfg.APIKey)
	assert.Equal(t, "chat", cfg.Deployment)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.True(t, cfg.UseAzureIdentity)
	assert.Equal(t, 2, cfg.MaxRetries)

	oai := configFromProvider(provider.Config{Provider: "openai", APIKey: "k"})
	assert.Equal(t, FlavorOpenAI, oai.Flavor)
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", "")

	c, err := NewFromEnv(FlavorOpenAI)
	require.NoError(t, err)
	assert.Equal(t, "openai", c.Provider())

	t.Setenv("AZURE_OPENAI_ENDPOINT", "")
	_, err = NewFromEnv(FlavorAzure)
	assert.Error(t, err)
}
