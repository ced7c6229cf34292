package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClient is the smallest Client the registry tests need.
type stubClient struct {
	cfg Config
}

func (s *stubClient) Complete(context.Context, Request) (*Response, error) {
	return &Response{Choices: []Choice{{Message: &Message{Role: RoleAssistant, Content: "stub"}}}}, nil
}

func (s *stubClient) Stream(context.Context, Request) (<-chan StreamChunk, error) {
	ch := make(chan StreamChunk)
	close(ch)
	return ch, nil
}

func (s *stubClient) Provider() string { return s.cfg.Provider }

func (s *stubClient) Capabilities() Capabilities { return OpenAICapabilities }

func (s *stubClient) Close() error { return nil }

func stubFactory(cfg Config) (Client, error) {
	return &stubClient{cfg: cfg}, nil
}

// withCleanRegistry empties the registry for the duration of a test.
func withCleanRegistry(t *testing.T) {
	t.Helper()
	ClearRegistry()
	t.Cleanup(ClearRegistry)
}

func TestRegister(t *testing.T) {
	withCleanRegistry(t)

	Register("Azure-OpenAI", stubFactory, "azure", " AOAI ")

	assert.True(t, IsRegistered("azure-openai"))
	assert.True(t, IsRegistered("AZURE"))
	assert.True(t, IsRegistered("aoai"))
	assert.False(t, IsRegistered("openai"))
	assert.Equal(t, []string{"azure-openai"}, Available(), "aliases are not listed")

	name, ok := Canonical("Azure")
	assert.True(t, ok)
	assert.Equal(t, "azure-openai", name)
}

func TestRegister_Panics(t *testing.T) {
	withCleanRegistry(t)
	Register("one", stubFactory, "uno")

	assert.Panics(t, func() { Register("one", stubFactory) })
	assert.Panics(t, func() { Register("ONE", stubFactory) })
	assert.Panics(t, func() { Register("uno", stubFactory) }, "name taken by an alias")
	assert.Panics(t, func() { Register("two", stubFactory, "one") }, "alias taken by a name")
}

func TestNew(t *testing.T) {
	withCleanRegistry(t)
	Register("anthropic", stubFactory, "claude")

	client, err := New("Claude", Config{Model: "claude-3-5-haiku-latest"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", client.Provider(), "factory sees the canonical name")

	resp, err := client.Complete(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "stub", resp.Content())

	_, err = New("nonexistent", Config{})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestNew_FactoryError(t *testing.T) {
	withCleanRegistry(t)
	boom := errors.New("boom")
	Register("broken", func(Config) (Client, error) { return nil, boom })

	_, err := New("broken", Config{})
	assert.ErrorIs(t, err, boom)
}

func TestMustNew(t *testing.T) {
	withCleanRegistry(t)
	Register("stub", stubFactory)

	assert.NotPanics(t, func() { MustNew("stub", Config{}) })
	assert.Panics(t, func() { MustNew("missing", Config{}) })
}

func TestAvailable_Sorted(t *testing.T) {
	withCleanRegistry(t)
	Register("openai", stubFactory)
	Register("anthropic", stubFactory)
	Register("azure-openai", stubFactory)

	assert.Equal(t, []string{"anthropic", "azure-openai", "openai"}, Available())
}

func TestUnregister(t *testing.T) {
	withCleanRegistry(t)
	Register("stub", stubFactory, "alias")

	Unregister("ALIAS")
	assert.False(t, IsRegistered("stub"))
	assert.False(t, IsRegistered("alias"))
	assert.Empty(t, Available())

	Unregister("never-registered")

	// The names are free again.
	assert.NotPanics(t, func() { Register("alias", stubFactory) })
}

func TestFromConfig(t *testing.T) {
	withCleanRegistry(t)
	Register("stub", stubFactory)

	client, err := FromConfig(Config{Provider: "stub", Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "stub", client.Provider())

	_, err = FromConfig(Config{})
	assert.Error(t, err, "provider is required")

	_, err = FromConfig(Config{Provider: "stub", Timeout: -1})
	assert.Error(t, err)

	_, err = FromConfig(Config{Provider: "missing"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
