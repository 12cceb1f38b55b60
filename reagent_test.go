package reagent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/reagent/config"
)

func TestNewClient_ProviderSelection(t *testing.T) {
	anthropicCfg := &config.Config{
		Provider: config.ProviderAnthropic,
		Model:    "claude-3-5-sonnet-20241022",
		APIKey:   "sk-ant-test",
	}
	client, err := NewClient(anthropicCfg)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", client.Info().Provider)

	openaiCfg := &config.Config{
		Provider: config.ProviderDeepSeek,
		Model:    "deepseek-chat",
		APIKey:   "sk-test",
		BaseURL:  "https://api.deepseek.com",
	}
	client, err = NewClient(openaiCfg)
	require.NoError(t, err)
	assert.Equal(t, "openai", client.Info().Provider, "every non-anthropic provider rides the OpenAI-compatible adapter")
	assert.Equal(t, "deepseek-chat", client.Info().Name)
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(&config.Config{Provider: config.ProviderOpenAI, Model: "gpt-4o-mini"})
	require.Error(t, err)

	var missing *config.MissingFieldError
	assert.ErrorAs(t, err, &missing)
}

func TestNewDefaultRegistry(t *testing.T) {
	registry, err := NewDefaultRegistry(&config.Config{})
	require.NoError(t, err)
	assert.Equal(t, []string{"calculator"}, registry.Names())

	withSearch, err := NewDefaultRegistry(&config.Config{SearchAPIKey: "tvly-test"})
	require.NoError(t, err)
	assert.Equal(t, []string{"calculator", "web_search"}, withSearch.Names())
}

func TestNewLogger_NilConfig(t *testing.T) {
	assert.NotNil(t, NewLogger(nil))
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, Version)
}
