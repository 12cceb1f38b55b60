package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

var configEnvVars = []string{
	"LLM_PROVIDER", "LLM_MODEL_ID", "LLM_API_KEY", "LLM_BASE_URL",
	"LLM_TEMPERATURE", "LLM_MAX_TOKENS", "LLM_TIMEOUT",
	"LOG_LEVEL", "MAX_HISTORY",
	"TAVILY_API_KEY", "SEARCH_API_KEY", "SEARCH_API_URL",
	"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "DEEPSEEK_API_KEY",
	"DASHSCOPE_API_KEY", "MOONSHOT_API_KEY", "KIMI_API_KEY",
	"ZHIPU_API_KEY", "GLM_API_KEY", "OLLAMA_HOST",
}

// clearEnv blanks every variable FromEnv reads so host machines with real
// keys cannot leak into the assertions. t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvVars {
		t.Setenv(key, "")
	}
}

// unsetEnv removes a variable entirely (t.Setenv alone leaves an empty value
// in the environment, which would block dotenv loading).
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	_ = os.Unsetenv(key)
}

// ---- FromEnv ----

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_API_KEY", "sk-test")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Empty(t, cfg.BaseURL)
	assert.InDelta(t, 0.7, cfg.Temperature, 1e-9)
	assert.Equal(t, int64(0), cfg.MaxTokens)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 100, cfg.MaxHistory)
}

func TestFromEnv_AnthropicKeyShape(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_API_KEY", "sk-ant-abc123")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "claude-3-5-sonnet-20241022", cfg.Model)
	assert.Equal(t, "sk-ant-abc123", cfg.APIKey)
}

func TestFromEnv_ExplicitProviderWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "deepseek")
	t.Setenv("LLM_API_KEY", "sk-ant-REDACTED")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ProviderDeepSeek, cfg.Provider)
	assert.Equal(t, "deepseek-chat", cfg.Model)
	assert.Equal(t, "https://api.deepseek.com", cfg.BaseURL)
}

func TestFromEnv_OllamaBaseURLNeedsNoKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_BASE_URL", "http://localhost:11434/v1")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ProviderOllama, cfg.Provider)
	assert.Equal(t, "llama3.2", cfg.Model)
	assert.Equal(t, "ollama", cfg.APIKey, "placeholder key for local backends")
}

func TestFromEnv_ProviderSpecificKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-from-provider-var")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "sk-ant-from-provider-var", cfg.APIKey)
}

func TestFromEnv_MissingKeyFails(t *testing.T) {
	clearEnv(t)

	_, err := FromEnv()
	require.Error(t, err)

	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "APIKey", missing.Field)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("LLM_MODEL_ID", "gpt-4o")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("LLM_MAX_TOKENS", "1000")
	t.Setenv("LLM_TIMEOUT", "5")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MAX_HISTORY", "10")
	t.Setenv("TAVILY_API_KEY", "tvly-test")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.InDelta(t, 0.2, cfg.Temperature, 1e-9)
	assert.Equal(t, int64(1000), cfg.MaxTokens)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10, cfg.MaxHistory)
	assert.Equal(t, "tvly-test", cfg.SearchAPIKey)
}

func TestFromEnv_DotEnvFile(t *testing.T) {
	clearEnv(t)
	unsetEnv(t, "LLM_API_KEY")
	unsetEnv(t, "LLM_MODEL_ID")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("LLM_API_KEY=sk-from-file\nLLM_MODEL_ID=gpt-4o\n"), 0o600))

	cfg, err := FromEnv(func(o *Options) { o.EnvFiles = []string{envFile} })
	require.NoError(t, err)

	assert.Equal(t, "sk-from-file", cfg.APIKey)
	assert.Equal(t, "gpt-4o", cfg.Model)
}

func TestFromEnv_MissingExplicitEnvFile(t *testing.T) {
	clearEnv(t)

	_, err := FromEnv(func(o *Options) {
		o.EnvFiles = []string{filepath.Join(t.TempDir(), "does-not-exist.env")}
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load env files")
}

// ---- DetectProvider ----

func TestDetectProvider(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name     string
		explicit string
		apiKey   string
		baseURL  string
		want     string
	}{
		{"explicit wins", "Anthropic", "sk-plain", "https://api.deepseek.com", ProviderAnthropic},
		{"anthropic key shape", "", "sk-ant-xyz", "", ProviderAnthropic},
		{"ollama placeholder key", "", "ollama", "", ProviderOllama},
		{"deepseek url", "", "sk-x", "https://api.deepseek.com/v1", ProviderDeepSeek},
		{"dashscope url", "", "sk-x", "https://dashscope.aliyuncs.com/compatible-mode/v1", ProviderQwen},
		{"moonshot url", "", "sk-x", "https://api.moonshot.cn/v1", ProviderKimi},
		{"bigmodel url", "", "sk-x", "https://open.bigmodel.cn/api/paas/v4", ProviderZhipu},
		{"ollama port", "", "", "http://127.0.0.1:11434/v1", ProviderOllama},
		{"vllm hint", "", "", "http://gpu-box:8000/vllm", ProviderVLLM},
		{"bare localhost", "", "", "http://localhost:9999/v1", ProviderLocal},
		{"nothing set", "", "", "", ProviderOpenAI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectProvider(tt.explicit, tt.apiKey, tt.baseURL))
		})
	}
}

func TestDetectProvider_ProviderEnvProbe(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEEPSEEK_API_KEY", "sk-deep")

	assert.Equal(t, ProviderDeepSeek, DetectProvider("", "", ""))
}

// ---- defaults ----

func TestDefaultBaseURL_HostedSDKsUseTheirOwn(t *testing.T) {
	assert.Empty(t, DefaultBaseURL(ProviderOpenAI))
	assert.Empty(t, DefaultBaseURL(ProviderAnthropic))
	assert.Equal(t, "http://localhost:11434/v1", DefaultBaseURL(ProviderOllama))
}
