package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider names the config layer can detect and default-fill. Every
// provider except anthropic speaks the OpenAI-compatible chat API and
// differs only in base URL, key and default model.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderDeepSeek  = "deepseek"
	ProviderQwen      = "qwen"
	ProviderKimi      = "kimi"
	ProviderZhipu     = "zhipu"
	ProviderOllama    = "ollama"
	ProviderVLLM      = "vllm"
	ProviderLocal     = "local"
)

// Config holds everything needed to build a model client, the builtin tools
// and the agent defaults from the environment.
//
// Environment variables:
//   - LLM_PROVIDER: provider name (auto-detected when unset)
//   - LLM_MODEL_ID: model name (per-provider default when unset)
//   - LLM_API_KEY: API key (falls back to the provider-specific variable)
//   - LLM_BASE_URL: endpoint override for OpenAI-compatible backends
//   - LLM_TEMPERATURE: sampling temperature (default 0.7)
//   - LLM_MAX_TOKENS: completion token cap (0 keeps the adapter default)
//   - LLM_TIMEOUT: request timeout in seconds (default 60)
//   - LOG_LEVEL: debug | info | warn | error (default info)
//   - MAX_HISTORY: prompt window for continuation agents (default 100)
//   - TAVILY_API_KEY / SEARCH_API_KEY: web search credential
//   - SEARCH_API_URL: web search endpoint override
//
// Provider-specific key variables (OPENAI_API_KEY, ANTHROPIC_API_KEY,
// DEEPSEEK_API_KEY, DASHSCOPE_API_KEY, MOONSHOT_API_KEY, ZHIPU_API_KEY)
// are honored both for detection and as key fallbacks.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	MaxTokens   int64
	Timeout     time.Duration
	LogLevel    string
	MaxHistory  int

	SearchAPIKey string
	SearchAPIURL string
}

// Options configure FromEnv.
type Options struct {
	// EnvFiles are dotenv files loaded before the environment is read.
	// Nil tries ".env" in the working directory, silently skipping it when
	// absent; explicitly named files must exist.
	EnvFiles []string
}

// FromEnv builds a Config from the environment, optionally loading dotenv
// files first. Already-set variables always win over dotenv contents.
func FromEnv(optFns ...func(o *Options)) (*Config, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if len(opts.EnvFiles) > 0 {
		if err := godotenv.Load(opts.EnvFiles...); err != nil {
			return nil, fmt.Errorf("load env files: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	apiKey := os.Getenv("LLM_API_KEY")
	baseURL := os.Getenv("LLM_BASE_URL")
	provider := DetectProvider(os.Getenv("LLM_PROVIDER"), apiKey, baseURL)

	if apiKey == "" {
		apiKey = providerKey(provider)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL(provider)
	}

	model := os.Getenv("LLM_MODEL_ID")
	if model == "" {
		model = DefaultModel(provider)
	}

	cfg := &Config{
		Provider:    provider,
		Model:       model,
		APIKey:      apiKey,
		BaseURL:     baseURL,
		Temperature: getEnvFloat("LLM_TEMPERATURE", 0.7),
		MaxTokens:   int64(getEnvInt("LLM_MAX_TOKENS", 0)),
		Timeout:     time.Duration(getEnvInt("LLM_TIMEOUT", 60)) * time.Second,
		LogLevel:    getEnvString("LOG_LEVEL", "info"),
		MaxHistory:  getEnvInt("MAX_HISTORY", 100),

		SearchAPIKey: getEnvString("TAVILY_API_KEY", os.Getenv("SEARCH_API_KEY")),
		SearchAPIURL: os.Getenv("SEARCH_API_URL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports whether the config can produce a working client. Local
// backends (ollama, vllm, local) accept placeholder keys, every hosted
// provider needs a real one.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return &MissingFieldError{Field: "Provider"}
	}
	if c.Model == "" {
		return &MissingFieldError{Field: "Model"}
	}
	if c.APIKey == "" && requiresAPIKey(c.Provider) {
		return &MissingFieldError{Field: "APIKey", Hint: "set LLM_API_KEY or the provider-specific variable"}
	}
	return nil
}

// MissingFieldError reports a required config field that resolved empty.
type MissingFieldError struct {
	Field string
	Hint  string
}

func (e *MissingFieldError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("config: missing %s", e.Field)
	}
	return fmt.Sprintf("config: missing %s (%s)", e.Field, e.Hint)
}

// DetectProvider resolves the provider name: an explicit setting wins, then
// the API key shape, then base URL patterns, then which provider-specific
// key variable is present; openai is the final default.
func DetectProvider(explicit, apiKey, baseURL string) string {
	if explicit != "" {
		return strings.ToLower(strings.TrimSpace(explicit))
	}

	switch {
	case strings.HasPrefix(apiKey, "sk-ant-"):
		return ProviderAnthropic
	case strings.EqualFold(apiKey, "ollama"):
		return ProviderOllama
	case strings.EqualFold(apiKey, "vllm"):
		return ProviderVLLM
	}

	if p := providerFromBaseURL(baseURL); p != "" {
		return p
	}

	// First match wins, mirroring the precedence of the key fallbacks.
	for _, probe := range []struct {
		env      string
		provider string
	}{
		{"OPENAI_API_KEY", ProviderOpenAI},
		{"ANTHROPIC_API_KEY", ProviderAnthropic},
		{"DEEPSEEK_API_KEY", ProviderDeepSeek},
		{"DASHSCOPE_API_KEY", ProviderQwen},
		{"MOONSHOT_API_KEY", ProviderKimi},
		{"ZHIPU_API_KEY", ProviderZhipu},
		{"OLLAMA_HOST", ProviderOllama},
	} {
		if os.Getenv(probe.env) != "" {
			return probe.provider
		}
	}

	return ProviderOpenAI
}

func providerFromBaseURL(baseURL string) string {
	if baseURL == "" {
		return ""
	}
	u := strings.ToLower(baseURL)

	switch {
	case strings.Contains(u, "api.openai.com"):
		return ProviderOpenAI
	case strings.Contains(u, "api.anthropic.com"):
		return ProviderAnthropic
	case strings.Contains(u, "api.deepseek.com"):
		return ProviderDeepSeek
	case strings.Contains(u, "dashscope.aliyuncs.com"):
		return ProviderQwen
	case strings.Contains(u, "api.moonshot.cn"):
		return ProviderKimi
	case strings.Contains(u, "open.bigmodel.cn"):
		return ProviderZhipu
	case strings.Contains(u, ":11434") || strings.Contains(u, "ollama"):
		return ProviderOllama
	case strings.Contains(u, "vllm"):
		return ProviderVLLM
	case strings.Contains(u, "localhost") || strings.Contains(u, "127.0.0.1"):
		return ProviderLocal
	}

	return ""
}

// DefaultModel returns the per-provider default model name.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderAnthropic:
		return "claude-3-5-sonnet-20241022"
	case ProviderDeepSeek:
		return "deepseek-chat"
	case ProviderQwen:
		return "qwen-plus"
	case ProviderKimi:
		return "moonshot-v1-8k"
	case ProviderZhipu:
		return "glm-4"
	case ProviderOllama:
		return "llama3.2"
	case ProviderVLLM:
		return "meta-llama/Llama-2-7b-chat-hf"
	case ProviderLocal:
		return "local-model"
	default:
		return "gpt-4o-mini"
	}
}

// DefaultBaseURL returns the per-provider endpoint. Empty means the SDK's
// own default (openai, anthropic).
func DefaultBaseURL(provider string) string {
	switch provider {
	case ProviderDeepSeek:
		return "https://api.deepseek.com"
	case ProviderQwen:
		return "https://dashscope.aliyuncs.com/compatible-mode/v1"
	case ProviderKimi:
		return "https://api.moonshot.cn/v1"
	case ProviderZhipu:
		return "https://open.bigmodel.cn/api/paas/v4"
	case ProviderOllama:
		return "http://localhost:11434/v1"
	case ProviderVLLM, ProviderLocal:
		return "http://localhost:8000/v1"
	default:
		return ""
	}
}

// providerKey resolves the key for a detected provider: the provider-specific
// variable, or a placeholder for local backends that ignore the credential.
func providerKey(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case ProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	case ProviderDeepSeek:
		return os.Getenv("DEEPSEEK_API_KEY")
	case ProviderQwen:
		return os.Getenv("DASHSCOPE_API_KEY")
	case ProviderKimi:
		return getEnvString("MOONSHOT_API_KEY", os.Getenv("KIMI_API_KEY"))
	case ProviderZhipu:
		return getEnvString("ZHIPU_API_KEY", os.Getenv("GLM_API_KEY"))
	case ProviderOllama, ProviderVLLM, ProviderLocal:
		return getEnvString("LLM_API_KEY", provider)
	default:
		return ""
	}
}

func requiresAPIKey(provider string) bool {
	switch provider {
	case ProviderOllama, ProviderVLLM, ProviderLocal:
		return false
	default:
		return true
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
