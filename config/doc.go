// Package config reads the runtime configuration from the environment,
// optionally seeded from dotenv files.
//
// The interesting part is provider auto-detection: given nothing but an API
// key or a base URL, DetectProvider figures out which backend the user means
// (anthropic keys start with "sk-ant-", DeepSeek lives at api.deepseek.com,
// Ollama listens on :11434, and so on) and fills in a sensible default model
// and endpoint. An explicit LLM_PROVIDER always wins.
package config
