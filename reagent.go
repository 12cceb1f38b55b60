// Package reagent provides a high-level façade over the agent execution core
// (agents, model clients, tools, sessions & logging) enabling rapid
// construction of LLM reasoning programs. Most applications interact with
// this package by:
//  1. Building a model client via NewClientFromEnv() (provider auto-detection)
//  2. Building a tool registry via NewDefaultRegistry() (calculator, web search)
//  3. Constructing an agent from the agent package and calling Run
//
// The façade only wires configuration to concrete components; everything it
// returns is from the public sub-packages, so applications can drop down a
// level whenever the defaults stop fitting. All defaults are safe for local
// development and testing.
package reagent

import (
	"github.com/hupe1980/reagent/config"
	"github.com/hupe1980/reagent/logging"
	"github.com/hupe1980/reagent/model"
	"github.com/hupe1980/reagent/model/anthropic"
	"github.com/hupe1980/reagent/model/openai"
	"github.com/hupe1980/reagent/tool"
)

// Version of the reagent module.
const Version = "0.1.0"

// NewClient builds a model client for the configured provider. Anthropic
// gets the native Messages adapter; every other provider speaks the OpenAI
// chat API, differing only in base URL, key and model.
func NewClient(cfg *config.Config) (model.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Provider == config.ProviderAnthropic {
		return anthropic.New(func(o *anthropic.Options) {
			o.APIKey = cfg.APIKey
			o.Model = cfg.Model
			o.Temperature = cfg.Temperature
			if cfg.MaxTokens > 0 {
				o.MaxTokens = cfg.MaxTokens
			}
		}), nil
	}

	return openai.New(func(o *openai.Options) {
		o.APIKey = cfg.APIKey
		o.BaseURL = cfg.BaseURL
		o.Model = cfg.Model
		o.Temperature = cfg.Temperature
		if cfg.MaxTokens > 0 {
			o.MaxTokens = cfg.MaxTokens
		}
	}), nil
}

// NewClientFromEnv reads the environment (and an optional .env file) and
// builds the matching client.
func NewClientFromEnv() (model.Client, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	return NewClient(cfg)
}

// NewDefaultRegistry builds a registry with the builtin tools: the
// calculator always, web search when a search API key is configured.
func NewDefaultRegistry(cfg *config.Config, optFns ...func(o *tool.RegistryOptions)) (*tool.Registry, error) {
	registry := tool.NewRegistry(optFns...)

	if err := registry.Register(tool.NewCalculator()); err != nil {
		return nil, err
	}

	if cfg != nil && cfg.SearchAPIKey != "" {
		search := tool.NewWebSearch(cfg.SearchAPIKey, func(o *tool.WebSearchOptions) {
			if cfg.SearchAPIURL != "" {
				o.Endpoint = cfg.SearchAPIURL
			}
		})
		if err := registry.Register(search); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// NewLogger builds a structured logger honoring the configured level. Format
// is JSON; use the logging package directly for text output or custom
// handlers.
func NewLogger(cfg *config.Config) logging.Logger {
	level := logging.LogLevelInfo
	if cfg != nil {
		level = logging.ParseLogLevel(cfg.LogLevel)
	}
	return logging.NewSlogLogger(level, "json", false)
}
