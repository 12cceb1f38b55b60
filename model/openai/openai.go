// Package openai adapts the OpenAI Chat Completions API to the model.Client
// interface. Setting a custom base URL makes the adapter work against any
// OpenAI-compatible backend (DeepSeek, Ollama, vLLM, Qwen, Kimi, Zhipu).
package openai

import (
	"context"
	"errors"

	"github.com/hupe1980/reagent/core"
	"github.com/hupe1980/reagent/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Options configure the OpenAI client adapter. Fields mirror a subset of Chat
// Completion parameters intentionally kept minimal; extend via functional
// options without breaking callers.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	APIKey      string
	BaseURL     string
}

// Client wraps the OpenAI Chat Completions API behind the model.Client interface.
type Client struct {
	client *openai.Client
	opts   Options
}

// New creates a new OpenAI client using the official SDK. API key and base
// URL fall back to the SDK's environment handling when unset.
func New(optFns ...func(o *Options)) *Client {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	client := openai.NewClient(clientOpts...)
	return &Client{client: &client, opts: opts}
}

// NewFromClient creates an adapter from an existing SDK client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Client {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       openai.ChatModelGPT4oMini,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// Complete implements model.Client via a single non-streaming chat completion.
func (c *Client) Complete(ctx context.Context, messages []core.Message, optFns ...func(o *model.Options)) (string, error) {
	callOpts := model.Options{Model: c.opts.Model, Temperature: c.opts.Temperature, MaxTokens: c.opts.MaxTokens}
	for _, fn := range optFns {
		fn(&callOpts)
	}

	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(messages),
		Model:               callOpts.Model,
		Temperature:         openai.Float(callOpts.Temperature),
		MaxCompletionTokens: openai.Int(callOpts.MaxTokens),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", model.NewFatalError("openai", "no choices returned", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

// Info returns metadata describing this OpenAI client.
func (c *Client) Info() model.Info {
	return model.Info{Name: c.opts.Model, Provider: "openai"}
}

// buildMessages converts conversation messages into OpenAI chat messages.
// Tool results become user turns carrying an observation label; the engine's
// tool protocol is textual, not the provider's native function calling.
func buildMessages(messages []core.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case core.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case core.RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		case core.RoleTool:
			out = append(out, openai.UserMessage(model.ObservationPrefix+msg.Content))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return model.ClassifyStatus("openai", apiErr.StatusCode, err)
	}
	if errors.Is(err, context.Canceled) {
		return model.NewFatalError("openai", "request cancelled", err)
	}
	// Network level failures (DNS, reset connections, deadlines) are worth a retry.
	return model.NewTransientError("openai", err.Error(), err)
}
