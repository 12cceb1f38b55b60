// Package anthropic adapts the Anthropic Messages API to the model.Client interface.
package anthropic

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/hupe1980/reagent/core"
	"github.com/hupe1980/reagent/model"
)

// Options configure the Anthropic client adapter (model id, temperature,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Client wraps the Anthropic Messages API behind the model.Client interface.
type Client struct {
	client *anthropic.Client
	opts   Options
}

// New creates a new Anthropic client using the official SDK. The API key
// falls back to the SDK's environment handling when unset.
func New(optFns ...func(o *Options)) *Client {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)
	return &Client{client: &client, opts: opts}
}

// NewFromClient creates an adapter from an existing SDK client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Client {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       string(anthropic.ModelClaude3_5Sonnet20241022),
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// Complete implements model.Client via a single non-streaming message call.
func (c *Client) Complete(ctx context.Context, messages []core.Message, optFns ...func(o *model.Options)) (string, error) {
	callOpts := model.Options{Model: c.opts.Model, Temperature: c.opts.Temperature, MaxTokens: c.opts.MaxTokens}
	for _, fn := range optFns {
		fn(&callOpts)
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(callOpts.Model),
		MaxTokens:   callOpts.MaxTokens,
		Temperature: anthropic.Float(callOpts.Temperature),
		Messages:    buildMessages(messages),
	}
	if system := collectSystem(messages); len(system) > 0 {
		params.System = system
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", classify(err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	return sb.String(), nil
}

// Info returns metadata describing this Anthropic client.
func (c *Client) Info() model.Info {
	return model.Info{Name: c.opts.Model, Provider: "anthropic"}
}

// collectSystem gathers system-role messages into Anthropic system blocks;
// the Messages API carries them outside the turn list.
func collectSystem(messages []core.Message) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	for _, msg := range messages {
		if msg.Role == core.RoleSystem && msg.Content != "" {
			blocks = append(blocks, anthropic.TextBlockParam{Text: msg.Content})
		}
	}
	return blocks
}

// buildMessages converts non-system conversation messages into Anthropic
// turns. Tool results become user turns carrying an observation label.
func buildMessages(messages []core.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case core.RoleSystem:
			continue
		case core.RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		case core.RoleTool:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(model.ObservationPrefix+msg.Content)))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return out
}

func classify(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return model.ClassifyStatus("anthropic", apiErr.StatusCode, err)
	}
	if errors.Is(err, context.Canceled) {
		return model.NewFatalError("anthropic", "request cancelled", err)
	}
	return model.NewTransientError("anthropic", err.Error(), err)
}
