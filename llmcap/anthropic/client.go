// Package anthropic adapts anthropics/anthropic-sdk-go to this repo's
// llmcap capability interfaces, following the same thin-wrapper idiom as
// llmcap/openai (Config.validate() then narrow capability methods) so the
// two provider adapters read as siblings.
package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/kestrelai/ragpipe/llmcap"
)

// Config configures the Anthropic-backed capability adapter.
type Config struct {
	APIKey    string
	Model     anthropic.Model
	MaxTokens int64
}

func (c *Config) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("anthropic: Config.APIKey is required")
	}
	if c.Model == "" {
		c.Model = anthropic.ModelClaude3_5HaikuLatest
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 1024
	}
	return nil
}

// Client adapts the Anthropic SDK to SimplePrompt and ChatCompletion.
type Client struct {
	cfg Config
	sdk anthropic.Client
}

// New validates cfg and builds a Client.
func New(cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Client{cfg: cfg, sdk: anthropic.NewClient(option.WithAPIKey(cfg.APIKey))}, nil
}

// SimplePrompt implements llmcap.SimplePrompt.
func (c *Client) SimplePrompt(ctx context.Context, prompt string) (string, error) {
	msg, err := c.sdk.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: simple prompt failed: %w", err)
	}
	return concatText(msg), nil
}

// ChatComplete implements llmcap.ChatCompletion.
func (c *Client) ChatComplete(ctx context.Context, history []llmcap.ChatMessage) (string, error) {
	msgs := make([]anthropic.MessageParam, 0, len(history))
	for _, m := range history {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == "assistant" {
			msgs = append(msgs, anthropic.NewAssistantMessage(block))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(block))
		}
	}
	msg, err := c.sdk.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages:  msgs,
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: chat completion failed: %w", err)
	}
	return concatText(msg), nil
}

func concatText(msg *anthropic.Message) string {
	var out string
	for _, block := range msg.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	return out
}
