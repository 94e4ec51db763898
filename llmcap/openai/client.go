// Package openai adapts openai/openai-go/v3 to this repo's llmcap and
// indexing embedding capability interfaces, grounded in the teacher
// corpus's ai/go.mod dependency on the same SDK (the teacher's own
// providers package is empty scaffolding; this is a from-scratch adapter
// in its idiom: thin wrapper struct, Config.validate(), narrow capability
// methods).
package openai

import (
	"context"
	"fmt"

	"github.com/kestrelai/ragpipe/llmcap"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Config configures the OpenAI-backed capability adapters.
type Config struct {
	APIKey         string
	ChatModel      string
	EmbeddingModel string
	Dimensions     int
}

func (c *Config) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("openai: Config.APIKey is required")
	}
	if c.ChatModel == "" {
		c.ChatModel = openai.ChatModelGPT4o
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = "text-embedding-3-small"
	}
	if c.Dimensions == 0 {
		c.Dimensions = 1536
	}
	return nil
}

// Client adapts the OpenAI SDK to SimplePrompt, ChatCompletion, and
// indexing.Embedder.
type Client struct {
	cfg Config
	sdk openai.Client
}

// New validates cfg and builds a Client.
func New(cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Client{cfg: cfg, sdk: openai.NewClient(option.WithAPIKey(cfg.APIKey))}, nil
}

// SimplePrompt implements indexing.SimplePromptClient and llmcap.SimplePrompt.
func (c *Client) SimplePrompt(ctx context.Context, prompt string) (string, error) {
	resp, err := c.sdk.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.cfg.ChatModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai: simple prompt failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// ChatComplete implements llmcap.ChatCompletion.
func (c *Client) ChatComplete(ctx context.Context, history []llmcap.ChatMessage) (string, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, m := range history {
		if m.Role == "assistant" {
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		} else {
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	resp, err := c.sdk.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.cfg.ChatModel,
		Messages: msgs,
	})
	if err != nil {
		return "", fmt.Errorf("openai: chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// Dimensions implements indexing.Embedder.
func (c *Client) Dimensions() int { return c.cfg.Dimensions }

// Embed implements indexing.Embedder.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.sdk.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: c.cfg.EmbeddingModel,
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	})
	if err != nil {
		return nil, fmt.Errorf("openai: embed failed: %w", err)
	}
	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		out[i] = vec
	}
	return out, nil
}
