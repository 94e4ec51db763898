// Package token implements a token-budget-aware Chunker, adapted from the
// teacher corpus's token-budget batching idiom
// (ai/media/document/batcher_token_count.go) applied as a splitting
// boundary instead of a batch boundary: each child's estimated token count
// is at most MaxTokens, except that a single word over the budget becomes
// a child of its own.
package token

import (
	"context"
	"fmt"
	"strings"

	"github.com/kestrelai/ragpipe/node"
	"github.com/pkoukk/tiktoken-go"
)

// Config configures the chunker.
type Config struct {
	// MaxTokens bounds each child's estimated token count.
	MaxTokens int
	// Encoding names the tiktoken encoding to estimate with (e.g.
	// "cl100k_base"); defaults to "cl100k_base" when empty.
	Encoding string
}

func (c *Config) validate() error {
	if c.MaxTokens <= 0 {
		return fmt.Errorf("token: Config.MaxTokens is required")
	}
	if c.Encoding == "" {
		c.Encoding = "cl100k_base"
	}
	return nil
}

// Chunker splits a node's chunk on whitespace boundaries, packing words
// into children that stay within the configured token budget.
type Chunker struct {
	cfg codec
}

type codec struct {
	cfg Config
	enc *tiktoken.Tiktoken
}

// New builds a Chunker.
func New(cfg Config) (*Chunker, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	enc, err := tiktoken.GetEncoding(cfg.Encoding)
	if err != nil {
		return nil, fmt.Errorf("token: failed to load encoding %s: %w", cfg.Encoding, err)
	}
	return &Chunker{cfg: codec{cfg: cfg, enc: enc}}, nil
}

// Transform implements indexing.Chunker.
func (c *Chunker) Transform(_ context.Context, n *node.Node) ([]*node.Node, error) {
	words := strings.Fields(n.Chunk)
	if len(words) == 0 {
		return nil, nil
	}

	var children []*node.Node
	var current strings.Builder
	offset := 0
	chunkStart := 0

	flush := func() {
		if current.Len() == 0 {
			return
		}
		children = append(children, n.WithChunk(current.String(), chunkStart))
		current.Reset()
	}

	for _, w := range words {
		candidate := current.String()
		if candidate != "" {
			candidate += " "
		}
		candidate += w

		if current.Len() > 0 && len(c.cfg.enc.Encode(candidate, nil, nil)) > c.cfg.cfg.MaxTokens {
			flush()
			chunkStart = offset
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(w)
		offset += len(w) + 1
	}
	flush()

	return children, nil
}
