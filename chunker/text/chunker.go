// Package text implements a fixed-size text Chunker, adapted from the
// teacher corpus's Splitter transformer
// (ai/media/document/transformer_splitter.go), generalized from
// document.Document to node.Node: children inherit parent metadata and get
// their own Chunk/Offset with the identity-recomputation node.WithChunk
// already handles.
package text

import (
	"context"
	"fmt"

	"github.com/kestrelai/ragpipe/node"
)

// Config configures the chunker.
type Config struct {
	// ChunkSize is the target chunk length in runes.
	ChunkSize int
	// Overlap is how many trailing runes of one chunk are repeated at the
	// start of the next, for context continuity across chunk boundaries.
	Overlap int
}

func (c *Config) validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("text: Config.ChunkSize is required")
	}
	if c.Overlap < 0 || c.Overlap >= c.ChunkSize {
		return fmt.Errorf("text: Config.Overlap must be in [0, ChunkSize)")
	}
	return nil
}

// Chunker splits a node's chunk into fixed-size, optionally overlapping
// children in source order.
type Chunker struct {
	cfg Config
}

// New builds a Chunker, validating cfg the way the teacher's
// SplitterConfig.validate() does.
func New(cfg Config) (*Chunker, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Chunker{cfg: cfg}, nil
}

// Transform implements indexing.Chunker.
func (c *Chunker) Transform(_ context.Context, n *node.Node) ([]*node.Node, error) {
	runes := []rune(n.Chunk)
	if len(runes) == 0 {
		return nil, nil
	}

	step := c.cfg.ChunkSize - c.cfg.Overlap
	children := make([]*node.Node, 0, len(runes)/step+1)

	for offset := 0; offset < len(runes); offset += step {
		end := offset + c.cfg.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := string(runes[offset:end])
		if chunk == "" {
			continue
		}
		children = append(children, n.WithChunk(chunk, offset))
		if end == len(runes) {
			break
		}
	}
	return children, nil
}
