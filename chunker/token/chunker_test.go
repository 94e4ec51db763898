package token

import (
	"context"
	"testing"

	"github.com/kestrelai/ragpipe/node"
)

func TestChunkerRespectsTokenBudget(t *testing.T) {
	c, err := New(Config{MaxTokens: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parent := node.New("doc.txt", "the quick brown fox jumps over the lazy dog repeatedly today")
	children, err := c.Transform(context.Background(), parent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(children) < 2 {
		t.Fatalf("expected the budget to force multiple children, got %d", len(children))
	}
	for _, child := range children {
		if child.Chunk == "" {
			t.Fatal("expected no empty children")
		}
	}
}
