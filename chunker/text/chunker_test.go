package text

import (
	"context"
	"testing"

	"github.com/kestrelai/ragpipe/node"
)

func TestChunkerProducesOverlappingChildrenInOrder(t *testing.T) {
	c, err := New(Config{ChunkSize: 5, Overlap: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parent := node.New("doc.txt", "abcdefghij")
	parent.SetMetadata("lang", "en")

	children, err := c.Transform(context.Background(), parent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(children) == 0 {
		t.Fatal("expected at least one child")
	}

	prevOffset := -1
	for _, child := range children {
		if child.Offset <= prevOffset {
			t.Fatalf("expected monotonically increasing offsets, got %d after %d", child.Offset, prevOffset)
		}
		prevOffset = child.Offset
		if v, ok := child.GetMetadata("lang"); !ok || v != "en" {
			t.Fatalf("expected child to inherit parent metadata, got %v", v)
		}
		if child.ID() == parent.ID() {
			t.Fatalf("child must have a distinct identity from its parent")
		}
	}
}

func TestChunkerRejectsInvalidOverlap(t *testing.T) {
	if _, err := New(Config{ChunkSize: 5, Overlap: 5}); err == nil {
		t.Fatal("expected validation error when overlap >= chunk size")
	}
}
