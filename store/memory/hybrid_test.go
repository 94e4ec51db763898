package memory

import (
	"context"
	"testing"

	"github.com/kestrelai/ragpipe/node"
	"github.com/kestrelai/ragpipe/search"
)

func TestHybridFusesDenseAndSparseRankings(t *testing.T) {
	s := New("combined")

	denseOnly := node.New("a.txt", "dense only")
	denseOnly.Vectors["combined"] = []float32{1, 0}

	sparseOnly := node.New("b.txt", "sparse only")
	sparseOnly.SparseVectors["combined"] = node.SparseVector{Indices: []uint32{1, 2}, Values: []float32{1, 1}}

	both := node.New("c.txt", "both")
	both.Vectors["combined"] = []float32{1, 0}
	both.SparseVectors["combined"] = node.SparseVector{Indices: []uint32{1}, Values: []float32{2}}

	for _, n := range []*node.Node{denseOnly, sparseOnly, both} {
		if _, err := s.Store(context.Background(), n); err != nil {
			t.Fatal(err)
		}
	}

	strategy := search.NewHybridSearch("combined", "combined")
	q := fakeQuerier{
		embedding: []float32{1, 0},
		sparse:    search.SparseVector{Indices: []uint32{1, 2}, Values: []float32{1, 1}},
		hasSparse: true,
	}

	result, err := s.AsHybrid().Retrieve(context.Background(), strategy, q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Documents) == 0 {
		t.Fatal("expected fused documents, got none")
	}

	seen := make(map[string]bool, len(result.Documents))
	for _, d := range result.Documents {
		seen[d.Content] = true
	}
	for _, want := range []string{"dense only", "sparse only", "both"} {
		if !seen[want] {
			t.Fatalf("expected hybrid fusion to surface %q, got %+v", want, result.Documents)
		}
	}
}

func TestHybridRequiresAQueryEmbedding(t *testing.T) {
	s := New("combined")
	_, err := s.AsHybrid().Retrieve(context.Background(), search.NewHybridSearch("combined", "combined"), fakeQuerier{})
	if err == nil {
		t.Fatal("expected error when neither dense nor sparse query embedding is present")
	}
}
