package memory

import (
	"context"
	"testing"

	"github.com/kestrelai/ragpipe/node"
	"github.com/kestrelai/ragpipe/search"
	"github.com/kestrelai/ragpipe/search/filter"
)

type fakeQuerier struct {
	embedding []float32
	sparse    search.SparseVector
	hasSparse bool
}

func (f fakeQuerier) Text() string                { return "q" }
func (f fakeQuerier) Embedding() ([]float32, bool) { return f.embedding, f.embedding != nil }
func (f fakeQuerier) SparseEmbedding() (search.SparseVector, bool) { return f.sparse, f.hasSparse }

func TestStoreRetrievesBySimilarity(t *testing.T) {
	s := New("combined")

	near := node.New("a.txt", "near")
	near.Vectors["combined"] = []float32{1, 0}
	far := node.New("b.txt", "far")
	far.Vectors["combined"] = []float32{0, 1}

	if _, err := s.Store(context.Background(), near); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Store(context.Background(), far); err != nil {
		t.Fatal(err)
	}

	strategy := search.NewSimilaritySingleEmbedding[filter.Expr](nil)
	result, err := s.Retrieve(context.Background(), strategy, fakeQuerier{embedding: []float32{1, 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Documents) != 2 {
		t.Fatalf("expected both documents returned, got %d", len(result.Documents))
	}
	if result.Documents[0].Content != "near" {
		t.Fatalf("expected nearest vector first, got %q", result.Documents[0].Content)
	}
}

func TestStoreRetrieveAppliesFilter(t *testing.T) {
	s := New("combined")

	blog := node.New("a.txt", "blog post")
	blog.SetMetadata("category", "blog")
	blog.Vectors["combined"] = []float32{1, 0}

	news := node.New("b.txt", "news post")
	news.SetMetadata("category", "news")
	news.Vectors["combined"] = []float32{1, 0}

	s.Store(context.Background(), blog)
	s.Store(context.Background(), news)

	expr, err := filter.New().EQ("category", "blog").Build()
	if err != nil {
		t.Fatal(err)
	}
	strategy := search.NewSimilaritySingleEmbedding(expr)
	result, err := s.Retrieve(context.Background(), strategy, fakeQuerier{embedding: []float32{1, 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Documents) != 1 || result.Documents[0].Content != "blog post" {
		t.Fatalf("expected filter to narrow to the blog document, got %+v", result.Documents)
	}
}

func TestGateDedupViaStoreCache(t *testing.T) {
	s := New("combined")
	n := node.New("a.txt", "content")
	fp := node.NewFingerprint("p", n)

	seen, _ := s.Get(context.Background(), fp)
	if seen {
		t.Fatal("expected fingerprint to be unseen initially")
	}
	_ = s.Set(context.Background(), fp)
	seen, _ = s.Get(context.Background(), fp)
	if !seen {
		t.Fatal("expected fingerprint to be seen after Set")
	}
}
