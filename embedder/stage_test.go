package embedder

import (
	"context"
	"testing"

	"github.com/kestrelai/ragpipe/node"
	"github.com/kestrelai/ragpipe/rstream"
)

type fakeEmbedder struct {
	dim int
}

func (f fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, f.dim)
		v[0] = float32(len(texts[i]))
		out[i] = v
	}
	return out, nil
}

func (f fakeEmbedder) Dimensions() int { return f.dim }

type constEstimator int

func (c constEstimator) EstimateTokens(text string) int { return len(text) / 4 }

func TestStageAssignsVectorsByIndex(t *testing.T) {
	n1 := node.New("a.txt", "hello")
	n1.EmbedMode = node.SingleWithMetadata
	n2 := node.New("b.txt", "world!!")
	n2.EmbedMode = node.SingleWithMetadata

	stage := New(Config{Dense: fakeEmbedder{dim: 4}})
	out := stage.TransformBatch(context.Background(), []*node.Node{n1, n2})

	results, err := rstream.Collect(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 nodes out, got %d", len(results))
	}
	for _, r := range results {
		if _, ok := r.Vectors["combined"]; !ok {
			t.Fatalf("expected combined field vector assigned, node %+v", r)
		}
	}
}

func TestStageDropsOverBudgetNode(t *testing.T) {
	short := node.New("a.txt", "hi")
	short.EmbedMode = node.SingleWithMetadata
	long := node.New("b.txt", "this text is definitely much longer than the tiny budget allowed")
	long.EmbedMode = node.SingleWithMetadata

	stage := New(Config{
		Dense:          fakeEmbedder{dim: 2},
		MaxInputTokens: 3,
		Estimator:      constEstimator(0),
	})
	out := stage.TransformBatch(context.Background(), []*node.Node{short, long})
	results, err := rstream.Collect(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected the over-budget node to be dropped, got %d results", len(results))
	}
}

func TestStageFailsOnDimensionMismatch(t *testing.T) {
	n := node.New("a.txt", "hello")
	n.EmbedMode = node.SingleWithMetadata

	stage := New(Config{Dense: fakeEmbedder{dim: 4}})
	stage.cfg.Dense = mismatchEmbedder{}
	out := stage.TransformBatch(context.Background(), []*node.Node{n})
	_, err := rstream.Collect(out)
	if err == nil {
		t.Fatal("expected a dimension-mismatch error")
	}
}

type mismatchEmbedder struct{}

func (mismatchEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 2, 3} // wrong width vs Dimensions()
	}
	return out, nil
}
func (mismatchEmbedder) Dimensions() int { return 4 }
