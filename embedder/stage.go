// Package embedder implements the embedding stage, the indexing pipeline's
// canonical batch transformer. Grounded in the teacher corpus's token-budget
// batching (ai/media/document/batcher_token_count.go) and batching-strategy
// contract (ai/commons/embedding/batching_strategy.go), generalized from
// Document batching to Node's EmbedMode/EmbeddedField model.
package embedder

import (
	"context"
	"fmt"

	"github.com/kestrelai/ragpipe/indexing"
	"github.com/kestrelai/ragpipe/node"
	"github.com/kestrelai/ragpipe/rstream"
)

// TokenEstimator approximates the token count of a string; estimation is
// approximate by design (the spec's own carve-out), delegated to whatever
// tokenizer capability the caller wires in (e.g. tiktoken-go).
type TokenEstimator interface {
	EstimateTokens(text string) int
}

// Config configures the embedding stage.
type Config struct {
	// Dense is called once per field with the full batch of strings for
	// that field; required.
	Dense indexing.Embedder
	// Sparse, if set, is called the same way for sparse vectors.
	Sparse indexing.SparseEmbedder
	// Fields lists the EmbeddedFields PerField/Both modes submit.
	Fields []node.EmbeddedField
	// MaxInputTokens drops a node's embedding input when it exceeds this
	// many estimated tokens, logging a warning instead of failing the
	// batch. Zero disables the check.
	MaxInputTokens int
	Estimator      TokenEstimator
	Logger         rstream.ErrorLogger
	BatchSizeVal   int
}

// Stage is the BatchTransformer implementing the embedding contract.
type Stage struct {
	cfg Config
}

// New builds an embedding stage. Panics if cfg.Dense is nil, mirroring the
// teacher's constructor-time validation idiom (config.Validate()).
func New(cfg Config) *Stage {
	if cfg.Dense == nil {
		panic("embedder: Config.Dense is required")
	}
	return &Stage{cfg: cfg}
}

// BatchSize implements indexing.BatchSizeHint.
func (s *Stage) BatchSize() int {
	return s.cfg.BatchSizeVal
}

// TransformBatch implements indexing.BatchTransformer. A node that fails
// on any field is left out of the trailing success loop, so no node is
// emitted both as an Err and as a success. A failed Embed or EmbedSparse
// call, or a vector count that does not match the input count, emits one
// Err covering every node of that field; a vector of the wrong width
// emits one Err for its node.
func (s *Stage) TransformBatch(ctx context.Context, batch []*node.Node) <-chan indexing.NodeResult {
	out := make(chan indexing.NodeResult)

	go func() {
		defer close(out)

		kept, dropped := s.applyTokenBudget(batch)
		for _, n := range dropped {
			s.warn(fmt.Errorf("embedder: dropping node %x, embedding input exceeds token budget", n.ID()))
		}
		if len(kept) == 0 {
			return
		}

		fieldTargets := make(map[string][]string) // field key -> texts, index-aligned with kept
		fieldOf := make(map[string]node.EmbeddedField)
		order := make([]string, 0)

		for _, n := range kept {
			for _, ft := range n.EmbeddingTargets(s.cfg.Fields) {
				key := ft.Field.String()
				if _, ok := fieldOf[key]; !ok {
					fieldOf[key] = ft.Field
					order = append(order, key)
				}
				fieldTargets[key] = append(fieldTargets[key], ft.Text)
			}
		}

		// Track, per field, which kept-index each accumulated text belongs to.
		fieldNodeIdx := make(map[string][]int)
		for i, n := range kept {
			for _, ft := range n.EmbeddingTargets(s.cfg.Fields) {
				key := ft.Field.String()
				fieldNodeIdx[key] = append(fieldNodeIdx[key], i)
			}
		}

		failed := make(map[int]bool)
		emit := func(r indexing.NodeResult) {
			select {
			case out <- r:
			case <-ctx.Done():
			}
		}

		for _, key := range order {
			texts := fieldTargets[key]
			vectors, err := s.cfg.Dense.Embed(ctx, texts)
			if err != nil {
				emit(rstream.Err[*node.Node](fmt.Errorf("embedder: dense embed failed for field %s: %w", key, err)))
				for _, nodeIdx := range fieldNodeIdx[key] {
					failed[nodeIdx] = true
				}
				continue
			}
			if len(vectors) != len(texts) {
				emit(rstream.Err[*node.Node](fmt.Errorf("embedder: embedder returned %d vectors for %d inputs on field %s", len(vectors), len(texts), key)))
				for _, nodeIdx := range fieldNodeIdx[key] {
					failed[nodeIdx] = true
				}
				continue
			}
			dim := s.cfg.Dense.Dimensions()
			for i, v := range vectors {
				nodeIdx := fieldNodeIdx[key][i]
				if dim > 0 && len(v) != dim {
					emit(rstream.Err[*node.Node](fmt.Errorf("embedder: field %s vector length %d does not match configured dimension %d", key, len(v), dim)))
					failed[nodeIdx] = true
					continue
				}
				kept[nodeIdx].Vectors[key] = v
			}

			if s.cfg.Sparse != nil {
				sparse, err := s.cfg.Sparse.EmbedSparse(ctx, texts)
				if err != nil {
					emit(rstream.Err[*node.Node](fmt.Errorf("embedder: sparse embed failed for field %s: %w", key, err)))
					for _, nodeIdx := range fieldNodeIdx[key] {
						failed[nodeIdx] = true
					}
					continue
				}
				if len(sparse) != len(texts) {
					emit(rstream.Err[*node.Node](fmt.Errorf("embedder: sparse embedder returned %d vectors for %d inputs", len(sparse), len(texts))))
					for _, nodeIdx := range fieldNodeIdx[key] {
						failed[nodeIdx] = true
					}
					continue
				}
				for i, sv := range sparse {
					nodeIdx := fieldNodeIdx[key][i]
					kept[nodeIdx].SparseVectors[key] = sv
				}
			}
		}

		for i, n := range kept {
			if failed[i] {
				continue
			}
			emit(rstream.Ok(n))
		}
	}()

	return out
}

func (s *Stage) applyTokenBudget(batch []*node.Node) (kept, dropped []*node.Node) {
	if s.cfg.MaxInputTokens <= 0 || s.cfg.Estimator == nil {
		return batch, nil
	}
	kept = make([]*node.Node, 0, len(batch))
	for _, n := range batch {
		over := false
		for _, ft := range n.EmbeddingTargets(s.cfg.Fields) {
			if s.cfg.Estimator.EstimateTokens(ft.Text) > s.cfg.MaxInputTokens {
				over = true
				break
			}
		}
		if over {
			dropped = append(dropped, n)
			continue
		}
		kept = append(kept, n)
	}
	return kept, dropped
}

func (s *Stage) warn(err error) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.LogStreamError(err)
	}
}
