package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/kestrelai/ragpipe/node"
	"github.com/kestrelai/ragpipe/search"
)

// Hybrid adapts a Store to search.Retriever[search.HybridSearch]. A
// distinct wrapper type is required because Go does not allow a single
// receiver type to declare two methods named Retrieve that differ only in
// which generic instantiation of search.Retriever they satisfy.
type Hybrid struct {
	store *Store
}

// AsHybrid exposes s for hybrid retrieval alongside its existing
// search.Retriever[search.SimilaritySingleEmbedding[filter.Expr]] method.
func (s *Store) AsHybrid() Hybrid {
	return Hybrid{store: s}
}

// Retrieve implements search.Retriever[search.HybridSearch]: it runs a
// dense cosine scan and a sparse dot-product scan independently, each
// truncated to strategy.PerQueryN, then fuses the two rankings with
// reciprocal-rank fusion.
func (h Hybrid) Retrieve(_ context.Context, strategy search.HybridSearch, q search.Querier) (search.RetrievedQuery, error) {
	embedding, hasDense := q.Embedding()
	sparse, hasSparse := q.SparseEmbedding()
	if !hasDense || !hasSparse {
		return search.RetrievedQuery{}, fmt.Errorf("memory: hybrid retrieval requires both a dense and a sparse query embedding")
	}

	perQueryN := strategy.PerQueryN
	if perQueryN <= 0 {
		perQueryN = search.DefaultTopK
	}

	h.store.mu.RLock()
	defer h.store.mu.RUnlock()

	var rankings [][]search.Document
	if hasDense {
		docs, err := h.store.denseScan(strategy.DenseField, embedding, nil, perQueryN)
		if err != nil {
			return search.RetrievedQuery{}, err
		}
		if len(docs) > 0 {
			rankings = append(rankings, docs)
		}
	}
	if hasSparse {
		docs := h.store.sparseScan(strategy.SparseField, sparse, perQueryN)
		if len(docs) > 0 {
			rankings = append(rankings, docs)
		}
	}

	topK := strategy.TopK
	if topK <= 0 {
		topK = search.DefaultTopK
	}
	return search.RetrievedQuery{Documents: search.FuseReciprocalRank(rankings, topK)}, nil
}

// sparseScan ranks every node holding a sparse vector under field by dot
// product against query, truncated to topK. Callers must hold at least a
// read lock on store.mu.
func (s *Store) sparseScan(field string, query search.SparseVector, topK int) []search.Document {
	type scored struct {
		doc   search.Document
		score float64
	}
	var candidates []scored

	for _, n := range s.nodes {
		sv, ok := n.SparseVectors[field]
		if !ok {
			continue
		}
		score := sparseDot(query, sv)
		if score == 0 {
			continue
		}
		candidates = append(candidates, scored{doc: toDocument(n), score: score})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	docs := make([]search.Document, len(candidates))
	for i, c := range candidates {
		c.doc.Score = c.score
		docs[i] = c.doc
	}
	return docs
}

// sparseDot computes the dot product of a search.SparseVector query against
// a node.SparseVector, the two sparse representations this repo carries
// (search's own, to avoid an import cycle with node; node's, on the stored
// Node itself).
func sparseDot(query search.SparseVector, doc node.SparseVector) float64 {
	weights := make(map[uint32]float32, len(query.Indices))
	for i, idx := range query.Indices {
		weights[idx] = query.Values[i]
	}
	var dot float64
	for i, idx := range doc.Indices {
		if w, ok := weights[idx]; ok {
			dot += float64(w) * float64(doc.Values[i])
		}
	}
	return dot
}
