// Package search defines SearchStrategy values and the generic Retriever
// contract a store implements per strategy it supports, grounded in the
// teacher corpus's ai/vectorstore/store.go (Retriever/VectorStore split)
// and ai/vectorstore/vector_store.go (RetrievalRequest).
//
// Strategies are plain values (not interfaces) so they can be compared and
// serialized; the generic Retriever[S] interface is parameterized over the
// strategy type instead, matching the spec's "strategies are values, the
// retriever is the trait" design.
package search

import (
	"context"

	"github.com/kestrelai/ragpipe/search/filter"
)

const (
	// DefaultTopK mirrors the teacher's vector store default.
	DefaultTopK = 10
)

// Document is the retrieval unit returned from a store: text content plus
// metadata, independent of the Node it may have been derived from.
type Document struct {
	Content  string
	Metadata map[string]any
	Score    float64
}

// SimilaritySingleEmbedding requires a dense query embedding and returns
// the top-K nearest documents by cosine similarity, optionally narrowed by
// a metadata Filter.
type SimilaritySingleEmbedding[F any] struct {
	TopK   int
	Filter F
}

// NewSimilaritySingleEmbedding builds the strategy with the spec's default
// TopK (10).
func NewSimilaritySingleEmbedding[F any](f F) SimilaritySingleEmbedding[F] {
	return SimilaritySingleEmbedding[F]{TopK: DefaultTopK, Filter: f}
}

// NoFilter is the zero-value Filter type for strategies that don't narrow
// by metadata.
type NoFilter struct{}

// FilterExpr is the Filter type parameter backed by package filter's AST.
type FilterExpr = filter.Expr

// HybridSearch requires both a dense and sparse query embedding and fuses
// per-sub-query results using reciprocal-rank fusion.
type HybridSearch struct {
	TopK       int
	PerQueryN  int
	DenseField string
	SparseField string
}

// NewHybridSearch builds a HybridSearch strategy with default top-K/per-
// query-N values.
func NewHybridSearch(denseField, sparseField string) HybridSearch {
	return HybridSearch{TopK: DefaultTopK, PerQueryN: DefaultTopK, DenseField: denseField, SparseField: sparseField}
}

// CustomStrategy is the generic escape hatch: a closure from the query
// text to a store-interpreted payload Q (e.g. a raw SQL string).
type CustomStrategy[Q any] struct {
	Build func(ctx context.Context, queryText string) (Q, error)
}

// RetrievedQuery is what a Retriever produces: the documents that answer
// the request.
type RetrievedQuery struct {
	Documents []Document
}

// Retriever is the capability a store implements per strategy S. Querier
// carries whatever the strategy needs from the in-flight query (embedding,
// sparse embedding, raw text) without this package depending on the query
// package, which would create an import cycle (query depends on search).
type Retriever[S any] interface {
	Retrieve(ctx context.Context, strategy S, q Querier) (RetrievedQuery, error)
}

// Querier is the minimal view of an in-flight query a retriever needs.
type Querier interface {
	Text() string
	Embedding() ([]float32, bool)
	SparseEmbedding() (SparseVector, bool)
}

// SparseVector mirrors node.SparseVector without importing package node,
// keeping search's retrieval contract independent of the indexing side's
// data model.
type SparseVector struct {
	Indices []uint32
	Values  []float32
}
