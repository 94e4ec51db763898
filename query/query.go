// Package query implements the query pipeline's typed state machine and
// fluent builder, the mirror of the indexing pipeline. Grounded in the
// teacher corpus's ai/rag/pipeline.go (five-stage Execute) and
// ai/rag/query.go (Query value type), generalized to the spec's
// Pending/Retrieved/Answered state machine and history log.
//
// Go methods cannot be declared for one instantiation of a generic
// receiver type, so the state transitions are free functions
// (ThenTransformQuery, ThenRetrieve, ThenTransformResponse, ThenAnswer)
// rather than methods, and Pipeline[S] in pipeline.go is parameterized
// over the search strategy type, not the query state. The Query *data*
// type below does use a phantom type parameter, since those functions
// take/return a specific instantiation and the compiler rejects calling
// ThenAnswer on a Query[Pending].
package query

import (
	"github.com/kestrelai/ragpipe/search"
)

// State is the marker type parameter for Query; its possible
// instantiations are Pending, Retrieved and Answered below.
type State interface {
	state()
}

// Pending carries no extra payload.
type Pending struct{}

func (Pending) state() {}

// Retrieved carries the documents a retriever produced.
type Retrieved struct {
	Documents []search.Document
}

func (Retrieved) state() {}

// Answered carries the final answer text.
type Answered struct {
	Answer string
}

func (Answered) state() {}

// Query is the retrieval unit carried through the pipeline: three strings,
// optional embeddings, an append-only history log, and a typed state.
type Query[S State] struct {
	Original        string
	Current         string
	Embedding       []float32
	SparseEmbedding search.SparseVector
	HasEmbedding    bool
	HasSparse       bool
	History         []TransformationEvent
	State           S
}

// New starts a Pending query from raw text.
func New(text string) *Query[Pending] {
	return &Query[Pending]{Original: text, Current: text}
}

// Text returns the current (possibly rewritten) query text. Query itself
// does not satisfy search.Querier; AsQuerier wraps it for that.
func (q *Query[S]) Text() string { return q.Current }

// embeddingTuple returns the dense embedding and whether one was set.
func (q *Query[S]) embeddingTuple() ([]float32, bool) { return q.Embedding, q.HasEmbedding }

// SetEmbedding records the dense embedding produced by an embedding
// query-transformer.
func (q *Query[S]) SetEmbedding(v []float32) {
	q.Embedding = v
	q.HasEmbedding = true
}

// SetSparseEmbedding records the sparse embedding produced by an embedding
// query-transformer.
func (q *Query[S]) SetSparseEmbedding(v search.SparseVector) {
	q.SparseEmbedding = v
	q.HasSparse = true
}

// Clone returns an independent copy, mirroring the teacher's Query.Clone.
func (q *Query[S]) Clone() *Query[S] {
	c := *q
	c.History = append([]TransformationEvent(nil), q.History...)
	return &c
}

// querierView adapts a *Query[S] to search.Querier without exposing the
// phantom state parameter to package search (which must not depend on
// package query to avoid an import cycle).
type querierView[S State] struct{ q *Query[S] }

func (v querierView[S]) Text() string { return v.q.Current }
func (v querierView[S]) Embedding() ([]float32, bool) {
	return v.q.embeddingTuple()
}
func (v querierView[S]) SparseEmbedding() (search.SparseVector, bool) {
	return v.q.SparseEmbedding, v.q.HasSparse
}

// AsQuerier exposes q as a search.Querier for a Retriever call.
func AsQuerier[S State](q *Query[S]) search.Querier {
	return querierView[S]{q: q}
}
