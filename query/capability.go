package query

import (
	"context"

	"github.com/kestrelai/ragpipe/search"
)

// Transformer mutates a Pending query: it may rewrite Current, append to
// History, and/or set Embedding/SparseEmbedding. Subquestion generators
// typically replace Current with a newline-separated enumeration;
// embedders populate Embedding.
type Transformer interface {
	Transform(ctx context.Context, q *Query[Pending]) (*Query[Pending], error)
}

// ResponseTransformer rewrites the retrieved document set: summarize,
// rerank, deduplicate.
type ResponseTransformer interface {
	Transform(ctx context.Context, q *Query[Retrieved]) (*Query[Retrieved], error)
}

// Answerer produces the final answer, typically by calling an LLM with the
// retrieved documents as context.
type Answerer interface {
	Answer(ctx context.Context, q *Query[Retrieved]) (string, error)
}

// ThenTransformQuery runs t over q, appending a Transformed history event
// when Current changed.
func ThenTransformQuery(ctx context.Context, q *Query[Pending], t Transformer) (*Query[Pending], error) {
	before := q.Current
	out, err := t.Transform(ctx, q)
	if err != nil {
		return nil, err
	}
	if out.Current != before {
		out.History = append(out.History, transformed(before, out.Current))
	}
	return out, nil
}

// ThenRetrieve consumes q.Embedding (and SparseEmbedding if strategy
// demands it) via retriever, returning a Query[Retrieved]. The transition
// from Pending to Retrieved is enforced by the parameter/return types:
// calling this with anything but a Query[Pending] is a compile error.
func ThenRetrieve[S any](ctx context.Context, q *Query[Pending], strategy S, retriever search.Retriever[S]) (*Query[Retrieved], error) {
	result, err := retriever.Retrieve(ctx, strategy, AsQuerier(q))
	if err != nil {
		return nil, err
	}
	return &Query[Retrieved]{
		Original:        q.Original,
		Current:         q.Current,
		Embedding:       q.Embedding,
		HasEmbedding:    q.HasEmbedding,
		SparseEmbedding: q.SparseEmbedding,
		HasSparse:       q.HasSparse,
		History:         append(q.History, retrieved(len(result.Documents))),
		State:           Retrieved{Documents: result.Documents},
	}, nil
}

// ThenTransformResponse rewrites the document set in place, appending a
// Summarized event (the common case for this stage: compression/rerank).
func ThenTransformResponse(ctx context.Context, q *Query[Retrieved], t ResponseTransformer) (*Query[Retrieved], error) {
	out, err := t.Transform(ctx, q)
	if err != nil {
		return nil, err
	}
	out.History = append(out.History, summarized())
	return out, nil
}

// ThenAnswer produces the final answer, transitioning Retrieved to
// Answered. Like ThenRetrieve, the type signature rejects answering a
// query that was never retrieved.
func ThenAnswer(ctx context.Context, q *Query[Retrieved], a Answerer) (*Query[Answered], error) {
	answer, err := a.Answer(ctx, q)
	if err != nil {
		return nil, err
	}
	return &Query[Answered]{
		Original:        q.Original,
		Current:         q.Current,
		Embedding:       q.Embedding,
		HasEmbedding:    q.HasEmbedding,
		SparseEmbedding: q.SparseEmbedding,
		HasSparse:       q.HasSparse,
		History:         append(q.History, answered()),
		State:           Answered{Answer: answer},
	}, nil
}
