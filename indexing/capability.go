// Package indexing defines the capability interfaces concrete loaders,
// transformers, chunkers, embedders, caches and persisters implement, and
// the fluent builder that wires them into a runnable pipeline over the
// rstream kernel.
package indexing

import (
	"context"

	"github.com/kestrelai/ragpipe/dedup"
	"github.com/kestrelai/ragpipe/node"
	"github.com/kestrelai/ragpipe/rstream"
)

// NodeResult is the stream kernel's item type specialized to Node.
type NodeResult = rstream.Result[*node.Node]

// Loader produces the initial stream of nodes for an indexing run. A Loader
// MUST populate Path, Chunk and OriginalSize on every node it emits; the
// stream it returns may be finite or infinite and has a single consumer.
type Loader interface {
	IntoStream(ctx context.Context) <-chan NodeResult
}

// Transformer mutates a node in place (metadata only) or fails it. A
// Transformer MUST NOT rename or remove existing metadata keys and MUST
// preserve the node's identity inputs (Path, Chunk).
type Transformer interface {
	Transform(ctx context.Context, n *node.Node) (*node.Node, error)
}

// ConcurrencyHint is implemented by transformers that want a non-default
// per-stage concurrency; the builder falls back to its pipeline default
// when a transformer does not implement it.
type ConcurrencyHint interface {
	Concurrency() int
}

// BatchTransformer consumes a batch of nodes and emits a stream of results
// whose length is at most the input length; it is the shape the embedding
// stage uses.
type BatchTransformer interface {
	TransformBatch(ctx context.Context, batch []*node.Node) <-chan NodeResult
}

// BatchSizeHint is implemented by batch transformers that want a
// non-default batch size (the embedder/persister is the common case).
type BatchSizeHint interface {
	BatchSize() int
}

// Chunker splits one node into N children. Each child inherits the parent's
// metadata and sets its own Chunk and Offset. The chunker stage is the
// kernel's only order-preserving stage.
type Chunker interface {
	Transform(ctx context.Context, n *node.Node) ([]*node.Node, error)
}

// Embedder computes dense embeddings for a batch of strings; output[i]
// corresponds to input[i] and the slices are the same length.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions reports the vector width this embedder produces, used to
	// validate the embedding stage's length invariant.
	Dimensions() int
}

// SparseEmbedder computes sparse embeddings for a batch of strings with the
// same length-correspondence contract as Embedder.
type SparseEmbedder interface {
	EmbedSparse(ctx context.Context, texts []string) ([]node.SparseVector, error)
}

// Cache is the dedup gate's storage contract, defined in package dedup to
// avoid an import cycle between indexing (the builder) and dedup (the
// gate the builder's FilterCached wires in). Get reports whether a
// matching fingerprint has previously been Set. Implementations MUST be
// safe under concurrent access from multiple goroutines.
type Cache = dedup.Cache

// Persister is the terminal capability of an indexing pipeline. Setup is
// called exactly once before the first Store call and must be idempotent
// across runs (e.g. "create collection if not exists").
type Persister interface {
	Setup(ctx context.Context) error
	Store(ctx context.Context, n *node.Node) (*node.Node, error)
	StoreBatch(ctx context.Context, batch []*node.Node) <-chan NodeResult
}

// PersisterBatchSize is implemented by persisters that want a non-default
// batch size for their own StoreBatch calls; the builder batches the
// stream ahead of each persister at this size. It does not change the
// batch size of ThenInBatch stages.
type PersisterBatchSize interface {
	BatchSize() int
}

// IndexingDefaults carries pipeline-level defaults injected into every
// transformer that implements WithIndexingDefaults, so a transformer that
// needs an LLM client need not take one in its own constructor.
type IndexingDefaults struct {
	LLMClient   SimplePromptClient
	Concurrency int
}

// SimplePromptClient is the minimal LLM capability metadata-enrichment
// transformers depend on (e.g. "generate a title", "generate keywords").
type SimplePromptClient interface {
	SimplePrompt(ctx context.Context, prompt string) (string, error)
}

// WithIndexingDefaults is implemented by transformers that accept injected
// pipeline defaults from the builder's with_default_llm_client /
// with_concurrency calls.
type WithIndexingDefaults interface {
	SetIndexingDefaults(d IndexingDefaults)
}
