package indexing

import (
	"context"
	"fmt"
	"time"

	"github.com/kestrelai/ragpipe/dedup"
	"github.com/kestrelai/ragpipe/node"
	"github.com/kestrelai/ragpipe/rstream"
)

const defaultBatchSize = 256

// stage is one link of the builder's chain. Each stage closes over its own
// configuration and knows how to apply itself to the upstream channel.
type stage func(ctx context.Context, in <-chan NodeResult) <-chan NodeResult

// Builder constructs an indexing pipeline fluently: start from a Loader,
// chain transformers and chunkers, end at one or more persisters, then
// Run. Mirrors the teacher corpus's Flow builder idiom, specialized to the
// fixed indexing shape this package's capability interfaces describe.
type Builder struct {
	loader      Loader
	concurrency int
	defaults    IndexingDefaults
	stages      []stage
	persisters  []Persister
	logger      rstream.ErrorLogger
	err         error
}

// New starts a builder from a loader.
func New(loader Loader) *Builder {
	return &Builder{loader: loader, concurrency: rstream.DefaultConcurrency}
}

// WithConcurrency sets the default concurrency for subsequent stages that
// do not override it.
func (b *Builder) WithConcurrency(n int) *Builder {
	if n > 0 {
		b.concurrency = n
		b.defaults.Concurrency = n
	}
	return b
}

// WithDefaultLLMClient stores c in the IndexingDefaults injected into every
// subsequent transformer implementing WithIndexingDefaults.
func (b *Builder) WithDefaultLLMClient(c SimplePromptClient) *Builder {
	b.defaults.LLMClient = c
	return b
}

// WithLogger sets the sink LogErrors (and the dedup gate's diagnostics) use.
func (b *Builder) WithLogger(l rstream.ErrorLogger) *Builder {
	b.logger = l
	return b
}

func (b *Builder) injectDefaults(t Transformer) {
	if wd, ok := t.(WithIndexingDefaults); ok {
		wd.SetIndexingDefaults(b.defaults)
	}
}

// FilterCached inserts the cache-based dedup gate, namespaced by prefix.
// Per the hash-stability invariant, callers should place this before
// ThenChunk when they want re-runs to skip re-enriching unchanged source
// bytes — the default and recommended position.
func (b *Builder) FilterCached(cache Cache, prefix string) *Builder {
	gate := dedup.NewGate(cache, prefix, b.logger)
	b.stages = append(b.stages, func(ctx context.Context, in <-chan NodeResult) <-chan NodeResult {
		return gate.Filter(ctx, in)
	})
	return b
}

// Then appends a single-item transformer. Its concurrency is
// t.Concurrency() if it implements ConcurrencyHint, else the pipeline
// default.
func (b *Builder) Then(t Transformer) *Builder {
	b.injectDefaults(t)
	concurrency := b.concurrency
	if h, ok := t.(ConcurrencyHint); ok && h.Concurrency() > 0 {
		concurrency = h.Concurrency()
	}
	b.stages = append(b.stages, func(ctx context.Context, in <-chan NodeResult) <-chan NodeResult {
		return rstream.MapUnordered(ctx, rstream.DefaultPool(), in, concurrency, func(ctx context.Context, n *node.Node) (*node.Node, error) {
			return t.Transform(ctx, n)
		})
	})
	return b
}

// ThenInBatch appends a batched transformer. Its batch size is
// t.BatchSize() if it implements BatchSizeHint, else 256.
func (b *Builder) ThenInBatch(t BatchTransformer) *Builder {
	size := defaultBatchSize
	if h, ok := t.(BatchSizeHint); ok && h.BatchSize() > 0 {
		size = h.BatchSize()
	}
	b.stages = append(b.stages, func(ctx context.Context, in <-chan NodeResult) <-chan NodeResult {
		batches := rstream.Batch(ctx, in, size, rstream.DefaultBatchTimeout)
		out := make(chan NodeResult)
		go func() {
			defer close(out)
			for batch := range batches {
				nodes, errs := splitBatch(batch)
				for _, r := range errs {
					select {
					case out <- r:
					case <-ctx.Done():
						return
					}
				}
				for r := range t.TransformBatch(ctx, nodes) {
					select {
					case out <- r:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
		return out
	})
	return b
}

// ThenChunk appends an order-preserving chunker; children are emitted in
// source order with monotonically increasing offsets.
func (b *Builder) ThenChunk(c Chunker) *Builder {
	b.stages = append(b.stages, func(ctx context.Context, in <-chan NodeResult) <-chan NodeResult {
		return rstream.MapOrderedFlat(ctx, in, func(ctx context.Context, n *node.Node) ([]*node.Node, error) {
			return c.Transform(ctx, n)
		})
	})
	return b
}

// ThenStoreWith sets the terminal persister. May be called multiple times
// to fan the full stream out to multiple stores.
func (b *Builder) ThenStoreWith(p Persister) *Builder {
	b.persisters = append(b.persisters, p)
	return b
}

// LogNodes taps the stream, invoking fn for every successful node, passing
// every item through unchanged.
func (b *Builder) LogNodes(fn func(*node.Node)) *Builder {
	b.stages = append(b.stages, func(ctx context.Context, in <-chan NodeResult) <-chan NodeResult {
		out := make(chan NodeResult)
		go func() {
			defer close(out)
			for item := range in {
				if !item.IsErr() && fn != nil {
					fn(item.Value)
				}
				select {
				case out <- item:
				case <-ctx.Done():
					return
				}
			}
		}()
		return out
	})
	return b
}

// LogErrors taps the stream, logging each error and passing every item
// through unchanged.
func (b *Builder) LogErrors() *Builder {
	b.stages = append(b.stages, func(ctx context.Context, in <-chan NodeResult) <-chan NodeResult {
		return rstream.LogErrors(ctx, in, b.logger)
	})
	return b
}

// FilterErrors drops errored items, keeping the pipeline alive.
func (b *Builder) FilterErrors() *Builder {
	b.stages = append(b.stages, func(ctx context.Context, in <-chan NodeResult) <-chan NodeResult {
		return rstream.FilterErrors(ctx, in)
	})
	return b
}

// Run executes the pipeline to completion: it calls Setup on every
// persister exactly once (fatal on failure), fans the stream out to each
// persister, and returns the total successful node count and wall-clock
// duration. It fails on the first unrecovered error encountered after
// drain.
func (b *Builder) Run(ctx context.Context) (int, time.Duration, error) {
	if b.loader == nil {
		return 0, 0, fmt.Errorf("indexing: builder has no loader")
	}
	for _, p := range b.persisters {
		if err := p.Setup(ctx); err != nil {
			return 0, 0, fmt.Errorf("indexing: persister setup failed: %w", err)
		}
	}

	stream := b.loader.IntoStream(ctx)
	for _, s := range b.stages {
		stream = s(ctx, stream)
	}

	if len(b.persisters) == 0 {
		return rstream.Run(stream)
	}

	if len(b.persisters) == 1 {
		return b.runThroughPersister(ctx, b.persisters[0], stream)
	}

	branches := fanOut(ctx, stream, len(b.persisters))
	results := make(chan struct {
		n   int
		err error
	}, len(b.persisters))
	for i, p := range b.persisters {
		go func(p Persister, in <-chan NodeResult) {
			n, _, err := b.runThroughPersister(ctx, p, in)
			results <- struct {
				n   int
				err error
			}{n, err}
		}(p, branches[i])
	}

	start := time.Now()
	var total int
	var firstErr error
	for range b.persisters {
		r := <-results
		if total == 0 || r.n > total {
			total = r.n
		}
		if r.err != nil && firstErr == nil {
			firstErr = r.err
		}
	}
	return total, time.Since(start), firstErr
}

// runThroughPersister drains in through p.StoreBatch, batching the upstream
// results at p's preferred size (PersisterBatchSize, else defaultBatchSize)
// so StoreBatch — not a per-item Store loop — is the real write path, the
// same batching idiom ThenInBatch uses for BatchTransformer.
func (b *Builder) runThroughPersister(ctx context.Context, p Persister, in <-chan NodeResult) (int, time.Duration, error) {
	start := time.Now()

	size := defaultBatchSize
	if h, ok := p.(PersisterBatchSize); ok && h.BatchSize() > 0 {
		size = h.BatchSize()
	}

	batches := rstream.Batch(ctx, in, size, rstream.DefaultBatchTimeout)
	stored := make(chan NodeResult)
	go func() {
		defer close(stored)
		for batch := range batches {
			nodes, errs := splitBatch(batch)
			for _, r := range errs {
				select {
				case stored <- r:
				case <-ctx.Done():
					return
				}
			}
			if len(nodes) == 0 {
				continue
			}
			for r := range p.StoreBatch(ctx, nodes) {
				select {
				case stored <- r:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	count, _, err := rstream.Run(stored)
	return count, time.Since(start), err
}

func splitBatch(batch []NodeResult) ([]*node.Node, []NodeResult) {
	nodes := make([]*node.Node, 0, len(batch))
	var errs []NodeResult
	for _, r := range batch {
		if r.IsErr() {
			errs = append(errs, r)
			continue
		}
		nodes = append(nodes, r.Value)
	}
	return nodes, errs
}

func fanOut(ctx context.Context, in <-chan NodeResult, n int) []<-chan NodeResult {
	outs := make([]chan NodeResult, n)
	ros := make([]<-chan NodeResult, n)
	for i := range outs {
		outs[i] = make(chan NodeResult)
		ros[i] = outs[i]
	}
	go func() {
		defer func() {
			for _, o := range outs {
				close(o)
			}
		}()
		for item := range in {
			for _, o := range outs {
				select {
				case o <- item:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ros
}
