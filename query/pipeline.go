package query

import (
	"context"
	"fmt"
	"time"

	"github.com/kestrelai/ragpipe/search"
	"golang.org/x/sync/errgroup"
)

// Config is the query pipeline's configuration, mirroring the teacher's
// PipelineConfig.validate() idiom: required fields are validated once at
// construction, optional stages default to no-ops.
type Config[S any] struct {
	QueryTransformers    []Transformer
	Strategy             S
	Retriever            search.Retriever[S]
	ResponseTransformers []ResponseTransformer
	Answerer             Answerer
	Concurrency          int
}

func (c *Config[S]) validate() error {
	if c.Retriever == nil {
		return fmt.Errorf("query: Config.Retriever is required")
	}
	if c.Answerer == nil {
		return fmt.Errorf("query: Config.Answerer is required")
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 10
	}
	return nil
}

// Pipeline is the query pipeline's mirror of the indexing Builder: fixed
// shape (transform* -> retrieve -> transform-response* -> answer),
// parameterized over the search strategy type the wired Retriever
// understands.
type Pipeline[S any] struct {
	cfg Config[S]
}

// New validates cfg and returns a runnable pipeline.
func New[S any](cfg Config[S]) (*Pipeline[S], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Pipeline[S]{cfg: cfg}, nil
}

// Run executes the five-stage pipeline for one query text and returns the
// terminal Answered query.
func (p *Pipeline[S]) Run(ctx context.Context, text string) (*Query[Answered], error) {
	pending := New(text)

	for _, t := range p.cfg.QueryTransformers {
		next, err := ThenTransformQuery(ctx, pending, t)
		if err != nil {
			return nil, fmt.Errorf("query: transform stage failed: %w", err)
		}
		pending = next
	}

	retrieved, err := ThenRetrieve(ctx, pending, p.cfg.Strategy, p.cfg.Retriever)
	if err != nil {
		return nil, fmt.Errorf("query: retrieve stage failed: %w", err)
	}

	for _, t := range p.cfg.ResponseTransformers {
		next, err := ThenTransformResponse(ctx, retrieved, t)
		if err != nil {
			return nil, fmt.Errorf("query: response-transform stage failed: %w", err)
		}
		retrieved = next
	}

	answered, err := ThenAnswer(ctx, retrieved, p.cfg.Answerer)
	if err != nil {
		return nil, fmt.Errorf("query: answer stage failed: %w", err)
	}
	return answered, nil
}

// RunAll runs texts concurrently, bounded by the pipeline's configured
// concurrency, and returns results in input order — the spec's query_all
// contract. Grounded in the teacher's errgroup.SetLimit fan-out
// (ai/rag/pipeline.go retrieveByQueries, flow/batch.go runN).
func (p *Pipeline[S]) RunAll(ctx context.Context, texts []string) ([]*Query[Answered], error) {
	results := make([]*Query[Answered], len(texts))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(p.cfg.Concurrency)

	for i, text := range texts {
		i, text := i, text
		group.Go(func() error {
			q, err := p.Run(gctx, text)
			if err != nil {
				return err
			}
			results[i] = q
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunTimed is Run with the elapsed wall-clock time, for callers that want
// to report it alongside the indexing builder's Run(ctx) (count, elapsed,
// err) shape.
func (p *Pipeline[S]) RunTimed(ctx context.Context, text string) (*Query[Answered], time.Duration, error) {
	start := time.Now()
	q, err := p.Run(ctx, text)
	return q, time.Since(start), err
}
