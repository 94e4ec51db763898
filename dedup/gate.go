// Package dedup implements the cache-based dedup gate: skip nodes the
// pipeline has already fully processed, because LLM calls and embeddings
// are expensive. Grounded in the teacher corpus's cache-adapter pattern
// (ai/providers/vectorstores) generalized to a namespaced fingerprint gate
// with fail-open error handling.
package dedup

import (
	"context"
	"sync"

	"github.com/kestrelai/ragpipe/node"
	"github.com/kestrelai/ragpipe/rstream"
)

// Cache is the storage contract the dedup gate wraps. Get reports whether
// a matching fingerprint has previously been Set. Implementations MUST be
// safe under concurrent access from multiple goroutines.
type Cache interface {
	Get(ctx context.Context, fp node.Fingerprint) (bool, error)
	Set(ctx context.Context, fp node.Fingerprint) error
	Clear(ctx context.Context) error
}

// Gate is the dedup filter: for each incoming node it computes the
// fingerprint, and lets exactly one of any concurrently-arriving identical
// nodes pass through. Cache errors are non-fatal — on any cache error the
// gate fails open (lets the node pass) and logs a diagnostic, because a
// dead cache must not block indexing.
type Gate struct {
	cache  Cache
	prefix string
	logger rstream.ErrorLogger

	// inFlight makes the get-then-set sequence atomic per fingerprint for
	// nodes racing within the same process, independent of whether the
	// backing Cache implementation itself is atomic.
	inFlight sync.Map // node.Fingerprint -> *sync.Mutex
}

// NewGate builds a dedup gate over cache, namespacing fingerprints with
// prefix so one cache backend can serve multiple pipelines.
func NewGate(cache Cache, prefix string, logger rstream.ErrorLogger) *Gate {
	return &Gate{cache: cache, prefix: prefix, logger: logger}
}

// Filter applies the gate to a node stream.
func (g *Gate) Filter(ctx context.Context, in <-chan rstream.Result[*node.Node]) <-chan rstream.Result[*node.Node] {
	out := make(chan rstream.Result[*node.Node])
	go func() {
		defer close(out)
		for item := range in {
			if item.IsErr() {
				select {
				case out <- item:
				case <-ctx.Done():
					return
				}
				continue
			}
			pass, err := g.admit(ctx, item.Value)
			if err != nil {
				g.log(err)
				pass = true // fail open
			}
			if !pass {
				continue
			}
			select {
			case out <- item:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// admit performs the atomic get-then-set for one node's fingerprint,
// returning true if the node should pass through.
func (g *Gate) admit(ctx context.Context, n *node.Node) (bool, error) {
	fp := node.NewFingerprint(g.prefix, n)

	muAny, _ := g.inFlight.LoadOrStore(fp, &sync.Mutex{})
	mu := muAny.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()
	defer g.inFlight.Delete(fp)

	seen, err := g.cache.Get(ctx, fp)
	if err != nil {
		return true, err
	}
	if seen {
		return false, nil
	}
	if err := g.cache.Set(ctx, fp); err != nil {
		return true, err
	}
	return true, nil
}

func (g *Gate) log(err error) {
	if g.logger != nil {
		g.logger.LogStreamError(err)
	}
}
