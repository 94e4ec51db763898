package dedup

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kestrelai/ragpipe/node"
	"github.com/kestrelai/ragpipe/rstream"
)

type memCache struct {
	mu   sync.Mutex
	seen map[node.Fingerprint]bool
}

func newMemCache() *memCache {
	return &memCache{seen: make(map[node.Fingerprint]bool)}
}

func (c *memCache) Get(_ context.Context, fp node.Fingerprint) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen[fp], nil
}

func (c *memCache) Set(_ context.Context, fp node.Fingerprint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen[fp] = true
	return nil
}

func (c *memCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = make(map[node.Fingerprint]bool)
	return nil
}

type failingCache struct{}

func (failingCache) Get(context.Context, node.Fingerprint) (bool, error) {
	return false, errors.New("cache unavailable")
}
func (failingCache) Set(context.Context, node.Fingerprint) error {
	return errors.New("cache unavailable")
}
func (failingCache) Clear(context.Context) error { return nil }

func TestGateDropsDuplicateAcrossConcurrentArrivals(t *testing.T) {
	cache := newMemCache()
	gate := NewGate(cache, "pipeline-a", nil)

	n := node.New("docs/a.txt", "same content")
	const attempts = 50
	in := make(chan rstream.Result[*node.Node], attempts)
	for i := 0; i < attempts; i++ {
		in <- rstream.Ok(n)
	}
	close(in)

	out := gate.Filter(context.Background(), in)
	passed, _ := rstream.Collect(out)
	if len(passed) != 1 {
		t.Fatalf("expected exactly one pass-through for identical fingerprints, got %d", len(passed))
	}
}

func TestGateFailsOpenOnCacheError(t *testing.T) {
	gate := NewGate(failingCache{}, "pipeline-a", nil)
	n := node.New("docs/a.txt", "content")

	in := rstream.FromSlice([]*node.Node{n})
	out := gate.Filter(context.Background(), in)

	passed, err := rstream.Collect(out)
	if err != nil {
		t.Fatalf("gate must not surface cache errors downstream: %v", err)
	}
	if len(passed) != 1 {
		t.Fatalf("expected the node to pass through on cache failure (fail-open), got %d", len(passed))
	}
}

func TestGateNamespacesByPrefix(t *testing.T) {
	cache := newMemCache()
	n := node.New("docs/a.txt", "content")

	gateA := NewGate(cache, "pipeline-a", nil)
	gateB := NewGate(cache, "pipeline-b", nil)

	outA := gateA.Filter(context.Background(), rstream.FromSlice([]*node.Node{n}))
	if passed, _ := rstream.Collect(outA); len(passed) != 1 {
		t.Fatalf("first pass through pipeline-a should admit the node")
	}

	outB := gateB.Filter(context.Background(), rstream.FromSlice([]*node.Node{n}))
	if passed, _ := rstream.Collect(outB); len(passed) != 1 {
		t.Fatalf("same node under a different prefix must still be admitted, got different count")
	}
}
