// Package memory implements an in-process Persister, Cache and
// similarity Retriever over a plain map, adapted from the teacher corpus's
// no-op collaborator pattern (a trivial in-memory stand-in used in tests
// and examples) generalized into a real brute-force similarity scan
// suitable for small corpora and unit tests.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/kestrelai/ragpipe/indexing"
	"github.com/kestrelai/ragpipe/node"
	"github.com/kestrelai/ragpipe/rstream"
	"github.com/kestrelai/ragpipe/search"
	"github.com/kestrelai/ragpipe/search/filter"
)

// Store is a map-backed Persister + Cache + Retriever, atomic by
// construction: StoreBatch either records every node or none (the global
// mutex makes partial-batch cancellation moot, documented per the
// cancellation-semantics invariant every Persister must state).
type Store struct {
	mu      sync.RWMutex
	nodes   map[node.ID]*node.Node
	field   string // EmbeddedField key used for similarity search
	fprints map[string]struct{}
}

// New builds an empty store. field names the vector field similarity
// search reads (e.g. "combined").
func New(field string) *Store {
	return &Store{
		nodes:   make(map[node.ID]*node.Node),
		field:   field,
		fprints: make(map[string]struct{}),
	}
}

// Setup implements indexing.Persister; idempotent by construction since
// there is no external resource to provision.
func (s *Store) Setup(_ context.Context) error { return nil }

// Store implements indexing.Persister.
func (s *Store) Store(_ context.Context, n *node.Node) (*node.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[n.ID()] = n
	return n, nil
}

// StoreBatch implements indexing.Persister.
func (s *Store) StoreBatch(ctx context.Context, batch []*node.Node) <-chan indexing.NodeResult {
	out := make(chan indexing.NodeResult, len(batch))
	defer close(out)
	s.mu.Lock()
	for _, n := range batch {
		s.nodes[n.ID()] = n
	}
	s.mu.Unlock()
	for _, n := range batch {
		out <- rstream.Ok(n)
	}
	return out
}

// Get implements dedup.Cache.
func (s *Store) Get(_ context.Context, fp node.Fingerprint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.fprints[string(fp)]
	return ok, nil
}

// Set implements dedup.Cache.
func (s *Store) Set(_ context.Context, fp node.Fingerprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fprints[string(fp)] = struct{}{}
	return nil
}

// Clear implements dedup.Cache.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fprints = make(map[string]struct{})
	return nil
}

// Retrieve implements search.Retriever[search.SimilaritySingleEmbedding[filter.Expr]].
func (s *Store) Retrieve(_ context.Context, strategy search.SimilaritySingleEmbedding[filter.Expr], q search.Querier) (search.RetrievedQuery, error) {
	embedding, ok := q.Embedding()
	if !ok {
		return search.RetrievedQuery{}, errNoEmbedding
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	docs, err := s.denseScan(s.field, embedding, strategy.Filter, strategy.TopK)
	if err != nil {
		return search.RetrievedQuery{}, err
	}
	return search.RetrievedQuery{Documents: docs}, nil
}

// denseScan ranks every node holding a vector under field by cosine
// similarity to embedding, optionally narrowed by filterExpr, truncated to
// topK (or search.DefaultTopK). Callers must hold at least a read lock.
func (s *Store) denseScan(field string, embedding []float32, filterExpr filter.Expr, topK int) ([]search.Document, error) {
	type scored struct {
		doc   search.Document
		score float64
	}
	var candidates []scored

	for _, n := range s.nodes {
		if filterExpr != nil {
			matched, err := filter.Eval(filterExpr, metadataView{n})
			if err != nil {
				return nil, err
			}
			if !matched {
				continue
			}
		}
		vec, ok := n.Vectors[field]
		if !ok {
			continue
		}
		candidates = append(candidates, scored{doc: toDocument(n), score: cosine(embedding, vec)})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	if topK <= 0 {
		topK = search.DefaultTopK
	}
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	docs := make([]search.Document, len(candidates))
	for i, c := range candidates {
		c.doc.Score = c.score
		docs[i] = c.doc
	}
	return docs, nil
}

type metadataView struct{ n *node.Node }

func (m metadataView) Get(key string) (any, bool) { return m.n.GetMetadata(key) }

func toDocument(n *node.Node) search.Document {
	md := make(map[string]any, n.Metadata.Len())
	for pair := n.Metadata.Oldest(); pair != nil; pair = pair.Next() {
		md[pair.Key] = pair.Value
	}
	return search.Document{Content: n.Chunk, Metadata: md}
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
