// Package qdrant implements a Persister and similarity Retriever over
// qdrant/go-client, adapted from the teacher corpus's
// ai/providers/vectorstores/qdrant/store.go: same
// CollectionExists/CreateCollection initialize-schema idiom, same
// Upsert-by-PointStruct write path, generalized from document.Document to
// node.Node and keyed by the node's own 128-bit id instead of a
// generated uuid, per the spec's "node id as natural primary key"
// requirement.
package qdrant

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/kestrelai/ragpipe/indexing"
	"github.com/kestrelai/ragpipe/node"
	"github.com/kestrelai/ragpipe/rstream"
	"github.com/kestrelai/ragpipe/search"
	"github.com/qdrant/go-client/qdrant"
)

// Config configures the qdrant-backed store.
type Config struct {
	Client           *qdrant.Client
	CollectionName   string
	InitializeSchema bool
	Dimensions       int
	// VectorField names which Node.Vectors key this store reads/writes.
	VectorField string
}

func (c *Config) validate() error {
	if c.Client == nil {
		return fmt.Errorf("qdrant: Config.Client is required")
	}
	if c.CollectionName == "" {
		return fmt.Errorf("qdrant: Config.CollectionName is required")
	}
	if c.VectorField == "" {
		return fmt.Errorf("qdrant: Config.VectorField is required")
	}
	return nil
}

// Store is a Persister and Retriever backed by a qdrant collection.
//
// Cancellation semantics: each StoreBatch sends its whole batch in one
// Upsert call. Points upserted by earlier StoreBatch calls stay committed
// when a later call is cancelled — "commit-what-you-have", per the
// cancellation-semantics invariant every Persister must document.
type Store struct {
	cfg Config
}

// New validates cfg and returns a Store.
func New(cfg Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Store{cfg: cfg}, nil
}

// Setup implements indexing.Persister: idempotent collection creation,
// called exactly once before the first Store.
func (s *Store) Setup(ctx context.Context) error {
	if !s.cfg.InitializeSchema {
		return nil
	}
	exists, err := s.cfg.Client.CollectionExists(ctx, s.cfg.CollectionName)
	if err != nil {
		return fmt.Errorf("qdrant: failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}
	err = s.cfg.Client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.cfg.CollectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.cfg.Dimensions),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: failed to create collection %s: %w", s.cfg.CollectionName, err)
	}
	return nil
}

// Store implements indexing.Persister.
func (s *Store) Store(ctx context.Context, n *node.Node) (*node.Node, error) {
	point, err := s.buildPoint(n)
	if err != nil {
		return nil, err
	}
	_, err = s.cfg.Client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.cfg.CollectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: upsert failed for node %x: %w", n.ID(), err)
	}
	return n, nil
}

// StoreBatch implements indexing.Persister. Output length never exceeds
// input length: a node whose point fails to build gets exactly one Err and
// is excluded from the trailing success loop, which ranges over the nodes
// actually upserted rather than the original batch.
func (s *Store) StoreBatch(ctx context.Context, batch []*node.Node) <-chan indexing.NodeResult {
	out := make(chan indexing.NodeResult, len(batch))
	defer close(out)

	points := make([]*qdrant.PointStruct, 0, len(batch))
	built := make([]*node.Node, 0, len(batch))
	for _, n := range batch {
		point, err := s.buildPoint(n)
		if err != nil {
			out <- rstream.Err[*node.Node](err)
			continue
		}
		points = append(points, point)
		built = append(built, n)
	}
	if len(points) == 0 {
		return out
	}

	_, err := s.cfg.Client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.cfg.CollectionName,
		Points:         points,
	})
	if err != nil {
		out <- rstream.Err[*node.Node](fmt.Errorf("qdrant: batch upsert of %d points failed: %w", len(points), err))
		return out
	}
	for _, n := range built {
		out <- rstream.Ok(n)
	}
	return out
}

// BatchSize implements indexing.PersisterBatchSize; qdrant upserts are
// cheapest in a few hundred points per call.
func (s *Store) BatchSize() int { return 256 }

func (s *Store) buildPoint(n *node.Node) (*qdrant.PointStruct, error) {
	vec, ok := n.Vectors[s.cfg.VectorField]
	if !ok {
		return nil, fmt.Errorf("qdrant: node %x has no vector for field %s", n.ID(), s.cfg.VectorField)
	}
	id := n.ID()
	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(hex.EncodeToString(id[:])),
		Vectors: qdrant.NewVectors(vec...),
	}
	payload, err := qdrant.TryValueMap(metadataMap(n))
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to convert metadata to payload: %w", err)
	}
	point.Payload = payload
	return point, nil
}

func metadataMap(n *node.Node) map[string]any {
	md := make(map[string]any, n.Metadata.Len())
	for pair := n.Metadata.Oldest(); pair != nil; pair = pair.Next() {
		md[pair.Key] = pair.Value
	}
	md["__chunk__"] = n.Chunk
	md["__path__"] = n.Path
	return md
}

// Retrieve implements search.Retriever[search.SimilaritySingleEmbedding[any]].
func (s *Store) Retrieve(ctx context.Context, strategy search.SimilaritySingleEmbedding[any], q search.Querier) (search.RetrievedQuery, error) {
	embedding, ok := q.Embedding()
	if !ok {
		return search.RetrievedQuery{}, fmt.Errorf("qdrant: query has no dense embedding")
	}
	topK := strategy.TopK
	if topK <= 0 {
		topK = search.DefaultTopK
	}

	points, err := s.cfg.Client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.cfg.CollectionName,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          ptrU64(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return search.RetrievedQuery{}, fmt.Errorf("qdrant: query failed: %w", err)
	}

	docs := make([]search.Document, 0, len(points))
	for _, p := range points {
		md := convertPayload(p.Payload)
		content, _ := md["__chunk__"].(string)
		delete(md, "__chunk__")
		delete(md, "__path__")
		docs = append(docs, search.Document{Content: content, Metadata: md, Score: float64(p.Score)})
	}
	return search.RetrievedQuery{Documents: docs}, nil
}

func ptrU64(v uint64) *uint64 { return &v }

func convertPayload(payload map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = convertValue(v)
	}
	return out
}

func convertValue(value *qdrant.Value) any {
	if value == nil {
		return nil
	}
	switch kind := value.Kind.(type) {
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	default:
		return nil
	}
}
