// Package node defines the canonical record that flows through an indexing
// pipeline, along with the content-hash identity it carries from loader to
// persister.
package node

import (
	"crypto/sha256"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ID is the node's 128-bit content identity, derived from (path, chunk).
type ID [16]byte

// EmbeddedFieldKind tags which view of a Node a field name refers to.
type EmbeddedFieldKind int

const (
	// Chunk is the node's raw chunk text.
	Chunk EmbeddedFieldKind = iota
	// Combined is the whole node rendered to text (metadata + chunk).
	Combined
	// Metadata addresses a single metadata key.
	Metadata
)

// EmbeddedField is a tagged value naming one of the strings a Node can
// produce for embedding. Stores and embedders agree on field identity
// through this type rather than a bare string.
type EmbeddedField struct {
	Kind EmbeddedFieldKind
	// Name is only meaningful when Kind == Metadata.
	Name string
}

func (f EmbeddedField) String() string {
	switch f.Kind {
	case Chunk:
		return "chunk"
	case Combined:
		return "combined"
	case Metadata:
		return "metadata:" + f.Name
	default:
		return "unknown"
	}
}

// ChunkField, CombinedField and MetadataField construct EmbeddedField values.
func ChunkField() EmbeddedField       { return EmbeddedField{Kind: Chunk} }
func CombinedField() EmbeddedField    { return EmbeddedField{Kind: Combined} }
func MetadataField(name string) EmbeddedField {
	return EmbeddedField{Kind: Metadata, Name: name}
}

// EmbedMode controls which strings a Node submits to its embedder.
type EmbedMode int

const (
	// SingleWithMetadata concatenates sorted metadata lines with the chunk
	// and embeds the result as a single string.
	SingleWithMetadata EmbedMode = iota
	// PerField emits one string per configured EmbeddedField.
	PerField
	// Both is the union of SingleWithMetadata and PerField.
	Both
)

// SparseVector is a sparse embedding: parallel index/value slices.
type SparseVector struct {
	Indices []uint32
	Values  []float32
}

// Node is the canonical unit flowing through the indexing pipeline.
//
// Identity invariant: ID is the content hash of (Path, Chunk) only.
// Metadata and vector mutation MUST NOT change ID.
type Node struct {
	id   ID
	idOK bool

	Path         string
	Chunk        string
	OriginalSize int
	Offset       int

	Metadata *orderedmap.OrderedMap[string, any]

	Vectors       map[string][]float32
	SparseVectors map[string]SparseVector

	EmbedMode EmbedMode
}

// New creates a Node for the given path and chunk. OriginalSize defaults to
// len(chunk) and Offset to 0, matching a Loader emitting one node per source.
func New(path, chunk string) *Node {
	return &Node{
		Path:         path,
		Chunk:        chunk,
		OriginalSize: len(chunk),
		Metadata:     orderedmap.New[string, any](),
		Vectors:      make(map[string][]float32),
		SparseVectors: make(map[string]SparseVector),
	}
}

// ID returns the node's 128-bit content identity, computing and caching it
// on first access. The hash excludes metadata and vectors by construction.
func (n *Node) ID() ID {
	if n.idOK {
		return n.id
	}
	n.id = computeID(n.Path, n.Chunk)
	n.idOK = true
	return n.id
}

// invalidateID forces ID to be recomputed; callers use this after mutating
// Path or Chunk (chunking, not enrichment).
func (n *Node) invalidateID() {
	n.idOK = false
}

// WithChunk returns a copy of the node with Chunk and Offset replaced,
// reporting a new identity as required for children produced by a Chunker.
// OriginalSize is preserved from the parent so downstream stages can still
// reason about the size of the pre-chunk source.
func (n *Node) WithChunk(chunk string, offset int) *Node {
	clone := n.Clone()
	clone.Chunk = chunk
	clone.Offset = offset
	clone.invalidateID()
	return clone
}

// Clone returns a deep-enough copy of the node for independent mutation:
// metadata and vector maps are copied, Path/Chunk/Offset/OriginalSize are
// copied by value.
func (n *Node) Clone() *Node {
	c := &Node{
		Path:         n.Path,
		Chunk:        n.Chunk,
		OriginalSize: n.OriginalSize,
		Offset:       n.Offset,
		EmbedMode:    n.EmbedMode,
		Vectors:      make(map[string][]float32, len(n.Vectors)),
		SparseVectors: make(map[string]SparseVector, len(n.SparseVectors)),
	}
	c.id, c.idOK = n.id, n.idOK
	if n.Metadata != nil {
		c.Metadata = orderedmap.New[string, any]()
		for pair := n.Metadata.Oldest(); pair != nil; pair = pair.Next() {
			c.Metadata.Set(pair.Key, pair.Value)
		}
	} else {
		c.Metadata = orderedmap.New[string, any]()
	}
	for k, v := range n.Vectors {
		c.Vectors[k] = v
	}
	for k, v := range n.SparseVectors {
		c.SparseVectors[k] = v
	}
	return c
}

// SetMetadata adds or overwrites a metadata key. Per the enrichment
// invariant, transformers must never remove or rename a key — this method
// does not enforce that, it is a convention transformers are expected to
// follow (see the Transformer contract in package indexing).
func (n *Node) SetMetadata(key string, value any) {
	n.Metadata.Set(key, value)
}

// GetMetadata returns the metadata value for key, if set.
func (n *Node) GetMetadata(key string) (any, bool) {
	return n.Metadata.Get(key)
}

// SortedMetadataKeys returns metadata keys in sorted order, the order
// required for deterministic SingleWithMetadata rendering (the ID hash
// does not include metadata).
func (n *Node) SortedMetadataKeys() []string {
	keys := make([]string, 0, n.Metadata.Len())
	for pair := n.Metadata.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	sort.Strings(keys)
	return keys
}

func computeID(path, chunk string) ID {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write([]byte(chunk))
	sum := h.Sum(nil)
	var id ID
	copy(id[:], sum[:16])
	return id
}
