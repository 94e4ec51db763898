package node

import (
	"sort"

	"github.com/bits-and-blooms/bitset"
)

// Validate reports whether a SparseVector's indices and values have the
// same length and its indices are unique and ascending. No store in this
// repo calls it; the memory store's sparse scan does not depend on index
// order.
func (s SparseVector) Validate() error {
	if len(s.Indices) != len(s.Values) {
		return errSparseLengthMismatch
	}
	for i, idx := range s.Indices {
		if i > 0 && idx <= s.Indices[i-1] {
			return errSparseUnsorted
		}
	}
	return nil
}

// OverlapMask returns the set of dimension indices that appear in more
// than one of the given sparse vectors, a measure of how much sparse
// representations overlap. The memory store's hybrid retriever does not
// call it.
func OverlapMask(vectors ...SparseVector) *bitset.BitSet {
	seen := bitset.New(0)
	overlap := bitset.New(0)
	for _, v := range vectors {
		for _, idx := range v.Indices {
			if seen.Test(uint(idx)) {
				overlap.Set(uint(idx))
			}
			seen.Set(uint(idx))
		}
	}
	return overlap
}

// Sorted returns a copy of s with indices (and matching values) ordered
// ascending, regardless of the order the embedder produced them in.
func (s SparseVector) Sorted() SparseVector {
	order := make([]int, len(s.Indices))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return s.Indices[order[i]] < s.Indices[order[j]] })

	out := SparseVector{
		Indices: make([]uint32, len(s.Indices)),
		Values:  make([]float32, len(s.Values)),
	}
	for newPos, oldPos := range order {
		out.Indices[newPos] = s.Indices[oldPos]
		out.Values[newPos] = s.Values[oldPos]
	}
	return out
}
