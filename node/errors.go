package node

import "errors"

var (
	errSparseLengthMismatch = errors.New("node: sparse vector indices and values have different lengths")
	errSparseUnsorted       = errors.New("node: sparse vector indices are not strictly ascending")
)
