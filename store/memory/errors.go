package memory

import "errors"

var errNoEmbedding = errors.New("memory: query has no dense embedding; SimilaritySingleEmbedding requires one")
