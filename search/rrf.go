package search

import (
	"sort"

	"github.com/samber/lo"
)

// rrfK is the reciprocal-rank-fusion smoothing constant; 60 is the
// standard value used across the hybrid-search literature the teacher
// corpus's retrieval components trace back to.
const rrfK = 60

// FuseReciprocalRank combines per-sub-query ranked document lists into a
// single ranking using reciprocal-rank fusion: each document's fused score
// is the sum of 1/(rrfK+rank) across every list it appears in, identified
// by content. Used by HybridSearch retrievers to merge dense and sparse
// result lists.
func FuseReciprocalRank(rankings [][]Document, topK int) []Document {
	scores := make(map[string]float64)
	best := make(map[string]Document)

	for _, ranking := range rankings {
		for rank, doc := range ranking {
			key := doc.Content
			scores[key] += 1.0 / float64(rrfK+rank+1)
			if _, ok := best[key]; !ok {
				best[key] = doc
			}
		}
	}

	fused := lo.MapToSlice(scores, func(key string, score float64) Document {
		d := best[key]
		d.Score = score
		return d
	})

	sort.Slice(fused, func(i, j int) bool { return fused[i].Score > fused[j].Score })

	if topK > 0 && len(fused) > topK {
		fused = lo.Subset(fused, 0, uint(topK))
	}
	return fused
}
