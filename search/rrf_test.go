package search

import "testing"

func TestFuseReciprocalRankBoostsDocumentsInBothLists(t *testing.T) {
	dense := []Document{{Content: "a"}, {Content: "b"}, {Content: "c"}}
	sparse := []Document{{Content: "b"}, {Content: "d"}, {Content: "a"}}

	fused := FuseReciprocalRank([][]Document{dense, sparse}, 10)

	if len(fused) != 4 {
		t.Fatalf("expected 4 unique documents, got %d", len(fused))
	}
	if fused[0].Content != "a" && fused[0].Content != "b" {
		t.Fatalf("expected a or b (present in both lists) to rank first, got %q", fused[0].Content)
	}
}

func TestFuseReciprocalRankRespectsTopK(t *testing.T) {
	dense := []Document{{Content: "a"}, {Content: "b"}, {Content: "c"}}
	fused := FuseReciprocalRank([][]Document{dense}, 2)
	if len(fused) != 2 {
		t.Fatalf("expected topK=2 to truncate results, got %d", len(fused))
	}
}
