package node

import "testing"

func TestIdentityExcludesMetadata(t *testing.T) {
	n := New("docs/a.txt", "hello world")
	before := n.ID()

	n.SetMetadata("source", "unit-test")
	n.Vectors["combined"] = []float32{0.1, 0.2}

	if after := n.ID(); after != before {
		t.Fatalf("id changed after metadata/vector mutation: %x != %x", after, before)
	}
}

func TestIdentityChangesWithChunk(t *testing.T) {
	parent := New("docs/a.txt", "hello world, this is a long document")
	child := parent.WithChunk("hello world", 0)

	if child.ID() == parent.ID() {
		t.Fatalf("child chunk must produce a distinct id from its parent")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	n := New("docs/a.txt", "hello")
	n.SetMetadata("k", "v")

	clone := n.Clone()
	clone.SetMetadata("k2", "v2")

	if _, ok := n.GetMetadata("k2"); ok {
		t.Fatalf("mutating clone metadata must not affect original")
	}
}

func TestFingerprintNamespacing(t *testing.T) {
	n := New("docs/a.txt", "hello")
	fp1 := NewFingerprint("pipeline-a", n)
	fp2 := NewFingerprint("pipeline-b", n)

	if fp1 == fp2 {
		t.Fatalf("fingerprints for distinct prefixes must differ")
	}
}

func TestEmbeddingTargetsSingleWithMetadata(t *testing.T) {
	n := New("docs/a.txt", "body text")
	n.SetMetadata("b", "2")
	n.SetMetadata("a", "1")
	n.EmbedMode = SingleWithMetadata

	targets := n.EmbeddingTargets(nil)
	if len(targets) != 1 {
		t.Fatalf("expected exactly one combined target, got %d", len(targets))
	}
	want := "a: 1\nb: 2\nbody text"
	if targets[0].Text != want {
		t.Fatalf("combined text = %q, want %q", targets[0].Text, want)
	}
}

func TestEmbeddingTargetsPerField(t *testing.T) {
	n := New("docs/a.txt", "body text")
	n.SetMetadata("title", "Doc A")
	n.EmbedMode = PerField

	targets := n.EmbeddingTargets([]EmbeddedField{ChunkField(), MetadataField("title")})
	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(targets))
	}
	if targets[0].Text != "body text" || targets[1].Text != "Doc A" {
		t.Fatalf("unexpected per-field targets: %+v", targets)
	}
}
