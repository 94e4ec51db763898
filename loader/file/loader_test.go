package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kestrelai/ragpipe/rstream"
)

func TestLoaderEmitsOneNodePerFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte("world"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "c.bin"), []byte{0x00, 0x01}, 0o644); err != nil {
		t.Fatal(err)
	}

	l := New(Config{Root: dir, Extensions: []string{".txt"}})
	nodes, err := rstream.Collect(l.IntoStream(context.Background()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 .txt nodes, got %d", len(nodes))
	}
	for _, n := range nodes {
		if n.OriginalSize != len(n.Chunk) {
			t.Fatalf("expected OriginalSize to match chunk length for a whole-file node")
		}
	}
}
