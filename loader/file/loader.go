// Package file implements a filesystem-walking Loader, adapted from the
// teacher corpus's text reader idiom (ai/media/document/readers/text.go)
// generalized to emit node.Node values instead of document.Document, using
// gabriel-vasile/mimetype to skip non-text content the way the teacher's
// readers gate on content type.
package file

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/kestrelai/ragpipe/indexing"
	"github.com/kestrelai/ragpipe/node"
	"github.com/kestrelai/ragpipe/rstream"
)

// Config configures the file loader.
type Config struct {
	// Root is the directory walked recursively.
	Root string
	// Extensions restricts the walk to files with one of these suffixes
	// (e.g. ".md", ".txt"); empty means no restriction.
	Extensions []string
	// SkipBinary uses mimetype sniffing to drop non-text files even when
	// Extensions is empty.
	SkipBinary bool
}

// Loader walks Config.Root and emits one Node per matching file.
type Loader struct {
	cfg Config
}

// New builds a file loader.
func New(cfg Config) *Loader {
	return &Loader{cfg: cfg}
}

// IntoStream implements indexing.Loader.
func (l *Loader) IntoStream(ctx context.Context) <-chan indexing.NodeResult {
	out := make(chan indexing.NodeResult)
	go func() {
		defer close(out)
		err := filepath.WalkDir(l.cfg.Root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				emit(ctx, out, rstream.Err[*node.Node](walkErr))
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if !l.matches(path) {
				return nil
			}
			n, err := l.load(path)
			if err != nil {
				emit(ctx, out, rstream.Err[*node.Node](err))
				return nil
			}
			if n != nil {
				emit(ctx, out, rstream.Ok(n))
			}
			return nil
		})
		if err != nil {
			emit(ctx, out, rstream.Err[*node.Node](err))
		}
	}()
	return out
}

func (l *Loader) matches(path string) bool {
	if len(l.cfg.Extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, want := range l.cfg.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

func (l *Loader) load(path string) (*node.Node, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if l.cfg.SkipBinary {
		mt := mimetype.Detect(content)
		if !isTextLike(mt.String()) {
			return nil, nil
		}
	}
	n := node.New(path, string(content))
	n.SetMetadata("source", path)
	return n, nil
}

func isTextLike(mime string) bool {
	return len(mime) >= 5 && mime[:5] == "text/" || mime == "application/json" || mime == "application/xml"
}

func emit(ctx context.Context, out chan<- indexing.NodeResult, r indexing.NodeResult) {
	select {
	case out <- r:
	case <-ctx.Done():
	}
}
