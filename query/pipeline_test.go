package query

import (
	"context"
	"strings"
	"testing"

	"github.com/kestrelai/ragpipe/search"
)

type upperTransformer struct{}

func (upperTransformer) Transform(_ context.Context, q *Query[Pending]) (*Query[Pending], error) {
	q.Current = strings.ToUpper(q.Current)
	return q, nil
}

type fakeRetriever struct{ docs []search.Document }

func (f fakeRetriever) Retrieve(_ context.Context, _ search.NoFilter, q search.Querier) (search.RetrievedQuery, error) {
	return search.RetrievedQuery{Documents: f.docs}, nil
}

type echoAnswerer struct{}

func (echoAnswerer) Answer(_ context.Context, q *Query[Retrieved]) (string, error) {
	var parts []string
	for _, d := range q.State.Documents {
		parts = append(parts, d.Content)
	}
	return strings.Join(parts, "|"), nil
}

func TestPipelineRunEndToEnd(t *testing.T) {
	cfg := Config[search.NoFilter]{
		QueryTransformers: []Transformer{upperTransformer{}},
		Strategy:          search.NoFilter{},
		Retriever:         fakeRetriever{docs: []search.Document{{Content: "doc1"}, {Content: "doc2"}}},
		Answerer:          echoAnswerer{},
	}
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected config error: %v", err)
	}

	answered, err := p.Run(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if answered.Current != "HELLO" {
		t.Fatalf("expected query transformer to run, got %q", answered.Current)
	}
	if answered.State.Answer != "doc1|doc2" {
		t.Fatalf("unexpected answer: %q", answered.State.Answer)
	}
	if len(answered.History) != 3 {
		t.Fatalf("expected 3 history events (transformed, retrieved, answered), got %d", len(answered.History))
	}
}

func TestPipelineRequiresRetrieverAndAnswerer(t *testing.T) {
	_, err := New(Config[search.NoFilter]{})
	if err == nil {
		t.Fatal("expected validation error for missing retriever/answerer")
	}
}

func TestPipelineRunAllPreservesOrder(t *testing.T) {
	cfg := Config[search.NoFilter]{
		Strategy:  search.NoFilter{},
		Retriever: fakeRetriever{docs: []search.Document{{Content: "d"}}},
		Answerer:  echoAnswerer{},
	}
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, err := p.RunAll(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, text := range []string{"a", "b", "c"} {
		if results[i].Original != text {
			t.Fatalf("expected result[%d].Original = %q, got %q", i, text, results[i].Original)
		}
	}
}
