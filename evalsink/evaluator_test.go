package evalsink

import (
	"context"
	"testing"

	"github.com/kestrelai/ragpipe/query"
)

type fakePrompter struct{ reply string }

func (f fakePrompter) SimplePrompt(_ context.Context, _ string) (string, error) {
	return f.reply, nil
}

func TestRelevancyEvaluatorParsesPass(t *testing.T) {
	e := &RelevancyEvaluator{Prompter: fakePrompter{reply: "PASS: directly answers the question"}}
	resp, err := e.Evaluate(context.Background(), Request{Question: "q", Answer: "a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Pass || resp.Score != 1.0 {
		t.Fatalf("expected pass verdict, got %+v", resp)
	}
}

func TestRelevancyEvaluatorParsesFail(t *testing.T) {
	e := &RelevancyEvaluator{Prompter: fakePrompter{reply: "FAIL: off topic"}}
	resp, err := e.Evaluate(context.Background(), Request{Question: "q", Answer: "a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Pass || resp.Score != 0 {
		t.Fatalf("expected fail verdict, got %+v", resp)
	}
}

func TestSummarizeHistory(t *testing.T) {
	history := []query.TransformationEvent{
		{Kind: query.EventTransformed, Before: "a", After: "b"},
		{Kind: query.EventRetrieved, N: 5},
		{Kind: query.EventAnswered},
	}
	s := Summarize(history)
	if s.Transformations != 1 || s.RetrievedDocs != 5 || !s.Answered || s.Summarized {
		t.Fatalf("unexpected summary: %+v", s)
	}
}
