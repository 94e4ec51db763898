// Package evalsink implements evaluation hooks over answered queries,
// adapted from the teacher corpus's ai/evaluation/evaluator.go
// (Evaluator.Evaluate contract + getSupportingData helper joining document
// texts) generalized from chat-client Response values to
// query.Query[Answered].
package evalsink

import (
	"context"
	"strings"

	"github.com/kestrelai/ragpipe/llmcap"
	"github.com/kestrelai/ragpipe/query"
)

// Request is what an Evaluator receives: the original question, the final
// answer, and the supporting documents the answer was grounded on.
type Request struct {
	Question        string
	Answer           string
	SupportingDocs   []string
}

// Response is an evaluator's verdict.
type Response struct {
	Score float64
	Pass  bool
	Notes string
}

// Evaluator judges one answered query.
type Evaluator interface {
	Evaluate(ctx context.Context, req Request) (*Response, error)
}

// RequestFromQuery builds an evaluation Request from a terminal query's
// question and answer. A Query[Answered] does not carry the retrieved
// documents, so SupportingDocs is left empty; RequestFromRetrieved fills
// it in.
func RequestFromQuery(q *query.Query[query.Answered]) Request {
	return Request{
		Question: q.Original,
		Answer:   q.State.Answer,
	}
}

// RequestFromRetrieved attaches the retrieved document texts a
// Query[Retrieved] carried before being answered; callers that keep that
// value around can enrich the Request with it.
func RequestFromRetrieved(q *query.Query[query.Answered], docs []string) Request {
	req := RequestFromQuery(q)
	req.SupportingDocs = docs
	return req
}

func supportingText(docs []string) string {
	return strings.Join(docs, "\n\n")
}

// RelevancyEvaluator asks an LLM whether the answer is relevant to the
// question given the supporting documents.
type RelevancyEvaluator struct {
	Prompter llmcap.SimplePrompt
}

func (e *RelevancyEvaluator) Evaluate(ctx context.Context, req Request) (*Response, error) {
	prompt := "Question: " + req.Question + "\nAnswer: " + req.Answer +
		"\nContext:\n" + supportingText(req.SupportingDocs) +
		"\n\nIs the answer relevant to the question given the context? Reply PASS or FAIL with a one-line reason."
	out, err := e.Prompter.SimplePrompt(ctx, prompt)
	if err != nil {
		return nil, err
	}
	pass := strings.HasPrefix(strings.TrimSpace(strings.ToUpper(out)), "PASS")
	score := 0.0
	if pass {
		score = 1.0
	}
	return &Response{Score: score, Pass: pass, Notes: out}, nil
}

// FactCheckingEvaluator asks an LLM whether the answer's claims are
// supported by the context documents, catching ungrounded hallucination.
type FactCheckingEvaluator struct {
	Prompter llmcap.SimplePrompt
}

func (e *FactCheckingEvaluator) Evaluate(ctx context.Context, req Request) (*Response, error) {
	prompt := "Context:\n" + supportingText(req.SupportingDocs) +
		"\n\nClaim: " + req.Answer +
		"\n\nIs the claim fully supported by the context? Reply PASS or FAIL with a one-line reason."
	out, err := e.Prompter.SimplePrompt(ctx, prompt)
	if err != nil {
		return nil, err
	}
	pass := strings.HasPrefix(strings.TrimSpace(strings.ToUpper(out)), "PASS")
	score := 0.0
	if pass {
		score = 1.0
	}
	return &Response{Score: score, Pass: pass, Notes: out}, nil
}
