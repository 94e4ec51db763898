package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/kestrelai/ragpipe/llmcap"
)

// PromptAnswerer implements Answerer by stuffing the retrieved documents
// into a single prompt and delegating to a SimplePrompt capability,
// mirroring the teacher corpus's single-shot prompt-template answerers
// rather than a multi-turn chat loop.
type PromptAnswerer struct {
	Prompter llmcap.SimplePrompt
	// Template receives the question and the joined document text; a nil
	// Template falls back to DefaultAnswerTemplate.
	Template func(question, context string) string
}

// DefaultAnswerTemplate is used when PromptAnswerer.Template is nil.
func DefaultAnswerTemplate(question, context string) string {
	return fmt.Sprintf("Answer the question using only the context below.\n\nContext:\n%s\n\nQuestion: %s", context, question)
}

// Answer implements Answerer.
func (a PromptAnswerer) Answer(ctx context.Context, q *Query[Retrieved]) (string, error) {
	if a.Prompter == nil {
		return "", fmt.Errorf("query: PromptAnswerer.Prompter is required")
	}
	template := a.Template
	if template == nil {
		template = DefaultAnswerTemplate
	}

	docs := make([]string, len(q.State.Documents))
	for i, d := range q.State.Documents {
		docs[i] = d.Content
	}

	answer, err := a.Prompter.SimplePrompt(ctx, template(q.Current, strings.Join(docs, "\n\n---\n\n")))
	if err != nil {
		return "", fmt.Errorf("query: answer prompt failed: %w", err)
	}
	return answer, nil
}

// EmbeddingTransformer implements Transformer by embedding the query's
// current text with a dense embedder, populating Query.Embedding before
// retrieval.
type EmbeddingTransformer struct {
	Embedder interface {
		Embed(ctx context.Context, texts []string) ([][]float32, error)
	}
}

// Transform implements Transformer.
func (t EmbeddingTransformer) Transform(ctx context.Context, q *Query[Pending]) (*Query[Pending], error) {
	vectors, err := t.Embedder.Embed(ctx, []string{q.Current})
	if err != nil {
		return nil, fmt.Errorf("query: query embedding failed: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("query: expected 1 embedding, got %d", len(vectors))
	}
	out := q.Clone()
	out.SetEmbedding(vectors[0])
	return out, nil
}
