package llmcap

import "context"

// SimplePrompt is the minimal capability metadata-enrichment transformers
// depend on.
type SimplePrompt interface {
	SimplePrompt(ctx context.Context, prompt string) (string, error)
}

// ChatMessage is one turn in a chat completion request.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatCompletion is the multi-turn chat capability the provider adapters
// implement. The query package's PromptAnswerer uses SimplePrompt, not
// ChatCompletion.
type ChatCompletion interface {
	ChatComplete(ctx context.Context, messages []ChatMessage) (string, error)
}

// Reranker reorders candidate documents against a query, used by response
// transformers that rerank before answering.
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []string) ([]int, error)
}
