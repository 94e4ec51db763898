package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kestrelai/ragpipe/llmcap/openai"
	"github.com/kestrelai/ragpipe/query"
	"github.com/kestrelai/ragpipe/search"
	"github.com/kestrelai/ragpipe/search/filter"
	"github.com/kestrelai/ragpipe/store/memory"
	"github.com/spf13/cobra"
)

func newQueryCmd() *cobra.Command {
	var (
		question   string
		topK       int
		configFile string
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Answer a question against the in-process store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			if question == "" {
				return fmt.Errorf("ragpipe: --question is required")
			}

			apiKey := cfg.GetString("openai_api_key")
			if apiKey == "" {
				return fmt.Errorf("ragpipe: RAGPIPE_OPENAI_API_KEY (or --config) must set openai_api_key")
			}
			llm, err := openai.New(openai.Config{APIKey: apiKey})
			if err != nil {
				return err
			}

			store := memory.New("chunk")
			strategy := search.NewSimilaritySingleEmbedding[filter.Expr](nil)
			strategy.TopK = topK

			pipeline, err := query.New(query.Config[search.SimilaritySingleEmbedding[filter.Expr]]{
				QueryTransformers: []query.Transformer{query.EmbeddingTransformer{Embedder: llm}},
				Strategy:          strategy,
				Retriever:         store,
				Answerer:          query.PromptAnswerer{Prompter: llm},
			})
			if err != nil {
				return err
			}

			queryID := uuid.NewString()
			answered, err := pipeline.Run(cmd.Context(), question)
			if err != nil {
				return fmt.Errorf("ragpipe: query %s failed: %w", queryID, err)
			}
			fmt.Println(answered.State.Answer)
			return nil
		},
	}

	cmd.Flags().StringVar(&question, "question", "", "question to answer")
	cmd.Flags().IntVar(&topK, "top-k", search.DefaultTopK, "number of documents to retrieve")
	cmd.Flags().StringVar(&configFile, "config", "", "optional config file (yaml/json/toml)")

	return cmd
}
