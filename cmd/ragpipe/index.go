package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kestrelai/ragpipe/chunker/text"
	"github.com/kestrelai/ragpipe/dedup"
	"github.com/kestrelai/ragpipe/embedder"
	"github.com/kestrelai/ragpipe/embedder/tokencount"
	"github.com/kestrelai/ragpipe/indexing"
	"github.com/kestrelai/ragpipe/llmcap/openai"
	"github.com/kestrelai/ragpipe/loader/file"
	"github.com/kestrelai/ragpipe/node"
	"github.com/kestrelai/ragpipe/store/memory"
	"github.com/kestrelai/ragpipe/store/qdrant"
	qdrantclient "github.com/qdrant/go-client/qdrant"
	"github.com/spf13/cobra"
)

func newIndexCmd() *cobra.Command {
	var (
		root           string
		collection     string
		qdrantAddr     string
		chunkSize      int
		chunkOverlap   int
		concurrency    int
		configFile     string
		useMemoryStore bool
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Walk a directory, chunk and embed its files, and persist the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}

			runID := uuid.NewString()
			slog.Info("starting index run", "run_id", runID, "root", root)

			apiKey := cfg.GetString("openai_api_key")
			if apiKey == "" {
				return fmt.Errorf("ragpipe: RAGPIPE_OPENAI_API_KEY (or --config) must set openai_api_key")
			}

			llm, err := openai.New(openai.Config{APIKey: apiKey})
			if err != nil {
				return err
			}

			chunkerStage, err := text.New(text.Config{ChunkSize: chunkSize, Overlap: chunkOverlap})
			if err != nil {
				return err
			}

			estimator, err := tokencount.New("cl100k_base")
			if err != nil {
				return err
			}

			embedStage := embedder.New(embedder.Config{
				Dense:          llm,
				Fields:         []node.EmbeddedField{node.ChunkField()},
				MaxInputTokens: 8000,
				Estimator:      estimator,
				BatchSizeVal:   64,
			})

			var cache dedup.Cache
			var persister indexing.Persister
			if useMemoryStore || qdrantAddr == "" {
				store := memory.New("chunk")
				cache = store
				persister = store
			} else {
				host, port, err := splitHostPort(qdrantAddr)
				if err != nil {
					return err
				}
				client, err := qdrantclient.NewClient(&qdrantclient.Config{Host: host, Port: port})
				if err != nil {
					return fmt.Errorf("ragpipe: failed to connect to qdrant at %s: %w", qdrantAddr, err)
				}
				store, err := qdrant.New(qdrant.Config{
					Client:           client,
					CollectionName:   collection,
					InitializeSchema: true,
					Dimensions:       llm.Dimensions(),
					VectorField:      "chunk",
				})
				if err != nil {
					return err
				}
				persister = store
				cache = memory.New("chunk")
			}

			loader := file.New(file.Config{Root: root, SkipBinary: true})

			builder := indexing.New(loader).
				WithConcurrency(concurrency).
				FilterCached(cache, "ragpipe-index").
				ThenChunk(chunkerStage).
				ThenInBatch(embedStage).
				ThenStoreWith(persister).
				LogErrors()

			start := time.Now()
			count, elapsed, err := builder.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("ragpipe: index run failed after %s: %w", time.Since(start), err)
			}
			slog.Info("index run complete", "run_id", runID, "nodes", count, "elapsed", elapsed)
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", ".", "directory to walk and index")
	cmd.Flags().StringVar(&collection, "collection", "ragpipe", "qdrant collection name")
	cmd.Flags().StringVar(&qdrantAddr, "qdrant-addr", "", "qdrant host:port; empty uses the in-process store")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 1000, "characters per chunk")
	cmd.Flags().IntVar(&chunkOverlap, "chunk-overlap", 100, "overlap characters between chunks")
	cmd.Flags().IntVar(&concurrency, "concurrency", 10, "per-stage concurrency")
	cmd.Flags().StringVar(&configFile, "config", "", "optional config file (yaml/json/toml)")
	cmd.Flags().BoolVar(&useMemoryStore, "memory-store", false, "force the in-process store even if --qdrant-addr is set")

	return cmd
}

func splitHostPort(addr string) (string, int, error) {
	var host string
	var port int
	if _, err := fmt.Sscanf(addr, "%[^:]:%d", &host, &port); err != nil {
		return "", 0, fmt.Errorf("ragpipe: invalid --qdrant-addr %q, expected host:port", addr)
	}
	return host, port, nil
}
