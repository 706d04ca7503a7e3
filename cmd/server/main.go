// ABOUTME: Main entry point for the extraction engine MCP server with stdio transport
// ABOUTME: Wires config, LLM client, cache, storage, and engine, then serves tools
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/notewell/engine/internal/cache"
	"github.com/notewell/engine/internal/charm"
	"github.com/notewell/engine/internal/config"
	"github.com/notewell/engine/internal/engine"
	"github.com/notewell/engine/internal/evaluate"
	"github.com/notewell/engine/internal/index"
	"github.com/notewell/engine/internal/llm"
	"github.com/notewell/engine/internal/logging"
	"github.com/notewell/engine/internal/mcp"
	"github.com/notewell/engine/internal/rerank"
	"github.com/notewell/engine/internal/storage"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Println("Warning: OPENAI_API_KEY not set - embeddings and LLM features will not work")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(false)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	client, err := llm.NewClient(llm.FromConfig(cfg))
	if err != nil {
		log.Fatalf("Failed to initialize OpenAI client: %v", err)
	}

	var snapshots cache.SnapshotStore
	if charmClient, err := charm.GetClient(); err != nil {
		logger.Warn("charm unavailable, embedding cache starts cold", zap.Error(err))
	} else {
		snapshots = storage.NewCharmSnapshotStore(charmClient)
	}

	embCache := cache.New(client, snapshots, cache.Options{
		Capacity:       cfg.CacheCapacity,
		ProbeWindow:    cfg.CacheProbeWindow,
		ReuseThreshold: cfg.CacheReuseThreshold,
		SaveInterval:   cfg.CacheSaveInterval,
	}, logger)
	defer func() { _ = embCache.Close() }()

	store, err := storage.OpenDefault()
	if err != nil {
		log.Fatalf("Failed to open case store: %v", err)
	}
	defer func() { _ = store.Close() }()

	var scorer rerank.Scorer
	if cfg.RerankerEnabled {
		scorer = client
	}

	eng, err := engine.New(engine.Deps{
		Embedder:  embCache,
		Extractor: client,
		Reranker: rerank.New(scorer, rerank.Weights{
			Similarity: cfg.RerankerBlendSimilarity,
			Reranker:   cfg.RerankerBlendReranker,
		}, logger),
		Aggregator: evaluate.NewAggregator(client, evaluate.Options{
			OutlierThreshold: cfg.OutlierThreshold,
			RobustDeviation:  cfg.RobustDeviation,
			Workers:          cfg.WorkerPoolSize,
		}, logger),
		Index: index.New(),
		Store: store,
	}, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize engine: %v", err)
	}
	if err := eng.WarmStart(); err != nil {
		log.Fatalf("Failed to load stored cases: %v", err)
	}

	server := mcpserver.NewMCPServer(
		"Note Actions Engine",
		"0.1.0",
	)

	mcp.RegisterTools(server, eng)

	log.Println("noteactions MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
