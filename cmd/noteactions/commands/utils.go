// ABOUTME: Shared bootstrap and formatting helpers for CLI commands
// ABOUTME: Wires config, LLM client, cache, storage, and engine in one place
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/notewell/engine/internal/cache"
	"github.com/notewell/engine/internal/charm"
	"github.com/notewell/engine/internal/config"
	"github.com/notewell/engine/internal/engine"
	"github.com/notewell/engine/internal/evaluate"
	"github.com/notewell/engine/internal/index"
	"github.com/notewell/engine/internal/llm"
	"github.com/notewell/engine/internal/logging"
	"github.com/notewell/engine/internal/models"
	"github.com/notewell/engine/internal/rerank"
	"github.com/notewell/engine/internal/storage"
)

// app bundles everything a command needs, with a single shutdown hook
type app struct {
	engine *engine.Engine
	store  *storage.Store
	cache  *cache.Cache
	logger *zap.Logger
}

func (a *app) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("cache shutdown failed", zap.Error(err))
		}
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	_ = a.logger.Sync()
}

// buildApp wires the full pipeline from configuration. The charm snapshot
// backend is optional: without it the cache simply starts cold.
func buildApp() (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.New(verbose)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	client, err := llm.NewClient(llm.FromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("initializing OpenAI client: %w", err)
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

	store, err := storage.OpenDefault()
	if err != nil {
		return nil, fmt.Errorf("opening case store: %w", err)
	}

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
		return nil, err
	}
	if err := eng.WarmStart(); err != nil {
		return nil, err
	}

	return &app{engine: eng, store: store, cache: embCache, logger: logger}, nil
}

// readTranscript resolves a transcript argument: a path to a file, or "-"
// for stdin
func readTranscript(arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading transcript from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("reading transcript file: %w", err)
	}
	return string(data), nil
}

// readExtractionFile loads an extraction JSON document
func readExtractionFile(path string) (*models.Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading extraction file: %w", err)
	}
	var extraction models.Extraction
	if err := json.Unmarshal(data, &extraction); err != nil {
		return nil, fmt.Errorf("parsing extraction file %s: %w", path, err)
	}
	return &extraction, nil
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	} else if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	} else if diff < 7*24*time.Hour {
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
	return t.Format("2006-01-02")
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}
