// ABOUTME: Tests for configuration loading, env overrides, and validation
// ABOUTME: Verifies defaults, TOML merging, and weight-sum checks
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENGINE_CONFIG", "")
	t.Setenv("OPENAI_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ChatModel != "gpt-4o-mini" {
		t.Errorf("ChatModel = %q, want gpt-4o-mini", cfg.ChatModel)
	}
	if cfg.CacheReuseThreshold != 0.98 {
		t.Errorf("CacheReuseThreshold = %v, want 0.98", cfg.CacheReuseThreshold)
	}
	if cfg.WorkerPoolSize != 4 {
		t.Errorf("WorkerPoolSize = %v, want 4", cfg.WorkerPoolSize)
	}
	if cfg.WeightSimilarity != 0.4 || cfg.WeightDomain != 0.3 {
		t.Errorf("relevance weights = %v/%v, want 0.4/0.3", cfg.WeightSimilarity, cfg.WeightDomain)
	}
	if cfg.EmbedMaxTokens != 8000 {
		t.Errorf("EmbedMaxTokens = %v, want 8000", cfg.EmbedMaxTokens)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ENGINE_CONFIG", "")
	t.Setenv("ENGINE_WORKERS", "8")
	t.Setenv("ENGINE_MIN_SIMILARITY", "0.5")
	t.Setenv("OPENAI_TIMEOUT", "45s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.WorkerPoolSize != 8 {
		t.Errorf("WorkerPoolSize = %v, want 8", cfg.WorkerPoolSize)
	}
	if cfg.MinSimilarity != 0.5 {
		t.Errorf("MinSimilarity = %v, want 0.5", cfg.MinSimilarity)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", cfg.Timeout)
	}
}

func TestLoad_TOMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.toml")
	content := "search_limit = 20\nmin_similarity = 0.25\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	t.Setenv("ENGINE_CONFIG", path)
	t.Setenv("ENGINE_SEARCH_LIMIT", "")
	t.Setenv("ENGINE_MIN_SIMILARITY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.SearchLimit != 20 {
		t.Errorf("SearchLimit = %v, want 20 from TOML", cfg.SearchLimit)
	}
	if cfg.MinSimilarity != 0.25 {
		t.Errorf("MinSimilarity = %v, want 0.25 from TOML", cfg.MinSimilarity)
	}
}

func TestValidate_WeightsMustSumToOne(t *testing.T) {
	cfg := defaults()
	cfg.WeightSimilarity = 0.9

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject weights that do not sum to 1.0")
	}
}

func TestValidate_RejectsBadWorkerCount(t *testing.T) {
	cfg := defaults()
	cfg.WorkerPoolSize = 0

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject zero workers")
	}
}
