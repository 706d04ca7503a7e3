// ABOUTME: Centralized configuration for the extraction and evaluation engine
// ABOUTME: Loads an optional TOML file, then environment variables with validation
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all tunable parameters for the engine
type Config struct {
	// Charm settings
	CharmHost   string `toml:"charm_host"`
	CharmDBName string `toml:"charm_db"`

	// OpenAI settings
	OpenAIKey      string        `toml:"-"`
	ChatModel      string        `toml:"chat_model"`
	EmbeddingModel string        `toml:"embedding_model"`
	Timeout        time.Duration `toml:"-"`
	MaxRetries     int           `toml:"max_retries"`
	RetryDelay     time.Duration `toml:"-"`

	// Cache settings
	CacheCapacity       int           `toml:"cache_capacity"`
	CacheProbeWindow    int           `toml:"cache_probe_window"`
	CacheReuseThreshold float64       `toml:"cache_reuse_threshold"`
	CacheSaveInterval   time.Duration `toml:"-"`

	// Retrieval settings
	SearchLimit   int     `toml:"search_limit"`
	MinSimilarity float64 `toml:"min_similarity"`

	// Transcripts above this estimated token count are embedded in
	// segments and mean-pooled
	EmbedMaxTokens int `toml:"embed_max_tokens"`

	// Relevance weights; must sum to 1.0
	WeightSimilarity   float64 `toml:"weight_similarity"`
	WeightDomain       float64 `toml:"weight_domain"`
	WeightQuality      float64 `toml:"weight_quality"`
	WeightCompleteness float64 `toml:"weight_completeness"`

	// Reranker settings
	RerankerEnabled         bool    `toml:"reranker_enabled"`
	RerankerBlendSimilarity float64 `toml:"reranker_blend_similarity"`
	RerankerBlendReranker   float64 `toml:"reranker_blend_reranker"`

	// Context budget
	ContextMaxTokens     int `toml:"context_max_tokens"`
	ContextMaxCandidates int `toml:"context_max_candidates"`

	// Evaluation settings
	OutlierThreshold float64 `toml:"outlier_threshold"`
	RobustDeviation  float64 `toml:"robust_deviation"`

	// Concurrency
	WorkerPoolSize int           `toml:"worker_pool_size"`
	RequestTimeout time.Duration `toml:"-"`
}

// Load reads configuration from an optional TOML file path in
// ENGINE_CONFIG, then applies environment variable overrides.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("ENGINE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	return cfg, cfg.Validate()
}

// Default returns the built-in configuration with no file or environment
// overrides applied
func Default() *Config {
	return defaults()
}

func defaults() *Config {
	return &Config{
		CharmHost:   "cloud.charm.sh",
		CharmDBName: "noteactions",

		ChatModel:      "gpt-4o-mini",
		EmbeddingModel: "text-embedding-3-small",
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,

		CacheCapacity:       1000,
		CacheProbeWindow:    32,
		CacheReuseThreshold: 0.98,
		CacheSaveInterval:   5 * time.Minute,

		SearchLimit:   10,
		MinSimilarity: 0.3,

		EmbedMaxTokens: 8000,

		WeightSimilarity:   0.4,
		WeightDomain:       0.3,
		WeightQuality:      0.2,
		WeightCompleteness: 0.1,

		RerankerEnabled:         true,
		RerankerBlendSimilarity: 0.3,
		RerankerBlendReranker:   0.7,

		ContextMaxTokens:     2000,
		ContextMaxCandidates: 5,

		OutlierThreshold: 0.4,
		RobustDeviation:  0.25,

		WorkerPoolSize: 4,
		RequestTimeout: 2 * time.Minute,
	}
}

func applyEnv(cfg *Config) {
	cfg.CharmHost = getEnv("CHARM_HOST", cfg.CharmHost)
	cfg.CharmDBName = getEnv("CHARM_DB", cfg.CharmDBName)
	cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	cfg.ChatModel = getEnv("ENGINE_CHAT_MODEL", cfg.ChatModel)
	cfg.EmbeddingModel = getEnv("ENGINE_EMBEDDING_MODEL", cfg.EmbeddingModel)
	cfg.Timeout = getEnvDuration("OPENAI_TIMEOUT", cfg.Timeout)
	cfg.MaxRetries = getEnvInt("OPENAI_MAX_RETRIES", cfg.MaxRetries)
	cfg.RetryDelay = getEnvDuration("OPENAI_RETRY_DELAY", cfg.RetryDelay)
	cfg.CacheCapacity = getEnvInt("ENGINE_CACHE_CAPACITY", cfg.CacheCapacity)
	cfg.CacheReuseThreshold = getEnvFloat("ENGINE_CACHE_REUSE_THRESHOLD", cfg.CacheReuseThreshold)
	cfg.SearchLimit = getEnvInt("ENGINE_SEARCH_LIMIT", cfg.SearchLimit)
	cfg.MinSimilarity = getEnvFloat("ENGINE_MIN_SIMILARITY", cfg.MinSimilarity)
	cfg.EmbedMaxTokens = getEnvInt("ENGINE_EMBED_MAX_TOKENS", cfg.EmbedMaxTokens)
	cfg.RerankerEnabled = getEnvBool("ENGINE_RERANKER_ENABLED", cfg.RerankerEnabled)
	cfg.ContextMaxTokens = getEnvInt("ENGINE_CONTEXT_MAX_TOKENS", cfg.ContextMaxTokens)
	cfg.ContextMaxCandidates = getEnvInt("ENGINE_CONTEXT_MAX_CANDIDATES", cfg.ContextMaxCandidates)
	cfg.WorkerPoolSize = getEnvInt("ENGINE_WORKERS", cfg.WorkerPoolSize)
	cfg.RequestTimeout = getEnvDuration("ENGINE_REQUEST_TIMEOUT", cfg.RequestTimeout)
}

// Validate checks ranges and the relevance-weight sum
func (c *Config) Validate() error {
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		return fmt.Errorf("ENGINE_MIN_SIMILARITY must be 0-1, got %f", c.MinSimilarity)
	}
	if c.CacheReuseThreshold < 0 || c.CacheReuseThreshold > 1 {
		return fmt.Errorf("ENGINE_CACHE_REUSE_THRESHOLD must be 0-1, got %f", c.CacheReuseThreshold)
	}
	if c.WorkerPoolSize < 1 {
		return fmt.Errorf("ENGINE_WORKERS must be at least 1, got %d", c.WorkerPoolSize)
	}
	sum := c.WeightSimilarity + c.WeightDomain + c.WeightQuality + c.WeightCompleteness
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("relevance weights must sum to 1.0, got %f", sum)
	}
	blend := c.RerankerBlendSimilarity + c.RerankerBlendReranker
	if blend < 0.999 || blend > 1.001 {
		return fmt.Errorf("reranker blend weights must sum to 1.0, got %f", blend)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
