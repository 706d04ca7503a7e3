// ABOUTME: Embedding cache with exact-hash lookup, near-duplicate probe, and LRU eviction
// ABOUTME: Sharded locks collapse concurrent identical-text lookups to one computation
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const numShards = 16

// Embedder computes an embedding vector for text
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)
}

// SnapshotStore persists and restores the cache across restarts
type SnapshotStore interface {
	SaveCacheSnapshot(entries []SnapshotEntry) error
	LoadCacheSnapshot() ([]SnapshotEntry, error)
}

// SnapshotEntry is the durable form of one cache entry
type SnapshotEntry struct {
	TextHash  string             `json:"text_hash"`
	Embedding []float64          `json:"embedding"`
	Signature map[string]float64 `json:"signature,omitempty"`
	LastUsed  time.Time          `json:"last_used_at"`
}

// Options configures cache behavior
type Options struct {
	Capacity       int
	ProbeWindow    int
	ReuseThreshold float64
	SaveInterval   time.Duration
}

// DefaultOptions returns the default cache configuration
func DefaultOptions() Options {
	return Options{
		Capacity:       1000,
		ProbeWindow:    32,
		ReuseThreshold: 0.98,
		SaveInterval:   5 * time.Minute,
	}
}

// Stats reports cache effectiveness counters
type Stats struct {
	Entries   int     `json:"entries"`
	Hits      int64   `json:"hits"`
	ProbeHits int64   `json:"probe_hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`
}

type entry struct {
	hash      string
	vector    []float64
	signature map[string]float64
	lastUsed  time.Time
}

type inflight struct {
	done chan struct{}
	vec  []float64
	err  error
}

type shard struct {
	mu       sync.Mutex
	entries  map[string]*entry
	pending  map[string]*inflight
	capacity int
}

// Cache memoizes embeddings keyed by normalized-text hash. Identical text
// within the retention window always returns the cached vector with no
// recomputation; near-duplicate text may reuse a recent vector when its
// token-frequency signature clears the reuse threshold.
type Cache struct {
	shards   [numShards]*shard
	embedder Embedder
	store    SnapshotStore
	opts     Options
	logger   *zap.Logger

	statsMu   sync.Mutex
	hits      int64
	probeHits int64
	misses    int64
	evictions int64

	recentMu sync.Mutex
	recent   []*entry // ring of most-recently-inserted entries for the probe

	stopAutosave chan struct{}
	autosaveDone chan struct{}
	closeOnce    sync.Once
}

// New creates a cache, reloading any persisted snapshot before serving.
// A corrupt snapshot is discarded with a warning; the cache starts cold.
func New(embedder Embedder, store SnapshotStore, opts Options, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultOptions().Capacity
	}
	if opts.ProbeWindow <= 0 {
		opts.ProbeWindow = DefaultOptions().ProbeWindow
	}

	c := &Cache{
		embedder:     embedder,
		store:        store,
		opts:         opts,
		logger:       logger,
		stopAutosave: make(chan struct{}),
		autosaveDone: make(chan struct{}),
	}
	perShard := opts.Capacity / numShards
	if perShard < 1 {
		perShard = 1
	}
	for i := range c.shards {
		c.shards[i] = &shard{
			entries:  make(map[string]*entry),
			pending:  make(map[string]*inflight),
			capacity: perShard,
		}
	}

	c.reload()

	if store != nil && opts.SaveInterval > 0 {
		go c.autosave()
	} else {
		close(c.autosaveDone)
	}

	return c
}

// Embed returns the embedding for text, computing it at most once per
// distinct text even under concurrent callers.
func (c *Cache) Embed(ctx context.Context, text string) ([]float64, error) {
	normalized := normalizeText(text)
	hash := hashText(normalized)
	sh := c.shards[shardIndex(hash)]

	sh.mu.Lock()
	if e, ok := sh.entries[hash]; ok {
		e.lastUsed = time.Now()
		sh.mu.Unlock()
		c.bump(&c.hits)
		return e.vector, nil
	}

	// Another caller may already be computing this text
	if fl, ok := sh.pending[hash]; ok {
		sh.mu.Unlock()
		select {
		case <-fl.done:
			return fl.vec, fl.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	fl := &inflight{done: make(chan struct{})}
	sh.pending[hash] = fl
	sh.mu.Unlock()

	// Near-duplicate probe against recent entries, outside the shard lock
	if vec := c.probe(normalized); vec != nil {
		c.bump(&c.probeHits)
		c.finish(sh, hash, normalized, vec, nil, fl)
		return vec, nil
	}

	c.bump(&c.misses)
	vec, err := c.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		err = fmt.Errorf("embedding computation failed: %w", err)
	}
	c.finish(sh, hash, normalized, vec, err, fl)
	return vec, err
}

// finish publishes the computation result, stores successful vectors, and
// wakes any waiting callers.
func (c *Cache) finish(sh *shard, hash, normalized string, vec []float64, err error, fl *inflight) {
	fl.vec = vec
	fl.err = err

	sh.mu.Lock()
	delete(sh.pending, hash)
	if err == nil {
		e := &entry{
			hash:      hash,
			vector:    vec,
			signature: tokenSignature(normalized),
			lastUsed:  time.Now(),
		}
		sh.entries[hash] = e
		c.evictLocked(sh)
		c.remember(e)
	}
	sh.mu.Unlock()

	close(fl.done)
}

// evictLocked drops the least-recently-used entries while the shard is
// over capacity. Caller holds the shard lock.
func (c *Cache) evictLocked(sh *shard) {
	for len(sh.entries) > sh.capacity {
		var oldest *entry
		for _, e := range sh.entries {
			if oldest == nil || e.lastUsed.Before(oldest.lastUsed) {
				oldest = e
			}
		}
		if oldest == nil {
			return
		}
		delete(sh.entries, oldest.hash)
		c.bump(&c.evictions)
	}
}

// probe compares the text's token-frequency signature against recent
// entries; a cosine similarity at or above the reuse threshold reuses the
// stored vector instead of recomputing.
func (c *Cache) probe(normalized string) []float64 {
	if c.opts.ReuseThreshold <= 0 || c.opts.ReuseThreshold > 1 {
		return nil
	}
	sig := tokenSignature(normalized)
	if len(sig) == 0 {
		return nil
	}

	c.recentMu.Lock()
	defer c.recentMu.Unlock()
	for i := len(c.recent) - 1; i >= 0; i-- {
		e := c.recent[i]
		if signatureCosine(sig, e.signature) >= c.opts.ReuseThreshold {
			e.lastUsed = time.Now()
			return e.vector
		}
	}
	return nil
}

// remember adds an entry to the probe ring, trimming to the window size
func (c *Cache) remember(e *entry) {
	c.recentMu.Lock()
	c.recent = append(c.recent, e)
	if len(c.recent) > c.opts.ProbeWindow {
		c.recent = c.recent[len(c.recent)-c.opts.ProbeWindow:]
	}
	c.recentMu.Unlock()
}

// Snapshot persists all current entries to the snapshot store
func (c *Cache) Snapshot() error {
	if c.store == nil {
		return nil
	}

	var entries []SnapshotEntry
	for _, sh := range c.shards {
		sh.mu.Lock()
		for _, e := range sh.entries {
			entries = append(entries, SnapshotEntry{
				TextHash:  e.hash,
				Embedding: e.vector,
				Signature: e.signature,
				LastUsed:  e.lastUsed,
			})
		}
		sh.mu.Unlock()
	}

	// Most recent first so a truncated restore keeps the hottest entries
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastUsed.After(entries[j].LastUsed)
	})

	if err := c.store.SaveCacheSnapshot(entries); err != nil {
		return fmt.Errorf("saving cache snapshot: %w", err)
	}
	return nil
}

// reload restores entries from the snapshot store, starting cold on failure
func (c *Cache) reload() {
	if c.store == nil {
		return
	}

	entries, err := c.store.LoadCacheSnapshot()
	if err != nil {
		c.logger.Warn("cache snapshot unreadable, starting cold", zap.Error(err))
		return
	}

	loaded := 0
	for i := range entries {
		se := entries[i]
		if se.TextHash == "" || len(se.Embedding) == 0 {
			continue
		}
		e := &entry{
			hash:      se.TextHash,
			vector:    se.Embedding,
			signature: se.Signature,
			lastUsed:  se.LastUsed,
		}
		sh := c.shards[shardIndex(se.TextHash)]
		sh.mu.Lock()
		if len(sh.entries) < sh.capacity {
			sh.entries[se.TextHash] = e
			loaded++
			if len(e.signature) > 0 {
				c.remember(e)
			}
		}
		sh.mu.Unlock()
	}

	if loaded > 0 {
		c.logger.Info("reloaded embedding cache snapshot", zap.Int("entries", loaded))
	}
}

// autosave snapshots on a fixed cadence until Close
func (c *Cache) autosave() {
	defer close(c.autosaveDone)
	ticker := time.NewTicker(c.opts.SaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Snapshot(); err != nil {
				c.logger.Warn("periodic cache snapshot failed", zap.Error(err))
			}
		case <-c.stopAutosave:
			return
		}
	}
}

// Close stops the autosave loop and takes a final snapshot
func (c *Cache) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.stopAutosave)
		<-c.autosaveDone
		err = c.Snapshot()
	})
	return err
}

// GetStats returns current cache counters
func (c *Cache) GetStats() Stats {
	c.statsMu.Lock()
	hits, probeHits, misses, evictions := c.hits, c.probeHits, c.misses, c.evictions
	c.statsMu.Unlock()

	entries := 0
	for _, sh := range c.shards {
		sh.mu.Lock()
		entries += len(sh.entries)
		sh.mu.Unlock()
	}

	total := hits + probeHits + misses
	rate := 0.0
	if total > 0 {
		rate = float64(hits+probeHits) / float64(total)
	}

	return Stats{
		Entries:   entries,
		Hits:      hits,
		ProbeHits: probeHits,
		Misses:    misses,
		Evictions: evictions,
		HitRate:   rate,
	}
}

func (c *Cache) bump(counter *int64) {
	c.statsMu.Lock()
	*counter++
	c.statsMu.Unlock()
}

func normalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(text))), " ")
}

func hashText(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// shardIndex maps a hex digest to a shard by decoding its leading byte.
// Indexing the hex string directly would reach only 10 of the 16 shards.
func shardIndex(hash string) int {
	if len(hash) < 2 {
		return 0
	}
	b, err := hex.DecodeString(hash[:2])
	if err != nil {
		return 0
	}
	return int(b[0]) % numShards
}

// tokenSignature builds a term-frequency vector used by the cheap
// near-duplicate probe. Cosine between signatures approximates text
// similarity without an embedding call.
func tokenSignature(normalized string) map[string]float64 {
	sig := make(map[string]float64)
	for _, tok := range strings.Fields(normalized) {
		sig[tok]++
	}
	return sig
}

func signatureCosine(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	var dot, normA, normB float64
	for tok, va := range a {
		normA += va * va
		if vb, ok := b[tok]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		normB += vb * vb
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
