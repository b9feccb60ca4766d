package converter

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/tsxify/pkg/config"
)

// DefaultCacheSize is the number of results kept when caching is enabled
// without an explicit size.
const DefaultCacheSize = 512

// Cache keeps recent conversion results keyed by unit content and
// configuration, so unchanged files are not converted twice (watch mode,
// long-running servers).
//
// Thread Safety: safe for concurrent use; the LRU is internally locked and
// statistics are atomic.
type Cache struct {
	results *lru.Cache[string, *Result]

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64

	logger *slog.Logger
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Entries   int
	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64
}

// NewCache creates a cache holding at most size results. A size of zero or
// less selects DefaultCacheSize.
func NewCache(size int, logger *slog.Logger) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Cache{logger: logger}
	results, err := lru.NewWithEvict(size, func(key string, _ *Result) {
		c.evictions.Add(1)
		logger.Debug("evicting cached result", "key", key)
	})
	if err != nil {
		// Only returned for a non-positive size.
		panic(err)
	}
	c.results = results
	return c
}

// Key derives the cache key of a unit under cfg. The name is part of the
// key because it selects the grammar and names anonymous default exports.
func Key(unit SourceUnit, cfg config.ConversionConfig) string {
	return ComputeContentHash([]byte(unit.Name+"\x00"+unit.Text)) + "|" + cfg.Fingerprint()
}

// ComputeContentHash returns the hex SHA-256 of content.
func ComputeContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// Get returns a copy of the cached result for key.
func (c *Cache) Get(key string) (*Result, bool) {
	result, ok := c.results.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return result.clone(), true
}

// Put stores a copy of result under key.
func (c *Cache) Put(key string, result *Result) {
	c.results.Add(key, result.clone())
}

// Purge drops every cached result.
func (c *Cache) Purge() {
	c.results.Purge()
}

// Stats returns current cache statistics.
func (c *Cache) Stats() CacheStats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	rate := 0.0
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	return CacheStats{
		Entries:   c.results.Len(),
		Hits:      hits,
		Misses:    misses,
		Evictions: c.evictions.Load(),
		HitRate:   rate,
	}
}
