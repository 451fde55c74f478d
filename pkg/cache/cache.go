// Package cache implements the two-tier query-result cache: a bounded
// in-process LRU tier in front of an unbounded durable tier of per-entry
// blobs, with TTL enforcement on both. Cache persistence is an optimization,
// never a correctness dependency: durable-tier failures degrade to misses on
// read and are logged-and-swallowed on write.
package cache

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/corebrain-ai/querycore/pkg/metadata"
	"github.com/corebrain-ai/querycore/pkg/models"
)

const (
	// DefaultTTL is the entry lifetime when none is configured.
	DefaultTTL = 24 * time.Hour
	// DefaultMemoryCapacity bounds the in-process tier.
	DefaultMemoryCapacity = 100

	topQueries = 5
)

type memEntry struct {
	payload   any
	createdAt time.Time
}

// Cache is the tiered query-result cache.
type Cache struct {
	mu   sync.Mutex
	mem  *lru.Cache[string, memEntry]
	disk *diskTier
	meta *metadata.Store
	ttl  time.Duration
	log  zerolog.Logger
}

// New creates a Cache storing durable blobs under dir. The metadata store is
// optional instrumentation; pass nil to disable it. Non-positive ttl and
// capacity fall back to the defaults.
func New(dir string, ttl time.Duration, capacity int, meta *metadata.Store, logger zerolog.Logger) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}

	mem, err := lru.New[string, memEntry](capacity)
	if err != nil {
		return nil, err
	}

	disk, err := newDiskTier(dir)
	if err != nil {
		return nil, err
	}

	return &Cache{
		mem:  mem,
		disk: disk,
		meta: meta,
		ttl:  ttl,
		log:  logger,
	}, nil
}

// Get returns the cached result for (query, configID, collection), or false
// on a miss. A memory hit promotes the entry to most-recently-used; a disk
// hit additionally populates the memory tier. Expired or unreadable entries
// are removed and reported as misses, never as errors.
func (c *Cache) Get(query, configID, collection string) (any, bool) {
	hash := HashQuery(query, configID, collection)

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.mem.Get(hash); ok {
		if time.Since(e.createdAt) < c.ttl {
			c.touchMeta(hash, query, configID)
			return e.payload, true
		}
		c.mem.Remove(hash)
	}

	data, mtime, err := c.disk.read(hash)
	if err != nil {
		if !os.IsNotExist(err) {
			c.log.Warn().Err(err).Str("hash", hash).Msg("disk tier read failed")
		}
		return nil, false
	}

	if time.Since(mtime) >= c.ttl {
		if err := c.disk.remove(hash); err != nil {
			c.log.Warn().Err(err).Str("hash", hash).Msg("expired blob removal failed")
		}
		c.dropMeta(hash)
		return nil, false
	}

	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		c.log.Warn().Err(err).Str("hash", hash).Msg("corrupt cache blob, deleting")
		if err := c.disk.remove(hash); err != nil {
			c.log.Warn().Err(err).Str("hash", hash).Msg("corrupt blob removal failed")
		}
		c.dropMeta(hash)
		return nil, false
	}

	c.mem.Add(hash, memEntry{payload: payload, createdAt: time.Now()})
	c.touchMeta(hash, query, configID)
	return payload, true
}

// Set stores a result in both tiers, evicting the least-recently-used memory
// entry at capacity. Durable-tier and metadata failures are logged and
// swallowed; the caller's primary result must never be blocked by the cache.
func (c *Cache) Set(query, configID, collection string, result any) {
	hash := HashQuery(query, configID, collection)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.mem.Add(hash, memEntry{payload: result, createdAt: time.Now()})

	data, err := json.Marshal(result)
	if err != nil {
		c.log.Warn().Err(err).Str("hash", hash).Msg("cache serialization failed")
		return
	}
	if err := c.disk.write(hash, data); err != nil {
		c.log.Warn().Err(err).Str("hash", hash).Msg("disk tier write failed")
		return
	}

	c.touchMeta(hash, query, configID)
}

// Clear empties the cache. A positive olderThan removes only entries whose
// last access predates now-olderThan; otherwise both tiers and the metadata
// index are emptied entirely.
func (c *Cache) Clear(olderThan time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if olderThan <= 0 {
		c.mem.Purge()
		if err := c.disk.clear(); err != nil {
			return err
		}
		if c.meta != nil {
			return c.meta.Clear()
		}
		return nil
	}

	for _, hash := range c.mem.Keys() {
		if e, ok := c.mem.Peek(hash); ok && time.Since(e.createdAt) > olderThan {
			c.mem.Remove(hash)
		}
	}

	if c.meta == nil {
		return nil
	}

	hashes, err := c.meta.HashesOlderThan(time.Now().Add(-olderThan))
	if err != nil {
		return err
	}
	for _, hash := range hashes {
		if err := c.disk.remove(hash); err != nil {
			return err
		}
		if err := c.meta.Delete(hash); err != nil {
			return err
		}
	}
	return nil
}

// Stats reports per-tier entry counts, the most-hit queries and mean age.
func (c *Cache) Stats() (models.CacheStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	diskCount, err := c.disk.count()
	if err != nil {
		return models.CacheStats{}, err
	}

	stats := models.CacheStats{
		MemoryEntries: c.mem.Len(),
		DiskEntries:   diskCount,
		CacheDir:      c.disk.dir,
	}

	if c.meta != nil {
		total, top, avgAge, err := c.meta.Stats(topQueries)
		if err != nil {
			return models.CacheStats{}, err
		}
		stats.TotalTracked = total
		stats.TopQueries = top
		stats.AvgAgeSeconds = avgAge
	}

	return stats, nil
}

func (c *Cache) touchMeta(hash, query, configID string) {
	if c.meta == nil {
		return
	}
	if err := c.meta.Touch(hash, query, configID); err != nil {
		c.log.Debug().Err(err).Str("hash", hash).Msg("metadata update failed")
	}
}

// dropMeta removes the metadata row for a blob deleted on read, so the index
// never references a missing entry.
func (c *Cache) dropMeta(hash string) {
	if c.meta == nil {
		return
	}
	if err := c.meta.Delete(hash); err != nil {
		c.log.Debug().Err(err).Str("hash", hash).Msg("metadata delete failed")
	}
}
