package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"revpulse/internal/infrastructure"
)

// Cache holds the dataset built from the current source set. Get serves the
// held dataset without touching the sources; they are read again only by the
// first Get, a Get after Invalidate, and Reload, which rebuilds only when
// their fingerprint changed. A failed build never replaces the held dataset
// and is never returned as one.
type Cache struct {
	loader  *Loader
	logger  *slog.Logger
	metrics *infrastructure.Metrics
	group   singleflight.Group

	mutex         sync.RWMutex
	current       *LoadResult
	hitCount      int64
	missCount     int64
	invalidations int64
	lastError     error
}

// CacheStats is a snapshot of cache counters
type CacheStats struct {
	Hits          int64     `json:"hits"`
	Misses        int64     `json:"misses"`
	HitRatio      float64   `json:"hit_ratio"`
	Invalidations int64     `json:"invalidations"`
	Fingerprint   string    `json:"fingerprint,omitempty"`
	Records       int       `json:"records"`
	LoadedAt      time.Time `json:"loaded_at,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
}

// NewCache creates an empty cache over loader
func NewCache(loader *Loader, logger *slog.Logger, metrics *infrastructure.Metrics) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		loader:  loader,
		logger:  logger.With(slog.String("component", "dataset_cache")),
		metrics: metrics,
	}
}

// Get returns the held dataset, building it when there is none. Concurrent
// callers share one build.
func (c *Cache) Get(ctx context.Context) (*LoadResult, error) {
	if current := c.lookup(ctx); current != nil {
		return current, nil
	}
	return c.do("build", func() (*LoadResult, error) {
		if current := c.Current(); current != nil {
			return current, nil
		}
		return c.refresh(ctx)
	})
}

// Reload re-discovers the sources and rebuilds the dataset when they changed
// since the last build. On failure the held dataset stays current.
func (c *Cache) Reload(ctx context.Context) (*LoadResult, error) {
	return c.do("reload", func() (*LoadResult, error) {
		return c.refresh(ctx)
	})
}

func (c *Cache) do(key string, fn func() (*LoadResult, error)) (*LoadResult, error) {
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return nil, err
	}
	return v.(*LoadResult), nil
}

func (c *Cache) lookup(ctx context.Context) *LoadResult {
	c.mutex.Lock()
	current := c.current
	if current != nil {
		c.hitCount++
	}
	c.mutex.Unlock()

	if current != nil {
		c.metrics.RecordCacheLookup(ctx, true)
	}
	return current
}

func (c *Cache) refresh(ctx context.Context) (*LoadResult, error) {
	srcs, err := c.loader.Discover(ctx)
	if err != nil {
		c.setError(err)
		return nil, err
	}
	fingerprint := Fingerprint(srcs)

	c.mutex.Lock()
	if c.current != nil && c.current.Fingerprint == fingerprint {
		c.hitCount++
		c.lastError = nil
		current := c.current
		c.mutex.Unlock()
		c.metrics.RecordCacheLookup(ctx, true)
		return current, nil
	}
	c.missCount++
	c.mutex.Unlock()
	c.metrics.RecordCacheLookup(ctx, false)

	c.logger.InfoContext(ctx, "building dataset",
		slog.String("fingerprint", fingerprint[:12]))

	result, err := c.loader.Build(ctx, srcs)
	if err != nil {
		c.setError(err)
		return nil, err
	}

	c.mutex.Lock()
	c.current = result
	c.lastError = nil
	c.mutex.Unlock()
	return result, nil
}

func (c *Cache) setError(err error) {
	c.mutex.Lock()
	c.lastError = err
	c.mutex.Unlock()
}

// Current returns the held dataset, or nil
func (c *Cache) Current() *LoadResult {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.current
}

// Invalidate drops the held dataset so the next Get rebuilds from scratch
func (c *Cache) Invalidate() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.current = nil
	c.invalidations++
}

// Stats returns cache statistics
func (c *Cache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	stats := CacheStats{
		Hits:          c.hitCount,
		Misses:        c.missCount,
		Invalidations: c.invalidations,
	}
	if total := c.hitCount + c.missCount; total > 0 {
		stats.HitRatio = float64(c.hitCount) / float64(total)
	}
	if c.current != nil {
		stats.Fingerprint = c.current.Fingerprint
		stats.Records = c.current.Dataset.Len()
		stats.LoadedAt = c.current.LoadedAt
	}
	if c.lastError != nil {
		stats.LastError = c.lastError.Error()
	}
	return stats
}
