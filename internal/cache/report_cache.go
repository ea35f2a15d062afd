package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// ReportCache memoizes computed admin reports as JSON.
type ReportCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewReportCache creates a new ReportCache. A zero ttl disables caching.
func NewReportCache(redis *RedisClient, ttl time.Duration) *ReportCache {
	return &ReportCache{
		redis: redis,
		ttl:   ttl,
	}
}

// key returns the Redis key for a report name.
func (c *ReportCache) key(name string) string {
	return fmt.Sprintf("report:%s", name)
}

// Get loads a cached report into dst. It returns ErrCacheMiss when the
// report is absent or caching is disabled.
func (c *ReportCache) Get(ctx context.Context, name string, dst interface{}) error {
	if c.ttl <= 0 {
		return ErrCacheMiss
	}
	raw, err := c.redis.Get(ctx, c.key(name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("failed to unmarshal report %s: %w", name, err)
	}
	return nil
}

// Set stores a report for the configured TTL.
func (c *ReportCache) Set(ctx context.Context, name string, report interface{}) error {
	if c.ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report %s: %w", name, err)
	}
	return c.redis.Set(ctx, c.key(name), string(data), c.ttl)
}

// Invalidate drops cached reports so the next read recomputes them.
func (c *ReportCache) Invalidate(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = c.key(n)
	}
	return c.redis.Delete(ctx, keys...)
}
