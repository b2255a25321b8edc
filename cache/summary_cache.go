package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"
)

// SummaryCache caches LLM batch summaries keyed by a hash of the alert
// data, plus a per-symbol cooldown to cap how often a symbol can trigger
// a fresh summary.
type SummaryCache struct {
	redis *RedisClient
}

// NewSummaryCache creates a new summary cache instance
func NewSummaryCache(redis *RedisClient) *SummaryCache {
	return &SummaryCache{
		redis: redis,
	}
}

// GetSummary retrieves a cached summary for an alert batch hash.
// Returns the summary and true if found, "" and false otherwise.
func (c *SummaryCache) GetSummary(ctx context.Context, dataHash string) (string, bool) {
	if c.redis == nil {
		return "", false
	}

	var summary string
	if err := c.redis.Get(ctx, "summary:"+dataHash, &summary); err != nil {
		return "", false
	}
	return summary, true
}

// SetSummary caches a summary for an alert batch hash.
func (c *SummaryCache) SetSummary(ctx context.Context, dataHash, summary string, ttl time.Duration) error {
	if c.redis == nil {
		return fmt.Errorf("redis client not available")
	}
	return c.redis.Set(ctx, "summary:"+dataHash, summary, ttl)
}

// SetCooldown marks a symbol as recently summarized.
func (c *SummaryCache) SetCooldown(ctx context.Context, symbol string, ttl time.Duration) error {
	if c.redis == nil {
		return fmt.Errorf("redis client not available")
	}
	return c.redis.Set(ctx, "summary:cooldown:"+symbol, time.Now().Unix(), ttl)
}

// IsInCooldown checks if a symbol is in its summary cooldown period.
func (c *SummaryCache) IsInCooldown(ctx context.Context, symbol string) bool {
	if c.redis == nil {
		return false
	}

	var timestamp int64
	if err := c.redis.Get(ctx, "summary:cooldown:"+symbol, &timestamp); err != nil {
		return false
	}
	return timestamp > 0
}

// GenerateDataHash hashes an alert batch so unchanged batches hit the
// summary cache instead of the API.
func GenerateDataHash(data interface{}) string {
	jsonData, _ := json.Marshal(data)
	hash := md5.Sum(jsonData)
	return fmt.Sprintf("%x", hash[:8]) // first 8 bytes is plenty for a cache key
}
