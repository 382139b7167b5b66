package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	transcriptTTL = 7 * 24 * time.Hour
	reportTTL     = 24 * time.Hour
)

// Cache is a thin, nil-safe wrapper over Redis. With no Redis configured the
// zero-value cache misses on every read and drops every write, so callers
// never branch on availability.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) GetTranscript(ctx context.Context, videoID string) (string, bool) {
	return c.get(ctx, "transcript:"+videoID)
}

func (c *Cache) SetTranscript(ctx context.Context, videoID, text string) {
	c.set(ctx, "transcript:"+videoID, text, transcriptTTL)
}

func (c *Cache) GetReport(ctx context.Context, reportType, key string) (string, bool) {
	return c.get(ctx, "report:"+reportType+":"+key)
}

func (c *Cache) SetReport(ctx context.Context, reportType, key, body string) {
	c.set(ctx, "report:"+reportType+":"+key, body, reportTTL)
}

func (c *Cache) get(ctx context.Context, key string) (string, bool) {
	if c == nil || c.client == nil {
		return "", false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *Cache) set(ctx context.Context, key, val string, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Set(ctx, key, val, ttl)
}
