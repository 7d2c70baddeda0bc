// Package cache keeps recent scrape results in Redis so identical requests
// within a short window do not spend another browser round-trip. It is
// strictly best-effort: a nil cache or a failing Redis never fails a scrape.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nofendian17/stock-news-mcp/internal/news"
)

const keyPrefix = "saham:scrape:"

// Cache is a TTL-based result cache. The nil *Cache is a valid, disabled
// cache.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

// New wraps an existing Redis client.
func New(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *Cache {
	return &Cache{rdb: rdb, ttl: ttl, log: log.Named("cache")}
}

// Key derives the cache key from the full request. Two requests differing
// in any parameter never share an entry.
func Key(params news.RequestParams) string {
	raw, _ := json.Marshal(params)
	sum := sha1.Sum(raw)
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached articles for params, if any.
func (c *Cache) Get(ctx context.Context, params news.RequestParams) ([]news.Article, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, Key(params)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var articles []news.Article
	if err := json.Unmarshal(raw, &articles); err != nil {
		c.log.Warn("cache entry corrupt, ignoring", zap.Error(err))
		return nil, false
	}
	return articles, true
}

// Set stores articles under the request's key for the configured TTL.
func (c *Cache) Set(ctx context.Context, params news.RequestParams, articles []news.Article) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(articles)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, Key(params), raw, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", zap.Error(err))
	}
}

// Close releases the underlying Redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
