package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nofendian17/stock-news-mcp/internal/news"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(rdb, ttl, zap.NewNop()), mr
}

func TestCacheRoundtrip(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	params := news.RequestParams{Source: news.SourceCNBC, Limit: 5, Keywords: []string{"saham"}}
	articles := []news.Article{
		{Title: "Saham BBCA Menguat", URL: "https://www.cnbcindonesia.com/market/a", Source: "CNBC Indonesia", PublishedAt: time.Now().UTC().Truncate(time.Second)},
	}

	_, ok := c.Get(ctx, params)
	assert.False(t, ok, "cold cache must miss")

	c.Set(ctx, params, articles)

	got, ok := c.Get(ctx, params)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, articles[0].Title, got[0].Title)
	assert.True(t, articles[0].PublishedAt.Equal(got[0].PublishedAt))
}

func TestCacheKeyVariesWithEveryParameter(t *testing.T) {
	base := news.RequestParams{Source: news.SourceAll, Limit: 10}

	variants := []news.RequestParams{
		{Source: news.SourceCNBC, Limit: 10},
		{Source: news.SourceAll, Limit: 20},
		{Source: news.SourceAll, Limit: 10, Keywords: []string{"BBRI"}},
		{Source: news.SourceAll, Limit: 10, IncludeContent: true},
	}
	for _, v := range variants {
		assert.NotEqual(t, Key(base), Key(v), "%+v must not share a key with the base request", v)
	}
}

func TestCacheEntryExpires(t *testing.T) {
	c, mr := newTestCache(t, time.Second)
	ctx := context.Background()

	params := news.RequestParams{Source: news.SourceKontan, Limit: 3}
	c.Set(ctx, params, []news.Article{{Title: "x", URL: "https://investasi.kontan.co.id/x"}})

	_, ok := c.Get(ctx, params)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	_, ok = c.Get(ctx, params)
	assert.False(t, ok, "entry must expire after its TTL")
}

func TestNilCacheIsDisabled(t *testing.T) {
	var c *Cache
	ctx := context.Background()
	params := news.RequestParams{Source: news.SourceAll, Limit: 10}

	assert.NotPanics(t, func() {
		c.Set(ctx, params, []news.Article{{Title: "x", URL: "https://example.com/x"}})
		_, ok := c.Get(ctx, params)
		assert.False(t, ok)
		assert.NoError(t, c.Close())
	})
}
