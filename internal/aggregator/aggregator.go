// Package aggregator fans a scrape request out to the selected site
// scrapers, merges their articles and returns the most recent ones.
package aggregator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nofendian17/stock-news-mcp/internal/cache"
	"github.com/nofendian17/stock-news-mcp/internal/news"
	"github.com/nofendian17/stock-news-mcp/internal/sources"
)

// RequestTimeout bounds one whole scrape request. Page work still in flight
// when it expires is abandoned from the caller's perspective and cleaned up
// by its own session when it settles.
const RequestTimeout = 60 * time.Second

// Aggregator runs scrapes against a fixed, ordered set of sources.
type Aggregator struct {
	srcs    []sources.Source
	cache   *cache.Cache
	log     *zap.Logger
	timeout time.Duration
}

// New builds an aggregator. cache may be nil when caching is disabled.
func New(srcs []sources.Source, c *cache.Cache, log *zap.Logger) *Aggregator {
	return &Aggregator{
		srcs:    srcs,
		cache:   c,
		log:     log.Named("aggregator"),
		timeout: RequestTimeout,
	}
}

// Scrape validates params, runs the selected scrapers and returns articles
// sorted by publication time, newest first, truncated to the requested
// limit. With source "all", a failing scraper contributes zero articles;
// with a specific source, its failure propagates.
func (a *Aggregator) Scrape(ctx context.Context, params news.RequestParams) ([]news.Article, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if articles, ok := a.cache.Get(ctx, params); ok {
		a.log.Debug("cache hit", zap.String("source", params.Source), zap.Int("count", len(articles)))
		return articles, nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	cfg := news.ScraperConfig{
		MaxArticles:    params.Limit,
		IncludeContent: params.IncludeContent,
		Keywords:       params.Keywords,
	}

	var articles []news.Article
	var err error
	if params.Source == news.SourceAll {
		articles = a.scrapeAll(ctx, cfg)
	} else {
		articles, err = a.scrapeOne(ctx, params.Source, cfg)
	}
	if ctx.Err() == context.DeadlineExceeded {
		return nil, &news.RequestTimeoutError{Timeout: a.timeout}
	}
	if err != nil {
		return nil, err
	}

	// Newest first. The stable sort keeps the fixed source order on ties.
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
	if len(articles) > params.Limit {
		articles = articles[:params.Limit]
	}

	a.cache.Set(ctx, params, articles)

	return articles, nil
}

// scrapeAll runs every source concurrently and tolerates partial failure:
// a scraper that errors is logged and contributes nothing.
func (a *Aggregator) scrapeAll(ctx context.Context, cfg news.ScraperConfig) []news.Article {
	results := make([][]news.Article, len(a.srcs))

	var wg sync.WaitGroup
	for i, src := range a.srcs {
		i, src := i, src
		wg.Add(1)
		go func() {
			defer wg.Done()
			articles, err := src.ScrapeWithCleanup(ctx, cfg)
			if err != nil {
				a.log.Warn("source failed, skipping",
					zap.String("source", src.Name()),
					zap.Error(err))
				return
			}
			results[i] = articles
		}()
	}
	wg.Wait()

	var merged []news.Article
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged
}

// scrapeOne runs a single source; here a failure is the caller's problem.
func (a *Aggregator) scrapeOne(ctx context.Context, name string, cfg news.ScraperConfig) ([]news.Article, error) {
	for _, src := range a.srcs {
		if src.Name() == name {
			return src.ScrapeWithCleanup(ctx, cfg)
		}
	}
	// Validate already rejected unknown keys; reaching this means the
	// registry and the request schema drifted apart.
	return nil, fmt.Errorf("no scraper registered for source %q", name)
}
