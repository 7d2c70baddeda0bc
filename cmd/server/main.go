package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nofendian17/stock-news-mcp/internal/aggregator"
	"github.com/nofendian17/stock-news-mcp/internal/browser"
	"github.com/nofendian17/stock-news-mcp/internal/cache"
	"github.com/nofendian17/stock-news-mcp/internal/config"
	"github.com/nofendian17/stock-news-mcp/internal/logger"
	"github.com/nofendian17/stock-news-mcp/internal/mcp"
	"github.com/nofendian17/stock-news-mcp/internal/sources"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatal("logger:", err)
	}
	defer zlog.Sync()

	manager := browser.NewManager(zlog, cfg.BrowserPath)
	defer manager.Cleanup()

	// The cache stays nil unless Redis is configured; a nil cache is a no-op.
	var resultCache *cache.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		resultCache = cache.New(rdb, cfg.CacheTTL, zlog)
		defer resultCache.Close()
	}

	var srcs []sources.Source
	for _, s := range sources.All(manager, zlog) {
		srcs = append(srcs, s)
	}

	agg := aggregator.New(srcs, resultCache, zlog)
	server := mcp.NewServer(agg, zlog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		zlog.Info("shutdown signal received")
		cancel()
	}()

	zlog.Info("stock news server listening on stdio")
	if err := server.Serve(ctx, os.Stdin, os.Stdout); err != nil {
		zlog.Error("server stopped", zap.Error(err))
	}
}
