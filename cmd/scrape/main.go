// Command scrape runs a single scrape from the terminal, bypassing the
// MCP transport. Useful for checking selectors against the live sites.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nofendian17/stock-news-mcp/internal/aggregator"
	"github.com/nofendian17/stock-news-mcp/internal/browser"
	"github.com/nofendian17/stock-news-mcp/internal/config"
	"github.com/nofendian17/stock-news-mcp/internal/logger"
	"github.com/nofendian17/stock-news-mcp/internal/news"
	"github.com/nofendian17/stock-news-mcp/internal/sources"
)

var (
	flagSource   string
	flagLimit    int
	flagKeywords []string
	flagContent  bool
)

var rootCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape Indonesian stock market news once and print the result",
	Example: `  scrape --source cnbc --limit 5
  scrape --source all --keywords saham,IHSG --content`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&flagSource, "source", "s", news.SourceAll, "news source (cnbc, kontan, bisnis, emitennews, all)")
	rootCmd.Flags().IntVarP(&flagLimit, "limit", "l", news.DefaultLimit, "maximum number of articles")
	rootCmd.Flags().StringSliceVarP(&flagKeywords, "keywords", "k", nil, "search keywords")
	rootCmd.Flags().BoolVarP(&flagContent, "content", "c", false, "fetch full article bodies")
}

func run(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer zlog.Sync()

	manager := browser.NewManager(zlog, cfg.BrowserPath)
	defer manager.Cleanup()

	var srcs []sources.Source
	for _, s := range sources.All(manager, zlog) {
		srcs = append(srcs, s)
	}
	agg := aggregator.New(srcs, nil, zlog)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	articles, err := agg.Scrape(ctx, news.RequestParams{
		Source:         flagSource,
		Limit:          flagLimit,
		Keywords:       flagKeywords,
		IncludeContent: flagContent,
	})
	if err != nil {
		return fmt.Errorf("scrape: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(articles)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
