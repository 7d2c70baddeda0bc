package mcp

import "github.com/nofendian17/stock-news-mcp/internal/news"

const toolScrapeStockNews = "scrape_stock_news"

func allTools() []Tool {
	return []Tool{
		{
			Name: toolScrapeStockNews,
			Description: "Scrape latest Indonesian stock market news from various sources " +
				"including CNBC Indonesia, Kontan, Bisnis Indonesia, and EmitenNews.com",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"source": map[string]any{
						"type":        "string",
						"enum":        []string{news.SourceCNBC, news.SourceKontan, news.SourceBisnis, news.SourceEmitenNews, news.SourceAll},
						"description": `News source to scrape from, or "all" for all sources`,
					},
					"limit": map[string]any{
						"type":        "number",
						"description": "Maximum number of articles to return (1-50)",
						"minimum":     1,
						"maximum":     news.MaxLimit,
						"default":     news.DefaultLimit,
					},
					"keywords": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Optional keywords to filter articles",
					},
					"includeContent": map[string]any{
						"type":        "boolean",
						"description": "Whether to fetch full article body/content (slower but more complete)",
						"default":     false,
					},
				},
				"required": []string{"source"},
			},
		},
	}
}
